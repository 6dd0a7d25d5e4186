// Package resource allocates the identifiers that link document content to
// embedded media and to other document parts.
//
// Identifiers are allocated per [Context]: the document body, a specific
// header or footer, or a notes part. Each context owns two independent
// counters, one for relationship ids and one for media indices. Both start
// at 1, grow in registration order, and are never reused.
//
//	reg := resource.NewRegistry()
//	h, err := reg.AddMedia(resource.Header(1), resource.Path("logo.png"), resource.KindImage)
//	if err != nil {
//	    // errors.Is(err, resource.ErrMediaNotFound) or resource.ErrUnsupportedMediaType
//	}
//	// h.RelID == 1, h.MediaIndex == 1, h.Extension == "png"
//
// Media type is decided by the content bytes, never by the file name, using
// an injectable [Table] of magic-number signatures.
package resource
