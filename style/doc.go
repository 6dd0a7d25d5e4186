// Package style provides the style value objects and the style registry used
// while building a document.
//
// Every style family is a flat record of optional fields. A nil field means
// "unset" and is filled from the next precedence level during resolution:
//
//	inline value -> named style (derived before base) -> kind default -> built-in fallback
//
// Resolution is a per-field merge, not a per-object override:
//
//	reg := style.NewRegistry()
//	reg.Register("P1", style.KindParagraph, &style.Paragraph{Alignment: style.Of(style.AlignCenter)}, nil)
//	p := reg.ResolveParagraph(&style.Paragraph{SpaceAfter: style.Of(200)}, "P1")
//	// p.Alignment == center, p.SpaceAfter == 200
//
// A [Registry] belongs to exactly one document. It is populated while the
// document is built and must be sealed before it is read by a writer.
package style
