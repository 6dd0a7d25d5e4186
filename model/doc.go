// Package model provides the in-memory document tree that writers serialize.
//
// A [Document] owns one style registry and one resource registry. Content is
// added through builder methods on containers; every builder that embeds
// media registers it first and only appends the element when registration
// succeeded:
//
//	doc := model.New()
//	sec := doc.AddSection(nil)
//	sec.AddTitle("Report", 1)
//	p := sec.AddParagraph("", &style.Paragraph{Alignment: style.Of(style.AlignCenter)})
//	p.AddText("Hello", "", &style.Font{Bold: style.Of(true)})
//	if _, err := sec.AddImage(resource.Path("chart.png"), nil, ""); err != nil {
//	    // the image was not added; the document is still consistent
//	}
//	doc.Freeze()
//
// # Containers
//
// [Section] bodies, [HeaderFooter] parts, table [Cell] values and [Note]
// bodies all embed [Container]. Each container is bound to the
// [resource.Context] its media and links are allocated in: cells inherit the
// context of their table, headers and footers get their own.
//
// # Collections
//
// Footnotes and endnotes live in a [Collection], an append-only store with
// stable 1-based indices. A slot can be replaced or cleared in place but
// never removed, so note references never shift.
//
// # Phases
//
// Building and serializing are separate phases. [Document.Freeze] seals both
// registries; after that every builder panics with [ErrFrozen] (or returns it,
// for builders that already return an error). Writers call Freeze before
// walking the tree.
package model
