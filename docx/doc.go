// Package docx writes documents as Office Open XML (.docx) packages.
//
// The writer freezes the document and renders it read-only. Relationship ids
// and media indices come from the document's resource registry unchanged:
// a registry id N is written as "rIdN" in the relationships part of its
// context, and parts the writer adds itself (styles, settings, numbering,
// notes) take ids above the highest registry id of the body.
//
// Every element is resolved once against the style registry; the resolved
// properties are written as direct formatting next to the style reference.
//
// Example:
//
//	doc := model.New()
//	doc.AddSection(nil).AddText("Hello", nil, nil)
//	if err := docx.WriteFile("hello.docx", doc); err != nil {
//		log.Fatal(err)
//	}
package docx
