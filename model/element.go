package model

import (
	"strings"

	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

// ElementType represents the type of a document element
type ElementType int

const (
	ElementTypeUnknown ElementType = iota
	ElementTypeParagraph
	ElementTypeText
	ElementTypeLink
	ElementTypeImage
	ElementTypeBreak
	ElementTypeNoteRef
	ElementTypeField
	ElementTypeListItem
	ElementTypeTable
	ElementTypeRow
	ElementTypeCell
	ElementTypePageBreak
	ElementTypeHeaderFooter
	ElementTypeNote
)

func (et ElementType) String() string {
	switch et {
	case ElementTypeParagraph:
		return "Paragraph"
	case ElementTypeText:
		return "Text"
	case ElementTypeLink:
		return "Link"
	case ElementTypeImage:
		return "Image"
	case ElementTypeBreak:
		return "Break"
	case ElementTypeNoteRef:
		return "NoteRef"
	case ElementTypeField:
		return "Field"
	case ElementTypeListItem:
		return "ListItem"
	case ElementTypeTable:
		return "Table"
	case ElementTypeRow:
		return "Row"
	case ElementTypeCell:
		return "Cell"
	case ElementTypePageBreak:
		return "PageBreak"
	case ElementTypeHeaderFooter:
		return "HeaderFooter"
	case ElementTypeNote:
		return "Note"
	default:
		return "Unknown"
	}
}

// Element is the interface for all document elements
type Element interface {
	Type() ElementType
}

// TextElement is an interface for elements containing text
type TextElement interface {
	Element
	GetText() string
}

// Text is a run of characters sharing one font.
type Text struct {
	Text      string
	FontStyle string
	Font      *style.Font
}

func (t *Text) Type() ElementType { return ElementTypeText }
func (t *Text) GetText() string   { return t.Text }

// Link is a hyperlink. RelID is allocated in Context.
type Link struct {
	URL       string
	Text      string
	FontStyle string
	Font      *style.Font
	Context   resource.Context
	RelID     int
}

func (l *Link) Type() ElementType { return ElementTypeLink }
func (l *Link) GetText() string   { return l.Text }

// Image is embedded picture or object media. It is used both as a block
// element of a container and inline inside a paragraph.
type Image struct {
	Handle    resource.Handle
	Source    string
	StyleName string
	Style     *style.Image
	Inline    bool
}

func (i *Image) Type() ElementType { return ElementTypeImage }

// BreakKind is the kind of an inline break.
type BreakKind int

const (
	BreakLine BreakKind = iota
	BreakPage
	BreakColumn
)

// Break is an inline break.
type Break struct {
	Kind BreakKind
}

func (b *Break) Type() ElementType { return ElementTypeBreak }

// NoteKind distinguishes footnotes from endnotes.
type NoteKind int

const (
	NoteFootnote NoteKind = iota
	NoteEndnote
)

func (k NoteKind) String() string {
	if k == NoteEndnote {
		return "endnote"
	}
	return "footnote"
}

// NoteRef marks where a footnote or endnote is referenced.
type NoteRef struct {
	Kind  NoteKind
	Index int
}

func (n *NoteRef) Type() ElementType { return ElementTypeNoteRef }

// FieldKind is a computed field.
type FieldKind string

const (
	FieldPage     FieldKind = "PAGE"
	FieldNumPages FieldKind = "NUMPAGES"
	FieldDate     FieldKind = "DATE"
)

// Field is a value computed by the consuming application, such as the page
// number. Placeholder is the text shown until the field is updated.
type Field struct {
	Kind        FieldKind
	Placeholder string
	FontStyle   string
	Font        *style.Font
}

func (f *Field) Type() ElementType { return ElementTypeField }
func (f *Field) GetText() string   { return f.Placeholder }

// PageBreak is a block-level page break.
type PageBreak struct{}

func (p *PageBreak) Type() ElementType { return ElementTypePageBreak }

// Paragraph is a block of inline elements.
type Paragraph struct {
	StyleName string
	Style     *style.Paragraph
	// Heading is the title depth (1-9) for titles, 0 otherwise.
	Heading  int
	Children []Element

	owner *Container
}

func (p *Paragraph) Type() ElementType { return ElementTypeParagraph }

// GetText concatenates the text of the paragraph's inline elements.
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, c := range p.Children {
		switch el := c.(type) {
		case TextElement:
			sb.WriteString(el.GetText())
		case *Break:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Context returns the identifier namespace of the paragraph's container.
func (p *Paragraph) Context() resource.Context {
	return p.owner.ctx
}

// ListItem is a paragraph at a list depth. ListStyle names a list style in
// the style registry.
type ListItem struct {
	*Paragraph
	Depth     int
	ListStyle string
}

func (l *ListItem) Type() ElementType { return ElementTypeListItem }
