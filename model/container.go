package model

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

// Container holds block elements bound to one resource context.
type Container struct {
	Elements []Element

	doc *Document
	ctx resource.Context
}

func newContainer(doc *Document, ctx resource.Context) Container {
	return Container{doc: doc, ctx: ctx}
}

// Context returns the identifier namespace of the container.
func (c *Container) Context() resource.Context { return c.ctx }

// Document returns the owning document.
func (c *Container) Document() *Document { return c.doc }

func (c *Container) append(el Element) {
	c.Elements = append(c.Elements, el)
}

// AddParagraph appends an empty paragraph.
func (c *Container) AddParagraph(styleName string, inline *style.Paragraph) *Paragraph {
	c.doc.mustBuild()
	p := &Paragraph{StyleName: styleName, Style: inline, owner: c}
	c.append(p)
	return p
}

// AddText appends a paragraph holding a single run.
func (c *Container) AddText(text string, font *style.Font, para *style.Paragraph) *Paragraph {
	p := c.AddParagraph("", para)
	p.AddText(text, "", font)
	return p
}

// AddTitle appends a heading paragraph using the "Heading{depth}" style.
func (c *Container) AddTitle(text string, depth int) *Paragraph {
	if depth < 1 {
		depth = 1
	}
	if depth > 9 {
		depth = 9
	}
	p := c.AddParagraph(TitleStyleName(depth), nil)
	p.Heading = depth
	p.AddText(text, "", nil)
	return p
}

// AddListItem appends a paragraph at a list depth (0-based).
func (c *Container) AddListItem(text string, depth int, listStyle string, font *style.Font, para *style.Paragraph) *ListItem {
	c.doc.mustBuild()
	if depth < 0 {
		depth = 0
	}
	p := &Paragraph{Style: para, owner: c}
	p.AddText(text, "", font)
	li := &ListItem{Paragraph: p, Depth: depth, ListStyle: listStyle}
	c.append(li)
	return li
}

// AddTable appends an empty table.
func (c *Container) AddTable(styleName string, inline *style.Table) *Table {
	c.doc.mustBuild()
	t := &Table{StyleName: styleName, Style: inline, owner: c}
	c.append(t)
	return t
}

// AddImage registers src in the container's context and appends a block
// image. Nothing is appended when registration fails.
func (c *Container) AddImage(src resource.Source, inline *style.Image, styleName string) (*Image, error) {
	img, err := c.doc.registerImage(c.ctx, src, inline, styleName)
	if err != nil {
		return nil, err
	}
	c.append(img)
	return img, nil
}

// AddPageBreak appends a page break.
func (c *Container) AddPageBreak() {
	c.doc.mustBuild()
	c.append(&PageBreak{})
}

// ExtractText returns the text of all paragraphs, one per line.
func (c *Container) ExtractText() string {
	var sb strings.Builder
	for _, el := range c.Elements {
		switch e := el.(type) {
		case *Table:
			sb.WriteString(e.GetText())
		case TextElement:
			sb.WriteString(e.GetText())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// AddText appends a text run.
func (p *Paragraph) AddText(text, fontStyle string, font *style.Font) *Text {
	p.owner.doc.mustBuild()
	t := &Text{Text: text, FontStyle: fontStyle, Font: font}
	p.Children = append(p.Children, t)
	return t
}

// AddLink appends a hyperlink and allocates its relationship.
func (p *Paragraph) AddLink(url, text, fontStyle string, font *style.Font) (*Link, error) {
	doc := p.owner.doc
	if doc.frozen {
		return nil, ErrFrozen
	}
	ctx := p.owner.ctx
	id, err := doc.Resources.AddRelationship(ctx, resource.KindHyperlink, url)
	if err != nil {
		return nil, fmt.Errorf("adding link %q: %w", url, err)
	}
	if text == "" {
		text = url
	}
	l := &Link{URL: url, Text: text, FontStyle: fontStyle, Font: font, Context: ctx, RelID: id}
	p.Children = append(p.Children, l)
	return l, nil
}

// AddImage registers src and appends it inline.
func (p *Paragraph) AddImage(src resource.Source, inline *style.Image, styleName string) (*Image, error) {
	img, err := p.owner.doc.registerImage(p.owner.ctx, src, inline, styleName)
	if err != nil {
		return nil, err
	}
	img.Inline = true
	p.Children = append(p.Children, img)
	return img, nil
}

// AddBreak appends a line, page or column break.
func (p *Paragraph) AddBreak(kind BreakKind) {
	p.owner.doc.mustBuild()
	p.Children = append(p.Children, &Break{Kind: kind})
}

// AddField appends a computed field.
func (p *Paragraph) AddField(kind FieldKind, placeholder string, font *style.Font) *Field {
	p.owner.doc.mustBuild()
	f := &Field{Kind: kind, Placeholder: placeholder, Font: font}
	p.Children = append(p.Children, f)
	return f
}

// AddFootnote creates a footnote, references it here, and returns its body.
func (p *Paragraph) AddFootnote() *Note {
	return p.addNote(NoteFootnote)
}

// AddEndnote creates an endnote, references it here, and returns its body.
func (p *Paragraph) AddEndnote() *Note {
	return p.addNote(NoteEndnote)
}

func (p *Paragraph) addNote(kind NoteKind) *Note {
	doc := p.owner.doc
	doc.mustBuild()
	n := doc.newNote(kind)
	p.Children = append(p.Children, &NoteRef{Kind: kind, Index: n.Index})
	return n
}

// registerImage allocates media before any element exists, so a failure
// leaves the tree untouched.
func (d *Document) registerImage(ctx resource.Context, src resource.Source, inline *style.Image, styleName string) (*Image, error) {
	if d.frozen {
		return nil, ErrFrozen
	}
	name := "<nil>"
	if src != nil {
		name = src.Name()
	}
	log := d.log.WithFields(logrus.Fields{"context": ctx.String(), "source": name})

	h, err := d.Resources.AddMedia(ctx, src, resource.KindImage)
	if err != nil {
		log.WithError(err).Warn("image not added")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"rel":    h.RelID,
		"media":  h.MediaIndex,
		"type":   h.ContentType,
		"reused": h.Reused,
	}).Debug("image registered")

	return &Image{Handle: h, Source: name, StyleName: styleName, Style: inline}, nil
}
