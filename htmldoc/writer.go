package htmldoc

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/style"
)

// Write renders doc as a standalone HTML page. The document is frozen
// first. Resolved styles become inline CSS and media is embedded as data
// URIs, so the output has no external references besides hyperlinks.
func Write(out io.Writer, doc *model.Document) error {
	doc.Freeze()
	if err := doc.Verify(); err != nil {
		return fmt.Errorf("html: %w", err)
	}

	w := &writer{doc: doc, styles: doc.Styles}
	w.base = w.styles.ResolveFont(nil, "")

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	page := element("html")
	root.AppendChild(page)
	page.AppendChild(w.head())

	body := element("body", "style", baseFontCSS(w.base))
	page.AppendChild(body)
	for _, sec := range doc.Sections {
		body.AppendChild(w.section(sec))
	}
	w.notes(body, model.NoteFootnote)
	w.notes(body, model.NoteEndnote)

	if err := html.Render(out, root); err != nil {
		return fmt.Errorf("html: %w", err)
	}
	doc.Logger().WithField("sections", len(doc.Sections)).Debug("html written")
	return nil
}

// WriteFile writes doc to the named file.
func WriteFile(filename string, doc *model.Document) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type writer struct {
	doc    *model.Document
	styles *style.Registry
	base   *style.Font
}

// element creates an element node. Attributes with empty values are
// dropped.
func element(tag string, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
		}
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// appendText appends s, turning newlines into <br>.
func appendText(parent *html.Node, s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			parent.AppendChild(element("br"))
		}
		if line != "" {
			parent.AppendChild(textNode(line))
		}
	}
}

func (w *writer) head() *html.Node {
	m := w.doc.Metadata
	head := element("head")
	head.AppendChild(element("meta", "charset", "utf-8"))
	title := element("title")
	title.AppendChild(textNode(m.Title))
	head.AppendChild(title)

	meta := func(name, content string) {
		if content != "" {
			head.AppendChild(element("meta", "name", name, "content", content))
		}
	}
	meta("generator", "folio")
	meta("document-id", w.doc.ID)
	meta("author", m.Creator)
	meta("description", m.Description)
	meta("subject", m.Subject)
	meta("keywords", strings.Join(m.Keywords, ", "))
	return head
}

func (w *writer) section(sec *model.Section) *html.Node {
	n := element("section", "class", "section", "id", "section-"+strconv.Itoa(sec.Number))
	for _, h := range sec.Headers {
		hn := element("header", "class", "header", "data-kind", string(h.Kind))
		w.blocks(hn, h.Elements)
		n.AppendChild(hn)
	}
	w.blocks(n, sec.Elements)
	for _, f := range sec.Footers {
		fn := element("footer", "class", "footer", "data-kind", string(f.Kind))
		w.blocks(fn, f.Elements)
		n.AppendChild(fn)
	}
	return n
}

func noteID(kind model.NoteKind, index int) string {
	if kind == model.NoteEndnote {
		return "en" + strconv.Itoa(index)
	}
	return "fn" + strconv.Itoa(index)
}

func (w *writer) notes(body *html.Node, kind model.NoteKind) {
	notes, class := w.doc.Footnotes, "footnotes"
	if kind == model.NoteEndnote {
		notes, class = w.doc.Endnotes, "endnotes"
	}
	if notes.Count() == 0 {
		return
	}
	sec := element("section", "class", class)
	sec.AppendChild(element("hr"))
	list := element("ol")
	_ = notes.Each(func(index int, n *model.Note) error {
		li := element("li", "id", noteID(kind, index), "value", strconv.Itoa(index))
		w.blocks(li, n.Elements)
		back := element("a", "href", "#"+noteID(kind, index)+"-ref", "class", "backref")
		back.AppendChild(textNode("↩"))
		li.AppendChild(back)
		list.AppendChild(li)
		return nil
	})
	sec.AppendChild(list)
	body.AppendChild(sec)
}

// className turns a style name into a CSS class.
func className(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// blocks renders block elements into parent. Runs of list items become
// nested lists.
func (w *writer) blocks(parent *html.Node, els []model.Element, inherited ...style.Style) {
	var lists []*html.Node
	for _, el := range els {
		li, isItem := el.(*model.ListItem)
		if !isItem {
			lists = nil
		}
		switch e := el.(type) {
		case *model.Paragraph:
			parent.AppendChild(w.paragraph(e, inherited))
		case *model.ListItem:
			lists = w.listItem(parent, lists, li, inherited)
		case *model.Table:
			parent.AppendChild(w.table(e, inherited))
		case *model.Image:
			s := w.styles.ResolveImage(e.Style, e.StyleName)
			var css declarations
			if s.Alignment != nil {
				css.add("text-align", string(*s.Alignment))
			}
			div := element("div", "class", "image", "style", css.String())
			div.AppendChild(w.image(e, s))
			parent.AppendChild(div)
		case *model.PageBreak:
			parent.AppendChild(element("div", "class", "page-break", "style", "break-after: page"))
		}
	}
}

func (w *writer) layers(kind style.Kind, name string, inherited []style.Style) []style.Style {
	if c := w.styles.Companion(kind, name); c != nil {
		return append([]style.Style{c}, inherited...)
	}
	return inherited
}

func (w *writer) paragraph(p *model.Paragraph, inherited []style.Style) *html.Node {
	tag := "p"
	if p.Heading > 0 {
		tag = "h" + strconv.Itoa(min(p.Heading, 6))
	}
	n := element(tag,
		"class", className(p.StyleName),
		"style", paragraphCSS(w.styles.ResolveParagraph(p.Style, p.StyleName)))
	w.inlines(n, p, w.layers(style.KindParagraph, p.StyleName, inherited))
	return n
}

func (w *writer) inlines(parent *html.Node, p *model.Paragraph, layers []style.Style) {
	for _, child := range p.Children {
		switch e := child.(type) {
		case *model.Text:
			w.run(parent, "span", e.Text, e.FontStyle, e.Font, layers)
		case *model.Link:
			a := element("a", "href", e.URL)
			css := fontCSS(w.styles.ResolveFont(e.Font, e.FontStyle, layers...), w.base)
			if css != "" {
				a.Attr = append(a.Attr, html.Attribute{Key: "style", Val: css})
			}
			appendText(a, e.Text)
			parent.AppendChild(a)
		case *model.Image:
			parent.AppendChild(w.image(e, w.styles.ResolveImage(e.Style, e.StyleName)))
		case *model.Break:
			switch e.Kind {
			case model.BreakPage:
				parent.AppendChild(element("br", "style", "break-after: page"))
			default:
				parent.AppendChild(element("br"))
			}
		case *model.NoteRef:
			id := noteID(e.Kind, e.Index)
			sup := element("sup")
			a := element("a", "href", "#"+id, "id", id+"-ref", "class", "note-ref")
			a.AppendChild(textNode(strconv.Itoa(e.Index)))
			sup.AppendChild(a)
			parent.AppendChild(sup)
		case *model.Field:
			span := element("span", "class", "field", "data-field", string(e.Kind))
			w.run(span, "span", e.Placeholder, e.FontStyle, e.Font, layers)
			parent.AppendChild(span)
		}
	}
}

// run appends text, wrapped in tag only when its resolved font differs
// from the document font.
func (w *writer) run(parent *html.Node, tag, text, fontStyle string, font *style.Font, layers []style.Style) {
	css := fontCSS(w.styles.ResolveFont(font, fontStyle, layers...), w.base)
	if css == "" {
		appendText(parent, text)
		return
	}
	n := element(tag, "style", css)
	appendText(n, text)
	parent.AppendChild(n)
}

var listTypes = map[style.NumberFormat]string{
	style.FormatLowerLetter: "a",
	style.FormatUpperLetter: "A",
	style.FormatLowerRoman:  "i",
	style.FormatUpperRoman:  "I",
}

// listItem appends li to the list nesting in lists and returns the new
// nesting. Deeper items open lists inside the previous item.
func (w *writer) listItem(parent *html.Node, lists []*html.Node, li *model.ListItem, inherited []style.Style) []*html.Node {
	for len(lists) > li.Depth+1 {
		lists = lists[:len(lists)-1]
	}
	ls := w.styles.ResolveList(nil, li.ListStyle)
	for len(lists) < li.Depth+1 {
		tag, kv := "ul", []string{}
		if ls.Type != nil && *ls.Type == style.ListNumber || ls.Format != nil && *ls.Format != style.FormatBullet {
			tag = "ol"
			if ls.Format != nil {
				kv = append(kv, "type", listTypes[*ls.Format])
			}
			if ls.Start != nil && *ls.Start != 1 {
				kv = append(kv, "start", strconv.Itoa(*ls.Start))
			}
		}
		list := element(tag, kv...)
		switch {
		case len(lists) == 0:
			parent.AppendChild(list)
		case lists[len(lists)-1].LastChild != nil:
			lists[len(lists)-1].LastChild.AppendChild(list)
		default:
			lists[len(lists)-1].AppendChild(list)
		}
		lists = append(lists, list)
	}

	item := element("li", "style", paragraphCSS(w.styles.ResolveParagraph(li.Style, li.StyleName)))
	w.inlines(item, li.Paragraph, w.layers(style.KindParagraph, li.StyleName, inherited))
	lists[len(lists)-1].AppendChild(item)
	return lists
}

// cellAtColumn returns the cell of row covering grid column col.
func cellAtColumn(cells []*style.Cell, spans []int, col int) (int, bool) {
	pos := 0
	for i := range cells {
		if pos == col {
			return i, true
		}
		pos += spans[i]
		if pos > col {
			return -1, false
		}
	}
	return -1, false
}

func (w *writer) table(t *model.Table, inherited []style.Style) *html.Node {
	ts := w.styles.ResolveTable(t.Style, t.StyleName)
	layers := w.layers(style.KindTable, t.StyleName, inherited)
	n := element("table", "class", className(t.StyleName), "style", tableCSS(ts))

	// Resolve every cell once up front; vertical merges look ahead.
	resolved := make([][]*style.Cell, len(t.Rows))
	spans := make([][]int, len(t.Rows))
	for i, r := range t.Rows {
		for _, c := range r.Cells {
			cs := w.styles.ResolveCell(c.Style, c.StyleName)
			resolved[i] = append(resolved[i], cs)
			span := 1
			if cs.GridSpan != nil && *cs.GridSpan > 1 {
				span = *cs.GridSpan
			}
			spans[i] = append(spans[i], span)
		}
	}

	for i, r := range t.Rows {
		rs := w.styles.ResolveRow(r.Style, r.StyleName)
		header := rs.Header != nil && *rs.Header
		var css declarations
		if rs.Height != nil {
			css.add("height", pt(*rs.Height))
		}
		tr := element("tr", "style", css.String())

		col := 0
		for j, c := range r.Cells {
			cs := resolved[i][j]
			span := spans[i][j]
			startCol := col
			col += span
			if cs.VMerge != nil && *cs.VMerge == style.VMergeContinue {
				continue
			}
			rowspan := 1
			if cs.VMerge != nil && *cs.VMerge == style.VMergeRestart {
				for k := i + 1; k < len(t.Rows); k++ {
					idx, ok := cellAtColumn(resolved[k], spans[k], startCol)
					if !ok || resolved[k][idx].VMerge == nil || *resolved[k][idx].VMerge != style.VMergeContinue {
						break
					}
					rowspan++
				}
			}

			tag := "td"
			if header {
				tag = "th"
			}
			kv := []string{"style", cellCSS(cs, ts)}
			if span > 1 {
				kv = append(kv, "colspan", strconv.Itoa(span))
			}
			if rowspan > 1 {
				kv = append(kv, "rowspan", strconv.Itoa(rowspan))
			}
			cell := element(tag, kv...)
			w.blocks(cell, c.Elements, layers...)
			tr.AppendChild(cell)
		}
		n.AppendChild(tr)
	}
	return n
}

// image renders media as an <img> with a data URI.
func (w *writer) image(img *model.Image, s *style.Image) *html.Node {
	rec, _ := w.doc.Resources.Media(img.Handle.Context, img.Handle.MediaIndex)
	src := "data:" + rec.ContentType + ";base64," + base64.StdEncoding.EncodeToString(rec.Data)

	width, height := img.Handle.Width, img.Handle.Height
	if s.Width != nil {
		width = *s.Width
	}
	if s.Height != nil {
		height = *s.Height
	}
	alt := ""
	if s.AltText != nil {
		alt = *s.AltText
	}
	kv := []string{"src", src, "alt", alt, "style", imageCSS(s)}
	if width > 0 {
		kv = append(kv, "width", strconv.Itoa(width))
	}
	if height > 0 {
		kv = append(kv, "height", strconv.Itoa(height))
	}
	n := element("img", kv...)
	// alt is kept even when empty.
	if alt == "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "alt"})
	}
	return n
}
