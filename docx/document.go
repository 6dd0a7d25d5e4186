package docx

import (
	"bytes"
	"strings"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

// linkFont is layered under every hyperlink run.
var linkFont = &style.Font{
	Color:     style.Of("0563C1"),
	Underline: style.Of(style.UnderlineSingle),
}

// noteFont is used for note reference marks.
var noteFont = &style.Font{Superscript: style.Of(true)}

// part renders a WordprocessingML part rooted at root.
func (w *writer) part(root string, body func(x *xmlWriter)) ([]byte, error) {
	var buf bytes.Buffer
	x := newXMLWriter(&buf)
	x.start(root, partNamespaces...)
	body(x)
	x.end(root)
	if err := x.flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *writer) documentPart() ([]byte, error) {
	return w.part("w:document", func(x *xmlWriter) {
		x.start("w:body")
		for i, sec := range w.doc.Sections {
			w.blocks(x, sec.Elements)
			if i == len(w.doc.Sections)-1 {
				w.sectPr(x, sec)
				continue
			}
			// A section that is not the last ends with a paragraph carrying
			// its properties.
			x.start("w:p")
			x.paragraphProps("", nil, nil, func() { w.sectPr(x, sec) })
			x.end("w:p")
		}
		if len(w.doc.Sections) == 0 {
			x.empty("w:p")
		}
		x.end("w:body")
	})
}

func (w *writer) sectPr(x *xmlWriter, sec *model.Section) {
	x.start("w:sectPr")
	titlePage := false
	for _, h := range sec.Headers {
		x.empty("w:headerReference", "w:type", string(h.Kind), "r:id", relID(h.RelID))
		titlePage = titlePage || h.Kind == model.HeaderFirst
	}
	for _, f := range sec.Footers {
		x.empty("w:footerReference", "w:type", string(f.Kind), "r:id", relID(f.RelID))
		titlePage = titlePage || f.Kind == model.HeaderFirst
	}

	s := sec.Setup
	orient := ""
	if s.Orientation == model.Landscape {
		orient = "landscape"
	}
	x.empty("w:pgSz", "w:w", itoa(s.Width), "w:h", itoa(s.Height), "w:orient", orient)
	x.empty("w:pgMar",
		"w:top", itoa(s.MarginTop), "w:right", itoa(s.MarginRight),
		"w:bottom", itoa(s.MarginBottom), "w:left", itoa(s.MarginLeft),
		"w:header", "720", "w:footer", "720", "w:gutter", "0")
	cols := s.Columns
	if cols < 1 {
		cols = 1
	}
	x.empty("w:cols", "w:space", "720", "w:num", itoa(cols))
	if titlePage {
		x.empty("w:titlePg")
	}
	x.end("w:sectPr")
}

// blocks renders the block elements of a container. It returns whether the
// last element written was a paragraph.
func (w *writer) blocks(x *xmlWriter, els []model.Element, inherited ...style.Style) bool {
	endsWithParagraph := false
	for _, el := range els {
		endsWithParagraph = true
		switch e := el.(type) {
		case *model.Paragraph:
			w.paragraph(x, e, nil, inherited)
		case *model.ListItem:
			num := &numRef{numID: w.listNumber(e.ListStyle), level: min(e.Depth, 8)}
			w.paragraph(x, e.Paragraph, num, inherited)
		case *model.Table:
			w.table(x, e, inherited)
			endsWithParagraph = false
		case *model.Image:
			s := w.styles.ResolveImage(e.Style, e.StyleName)
			x.start("w:p")
			var para *style.Paragraph
			if s.Alignment != nil {
				para = &style.Paragraph{Alignment: s.Alignment}
			}
			x.paragraphProps("", para, nil, nil)
			w.drawing(x, e, s)
			x.end("w:p")
		case *model.PageBreak:
			x.start("w:p")
			x.start("w:r")
			x.empty("w:br", "w:type", "page")
			x.end("w:r")
			x.end("w:p")
		default:
			endsWithParagraph = false
		}
	}
	return endsWithParagraph
}

func (w *writer) paragraph(x *xmlWriter, p *model.Paragraph, num *numRef, inherited []style.Style) {
	para := w.styles.ResolveParagraph(p.Style, p.StyleName)
	layers := inherited
	if c := w.styles.Companion(style.KindParagraph, p.StyleName); c != nil {
		layers = append([]style.Style{c}, inherited...)
	}

	x.start("w:p")
	x.paragraphProps(w.ids.id(style.KindParagraph, p.StyleName), para, num, nil)
	if w.noteMark != "" {
		w.noteReference(x, w.noteMark, "")
		w.noteMark = ""
	}
	for _, child := range p.Children {
		w.inline(x, child, layers)
	}
	x.end("w:p")
}

func (w *writer) inline(x *xmlWriter, el model.Element, layers []style.Style) {
	switch e := el.(type) {
	case *model.Text:
		w.run(x, e.Text, e.FontStyle, e.Font, layers)
	case *model.Link:
		x.start("w:hyperlink", "r:id", relID(e.RelID), "w:history", "1")
		w.run(x, e.Text, e.FontStyle, e.Font, append(append([]style.Style{}, layers...), linkFont))
		x.end("w:hyperlink")
	case *model.Image:
		x.start("w:r")
		w.drawing(x, e, w.styles.ResolveImage(e.Style, e.StyleName))
		x.end("w:r")
	case *model.Break:
		x.start("w:r")
		switch e.Kind {
		case model.BreakPage:
			x.empty("w:br", "w:type", "page")
		case model.BreakColumn:
			x.empty("w:br", "w:type", "column")
		default:
			x.empty("w:br")
		}
		x.end("w:r")
	case *model.NoteRef:
		name := "w:footnoteReference"
		if e.Kind == model.NoteEndnote {
			name = "w:endnoteReference"
		}
		w.noteReference(x, name, itoa(e.Index))
	case *model.Field:
		x.start("w:fldSimple", "w:instr", " "+string(e.Kind)+" ")
		w.run(x, e.Placeholder, e.FontStyle, e.Font, layers)
		x.end("w:fldSimple")
	}
}

func (w *writer) noteReference(x *xmlWriter, name, id string) {
	x.start("w:r")
	x.runProps("", noteFont)
	if id == "" {
		x.empty(name)
	} else {
		x.empty(name, "w:id", id)
	}
	x.end("w:r")
}

func (w *writer) run(x *xmlWriter, text, fontStyle string, font *style.Font, layers []style.Style) {
	f := w.styles.ResolveFont(font, fontStyle, layers...)
	x.start("w:r")
	x.runProps(w.ids.id(style.KindFont, fontStyle), f)
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			x.empty("w:br")
		}
		for j, seg := range strings.Split(line, "\t") {
			if j > 0 {
				x.empty("w:tab")
			}
			if seg != "" {
				x.textElement("w:t", seg, "xml:space", "preserve")
			}
		}
	}
	x.end("w:r")
}

// defaultTextWidth is the text width of A4 with one-inch margins, in twips.
const defaultTextWidth = 9026

func (w *writer) table(x *xmlWriter, t *model.Table, inherited []style.Style) {
	ts := w.styles.ResolveTable(t.Style, t.StyleName)
	layers := inherited
	if c := w.styles.Companion(style.KindTable, t.StyleName); c != nil {
		layers = append([]style.Style{c}, inherited...)
	}

	cols := t.ColCount()
	if cols < 1 {
		cols = 1
	}
	width := defaultTextWidth
	if ts.Width != nil && *ts.Width > 0 {
		width = *ts.Width
	}

	x.start("w:tbl")
	x.tableProps(w.ids.id(style.KindTable, t.StyleName), ts)
	x.start("w:tblGrid")
	for i := 0; i < cols; i++ {
		x.empty("w:gridCol", "w:w", itoa(width/cols))
	}
	x.end("w:tblGrid")

	for _, r := range t.Rows {
		x.start("w:tr")
		x.rowProps(w.styles.ResolveRow(r.Style, r.StyleName))
		for _, c := range r.Cells {
			x.start("w:tc")
			x.cellProps(w.styles.ResolveCell(c.Style, c.StyleName))
			if !w.blocks(x, c.Elements, layers...) {
				x.empty("w:p")
			}
			x.end("w:tc")
		}
		if len(r.Cells) == 0 {
			x.start("w:tc")
			x.cellProps(&style.Cell{GridSpan: style.Of(cols)})
			x.empty("w:p")
			x.end("w:tc")
		}
		x.end("w:tr")
	}
	x.end("w:tbl")
}

// drawing writes an inline or anchored picture. Sizes come from the image
// style, then the decoded pixel size, then one inch.
func (w *writer) drawing(x *xmlWriter, img *model.Image, s *style.Image) {
	wpx, hpx := img.Handle.Width, img.Handle.Height
	switch {
	case s.Width != nil && s.Height != nil:
		wpx, hpx = *s.Width, *s.Height
	case s.Width != nil:
		if wpx > 0 {
			hpx = hpx * *s.Width / wpx
		}
		wpx = *s.Width
	case s.Height != nil:
		if hpx > 0 {
			wpx = wpx * *s.Height / hpx
		}
		hpx = *s.Height
	}
	if wpx <= 0 {
		wpx = 96
	}
	if hpx <= 0 {
		hpx = 96
	}
	cx, cy := itoa(wpx*emuPerPixel), itoa(hpx*emuPerPixel)

	w.drawingID++
	id := itoa(w.drawingID)
	name := "Picture " + id
	alt := ""
	if s.AltText != nil {
		alt = *s.AltText
	}
	dist := "0"
	if s.Margin != nil {
		dist = itoa(*s.Margin * emuPerPixel)
	}

	wrap := style.WrapInline
	if s.Wrapping != nil {
		wrap = *s.Wrapping
	}
	x.start("w:drawing")
	if wrap == style.WrapInline {
		x.start("wp:inline", "distT", dist, "distB", dist, "distL", dist, "distR", dist)
	} else {
		behind := "0"
		if wrap == style.WrapBehind {
			behind = "1"
		}
		x.start("wp:anchor", "distT", dist, "distB", dist, "distL", dist, "distR", dist,
			"simplePos", "0", "relativeHeight", id, "behindDoc", behind, "locked", "0",
			"layoutInCell", "1", "allowOverlap", "1")
		x.empty("wp:simplePos", "x", "0", "y", "0")
		align := "left"
		if s.Alignment != nil && *s.Alignment != style.AlignJustify {
			align = string(*s.Alignment)
		}
		x.start("wp:positionH", "relativeFrom", "column")
		x.textElement("wp:align", align)
		x.end("wp:positionH")
		x.start("wp:positionV", "relativeFrom", "paragraph")
		x.textElement("wp:posOffset", "0")
		x.end("wp:positionV")
	}
	x.empty("wp:extent", "cx", cx, "cy", cy)
	x.empty("wp:effectExtent", "l", "0", "t", "0", "r", "0", "b", "0")
	switch wrap {
	case style.WrapSquare:
		x.empty("wp:wrapSquare", "wrapText", "bothSides")
	case style.WrapTight:
		x.start("wp:wrapTight", "wrapText", "bothSides")
		x.start("wp:wrapPolygon", "edited", "0")
		x.empty("wp:start", "x", "0", "y", "0")
		for _, pt := range [][2]string{{"0", "21600"}, {"21600", "21600"}, {"21600", "0"}, {"0", "0"}} {
			x.empty("wp:lineTo", "x", pt[0], "y", pt[1])
		}
		x.end("wp:wrapPolygon")
		x.end("wp:wrapTight")
	case style.WrapBehind, style.WrapFront:
		x.empty("wp:wrapNone")
	}
	x.empty("wp:docPr", "id", id, "name", name, "descr", alt)
	x.start("wp:cNvGraphicFramePr")
	x.empty("a:graphicFrameLocks", "noChangeAspect", "1")
	x.end("wp:cNvGraphicFramePr")

	x.start("a:graphic")
	x.start("a:graphicData", "uri", "http://schemas.openxmlformats.org/drawingml/2006/picture")
	x.start("pic:pic")
	x.start("pic:nvPicPr")
	x.empty("pic:cNvPr", "id", "0", "name", mediaTarget(img.Handle.Context, img.Handle.MediaIndex, img.Handle.Extension))
	x.empty("pic:cNvPicPr")
	x.end("pic:nvPicPr")
	x.start("pic:blipFill")
	x.empty("a:blip", "r:embed", relID(img.Handle.RelID))
	x.start("a:stretch")
	x.empty("a:fillRect")
	x.end("a:stretch")
	x.end("pic:blipFill")
	x.start("pic:spPr")
	x.start("a:xfrm")
	x.empty("a:off", "x", "0", "y", "0")
	x.empty("a:ext", "cx", cx, "cy", cy)
	x.end("a:xfrm")
	x.start("a:prstGeom", "prst", "rect")
	x.empty("a:avLst")
	x.end("a:prstGeom")
	x.end("pic:spPr")
	x.end("pic:pic")
	x.end("a:graphicData")
	x.end("a:graphic")

	if wrap == style.WrapInline {
		x.end("wp:inline")
	} else {
		x.end("wp:anchor")
	}
	x.end("w:drawing")
}

// headerFooterPart renders a header or footer part. A part needs at least
// one paragraph.
func (w *writer) headerFooterPart(hf *model.HeaderFooter) ([]byte, error) {
	root := "w:hdr"
	if hf.Footer {
		root = "w:ftr"
	}
	return w.part(root, func(x *xmlWriter) {
		if !w.blocks(x, hf.Elements) {
			x.empty("w:p")
		}
	})
}

// notesPart renders footnotes.xml or endnotes.xml. Ids -1 and 0 are the
// separator notes Word expects before the document's own notes.
func (w *writer) notesPart(kind model.NoteKind) ([]byte, error) {
	root, item, mark, notes := "w:footnotes", "w:footnote", "w:footnoteRef", w.doc.Footnotes
	if kind == model.NoteEndnote {
		root, item, mark, notes = "w:endnotes", "w:endnote", "w:endnoteRef", w.doc.Endnotes
	}
	return w.part(root, func(x *xmlWriter) {
		for _, sep := range []struct{ id, typ, el string }{
			{"-1", "separator", "w:separator"},
			{"0", "continuationSeparator", "w:continuationSeparator"},
		} {
			x.start(item, "w:type", sep.typ, "w:id", sep.id)
			x.start("w:p")
			x.start("w:r")
			x.empty(sep.el)
			x.end("w:r")
			x.end("w:p")
			x.end(item)
		}
		for index := 1; index <= notes.Count(); index++ {
			n := notes.Get(index)
			if n == nil {
				continue
			}
			x.start(item, "w:id", itoa(index))
			if len(n.Elements) == 0 {
				x.start("w:p")
				w.noteReference(x, mark, "")
				x.end("w:p")
			} else {
				if _, ok := n.Elements[0].(*model.Paragraph); ok {
					w.noteMark = mark
				} else {
					x.start("w:p")
					w.noteReference(x, mark, "")
					x.end("w:p")
				}
				if !w.blocks(x, n.Elements) {
					x.empty("w:p")
				}
			}
			x.end(item)
		}
	})
}

// mediaTarget is the media part name relative to word/. Media indices are
// per context, so the context prefixes every name outside the body.
func mediaTarget(ctx resource.Context, index int, ext string) string {
	if ctx == resource.Body() {
		return "media/image" + itoa(index) + "." + ext
	}
	return "media/" + ctx.String() + "_image" + itoa(index) + "." + ext
}
