// Package rtf writes documents as Rich Text Format.
//
// Styles are resolved per element and written as direct formatting, so the
// output needs no style sheet. Footnotes and endnotes are written inline
// at their reference, which is where RTF keeps them. PNG and JPEG media
// are embedded as \pict groups; other image types fall back to their alt
// text.
package rtf

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/style"
)

// Units: RTF measures in twips; image styles are in pixels at 96 dpi.
const (
	twipsPerPixel    = 15
	defaultTextWidth = 9026
)

// Write renders doc as RTF. The document is frozen first.
func Write(out io.Writer, doc *model.Document) error {
	doc.Freeze()
	if err := doc.Verify(); err != nil {
		return fmt.Errorf("rtf: %w", err)
	}

	w := newWriter(doc)
	for i, sec := range doc.Sections {
		w.section(sec, i == 0)
	}

	var head bytes.Buffer
	head.WriteString(`{\rtf1\ansi\ansicpg1252\uc1\deff0\deftab720`)
	head.WriteString("\n")
	head.WriteString(w.fonts.String())
	head.WriteString(w.colors.String())
	head.WriteString(w.info())
	if doc.Endnotes.Count() > 0 {
		head.WriteString(`\fet2\aenddoc`)
	}
	if w.evenHeaders {
		head.WriteString(`\facingp`)
	}
	head.WriteString(`\viewkind4`)
	head.WriteString("\n")

	if _, err := out.Write(head.Bytes()); err != nil {
		return fmt.Errorf("rtf: %w", err)
	}
	if _, err := out.Write(w.body.Bytes()); err != nil {
		return fmt.Errorf("rtf: %w", err)
	}
	if _, err := io.WriteString(out, "}\n"); err != nil {
		return fmt.Errorf("rtf: %w", err)
	}
	w.log.WithFields(logrus.Fields{
		"sections": len(doc.Sections),
		"fonts":    len(w.fonts.names),
		"colors":   len(w.colors.rgb),
	}).Debug("rtf written")
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
	log    logrus.FieldLogger

	body   bytes.Buffer
	fonts  *fontTable
	colors *colorTable

	// counters holds the current number per list style and depth.
	counters    map[string][]int
	evenHeaders bool
}

func newWriter(doc *model.Document) *writer {
	w := &writer{
		doc:      doc,
		styles:   doc.Styles,
		log:      doc.Logger().WithField("writer", "rtf"),
		colors:   newColorTable(),
		counters: make(map[string][]int),
	}
	base := "Arial"
	if f := w.styles.ResolveFont(nil, ""); f.Name != nil {
		base = *f.Name
	}
	w.fonts = newFontTable(base)
	return w
}

func (w *writer) str(s string) { w.body.WriteString(s) }

func (w *writer) word(control string, n int) {
	w.body.WriteString(control)
	w.body.WriteString(strconv.Itoa(n))
}

func (w *writer) info() string {
	m := w.doc.Metadata
	var sb strings.Builder
	sb.WriteString(`{\info`)
	group := func(name, value string) {
		if value != "" {
			sb.WriteString(`{\` + name + " " + escape(value) + "}")
		}
	}
	group("title", m.Title)
	group("subject", m.Subject)
	group("author", m.Creator)
	group("keywords", strings.Join(m.Keywords, ", "))
	group("doccomm", m.Description)
	group("category", m.Category)
	group(`*\company`, m.Company)
	if !m.Created.IsZero() {
		t := m.Created
		fmt.Fprintf(&sb, `{\creatim\yr%d\mo%d\dy%d\hr%d\min%d}`, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
	}
	if !m.Modified.IsZero() {
		t := m.Modified
		fmt.Fprintf(&sb, `{\revtim\yr%d\mo%d\dy%d\hr%d\min%d}`, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
	}
	sb.WriteString(`{\*\userprops {\propname DocumentID}\proptype30{\staticval ` + escape(w.doc.ID) + "}}")
	sb.WriteString("}\n")
	return sb.String()
}

func (w *writer) section(sec *model.Section, first bool) {
	if !first {
		w.str(`\sect`)
	}
	s := sec.Setup
	w.str(`\sectd`)
	w.word(`\pgwsxn`, s.Width)
	w.word(`\pghsxn`, s.Height)
	w.word(`\marglsxn`, s.MarginLeft)
	w.word(`\margrsxn`, s.MarginRight)
	w.word(`\margtsxn`, s.MarginTop)
	w.word(`\margbsxn`, s.MarginBottom)
	if s.Orientation == model.Landscape {
		w.str(`\lndscpsxn`)
	}
	if s.Columns > 1 {
		w.word(`\cols`, s.Columns)
	}
	for _, h := range sec.Headers {
		if h.Kind == model.HeaderFirst {
			w.str(`\titlepg`)
			break
		}
	}
	w.str("\n")

	for _, h := range sec.Headers {
		w.headerFooter(h)
	}
	for _, f := range sec.Footers {
		w.headerFooter(f)
	}
	w.blocks(sec.Elements, false)
}

func (w *writer) headerFooter(h *model.HeaderFooter) {
	dest := "header"
	if h.Footer {
		dest = "footer"
	}
	switch h.Kind {
	case model.HeaderFirst:
		dest += "f"
	case model.HeaderEven:
		dest += "l"
		w.evenHeaders = true
	default:
		dest += "r"
	}
	w.str(`{\` + dest + "\n")
	w.blocks(h.Elements, false)
	w.str("}\n")
}

func (w *writer) layers(kind style.Kind, name string, inherited []style.Style) []style.Style {
	if c := w.styles.Companion(kind, name); c != nil {
		return append([]style.Style{c}, inherited...)
	}
	return inherited
}

// blocks writes block elements. In table cells the last paragraph ends
// with \cell instead of \par.
func (w *writer) blocks(els []model.Element, intbl bool, inherited ...style.Style) {
	for i, el := range els {
		end := `\par`
		if intbl && i == len(els)-1 {
			end = `\cell`
		}
		if _, ok := el.(*model.ListItem); !ok {
			w.resetLists(-1)
		}
		switch e := el.(type) {
		case *model.Paragraph:
			w.paragraph(e, nil, intbl, end, inherited)
		case *model.ListItem:
			w.paragraph(e.Paragraph, e, intbl, end, inherited)
		case *model.Table:
			if intbl {
				// Nested tables are flattened to tab-separated lines.
				w.str(`\pard\plain\intbl `)
				w.str(escape(strings.TrimRight(e.GetText(), "\n")))
				w.str(end + "\n")
				continue
			}
			w.table(e, inherited)
		case *model.Image:
			s := w.styles.ResolveImage(e.Style, e.StyleName)
			w.str(`\pard\plain`)
			if intbl {
				w.str(`\intbl`)
			}
			if s.Alignment != nil {
				w.str(alignment(*s.Alignment))
			}
			w.str(" ")
			w.image(e, s)
			w.str(end + "\n")
		case *model.PageBreak:
			w.str(`\pard\plain\page` + "\n")
			if intbl && i == len(els)-1 {
				w.str(`\pard\plain\intbl\cell` + "\n")
			}
		}
	}
	if intbl && len(els) == 0 {
		w.str(`\pard\plain\intbl\cell` + "\n")
	}
}

func alignment(a style.Alignment) string {
	switch a {
	case style.AlignCenter:
		return `\qc`
	case style.AlignRight:
		return `\qr`
	case style.AlignJustify:
		return `\qj`
	default:
		return `\ql`
	}
}

func (w *writer) paragraph(p *model.Paragraph, li *model.ListItem, intbl bool, end string, inherited []style.Style) {
	ps := w.styles.ResolveParagraph(p.Style, p.StyleName)
	w.str(`\pard\plain`)
	if intbl {
		w.str(`\intbl`)
	}
	if li != nil {
		ls := w.styles.ResolveList(nil, li.ListStyle)
		indent := 720 * (li.Depth + 1)
		if ls.IndentLeft != nil {
			indent = *ls.IndentLeft + 720*li.Depth
		}
		hanging := 360
		if ls.IndentHanging != nil {
			hanging = *ls.IndentHanging
		}
		if ps.IndentLeft == nil {
			ps.IndentLeft = &indent
		}
		if ps.IndentHanging == nil && ps.IndentFirstLine == nil {
			ps.IndentHanging = &hanging
		}
	}
	w.paragraphProps(ps)
	if p.Heading > 0 && ps.OutlineLevel == nil {
		w.word(`\outlinelevel`, min(p.Heading, 9)-1)
	}
	w.str(" ")

	layers := w.layers(style.KindParagraph, p.StyleName, inherited)
	if li != nil {
		w.str(`{\listtext`)
		w.fontProps(w.styles.ResolveFont(nil, "", layers...))
		w.str(" " + escape(w.listMarker(li)) + `\tab}`)
	}
	for _, child := range p.Children {
		w.inline(child, layers)
	}
	w.str(end + "\n")
}

func (w *writer) paragraphProps(p *style.Paragraph) {
	if p.Alignment != nil {
		w.str(alignment(*p.Alignment))
	}
	if p.SpaceBefore != nil {
		w.word(`\sb`, *p.SpaceBefore)
	}
	if p.SpaceAfter != nil {
		w.word(`\sa`, *p.SpaceAfter)
	}
	if p.LineHeight != nil {
		w.word(`\sl`, int(*p.LineHeight*240))
		w.str(`\slmult1`)
	}
	if p.IndentLeft != nil {
		w.word(`\li`, *p.IndentLeft)
	}
	if p.IndentRight != nil {
		w.word(`\ri`, *p.IndentRight)
	}
	switch {
	case p.IndentHanging != nil:
		w.word(`\fi`, -*p.IndentHanging)
	case p.IndentFirstLine != nil:
		w.word(`\fi`, *p.IndentFirstLine)
	}
	on := func(v *bool) bool { return v != nil && *v }
	if on(p.KeepNext) {
		w.str(`\keepn`)
	}
	if on(p.KeepLines) {
		w.str(`\keep`)
	}
	if on(p.PageBreakBefore) {
		w.str(`\pagebb`)
	}
	if p.WidowControl != nil {
		if *p.WidowControl {
			w.str(`\widctlpar`)
		} else {
			w.str(`\nowidctlpar`)
		}
	}
	if p.OutlineLevel != nil {
		w.word(`\outlinelevel`, *p.OutlineLevel)
	}
	if p.Shading != nil {
		if id, ok := w.colors.id(*p.Shading); ok {
			w.word(`\cbpat`, id)
		}
	}
}

// fontProps writes a complete run format; \plain resets everything at the
// start of each paragraph.
func (w *writer) fontProps(f *style.Font) {
	if f.Name != nil {
		w.word(`\f`, w.fonts.id(*f.Name))
	}
	if f.Size != nil {
		w.word(`\fs`, int(*f.Size*2+0.5))
	}
	on := func(v *bool) bool { return v != nil && *v }
	if on(f.Bold) {
		w.str(`\b`)
	}
	if on(f.Italic) {
		w.str(`\i`)
	}
	if f.Underline != nil {
		switch *f.Underline {
		case style.UnderlineSingle:
			w.str(`\ul`)
		case style.UnderlineDouble:
			w.str(`\uldb`)
		case style.UnderlineDotted:
			w.str(`\uld`)
		case style.UnderlineDash:
			w.str(`\uldash`)
		case style.UnderlineWave:
			w.str(`\ulwave`)
		}
	}
	if on(f.Strike) {
		w.str(`\strike`)
	}
	if on(f.DoubleStrike) {
		w.str(`\striked1`)
	}
	if on(f.SmallCaps) {
		w.str(`\scaps`)
	}
	if on(f.AllCaps) {
		w.str(`\caps`)
	}
	switch {
	case on(f.Superscript):
		w.str(`\super`)
	case on(f.Subscript):
		w.str(`\sub`)
	}
	if f.Color != nil {
		if id, ok := w.colors.id(*f.Color); ok {
			w.word(`\cf`, id)
		}
	}
	if f.Highlight != nil {
		if id, ok := w.colors.id(*f.Highlight); ok {
			w.word(`\highlight`, id)
		}
	}
	if f.BgColor != nil {
		if id, ok := w.colors.id(*f.BgColor); ok {
			w.word(`\chcbpat`, id)
		}
	}
}

func (w *writer) run(text, fontStyle string, font *style.Font, layers []style.Style) {
	w.str("{")
	w.fontProps(w.styles.ResolveFont(font, fontStyle, layers...))
	w.str(" " + escape(text) + "}")
}

var linkFont = &style.Font{Color: style.Of("0563C1"), Underline: style.Of(style.UnderlineSingle)}

func (w *writer) inline(el model.Element, layers []style.Style) {
	switch e := el.(type) {
	case *model.Text:
		w.run(e.Text, e.FontStyle, e.Font, layers)
	case *model.Link:
		w.str(`{\field{\*\fldinst{HYPERLINK "` + escape(e.URL) + `"}}{\fldrslt`)
		w.run(e.Text, e.FontStyle, e.Font, append([]style.Style{linkFont}, layers...))
		w.str("}}")
	case *model.Field:
		w.str(`{\field{\*\fldinst{ ` + string(e.Kind) + ` }}{\fldrslt`)
		w.run(e.Placeholder, e.FontStyle, e.Font, layers)
		w.str("}}")
	case *model.Break:
		switch e.Kind {
		case model.BreakPage:
			w.str(`\page `)
		case model.BreakColumn:
			w.str(`\column `)
		default:
			w.str(`\line `)
		}
	case *model.Image:
		w.image(e, w.styles.ResolveImage(e.Style, e.StyleName))
	case *model.NoteRef:
		w.note(e)
	}
}

// note writes the reference mark followed by the note body.
func (w *writer) note(ref *model.NoteRef) {
	notes := w.doc.Footnotes
	dest := `\footnote`
	if ref.Kind == model.NoteEndnote {
		notes = w.doc.Endnotes
		dest = `\footnote\ftnalt`
	}
	n := notes.Get(ref.Index)
	w.str(`{\super\chftn}`)
	if n == nil {
		return
	}
	// Lists inside the note number independently of the text around it.
	saved := w.counters
	w.counters = make(map[string][]int)
	w.str(`{` + dest + `\pard\plain{\super\chftn} `)
	w.blocks(n.Elements, false)
	w.str("}")
	w.counters = saved
}

func (w *writer) resetLists(depth int) {
	for name, c := range w.counters {
		if depth < 0 {
			delete(w.counters, name)
			continue
		}
		if len(c) > depth+1 {
			w.counters[name] = c[:depth+1]
		}
	}
}

// listMarker advances the counter of li's list level and returns its
// marker text.
func (w *writer) listMarker(li *model.ListItem) string {
	w.resetLists(li.Depth)
	ls := w.styles.ResolveList(nil, li.ListStyle)
	c := w.counters[li.ListStyle]
	for len(c) <= li.Depth {
		c = append(c, 0)
	}
	start := 1
	if ls.Start != nil {
		start = *ls.Start
	}
	if c[li.Depth] == 0 {
		c[li.Depth] = start
	} else {
		c[li.Depth]++
	}
	w.counters[li.ListStyle] = c

	format := style.FormatDecimal
	if ls.Format != nil {
		format = *ls.Format
	}
	if ls.Type != nil && *ls.Type == style.ListBullet && ls.Format == nil {
		format = style.FormatBullet
	}
	if format == style.FormatBullet {
		if ls.Text != nil {
			return *ls.Text
		}
		return bullets[li.Depth%len(bullets)]
	}
	number := formatNumber(c[li.Depth], format)
	if ls.Text != nil {
		return strings.ReplaceAll(*ls.Text, "%"+strconv.Itoa(li.Depth+1), number)
	}
	return number + "."
}

var bullets = []string{"•", "o", "▪"}

func formatNumber(n int, f style.NumberFormat) string {
	switch f {
	case style.FormatLowerLetter:
		return strings.ToLower(letters(n))
	case style.FormatUpperLetter:
		return letters(n)
	case style.FormatLowerRoman:
		return strings.ToLower(roman(n))
	case style.FormatUpperRoman:
		return roman(n)
	default:
		return strconv.Itoa(n)
	}
}

// letters returns A..Z, AA..ZZ, and so on.
func letters(n int) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func roman(n int) string {
	if n < 1 || n > 3999 {
		return strconv.Itoa(n)
	}
	vals := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	syms := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var sb strings.Builder
	for i, v := range vals {
		for n >= v {
			sb.WriteString(syms[i])
			n -= v
		}
	}
	return sb.String()
}

func (w *writer) table(t *model.Table, inherited []style.Style) {
	ts := w.styles.ResolveTable(t.Style, t.StyleName)
	layers := w.layers(style.KindTable, t.StyleName, inherited)

	cols := t.ColCount()
	if cols == 0 {
		return
	}
	width := defaultTextWidth
	if ts.Width != nil && *ts.Width > 0 {
		width = *ts.Width
	}
	colWidth := width / cols

	for _, r := range t.Rows {
		rs := w.styles.ResolveRow(r.Style, r.StyleName)
		w.str(`\trowd`)
		gap := 108
		if ts.CellMargin != nil {
			gap = *ts.CellMargin
		}
		w.word(`\trgaph`, gap)
		w.str(`\trleft0`)
		if ts.Alignment != nil {
			switch *ts.Alignment {
			case style.AlignCenter:
				w.str(`\trqc`)
			case style.AlignRight:
				w.str(`\trqr`)
			}
		}
		if rs.Height != nil {
			h := *rs.Height
			if rs.ExactHeight != nil && *rs.ExactHeight {
				h = -h
			}
			w.word(`\trrh`, h)
		}
		if rs.Header != nil && *rs.Header {
			w.str(`\trhdr`)
		}
		if rs.CantSplit != nil && *rs.CantSplit {
			w.str(`\trkeep`)
		}

		right := 0
		for _, c := range r.Cells {
			cs := w.styles.ResolveCell(c.Style, c.StyleName)
			w.cellProps(cs, ts)
			if cs.Width != nil && *cs.Width > 0 {
				right += *cs.Width
			} else {
				right += colWidth * c.Span()
			}
			w.word(`\cellx`, right)
		}
		w.str("\n")
		for _, c := range r.Cells {
			w.blocks(c.Elements, true, layers...)
		}
		w.str(`\row` + "\n")
	}
	w.str(`\pard\plain` + "\n")
}

func (w *writer) cellProps(c *style.Cell, t *style.Table) {
	if c.VMerge != nil {
		switch *c.VMerge {
		case style.VMergeRestart:
			w.str(`\clvmgf`)
		case style.VMergeContinue:
			w.str(`\clvmrg`)
		}
	}
	if c.VAlign != nil {
		switch *c.VAlign {
		case style.VAlignCenter:
			w.str(`\clvertalc`)
		case style.VAlignBottom:
			w.str(`\clvertalb`)
		default:
			w.str(`\clvertalt`)
		}
	}
	size, color := t.BorderSize, t.BorderColor
	if c.BorderSize != nil {
		size, color = c.BorderSize, c.BorderColor
	}
	if size != nil && *size > 0 {
		for _, edge := range []string{"t", "l", "b", "r"} {
			w.str(`\clbrdr` + edge + `\brdrs`)
			w.word(`\brdrw`, *size)
			if color != nil {
				if id, ok := w.colors.id(*color); ok {
					w.word(`\brdrcf`, id)
				}
			}
		}
	}
	bg := c.BgColor
	if bg == nil {
		bg = t.BgColor
	}
	if bg != nil {
		if id, ok := w.colors.id(*bg); ok {
			w.word(`\clcbpat`, id)
		}
	}
	if c.TextDirection != nil && strings.HasPrefix(*c.TextDirection, "tb") {
		w.str(`\cltxtbrl`)
	}
}

// image writes a \pict group, or the alt text when the media type has no
// RTF picture form.
func (w *writer) image(img *model.Image, s *style.Image) {
	rec, ok := w.doc.Resources.Media(img.Handle.Context, img.Handle.MediaIndex)
	var blip string
	switch rec.ContentType {
	case "image/png":
		blip = `\pngblip`
	case "image/jpeg":
		blip = `\jpegblip`
	}
	if !ok || blip == "" {
		w.log.WithField("type", rec.ContentType).Debug("image written as alt text")
		if s.AltText != nil {
			w.str(escape(*s.AltText))
		}
		return
	}

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

	w.str(`{\pict` + blip)
	w.word(`\picw`, img.Handle.Width)
	w.word(`\pich`, img.Handle.Height)
	w.word(`\picwgoal`, wpx*twipsPerPixel)
	w.word(`\pichgoal`, hpx*twipsPerPixel)
	w.str("\n")
	data := hex.EncodeToString(rec.Data)
	for len(data) > 128 {
		w.str(data[:128] + "\n")
		data = data[128:]
	}
	w.str(data + "}")
}
