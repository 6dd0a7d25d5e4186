package docx

import (
	"strings"
	"unicode"

	"github.com/tsawler/folio/style"
)

// styleIDs maps registry style names to unique OOXML style ids.
type styleIDs struct {
	byKind map[style.Kind]map[string]string
	used   map[string]bool
}

// Kinds that become entries in styles.xml. Row, cell, list and image styles
// are resolved into direct formatting.
var exportedKinds = []style.Kind{style.KindParagraph, style.KindFont, style.KindTable}

func newStyleIDs(reg *style.Registry) *styleIDs {
	ids := &styleIDs{
		byKind: make(map[style.Kind]map[string]string),
		used:   map[string]bool{"normal": true},
	}
	for _, kind := range exportedKinds {
		ids.byKind[kind] = make(map[string]string)
		for _, e := range reg.Entries(kind) {
			ids.byKind[kind][e.Name] = ids.allocate(e.Name, kind)
		}
	}
	return ids
}

func (s *styleIDs) allocate(name string, kind style.Kind) string {
	base := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
	if base == "" {
		base = "Style"
	}
	taken := func(id string) bool { return s.used[strings.ToLower(id)] }
	id := base
	if taken(id) && kind == style.KindFont {
		id = base + "Char"
	}
	for n := 2; taken(id); n++ {
		id = base + itoa(n)
	}
	s.used[strings.ToLower(id)] = true
	return id
}

// id returns the style id of a registered name, or "" when the name is
// not registered for kind.
func (s *styleIDs) id(kind style.Kind, name string) string {
	if name == "" {
		return ""
	}
	return s.byKind[kind][name]
}

func (w *writer) stylesPart() ([]byte, error) {
	return w.part("w:styles", func(x *xmlWriter) {
		x.start("w:docDefaults")
		x.start("w:rPrDefault")
		x.start("w:rPr")
		x.fontProps(w.styles.ResolveFont(nil, ""))
		x.end("w:rPr")
		x.end("w:rPrDefault")
		x.start("w:pPrDefault")
		x.start("w:pPr")
		x.paragraphLayout(w.styles.ResolveParagraph(nil, ""))
		x.end("w:pPr")
		x.end("w:pPrDefault")
		x.end("w:docDefaults")

		// The default paragraph style stays empty so unstyled paragraphs get
		// only the document defaults. A registered "Normal" gets its own id.
		x.start("w:style", "w:type", "paragraph", "w:default", "1", "w:styleId", "Normal")
		x.val("w:name", "Normal")
		x.empty("w:qFormat")
		x.end("w:style")

		for _, e := range w.styles.Entries(style.KindParagraph) {
			w.paragraphStyle(x, e)
		}
		for _, e := range w.styles.Entries(style.KindFont) {
			w.characterStyle(x, e)
		}
		for _, e := range w.styles.Entries(style.KindTable) {
			w.tableStyle(x, e)
		}
	})
}

func (w *writer) styleHeader(x *xmlWriter, e style.Entry, typ, id string) {
	x.start("w:style", "w:type", typ, "w:styleId", id)
	x.val("w:name", styleName(e.Name, id))
	if based := w.ids.id(e.Kind, e.BasedOn); based != "" && based != id {
		x.val("w:basedOn", based)
	}
}

// styleName is the w:name written for an entry. Word matches built-in
// styles by name, so a user "Normal" is written under its id instead.
func styleName(name, id string) string {
	if strings.EqualFold(name, "Normal") && id != "Normal" {
		return id
	}
	return name
}

func (w *writer) paragraphStyle(x *xmlWriter, e style.Entry) {
	id := w.ids.id(style.KindParagraph, e.Name)
	w.styleHeader(x, e, "paragraph", id)
	x.val("w:next", "Normal")
	x.empty("w:qFormat")
	if p, ok := e.Value.(*style.Paragraph); ok && !style.IsEmpty(p) {
		x.start("w:pPr")
		x.onOff("w:keepNext", p.KeepNext)
		x.onOff("w:keepLines", p.KeepLines)
		x.onOff("w:pageBreakBefore", p.PageBreakBefore)
		x.onOff("w:widowControl", p.WidowControl)
		x.paragraphLayout(p)
		x.end("w:pPr")
	}
	if f, ok := e.Companion.(*style.Font); ok && !style.IsEmpty(f) {
		x.start("w:rPr")
		x.fontProps(f)
		x.end("w:rPr")
	}
	x.end("w:style")
}

func (w *writer) characterStyle(x *xmlWriter, e style.Entry) {
	id := w.ids.id(style.KindFont, e.Name)
	w.styleHeader(x, e, "character", id)
	if f, ok := e.Value.(*style.Font); ok && !style.IsEmpty(f) {
		x.start("w:rPr")
		x.fontProps(f)
		x.end("w:rPr")
	}
	x.end("w:style")
}

func (w *writer) tableStyle(x *xmlWriter, e style.Entry) {
	id := w.ids.id(style.KindTable, e.Name)
	w.styleHeader(x, e, "table", id)
	if f, ok := e.Companion.(*style.Font); ok && !style.IsEmpty(f) {
		x.start("w:rPr")
		x.fontProps(f)
		x.end("w:rPr")
	}
	if t, ok := e.Value.(*style.Table); ok {
		x.tableProps("", t)
	}
	x.end("w:style")
}

// listNumber returns the numbering instance of a list style, allocating one
// on first use.
func (w *writer) listNumber(listStyle string) int {
	if n, ok := w.listNums[listStyle]; ok {
		return n
	}
	w.lists = append(w.lists, listStyle)
	w.listNums[listStyle] = len(w.lists)
	return len(w.lists)
}

var bulletGlyphs = []string{"•", "◦", "▪"}

func (w *writer) numberingPart() ([]byte, error) {
	return w.part("w:numbering", func(x *xmlWriter) {
		for i, name := range w.lists {
			l := w.styles.ResolveList(nil, name)
			x.start("w:abstractNum", "w:abstractNumId", itoa(i))
			x.val("w:multiLevelType", "hybridMultilevel")
			for lvl := 0; lvl < 9; lvl++ {
				writeLevel(x, l, lvl)
			}
			x.end("w:abstractNum")
		}
		for i := range w.lists {
			x.start("w:num", "w:numId", itoa(i+1))
			x.val("w:abstractNumId", itoa(i))
			x.end("w:num")
		}
	})
}

func writeLevel(x *xmlWriter, l *style.List, lvl int) {
	start, left, hanging := 1, 720, 360
	if l.Start != nil {
		start = *l.Start
	}
	if l.IndentLeft != nil {
		left = *l.IndentLeft
	}
	if l.IndentHanging != nil {
		hanging = *l.IndentHanging
	}

	format := style.FormatBullet
	if l.Type != nil && *l.Type == style.ListNumber {
		format = style.FormatDecimal
	}
	if l.Format != nil {
		format = *l.Format
	}

	text := bulletGlyphs[lvl%len(bulletGlyphs)]
	if format != style.FormatBullet {
		text = "%" + itoa(lvl+1) + "."
	}
	if l.Text != nil {
		text = strings.ReplaceAll(*l.Text, "%1", "%"+itoa(lvl+1))
	}

	x.start("w:lvl", "w:ilvl", itoa(lvl))
	x.val("w:start", itoa(start))
	x.val("w:numFmt", string(format))
	x.val("w:lvlText", text)
	x.val("w:lvlJc", "left")
	x.start("w:pPr")
	x.empty("w:ind", "w:left", itoa(left*(lvl+1)), "w:hanging", itoa(hanging))
	x.end("w:pPr")
	x.end("w:lvl")
}
