package docx

import (
	"strings"

	"github.com/tsawler/folio/style"
)

func hexColor(c string) string {
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}

func isHexColor(c string) bool {
	c = strings.TrimPrefix(c, "#")
	if len(c) != 6 {
		return false
	}
	for _, r := range c {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func jc(a style.Alignment) string {
	if a == style.AlignJustify {
		return "both"
	}
	return string(a)
}

func (x *xmlWriter) shading(fill string) {
	x.empty("w:shd", "w:val", "clear", "w:color", "auto", "w:fill", hexColor(fill))
}

// borders writes a border set with every edge sharing size and color.
// Sizes are in twips; w:sz counts eighths of a point.
func (x *xmlWriter) borders(name string, size *int, color *string, edges ...string) {
	if size == nil {
		return
	}
	val, sz := "single", *size*2/5
	if *size == 0 {
		val = "nil"
	} else if sz < 2 {
		sz = 2
	}
	col := "auto"
	if color != nil {
		col = hexColor(*color)
	}
	x.start(name)
	for _, e := range edges {
		if val == "nil" {
			x.val("w:"+e, val)
			continue
		}
		x.empty("w:"+e, "w:val", val, "w:sz", itoa(sz), "w:space", "0", "w:color", col)
	}
	x.end(name)
}

// runProps writes <w:rPr>. styleID references a character style.
func (x *xmlWriter) runProps(styleID string, f *style.Font) {
	if styleID == "" && style.IsEmpty(f) {
		return
	}
	x.start("w:rPr")
	if styleID != "" {
		x.val("w:rStyle", styleID)
	}
	if f != nil {
		x.fontProps(f)
	}
	x.end("w:rPr")
}

func (x *xmlWriter) fontProps(f *style.Font) {
	if f.Name != nil {
		x.empty("w:rFonts", "w:ascii", *f.Name, "w:hAnsi", *f.Name, "w:cs", *f.Name, "w:eastAsia", *f.Name)
	}
	x.onOff("w:b", f.Bold)
	x.onOff("w:i", f.Italic)
	x.onOff("w:caps", f.AllCaps)
	x.onOff("w:smallCaps", f.SmallCaps)
	x.onOff("w:strike", f.Strike)
	x.onOff("w:dstrike", f.DoubleStrike)
	if f.Color != nil {
		x.val("w:color", hexColor(*f.Color))
	}
	if f.Size != nil {
		x.val("w:sz", halfPoints(*f.Size))
		x.val("w:szCs", halfPoints(*f.Size))
	}
	if f.Highlight != nil && *f.Highlight != "" && !isHexColor(*f.Highlight) {
		x.val("w:highlight", *f.Highlight)
	}
	if f.Underline != nil {
		x.val("w:u", string(*f.Underline))
	}
	switch {
	case f.BgColor != nil:
		x.shading(*f.BgColor)
	case f.Highlight != nil && isHexColor(*f.Highlight):
		x.shading(*f.Highlight)
	}
	switch {
	case f.Superscript != nil && *f.Superscript:
		x.val("w:vertAlign", "superscript")
	case f.Subscript != nil && *f.Subscript:
		x.val("w:vertAlign", "subscript")
	}
}

// numbering reference of a list paragraph.
type numRef struct {
	numID int
	level int
}

// paragraphProps writes <w:pPr>. sectPr, when set, is written last.
func (x *xmlWriter) paragraphProps(styleID string, p *style.Paragraph, num *numRef, sectPr func()) {
	if styleID == "" && style.IsEmpty(p) && num == nil && sectPr == nil {
		return
	}
	x.start("w:pPr")
	if styleID != "" {
		x.val("w:pStyle", styleID)
	}
	if p != nil {
		x.onOff("w:keepNext", p.KeepNext)
		x.onOff("w:keepLines", p.KeepLines)
		x.onOff("w:pageBreakBefore", p.PageBreakBefore)
		x.onOff("w:widowControl", p.WidowControl)
	}
	if num != nil {
		x.start("w:numPr")
		x.val("w:ilvl", itoa(num.level))
		x.val("w:numId", itoa(num.numID))
		x.end("w:numPr")
	}
	if p != nil {
		x.paragraphLayout(p)
	}
	if sectPr != nil {
		sectPr()
	}
	x.end("w:pPr")
}

func (x *xmlWriter) paragraphLayout(p *style.Paragraph) {
	if p.Shading != nil {
		x.shading(*p.Shading)
	}
	if p.SpaceBefore != nil || p.SpaceAfter != nil || p.LineHeight != nil {
		var kv []string
		if p.SpaceBefore != nil {
			kv = append(kv, "w:before", itoa(*p.SpaceBefore))
		}
		if p.SpaceAfter != nil {
			kv = append(kv, "w:after", itoa(*p.SpaceAfter))
		}
		if p.LineHeight != nil {
			kv = append(kv, "w:line", itoa(int(*p.LineHeight*240+0.5)), "w:lineRule", "auto")
		}
		x.empty("w:spacing", kv...)
	}
	if p.IndentLeft != nil || p.IndentRight != nil || p.IndentFirstLine != nil || p.IndentHanging != nil {
		var kv []string
		if p.IndentLeft != nil {
			kv = append(kv, "w:left", itoa(*p.IndentLeft))
		}
		if p.IndentRight != nil {
			kv = append(kv, "w:right", itoa(*p.IndentRight))
		}
		if p.IndentHanging != nil {
			kv = append(kv, "w:hanging", itoa(*p.IndentHanging))
		} else if p.IndentFirstLine != nil {
			kv = append(kv, "w:firstLine", itoa(*p.IndentFirstLine))
		}
		x.empty("w:ind", kv...)
	}
	if p.Alignment != nil {
		x.val("w:jc", jc(*p.Alignment))
	}
	if p.OutlineLevel != nil {
		x.val("w:outlineLvl", itoa(*p.OutlineLevel))
	}
}

// tableProps writes <w:tblPr>.
func (x *xmlWriter) tableProps(styleID string, t *style.Table) {
	x.start("w:tblPr")
	if styleID != "" {
		x.val("w:tblStyle", styleID)
	}
	if t.Width != nil {
		x.empty("w:tblW", "w:w", itoa(*t.Width), "w:type", "dxa")
	} else {
		x.empty("w:tblW", "w:w", "0", "w:type", "auto")
	}
	if t.Alignment != nil {
		x.val("w:jc", jc(*t.Alignment))
	}
	x.borders("w:tblBorders", t.BorderSize, t.BorderColor, "top", "left", "bottom", "right", "insideH", "insideV")
	if t.BgColor != nil {
		x.shading(*t.BgColor)
	}
	if t.Layout != nil {
		x.empty("w:tblLayout", "w:type", string(*t.Layout))
	}
	if t.CellMargin != nil {
		m := itoa(*t.CellMargin)
		x.start("w:tblCellMar")
		for _, edge := range []string{"w:top", "w:left", "w:bottom", "w:right"} {
			x.empty(edge, "w:w", m, "w:type", "dxa")
		}
		x.end("w:tblCellMar")
	}
	x.end("w:tblPr")
}

func (x *xmlWriter) rowProps(r *style.Row) {
	if style.IsEmpty(r) {
		return
	}
	x.start("w:trPr")
	x.onOff("w:cantSplit", r.CantSplit)
	if r.Height != nil {
		rule := "atLeast"
		if r.ExactHeight != nil && *r.ExactHeight {
			rule = "exact"
		}
		x.empty("w:trHeight", "w:val", itoa(*r.Height), "w:hRule", rule)
	}
	x.onOff("w:tblHeader", r.Header)
	x.end("w:trPr")
}

func (x *xmlWriter) cellProps(c *style.Cell) {
	x.start("w:tcPr")
	if c.Width != nil {
		x.empty("w:tcW", "w:w", itoa(*c.Width), "w:type", "dxa")
	}
	if c.GridSpan != nil && *c.GridSpan > 1 {
		x.val("w:gridSpan", itoa(*c.GridSpan))
	}
	if c.VMerge != nil {
		if *c.VMerge == style.VMergeRestart {
			x.val("w:vMerge", "restart")
		} else {
			x.empty("w:vMerge")
		}
	}
	x.borders("w:tcBorders", c.BorderSize, c.BorderColor, "top", "left", "bottom", "right")
	if c.BgColor != nil {
		x.shading(*c.BgColor)
	}
	if c.TextDirection != nil {
		x.val("w:textDirection", *c.TextDirection)
	}
	if c.VAlign != nil {
		x.val("w:vAlign", string(*c.VAlign))
	}
	x.end("w:tcPr")
}
