package htmldoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/folio/style"
)

// declarations accumulates CSS declarations in insertion order.
type declarations []string

func (d *declarations) add(prop, value string) {
	*d = append(*d, prop+": "+value)
}

func (d declarations) String() string { return strings.Join(d, "; ") }

// pt converts twips to a CSS point length.
func pt(twips int) string {
	return strconv.FormatFloat(float64(twips)/20, 'f', -1, 64) + "pt"
}

func cssColor(c string) string {
	c = strings.TrimPrefix(c, "#")
	if isHex(c) {
		return "#" + strings.ToLower(c)
	}
	return c
}

func isHex(c string) bool {
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

// fontCSS returns the declarations of f that differ from base.
func fontCSS(f, base *style.Font) string {
	var d declarations
	differs := func(a, b *string) bool { return a != nil && (b == nil || *a != *b) }
	if differs(f.Name, base.Name) {
		d.add("font-family", fmt.Sprintf("%q", *f.Name))
	}
	if f.Size != nil && (base.Size == nil || *f.Size != *base.Size) {
		d.add("font-size", strconv.FormatFloat(*f.Size, 'f', -1, 64)+"pt")
	}
	on := func(v *bool) bool { return v != nil && *v }
	if on(f.Bold) && !on(base.Bold) {
		d.add("font-weight", "bold")
	}
	if on(f.Italic) && !on(base.Italic) {
		d.add("font-style", "italic")
	}

	var deco []string
	if f.Underline != nil && *f.Underline != style.UnderlineNone {
		deco = append(deco, "underline")
		switch *f.Underline {
		case style.UnderlineDouble:
			deco = append(deco, "double")
		case style.UnderlineDotted:
			deco = append(deco, "dotted")
		case style.UnderlineDash:
			deco = append(deco, "dashed")
		case style.UnderlineWave:
			deco = append(deco, "wavy")
		}
	}
	if on(f.Strike) || on(f.DoubleStrike) {
		deco = append(deco, "line-through")
	}
	if len(deco) > 0 {
		d.add("text-decoration", strings.Join(deco, " "))
	}
	if on(f.SmallCaps) {
		d.add("font-variant", "small-caps")
	}
	if on(f.AllCaps) {
		d.add("text-transform", "uppercase")
	}
	switch {
	case on(f.Superscript):
		d.add("vertical-align", "super")
		d.add("font-size", "smaller")
	case on(f.Subscript):
		d.add("vertical-align", "sub")
		d.add("font-size", "smaller")
	}
	if differs(f.Color, base.Color) {
		d.add("color", cssColor(*f.Color))
	}
	switch {
	case f.BgColor != nil:
		d.add("background-color", cssColor(*f.BgColor))
	case f.Highlight != nil:
		d.add("background-color", cssColor(*f.Highlight))
	}
	return d.String()
}

// baseFontCSS returns the body declarations of the document font.
func baseFontCSS(f *style.Font) string {
	var d declarations
	if f.Name != nil {
		d.add("font-family", fmt.Sprintf("%q", *f.Name))
	}
	if f.Size != nil {
		d.add("font-size", strconv.FormatFloat(*f.Size, 'f', -1, 64)+"pt")
	}
	if f.Color != nil {
		d.add("color", cssColor(*f.Color))
	}
	return d.String()
}

func paragraphCSS(p *style.Paragraph) string {
	var d declarations
	if p.Alignment != nil {
		d.add("text-align", string(*p.Alignment))
	}
	if p.SpaceBefore != nil {
		d.add("margin-top", pt(*p.SpaceBefore))
	}
	if p.SpaceAfter != nil {
		d.add("margin-bottom", pt(*p.SpaceAfter))
	}
	if p.LineHeight != nil {
		d.add("line-height", strconv.FormatFloat(*p.LineHeight, 'f', -1, 64))
	}
	if p.IndentLeft != nil {
		d.add("margin-left", pt(*p.IndentLeft))
	}
	if p.IndentRight != nil {
		d.add("margin-right", pt(*p.IndentRight))
	}
	switch {
	case p.IndentHanging != nil:
		d.add("text-indent", pt(-*p.IndentHanging))
	case p.IndentFirstLine != nil:
		d.add("text-indent", pt(*p.IndentFirstLine))
	}
	if p.PageBreakBefore != nil && *p.PageBreakBefore {
		d.add("break-before", "page")
	}
	if p.KeepNext != nil && *p.KeepNext {
		d.add("break-after", "avoid")
	}
	if p.Shading != nil {
		d.add("background-color", cssColor(*p.Shading))
	}
	return d.String()
}

func border(size *int, color *string) string {
	if size == nil {
		return ""
	}
	if *size == 0 {
		return "none"
	}
	c := "black"
	if color != nil {
		c = cssColor(*color)
	}
	return pt(*size) + " solid " + c
}

func tableCSS(t *style.Table) string {
	var d declarations
	d.add("border-collapse", "collapse")
	if t.Width != nil {
		d.add("width", pt(*t.Width))
	}
	if t.Alignment != nil {
		switch *t.Alignment {
		case style.AlignCenter:
			d.add("margin-left", "auto")
			d.add("margin-right", "auto")
		case style.AlignRight:
			d.add("margin-left", "auto")
		}
	}
	if t.Layout != nil && *t.Layout == style.LayoutFixed {
		d.add("table-layout", "fixed")
	}
	if b := border(t.BorderSize, t.BorderColor); b != "" {
		d.add("border", b)
	}
	if t.BgColor != nil {
		d.add("background-color", cssColor(*t.BgColor))
	}
	return d.String()
}

// cellCSS styles a cell. Table borders and margins apply to every cell.
func cellCSS(c *style.Cell, t *style.Table) string {
	var d declarations
	if c.Width != nil {
		d.add("width", pt(*c.Width))
	}
	if c.VAlign != nil {
		align := string(*c.VAlign)
		if *c.VAlign == style.VAlignCenter {
			align = "middle"
		}
		d.add("vertical-align", align)
	}
	if b := border(c.BorderSize, c.BorderColor); b != "" {
		d.add("border", b)
	} else if b := border(t.BorderSize, t.BorderColor); b != "" {
		d.add("border", b)
	}
	if t.CellMargin != nil {
		d.add("padding", pt(*t.CellMargin))
	}
	if c.BgColor != nil {
		d.add("background-color", cssColor(*c.BgColor))
	}
	if c.TextDirection != nil && strings.HasPrefix(*c.TextDirection, "tb") {
		d.add("writing-mode", "vertical-rl")
	}
	return d.String()
}

func imageCSS(s *style.Image) string {
	var d declarations
	if s.Margin != nil {
		d.add("margin", strconv.Itoa(*s.Margin)+"px")
	}
	if s.Wrapping != nil {
		switch *s.Wrapping {
		case style.WrapSquare, style.WrapTight:
			float := "left"
			if s.Alignment != nil && *s.Alignment == style.AlignRight {
				float = "right"
			}
			d.add("float", float)
		case style.WrapBehind:
			d.add("position", "absolute")
			d.add("z-index", "-1")
		case style.WrapFront:
			d.add("position", "absolute")
		}
	}
	return d.String()
}
