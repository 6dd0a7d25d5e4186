package rtf

import (
	"strconv"
	"strings"
)

// fontTable assigns \fN indices in first-use order.
type fontTable struct {
	names []string
	index map[string]int
}

func newFontTable(base string) *fontTable {
	t := &fontTable{index: make(map[string]int)}
	t.id(base)
	return t
}

func (t *fontTable) id(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	return len(t.names) - 1
}

func (t *fontTable) String() string {
	var sb strings.Builder
	sb.WriteString(`{\fonttbl`)
	for i, name := range t.names {
		sb.WriteString(`{\f`)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(`\fnil\fcharset0 `)
		sb.WriteString(escape(name))
		sb.WriteString(";}")
	}
	sb.WriteString("}\n")
	return sb.String()
}

// highlightColors maps the named highlight colors to RGB.
var highlightColors = map[string]string{
	"black":       "000000",
	"blue":        "0000FF",
	"cyan":        "00FFFF",
	"green":       "00FF00",
	"magenta":     "FF00FF",
	"red":         "FF0000",
	"yellow":      "FFFF00",
	"white":       "FFFFFF",
	"darkBlue":    "000080",
	"darkCyan":    "008080",
	"darkGreen":   "008000",
	"darkMagenta": "800080",
	"darkRed":     "800000",
	"darkYellow":  "808000",
	"darkGray":    "808080",
	"lightGray":   "C0C0C0",
}

// colorTable assigns \cfN indices. Index 0 is the automatic color.
type colorTable struct {
	rgb   []string
	index map[string]int
}

func newColorTable() *colorTable {
	return &colorTable{index: make(map[string]int)}
}

// id returns the index of a hex or named color, and false for values it
// cannot parse.
func (t *colorTable) id(c string) (int, bool) {
	c = strings.TrimPrefix(c, "#")
	if named, ok := highlightColors[c]; ok {
		c = named
	}
	if !isHex(c) {
		return 0, false
	}
	c = strings.ToUpper(c)
	if i, ok := t.index[c]; ok {
		return i, true
	}
	t.rgb = append(t.rgb, c)
	t.index[c] = len(t.rgb)
	return len(t.rgb), true
}

func (t *colorTable) String() string {
	var sb strings.Builder
	sb.WriteString(`{\colortbl;`)
	for _, c := range t.rgb {
		r, _ := strconv.ParseUint(c[0:2], 16, 8)
		g, _ := strconv.ParseUint(c[2:4], 16, 8)
		b, _ := strconv.ParseUint(c[4:6], 16, 8)
		sb.WriteString(`\red` + strconv.FormatUint(r, 10))
		sb.WriteString(`\green` + strconv.FormatUint(g, 10))
		sb.WriteString(`\blue` + strconv.FormatUint(b, 10) + ";")
	}
	sb.WriteString("}\n")
	return sb.String()
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
