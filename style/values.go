package style

import "fmt"

// Style is implemented by every style value object.
type Style interface {
	Kind() Kind
}

// Of returns a pointer to v. It exists so optional fields can be set from
// literals: style.Font{Bold: style.Of(true)}.
func Of[T any](v T) *T {
	return &v
}

// Alignment is horizontal alignment for paragraphs, tables and images.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

func (a Alignment) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// VerticalAlignment is the vertical alignment of cell content.
type VerticalAlignment string

const (
	VAlignTop    VerticalAlignment = "top"
	VAlignCenter VerticalAlignment = "center"
	VAlignBottom VerticalAlignment = "bottom"
)

func (v VerticalAlignment) Valid() bool {
	switch v {
	case VAlignTop, VAlignCenter, VAlignBottom:
		return true
	}
	return false
}

// Underline is the underline pattern of a run.
type Underline string

const (
	UnderlineNone   Underline = "none"
	UnderlineSingle Underline = "single"
	UnderlineDouble Underline = "double"
	UnderlineDotted Underline = "dotted"
	UnderlineDash   Underline = "dash"
	UnderlineWave   Underline = "wave"
)

func (u Underline) Valid() bool {
	switch u {
	case UnderlineNone, UnderlineSingle, UnderlineDouble, UnderlineDotted, UnderlineDash, UnderlineWave:
		return true
	}
	return false
}

// ListType distinguishes bulleted from numbered lists.
type ListType string

const (
	ListBullet ListType = "bullet"
	ListNumber ListType = "number"
)

func (l ListType) Valid() bool {
	return l == ListBullet || l == ListNumber
}

// NumberFormat is the numbering scheme of a list level.
type NumberFormat string

const (
	FormatDecimal     NumberFormat = "decimal"
	FormatLowerLetter NumberFormat = "lowerLetter"
	FormatUpperLetter NumberFormat = "upperLetter"
	FormatLowerRoman  NumberFormat = "lowerRoman"
	FormatUpperRoman  NumberFormat = "upperRoman"
	FormatBullet      NumberFormat = "bullet"
)

func (f NumberFormat) Valid() bool {
	switch f {
	case FormatDecimal, FormatLowerLetter, FormatUpperLetter, FormatLowerRoman, FormatUpperRoman, FormatBullet:
		return true
	}
	return false
}

// Wrapping is how text flows around an image.
type Wrapping string

const (
	WrapInline Wrapping = "inline"
	WrapSquare Wrapping = "square"
	WrapTight  Wrapping = "tight"
	WrapBehind Wrapping = "behind"
	WrapFront  Wrapping = "front"
)

func (w Wrapping) Valid() bool {
	switch w {
	case WrapInline, WrapSquare, WrapTight, WrapBehind, WrapFront:
		return true
	}
	return false
}

// VMerge marks a cell as the start or continuation of a vertical merge.
type VMerge string

const (
	VMergeRestart  VMerge = "restart"
	VMergeContinue VMerge = "continue"
)

func (v VMerge) Valid() bool {
	return v == VMergeRestart || v == VMergeContinue
}

// TableLayout selects fixed or content-driven column widths.
type TableLayout string

const (
	LayoutFixed   TableLayout = "fixed"
	LayoutAutofit TableLayout = "autofit"
)

func (l TableLayout) Valid() bool {
	return l == LayoutFixed || l == LayoutAutofit
}

// Font holds character formatting. Size is in points.
type Font struct {
	Name         *string    `style:"name"`
	Size         *float64   `style:"size"`
	Bold         *bool      `style:"bold"`
	Italic       *bool      `style:"italic"`
	Underline    *Underline `style:"underline"`
	Strike       *bool      `style:"strike"`
	DoubleStrike *bool      `style:"doubleStrike"`
	SmallCaps    *bool      `style:"smallCaps"`
	AllCaps      *bool      `style:"allCaps"`
	Superscript  *bool      `style:"superscript"`
	Subscript    *bool      `style:"subscript"`
	Color        *string    `style:"color"`
	Highlight    *string    `style:"highlight"`
	BgColor      *string    `style:"bgColor"`
}

func (*Font) Kind() Kind { return KindFont }

func (f *Font) validate() error {
	if f.Size != nil && *f.Size <= 0 {
		return fmt.Errorf("size must be positive, got %v", *f.Size)
	}
	if f.Underline != nil && !f.Underline.Valid() {
		return fmt.Errorf("unknown underline %q", *f.Underline)
	}
	if f.Superscript != nil && f.Subscript != nil && *f.Superscript && *f.Subscript {
		return fmt.Errorf("superscript and subscript are mutually exclusive")
	}
	return nil
}

// Paragraph holds paragraph formatting. Spacing and indents are in twips;
// LineHeight is a multiple of single spacing.
type Paragraph struct {
	Alignment       *Alignment `style:"alignment"`
	SpaceBefore     *int       `style:"spaceBefore"`
	SpaceAfter      *int       `style:"spaceAfter"`
	LineHeight      *float64   `style:"lineHeight"`
	IndentLeft      *int       `style:"indentLeft"`
	IndentRight     *int       `style:"indentRight"`
	IndentFirstLine *int       `style:"indentFirstLine"`
	IndentHanging   *int       `style:"indentHanging"`
	KeepNext        *bool      `style:"keepNext"`
	KeepLines       *bool      `style:"keepLines"`
	PageBreakBefore *bool      `style:"pageBreakBefore"`
	WidowControl    *bool      `style:"widowControl"`
	OutlineLevel    *int       `style:"outlineLevel"`
	Shading         *string    `style:"shading"`
}

func (*Paragraph) Kind() Kind { return KindParagraph }

func (p *Paragraph) validate() error {
	if p.Alignment != nil && !p.Alignment.Valid() {
		return fmt.Errorf("unknown alignment %q", *p.Alignment)
	}
	if p.LineHeight != nil && *p.LineHeight <= 0 {
		return fmt.Errorf("lineHeight must be positive, got %v", *p.LineHeight)
	}
	if p.OutlineLevel != nil && (*p.OutlineLevel < 0 || *p.OutlineLevel > 8) {
		return fmt.Errorf("outlineLevel must be 0-8, got %d", *p.OutlineLevel)
	}
	return nil
}

// Table holds table formatting. Width, border and margins are in twips.
type Table struct {
	Width       *int         `style:"width"`
	Alignment   *Alignment   `style:"alignment"`
	Layout      *TableLayout `style:"layout"`
	BorderSize  *int         `style:"borderSize"`
	BorderColor *string      `style:"borderColor"`
	CellMargin  *int         `style:"cellMargin"`
	BgColor     *string      `style:"bgColor"`
}

func (*Table) Kind() Kind { return KindTable }

func (t *Table) validate() error {
	if t.Alignment != nil && !t.Alignment.Valid() {
		return fmt.Errorf("unknown alignment %q", *t.Alignment)
	}
	if t.Layout != nil && !t.Layout.Valid() {
		return fmt.Errorf("unknown layout %q", *t.Layout)
	}
	return nonNegative("borderSize", t.BorderSize, "cellMargin", t.CellMargin, "width", t.Width)
}

// Row holds table row formatting. Height is in twips.
type Row struct {
	Height      *int  `style:"height"`
	ExactHeight *bool `style:"exactHeight"`
	Header      *bool `style:"header"`
	CantSplit   *bool `style:"cantSplit"`
}

func (*Row) Kind() Kind { return KindRow }

func (r *Row) validate() error {
	return nonNegative("height", r.Height)
}

// Cell holds table cell formatting. Width and border are in twips.
type Cell struct {
	Width         *int               `style:"width"`
	VAlign        *VerticalAlignment `style:"valign"`
	BgColor       *string            `style:"bgColor"`
	BorderSize    *int               `style:"borderSize"`
	BorderColor   *string            `style:"borderColor"`
	GridSpan      *int               `style:"gridSpan"`
	VMerge        *VMerge            `style:"vMerge"`
	TextDirection *string            `style:"textDirection"`
}

func (*Cell) Kind() Kind { return KindCell }

func (c *Cell) validate() error {
	if c.VAlign != nil && !c.VAlign.Valid() {
		return fmt.Errorf("unknown valign %q", *c.VAlign)
	}
	if c.VMerge != nil && !c.VMerge.Valid() {
		return fmt.Errorf("unknown vMerge %q", *c.VMerge)
	}
	if c.GridSpan != nil && *c.GridSpan < 1 {
		return fmt.Errorf("gridSpan must be at least 1, got %d", *c.GridSpan)
	}
	return nonNegative("width", c.Width, "borderSize", c.BorderSize)
}

// List holds list numbering. Indents are in twips; Text is the level text
// pattern ("%1." or a bullet character).
type List struct {
	Type          *ListType     `style:"type"`
	Format        *NumberFormat `style:"format"`
	Text          *string       `style:"text"`
	Start         *int          `style:"start"`
	IndentLeft    *int          `style:"indentLeft"`
	IndentHanging *int          `style:"indentHanging"`
}

func (*List) Kind() Kind { return KindList }

func (l *List) validate() error {
	if l.Type != nil && !l.Type.Valid() {
		return fmt.Errorf("unknown list type %q", *l.Type)
	}
	if l.Format != nil && !l.Format.Valid() {
		return fmt.Errorf("unknown number format %q", *l.Format)
	}
	return nonNegative("start", l.Start)
}

// Image holds image placement. Width, Height and Margin are in pixels.
type Image struct {
	Width     *int       `style:"width"`
	Height    *int       `style:"height"`
	Alignment *Alignment `style:"alignment"`
	Wrapping  *Wrapping  `style:"wrapping"`
	Margin    *int       `style:"margin"`
	AltText   *string    `style:"altText"`
}

func (*Image) Kind() Kind { return KindImage }

func (i *Image) validate() error {
	if i.Alignment != nil && !i.Alignment.Valid() {
		return fmt.Errorf("unknown alignment %q", *i.Alignment)
	}
	if i.Wrapping != nil && !i.Wrapping.Valid() {
		return fmt.Errorf("unknown wrapping %q", *i.Wrapping)
	}
	return nonNegative("width", i.Width, "height", i.Height, "margin", i.Margin)
}

// nonNegative takes alternating field names and values.
func nonNegative(pairs ...interface{}) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		v, _ := pairs[i+1].(*int)
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", pairs[i], *v)
		}
	}
	return nil
}

type validator interface {
	validate() error
}

// Validate checks enum and range constraints of s.
func Validate(s Style) error {
	if isNil(s) {
		return nil
	}
	if v, ok := s.(validator); ok {
		if err := v.validate(); err != nil {
			return &ValidationError{Op: "validate", Kind: s.Kind(), Err: err}
		}
	}
	return nil
}
