package style

// Kind identifies a style family.
type Kind int

const (
	KindUnknown Kind = iota
	KindFont
	KindParagraph
	KindTable
	KindCell
	KindRow
	KindList
	KindImage
)

// Kinds lists every valid style family in a stable order.
var Kinds = []Kind{KindFont, KindParagraph, KindTable, KindCell, KindRow, KindList, KindImage}

func (k Kind) String() string {
	switch k {
	case KindFont:
		return "font"
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	case KindCell:
		return "cell"
	case KindRow:
		return "row"
	case KindList:
		return "list"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the known style families.
func (k Kind) Valid() bool {
	return k >= KindFont && k <= KindImage
}

// ParseKind returns the Kind named by s, or KindUnknown.
func ParseKind(s string) Kind {
	for _, k := range Kinds {
		if k.String() == s {
			return k
		}
	}
	return KindUnknown
}

// newOf returns an empty value object for kind, or nil for an invalid kind.
func newOf(kind Kind) Style {
	switch kind {
	case KindFont:
		return &Font{}
	case KindParagraph:
		return &Paragraph{}
	case KindTable:
		return &Table{}
	case KindCell:
		return &Cell{}
	case KindRow:
		return &Row{}
	case KindList:
		return &List{}
	case KindImage:
		return &Image{}
	default:
		return nil
	}
}

// Fallback returns the built-in style used when a kind has no default.
// Only fonts carry concrete values; every other family falls back to an
// all-unset record.
func Fallback(kind Kind) Style {
	if kind == KindFont {
		return &Font{
			Name:  Of("Arial"),
			Size:  Of(10.0),
			Color: Of("000000"),
		}
	}
	return newOf(kind)
}
