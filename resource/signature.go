package resource

import "bytes"

// Kind classifies what a relationship points at.
type Kind int

const (
	KindUnknown Kind = iota
	// KindImage is embedded picture media.
	KindImage
	// KindObject is an embedded OLE object.
	KindObject
	// KindHyperlink is an external link target.
	KindHyperlink
	// KindPart is another part of the same package, such as a header.
	KindPart
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindObject:
		return "object"
	case KindHyperlink:
		return "hyperlink"
	case KindPart:
		return "part"
	default:
		return "unknown"
	}
}

// IsMedia reports whether k is stored as embedded bytes.
func (k Kind) IsMedia() bool {
	return k == KindImage || k == KindObject
}

// Magic is a byte pattern expected at Offset.
type Magic struct {
	Offset int
	Bytes  []byte
}

// Signature maps content magic to a file extension and content type.
// Every Magic must match.
type Signature struct {
	Extension   string
	ContentType string
	Kind        Kind
	Magic       []Magic
}

// Matches reports whether data carries this signature.
func (s Signature) Matches(data []byte) bool {
	if len(s.Magic) == 0 {
		return false
	}
	for _, m := range s.Magic {
		end := m.Offset + len(m.Bytes)
		if m.Offset < 0 || end > len(data) {
			return false
		}
		if !bytes.Equal(data[m.Offset:end], m.Bytes) {
			return false
		}
	}
	return true
}

// Table is an ordered list of signatures; the first match wins.
type Table []Signature

// Match returns the first signature matching data.
func (t Table) Match(data []byte) (Signature, bool) {
	for _, s := range t {
		if s.Matches(data) {
			return s, true
		}
	}
	return Signature{}, false
}

// With returns a copy of t with sigs prepended, so they take priority.
func (t Table) With(sigs ...Signature) Table {
	out := make(Table, 0, len(t)+len(sigs))
	out = append(out, sigs...)
	return append(out, t...)
}

func magic(b ...byte) []Magic {
	return []Magic{{Bytes: b}}
}

// DefaultTable returns the built-in signature table.
func DefaultTable() Table {
	return Table{
		{Extension: "png", ContentType: "image/png", Kind: KindImage,
			Magic: magic(0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n')},
		{Extension: "jpg", ContentType: "image/jpeg", Kind: KindImage,
			Magic: magic(0xff, 0xd8, 0xff)},
		{Extension: "gif", ContentType: "image/gif", Kind: KindImage,
			Magic: magic('G', 'I', 'F', '8', '7', 'a')},
		{Extension: "gif", ContentType: "image/gif", Kind: KindImage,
			Magic: magic('G', 'I', 'F', '8', '9', 'a')},
		{Extension: "bmp", ContentType: "image/bmp", Kind: KindImage,
			Magic: magic('B', 'M')},
		{Extension: "tiff", ContentType: "image/tiff", Kind: KindImage,
			Magic: magic('I', 'I', 0x2a, 0x00)},
		{Extension: "tiff", ContentType: "image/tiff", Kind: KindImage,
			Magic: magic('M', 'M', 0x00, 0x2a)},
		{Extension: "webp", ContentType: "image/webp", Kind: KindImage,
			Magic: []Magic{{Bytes: []byte("RIFF")}, {Offset: 8, Bytes: []byte("WEBP")}}},
		{Extension: "emf", ContentType: "image/x-emf", Kind: KindImage,
			Magic: []Magic{{Bytes: []byte{0x01, 0x00, 0x00, 0x00}}, {Offset: 40, Bytes: []byte(" EMF")}}},
		{Extension: "wmf", ContentType: "image/x-wmf", Kind: KindImage,
			Magic: magic(0xd7, 0xcd, 0xc6, 0x9a)},
		{Extension: "bin", ContentType: "application/vnd.openxmlformats-officedocument.oleObject", Kind: KindObject,
			Magic: magic(0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1)},
	}
}
