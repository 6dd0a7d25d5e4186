package docx

import (
	"encoding/xml"
	"io"
	"strconv"
)

// XML namespaces used by WordprocessingML parts.
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

const xmlHeader = `version="1.0" encoding="UTF-8" standalone="yes"`

// partNamespaces are declared on the root of every WordprocessingML part.
var partNamespaces = []string{
	"xmlns:w", nsW,
	"xmlns:r", nsR,
	"xmlns:wp", nsWP,
	"xmlns:a", nsA,
	"xmlns:pic", nsPic,
}

// xmlWriter streams prefixed element tokens. The first error sticks and
// is returned by flush.
type xmlWriter struct {
	enc *xml.Encoder
	err error
}

func newXMLWriter(w io.Writer) *xmlWriter {
	x := &xmlWriter{enc: xml.NewEncoder(w)}
	x.token(xml.ProcInst{Target: "xml", Inst: []byte(xmlHeader)})
	return x
}

func (x *xmlWriter) token(t xml.Token) {
	if x.err != nil {
		return
	}
	x.err = x.enc.EncodeToken(t)
}

// attrs converts key, value pairs to attributes. Pairs with an empty value
// are dropped.
func attrs(kv []string) []xml.Attr {
	out := make([]xml.Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		out = append(out, xml.Attr{Name: xml.Name{Local: kv[i]}, Value: kv[i+1]})
	}
	return out
}

func (x *xmlWriter) start(name string, kv ...string) {
	x.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs(kv)})
}

func (x *xmlWriter) end(name string) {
	x.token(xml.EndElement{Name: xml.Name{Local: name}})
}

// empty writes an element with attributes and no content.
func (x *xmlWriter) empty(name string, kv ...string) {
	x.start(name, kv...)
	x.end(name)
}

// val writes <name w:val="v"/>.
func (x *xmlWriter) val(name, v string) {
	x.empty(name, "w:val", v)
}

func (x *xmlWriter) text(s string) {
	x.token(xml.CharData(s))
}

// textElement writes <name attrs>s</name>.
func (x *xmlWriter) textElement(name, s string, kv ...string) {
	x.start(name, kv...)
	x.text(s)
	x.end(name)
}

func (x *xmlWriter) flush() error {
	if x.err != nil {
		return x.err
	}
	return x.enc.Flush()
}

// marshalPart encodes v with the standard XML declaration.
func marshalPart(v any) ([]byte, error) {
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte("<?xml "+xmlHeader+"?>\n"), out...), nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func relID(n int) string { return "rId" + strconv.Itoa(n) }

// halfPoints converts a size in points to the half-point units of w:sz.
func halfPoints(pt float64) string {
	return strconv.Itoa(int(pt*2 + 0.5))
}

// emuPerPixel converts 96 dpi pixels to English Metric Units.
const emuPerPixel = 9525

// onOff writes a toggle property. Unset toggles are omitted; false is
// written explicitly so it can override an inherited style.
func (x *xmlWriter) onOff(name string, v *bool) {
	if v == nil {
		return
	}
	if *v {
		x.empty(name)
		return
	}
	x.val(name, "0")
}
