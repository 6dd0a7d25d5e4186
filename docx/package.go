package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

// Relationship and content types used in the package.
const (
	relTypeBase      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	relOfficeDoc     = relTypeBase + "officeDocument"
	relCoreProps     = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps = relTypeBase + "extended-properties"

	ctMain      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctSettings  = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"
	ctNumbering = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ctHeader    = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	ctFooter    = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	ctFootnotes = "application/vnd.openxmlformats-officedocument.wordprocessingml.footnotes+xml"
	ctEndnotes  = "application/vnd.openxmlformats-officedocument.wordprocessingml.endnotes+xml"
	ctCore      = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp       = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels      = "application/vnd.openxmlformats-package.relationships+xml"
)

// contentTypesXML represents [Content_Types].xml
type contentTypesXML struct {
	XMLName   xml.Name      `xml:"Types"`
	Xmlns     string        `xml:"xmlns,attr"`
	Defaults  []defaultXML  `xml:"Default"`
	Overrides []overrideXML `xml:"Override"`
}

type defaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Xmlns         string            `xml:"xmlns,attr"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"` // External or empty (internal)
}

// corePropertiesXML represents docProps/core.xml (Dublin Core metadata)
type corePropertiesXML struct {
	XMLName     xml.Name  `xml:"cp:coreProperties"`
	XmlnsCP     string    `xml:"xmlns:cp,attr"`
	XmlnsDC     string    `xml:"xmlns:dc,attr"`
	XmlnsDCT    string    `xml:"xmlns:dcterms,attr"`
	XmlnsXSI    string    `xml:"xmlns:xsi,attr"`
	Title       string    `xml:"dc:title,omitempty"`
	Subject     string    `xml:"dc:subject,omitempty"`
	Creator     string    `xml:"dc:creator,omitempty"`
	Keywords    string    `xml:"cp:keywords,omitempty"`
	Description string    `xml:"dc:description,omitempty"`
	Identifier  string    `xml:"dc:identifier"`
	Category    string    `xml:"cp:category,omitempty"`
	Created     w3cdtfXML `xml:"dcterms:created"`
	Modified    w3cdtfXML `xml:"dcterms:modified"`
}

type w3cdtfXML struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

// appPropertiesXML represents docProps/app.xml
type appPropertiesXML struct {
	XMLName     xml.Name `xml:"Properties"`
	Xmlns       string   `xml:"xmlns,attr"`
	Application string   `xml:"Application"`
	Company     string   `xml:"Company,omitempty"`
}

// writer holds the state of one serialization.
type writer struct {
	doc    *model.Document
	styles *style.Registry
	ids    *styleIDs
	log    logrus.FieldLogger

	lists    []string
	listNums map[string]int

	drawingID int
	noteMark  string
}

type zipPart struct {
	name string
	data []byte
}

// Write serializes doc as a DOCX package. The document is frozen first;
// building cannot continue afterwards.
func Write(out io.Writer, doc *model.Document) error {
	doc.Freeze()
	if err := doc.Verify(); err != nil {
		return fmt.Errorf("docx: %w", err)
	}

	w := &writer{
		doc:      doc,
		styles:   doc.Styles,
		ids:      newStyleIDs(doc.Styles),
		log:      doc.Logger(),
		listNums: make(map[string]int),
	}
	parts, err := w.build()
	if err != nil {
		return fmt.Errorf("docx: %w", err)
	}

	zw := zip.NewWriter(out)
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("docx: creating %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return fmt.Errorf("docx: writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("docx: %w", err)
	}

	w.log.WithField("parts", len(parts)).Debug("docx written")
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

func (w *writer) build() ([]zipPart, error) {
	res := w.doc.Resources
	var parts []zipPart
	types := &contentTypesXML{
		Xmlns: nsCT,
		Defaults: []defaultXML{
			{Extension: "rels", ContentType: ctRels},
			{Extension: "xml", ContentType: "application/xml"},
		},
	}
	override := func(name, ct string) {
		types.Overrides = append(types.Overrides, overrideXML{PartName: "/" + name, ContentType: ct})
	}
	add := func(name string, data []byte, err error) error {
		if err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
		parts = append(parts, zipPart{name: name, data: data})
		return nil
	}

	// Body first: it decides which list styles need numbering.
	data, err := w.documentPart()
	if err := add("word/document.xml", data, err); err != nil {
		return nil, err
	}
	override("word/document.xml", ctMain)

	for _, sec := range w.doc.Sections {
		for _, hf := range append(append([]*model.HeaderFooter{}, sec.Headers...), sec.Footers...) {
			name := "word/" + hf.PartName()
			data, err := w.headerFooterPart(hf)
			if err := add(name, data, err); err != nil {
				return nil, err
			}
			ct := ctHeader
			if hf.Footer {
				ct = ctFooter
			}
			override(name, ct)
		}
	}

	// Writer-owned body relationships follow the registry's.
	next := res.MaxRelID(resource.Body())
	var owned []relationshipXML
	own := func(typ, target string) {
		next++
		owned = append(owned, relationshipXML{ID: relID(next), Type: relTypeBase + typ, Target: target})
	}

	for _, n := range []struct {
		kind        model.NoteKind
		name, typ   string
		contentType string
		count       int
	}{
		{model.NoteFootnote, "footnotes.xml", "footnotes", ctFootnotes, w.doc.Footnotes.Count()},
		{model.NoteEndnote, "endnotes.xml", "endnotes", ctEndnotes, w.doc.Endnotes.Count()},
	} {
		if n.count == 0 {
			continue
		}
		data, err := w.notesPart(n.kind)
		if err := add("word/"+n.name, data, err); err != nil {
			return nil, err
		}
		override("word/"+n.name, n.contentType)
		own(n.typ, n.name)
	}

	data, err = w.stylesPart()
	if err := add("word/styles.xml", data, err); err != nil {
		return nil, err
	}
	override("word/styles.xml", ctStyles)
	own("styles", "styles.xml")

	data, err = w.settingsPart()
	if err := add("word/settings.xml", data, err); err != nil {
		return nil, err
	}
	override("word/settings.xml", ctSettings)
	own("settings", "settings.xml")

	if len(w.lists) > 0 {
		data, err := w.numberingPart()
		if err := add("word/numbering.xml", data, err); err != nil {
			return nil, err
		}
		override("word/numbering.xml", ctNumbering)
		own("numbering", "numbering.xml")
	}

	// One relationships part per context. The body always has one because
	// it carries the writer-owned parts.
	contexts := res.ContextsOf()
	if !containsContext(contexts, resource.Body()) {
		contexts = append([]resource.Context{resource.Body()}, contexts...)
	}
	extensions := make(map[string]string)
	for _, ctx := range contexts {
		rels := w.contextRels(ctx)
		if ctx == resource.Body() {
			rels = append(rels, owned...)
		}
		data, err := marshalPart(&relationshipsXML{Xmlns: nsRel, Relationships: rels})
		if err := add(relsPartName(ctx), data, err); err != nil {
			return nil, err
		}
		for _, rec := range res.Records(ctx) {
			extensions[rec.Extension] = rec.ContentType
			parts = append(parts, zipPart{
				name: "word/" + mediaTarget(ctx, rec.MediaIndex, rec.Extension),
				data: rec.Data,
			})
		}
	}
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		types.Defaults = append(types.Defaults, defaultXML{Extension: ext, ContentType: extensions[ext]})
	}

	data, err = marshalPart(w.coreProperties())
	if err := add("docProps/core.xml", data, err); err != nil {
		return nil, err
	}
	override("docProps/core.xml", ctCore)
	data, err = marshalPart(&appPropertiesXML{
		Xmlns:       "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties",
		Application: "folio",
		Company:     w.doc.Metadata.Company,
	})
	if err := add("docProps/app.xml", data, err); err != nil {
		return nil, err
	}
	override("docProps/app.xml", ctApp)

	data, err = marshalPart(&relationshipsXML{Xmlns: nsRel, Relationships: []relationshipXML{
		{ID: "rId1", Type: relOfficeDoc, Target: "word/document.xml"},
		{ID: "rId2", Type: relCoreProps, Target: "docProps/core.xml"},
		{ID: "rId3", Type: relExtendedProps, Target: "docProps/app.xml"},
	}})
	if err := add("_rels/.rels", data, err); err != nil {
		return nil, err
	}

	data, err = marshalPart(types)
	if err != nil {
		return nil, fmt.Errorf("rendering content types: %w", err)
	}
	// [Content_Types].xml goes first in the archive.
	return append([]zipPart{{name: "[Content_Types].xml", data: data}}, parts...), nil
}

// contextRels converts the registry relationships of ctx. Ids are written
// exactly as allocated.
func (w *writer) contextRels(ctx resource.Context) []relationshipXML {
	res := w.doc.Resources
	var out []relationshipXML
	for _, rel := range res.Relationships(ctx) {
		r := relationshipXML{ID: relID(rel.ID)}
		switch rel.Kind {
		case resource.KindImage, resource.KindObject:
			rec, _ := res.Media(ctx, rel.MediaIndex)
			r.Type = relTypeBase + "image"
			if rel.Kind == resource.KindObject {
				r.Type = relTypeBase + "oleObject"
			}
			r.Target = mediaTarget(ctx, rel.MediaIndex, rec.Extension)
		case resource.KindHyperlink:
			r.Type = relTypeBase + "hyperlink"
			r.Target = rel.Target
			r.TargetMode = "External"
		case resource.KindPart:
			r.Type = relTypeBase + "header"
			if strings.HasPrefix(rel.Target, "footer") {
				r.Type = relTypeBase + "footer"
			}
			r.Target = rel.Target
		default:
			continue
		}
		out = append(out, r)
	}
	return out
}

func relsPartName(ctx resource.Context) string {
	switch ctx.Scope {
	case resource.ScopeBody:
		return "word/_rels/document.xml.rels"
	default:
		return "word/_rels/" + ctx.String() + ".xml.rels"
	}
}

func containsContext(list []resource.Context, ctx resource.Context) bool {
	for _, c := range list {
		if c == ctx {
			return true
		}
	}
	return false
}

func (w *writer) coreProperties() *corePropertiesXML {
	m := w.doc.Metadata
	stamp := func(t time.Time) w3cdtfXML {
		return w3cdtfXML{Type: "dcterms:W3CDTF", Value: t.UTC().Format(time.RFC3339)}
	}
	return &corePropertiesXML{
		XmlnsCP:     "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		XmlnsDC:     "http://purl.org/dc/elements/1.1/",
		XmlnsDCT:    "http://purl.org/dc/terms/",
		XmlnsXSI:    "http://www.w3.org/2001/XMLSchema-instance",
		Title:       m.Title,
		Subject:     m.Subject,
		Creator:     m.Creator,
		Keywords:    strings.Join(m.Keywords, ", "),
		Description: m.Description,
		Identifier:  w.doc.ID,
		Category:    m.Category,
		Created:     stamp(m.Created),
		Modified:    stamp(m.Modified),
	}
}

func (w *writer) settingsPart() ([]byte, error) {
	evenHeaders := false
	for _, sec := range w.doc.Sections {
		if sec.Header(model.HeaderEven) != nil || sec.Footer(model.HeaderEven) != nil {
			evenHeaders = true
		}
	}
	return w.part("w:settings", func(x *xmlWriter) {
		if evenHeaders {
			x.empty("w:evenAndOddHeaders")
		}
		x.val("w:defaultTabStop", "720")
		x.val("w:characterSpacingControl", "doNotCompress")
		if w.doc.Footnotes.Count() > 0 {
			x.start("w:footnotePr")
			x.empty("w:footnote", "w:id", "-1")
			x.empty("w:footnote", "w:id", "0")
			x.end("w:footnotePr")
		}
		if w.doc.Endnotes.Count() > 0 {
			x.start("w:endnotePr")
			x.empty("w:endnote", "w:id", "-1")
			x.empty("w:endnote", "w:id", "0")
			x.end("w:endnotePr")
		}
	})
}
