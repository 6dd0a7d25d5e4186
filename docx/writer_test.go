package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/folio/htmldoc"
	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newDoc() *model.Document {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return model.New(model.WithLogger(l), model.WithID("doc-1"))
}

// readPackage writes doc and returns the archive's parts by name, plus the
// names in archive order.
func readPackage(t *testing.T, doc *model.Document) (map[string]string, []string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	parts := make(map[string]string)
	var names []string
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		parts[f.Name] = string(data)
		names = append(names, f.Name)
	}
	return parts, names
}

func parseRels(t *testing.T, data string) map[string]relationshipXML {
	t.Helper()
	var rels relationshipsXML
	require.NoError(t, xml.Unmarshal([]byte(data), &rels))
	out := make(map[string]relationshipXML)
	for _, r := range rels.Relationships {
		out[r.ID] = r
	}
	return out
}

func wellFormed(t *testing.T, name, data string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(data))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err, "part %s is not well-formed", name)
	}
}

// sampleDoc has a header image, a body image, a link, a footnote and a list.
func sampleDoc(t *testing.T) *model.Document {
	t.Helper()
	doc := newDoc()
	require.NoError(t, doc.Styles.Register("Body", style.KindParagraph,
		&style.Paragraph{SpaceAfter: style.Of(120)},
		&style.Font{Name: style.Of("Georgia")}))
	require.NoError(t, doc.Styles.Register("Strong", style.KindFont, &style.Font{Bold: style.Of(true)}, nil))

	sec := doc.AddSection(nil)
	h := sec.AddHeader(model.HeaderDefault)
	_, err := h.AddImage(resource.Data("logo.png", pngData(t, 4, 2)), nil, "")
	require.NoError(t, err)
	h.AddText("Header", nil, nil)

	sec.AddTitle("Report", 1)
	p := sec.AddParagraph("Body", nil)
	p.AddText("plain ", "", nil)
	p.AddText("bold", "Strong", nil)
	_, err = p.AddLink("https://example.com", "site", "", nil)
	require.NoError(t, err)
	p.AddFootnote().AddText("a note", nil, nil)

	_, err = sec.AddImage(resource.Data("pic.png", pngData(t, 10, 5)), &style.Image{Width: style.Of(20)}, "")
	require.NoError(t, err)

	sec.AddListItem("one", 0, "Bullets", nil, nil)
	sec.AddListItem("two", 1, "Bullets", nil, nil)

	row := sec.AddTable("", nil).AddRow("", nil)
	row.AddCell("", nil).AddText("a", nil, nil)
	row.AddCell("", nil)
	return doc
}

func TestWrite_Parts(t *testing.T) {
	parts, names := readPackage(t, sampleDoc(t))

	require.NotEmpty(t, names)
	assert.Equal(t, "[Content_Types].xml", names[0])
	for _, name := range []string{
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"word/document.xml",
		"word/styles.xml",
		"word/settings.xml",
		"word/numbering.xml",
		"word/footnotes.xml",
		"word/header1.xml",
		"word/_rels/document.xml.rels",
		"word/_rels/header1.xml.rels",
		"word/media/image1.png",
		"word/media/header1_image1.png",
	} {
		assert.Contains(t, parts, name)
	}
	assert.NotContains(t, parts, "word/endnotes.xml")

	for name, data := range parts {
		if strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".rels") {
			wellFormed(t, name, data)
		}
	}

	ct := parts["[Content_Types].xml"]
	assert.Contains(t, ct, `Extension="png" ContentType="image/png"`)
	assert.Contains(t, ct, `PartName="/word/header1.xml"`)
	assert.Contains(t, parts["docProps/core.xml"], "<dc:identifier>doc-1</dc:identifier>")
}

func TestWrite_RelationshipsMatchRegistry(t *testing.T) {
	doc := sampleDoc(t)
	parts, _ := readPackage(t, doc)

	header := parseRels(t, parts["word/_rels/header1.xml.rels"])
	require.Len(t, header, 1)
	assert.Equal(t, "media/header1_image1.png", header["rId1"].Target)
	assert.Equal(t, relTypeBase+"image", header["rId1"].Type)

	body := parseRels(t, parts["word/_rels/document.xml.rels"])
	assert.Equal(t, "header1.xml", body["rId1"].Target)
	assert.Equal(t, relTypeBase+"header", body["rId1"].Type)
	assert.Equal(t, "https://example.com", body["rId2"].Target)
	assert.Equal(t, "External", body["rId2"].TargetMode)
	assert.Equal(t, "media/image1.png", body["rId3"].Target)

	// Writer-owned parts come after the registry's highest id.
	max := doc.Resources.MaxRelID(resource.Body())
	assert.Equal(t, 3, max)
	owned := map[string]string{}
	for id, r := range body {
		owned[r.Target] = id
	}
	assert.Equal(t, "rId4", owned["footnotes.xml"])
	assert.Equal(t, "rId5", owned["styles.xml"])
	assert.Equal(t, "rId6", owned["settings.xml"])
	assert.Equal(t, "rId7", owned["numbering.xml"])

	for _, rel := range doc.Resources.Relationships(resource.Body()) {
		assert.Contains(t, body, relID(rel.ID))
	}

	document := parts["word/document.xml"]
	assert.Contains(t, document, `<w:headerReference w:type="default" r:id="rId1">`)
	assert.Contains(t, document, `<w:hyperlink r:id="rId2" w:history="1">`)
	assert.Contains(t, document, `<a:blip r:embed="rId3">`)
	assert.Contains(t, parts["word/header1.xml"], `<a:blip r:embed="rId1">`)
}

func TestWrite_ResolvedFormatting(t *testing.T) {
	parts, _ := readPackage(t, sampleDoc(t))
	document := parts["word/document.xml"]

	// Paragraph style reference plus its resolved spacing.
	assert.Contains(t, document, `<w:pStyle w:val="Body">`)
	assert.Contains(t, document, `<w:spacing w:after="120">`)
	// Companion font of the paragraph style reaches its runs.
	assert.Contains(t, document, `w:ascii="Georgia"`)
	// Character style reference and its bold property.
	assert.Contains(t, document, `<w:rStyle w:val="Strong">`)
	assert.Contains(t, document, "<w:b>")
	// Image width from the style, height scaled to keep the aspect ratio.
	assert.Contains(t, document, `<wp:extent cx="190500" cy="95250">`)
	// Lists reference their numbering instance.
	assert.Contains(t, document, `<w:ilvl w:val="1">`)
	assert.Contains(t, document, `<w:numId w:val="1">`)
	assert.Contains(t, document, `<w:footnoteReference w:id="1">`)

	styles := parts["word/styles.xml"]
	assert.Contains(t, styles, `w:styleId="Body"`)
	assert.Contains(t, styles, `w:type="character" w:styleId="Strong"`)
	// No default was set, so the built-in font fallback fills docDefaults.
	assert.Contains(t, styles, `w:ascii="Arial"`)
	assert.Contains(t, styles, `<w:sz w:val="20">`)

	notes := parts["word/footnotes.xml"]
	assert.Contains(t, notes, `w:type="separator" w:id="-1"`)
	assert.Contains(t, notes, `<w:footnote w:id="1">`)
	assert.Contains(t, notes, "<w:footnoteRef>")
	assert.Contains(t, notes, "a note")
}

func TestWrite_DefaultsReachDocDefaults(t *testing.T) {
	doc := newDoc()
	require.NoError(t, doc.Styles.SetDefault(style.KindFont, &style.Font{Name: style.Of("Calibri"), Size: style.Of(11.0)}))
	doc.AddSection(nil).AddText("x", nil, nil)

	parts, _ := readPackage(t, doc)
	assert.Contains(t, parts["word/styles.xml"], `w:ascii="Calibri"`)
	assert.Contains(t, parts["word/styles.xml"], `<w:sz w:val="22">`)
	assert.NotContains(t, parts, "word/numbering.xml")
}

func TestWrite_SectionsAndText(t *testing.T) {
	doc := newDoc()
	doc.AddSection(nil).AddText("first\tcol\nnext", nil, nil)
	doc.AddSection(&model.PageSetup{Width: 16838, Height: 11906, Orientation: model.Landscape}).
		AddFooter(model.HeaderEven).AddText("page", nil, nil)

	parts, _ := readPackage(t, doc)
	document := parts["word/document.xml"]

	assert.Equal(t, 2, strings.Count(document, "<w:sectPr>"))
	assert.Contains(t, document, `w:orient="landscape"`)
	assert.Contains(t, document, "<w:tab></w:tab>")
	assert.Contains(t, document, `<w:t xml:space="preserve">next</w:t>`)
	assert.Contains(t, parts, "word/footer1.xml")
	assert.Contains(t, parts["word/settings.xml"], "<w:evenAndOddHeaders>")
	// The footer allocated no relationships of its own.
	assert.NotContains(t, parts, "word/_rels/footer1.xml.rels")
}

func TestWrite_NotesKeepTheirIndices(t *testing.T) {
	doc := newDoc()
	p := doc.AddSection(nil).AddParagraph("", nil)
	p.AddText("see", "", nil)
	p.AddEndnote().AddText("first", nil, nil)
	p.AddEndnote().AddText("second", nil, nil)

	parts, _ := readPackage(t, doc)
	notes := parts["word/endnotes.xml"]
	first := strings.Index(notes, `<w:endnote w:id="1">`)
	second := strings.Index(notes, `<w:endnote w:id="2">`)
	require.True(t, first > 0 && second > first, notes)
	assert.Contains(t, notes[first:second], "first")
	assert.Contains(t, notes[second:], "second")
	assert.Contains(t, parts["word/document.xml"], `<w:endnoteReference w:id="2">`)
}

func TestWrite_FreezesDocument(t *testing.T) {
	doc := newDoc()
	doc.AddSection(nil)
	require.NoError(t, Write(io.Discard, doc))
	assert.True(t, doc.Frozen())
	assert.Panics(t, func() { doc.AddSection(nil) })
}

func TestWrite_RejectsBrokenTree(t *testing.T) {
	doc := newDoc()
	doc.AddSection(nil).AddParagraph("", nil).AddFootnote()
	doc.Footnotes.Clear(1)

	err := Write(io.Discard, doc)
	assert.ErrorIs(t, err, model.ErrInvariant)
}

func TestWriteFile(t *testing.T) {
	doc := newDoc()
	doc.AddSection(nil).AddText("hello", nil, nil)
	path := filepath.Join(t.TempDir(), "out.docx")

	require.NoError(t, WriteFile(path, doc))
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	assert.Equal(t, "[Content_Types].xml", zr.File[0].Name)
}

func TestStyleIDs(t *testing.T) {
	reg := style.NewRegistry()
	require.NoError(t, reg.Register("Quote Block", style.KindParagraph, &style.Paragraph{}, nil))
	require.NoError(t, reg.Register("Quote Block", style.KindFont, &style.Font{}, nil))
	require.NoError(t, reg.Register("QuoteBlock", style.KindTable, &style.Table{}, nil))

	ids := newStyleIDs(reg)
	assert.Equal(t, "QuoteBlock", ids.id(style.KindParagraph, "Quote Block"))
	assert.Equal(t, "QuoteBlockChar", ids.id(style.KindFont, "Quote Block"))
	assert.Equal(t, "QuoteBlock2", ids.id(style.KindTable, "QuoteBlock"))
	assert.Equal(t, "", ids.id(style.KindFont, "missing"))

	reg = style.NewRegistry()
	require.NoError(t, reg.Register("Normal", style.KindParagraph, &style.Paragraph{}, nil))
	require.NoError(t, reg.Register("normal", style.KindFont, &style.Font{}, nil))
	ids = newStyleIDs(reg)
	assert.Equal(t, "Normal2", ids.id(style.KindParagraph, "Normal"))
	assert.Equal(t, "normalChar", ids.id(style.KindFont, "normal"))
	assert.Equal(t, "Normal2", styleName("Normal", "Normal2"))
	assert.Equal(t, "Body", styleName("Body", "Body"))
}

func TestWrite_UserNormalStyleIsNotTheDefault(t *testing.T) {
	doc := newDoc()
	require.NoError(t, doc.Styles.Register("Normal", style.KindParagraph,
		&style.Paragraph{Alignment: style.Of(style.AlignCenter)}, &style.Font{Bold: style.Of(true)}))
	require.NoError(t, doc.Styles.Register("P1", style.KindParagraph,
		&style.Paragraph{SpaceAfter: style.Of(100)}, nil))
	sec := doc.AddSection(nil)
	sec.AddText("plain", nil, nil)
	sec.AddParagraph("P1", nil).AddText("styled", "", nil)

	parts, _ := readPackage(t, doc)
	styles := parts["word/styles.xml"]
	document := parts["word/document.xml"]

	// The default paragraph style is the empty built-in one.
	def := styles[strings.Index(styles, `w:default="1"`):]
	def = def[:strings.Index(def, "</w:style>")]
	assert.Contains(t, def, `w:styleId="Normal"`)
	assert.NotContains(t, def, "w:jc")
	// The registered entry keeps its formatting under its own id.
	assert.Contains(t, styles, `w:styleId="Normal2"`)
	assert.Contains(t, styles, `<w:jc w:val="center">`)
	assert.NotContains(t, styles, `<w:basedOn w:val="Normal">`)
	assert.NotContains(t, document, "w:jc")

	var html bytes.Buffer
	require.NoError(t, htmldoc.Write(&html, doc))
	assert.NotContains(t, html.String(), "text-align")
}

func TestMediaTarget(t *testing.T) {
	tests := []struct {
		ctx  resource.Context
		want string
	}{
		{resource.Body(), "media/image3.png"},
		{resource.Header(2), "media/header2_image3.png"},
		{resource.Footnotes(), "media/footnotes_image3.png"},
	}
	for _, tt := range tests {
		if got := mediaTarget(tt.ctx, 3, "png"); got != tt.want {
			t.Errorf("mediaTarget(%s) = %q, want %q", tt.ctx, got, tt.want)
		}
	}
}
