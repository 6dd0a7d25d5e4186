package htmldoc

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

func sampleDoc(t *testing.T) *model.Document {
	t.Helper()
	doc := model.New(model.WithID("doc-1"))
	doc.Metadata.Title = "Report"
	doc.Metadata.Creator = "Ann"
	doc.Metadata.Keywords = []string{"a", "b"}

	require.NoError(t, doc.Styles.Register("Strong", style.KindFont, &style.Font{Bold: style.Of(true)}, nil))
	require.NoError(t, doc.AddTitleStyle(1, &style.Font{Size: style.Of(20.0)}, nil))
	require.NoError(t, doc.Styles.Register("Bullets", style.KindList, &style.List{Type: style.Of(style.ListBullet)}, nil))
	require.NoError(t, doc.Styles.Register("Steps", style.KindList, &style.List{
		Type:   style.Of(style.ListNumber),
		Format: style.Of(style.FormatLowerRoman),
		Start:  style.Of(2),
	}, nil))

	sec := doc.AddSection(nil)
	sec.AddHeader(model.HeaderDefault).AddText("Header text", nil, nil)
	sec.AddTitle("Title & more", 1)

	p := sec.AddParagraph("", &style.Paragraph{Alignment: style.Of(style.AlignCenter)})
	p.AddText("bold", "Strong", nil)
	p.AddText(" plain", "", nil)
	_, err := p.AddLink("https://example.com/?a=1&b=2", "link", "", nil)
	require.NoError(t, err)
	p.AddFootnote().AddText("A note", nil, nil)

	sec.AddListItem("one", 0, "Bullets", nil, nil)
	sec.AddListItem("sub", 1, "Steps", nil, nil)
	sec.AddListItem("two", 0, "Bullets", nil, nil)

	tbl := sec.AddTable("", &style.Table{BorderSize: style.Of(20)})
	head := tbl.AddRow("", &style.Row{Header: style.Of(true)})
	head.AddCell("", &style.Cell{GridSpan: style.Of(2)}).AddText("Head", nil, nil)
	r2 := tbl.AddRow("", nil)
	r2.AddCell("", &style.Cell{VMerge: style.Of(style.VMergeRestart)}).AddText("Tall", nil, nil)
	r2.AddCell("", nil).AddText("a", nil, nil)
	r3 := tbl.AddRow("", nil)
	r3.AddCell("", &style.Cell{VMerge: style.Of(style.VMergeContinue)})
	r3.AddCell("", nil).AddText("b", nil, nil)

	_, err = sec.AddImage(resource.Data("pic.png", pngBytes(t, 10, 5)), &style.Image{AltText: style.Of("pic")}, "")
	require.NoError(t, err)
	sec.AddFooter(model.HeaderDefault).AddText("Footer", nil, nil)
	return doc
}

func render(t *testing.T, doc *model.Document) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))
	_, err := html.Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return buf.String()
}

func TestWrite_Head(t *testing.T) {
	out := render(t, sampleDoc(t))

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<meta charset="utf-8"/>`)
	assert.Contains(t, out, `<title>Report</title>`)
	assert.Contains(t, out, `<meta name="document-id" content="doc-1"/>`)
	assert.Contains(t, out, `<meta name="author" content="Ann"/>`)
	assert.Contains(t, out, `<meta name="keywords" content="a, b"/>`)
	assert.NotContains(t, out, `name="description"`)
}

func TestWrite_ResolvedFormatting(t *testing.T) {
	out := render(t, sampleDoc(t))

	// Document defaults go on <body>; runs only carry differences.
	assert.Contains(t, out, `font-size: 10pt; color: #000000`)
	assert.Contains(t, out, `<h1 class="heading1" style="break-after: avoid"><span style="font-size: 20pt">Title &amp; more</span></h1>`)
	assert.Contains(t, out, `<p style="text-align: center"><span style="font-weight: bold">bold</span> plain`)
	assert.Contains(t, out, `<a href="https://example.com/?a=1&amp;b=2">link</a>`)
	assert.Contains(t, out, `<sup><a href="#fn1" id="fn1-ref" class="note-ref">1</a></sup>`)
}

func TestWrite_HeadingUsesCompanionFont(t *testing.T) {
	doc := model.New()
	require.NoError(t, doc.AddTitleStyle(2, &style.Font{Size: style.Of(16.0)}, nil))
	doc.AddSection(nil).AddTitle("Sub", 2)

	out := render(t, doc)
	assert.Contains(t, out, `<h2 class="heading2" style="break-after: avoid"><span style="font-size: 16pt">Sub</span></h2>`)
}

func TestWrite_Lists(t *testing.T) {
	out := render(t, sampleDoc(t))
	assert.Contains(t, out, `<ul><li>one<ol type="i" start="2"><li>sub</li></ol></li><li>two</li></ul>`)
}

func TestWrite_Tables(t *testing.T) {
	out := render(t, sampleDoc(t))

	assert.Contains(t, out, `<table style="border-collapse: collapse; border: 1pt solid black">`)
	assert.Contains(t, out, `<th style="border: 1pt solid black" colspan="2"><p>Head</p></th>`)
	assert.Contains(t, out, `<td style="border: 1pt solid black" rowspan="2"><p>Tall</p></td>`)
	// The continued cell is covered by the rowspan.
	assert.Contains(t, out, `<tr><td style="border: 1pt solid black"><p>b</p></td></tr>`)
}

func TestWrite_ImagesAreEmbedded(t *testing.T) {
	out := render(t, sampleDoc(t))

	assert.Contains(t, out, `<img src="data:image/png;base64,`)
	assert.Contains(t, out, `alt="pic" width="10" height="5"`)
}

func TestWrite_HeadersFootersAndNotes(t *testing.T) {
	out := render(t, sampleDoc(t))

	assert.Contains(t, out, `<header class="header" data-kind="default"><p>Header text</p></header>`)
	assert.Contains(t, out, `<footer class="footer" data-kind="default"><p>Footer</p></footer>`)
	assert.Contains(t, out, `<section class="footnotes"><hr/><ol><li id="fn1" value="1"><p>A note</p>`)
	assert.NotContains(t, out, `class="endnotes"`)
}

func TestWrite_RoundTripThroughReader(t *testing.T) {
	out := render(t, sampleDoc(t))

	doc, err := Read(strings.NewReader(out), ExtractOptions{NavigationExclusion: NavigationExclusionNone})
	require.NoError(t, err)
	assert.Equal(t, "Report", doc.Metadata.Title)
	assert.Equal(t, "Ann", doc.Metadata.Creator)

	text := doc.ExtractText()
	for _, want := range []string{"Title & more", "bold plain", "one", "sub", "Tall", "A note"} {
		assert.Contains(t, text, want)
	}
	assert.Len(t, doc.Resources.Records(resource.Body()), 1)
}

func TestWrite_FreezesDocument(t *testing.T) {
	doc := model.New()
	doc.AddSection(nil)
	require.NoError(t, Write(io.Discard, doc))
	assert.True(t, doc.Frozen())
	assert.Panics(t, func() { doc.AddSection(nil) })
}

func TestWrite_RejectsBrokenTree(t *testing.T) {
	doc := model.New()
	doc.AddSection(nil).AddParagraph("", nil).AddFootnote()
	doc.Footnotes.Clear(1)

	err := Write(io.Discard, doc)
	assert.ErrorIs(t, err, model.ErrInvariant)
}

func TestWriteFile(t *testing.T) {
	doc := model.New()
	doc.AddSection(nil).AddText("hello", nil, nil)
	path := filepath.Join(t.TempDir(), "out.html")

	require.NoError(t, WriteFile(path, doc))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<p>hello</p>")
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "list-bullet", className("List  Bullet"))
	assert.Equal(t, "", className(""))
}
