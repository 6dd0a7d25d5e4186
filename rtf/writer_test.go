package rtf

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

func newDoc() *model.Document {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return model.New(model.WithLogger(l), model.WithID("doc-1"))
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func render(t *testing.T, doc *model.Document) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))
	return buf.String()
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`a{b}\c`, `a\{b\}\\c`},
		{"x\ny\tz\r", `x\line y\tab z`},
		{"Café", `Caf\'e9`},
		{"€5", `\'805`},
		{"中", `\u20013?`},
		{"한", `\u-10916?`},
		{"😀", `\u-10179?\u-8704?`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escape(tt.in))
		})
	}
}

func TestEscape_OutputIsSevenBit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		out := escape(s)
		for i := 0; i < len(out); i++ {
			if out[i] >= 0x80 {
				t.Fatalf("escape(%q) contains byte %#x", s, out[i])
			}
		}
		if strings.Count(out, "{") != strings.Count(out, `\{`) {
			t.Fatalf("escape(%q) left a bare brace: %q", s, out)
		}
	})
}

func TestWrite_Header(t *testing.T) {
	doc := newDoc()
	doc.Metadata.Title = "Report {draft}"
	doc.Metadata.Creator = "Ann"
	doc.AddSection(nil).AddText("x", nil, nil)

	out := render(t, doc)
	assert.True(t, strings.HasPrefix(out, `{\rtf1\ansi\ansicpg1252\uc1\deff0\deftab720`))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `{\fonttbl{\f0\fnil\fcharset0 Arial;}}`)
	assert.Contains(t, out, `{\colortbl;\red0\green0\blue0;}`)
	assert.Contains(t, out, `{\info{\title Report \{draft\}}{\author Ann}`)
	assert.Contains(t, out, `{\staticval doc-1}`)
	assert.Contains(t, out, `\sectd\pgwsxn11906\pghsxn16838\marglsxn1440`)
}

func TestWrite_ResolvedRuns(t *testing.T) {
	doc := newDoc()
	require.NoError(t, doc.Styles.Register("Body", style.KindParagraph,
		&style.Paragraph{Alignment: style.Of(style.AlignJustify), SpaceAfter: style.Of(120)},
		&style.Font{Name: style.Of("Georgia")}))
	require.NoError(t, doc.Styles.Register("Strong", style.KindFont, &style.Font{Bold: style.Of(true)}, nil))

	p := doc.AddSection(nil).AddParagraph("Body", nil)
	p.AddText("Café ", "", nil)
	p.AddText("bold", "Strong", nil)
	p.AddText(" red", "", &style.Font{Color: style.Of("FF0000"), Size: style.Of(12.0)})

	out := render(t, doc)
	assert.Contains(t, out, `{\f0\fnil\fcharset0 Arial;}{\f1\fnil\fcharset0 Georgia;}`)
	assert.Contains(t, out, `\pard\plain\qj\sa120 {\f1\fs20\cf1 Caf\'e9 }{\f1\fs20\b\cf1 bold}{\f1\fs24\cf2  red}\par`)
	assert.Contains(t, out, `\red255\green0\blue0;`)
}

func TestWrite_LinksFieldsAndBreaks(t *testing.T) {
	doc := newDoc()
	p := doc.AddSection(nil).AddParagraph("", nil)
	_, err := p.AddLink("https://example.com/a\\b", "site", "", nil)
	require.NoError(t, err)
	p.AddBreak(model.BreakLine)
	p.AddField(model.FieldPage, "1", nil)
	p.AddBreak(model.BreakPage)

	out := render(t, doc)
	assert.Contains(t, out, `{\field{\*\fldinst{HYPERLINK "https://example.com/a\\b"}}{\fldrslt{\f0\fs20\ul\cf1 site}}}`)
	assert.Contains(t, out, `\red5\green99\blue193;`)
	assert.Contains(t, out, `\line {\field{\*\fldinst{ PAGE }}{\fldrslt{\f0\fs20\cf2 1}}}\page \par`)
}

func TestWrite_NotesAreInline(t *testing.T) {
	doc := newDoc()
	p := doc.AddSection(nil).AddText("Body", nil, nil)
	p.AddFootnote().AddText("Foot", nil, nil)
	p.AddEndnote().AddText("End", nil, nil)

	out := render(t, doc)
	assert.Contains(t, out, `{\super\chftn}{\footnote\pard\plain{\super\chftn} \pard\plain {\f0\fs20\cf1 Foot}\par`)
	assert.Contains(t, out, `{\super\chftn}{\footnote\ftnalt\pard\plain{\super\chftn} \pard\plain {\f0\fs20\cf1 End}\par`)
	assert.Contains(t, out, `\fet2\aenddoc`)
}

func TestWrite_Lists(t *testing.T) {
	doc := newDoc()
	require.NoError(t, doc.Styles.Register("Bullets", style.KindList, &style.List{Type: style.Of(style.ListBullet)}, nil))
	require.NoError(t, doc.Styles.Register("Steps", style.KindList, &style.List{
		Type:   style.Of(style.ListNumber),
		Format: style.Of(style.FormatLowerRoman),
		Start:  style.Of(2),
	}, nil))

	sec := doc.AddSection(nil)
	sec.AddListItem("one", 0, "Bullets", nil, nil)
	sec.AddListItem("a", 1, "Steps", nil, nil)
	sec.AddListItem("b", 1, "Steps", nil, nil)
	sec.AddListItem("two", 0, "Bullets", nil, nil)
	sec.AddListItem("c", 1, "Steps", nil, nil)
	sec.AddText("break", nil, nil)
	sec.AddListItem("d", 0, "Steps", nil, nil)

	out := render(t, doc)
	assert.Contains(t, out, `\pard\plain\li720\fi-360 {\listtext\f0\fs20\cf1 \'95\tab}{\f0\fs20\cf1 one}\par`)
	assert.Contains(t, out, `{\listtext\f0\fs20\cf1 ii.\tab}{\f0\fs20\cf1 a}`)
	assert.Contains(t, out, `{\listtext\f0\fs20\cf1 iii.\tab}{\f0\fs20\cf1 b}`)
	// A shallower item restarts deeper levels.
	assert.Contains(t, out, `{\listtext\f0\fs20\cf1 ii.\tab}{\f0\fs20\cf1 c}`)
	// A non-list paragraph restarts numbering.
	assert.Contains(t, out, `{\listtext\f0\fs20\cf1 ii.\tab}{\f0\fs20\cf1 d}`)
}

func TestWrite_Tables(t *testing.T) {
	doc := newDoc()
	tbl := doc.AddSection(nil).AddTable("", &style.Table{BorderSize: style.Of(8), BorderColor: style.Of("00FF00")})
	head := tbl.AddRow("", &style.Row{Header: style.Of(true)})
	head.AddCell("", nil).AddText("A", nil, nil)
	head.AddCell("", nil).AddText("B", nil, nil)
	row := tbl.AddRow("", nil)
	row.AddCell("", &style.Cell{GridSpan: style.Of(2), VAlign: style.Of(style.VAlignCenter)})

	out := render(t, doc)
	assert.Contains(t, out, `\trowd\trgaph108\trleft0\trhdr`)
	assert.Contains(t, out, `\clbrdrt\brdrs\brdrw8\brdrcf1`)
	assert.Contains(t, out, `\cellx4513`)
	assert.Contains(t, out, `\cellx9026`)
	assert.Contains(t, out, `\pard\plain\intbl {\f0\fs20\cf2 A}\cell`)
	// An empty cell still closes.
	assert.Contains(t, out, `\clvertalc\clbrdrt`)
	assert.Contains(t, out, `\pard\plain\intbl\cell`+"\n"+`\row`)
}

func TestWrite_Images(t *testing.T) {
	doc := newDoc()
	sec := doc.AddSection(nil)
	_, err := sec.AddImage(resource.Data("pic.png", pngData(t, 10, 5)), &style.Image{Width: style.Of(20)}, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White}), nil))
	_, err = sec.AddImage(resource.Data("anim.gif", buf.Bytes()), &style.Image{AltText: style.Of("animation")}, "")
	require.NoError(t, err)

	out := render(t, doc)
	assert.Contains(t, out, `{\pict\pngblip\picw10\pich5\picwgoal300\pichgoal150`+"\n"+`89504e47`)
	assert.Contains(t, out, `\pard\plain animation\par`)
	assert.NotContains(t, out, `\gifblip`)
}

func TestWrite_SectionsHeadersFooters(t *testing.T) {
	doc := newDoc()
	doc.AddSection(nil).AddText("first", nil, nil)
	sec := doc.AddSection(&model.PageSetup{
		Width: 16838, Height: 11906, Orientation: model.Landscape,
		MarginTop: 720, MarginBottom: 720, MarginLeft: 720, MarginRight: 720, Columns: 2,
	})
	sec.AddHeader(model.HeaderFirst).AddText("Cover", nil, nil)
	sec.AddHeader(model.HeaderEven).AddText("Even", nil, nil)
	sec.AddFooter(model.HeaderDefault).AddText("Foot", nil, nil)
	sec.AddText("second", nil, nil)

	out := render(t, doc)
	assert.Contains(t, out, `\sect\sectd\pgwsxn16838\pghsxn11906\marglsxn720\margrsxn720\margtsxn720\margbsxn720\lndscpsxn\cols2\titlepg`)
	assert.Contains(t, out, `{\headerf`+"\n"+`\pard\plain {\f0\fs20\cf1 Cover}\par`)
	assert.Contains(t, out, `{\headerl`)
	assert.Contains(t, out, `{\footerr`)
	assert.Contains(t, out, `\facingp`)
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, `\sect\sectd`))
}

func TestWrite_FreezesDocument(t *testing.T) {
	doc := newDoc()
	doc.AddSection(nil)
	require.NoError(t, Write(io.Discard, doc))
	assert.True(t, doc.Frozen())
}

func TestWrite_RejectsBrokenTree(t *testing.T) {
	doc := newDoc()
	doc.AddSection(nil).AddParagraph("", nil).AddFootnote()
	doc.Footnotes.Clear(1)

	assert.ErrorIs(t, Write(io.Discard, doc), model.ErrInvariant)
}

func TestWriteFile(t *testing.T) {
	doc := newDoc()
	doc.AddSection(nil).AddText("hello", nil, nil)
	path := filepath.Join(t.TempDir(), "out.rtf")

	require.NoError(t, WriteFile(path, doc))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello}")
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n      int
		format style.NumberFormat
		want   string
	}{
		{3, style.FormatDecimal, "3"},
		{1, style.FormatUpperLetter, "A"},
		{27, style.FormatLowerLetter, "aa"},
		{4, style.FormatLowerRoman, "iv"},
		{1994, style.FormatUpperRoman, "MCMXCIV"},
		{0, style.FormatUpperRoman, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.n, tt.format), "%d %s", tt.n, tt.format)
	}
}
