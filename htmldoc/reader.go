// Package htmldoc reads HTML into documents and writes documents as HTML.
package htmldoc

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/net/html"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

// Style names registered by the reader when it first needs them.
const (
	StyleQuote      = "Quote"
	StyleCode       = "Code"
	StyleListBullet = "List Bullet"
	StyleListNumber = "List Number"
)

// Reader provides access to HTML document content.
type Reader struct {
	doc      *html.Node
	title    string
	metadata map[string]string
	baseDir  string
	fs       afero.Fs
}

// Open opens an HTML file on fs (the OS filesystem when nil). Relative
// image paths resolve against the file's directory unless
// ExtractOptions.BaseDir is set.
func Open(filename string, fs afero.Fs) (*Reader, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	r, err := OpenReader(f)
	if err != nil {
		return nil, err
	}
	r.baseDir = filepath.Dir(filename)
	r.fs = fs
	return r, nil
}

// OpenReader parses HTML from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	reader := &Reader{
		doc:      doc,
		metadata: make(map[string]string),
	}
	reader.extractHead(doc)
	return reader, nil
}

// Read parses HTML and builds a document from it.
func Read(r io.Reader, opts ExtractOptions) (*model.Document, error) {
	reader, err := OpenReader(r)
	if err != nil {
		return nil, err
	}
	return reader.DocumentWithOptions(opts)
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	return nil
}

// Title returns the content of <title>.
func (r *Reader) Title() string { return r.title }

// extractHead extracts title and meta tags from the head element.
func (r *Reader) extractHead(n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "head" {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "title":
				r.title = getTextContent(c)
			case "meta":
				name := attrValue(c, "name")
				if name == "" {
					name = attrValue(c, "property")
				}
				if content := attrValue(c, "content"); name != "" && content != "" {
					r.metadata[name] = content
				}
			}
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.extractHead(c)
	}
}

// Metadata returns document metadata from <title> and <meta> tags. Meta
// tags without a dedicated field are kept in Custom.
func (r *Reader) Metadata() model.Metadata {
	meta := model.Metadata{Title: r.title, Custom: make(map[string]string)}
	for name, content := range r.metadata {
		switch strings.ToLower(name) {
		case "author":
			meta.Creator = content
		case "description":
			meta.Description = content
		case "subject":
			meta.Subject = content
		case "keywords":
			for _, kw := range strings.Split(content, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					meta.Keywords = append(meta.Keywords, kw)
				}
			}
		default:
			meta.Custom[name] = content
		}
	}
	return meta
}

// Text returns the body text using the default options.
func (r *Reader) Text() (string, error) {
	return r.TextWithOptions(DefaultExtractOptions())
}

// TextWithOptions returns the body text of the document built with opts.
func (r *Reader) TextWithOptions(opts ExtractOptions) (string, error) {
	doc, err := r.DocumentWithOptions(opts)
	if err != nil {
		return "", err
	}
	return doc.ExtractText(), nil
}

// Document builds a document using the default options.
func (r *Reader) Document() (*model.Document, error) {
	return r.DocumentWithOptions(DefaultExtractOptions())
}

// DocumentWithOptions builds a new document from the parsed HTML. Each call
// returns a fresh document. Images that cannot be registered are replaced
// by their alt text.
func (r *Reader) DocumentWithOptions(opts ExtractOptions) (*model.Document, error) {
	fs := opts.Fs
	if fs == nil {
		fs = r.fs
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = r.baseDir
	}

	docOpts := append([]model.Option{model.WithResourceOptions(resource.WithFS(fs))}, opts.DocumentOptions...)
	doc := model.New(docOpts...)
	meta := r.Metadata()
	meta.Created, meta.Modified = doc.Metadata.Created, doc.Metadata.Modified
	doc.Metadata = meta

	body := findElement(r.doc, "body")
	if body == nil {
		body = r.doc
	}

	b := &builder{
		doc:     doc,
		nav:     newNavFilter(opts.NavigationExclusion, r.doc),
		baseDir: baseDir,
		log:     doc.Logger().WithField("reader", "html"),
	}
	sec := doc.AddSection(nil)
	if err := b.blocks(&sec.Container, body); err != nil {
		return nil, err
	}
	return doc, nil
}

// builder turns DOM nodes into document elements.
type builder struct {
	doc     *model.Document
	nav     *navFilter
	baseDir string
	log     logrus.FieldLogger
}

// flow is the paragraph that collects inline content between blocks.
type flow struct {
	c *model.Container
	p *model.Paragraph
}

func (f *flow) paragraph() *model.Paragraph {
	if f.p == nil {
		f.p = f.c.AddParagraph("", nil)
	}
	return f.p
}

// discardEmpty removes the open paragraph when nothing was added to it.
func (f *flow) discardEmpty() {
	if f.p == nil || len(f.p.Children) > 0 {
		return
	}
	if n := len(f.c.Elements); n > 0 && f.c.Elements[n-1] == model.Element(f.p) {
		f.c.Elements = f.c.Elements[:n-1]
	}
	f.p = nil
}

// close ends the open paragraph, trimming trailing whitespace.
func (f *flow) close() {
	if f.p == nil {
		return
	}
	if n := len(f.p.Children); n > 0 {
		if t, ok := f.p.Children[n-1].(*model.Text); ok {
			t.Text = strings.TrimRight(t.Text, " ")
		}
	}
	f.p = nil
}

// blocks appends the children of n to c.
func (b *builder) blocks(c *model.Container, n *html.Node) error {
	f := &flow{c: c}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if err := b.node(f, ch, nil); err != nil {
			return err
		}
	}
	f.close()
	return nil
}

func (b *builder) skip(n *html.Node) bool {
	return n.Type == html.ElementNode && (shouldSkipElement(n.Data) || b.nav.drop(n))
}

// node handles one DOM node. font carries inline formatting inherited from
// enclosing inline elements.
func (b *builder) node(f *flow, n *html.Node, font *style.Font) error {
	switch n.Type {
	case html.TextNode:
		b.text(f, n.Data, font)
		return nil
	case html.ElementNode:
	default:
		return nil
	}
	if b.skip(n) {
		return nil
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		f.close()
		depth := int(n.Data[1] - '0')
		b.ensureHeading(depth)
		f.p = f.c.AddParagraph(model.TitleStyleName(depth), nil)
		f.p.Heading = depth
		err := b.inlineChildren(f, n, font)
		f.close()
		return err

	case "p":
		f.close()
		f.paragraph()
		err := b.inlineChildren(f, n, font)
		f.close()
		return err

	case "pre":
		f.close()
		b.ensureStyle(StyleCode, style.KindParagraph, &style.Paragraph{},
			&style.Font{Name: style.Of("Courier New")})
		p := f.c.AddParagraph(StyleCode, nil)
		p.AddText(strings.Trim(rawText(n), "\n"), "", font)
		return nil

	case "blockquote":
		f.close()
		b.ensureStyle(StyleQuote, style.KindParagraph,
			&style.Paragraph{IndentLeft: style.Of(720), IndentRight: style.Of(720)}, nil)
		start := len(f.c.Elements)
		if err := b.blocks(f.c, n); err != nil {
			return err
		}
		for _, el := range f.c.Elements[start:] {
			if p, ok := el.(*model.Paragraph); ok && p.StyleName == "" {
				p.StyleName = StyleQuote
			}
		}
		return nil

	case "ul", "ol":
		f.close()
		return b.list(f.c, n, 0)

	case "table":
		f.close()
		return b.table(f.c, n)

	case "hr":
		f.close()
		return nil

	case "div", "section", "article", "main", "header", "footer", "nav", "aside",
		"body", "figure", "figcaption", "address", "details", "summary", "form", "fieldset":
		f.close()
		return b.blocks(f.c, n)

	case "br":
		f.paragraph().AddBreak(model.BreakLine)
		return nil

	case "img":
		return b.image(f, n)

	case "a":
		href := strings.TrimSpace(attrValue(n, "href"))
		text := collapseSpace(getTextContent(n))
		if href == "" || strings.HasPrefix(href, "#") || text == "" {
			return b.inlineChildren(f, n, font)
		}
		p := f.paragraph()
		if len(p.Children) == 0 {
			text = strings.TrimLeft(text, " ")
		}
		_, err := p.AddLink(href, text, "", font)
		return err
	}

	return b.inlineChildren(f, n, inlineFont(n.Data, font))
}

func (b *builder) inlineChildren(f *flow, n *html.Node, font *style.Font) error {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if err := b.node(f, ch, font); err != nil {
			return err
		}
	}
	return nil
}

// text appends a text run with HTML whitespace collapsing.
func (b *builder) text(f *flow, s string, font *style.Font) {
	s = collapseSpace(s)
	if f.p == nil || len(f.p.Children) == 0 {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	f.paragraph().AddText(s, "", font)
}

// inlineFont returns font with the formatting of an inline tag applied.
func inlineFont(tag string, font *style.Font) *style.Font {
	var set func(*style.Font)
	switch tag {
	case "b", "strong":
		set = func(f *style.Font) { f.Bold = style.Of(true) }
	case "i", "em", "cite", "dfn", "var":
		set = func(f *style.Font) { f.Italic = style.Of(true) }
	case "u", "ins":
		set = func(f *style.Font) { f.Underline = style.Of(style.UnderlineSingle) }
	case "s", "del", "strike":
		set = func(f *style.Font) { f.Strike = style.Of(true) }
	case "sup":
		set = func(f *style.Font) { f.Superscript = style.Of(true) }
	case "sub":
		set = func(f *style.Font) { f.Subscript = style.Of(true) }
	case "code", "kbd", "samp", "tt":
		set = func(f *style.Font) { f.Name = style.Of("Courier New") }
	case "mark":
		set = func(f *style.Font) { f.Highlight = style.Of("yellow") }
	case "small":
		set = func(f *style.Font) { f.Size = style.Of(8.0) }
	default:
		return font
	}
	out := &style.Font{}
	if font != nil {
		out = style.Clone(font).(*style.Font)
	}
	set(out)
	return out
}

// ensureStyle registers a style the reader relies on unless the document
// already defines it.
func (b *builder) ensureStyle(name string, kind style.Kind, value, companion style.Style) {
	if _, ok := b.doc.Styles.Entry(name, kind); ok {
		return
	}
	if err := b.doc.Styles.Register(name, kind, value, companion); err != nil {
		b.log.WithError(err).WithField("style", name).Warn("style not registered")
	}
}

// headingSizes are the font sizes of h1 to h6 in points.
var headingSizes = [...]float64{20, 16, 14, 12, 11, 10}

func (b *builder) ensureHeading(depth int) {
	if _, ok := b.doc.Styles.Entry(model.TitleStyleName(depth), style.KindParagraph); ok {
		return
	}
	font := &style.Font{Bold: style.Of(true), Size: style.Of(headingSizes[depth-1])}
	if err := b.doc.AddTitleStyle(depth, font, nil); err != nil {
		b.log.WithError(err).Warn("heading style not registered")
	}
}

func (b *builder) list(c *model.Container, n *html.Node, depth int) error {
	name := StyleListBullet
	value := &style.List{Type: style.Of(style.ListBullet)}
	if n.Data == "ol" {
		name = StyleListNumber
		value = &style.List{Type: style.Of(style.ListNumber), Format: style.Of(style.FormatDecimal)}
		if start, err := strconv.Atoi(attrValue(n, "start")); err == nil && start != 1 {
			name = fmt.Sprintf("%s %d", StyleListNumber, start)
			value.Start = style.Of(start)
		}
	}
	b.ensureStyle(name, style.KindList, value, nil)

	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != html.ElementNode || b.skip(ch) {
			continue
		}
		switch ch.Data {
		case "li":
			if text := listItemText(ch); text != "" {
				c.AddListItem(text, depth, name, nil, nil)
			}
			for nested := ch.FirstChild; nested != nil; nested = nested.NextSibling {
				if nested.Type == html.ElementNode && (nested.Data == "ul" || nested.Data == "ol") {
					if err := b.list(c, nested, depth+1); err != nil {
						return err
					}
				}
			}
		case "ul", "ol":
			if err := b.list(c, ch, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) table(c *model.Container, n *html.Node) error {
	t := c.AddTable("", nil)
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type != html.ElementNode {
			continue
		}
		switch ch.Data {
		case "thead", "tbody", "tfoot":
			for tr := ch.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.Data == "tr" {
					if err := b.row(t, tr, ch.Data == "thead"); err != nil {
						return err
					}
				}
			}
		case "tr":
			if err := b.row(t, ch, false); err != nil {
				return err
			}
		case "caption":
			if text := collapseSpace(getTextContent(ch)); text != "" {
				defer c.AddText(text, &style.Font{Italic: style.Of(true)}, nil)
			}
		}
	}
	return nil
}

// row adds a table row. A row counts as a header when it sits in <thead>
// or holds only <th> cells.
func (b *builder) row(t *model.Table, tr *html.Node, header bool) error {
	var cells []*html.Node
	allTH := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, c)
			allTH = allTH && c.Data == "th"
		}
	}
	if len(cells) == 0 {
		return nil
	}

	var rs *style.Row
	if header || allTH {
		rs = &style.Row{Header: style.Of(true)}
	}
	row := t.AddRow("", rs)
	for _, td := range cells {
		var cs *style.Cell
		if span, err := strconv.Atoi(attrValue(td, "colspan")); err == nil && span > 1 {
			cs = &style.Cell{GridSpan: style.Of(span)}
		}
		if span, err := strconv.Atoi(attrValue(td, "rowspan")); err == nil && span > 1 {
			if cs == nil {
				cs = &style.Cell{}
			}
			cs.VMerge = style.Of(style.VMergeRestart)
		}
		cell := row.AddCell("", cs)
		var font *style.Font
		if td.Data == "th" {
			font = &style.Font{Bold: style.Of(true)}
		}
		f := &flow{c: &cell.Container}
		for ch := td.FirstChild; ch != nil; ch = ch.NextSibling {
			if err := b.node(f, ch, font); err != nil {
				return err
			}
		}
		f.close()
	}
	return nil
}

// image registers an <img> inline. Remote sources are not fetched; they and
// images that fail to register fall back to their alt text.
func (b *builder) image(f *flow, n *html.Node) error {
	src := strings.TrimSpace(attrValue(n, "src"))
	alt := attrValue(n, "alt")
	log := b.log.WithField("src", truncate(src, 64))

	s := &style.Image{}
	if alt != "" {
		s.AltText = style.Of(alt)
	}
	if w, err := strconv.Atoi(attrValue(n, "width")); err == nil && w > 0 {
		s.Width = style.Of(w)
	}
	if h, err := strconv.Atoi(attrValue(n, "height")); err == nil && h > 0 {
		s.Height = style.Of(h)
	}

	var source resource.Source
	switch {
	case src == "":
	case strings.HasPrefix(src, "data:"):
		data, err := decodeDataURI(src)
		if err != nil {
			log.WithError(err).Warn("bad data URI")
			break
		}
		source = resource.Data("inline image", data)
	case isRemote(src):
		log.Debug("remote image skipped")
	default:
		p, err := url.PathUnescape(src)
		if err != nil {
			p = src
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(b.baseDir, filepath.FromSlash(path.Clean(p)))
		}
		source = resource.Path(p)
	}

	if source != nil {
		opened := f.p == nil
		_, err := f.paragraph().AddImage(source, s, "")
		if err == nil {
			return nil
		}
		log.WithError(err).Debug("image not registered")
		if opened {
			f.discardEmpty()
		}
	}
	if alt != "" {
		b.text(f, alt, nil)
	}
	return nil
}

func isRemote(src string) bool {
	u, err := url.Parse(src)
	return err == nil && u.Scheme != "" && u.Scheme != "file" && len(u.Scheme) > 1
}

// decodeDataURI returns the payload of a data: URI.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("data URI has no payload")
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	s, err := url.PathUnescape(payload)
	return []byte(s), err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// shouldSkipElement returns true if the element should be skipped during content extraction.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed", "head":
		return true
	}
	return false
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, tagName); result != nil {
			return result
		}
	}
	return nil
}

// getTextContent extracts all text content from a node and its descendants.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.TrimSpace(result.String())
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.Data) {
			return
		}
		if n.Data == "br" {
			result.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
			result.WriteString(" ")
		}
	}
}

// rawText returns descendant text without trimming, for <pre>.
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// listItemText returns the text of an <li> without its nested lists.
func listItemText(n *html.Node) string {
	var result strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			result.WriteString(c.Data)
		case c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol"):
		case c.Type == html.ElementNode:
			getTextContentRecursive(c, &result)
		}
	}
	return strings.TrimSpace(collapseSpace(result.String()))
}

// collapseSpace folds runs of HTML whitespace into single spaces.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}
