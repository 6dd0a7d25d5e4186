package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

// Description is the YAML form of a document accepted by the build command.
type Description struct {
	ID       string                            `yaml:"id"`
	Metadata MetadataSpec                      `yaml:"metadata"`
	Defaults map[string]map[string]interface{} `yaml:"defaults"`
	Styles   []StyleSpec                       `yaml:"styles"`
	Sections []SectionSpec                     `yaml:"sections"`
}

type MetadataSpec struct {
	Title       string            `yaml:"title"`
	Subject     string            `yaml:"subject"`
	Creator     string            `yaml:"creator"`
	Keywords    []string          `yaml:"keywords"`
	Description string            `yaml:"description"`
	Category    string            `yaml:"category"`
	Company     string            `yaml:"company"`
	Custom      map[string]string `yaml:"custom"`
}

// StyleSpec is a named style. CompanionKind defaults to font.
type StyleSpec struct {
	Name          string                 `yaml:"name"`
	Kind          string                 `yaml:"kind"`
	BasedOn       string                 `yaml:"based_on"`
	Value         map[string]interface{} `yaml:"value"`
	CompanionKind string                 `yaml:"companion_kind"`
	Companion     map[string]interface{} `yaml:"companion"`
}

type SectionSpec struct {
	Orientation string      `yaml:"orientation"`
	Width       int         `yaml:"width"`
	Height      int         `yaml:"height"`
	Margins     []int       `yaml:"margins"`
	Columns     int         `yaml:"columns"`
	Headers     []PartSpec  `yaml:"headers"`
	Footers     []PartSpec  `yaml:"footers"`
	Blocks      []BlockSpec `yaml:"blocks"`
}

// PartSpec is a header or footer.
type PartSpec struct {
	Kind   string      `yaml:"kind"`
	Blocks []BlockSpec `yaml:"blocks"`
}

// BlockSpec is one block; exactly one of its content fields is expected.
type BlockSpec struct {
	Title     string                 `yaml:"title"`
	Depth     int                    `yaml:"depth"`
	Text      string                 `yaml:"text"`
	Runs      []RunSpec              `yaml:"runs"`
	Style     string                 `yaml:"style"`
	Paragraph map[string]interface{} `yaml:"paragraph"`
	Font      map[string]interface{} `yaml:"font"`
	List      *ListSpec              `yaml:"list"`
	Table     *TableSpec             `yaml:"table"`
	Image     *ImageSpec             `yaml:"image"`
	PageBreak bool                   `yaml:"page_break"`
}

type RunSpec struct {
	Text     string                 `yaml:"text"`
	Style    string                 `yaml:"style"`
	Font     map[string]interface{} `yaml:"font"`
	Link     string                 `yaml:"link"`
	Field    string                 `yaml:"field"`
	Break    string                 `yaml:"break"`
	Footnote string                 `yaml:"footnote"`
	Endnote  string                 `yaml:"endnote"`
}

type ListSpec struct {
	Style string     `yaml:"style"`
	Items []ItemSpec `yaml:"items"`
}

type ItemSpec struct {
	Text  string `yaml:"text"`
	Depth int    `yaml:"depth"`
}

type TableSpec struct {
	Style  string                 `yaml:"style"`
	Value  map[string]interface{} `yaml:"value"`
	Header bool                   `yaml:"header"`
	Rows   [][]string             `yaml:"rows"`
}

type ImageSpec struct {
	Path  string                 `yaml:"path"`
	Style string                 `yaml:"style"`
	Value map[string]interface{} `yaml:"value"`
}

// LoadDescription reads and parses a YAML description from fs.
func LoadDescription(fs afero.Fs, filename string) (*Description, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("reading description: %w", err)
	}
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return &d, nil
}

// builder turns a Description into a document. Image paths are resolved
// against dir.
type builder struct {
	doc  *model.Document
	mode style.Mode
	dir  string
	log  logrus.FieldLogger
}

// Build creates a document from d. Style maps are decoded in mode; in
// lenient mode ignored keys are logged as warnings.
func Build(d *Description, fs afero.Fs, dir string, mode style.Mode, log logrus.FieldLogger) (*model.Document, error) {
	opts := []model.Option{
		model.WithLogger(log),
		model.WithStyleOptions(style.WithMode(mode)),
		model.WithResourceOptions(resource.WithFS(fs)),
	}
	if d.ID != "" {
		opts = append(opts, model.WithID(d.ID))
	}
	b := &builder{doc: model.New(opts...), mode: mode, dir: dir, log: log}

	b.metadata(d.Metadata)
	if err := b.defaults(d.Defaults); err != nil {
		return nil, err
	}
	for _, s := range d.Styles {
		if err := b.style(s); err != nil {
			return nil, err
		}
	}
	for i, s := range d.Sections {
		if err := b.section(s); err != nil {
			return nil, fmt.Errorf("section %d: %w", i+1, err)
		}
	}
	return b.doc, nil
}

func (b *builder) metadata(m MetadataSpec) {
	md := &b.doc.Metadata
	md.Title = m.Title
	md.Subject = m.Subject
	md.Creator = m.Creator
	md.Keywords = m.Keywords
	md.Description = m.Description
	md.Category = m.Category
	md.Company = m.Company
	for k, v := range m.Custom {
		if md.Custom == nil {
			md.Custom = make(map[string]string)
		}
		md.Custom[k] = v
	}
}

func (b *builder) decode(kind style.Kind, m map[string]interface{}, what string) (style.Style, error) {
	v, diag, err := style.Decode(kind, m, b.mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	if len(diag.Ignored) > 0 {
		b.log.WithFields(logrus.Fields{"style": what, "keys": diag.Ignored}).Warn("ignored unknown style keys")
	}
	return v, nil
}

func (b *builder) defaults(defs map[string]map[string]interface{}) error {
	for name, m := range defs {
		kind := style.ParseKind(name)
		if !kind.Valid() {
			return fmt.Errorf("defaults: unknown style kind %q", name)
		}
		v, err := b.decode(kind, m, "default "+name)
		if err != nil {
			return err
		}
		if err := b.doc.Styles.SetDefault(kind, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) style(s StyleSpec) error {
	kind := style.ParseKind(s.Kind)
	if !kind.Valid() {
		return fmt.Errorf("style %q: unknown kind %q", s.Name, s.Kind)
	}
	v, err := b.decode(kind, s.Value, "style "+s.Name)
	if err != nil {
		return err
	}
	e := style.Entry{Name: s.Name, Kind: kind, Value: v, BasedOn: s.BasedOn}
	if len(s.Companion) > 0 {
		ck := style.KindFont
		if s.CompanionKind != "" {
			ck = style.ParseKind(s.CompanionKind)
		}
		if e.Companion, err = b.decode(ck, s.Companion, "companion of "+s.Name); err != nil {
			return err
		}
	}
	return b.doc.Styles.Define(e)
}

func (b *builder) section(s SectionSpec) error {
	setup := model.DefaultPageSetup()
	if s.Orientation == string(model.Landscape) {
		setup.Orientation = model.Landscape
		setup.Width, setup.Height = setup.Height, setup.Width
	}
	if s.Width > 0 {
		setup.Width = s.Width
	}
	if s.Height > 0 {
		setup.Height = s.Height
	}
	if len(s.Margins) == 4 {
		setup.MarginTop, setup.MarginRight, setup.MarginBottom, setup.MarginLeft =
			s.Margins[0], s.Margins[1], s.Margins[2], s.Margins[3]
	} else if len(s.Margins) != 0 {
		return fmt.Errorf("margins need 4 values (top right bottom left), got %d", len(s.Margins))
	}
	if s.Columns > 0 {
		setup.Columns = s.Columns
	}

	sec := b.doc.AddSection(&setup)
	for _, h := range s.Headers {
		if err := b.blocks(&sec.AddHeader(headerType(h.Kind)).Container, h.Blocks); err != nil {
			return fmt.Errorf("header: %w", err)
		}
	}
	for _, f := range s.Footers {
		if err := b.blocks(&sec.AddFooter(headerType(f.Kind)).Container, f.Blocks); err != nil {
			return fmt.Errorf("footer: %w", err)
		}
	}
	return b.blocks(&sec.Container, s.Blocks)
}

func headerType(s string) model.HeaderType {
	switch model.HeaderType(s) {
	case model.HeaderFirst, model.HeaderEven:
		return model.HeaderType(s)
	}
	return model.HeaderDefault
}

func (b *builder) blocks(c *model.Container, blocks []BlockSpec) error {
	for i, bl := range blocks {
		if err := b.block(c, bl); err != nil {
			return fmt.Errorf("block %d: %w", i+1, err)
		}
	}
	return nil
}

func (b *builder) block(c *model.Container, bl BlockSpec) error {
	switch {
	case bl.PageBreak:
		c.AddPageBreak()
		return nil
	case bl.Title != "":
		depth := bl.Depth
		if depth < 1 {
			depth = 1
		}
		c.AddTitle(bl.Title, depth)
		return nil
	case bl.List != nil:
		for _, it := range bl.List.Items {
			c.AddListItem(it.Text, it.Depth, bl.List.Style, nil, nil)
		}
		return nil
	case bl.Table != nil:
		return b.table(c, bl.Table)
	case bl.Image != nil:
		return b.image(c, bl.Image)
	}

	var para *style.Paragraph
	if len(bl.Paragraph) > 0 {
		v, err := b.decode(style.KindParagraph, bl.Paragraph, "paragraph")
		if err != nil {
			return err
		}
		para = v.(*style.Paragraph)
	}
	p := c.AddParagraph(bl.Style, para)
	if bl.Text != "" {
		font, err := b.font(bl.Font)
		if err != nil {
			return err
		}
		p.AddText(bl.Text, "", font)
	}
	for _, r := range bl.Runs {
		if err := b.run(p, r); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) font(m map[string]interface{}) (*style.Font, error) {
	if len(m) == 0 {
		return nil, nil
	}
	v, err := b.decode(style.KindFont, m, "font")
	if err != nil {
		return nil, err
	}
	return v.(*style.Font), nil
}

func (b *builder) run(p *model.Paragraph, r RunSpec) error {
	font, err := b.font(r.Font)
	if err != nil {
		return err
	}
	switch {
	case r.Link != "":
		text := r.Text
		if text == "" {
			text = r.Link
		}
		_, err = p.AddLink(r.Link, text, r.Style, font)
		return err
	case r.Field != "":
		p.AddField(model.FieldKind(strings.ToUpper(r.Field)), r.Text, font)
	case r.Break != "":
		switch r.Break {
		case "line":
			p.AddBreak(model.BreakLine)
		case "page":
			p.AddBreak(model.BreakPage)
		case "column":
			p.AddBreak(model.BreakColumn)
		default:
			return fmt.Errorf("unknown break %q", r.Break)
		}
	case r.Footnote != "":
		p.AddFootnote().AddText(r.Footnote, nil, nil)
	case r.Endnote != "":
		p.AddEndnote().AddText(r.Endnote, nil, nil)
	default:
		p.AddText(r.Text, r.Style, font)
	}
	return nil
}

func (b *builder) table(c *model.Container, ts *TableSpec) error {
	var inline *style.Table
	if len(ts.Value) > 0 {
		v, err := b.decode(style.KindTable, ts.Value, "table")
		if err != nil {
			return err
		}
		inline = v.(*style.Table)
	}
	t := c.AddTable(ts.Style, inline)
	for i, cells := range ts.Rows {
		var rs *style.Row
		if ts.Header && i == 0 {
			rs = &style.Row{Header: style.Of(true)}
		}
		row := t.AddRow("", rs)
		for _, text := range cells {
			row.AddCell("", nil).AddText(text, nil, nil)
		}
	}
	return nil
}

func (b *builder) image(c *model.Container, is *ImageSpec) error {
	var inline *style.Image
	if len(is.Value) > 0 {
		v, err := b.decode(style.KindImage, is.Value, "image")
		if err != nil {
			return err
		}
		inline = v.(*style.Image)
	}
	path := is.Path
	if !filepath.IsAbs(path) && b.dir != "" {
		path = filepath.Join(b.dir, path)
	}
	_, err := c.AddImage(resource.Path(path), inline, is.Style)
	return err
}
