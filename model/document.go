package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsawler/folio/resource"
	"github.com/tsawler/folio/style"
)

// Document is the root of the document tree. It owns its style and resource
// registries; neither may be shared with another document.
type Document struct {
	ID        string
	Metadata  Metadata
	Styles    *style.Registry
	Resources *resource.Registry
	Sections  []*Section
	Footnotes *Collection[Note]
	Endnotes  *Collection[Note]

	log         logrus.FieldLogger
	frozen      bool
	headerCount int
	footerCount int
}

// Metadata contains document-level information
type Metadata struct {
	Title       string
	Subject     string
	Creator     string
	Keywords    []string
	Description string
	Category    string
	Company     string
	Created     time.Time
	Modified    time.Time
	// Custom metadata
	Custom map[string]string
}

// Note is a footnote or endnote body.
type Note struct {
	Container
	Kind  NoteKind
	Index int
}

func (n *Note) Type() ElementType { return ElementTypeNote }

// Option configures a new Document.
type Option func(*config)

type config struct {
	id         string
	logger     logrus.FieldLogger
	styleOpts  []style.Option
	resOpts    []resource.RegistryOption
	styles     *style.Registry
	resources  *resource.Registry
	createTime time.Time
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) { c.logger = l }
}

// WithID sets the document identifier instead of generating one.
func WithID(id string) Option {
	return func(c *config) { c.id = id }
}

// WithStyleOptions configures the document's style registry.
func WithStyleOptions(opts ...style.Option) Option {
	return func(c *config) { c.styleOpts = append(c.styleOpts, opts...) }
}

// WithResourceOptions configures the document's resource registry.
func WithResourceOptions(opts ...resource.RegistryOption) Option {
	return func(c *config) { c.resOpts = append(c.resOpts, opts...) }
}

// WithRegistries supplies pre-populated registries, e.g. a style registry
// loaded from a template. They must not belong to another document.
func WithRegistries(styles *style.Registry, resources *resource.Registry) Option {
	return func(c *config) {
		c.styles = styles
		c.resources = resources
	}
}

// WithCreated sets the creation time recorded in the metadata.
func WithCreated(t time.Time) Option {
	return func(c *config) { c.createTime = t }
}

// New creates an empty document.
func New(opts ...Option) *Document {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}
	if cfg.styles == nil {
		cfg.styles = style.NewRegistry(cfg.styleOpts...)
	}
	if cfg.resources == nil {
		cfg.resources = resource.NewRegistry(cfg.resOpts...)
	}
	if cfg.createTime.IsZero() {
		cfg.createTime = time.Now().UTC()
	}

	return &Document{
		ID: cfg.id,
		Metadata: Metadata{
			Created:  cfg.createTime,
			Modified: cfg.createTime,
			Custom:   make(map[string]string),
		},
		Styles:    cfg.styles,
		Resources: cfg.resources,
		Footnotes: NewCollection[Note](),
		Endnotes:  NewCollection[Note](),
		log:       cfg.logger.WithField("document", cfg.id),
	}
}

// Logger returns the document's logger.
func (d *Document) Logger() logrus.FieldLogger { return d.log }

func (d *Document) mustBuild() {
	if d.frozen {
		panic(ErrFrozen)
	}
}

// Freeze ends the build phase: both registries are sealed and every builder
// fails from now on. Freeze is idempotent.
func (d *Document) Freeze() {
	if d.frozen {
		return
	}
	d.frozen = true
	d.Styles.Seal()
	d.Resources.Seal()
	d.log.WithFields(logrus.Fields{
		"sections":  len(d.Sections),
		"footnotes": d.Footnotes.Count(),
		"endnotes":  d.Endnotes.Count(),
	}).Debug("document frozen")
}

// Frozen reports whether Freeze was called.
func (d *Document) Frozen() bool { return d.frozen }

// AddSection appends a section. A nil setup uses DefaultPageSetup.
func (d *Document) AddSection(setup *PageSetup) *Section {
	d.mustBuild()
	s := &Section{
		Container: newContainer(d, resource.Body()),
		Number:    len(d.Sections) + 1,
		Setup:     DefaultPageSetup(),
	}
	if setup != nil {
		s.Setup = *setup
	}
	d.Sections = append(d.Sections, s)
	return s
}

// GetSection returns a section by number (1-indexed)
func (d *Document) GetSection(number int) *Section {
	if number < 1 || number > len(d.Sections) {
		return nil
	}
	return d.Sections[number-1]
}

func (d *Document) notes(kind NoteKind) *Collection[Note] {
	if kind == NoteEndnote {
		return d.Endnotes
	}
	return d.Footnotes
}

func noteContext(kind NoteKind) resource.Context {
	if kind == NoteEndnote {
		return resource.Endnotes()
	}
	return resource.Footnotes()
}

func (d *Document) newNote(kind NoteKind) *Note {
	n := &Note{Container: newContainer(d, noteContext(kind)), Kind: kind}
	n.Index = d.notes(kind).Add(n)
	return n
}

// ReplaceNote swaps the body of an existing footnote or endnote, keeping
// its index. It returns a fresh empty body, or nil when index was never
// allocated.
func (d *Document) ReplaceNote(kind NoteKind, index int) *Note {
	d.mustBuild()
	n := &Note{Container: newContainer(d, noteContext(kind)), Kind: kind, Index: index}
	if !d.notes(kind).Set(index, n) {
		return nil
	}
	return n
}

// TitleStyleName returns the paragraph style name used for titles of depth.
func TitleStyleName(depth int) string {
	return fmt.Sprintf("Heading%d", depth)
}

// AddTitleStyle registers the paragraph and font styles of titles at depth.
func (d *Document) AddTitleStyle(depth int, font *style.Font, para *style.Paragraph) error {
	if depth < 1 || depth > 9 {
		return &style.ValidationError{Op: "add title style", Kind: style.KindParagraph,
			Err: fmt.Errorf("depth %d out of range 1-9", depth)}
	}
	p := &style.Paragraph{}
	if para != nil {
		p = style.Clone(para).(*style.Paragraph)
	}
	if p.OutlineLevel == nil {
		p.OutlineLevel = style.Of(depth - 1)
	}
	if p.KeepNext == nil {
		p.KeepNext = style.Of(true)
	}
	var companion style.Style
	if font != nil {
		companion = font
	}
	return d.Styles.Register(TitleStyleName(depth), style.KindParagraph, p, companion)
}

// ExtractText returns all body text, sections separated by blank lines.
func (d *Document) ExtractText() string {
	parts := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		parts = append(parts, s.ExtractText())
	}
	return strings.Join(parts, "\n")
}
