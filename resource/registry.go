package resource

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF for DecodeConfig
	_ "image/jpeg" // register JPEG for DecodeConfig
	_ "image/png"  // register PNG for DecodeConfig

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"  // register BMP for DecodeConfig
	_ "golang.org/x/image/tiff" // register TIFF for DecodeConfig
	_ "golang.org/x/image/webp" // register WEBP for DecodeConfig
)

// Handle identifies one registered media item.
type Handle struct {
	Context     Context
	RelID       int
	MediaIndex  int
	Kind        Kind
	Extension   string
	ContentType string
	// Width and Height are the pixel dimensions when the content could be
	// decoded, otherwise zero.
	Width  int
	Height int
	// Reused is set when dedup returned an existing registration.
	Reused bool
}

// Record is a media registration as seen by writers.
type Record struct {
	Handle
	Source      string
	Data        []byte
	Fingerprint uint64
}

// Relationship is one allocated relationship id within a context.
type Relationship struct {
	Context Context
	ID      int
	Kind    Kind
	// Target is the hyperlink URL or part name. Media relationships leave it
	// empty; writers derive the media part name from the record.
	Target string
	// MediaIndex is set for media relationships.
	MediaIndex int
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithFS sets the filesystem used to read Path sources.
func WithFS(fs afero.Fs) RegistryOption {
	return func(r *Registry) {
		r.fs = fs
	}
}

// WithSignatures replaces the signature table.
func WithSignatures(t Table) RegistryOption {
	return func(r *Registry) {
		r.table = t
	}
}

// WithDedup enables content-based deduplication of media within a context.
func WithDedup(on bool) RegistryOption {
	return func(r *Registry) {
		r.dedup = on
	}
}

type namespace struct {
	nextRel   int
	nextMedia int
	records   []*Record
	rels      []Relationship
	byHash    map[uint64][]*Record
}

// Registry allocates relationship ids and media indices per context.
// It is not safe for concurrent use.
type Registry struct {
	fs     afero.Fs
	table  Table
	dedup  bool
	sealed bool

	spaces map[Context]*namespace
	order  []Context
}

// NewRegistry creates a registry reading from the OS filesystem with the
// default signature table and dedup disabled.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		fs:     afero.NewOsFs(),
		table:  DefaultTable(),
		spaces: make(map[Context]*namespace),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dedup reports whether deduplication is enabled.
func (r *Registry) Dedup() bool { return r.dedup }

// Seal makes the registry read-only.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool { return r.sealed }

func (r *Registry) space(ctx Context) *namespace {
	ns, ok := r.spaces[ctx]
	if !ok {
		ns = &namespace{byHash: make(map[uint64][]*Record)}
		r.spaces[ctx] = ns
		r.order = append(r.order, ctx)
	}
	return ns
}

// AddMedia reads src, classifies it by content, and allocates the next media
// index and relationship id in ctx. On error nothing is allocated.
func (r *Registry) AddMedia(ctx Context, src Source, kind Kind) (Handle, error) {
	if r.sealed {
		return Handle{}, ErrSealed
	}
	if !ctx.Valid() {
		return Handle{}, fmt.Errorf("%w: %s", ErrInvalidContext, ctx)
	}
	if !kind.IsMedia() {
		return Handle{}, fmt.Errorf("%w: %s is not a media kind", ErrInvalidContext, kind)
	}
	if src == nil {
		return Handle{}, &MediaNotFoundError{Source: "<nil>"}
	}

	data, err := src.Read(r.fs)
	if err != nil {
		return Handle{}, &MediaNotFoundError{Source: src.Name(), Err: err}
	}

	sig, ok := r.table.Match(data)
	if !ok {
		return Handle{}, &UnsupportedMediaTypeError{Source: src.Name(), Kind: kind, Prefix: prefix(data)}
	}
	if sig.Kind != kind {
		return Handle{}, &UnsupportedMediaTypeError{Source: src.Name(), Kind: kind, Prefix: prefix(data), Detected: sig.Kind.String()}
	}

	sum := xxhash.Sum64(data)
	if r.dedup {
		if ns, ok := r.spaces[ctx]; ok {
			for _, rec := range ns.byHash[sum] {
				if rec.Kind == kind && bytes.Equal(rec.Data, data) {
					h := rec.Handle
					h.Reused = true
					return h, nil
				}
			}
		}
	}

	ns := r.space(ctx)
	ns.nextRel++
	ns.nextMedia++

	h := Handle{
		Context:     ctx,
		RelID:       ns.nextRel,
		MediaIndex:  ns.nextMedia,
		Kind:        kind,
		Extension:   sig.Extension,
		ContentType: sig.ContentType,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		h.Width, h.Height = cfg.Width, cfg.Height
	}

	rec := &Record{Handle: h, Source: src.Name(), Data: data, Fingerprint: sum}
	ns.records = append(ns.records, rec)
	ns.byHash[sum] = append(ns.byHash[sum], rec)
	ns.rels = append(ns.rels, Relationship{Context: ctx, ID: h.RelID, Kind: kind, MediaIndex: h.MediaIndex})
	return h, nil
}

// AddRelationship allocates the next relationship id in ctx for a non-media
// target. It never advances the media index.
func (r *Registry) AddRelationship(ctx Context, kind Kind, target string) (int, error) {
	if r.sealed {
		return 0, ErrSealed
	}
	if !ctx.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidContext, ctx)
	}
	if kind != KindHyperlink && kind != KindPart {
		return 0, fmt.Errorf("%w: %s is not a relationship kind", ErrInvalidContext, kind)
	}

	ns := r.space(ctx)
	ns.nextRel++
	ns.rels = append(ns.rels, Relationship{Context: ctx, ID: ns.nextRel, Kind: kind, Target: target})
	return ns.nextRel, nil
}

// ContextsOf returns the contexts that allocated anything, in first-use
// order. With kinds given, only contexts holding media of those kinds are
// returned.
func (r *Registry) ContextsOf(kinds ...Kind) []Context {
	out := make([]Context, 0, len(r.order))
	for _, ctx := range r.order {
		ns := r.spaces[ctx]
		if len(kinds) == 0 {
			out = append(out, ctx)
			continue
		}
		if hasKind(ns, kinds) {
			out = append(out, ctx)
		}
	}
	return out
}

func hasKind(ns *namespace, kinds []Kind) bool {
	for _, rel := range ns.rels {
		for _, k := range kinds {
			if rel.Kind == k {
				return true
			}
		}
	}
	return false
}

// Records returns the media records of ctx in allocation order.
func (r *Registry) Records(ctx Context) []Record {
	ns, ok := r.spaces[ctx]
	if !ok {
		return nil
	}
	out := make([]Record, len(ns.records))
	for i, rec := range ns.records {
		out[i] = rec.clone()
	}
	return out
}

// Relationships returns every relationship of ctx in id order.
func (r *Registry) Relationships(ctx Context) []Relationship {
	ns, ok := r.spaces[ctx]
	if !ok {
		return nil
	}
	out := make([]Relationship, len(ns.rels))
	copy(out, ns.rels)
	return out
}

// Lookup returns the relationship with id in ctx.
func (r *Registry) Lookup(ctx Context, id int) (Relationship, bool) {
	ns, ok := r.spaces[ctx]
	if !ok || id < 1 || id > len(ns.rels) {
		return Relationship{}, false
	}
	// ids are dense, so the slice position is id-1.
	return ns.rels[id-1], true
}

// Media returns the media record with the given index in ctx.
func (r *Registry) Media(ctx Context, index int) (Record, bool) {
	ns, ok := r.spaces[ctx]
	if !ok || index < 1 || index > len(ns.records) {
		return Record{}, false
	}
	return ns.records[index-1].clone(), true
}

// clone copies rec with its own Data so callers cannot change registered
// bytes.
func (rec *Record) clone() Record {
	c := *rec
	c.Data = bytes.Clone(rec.Data)
	return c
}

// Verify reports whether h was issued by this registry.
func (r *Registry) Verify(h Handle) error {
	rel, ok := r.Lookup(h.Context, h.RelID)
	if !ok || rel.MediaIndex != h.MediaIndex || rel.Kind != h.Kind {
		return fmt.Errorf("resource: handle %s/rel %d/media %d is not registered", h.Context, h.RelID, h.MediaIndex)
	}
	return nil
}

// MaxRelID returns the highest relationship id allocated in ctx.
func (r *Registry) MaxRelID(ctx Context) int {
	if ns, ok := r.spaces[ctx]; ok {
		return ns.nextRel
	}
	return 0
}

func prefix(data []byte) []byte {
	n := len(data)
	if n > 8 {
		n = 8
	}
	out := make([]byte, n)
	copy(out, data[:n])
	return out
}
