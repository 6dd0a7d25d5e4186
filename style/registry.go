package style

import (
	"errors"
	"fmt"
)

// Entry is a named style.
type Entry struct {
	Name  string
	Kind  Kind
	Value Style
	// Companion is a linked style of another family, e.g. the font
	// attached to a paragraph style.
	Companion Style
	// BasedOn names a parent style of the same kind.
	BasedOn string
}

// Option configures a Registry.
type Option func(*Registry)

// WithMode sets how RegisterMap treats unknown keys.
func WithMode(m Mode) Option {
	return func(r *Registry) {
		r.mode = m
	}
}

// Registry maps style names to style values and resolves effective styles.
// It is not safe for concurrent use.
type Registry struct {
	mode     Mode
	entries  map[Kind]map[string]*Entry
	order    map[Kind][]string
	defaults map[Kind]Style
	sealed   bool
}

// NewRegistry creates an empty registry in strict mode.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		mode:     ModeStrict,
		entries:  make(map[Kind]map[string]*Entry),
		order:    make(map[Kind][]string),
		defaults: make(map[Kind]Style),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the map decoding mode.
func (r *Registry) Mode() Mode { return r.mode }

// Register stores value under name, replacing any previous entry of the same
// kind. companion may be nil. Register never changes the kind default.
func (r *Registry) Register(name string, kind Kind, value, companion Style) error {
	return r.Define(Entry{Name: name, Kind: kind, Value: value, Companion: companion})
}

// Define is the full form of Register.
func (r *Registry) Define(e Entry) error {
	if r.sealed {
		return ErrSealed
	}
	if e.Name == "" {
		return &ValidationError{Op: "register", Kind: e.Kind, Err: errors.New("empty style name")}
	}
	if !e.Kind.Valid() {
		return &ValidationError{Op: "register", Name: e.Name, Err: fmt.Errorf("unknown style kind %d", e.Kind)}
	}
	if isNil(e.Value) {
		return &ValidationError{Op: "register", Name: e.Name, Kind: e.Kind, Err: errors.New("nil style value")}
	}
	if e.Value.Kind() != e.Kind {
		return &ValidationError{Op: "register", Name: e.Name, Kind: e.Kind,
			Err: fmt.Errorf("value is a %s style", e.Value.Kind())}
	}
	if err := Validate(e.Value); err != nil {
		return err
	}
	if err := Validate(e.Companion); err != nil {
		return err
	}

	stored := &Entry{
		Name:      e.Name,
		Kind:      e.Kind,
		Value:     Clone(e.Value),
		Companion: Clone(e.Companion),
		BasedOn:   e.BasedOn,
	}
	byName := r.entries[e.Kind]
	if byName == nil {
		byName = make(map[string]*Entry)
		r.entries[e.Kind] = byName
	}
	if _, exists := byName[e.Name]; !exists {
		r.order[e.Kind] = append(r.order[e.Kind], e.Name)
	}
	byName[e.Name] = stored
	return nil
}

// SetDefault sets the default style of kind, replacing any previous default.
func (r *Registry) SetDefault(kind Kind, value Style) error {
	if r.sealed {
		return ErrSealed
	}
	if !kind.Valid() {
		return &ValidationError{Op: "set default", Err: fmt.Errorf("unknown style kind %d", kind)}
	}
	if isNil(value) || value.Kind() != kind {
		return &ValidationError{Op: "set default", Kind: kind, Err: errors.New("value missing or of another kind")}
	}
	if err := Validate(value); err != nil {
		return err
	}
	r.defaults[kind] = Clone(value)
	return nil
}

// HasDefault reports whether SetDefault was called for kind.
func (r *Registry) HasDefault(kind Kind) bool {
	_, ok := r.defaults[kind]
	return ok
}

// Default returns the default style of kind, or the built-in fallback when
// none was set.
func (r *Registry) Default(kind Kind) Style {
	if d, ok := r.defaults[kind]; ok {
		return Clone(d)
	}
	return Fallback(kind)
}

// Get returns a copy of the style registered under name, or nil.
func (r *Registry) Get(name string, kind Kind) Style {
	if e, ok := r.entries[kind][name]; ok {
		return Clone(e.Value)
	}
	return nil
}

// Entry returns a copy of the named entry.
func (r *Registry) Entry(name string, kind Kind) (Entry, bool) {
	e, ok := r.entries[kind][name]
	if !ok {
		return Entry{}, false
	}
	return copyEntry(e), true
}

// Entries returns the entries of kind in first-registration order.
func (r *Registry) Entries(kind Kind) []Entry {
	names := r.order[kind]
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		out = append(out, copyEntry(r.entries[kind][name]))
	}
	return out
}

func copyEntry(e *Entry) Entry {
	return Entry{
		Name:      e.Name,
		Kind:      e.Kind,
		Value:     Clone(e.Value),
		Companion: Clone(e.Companion),
		BasedOn:   e.BasedOn,
	}
}

// Seal makes the registry read-only.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool { return r.sealed }

// Resolve returns the effective style of kind. Unset fields of inline are
// filled from the named style chain, then from the kind default (or the
// built-in fallback if no default was set). An unknown namedRef is skipped.
// Resolve panics on an invalid kind.
func (r *Registry) Resolve(kind Kind, inline Style, namedRef string) Style {
	return r.ResolveInherited(kind, inline, namedRef)
}

// ResolveInherited is Resolve with extra layers placed between the named
// style and the default, such as the companion font of a paragraph style.
func (r *Registry) ResolveInherited(kind Kind, inline Style, namedRef string, inherited ...Style) Style {
	if !kind.Valid() {
		panic(&ValidationError{Op: "resolve", Err: fmt.Errorf("unknown style kind %d", kind)})
	}
	if !isNil(inline) && inline.Kind() != kind {
		panic(&ValidationError{Op: "resolve", Kind: kind, Err: fmt.Errorf("inline value is a %s style", inline.Kind())})
	}

	out := newOf(kind)
	fill(out, inline)
	for _, e := range r.chain(kind, namedRef) {
		fill(out, e.Value)
	}
	for _, s := range inherited {
		if !isNil(s) && s.Kind() == kind {
			fill(out, s)
		}
	}
	if d, ok := r.defaults[kind]; ok {
		fill(out, d)
	} else {
		fill(out, Fallback(kind))
	}
	return out
}

// Companion merges the companion styles along the chain of namedRef,
// derived first. It returns nil when no entry in the chain has a companion.
func (r *Registry) Companion(kind Kind, namedRef string) Style {
	var out Style
	for _, e := range r.chain(kind, namedRef) {
		if isNil(e.Companion) {
			continue
		}
		if out == nil {
			out = newOf(e.Companion.Kind())
		}
		fill(out, e.Companion)
	}
	return out
}

// chain returns namedRef followed by its BasedOn ancestors.
func (r *Registry) chain(kind Kind, namedRef string) []*Entry {
	var chain []*Entry
	visited := make(map[string]bool)

	current := namedRef
	for current != "" && !visited[current] {
		visited[current] = true
		e, ok := r.entries[kind][current]
		if !ok {
			break
		}
		chain = append(chain, e)
		current = e.BasedOn
	}
	return chain
}

// ResolveFont resolves a font style.
func (r *Registry) ResolveFont(inline *Font, namedRef string, inherited ...Style) *Font {
	return r.ResolveInherited(KindFont, styleOrNil(inline), namedRef, inherited...).(*Font)
}

// ResolveParagraph resolves a paragraph style.
func (r *Registry) ResolveParagraph(inline *Paragraph, namedRef string) *Paragraph {
	return r.Resolve(KindParagraph, styleOrNil(inline), namedRef).(*Paragraph)
}

// ResolveTable resolves a table style.
func (r *Registry) ResolveTable(inline *Table, namedRef string) *Table {
	return r.Resolve(KindTable, styleOrNil(inline), namedRef).(*Table)
}

// ResolveRow resolves a row style.
func (r *Registry) ResolveRow(inline *Row, namedRef string) *Row {
	return r.Resolve(KindRow, styleOrNil(inline), namedRef).(*Row)
}

// ResolveCell resolves a cell style.
func (r *Registry) ResolveCell(inline *Cell, namedRef string) *Cell {
	return r.Resolve(KindCell, styleOrNil(inline), namedRef).(*Cell)
}

// ResolveList resolves a list style.
func (r *Registry) ResolveList(inline *List, namedRef string) *List {
	return r.Resolve(KindList, styleOrNil(inline), namedRef).(*List)
}

// ResolveImage resolves an image style.
func (r *Registry) ResolveImage(inline *Image, namedRef string) *Image {
	return r.Resolve(KindImage, styleOrNil(inline), namedRef).(*Image)
}

// styleOrNil keeps typed nil pointers from becoming non-nil interfaces.
func styleOrNil[T any, P interface {
	*T
	Style
}](p P) Style {
	if p == nil {
		return nil
	}
	return p
}
