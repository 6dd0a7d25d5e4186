package model

import (
	"errors"
	"fmt"

	"github.com/tsawler/folio/resource"
)

// WalkFunc is called for every element reached by Walk. ctx is the
// resource context the element's identifiers belong to. Returning
// SkipChildren skips the element's children; any other error stops the walk.
type WalkFunc func(el Element, ctx resource.Context, depth int) error

// Walk visits the document read-only in serialization order: for each
// section its headers, its footers, then its body; then footnotes and
// endnotes.
func (d *Document) Walk(fn WalkFunc) error {
	for _, s := range d.Sections {
		for _, h := range s.Headers {
			if err := walkElement(h, h.ctx, 0, fn); err != nil {
				return err
			}
		}
		for _, f := range s.Footers {
			if err := walkElement(f, f.ctx, 0, fn); err != nil {
				return err
			}
		}
		if err := walkElements(s.Elements, s.ctx, 0, fn); err != nil {
			return err
		}
	}
	for _, notes := range []*Collection[Note]{d.Footnotes, d.Endnotes} {
		err := notes.Each(func(_ int, n *Note) error {
			return walkElement(n, n.ctx, 0, fn)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func walkElements(els []Element, ctx resource.Context, depth int, fn WalkFunc) error {
	for _, el := range els {
		if err := walkElement(el, ctx, depth, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkElement(el Element, ctx resource.Context, depth int, fn WalkFunc) error {
	err := fn(el, ctx, depth)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	if err != nil {
		return err
	}

	switch e := el.(type) {
	case *Paragraph:
		return walkElements(e.Children, ctx, depth+1, fn)
	case *ListItem:
		return walkElements(e.Children, ctx, depth+1, fn)
	case *Table:
		for _, r := range e.Rows {
			if err := walkElement(r, ctx, depth+1, fn); err != nil {
				return err
			}
		}
	case *Row:
		for _, c := range e.Cells {
			if err := walkElement(c, ctx, depth+1, fn); err != nil {
				return err
			}
		}
	case *Cell:
		return walkElements(e.Elements, ctx, depth+1, fn)
	case *HeaderFooter:
		return walkElements(e.Elements, ctx, depth+1, fn)
	case *Note:
		return walkElements(e.Elements, ctx, depth+1, fn)
	}
	return nil
}

// Verify checks that every identifier in the tree is known to the
// registries: image handles, link relationships and note references.
// A failure is an internal bug and wraps ErrInvariant.
func (d *Document) Verify() error {
	return d.Walk(func(el Element, ctx resource.Context, _ int) error {
		switch e := el.(type) {
		case *Image:
			if e.Handle.Context != ctx {
				return fmt.Errorf("%w: image %q registered in %s but placed in %s", ErrInvariant, e.Source, e.Handle.Context, ctx)
			}
			if err := d.Resources.Verify(e.Handle); err != nil {
				return fmt.Errorf("%w: %v", ErrInvariant, err)
			}
		case *Link:
			rel, ok := d.Resources.Lookup(e.Context, e.RelID)
			if !ok || rel.Kind != resource.KindHyperlink || rel.Target != e.URL {
				return fmt.Errorf("%w: link %q has no relationship %d in %s", ErrInvariant, e.URL, e.RelID, e.Context)
			}
		case *NoteRef:
			if d.notes(e.Kind).Get(e.Index) == nil {
				return fmt.Errorf("%w: %s %d does not exist", ErrInvariant, e.Kind, e.Index)
			}
		case *HeaderFooter:
			rel, ok := d.Resources.Lookup(resource.Body(), e.RelID)
			if !ok || rel.Kind != resource.KindPart || rel.Target != e.PartName() {
				return fmt.Errorf("%w: %s has no body relationship", ErrInvariant, e.PartName())
			}
		}
		return nil
	})
}
