package model

import (
	"fmt"

	"github.com/tsawler/folio/resource"
)

// Orientation is the page orientation of a section.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// PageSetup describes the page of a section. Sizes are in twips.
type PageSetup struct {
	Width        int
	Height       int
	Orientation  Orientation
	MarginTop    int
	MarginBottom int
	MarginLeft   int
	MarginRight  int
	Columns      int
}

// DefaultPageSetup is A4 portrait with one-inch margins.
func DefaultPageSetup() PageSetup {
	return PageSetup{
		Width:        11906,
		Height:       16838,
		Orientation:  Portrait,
		MarginTop:    1440,
		MarginBottom: 1440,
		MarginLeft:   1440,
		MarginRight:  1440,
		Columns:      1,
	}
}

// HeaderType selects which pages a header or footer applies to.
type HeaderType string

const (
	HeaderDefault HeaderType = "default"
	HeaderFirst   HeaderType = "first"
	HeaderEven    HeaderType = "even"
)

// HeaderFooter is a header or footer part. Index is document-wide and
// names the part's resource context; RelID is the body relationship that
// links the part.
type HeaderFooter struct {
	Container
	Kind   HeaderType
	Index  int
	RelID  int
	Footer bool
}

func (h *HeaderFooter) Type() ElementType { return ElementTypeHeaderFooter }

// PartName returns the part file name, e.g. "header1.xml".
func (h *HeaderFooter) PartName() string {
	return h.ctx.String() + ".xml"
}

// Section is a run of pages sharing one page setup.
type Section struct {
	Container
	Number  int
	Setup   PageSetup
	Headers []*HeaderFooter
	Footers []*HeaderFooter
}

// AddHeader adds a header part to the section.
func (s *Section) AddHeader(kind HeaderType) *HeaderFooter {
	h := s.doc.newHeaderFooter(kind, false)
	s.Headers = append(s.Headers, h)
	return h
}

// AddFooter adds a footer part to the section.
func (s *Section) AddFooter(kind HeaderType) *HeaderFooter {
	f := s.doc.newHeaderFooter(kind, true)
	s.Footers = append(s.Footers, f)
	return f
}

// Header returns the section's header of kind, or nil.
func (s *Section) Header(kind HeaderType) *HeaderFooter {
	return findHeaderFooter(s.Headers, kind)
}

// Footer returns the section's footer of kind, or nil.
func (s *Section) Footer(kind HeaderType) *HeaderFooter {
	return findHeaderFooter(s.Footers, kind)
}

func findHeaderFooter(list []*HeaderFooter, kind HeaderType) *HeaderFooter {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Kind == kind {
			return list[i]
		}
	}
	return nil
}

func (d *Document) newHeaderFooter(kind HeaderType, footer bool) *HeaderFooter {
	d.mustBuild()
	if kind == "" {
		kind = HeaderDefault
	}

	var ctx resource.Context
	if footer {
		d.footerCount++
		ctx = resource.Footer(d.footerCount)
	} else {
		d.headerCount++
		ctx = resource.Header(d.headerCount)
	}

	id, err := d.Resources.AddRelationship(resource.Body(), resource.KindPart, ctx.String()+".xml")
	if err != nil {
		// Only a sealed registry fails here, and mustBuild ruled that out.
		panic(fmt.Sprintf("model: allocating %s relationship: %v", ctx, err))
	}

	return &HeaderFooter{
		Container: newContainer(d, ctx),
		Kind:      kind,
		Index:     ctx.Index,
		RelID:     id,
		Footer:    footer,
	}
}
