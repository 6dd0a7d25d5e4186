// Package folio assembles word-processing documents and writes them as
// DOCX, HTML, or RTF.
//
// Basic usage:
//
//	doc := folio.New()
//	sec := doc.AddSection(nil)
//	sec.AddTitle("Quarterly report", 1)
//	sec.AddText("Revenue grew.", nil, nil)
//	if err := folio.Save(doc, "report.docx"); err != nil {
//	    // handle error
//	}
//
// Converting an HTML page:
//
//	err := folio.Open("page.html").
//	    ExcludeNavigation(htmldoc.NavigationExclusionAggressive).
//	    SaveAs("page.rtf")
//
// The model, style, and resource packages hold the document tree and its
// registries; docx, htmldoc, and rtf are the individual writers.
package folio

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/tsawler/folio/docx"
	"github.com/tsawler/folio/format"
	"github.com/tsawler/folio/htmldoc"
	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/rtf"
)

// ErrUnsupportedFormat is returned when a file name or format value names a
// format folio cannot read or write.
var ErrUnsupportedFormat = errors.New("folio: unsupported format")

// New creates an empty document.
func New(opts ...model.Option) *model.Document {
	return model.New(opts...)
}

// Write serializes doc to w in format f. The document is frozen.
func Write(w io.Writer, doc *model.Document, f format.Format) error {
	switch f {
	case format.DOCX:
		return docx.Write(w, doc)
	case format.HTML:
		return htmldoc.Write(w, doc)
	case format.RTF:
		return rtf.Write(w, doc)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Save writes doc to filename on the OS filesystem. The format is chosen
// from the file extension.
func Save(doc *model.Document, filename string) error {
	return SaveFs(afero.NewOsFs(), doc, filename)
}

// SaveFs writes doc to filename on fs. The format is chosen from the file
// extension. A file that fails to serialize is removed.
func SaveFs(fs afero.Fs, doc *model.Document, filename string) error {
	f := format.Detect(filename)
	if !f.Writable() {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
	out, err := fs.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(out, doc, f); err != nil {
		out.Close()
		_ = fs.Remove(filename)
		return err
	}
	return out.Close()
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	doc := folio.Must(folio.Open("page.html").Document())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
