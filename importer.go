package folio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/tsawler/folio/format"
	"github.com/tsawler/folio/htmldoc"
	"github.com/tsawler/folio/model"
)

// Importer provides a fluent interface for reading a source file into a
// document. Each configuration method returns a new Importer instance,
// making it safe to share a partially configured Importer and allowing
// method chaining.
type Importer struct {
	// Source: a file name or a reader. A reader is consumed by the first
	// terminal operation.
	filename string
	src      io.Reader

	options importOptions
}

// Open returns an Importer for the named file. Only HTML can be read; the
// format is taken from the extension, or from the content when the
// extension is not recognized.
//
// Example:
//
//	doc, err := folio.Open("page.html").Document()
func Open(filename string) *Importer {
	return &Importer{filename: filename, options: defaultOptions()}
}

// FromReader returns an Importer reading HTML from r.
func FromReader(r io.Reader) *Importer {
	return &Importer{src: r, options: defaultOptions()}
}

func (im *Importer) clone() *Importer {
	return &Importer{
		filename: im.filename,
		src:      im.src,
		options:  im.options.clone(),
	}
}

// ============================================================================
// Configuration Methods (return new Importer instance)
// ============================================================================

// Fs sets the filesystem the source file and its relative images are read
// from. The default is the OS filesystem.
func (im *Importer) Fs(fs afero.Fs) *Importer {
	newIm := im.clone()
	newIm.options.fs = fs
	return newIm
}

// BaseDir sets the directory relative image paths resolve against. It
// defaults to the source file's directory.
func (im *Importer) BaseDir(dir string) *Importer {
	newIm := im.clone()
	newIm.options.baseDir = dir
	return newIm
}

// ExcludeNavigation sets how navigation, site headers, and footers are
// filtered out.
//
// Example:
//
//	doc, err := folio.Open("page.html").
//	    ExcludeNavigation(htmldoc.NavigationExclusionAggressive).
//	    Document()
func (im *Importer) ExcludeNavigation(mode htmldoc.NavigationExclusionMode) *Importer {
	newIm := im.clone()
	newIm.options.navigation = mode
	return newIm
}

// IncludeNavigation keeps all content. It is equivalent to
// ExcludeNavigation(htmldoc.NavigationExclusionNone).
func (im *Importer) IncludeNavigation() *Importer {
	return im.ExcludeNavigation(htmldoc.NavigationExclusionNone)
}

// Logger sets the logger of the resulting document.
func (im *Importer) Logger(l logrus.FieldLogger) *Importer {
	newIm := im.clone()
	newIm.options.logger = l
	return newIm
}

// DocumentOptions adds options passed to model.New. Multiple calls are
// cumulative.
func (im *Importer) DocumentOptions(opts ...model.Option) *Importer {
	newIm := im.clone()
	newIm.options.docOpts = append(newIm.options.docOpts, opts...)
	return newIm
}

// ============================================================================
// Terminal Methods
// ============================================================================

// Document reads the source into a new document in build mode.
func (im *Importer) Document() (*model.Document, error) {
	opts := im.options.extract()

	if im.src != nil {
		data, err := io.ReadAll(im.src)
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
		f, err := format.DetectFromReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("detecting format: %w", err)
		}
		if err := checkReadable(f); err != nil {
			return nil, err
		}
		return htmldoc.Read(bytes.NewReader(data), opts)
	}

	if im.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	fs := im.options.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f := format.Detect(im.filename)
	if f == format.Unknown {
		var err error
		if f, err = sniff(fs, im.filename); err != nil {
			return nil, err
		}
	}
	if err := checkReadable(f); err != nil {
		return nil, err
	}

	r, err := htmldoc.Open(im.filename, fs)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.DocumentWithOptions(opts)
}

// Text reads the source and returns its body text, one paragraph per line.
func (im *Importer) Text() (string, error) {
	doc, err := im.Document()
	if err != nil {
		return "", err
	}
	return doc.ExtractText(), nil
}

// SaveAs reads the source and writes it to filename, choosing the output
// format from the extension. Output goes to the Importer's filesystem.
func (im *Importer) SaveAs(filename string) error {
	doc, err := im.Document()
	if err != nil {
		return err
	}
	fs := im.options.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return SaveFs(fs, doc, filename)
}

// checkReadable rejects formats folio has no reader for. Content that is
// not recognized at all is read as HTML, whose parser accepts any text.
func checkReadable(f format.Format) error {
	if f == format.Unknown || f.Readable() {
		return nil
	}
	return fmt.Errorf("%w: cannot read %s", ErrUnsupportedFormat, f)
}

// sniff detects the format of the named file from its content.
func sniff(fs afero.Fs, filename string) (format.Format, error) {
	f, err := fs.Open(filename)
	if err != nil {
		return format.Unknown, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return format.Unknown, fmt.Errorf("reading file: %w", err)
	}
	detected, err := format.DetectFromReader(f, info.Size())
	if err != nil {
		return format.Unknown, fmt.Errorf("detecting format: %w", err)
	}
	return detected, nil
}
