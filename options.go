package folio

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/tsawler/folio/htmldoc"
	"github.com/tsawler/folio/model"
)

// importOptions holds configuration for reading a source into a document.
type importOptions struct {
	navigation htmldoc.NavigationExclusionMode
	fs         afero.Fs
	baseDir    string
	logger     logrus.FieldLogger
	docOpts    []model.Option
}

// defaultOptions returns the default import options.
func defaultOptions() importOptions {
	return importOptions{
		navigation: htmldoc.NavigationExclusionStandard,
	}
}

// clone creates a deep copy of importOptions.
func (o importOptions) clone() importOptions {
	newOpts := o
	if o.docOpts != nil {
		newOpts.docOpts = make([]model.Option, len(o.docOpts))
		copy(newOpts.docOpts, o.docOpts)
	}
	return newOpts
}

// extract converts the options to the HTML reader's form.
func (o importOptions) extract() htmldoc.ExtractOptions {
	docOpts := o.docOpts
	if o.logger != nil {
		docOpts = append([]model.Option{model.WithLogger(o.logger)}, docOpts...)
	}
	return htmldoc.ExtractOptions{
		NavigationExclusion: o.navigation,
		Fs:                  o.fs,
		BaseDir:             o.baseDir,
		DocumentOptions:     docOpts,
	}
}
