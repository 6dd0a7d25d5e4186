package resource

import (
	"errors"

	"github.com/spf13/afero"
)

// Source is where media bytes come from.
type Source interface {
	// Name identifies the source in errors and diagnostics.
	Name() string
	// Read returns the full content. Paths are resolved against fs.
	Read(fs afero.Fs) ([]byte, error)
}

// Path returns a Source that reads a file.
func Path(p string) Source { return pathSource(p) }

// Data returns a Source over an in-memory buffer. name is used in errors
// only; it does not influence type detection.
func Data(name string, b []byte) Source {
	return dataSource{name: name, data: b}
}

type pathSource string

func (p pathSource) Name() string { return string(p) }

func (p pathSource) Read(fs afero.Fs) ([]byte, error) {
	if p == "" {
		return nil, errors.New("empty path")
	}
	return afero.ReadFile(fs, string(p))
}

type dataSource struct {
	name string
	data []byte
}

func (d dataSource) Name() string {
	if d.name == "" {
		return "<bytes>"
	}
	return d.name
}

func (d dataSource) Read(afero.Fs) ([]byte, error) {
	if d.data == nil {
		return nil, errors.New("nil buffer")
	}
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out, nil
}
