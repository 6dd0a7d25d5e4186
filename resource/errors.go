package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrMediaNotFound matches every *MediaNotFoundError.
	ErrMediaNotFound = errors.New("resource: media not found")
	// ErrUnsupportedMediaType matches every *UnsupportedMediaTypeError.
	ErrUnsupportedMediaType = errors.New("resource: unsupported media type")
	// ErrSealed is returned when a sealed registry is asked to allocate.
	ErrSealed = errors.New("resource: registry is sealed")
	// ErrInvalidContext is returned for a malformed Context or Kind.
	ErrInvalidContext = errors.New("resource: invalid context")
)

// MediaNotFoundError reports a media source that could not be read.
type MediaNotFoundError struct {
	Source string
	Err    error
}

func (e *MediaNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resource: media %q not found: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("resource: media %q not found", e.Source)
}

func (e *MediaNotFoundError) Unwrap() error { return e.Err }

func (e *MediaNotFoundError) Is(target error) bool { return target == ErrMediaNotFound }

// UnsupportedMediaTypeError reports content that matched no signature, or
// matched a signature of a different media kind than requested.
type UnsupportedMediaTypeError struct {
	Source string
	Kind   Kind
	// Prefix holds up to the first 8 content bytes.
	Prefix []byte
	// Detected is set when the content matched a signature of another kind.
	Detected string
}

func (e *UnsupportedMediaTypeError) Error() string {
	if e.Detected != "" {
		return fmt.Sprintf("resource: %q is %s content, not %s", e.Source, e.Detected, e.Kind)
	}
	return fmt.Sprintf("resource: %q has unsupported content (prefix % x)", e.Source, e.Prefix)
}

func (e *UnsupportedMediaTypeError) Is(target error) bool { return target == ErrUnsupportedMediaType }
