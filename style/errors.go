package style

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("style: invalid style")
	// ErrSealed is returned when a sealed registry is modified.
	ErrSealed = errors.New("style: registry is sealed")
)

// ValidationError reports a bad style name, kind or value. It signals a
// programming error in the code building the document.
type ValidationError struct {
	Op   string
	Name string
	Kind Kind
	Err  error
}

func (e *ValidationError) Error() string {
	msg := "style: " + e.Op
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Kind != KindUnknown {
		msg += " (" + e.Kind.String() + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
