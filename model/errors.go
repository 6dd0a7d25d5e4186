package model

import "errors"

var (
	// ErrFrozen is raised by builders called after Document.Freeze.
	ErrFrozen = errors.New("model: document is frozen")
	// ErrInvariant is returned by Verify when the tree references an
	// identifier the registries do not know. It indicates a bug, not bad input.
	ErrInvariant = errors.New("model: invariant violation")
	// SkipChildren can be returned from a WalkFunc to skip an element's children.
	SkipChildren = errors.New("model: skip children")
)
