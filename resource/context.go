package resource

import "strconv"

// Scope is the kind of part a Context belongs to.
type Scope int

const (
	ScopeBody Scope = iota
	ScopeHeader
	ScopeFooter
	ScopeFootnotes
	ScopeEndnotes
)

func (s Scope) String() string {
	switch s {
	case ScopeBody:
		return "body"
	case ScopeHeader:
		return "header"
	case ScopeFooter:
		return "footer"
	case ScopeFootnotes:
		return "footnotes"
	case ScopeEndnotes:
		return "endnotes"
	default:
		return "unknown"
	}
}

// Context is an identifier namespace. Header and footer contexts carry a
// positive instance index; the other scopes use index 0.
type Context struct {
	Scope Scope
	Index int
}

// Body is the main document context.
func Body() Context { return Context{Scope: ScopeBody} }

// Header is the context of header instance n.
func Header(n int) Context { return Context{Scope: ScopeHeader, Index: n} }

// Footer is the context of footer instance n.
func Footer(n int) Context { return Context{Scope: ScopeFooter, Index: n} }

// Footnotes is the context of the footnotes part.
func Footnotes() Context { return Context{Scope: ScopeFootnotes} }

// Endnotes is the context of the endnotes part.
func Endnotes() Context { return Context{Scope: ScopeEndnotes} }

// Valid reports whether c names a real namespace.
func (c Context) Valid() bool {
	switch c.Scope {
	case ScopeHeader, ScopeFooter:
		return c.Index > 0
	case ScopeBody, ScopeFootnotes, ScopeEndnotes:
		return c.Index == 0
	}
	return false
}

// String returns the part-style name: body, header1, footer2, footnotes.
func (c Context) String() string {
	if c.Scope == ScopeHeader || c.Scope == ScopeFooter {
		return c.Scope.String() + strconv.Itoa(c.Index)
	}
	return c.Scope.String()
}
