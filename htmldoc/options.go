package htmldoc

import (
	"github.com/spf13/afero"

	"github.com/tsawler/folio/model"
)

// NavigationExclusionMode controls how navigation, headers, and footers are filtered.
type NavigationExclusionMode int

const (
	// NavigationExclusionNone includes all content without filtering.
	NavigationExclusionNone NavigationExclusionMode = iota

	// NavigationExclusionExplicit skips only explicit semantic HTML5 elements:
	// <nav>, <aside>, and ARIA roles (role="navigation", role="complementary").
	// <header> and <footer> are only skipped when they are direct children of <body>
	// or a single top-level wrapper element.
	NavigationExclusionExplicit

	// NavigationExclusionStandard (default) adds class/id pattern matching
	// such as nav, navbar, menu, footer and sidebar.
	NavigationExclusionStandard

	// NavigationExclusionAggressive adds link-density heuristics to standard detection.
	// Sections with very high link-to-text ratios are excluded.
	NavigationExclusionAggressive
)

func (m NavigationExclusionMode) String() string {
	switch m {
	case NavigationExclusionNone:
		return "none"
	case NavigationExclusionExplicit:
		return "explicit"
	case NavigationExclusionStandard:
		return "standard"
	case NavigationExclusionAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// ParseNavigationExclusion parses a mode name; unknown names yield the
// standard mode.
func ParseNavigationExclusion(s string) NavigationExclusionMode {
	switch s {
	case "none":
		return NavigationExclusionNone
	case "explicit":
		return NavigationExclusionExplicit
	case "aggressive":
		return NavigationExclusionAggressive
	default:
		return NavigationExclusionStandard
	}
}

// ExtractOptions controls how HTML is turned into a document.
type ExtractOptions struct {
	NavigationExclusion NavigationExclusionMode

	// Fs resolves relative <img> paths. Defaults to the OS filesystem.
	Fs afero.Fs
	// BaseDir is the directory relative image paths are resolved against.
	BaseDir string

	// DocumentOptions are passed to model.New.
	DocumentOptions []model.Option
}

// DefaultExtractOptions returns the options used by Text and Document.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{NavigationExclusion: NavigationExclusionStandard}
}
