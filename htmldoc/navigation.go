package htmldoc

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// boilerplateName matches class and id tokens used for site chrome.
var boilerplateName = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumbs?|` +
		`site-header|page-header|masthead|banner|` +
		`footer|site-footer|page-footer|colophon|` +
		`sidebar|widget-area|widget|aside)([^a-z]|$)`)

// Aggressive mode drops link-heavy containers: more than linkShare of their
// text inside anchors and at least minLinks anchors.
const (
	linkShare = 0.6
	minLinks  = 4
)

// navRule reports whether an element is site navigation.
type navRule func(f *navFilter, n *html.Node) bool

// navFilter decides which elements of a page are dropped before the document
// tree is built. Rules accumulate with the mode: explicit markup first, then
// class and id names, then link density.
type navFilter struct {
	rules []navRule
	// roots are the parents whose header and footer children count as page
	// chrome: the body, plus a lone div or main wrapping the whole page.
	roots [2]*html.Node
	stats map[*html.Node]linkStats
}

func newNavFilter(mode NavigationExclusionMode, doc *html.Node) *navFilter {
	f := &navFilter{stats: make(map[*html.Node]linkStats)}
	switch {
	case mode >= NavigationExclusionAggressive:
		f.rules = []navRule{semanticChrome, namedChrome, linkHeavy}
	case mode == NavigationExclusionStandard:
		f.rules = []navRule{semanticChrome, namedChrome}
	case mode == NavigationExclusionExplicit:
		f.rules = []navRule{semanticChrome}
	}

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	f.roots[0] = body
	f.roots[1] = pageWrapper(body)
	return f
}

// pageWrapper returns the single div or main child of body, or nil when the
// body has any other structure.
func pageWrapper(body *html.Node) *html.Node {
	var wrapper *html.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
		case atom.Div, atom.Main:
			if wrapper != nil {
				return nil
			}
			wrapper = c
		default:
			return nil
		}
	}
	return wrapper
}

// drop reports whether n and its subtree are left out of the document.
func (f *navFilter) drop(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, rule := range f.rules {
		if rule(f, n) {
			return true
		}
	}
	return false
}

// atPageLevel reports whether n sits directly under the body or the page
// wrapper.
func (f *navFilter) atPageLevel(n *html.Node) bool {
	return n.Parent != nil && (n.Parent == f.roots[0] || n.Parent == f.roots[1])
}

// semanticChrome matches nav and aside anywhere, navigation ARIA roles, and
// page-level header, footer, banner and contentinfo.
func semanticChrome(f *navFilter, n *html.Node) bool {
	switch n.DataAtom {
	case atom.Nav, atom.Aside:
		return true
	}
	switch attrValue(n, "role") {
	case "navigation", "complementary":
		return true
	case "banner", "contentinfo":
		return f.atPageLevel(n)
	}
	switch n.DataAtom {
	case atom.Header, atom.Footer:
		return f.atPageLevel(n)
	}
	return false
}

func namedChrome(_ *navFilter, n *html.Node) bool {
	for _, key := range [...]string{"class", "id"} {
		if v := attrValue(n, key); v != "" && boilerplateName.MatchString(v) {
			return true
		}
	}
	return false
}

func linkHeavy(f *navFilter, n *html.Node) bool {
	switch n.DataAtom {
	case atom.Div, atom.Section, atom.Ul, atom.Ol:
	default:
		return false
	}
	s := f.linkStats(n)
	return s.links >= minLinks && s.text > 0 && float64(s.linkText)/float64(s.text) > linkShare
}

// linkStats counts trimmed text bytes under a node, the part of it inside
// anchors, and the anchors themselves.
type linkStats struct {
	text, linkText, links int
}

func (f *navFilter) linkStats(n *html.Node) linkStats {
	if s, ok := f.stats[n]; ok {
		return s
	}
	s := collectLinkStats(n, false)
	f.stats[n] = s
	return s
}

func collectLinkStats(n *html.Node, inLink bool) linkStats {
	var s linkStats
	switch {
	case n.Type == html.TextNode:
		s.text = len(strings.TrimSpace(n.Data))
		if inLink {
			s.linkText = s.text
		}
		return s
	case n.Type == html.ElementNode && n.DataAtom == atom.A:
		s.links = 1
		inLink = true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cs := collectLinkStats(c, inLink)
		s.text += cs.text
		s.linkText += cs.linkText
		s.links += cs.links
	}
	return s
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
