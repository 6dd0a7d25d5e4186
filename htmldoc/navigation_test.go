package htmldoc

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// page wraps body content in a minimal document.
func page(body string) string {
	return "<html><head><title>t</title></head><body>" + body + "</body></html>"
}

func textFor(t *testing.T, src string, mode NavigationExclusionMode) string {
	t.Helper()
	r, err := OpenReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	text, err := r.TextWithOptions(ExtractOptions{NavigationExclusion: mode})
	if err != nil {
		t.Fatalf("TextWithOptions: %v", err)
	}
	return text
}

func TestNavigationExclusion(t *testing.T) {
	const article = `<main><h1>Invoice</h1><p>Amount due</p></main>`
	tests := []struct {
		name    string
		body    string
		mode    NavigationExclusionMode
		kept    []string
		dropped []string
	}{
		{"none keeps chrome",
			`<nav><p>Home | Pricing</p></nav>` + article + `<footer><p>All rights reserved</p></footer>`,
			NavigationExclusionNone, []string{"Home", "Pricing", "Invoice", "All rights reserved"}, nil},
		{"explicit drops nav",
			`<nav><a href="/">Home</a><a href="/p">Pricing</a></nav>` + article,
			NavigationExclusionExplicit, []string{"Invoice", "Amount due"}, []string{"Home", "Pricing"}},
		{"explicit drops aside",
			`<aside><p>Related reading</p></aside>` + article,
			NavigationExclusionExplicit, []string{"Invoice"}, []string{"Related reading"}},
		{"explicit keeps header inside article",
			`<header><h1>Acme Ltd</h1></header><article><header><h2>Order 42</h2></header><p>Shipped</p></article>`,
			NavigationExclusionExplicit, []string{"Order 42", "Shipped"}, []string{"Acme Ltd"}},
		{"explicit keeps footer inside article",
			`<article><p>Shipped</p><footer><p>Signed by clerk</p></footer></article><footer><p>Acme copyright</p></footer>`,
			NavigationExclusionExplicit, []string{"Shipped", "Signed by clerk"}, []string{"Acme copyright"}},
		{"explicit drops navigation role",
			`<div role="navigation"><a href="/">Home</a></div>` + article,
			NavigationExclusionExplicit, []string{"Invoice"}, []string{"Home"}},
		{"explicit drops page-level banner role",
			`<div role="banner"><h1>Acme Ltd</h1></div>` + article,
			NavigationExclusionExplicit, []string{"Invoice"}, []string{"Acme Ltd"}},
		{"explicit ignores class names",
			`<div class="navbar"><p>Home</p></div>` + article,
			NavigationExclusionExplicit, []string{"Home", "Invoice"}, nil},
		{"standard drops nav class",
			`<div class="main-navigation"><a href="/">Home</a></div>` + article,
			NavigationExclusionStandard, []string{"Invoice"}, []string{"Home"}},
		{"standard drops footer id",
			article + `<div id="footer"><p>Acme copyright</p></div>`,
			NavigationExclusionStandard, []string{"Invoice"}, []string{"Acme copyright"}},
		{"standard drops sidebar and breadcrumb",
			`<div class="sidebar"><p>Tag cloud</p></div><div class="breadcrumb"><a href="/">Home</a> &gt; <a href="/b">Billing</a></div>` + article,
			NavigationExclusionStandard, []string{"Invoice"}, []string{"Tag cloud", "Billing"}},
		{"standard keeps lookalike names",
			`<div class="navigator-results"><p>Search navigator</p></div>` + article,
			NavigationExclusionStandard, []string{"Search navigator", "Invoice"}, nil},
		{"page wrapper counts as page level",
			`<div id="wrapper"><header><h1>Acme Ltd</h1></header>` + article + `<footer><p>Acme copyright</p></footer></div>`,
			NavigationExclusionStandard, []string{"Invoice"}, []string{"Acme Ltd", "Acme copyright"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := textFor(t, page(tt.body), tt.mode)
			for _, s := range tt.kept {
				if !strings.Contains(text, s) {
					t.Errorf("missing %q in:\n%s", s, text)
				}
			}
			for _, s := range tt.dropped {
				if strings.Contains(text, s) {
					t.Errorf("unexpected %q in:\n%s", s, text)
				}
			}
		})
	}
}

func TestNavigationExclusion_LinkDensity(t *testing.T) {
	src := page(`<div class="related">
		<a href="/1">Q1</a> <a href="/2">Q2</a> <a href="/3">Q3</a> <a href="/4">Q4</a>
	</div>
	<main><h1>Annual summary</h1><p>Revenue grew in every quarter.</p></main>`)

	if text := textFor(t, src, NavigationExclusionStandard); !strings.Contains(text, "Q1") {
		t.Errorf("standard mode dropped the link list:\n%s", text)
	}
	text := textFor(t, src, NavigationExclusionAggressive)
	if strings.Contains(text, "Q1") {
		t.Errorf("aggressive mode kept the link list:\n%s", text)
	}
	if !strings.Contains(text, "Annual summary") {
		t.Errorf("aggressive mode dropped the article:\n%s", text)
	}
}

func TestBoilerplateName(t *testing.T) {
	for v, want := range map[string]bool{
		"nav":                true,
		"top-nav":            true,
		"nav-bar":            true,
		"navbar":             true,
		"breadcrumbs":        true,
		"site-footer":        true,
		"Widget":             true,
		"navigator":          false,
		"mynavigationsystem": false,
		"content":            false,
	} {
		if got := boilerplateName.MatchString(v); got != want {
			t.Errorf("boilerplateName(%q) = %v, want %v", v, got, want)
		}
	}
}

func parseBody(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page(body)))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestPageWrapper(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`<div id="w"><p>x</p></div>`, "w"},
		{`<script></script><main id="w"><p>x</p></main>`, "w"},
		{`<div id="a"></div><div id="b"></div>`, ""},
		{`<p>x</p><div id="w"></div>`, ""},
	}
	for _, tt := range tests {
		body := findElement(parseBody(t, tt.body), "body")
		got := ""
		if w := pageWrapper(body); w != nil {
			got = attrValue(w, "id")
		}
		if got != tt.want {
			t.Errorf("pageWrapper(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestLinkStats(t *testing.T) {
	doc := parseBody(t, `<div id="d">Total: <a href="/a">one</a> <span><a href="/b">two</a></span></div>`)
	f := newNavFilter(NavigationExclusionAggressive, doc)
	d := findElement(doc, "div")

	s := f.linkStats(d)
	want := linkStats{text: len("Total:") + len("one") + len("two"), linkText: len("onetwo"), links: 2}
	if s != want {
		t.Errorf("linkStats = %+v, want %+v", s, want)
	}
	if _, ok := f.stats[d]; !ok {
		t.Error("stats were not cached")
	}
	if linkHeavy(f, d) {
		t.Error("two links should not count as link heavy")
	}
}

func TestNavFilter_NoneDropsNothing(t *testing.T) {
	doc := parseBody(t, `<nav><a href="/">Home</a></nav>`)
	f := newNavFilter(NavigationExclusionNone, doc)
	if f.drop(findElement(doc, "nav")) {
		t.Error("none mode dropped nav")
	}
	f = newNavFilter(NavigationExclusionExplicit, doc)
	if !f.drop(findElement(doc, "nav")) {
		t.Error("explicit mode kept nav")
	}
}

func TestDefaultExtractOptionsUsesStandard(t *testing.T) {
	if got := DefaultExtractOptions().NavigationExclusion; got != NavigationExclusionStandard {
		t.Errorf("default exclusion = %v, want standard", got)
	}
}

func TestText_ExcludesNavigationByDefault(t *testing.T) {
	r, err := OpenReader(strings.NewReader(page(`<nav><a href="/">Home</a></nav><main><h1>Invoice</h1></main>`)))
	if err != nil {
		t.Fatal(err)
	}
	text, err := r.Text()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(text, "Home") || !strings.Contains(text, "Invoice") {
		t.Errorf("Text() = %q", text)
	}
}

func TestParseNavigationExclusion(t *testing.T) {
	for _, mode := range []NavigationExclusionMode{
		NavigationExclusionNone,
		NavigationExclusionExplicit,
		NavigationExclusionStandard,
		NavigationExclusionAggressive,
	} {
		if got := ParseNavigationExclusion(mode.String()); got != mode {
			t.Errorf("ParseNavigationExclusion(%q) = %v, want %v", mode.String(), got, mode)
		}
	}
	if got := ParseNavigationExclusion("bogus"); got != NavigationExclusionStandard {
		t.Errorf("unknown mode should parse as standard, got %v", got)
	}
}

func TestExcludedContentNeverReachesDocument(t *testing.T) {
	r, err := OpenReader(strings.NewReader(page(`<nav><a href="/">Home</a></nav><main><h1>Title</h1><p>Content</p></main>`)))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	doc, err := r.Document()
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	for _, rel := range doc.Resources.Relationships(doc.Sections[0].Context()) {
		if rel.Target == "/" {
			t.Errorf("navigation link was registered: %+v", rel)
		}
	}
}
