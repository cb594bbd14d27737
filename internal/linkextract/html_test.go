package linkextract

import (
	"net/url"
	"strings"
	"testing"
)

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return *u
}

func TestExtractHTML_ResolvesRelativeLinks(t *testing.T) {
	body := []byte(`<html><body>
		<nav><a href="/nav-item">nav</a></nav>
		<main>
			<p>Some real content here about widgets.</p>
			<a href="/widgets/intro">intro</a>
			<a href="https://other.example.com/page">external</a>
			<a href="#section">anchor only</a>
			<a href="mailto:a@b.com">mail</a>
		</main>
	</body></html>`)

	result, cerr := ExtractHTML(mustParseURL(t, "https://docs.example.com/widgets/"), body, false, nil)
	if cerr != nil {
		t.Fatalf("ExtractHTML: %v", cerr)
	}

	want := map[string]bool{
		"https://docs.example.com/nav-item":      false,
		"https://docs.example.com/widgets/intro": false,
		"https://other.example.com/page":         false,
	}
	for _, l := range result.Links {
		if _, ok := want[l]; ok {
			want[l] = true
		}
	}
	for l, found := range want {
		if !found {
			t.Errorf("expected link %q to be extracted, got %v", l, result.Links)
		}
	}
	if len(result.Links) != 3 {
		t.Errorf("Links = %v, want exactly 3 (anchor-only and mailto excluded)", result.Links)
	}
	if !strings.Contains(result.Text, "widgets") {
		t.Errorf("Text = %q, want to contain visible paragraph text", result.Text)
	}
}

func TestExtractHTML_ExcludesScriptAndStyleText(t *testing.T) {
	body := []byte(`<html><body>
		<script>var secret = "do-not-extract";</script>
		<style>.hidden { display: none; } /* css-only-token */</style>
		<p>Visible paragraph text.</p>
	</body></html>`)

	result, cerr := ExtractHTML(mustParseURL(t, "https://docs.example.com/"), body, false, nil)
	if cerr != nil {
		t.Fatalf("ExtractHTML: %v", cerr)
	}
	if strings.Contains(result.Text, "do-not-extract") || strings.Contains(result.Text, "css-only-token") {
		t.Errorf("Text leaked script/style content: %q", result.Text)
	}
	if !strings.Contains(result.Text, "Visible paragraph text") {
		t.Errorf("Text = %q, missing visible paragraph", result.Text)
	}
}

func TestExtractHTML_FiltersDisallowedExtensionsAndStrictSuffix(t *testing.T) {
	body := []byte(`<html><body>
		<a href="/diagram.png">image</a>
		<a href="/page.html">page</a>
		<a href="https://off-domain.com/page.html">off domain</a>
	</body></html>`)

	result, cerr := ExtractHTML(mustParseURL(t, "https://ics.uci.edu/"), body, true, []string{".uci.edu"})
	if cerr != nil {
		t.Fatalf("ExtractHTML: %v", cerr)
	}
	if len(result.Links) != 1 || result.Links[0] != "https://ics.uci.edu/page.html" {
		t.Errorf("Links = %v, want only the in-domain, non-media page", result.Links)
	}
}

func TestExtractHTML_RejectsNonHTML(t *testing.T) {
	_, cerr := ExtractHTML(mustParseURL(t, "https://example.com/"), []byte{0x00, 0x01, 0x02}, false, nil)
	if cerr == nil {
		t.Fatal("expected an error for non-HTML binary input")
	}
}

func TestExtractSitemap_ParsesURLSet(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="UTF-8"?>
	<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
		<url><loc>https://docs.example.com/a</loc></url>
		<url><loc>https://docs.example.com/b</loc></url>
	</urlset>`)

	result, cerr := ExtractSitemap(body)
	if cerr != nil {
		t.Fatalf("ExtractSitemap: %v", cerr)
	}
	if !result.IsSitemap {
		t.Error("expected IsSitemap = true")
	}
	if len(result.Links) != 2 {
		t.Fatalf("Links = %v, want 2 entries", result.Links)
	}
}

func TestExtractSitemap_ParsesSitemapIndex(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
	<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
		<sitemap><loc>https://docs.example.com/sitemap-a.xml</loc></sitemap>
	</sitemapindex>`)

	result, cerr := ExtractSitemap(body)
	if cerr != nil {
		t.Fatalf("ExtractSitemap: %v", cerr)
	}
	if len(result.Links) != 1 || result.Links[0] != "https://docs.example.com/sitemap-a.xml" {
		t.Errorf("Links = %v, want the single sitemap entry", result.Links)
	}
}

func TestExtractSitemap_RejectsNonSitemapXML(t *testing.T) {
	_, cerr := ExtractSitemap([]byte(`<?xml version="1.0"?><rss></rss>`))
	if cerr == nil {
		t.Fatal("expected an error for XML without any <loc> entries")
	}
}

func TestLooksLikeSitemap(t *testing.T) {
	cases := []struct {
		contentType string
		want        bool
	}{
		{"application/xml", true},
		{"text/xml; charset=utf-8", true},
		{"text/html; charset=utf-8", false},
		{"", false},
	}
	for _, c := range cases {
		if got := LooksLikeSitemap(c.contentType); got != c.want {
			t.Errorf("LooksLikeSitemap(%q) = %v, want %v", c.contentType, got, c.want)
		}
	}
}
