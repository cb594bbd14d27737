// Package linkextract implements the worker pipeline's EXTRACT stage: it
// parses a fetched response body into a DOM (or an XML sitemap) and
// yields the outbound link set, visible text, and token stream the
// rest of the pipeline needs.
package linkextract

// Result is what the EXTRACT stage consumes: the set of outbound links
// discovered on a page (for HTML, resolved to absolute and
// IsValid-filtered URLs), the visible text for tokenization, and whether
// the source was recognized as an XML sitemap (in which case Text is
// empty and Links are the <loc> entries as written, neither resolved nor
// IsValid-filtered).
type Result struct {
	Links     []string
	Text      string
	IsSitemap bool
}
