package linkextract

import (
	"encoding/xml"
	"strings"

	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

// sitemapURLSet and sitemapIndex cover the two XML shapes a
// robots.txt-announced sitemap can take: a <urlset> of <url><loc> page
// entries, or a <sitemapindex> of <sitemap><loc> entries pointing at
// further sitemaps. Both are unmarshaled into the same <loc> list.
type sitemapURLSet struct {
	XMLName xml.Name      `xml:"urlset"`
	URLs    []sitemapEntry `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name      `xml:"sitemapindex"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

type sitemapEntry struct {
	Loc string `xml:"loc"`
}

// ExtractSitemap parses an XML sitemap (or sitemap index) body and
// returns its <loc> entries verbatim. Callers are responsible for
// turning each into a ParentRobots-tagged Nurl.
func ExtractSitemap(body []byte) (Result, failure.ClassifiedError) {
	var set sitemapURLSet
	if err := xml.Unmarshal(body, &set); err == nil && len(set.URLs) > 0 {
		return Result{Links: locsOf(set.URLs), IsSitemap: true}, nil
	}

	var idx sitemapIndex
	if err := xml.Unmarshal(body, &idx); err == nil && len(idx.Sitemaps) > 0 {
		return Result{Links: locsOf(idx.Sitemaps), IsSitemap: true}, nil
	}

	return Result{}, &Error{Message: "no <loc> entries found", Cause: ErrCauseNotXML}
}

func locsOf(entries []sitemapEntry) []string {
	locs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Loc != "" {
			locs = append(locs, e.Loc)
		}
	}
	return locs
}

// LooksLikeSitemap reports whether a Content-Type value indicates an XML
// sitemap rather than an HTML page, used by the pipeline's EXTRACT stage
// to choose between ExtractHTML and ExtractSitemap.
func LooksLikeSitemap(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "xml")
}
