package linkextract

import (
	"bytes"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
	"github.com/nurlcrawl/nurlcrawl/pkg/urlutil"
)

// noTextSelector matches elements whose descendant text nodes are never
// visible content.
const noTextSelector = "script, style, noscript, template"

// ExtractHTML parses an HTML body relative to sourceURL, returning every
// outbound <a href> resolved to an absolute URL and filtered through
// urlutil.IsValid, plus the page's visible text for tokenization.
func ExtractHTML(sourceURL url.URL, body []byte, strict bool, allowedSuffixes []string) (Result, failure.ClassifiedError) {
	if !bytes.ContainsRune(body, '<') {
		return Result{}, &Error{Message: "body contains no markup", Cause: ErrCauseNotHTML}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Result{}, &Error{Message: err.Error(), Cause: ErrCauseNotHTML}
	}
	if doc.Find("html").Length() == 0 {
		return Result{}, &Error{Message: "no <html> element found", Cause: ErrCauseNotHTML}
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		abs, ok := resolveLink(sourceURL, href, strict, allowedSuffixes)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	doc.Find(noTextSelector).Remove()

	return Result{
		Links: links,
		Text:  collapseWhitespace(doc.Text()),
	}, nil
}

// resolveLink resolves href against the page's own URL and runs it
// through the same IsValid filter the frontier applies, so chrome and
// non-crawlable links never reach the TRANSFORM & ENQUEUE stage.
func resolveLink(base url.URL, href string, strict bool, allowedSuffixes []string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)

	if !urlutil.IsValid(*abs, strict, allowedSuffixes) {
		return "", false
	}
	return abs.String(), true
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}
