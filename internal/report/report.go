// Package report implements the read-only reporting tool over a closed
// or snapshotted Nap: total URLs, total downloads, unique subdomains,
// the longest page by non-stopword word count, and the top-N most
// common words across the crawl.
//
// Grounded on original_source/report and original_source/print_nap.py's
// summary fields, generalized from their ICS-specific subdomain framing
// to any crawled host set. Per-page identifiers use pkg/hashutil's
// blake3 hashing so a report row names a page independent of its Nurl
// urlhash.
package report

import (
	"net/url"
	"sort"

	"github.com/nurlcrawl/nurlcrawl/internal/nurl"
	"github.com/nurlcrawl/nurlcrawl/pkg/hashutil"
)

// WordCount is one entry in the top-N common-words list.
type WordCount struct {
	Word  string
	Count int
}

// PageSummary identifies the longest page by total non-stopword word
// count (WordCounts already excludes stopwords at tokenize time, so the
// sum here needs no further filtering).
type PageSummary struct {
	URL       string
	PageID    string
	WordCount int
}

// Report is the auxiliary summary derived from a completed crawl's
// persisted Nurl records.
type Report struct {
	TotalURLs        int
	TotalDownloads   int
	UniqueSubdomains int
	LongestPage      PageSummary
	TopWords         []WordCount
}

// Generate derives a Report from records — typically a Nap.Snapshot() —
// keeping the top N words by descending count (ties broken
// alphabetically for deterministic output).
func Generate(records map[string]nurl.Nurl, topN int) Report {
	var r Report
	subdomains := make(map[string]struct{})
	wordTotals := make(map[string]int)

	r.TotalURLs = len(records)

	for _, record := range records {
		if record.Status == nurl.StatusDownloaded {
			r.TotalDownloads++
		}

		if host := hostOf(record.URL); host != "" {
			subdomains[host] = struct{}{}
		}

		wordCount := 0
		for word, count := range record.Words {
			wordCount += count
			wordTotals[word] += count
		}
		if wordCount > r.LongestPage.WordCount {
			r.LongestPage = PageSummary{
				URL:       record.URL,
				PageID:    pageID(record),
				WordCount: wordCount,
			}
		}
	}

	r.UniqueSubdomains = len(subdomains)
	r.TopWords = topWords(wordTotals, topN)
	return r
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// pageID derives a stable identifier for a report row independent of
// the record's urlhash, so report output survives a urlhash algorithm
// change.
func pageID(record nurl.Nurl) string {
	id, err := hashutil.HashBytes([]byte(record.URL), hashutil.HashAlgoBLAKE3)
	if err != nil {
		return record.Hash
	}
	return id
}

func topWords(totals map[string]int, n int) []WordCount {
	words := make([]WordCount, 0, len(totals))
	for word, count := range totals {
		words = append(words, WordCount{Word: word, Count: count})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if n >= 0 && len(words) > n {
		words = words[:n]
	}
	return words
}
