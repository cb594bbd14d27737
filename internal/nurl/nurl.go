// Package nurl defines the Nurl (node URL) record: a URL plus all
// crawl-time metadata the Nap persists and the pipeline mutates.
//
// Follows internal/frontier/data.go's value-type style (constructors,
// getter methods, string-backed enums); the depth-computation contract
// follows crawler2/nurl.py.
package nurl

import (
	"net/url"

	"github.com/nurlcrawl/nurlcrawl/pkg/urlutil"
)

// Status is the Nurl's download lifecycle state.
type Status string

const (
	StatusNotDownloaded Status = "NOT_DOWNLOADED"
	StatusInUse         Status = "IN_USE"
	StatusDownloaded    Status = "DOWNLOADED"
)

// Finish records the terminal classification a worker assigned the Nurl.
// The zero value means no classification has been recorded yet.
type Finish string

const (
	FinishNone        Finish = ""
	FinishOK          Finish = "OK"
	FinishBad         Finish = "BAD"
	FinishLowInfoPre  Finish = "LOWINFO_PRE"
	FinishLowInfoPost Finish = "LOWINFO_POST"
	FinishTooExact    Finish = "TOO_EXACT"
	FinishTooSimilar  Finish = "TOO_SIMILAR"
	FinishNotAllowed  Finish = "NOT_ALLOWED"
	FinishRedirect    Finish = "REDIRECT"
	FinishSifted      Finish = "SIFTED"
	FinishCacheError  Finish = "CACHE_ERROR"
)

// ParentKind distinguishes the three ways a Nurl's parent can be
// referenced. The source marks sitemap-derived Nurls by storing the
// robots URL string in place of a parent hash; here that's an explicit
// enum variant instead of an implicit string-shape convention.
type ParentKind string

const (
	ParentSeed   ParentKind = "SEED"
	ParentRobots ParentKind = "ROBOTS"
	ParentNurl   ParentKind = "NURL"
)

// ParentRef names where a Nurl came from: no parent (seed), a robots.txt
// sitemap announcement (carrying the robots.txt URL), or another Nurl
// (carrying its urlhash).
type ParentRef struct {
	Kind ParentKind `msgpack:"kind"`
	// RobotsURL is set only when Kind == ParentRobots.
	RobotsURL string `msgpack:"robots_url,omitempty"`
	// NurlHash is set only when Kind == ParentNurl.
	NurlHash string `msgpack:"nurl_hash,omitempty"`
}

// SeedParent is the ParentRef for a seed URL.
func SeedParent() ParentRef {
	return ParentRef{Kind: ParentSeed}
}

// RobotsParent is the ParentRef for a sitemap URL announced by robots.txt.
func RobotsParent(robotsURL string) ParentRef {
	return ParentRef{Kind: ParentRobots, RobotsURL: robotsURL}
}

// NurlParent is the ParentRef for a URL discovered by following a link on
// another Nurl.
func NurlParent(hash string) ParentRef {
	return ParentRef{Kind: ParentNurl, NurlHash: hash}
}

// Nurl is one discovered URL plus its crawl metadata. Field names are
// stable across the msgpack boundary: a persisted snapshot must remain
// loadable as this type evolves, so fields are added, never renamed.
type Nurl struct {
	URL    string `msgpack:"url"`
	Hash   string `msgpack:"hash"`
	Status Status `msgpack:"status"`
	Finish Finish `msgpack:"finish"`

	Parent ParentRef `msgpack:"parent"`

	AbsDepth  int `msgpack:"absdepth"`
	RelDepth  int `msgpack:"reldepth"`
	MonoDepth int `msgpack:"monodepth"`
	DupDepth  int `msgpack:"dupdepth"`

	Words map[string]int `msgpack:"words"`
	Links []string       `msgpack:"links"`

	ExHash  string `msgpack:"exhash"`
	SimHash uint32 `msgpack:"simhash"`
}

// New creates a default NOT_DOWNLOADED Nurl for a raw URL string. The
// caller is expected to have already validated the URL.
func New(u url.URL) Nurl {
	norm := urlutil.Normalize(u)
	return Nurl{
		URL:    norm.String(),
		Hash:   urlutil.Hash(u),
		Status: StatusNotDownloaded,
		Finish: FinishNone,
		Parent: SeedParent(),
		Words:  make(map[string]int),
		Links:  make([]string, 0),
	}
}

// SetParent recomputes n's parent reference and all four depth fields
// from parent, per the deterministic depth-computation contract: with
// normalized child path C and parent path P sharing scheme+host and C
// prefixed by P, let Δ = slashes(C) - slashes(P). If Δ=0, reldepth and
// monodepth reset to 0 and dupdepth increments. If Δ≥1, monodepth
// increments, dupdepth resets to 0, and reldepth increments only when
// Δ=1 (otherwise resets to 0). Any other relationship (different
// scheme+host, or not a path prefix) resets all three to 0. absdepth is
// always parent.absdepth + 1.
func (n *Nurl) SetParent(parent *Nurl) {
	childURL, err := url.Parse(n.URL)
	if err != nil {
		return
	}
	parentURL, err := url.Parse(parent.URL)
	if err != nil {
		return
	}

	n.Parent = NurlParent(parent.Hash)
	n.AbsDepth = parent.AbsDepth + 1

	delta := urlutil.RelativeDirDepth(*childURL, *parentURL)

	var rd, md, dd int
	switch {
	case delta == 0:
		rd, md, dd = 0, 0, parent.DupDepth+1
	case delta >= 1:
		md, dd = parent.MonoDepth+1, 0
		if delta == 1 {
			rd = parent.RelDepth + 1
		}
	}

	n.RelDepth = rd
	n.MonoDepth = md
	n.DupDepth = dd
}

// Repair resets an IN_USE status to NOT_DOWNLOADED. Called on Nap load to
// recover from a crash that left a record claimed but never completed.
func (n *Nurl) Repair() {
	if n.Status == StatusInUse {
		n.Status = StatusNotDownloaded
	}
}
