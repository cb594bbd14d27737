package frontier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/nurlcrawl/nurlcrawl/internal/nap"
	"github.com/nurlcrawl/nurlcrawl/internal/nurl"
	"github.com/nurlcrawl/nurlcrawl/internal/politeness"
	"github.com/nurlcrawl/nurlcrawl/internal/robotscache"
)

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return *u
}

func newTestFrontier(t *testing.T, policy Policy, hybridH int) (*Frontier, *nap.Nap) {
	t.Helper()
	n, err := nap.New(filepath.Join(t.TempDir(), "test.nap"))
	if err != nil {
		t.Fatalf("nap.New: %v", err)
	}
	t.Cleanup(func() { n.Close(1) })

	robots := robotscache.New(politeness.NewGate(0), "test-agent", 0, nil)
	return New(n, robots, policy, hybridH), n
}

func nurlAt(u url.URL, absDepth int) nurl.Nurl {
	n := nurl.New(u)
	n.AbsDepth = absDepth
	return n
}

func TestAddNurl_EnqueuesNewURL(t *testing.T) {
	f, n := newTestFrontier(t, PolicyBFS, 0)

	u := mustParse(t, "https://example.com/a")
	f.AddNurl(nurlAt(u, 0))

	if got, want := f.Size(), 1; got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}
	if !n.Exists(u) {
		t.Fatalf("expected Nap to hold a record for %s", u.String())
	}
}

func TestAddNurl_SkipsAlreadyDownloaded(t *testing.T) {
	f, n := newTestFrontier(t, PolicyBFS, 0)

	u := mustParse(t, "https://example.com/a")
	record := nurlAt(u, 0)
	record.Status = nurl.StatusDownloaded
	n.Set(u, record)

	f.AddNurl(nurlAt(u, 0))

	if got, want := f.Size(), 0; got != want {
		t.Fatalf("Size() = %d, want %d (already-downloaded URL must not be queued)", got, want)
	}
}

func TestAddNurl_DoesNotDoubleEnqueue(t *testing.T) {
	f, _ := newTestFrontier(t, PolicyBFS, 0)

	u := mustParse(t, "https://example.com/a")
	f.AddNurl(nurlAt(u, 0))
	f.AddNurl(nurlAt(u, 0))

	if got, want := f.Size(), 1; got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}
}

func TestGetTbdNurl_BFSReturnsInInsertionOrder(t *testing.T) {
	f, _ := newTestFrontier(t, PolicyBFS, 0)

	a := mustParse(t, "https://example.com/a")
	b := mustParse(t, "https://example.com/b")
	f.AddNurl(nurlAt(a, 0))
	f.AddNurl(nurlAt(b, 0))

	got, ok := f.GetTbdNurl()
	if !ok || got.URL != a.String() {
		t.Fatalf("GetTbdNurl() = %+v, ok=%v, want a first (FIFO)", got, ok)
	}
	got, ok = f.GetTbdNurl()
	if !ok || got.URL != b.String() {
		t.Fatalf("GetTbdNurl() = %+v, ok=%v, want b second (FIFO)", got, ok)
	}
}

func TestGetTbdNurl_DFSReturnsMostRecentlyAdded(t *testing.T) {
	f, _ := newTestFrontier(t, PolicyDFS, 0)

	a := mustParse(t, "https://example.com/a")
	b := mustParse(t, "https://example.com/b")
	f.AddNurl(nurlAt(a, 0))
	f.AddNurl(nurlAt(b, 0))

	got, ok := f.GetTbdNurl()
	if !ok || got.URL != b.String() {
		t.Fatalf("GetTbdNurl() = %+v, ok=%v, want b first (LIFO)", got, ok)
	}
}

func TestGetTbdNurl_MarksClaimedNurlInUse(t *testing.T) {
	f, n := newTestFrontier(t, PolicyBFS, 0)

	u := mustParse(t, "https://example.com/a")
	f.AddNurl(nurlAt(u, 0))

	got, ok := f.GetTbdNurl()
	if !ok {
		t.Fatal("GetTbdNurl() returned ok=false, want true")
	}
	if got.Status != nurl.StatusInUse {
		t.Fatalf("returned Status = %v, want IN_USE", got.Status)
	}
	if stored := n.Get(u); stored.Status != nurl.StatusInUse {
		t.Fatalf("Nap Status = %v, want IN_USE", stored.Status)
	}
}

func TestGetTbdNurl_SkipsAlreadyInUseEntry(t *testing.T) {
	f, n := newTestFrontier(t, PolicyBFS, 0)

	u := mustParse(t, "https://example.com/a")
	f.AddNurl(nurlAt(u, 0))

	// Simulate a race: another worker already claimed it between
	// AddNurl and GetTbdNurl.
	claimed := n.Get(u)
	claimed.Status = nurl.StatusInUse
	n.Set(u, claimed)

	_, ok := f.GetTbdNurl()
	if ok {
		t.Fatal("GetTbdNurl() returned ok=true for an already IN_USE record, want it skipped")
	}
}

func TestGetTbdNurl_ExhaustedQueueReturnsFalse(t *testing.T) {
	f, _ := newTestFrontier(t, PolicyBFS, 0)
	if _, ok := f.GetTbdNurl(); ok {
		t.Fatal("GetTbdNurl() on empty frontier returned ok=true")
	}
}

func TestGetTbdNurl_HybridStaysShallowWithinThreshold(t *testing.T) {
	f, _ := newTestFrontier(t, PolicyHybrid, 2)

	a := mustParse(t, "https://example.com/a")
	b := mustParse(t, "https://example.com/b")
	f.AddNurl(nurlAt(a, 1))
	f.AddNurl(nurlAt(b, 2))

	got, ok := f.GetTbdNurl()
	if !ok || got.URL != a.String() {
		t.Fatalf("GetTbdNurl() = %+v, ok=%v, want a first (head-pop within threshold)", got, ok)
	}
}

// TestGetTbdNurl_HybridReinsertsOverDepthHead proves the Open Question
// #1 fix: when the head candidate's absdepth exceeds H, hybrid must
// reinsert the just-popped head (not lose it) and fall back to a
// tail-pop for the actual candidate returned.
func TestGetTbdNurl_HybridReinsertsOverDepthHead(t *testing.T) {
	f, _ := newTestFrontier(t, PolicyHybrid, 1)

	deep := mustParse(t, "https://example.com/deep")
	shallow := mustParse(t, "https://example.com/shallow")
	f.AddNurl(nurlAt(deep, 5))
	f.AddNurl(nurlAt(shallow, 0))

	got, ok := f.GetTbdNurl()
	if !ok || got.URL != shallow.String() {
		t.Fatalf("GetTbdNurl() = %+v, ok=%v, want shallow via tail-pop fallback", got, ok)
	}
	if got, want := f.Size(), 1; got != want {
		t.Fatalf("Size() = %d, want %d (deep candidate must still be queued, not lost)", got, want)
	}

	got, ok = f.GetTbdNurl()
	if !ok || got.URL != deep.String() {
		t.Fatalf("GetTbdNurl() = %+v, ok=%v, want the reinserted deep candidate next", got, ok)
	}
}

func TestMarkNurlComplete_WritesFinalStatus(t *testing.T) {
	f, n := newTestFrontier(t, PolicyBFS, 0)

	u := mustParse(t, "https://example.com/a")
	record := nurlAt(u, 0)
	record.Status = nurl.StatusInUse

	f.MarkNurlComplete(record, nurl.StatusDownloaded)

	if stored := n.Get(u); stored.Status != nurl.StatusDownloaded {
		t.Fatalf("Status = %v, want DOWNLOADED", stored.Status)
	}
}

func TestGetDomainInfo_EnqueuesAnnouncedSitemapURLs(t *testing.T) {
	var sitemapURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nAllow: /\nSitemap: " + sitemapURL + "\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	sitemapURL = srv.URL + "/sitemap.xml"

	f, _ := newTestFrontier(t, PolicyBFS, 0)
	u := mustParse(t, srv.URL+"/")

	entry, cerr := f.GetDomainInfo(context.Background(), u)
	if cerr != nil {
		t.Fatalf("GetDomainInfo: %v", cerr)
	}
	if len(entry.SitemapURLs) != 1 {
		t.Fatalf("entry.SitemapURLs = %v, want 1 entry", entry.SitemapURLs)
	}

	got, ok := f.GetTbdNurl()
	if !ok {
		t.Fatal("expected the announced sitemap URL to be enqueued")
	}
	if got.URL != sitemapURL {
		t.Errorf("enqueued URL = %q, want %q", got.URL, sitemapURL)
	}
	if got.Parent.Kind != nurl.ParentRobots || got.Parent.RobotsURL != entry.RobotsURL {
		t.Errorf("enqueued Nurl parent = %+v, want ParentRobots for %q", got.Parent, entry.RobotsURL)
	}
}

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"dfs", PolicyDFS, false},
		{"bfs", PolicyBFS, false},
		{"hybrid", PolicyHybrid, false},
		{"nonsense", "", true},
	}
	for _, c := range cases {
		got, err := ParsePolicy(c.in)
		if (err != nil) != c.wantErr {
			t.Fatalf("ParsePolicy(%q) err = %v, wantErr %v", c.in, err, c.wantErr)
		}
		if got != c.want {
			t.Fatalf("ParsePolicy(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
