package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/nurlcrawl/nurlcrawl/internal/config"
	"github.com/nurlcrawl/nurlcrawl/internal/fetch"
	"github.com/nurlcrawl/nurlcrawl/internal/frontier"
	"github.com/nurlcrawl/nurlcrawl/internal/metadata"
	"github.com/nurlcrawl/nurlcrawl/internal/nap"
	"github.com/nurlcrawl/nurlcrawl/internal/nurl"
	"github.com/nurlcrawl/nurlcrawl/internal/politeness"
	"github.com/nurlcrawl/nurlcrawl/internal/robotscache"
	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

// stubFetcher returns a fixed canned Response/error for every call,
// regardless of the requested URL, so FETCH-stage tests can drive
// PRE-FILTER/TEXT/EXTRACT without a live page fetch.
type stubFetcher struct {
	resp fetch.Response
	err  failure.ClassifiedError
}

func (s stubFetcher) Fetch(ctx context.Context, param fetch.Param) (fetch.Response, failure.ClassifiedError) {
	return s.resp, s.err
}

func permissiveRobotsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nAllow: /\n"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestWorker(t *testing.T, fetcher fetch.Fetcher, robotsSrv *httptest.Server) (*Worker, *frontier.Frontier) {
	t.Helper()
	dir := t.TempDir()

	n, cerr := nap.New(filepath.Join(dir, "snapshot.nap"))
	if cerr != nil {
		t.Fatalf("nap.New: %v", cerr)
	}
	t.Cleanup(func() { n.Close(0) })

	gate := politeness.NewGate(0)
	robots := robotscache.New(gate, "nurlcrawl-test", 0, robotsSrv.Client())
	fr := frontier.New(n, robots, frontier.PolicyBFS, 2)

	u, err := url.Parse(robotsSrv.URL)
	if err != nil {
		t.Fatalf("parse robots server URL: %v", err)
	}
	cfg, err := config.WithDefault([]url.URL{*u}).
		WithSaveFile(filepath.Join(dir, "snapshot.nap")).
		WithUserAgent("nurlcrawl-test").
		WithTimeDelay(0).
		Build()
	if err != nil {
		t.Fatalf("Build config: %v", err)
	}

	w := &Worker{
		Label:    "test",
		Frontier: fr,
		Nap:      n,
		Gate:     gate,
		Fetcher:  fetcher,
		Sink:     metadata.NoopSink{},
		Cfg:      cfg,
	}
	return w, fr
}

func TestSift_RejectsPastMaxAbsDepth(t *testing.T) {
	srv := permissiveRobotsServer(t)
	w, _ := newTestWorker(t, stubFetcher{}, srv)

	u, _ := url.Parse(srv.URL + "/deep")
	n := nurl.New(*u)
	n.AbsDepth = w.Cfg.MaxAbsDepth() + 1

	w.process(context.Background(), n)

	got := w.Nap.Get(*u)
	if got.Finish != nurl.FinishSifted {
		t.Errorf("Finish = %v, want SIFTED", got.Finish)
	}
	if got.Status != nurl.StatusNotDownloaded {
		t.Errorf("Status = %v, want NOT_DOWNLOADED (sifted records are left for a later run)", got.Status)
	}
}

func TestProcess_RejectsOnNotAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /\n"))
	}))
	defer srv.Close()

	w, _ := newTestWorker(t, stubFetcher{}, srv)
	u, _ := url.Parse(srv.URL + "/private")
	n := nurl.New(*u)

	w.process(context.Background(), n)

	got := w.Nap.Get(*u)
	if got.Finish != nurl.FinishNotAllowed {
		t.Errorf("Finish = %v, want NOT_ALLOWED", got.Finish)
	}
}

func TestProcess_CommitsBadOn404(t *testing.T) {
	srv := permissiveRobotsServer(t)
	u, _ := url.Parse(srv.URL + "/missing")
	resp := fetch.NewResponseForTest(*u, 404, nil, nil, false, time.Now())

	w, _ := newTestWorker(t, stubFetcher{resp: resp}, srv)
	n := nurl.New(*u)

	w.process(context.Background(), n)

	got := w.Nap.Get(*u)
	if got.Finish != nurl.FinishBad {
		t.Errorf("Finish = %v, want BAD", got.Finish)
	}
	if got.Status != nurl.StatusDownloaded {
		t.Errorf("Status = %v, want DOWNLOADED (terminal commit)", got.Status)
	}
}

func TestProcess_CommitsCacheErrorOnCacheServerStatus(t *testing.T) {
	srv := permissiveRobotsServer(t)
	u, _ := url.Parse(srv.URL + "/page")
	resp := fetch.NewResponseForTest(*u, 602, nil, nil, false, time.Now())

	w, _ := newTestWorker(t, stubFetcher{resp: resp}, srv)
	n := nurl.New(*u)

	w.process(context.Background(), n)

	got := w.Nap.Get(*u)
	if got.Finish != nurl.FinishCacheError {
		t.Errorf("Finish = %v, want CACHE_ERROR", got.Finish)
	}
}

func TestProcess_EnqueuesChildOnRedirect(t *testing.T) {
	srv := permissiveRobotsServer(t)
	u, _ := url.Parse(srv.URL + "/old")
	finalU, _ := url.Parse(srv.URL + "/new")
	resp := fetch.NewResponseForTest(*finalU, 200, []byte("moved"), nil, true, time.Now())

	w, fr := newTestWorker(t, stubFetcher{resp: resp}, srv)
	n := nurl.New(*u)

	w.process(context.Background(), n)

	got := w.Nap.Get(*u)
	if got.Finish != nurl.FinishRedirect {
		t.Errorf("Finish = %v, want REDIRECT", got.Finish)
	}
	if fr.Size() == 0 {
		t.Error("expected the redirect target to be enqueued as a child Nurl")
	}
}

func TestProcess_RejectsLowInfoPreOnShortBody(t *testing.T) {
	srv := permissiveRobotsServer(t)
	u, _ := url.Parse(srv.URL + "/tiny")
	resp := fetch.NewResponseForTest(*u, 200, []byte("hi"), map[string]string{"Content-Type": "text/html"}, false, time.Now())

	w, _ := newTestWorker(t, stubFetcher{resp: resp}, srv)
	n := nurl.New(*u)

	w.process(context.Background(), n)

	got := w.Nap.Get(*u)
	if got.Finish != nurl.FinishLowInfoPre {
		t.Errorf("Finish = %v, want LOWINFO_PRE", got.Finish)
	}
}

func TestProcess_RejectsTooExactOnDuplicateContent(t *testing.T) {
	srv := permissiveRobotsServer(t)
	body := []byte(`<html><body><p>` + padding() + `</p></body></html>`)

	u1, _ := url.Parse(srv.URL + "/one")
	u2, _ := url.Parse(srv.URL + "/two")

	w, _ := newTestWorker(t, nil, srv)

	w.Fetcher = stubFetcher{resp: fetch.NewResponseForTest(*u1, 200, body, map[string]string{"Content-Type": "text/html"}, false, time.Now())}
	w.process(context.Background(), nurl.New(*u1))

	w.Fetcher = stubFetcher{resp: fetch.NewResponseForTest(*u2, 200, body, map[string]string{"Content-Type": "text/html"}, false, time.Now())}
	w.process(context.Background(), nurl.New(*u2))

	second := w.Nap.Get(*u2)
	if second.Finish != nurl.FinishTooExact {
		t.Errorf("Finish = %v, want TOO_EXACT for identical content", second.Finish)
	}
}

func TestProcess_CommitsOKAndEnqueuesLinks(t *testing.T) {
	srv := permissiveRobotsServer(t)
	u, _ := url.Parse(srv.URL + "/page")
	body := []byte(`<html><body><p>` + padding() + `</p><a href="` + srv.URL + `/child">child</a></body></html>`)
	resp := fetch.NewResponseForTest(*u, 200, body, map[string]string{"Content-Type": "text/html"}, false, time.Now())

	w, fr := newTestWorker(t, stubFetcher{resp: resp}, srv)
	n := nurl.New(*u)

	w.process(context.Background(), n)

	got := w.Nap.Get(*u)
	if got.Finish != nurl.FinishOK {
		t.Errorf("Finish = %v, want OK", got.Finish)
	}
	if fr.Size() == 0 {
		t.Error("expected the page's link to be enqueued")
	}
}

// padding supplies enough text to clear both the pre-filter minimum
// content length (200 bytes) and the post-filter low-information floors
// (minWords=20, minUniqueWords=5, and minMaxWordCount=2 via the repeated
// "alpha").
func padding() string {
	return "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima mike november oscar papa quebec romeo sierra tango uniform victor whiskey xray yankee zulu alfa beta gamma alpha"
}
