// Package frontier implements the pending-URL queue and its traversal
// policy: add_nurl/get_tbd_nurl/mark_nurl_complete operating on
// Nap-backed Nurl records, plus get_domain_info as a thin pass-through
// to the robots cache.
//
// Built on FIFOQueue (queue.go, extended here with PushHead/PopTail for
// the dfs/hybrid policies) and Set (set.go) as the underlying data
// structures. The Frontier owns the queue AND consults the Nap
// directly on every pop, rather than assuming an already-admitted URL
// with no backing store of its own.
package frontier

import (
	"context"
	"net/url"
	"sync"

	"github.com/nurlcrawl/nurlcrawl/internal/nap"
	"github.com/nurlcrawl/nurlcrawl/internal/nurl"
	"github.com/nurlcrawl/nurlcrawl/internal/robotscache"
	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
)

// Frontier is the thread-safe pending-URL queue. It holds urlhashes,
// not full Nurl values — the Nap is the single source of truth for a
// Nurl's current fields, so the queue never goes stale relative to
// concurrent mark_nurl_complete calls from other workers.
type Frontier struct {
	mu     sync.Mutex
	queue  FIFOQueue[string]
	queued Set[string]
	byHash map[string]url.URL

	nap    *nap.Nap
	robots *robotscache.Cache

	policy  Policy
	hybridH int
}

// New creates an empty Frontier backed by nap for Nurl storage and
// robots for per-domain politeness/robots.txt lookups.
func New(n *nap.Nap, robots *robotscache.Cache, policy Policy, hybridH int) *Frontier {
	return &Frontier{
		queue:   NewFIFOQueue[string](),
		queued:  NewSet[string](),
		byHash:  make(map[string]url.URL),
		nap:     n,
		robots:  robots,
		policy:  policy,
		hybridH: hybridH,
	}
}

// AddNurl is a no-op if the Nap's stored copy of n is already
// DOWNLOADED. Otherwise it ensures n exists in the Nap (inserting it if
// missing, without clobbering an existing record) and enqueues its
// hash.
func (f *Frontier) AddNurl(n nurl.Nurl) {
	u, err := url.Parse(n.URL)
	if err != nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.nap.Exists(*u) {
		f.nap.Set(*u, n)
	} else if existing := f.nap.Get(*u); existing.Status == nurl.StatusDownloaded {
		return
	}

	f.byHash[n.Hash] = *u

	if f.queued.Contains(n.Hash) {
		return
	}
	f.queued.Add(n.Hash)
	f.queue.Enqueue(n.Hash)
}

// Requeue reverts n to NOT_DOWNLOADED and re-enqueues it: unlike
// AddNurl (which never updates an existing record's stored status),
// this unconditionally persists the reverted status before placing the
// hash back on the queue. Used by the FETCH stage when retries are
// exhausted and by any other caller that needs to give a claimed-but-
// failed Nurl back to the frontier.
func (f *Frontier) Requeue(n nurl.Nurl) {
	u, err := url.Parse(n.URL)
	if err != nil {
		return
	}
	n.Status = nurl.StatusNotDownloaded

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nap.Set(*u, n)
	f.byHash[n.Hash] = *u
	if f.queued.Contains(n.Hash) {
		return
	}
	f.queued.Add(n.Hash)
	f.queue.Enqueue(n.Hash)
}

// GetTbdNurl dequeues per the configured traversal policy, re-reading
// the Nap's copy of each candidate before returning it: if the Nap
// record is NOT_DOWNLOADED, it is atomically transitioned to IN_USE and
// returned; if it is already IN_USE or DOWNLOADED (a race with another
// worker, or a stale queue entry), it is skipped and the next candidate
// is considered. Returns ok=false once the queue is exhausted.
//
// The frontier lock and the Nap lock are never held at once here: each
// iteration acquires and releases frontier_lock to pop a hash, then
// separately acquires nap_lock via Transact, honoring the
// nap_lock → frontier_lock ordering by never nesting the reverse.
func (f *Frontier) GetTbdNurl() (nurl.Nurl, bool) {
	for {
		u, ok := f.popLocked()
		if !ok {
			return nurl.Nurl{}, false
		}

		var claimed nurl.Nurl
		var ok2 bool
		f.nap.Transact(func(get func(url.URL) nurl.Nurl, set func(url.URL, nurl.Nurl)) {
			record := get(u)
			if record.Status != nurl.StatusNotDownloaded {
				return
			}
			record.Status = nurl.StatusInUse
			set(record.URL, record)
			claimed, ok2 = record, true
		})
		if ok2 {
			return claimed, true
		}
		// Skipped: already IN_USE or DOWNLOADED. Continue to the next
		// candidate.
	}
}

// popLocked pops the next candidate hash per policy under frontier_lock
// and resolves it to a URL via byHash, all before releasing the lock.
// dfs/bfs resolve in one step; hybrid's depth-dependent reinsertion
// requires reading the Nap, which must happen with frontier_lock
// released (nap_lock → frontier_lock ordering), so popLocked hands it
// to popHybrid, which takes and releases frontier_lock itself in two
// phases instead of living inside this single critical section.
func (f *Frontier) popLocked() (u url.URL, ok bool) {
	if f.policy == PolicyHybrid {
		return f.popHybrid()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var hash string
	if f.policy == PolicyDFS {
		hash, ok = f.queue.PopTail()
	} else {
		hash, ok = f.queue.Dequeue()
	}
	if !ok {
		return url.URL{}, false
	}
	f.queued.Remove(hash)
	return f.byHash[hash], true
}

// popHybrid head-pops while the head's absolute depth is within
// hybridH; otherwise it reinserts the just-popped head (not some other
// reference — a bug in the original Python fixed here) and falls back
// to a tail-pop. The depth check reads the Nap outside frontier_lock,
// so the queue is briefly touched twice under separate lock
// acquisitions rather than once under a lock held across the Nap read.
func (f *Frontier) popHybrid() (url.URL, bool) {
	f.mu.Lock()
	hash, ok := f.queue.Dequeue()
	if ok {
		f.queued.Remove(hash)
	}
	u := f.byHash[hash]
	f.mu.Unlock()
	if !ok {
		return url.URL{}, false
	}

	record := f.nap.Get(u)
	if record.AbsDepth <= f.hybridH {
		return u, true
	}

	f.mu.Lock()
	f.queue.PushHead(hash)
	f.queued.Add(hash)
	tailHash, ok := f.queue.PopTail()
	if ok {
		f.queued.Remove(tailHash)
	}
	tailURL := f.byHash[tailHash]
	f.mu.Unlock()

	if !ok {
		return url.URL{}, false
	}
	return tailURL, true
}

// MarkNurlComplete writes the final status/finish and the rest of n's
// fields into the Nap.
func (f *Frontier) MarkNurlComplete(n nurl.Nurl, status nurl.Status) {
	u, err := url.Parse(n.URL)
	if err != nil {
		return
	}
	n.Status = status
	f.nap.Set(*u, n)
}

// GetDomainInfo is a pass-through to the robots cache, plus enqueueing
// any sitemap URLs robots.txt announced. AddNurl's own dedup (queued-set
// membership, DOWNLOADED-skip) makes this safe to call on every FETCH
// rather than only on the domain's first lookup.
func (f *Frontier) GetDomainInfo(ctx context.Context, u url.URL) (*robotscache.Entry, failure.ClassifiedError) {
	entry, cerr := f.robots.GetDomainInfo(ctx, u)
	if cerr != nil {
		return nil, cerr
	}
	f.enqueueSitemapURLs(entry)
	return entry, nil
}

// enqueueSitemapURLs adds every sitemap URL robots.txt announced as a
// Nurl whose parent is the robots.txt URL itself, so crawl stats and
// depth accounting can tell a sitemap-discovered page apart from one
// reached by following a link.
func (f *Frontier) enqueueSitemapURLs(entry *robotscache.Entry) {
	for _, raw := range entry.SitemapURLs {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		n := nurl.New(*u)
		n.Parent = nurl.RobotsParent(entry.RobotsURL)
		f.AddNurl(n)
	}
}

// Size reports the number of hashes currently queued.
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Size()
}
