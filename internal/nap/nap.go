// Package nap implements the thread-safe, persistent Nurl store.
//
// Follows crawler2/nap.py for the dict/save/autosave contract. Go's
// sync.Mutex isn't reentrant like Python's RLock, so compound
// get-then-set sequences are expressed through Transact rather than
// nested locking, and the autosave loop selects on an explicit shutdown
// channel instead of polling main-thread liveness. Atomic persistence
// uses pkg/fileutil.EnsureDir plus a tmp-file-then-rename swap.
package nap

import (
	"encoding/binary"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/nurlcrawl/nurlcrawl/internal/nurl"
	"github.com/nurlcrawl/nurlcrawl/pkg/failure"
	"github.com/nurlcrawl/nurlcrawl/pkg/fileutil"
	"github.com/nurlcrawl/nurlcrawl/pkg/urlutil"
)

const lengthPrefixSize = 4

// Nap is a thread-safe keyed store of Nurls, persisted to fname as an
// atomically-replaced snapshot and periodically autosaved in the
// background.
type Nap struct {
	mu     sync.Mutex
	fname  string
	data   map[string]nurl.Nurl
	writes int
	closed bool

	exBuckets  map[string]*bucket
	simBuckets map[uint32]*bucket

	interval  time.Duration
	threshold int

	shutdown chan struct{}
	done     chan struct{}
}

// Option configures autosave behavior. Defaults mirror the Python
// original: a 2-second wake interval and a 20-write threshold.
type Option func(*Nap)

// WithAutosave overrides the autosave interval and write-count threshold.
func WithAutosave(interval time.Duration, threshold int) Option {
	return func(n *Nap) {
		n.interval = interval
		n.threshold = threshold
	}
}

// New opens (or creates) the Nap snapshot at fname and starts its
// autosave goroutine. Any record persisted with status IN_USE is
// repaired to NOT_DOWNLOADED before use, recovering from a crash that
// left it claimed but never completed.
func New(fname string, opts ...Option) (*Nap, failure.ClassifiedError) {
	n := &Nap{
		fname:      fname,
		data:       make(map[string]nurl.Nurl),
		interval:   2 * time.Second,
		threshold:  20,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		exBuckets:  make(map[string]*bucket),
		simBuckets: make(map[uint32]*bucket),
	}
	for _, opt := range opts {
		opt(n)
	}

	if err := n.load(); err != nil {
		return nil, err
	}
	n.reconstructBuckets()

	go n.autosaveLoop()
	return n, nil
}

func (n *Nap) load() failure.ClassifiedError {
	if _, err := os.Stat(n.fname); os.IsNotExist(err) {
		return nil
	}

	raw, err := os.ReadFile(n.fname)
	if err != nil {
		return &Error{Message: err.Error(), Retryable: false, Cause: ErrCauseLoadFailure, Path: n.fname}
	}
	if len(raw) < lengthPrefixSize {
		return &Error{Message: "snapshot shorter than length prefix", Retryable: false, Cause: ErrCauseCorruptData, Path: n.fname}
	}

	size := binary.LittleEndian.Uint32(raw[:lengthPrefixSize])
	body := raw[lengthPrefixSize:]
	if uint32(len(body)) < size {
		return &Error{Message: "snapshot truncated", Retryable: false, Cause: ErrCauseCorruptData, Path: n.fname}
	}

	decoded := make(map[string]nurl.Nurl)
	if err := msgpack.Unmarshal(body[:size], &decoded); err != nil {
		return &Error{Message: err.Error(), Retryable: false, Cause: ErrCauseCorruptData, Path: n.fname}
	}

	for hash, record := range decoded {
		record.Repair()
		decoded[hash] = record
	}
	n.data = decoded
	return nil
}

// Get returns the Nurl for u, creating and caching a default
// NOT_DOWNLOADED record if absent. The returned value is a snapshot
// copy; mutations must be written back via Set.
func (n *Nap) Get(u url.URL) nurl.Nurl {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.getLocked(u)
}

func (n *Nap) getLocked(u url.URL) nurl.Nurl {
	hash := urlutil.Hash(u)
	record, ok := n.data[hash]
	if !ok {
		record = nurl.New(u)
		record.Hash = hash
		n.data[hash] = record
	}
	return record
}

// Set stores record under u's canonical hash and bumps the write count
// that drives autosave.
func (n *Nap) Set(u url.URL, record nurl.Nurl) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.setLocked(u, record)
}

func (n *Nap) setLocked(u url.URL, record nurl.Nurl) {
	hash := urlutil.Hash(u)
	record.Hash = hash
	n.data[hash] = record
	n.writes++
}

// Snapshot returns a defensive copy of every record currently held, for
// read-only use outside the package: the crawler's final-stats summary
// and report tooling both need to scan the whole store without
// interleaving with in-flight writes.
func (n *Nap) Snapshot() map[string]nurl.Nurl {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]nurl.Nurl, len(n.data))
	for k, v := range n.data {
		out[k] = v
	}
	return out
}

// Exists reports whether u has an entry in the Nap.
func (n *Nap) Exists(u url.URL) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.data[urlutil.Hash(u)]
	return ok
}

// Transact runs fn holding the Nap's mutex for its entire duration,
// giving get/set sequences the same all-or-nothing visibility the
// Python original got from its RLock. fn must only call the get/set
// callbacks it is handed, never Nap's exported Get/Set (which would
// deadlock by re-acquiring the same non-reentrant mutex).
func (n *Nap) Transact(fn func(get func(url.URL) nurl.Nurl, set func(url.URL, nurl.Nurl))) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fn(n.getLocked, n.setLocked)
}

// Save writes the Nap's contents to fname if any writes have
// accumulated since the last save. Returns true (no-op success) if
// there was nothing to write.
func (n *Nap) Save() (bool, failure.ClassifiedError) {
	n.mu.Lock()
	if n.writes <= 0 {
		n.mu.Unlock()
		return true, nil
	}

	packed, err := msgpack.Marshal(n.data)
	if err != nil {
		n.mu.Unlock()
		return false, &Error{Message: err.Error(), Retryable: false, Cause: ErrCauseSaveFailure, Path: n.fname}
	}
	n.mu.Unlock()

	if cerr := fileutil.EnsureDir(filepath.Dir(n.fname)); cerr != nil {
		return false, &Error{Message: cerr.Error(), Retryable: true, Cause: ErrCauseSaveFailure, Path: n.fname}
	}

	tmpName := n.fname + ".tmp"
	if err := writeLengthPrefixed(tmpName, packed); err != nil {
		return false, &Error{Message: err.Error(), Retryable: true, Cause: ErrCauseSaveFailure, Path: tmpName}
	}
	if err := os.Rename(tmpName, n.fname); err != nil {
		return false, &Error{Message: err.Error(), Retryable: true, Cause: ErrCauseSaveFailure, Path: n.fname}
	}

	n.mu.Lock()
	n.writes = 0
	n.mu.Unlock()
	return true, nil
}

func writeLengthPrefixed(path string, packed []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	prefix := make([]byte, lengthPrefixSize)
	binary.LittleEndian.PutUint32(prefix, uint32(len(packed)))
	if _, err := f.Write(prefix); err != nil {
		return err
	}
	_, err = f.Write(packed)
	return err
}

// Close stops the autosave goroutine and performs a final save, retrying
// up to maxRetries additional times on failure. Returns whether the
// final save succeeded.
func (n *Nap) Close(maxRetries int) bool {
	close(n.shutdown)
	<-n.done

	ok := false
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if saved, _ := n.Save(); saved {
			ok = true
			break
		}
	}

	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	return ok
}

func (n *Nap) autosaveLoop() {
	defer close(n.done)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.shutdown:
			return
		case <-ticker.C:
			n.mu.Lock()
			writes := n.writes
			n.mu.Unlock()
			if writes >= n.threshold {
				n.Save()
			}
		}
	}
}
