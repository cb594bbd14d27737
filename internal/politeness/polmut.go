// Package politeness implements the per-domain and global politeness
// gates that space out fetches to a single host.
//
// Grounded on the Python original's crawler2/polmut.py contract (a
// binary lock whose unlock schedules release after a delay), but
// re-architected per the deferred-release redesign note: rather than
// spawning a threading.Timer per unlock, PoliteMutex tracks an
// "earliest next acquire" timestamp and blocks Lock callers until it
// has passed. No goroutine is spawned per release.
package politeness

import (
	"sync"
	"time"
)

// PoliteMutex is a binary lock whose Unlock schedules the release after
// a configured delay: the underlying mutex is exclusive as usual, but a
// Lock call does not return until delay has elapsed since the previous
// Unlock. Holding the mutex for that trailing sleep (rather than
// releasing it and waking a separate timer goroutine) is what lets this
// avoid spawning a thread per release — contenders simply queue on mu.
type PoliteMutex struct {
	delay time.Duration

	mu           sync.Mutex
	earliestNext time.Time
}

// NewPoliteMutex creates a PoliteMutex enforcing delay between a
// release and the next successful acquisition.
func NewPoliteMutex(delay time.Duration) *PoliteMutex {
	return &PoliteMutex{delay: delay}
}

// Lock blocks until the mutex is free AND the delay from the previous
// Unlock has elapsed.
func (p *PoliteMutex) Lock() {
	p.mu.Lock()
	if wait := time.Until(p.earliestNext); wait > 0 {
		time.Sleep(wait)
	}
}

// Unlock releases the mutex and records that the next successful Lock
// must not complete until delay has passed.
func (p *PoliteMutex) Unlock() {
	p.earliestNext = time.Now().Add(p.delay)
	p.mu.Unlock()
}

// Delay returns the configured minimum spacing between releases and the
// next acquisition.
func (p *PoliteMutex) Delay() time.Duration {
	return p.delay
}
