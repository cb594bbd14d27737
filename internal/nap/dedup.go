package nap

import (
	"github.com/nurlcrawl/nurlcrawl/internal/nurl"
	"github.com/nurlcrawl/nurlcrawl/pkg/simhash"
)

// bucket is a dedup bucket: the urlhash of the first (master) record to
// claim a content/fingerprint key, plus every later (follower) urlhash
// that matched it.
type bucket struct {
	Master    string
	Followers []string
}

// ClaimExact implements the exdict contract: the first urlhash to claim
// exhash becomes the bucket's master; every later claim against the same
// exhash is a follower. Returns the bucket's master hash and whether the
// caller is that master.
func (n *Nap) ClaimExact(exhash string, urlhash string) (masterHash string, isMaster bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	b, ok := n.exBuckets[exhash]
	if !ok {
		n.exBuckets[exhash] = &bucket{Master: urlhash}
		return urlhash, true
	}
	if b.Master == urlhash {
		return urlhash, true
	}
	b.Followers = append(b.Followers, urlhash)
	return b.Master, false
}

// ClaimSimilar implements the smdict contract: urlhash joins the first
// existing bucket whose key is within threshold Hamming distance of fp,
// becoming a follower of that bucket's master. If no existing bucket is
// close enough, urlhash claims a new bucket keyed by fp and becomes its
// master.
func (n *Nap) ClaimSimilar(fp uint32, threshold int, urlhash string) (masterHash string, isMaster bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for key, b := range n.simBuckets {
		if b.Master == urlhash {
			return urlhash, true
		}
		if simhash.Distance(key, fp) <= threshold {
			b.Followers = append(b.Followers, urlhash)
			return b.Master, false
		}
	}

	n.simBuckets[fp] = &bucket{Master: urlhash}
	return urlhash, true
}

// reconstructBuckets rebuilds exBuckets/simBuckets from the loaded
// records' ExHash/SimHash/Finish fields. The wire format persists only
// the Nurl dict, so bucket membership is re-derived rather than stored
// directly: exact-dedup buckets reconstruct perfectly
// (ExHash equality is a total record of bucket membership), but a
// similarity bucket whose master predates a reload re-keys itself under
// that master's own fingerprint rather than the original claim order —
// harmless, since ClaimSimilar only ever needs one representative key
// per live bucket.
func (n *Nap) reconstructBuckets() {
	for hash, record := range n.data {
		if record.ExHash != "" {
			b, ok := n.exBuckets[record.ExHash]
			if !ok {
				b = &bucket{}
				n.exBuckets[record.ExHash] = b
			}
			if record.Finish == nurl.FinishTooExact {
				b.Followers = append(b.Followers, hash)
			} else {
				b.Master = hash
			}
		}

		if record.Finish != nurl.FinishTooSimilar && record.SimHash != 0 {
			if _, ok := n.simBuckets[record.SimHash]; !ok {
				n.simBuckets[record.SimHash] = &bucket{Master: hash}
			}
		}
	}
}
