package exhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_Deterministic(t *testing.T) {
	body := []byte("hello world")
	assert.Equal(t, Hash(body), Hash(body))
}

func TestHash_DifferentBodiesDiffer(t *testing.T) {
	assert.NotEqual(t, Hash([]byte("hello world")), Hash([]byte("goodbye world")))
}

func TestHash_SameCRCDifferentSizeDiffers(t *testing.T) {
	// Same content repeated produces a different size term even if
	// a CRC32 collision were contrived, so the combined hash differs.
	assert.NotEqual(t, Hash([]byte("a")), Hash([]byte("aa")))
}

func TestHash_EmptyBody(t *testing.T) {
	assert.Len(t, Hash(nil), 16)
}
