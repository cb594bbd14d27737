// Package exhash computes the exact-content hash used by the Nap's
// exdict dedup bucket.
//
// The hash is CRC32(body) concatenated (little-endian) with the body
// size, rendered as a hex string. Two pages with byte-identical bodies
// always collide; the size term makes an accidental CRC32 collision
// between differently-sized bodies effectively impossible without
// pulling in a cryptographic hash for exact-match dedup.
package exhash

import (
	"encoding/binary"
	"encoding/hex"
	"hash/crc32"
)

// Hash returns the hex-encoded exact-content hash of body.
func Hash(body []byte) string {
	sum := crc32.ChecksumIEEE(body)

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], sum)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))

	return hex.EncodeToString(buf)
}
