package bloomgo

import (
	"crypto/md5"
	"encoding/binary"
)

// HashFamily derives a sequence of 64-bit hash values for a key. The values
// index into the filter's bit array, so implementations must be deterministic:
// the same key must yield the same numHashes-tuple on every call.
//
// Implementations must be safe for concurrent use. The returned slice is
// owned by the caller.
type HashFamily interface {
	DeriveHashes(numHashes uint, key string) []uint64
}

// HashFamilyFunc adapts a plain function to the HashFamily interface.
type HashFamilyFunc func(numHashes uint, key string) []uint64

// DeriveHashes implements HashFamily.
func (fn HashFamilyFunc) DeriveHashes(numHashes uint, key string) []uint64 {
	return fn(numHashes, key)
}

// chainedMD5 is the default hash family. Round 0 digests the key; each
// subsequent round digests the raw bytes of the previous round's digest.
// The hash value is the first 8 digest bytes read little-endian, matching
// snapshots produced by the C implementation this format originates from.
type chainedMD5 struct{}

// DefaultHashFamily returns the built-in chained-MD5 hash family.
func DefaultHashFamily() HashFamily { return chainedMD5{} }

func (chainedMD5) DeriveHashes(numHashes uint, key string) []uint64 {
	hashes := make([]uint64, numHashes)
	var digest [md5.Size]byte

	for i := range hashes {
		if i == 0 {
			digest = md5.Sum([]byte(key)) //nolint:gosec // G401: dispersion, not security
		} else {
			digest = md5.Sum(digest[:])
		}
		hashes[i] = binary.LittleEndian.Uint64(digest[:8])
	}

	return hashes
}
