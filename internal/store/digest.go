package store

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// fixtureDomainKey separates fixture digests from any other BLAKE3 use of
// the same bytes. ASCII "tokentest.fixture", zero-padded to 32 bytes.
var fixtureDomainKey = [32]byte{
	't', 'o', 'k', 'e', 'n', 't', 'e', 's', 't', '.', 'f', 'i', 'x', 't', 'u', 'r',
	'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Digest returns the hex BLAKE3 keyed hash of a fixture file's contents.
func Digest(data []byte) string {
	h, err := blake3.NewKeyed(fixtureDomainKey[:])
	if err != nil {
		// NewKeyed only fails on a key that is not 32 bytes.
		panic(err)
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
