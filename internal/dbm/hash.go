package dbm

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of a zone's canonical layout.
type Hash [32]byte

// String returns the hex encoding of h.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// zoneDomainKey keys the zone hash. The bytes are the ASCII domain name,
// zero-padded to 32 bytes. Changing it changes every zone hash.
var zoneDomainKey = [32]byte{
	'z', 'o', 'n', 'e', 's', '.', 'd', 'b', 'm', '.', 'z', 'o', 'n', 'e',
}

// CanonicalBytes returns the byte layout that Hash digests: the dimension
// as a little-endian uint32, one byte set to 1 for the empty zone, then
// every entry as a little-endian int64 in row-major order. Equal zones
// have identical bytes. There is no decoder; the layout exists for
// hashing only.
func (z Zone) CanonicalBytes() []byte {
	n := len(z.cells)
	buf := make([]byte, 0, 5+8*n)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(z.dim))
	if z.IsEmpty() {
		return append(buf, 1)
	}
	buf = append(buf, 0)
	for _, b := range z.cells {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(b))
	}
	return buf
}

// Hash returns the keyed BLAKE3 hash of z's canonical layout.
func (z Zone) Hash() Hash {
	// NewKeyed only fails for a key that is not 32 bytes long.
	hasher, err := blake3.NewKeyed(zoneDomainKey[:])
	if err != nil {
		panic("dbm: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(z.CanonicalBytes())
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}

// Sum64 returns the first 8 bytes of Hash for map bucketing.
func (z Zone) Sum64() uint64 {
	h := z.Hash()
	return binary.LittleEndian.Uint64(h[:8])
}
