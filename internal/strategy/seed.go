package strategy

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mrand "math/rand"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"
)

// newRand builds a per-instance random stream from seed. Every strategy
// routes every random draw through a stream built this way — never through
// the package-level math/rand default source — so that concurrent runs
// never share mutable random state.
func newRand(seed int64) *mrand.Rand {
	return mrand.New(mrand.NewSource(seed))
}

// CompositeSeed derives the DP Strategic Pairing row's fresh-every-run seed:
// high-resolution time, process id, a per-instance identity string, and a
// cryptographically strong random draw, mixed through blake2b so that no
// single weak component dominates the result. Two calls in the same process
// in the same nanosecond still diverge because of the crypto/rand draw.
func CompositeSeed(instanceIdentity string) int64 {
	h, err := blake2b.New512(nil)
	if err != nil {
		// blake2b.New512 only errors on an oversized key, which we never pass.
		panic(err)
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(time.Now().UnixNano()))
	h.Write(buf[:])

	binary.LittleEndian.PutUint64(buf[:], uint64(os.Getpid()))
	h.Write(buf[:])

	h.Write([]byte(instanceIdentity))

	if n, err := rand.Int(rand.Reader, big.NewInt(0).Lsh(big.NewInt(1), 63)); err == nil {
		binary.LittleEndian.PutUint64(buf[:], n.Uint64())
		h.Write(buf[:])
	}

	sum := h.Sum(nil)
	mixed := binary.LittleEndian.Uint64(sum[:8])
	// Clear the sign bit: callers treat the seed as a non-negative int64.
	return int64(mixed &^ (1 << 63))
}
