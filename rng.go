package velusqrt

import (
	"encoding/binary"

	sha256simd "github.com/minio/sha256-simd"
)

// deterministicRand is a SHA-256 counter-mode byte stream seeded by the
// caller. It exists for reproducible test scenarios ("literal seeds
// fixed by the test harness RNG"); production keys come from
// crypto/rand via the Settings.Rand default.
type deterministicRand struct {
	seed    [32]byte
	counter uint64
	buf     []byte
}

// newDeterministicRand hashes an arbitrary seed into the stream state.
func newDeterministicRand(seed []byte) *deterministicRand {
	d := &deterministicRand{}
	d.seed = sha256simd.Sum256(seed)
	return d
}

func (d *deterministicRand) Read(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		if len(d.buf) == 0 {
			var block [40]byte
			copy(block[:32], d.seed[:])
			binary.LittleEndian.PutUint64(block[32:], d.counter)
			d.counter++
			sum := sha256simd.Sum256(block[:])
			d.buf = sum[:]
		}
		k := copy(p, d.buf)
		d.buf = d.buf[k:]
		p = p[k:]
	}
	return n, nil
}
