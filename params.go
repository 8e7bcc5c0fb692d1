package velusqrt

// primeParameters describes one CSIDH parameter set. Every field is
// read-only after construction; the tables live in params_data.go.
//
// The prime has the shape p = 2^twoAdicity * prod(sop) - 1 with sop the
// list of small odd primes l_0 < l_1 < ... < l_{n-1}.
type primeParameters struct {
	name           string
	pBits          int // nominal width, key bytes = pBits/8
	bitLength      int // exact bit length of p
	limbCount      int
	twoAdicity     int
	defaultBound   int // default per-coordinate exponent magnitude m
	validationStop int // proven-order bitlength that certifies supersingularity
	hveluBound     uint64
	delta          int // reserved for batched (SIMBA-style) schedules

	sop []uint64

	// Montgomery-domain constants: little-endian limbs of p, R^2 mod p,
	// R mod p, (p-1)/2, and -p^-1 mod 2^64.
	p       []uint64
	r2      []uint64
	montOne []uint64
	pHalf   []uint64
	mont0   uint64
}

func (pp *primeParameters) n() int { return len(pp.sop) }

func (pp *primeParameters) keyBytes() int { return pp.pBits / 8 }

// parametersFor returns the table for a prime label, e.g. "p512".
func parametersFor(prime string) (*primeParameters, bool) {
	switch prime {
	case "p512":
		return &p512Parameters, true
	case "p1024":
		return &p1024Parameters, true
	}
	return nil, false
}
