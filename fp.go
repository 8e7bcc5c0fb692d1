package velusqrt

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/bits"
)

// maxLimbs bounds the limb count of any supported prime (p1024 uses 16).
const maxLimbs = 16

// fe is a field element modulo a CSIDH prime, stored as little-endian
// uint64 limbs in the Montgomery domain and always fully reduced to
// [0, p). The unique representation makes equality a plain limb compare.
type fe []uint64

// OpCounters tracks field multiplications, squarings and additions
// (subtractions count as additions, matching the usual M/S/a accounting).
// Counters are instrumentation only and are paused on the public
// randomness paths so that counted work is exactly the deterministic
// action walk.
type OpCounters struct {
	Mul uint64
	Sqr uint64
	Add uint64
}

// String renders the counters in the usual M/S/a form.
func (o OpCounters) String() string {
	return fmt.Sprintf("%7dM + %7dS + %7da", o.Mul, o.Sqr, o.Add)
}

// Fp provides arithmetic modulo the prime of one parameter set. An Fp is
// not safe for concurrent use: it owns the operation counters and calls
// must be serialised by the caller.
type Fp struct {
	params *primeParameters
	k      int

	p     []uint64
	r2    []uint64
	one   []uint64 // R mod p
	pHalf []uint64
	mont0 uint64

	pBig *big.Int

	counting bool
	ops      OpCounters
}

func newFp(params *primeParameters) *Fp {
	f := &Fp{
		params:   params,
		k:        params.limbCount,
		p:        params.p,
		r2:       params.r2,
		one:      params.montOne,
		pHalf:    params.pHalf,
		mont0:    params.mont0,
		counting: true,
	}
	f.pBig = new(big.Int).SetBytes(beBytes(params.p))
	return f
}

// beBytes renders little-endian limbs as big-endian bytes for math/big.
func beBytes(limbs []uint64) []byte {
	out := make([]byte, 8*len(limbs))
	for i, v := range limbs {
		off := 8 * (len(limbs) - 1 - i)
		out[off+0] = byte(v >> 56)
		out[off+1] = byte(v >> 48)
		out[off+2] = byte(v >> 40)
		out[off+3] = byte(v >> 32)
		out[off+4] = byte(v >> 24)
		out[off+5] = byte(v >> 16)
		out[off+6] = byte(v >> 8)
		out[off+7] = byte(v)
	}
	return out
}

// Ops returns the counters accumulated since the last reset.
func (f *Fp) Ops() OpCounters { return f.ops }

// ResetOps zeroes the operation counters.
func (f *Fp) ResetOps() { f.ops = OpCounters{} }

// pauseCounting disables op counting and returns the previous state.
func (f *Fp) pauseCounting() bool {
	prev := f.counting
	f.counting = false
	return prev
}

func (f *Fp) resumeCounting(prev bool) { f.counting = prev }

func (f *Fp) newFe() fe { return make(fe, f.k) }

func (f *Fp) set(z, x fe) { copy(z, x) }

func (f *Fp) setZero(z fe) {
	for i := range z {
		z[i] = 0
	}
}

// setOne sets z to 1 (R mod p in the Montgomery domain).
func (f *Fp) setOne(z fe) { copy(z, f.one) }

// setSmall sets z to the small integer v.
func (f *Fp) setSmall(z fe, v uint64) {
	var t [maxLimbs]uint64
	t[0] = v
	f.montMul(z, t[:f.k], f.r2)
}

func (f *Fp) isZero(x fe) bool {
	var acc uint64
	for i := 0; i < f.k; i++ {
		acc |= x[i]
	}
	return acc == 0
}

func (f *Fp) equal(x, y fe) bool {
	var acc uint64
	for i := 0; i < f.k; i++ {
		acc |= x[i] ^ y[i]
	}
	return acc == 0
}

// reduceOnce sets z to z mod p given z < 2p spread over z and the extra
// carry bit. Constant time: both candidates are computed and the result
// is selected by mask.
func (f *Fp) reduceOnce(z fe, carry uint64) {
	var u [maxLimbs]uint64
	var borrow uint64
	for i := 0; i < f.k; i++ {
		u[i], borrow = bits.Sub64(z[i], f.p[i], borrow)
	}
	// Take the subtracted value when the raw sum overflowed or z >= p.
	useSub := carry | (borrow ^ 1)
	mask := -(useSub & 1)
	for i := 0; i < f.k; i++ {
		z[i] = (z[i] &^ mask) | (u[i] & mask)
	}
}

// add computes z = x + y mod p.
func (f *Fp) add(z, x, y fe) {
	if f.counting {
		f.ops.Add++
	}
	var carry uint64
	for i := 0; i < f.k; i++ {
		z[i], carry = bits.Add64(x[i], y[i], carry)
	}
	f.reduceOnce(z, carry)
}

// sub computes z = x - y mod p.
func (f *Fp) sub(z, x, y fe) {
	if f.counting {
		f.ops.Add++
	}
	var borrow uint64
	for i := 0; i < f.k; i++ {
		z[i], borrow = bits.Sub64(x[i], y[i], borrow)
	}
	mask := -(borrow & 1)
	var carry uint64
	for i := 0; i < f.k; i++ {
		z[i], carry = bits.Add64(z[i], f.p[i]&mask, carry)
	}
}

// neg computes z = -x mod p.
func (f *Fp) neg(z, x fe) {
	var zero [maxLimbs]uint64
	f.sub(z, zero[:f.k], x)
}

// montMul computes z = x*y*R^-1 mod p (CIOS Montgomery multiplication).
// Does not touch the counters; mul and sqr wrap it.
func (f *Fp) montMul(z fe, x, y []uint64) {
	k := f.k
	var t [maxLimbs + 2]uint64
	for i := 0; i < k; i++ {
		var c uint64
		for j := 0; j < k; j++ {
			hi, lo := bits.Mul64(x[i], y[j])
			var c1 uint64
			lo, c1 = bits.Add64(lo, t[j], 0)
			hi += c1
			lo, c1 = bits.Add64(lo, c, 0)
			hi += c1
			t[j] = lo
			c = hi
		}
		t[k], c = bits.Add64(t[k], c, 0)
		t[k+1] = c

		q := t[0] * f.mont0
		hi, lo := bits.Mul64(q, f.p[0])
		var c1 uint64
		_, c1 = bits.Add64(lo, t[0], 0)
		c = hi + c1
		for j := 1; j < k; j++ {
			hi, lo = bits.Mul64(q, f.p[j])
			lo, c1 = bits.Add64(lo, t[j], 0)
			hi += c1
			lo, c1 = bits.Add64(lo, c, 0)
			hi += c1
			t[j-1] = lo
			c = hi
		}
		t[k-1], c1 = bits.Add64(t[k], c, 0)
		t[k], _ = bits.Add64(t[k+1], c1, 0)
		t[k+1] = 0
	}
	copy(z, t[:k])
	f.reduceOnce(z, t[k])
}

// mul computes z = x*y mod p in the Montgomery domain.
func (f *Fp) mul(z, x, y fe) {
	if f.counting {
		f.ops.Mul++
	}
	f.montMul(z, x, y)
}

// sqr computes z = x^2 mod p.
func (f *Fp) sqr(z, x fe) {
	if f.counting {
		f.ops.Sqr++
	}
	f.montMul(z, x, x)
}

// exp computes z = x^e by the left-to-right binary method. The schedule
// depends only on the bit length and bit pattern of e, which is public
// in every use (isogeny degrees, p-derived exponents).
func (f *Fp) exp(z, x fe, e []uint64, ebits int) {
	tmp := f.newFe()
	f.set(tmp, x)
	for j := ebits - 2; j >= 0; j-- {
		f.sqr(tmp, tmp)
		if (e[j/64]>>(uint(j)%64))&1 != 0 {
			f.mul(tmp, tmp, x)
		}
	}
	f.set(z, tmp)
}

// expUint64 computes z = x^e for a small public exponent e >= 1.
func (f *Fp) expUint64(z, x fe, e uint64) {
	f.exp(z, x, []uint64{e}, bits.Len64(e))
}

// invConst computes z = x^-1 via Fermat (x^(p-2)); constant time, usable
// on secret-derived values such as svelu kernel coordinates.
func (f *Fp) invConst(z, x fe) {
	var e [maxLimbs]uint64
	var borrow uint64
	e[0], borrow = bits.Sub64(f.p[0], 2, 0)
	for i := 1; i < f.k; i++ {
		e[i], borrow = bits.Sub64(f.p[i], 0, borrow)
	}
	f.exp(z, x, e[:f.k], f.params.bitLength)
}

// inv computes z = x^-1 by extended GCD. Variable time; only for public
// values (the affine coefficient extraction in coeff).
func (f *Fp) inv(z, x fe) {
	v := new(big.Int).SetBytes(beBytes(f.fromMont(x)))
	v.ModInverse(v, f.pBig)
	f.fromBig(z, v)
}

// jacobi returns the Jacobi symbol (x/p). Variable time; only used on
// fresh public randomness (elligator, validate).
func (f *Fp) jacobi(x fe) int {
	v := new(big.Int).SetBytes(beBytes(f.fromMont(x)))
	return big.Jacobi(v, f.pBig)
}

// fromMont returns the canonical integer limbs of x (out of the
// Montgomery domain).
func (f *Fp) fromMont(x fe) []uint64 {
	var one [maxLimbs]uint64
	one[0] = 1
	out := make([]uint64, f.k)
	f.montMul(out, x, one[:f.k])
	return out
}

func (f *Fp) fromBig(z fe, v *big.Int) {
	var raw [maxLimbs]uint64
	words := v.Bits()
	for i := 0; i < f.k; i++ {
		raw[i] = 0
		if i < len(words) {
			raw[i] = uint64(words[i])
		}
	}
	f.montMul(z, raw[:f.k], f.r2)
}

// cswap exchanges x and y when bit is 1, with no data-dependent branch.
func (f *Fp) cswap(x, y fe, bit uint64) {
	mask := -(bit & 1)
	for i := 0; i < f.k; i++ {
		t := mask & (x[i] ^ y[i])
		x[i] ^= t
		y[i] ^= t
	}
}

// csel sets z to a when bit is 0 and to b when bit is 1.
func (f *Fp) csel(z, a, b fe, bit uint64) {
	mask := -(bit & 1)
	for i := 0; i < f.k; i++ {
		z[i] = (a[i] &^ mask) | (b[i] & mask)
	}
}

var errFieldEncoding = errors.New("field element encoding out of range")

// fromBytes parses a little-endian field element of exactly keyBytes
// width and rejects values >= p.
func (f *Fp) fromBytes(z fe, src []byte) error {
	if len(src) != f.params.keyBytes() {
		return errFieldEncoding
	}
	var raw [maxLimbs]uint64
	for i := 0; i < f.k; i++ {
		for j := 7; j >= 0; j-- {
			raw[i] = raw[i]<<8 | uint64(src[8*i+j])
		}
	}
	// require raw < p
	var borrow uint64
	for i := 0; i < f.k; i++ {
		_, borrow = bits.Sub64(raw[i], f.p[i], borrow)
	}
	if borrow == 0 {
		return errFieldEncoding
	}
	f.montMul(z, raw[:f.k], f.r2)
	return nil
}

// toBytes writes the canonical little-endian encoding of x.
func (f *Fp) toBytes(dst []byte, x fe) {
	raw := f.fromMont(x)
	for i := 0; i < f.k; i++ {
		v := raw[i]
		for j := 0; j < 8; j++ {
			dst[8*i+j] = byte(v)
			v >>= 8
		}
	}
}

// randRange samples u uniformly from [2, (p-1)/2] for elligator. The
// rejection loop is variable time over public randomness only.
func (f *Fp) randRange(z fe, rng io.Reader) error {
	var buf [8 * maxLimbs]byte
	var raw [maxLimbs]uint64
	topBits := uint(f.params.bitLength-1) % 64
	topMask := uint64(1)<<topBits - 1
	for {
		if _, err := io.ReadFull(rng, buf[:8*f.k]); err != nil {
			return err
		}
		for i := 0; i < f.k; i++ {
			raw[i] = 0
			for j := 7; j >= 0; j-- {
				raw[i] = raw[i]<<8 | uint64(buf[8*i+j])
			}
		}
		raw[f.k-1] &= topMask
		if raw[0] < 2 && isZeroLimbs(raw[1:f.k]) {
			continue
		}
		// accept when raw <= (p-1)/2
		var borrow uint64
		for i := 0; i < f.k; i++ {
			_, borrow = bits.Sub64(f.pHalf[i], raw[i], borrow)
		}
		if borrow == 0 {
			f.montMul(z, raw[:f.k], f.r2)
			return nil
		}
	}
}

func isZeroLimbs(x []uint64) bool {
	var acc uint64
	for _, v := range x {
		acc |= v
	}
	return acc == 0
}
