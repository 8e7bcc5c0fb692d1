package velusqrt

import (
	"errors"
	"io"
	"math/bits"
)

// ProjectivePoint is an x-only point (X : Z) on the current Montgomery
// curve. (X : 0) is the point at infinity for any X.
type ProjectivePoint struct {
	X, Z fe
}

// ProjectiveCurveParameters carries the projective Montgomery constants
// A24 := A + 2C and C24 := 4C of the curve C*y^2 = x^3 + (A/C)*x^2 + x.
type ProjectiveCurveParameters struct {
	A24, C24 fe
}

// MontgomeryCurve implements the x-only point and curve arithmetic for
// one parameter set: differential doubling and addition, SDAC-driven
// scalar multiplication by the small odd primes, Elligator 2 sampling,
// torsion decomposition and public-key validation.
type MontgomeryCurve struct {
	fp     *Fp
	params *primeParameters
	L      []uint64
	n      int
	sdacs  [][]uint8
	rng    io.Reader

	// needTwist is false for the wd1 style, which never walks the
	// quadratic twist; fullTorsionPoints then returns a sentinel.
	needTwist bool
}

func newMontgomeryCurve(fp *Fp, params *primeParameters, sdacs [][]uint8, rng io.Reader, needTwist bool) *MontgomeryCurve {
	return &MontgomeryCurve{
		fp:        fp,
		params:    params,
		L:         params.sop,
		n:         params.n(),
		sdacs:     sdacs,
		rng:       rng,
		needTwist: needTwist,
	}
}

func (c *MontgomeryCurve) newPoint() *ProjectivePoint {
	return &ProjectivePoint{X: c.fp.newFe(), Z: c.fp.newFe()}
}

func (c *MontgomeryCurve) copyPoint(P *ProjectivePoint) *ProjectivePoint {
	Q := c.newPoint()
	c.fp.set(Q.X, P.X)
	c.fp.set(Q.Z, P.Z)
	return Q
}

func (c *MontgomeryCurve) newCurve() *ProjectiveCurveParameters {
	return &ProjectiveCurveParameters{A24: c.fp.newFe(), C24: c.fp.newFe()}
}

func (c *MontgomeryCurve) copyCurve(A *ProjectiveCurveParameters) *ProjectiveCurveParameters {
	B := c.newCurve()
	c.fp.set(B.A24, A.A24)
	c.fp.set(B.C24, A.C24)
	return B
}

// startingCurve returns (A24 : C24) = (2 : 4), the curve A = 0, C = 1.
func (c *MontgomeryCurve) startingCurve() *ProjectiveCurveParameters {
	A := c.newCurve()
	c.fp.setSmall(A.A24, 2)
	c.fp.setSmall(A.C24, 4)
	return A
}

// affineToProjective lifts an affine coefficient a to (a + 2 : 4).
func (c *MontgomeryCurve) affineToProjective(a fe) *ProjectiveCurveParameters {
	A := c.startingCurve()
	c.fp.add(A.A24, a, A.A24)
	return A
}

// coeff recovers the affine coefficient A/C = 2*(2*A24 - C24)/C24.
func (c *MontgomeryCurve) coeff(A *ProjectiveCurveParameters) fe {
	fp := c.fp
	out := fp.newFe()
	inv := fp.newFe()
	fp.add(out, A.A24, A.A24)
	fp.sub(out, out, A.C24)
	fp.inv(inv, A.C24)
	fp.add(out, out, out)
	fp.mul(out, out, inv)
	return out
}

func (c *MontgomeryCurve) isInfinity(P *ProjectivePoint) bool {
	return c.fp.isZero(P.Z)
}

// areEqual tests x(P) = x(Q) by cross multiplication.
func (c *MontgomeryCurve) areEqual(P, Q *ProjectivePoint) bool {
	fp := c.fp
	l := fp.newFe()
	r := fp.newFe()
	fp.mul(l, P.X, Q.Z)
	fp.mul(r, P.Z, Q.X)
	return fp.equal(l, r)
}

// pointCSwap exchanges P and Q when bit is 1.
func (c *MontgomeryCurve) pointCSwap(P, Q *ProjectivePoint, bit uint64) {
	c.fp.cswap(P.X, Q.X, bit)
	c.fp.cswap(P.Z, Q.Z, bit)
}

// pointCSel sets dst to P when bit is 0 and to Q when bit is 1.
func (c *MontgomeryCurve) pointCSel(dst, P, Q *ProjectivePoint, bit uint64) {
	c.fp.csel(dst.X, P.X, Q.X, bit)
	c.fp.csel(dst.Z, P.Z, Q.Z, bit)
}

func (c *MontgomeryCurve) curveCSel(dst, A, B *ProjectiveCurveParameters, bit uint64) {
	c.fp.csel(dst.A24, A.A24, B.A24, bit)
	c.fp.csel(dst.C24, A.C24, B.C24, bit)
}

// xDBL computes x([2]P) on the curve (A24 : C24).
func (c *MontgomeryCurve) xDBL(P *ProjectivePoint, A *ProjectiveCurveParameters) *ProjectivePoint {
	fp := c.fp
	out := c.newPoint()
	t0 := fp.newFe()
	t1 := fp.newFe()
	fp.sub(t0, P.X, P.Z)
	fp.add(t1, P.X, P.Z)
	fp.sqr(t0, t0)
	fp.sqr(t1, t1)
	fp.mul(out.Z, A.C24, t0)
	fp.mul(out.X, out.Z, t1)
	fp.sub(t1, t1, t0)
	fp.mul(t0, A.A24, t1)
	fp.add(out.Z, out.Z, t0)
	fp.mul(out.Z, out.Z, t1)
	return out
}

// xADD computes x(P+Q) from x(P), x(Q) and x(P-Q).
func (c *MontgomeryCurve) xADD(P, Q, PQ *ProjectivePoint) *ProjectivePoint {
	fp := c.fp
	out := c.newPoint()
	a := fp.newFe()
	b := fp.newFe()
	d := fp.newFe()
	e := fp.newFe()
	fp.add(a, P.X, P.Z)
	fp.sub(b, P.X, P.Z)
	fp.add(d, Q.X, Q.Z)
	fp.sub(e, Q.X, Q.Z)
	fp.mul(a, a, e)
	fp.mul(b, b, d)
	fp.add(d, a, b)
	fp.sub(e, a, b)
	fp.sqr(d, d)
	fp.sqr(e, e)
	fp.mul(out.X, PQ.Z, d)
	fp.mul(out.Z, PQ.X, e)
	return out
}

// xMUL computes x([L[j]]P) by walking the shortest differential addition
// chain for L[j] from the seed (P, [2]P, [3]P), MSB-equivalent order.
func (c *MontgomeryCurve) xMUL(P *ProjectivePoint, A *ProjectiveCurveParameters, j int) *ProjectivePoint {
	P2 := c.xDBL(P, A)
	R := [3]*ProjectivePoint{c.copyPoint(P), P2, c.xADD(P2, P, P)}
	chain := c.sdacs[j]
	for i := len(chain) - 1; i >= 0; i-- {
		b := chain[i]
		var T *ProjectivePoint
		if c.isInfinity(R[b]) {
			T = c.xDBL(R[2], A)
		} else {
			T = c.xADD(R[2], R[b^1], R[b])
		}
		R[0], R[1], R[2] = R[b^1], R[2], T
	}
	return R[2]
}

// crissCross returns (alpha*delta + beta*gamma, alpha*delta - beta*gamma).
func (c *MontgomeryCurve) crissCross(alpha, beta, gamma, delta fe) (fe, fe) {
	fp := c.fp
	t1 := fp.newFe()
	t2 := fp.newFe()
	s := fp.newFe()
	d := fp.newFe()
	fp.mul(t1, alpha, delta)
	fp.mul(t2, beta, gamma)
	fp.add(s, t1, t2)
	fp.sub(d, t1, t2)
	return s, d
}

// elligator samples u in [2, (p-1)/2] and maps it to a pair of points
// T+ on E_A and T- on the quadratic twist. The jacobi branch and the
// rejection loop run on fresh public randomness only; they reveal the
// twist choice, never key material.
func (c *MontgomeryCurve) elligator(A *ProjectiveCurveParameters) (*ProjectivePoint, *ProjectivePoint, error) {
	fp := c.fp

	// Ap = 2*(2*A24 - C24) = 4*A, Cp = C24 = 4*C.
	Ap := fp.newFe()
	fp.add(Ap, A.A24, A.A24)
	fp.sub(Ap, Ap, A.C24)
	fp.add(Ap, Ap, Ap)
	Cp := A.C24

	u := fp.newFe()
	if err := fp.randRange(u, c.rng); err != nil {
		return nil, nil, err
	}

	u2 := fp.newFe()
	fp.sqr(u2, u)
	one := fp.newFe()
	fp.setOne(one)
	u2p1 := fp.newFe()
	fp.add(u2p1, u2, one)
	u2m1 := fp.newFe()
	fp.sub(u2m1, u2, one)

	cu := fp.newFe()
	fp.mul(cu, Cp, u2m1)
	acu := fp.newFe()
	fp.mul(acu, Ap, cu)

	tmp := fp.newFe()
	aux := fp.newFe()
	fp.sqr(tmp, Ap)
	fp.mul(tmp, tmp, u2)
	fp.sqr(aux, cu)
	fp.add(tmp, tmp, aux)
	fp.mul(tmp, acu, tmp)

	// alpha, beta = (0, u), swapped when tmp == 0 (the degenerate A = 0
	// or u^2 = 1 branch).
	alpha := fp.newFe()
	beta := fp.newFe()
	fp.set(beta, u)
	var isZero uint64
	if fp.isZero(tmp) {
		isZero = 1
	}
	fp.cswap(alpha, beta, isZero)
	fp.mul(u2p1, alpha, u2p1)
	fp.mul(alpha, alpha, cu)

	Tp := c.newPoint()
	Tm := c.newPoint()
	fp.add(Tp.X, Ap, alpha)
	fp.set(Tp.Z, cu)
	fp.mul(Tm.X, Ap, u2)
	fp.add(Tm.X, Tm.X, alpha)
	fp.neg(Tm.X, Tm.X)
	fp.set(Tm.Z, cu)

	fp.add(tmp, tmp, u2p1)
	if fp.jacobi(tmp) == -1 {
		fp.cswap(Tp.X, Tm.X, 1)
	}
	return Tp, Tm, nil
}

// primeFactors splits P by divide and conquer: given x(P) with P of
// order dividing prod_{i in idxs} L[i] (times the handled cofactor),
// returns one point per index, the k-th of order dividing L[idxs[k]].
func (c *MontgomeryCurve) primeFactors(P *ProjectivePoint, A *ProjectiveCurveParameters, idxs []int) []*ProjectivePoint {
	if len(idxs) == 1 {
		return []*ProjectivePoint{P}
	}
	h := len(idxs) / 2
	first := P
	for _, j := range idxs[h:] {
		first = c.xMUL(first, A, j)
	}
	second := P
	for _, j := range idxs[:h] {
		second = c.xMUL(second, A, j)
	}
	out := c.primeFactors(first, A, idxs[:h])
	return append(out, c.primeFactors(second, A, idxs[h:])...)
}

func (c *MontgomeryCurve) allIndexes() []int {
	idxs := make([]int, c.n)
	for i := range idxs {
		idxs[i] = i
	}
	return idxs
}

func (c *MontgomeryCurve) hasFullOrder(T *ProjectivePoint, A *ProjectiveCurveParameters) bool {
	for _, Q := range c.primeFactors(T, A, c.allIndexes()) {
		if c.isInfinity(Q) {
			return false
		}
	}
	return true
}

// fullTorsionPoints samples elligator points, clears the 2^f cofactor,
// and keeps candidates of full odd order on the curve and (unless the
// style skips the twist) on the twist. Counters stay paused: the
// rejection count depends only on public randomness.
func (c *MontgomeryCurve) fullTorsionPoints(A *ProjectiveCurveParameters) (*ProjectivePoint, *ProjectivePoint, error) {
	prev := c.fp.pauseCounting()
	defer c.fp.resumeCounting(prev)

	var Tp, Tm *ProjectivePoint
	for Tp == nil || (c.needTwist && Tm == nil) {
		cp, cm, err := c.elligator(A)
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < c.params.twoAdicity; i++ {
			cp = c.xDBL(cp, A)
		}
		if Tp == nil && c.hasFullOrder(cp, A) {
			Tp = cp
		}
		if c.needTwist && Tm == nil {
			for i := 0; i < c.params.twoAdicity; i++ {
				cm = c.xDBL(cm, A)
			}
			if c.hasFullOrder(cm, A) {
				Tm = cm
			}
		}
	}
	if Tm == nil {
		// wd1 sentinel: a dummy non-zero point, never used.
		Tm = c.newPoint()
		c.fp.setOne(Tm.X)
		c.fp.setOne(Tm.Z)
	}
	return Tp, Tm, nil
}

var errValidationRounds = errors.New("validation sampling did not converge")

// maxValidationRounds bounds the resampling loop; each round proves or
// disproves the order with overwhelming probability, so the bound only
// guards against a broken RNG.
const maxValidationRounds = 1024

// validate implements the Galbraith-Petit-Silva style check that A is a
// supersingular curve of the right class: accumulate proven order from
// per-prime components until it exceeds validationStop; any component
// surviving its [L[i]] multiplication disproves the order and rejects.
func (c *MontgomeryCurve) validate(A *ProjectiveCurveParameters) (bool, error) {
	prev := c.fp.pauseCounting()
	defer c.fp.resumeCounting(prev)

	for round := 0; round < maxValidationRounds; round++ {
		Tp, _, err := c.elligator(A)
		if err != nil {
			return false, err
		}
		for i := 0; i < c.params.twoAdicity; i++ {
			Tp = c.xDBL(Tp, A)
		}
		Ps := c.primeFactors(Tp, A, c.allIndexes())
		bitsOfOrder := 0
		for i := 0; i < c.n; i++ {
			if c.isInfinity(Ps[i]) {
				continue
			}
			Q := c.xMUL(Ps[i], A, i)
			if !c.isInfinity(Q) {
				return false, nil
			}
			bitsOfOrder += bits.Len64(c.L[i])
			if bitsOfOrder > c.params.validationStop {
				return true, nil
			}
		}
	}
	return false, errValidationRounds
}
