package velusqrt

// IsogenyFormula is the contract shared by the three isogeny backends:
// kps prepares the kernel tables for the degree-L[i] isogeny generated
// by P on the curve A, xisog produces the codomain constants, and xeval
// pushes a point through the isogeny prepared by the last kps. All three
// backends compute identical images up to projective equivalence.
type IsogenyFormula interface {
	kps(i int, P *ProjectivePoint, A *ProjectiveCurveParameters)
	xisog(A *ProjectiveCurveParameters, i int) *ProjectiveCurveParameters
	xeval(P *ProjectivePoint, i int) *ProjectivePoint
}

// Tvelu is the traditional O(l) Velu backend: it tabulates the
// (l-1)/2 kernel multiples and folds them with CrissCross products.
type Tvelu struct {
	c *MontgomeryCurve

	// sums[j] = X_j + Z_j and diffs[j] = X_j - Z_j of the kernel
	// multiples [j+1]P, refreshed by each kps call.
	sums  []fe
	diffs []fe
}

func newTvelu(c *MontgomeryCurve) *Tvelu {
	return &Tvelu{c: c}
}

func (t *Tvelu) kps(i int, P *ProjectivePoint, A *ProjectiveCurveParameters) {
	c := t.c
	d := int(c.L[i]-1) / 2
	K := make([]*ProjectivePoint, d)
	K[0] = c.copyPoint(P)
	if d >= 2 {
		K[1] = c.xDBL(P, A)
	}
	for j := 2; j < d; j++ {
		K[j] = c.xADD(K[j-1], P, K[j-2])
	}
	t.sums = make([]fe, d)
	t.diffs = make([]fe, d)
	for j, Q := range K {
		t.sums[j] = c.fp.newFe()
		t.diffs[j] = c.fp.newFe()
		c.fp.add(t.sums[j], Q.X, Q.Z)
		c.fp.sub(t.diffs[j], Q.X, Q.Z)
	}
}

// xisog computes the codomain through the Edwards-power form: with
// a = A + 2C and d = A - 2C, a' = a^l * prod(X_j + Z_j)^8 and
// d' = d^l * prod(X_j - Z_j)^8.
func (t *Tvelu) xisog(A *ProjectiveCurveParameters, i int) *ProjectiveCurveParameters {
	c := t.c
	fp := c.fp
	l := c.L[i]

	piP := fp.newFe()
	piM := fp.newFe()
	fp.setOne(piP)
	fp.setOne(piM)
	for j := range t.sums {
		fp.mul(piP, piP, t.sums[j])
		fp.mul(piM, piM, t.diffs[j])
	}
	for k := 0; k < 3; k++ {
		fp.sqr(piP, piP)
		fp.sqr(piM, piM)
	}

	a := fp.newFe()
	d := fp.newFe()
	fp.set(a, A.A24)
	fp.sub(d, A.A24, A.C24)
	fp.expUint64(a, a, l)
	fp.expUint64(d, d, l)

	out := c.newCurve()
	fp.mul(out.A24, a, piP)
	fp.mul(d, d, piM)
	fp.sub(out.C24, out.A24, d)
	return out
}

func (t *Tvelu) xeval(P *ProjectivePoint, i int) *ProjectivePoint {
	c := t.c
	fp := c.fp

	sum := fp.newFe()
	diff := fp.newFe()
	fp.add(sum, P.X, P.Z)
	fp.sub(diff, P.X, P.Z)

	s1 := fp.newFe()
	s2 := fp.newFe()
	fp.setOne(s1)
	fp.setOne(s2)
	for j := range t.sums {
		cc, dd := c.crissCross(t.sums[j], t.diffs[j], sum, diff)
		fp.mul(s1, s1, cc)
		fp.mul(s2, s2, dd)
	}

	out := c.newPoint()
	fp.sqr(s1, s1)
	fp.sqr(s2, s2)
	fp.mul(out.X, P.X, s1)
	fp.mul(out.Z, P.Z, s2)
	return out
}
