package velusqrt

// Svelu is the sqrt-Velu backend. For degree l it splits the kernel
// representatives into baby steps J (odd multiples up to 2b-1), giant
// steps I ([2b(2t+1)]P), and a tail K of even multiples standing in for
// the mirrored odd tail (x([l-s]P) = x([s]P)). Pair products over I x J
// are folded through the biquadratic polynomials relating x(P+Q) and
// x(P-Q) on a Montgomery curve, evaluated with a subproduct tree over
// the giant-step roots and a remainder-tree multipoint evaluation.
//
// Every projective normalization factor is independent of the evaluation
// point, so it cancels in the (X':Z') and (A24':C24') ratios; the
// backend therefore matches Tvelu exactly up to projective equivalence.
type Svelu struct {
	c *MontgomeryCurve

	// multievaluation caches the evaluation-point-independent
	// biquadratic coefficients at kps time instead of rebuilding them
	// inside every evalProd call.
	multievaluation bool

	sJ []int
	sI []int
	sK []int

	st sveluState
}

// sveluState is the kernel context prepared by kps.
type sveluState struct {
	i    int
	A24  fe
	C24  fe
	J    []*ProjectivePoint
	K    []*ProjectivePoint
	xI   []fe // batch-normalized affine giant-step roots
	tree *prodTree

	// cached per-j coefficient quads (multievaluation)
	quads []sveluQuad
}

// sveluQuad carries C24*Zj^2, C24*Xj*Zj, C24*Xj^2 and
// C24*(Xj^2+Zj^2) + 4*(2*A24-C24)*Xj*Zj for one baby step.
type sveluQuad struct {
	z2, xz, x2, mid fe
}

func newSvelu(c *MontgomeryCurve, multievaluation bool) *Svelu {
	s := &Svelu{c: c, multievaluation: multievaluation}
	s.sJ = make([]int, c.n)
	s.sI = make([]int, c.n)
	s.sK = make([]int, c.n)
	for idx, l := range c.L {
		b := isqrt((l - 1) / 4)
		var bp uint64
		if b > 0 {
			bp = (l - 1) / (4 * b)
		}
		if b > bp {
			b, bp = bp, b
		}
		var sk int
		if b > 0 {
			// signed: when l-1 = 4*b*bp the numerator is -2 and sK is 0
			sk = (int(l)-2-4*int(b*bp)-1)/2 + 1
		} else {
			bp = 0
			sk = int(l-1) / 2
		}
		s.sJ[idx] = int(b)
		s.sI[idx] = int(bp)
		s.sK[idx] = sk
	}
	return s
}

func isqrt(v uint64) uint64 {
	var r uint64
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}

func (s *Svelu) kps(i int, P *ProjectivePoint, A *ProjectiveCurveParameters) {
	c := s.c
	fp := c.fp
	b, bp, sk := s.sJ[i], s.sI[i], s.sK[i]

	s.st = sveluState{i: i, A24: fp.newFe(), C24: fp.newFe()}
	fp.set(s.st.A24, A.A24)
	fp.set(s.st.C24, A.C24)

	// multiples chain M[k] = [k]P
	top := 2 * b
	if 2*sk > top {
		top = 2 * sk
	}
	if top < 1 {
		top = 1
	}
	M := make([]*ProjectivePoint, top+1)
	M[1] = c.copyPoint(P)
	if top >= 2 {
		M[2] = c.xDBL(P, A)
	}
	for k := 3; k <= top; k++ {
		M[k] = c.xADD(M[k-1], P, M[k-2])
	}

	s.st.J = make([]*ProjectivePoint, b)
	for j := 0; j < b; j++ {
		s.st.J[j] = M[2*j+1]
	}
	s.st.K = make([]*ProjectivePoint, sk)
	for k := 0; k < sk; k++ {
		s.st.K[k] = M[2*(k+1)]
	}

	if bp > 0 {
		I := make([]*ProjectivePoint, bp)
		I[0] = M[2*b]
		if bp > 1 {
			step := c.xDBL(M[2*b], A) // [4b]P
			I[1] = c.xADD(I[0], step, I[0])
			for t := 2; t < bp; t++ {
				I[t] = c.xADD(I[t-1], step, I[t-2])
			}
		}
		s.st.xI = s.batchNormalize(I)
		s.st.tree = buildProdTree(fp, s.st.xI)
	}

	if s.multievaluation && b > 0 {
		s.st.quads = s.buildQuads()
	}
}

// batchNormalize returns the affine x-coordinates X/Z of the given
// points with a single constant-time inversion (Montgomery's trick).
func (s *Svelu) batchNormalize(pts []*ProjectivePoint) []fe {
	fp := s.c.fp
	n := len(pts)
	acc := make([]fe, n)
	run := fp.newFe()
	fp.setOne(run)
	for i, P := range pts {
		acc[i] = fp.newFe()
		fp.set(acc[i], run)
		fp.mul(run, run, P.Z)
	}
	inv := fp.newFe()
	fp.invConst(inv, run)
	out := make([]fe, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = fp.newFe()
		fp.mul(out[i], acc[i], inv) // 1 / (Z_0 ... Z_{i-1}) stripped below
		fp.mul(out[i], out[i], pts[i].X)
		fp.mul(inv, inv, pts[i].Z)
	}
	return out
}

// buildQuads precomputes the evaluation-point-independent pieces of the
// biquadratic factors for every baby step.
func (s *Svelu) buildQuads() []sveluQuad {
	fp := s.c.fp
	A24, C24 := s.st.A24, s.st.C24

	// t4 = 4*(2*A24 - C24)
	t4 := fp.newFe()
	fp.add(t4, A24, A24)
	fp.sub(t4, t4, C24)
	fp.add(t4, t4, t4)
	fp.add(t4, t4, t4)

	quads := make([]sveluQuad, len(s.st.J))
	t := fp.newFe()
	for j, Q := range s.st.J {
		q := sveluQuad{z2: fp.newFe(), xz: fp.newFe(), x2: fp.newFe(), mid: fp.newFe()}
		fp.sqr(t, Q.Z)
		fp.mul(q.z2, C24, t)
		fp.sqr(t, Q.X)
		fp.mul(q.x2, C24, t)
		fp.mul(t, Q.X, Q.Z)
		fp.mul(q.xz, C24, t)
		fp.mul(q.mid, t4, t)
		fp.sqr(t, Q.X)
		x2z2 := fp.newFe()
		fp.sqr(x2z2, Q.Z)
		fp.add(x2z2, x2z2, t)
		fp.mul(x2z2, C24, x2z2)
		fp.add(q.mid, q.mid, x2z2)
		quads[j] = q
	}
	return quads
}

// evalProd computes prod over the kernel representatives s of
// (an*Z_s - ad*X_s), up to a fixed nonzero factor independent of
// (an : ad); the factor cancels in every ratio the callers form.
func (s *Svelu) evalProd(an, ad fe) fe {
	fp := s.c.fp
	out := fp.newFe()
	fp.setOne(out)
	t := fp.newFe()
	u := fp.newFe()

	for _, Q := range s.st.K {
		fp.mul(t, an, Q.Z)
		fp.mul(u, ad, Q.X)
		fp.sub(t, t, u)
		fp.mul(out, out, t)
	}
	if len(s.st.J) == 0 || len(s.st.xI) == 0 {
		return out
	}

	quads := s.st.quads
	if quads == nil {
		quads = s.buildQuads()
	}

	an2 := fp.newFe()
	ad2 := fp.newFe()
	anad := fp.newFe()
	fp.sqr(an2, an)
	fp.sqr(ad2, ad)
	fp.mul(anad, an, ad)

	// per baby step: quadratic g0 + g1*W + g2*W^2 in the giant-step root W
	factors := make([][]fe, len(quads))
	sum2 := fp.newFe()
	fp.add(sum2, an2, ad2)
	for j, q := range quads {
		g0 := fp.newFe()
		g1 := fp.newFe()
		g2 := fp.newFe()

		fp.mul(t, q.xz, anad)
		fp.add(t, t, t) // 2*xz*anad

		fp.mul(g2, q.z2, an2)
		fp.mul(u, q.x2, ad2)
		fp.add(g2, g2, u)
		fp.sub(g2, g2, t)

		fp.mul(g0, q.x2, an2)
		fp.mul(u, q.z2, ad2)
		fp.add(g0, g0, u)
		fp.sub(g0, g0, t)

		fp.mul(g1, q.xz, sum2)
		fp.mul(u, q.mid, anad)
		fp.add(g1, g1, u)
		fp.add(g1, g1, g1)
		fp.neg(g1, g1)

		factors[j] = []fe{g0, g1, g2}
	}

	ej := fp.polyTreeProduct(factors)
	for _, v := range s.st.tree.multipointEval(fp, ej) {
		fp.mul(out, out, v)
	}
	return out
}

func (s *Svelu) xisog(A *ProjectiveCurveParameters, i int) *ProjectiveCurveParameters {
	c := s.c
	fp := c.fp
	l := c.L[i]

	one := fp.newFe()
	minusOne := fp.newFe()
	fp.setOne(one)
	fp.neg(minusOne, one)

	h1 := s.evalProd(one, one)        // ~ prod(Z_s - X_s)
	hm1 := s.evalProd(minusOne, one)  // ~ prod(X_s + Z_s)
	for k := 0; k < 3; k++ {
		fp.sqr(h1, h1)
		fp.sqr(hm1, hm1)
	}

	a := fp.newFe()
	d := fp.newFe()
	fp.set(a, A.A24)
	fp.sub(d, A.A24, A.C24)
	fp.expUint64(a, a, l)
	fp.expUint64(d, d, l)

	out := c.newCurve()
	fp.mul(out.A24, a, hm1)
	fp.mul(d, d, h1)
	fp.sub(out.C24, out.A24, d)
	return out
}

func (s *Svelu) xeval(P *ProjectivePoint, i int) *ProjectivePoint {
	c := s.c
	fp := c.fp

	e1 := s.evalProd(P.Z, P.X)
	e0 := s.evalProd(P.X, P.Z)
	fp.sqr(e1, e1)
	fp.sqr(e0, e0)

	out := c.newPoint()
	fp.mul(out.X, P.X, e1)
	fp.mul(out.Z, P.Z, e0)
	return out
}
