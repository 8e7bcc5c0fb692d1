package velusqrt

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// orderLKernel produces a point of exact order L[i] on the curve.
func orderLKernel(t *testing.T, c *MontgomeryCurve, A *ProjectiveCurveParameters, i int) *ProjectivePoint {
	t.Helper()
	Tp, _, err := c.fullTorsionPoints(A)
	if err != nil {
		t.Fatal(err)
	}
	K := Tp
	for j := range c.L {
		if j != i {
			K = c.xMUL(K, A, j)
		}
	}
	if c.isInfinity(K) {
		t.Fatal("kernel collapsed to infinity")
	}
	return K
}

func affineOf(fp *Fp, c *MontgomeryCurve, P *ProjectivePoint) string {
	x := fp.newFe()
	zinv := fp.newFe()
	fp.inv(zinv, P.Z)
	fp.mul(x, P.X, zinv)
	return feHex(fp, x)
}

func TestFormulaAgreement(t *testing.T) {
	fp, c := testCurve(t, "p512", true, "formula-agreement")
	A := c.startingCurve()
	tv := newTvelu(c)
	sv := newSvelu(c, false)
	svM := newSvelu(c, true)

	// the two smallest, two mid-size, and the largest degree
	for _, i := range []int{0, 1, 40, 60, c.n - 1} {
		K := orderLKernel(t, c, A, i)
		U, _, err := c.elligator(A)
		if err != nil {
			t.Fatal(err)
		}

		tv.kps(i, K, A)
		At := tv.xisog(A, i)
		it := tv.xeval(U, i)

		sv.kps(i, K, A)
		As := sv.xisog(A, i)
		is := sv.xeval(U, i)

		svM.kps(i, K, A)
		Am := svM.xisog(A, i)
		im := svM.xeval(U, i)

		ct := feHex(fp, c.coeff(At))
		cs := feHex(fp, c.coeff(As))
		cm := feHex(fp, c.coeff(Am))
		if ct != cs || ct != cm {
			t.Fatalf("codomain mismatch at l=%d:\n%s", c.L[i], spew.Sdump(ct, cs, cm))
		}
		if !c.areEqual(it, is) || !c.areEqual(it, im) {
			t.Fatalf("point image mismatch at l=%d: %s vs %s vs %s",
				c.L[i], affineOf(fp, c, it), affineOf(fp, c, is), affineOf(fp, c, im))
		}
	}
}

func TestIsogenyHomomorphism(t *testing.T) {
	_, c := testCurve(t, "p512", true, "isogeny-hom")
	A := c.startingCurve()
	hv := newHvelu(c, false, false)

	for _, i := range []int{0, 22, c.n - 1} {
		K := orderLKernel(t, c, A, i)
		hv.kps(i, K, A)
		A2 := hv.xisog(A, i)

		U, _, err := c.elligator(A)
		if err != nil {
			t.Fatal(err)
		}
		// phi([2]U) = [2]phi(U): evaluation commutes with doubling
		// across the domain and codomain curves
		l := hv.xeval(c.xDBL(U, A), i)
		r := c.xDBL(hv.xeval(U, i), A2)
		if !c.areEqual(l, r) {
			t.Fatalf("homomorphism broken at l=%d", c.L[i])
		}
	}
}

func TestIsogenyKillsKernel(t *testing.T) {
	_, c := testCurve(t, "p512", true, "isogeny-kernel")
	A := c.startingCurve()
	tv := newTvelu(c)

	i := 2 // l = 7
	Tp, _, err := c.fullTorsionPoints(A)
	if err != nil {
		t.Fatal(err)
	}
	K := Tp
	for j := range c.L {
		if j != i {
			K = c.xMUL(K, A, j)
		}
	}
	tv.kps(i, K, A)
	A2 := tv.xisog(A, i)

	// the image of the full-order point has order prod(L)/7: every other
	// component survives, the l=7 component is gone
	img := tv.xeval(Tp, i)
	Q := img
	for j := range c.L {
		if j != i {
			Q = c.xMUL(Q, A2, j)
		}
	}
	if !c.isInfinity(Q) {
		t.Fatal("image retains a foreign component")
	}
}

func TestHveluDispatch(t *testing.T) {
	_, c := testCurve(t, "p512", true, "hvelu-dispatch")
	h := newHvelu(c, false, false)
	for i, l := range c.L {
		if h.useSvelu[i] != (l >= defaultHveluBound) {
			t.Fatalf("dispatch wrong for l=%d", l)
		}
	}
	ht := newHvelu(c, true, false)
	for i, l := range c.L {
		if ht.useSvelu[i] != (l >= c.params.hveluBound) {
			t.Fatalf("tuned dispatch wrong for l=%d", l)
		}
	}
}

func TestSveluIndexSets(t *testing.T) {
	_, c := testCurve(t, "p512", true, "svelu-sets")
	s := newSvelu(c, false)
	for i, l := range c.L {
		b, bp, sk := s.sJ[i], s.sI[i], s.sK[i]
		if b > bp {
			t.Fatalf("l=%d: sJ > sI", l)
		}
		if b > 0 {
			want := (int(l)-2-4*b*bp-1)/2 + 1
			if sk != want {
				t.Fatalf("l=%d: sK=%d want %d", l, sk, want)
			}
		}
		// every representative pair must be covered exactly once:
		// odd numbers 1..4*b*bp-1 by I+-J, the tail by the mirrored
		// even set
		if 2*(b*bp*2)+2*sk != int(l)-1 {
			t.Fatalf("l=%d: sets cover %d pairs, want %d", l, 4*b*bp+2*sk, int(l)-1)
		}
	}
}
