package velusqrt

import (
	"errors"
	"io"
)

var errKernelAtInfinity = errors.New("isogeny kernel at infinity")

// groupAction is the style-specific engine behind the facade: secret
// sampling, key-domain validation and the class-group action itself.
type groupAction interface {
	randomKey() ([]int8, error)
	validateKey(e []int8) error
	action(e []int8, A *ProjectiveCurveParameters) (*ProjectiveCurveParameters, error)
}

// pointPair carries a curve-side and a twist-side point moved in
// lockstep through the walk.
type pointPair struct {
	p, m *ProjectivePoint
}

// walker runs the strategy-tree traversal shared by the three styles.
// A subset S of torsion indexes is split at a precomputed point; the
// left half is multiplied into the carried kernel, the right subtree is
// processed first, and the kernel stack rides through every isogeny.
// The tree shape depends only on |S|, never on the key.
type walker struct {
	c      *MontgomeryCurve
	f      IsogenyFormula
	splits []int
}

func newWalker(c *MontgomeryCurve, f IsogenyFormula) *walker {
	return &walker{c: c, f: f, splits: strategySplits(c)}
}

// strategySplits derives the per-size split table from the SDAC cost
// model: an xMUL by l costs about 4m + 2s measured in multiplications
// with m = chain length + 2, an evaluation costs on the order of the
// degree. The balanced minimum is computed once by dynamic programming.
func strategySplits(c *MontgomeryCurve) []int {
	n := c.n
	var mulCost, evalCost float64
	for j, l := range c.L {
		m := float64(len(c.sdacs[j]) + 2)
		mulCost += 4*m + 2*m
		evalCost += float64(l)
	}
	mulCost /= float64(n)
	evalCost /= float64(n)

	cost := make([]float64, n+1)
	splits := make([]int, n+1)
	for k := 2; k <= n; k++ {
		best := -1.0
		for h := 1; h < k; h++ {
			v := cost[h] + cost[k-h] + float64(h)*mulCost + float64(k-h)*evalCost
			if best < 0 || v < best {
				best = v
				splits[k] = h
			}
		}
		cost[k] = best
	}
	return splits
}

func (w *walker) split(k int) int {
	h := w.splits[k]
	if h < 1 || h >= k {
		h = (k + 1) / 2
	}
	return h
}

// walkPair processes the index subset S with the curve-side and
// twist-side torsion points carried in lockstep. Per leaf i the kernel
// side is chosen by dir[i] (0 = curve, 1 = twist) with a constant-time
// swap, and real[i] decides whether the isogeny is applied or discarded
// (a masked dummy). Work per leaf is identical in every case: one
// kps/xisog, and per carried pair one xeval plus two xMUL on each side.
func (w *walker) walkPair(A *ProjectiveCurveParameters, Kp, Km *ProjectivePoint, S []int, real, dir []uint64, kin []pointPair) (*ProjectiveCurveParameters, []pointPair, error) {
	c := w.c
	if len(S) == 1 {
		i := S[0]
		R := c.newPoint()
		c.pointCSel(R, Kp, Km, dir[i])
		if c.isInfinity(R) {
			return nil, nil, errKernelAtInfinity
		}
		w.f.kps(i, R, A)
		Anew := w.f.xisog(A, i)

		out := make([]pointPair, len(kin))
		uv := c.newPoint()
		for t, pr := range kin {
			resP := c.newPoint()
			resM := c.newPoint()

			U := w.f.xeval(pr.p, i)
			V := c.xMUL(U, Anew, i)
			W := c.xMUL(pr.p, A, i)
			c.pointCSel(uv, U, V, dir[i])
			c.pointCSel(resP, W, uv, real[i])

			U = w.f.xeval(pr.m, i)
			V = c.xMUL(U, Anew, i)
			W = c.xMUL(pr.m, A, i)
			c.pointCSel(uv, V, U, dir[i])
			c.pointCSel(resM, W, uv, real[i])

			out[t] = pointPair{p: resP, m: resM}
		}
		Aout := c.newCurve()
		c.curveCSel(Aout, A, Anew, real[i])
		return Aout, out, nil
	}

	h := w.split(len(S))
	left, right := S[:h], S[h:]
	KRp, KRm := Kp, Km
	for _, i := range left {
		KRp = c.xMUL(KRp, A, i)
		KRm = c.xMUL(KRm, A, i)
	}
	A1, kin2, err := w.walkPair(A, KRp, KRm, right, real, dir, append(kin, pointPair{p: Kp, m: Km}))
	if err != nil {
		return nil, nil, err
	}
	last := kin2[len(kin2)-1]
	return w.walkPair(A1, last.p, last.m, left, real, dir, kin2[:len(kin2)-1])
}

// walkSingle is the one-direction variant: only the curve-side torsion
// is carried, leaves are real or masked dummies.
func (w *walker) walkSingle(A *ProjectiveCurveParameters, K *ProjectivePoint, S []int, real []uint64, kin []*ProjectivePoint) (*ProjectiveCurveParameters, []*ProjectivePoint, error) {
	c := w.c
	if len(S) == 1 {
		i := S[0]
		if c.isInfinity(K) {
			return nil, nil, errKernelAtInfinity
		}
		w.f.kps(i, K, A)
		Anew := w.f.xisog(A, i)

		out := make([]*ProjectivePoint, len(kin))
		for t, P := range kin {
			U := w.f.xeval(P, i)
			W := c.xMUL(P, A, i)
			res := c.newPoint()
			c.pointCSel(res, W, U, real[i])
			out[t] = res
		}
		Aout := c.newCurve()
		c.curveCSel(Aout, A, Anew, real[i])
		return Aout, out, nil
	}

	h := w.split(len(S))
	left, right := S[:h], S[h:]
	KR := K
	for _, i := range left {
		KR = c.xMUL(KR, A, i)
	}
	A1, kin2, err := w.walkSingle(A, KR, right, real, append(kin, K))
	if err != nil {
		return nil, nil, err
	}
	last := kin2[len(kin2)-1]
	return w.walkSingle(A1, last, left, real, kin2[:len(kin2)-1])
}

// uniformInt samples uniformly from [0, bound] by rejection; bound is
// public (the exponent interval), so the loop leaks nothing secret.
func uniformInt(rng io.Reader, bound int) (int, error) {
	if bound == 0 {
		return 0, nil
	}
	mask := 1
	for mask <= bound {
		mask = mask<<1 | 1
	}
	var b [1]byte
	for {
		if _, err := io.ReadFull(rng, b[:]); err != nil {
			return 0, err
		}
		v := int(b[0]) & mask
		if v <= bound {
			return v, nil
		}
	}
}

// ltMask returns 1 when a < b, branch free over small non-negative ints.
func ltMask(a, b int) uint64 {
	return uint64(int64(a-b)>>63) & 1
}
