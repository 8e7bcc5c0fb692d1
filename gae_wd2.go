package velusqrt

import "io"

// gaeWD2 is the two-direction style: exponents live in [-m, m], both the
// curve and the twist torsion are walked, and the m - |e_i| leftover
// leaves per index are masked dummies. A dummy is indistinguishable from
// either direction, which is what hides the direction choice.
type gaeWD2 struct {
	c   *MontgomeryCurve
	w   *walker
	m   int
	rng io.Reader
}

func newGaeWD2(c *MontgomeryCurve, f IsogenyFormula, m int, rng io.Reader) *gaeWD2 {
	return &gaeWD2{c: c, w: newWalker(c, f), m: m, rng: rng}
}

func (g *gaeWD2) randomKey() ([]int8, error) {
	e := make([]int8, g.c.n)
	for i := range e {
		u, err := uniformInt(g.rng, 2*g.m)
		if err != nil {
			return nil, err
		}
		e[i] = int8(u - g.m)
	}
	return e, nil
}

func (g *gaeWD2) validateKey(e []int8) error {
	if len(e) != g.c.n {
		return ErrInvalidSecretKey
	}
	for _, ei := range e {
		if int(ei) < -g.m || int(ei) > g.m {
			return ErrInvalidSecretKey
		}
	}
	return nil
}

func (g *gaeWD2) action(e []int8, A *ProjectiveCurveParameters) (*ProjectiveCurveParameters, error) {
	n := g.c.n
	abs := make([]int, n)
	dir := make([]uint64, n)
	for i, ei := range e {
		v := int(ei)
		neg := uint64(int64(v)>>63) & 1
		dir[i] = neg
		abs[i] = (v ^ -int(neg)) + int(neg)
	}

	S := g.c.allIndexes()
	real := make([]uint64, n)

	cur := g.c.copyCurve(A)
	for r := 0; r < g.m; r++ {
		for i := 0; i < n; i++ {
			real[i] = ltMask(r, abs[i])
		}
		Tp, Tm, err := g.c.fullTorsionPoints(cur)
		if err != nil {
			return nil, err
		}
		cur, _, err = g.w.walkPair(cur, Tp, Tm, S, real, dir, nil)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}
