package velusqrt

import "io"

// gaeWD1 is the one-direction style: exponents live in [0, m] and only
// the curve-side torsion is walked. Every index stays active for all m
// rounds; once its exponent is spent the remaining leaves are masked
// dummies, so per-round work does not reveal which coordinates are
// finished.
type gaeWD1 struct {
	c   *MontgomeryCurve
	w   *walker
	m   int
	rng io.Reader
}

func newGaeWD1(c *MontgomeryCurve, f IsogenyFormula, m int, rng io.Reader) *gaeWD1 {
	return &gaeWD1{c: c, w: newWalker(c, f), m: m, rng: rng}
}

func (g *gaeWD1) randomKey() ([]int8, error) {
	e := make([]int8, g.c.n)
	for i := range e {
		u, err := uniformInt(g.rng, g.m)
		if err != nil {
			return nil, err
		}
		e[i] = int8(u)
	}
	return e, nil
}

func (g *gaeWD1) validateKey(e []int8) error {
	if len(e) != g.c.n {
		return ErrInvalidSecretKey
	}
	for _, ei := range e {
		if ei < 0 || int(ei) > g.m {
			return ErrInvalidSecretKey
		}
	}
	return nil
}

func (g *gaeWD1) action(e []int8, A *ProjectiveCurveParameters) (*ProjectiveCurveParameters, error) {
	n := g.c.n
	S := g.c.allIndexes()
	real := make([]uint64, n)

	cur := g.c.copyCurve(A)
	for r := 0; r < g.m; r++ {
		for i := 0; i < n; i++ {
			real[i] = ltMask(r, int(e[i]))
		}
		Tp, _, err := g.c.fullTorsionPoints(cur)
		if err != nil {
			return nil, err
		}
		cur, _, err = g.w.walkSingle(cur, Tp, S, real, nil)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}
