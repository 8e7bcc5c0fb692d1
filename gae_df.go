package velusqrt

import "io"

// gaeDF is the dummy-free style: every index performs exactly m real
// isogenies per key, (m+e_i)/2 towards the curve side and (m-e_i)/2
// towards the twist side. The per-round schedule covers all n indexes
// with the direction chosen per leaf by a constant-time swap, so the
// field-operation trace is independent of the key.
type gaeDF struct {
	c   *MontgomeryCurve
	w   *walker
	m   int
	rng io.Reader
}

func newGaeDF(c *MontgomeryCurve, f IsogenyFormula, m int, rng io.Reader) *gaeDF {
	return &gaeDF{c: c, w: newWalker(c, f), m: m, rng: rng}
}

// randomKey samples e_i uniformly from {-m, -m+2, ..., m}: the parity of
// every coordinate is locked to the parity of m so that the fixed m
// isogenies split into whole counts per direction.
func (g *gaeDF) randomKey() ([]int8, error) {
	e := make([]int8, g.c.n)
	for i := range e {
		u, err := uniformInt(g.rng, g.m)
		if err != nil {
			return nil, err
		}
		e[i] = int8(g.m - 2*u)
	}
	return e, nil
}

func (g *gaeDF) validateKey(e []int8) error {
	if len(e) != g.c.n {
		return ErrInvalidSecretKey
	}
	for _, ei := range e {
		v := int(ei)
		if v < -g.m || v > g.m || (g.m-v)%2 != 0 {
			return ErrInvalidSecretKey
		}
	}
	return nil
}

func (g *gaeDF) action(e []int8, A *ProjectiveCurveParameters) (*ProjectiveCurveParameters, error) {
	n := g.c.n
	cpos := make([]int, n)
	for i, ei := range e {
		cpos[i] = (g.m + int(ei)) / 2
	}

	S := g.c.allIndexes()
	real := make([]uint64, n)
	dir := make([]uint64, n)
	for i := range real {
		real[i] = 1
	}

	cur := g.c.copyCurve(A)
	for r := 0; r < g.m; r++ {
		for i := 0; i < n; i++ {
			dir[i] = 1 - ltMask(r, cpos[i]) // twist side once the curve-side count is spent
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
