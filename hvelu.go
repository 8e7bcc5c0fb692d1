package velusqrt

// defaultHveluBound is the untuned tvelu/svelu crossover degree.
const defaultHveluBound = 89

// Hvelu dispatches per degree: traditional Velu below the crossover
// bound, sqrt-Velu above it. The tuned flag selects the per-prime bound
// from the parameter table instead of the generic default.
type Hvelu struct {
	t        *Tvelu
	s        *Svelu
	useSvelu []bool
}

func newHvelu(c *MontgomeryCurve, tuned, multievaluation bool) *Hvelu {
	bound := uint64(defaultHveluBound)
	if tuned {
		bound = c.params.hveluBound
	}
	h := &Hvelu{
		t:        newTvelu(c),
		s:        newSvelu(c, multievaluation),
		useSvelu: make([]bool, c.n),
	}
	for i, l := range c.L {
		h.useSvelu[i] = l >= bound
	}
	return h
}

func (h *Hvelu) kps(i int, P *ProjectivePoint, A *ProjectiveCurveParameters) {
	if h.useSvelu[i] {
		h.s.kps(i, P, A)
		return
	}
	h.t.kps(i, P, A)
}

func (h *Hvelu) xisog(A *ProjectiveCurveParameters, i int) *ProjectiveCurveParameters {
	if h.useSvelu[i] {
		return h.s.xisog(A, i)
	}
	return h.t.xisog(A, i)
}

func (h *Hvelu) xeval(P *ProjectivePoint, i int) *ProjectivePoint {
	if h.useSvelu[i] {
		return h.s.xeval(P, i)
	}
	return h.t.xeval(P, i)
}
