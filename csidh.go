// Package velusqrt implements the CSIDH commutative group action over
// supersingular Montgomery curves: constant-time prime-field and x-only
// curve arithmetic, traditional and sqrt-Velu isogeny formulas, and the
// df/wd1/wd2 walking styles behind a byte-string Diffie-Hellman surface.
package velusqrt

import (
	goerrors "errors"
	"io"
	"os"
	"path/filepath"

	cryptorand "crypto/rand"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Error kinds surfaced by the facade. Construction errors are fatal to
// the instance; per-call errors never come with partial output.
var (
	ErrInvalidParameter  = goerrors.New("velusqrt: invalid parameter")
	ErrInvalidPublicKey  = goerrors.New("velusqrt: invalid public key")
	ErrInvalidSecretKey  = goerrors.New("velusqrt: invalid secret key")
	ErrInternalInvariant = goerrors.New("velusqrt: internal invariant violated")
)

// Settings selects a parameter set and engine configuration.
type Settings struct {
	CurveModel      string // only "montgomery"
	Prime           string // "p512" or "p1024"
	Formula         string // "tvelu", "svelu" or "hvelu"
	Style           string // "df", "wd1" or "wd2"
	Exponent        int    // per-coordinate exponent magnitude m
	Tuned           bool
	Multievaluation bool
	Verbose         bool

	// CacheDir overrides the SDAC cache location; empty selects the
	// user cache dir, "-" disables the disk cache entirely.
	CacheDir string

	// Rand supplies all randomness; nil selects crypto/rand.
	Rand io.Reader
}

// DefaultSettings mirrors the upstream defaults.
var DefaultSettings = Settings{
	CurveModel: "montgomery",
	Prime:      "p512",
	Formula:    "hvelu",
	Style:      "df",
	Exponent:   10,
}

// CSIDH wires one parameter set, one isogeny formula and one walking
// style into the three surface operations. Instances are independent;
// a single instance must not be shared across goroutines without
// external serialisation (it owns op counters and formula scratch).
type CSIDH struct {
	settings Settings
	params   *primeParameters
	fp       *Fp
	curve    *MontgomeryCurve
	formula  IsogenyFormula
	gae      groupAction
	log      zerolog.Logger
}

// New constructs an instance or reports ErrInvalidParameter.
func New(settings Settings) (*CSIDH, error) {
	if settings.CurveModel == "" {
		settings.CurveModel = "montgomery"
	}
	if settings.CurveModel != "montgomery" {
		return nil, errors.Wrapf(ErrInvalidParameter, "curve model %q", settings.CurveModel)
	}
	params, ok := parametersFor(settings.Prime)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParameter, "prime %q", settings.Prime)
	}
	if settings.Exponent < 0 || settings.Exponent > 127 {
		return nil, errors.Wrapf(ErrInvalidParameter, "exponent %d", settings.Exponent)
	}
	if settings.Rand == nil {
		settings.Rand = cryptorand.Reader
	}

	log := zerolog.Nop()
	if settings.Verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
			Timestamp().Str("prime", settings.Prime).
			Str("formula", settings.Formula).Str("style", settings.Style).
			Logger()
	}

	cacheDir := settings.CacheDir
	switch cacheDir {
	case "":
		if base, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(base, "velusqrt", "sdacs")
		} else {
			cacheDir = "-"
		}
	}
	var sdacs [][]uint8
	if cacheDir == "-" {
		sdacs = generateSDACs(params.sop)
	} else {
		sdacs = sdacTable(cacheDir, params.name, params.sop)
	}
	log.Debug().Int("chains", len(sdacs)).Msg("sdac table ready")

	fp := newFp(params)
	curve := newMontgomeryCurve(fp, params, sdacs, settings.Rand, settings.Style != "wd1")

	var formula IsogenyFormula
	switch settings.Formula {
	case "tvelu":
		formula = newTvelu(curve)
	case "svelu":
		formula = newSvelu(curve, settings.Multievaluation)
	case "hvelu":
		formula = newHvelu(curve, settings.Tuned, settings.Multievaluation)
	default:
		return nil, errors.Wrapf(ErrInvalidParameter, "formula %q", settings.Formula)
	}

	m := settings.Exponent
	if m == 0 {
		m = params.defaultBound
	}
	var gae groupAction
	switch settings.Style {
	case "df":
		gae = newGaeDF(curve, formula, m, settings.Rand)
	case "wd1":
		gae = newGaeWD1(curve, formula, m, settings.Rand)
	case "wd2":
		gae = newGaeWD2(curve, formula, m, settings.Rand)
	default:
		return nil, errors.Wrapf(ErrInvalidParameter, "style %q", settings.Style)
	}

	return &CSIDH{
		settings: settings,
		params:   params,
		fp:       fp,
		curve:    curve,
		formula:  formula,
		gae:      gae,
		log:      log,
	}, nil
}

// SecretKeySize returns the byte width of secret keys (one signed byte
// per small odd prime).
func (c *CSIDH) SecretKeySize() int { return c.params.n() }

// PublicKeySize returns the byte width of public keys and shared
// secrets.
func (c *CSIDH) PublicKeySize() int { return c.params.keyBytes() }

// Ops returns the field-operation counters accumulated by the walks.
func (c *CSIDH) Ops() OpCounters { return c.fp.Ops() }

// ResetOps zeroes the counters.
func (c *CSIDH) ResetOps() { c.fp.ResetOps() }

// SecretKey samples a fresh secret exponent vector, one signed 8-bit
// coordinate per small odd prime, little-endian by index.
func (c *CSIDH) SecretKey() ([]byte, error) {
	e, err := c.gae.randomKey()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(e))
	for i, v := range e {
		out[i] = byte(v)
	}
	c.log.Debug().Int("coords", len(out)).Msg("secret key sampled")
	return out, nil
}

func (c *CSIDH) parseSecretKey(sk []byte) ([]int8, error) {
	if len(sk) != c.params.n() {
		return nil, errors.Wrapf(ErrInvalidSecretKey, "length %d, want %d", len(sk), c.params.n())
	}
	e := make([]int8, len(sk))
	for i, b := range sk {
		e[i] = int8(b)
	}
	if err := c.gae.validateKey(e); err != nil {
		return nil, err
	}
	return e, nil
}

// PublicKey applies the action indexed by sk to the starting curve and
// returns the affine coefficient of the result, little-endian.
func (c *CSIDH) PublicKey(sk []byte) ([]byte, error) {
	e, err := c.parseSecretKey(sk)
	if err != nil {
		return nil, err
	}
	A, err := c.gae.action(e, c.curve.startingCurve())
	if err != nil {
		return nil, c.wrapActionError(err)
	}
	out := make([]byte, c.params.keyBytes())
	c.fp.toBytes(out, c.curve.coeff(A))
	c.log.Debug().Msg("public key derived")
	return out, nil
}

// DH validates the peer curve and applies the action indexed by sk to
// it. The validation failure path reveals only the fact of rejection.
func (c *CSIDH) DH(sk, pk []byte) ([]byte, error) {
	e, err := c.parseSecretKey(sk)
	if err != nil {
		return nil, err
	}
	if len(pk) != c.params.keyBytes() {
		return nil, errors.Wrapf(ErrInvalidPublicKey, "length %d, want %d", len(pk), c.params.keyBytes())
	}
	a := c.fp.newFe()
	if err := c.fp.fromBytes(a, pk); err != nil {
		return nil, errors.Wrap(ErrInvalidPublicKey, "coefficient out of range")
	}
	// A = +-2 is the singular locus, never a valid curve.
	two := c.fp.newFe()
	c.fp.setSmall(two, 2)
	minusTwo := c.fp.newFe()
	c.fp.neg(minusTwo, two)
	if c.fp.equal(a, two) || c.fp.equal(a, minusTwo) {
		return nil, errors.Wrap(ErrInvalidPublicKey, "singular coefficient")
	}
	A := c.curve.affineToProjective(a)
	ok, err := c.curve.validate(A)
	if err != nil {
		if goerrors.Is(err, errValidationRounds) {
			return nil, errors.Wrap(ErrInvalidPublicKey, "validation failed")
		}
		return nil, err
	}
	if !ok {
		c.log.Debug().Msg("peer public key rejected")
		return nil, errors.Wrap(ErrInvalidPublicKey, "validation failed")
	}
	B, err := c.gae.action(e, A)
	if err != nil {
		return nil, c.wrapActionError(err)
	}
	out := make([]byte, c.params.keyBytes())
	c.fp.toBytes(out, c.curve.coeff(B))
	c.log.Debug().Msg("shared secret derived")
	return out, nil
}

func (c *CSIDH) wrapActionError(err error) error {
	if goerrors.Is(err, errKernelAtInfinity) {
		return errors.Wrap(ErrInternalInvariant, err.Error())
	}
	return err
}
