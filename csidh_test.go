package velusqrt

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestNewRejectsBadSettings(t *testing.T) {
	cases := []Settings{
		{Prime: "p256", Formula: "hvelu", Style: "df", Exponent: 2},
		{Prime: "p512", Formula: "velu", Style: "df", Exponent: 2},
		{Prime: "p512", Formula: "hvelu", Style: "simba", Exponent: 2},
		{CurveModel: "edwards", Prime: "p512", Formula: "hvelu", Style: "df", Exponent: 2},
		{Prime: "p512", Formula: "hvelu", Style: "df", Exponent: 1000},
	}
	for i, s := range cases {
		s.CacheDir = "-"
		if _, err := New(s); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("case %d: got %v, want ErrInvalidParameter", i, err)
		}
	}
}

func TestDefaultSettingsConstruct(t *testing.T) {
	s := DefaultSettings
	s.CacheDir = "-"
	s.Rand = newDeterministicRand([]byte("defaults"))
	c, err := New(s)
	if err != nil {
		t.Fatal(err)
	}
	if c.SecretKeySize() != 74 || c.PublicKeySize() != 64 {
		t.Fatalf("unexpected key sizes %d/%d", c.SecretKeySize(), c.PublicKeySize())
	}
}

func TestKeyWidths(t *testing.T) {
	for _, prime := range []string{"p512", "p1024"} {
		t.Run(prime, func(t *testing.T) {
			c, _ := testEngine(t, prime, "tvelu", "wd1", 1, "widths-"+prime)
			sk, err := c.SecretKey()
			if err != nil {
				t.Fatal(err)
			}
			if len(sk) != c.params.n() {
				t.Fatalf("secret key width %d, want %d", len(sk), c.params.n())
			}
			if c.PublicKeySize() != c.params.pBits/8 {
				t.Fatalf("public key width %d", c.PublicKeySize())
			}
		})
	}
}

// The doctest round trip: two parties, one instance, shared secrets agree.
func TestRoundTrip(t *testing.T) {
	c, _ := testEngine(t, "p512", "tvelu", "wd1", 2, "round-trip")

	aliceSK, err := c.SecretKey()
	if err != nil {
		t.Fatal(err)
	}
	alicePK, err := c.PublicKey(aliceSK)
	if err != nil {
		t.Fatal(err)
	}
	bobSK, err := c.SecretKey()
	if err != nil {
		t.Fatal(err)
	}
	bobPK, err := c.PublicKey(bobSK)
	if err != nil {
		t.Fatal(err)
	}

	ssA, err := c.DH(aliceSK, bobPK)
	if err != nil {
		t.Fatal(err)
	}
	ssB, err := c.DH(bobSK, alicePK)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ssA, ssB) {
		t.Fatal("shared secrets disagree")
	}
	if len(ssA) != c.PublicKeySize() {
		t.Fatalf("shared secret width %d", len(ssA))
	}
}

func TestEndToEndDF(t *testing.T) {
	if testing.Short() {
		t.Skip("df end-to-end is slow")
	}
	c, _ := testEngine(t, "p512", "hvelu", "df", 2, "e2e-df")
	skA, _ := c.SecretKey()
	skB, _ := c.SecretKey()
	pkA, err := c.PublicKey(skA)
	if err != nil {
		t.Fatal(err)
	}
	pkB, err := c.PublicKey(skB)
	if err != nil {
		t.Fatal(err)
	}
	ssA, err := c.DH(skA, pkB)
	if err != nil {
		t.Fatal(err)
	}
	ssB, err := c.DH(skB, pkA)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ssA, ssB) {
		t.Fatal("df shared secrets disagree")
	}
}

// PublicKey depends only on the secret key and the parameters, not on
// the sampling randomness.
func TestPublicKeyDeterminism(t *testing.T) {
	c1, _ := testEngine(t, "p512", "hvelu", "wd2", 2, "determinism-1")
	c2, _ := testEngine(t, "p512", "hvelu", "wd2", 2, "determinism-2")

	sk, err := c1.SecretKey()
	if err != nil {
		t.Fatal(err)
	}
	pk1, err := c1.PublicKey(sk)
	if err != nil {
		t.Fatal(err)
	}
	pk2, err := c2.PublicKey(sk)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pk1, pk2) {
		t.Fatal("public key depends on sampling randomness")
	}
}

func TestCrossFormulaPublicKeys(t *testing.T) {
	engines := map[string]*CSIDH{}
	for _, formula := range []string{"tvelu", "svelu", "hvelu"} {
		c, _ := testEngine(t, "p512", formula, "wd2", 2, "cross-formula-"+formula)
		engines[formula] = c
	}
	pairs := 2
	if !testing.Short() {
		pairs = 5
	}
	for k := 0; k < pairs; k++ {
		sk, err := engines["tvelu"].SecretKey()
		if err != nil {
			t.Fatal(err)
		}
		var ref []byte
		for _, formula := range []string{"tvelu", "svelu", "hvelu"} {
			pk, err := engines[formula].PublicKey(sk)
			if err != nil {
				t.Fatal(err)
			}
			if ref == nil {
				ref = pk
			} else if !bytes.Equal(ref, pk) {
				t.Fatalf("key %d: %s public key differs", k, formula)
			}
		}
	}
}

func TestDHRejectsBadSecretKeys(t *testing.T) {
	c, _ := testEngine(t, "p512", "tvelu", "wd1", 2, "bad-sk")
	pk := make([]byte, c.PublicKeySize()) // value irrelevant, sk fails first

	short := make([]byte, c.params.n()-1)
	if _, err := c.DH(short, pk); !errors.Is(err, ErrInvalidSecretKey) {
		t.Fatalf("short sk: got %v", err)
	}
	if _, err := c.PublicKey(short); !errors.Is(err, ErrInvalidSecretKey) {
		t.Fatalf("short sk via PublicKey: got %v", err)
	}

	bad := make([]byte, c.params.n())
	bad[3] = 0x7f // way outside [0, m]
	if _, err := c.DH(bad, pk); !errors.Is(err, ErrInvalidSecretKey) {
		t.Fatalf("out-of-domain sk: got %v", err)
	}
}

func TestDHRejectsBadPublicKeys(t *testing.T) {
	c, _ := testEngine(t, "p512", "tvelu", "wd1", 1, "bad-pk")
	sk, err := c.SecretKey()
	if err != nil {
		t.Fatal(err)
	}

	// wrong width
	if _, err := c.DH(sk, make([]byte, 32)); !errors.Is(err, ErrInvalidPublicKey) {
		t.Fatalf("short pk: got %v", err)
	}

	// the modulus itself is out of range
	pBytes := make([]byte, c.PublicKeySize())
	for i := 0; i < c.fp.k; i++ {
		v := c.fp.p[i]
		for j := 0; j < 8; j++ {
			pBytes[8*i+j] = byte(v)
			v >>= 8
		}
	}
	if _, err := c.DH(sk, pBytes); !errors.Is(err, ErrInvalidPublicKey) {
		t.Fatalf("pk = p: got %v", err)
	}

	// singular coefficients
	singular := make([]byte, c.PublicKeySize())
	singular[0] = 2
	if _, err := c.DH(sk, singular); !errors.Is(err, ErrInvalidPublicKey) {
		t.Fatalf("A=2: got %v", err)
	}

	// a junk curve: ordinary with overwhelming probability
	junk := make([]byte, c.PublicKeySize())
	junk[0] = 9
	if _, err := c.DH(sk, junk); !errors.Is(err, ErrInvalidPublicKey) {
		t.Fatalf("junk pk: got %v", err)
	}
}

func TestManyKeyPairsCommute(t *testing.T) {
	pairs := 8
	if !testing.Short() {
		pairs = 100
	}
	var g errgroup.Group
	g.SetLimit(8)
	for k := 0; k < pairs; k++ {
		k := k
		g.Go(func() error {
			c, err := New(Settings{
				Prime:    "p512",
				Formula:  "tvelu",
				Style:    "wd1",
				Exponent: 1,
				CacheDir: "-",
				Rand:     newDeterministicRand([]byte(fmt.Sprintf("pairs-%d", k))),
			})
			if err != nil {
				return err
			}
			skA, err := c.SecretKey()
			if err != nil {
				return err
			}
			skB, err := c.SecretKey()
			if err != nil {
				return err
			}
			pkA, err := c.PublicKey(skA)
			if err != nil {
				return err
			}
			pkB, err := c.PublicKey(skB)
			if err != nil {
				return err
			}
			ssA, err := c.DH(skA, pkB)
			if err != nil {
				return err
			}
			ssB, err := c.DH(skB, pkA)
			if err != nil {
				return err
			}
			if !bytes.Equal(ssA, ssB) {
				return fmt.Errorf("pair %d: shared secrets disagree", k)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestP1024RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("p1024 round trip is slow")
	}
	c, _ := testEngine(t, "p1024", "hvelu", "wd1", 1, "p1024")
	skA, _ := c.SecretKey()
	skB, _ := c.SecretKey()
	pkA, err := c.PublicKey(skA)
	if err != nil {
		t.Fatal(err)
	}
	pkB, err := c.PublicKey(skB)
	if err != nil {
		t.Fatal(err)
	}
	ssA, err := c.DH(skA, pkB)
	if err != nil {
		t.Fatal(err)
	}
	ssB, err := c.DH(skB, pkA)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ssA, ssB) {
		t.Fatal("p1024 shared secrets disagree")
	}
	if len(ssA) != 128 {
		t.Fatalf("p1024 shared secret width %d", len(ssA))
	}
}
