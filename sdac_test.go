package velusqrt

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestSdacSearch(t *testing.T) {
	for _, l := range []uint64{3, 5, 7, 11, 13, 127, 373, 587} {
		chain := sdacSearch(l)
		if got := sdacTarget(chain); got != l {
			t.Errorf("chain for %d reaches %d", l, got)
		}
		if bound := 1.5 * math.Log2(float64(l)); float64(len(chain)) > bound {
			t.Errorf("chain for %d longer than %.1f: %d", l, bound, len(chain))
		}
	}
}

func TestGenerateSDACs(t *testing.T) {
	L := p512Parameters.sop
	chains := generateSDACs(L)
	if len(chains) != len(L) {
		t.Fatalf("got %d chains, want %d", len(chains), len(L))
	}
	for i, chain := range chains {
		if sdacTarget(chain) != L[i] {
			t.Errorf("chain %d does not reach %d", i, L[i])
		}
	}
}

func TestSdacCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	L := []uint64{3, 5, 7, 11, 13}
	chains := generateSDACs(L)
	path := filepath.Join(dir, "toy")
	if err := storeSDACs(path, chains); err != nil {
		t.Fatal(err)
	}
	loaded, ok := loadSDACs(path, L)
	if !ok {
		t.Fatal("cache did not load")
	}
	for i := range chains {
		if len(loaded[i]) != len(chains[i]) {
			t.Fatalf("chain %d length mismatch", i)
		}
		for j := range chains[i] {
			if loaded[i][j] != chains[i][j] {
				t.Fatalf("chain %d bit %d mismatch", i, j)
			}
		}
	}
}

func TestSdacCacheRejectsCorruption(t *testing.T) {
	dir := t.TempDir()
	L := []uint64{3, 5, 7}
	path := filepath.Join(dir, "bad")

	// valid bits, wrong targets: "0" reaches 5 (not 3) and "1" reaches 4
	// (not 5); the l=7 line "1 1 1 1" does reach 7
	if err := os.WriteFile(path, []byte("0\n1\n1 1 1 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := loadSDACs(path, L); ok {
		t.Fatal("accepted chain with wrong target")
	}

	if err := os.WriteFile(path, []byte("0\nx\n0 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := loadSDACs(path, L); ok {
		t.Fatal("accepted non-bit token")
	}

	if _, ok := loadSDACs(filepath.Join(dir, "missing"), L); ok {
		t.Fatal("accepted missing file")
	}

	// regeneration path: sdacTable must fall back and rewrite
	chains := sdacTable(dir, "bad", L)
	for i, chain := range chains {
		if sdacTarget(chain) != L[i] {
			t.Fatalf("regenerated chain %d wrong", i)
		}
	}
	if _, ok := loadSDACs(path, L); !ok {
		t.Fatal("regenerated cache not readable")
	}
}
