package velusqrt

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Shortest differential addition chains. A chain for l is a bit string
// consumed by xMUL from its last element to its first; starting from the
// triple (1, 2, 3), bit 1 maps (r0, r1, r2) -> (r0, r2, r2+r0) and bit 0
// maps it to (r1, r2, r2+r1), reaching r2 = l.

// sdacSearch enumerates chains, abandoning a branch once its length
// exceeds 1.5*log2(l) (so a chain can end one step past that bound), and
// returns a shortest one.
func sdacSearch(l uint64) []uint8 {
	bound := 1.5 * math.Log2(float64(l))
	var best []uint8
	var found bool
	var rec func(r0, r1, r2 uint64, chain []uint8)
	rec = func(r0, r1, r2 uint64, chain []uint8) {
		if r2 == l {
			if !found || len(chain) < len(best) {
				best = append([]uint8(nil), chain...)
				found = true
			}
			return
		}
		if r2 > l || float64(len(chain)) > bound {
			return
		}
		rec(r0, r2, r2+r0, append(chain, 1))
		rec(r1, r2, r2+r1, append(chain, 0))
	}
	rec(1, 2, 3, nil)
	if !found {
		// Cannot happen for odd l >= 3 within the 1.5*log2 bound.
		panic(fmt.Sprintf("no differential addition chain for %d", l))
	}
	return best
}

// generateSDACs computes the chain table for every small odd prime.
func generateSDACs(L []uint64) [][]uint8 {
	chains := make([][]uint8, len(L))
	for i, l := range L {
		chains[i] = sdacSearch(l)
	}
	return chains
}

// sdacTarget replays a chain from the seed triple and returns the value
// it reaches; used to verify cached chains before trusting them.
func sdacTarget(chain []uint8) uint64 {
	r0, r1, r2 := uint64(1), uint64(2), uint64(3)
	for _, b := range chain {
		if b == 1 {
			r1, r2 = r2, r2+r0
		} else {
			r0, r1, r2 = r1, r2, r2+r1
		}
	}
	return r2
}

// loadSDACs reads a cached chain table: one line per prime, chain bits
// whitespace separated. The cache is advisory; any read or validation
// failure reports !ok and the caller regenerates.
func loadSDACs(path string, L []uint64) ([][]uint8, bool) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer fh.Close()

	chains := make([][]uint8, 0, len(L))
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		// an empty line is the zero-length chain (l = 3)
		fields := strings.Fields(sc.Text())
		chain := make([]uint8, len(fields))
		for i, fld := range fields {
			switch fld {
			case "0":
				chain[i] = 0
			case "1":
				chain[i] = 1
			default:
				return nil, false
			}
		}
		chains = append(chains, chain)
	}
	if sc.Err() != nil || len(chains) != len(L) {
		return nil, false
	}
	for i, chain := range chains {
		if sdacTarget(chain) != L[i] {
			return nil, false
		}
	}
	return chains, true
}

// storeSDACs writes the chain table in the format loadSDACs reads.
// Best effort: the caller ignores failures.
func storeSDACs(path string, chains [][]uint8) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := bufio.NewWriter(fh)
	for _, chain := range chains {
		parts := make([]string, len(chain))
		for i, b := range chain {
			parts[i] = fmt.Sprintf("%d", b)
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// sdacTable loads the per-prime chains from cacheDir (when non-empty),
// regenerating and rewriting the cache on any miss.
func sdacTable(cacheDir, prime string, L []uint64) [][]uint8 {
	if cacheDir == "" {
		return generateSDACs(L)
	}
	path := filepath.Join(cacheDir, prime)
	if chains, ok := loadSDACs(path, L); ok {
		return chains
	}
	chains := generateSDACs(L)
	_ = storeSDACs(path, chains) // advisory cache
	return chains
}
