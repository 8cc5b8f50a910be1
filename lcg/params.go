package lcg

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// MinCount is the smallest sequence length accepted by Derive.
const MinCount = 100

// parsePrec bounds the mantissa used while parsing numeric fields. Values
// wider than this are rejected rather than silently rounded.
const parsePrec = 8192

var (
	// ErrNotConfirmed is returned when a ConfirmFunc declines a large run.
	ErrNotConfirmed = errors.New("generation not confirmed")

	errEmpty      = errors.New("empty")
	errNotNumber  = errors.New("not a number")
	errNotInteger = errors.New("not an integer")
	errTooWide    = errors.New("too large")
)

// ConfirmFunc is asked before generating more than the confirmation
// threshold of values. It reports whether the run should go ahead.
type ConfirmFunc func(n int) bool

// Limits caps the resources a single derivation may request.
type Limits struct {
	MaxCount    int
	MaxExponent int
}

// ValidationError lists every problem found in a RawInput.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid parameters: " + strings.Join(e.Problems, "; ")
}

// NeedsConfirmation reports whether a run of n values should be confirmed
// by the caller first.
func NeedsConfirmation(n, threshold int) bool {
	return n > threshold
}

// FullPeriod applies the Hull-Dobell conditions for a power-of-two modulus:
// c odd, and a = 1 mod 4 once 4 divides m. For m = 2 an odd a suffices,
// which a = 1 + 4k always is.
func FullPeriod(p Params) bool {
	if p.C.Bit(0) == 0 {
		return false
	}
	if p.G < 2 {
		return true
	}
	four := big.NewInt(4)
	return new(big.Int).Mod(p.A, four).Cmp(big.NewInt(1)) == 0
}

func parseInteger(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errEmpty
	}
	f, _, err := big.ParseFloat(s, 10, parsePrec, big.ToNearestEven)
	if err != nil || f.IsInf() {
		return nil, errNotNumber
	}
	if !f.IsInt() {
		return nil, errNotInteger
	}
	if f.MantExp(nil) > parsePrec {
		return nil, errTooWide
	}
	i, _ := f.Int(nil)
	return i, nil
}

// Derive validates raw and computes the generator parameters under policy.
// All violated constraints are reported together in a *ValidationError.
func Derive(raw RawInput, policy Policy, limits Limits) (Params, error) {
	var problems []string
	field := func(value, label string) *big.Int {
		v, err := parseInteger(value)
		switch {
		case err == nil:
			return v
		case errors.Is(err, errTooWide):
			problems = append(problems, fmt.Sprintf("%s is too large.", label))
		default:
			problems = append(problems, fmt.Sprintf("%s must be an integer (no decimals).", label))
		}
		return nil
	}

	seed := field(raw.Seed, "Seed X0")
	k := field(raw.K, "k")
	var gRaw *big.Int
	if policy == PolicyDirect {
		gRaw = field(raw.G, "g")
	}
	c := field(raw.C, "c")
	nRaw := field(raw.N, "N (count)")

	var p Params

	if nRaw != nil {
		switch {
		case nRaw.Cmp(big.NewInt(MinCount)) < 0:
			problems = append(problems, fmt.Sprintf("N (count) must be >= %d. Enter %d or more.", MinCount, MinCount))
		case !nRaw.IsInt64() || nRaw.Int64() > int64(limits.MaxCount):
			problems = append(problems, fmt.Sprintf("N (count) must be at most %d.", limits.MaxCount))
		default:
			p.N = int(nRaw.Int64())
		}
	}

	g := -1
	switch policy {
	case PolicyDirect:
		if gRaw != nil {
			switch {
			case gRaw.Sign() <= 0:
				problems = append(problems, "g must be greater than 0. With g > 0, m = 2^g > 1.")
			case !gRaw.IsInt64() || gRaw.Int64() > int64(limits.MaxExponent):
				problems = append(problems, fmt.Sprintf("g must be at most %d.", limits.MaxExponent))
			default:
				g = int(gRaw.Int64())
			}
		}
	case PolicyDerived:
		if nRaw != nil {
			g = derivedExponent(nRaw)
			if g > limits.MaxExponent {
				problems = append(problems, fmt.Sprintf("N (count) implies g = %d, above the limit of %d.", g, limits.MaxExponent))
				g = -1
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown policy %q.", policy))
	}

	if g > 0 {
		p.G = g
		p.M = new(big.Int).Lsh(big.NewInt(1), uint(g))
		if seed != nil && (seed.Sign() < 0 || seed.Cmp(p.M) >= 0) {
			maxSeed := new(big.Int).Sub(p.M, big.NewInt(1))
			problems = append(problems, fmt.Sprintf(
				"Seed X0 must satisfy 0 <= X0 < m. With g=%d, m=%s; choose X0 between 0 and %s.",
				g, p.M, maxSeed))
		}
	}

	if len(problems) > 0 {
		return Params{}, &ValidationError{Problems: problems}
	}

	p.X0 = seed
	p.C = c
	p.A = new(big.Int).Mul(k, big.NewInt(4))
	p.A.Add(p.A, big.NewInt(1))
	return p, nil
}

// derivedExponent returns max(1, ceil(log2(max(2, n)))).
func derivedExponent(n *big.Int) int {
	if n.Cmp(big.NewInt(2)) <= 0 {
		return 1
	}
	// ceil(log2 n) is the bit length of n-1 for n >= 2.
	return new(big.Int).Sub(n, big.NewInt(1)).BitLen()
}
