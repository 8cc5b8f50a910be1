package lcg

import (
	"fmt"
	"math/big"
)

// GenerateSequence runs X(k+1) = (a*X(k) + c) mod m for p.N steps.
//
// Every row from the first index whose current value was already produced
// onwards is flagged as Repeat. p must come from Derive; malformed
// parameters are a programming error and panic.
func GenerateSequence(p Params) Sequence {
	checkParams(p)

	seq := Sequence{
		Rows:        make([]Row, 0, p.N),
		RepeatStart: -1,
	}
	denom := new(big.Int).Sub(p.M, big.NewInt(1))
	seen := make(map[string]int, p.N)

	x := new(big.Int).Set(p.X0)
	for k := 0; k < p.N; k++ {
		key := string(x.Bytes())
		if seq.RepeatStart < 0 {
			if first, ok := seen[key]; ok {
				seq.RepeatStart = k
				seq.CycleLength = k - first
			}
		}

		next := new(big.Int).Mul(p.A, x)
		next.Add(next, p.C)
		next.Mod(next, p.M)

		ratio, _ := new(big.Rat).SetFrac(next, denom).Float64()
		seq.Rows = append(seq.Rows, Row{
			Index:   k,
			Current: x,
			Next:    next,
			Ratio:   ratio,
			Repeat:  seq.RepeatStart >= 0,
		})

		if _, ok := seen[key]; !ok {
			seen[key] = k
		}
		x = new(big.Int).Set(next)
	}
	return seq
}

func checkParams(p Params) {
	if p.A == nil || p.C == nil || p.M == nil || p.X0 == nil {
		panic("lcg: GenerateSequence called with incomplete parameters")
	}
	if p.M.Cmp(big.NewInt(1)) <= 0 {
		panic(fmt.Sprintf("lcg: modulus must exceed 1, got %s", p.M))
	}
	if p.N < 0 {
		panic(fmt.Sprintf("lcg: negative count %d", p.N))
	}
	if p.X0.Sign() < 0 || p.X0.Cmp(p.M) >= 0 {
		panic(fmt.Sprintf("lcg: seed %s outside [0, %s)", p.X0, p.M))
	}
}

// Ratios returns the normalized values of seq in order.
func (s Sequence) Ratios() []float64 {
	out := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Ratio
	}
	return out
}
