package lcg

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = DefaultConfig().Limits()

func validInput() RawInput {
	return RawInput{Seed: "6", K: "3", G: "3", C: "7", N: "120"}
}

func problems(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
	return verr.Problems
}

func TestDeriveDerivedPolicy(t *testing.T) {
	p, err := Derive(validInput(), PolicyDerived, testLimits)
	require.NoError(t, err)

	assert.Equal(t, int64(13), p.A.Int64())
	assert.Equal(t, int64(7), p.C.Int64())
	assert.Equal(t, int64(6), p.X0.Int64())
	assert.Equal(t, 7, p.G)
	assert.Equal(t, int64(128), p.M.Int64())
	assert.Equal(t, 120, p.N)
}

func TestDeriveDirectPolicy(t *testing.T) {
	p, err := Derive(validInput(), PolicyDirect, testLimits)
	require.NoError(t, err)

	assert.Equal(t, 3, p.G)
	assert.Equal(t, int64(8), p.M.Int64())
	assert.Equal(t, int64(13), p.A.Int64())
}

func TestDerivedExponent(t *testing.T) {
	tests := []struct {
		n    int64
		want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{100, 7},
		{128, 7},
		{129, 8},
		{1000, 10},
		{1024, 10},
		{1025, 11},
	}

	for _, tt := range tests {
		if got := derivedExponent(big.NewInt(tt.n)); got != tt.want {
			t.Errorf("derivedExponent(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestDeriveCountBoundary(t *testing.T) {
	in := validInput()

	in.N = "99"
	_, err := Derive(in, PolicyDerived, testLimits)
	ps := problems(t, err)
	require.Len(t, ps, 1)
	assert.Contains(t, ps[0], ">= 100")

	in.N = "100"
	p, err := Derive(in, PolicyDerived, testLimits)
	require.NoError(t, err)
	assert.Equal(t, 100, p.N)
}

func TestDeriveSeedRange(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		seed    string
		wantErr bool
	}{
		{"Derived zero", PolicyDerived, "0", false},
		{"Derived max", PolicyDerived, "127", false},
		{"Derived equal to m", PolicyDerived, "128", true},
		{"Derived negative", PolicyDerived, "-1", true},
		{"Direct max", PolicyDirect, "7", false},
		{"Direct equal to m", PolicyDirect, "8", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Seed = tt.seed
			_, err := Derive(in, tt.policy, testLimits)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Derive() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeriveSeedMessageNamesRange(t *testing.T) {
	in := validInput()
	in.Seed = "8"
	_, err := Derive(in, PolicyDirect, testLimits)
	ps := problems(t, err)
	require.Len(t, ps, 1)
	assert.Contains(t, ps[0], "between 0 and 7")
	assert.Contains(t, ps[0], "m=8")
}

func TestDeriveIntegers(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"Plain", "3", false},
		{"Padded", " 3 ", false},
		{"Zero fraction", "3.0", false},
		{"Exponent", "1e1", false},
		{"Fraction", "3.5", true},
		{"Empty", "", true},
		{"Text", "three", true},
		{"Infinity", "Inf", true},
		{"Hex", "0x10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.K = tt.value
			_, err := Derive(in, PolicyDerived, testLimits)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Derive() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				ps := problems(t, err)
				require.Len(t, ps, 1)
				assert.True(t, strings.HasPrefix(ps[0], "k must be an integer"), ps[0])
			}
		})
	}
}

func TestDeriveCollectsAllProblems(t *testing.T) {
	in := RawInput{Seed: "1.5", K: "x", G: "0", C: "2.2", N: "10"}
	_, err := Derive(in, PolicyDirect, testLimits)
	ps := problems(t, err)

	// three non-integers, g <= 0 and n < 100
	assert.Len(t, ps, 5)
	joined := strings.Join(ps, "\n")
	assert.Contains(t, joined, "Seed X0 must be an integer")
	assert.Contains(t, joined, "k must be an integer")
	assert.Contains(t, joined, "c must be an integer")
	assert.Contains(t, joined, "g must be greater than 0")
	assert.Contains(t, joined, ">= 100")
}

func TestDeriveCollectsRangeAndCount(t *testing.T) {
	in := validInput()
	in.Seed = "500"
	in.N = "50"
	_, err := Derive(in, PolicyDerived, testLimits)
	ps := problems(t, err)
	require.Len(t, ps, 2)
	assert.Contains(t, ps[0], ">= 100")
	assert.Contains(t, ps[1], "between 0 and 63")
}

func TestDeriveDirectIgnoresNForModulus(t *testing.T) {
	in := validInput()
	in.G = "2"
	in.N = "5000"
	p, err := Derive(in, PolicyDirect, testLimits)
	require.Error(t, err)
	assert.Equal(t, Params{}, p)

	in.Seed = "3"
	p, err = Derive(in, PolicyDirect, testLimits)
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.M.Int64())
}

func TestDeriveLimits(t *testing.T) {
	limits := Limits{MaxCount: 1000, MaxExponent: 64}

	in := validInput()
	in.N = "1001"
	_, err := Derive(in, PolicyDerived, limits)
	assert.Contains(t, problems(t, err)[0], "at most 1000")

	in = validInput()
	in.G = "65"
	_, err = Derive(in, PolicyDirect, limits)
	assert.Contains(t, problems(t, err)[0], "g must be at most 64")

	in.G = "64"
	p, err := Derive(in, PolicyDirect, limits)
	require.NoError(t, err)
	assert.Equal(t, 65, p.M.BitLen())
}

func TestDeriveUnknownPolicy(t *testing.T) {
	_, err := Derive(validInput(), Policy("bogus"), testLimits)
	assert.Contains(t, problems(t, err)[0], "unknown policy")
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Problems: []string{"a", "b"}}
	assert.Equal(t, "invalid parameters: a; b", err.Error())
}

func TestNeedsConfirmation(t *testing.T) {
	assert.False(t, NeedsConfirmation(100, 100))
	assert.True(t, NeedsConfirmation(101, 100))
}

func TestFullPeriod(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want bool
	}{
		{"Odd increment", params(5, 3, 16, 1, 100), true},
		{"Even increment", params(5, 2, 16, 1, 100), false},
		{"Modulus two", params(1, 1, 2, 0, 100), true},
		{"Bad multiplier", params(3, 1, 16, 0, 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullPeriod(tt.p))
		})
	}
}
