package lcg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Moments of U(0,1) and fixed decision thresholds.
const (
	uniformMean     = 0.5
	uniformVariance = 1.0 / 12.0
	uniformMu4      = 1.0 / 80.0

	// Two-sided 95% normal quantile.
	zCritical = 1.96

	// Chi-square critical value for 9 degrees of freedom at alpha = 0.05.
	// Tied to uniformityBins; recompute from the distribution if either
	// changes.
	uniformityBins     = 10
	chiSquareCritical  = 16.92
	maxLag1Correlation = 0.1
)

var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

// MeanTest checks that the sample mean lies within the 95% interval around
// 0.5.
func MeanTest(r []float64) TestResult {
	res := TestResult{Name: "Mean Test"}
	n := len(r)
	if n == 0 {
		res.Details = "no values"
		return res
	}

	mean := stat.Mean(r, nil)
	se := math.Sqrt(uniformVariance / float64(n))
	res.Statistic = mean
	res.Lower = uniformMean - zCritical*se
	res.Upper = uniformMean + zCritical*se
	res.Passed = mean >= res.Lower && mean <= res.Upper
	z := (mean - uniformMean) / se
	res.PValue = 2 * standardNormal.Survival(math.Abs(z))
	res.Details = fmt.Sprintf("mean %.6f in [%.6f, %.6f] (z: %.4f)", mean, res.Lower, res.Upper, z)
	return res
}

// VarianceTest checks the unbiased sample variance against 1/12 using the
// large-sample variance of s^2.
func VarianceTest(r []float64) TestResult {
	res := TestResult{Name: "Variance Test"}
	n := len(r)
	if n < 2 {
		res.Details = fmt.Sprintf("need at least 2 values, got %d", n)
		return res
	}

	nf := float64(n)
	mean := stat.Mean(r, nil)
	s2 := (floats.Dot(r, r) - nf*mean*mean) / (nf - 1)

	sigma4 := uniformVariance * uniformVariance
	varS2 := (uniformMu4 - ((nf-3)/(nf-1))*sigma4) / nf
	if varS2 < 0 {
		varS2 = 0
	}
	se := math.Sqrt(varS2)

	res.Statistic = s2
	res.Lower = uniformVariance - zCritical*se
	res.Upper = uniformVariance + zCritical*se
	res.Passed = s2 >= res.Lower && s2 <= res.Upper
	if se > 0 {
		z := (s2 - uniformVariance) / se
		res.PValue = 2 * standardNormal.Survival(math.Abs(z))
	}
	res.Details = fmt.Sprintf("variance %.6f in [%.6f, %.6f]", s2, res.Lower, res.Upper)
	return res
}

// UniformityTest is a chi-square goodness-of-fit test over ten equal-width
// bins of [0,1].
func UniformityTest(r []float64) TestResult {
	res := TestResult{Name: "Uniformity Test", Upper: chiSquareCritical}
	n := len(r)
	if n == 0 {
		res.Details = "no values"
		return res
	}

	bins := make([]int, uniformityBins)
	for _, v := range r {
		bins[binIndex(v)]++
	}

	expected := float64(n) / uniformityBins
	chiSquare := 0.0
	for _, observed := range bins {
		d := float64(observed) - expected
		chiSquare += d * d / expected
	}

	res.Statistic = chiSquare
	res.Bins = bins
	res.Passed = chiSquare < chiSquareCritical
	res.PValue = distuv.ChiSquared{K: uniformityBins - 1}.Survival(chiSquare)
	res.Details = fmt.Sprintf("chi-square %.4f (critical %.2f, p-value %.4f)", chiSquare, chiSquareCritical, res.PValue)
	return res
}

// binIndex maps v to floor(10v), with 1 itself kept in the last bin.
func binIndex(v float64) int {
	i := int(math.Floor(v * uniformityBins))
	if i >= uniformityBins {
		return uniformityBins - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

// IndependenceTest measures the lag-1 Pearson correlation between each value
// and its successor.
func IndependenceTest(r []float64) TestResult {
	res := TestResult{Name: "Independence Test", Lower: -maxLag1Correlation, Upper: maxLag1Correlation}
	n := len(r)
	if n < 3 {
		res.Details = fmt.Sprintf("need at least 3 values, got %d", n)
		return res
	}

	x, y := r[:n-1], r[1:]
	rho := 0.0
	if !constant(x) && !constant(y) {
		rho = stat.Correlation(x, y, nil)
		if math.IsNaN(rho) {
			rho = 0
		}
	}

	res.Statistic = rho
	res.Passed = math.Abs(rho) < maxLag1Correlation
	res.Details = fmt.Sprintf("lag-1 correlation %.6f (limit %.2f)", rho, maxLag1Correlation)
	return res
}

func constant(v []float64) bool {
	return floats.Max(v) == floats.Min(v)
}

// RunBattery runs all four tests on r and aggregates them.
func RunBattery(r []float64) Report {
	return Aggregate(
		MeanTest(r),
		VarianceTest(r),
		UniformityTest(r),
		IndependenceTest(r),
	)
}
