package lcg

// Aggregate combines the four test outcomes. The sequence passes only when
// every test passes; otherwise regeneration with new parameters is offered.
func Aggregate(mean, variance, uniformity, independence TestResult) Report {
	global := mean.Passed && variance.Passed && uniformity.Passed && independence.Passed
	return Report{
		Mean:         mean,
		Variance:     variance,
		Uniformity:   uniformity,
		Independence: independence,
		GlobalPass:   global,
		Regenerate:   !global,
	}
}

// Tests returns the individual results in a fixed order.
func (r Report) Tests() []TestResult {
	return []TestResult{r.Mean, r.Variance, r.Uniformity, r.Independence}
}

// Failed returns the names of the tests that did not pass.
func (r Report) Failed() []string {
	var names []string
	for _, t := range r.Tests() {
		if !t.Passed {
			names = append(names, t.Name)
		}
	}
	return names
}
