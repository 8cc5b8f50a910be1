package lcg

import (
	"math/big"
	"time"
)

// Policy selects how the modulus exponent g is obtained.
type Policy string

const (
	// PolicyDerived computes g from the count n so that m is the smallest
	// power of two >= n.
	PolicyDerived Policy = "derived"
	// PolicyDirect takes g from the caller.
	PolicyDirect Policy = "direct"
)

type Config struct {
	Policy           Policy `json:"policy" envconfig:"POLICY"`
	ConfirmThreshold int    `json:"confirm_threshold" envconfig:"CONFIRM_THRESHOLD"`
	MaxCount         int    `json:"max_count" envconfig:"MAX_COUNT"`
	MaxExponent      int    `json:"max_exponent" envconfig:"MAX_EXPONENT"`
	DetailedLogging  bool   `json:"detailed_logging" envconfig:"DETAILED_LOGGING"`
	LogFormat        string `json:"log_format" envconfig:"LOG_FORMAT"`
	ListenAddr       string `json:"listen_addr" envconfig:"LISTEN_ADDR"`
}

// RawInput carries the generator fields as text, the way a form or a
// command line supplies them.
type RawInput struct {
	Seed string `json:"seed"`
	K    string `json:"k"`
	G    string `json:"g,omitempty"`
	C    string `json:"c"`
	N    string `json:"n"`
}

// Params are validated generator parameters.
type Params struct {
	A  *big.Int `json:"a"`
	C  *big.Int `json:"c"`
	M  *big.Int `json:"m"`
	X0 *big.Int `json:"x0"`
	G  int      `json:"g"`
	N  int      `json:"n"`
}

type Row struct {
	Index   int      `json:"k"`
	Current *big.Int `json:"x_k"`
	Next    *big.Int `json:"x_k1"`
	Ratio   float64  `json:"r"`
	Repeat  bool     `json:"repeat"`
}

type Sequence struct {
	Rows []Row `json:"rows"`
	// RepeatStart is the first index whose current value was already seen,
	// or -1.
	RepeatStart int `json:"repeat_start"`
	// CycleLength is RepeatStart minus the index where the repeated value
	// first appeared, or 0.
	CycleLength int `json:"cycle_length"`
}

type TestResult struct {
	Name      string  `json:"name"`
	Passed    bool    `json:"passed"`
	Statistic float64 `json:"statistic"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	PValue    float64 `json:"p_value"`
	Bins      []int   `json:"bins,omitempty"`
	Details   string  `json:"details"`
}

type Report struct {
	Mean         TestResult `json:"mean"`
	Variance     TestResult `json:"variance"`
	Uniformity   TestResult `json:"uniformity"`
	Independence TestResult `json:"independence"`
	GlobalPass   bool       `json:"global_pass"`
	Regenerate   bool       `json:"regenerate"`
	FullPeriod   bool       `json:"full_period"`
}

type GenerationResult struct {
	Params    Params        `json:"params"`
	Sequence  Sequence      `json:"sequence"`
	Report    Report        `json:"report"`
	Duration  time.Duration `json:"duration"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
}
