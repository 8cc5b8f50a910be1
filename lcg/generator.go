package lcg

import (
	"fmt"
	"time"
)

// Generator runs the derive, generate and evaluate pipeline. It holds no
// per-run state and may be shared between goroutines.
type Generator struct {
	config Config
	logger *Logger
}

func NewGenerator(config Config) *Generator {
	return &Generator{
		config: config,
		logger: NewLogger(config.DetailedLogging, config.LogFormat),
	}
}

// NewGeneratorWithLogger is NewGenerator with a caller supplied logger.
func NewGeneratorWithLogger(config Config, logger *Logger) *Generator {
	return &Generator{config: config, logger: logger}
}

func (g *Generator) Config() Config { return g.config }

func (g *Generator) Logger() *Logger { return g.logger }

// Generate validates raw under the configured policy, asks confirm when the
// run is larger than the confirmation threshold, then generates and
// evaluates the sequence. A nil confirm accepts every run.
//
// Validation failures are returned as *ValidationError; a declined
// confirmation as ErrNotConfirmed.
func (g *Generator) Generate(raw RawInput, confirm ConfirmFunc) (*GenerationResult, error) {
	return g.GenerateWithPolicy(raw, g.config.Policy, confirm)
}

func (g *Generator) GenerateWithPolicy(raw RawInput, policy Policy, confirm ConfirmFunc) (*GenerationResult, error) {
	start := time.Now()

	params, err := Derive(raw, policy, g.config.Limits())
	if err != nil {
		g.logger.Debug("parameters rejected", "policy", policy, "error", err)
		return nil, err
	}
	g.logger.Debug("parameters derived",
		"a", params.A, "c", params.C, "m", params.M, "x0", params.X0, "n", params.N)

	if NeedsConfirmation(params.N, g.config.ConfirmThreshold) && confirm != nil && !confirm(params.N) {
		g.logger.Info("generation declined", "n", params.N)
		return nil, fmt.Errorf("%d values requested: %w", params.N, ErrNotConfirmed)
	}

	return g.Evaluate(params, start), nil
}

// Evaluate generates the sequence for already validated params and runs the
// test battery on it.
func (g *Generator) Evaluate(params Params, start time.Time) *GenerationResult {
	seq := GenerateSequence(params)
	if seq.RepeatStart >= 0 {
		g.logger.Debug("repeat detected", "index", seq.RepeatStart, "cycle_length", seq.CycleLength)
	}

	report := RunBattery(seq.Ratios())
	report.FullPeriod = FullPeriod(params)

	result := &GenerationResult{
		Params:    params,
		Sequence:  seq,
		Report:    report,
		Duration:  time.Since(start),
		StartTime: start,
		EndTime:   time.Now(),
	}

	g.logger.Info("sequence evaluated",
		"n", params.N,
		"m", params.M,
		"global_pass", report.GlobalPass,
		"failed", report.Failed(),
		"duration", result.Duration,
	)
	return result
}
