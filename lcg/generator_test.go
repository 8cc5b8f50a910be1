package lcg

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(config Config) (*Generator, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return NewGeneratorWithLogger(config, newLogger(buf, true, "text")), buf
}

func TestNewGenerator(t *testing.T) {
	config := DefaultConfig()
	generator := NewGenerator(config)

	if generator == nil {
		t.Fatal("NewGenerator returned nil")
	}
	if generator.Config() != config {
		t.Error("Config not properly set")
	}
	if generator.Logger() == nil {
		t.Error("Logger not initialized")
	}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		input    RawInput
		wantErr  bool
		validate func(*testing.T, *GenerationResult)
	}{
		{
			name:  "Default form values",
			input: RawInput{Seed: "6", K: "3", C: "7", N: "120"},
			validate: func(t *testing.T, r *GenerationResult) {
				assert.Len(t, r.Sequence.Rows, 120)
				assert.Equal(t, int64(128), r.Params.M.Int64())
				assert.True(t, r.Report.FullPeriod)
				assert.True(t, r.Report.GlobalPass, "failed: %v", r.Report.Failed())
				assert.Equal(t, -1, r.Sequence.RepeatStart)
			},
		},
		{
			name:  "Shift generator passes every test",
			input: RawInput{Seed: "0", K: "0", C: "217", N: "1000"},
			validate: func(t *testing.T, r *GenerationResult) {
				assert.Equal(t, int64(1024), r.Params.M.Int64())
				assert.True(t, r.Report.GlobalPass, "failed: %v", r.Report.Failed())
				assert.False(t, r.Report.Regenerate)
			},
		},
		{
			name:  "Fixed point fails",
			input: RawInput{Seed: "3", K: "0", C: "0", N: "100"},
			validate: func(t *testing.T, r *GenerationResult) {
				assert.False(t, r.Report.GlobalPass)
				assert.True(t, r.Report.Regenerate)
				assert.False(t, r.Report.FullPeriod)
				assert.Equal(t, 1, r.Sequence.RepeatStart)
			},
		},
		{
			name:    "Invalid input",
			input:   RawInput{Seed: "-1", K: "1.5", C: "1", N: "10"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator, _ := newTestGenerator(DefaultConfig())
			result, err := generator.Generate(tt.input, nil)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestGenerateValidationError(t *testing.T) {
	generator, _ := newTestGenerator(DefaultConfig())
	_, err := generator.Generate(RawInput{Seed: "-1", K: "1.5", C: "1", N: "10"}, nil)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 3)
}

func TestGenerateConfirmation(t *testing.T) {
	input := RawInput{Seed: "6", K: "3", C: "7", N: "120"}

	t.Run("Declined", func(t *testing.T) {
		generator, _ := newTestGenerator(DefaultConfig())
		var asked int
		_, err := generator.Generate(input, func(n int) bool {
			asked = n
			return false
		})
		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.Equal(t, 120, asked)
	})

	t.Run("Accepted", func(t *testing.T) {
		generator, _ := newTestGenerator(DefaultConfig())
		result, err := generator.Generate(input, func(int) bool { return true })
		require.NoError(t, err)
		assert.Len(t, result.Sequence.Rows, 120)
	})

	t.Run("Not asked at threshold", func(t *testing.T) {
		generator, _ := newTestGenerator(DefaultConfig())
		in := input
		in.N = "100"
		_, err := generator.Generate(in, func(int) bool {
			t.Error("confirmation requested for a run at the threshold")
			return false
		})
		require.NoError(t, err)
	})

	t.Run("Raised threshold", func(t *testing.T) {
		config := DefaultConfig()
		config.ConfirmThreshold = 1000
		generator, _ := newTestGenerator(config)
		_, err := generator.Generate(input, func(int) bool { return false })
		require.NoError(t, err)
	})
}

func TestGenerateWithPolicy(t *testing.T) {
	generator, _ := newTestGenerator(DefaultConfig())
	input := RawInput{Seed: "6", K: "3", G: "3", C: "7", N: "120"}

	result, err := generator.GenerateWithPolicy(input, PolicyDirect, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(8), result.Params.M.Int64())
	// m = 8 with 120 values has to cycle.
	assert.Equal(t, 8, result.Sequence.RepeatStart)
	assert.Equal(t, 8, result.Sequence.CycleLength)
}

func TestGenerateLogs(t *testing.T) {
	generator, buf := newTestGenerator(DefaultConfig())
	_, err := generator.Generate(RawInput{Seed: "6", K: "3", C: "7", N: "100"}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "parameters derived")
	assert.Contains(t, buf.String(), "sequence evaluated")
}

func TestEvaluateDirect(t *testing.T) {
	generator, _ := newTestGenerator(DefaultConfig())
	result := generator.Evaluate(params(5, 3, 16, 1, 20), time.Now())
	assert.Len(t, result.Sequence.Rows, 20)
	assert.True(t, result.Report.FullPeriod)
	assert.True(t, result.EndTime.After(result.StartTime) || result.EndTime.Equal(result.StartTime))
}
