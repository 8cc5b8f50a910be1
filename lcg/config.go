package lcg

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment override, e.g. LCG_POLICY.
const EnvPrefix = "LCG"

func DefaultConfig() Config {
	return Config{
		Policy:           PolicyDerived,
		ConfirmThreshold: 100,
		MaxCount:         1_000_000,
		MaxExponent:      4096,
		DetailedLogging:  false,
		LogFormat:        "text",
		ListenAddr:       ":8080",
	}
}

func ValidateConfig(config *Config) error {
	switch config.Policy {
	case PolicyDerived, PolicyDirect:
	default:
		return fmt.Errorf("unknown policy %q", config.Policy)
	}
	if config.ConfirmThreshold < 0 {
		return fmt.Errorf("ConfirmThreshold must not be negative")
	}
	if config.MaxCount < MinCount {
		return fmt.Errorf("MaxCount must be at least %d", MinCount)
	}
	if config.MaxExponent < 1 {
		return fmt.Errorf("MaxExponent must be positive")
	}
	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", config.LogFormat)
	}
	return nil
}

// LoadConfig starts from DefaultConfig, overlays the JSON file at path (if
// any) and then the LCG_* environment variables.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("reading config: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return config, fmt.Errorf("reading environment: %w", err)
	}

	return config, ValidateConfig(&config)
}

// Limits returns the resource bounds the deriver enforces.
func (c Config) Limits() Limits {
	return Limits{MaxCount: c.MaxCount, MaxExponent: c.MaxExponent}
}
