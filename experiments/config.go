package experiments

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so configs can say "250ms" or "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config parameterizes a benchmark run.
type Config struct {
	Episodes     int      `yaml:"episodes"`
	TimeBudget   Duration `yaml:"time_budget"`
	NumParticles int      `yaml:"num_particles"`
	SearchDepth  int      `yaml:"search_depth"`
	Discount     float64  `yaml:"discount"`
	Xi           float64  `yaml:"xi"`
	Seed         uint64   `yaml:"seed"`
	OutputDir    string   `yaml:"output_dir"`
}

func DefaultConfig() Config {
	return Config{
		Episodes:     10,
		TimeBudget:   Duration(100 * time.Millisecond),
		NumParticles: 100,
		SearchDepth:  20,
		Discount:     0.95,
		Xi:           0.95,
		Seed:         42,
		OutputDir:    "runs",
	}
}

// LoadConfig reads a YAML config file; fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
