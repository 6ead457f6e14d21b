// Package config loads runner settings from defaults, an optional YAML
// file, and MAPBENCH_* environment variables, later sources overriding
// earlier ones. Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the environment variable prefix. Variables map to keys
// by dropping the prefix and lowering the rest, underscores becoming
// dots: MAPBENCH_BENCH_ITERATIONS -> bench.iterations.
const EnvPrefix = "MAPBENCH_"

// Config is the full runner configuration.
type Config struct {
	Bench    Bench    `koanf:"bench"`
	Workload Workload `koanf:"workload"`
	Log      Log      `koanf:"log"`
}

// Bench controls trial measurement.
type Bench struct {
	// Iterations fixes the measured loop count; 0 calibrates to
	// BenchTime instead.
	Iterations int64         `koanf:"iterations"`
	BenchTime  time.Duration `koanf:"benchtime"`
	Warmup     int64         `koanf:"warmup"`
	Samples    int           `koanf:"samples"`
}

// Workload selects the entry set. Entries 0 means the fixed three-entry
// canonical set.
type Workload struct {
	Entries int   `koanf:"entries"`
	Seed    int64 `koanf:"seed"`
	// Nested is the pair count per nested value in generated sets.
	Nested int `koanf:"nested"`
}

// Log controls the stderr logger.
type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Bench: Bench{
			Iterations: 0,
			BenchTime:  time.Second,
			Warmup:     100,
			Samples:    1,
		},
		Workload: Workload{
			Entries: 0,
			Seed:    0,
			Nested:  1,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the configuration layered from defaults, the YAML file
// at path (skipped when path is empty), and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func envTransform(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)

	return strings.ReplaceAll(s, "_", ".")
}
