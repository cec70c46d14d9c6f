// Package config loads the library-sim configuration from command-line
// flags and environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ModeMenu = "menu"
	ModeDemo = "demo"
	ModeSim  = "sim"

	DefaultSteps = 20
	envPrefix    = "LIBSIM_"
)

// Config holds the application configuration.
type Config struct {
	Mode   string
	Steps  int
	Seed   *int64 // nil means a fresh random seed per run
	Logger LoggerConfig
	Output OutputConfig
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string
}

// OutputConfig names optional files written after a simulation.
type OutputConfig struct {
	SnapshotPath string
	JSONPath     string
}

// Load reads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables (LIBSIM_*).
// 3. Variables from the dotenv file named by -env-file or LIBSIM_ENV_FILE.
// 4. Default values.
func Load(args []string, getenv func(string) string, stderr io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("library-sim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	mode := fs.String("mode", "", "Run mode: menu, demo or sim (default: menu)")
	steps := fs.String("steps", "", "Number of simulation steps (default: 20)")
	seed := fs.String("seed", "", "Simulation seed; empty for a random run")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (plain, json)")
	snapshot := fs.String("snapshot", "", "Write the final catalogue snapshot to this file")
	exportJSON := fs.String("export-json", "", "Write the final catalogue records as JSON to this file")
	envFile := fs.String("env-file", "", "Read LIBSIM_* variables from this dotenv file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if path := firstNonEmpty(*envFile, getenv(envPrefix+"ENV_FILE")); path != "" {
		fileEnv, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read env file %q: %w", path, err)
		}
		processEnv := getenv
		getenv = func(key string) string {
			return firstNonEmpty(processEnv(key), fileEnv[key])
		}
	}

	cfg := &Config{
		Mode: firstNonEmpty(*mode, getenv(envPrefix+"MODE"), ModeMenu),
		Logger: LoggerConfig{
			Level:  firstNonEmpty(*logLevel, getenv(envPrefix+"LOG_LEVEL"), "info"),
			Format: firstNonEmpty(*logFormat, getenv(envPrefix+"LOG_FORMAT"), "plain"),
		},
		Output: OutputConfig{
			SnapshotPath: firstNonEmpty(*snapshot, getenv(envPrefix+"SNAPSHOT")),
			JSONPath:     firstNonEmpty(*exportJSON, getenv(envPrefix+"EXPORT_JSON")),
		},
	}

	stepsValue := firstNonEmpty(*steps, getenv(envPrefix+"STEPS"))
	if stepsValue == "" {
		cfg.Steps = DefaultSteps
	} else {
		n, err := strconv.Atoi(stepsValue)
		if err != nil {
			return nil, fmt.Errorf("invalid steps %q: %w", stepsValue, err)
		}
		cfg.Steps = n
	}

	if seedValue := firstNonEmpty(*seed, getenv(envPrefix+"SEED")); seedValue != "" {
		n, err := strconv.ParseInt(seedValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", seedValue, err)
		}
		cfg.Seed = &n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error

	switch c.Mode {
	case ModeMenu, ModeDemo, ModeSim:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps cannot be negative"))
	}
	switch strings.ToLower(c.Logger.Format) {
	case "plain", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logger.Format))
	}

	return errors.Join(errs...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
