// Package config loads engine settings from defaults, an optional YAML file
// and OTL_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceLength/pkg/connectivity"
	"github.com/OpenTraceLab/OpenTraceLength/pkg/trace"
)

// Config aggregates the application settings.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EngineConfig controls graph construction.
type EngineConfig struct {
	Strategies  []string `yaml:"strategies"`   // priority order
	Epsilon     float64  `yaml:"epsilon"`      // exact strategy quantum, mils
	Tolerance   float64  `yaml:"tolerance"`    // tolerant merge radius, mils
	PadCapture  bool     `yaml:"pad_capture"`  // tolerant strategy joins track ends lying on pad copper
	CacheGraphs bool     `yaml:"cache_graphs"` // keep graphs per (net, strategy) for the session
}

// AnalysisConfig controls critical path ranking.
type AnalysisConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
}

// MaxTolerance caps the tolerant merge radius. Anything wider starts joining
// neighbouring pads on fine-pitch parts.
const MaxTolerance = 10.0

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Strategies:  []string{connectivity.StrategyExact, connectivity.StrategyTolerant},
			Epsilon:     connectivity.DefaultEpsilon,
			Tolerance:   connectivity.DefaultTolerance,
			PadCapture:  true,
			CacheGraphs: true,
		},
		Analysis: AnalysisConfig{
			Workers: trace.DefaultWorkers,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// not empty) and then the environment, validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Logging.Level = valueOrDefault("OTL_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = valueOrDefault("OTL_LOG_FORMAT", c.Logging.Format)
	c.Engine.PadCapture = parseBoolWithDefault("OTL_PAD_CAPTURE", c.Engine.PadCapture)
	c.Engine.CacheGraphs = parseBoolWithDefault("OTL_CACHE_GRAPHS", c.Engine.CacheGraphs)
	c.Analysis.Workers = parseIntWithDefault("OTL_WORKERS", c.Analysis.Workers)

	if v := os.Getenv("OTL_STRATEGIES"); v != "" {
		c.Engine.Strategies = splitList(v)
	}

	var err error
	if c.Engine.Tolerance, err = parseFloat("OTL_TOLERANCE", c.Engine.Tolerance); err != nil {
		return err
	}
	if c.Engine.Epsilon, err = parseFloat("OTL_EPSILON", c.Engine.Epsilon); err != nil {
		return err
	}
	return nil
}

// Validate checks the settings, clamping the worker count.
func (c *Config) Validate() error {
	if c.Analysis.Workers < 1 {
		c.Analysis.Workers = 1
	}

	if c.Engine.Tolerance < 0 || c.Engine.Tolerance > MaxTolerance {
		return fmt.Errorf("config: tolerance %.3f mil out of range [0, %.0f]", c.Engine.Tolerance, MaxTolerance)
	}
	if c.Engine.Epsilon < 0 || (c.Engine.Tolerance > 0 && c.Engine.Epsilon >= c.Engine.Tolerance) {
		return fmt.Errorf("config: epsilon %g mil must be non-negative and below the tolerance", c.Engine.Epsilon)
	}
	if len(c.Engine.Strategies) == 0 {
		return fmt.Errorf("config: no strategies configured")
	}
	if _, err := c.BuildStrategies(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Logging.Format)
	}
	return nil
}

// StrategyOptions returns the strategy settings.
func (c *Config) StrategyOptions() connectivity.Options {
	return connectivity.Options{
		Epsilon:    c.Engine.Epsilon,
		Tolerance:  c.Engine.Tolerance,
		PadCapture: c.Engine.PadCapture,
	}
}

// BuildStrategies builds the configured strategies in priority order.
func (c *Config) BuildStrategies() ([]connectivity.Strategy, error) {
	return connectivity.Strategies(c.Engine.Strategies, c.StrategyOptions())
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
