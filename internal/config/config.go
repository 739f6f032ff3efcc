package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/OpenTraceLab/tracelen/pkg/trace"
)

// Malformed line policies
const (
	MalformedAbort = "abort" // Skip the whole pass, keep the previous report
	MalformedSkip  = "skip"  // Drop the offending line and carry on
)

// Config controls watching and measuring a layout file.
type Config struct {
	// Path is the layout file to watch
	Path string `yaml:"-"`

	// Watch settings
	Settle        time.Duration `yaml:"settle"`         // Quiet time after an event before reading (default: 100ms)
	Quiet         time.Duration `yaml:"quiet"`          // Size/mtime must hold still this long (default: 50ms)
	StableTimeout time.Duration `yaml:"stable_timeout"` // Give up waiting for a stable file (default: 2s)
	ReadAttempts  int           `yaml:"read_attempts"`  // Re-reads when the file changes mid-read (default: 3)

	// Measurement settings
	Grid        float64 `yaml:"grid"`         // Endpoint snapping grid in mils, 0 = exact (default: 1e-4)
	OnMalformed string  `yaml:"on_malformed"` // "abort" or "skip" (default: abort)

	// Run settings
	Once    bool `yaml:"-"` // Run a single pass and exit
	Verbose bool `yaml:"-"` // Debug logging
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Settle:        100 * time.Millisecond,
		Quiet:         50 * time.Millisecond,
		StableTimeout: 2 * time.Second,
		ReadAttempts:  3,
		Grid:          trace.DefaultGrid,
		OnMalformed:   MalformedAbort,
	}
}

// LoadFile overlays settings from a YAML file onto c.
// Keys absent from the file keep their current values.
func (c *Config) LoadFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", filename, err)
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("no layout file given")
	}

	if c.Settle < 0 || c.Quiet < 0 || c.StableTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	if c.ReadAttempts < 1 {
		c.ReadAttempts = 1
	}

	if c.Grid < 0 {
		return fmt.Errorf("grid must not be negative, got %v", c.Grid)
	}

	switch c.OnMalformed {
	case MalformedAbort, MalformedSkip:
	case "":
		c.OnMalformed = MalformedAbort
	default:
		return fmt.Errorf("on_malformed must be %q or %q, got %q", MalformedAbort, MalformedSkip, c.OnMalformed)
	}

	return nil
}

// SkipMalformed reports whether malformed lines are dropped
func (c *Config) SkipMalformed() bool {
	return c.OnMalformed == MalformedSkip
}

// AssembleOptions returns trace assembly options for this configuration
func (c *Config) AssembleOptions() trace.Options {
	return trace.Options{Grid: c.Grid}
}
