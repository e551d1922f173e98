// Package config loads the calibration tuning file. All fields are
// pointers so a partial JSON file overrides only what it names; the
// Get* accessors supply the defaults for everything else, and the same
// schema works for both startup configuration and saved run records.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CalibrationConfig holds the tunable parameters of a calibration run.
type CalibrationConfig struct {
	// Sectioning params
	AngleSteps *int     `json:"angle_steps,omitempty"`
	BandWidth  *float64 `json:"band_width,omitempty"` // same length units as the scans

	// Optimizer params
	FuncTolerance  *float64 `json:"func_tolerance,omitempty"`
	ConvergeWindow *int     `json:"converge_window,omitempty"`
	MaxIterations  *int     `json:"max_iterations,omitempty"`
	MaxEvaluations *int     `json:"max_evaluations,omitempty"`

	// RandomSeed fixes the angle-jitter stream; 0 means time-seeded.
	RandomSeed *int64 `json:"random_seed,omitempty"`
}

// EmptyCalibrationConfig returns a config with every field unset.
func EmptyCalibrationConfig() *CalibrationConfig {
	return &CalibrationConfig{}
}

// LoadCalibrationConfig loads a CalibrationConfig from a JSON file.
// Fields omitted from the file retain their defaults, so partial
// configs are safe.
func LoadCalibrationConfig(path string) (*CalibrationConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyCalibrationConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the set fields hold usable values.
func (c *CalibrationConfig) Validate() error {
	if c.AngleSteps != nil && *c.AngleSteps < 1 {
		return fmt.Errorf("angle_steps must be at least 1, got %d", *c.AngleSteps)
	}
	if c.BandWidth != nil && *c.BandWidth <= 0 {
		return fmt.Errorf("band_width must be positive, got %f", *c.BandWidth)
	}
	if c.FuncTolerance != nil && *c.FuncTolerance <= 0 {
		return fmt.Errorf("func_tolerance must be positive, got %g", *c.FuncTolerance)
	}
	if c.ConvergeWindow != nil && *c.ConvergeWindow < 1 {
		return fmt.Errorf("converge_window must be at least 1, got %d", *c.ConvergeWindow)
	}
	if c.MaxIterations != nil && *c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be non-negative, got %d", *c.MaxIterations)
	}
	if c.MaxEvaluations != nil && *c.MaxEvaluations < 0 {
		return fmt.Errorf("max_evaluations must be non-negative, got %d", *c.MaxEvaluations)
	}
	return nil
}

// GetAngleSteps returns the angle_steps value or the default.
func (c *CalibrationConfig) GetAngleSteps() int {
	if c.AngleSteps == nil {
		return 30 // default
	}
	return *c.AngleSteps
}

// GetBandWidth returns the band_width value or the default.
func (c *CalibrationConfig) GetBandWidth() float64 {
	if c.BandWidth == nil {
		return 0.25 // default
	}
	return *c.BandWidth
}

// GetFuncTolerance returns the func_tolerance value or the default.
func (c *CalibrationConfig) GetFuncTolerance() float64 {
	if c.FuncTolerance == nil {
		return 1e-8 // default
	}
	return *c.FuncTolerance
}

// GetConvergeWindow returns the converge_window value or the default.
func (c *CalibrationConfig) GetConvergeWindow() int {
	if c.ConvergeWindow == nil {
		return 20 // default
	}
	return *c.ConvergeWindow
}

// GetMaxIterations returns the max_iterations value or the default.
func (c *CalibrationConfig) GetMaxIterations() int {
	if c.MaxIterations == nil {
		return 2000 // default
	}
	return *c.MaxIterations
}

// GetMaxEvaluations returns the max_evaluations value or the default.
func (c *CalibrationConfig) GetMaxEvaluations() int {
	if c.MaxEvaluations == nil {
		return 10000 // default
	}
	return *c.MaxEvaluations
}

// GetRandomSeed returns the random_seed value or 0 (time-seeded).
func (c *CalibrationConfig) GetRandomSeed() int64 {
	if c.RandomSeed == nil {
		return 0
	}
	return *c.RandomSeed
}
