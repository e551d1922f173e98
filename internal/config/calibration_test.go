package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calib.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := EmptyCalibrationConfig()
	assert.Equal(t, 30, cfg.GetAngleSteps())
	assert.Equal(t, 0.25, cfg.GetBandWidth())
	assert.Equal(t, 1e-8, cfg.GetFuncTolerance())
	assert.Equal(t, 20, cfg.GetConvergeWindow())
	assert.Equal(t, 2000, cfg.GetMaxIterations())
	assert.Equal(t, 10000, cfg.GetMaxEvaluations())
	assert.Equal(t, int64(0), cfg.GetRandomSeed())
}

func TestLoadCalibrationConfig_Partial(t *testing.T) {
	path := writeConfig(t, `{"angle_steps": 64, "random_seed": 12345}`)

	cfg, err := LoadCalibrationConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.GetAngleSteps())
	assert.Equal(t, int64(12345), cfg.GetRandomSeed())
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.25, cfg.GetBandWidth())
	assert.Equal(t, 2000, cfg.GetMaxIterations())
}

func TestLoadCalibrationConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"zero angle steps":   `{"angle_steps": 0}`,
		"negative band":      `{"band_width": -1}`,
		"zero tolerance":     `{"func_tolerance": 0}`,
		"negative max iters": `{"max_iterations": -5}`,
		"bad json":           `{`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, content)
			_, err := LoadCalibrationConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadCalibrationConfig_RequiresJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calib.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := LoadCalibrationConfig(path)
	assert.Error(t, err)
}
