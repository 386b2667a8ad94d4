package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posetrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir: /tmp/runs
solver:
  mode: 2
  lambda: [0.1, 0.2, 0.3]
  max_steps: 50
replay:
  file: walk.csv
  points: 3
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/runs", cfg.OutputDir)
	assert.Equal(t, 2, cfg.Solver.Mode)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, cfg.Solver.Lambda)
	assert.Equal(t, 50, cfg.Solver.MaxSteps)
	assert.Equal(t, 3, cfg.Replay.Points)
	assert.Equal(t, "positionData", cfg.Files.PosePrefix)

	s := cfg.Settings()
	assert.Equal(t, 2, s.Mode)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, s.Lambda)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("POSETRACK_REPLAY_POINTS", "5")
	t.Setenv("POSETRACK_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Replay.Points)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver:\n  mode: 9\nlog_level: loud\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solver mode 9")
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "posetrack.yaml")
	want := Default()
	want.Archive.DBPath = "runs.db"
	want.Replay.File = "walk.csv"

	require.NoError(t, Save(want, path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
