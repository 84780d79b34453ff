package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "brain_file: custom.brain\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.brain", cfg.BrainFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err, "Load should not error on a missing optional file")
	assert.Equal(t, Default().BrainFile, cfg.BrainFile)
}

func TestLoad_EnvOverridesApply(t *testing.T) {
	t.Setenv("MELVIN_BRAIN_FILE", "from-env.brain")
	t.Setenv("MELVIN_LOG_LEVEL", "trace")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env.brain", cfg.BrainFile)
	assert.Equal(t, "trace", cfg.Logging.Level)
}

func TestLoad_SeedEnvOverrideApplies(t *testing.T) {
	t.Setenv("MELVIN_SEED", "42")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg.Seed, "expected MELVIN_SEED to set a seed override")
	assert.Equal(t, int64(42), *cfg.Seed)
}

func TestDefault_HasNilSeed(t *testing.T) {
	assert.Nil(t, Default().Seed, "expected no seed override by default")
}

func TestValidate_RejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate(), "expected validation error for unknown log level")
}

func TestValidate_RejectsEmptyBrainFile(t *testing.T) {
	cfg := Default()
	cfg.BrainFile = ""
	assert.Error(t, cfg.Validate(), "expected validation error for empty brain_file")
}
