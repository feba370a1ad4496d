package lib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"Class_A", "Class_B"}, cfg.Classes)
	assert.Equal(t, int64(50000), cfg.ObjectsPerStage)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 20, cfg.QueryLimit)
	assert.Equal(t, int64(10000), cfg.ProgressEvery)
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yml")
	raw := "objectsPerStage: 1000\nclasses:\n  - OnlyOne\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := ParseConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.ObjectsPerStage)
	assert.Equal(t, []string{"OnlyOne"}, cfg.Classes)

	// untouched keys keep their defaults
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 20, cfg.QueryLimit)
}

func TestParseConfigMissingFile(t *testing.T) {
	_, err := ParseConfig(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.Error(t, err)
}
