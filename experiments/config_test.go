package experiments

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	content := []byte("episodes: 3\ntime_budget: 250ms\nseed: 9\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	require.Equal(t, 3, cfg.Episodes)
	require.Equal(t, 250*time.Millisecond, time.Duration(cfg.TimeBudget))
	require.Equal(t, uint64(9), cfg.Seed)
	require.Equal(t, 0.95, cfg.Xi, "Fields absent from the file keep their defaults")
	require.Equal(t, 100, cfg.NumParticles)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time_budget: soon\n"), 0644))

	_, err := LoadConfig(path)

	require.Error(t, err)
}
