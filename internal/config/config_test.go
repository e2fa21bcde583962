package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BUBBLEBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 0.03, cfg.Physics.CenterStrength)
	require.Equal(t, 40, cfg.Physics.CollisionIterations)
	require.Equal(t, 30.0, cfg.Physics.MinRadius)
	require.Equal(t, 120.0, cfg.Physics.MaxRadius)
	require.Equal(t, 48.0, cfg.Camera.Padding)
	require.Equal(t, 10.0, cfg.Gesture.DragThresholdPx)
	require.Equal(t, 550*time.Millisecond, cfg.Gesture.PopThreshold())
	require.Equal(t, 350*time.Millisecond, cfg.Gesture.Dwell())
	require.Equal(t, 0.5, cfg.Gesture.MagneticBlend)
	require.Equal(t, "default", cfg.UI.Board)
	require.False(t, cfg.UI.ShowCompleted)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("BUBBLEBOARD_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Database.Path = filepath.Join(t.TempDir(), "board.db")
	cfg.Gesture.PopThresholdMs = 700
	cfg.UI.ShowCompleted = true
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg.Database.Path, got.Database.Path)
	require.Equal(t, 700, got.Gesture.PopThresholdMs)
	require.True(t, got.UI.ShowCompleted)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("BUBBLEBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("BUBBLEBOARD_UI_BOARD", "weekend")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "weekend", cfg.UI.Board)
}
