package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[window]
width = 1280
height = 720
fov_scale = 0.5

[frame]
rate = "20ms"
workers = 2

[checkpoint]
enabled = true
interval = 120
`))
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 0.5, cfg.Window.FOVScale)
	assert.Equal(t, 20*time.Millisecond, cfg.Frame.Rate)
	assert.Equal(t, 2, cfg.Frame.Workers)
	assert.Equal(t, uint64(120), cfg.Checkpoint.Interval)

	assert.Equal(t, 100*time.Millisecond, cfg.Frame.MaxDelta, "unset keys keep defaults")
	assert.Equal(t, "graveyard", cfg.Level.ID)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "terminal", cfg.Window.Backend)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":       "[window\n",
		"zero width":   "[window]\nwidth = 0\n",
		"fov":          "[window]\nfov_scale = -1\n",
		"rate":         "[frame]\nrate = \"0s\"\n",
		"workers":      "[frame]\nworkers = -1\n",
		"interval":     "[checkpoint]\nenabled = true\ninterval = 0\n",
		"profile mode": "[profile]\nmode = \"trace\"\n",
		"backend":      "[window]\nbackend = \"opengl\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "engine.toml"))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Level.Path)
}
