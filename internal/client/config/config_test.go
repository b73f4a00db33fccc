package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080/api", c.APIBaseURL)
	assert.Equal(t, "nytevibe.db", c.StateDSN)
	assert.Equal(t, time.Hour, c.SessionCheckInterval)
	assert.Equal(t, 24*time.Hour, c.RefreshWindow)
	assert.Equal(t, 500*time.Millisecond, c.DebounceDelay)
}

func TestLoadConfig_UsesDefaultsWithoutSources(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Chdir(t.TempDir())

	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "http://127.0.0.1:8080/api", cfg.APIBaseURL)
	assert.Equal(t, time.Hour, cfg.SessionCheckInterval)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	envFile := writeFile(t, dir, "test.env", "NYTEVIBE_API_URL=http://env/api\nNYTEVIBE_LOG_LEVEL=debug\n")
	jsonFile := writeFile(t, dir, "cfg.json", `{"api_base_url":"http://json/api","refresh_window":"12h"}`)

	os.Args = []string{"testbin", "-env", envFile, "-c", jsonFile, "-i", "5"}

	cfg := LoadConfig()

	assert.Equal(t, "http://json/api", cfg.APIBaseURL, "json overrides env")
	assert.Equal(t, "debug", cfg.LogLevel, "env value survives when json is silent")
	assert.Equal(t, 12*time.Hour, cfg.RefreshWindow)
	assert.Equal(t, 5*time.Minute, cfg.SessionCheckInterval, "flag overrides default")
}
