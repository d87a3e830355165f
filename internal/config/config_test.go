package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sortit/internal/common"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "ollama", cfg.Source.Provider)
	assert.Equal(t, 2*time.Minute, cfg.Source.Timeout)
	assert.Equal(t, 3, cfg.Source.MaxRetries)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, []string{"glass", "paper", "cardboard", "plastic", "metal", "trash"}, cfg.Dataset.Classes)
	assert.False(t, cfg.History.Enabled)
	assert.NotContains(t, cfg.Database.Path, "$HOME")
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
  format: json
source:
  provider: Gemini
  api_key: secret
  model: gemini-2.0-flash
  timeout: 30s
history:
  enabled: true
database:
  path: `+filepath.Join(dir, "history.db")+`
`), 0o600))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "gemini", cfg.Source.Provider)
	assert.Equal(t, "secret", cfg.Source.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.True(t, cfg.History.Enabled)
}

func TestLoad_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")

	v := newViper()
	v.Set("source.provider", "openai")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Source.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{name: "bad level", set: map[string]any{"logging.level": "loud"}},
		{name: "bad format", set: map[string]any{"logging.format": "xml"}},
		{name: "unknown provider", set: map[string]any{"source.provider": "tensorflow"}},
		{name: "gemini without key", set: map[string]any{"source.provider": "gemini"}},
		{name: "negative retries", set: map[string]any{"source.max_retries": -1}},
		{name: "zero upload limit", set: map[string]any{"server.max_upload_bytes": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "")
			t.Setenv("GOOGLE_API_KEY", "")
			v := newViper()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SORTIT_TEST_DIR", "/tmp/sortit")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "rules.yaml"), ExpandPath("~/rules.yaml"))
	assert.Equal(t, "/tmp/sortit/db", ExpandPath("$SORTIT_TEST_DIR/db"))
}
