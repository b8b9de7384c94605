package chatclient

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientConfigMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadClientConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultClientConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestClientConfigSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legalchat", "config.yaml")
	cfg := DefaultClientConfig()
	cfg.Server.URL = "https://api.example.tn"
	cfg.Title.APIKey = "secret"
	require.NoError(t, cfg.SaveToFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadClientConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query:\n  url: http://rag:8000/query\ntitle:\n  timeout: 5s\n"), 0o600))

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://rag:8000/query", cfg.Query.URL)
	assert.Equal(t, DefaultTopK, cfg.Query.TopK)
	assert.Equal(t, 5*time.Second, cfg.Title.Timeout)
	assert.Equal(t, "http://localhost:5000", cfg.Server.URL)
}

func TestLoadClientConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err := LoadClientConfig(path)
	assert.Error(t, err)
}

func TestClientConfigValidate(t *testing.T) {
	cfg := DefaultClientConfig()
	cfg.Query.TopK = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultClientConfig()
	cfg.Server.URL = ""
	assert.Error(t, cfg.Validate())
}

func TestClientConfigApplyEnv(t *testing.T) {
	env := map[string]string{
		"LEGALCHAT_SERVER_URL": "http://backend:5000",
		"GEMINI_API_KEY":       "gemini-key",
		"OPENAI_API_KEY":       "openai-key",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := DefaultClientConfig()
	cfg.ApplyEnv(lookup)
	assert.Equal(t, "http://backend:5000", cfg.Server.URL)
	assert.Equal(t, "gemini-key", cfg.Title.APIKey)

	cfg = DefaultClientConfig()
	cfg.Title.APIKey = "from-file"
	cfg.ApplyEnv(lookup)
	assert.Equal(t, "from-file", cfg.Title.APIKey, "provider keys do not override the file")

	env["LEGALCHAT_TITLE_API_KEY"] = "explicit"
	cfg.ApplyEnv(lookup)
	assert.Equal(t, "explicit", cfg.Title.APIKey)
}

func TestSessionPath(t *testing.T) {
	cfg := DefaultClientConfig()
	assert.Equal(t, filepath.Join("/home/u/.config/legalchat", "session"), cfg.SessionPath("/home/u/.config/legalchat/config.yaml"))
	cfg.SessionFile = "/tmp/s"
	assert.Equal(t, "/tmp/s", cfg.SessionPath("/ignored/config.yaml"))
}
