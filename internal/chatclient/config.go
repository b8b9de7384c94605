package chatclient

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfig is the terminal client's configuration file.
type ClientConfig struct {
	Server ServerConfig `yaml:"server"`
	Query  QueryConfig  `yaml:"query"`
	Title  TitleConfig  `yaml:"title"`
	// SessionFile holds the session cookie between invocations (empty = next to the config file)
	SessionFile string `yaml:"session_file"`
}

// ServerConfig points at the legalchat backend.
type ServerConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// QueryConfig points at the answer service.
type QueryConfig struct {
	URL  string `yaml:"url"`
	TopK int    `yaml:"top_k"`
}

// TitleConfig configures the OpenAI-compatible endpoint used for conversation titles.
type TitleConfig struct {
	// BaseURL of the chat completion API (Gemini's OpenAI-compatible endpoint by default)
	BaseURL string `yaml:"base_url"`
	// APIKey may be left empty here and supplied through the environment
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultClientConfig returns a ClientConfig pointing at a local deployment.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Server: ServerConfig{
			URL:     "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Query: QueryConfig{
			URL:  "http://localhost:8000/query",
			TopK: DefaultTopK,
		},
		Title: TitleConfig{
			BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai/",
			Model:   "gemini-2.0-flash",
			Timeout: 20 * time.Second,
		},
	}
}

// DefaultConfigPath is ~/.config/legalchat/config.yaml on Linux.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "legalchat", "config.yaml"), nil
}

// Validate checks that the configuration is usable.
func (c *ClientConfig) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.Query.URL == "" {
		return fmt.Errorf("query.url is required")
	}
	if c.Query.TopK <= 0 {
		return fmt.Errorf("query.top_k must be positive")
	}
	return nil
}

// LoadClientConfig reads path over the defaults. A missing file yields the defaults.
func LoadClientConfig(path string) (*ClientConfig, error) {
	config := DefaultClientConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile writes the configuration as YAML. The file may hold an API key, so it is private.
func (c *ClientConfig) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values with LEGALCHAT_* variables.
// The title API key also falls back to GEMINI_API_KEY and OPENAI_API_KEY.
func (c *ClientConfig) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("LEGALCHAT_SERVER_URL"); ok && v != "" {
		c.Server.URL = v
	}
	if v, ok := lookup("LEGALCHAT_QUERY_URL"); ok && v != "" {
		c.Query.URL = v
	}
	if v, ok := lookup("LEGALCHAT_TITLE_BASE_URL"); ok && v != "" {
		c.Title.BaseURL = v
	}
	if v, ok := lookup("LEGALCHAT_TITLE_MODEL"); ok && v != "" {
		c.Title.Model = v
	}
	if v, ok := lookup("LEGALCHAT_TITLE_API_KEY"); ok && v != "" {
		c.Title.APIKey = v
		return
	}
	if c.Title.APIKey != "" {
		return
	}
	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY"} {
		if v, ok := lookup(key); ok && v != "" {
			c.Title.APIKey = v
			return
		}
	}
}

// SessionPath resolves where the session cookie is persisted for a config file at configPath.
func (c *ClientConfig) SessionPath(configPath string) string {
	if c.SessionFile != "" {
		return c.SessionFile
	}
	return filepath.Join(filepath.Dir(configPath), "session")
}
