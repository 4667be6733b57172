// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

const (
	appDirName        = "brandvoice"
	defaultConfigName = "config.yaml"
	defaultSQLiteName = "profiles.db"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	LLM     LLMConfig     `json:"llm,omitempty" yaml:"llm,omitempty"`
	Server  ServerConfig  `json:"server,omitempty" yaml:"server,omitempty"`
	Store   StoreConfig   `json:"store,omitempty" yaml:"store,omitempty"`
	Extract ExtractConfig `json:"extract,omitempty" yaml:"extract,omitempty"`
	Log     LogConfig     `json:"log,omitempty" yaml:"log,omitempty"`
}

// LLMConfig selects and configures the model provider
type LLMConfig struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"` // groq, openai, gemini or mock
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`       // Provider default when empty
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"` // OpenAI-compatible endpoint override
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`   // Usually supplied via environment
	Timeout  string `json:"timeout,omitempty" yaml:"timeout,omitempty"`   // Go duration, e.g. "60s"
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port           int   `json:"port,omitempty" yaml:"port,omitempty"`
	MaxUploadBytes int64 `json:"max_upload_bytes,omitempty" yaml:"max_upload_bytes,omitempty"`
}

// StoreConfig configures the client-local profile store
type StoreConfig struct {
	Backend    string `json:"backend,omitempty" yaml:"backend,omitempty"` // file or sqlite
	Dir        string `json:"dir,omitempty" yaml:"dir,omitempty"`
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// ExtractConfig bounds document extraction
type ExtractConfig struct {
	MaxFileBytes int64 `json:"max_file_bytes,omitempty" yaml:"max_file_bytes,omitempty"`
	Concurrency  int   `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
}

// LogConfig configures logging
type LogConfig struct {
	Level       string `json:"level,omitempty" yaml:"level,omitempty"`
	File        string `json:"file,omitempty" yaml:"file,omitempty"`
	Development bool   `json:"development,omitempty" yaml:"development,omitempty"`
}

// AppDir returns ~/.config/brandvoice
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", "."+appDirName)
	}
	return filepath.Join(home, ".config", appDirName)
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	return filepath.Join(AppDir(), defaultConfigName)
}

// Defaults returns the built-in configuration
func Defaults() Config {
	dir := AppDir()
	return Config{
		LLM: LLMConfig{
			Provider: "groq",
			Timeout:  "60s",
		},
		Server: ServerConfig{
			Port:           5000,
			MaxUploadBytes: 50 << 20,
		},
		Store: StoreConfig{
			Backend:    StoreFile,
			Dir:        dir,
			SQLitePath: filepath.Join(dir, defaultSQLiteName),
		},
		Extract: ExtractConfig{
			MaxFileBytes: 20 << 20,
			Concurrency:  4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load resolves the effective configuration: file values over defaults, then environment.
// An empty path uses DefaultPath, which may be absent.
func Load(path string, getenv func(string) string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{}
	loaded, err := LoadConfig(path)
	switch {
	case err == nil:
		cfg = loaded
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if getenv != nil {
		merged.ApplyEnv(getenv)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides values from environment variables
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("BRANDVOICE_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := getenv("BRANDVOICE_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := getenv("BRANDVOICE_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := getenv("BRANDVOICE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if c.LLM.APIKey == "" {
		if name := APIKeyEnv(c.LLM.Provider); name != "" {
			c.LLM.APIKey = getenv(name)
		}
	}
}

// APIKeyEnv returns the environment variable holding the key for provider
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "", "groq":
		return "GROQ_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// LLMTimeout returns the parsed provider timeout, zero when unset
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for the API key since the mock provider needs none.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LLM.Provider) {
	case "", "groq", "openai", "gemini", "mock":
	default:
		return fmt.Errorf("config error: unknown llm provider %q", c.LLM.Provider)
	}

	if c.LLM.Timeout != "" {
		d, err := time.ParseDuration(c.LLM.Timeout)
		if err != nil {
			return fmt.Errorf("config error: invalid llm timeout %q: %w", c.LLM.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'llm.timeout' must be positive")
		}
	}

	switch c.Store.Backend {
	case "", StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("config error: unknown store backend %q", c.Store.Backend)
	}

	// Validate numeric ranges
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 0 and 65535")
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'server.max_upload_bytes' must be non-negative")
	}
	if c.Extract.MaxFileBytes < 0 {
		return fmt.Errorf("config error: 'extract.max_file_bytes' must be non-negative")
	}
	if c.Extract.Concurrency < 0 {
		return fmt.Errorf("config error: 'extract.concurrency' must be non-negative")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.LLM.Provider == "" {
		result.LLM.Provider = defaults.LLM.Provider
	}
	if result.LLM.Model == "" {
		result.LLM.Model = defaults.LLM.Model
	}
	if result.LLM.BaseURL == "" {
		result.LLM.BaseURL = defaults.LLM.BaseURL
	}
	if result.LLM.APIKey == "" {
		result.LLM.APIKey = defaults.LLM.APIKey
	}
	if result.LLM.Timeout == "" {
		result.LLM.Timeout = defaults.LLM.Timeout
	}
	if result.Store.Backend == "" {
		result.Store.Backend = defaults.Store.Backend
	}
	if result.Store.Dir == "" {
		result.Store.Dir = defaults.Store.Dir
	}
	if result.Store.SQLitePath == "" {
		result.Store.SQLitePath = defaults.Store.SQLitePath
	}
	if result.Log.Level == "" {
		result.Log.Level = defaults.Log.Level
	}
	if result.Log.File == "" {
		result.Log.File = defaults.Log.File
	}

	// Numeric fields: use default if zero
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Server.MaxUploadBytes == 0 {
		result.Server.MaxUploadBytes = defaults.Server.MaxUploadBytes
	}
	if result.Extract.MaxFileBytes == 0 {
		result.Extract.MaxFileBytes = defaults.Extract.MaxFileBytes
	}
	if result.Extract.Concurrency == 0 {
		result.Extract.Concurrency = defaults.Extract.Concurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
