package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds connection details for the catalog backend.
type ServerConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// UserConfig identifies the current user. ID 0 means anonymous: ratings are
// disabled and no per-user requests are issued.
type UserConfig struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// SearchConfig tunes the live-search request gate.
type SearchConfig struct {
	DebounceMs  int `yaml:"debounce_ms"`
	MinQueryLen int `yaml:"min_query_len"`
	TopN        int `yaml:"top_n"`
}

// MetaConfig tunes metadata presentation.
type MetaConfig struct {
	SynopsisLimit int `yaml:"synopsis_limit"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	User   UserConfig   `yaml:"user"`
	Search SearchConfig `yaml:"search"`
	Meta   MetaConfig   `yaml:"meta"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/seriesearch/config.yaml.
// If neither exists, it writes defaults to ~/.config/seriesearch/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "seriesearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Server: ServerConfig{BaseURL: "http://localhost:5000", TimeoutSecs: 15},
		Search: SearchConfig{DebounceMs: 300, MinQueryLen: 2, TopN: 10},
		Meta:   MetaConfig{SynopsisLimit: 400},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:5000"
	}
	if cfg.Server.TimeoutSecs == 0 {
		cfg.Server.TimeoutSecs = 15
	}
	if cfg.Search.DebounceMs == 0 {
		cfg.Search.DebounceMs = 300
	}
	if cfg.Search.MinQueryLen == 0 {
		cfg.Search.MinQueryLen = 2
	}
	if cfg.Search.TopN == 0 {
		cfg.Search.TopN = 10
	}
	if cfg.Meta.SynopsisLimit == 0 {
		cfg.Meta.SynopsisLimit = 400
	}
}
