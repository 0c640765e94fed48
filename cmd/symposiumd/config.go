package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon's YAML configuration. Every field has a usable
// default; an absent config file starts a development server on :8002.
type Config struct {
	Addr string `yaml:"addr"`

	Log struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`

	Backend struct {
		// Provider selects the gateway: huggingface, openai or anthropic.
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"backend"`

	Auth struct {
		// Secret enables bearer-token auth when non-empty.
		Secret string `yaml:"secret"`
	} `yaml:"auth"`

	// PromptsDir holds one persona JSONL file per agent.
	PromptsDir string `yaml:"prompts_dir"`
	// AgentsFile layers agent parameter overrides on the built-in roster.
	AgentsFile string `yaml:"agents_file"`

	Conversation struct {
		// IdleTimeout evicts conversations untouched this long. Zero keeps
		// them for the process lifetime.
		IdleTimeout time.Duration `yaml:"idle_timeout"`
	} `yaml:"conversation"`

	RateLimit struct {
		RequestsPerHour int `yaml:"requests_per_hour"`
	} `yaml:"rate_limit"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Addr = ":8002"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Backend.Provider = "huggingface"
	cfg.RateLimit.RequestsPerHour = 60
	return cfg
}

// loadConfig reads the YAML file over the defaults. An empty path returns
// pure defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
