package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/verlane/ollamactl/internal/service"
)

// FileConfig represents the top-level TOML structure.
type FileConfig struct {
	Service service.Config `toml:"service" mapstructure:"service"`
	LLM     LLMConfig      `toml:"llm" mapstructure:"llm"`
	Log     LogConfig      `toml:"log" mapstructure:"log"`
	Store   StoreConfig    `toml:"store" mapstructure:"store"`
	History HistoryConfig  `toml:"history" mapstructure:"history"`
	Server  ServerConfig   `toml:"server" mapstructure:"server"`
}

// LogConfig controls the manager's own logging, not the supervised
// service's output (that lives under [service.log]).
type LogConfig struct {
	Level string `toml:"level" mapstructure:"level"`
	File  string `toml:"file" mapstructure:"file"`
}

// LLMConfig points the chat client at the inference server API.
type LLMConfig struct {
	BaseURL string        `toml:"base_url" mapstructure:"base_url"`
	Model   string        `toml:"model" mapstructure:"model"`
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// StoreConfig selects the transition store backend by DSN.
type StoreConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// HistoryConfig lists external sinks that receive transition events.
type HistoryConfig struct {
	Sinks []string `toml:"sinks" mapstructure:"sinks"`
}

// ServerConfig configures the admin HTTP API.
type ServerConfig struct {
	Listen string `toml:"listen" mapstructure:"listen"`
}

// Default returns a configuration with every default applied, for
// callers running without a config file.
func Default() *FileConfig {
	fc := &FileConfig{}
	fc.applyDefaults()
	return fc
}

// Load parses a TOML config file and applies defaults.
func Load(path string) (*FileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, err
	}
	fc.applyDefaults()
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	return &fc, nil
}

func (fc *FileConfig) applyDefaults() {
	fc.Service = fc.Service.Normalized()
	if fc.LLM.BaseURL == "" {
		fc.LLM.BaseURL = fmt.Sprintf("http://127.0.0.1:%d", fc.Service.Port)
	}
	if fc.LLM.Model == "" {
		fc.LLM.Model = "llama3.2"
	}
	if fc.LLM.Timeout <= 0 {
		fc.LLM.Timeout = 2 * time.Minute
	}
	if fc.Log.Level == "" {
		fc.Log.Level = "info"
	}
	if fc.Server.Listen == "" {
		fc.Server.Listen = "127.0.0.1:8800"
	}
}

// Validate checks the merged configuration.
func (fc *FileConfig) Validate() error {
	if err := fc.Service.Validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	return nil
}
