package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEndpoint = "http://127.0.0.1:5000/api/process-invoice"
	DefaultPort     = "5000"
	DefaultProvider = "openai"
)

// Config is the combined configuration for both commands
type Config struct {
	Client ClientConfig `yaml:"client"`
	Server ServerConfig `yaml:"server"`
}

// ClientConfig configures `invoicer process`
type ClientConfig struct {
	Endpoint string `yaml:"endpoint"`
	Mode     string `yaml:"mode"`
}

// ServerConfig configures `invoicer serve`
type ServerConfig struct {
	Port           string `yaml:"port"`
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	MaxUploadBytes int64  `yaml:"maxuploadbytes"`
	OllamaURL      string `yaml:"ollamaurl"`

	fileModel string
}

// Load reads the optional YAML file at path, then applies environment
// overrides and defaults. Flags are applied by the caller afterwards.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Server.fileModel = cfg.Server.Model
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	override(&c.Client.Endpoint, "INVOICER_ENDPOINT")
	override(&c.Client.Mode, "INVOICER_MODE")
	override(&c.Server.Port, "PORT")
	override(&c.Server.Provider, "INVOICE_PROVIDER")
	override(&c.Server.OllamaURL, "OLLAMA_URL")
	c.Server.applyModelEnv()
}

// modelEnv names the variable holding each provider's model
var modelEnv = map[string]string{
	"openai": "OPENAI_MODEL",
	"ollama": "OLLAMA_MODEL",
	"gemini": "GEMINI_MODEL",
}

// SetProvider switches the provider, re-applying that provider's model
// variable over any file setting
func (s *ServerConfig) SetProvider(provider string) {
	s.Provider = provider
	s.applyModelEnv()
}

func (s *ServerConfig) applyModelEnv() {
	provider := s.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	s.Model = s.fileModel
	if key, ok := modelEnv[strings.ToLower(provider)]; ok {
		override(&s.Model, key)
	}
}

func (c *Config) applyDefaults() {
	if c.Client.Endpoint == "" {
		c.Client.Endpoint = DefaultEndpoint
	}
	if c.Client.Mode == "" {
		c.Client.Mode = "live"
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.Provider == "" {
		c.Server.Provider = DefaultProvider
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 10 * 1024 * 1024
	}
	if c.Server.OllamaURL == "" {
		c.Server.OllamaURL = "http://localhost:11434"
	}
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
