// Package config loads the workspace configuration file. Missing files yield
// usable defaults so the binary runs without setup against a local Ollama.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configDirName = "reagent_cfg"

// Provider selects the language model backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderAzure  Provider = "azure"
)

// Config matches reagent_cfg/config.yaml inside the workspace.
type Config struct {
	Version string        `yaml:"version"`
	Model   ModelConfig   `yaml:"model"`
	Agent   AgentConfig   `yaml:"agent"`
	Memory  MemoryConfig  `yaml:"memory"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig describes the inference backend.
type ModelConfig struct {
	Provider Provider `yaml:"provider"`
	Name     string   `yaml:"name"`
	// Endpoint is the Ollama host, the Azure resource endpoint, or an
	// OpenAI-compatible base URL depending on the provider.
	Endpoint string `yaml:"endpoint"`
	// Deployment names the Azure deployment; unused elsewhere.
	Deployment string `yaml:"deployment"`
	// APIKeyEnv names the environment variable holding the API key.
	// Credentials never live in the config file itself.
	APIKeyEnv      string  `yaml:"api_key_env"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// AgentConfig tunes the reasoning loop.
type AgentConfig struct {
	MaxIterations       int  `yaml:"max_iterations"`
	MaxMalformedRetries int  `yaml:"max_malformed_retries"`
	MaxPromptTokens     int  `yaml:"max_prompt_tokens"`
	ToolTimeoutSeconds  int  `yaml:"tool_timeout_seconds"`
	Verbose             bool `yaml:"verbose"`
}

// MemoryConfig tunes conversation memory.
type MemoryConfig struct {
	RecentCap     int `yaml:"recent_cap"`
	SummaryBudget int `yaml:"summary_budget"`
}

// LoggingConfig describes debug log output.
type LoggingConfig struct {
	LLM   bool `yaml:"llm_debug"`
	Agent bool `yaml:"agent_debug"`
}

// ConfigDir returns the workspace-local configuration directory.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, configDirName)
}

// DefaultPath returns reagent_cfg/config.yaml within the workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Model: ModelConfig{
			Provider:       ProviderOllama,
			Name:           "llama3",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 120,
		},
		Agent: AgentConfig{
			MaxIterations:       10,
			MaxMalformedRetries: 3,
			MaxPromptTokens:     8000,
			ToolTimeoutSeconds:  30,
		},
		Memory: MemoryConfig{
			RecentCap:     10,
			SummaryBudget: 150,
		},
	}
}

// Load reads the config or returns defaults when the file is missing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk, creating the directory when needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config missing")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// APIKey resolves the configured credential from the environment.
func (m ModelConfig) APIKey() string {
	if m.APIKeyEnv == "" {
		return os.Getenv("OPENAI_API_KEY")
	}
	return os.Getenv(m.APIKeyEnv)
}
