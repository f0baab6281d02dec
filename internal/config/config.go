package config

import (
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "STORY_GENERATOR_CONFIG"
	serverAddrEnv   = "SERVER_ADDR"
	azureOrgURLEnv  = "AZURE_ORG_URL"
	azureProjectEnv = "AZURE_PROJECT"
	azureTokenEnv   = "AZURE_TOKEN"
	openAIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"
	logLevelEnv     = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Azure   AzureConfig   `yaml:"azure"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AzureConfig wires the Azure DevOps organization, project, and PAT.
type AzureConfig struct {
	OrgURL  string `yaml:"orgUrl"`
	Project string `yaml:"project"`
	Token   string `yaml:"token"`
}

// OpenAIConfig defines how to contact the chat-completions API.
type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.Azure.OrgURL = strings.TrimRight(cfg.Azure.OrgURL, "/")

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(azureOrgURLEnv); v != "" {
		c.Azure.OrgURL = v
	}

	if v := os.Getenv(azureProjectEnv); v != "" {
		c.Azure.Project = v
	}

	if v := os.Getenv(azureTokenEnv); v != "" {
		c.Azure.Token = v
	}

	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Azure.OrgURL != "" {
		base.Azure.OrgURL = override.Azure.OrgURL
	}
	if override.Azure.Project != "" {
		base.Azure.Project = override.Azure.Project
	}
	if override.Azure.Token != "" {
		base.Azure.Token = override.Azure.Token
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":5000"},
		Azure:  AzureConfig{},
		OpenAI: OpenAIConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
