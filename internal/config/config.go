package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration shared by both
// binaries. Values come from a YAML file and may be overridden by
// environment variables.
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // sqlite3 or postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	LLM struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"llm"`

	Auth struct {
		JWTSecret       string `yaml:"jwt_secret"`
		TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
	} `yaml:"auth"`

	LogLevel string `yaml:"log_level"`
}

// Load reads the configuration file at path, applies defaults and
// environment overrides. A missing file is not an error; defaults and
// environment alone are a valid configuration.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	cfg.Database.Driver = "sqlite3"
	cfg.Database.DSN = "exitprep.db"
	cfg.LLM.Model = "gpt-4-turbo-preview"
	cfg.Auth.JWTSecret = "change_me"
	cfg.Auth.TokenTTLMinutes = 60
	cfg.LogLevel = "info"
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = port
		}
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
