// Package config provides configuration management for the jenkins-mcp server.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Jenkins JenkinsConfig
	Server  ServerConfig
}

// JenkinsConfig describes how to reach the Jenkins server.
type JenkinsConfig struct {
	// URL is the Jenkins base URL, e.g. https://ci.example.com.
	URL string `envconfig:"JENKINS_URL"`
	// Username and Password authenticate with basic auth. Password may be an API token.
	Username           string        `envconfig:"JENKINS_USERNAME"`
	Password           string        `envconfig:"JENKINS_PASSWORD"`
	Timeout            time.Duration `envconfig:"JENKINS_TIMEOUT" default:"30s"`
	InsecureSkipVerify bool          `envconfig:"JENKINS_INSECURE_SKIP_VERIFY" default:"false"`
	StripANSI          bool          `envconfig:"JENKINS_STRIP_ANSI" default:"true"`
	// ErrorPatternsFile optionally replaces the built-in error categories.
	ErrorPatternsFile string `envconfig:"JENKINS_ERROR_PATTERNS_FILE" default:""`
}

// ServerConfig configures the process itself.
type ServerConfig struct {
	LogLevel    string `envconfig:"JENKINS_MCP_LOG_LEVEL" default:"info"`
	MetricsAddr string `envconfig:"JENKINS_MCP_METRICS_ADDR" default:""`
}

// LoadDotEnv loads variables from a .env file without overriding the environment.
// A missing default ".env" is not an error; an explicitly named file must exist.
func LoadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Jenkins.URL = strings.TrimSpace(cfg.Jenkins.URL)
	if cfg.Jenkins.URL == "" || cfg.Jenkins.Username == "" || cfg.Jenkins.Password == "" {
		return nil, fmt.Errorf("Jenkins credentials not configured. Please set JENKINS_URL, JENKINS_USERNAME, and JENKINS_PASSWORD environment variables")
	}
	if cfg.Jenkins.Timeout <= 0 {
		return nil, fmt.Errorf("JENKINS_TIMEOUT must be positive, got %s", cfg.Jenkins.Timeout)
	}

	return &cfg, nil
}
