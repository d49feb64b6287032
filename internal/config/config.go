// Package config loads configuration from environment variables and an
// optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds datastore tool configuration.
type Config struct {
	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Metrics (empty disables the listener)
	MetricsAddr string `yaml:"metrics_addr"`

	// Default redis endpoint, used when a redis URL carries no host.
	RedisURL string `yaml:"redis_url"`

	// Root directory prepended to file store keys (empty means none).
	FileRoot string `yaml:"file_root"`

	// S3
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3Region    string `yaml:"s3_region"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// Load reads configuration with the following precedence, lowest first:
// built-in defaults, the YAML file named by MLRUN_CONFIG_FILE, then
// environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:  "info",
		LogFormat: "json",
		S3Region:  "us-east-1",
	}

	if path := os.Getenv("MLRUN_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LogLevel = envOr("MLRUN_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOr("MLRUN_LOG_FORMAT", c.LogFormat)
	c.MetricsAddr = envOr("MLRUN_METRICS_ADDR", c.MetricsAddr)
	c.RedisURL = envOr("MLRUN_REDIS_URL", c.RedisURL)
	c.FileRoot = envOr("MLRUN_FILE_ROOT", c.FileRoot)
	c.S3Endpoint = envOr("MLRUN_S3_ENDPOINT", c.S3Endpoint)
	c.S3Region = envOr("MLRUN_S3_REGION", c.S3Region)
	c.S3AccessKey = envOr("MLRUN_S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = envOr("MLRUN_S3_SECRET_KEY", c.S3SecretKey)
	c.S3PathStyle = envBool("MLRUN_S3_PATH_STYLE", c.S3PathStyle)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
