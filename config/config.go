// Package config loads the service configuration from config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	ML struct {
		ModelType     string `yaml:"model_type"`
		ModelPath     string `yaml:"model_path"`
		CacheSize     int    `yaml:"cache_size"`
		WatchArtifact bool   `yaml:"watch_artifact"`
	} `yaml:"ml"`
}

func Default() *Config {
	var config Config
	config.Http.Port = 8080
	config.Http.AllowedOrigins = []string{"*"}
	config.Log.Level = "info"
	config.Log.MaxSizeMB = 50
	config.Log.MaxBackups = 3
	config.Log.MaxAgeDays = 28
	config.ML.ModelType = "gradient_boosting"
	config.ML.ModelPath = "models/house_value_pipeline.json"
	config.ML.CacheSize = 1024
	config.ML.WatchArtifact = true
	return &config
}

// Load reads .env (if present), then the YAML file at path (if present) over the
// defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := Default()
	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.ML.ModelPath == "" {
		return errors.New("ml.model_path is required")
	}
	return nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Http.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.ML.ModelPath = v
	}
	if v := os.Getenv("PREDICTION_CACHE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PREDICTION_CACHE_SIZE: %w", err)
		}
		c.ML.CacheSize = size
	}
	return nil
}
