package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string `yaml:"port"`
	DatabasePath string `yaml:"database_path"`
	AppEnv       string `yaml:"app_env"`
	JWTSecret    string `yaml:"jwt_secret"`
	LogLevel     string `yaml:"log_level"`
	LogPretty    bool   `yaml:"log_pretty"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variables (a .env file is honored).
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := &Config{
		Port:     "8080",
		AppEnv:   "local",
		LogLevel: "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if v, ok := os.LookupEnv("LOG_PRETTY"); ok {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parsing LOG_PRETTY: %w", err)
		}
		cfg.LogPretty = pretty
	}

	if cfg.DatabasePath == "" {
		path, err := DefaultDatabasePath()
		if err != nil {
			return nil, err
		}
		cfg.DatabasePath = path
	}

	return cfg, nil
}

// mergeFile overlays non-empty values from a YAML file.
// ${VAR} references are expanded before parsing.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.Port != "" {
		c.Port = fileCfg.Port
	}
	if fileCfg.DatabasePath != "" {
		c.DatabasePath = fileCfg.DatabasePath
	}
	if fileCfg.AppEnv != "" {
		c.AppEnv = fileCfg.AppEnv
	}
	if fileCfg.JWTSecret != "" {
		c.JWTSecret = fileCfg.JWTSecret
	}
	if fileCfg.LogLevel != "" {
		c.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogPretty {
		c.LogPretty = true
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(m)[1])
	})
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
