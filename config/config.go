package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	API struct {
		// Endpoint is the endpoint template; "{numpages}" is substituted when present,
		// otherwise a numpages query parameter is appended
		Endpoint       string        `yaml:"endpoint"`
		BaseURL        string        `yaml:"base_url"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"api"`
	Pages struct {
		Max int `yaml:"max"`
	} `yaml:"pages"`
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Telegram struct {
		Token          string  `yaml:"-"`
		AllowedUserIDs []int64 `yaml:"allowed_user_ids"`
	} `yaml:"telegram"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.API.Endpoint = "http://localhost:8080/scrape-data"
	cfg.API.RequestTimeout = 60 * time.Second
	cfg.Pages.Max = 20
	cfg.Server.Addr = ":3000"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads the YAML file when it exists, falling back to defaults,
// then applies .env and environment overrides
func Load(path string, logger *slog.Logger) (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(path); err == nil {
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Info("config file not found, using defaults", "path", path)
		cfg = GetDefaultConfig()
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("could not load .env file", "error", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides config values from GIVEAWAY_* environment variables
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("GIVEAWAY_API_ENDPOINT"); ok {
		c.API.Endpoint = v
	}
	if v, ok := os.LookupEnv("GIVEAWAY_API_BASE_URL"); ok {
		c.API.BaseURL = v
	}
	if v, ok := os.LookupEnv("GIVEAWAY_REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GIVEAWAY_REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.API.RequestTimeout = d
	}
	if v, ok := os.LookupEnv("GIVEAWAY_MAX_PAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GIVEAWAY_MAX_PAGES %q: %w", v, err)
		}
		c.Pages.Max = n
	}
	if v, ok := os.LookupEnv("GIVEAWAY_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv("GIVEAWAY_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("GIVEAWAY_TG_TOKEN"); ok {
		c.Telegram.Token = strings.TrimSpace(v)
	}
	return nil
}

// Validate checks the config for values the rest of the program cannot work with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.Endpoint) == "" {
		return errors.New("api.endpoint must not be empty")
	}
	if c.API.RequestTimeout < 0 {
		return fmt.Errorf("api.request_timeout must not be negative, got %s", c.API.RequestTimeout)
	}
	if c.Pages.Max < 1 {
		return fmt.Errorf("pages.max must be at least 1, got %d", c.Pages.Max)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// IsAllowedUser reports whether a Telegram user may use the bot.
// An empty allow-list admits everyone.
func (c *Config) IsAllowedUser(userID int64) bool {
	if len(c.Telegram.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.Telegram.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
