package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string          `yaml:"database_url"`
	JWTSecretKey   string          `yaml:"jwt_secret_key"`
	ServerPort     int             `yaml:"server_port"`
	LogLevel       string          `yaml:"log_level"`
	AllowedOrigins []string        `yaml:"cors_allowed_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	R2             R2Config        `yaml:"r2"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// R2Config описывает бакет для архива итоговых таблиц. Пустой конфиг отключает архив.
type R2Config struct {
	AccountID       string `yaml:"account_id"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	BucketName      string `yaml:"bucket_name"`
	PublicBaseURL   string `yaml:"public_base_url"`
	Endpoint        string `yaml:"endpoint"`
}

func defaults() Config {
	return Config{
		ServerPort: 8080,
		LogLevel:   "info",
		RateLimit:  RateLimitConfig{RPS: 10, Burst: 20},
	}
}

// Load загружает конфигурацию: сначала YAML-файл (если path не пустой и файл есть),
// затем переменные окружения поверх. Опционально подгружает .env файл.
func Load(path string) (*Config, error) {
	// Ошибку .env не считаем фатальной
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.JWTSecretKey = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		cfg.ServerPort = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = cfg.AllowedOrigins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS environment variable: %w", err)
		}
		cfg.RateLimit.RPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_BURST environment variable: %w", err)
		}
		cfg.RateLimit.Burst = burst
	}

	r2 := map[string]*string{
		"R2_ACCOUNT_ID":        &cfg.R2.AccountID,
		"R2_ACCESS_KEY_ID":     &cfg.R2.AccessKeyID,
		"R2_SECRET_ACCESS_KEY": &cfg.R2.SecretAccessKey,
		"R2_BUCKET_NAME":       &cfg.R2.BucketName,
		"R2_PUBLIC_BASE_URL":   &cfg.R2.PublicBaseURL,
		"R2_ENDPOINT":          &cfg.R2.Endpoint,
	}
	for key, dst := range r2 {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is not set")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate limit values must not be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel переводит LogLevel (debug, info, warn, error) в slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
