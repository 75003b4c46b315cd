package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	LDAP      LDAPConfig      `yaml:"ldap"`
	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host        string `yaml:"host" env:"SERVER_HOST"`
	Port        string `yaml:"port" env:"PORT"`
	Mode        string `yaml:"mode" env:"SERVER_MODE"` // debug, release, test
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn" env:"DB_DSN"`
}

const (
	AuthModeJWKS   = "jwks"
	AuthModeSecret = "secret"
)

// AuthConfig selects how bearer tokens are verified. In jwks mode tokens
// come from the external identity provider; in secret mode the server signs
// its own tokens on login.
type AuthConfig struct {
	Mode          string `yaml:"mode" env:"AUTH_MODE"`
	JWKSURL       string `yaml:"jwks_url" env:"SUPABASE_JWT_JWKS_URL"`
	Secret        string `yaml:"secret" env:"JWT_SECRET"`
	ExpireHour    int    `yaml:"expire_hour" env:"JWT_EXPIRE_HOUR"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"` // seeded admin account
}

type LDAPConfig struct {
	Enabled      bool   `yaml:"enabled" env:"LDAP_ENABLED"`
	Host         string `yaml:"host" env:"LDAP_HOST"`
	Port         int    `yaml:"port" env:"LDAP_PORT"`
	BaseDN       string `yaml:"base_dn" env:"LDAP_BASE_DN"`
	BindDN       string `yaml:"bind_dn" env:"LDAP_BIND_DN"`
	BindPassword string `yaml:"bind_password" env:"LDAP_BIND_PASSWORD"`
	UserFilter   string `yaml:"user_filter" env:"LDAP_USER_FILTER"`
	UseSSL       bool   `yaml:"use_ssl" env:"LDAP_USE_SSL"`
}

// AIConfig describes the generation backend.
type AIConfig struct {
	Provider     string        `yaml:"provider" env:"AI_PROVIDER"` // gemini, openai, anthropic, ollama
	APIKey       string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	BaseURL      string        `yaml:"base_url" env:"AI_BASE_URL"`
	FastModel    string        `yaml:"fast_model" env:"AI_FAST_MODEL"`
	ProModel     string        `yaml:"pro_model" env:"AI_PRO_MODEL"`
	MaxTokens    int           `yaml:"max_tokens" env:"AI_MAX_TOKENS"`
	Timeout      time.Duration `yaml:"timeout" env:"AI_TIMEOUT"`
	CostPerToken float64       `yaml:"cost_per_token" env:"AI_COST_PER_TOKEN"`
}

type RateLimitConfig struct {
	AIMax     int           `yaml:"ai_max" env:"AI_RATE_LIMIT"`
	AIWindow  time.Duration `yaml:"ai_window" env:"AI_RATE_WINDOW"`
	APIMax    int           `yaml:"api_max" env:"API_RATE_LIMIT"`
	APIWindow time.Duration `yaml:"api_window" env:"API_RATE_WINDOW"`
}

// RedisConfig enables the shared rate window store and the async usage queue.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	URL      string `yaml:"url" env:"REDIS_URL"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool   `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
}

// CalendarConfig picks the holiday set used for workday counting.
type CalendarConfig struct {
	Country string `yaml:"country" env:"CALENDAR_COUNTRY"` // NONE, CN, US, GB, DE, ...
}

type LogConfig struct {
	Level         string `yaml:"level" env:"LOG_LEVEL"`
	Format        string `yaml:"format" env:"LOG_FORMAT"`
	RetentionDays int    `yaml:"retention_days" env:"LOG_RETENTION_DAYS"`
}

// Load reads configuration in three layers: defaults, then the YAML file at
// configPath (if present), then environment variables. A .env file in the
// working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	_ = godotenv.Load()

	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.applyRedisURL(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        "3001",
			Mode:        "debug",
			FrontendURL: "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "nyx.db",
		},
		Auth: AuthConfig{
			Mode:          AuthModeJWKS,
			ExpireHour:    24 * 7,
			AdminPassword: "admin123",
		},
		LDAP: LDAPConfig{
			Port:       389,
			UserFilter: "(mail=%s)",
		},
		AI: AIConfig{
			Provider:     "gemini",
			FastModel:    "gemini-2.5-flash",
			ProModel:     "gemini-2.5-pro",
			MaxTokens:    8192,
			Timeout:      60 * time.Second,
			CostPerToken: 0.000001,
		},
		RateLimit: RateLimitConfig{
			AIMax:     10,
			AIWindow:  time.Hour,
			APIMax:    100,
			APIWindow: 15 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "nyx",
		},
		Calendar: CalendarConfig{
			Country: "NONE",
		},
		Log: LogConfig{
			Level:         "info",
			Format:        "json",
			RetentionDays: 30,
		},
	}
}

// applyRedisURL expands REDIS_URL (redis://:password@host:port/db) into the
// discrete fields and turns Redis on.
func (c *Config) applyRedisURL() error {
	if c.Redis.URL == "" {
		return nil
	}
	opts, err := redis.ParseURL(c.Redis.URL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	c.Redis.Enabled = true
	c.Redis.Addr = opts.Addr
	c.Redis.Password = opts.Password
	c.Redis.DB = opts.DB
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeJWKS:
		// An empty jwks_url is allowed; every bearer token is then rejected.
	case AuthModeSecret:
		if c.Auth.Secret == "" {
			return errors.New("auth: secret mode needs secret")
		}
	default:
		return fmt.Errorf("auth: unknown mode %q", c.Auth.Mode)
	}

	switch strings.ToLower(c.AI.Provider) {
	case "gemini", "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("ai: unknown provider %q", c.AI.Provider)
	}
	if c.AI.Timeout <= 0 {
		return errors.New("ai: timeout must be positive")
	}
	if c.AI.CostPerToken < 0 {
		return errors.New("ai: cost_per_token must not be negative")
	}
	if c.RateLimit.AIMax <= 0 || c.RateLimit.AIWindow <= 0 {
		return errors.New("rate_limit: ai_max and ai_window must be positive")
	}
	return nil
}

// LocalAccounts reports whether the server issues its own tokens.
func (c *Config) LocalAccounts() bool {
	return c.Auth.Secret != ""
}
