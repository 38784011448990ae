package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix        = "PROPCARE_"
	defaultJWTSecret = "change-me-jwt-secret"
	defaultDSN       = "propcare.db"
)

type Config struct {
	App      AppConfig      `json:"app"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Redis    RedisConfig    `json:"redis"`
	MQTT     MQTTConfig     `json:"mqtt"`
	Notify   NotifyConfig   `json:"notify"`
	CORS     CORSConfig     `json:"cors"`
}

type AppConfig struct {
	Env       string `json:"env"`
	HTTPAddr  string `json:"httpAddr"`
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

type DatabaseConfig struct {
	URL          string `json:"url"`
	MaxOpenConns int    `json:"maxOpenConns"`
}

type AuthConfig struct {
	JWTSecret string        `json:"jwtSecret"`
	TokenTTL  time.Duration `json:"tokenTTL"`
}

// RedisConfig is optional; an empty Addr disables the policy cache and the stream sink.
type RedisConfig struct {
	Addr               string        `json:"addr"`
	Password           string        `json:"password"`
	DB                 int           `json:"db"`
	PolicyCacheTTL     time.Duration `json:"policyCacheTTL"`
	NotificationStream string        `json:"notificationStream"`
}

// MQTTConfig is optional; an empty Broker disables the MQTT sink.
type MQTTConfig struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"clientId"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topicPrefix"`
	QoS         byte   `json:"qos"`
}

type NotifyConfig struct {
	Timeout time.Duration `json:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `json:"allowedOrigins"`
}

func Default() Config {
	return Config{
		App: AppConfig{
			Env:       "dev",
			HTTPAddr:  ":8080",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Database: DatabaseConfig{URL: defaultDSN, MaxOpenConns: 10},
		Auth:     AuthConfig{JWTSecret: defaultJWTSecret, TokenTTL: 24 * time.Hour},
		Redis: RedisConfig{
			PolicyCacheTTL:     5 * time.Minute,
			NotificationStream: "contractor-notifications",
		},
		MQTT: MQTTConfig{
			ClientID:    "propcare-api",
			TopicPrefix: "propcare/contractors",
			QoS:         1,
		},
		Notify: NotifyConfig{Timeout: 5 * time.Second},
		CORS: CORSConfig{AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}},
	}
}

// Load layers, lowest first: compiled defaults, an optional YAML/JSON file,
// PROPCARE_* environment variables (nested with "__"), and the bare
// DATABASE_URL, JWT_SECRET, APP_ENV and CORS_ALLOWED_ORIGINS variables.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyLegacyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
}

// envKey maps PROPCARE_REDIS__POLICYCACHETTL onto redis.policycachettl.
// Keys are matched case-insensitively when decoding.
func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func applyLegacyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.Database.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_ENV")); v != "" {
		cfg.App.Env = strings.ToLower(v)
	}
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("database.url must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.tokenTTL must be > 0")
	}
	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("notify.timeout must be > 0")
	}
	if c.Redis.Addr != "" && c.Redis.PolicyCacheTTL <= 0 {
		return fmt.Errorf("redis.policyCacheTTL must be > 0 when redis is enabled")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	if c.IsProdLike() {
		if isEmptyOrDefault(c.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if c.Database.URL == defaultDSN {
			return fmt.Errorf("in prod/release DATABASE_URL must be set")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.App.Env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == def
}
