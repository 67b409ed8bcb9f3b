package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Placeholder connection parameters shipped in templates. A provider configured
// with either of them is treated as unconfigured.
const (
	PlaceholderURL = "https://placeholder.supabase.co"
	PlaceholderKey = "placeholder-key"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName      string
	Environment  string
	HTTP         HTTPConfig
	Provider     ProviderConfig
	SessionStore SessionStoreConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Context      ContextConfig
	Logger       LoggerConfig
	Migrations   MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ProviderConfig holds the hosted auth/data service connection parameters.
type ProviderConfig struct {
	URL           string
	AnonKey       string
	JWTSecret     string
	Timeout       time.Duration
	RefreshTick   time.Duration
	RefreshMargin time.Duration
	StorageKey    string
}

type SessionStoreConfig struct {
	Driver string
	Path   string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults. Missing provider parameters are not an error here;
// they surface through ProviderConfig.Configured.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "bizdesk"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "127.0.0.1"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Provider: ProviderConfig{
			URL:           strings.TrimRight(getString("SUPABASE_URL", PlaceholderURL), "/"),
			AnonKey:       getString("SUPABASE_ANON_KEY", PlaceholderKey),
			JWTSecret:     os.Getenv("SUPABASE_JWT_SECRET"),
			Timeout:       getDuration("PROVIDER_TIMEOUT", 10*time.Second),
			RefreshTick:   getDuration("AUTO_REFRESH_TICK", 30*time.Second),
			RefreshMargin: getDuration("AUTO_REFRESH_MARGIN", 90*time.Second),
			StorageKey:    os.Getenv("SESSION_STORAGE_KEY"),
		},
		SessionStore: SessionStoreConfig{
			Driver: strings.ToLower(getString("SESSION_STORE", "bolt")),
			Path:   getString("SESSION_STORE_PATH", "./data/session.db"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 2),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 10*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", false),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Provider.StorageKey == "" {
		cfg.Provider.StorageKey = defaultStorageKey(cfg.Provider.URL)
	}

	switch cfg.SessionStore.Driver {
	case "bolt", "redis":
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q (want bolt or redis)", cfg.SessionStore.Driver)
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Configured reports whether the provider parameters are real values.
func (p ProviderConfig) Configured() bool {
	if p.URL == "" || p.AnonKey == "" {
		return false
	}
	return p.URL != PlaceholderURL && p.AnonKey != PlaceholderKey
}

// HasDatabase reports whether page data can be served from Postgres.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// defaultStorageKey derives "sb-<project-ref>-auth-token" from the provider host.
func defaultStorageKey(rawURL string) string {
	ref := "local"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		ref = strings.SplitN(u.Hostname(), ".", 2)[0]
	}
	return fmt.Sprintf("sb-%s-auth-token", ref)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
