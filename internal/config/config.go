package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/rawhoneyguide/honeyscout/internal/cloudsql"
)

// ErrMissingRequired is wrapped by Load when a required variable is unset.
var ErrMissingRequired = errors.New("missing required configuration")

// Config represents runtime configuration derived from environment variables.
// It is loaded and validated once at startup and passed to each stage.
type Config struct {
	Discovery DiscoveryConfig
	Database  DatabaseConfig
	Mail      MailConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	RunLock   RunLockConfig
	Server    ServerConfig

	// Schedule is a cron expression. Empty means run once and exit.
	Schedule string
}

// DiscoveryConfig holds generation provider settings.
type DiscoveryConfig struct {
	Provider       string
	APIKey         string
	Model          string
	MaxTokens      int
	MaxSearches    int
	MaxEvents      int
	QueryInterval  time.Duration
	QueriesFile    string
	RequestTimeout time.Duration
}

// DatabaseConfig holds datastore connection settings.
type DatabaseConfig struct {
	Connection     cloudsql.Settings
	URL            string
	ConnectTimeout time.Duration
	Migrate        bool
}

// MailConfig holds SMTP relay settings. Sender and recipient are fixed in the
// report package.
type MailConfig struct {
	Host     string
	Port     int
	Password string
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// MetricsConfig holds optional Pushgateway settings.
type MetricsConfig struct {
	PushgatewayURL string
}

// RunLockConfig holds the optional single-run lock settings.
type RunLockConfig struct {
	RedisURL string
	TTL      time.Duration
}

// ServerConfig holds HTTP server runtime parameters for scheduled mode.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// environment mirrors the process environment one variable per field.
type environment struct {
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	Provider        string        `env:"DISCOVERY_PROVIDER" envDefault:"anthropic"`
	Model           string        `env:"DISCOVERY_MODEL"`
	MaxTokens       int           `env:"DISCOVERY_MAX_TOKENS" envDefault:"4096"`
	MaxSearches     int           `env:"DISCOVERY_MAX_SEARCHES" envDefault:"5"`
	MaxEvents       int           `env:"DISCOVERY_MAX_EVENTS" envDefault:"10"`
	QueryInterval   time.Duration `env:"DISCOVERY_QUERY_INTERVAL" envDefault:"2s"`
	QueriesFile     string        `env:"DISCOVERY_QUERIES_FILE"`
	RequestTimeout  time.Duration `env:"DISCOVERY_REQUEST_TIMEOUT" envDefault:"3m"`
	Schedule        string        `env:"DISCOVERY_SCHEDULE"`

	DatabaseURL            string        `env:"DATABASE_URL"`
	InstanceConnectionName string        `env:"INSTANCE_CONNECTION_NAME"`
	DBUser                 string        `env:"DB_USER"`
	DBPassword             string        `env:"DB_PASSWORD"`
	DBName                 string        `env:"DB_NAME"`
	DatabaseConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" envDefault:"10s"`
	DatabaseMigrate        bool          `env:"DATABASE_MIGRATE" envDefault:"false"`

	GmailAppPassword string `env:"GMAIL_APP_PASSWORD"`
	SMTPHost         string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort         int    `env:"SMTP_PORT" envDefault:"587"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	PushgatewayURL string        `env:"PUSHGATEWAY_URL"`
	RedisURL       string        `env:"REDIS_URL"`
	RunLockTTL     time.Duration `env:"RUNLOCK_TTL" envDefault:"30m"`

	// Cloud Run sets PORT; SERVER_PORT is the local override.
	Port                  string        `env:"PORT"`
	ServerPort            string        `env:"SERVER_PORT" envDefault:"8080"`
	ServerReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	ServerWriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads a .env file if present, then the environment, and validates the
// result. Every missing required variable is named in the returned error.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnvironment()
}

// FromEnvironment parses the current process environment without reading .env.
func FromEnvironment() (Config, error) {
	var e environment
	if err := env.Parse(&e); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return e.build()
}

func (e environment) build() (Config, error) {
	var missing []string

	provider := strings.ToLower(strings.TrimSpace(e.Provider))
	var apiKey string
	switch provider {
	case "anthropic":
		apiKey = e.AnthropicAPIKey
		if apiKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	case "openai":
		apiKey = e.OpenAIAPIKey
		if apiKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		return Config{}, fmt.Errorf("invalid DISCOVERY_PROVIDER: must be 'anthropic' or 'openai'")
	}

	conn := cloudsql.Settings{
		DatabaseURL:            e.DatabaseURL,
		InstanceConnectionName: e.InstanceConnectionName,
		User:                   e.DBUser,
		Password:               e.DBPassword,
		Name:                   e.DBName,
	}
	var dbURL string
	if conn.Configured() {
		u, err := cloudsql.BuildDatabaseURL(conn)
		if err != nil {
			return Config{}, fmt.Errorf("invalid database configuration: %w", err)
		}
		dbURL = u
	} else {
		missing = append(missing, "DATABASE_URL")
	}

	if e.GmailAppPassword == "" {
		missing = append(missing, "GMAIL_APP_PASSWORD")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	level, err := parseLogLevel(e.LogLevel)
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch e.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
	}

	positive := []struct {
		key   string
		value int
	}{
		{"DISCOVERY_MAX_TOKENS", e.MaxTokens},
		{"DISCOVERY_MAX_SEARCHES", e.MaxSearches},
		{"DISCOVERY_MAX_EVENTS", e.MaxEvents},
		{"SMTP_PORT", e.SMTPPort},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return Config{}, fmt.Errorf("invalid %s: must be a positive integer", p.key)
		}
	}

	durations := []struct {
		key   string
		value time.Duration
	}{
		{"DISCOVERY_QUERY_INTERVAL", e.QueryInterval},
		{"DISCOVERY_REQUEST_TIMEOUT", e.RequestTimeout},
		{"DATABASE_CONNECT_TIMEOUT", e.DatabaseConnectTimeout},
		{"RUNLOCK_TTL", e.RunLockTTL},
		{"SERVER_READ_TIMEOUT", e.ServerReadTimeout},
		{"SERVER_WRITE_TIMEOUT", e.ServerWriteTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", e.ServerShutdownTimeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			return Config{}, fmt.Errorf("invalid %s: must not be negative", d.key)
		}
	}

	port := e.Port
	if port == "" {
		port = e.ServerPort
	}

	return Config{
		Discovery: DiscoveryConfig{
			Provider:       provider,
			APIKey:         apiKey,
			Model:          e.Model,
			MaxTokens:      e.MaxTokens,
			MaxSearches:    e.MaxSearches,
			MaxEvents:      e.MaxEvents,
			QueryInterval:  e.QueryInterval,
			QueriesFile:    e.QueriesFile,
			RequestTimeout: e.RequestTimeout,
		},
		Database: DatabaseConfig{
			Connection:     conn,
			URL:            dbURL,
			ConnectTimeout: e.DatabaseConnectTimeout,
			Migrate:        e.DatabaseMigrate,
		},
		Mail: MailConfig{
			Host:     e.SMTPHost,
			Port:     e.SMTPPort,
			Password: e.GmailAppPassword,
		},
		Logging: LoggingConfig{
			Level:  level,
			Format: e.LogFormat,
		},
		Metrics: MetricsConfig{PushgatewayURL: e.PushgatewayURL},
		RunLock: RunLockConfig{RedisURL: e.RedisURL, TTL: e.RunLockTTL},
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     e.ServerReadTimeout,
			WriteTimeout:    e.ServerWriteTimeout,
			ShutdownTimeout: e.ServerShutdownTimeout,
		},
		Schedule: strings.TrimSpace(e.Schedule),
	}, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
