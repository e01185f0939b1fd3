package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Auth        AuthConfig
	GIS         GISConfig
	Mail        MailConfig
	Outbox      OutboxConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// AuthConfig carries the process-wide authentication secrets. Pepper is the
// single secret mixed into every password hash; it is loaded once here and
// passed explicitly to the hasher, never read from ambient state.
type AuthConfig struct {
	Pepper         string
	TicketSecret   string
	TicketIssuer   string
	SessionTTL     time.Duration
	PersistentTTL  time.Duration
	PrivilegedRole string
}

// GISConfig locates the downstream map server's token endpoint and the
// service account used to request role tokens.
type GISConfig struct {
	Host            string
	Instance        string
	SSL             bool
	Port            int
	ServicePassword string
	TokenMinutes    int
}

type MailConfig struct {
	SMTPHost      string
	SMTPPort      int
	FromAddresses []string
	BaseURL       string
	AdminURL      string
}

type OutboxConfig struct {
	Path           string
	SyncInterval   time.Duration
	MaxRetry       int
	RetentionHours int
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
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "gisgate"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "gisgate_db"),
			User:            getString("DB_USER", "gisgate_user"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			Pepper:         os.Getenv("AUTH_PEPPER"),
			TicketSecret:   os.Getenv("AUTH_TICKET_SECRET"),
			TicketIssuer:   getString("AUTH_TICKET_ISSUER", "gisgate"),
			SessionTTL:     getDuration("AUTH_SESSION_TTL", time.Hour),
			PersistentTTL:  getDuration("AUTH_PERSISTENT_TTL", 30*24*time.Hour),
			PrivilegedRole: getString("AUTH_PRIVILEGED_ROLE", "admin"),
		},
		GIS: GISConfig{
			Host:            getString("GIS_HOST", "localhost"),
			Instance:        getString("GIS_INSTANCE", "arcgis"),
			SSL:             getBool("GIS_SSL", false),
			Port:            getInt("GIS_PORT", 6080),
			ServicePassword: os.Getenv("GIS_SERVICE_PASSWORD"),
			TokenMinutes:    getInt("GIS_TOKEN_MINUTES", 60),
		},
		Mail: MailConfig{
			SMTPHost:      getString("SMTP_HOST", "localhost"),
			SMTPPort:      getInt("SMTP_PORT", 25),
			FromAddresses: getStrings("MAIL_FROM_ADDRESSES", []string{"no-reply@gisgate.local"}),
			BaseURL:       getString("MAIL_BASE_URL", "http://localhost:8080"),
			AdminURL:      getString("MAIL_ADMIN_URL", "http://localhost:8080/admin"),
		},
		Outbox: OutboxConfig{
			Path:           getString("OUTBOX_PATH", "./data/outbox.db"),
			SyncInterval:   getDuration("OUTBOX_SYNC_INTERVAL", 30*time.Second),
			MaxRetry:       getInt("OUTBOX_MAX_RETRY", 3),
			RetentionHours: getInt("OUTBOX_RETENTION_HOURS", 24),
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
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if cfg.Auth.Pepper == "" {
		return nil, errors.New("AUTH_PEPPER must be set")
	}
	if cfg.Auth.TicketSecret == "" {
		return nil, errors.New("AUTH_TICKET_SECRET must be set")
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

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getStrings(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
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

// TokenEndpoint builds the downstream generateToken URL from the GIS settings.
func (c *GISConfig) TokenEndpoint() string {
	scheme := "http"
	port := c.Port
	if c.SSL {
		scheme = "https"
		if port == 6080 {
			port = 6443
		}
	}
	return fmt.Sprintf("%s://%s:%d/%s/tokens/generateToken", scheme, c.Host, port, c.Instance)
}
