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

// Credential storage backends.
const (
	CredentialBackendFS = "fs"
	CredentialBackendS3 = "s3"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Credential CredentialConfig
	Broker     BrokerConfig
	HTTP       HTTPConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN selects the
// in-memory repositories.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr                 string
	Password             string
	DB                   int
	EventsCacheTTLSecond int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Service string
}

// AuthConfig defines session parameters.
type AuthConfig struct {
	JWTSecret       string
	SessionTTLHours int
	BcryptCost      int
	CookieName      string
	CookieSecure    bool
}

// CredentialConfig selects where QR badges are written.
type CredentialConfig struct {
	Backend    string
	Dir        string
	QRSize     int
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string
	S3KeyID    string
	S3Secret   string
}

// BrokerConfig holds AMQP forwarding values. Empty URL disables forwarding.
type BrokerConfig struct {
	AMQPURL  string
	Exchange string
}

// HTTPConfig holds edge concerns: CORS and auth endpoint rate limits.
type HTTPConfig struct {
	CORSAllowOrigins    string
	RateLimitRequests   int
	RateLimitWindowSecs int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "event-gate"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:                 os.Getenv("REDIS_ADDR"),
			Password:             os.Getenv("REDIS_PASSWORD"),
			DB:                   redisDB,
			EventsCacheTTLSecond: getEnvAsInt("EVENTS_CACHE_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Service: getEnv("APP_NAME", "event-gate"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTTLHours: getEnvAsInt("AUTH_SESSION_TTL_HOURS", 24),
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 12),
			CookieName:      getEnv("AUTH_COOKIE_NAME", "jwt"),
			CookieSecure:    getEnvAsBool("AUTH_COOKIE_SECURE", false),
		},
		Credential: CredentialConfig{
			Backend:    strings.ToLower(getEnv("CREDENTIAL_BACKEND", CredentialBackendFS)),
			Dir:        getEnv("CREDENTIAL_DIR", "public/qrcodes"),
			QRSize:     getEnvAsInt("CREDENTIAL_QR_SIZE", 256),
			S3Bucket:   os.Getenv("CREDENTIAL_S3_BUCKET"),
			S3Region:   getEnv("CREDENTIAL_S3_REGION", "us-east-1"),
			S3Endpoint: os.Getenv("CREDENTIAL_S3_ENDPOINT"),
			S3Prefix:   getEnv("CREDENTIAL_S3_PREFIX", "qrcodes/"),
			S3KeyID:    os.Getenv("CREDENTIAL_S3_ACCESS_KEY_ID"),
			S3Secret:   os.Getenv("CREDENTIAL_S3_SECRET_ACCESS_KEY"),
		},
		Broker: BrokerConfig{
			AMQPURL:  os.Getenv("BROKER_AMQP_URL"),
			Exchange: getEnv("BROKER_EXCHANGE", "gate"),
		},
		HTTP: HTTPConfig{
			CORSAllowOrigins:    getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
			RateLimitRequests:   getEnvAsInt("RATE_LIMIT_REQUESTS", 10),
			RateLimitWindowSecs: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations that can't run.
func (c *Config) Validate() error {
	if !c.App.IsDevelopment() && c.Auth.JWTSecret == "dev-secret" {
		return errors.New("AUTH_JWT_SECRET must be set outside development")
	}
	switch c.Credential.Backend {
	case CredentialBackendFS:
	case CredentialBackendS3:
		if c.Credential.S3Bucket == "" {
			return errors.New("CREDENTIAL_S3_BUCKET is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown CREDENTIAL_BACKEND %q", c.Credential.Backend)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsDevelopment reports whether the service runs in the development env.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development" || a.Env == "test"
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns the session lifetime.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// EventsCacheTTL returns the event catalogue cache lifetime.
func (r RedisConfig) EventsCacheTTL() time.Duration {
	return time.Duration(r.EventsCacheTTLSecond) * time.Second
}

// RateLimitWindow returns the rate limiting window.
func (h HTTPConfig) RateLimitWindow() time.Duration {
	if h.RateLimitWindowSecs <= 0 {
		return time.Minute
	}
	return time.Duration(h.RateLimitWindowSecs) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
