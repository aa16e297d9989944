package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Telegram     TelegramConfig
	Mail         MailConfig
	Notification NotificationConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	ShortTokenTTLMinutes  int
	ExtendedTokenTTLHours int
	BcryptCost            int
	DefaultRoleID         int64
}

// TelegramConfig points the Bot API client at its endpoint.
type TelegramConfig struct {
	APIBaseURL     string
	TimeoutSeconds int
}

// MailConfig holds SMTP settings for the gmail channel.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// NotificationConfig tunes the alert fan-out.
type NotificationConfig struct {
	BotCacheTTLSeconds  int
	VerificationSubject string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	defaultRole, err := strconv.ParseInt(getEnv("AUTH_DEFAULT_ROLE_ID", "2"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_DEFAULT_ROLE_ID: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			ShortTokenTTLMinutes:  getEnvAsInt("AUTH_SHORT_TOKEN_TTL_MINUTES", 60),
			ExtendedTokenTTLHours: getEnvAsInt("AUTH_EXTENDED_TOKEN_TTL_HOURS", 7*24),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			DefaultRoleID:         defaultRole,
		},
		Telegram: TelegramConfig{
			APIBaseURL:     getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
			TimeoutSeconds: getEnvAsInt("TELEGRAM_TIMEOUT_SECONDS", 10),
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("MAIL_SMTP_PORT", 587),
			Username: os.Getenv("MAIL_SMTP_USERNAME"),
			Password: os.Getenv("MAIL_SMTP_PASSWORD"),
			From:     getEnv("MAIL_FROM", "noreply@example.com"),
			FromName: getEnv("MAIL_FROM_NAME", "Help Desk"),
		},
		Notification: NotificationConfig{
			BotCacheTTLSeconds:  getEnvAsInt("NOTIFY_BOT_CACHE_TTL_SECONDS", 300),
			VerificationSubject: getEnv("NOTIFY_VERIFICATION_SUBJECT", "Your verification code"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ShortTTL is the lifetime of a token issued without "remember me".
func (a AuthConfig) ShortTTL() time.Duration {
	if a.ShortTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.ShortTokenTTLMinutes) * time.Minute
}

// ExtendedTTL is the lifetime of a "remember me" token.
func (a AuthConfig) ExtendedTTL() time.Duration {
	if a.ExtendedTokenTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.ExtendedTokenTTLHours) * time.Hour
}

// Timeout returns the per-call Bot API timeout.
func (t TelegramConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// BotCacheTTL returns how long resolved bot tokens stay cached.
func (n NotificationConfig) BotCacheTTL() time.Duration {
	return time.Duration(n.BotCacheTTLSeconds) * time.Second
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
