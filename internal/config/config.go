package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"xuper/internal/mail"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CodesPrimary = "primary"
	CodesRedis   = "redis"
)

type Config struct {
	Environment string
	LogLevel    string
	LogFormat   string

	// HTTP
	Addr               string
	CORSOrigins        []string
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration

	// Storage
	StoreDriver       string
	VerificationStore string
	MongoURI          string
	MongoDatabase     string
	DatabaseURL       string
	RedisURL          string
	JanitorInterval   time.Duration

	// Tokens
	JWTSecret    string
	JWTIssuer    string
	TokenTTL     time.Duration
	AuthCookie   bool
	SecureCookie bool

	// Registration
	CodeTTL               time.Duration
	AdminRegistrationCode string

	Mail mail.Config

	FirebaseServiceAccount string

	Downloads Downloads
}

type Downloads struct {
	BaseURL           string
	Artifacts         string
	URLTTL            time.Duration
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

func (c Config) Production() bool { return c.Environment == "production" || c.Environment == "prod" }

// Load reads .env when present, then the process environment. Invalid or
// missing required settings are fatal.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env", "error", err)
	}
	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// FromEnv builds a Config from lookup, typically os.Getenv.
func FromEnv(lookup func(string) string) (Config, error) {
	e := env(lookup)
	environment := e.str("ENVIRONMENT", "dev")

	defaultProvider := mail.ProviderLog
	if environment == "production" || environment == "prod" {
		defaultProvider = mail.ProviderBrevo
	}
	codeTTL := e.dur("VERIFICATION_CODE_TTL", 15*time.Minute)

	addr := e.str("ADDR", "")
	if addr == "" {
		addr = ":" + e.str("PORT", "5000")
	}

	cfg := Config{
		Environment: environment,
		LogLevel:    e.str("LOG_LEVEL", "info"),
		LogFormat:   e.str("LOG_FORMAT", "json"),

		Addr:               addr,
		CORSOrigins:        splitList(e.str("CORS_ORIGINS", "")),
		RateLimitPerMinute: e.int("RATE_LIMIT_PER_MINUTE", 10),
		ShutdownTimeout:    e.dur("SHUTDOWN_TIMEOUT", 15*time.Second),

		StoreDriver:       strings.ToLower(e.str("STORE_DRIVER", DriverMongo)),
		VerificationStore: strings.ToLower(e.str("VERIFICATION_STORE", CodesPrimary)),
		MongoURI:          e.str("MONGO_URI", ""),
		MongoDatabase:     e.str("MONGO_DATABASE", "xuper"),
		DatabaseURL:       e.str("DATABASE_URL", ""),
		RedisURL:          e.str("REDIS_URL", ""),
		JanitorInterval:   e.dur("JANITOR_INTERVAL", time.Minute),

		JWTSecret:    e.str("JWT_SECRET", ""),
		JWTIssuer:    e.str("JWT_ISSUER", ""),
		TokenTTL:     e.dur("TOKEN_TTL", 30*24*time.Hour),
		AuthCookie:   e.bool("AUTH_COOKIE", true),
		SecureCookie: e.bool("COOKIE_SECURE", environment == "production" || environment == "prod"),

		CodeTTL:               codeTTL,
		AdminRegistrationCode: e.str("ADMIN_REGISTRATION_CODE", ""),

		Mail: mail.Config{
			Provider:      strings.ToLower(e.str("MAIL_PROVIDER", defaultProvider)),
			From:          e.str("EMAIL_FROM", ""),
			FromName:      e.str("EMAIL_FROM_NAME", "Xuper TV"),
			BrevoAPIKey:   e.str("BREVO_API_KEY", ""),
			BrevoEndpoint: e.str("BREVO_ENDPOINT", ""),
			SMTPHost:      e.str("SMTP_HOST", ""),
			SMTPPort:      e.int("SMTP_PORT", 587),
			SMTPUser:      e.str("SMTP_USER", ""),
			SMTPPass:      e.str("SMTP_PASS", ""),
			CodeTTL:       codeTTL,
		},

		FirebaseServiceAccount: e.str("FIREBASE_SERVICE_ACCOUNT", ""),

		Downloads: Downloads{
			BaseURL:           e.str("DOWNLOAD_BASE_URL", ""),
			Artifacts:         e.str("DOWNLOAD_ARTIFACTS", ""),
			URLTTL:            e.dur("DOWNLOAD_URL_TTL", 15*time.Minute),
			S3Bucket:          e.str("S3_BUCKET", ""),
			S3Region:          e.str("S3_REGION", "auto"),
			S3Endpoint:        e.str("S3_ENDPOINT", ""),
			S3AccessKeyID:     e.str("S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: e.str("S3_SECRET_ACCESS_KEY", ""),
		},
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for STORE_DRIVER=mongo"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for STORE_DRIVER=postgres"))
		}
	case DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	switch c.VerificationStore {
	case CodesPrimary:
	case CodesRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for VERIFICATION_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown VERIFICATION_STORE %q", c.VerificationStore))
	}
	if c.Production() && c.Mail.Provider == mail.ProviderLog {
		errs = append(errs, errors.New("MAIL_PROVIDER=log is not allowed in production"))
	}
	if c.TokenTTL <= 0 || c.CodeTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL and VERIFICATION_CODE_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// SQLDSN is the DSN for the gorm drivers; sqlite falls back to a local file.
func (c Config) SQLDSN() string {
	if c.StoreDriver == DriverSQLite && c.DatabaseURL == "" {
		return "file:xuper.db?cache=shared"
	}
	return c.DatabaseURL
}

type env func(string) string

func (e env) str(k, def string) string {
	if v := strings.TrimSpace(e(k)); v != "" {
		return v
	}
	return def
}

func (e env) bool(k string, def bool) bool {
	if v := e(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("invalid bool, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func (e env) int(k string, def int) int {
	if v := e(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid int, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func (e env) dur(k string, def time.Duration) time.Duration {
	if v := e(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", k, "value", v, "default", def)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
