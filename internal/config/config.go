package config

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultBackendURL = "http://localhost:5000/api"

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Backend  BackendConfig
	Session  SessionConfig
	Audit    AuditConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port                 string
	Env                  string
	LogLevel             string
	AllowedOrigins       []string
	TrustedProxies       []string
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	ShutdownTimeout      time.Duration
	RateLimitPerMinute   int
	LoginRateLimitPerMin int
	LoginDelayBaseMs     int
	LoginDelayRandomMs   int
}

type BackendConfig struct {
	BaseURL      string
	Timeout      time.Duration // 0 means no client-side timeout
	UsersPerPage int
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	CookieName      string
	CookieSecure    bool
	CookieSameSite  http.SameSite
	CookieDomain    string
}

type AuditConfig struct {
	DBEnabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "theekadar_admin"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 1)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:                 getEnv("PORT", "8080"),
			Env:                  env,
			LogLevel:             getEnv("LOG_LEVEL", "info"),
			AllowedOrigins:       parseAllowedOrigins(env),
			TrustedProxies:       parseList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:          getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:         getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:          getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:      getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimitPerMinute:   getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
			LoginRateLimitPerMin: getEnvAsInt("LOGIN_RATE_LIMIT_PER_MINUTE", 10),
			LoginDelayBaseMs:     getEnvAsInt("LOGIN_DELAY_BASE_MS", 200),
			LoginDelayRandomMs:   getEnvAsInt("LOGIN_DELAY_RANDOM_MS", 100),
		},
		Backend: BackendConfig{
			BaseURL:      strings.TrimRight(getEnv("BACKEND_API_URL", getEnv("NEXT_PUBLIC_API_URL", defaultBackendURL)), "/"),
			Timeout:      getEnvAsDuration("BACKEND_TIMEOUT", 0),
			UsersPerPage: getEnvAsInt("USERS_PAGE_SIZE", 10),
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", 8*time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 5*time.Minute),
			CookieName:      getEnv("COOKIE_NAME", "console_session"),
			CookieSecure:    getEnvAsBool("COOKIE_SECURE", env == "production"),
			CookieSameSite:  parseSameSite(getEnv("COOKIE_SAMESITE", "lax")),
			CookieDomain:    getEnv("COOKIE_DOMAIN", ""),
		},
		Audit: AuditConfig{
			DBEnabled: getEnvAsBool("AUDIT_DB_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BACKEND_API_URL must be an absolute http(s) URL (got %q)", c.Backend.BaseURL)
	}

	if c.Backend.UsersPerPage < 1 {
		return fmt.Errorf("USERS_PAGE_SIZE must be positive (got %d)", c.Backend.UsersPerPage)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.Session.CleanupInterval <= 0 {
		return fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive")
	}

	if c.Audit.DBEnabled && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when AUDIT_DB_ENABLED is set")
	}

	// SameSite=None is rejected by browsers without Secure
	if c.Session.CookieSameSite == http.SameSiteNoneMode && !c.Session.CookieSecure {
		return fmt.Errorf("COOKIE_SAMESITE=none requires COOKIE_SECURE=true")
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func parseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return parseList(getEnv("ALLOWED_ORIGINS", ""))
	}

	// Development: the Next.js dev server and common local ports
	return []string{
		"http://localhost:3000",
		"http://localhost:3001",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:3001",
		"http://127.0.0.1:5173",
	}
}
