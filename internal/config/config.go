package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CSRFHeaderName is the request header the double-submit check reads.
const CSRFHeaderName = "x-csrf-token"

// CSRFPath is the token issuance endpoint, exempt from the CSRF check.
const CSRFPath = "/csrf-token"

type Config struct {
	AppName            string
	Env                string
	Host               string
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	DatabaseURL        string
	DBMaxConns         int32
	DBMinConns         int32
	DBConnLifetime     time.Duration
	DBConnIdleTime     time.Duration
	AccessTokenSecret  string
	RefreshTokenSecret string
	AppSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CORSOrigins        []string
	RateLimitRPM       int
	AuthRateLimitRPM   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppName:            getEnv("APP_NAME", "go-api-template"),
		Env:                getEnv("APP_ENV", "development"),
		Host:               getEnv("HOST", "localhost"),
		ServerPort:         getEnv("SERVER_PORT", "3000"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:         int32(getInt("DB_MIN_CONNS", 2)),
		DBConnLifetime:     getDuration("DB_CONN_LIFETIME", 30*time.Minute),
		DBConnIdleTime:     getDuration("DB_CONN_IDLE_TIME", 5*time.Minute),
		AccessTokenSecret:  strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RefreshTokenSecret: strings.TrimSpace(os.Getenv("REFRESH_TOKEN_SECRET")),
		AppSecret:          strings.TrimSpace(os.Getenv("APP_SECRET")),
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:   getInt("AUTH_RATE_LIMIT_RPM", 100),
	}

	cfg.provisionSecrets()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// provisionSecrets fills any unset secret with a random value. Generated
// secrets do not survive a restart and are never shared between instances,
// so every token signed with one dies with the process. Fine in development,
// loudly warned about in production.
func (c *Config) provisionSecrets() {
	if c.AccessTokenSecret == "" {
		c.AccessTokenSecret = generateSecret()
		c.warnGenerated("JWT_SECRET")
	}
	if c.RefreshTokenSecret == "" {
		c.RefreshTokenSecret = generateSecret()
		c.warnGenerated("REFRESH_TOKEN_SECRET")
	}
	if c.AppSecret == "" {
		c.AppSecret = generateSecret()
		c.warnGenerated("APP_SECRET")
	}
}

func (c *Config) warnGenerated(name string) {
	if c.IsProduction() {
		slog.Warn("no secret provided in production environment, generated a random one", "name", name)
	}
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RefreshCookieName scopes the refresh-token cookie to the app name.
func (c *Config) RefreshCookieName() string {
	return c.AppName + "-rt"
}

// CSRFCookieName scopes the CSRF cookie to the app name.
func (c *Config) CSRFCookieName() string {
	return c.AppName + "-csrf"
}

func generateSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// there is nothing sensible to continue with.
		panic(fmt.Sprintf("config: cannot generate secret: %v", err))
	}

	return hex.EncodeToString(buf)
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
