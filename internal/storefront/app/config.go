package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/sqlite"
)

type Config struct {
	Issuer string // Optional: issuer claim for tokens (default: storefront)

	Algorithm      string        // Optional: JWT signing algorithm (ES256, EdDSA) (default: EdDSA)
	NumKeys        int           // Optional: ephemeral signing keys to generate (default: 3, min: 1, max: 10)
	SigningKeyFile string        // Optional: PEM signing key, created on first start; tokens then survive restarts
	AccessTTL      time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Optional: refresh token lifetime (default: 7d)

	DatabaseFile string // Optional: path to SQLite database file (default: ./storefront.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	AllowPasscodeReplay bool // Optional: keep passcodes usable until expiry (default: false)
	UnifyLoginErrors    bool // Optional: answer unknown accounts at login with 401 (default: false)

	NotifyMode      string        // Optional: passcode delivery (log, smtp) (default: log)
	SMTPHost        string
	SMTPPort        int           // default: 587
	SMTPUsername    string        // Optional: no AUTH when empty
	SMTPPassword    string
	SMTPFrom        string
	SMTPEncryption  string        // NONE, STARTTLS, SSL/TLS (default: STARTTLS)
	SMTPSendTimeout time.Duration // Upper bound on one delivery (default: 30s)

	RedisURL string        // Optional: redis:// URL enabling the distributed account lock
	LockTTL  time.Duration // Optional: distributed lock expiry, must exceed two store busy timeouts (default: 30s)

	CatalogSeedFile string // Optional: JSON catalog loaded at startup

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	PasscodeRetention    time.Duration // How long expired passcodes are kept (default: 24h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         getEnvOrDefault("STOREFRONT_ISSUER", "storefront"),
		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", "EdDSA"),
		NumKeys:        getEnvIntOrDefault("AUTH_NUM_KEYS", 0), // 0 lets the KeyManager pick
		SigningKeyFile: os.Getenv("AUTH_SIGNING_KEY_FILE"),
		AccessTTL:      getEnvDurationOrDefault("AUTH_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:     getEnvDurationOrDefault("AUTH_REFRESH_TTL", 7*24*time.Hour),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "storefront.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		AllowPasscodeReplay: getEnvBoolOrDefault("OTP_ALLOW_REPLAY", false),
		UnifyLoginErrors:    getEnvBoolOrDefault("LOGIN_UNIFY_ERRORS", false),

		NotifyMode:      strings.ToLower(getEnvOrDefault("NOTIFY_MODE", "log")),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
		SMTPEncryption:  getEnvOrDefault("SMTP_ENCRYPTION", "STARTTLS"),
		SMTPSendTimeout: getEnvDurationOrDefault("SMTP_SEND_TIMEOUT", 30*time.Second),

		RedisURL: os.Getenv("REDIS_URL"),
		LockTTL:  getEnvDurationOrDefault("LOCK_TTL", 30*time.Second),

		CatalogSeedFile: os.Getenv("CATALOG_SEED_FILE"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		PasscodeRetention:    getEnvDurationOrDefault("PASSCODE_RETENTION", 24*time.Hour),
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUsername
	}

	return cfg
}

// minLockTTL is the longest a locked section can wait on the database: it
// makes at most two writes, each of which may wait out the busy timeout.
const minLockTTL = 2 * sqlite.BusyTimeout

// Validate rejects settings that would break the service at runtime.
func (c Config) Validate() error {
	if c.RedisURL != "" && c.LockTTL <= minLockTTL {
		return fmt.Errorf("LOCK_TTL %s must exceed %s so the lock outlives a waiting database write", c.LockTTL, minLockTTL)
	}
	if c.SMTPSendTimeout <= 0 {
		return fmt.Errorf("SMTP_SEND_TIMEOUT must be positive, got %s", c.SMTPSendTimeout)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
