// Package config reads the service configuration from SHELF_* environment
// variables.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request budget, covers page and thumbnail fetches

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store         string // "redis" | "memory"
	CollectionKey string // store key holding the collection
	TaxonomyFile  string // optional YAML taxonomy, empty = built-in topics
	SyncInterval  time.Duration

	HomepageFile     string        // optional Homepage services.yaml or bookmarks.yaml to import
	HomepageInterval time.Duration // interval between Homepage imports

	ExtractRetryDelay time.Duration // wait before the single page load retry
	PageTimeout       time.Duration
	PageMaxBytes      int64
	ThumbnailTimeout  time.Duration
	ThumbnailMaxBytes int64

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedOrigins []string // CORS origins, ex: "chrome-extension://abcdef"
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst      int      // save requests allowed in a burst, per client IP
	RatePerMin     int      // save requests refilled per minute, per client IP
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELF_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SHELF_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SHELF_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("SHELF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHELF_PRETTY_LOG", true),

		// Collection
		Store:         strings.ToLower(getenv("SHELF_STORE", StoreRedis)),
		CollectionKey: getenv("SHELF_COLLECTION_KEY", "shelf:bookmarks"),
		TaxonomyFile:  getenv("SHELF_TAXONOMY_FILE", ""),
		SyncInterval:  mustDuration("SHELF_SYNC_INTERVAL", 5*time.Minute),

		HomepageFile:     getenv("SHELF_HOMEPAGE_FILE", ""),
		HomepageInterval: mustDuration("SHELF_HOMEPAGE_INTERVAL", time.Hour),

		// Extraction
		ExtractRetryDelay: mustDuration("SHELF_EXTRACT_RETRY_DELAY", 500*time.Millisecond),
		PageTimeout:       mustDuration("SHELF_PAGE_TIMEOUT", 10*time.Second),
		PageMaxBytes:      int64(getenvInt("SHELF_PAGE_MAX_BYTES", 5<<20)),
		ThumbnailTimeout:  mustDuration("SHELF_THUMBNAIL_TIMEOUT", 5*time.Second),
		ThumbnailMaxBytes: int64(getenvInt("SHELF_THUMBNAIL_MAX_BYTES", 2<<20)),

		// Redis settings
		RedisUser:             getenv("SHELF_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SHELF_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SHELF_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SHELF_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedOrigins: splitAndTrim(getenv("SHELF_ALLOWED_ORIGINS", "")),
		AllowedHosts:   splitAndTrim(getenv("SHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("SHELF_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("SHELF_TRUST_PROXY", false),
		RateBurst:      getenvInt("SHELF_RATE_BURST", 20),
		RatePerMin:     getenvInt("SHELF_RATE_PER_MIN", 60),
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreRedis:
		cfg.RedisAddr = requireEnv("SHELF_REDIS_ADDR")
		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: SHELF_REDIS_PASSWORD is required when SHELF_REDIS_PASSWORD_REQUIRED=true")
		}
	default:
		panic(fmt.Sprintf("❌ FATAL: SHELF_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, cfg.Store))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
