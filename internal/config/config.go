package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StrategySequential = "sequential"
	StrategyConcurrent = "concurrent"

	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

var (
	ErrInvalidStrategy   = errors.New("invalid fetch strategy (must be sequential or concurrent)")
	ErrInvalidBadgeStore = errors.New("invalid badge store (must be memory, file, postgres or redis)")
	ErrMissingBaseURL    = errors.New("upstream base url is required")
)

type Config struct {
	Env      string
	LogLevel string
	Host     string
	Port     string

	// AccessSecret signs the bearer tokens issued to API callers. When empty a
	// random secret is generated per process.
	AccessSecret string
	AccessTTL    time.Duration
	CORSOrigins  []string

	APIBaseURL    string
	HTTPTimeout   time.Duration
	FetchStrategy string
	RefreshEvery  time.Duration

	BadgeStore   string
	BadgeCache   bool
	BadgeCatalog string
	DataDir      string

	RateLimit int

	CredentialPassphrase string

	DB    DBConfig
	Redis RedisConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("config: failed to load %s: %w", f, err)
			}
		}
	}

	timeout, err := getDuration("KANSO_HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	refresh, err := getDuration("KANSO_REFRESH_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	accessTTL, err := getDuration("KANSO_ACCESS_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid REDIS_DB: %w", err)
	}
	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}
	badgeCache, err := strconv.ParseBool(getEnv("KANSO_BADGE_CACHE", "false"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid KANSO_BADGE_CACHE: %w", err)
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Host:     getEnv("HOST", "127.0.0.1"),
		Port:     getEnv("PORT", "8080"),

		AccessSecret: getEnv("KANSO_ACCESS_SECRET", ""),
		AccessTTL:    accessTTL,
		CORSOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		APIBaseURL:    strings.TrimRight(getEnv("KANSO_API_BASE_URL", "http://localhost:3000"), "/"),
		HTTPTimeout:   timeout,
		FetchStrategy: strings.ToLower(getEnv("KANSO_FETCH_STRATEGY", StrategySequential)),
		RefreshEvery:  refresh,

		BadgeStore:   strings.ToLower(getEnv("KANSO_BADGE_STORE", StoreMemory)),
		BadgeCache:   badgeCache,
		BadgeCatalog: getEnv("KANSO_BADGE_CATALOG", ""),
		DataDir:      getEnv("KANSO_DATA_DIR", defaultDataDir()),

		RateLimit: rateLimit,

		CredentialPassphrase: getEnv("KANSO_CREDENTIAL_PASSPHRASE", ""),

		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "kanso_user"),
			Password: getEnv("DB_PASSWORD", "secret"),
			Name:     getEnv("DB_NAME", "kanso_db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrMissingBaseURL
	}
	switch c.FetchStrategy {
	case StrategySequential, StrategyConcurrent:
	default:
		return ErrInvalidStrategy
	}
	switch c.BadgeStore {
	case StoreMemory, StoreFile, StorePostgres, StoreRedis:
	default:
		return ErrInvalidBadgeStore
	}
	return nil
}

// NeedsRedis reports whether the badge store or its cache lives in Redis.
func (c *Config) NeedsRedis() bool {
	return c.BadgeStore == StoreRedis || (c.BadgeStore == StorePostgres && c.BadgeCache)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return d, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".kanso")
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
