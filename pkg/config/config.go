package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Lookup   LookupConfig
	Schedule ScheduleConfig
	Export   ExportConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LookupConfig tunes the scan/search pipeline.
type LookupConfig struct {
	// ScanCooldown is how long further scans from the same prefect are
	// ignored after a completed lookup.
	ScanCooldown time.Duration
	// NotFoundCooldown is the shorter window applied when the scanned
	// boleta matched no student.
	NotFoundCooldown time.Duration
	// SearchMinLength is the minimum normalized term length before a
	// directory query is issued; shorter terms yield an empty result set.
	SearchMinLength int
	// SearchMaxResults caps directory search results.
	SearchMaxResults int
	// SearchCacheTTL absorbs keystroke bursts by caching search results
	// for a short window.
	SearchCacheTTL time.Duration
	// HistoryLimit caps consultation history queries.
	HistoryLimit int
	// StrictAuth makes consultation writes fail closed when no prefect
	// session is present instead of silently skipping the write.
	StrictAuth bool
}

// ScheduleConfig selects slot-collision behaviour for the weekly grid.
type ScheduleConfig struct {
	// StrictSlots makes two sessions landing on the same (day, time range)
	// slot an error instead of last-write-wins.
	StrictSlots bool
}

// ExportConfig gates consultation history exports.
type ExportConfig struct {
	Enabled bool
	// ArchiveDir keeps best-effort disk copies of rendered exports when
	// non-empty.
	ArchiveDir string
	// ArchiveTTL is how long archived export files are retained.
	ArchiveTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Lookup = LookupConfig{
		ScanCooldown:     parseDuration(v.GetString("LOOKUP_SCAN_COOLDOWN"), 2*time.Second),
		NotFoundCooldown: parseDuration(v.GetString("LOOKUP_NOT_FOUND_COOLDOWN"), time.Second),
		SearchMinLength:  v.GetInt("LOOKUP_SEARCH_MIN_LENGTH"),
		SearchMaxResults: v.GetInt("LOOKUP_SEARCH_MAX_RESULTS"),
		SearchCacheTTL:   parseDuration(v.GetString("LOOKUP_SEARCH_CACHE_TTL"), 300*time.Millisecond),
		HistoryLimit:     v.GetInt("LOOKUP_HISTORY_LIMIT"),
		StrictAuth:       v.GetBool("LOOKUP_STRICT_AUTH"),
	}

	cfg.Schedule = ScheduleConfig{
		StrictSlots: v.GetBool("SCHEDULE_STRICT_SLOTS"),
	}

	cfg.Export = ExportConfig{
		Enabled:    v.GetBool("ENABLE_EXPORTS"),
		ArchiveDir: v.GetString("EXPORT_ARCHIVE_DIR"),
		ArchiveTTL: parseDuration(v.GetString("EXPORT_ARCHIVE_TTL"), 30*24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gate_lookup")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "prefect-gate-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LOOKUP_SCAN_COOLDOWN", "2s")
	v.SetDefault("LOOKUP_NOT_FOUND_COOLDOWN", "1s")
	v.SetDefault("LOOKUP_SEARCH_MIN_LENGTH", 2)
	v.SetDefault("LOOKUP_SEARCH_MAX_RESULTS", 20)
	v.SetDefault("LOOKUP_SEARCH_CACHE_TTL", "300ms")
	v.SetDefault("LOOKUP_HISTORY_LIMIT", 20)
	v.SetDefault("LOOKUP_STRICT_AUTH", false)

	v.SetDefault("SCHEDULE_STRICT_SLOTS", false)
	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORT_ARCHIVE_DIR", "")
	v.SetDefault("EXPORT_ARCHIVE_TTL", "720h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
