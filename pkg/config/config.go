package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Backend drivers understood by the store.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
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
	Backend  BackendConfig
	Store    StoreConfig
	Requests RequestsConfig
	Events   EventsConfig
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

// BackendConfig selects where the document is persisted.
type BackendConfig struct {
	Driver          string
	FilePath        string
	RedisKey        string
	RedisChannel    string
	PostgresChannel string
	SaveTimeout     time.Duration
}

// StoreConfig tunes the in-memory store.
type StoreConfig struct {
	SeedEnabled bool
	DefaultTerm string
	QueueSize   int
}

// RequestsConfig lists who is notified about new enrollment requests.
// An empty list means the lowest-id active coordinator.
type RequestsConfig struct {
	NotifyUserIDs []int
}

// EventsConfig tunes change-event fan-out to websocket clients.
type EventsConfig struct {
	Buffer       int
	WriteTimeout time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
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
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Backend = BackendConfig{
		Driver:          strings.ToLower(v.GetString("BACKEND_DRIVER")),
		FilePath:        v.GetString("BACKEND_FILE_PATH"),
		RedisKey:        v.GetString("BACKEND_REDIS_KEY"),
		RedisChannel:    v.GetString("BACKEND_REDIS_CHANNEL"),
		PostgresChannel: v.GetString("BACKEND_PG_CHANNEL"),
		SaveTimeout:     parseDuration(v.GetString("BACKEND_SAVE_TIMEOUT"), 5*time.Second),
	}

	cfg.Store = StoreConfig{
		SeedEnabled: v.GetBool("STORE_SEED_ENABLED"),
		DefaultTerm: v.GetString("STORE_DEFAULT_TERM"),
		QueueSize:   v.GetInt("STORE_QUEUE_SIZE"),
	}

	cfg.Requests = RequestsConfig{NotifyUserIDs: parseIDs(v.GetString("REQUEST_NOTIFY_USER_IDS"))}

	cfg.Events = EventsConfig{
		Buffer:       v.GetInt("EVENTS_BUFFER"),
		WriteTimeout: v.GetDuration("EVENTS_WRITE_TIMEOUT"),
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
	v.SetDefault("DB_NAME", "emphasis_lines")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "emphasis-lines-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BACKEND_DRIVER", BackendFile)
	v.SetDefault("BACKEND_FILE_PATH", "./data/document.json")
	v.SetDefault("BACKEND_REDIS_KEY", "emphasis:document")
	v.SetDefault("BACKEND_REDIS_CHANNEL", "emphasis:document:changes")
	v.SetDefault("BACKEND_PG_CHANNEL", "emphasis_documents")
	v.SetDefault("BACKEND_SAVE_TIMEOUT", "5s")

	v.SetDefault("STORE_SEED_ENABLED", true)
	v.SetDefault("STORE_DEFAULT_TERM", "2025-1")
	v.SetDefault("STORE_QUEUE_SIZE", 64)

	v.SetDefault("REQUEST_NOTIFY_USER_IDS", "")

	v.SetDefault("EVENTS_BUFFER", 32)
	v.SetDefault("EVENTS_WRITE_TIMEOUT", "5s")
}

func isMissingFile(err error) bool {
	return errors.Is(err, os.ErrNotExist)
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

// parseIDs reads a comma separated id list, skipping anything that is not a positive integer.
func parseIDs(raw string) []int {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return nil
	}
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
