package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Log      LogConfig
	Locales  LocalesConfig
	Store    StoreConfig
	Redis    RedisConfig
	Database DatabaseConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	CORSOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type LocalesConfig struct {
	Dir        string
	Languages  []string
	ReloadSpec string
}

const (
	StoreBackendFile     = "file"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
)

type StoreConfig struct {
	Backend              string
	Name                 string
	DataDir              string
	RejectDuplicateEmail bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	MigrationsDir string
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidConfig      = errors.New("invalid configuration")
)

// Load reads .env (if present), an optional config.yaml and the process
// environment. Environment variables win over the config file.
func Load() (Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		s := strings.TrimSpace(v.GetString(key))
		if s == "" {
			missing = append(missing, key)
		}
		return s
	}
	opt := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg.App = AppConfig{
		AppName:     opt("APP_NAME"),
		Environment: opt("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		CORSOrigins: splitList(opt("CORS_ORIGINS")),
	}

	cfg.Log = LogConfig{
		Level:  opt("LOG_LEVEL"),
		Format: opt("LOG_FORMAT"),
	}

	cfg.Locales = LocalesConfig{
		Dir:        opt("LOCALES_DIR"),
		Languages:  splitList(opt("LOCALES_LANGUAGES")),
		ReloadSpec: opt("LOCALES_RELOAD_SPEC"),
	}

	cfg.Store = StoreConfig{
		Backend:              strings.ToLower(opt("STORE_BACKEND")),
		Name:                 opt("STORE_NAME"),
		DataDir:              opt("STORE_DATA_DIR"),
		RejectDuplicateEmail: v.GetBool("STORE_REJECT_DUPLICATE_EMAIL"),
	}

	cfg.Redis = RedisConfig{
		Addr:     opt("REDIS_ADDR"),
		Password: opt("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),

		ConnectTimeout:        v.GetDuration("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          v.GetInt32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          v.GetInt32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   v.GetDuration("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   v.GetDuration("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: v.GetDuration("DB_POOL_HEALTH_CHECK_PERIOD"),

		MigrationsDir: opt("MIGRATIONS_DIR"),
	}

	switch cfg.Store.Backend {
	case StoreBackendRedis:
		req("REDIS_ADDR")
	case StoreBackendPostgres:
		req("DB_HOST")
		req("DB_NAME")
		req("DB_USER")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "freelance-hub")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOCALES_DIR", "public/locales")
	v.SetDefault("LOCALES_LANGUAGES", "en,nl")
	v.SetDefault("LOCALES_RELOAD_SPEC", "@every 5m")
	v.SetDefault("STORE_BACKEND", StoreBackendFile)
	v.SetDefault("STORE_NAME", "freelancer-store")
	v.SetDefault("STORE_DATA_DIR", "data")
	v.SetDefault("STORE_REJECT_DUPLICATE_EMAIL", false)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", 5*time.Second)
	v.SetDefault("MIGRATIONS_DIR", "")
}

func validate(cfg Config) error {
	switch cfg.Store.Backend {
	case StoreBackendFile, StoreBackendRedis, StoreBackendPostgres:
	default:
		return fmt.Errorf("%w: unknown STORE_BACKEND %q", errInvalidConfig, cfg.Store.Backend)
	}
	if cfg.Store.Name == "" {
		return fmt.Errorf("%w: STORE_NAME must not be empty", errInvalidConfig)
	}
	if len(cfg.Locales.Languages) == 0 {
		return fmt.Errorf("%w: LOCALES_LANGUAGES must not be empty", errInvalidConfig)
	}
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadEnvFile() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}
