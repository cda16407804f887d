package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret"

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Password schemes.
const (
	SchemePlaintext = "plaintext"
	SchemeBcrypt    = "bcrypt"
)

// Config aggregates runtime configuration for both binaries.
type Config struct {
	App       AppConfig
	Store     StoreConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Worker    WorkerConfig
	Generator GeneratorConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// StoreConfig selects and seeds the credential store.
type StoreConfig struct {
	Driver       string
	SQLitePath   string
	SeedUsername string
	SeedPassword string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret      string
	PasswordScheme string
	BcryptCost     int
	// DevSecret is set when JWTSecret is the built-in development key.
	DevSecret bool
}

// WorkerConfig bounds the blocking-work pool used for store lookups.
type WorkerConfig struct {
	PoolSize  int
	QueueSize int
}

// GeneratorConfig controls the event-simulation process.
type GeneratorConfig struct {
	Port       string
	MinDelayMS int
	MaxDelayMS int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "auth-service"),
			Env:     getEnv("APP_ENV", "production"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8000"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
			SQLitePath:   getEnv("SQLITE_PATH", "users.db"),
			SeedUsername: getEnv("STORE_SEED_USERNAME", "user1"),
			SeedPassword: getEnv("STORE_SEED_PASSWORD", "pass1"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Queue:    getEnv("QUEUE_NAME", "demo.queue"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
			PasswordScheme: strings.ToLower(getEnv("AUTH_PASSWORD_SCHEME", SchemePlaintext)),
			BcryptCost:     getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Worker: WorkerConfig{
			PoolSize:  getEnvAsInt("WORKER_POOL_SIZE", 4),
			QueueSize: getEnvAsInt("WORKER_QUEUE_SIZE", 256),
		},
		Generator: GeneratorConfig{
			Port:       getEnv("DATAGEN_PORT", "9091"),
			MinDelayMS: getEnvAsInt("DATAGEN_MIN_DELAY_MS", 500),
			MaxDelayMS: getEnvAsInt("DATAGEN_MAX_DELAY_MS", 2000),
		},
	}

	// the development key is only used when APP_ENV=development is set explicitly
	if cfg.Auth.JWTSecret == "" && cfg.App.IsDevelopment() {
		cfg.Auth.JWTSecret = devJWTSecret
		cfg.Auth.DevSecret = true
	}

	return cfg, nil
}

// Validate rejects combinations the auth service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver))
	}
	switch c.Auth.PasswordScheme {
	case SchemePlaintext, SchemeBcrypt:
	default:
		errs = append(errs, fmt.Errorf("unsupported AUTH_PASSWORD_SCHEME %q", c.Auth.PasswordScheme))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required outside development"))
	}
	if c.Worker.PoolSize <= 0 {
		errs = append(errs, errors.New("WORKER_POOL_SIZE must be positive"))
	}
	if c.Worker.QueueSize < 0 {
		errs = append(errs, errors.New("WORKER_QUEUE_SIZE must not be negative"))
	}
	return errors.Join(errs...)
}

// ValidateGenerator rejects combinations the event generator cannot start with.
func (c *Config) ValidateGenerator() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("POSTGRES_DSN is required for the generator"))
	}
	if c.Redis.Queue == "" {
		errs = append(errs, errors.New("QUEUE_NAME is required for the generator"))
	}
	if c.Generator.MinDelayMS <= 0 || c.Generator.MaxDelayMS < c.Generator.MinDelayMS {
		errs = append(errs, errors.New("DATAGEN delay bounds are invalid"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the app runs in the development environment.
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, "development")
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// Addr returns the metrics bind address of the generator.
func (g GeneratorConfig) Addr(host string) string {
	return fmt.Sprintf("%s:%s", host, g.Port)
}

// DelayBounds returns the min and max pause between simulated actions.
func (g GeneratorConfig) DelayBounds() (time.Duration, time.Duration) {
	return time.Duration(g.MinDelayMS) * time.Millisecond, time.Duration(g.MaxDelayMS) * time.Millisecond
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
