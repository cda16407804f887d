package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "users.db", cfg.Store.SQLitePath)
	assert.Equal(t, "user1", cfg.Store.SeedUsername)
	assert.Equal(t, "pass1", cfg.Store.SeedPassword)
	assert.Equal(t, SchemePlaintext, cfg.Auth.PasswordScheme)
	assert.Equal(t, devJWTSecret, cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.DevSecret)
	assert.Equal(t, "0.0.0.0:8000", cfg.App.Addr())
	assert.Equal(t, "demo.queue", cfg.Redis.Queue)
	assert.Equal(t, 4, cfg.Worker.PoolSize)

	lo, hi := cfg.Generator.DelayBounds()
	assert.Equal(t, 500*time.Millisecond, lo)
	assert.Equal(t, 2*time.Second, hi)
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
	}{
		{name: "production", appEnv: "production"},
		{name: "unset environment", appEnv: ""},
		{name: "staging", appEnv: "staging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.appEnv)
			t.Setenv("AUTH_JWT_SECRET", "")

			cfg, err := Load()
			require.NoError(t, err)
			assert.Empty(t, cfg.Auth.JWTSecret)
			assert.False(t, cfg.Auth.DevSecret)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
		})
	}
}

func TestLoadDefaultsToProduction(t *testing.T) {
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Env)
	assert.False(t, cfg.App.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost/db")
	t.Setenv("AUTH_PASSWORD_SCHEME", "bcrypt")
	t.Setenv("WORKER_POOL_SIZE", "1")
	t.Setenv("WORKER_QUEUE_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, SchemeBcrypt, cfg.Auth.PasswordScheme)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Auth.DevSecret)
	assert.Equal(t, 1, cfg.Worker.PoolSize)
	assert.Equal(t, 256, cfg.Worker.QueueSize)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Store:     StoreConfig{Driver: DriverSQLite, SQLitePath: "users.db"},
			Auth:      AuthConfig{JWTSecret: "k", PasswordScheme: SchemePlaintext},
			Worker:    WorkerConfig{PoolSize: 1, QueueSize: 1},
			Generator: GeneratorConfig{MinDelayMS: 1, MaxDelayMS: 2},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mysql" }, wantErr: "STORE_DRIVER"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Driver = DriverPostgres }, wantErr: "POSTGRES_DSN"},
		{name: "unknown scheme", mutate: func(c *Config) { c.Auth.PasswordScheme = "md5" }, wantErr: "AUTH_PASSWORD_SCHEME"},
		{name: "zero workers", mutate: func(c *Config) { c.Worker.PoolSize = 0 }, wantErr: "WORKER_POOL_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateGenerator(t *testing.T) {
	cfg := Config{
		Postgres:  PostgresConfig{DSN: "postgres://localhost/metrics_db"},
		Redis:     RedisConfig{Queue: "demo.queue"},
		Generator: GeneratorConfig{MinDelayMS: 500, MaxDelayMS: 2000},
	}
	require.NoError(t, cfg.ValidateGenerator())

	cfg.Generator.MaxDelayMS = 100
	err := cfg.ValidateGenerator()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATAGEN")

	cfg.Generator.MaxDelayMS = 2000
	cfg.Postgres.DSN = ""
	err = cfg.ValidateGenerator()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}
