package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/config"
)

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "users.db"), logger)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunSQLiteMigrations(ctx, db.DB, logger))
	require.NoError(t, RunSQLiteMigrations(ctx, db.DB, logger))

	var count int
	require.NoError(t, db.DB.QueryRowContext(ctx, "SELECT count(*) FROM users").Scan(&count))
	assert.Zero(t, count)
	assert.NoError(t, db.Ping(ctx))
	assert.Equal(t, 1, db.DB.Stats().MaxOpenConnections)
}

func TestNewSQLiteRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLite(context.Background(), "  ", zap.NewNop())
	require.Error(t, err)
}

func TestNilHandles(t *testing.T) {
	ctx := context.Background()
	var s *SQLite
	var p *Postgres
	var r *Redis

	assert.Error(t, s.Ping(ctx))
	assert.Error(t, p.Ping(ctx))
	assert.Error(t, r.Ping(ctx))
	assert.Nil(t, p.PoolHandle())
	assert.NoError(t, RunMigrations(ctx, nil, zap.NewNop()))
	assert.NoError(t, RunSQLiteMigrations(ctx, nil, zap.NewNop()))
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.Error(t, err)
}

func TestRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)

	r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	defer r.Close()

	assert.NoError(t, r.Ping(context.Background()))
}
