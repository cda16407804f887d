package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/auth-service/internal/domain"
)

// CredentialRepository defines persistence access for login credentials.
type CredentialRepository interface {
	// FindSecret returns the stored secret for username; found is false when no row matches.
	FindSecret(ctx context.Context, username string) (secret string, found bool, err error)
	// EnsureCredential inserts the record unless the username already exists.
	EnsureCredential(ctx context.Context, record domain.CredentialRecord) (created bool, err error)
}

// PgxQuerier is the subset of pgxpool.Pool used by the Postgres repositories.
type PgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type sqliteCredentialRepository struct {
	db *sql.DB
}

// NewSQLiteCredentialRepository returns a SQLite-backed implementation.
func NewSQLiteCredentialRepository(db *sql.DB) CredentialRepository {
	return &sqliteCredentialRepository{db: db}
}

func (r *sqliteCredentialRepository) FindSecret(ctx context.Context, username string) (string, bool, error) {
	const query = `SELECT password FROM users WHERE username = ?1`

	var secret string
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&secret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return secret, true, nil
}

func (r *sqliteCredentialRepository) EnsureCredential(ctx context.Context, record domain.CredentialRecord) (bool, error) {
	const query = `
        INSERT INTO users (username, password) VALUES (?1, ?2)
        ON CONFLICT(username) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, record.Username, record.Secret)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type postgresCredentialRepository struct {
	pool PgxQuerier
}

// NewPostgresCredentialRepository returns a Postgres-backed implementation.
func NewPostgresCredentialRepository(pool PgxQuerier) CredentialRepository {
	return &postgresCredentialRepository{pool: pool}
}

func (r *postgresCredentialRepository) FindSecret(ctx context.Context, username string) (string, bool, error) {
	const query = `SELECT password FROM users WHERE username = $1`

	var secret string
	if err := r.pool.QueryRow(ctx, query, username).Scan(&secret); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return secret, true, nil
}

func (r *postgresCredentialRepository) EnsureCredential(ctx context.Context, record domain.CredentialRecord) (bool, error) {
	const query = `
        INSERT INTO users (username, password) VALUES ($1, $2)
        ON CONFLICT (username) DO NOTHING`

	cmd, err := r.pool.Exec(ctx, query, record.Username, record.Secret)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
