package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PGStore keeps client state in a Postgres table so several hosts can share
// one session.
type PGStore struct {
	db *sql.DB
}

// OpenPostgres connects through the pgx database/sql driver.
func OpenPostgres(dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	return &PGStore{db: db}, nil
}

// NewPGStore wraps an existing handle.
func NewPGStore(db *sql.DB) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Close() error { return s.db.Close() }

func (s *PGStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `select value from client_kv where key=$1`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *PGStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		insert into client_kv(key, value, updated_at)
		values ($1, $2, now())
		on conflict (key) do update
		set value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	return err
}

func (s *PGStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `delete from client_kv where key=$1`, key)
	return err
}
