package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

const migrationsTable = "client_kv_migrations"

//go:embed migrations/*.up.sql
var migrationFS embed.FS

type migration struct {
	Name string
	SQL  string
}

// Migrate applies the embedded migrations that are not yet recorded in the
// bookkeeping table. Each migration runs in its own transaction.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		create table if not exists `+migrationsTable+` (
			name       text primary key,
			applied_at timestamptz not null default now()
		)`); err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	pending, err := loadMigrations(migrationFS)
	if err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	for _, m := range pending {
		if applied[m.Name] {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("storage: apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}

// AppliedMigrations lists recorded migrations in the order they ran.
func (s *PGStore) AppliedMigrations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `select name from `+migrationsTable+` order by applied_at asc, name asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *PGStore) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	names, err := s.AppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

func (s *PGStore) apply(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range splitStatements(m.SQL) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `insert into `+migrationsTable+`(name) values ($1)`, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	names, err := fs.Glob(fsys, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]migration, 0, len(names))
	for _, p := range names {
		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		out = append(out, migration{Name: strings.TrimPrefix(p, "migrations/"), SQL: string(body)})
	}
	return out, nil
}

// splitStatements splits on semicolons outside single-quoted strings.
func splitStatements(sql string) []string {
	var (
		stmts    []string
		current  strings.Builder
		inString bool
	)
	for _, r := range sql {
		current.WriteRune(r)
		switch r {
		case '\'':
			inString = !inString
		case ';':
			if !inString {
				stmts = append(stmts, current.String())
				current.Reset()
			}
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		stmts = append(stmts, current.String())
	}
	return stmts
}
