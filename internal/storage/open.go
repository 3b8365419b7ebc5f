package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend   string // file, postgres, redis or memory
	Path      string
	DSN       string
	RedisAddr string
}

// Open builds the configured backend. The returned closer releases backend
// connections and is never nil.
func Open(ctx context.Context, opts Options) (KV, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "file":
		if opts.Path == "" {
			return nil, nil, fmt.Errorf("storage: file backend requires a path")
		}
		kv, err := OpenFile(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return kv, noopCloser{}, nil
	case "memory":
		return NewMemoryKV(), noopCloser{}, nil
	case "postgres":
		pg, err := OpenPostgres(opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return pg, pg, nil
	case "redis":
		rs, err := OpenRedis(ctx, opts.RedisAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: redis: %w", err)
		}
		return rs, rs, nil
	default:
		return nil, nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
