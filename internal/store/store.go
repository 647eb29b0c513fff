package store

import (
	"context"
	"fmt"
	"io"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// Supported backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Options selects and configures a store backend.
type Options struct {
	Backend string

	SQLitePath string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Store is a reading store that owns resources released by Close.
type Store interface {
	airquality.Store
	io.Closer
}

// Open connects the backend named in opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return nopCloser{NewMemoryStore()}, nil
	case BackendSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	case BackendMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

type nopCloser struct {
	*MemoryStore
}

func (nopCloser) Close() error { return nil }
