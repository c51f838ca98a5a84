package domain

import "context"

// Database is implemented by registration store backends that own a schema.
// The JSONL log needs no setup, so only the SQLite backend satisfies it.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
