package domain

import "context"

// FileStore abstracts raw file byte storage. Keys are plain file names;
// each store is rooted at its own directory (uploads, scrolls).
type FileStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
