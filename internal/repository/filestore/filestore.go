// Package filestore implements domain.FileStore on an afero filesystem
// rooted at a single directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/msomdec/meta-pet-registry/internal/domain"
	"github.com/spf13/afero"
)

// Store keeps files flat in one directory; keys are bare file names.
type Store struct {
	fs  afero.Fs
	dir string
}

// New creates the directory if needed and returns a Store rooted at it.
func New(fsys afero.Fs, dir string) (*Store, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	return &Store{fs: fsys, dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return fmt.Errorf("write file %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read file %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, nil
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat file %s: %w", key, err)
	}
	return !info.IsDir(), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file %s: %w", key, err)
	}
	return nil
}

// path rejects anything that is not a plain file name so keys built from
// request paths cannot escape the store directory.
func (s *Store) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: bad file key %q", domain.ErrInvalidInput, key)
	}
	return filepath.Join(s.dir, key), nil
}
