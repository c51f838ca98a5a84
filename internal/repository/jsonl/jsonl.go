// Package jsonl stores registrations as newline-delimited JSON in a single
// append-only log file.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/msomdec/meta-pet-registry/internal/domain"
	"github.com/spf13/afero"
)

// Store implements domain.RegistrationStore. Appends are serialized so lines
// from concurrent requests in this process never interleave.
type Store struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// New returns a Store writing to path, creating its parent directory.
func New(fsys afero.Fs, path string) (*Store, error) {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &Store{fs: fsys, path: path}, nil
}

// Append writes reg as one JSON line. It returns domain.ErrDuplicateID if a
// record with the same pet ID is already in the log. A log whose last line
// was torn gets a newline first so the new record starts on its own line.
func (s *Store) Append(ctx context.Context, reg *domain.Registration) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(reg); err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	terminated, err := s.scan(func(r *domain.Registration) bool {
		found = r.PetID == reg.PetID
		return !found
	})
	if err != nil {
		return err
	}
	if found {
		return domain.ErrDuplicateID
	}

	line := buf.Bytes()
	if !terminated {
		line = append([]byte{'\n'}, line...)
	}

	f, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open registration log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append registration: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close registration log: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, petID string) (*domain.Registration, error) {
	var found *domain.Registration
	_, err := s.scan(func(r *domain.Registration) bool {
		if r.PetID == petID {
			found = r
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Registration, error) {
	var regs []domain.Registration
	_, err := s.scan(func(r *domain.Registration) bool {
		regs = append(regs, *r)
		return true
	})
	return regs, err
}

// scan decodes each line in order until fn returns false. Lines that do not
// decode to a record are logged and skipped. A missing log is an empty
// registry. terminated reports whether the log is empty or ends in a
// newline; it is only meaningful when fn never stopped the scan.
func (s *Store) scan(fn func(*domain.Registration) bool) (terminated bool, err error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("open registration log: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	terminated = true
	for line := 1; ; line++ {
		raw, readErr := r.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return false, fmt.Errorf("read registration log: %w", readErr)
		}
		if len(raw) > 0 {
			terminated = raw[len(raw)-1] == '\n'
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 {
			var reg domain.Registration
			if err := json.Unmarshal(trimmed, &reg); err != nil || reg.PetID == "" {
				slog.Warn("skipping unreadable registration log line", "path", s.path, "line", line, "error", err)
			} else if !fn(&reg) {
				return terminated, nil
			}
		}
		if readErr != nil {
			return terminated, nil
		}
	}
}
