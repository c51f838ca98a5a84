package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/msomdec/meta-pet-registry/internal/config"
	"github.com/msomdec/meta-pet-registry/internal/domain"
	"github.com/msomdec/meta-pet-registry/internal/repository/filestore"
	"github.com/msomdec/meta-pet-registry/internal/repository/jsonl"
	"github.com/msomdec/meta-pet-registry/internal/repository/sqlite"
	"github.com/msomdec/meta-pet-registry/internal/service"
	"github.com/spf13/afero"
)

// openRegistry wires the configured store backend and file stores on the
// OS filesystem into a RegistrationService. The returned close func releases
// the store.
func openRegistry(ctx context.Context, c config.Config) (*service.RegistrationService, func() error, error) {
	fsys := afero.NewOsFs()

	store, closeStore, err := openStore(ctx, fsys, c)
	if err != nil {
		return nil, nil, err
	}

	uploads, err := filestore.New(fsys, c.UploadDir())
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("upload directory: %w", err)
	}
	scrolls, err := filestore.New(fsys, c.ScrollDir())
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("scroll directory: %w", err)
	}

	secret, err := verifySecret(c)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	svc := service.NewRegistrationService(store, uploads, scrolls, service.NewScrollRenderer(),
		service.NewScrollVerifier(secret), c.IDLength)
	return svc, closeStore, nil
}

func openStore(ctx context.Context, fsys afero.Fs, c config.Config) (domain.RegistrationStore, func() error, error) {
	noop := func() error { return nil }

	switch c.Store.Backend {
	case config.BackendSQLite:
		path := c.SQLitePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err := sqlite.New(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("registration store ready", "backend", c.Store.Backend, "path", path)
		return db.Registrations(), db.Close, nil
	default:
		store, err := jsonl.New(fsys, c.LogPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open registration log: %w", err)
		}
		slog.Info("registration store ready", "backend", c.Store.Backend, "path", c.LogPath())
		return store, noop, nil
	}
}

// verifySecret returns the configured secret, or a random one when unset.
// Verification links issued with a random secret stop working on restart.
func verifySecret(c config.Config) (string, error) {
	if c.VerifySecret != "" {
		return c.VerifySecret, nil
	}
	buf := make([]byte, config.MinVerifySecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verify secret: %w", err)
	}
	slog.Warn("verify_secret not set; using an ephemeral secret, verification links will not survive a restart")
	return hex.EncodeToString(buf), nil
}
