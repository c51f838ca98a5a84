package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/meta-pet-registry/internal/domain"
)

// RegistrationStore implements domain.RegistrationStore using an
// insert-only SQLite table.
type RegistrationStore struct {
	db *sql.DB
}

// NewRegistrationStore creates a new SQLite-backed RegistrationStore.
func NewRegistrationStore(db *DB) *RegistrationStore {
	return &RegistrationStore{db: db.SqlDB}
}

func (s *RegistrationStore) Append(ctx context.Context, reg *domain.Registration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO registrations
		 (pet_id, created_at_utc, owner_email, owner_handle, pet_name, memory_seed, avatar_filename)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reg.PetID, reg.CreatedAtUTC, reg.OwnerEmail,
		nullString(reg.OwnerHandle), reg.PetName,
		nullString(reg.MemorySeed), nullString(reg.AvatarFilename),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *RegistrationStore) Get(ctx context.Context, petID string) (*domain.Registration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT pet_id, created_at_utc, owner_email, owner_handle, pet_name, memory_seed, avatar_filename
		 FROM registrations WHERE pet_id = ?`, petID,
	)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query registration by pet id: %w", err)
	}
	return reg, nil
}

func (s *RegistrationStore) List(ctx context.Context) ([]domain.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pet_id, created_at_utc, owner_email, owner_handle, pet_name, memory_seed, avatar_filename
		 FROM registrations ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row scanner) (*domain.Registration, error) {
	var (
		reg                    domain.Registration
		handle, seed, filename sql.NullString
	)
	err := row.Scan(&reg.PetID, &reg.CreatedAtUTC, &reg.OwnerEmail, &handle, &reg.PetName, &seed, &filename)
	if err != nil {
		return nil, err
	}
	reg.OwnerHandle = stringPtr(handle)
	reg.MemorySeed = stringPtr(seed)
	reg.AvatarFilename = stringPtr(filename)
	return &reg, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
