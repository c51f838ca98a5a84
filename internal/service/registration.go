package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/meta-pet-registry/internal/domain"
)

const (
	maxIDAttempts = 5
	// createdAtLayout renders UTC as "+00:00" rather than "Z".
	createdAtLayout = "2006-01-02T15:04:05-07:00"
)

// RegistrationService runs the registration lifecycle: validate, store the
// avatar, append the record, render the scroll.
type RegistrationService struct {
	store    domain.RegistrationStore
	uploads  domain.FileStore
	scrolls  domain.FileStore
	renderer DocumentRenderer
	verifier *ScrollVerifier
	idLength int
	now      func() time.Time
}

// NewRegistrationService creates a new RegistrationService. A non-positive
// idLength selects DefaultPetIDLength.
func NewRegistrationService(store domain.RegistrationStore, uploads, scrolls domain.FileStore, renderer DocumentRenderer, verifier *ScrollVerifier, idLength int) *RegistrationService {
	if idLength <= 0 {
		idLength = DefaultPetIDLength
	}
	return &RegistrationService{
		store:    store,
		uploads:  uploads,
		scrolls:  scrolls,
		renderer: renderer,
		verifier: verifier,
		idLength: idLength,
		now:      time.Now,
	}
}

// Register validates the submission and, if it passes, persists it and
// renders its scroll. Validation failures return a *ValidationError and
// leave no side effects. A failed append removes the stored avatar; a failed
// render leaves the appended record in place.
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (*domain.Registration, error) {
	fields, msgs := ValidateRegistration(in)
	if len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	reg := &domain.Registration{
		CreatedAtUTC: s.now().UTC().Truncate(time.Second).Format(createdAtLayout),
		OwnerEmail:   fields.OwnerEmail,
		OwnerHandle:  optional(fields.OwnerHandle),
		PetName:      fields.PetName,
		MemorySeed:   optional(fields.MemorySeed),
	}

	if fields.Avatar != nil {
		name, err := AvatarStorageName(fields.Avatar.Filename)
		if err != nil {
			return nil, fmt.Errorf("name avatar: %w", err)
		}
		if err := s.uploads.Save(ctx, name, fields.Avatar.Data); err != nil {
			return nil, fmt.Errorf("save avatar: %w", err)
		}
		reg.AvatarFilename = &name
	}

	if err := s.appendWithFreshID(ctx, reg); err != nil {
		if reg.AvatarFilename != nil {
			if derr := s.uploads.Delete(ctx, *reg.AvatarFilename); derr != nil {
				slog.Warn("remove orphaned avatar", "file", *reg.AvatarFilename, "error", derr)
			}
		}
		return nil, err
	}

	if err := s.renderScroll(ctx, reg); err != nil {
		return nil, err
	}

	slog.Info("pet registered", "pet_id", reg.PetID, "avatar", reg.AvatarFilename != nil)
	return reg, nil
}

// appendWithFreshID assigns a random pet ID and appends, drawing a new ID
// whenever the store reports a collision.
func (s *RegistrationService) appendWithFreshID(ctx context.Context, reg *domain.Registration) error {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := NewPetID(s.idLength)
		if err != nil {
			return fmt.Errorf("generate pet id: %w", err)
		}
		reg.PetID = id

		err = s.store.Append(ctx, reg)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateID) {
			return fmt.Errorf("append registration: %w", err)
		}
		slog.Warn("pet id collision", "pet_id", id, "attempt", attempt)
	}
	return fmt.Errorf("append registration: %w after %d attempts", domain.ErrDuplicateID, maxIDAttempts)
}

func (s *RegistrationService) renderScroll(ctx context.Context, reg *domain.Registration) error {
	var buf bytes.Buffer
	if err := s.renderer.Render(reg, &buf); err != nil {
		return err
	}
	if err := s.scrolls.Save(ctx, ScrollFilename(reg.PetID), buf.Bytes()); err != nil {
		return fmt.Errorf("save scroll: %w", err)
	}
	return nil
}

// Lookup returns the stored registration for petID.
func (s *RegistrationService) Lookup(ctx context.Context, petID string) (*domain.Registration, error) {
	if !ValidPetID(petID) {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, petID)
}

// Rerender regenerates the scroll for an existing registration,
// overwriting any previous file.
func (s *RegistrationService) Rerender(ctx context.Context, petID string) (*domain.Registration, error) {
	reg, err := s.Lookup(ctx, petID)
	if err != nil {
		return nil, err
	}
	if err := s.renderScroll(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// HasScroll reports whether a rendered scroll exists for petID.
func (s *RegistrationService) HasScroll(ctx context.Context, petID string) (bool, error) {
	if !ValidPetID(petID) {
		return false, nil
	}
	return s.scrolls.Exists(ctx, ScrollFilename(petID))
}

// Scroll returns the rendered PDF bytes for petID.
func (s *RegistrationService) Scroll(ctx context.Context, petID string) ([]byte, error) {
	if !ValidPetID(petID) {
		return nil, domain.ErrNotFound
	}
	return s.scrolls.Get(ctx, ScrollFilename(petID))
}

// VerificationToken returns a signed token vouching for the scroll of petID.
func (s *RegistrationService) VerificationToken(ctx context.Context, petID string) (string, error) {
	reg, err := s.Lookup(ctx, petID)
	if err != nil {
		return "", err
	}
	return s.verifier.Issue(reg)
}

// Verify checks a verification token against the stored registration.
func (s *RegistrationService) Verify(ctx context.Context, token string) (*domain.Registration, error) {
	petID, proof, err := s.verifier.Parse(token)
	if err != nil {
		return nil, err
	}
	reg, err := s.Lookup(ctx, petID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup registration: %w", err)
	}
	if ProofHash(reg.OwnerEmail) != proof {
		return nil, domain.ErrInvalidToken
	}
	return reg, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
