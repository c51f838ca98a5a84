package domain

import (
	"context"
	"time"
)

// Registration is one persisted pet registration. Optional fields are nil
// when the owner left them blank so the log stores them as JSON null.
type Registration struct {
	PetID          string  `json:"pet_id"`
	CreatedAtUTC   string  `json:"created_at_utc"`
	OwnerEmail     string  `json:"owner_email"`
	OwnerHandle    *string `json:"owner_handle"`
	PetName        string  `json:"pet_name"`
	MemorySeed     *string `json:"memory_seed"`
	AvatarFilename *string `json:"avatar_filename"`
}

// CreatedAt parses the stored RFC 3339 timestamp.
func (r *Registration) CreatedAt() (time.Time, error) {
	return time.Parse(time.RFC3339, r.CreatedAtUTC)
}

// RegistrationStore is the append-only registration log.
type RegistrationStore interface {
	Append(ctx context.Context, reg *Registration) error
	Get(ctx context.Context, petID string) (*Registration, error)
	List(ctx context.Context) ([]Registration, error)
}
