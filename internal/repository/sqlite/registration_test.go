package sqlite_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/msomdec/meta-pet-registry/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestRegistrationStore_AppendAndGet(t *testing.T) {
	store := newTestDB(t).Registrations()
	ctx := context.Background()

	reg := &domain.Registration{
		PetID:          "Ab3xQ9mK2pLw",
		CreatedAtUTC:   "2024-05-06T07:08:09+00:00",
		OwnerEmail:     "owner@example.com",
		OwnerHandle:    strPtr("moss.keeper"),
		PetName:        "Milo",
		MemorySeed:     strPtr("first snow"),
		AvatarFilename: strPtr("milo_ABCD1234.png"),
	}
	if err := store.Append(ctx, reg); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.Get(ctx, reg.PetID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, reg) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, reg)
	}
}

func TestRegistrationStore_OptionalFieldsStayNil(t *testing.T) {
	store := newTestDB(t).Registrations()
	ctx := context.Background()

	reg := &domain.Registration{
		PetID:        "000000000001",
		CreatedAtUTC: "2024-05-06T07:08:09+00:00",
		OwnerEmail:   "a@b.com",
		PetName:      "Milo",
	}
	if err := store.Append(ctx, reg); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.Get(ctx, reg.PetID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OwnerHandle != nil || got.MemorySeed != nil || got.AvatarFilename != nil {
		t.Fatalf("expected nil optional fields, got %+v", got)
	}
}

func TestRegistrationStore_DuplicateID(t *testing.T) {
	store := newTestDB(t).Registrations()
	ctx := context.Background()

	reg := &domain.Registration{PetID: "dup000000000", CreatedAtUTC: "2024-05-06T07:08:09+00:00", OwnerEmail: "a@b.com", PetName: "Milo"}
	if err := store.Append(ctx, reg); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := store.Append(ctx, reg); !errors.Is(err, domain.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestRegistrationStore_GetNotFound(t *testing.T) {
	store := newTestDB(t).Registrations()

	_, err := store.Get(context.Background(), "missing00000")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistrationStore_ListInAppendOrder(t *testing.T) {
	store := newTestDB(t).Registrations()
	ctx := context.Background()

	ids := []string{"zzzzzzzzzzzz", "000000000000", "mmmmmmmmmmmm"}
	for _, id := range ids {
		reg := &domain.Registration{PetID: id, CreatedAtUTC: "2024-05-06T07:08:09+00:00", OwnerEmail: "a@b.com", PetName: "Milo"}
		if err := store.Append(ctx, reg); err != nil {
			t.Fatalf("Append %s: %v", id, err)
		}
	}

	regs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(regs) != len(ids) {
		t.Fatalf("expected %d registrations, got %d", len(ids), len(regs))
	}
	for i, id := range ids {
		if regs[i].PetID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, regs[i].PetID)
		}
	}
}
