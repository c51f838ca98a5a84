package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msomdec/meta-pet-registry/internal/config"
	"github.com/msomdec/meta-pet-registry/internal/domain"
	"github.com/msomdec/meta-pet-registry/internal/service"
)

// registerPet seeds a registration in dataDir through the same wiring the
// commands use.
func registerPet(t *testing.T, c config.Config) *domain.Registration {
	t.Helper()
	regs, closeStore, err := openRegistry(context.Background(), c)
	if err != nil {
		t.Fatalf("openRegistry: %v", err)
	}
	defer closeStore()

	reg, err := regs.Register(context.Background(), service.RegistrationInput{
		OwnerEmail: "a@b.com",
		PetName:    "Milo",
		MemorySeed: "first snow",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	c := config.Defaults()
	c.DataDir = t.TempDir()
	c.Store.Backend = backend
	t.Setenv("PETREG_DATA_DIR", c.DataDir)
	t.Setenv("PETREG_STORE_BACKEND", backend)
	return c
}

func TestLookup(t *testing.T) {
	for _, backend := range []string{config.BackendJSONL, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			c := testConfig(t, backend)
			reg := registerPet(t, c)

			out, err := runCommand(t, "lookup", reg.PetID)
			if err != nil {
				t.Fatalf("lookup: %v\n%s", err, out)
			}

			var got domain.Registration
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("decode output %q: %v", out, err)
			}
			if got.PetID != reg.PetID || got.PetName != "Milo" || got.OwnerEmail != "a@b.com" {
				t.Fatalf("unexpected record %+v", got)
			}
			if got.MemorySeed == nil || *got.MemorySeed != "first snow" {
				t.Fatalf("unexpected memory seed %v", got.MemorySeed)
			}
		})
	}
}

func TestLookup_UnknownID(t *testing.T) {
	testConfig(t, config.BackendJSONL)

	unused, err := service.NewPetID(service.DefaultPetIDLength)
	if err != nil {
		t.Fatalf("NewPetID: %v", err)
	}
	out, err := runCommand(t, "lookup", unused)
	if err == nil {
		t.Fatalf("expected error, got output %s", out)
	}
	if !strings.Contains(err.Error(), "no registration") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRender_Regenerates(t *testing.T) {
	c := testConfig(t, config.BackendJSONL)
	reg := registerPet(t, c)

	scroll := filepath.Join(c.ScrollDir(), reg.PetID+".pdf")
	before, err := os.ReadFile(scroll)
	if err != nil {
		t.Fatalf("read scroll: %v", err)
	}
	if err := os.Remove(scroll); err != nil {
		t.Fatalf("remove scroll: %v", err)
	}

	out, err := runCommand(t, "render", reg.PetID)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	if strings.TrimSpace(out) != scroll {
		t.Fatalf("expected output %s, got %s", scroll, out)
	}

	after, err := os.ReadFile(scroll)
	if err != nil {
		t.Fatalf("scroll not regenerated: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("expected regenerated scroll to match the previous one")
	}
}

func TestLookup_RequiresID(t *testing.T) {
	testConfig(t, config.BackendJSONL)

	if _, err := runCommand(t, "lookup"); err == nil {
		t.Fatal("expected error without pet id")
	}
}

func TestInvalidConfig(t *testing.T) {
	testConfig(t, "postgres")

	_, err := runCommand(t, "lookup", "whatever")
	if err == nil || !strings.Contains(err.Error(), "store.backend") {
		t.Fatalf("expected backend validation error, got %v", err)
	}
}
