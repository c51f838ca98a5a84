package service_test

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/msomdec/meta-pet-registry/internal/domain"
	"github.com/msomdec/meta-pet-registry/internal/service"
)

func TestProofHash(t *testing.T) {
	if got := service.ProofHash("a@b.com"); got != "fb98d44ad7501a95" {
		t.Fatalf("unexpected proof hash %s", got)
	}
}

func TestScrollFilename(t *testing.T) {
	if got := service.ScrollFilename("Ab3xQ9mK2pLw"); got != "Ab3xQ9mK2pLw.pdf" {
		t.Fatalf("unexpected scroll filename %s", got)
	}
}

func renderUncompressed(t *testing.T, reg *domain.Registration) []byte {
	t.Helper()
	var buf bytes.Buffer
	r := &service.ScrollRenderer{Compress: false}
	if err := r.Render(reg, &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.Bytes()
}

func TestScrollRenderer_Layout(t *testing.T) {
	handle := "moss.keeper"
	seed := "first snow"
	pdf := renderUncompressed(t, &domain.Registration{
		PetID:        "Ab3xQ9mK2pLw",
		CreatedAtUTC: "2024-05-06T07:08:09+00:00",
		OwnerEmail:   "a@b.com",
		OwnerHandle:  &handle,
		PetName:      "Milo",
		MemorySeed:   &seed,
	})

	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", pdf[:min(len(pdf), 16)])
	}
	for _, want := range []string{
		"META-PET REGISTRATION SCROLL",
		"SEAL",
		"MOSS60",
		"Creature Record",
		"Ab3xQ9mK2pLw",
		"Milo",
		"moss.keeper",
		"2024-05-06T07:08:09+00:00",
		"fb98d44ad7501a95",
		"first snow",
		"it witnesses it.",
	} {
		if !bytes.Contains(pdf, []byte(want)) {
			t.Errorf("scroll missing %q", want)
		}
	}
	if bytes.Contains(pdf, []byte("a@b.com")) {
		t.Fatal("scroll must not contain the raw owner email")
	}
}

func TestScrollRenderer_Placeholders(t *testing.T) {
	pdf := renderUncompressed(t, &domain.Registration{
		PetID:        "Ab3xQ9mK2pLw",
		CreatedAtUTC: "2024-05-06T07:08:09+00:00",
		OwnerEmail:   "a@b.com",
		PetName:      "Milo",
	})

	// The em dash placeholder is byte 0x97 in the cp1252 core fonts.
	if n := bytes.Count(pdf, []byte("(\x97) Tj")); n != 2 {
		t.Fatalf("expected 2 placeholder glyphs, found %d", n)
	}
}

func TestScrollRenderer_Deterministic(t *testing.T) {
	reg := &domain.Registration{
		PetID:        "Ab3xQ9mK2pLw",
		CreatedAtUTC: "2024-05-06T07:08:09+00:00",
		OwnerEmail:   "a@b.com",
		PetName:      "Milo",
	}
	first := renderUncompressed(t, reg)
	second := renderUncompressed(t, reg)
	if !bytes.Equal(first, second) {
		t.Fatal("expected identical output for the same registration")
	}
}

func TestScrollRenderer_WrapsLongMemorySeed(t *testing.T) {
	// Helvetica-Oblique 11pt: W is 944/1000 em, so at most 46 fit in the
	// 482.4pt between the margins.
	const maxW = 46

	tests := []struct {
		name    string
		seed    string
		maxLine int // 0 skips the width check
	}{
		{"words", strings.TrimSpace(strings.Repeat("moss ", 28)), 0},
		{"one long word", strings.Repeat("W", 140), maxW},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := tt.seed
			pdf := renderUncompressed(t, &domain.Registration{
				PetID:        "Ab3xQ9mK2pLw",
				CreatedAtUTC: "2024-05-06T07:08:09+00:00",
				OwnerEmail:   "a@b.com",
				PetName:      "Milo",
				MemorySeed:   &seed,
			})

			shown := regexp.MustCompile(`\(([moswW ]+)\) Tj`).FindAllSubmatch(pdf, -1)
			var parts []string
			for _, m := range shown {
				parts = append(parts, string(m[1]))
			}
			if len(parts) < 2 {
				t.Fatalf("expected the seed on several lines, got %q", parts)
			}
			if got := strings.ReplaceAll(strings.Join(parts, " "), " ", ""); got != strings.ReplaceAll(seed, " ", "") {
				t.Fatalf("wrapped lines lost text: %q", parts)
			}
			for _, p := range parts {
				if tt.maxLine > 0 && len(p) > tt.maxLine {
					t.Fatalf("line %q wider than the page", p)
				}
			}
		})
	}
}
