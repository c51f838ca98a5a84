package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/msomdec/meta-pet-registry/internal/domain"
)

// Page geometry in points on US Letter, origin top-left.
const (
	inch       = 72.0
	pageWidth  = 8.5 * inch
	pageHeight = 11 * inch
	marginLeft = 0.9 * inch
	marginTop  = 0.9 * inch
	valueInset = 110.0
	lineStep   = 16.0

	placeholder = "—"
)

// DocumentRenderer writes the certificate for a registration.
type DocumentRenderer interface {
	Render(reg *domain.Registration, w io.Writer) error
}

// ScrollRenderer draws the fixed-layout registration scroll as a
// single-page PDF.
type ScrollRenderer struct {
	// Compress enables stream compression in the PDF output.
	Compress bool
}

// NewScrollRenderer returns a renderer producing compressed PDFs.
func NewScrollRenderer() *ScrollRenderer {
	return &ScrollRenderer{Compress: true}
}

// ProofHash is the first 16 hex characters of SHA-256 of the owner email.
// The scroll prints this instead of the address.
func ProofHash(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])[:16]
}

// ScrollFilename is the storage key of the scroll for petID.
func ScrollFilename(petID string) string {
	return petID + ".pdf"
}

func (r *ScrollRenderer) Render(reg *domain.Registration, w io.Writer) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(r.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Meta-Pet Registration Scroll "+reg.PetID, true)
	pdf.SetCreator("meta-pet-registry", true)
	if issued, err := reg.CreatedAt(); err == nil {
		pdf.SetCreationDate(issued)
		pdf.SetModificationDate(issued)
	} else {
		pdf.SetCreationDate(time.Unix(0, 0).UTC())
	}
	pdf.AddPage()

	// Core fonts are cp1252; the translator is not safe to share between
	// documents.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(family, style string, size, x, y float64, s string) {
		pdf.SetFont(family, style, size)
		pdf.Text(x, y, tr(s))
	}
	centered := func(family, style string, size, cx, y float64, s string) {
		pdf.SetFont(family, style, size)
		s = tr(s)
		pdf.Text(cx-pdf.GetStringWidth(s)/2, y, s)
	}

	top := marginTop
	text("Helvetica", "B", 22, marginLeft, top, "META-PET REGISTRATION SCROLL")
	text("Helvetica", "", 10, marginLeft, top+18, "A civil document for a digital being. Keep it. Print it. Guard it.")

	sealX, sealY := pageWidth-1.7*inch, top+10
	pdf.SetLineWidth(2)
	pdf.Circle(sealX, sealY, 0.45*inch, "D")
	pdf.SetLineWidth(1)
	pdf.Circle(sealX, sealY, 0.33*inch, "D")
	centered("Helvetica", "B", 9, sealX, sealY-2, "SEAL")
	centered("Helvetica", "", 7, sealX, sealY+10, "MOSS60")

	y := top + 70
	text("Helvetica", "B", 12, marginLeft, y, "Creature Record")
	y += lineStep

	handle := placeholder
	if reg.OwnerHandle != nil && *reg.OwnerHandle != "" {
		handle = *reg.OwnerHandle
	}
	fields := []struct{ label, value string }{
		{"Pet ID", reg.PetID},
		{"Pet Name", reg.PetName},
		{"Owner Handle", handle},
		{"Issued (UTC)", reg.CreatedAtUTC},
	}
	for _, f := range fields {
		text("Helvetica", "B", 10, marginLeft, y, f.label+":")
		text("Helvetica", "", 11, marginLeft+valueInset, y, f.value)
		y += lineStep
	}

	y += 10
	text("Helvetica", "B", 12, marginLeft, y, "Bond & Recovery")
	y += lineStep
	text("Helvetica", "", 11, marginLeft, y, "Email is not printed. Proof-of-link hash:")
	y += lineStep
	text("Courier", "", 12, marginLeft, y, ProofHash(reg.OwnerEmail))

	y += 24
	text("Helvetica", "", 11, marginLeft, y, "Memory Seed (optional):")
	y += lineStep
	seed := placeholder
	if reg.MemorySeed != nil && *reg.MemorySeed != "" {
		seed = *reg.MemorySeed
	}
	pdf.SetFont("Helvetica", "I", 11)
	for _, line := range wrapLines(pdf, tr, seed, pageWidth-2*marginLeft) {
		text("Helvetica", "I", 11, marginLeft, y, line)
		y += lineStep
	}

	text("Helvetica", "", 9, marginLeft, pageHeight-0.7*inch,
		"Note: This scroll is a record. It does not grant custody; it witnesses it.")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render scroll %s: %w", reg.PetID, err)
	}
	return nil
}

// wrapLines breaks s at spaces into lines no wider than width in the current
// font. A word wider than a whole line is split between runes.
func wrapLines(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) []string {
	fits := func(t string) bool { return pdf.GetStringWidth(tr(t)) <= width }

	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		for !fits(word) {
			runes := []rune(word)
			n := 1
			for n < len(runes) && fits(string(runes[:n+1])) {
				n++
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, string(runes[:n]))
			word = string(runes[n:])
		}
		if word == "" {
			continue
		}
		switch {
		case line == "":
			line = word
		case fits(line + " " + word):
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
