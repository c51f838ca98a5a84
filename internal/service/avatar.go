package service

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename replaces runs of characters outside [a-zA-Z0-9._-] with
// an underscore and trims leading and trailing punctuation. The result is
// never empty.
func SanitizeFilename(name string) string {
	name = unsafeFilenameRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		return "upload"
	}
	return name
}

// AvatarStorageName builds the stored name for a validated upload:
// the sanitized stem, an 8-character random suffix, and the lowercased
// extension.
func AvatarStorageName(original string) (string, error) {
	rawExt := filepath.Ext(original)
	stem := original[:len(original)-len(rawExt)]
	suffix, err := NewPetID(avatarSuffixLength)
	if err != nil {
		return "", err
	}
	return SanitizeFilename(stem) + "_" + suffix + strings.ToLower(rawExt), nil
}
