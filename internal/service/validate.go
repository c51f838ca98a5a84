package service

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/msomdec/meta-pet-registry/internal/domain"
)

const (
	// MaxAvatarSize is the largest avatar upload accepted, in bytes.
	MaxAvatarSize = 5 * 1024 * 1024
	maxMemorySeed = 140
)

// emailPart excludes @ and every Unicode whitespace rune, not only the
// ASCII set matched by \s.
const emailPart = `[^@\s\pZ\x{0b}\x{1c}-\x{1f}\x{85}]+`

var (
	emailRe   = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)
	handleRe  = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,20}$`)
	petNameRe = regexp.MustCompile(`^[A-Za-z0-9 \-_'’]{2,24}$`)

	allowedAvatarExt = map[string]bool{
		".png":  true,
		".jpg":  true,
		".jpeg": true,
		".webp": true,
	}
)

// Validation messages, one per rule.
const (
	MsgInvalidEmail   = "Please enter a valid email address."
	MsgInvalidHandle  = "Handle must be 3–20 chars: letters, numbers, underscore, dot."
	MsgInvalidPetName = "Pet name must be 2–24 chars (letters/numbers/spaces/-/_/' allowed)."
	MsgMemoryTooLong  = "Memory seed must be 140 characters or less."
	MsgAvatarType     = "Avatar must be PNG/JPG/WEBP."
	MsgAvatarTooLarge = "Avatar must be 5MB or smaller."
)

// AvatarUpload is an uploaded avatar file as received from the form.
type AvatarUpload struct {
	Filename string
	Data     []byte
}

// RegistrationInput holds the raw submitted form values.
type RegistrationInput struct {
	OwnerEmail  string
	OwnerHandle string
	PetName     string
	MemorySeed  string
	Avatar      *AvatarUpload
}

// ValidationError carries every message produced for a submission.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid registration: " + strings.Join(e.Messages, " ")
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidInput
}

// ValidateRegistration trims the submitted values and checks every rule,
// returning the normalized input and all violations in field order. An
// avatar with an empty file name counts as no avatar.
func ValidateRegistration(in RegistrationInput) (RegistrationInput, []string) {
	out := RegistrationInput{
		OwnerEmail:  strings.TrimSpace(in.OwnerEmail),
		OwnerHandle: strings.TrimSpace(in.OwnerHandle),
		PetName:     strings.TrimSpace(in.PetName),
		MemorySeed:  strings.TrimSpace(in.MemorySeed),
	}
	if in.Avatar != nil && in.Avatar.Filename != "" {
		out.Avatar = in.Avatar
	}

	var msgs []string
	if out.OwnerEmail == "" || !emailRe.MatchString(out.OwnerEmail) {
		msgs = append(msgs, MsgInvalidEmail)
	}
	if out.OwnerHandle != "" && !handleRe.MatchString(out.OwnerHandle) {
		msgs = append(msgs, MsgInvalidHandle)
	}
	if out.PetName == "" || !petNameRe.MatchString(out.PetName) {
		msgs = append(msgs, MsgInvalidPetName)
	}
	if utf8.RuneCountInString(out.MemorySeed) > maxMemorySeed {
		msgs = append(msgs, MsgMemoryTooLong)
	}
	if out.Avatar != nil {
		if !allowedAvatarExt[avatarExt(out.Avatar.Filename)] {
			msgs = append(msgs, MsgAvatarType)
		} else if len(out.Avatar.Data) > MaxAvatarSize {
			msgs = append(msgs, MsgAvatarTooLarge)
		}
	}
	return out, msgs
}

func avatarExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
