package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// PetIDAlphabet is the 60-character base-60 alphabet used for pet IDs and
// avatar name suffixes: digits, upper case, and lower case a through x.
const PetIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwx"

const (
	DefaultPetIDLength = 12
	MaxPetIDLength     = 64
	avatarSuffixLength = 8
)

var alphabetSize = big.NewInt(int64(len(PetIDAlphabet)))

// NewPetID returns a uniformly random string of the given length over
// PetIDAlphabet, drawn from crypto/rand.
func NewPetID(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("pet id length must be positive, got %d", length)
	}
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b[i] = PetIDAlphabet[n.Int64()]
	}
	return string(b), nil
}

// IsPetID reports whether s could have been produced by NewPetID(length).
func IsPetID(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlphabetByte(s[i]) {
			return false
		}
	}
	return true
}

// ValidPetID reports whether s is a plausible stored pet ID of any length
// up to MaxPetIDLength. Lookups use it instead of IsPetID so records stay
// reachable after the configured ID length changes.
func ValidPetID(s string) bool {
	if len(s) == 0 || len(s) > MaxPetIDLength {
		return false
	}
	return IsPetID(s, len(s))
}

func isAlphabetByte(c byte) bool {
	return ('0' <= c && c <= '9') || ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'x')
}
