package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/meta-pet-registry/internal/domain"
)

// ScrollVerifier issues and checks signed verification tokens for scrolls.
// A token binds a pet ID to the proof-of-link hash and never carries the
// owner email.
type ScrollVerifier struct {
	secret []byte
	now    func() time.Time
}

type scrollClaims struct {
	Proof string `json:"proof"`
	jwt.RegisteredClaims
}

// NewScrollVerifier creates a verifier signing with HMAC-SHA256.
func NewScrollVerifier(secret string) *ScrollVerifier {
	return &ScrollVerifier{secret: []byte(secret), now: time.Now}
}

// Issue returns a verification token for reg.
func (v *ScrollVerifier) Issue(reg *domain.Registration) (string, error) {
	claims := scrollClaims{
		Proof: ProofHash(reg.OwnerEmail),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  reg.PetID,
			IssuedAt: jwt.NewNumericDate(v.now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return token, nil
}

// Parse validates the token signature and returns the pet ID and proof hash
// it carries.
func (v *ScrollVerifier) Parse(tokenString string) (petID, proof string, err error) {
	claims := &scrollClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", "", domain.ErrInvalidToken
	}
	if claims.Subject == "" || claims.Proof == "" {
		return "", "", domain.ErrInvalidToken
	}
	return claims.Subject, claims.Proof, nil
}
