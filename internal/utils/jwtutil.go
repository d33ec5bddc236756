package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"smartshelf/internal/apperrors"
)

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SecretSource pairs a signing secret with a tag naming its issuer.
type SecretSource struct {
	Secret []byte
	Issuer string
}

// Issuer tags.
const (
	IssuerPortal   = "portal"
	IssuerInternal = "internal"
)

// TokenVerifier verifies a candidate token against an ordered list of
// secrets; the first successful verification wins. The portal secret is
// tried before the internal one.
type TokenVerifier struct {
	sources []SecretSource
}

func NewTokenVerifier(portalSecret, internalSecret string) *TokenVerifier {
	var sources []SecretSource
	if portalSecret != "" {
		sources = append(sources, SecretSource{Secret: []byte(portalSecret), Issuer: IssuerPortal})
	}
	if internalSecret != "" {
		sources = append(sources, SecretSource{Secret: []byte(internalSecret), Issuer: IssuerInternal})
	}
	return &TokenVerifier{sources: sources}
}

// Verify returns the token's claims and the issuer tag of the secret that
// validated it.
func (v *TokenVerifier) Verify(tokenStr string) (*Claims, string, error) {
	for _, source := range v.sources {
		secret := source.Secret
		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil {
			continue
		}
		if claims, ok := token.Claims.(*Claims); ok && token.Valid {
			return claims, source.Issuer, nil
		}
	}
	return nil, "", apperrors.NewAuth("invalid or expired token", false)
}

// GenerateToken issues an internal HS256 token carrying just the email claim.
func GenerateToken(email string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   email,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

// ParseToken verifies a token against a single secret.
func ParseToken(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.NewAuth("invalid token", false)
}
