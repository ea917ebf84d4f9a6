package push

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator resolves the opaque bearer credential carried on the push
// channel handshake to a user identity.
type TokenValidator struct {
	signingKey []byte
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{signingKey: []byte(secret)}
}

// Validate parses an HMAC-signed token and returns the subject claim.
func (v *TokenValidator) Validate(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("missing token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject claim")
	}

	return subject, nil
}
