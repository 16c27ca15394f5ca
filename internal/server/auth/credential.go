package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the session owner in "sub" and the raw secret in "sid".
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// GenerateCredential seals identifier and secret into an HS256 envelope that
// expires together with the session.
func GenerateCredential(identifier, secret string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identifier,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		SessionID: secret,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseCredential verifies an envelope and returns the identifier and secret
// inside. Any failure (bad signature, wrong algorithm, expiry, missing claims)
// is reported as common.ErrInvalidToken.
func ParseCredential(tokenString string, secretKey []byte) (identifier, secret string, err error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", "", common.ErrInvalidToken
	}

	if claims.Subject == "" || claims.SessionID == "" {
		return "", "", fmt.Errorf("%w: missing sub or sid", common.ErrInvalidToken)
	}

	return claims.Subject, claims.SessionID, nil
}
