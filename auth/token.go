package auth

import (
	"fmt"
	"time"

	"marketsync/domain"
	"marketsync/errors"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the subset of the backend access token the client relies on.
type SessionClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (c SessionClaims) viewer() (domain.Viewer, error) {
	if c.Subject == "" {
		return domain.Viewer{}, fmt.Errorf("%w: missing subject", errors.ErrInvalidToken)
	}
	return domain.Viewer{UserID: c.Subject, Role: sessionRole(c.UserMetadata["user_type"])}, nil
}

// sessionRole only grants the roles a user can sign up with. Anything else,
// including a missing claim, falls back to client.
func sessionRole(claim any) domain.Role {
	role, _ := claim.(string)
	if err := validate.Var(role, "required,oneof=client professional"); err != nil {
		return domain.RoleClient
	}
	return domain.Role(role)
}

// ViewerFromToken verifies an HS256 access token with the project secret
// and returns the authenticated viewer.
func ViewerFromToken(token string, secret []byte) (domain.Viewer, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Viewer{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return domain.Viewer{}, errors.ErrInvalidToken
	}
	return claims.viewer()
}

// ViewerFromUnverifiedToken reads the viewer out of a token the client cannot
// verify (the signing secret stays on the backend). Expiry is still enforced.
func ViewerFromUnverifiedToken(token string) (domain.Viewer, error) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Viewer{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return domain.Viewer{}, fmt.Errorf("%w: token expired", errors.ErrInvalidToken)
	}
	return claims.viewer()
}

// GenerateToken signs a session token, used by the local backend and tests.
func GenerateToken(viewer domain.Viewer, secret []byte, duration time.Duration) (string, error) {
	claims := &SessionClaims{
		UserMetadata: map[string]any{"user_type": string(viewer.Role)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "marketsync",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
