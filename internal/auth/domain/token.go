package domain

import (
	"time"

	"github.com/google/uuid"

	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// TokenKind distinguishes access from refresh credentials. It is stored in the token_use claim.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// IssuedToken is a freshly signed credential.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenPair is handed to a client on login, registration and refresh.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RefreshToken is the persisted record of an outstanding refresh credential.
// Only the SHA-256 hash of the credential is stored.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is no longer usable at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// RefreshCredential is a refresh token handed to a client together with its owner.
type RefreshCredential struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// Session is the result of a successful registration or login.
type Session struct {
	User   *userDomain.User
	Tokens TokenPair
}
