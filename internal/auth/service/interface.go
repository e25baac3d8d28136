// Package service provides the credential primitives used by session authentication:
// signing and verifying access and refresh credentials, hashing refresh credentials
// for storage, hashing passwords and loading the signing keyring.
package service

import (
	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
)

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	// Hash returns an Argon2id PHC string for the password.
	Hash(password string) (string, error)

	// Compare reports whether password matches hash. It never returns an error;
	// a malformed hash simply does not match.
	Compare(password, hash string) bool
}

// TokenService issues and verifies the paired session credentials.
type TokenService interface {
	// IssueAccess signs a short-lived access credential carrying the principal's id, email and role.
	IssueAccess(principal authDomain.Principal) (*authDomain.IssuedToken, error)

	// IssueRefresh signs a long-lived refresh credential for the identity. Every call yields
	// a distinct token, even within the same second.
	IssueRefresh(userID uuid.UUID) (*authDomain.IssuedToken, error)

	// Verify checks signature, expiry and kind. Refresh principals only carry UserID.
	// Any failure is authDomain.ErrInvalidAccessToken (an ErrUnauthorized).
	Verify(token string, kind authDomain.TokenKind) (*authDomain.Principal, error)

	// HashToken returns the hex SHA-256 digest used to store refresh credentials.
	HashToken(token string) string
}
