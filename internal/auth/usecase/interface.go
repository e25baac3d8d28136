// Package usecase implements session authentication: issuing credential pairs,
// rotating refresh credentials and revoking them.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
	userUseCase "github.com/allisson/incidenthub/internal/user/usecase"
)

// RefreshTokenRepository defines persistence operations for refresh credentials.
// Implementations must support transaction-aware operations via context propagation.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *authDomain.RefreshToken) error

	// Consume removes the record for tokenHash and returns it. At most one of several
	// concurrent transactions consuming the same hash succeeds; the rest get
	// ErrRefreshTokenInvalid.
	Consume(ctx context.Context, tokenHash string) (*authDomain.RefreshToken, error)

	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// UserService is the part of the user use case sessions depend on.
type UserService interface {
	CreateUser(ctx context.Context, input userUseCase.CreateUserInput) (*userDomain.User, error)
	Authenticate(ctx context.Context, email, password string) (*userDomain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

// RefreshStore tracks outstanding refresh credentials. Every credential is single use.
type RefreshStore interface {
	// Create issues a refresh credential for the user and records its hash.
	Create(ctx context.Context, userID uuid.UUID) (*authDomain.RefreshCredential, error)

	// Rotate exchanges a valid refresh credential for a new one owned by the same user.
	// The old credential is consumed in the same transaction that stores its successor,
	// so for concurrent calls with the same token exactly one succeeds. Unknown, expired
	// and already rotated credentials fail with ErrRefreshTokenInvalid.
	Rotate(ctx context.Context, token string) (*authDomain.RefreshCredential, error)

	// RevokeOne forgets a single credential. Revoking an unknown credential is not an error.
	RevokeOne(ctx context.Context, token string) error

	// RevokeAll forgets every credential of a user.
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)

	// CleanupExpired removes credentials that expired more than days ago.
	CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}

// RegisterInput contains the self-registration fields. Registered users are VIEWERs.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// SessionUseCase signs users in and out.
type SessionUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*authDomain.Session, error)
	Login(ctx context.Context, email, password string) (*authDomain.Session, error)

	// Refresh rotates the refresh credential and issues an access credential carrying
	// the user's current role.
	Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error)

	// Logout revokes one refresh credential. It is idempotent.
	Logout(ctx context.Context, refreshToken string) error

	// LogoutAll revokes every refresh credential of the user. Access credentials
	// already issued stay valid until they expire.
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}
