package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	apperrors "github.com/allisson/incidenthub/internal/errors"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// claims is the JWT body shared by both credential kinds.
type claims struct {
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// tokenService implements TokenService with HS256 JWTs. Access and refresh
// credentials are signed with different keys so one can never stand in for the other.
type tokenService struct {
	keyring    *Keyring
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService.
func NewTokenService(keyring *Keyring, accessTTL, refreshTTL time.Duration) TokenService {
	return &tokenService{
		keyring:    keyring,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *tokenService) IssueAccess(principal authDomain.Principal) (*authDomain.IssuedToken, error) {
	return s.sign(authDomain.TokenKindAccess, principal.UserID, principal.Email, string(principal.Role))
}

func (s *tokenService) IssueRefresh(userID uuid.UUID) (*authDomain.IssuedToken, error) {
	return s.sign(authDomain.TokenKindRefresh, userID, "", "")
}

func (s *tokenService) sign(
	kind authDomain.TokenKind,
	userID uuid.UUID,
	email, role string,
) (*authDomain.IssuedToken, error) {
	ttl := s.accessTTL
	if kind == authDomain.TokenKindRefresh {
		ttl = s.refreshTTL
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	c := claims{
		Email:    email,
		Role:     role,
		TokenUse: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.Must(uuid.NewV7()).String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.keyring.key(kind))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign token")
	}

	// NumericDate truncates to seconds; report what the token actually says.
	return &authDomain.IssuedToken{Token: signed, ExpiresAt: c.ExpiresAt.Time.UTC()}, nil
}

func (s *tokenService) Verify(token string, kind authDomain.TokenKind) (*authDomain.Principal, error) {
	if token == "" {
		return nil, authDomain.ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(
		token,
		&claims{},
		func(t *jwt.Token) (any, error) {
			return s.keyring.key(kind), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, authDomain.ErrInvalidAccessToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.TokenUse != string(kind) {
		return nil, authDomain.ErrInvalidAccessToken
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, authDomain.ErrInvalidAccessToken
	}

	principal := &authDomain.Principal{UserID: userID}
	if kind == authDomain.TokenKindAccess {
		role, err := userDomain.ParseRole(c.Role)
		if err != nil {
			return nil, authDomain.ErrInvalidAccessToken
		}
		principal.Email = c.Email
		principal.Role = role
	}
	return principal, nil
}

// HashToken hashes a plain text token using SHA-256.
// Returns the hash as a hexadecimal string.
func (s *tokenService) HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
