package domain

import (
	"github.com/allisson/incidenthub/internal/errors"
)

// Authentication errors.
var (
	// ErrMissingToken indicates a request without a bearer credential.
	ErrMissingToken = errors.Wrap(errors.ErrUnauthorized, "missing access token")

	// ErrInvalidAccessToken indicates a malformed, expired or wrongly signed credential.
	ErrInvalidAccessToken = errors.Wrap(errors.ErrUnauthorized, "invalid or expired token")

	// ErrRefreshTokenInvalid indicates a refresh credential that is unknown, expired or already rotated.
	ErrRefreshTokenInvalid = errors.Wrap(errors.ErrInvalidToken, "refresh token is invalid, expired or already used")

	// ErrInsufficientRole indicates the principal's role is not allowed on the route.
	ErrInsufficientRole = errors.Wrap(errors.ErrForbidden, "insufficient role")
)
