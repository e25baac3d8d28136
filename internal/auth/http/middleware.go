package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	authService "github.com/allisson/incidenthub/internal/auth/service"
	"github.com/allisson/incidenthub/internal/httputil"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// BearerToken extracts the credential from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	const bearerPrefix = "bearer "
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// AuthenticationMiddleware verifies the access credential in the Authorization header
// and stores the resulting principal in the request context.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Bad signature, wrong credential kind or expired → 401 Unauthorized
//
// The role in the principal is the one the credential was issued with. A role change
// takes effect on the next refresh.
func AuthenticationMiddleware(tokenService authService.TokenService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, authDomain.ErrMissingToken, logger)
			c.Abort()
			return
		}

		principal, err := tokenService.Verify(token, authDomain.TokenKindAccess)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// RequireRoles lets the request through only when the principal holds one of roles.
// It must run after AuthenticationMiddleware.
//
//	incidents.POST("", RequireRoles(logger, userDomain.RoleAdmin, userDomain.RoleResponder), handler.Create)
func RequireRoles(logger *slog.Logger, roles ...userDomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			logger.Debug("authorization failed: no principal in context")
			httputil.HandleErrorGin(c, authDomain.ErrMissingToken, logger)
			c.Abort()
			return
		}

		if !principal.HasRole(roles...) {
			logger.Debug("authorization failed: insufficient role",
				slog.String("user_id", principal.UserID.String()),
				slog.String("role", principal.Role.String()),
				slog.String("path", c.FullPath()))
			httputil.HandleErrorGin(c, authDomain.ErrInsufficientRole, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
