package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	userDomain "github.com/allisson/incidenthub/internal/user/domain"
	userUseCase "github.com/allisson/incidenthub/internal/user/usecase"
)

// UserFinder looks a user up by email.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*userDomain.User, error)
}

// RunSetRole changes the role of the account registered under email. The change
// is announced on the user's realtime channel when a shared bus is configured.
func RunSetRole(
	ctx context.Context,
	finder UserFinder,
	users userUseCase.UseCase,
	logger *slog.Logger,
	streams IOTuple,
	email, role, format string,
) error {
	parsed, err := userDomain.ParseRole(strings.ToUpper(role))
	if err != nil {
		return fmt.Errorf("invalid role %q: %w", role, err)
	}

	user, err := finder.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to find user %s: %w", email, err)
	}

	updated, err := users.UpdateRole(ctx, user.ID, parsed)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	logger.Info("role updated",
		slog.String("user_id", updated.ID.String()),
		slog.String("from", user.Role.String()),
		slog.String("to", updated.Role.String()),
	)
	return outputUser(streams.Writer, updated, "Role updated", format)
}
