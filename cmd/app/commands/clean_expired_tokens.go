package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/allisson/incidenthub/internal/auth/usecase"
)

// RunCleanExpiredRefreshTokens deletes refresh credentials that expired more than
// days ago. dryRun only counts them.
func RunCleanExpiredRefreshTokens(
	ctx context.Context,
	store authUseCase.RefreshStore,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if err := validateDays(days); err != nil {
		return err
	}

	logger.Info("cleaning expired refresh tokens", slog.Int("days", days), slog.Bool("dry_run", dryRun))

	count, err := store.CleanupExpired(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"count": count, "days": days, "dry_run": dryRun}); err != nil {
			return err
		}
	} else if dryRun {
		_, _ = fmt.Fprintf(writer,
			"Dry-run mode: Would delete %d refresh token(s) expired more than %d day(s) ago\n", count, days)
	} else {
		_, _ = fmt.Fprintf(writer,
			"Successfully deleted %d refresh token(s) expired more than %d day(s) ago\n", count, days)
	}

	logger.Info("cleanup completed", slog.Int64("count", count), slog.Bool("dry_run", dryRun))
	return nil
}
