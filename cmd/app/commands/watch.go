package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/incidenthub/internal/client"
	"github.com/allisson/incidenthub/internal/realtime"
)

// RunWatch signs in, subscribes to the realtime gateway and prints every fact until
// ctx is done or the session ends.
func RunWatch(
	ctx context.Context,
	c *client.Client,
	logger *slog.Logger,
	writer io.Writer,
	email, password, format string,
) error {
	session, err := c.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}

	sub, err := c.DialRealtime(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer func() {
		_ = sub.Close()
	}()

	logger.Info("watching realtime facts",
		slog.String("user_id", session.User.ID),
		slog.Any("channels", sub.Ready.Channels),
	)

	for {
		fact, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("realtime connection lost: %w", err)
		}
		if err := printFact(writer, fact, format); err != nil {
			return err
		}
	}
}

func printFact(writer io.Writer, fact *realtime.Fact, format string) error {
	if format == "json" {
		line, err := json.Marshal(fact)
		if err != nil {
			return fmt.Errorf("failed to marshal fact: %w", err)
		}
		_, _ = fmt.Fprintln(writer, string(line))
		return nil
	}

	_, _ = fmt.Fprintf(writer, "%s  %-18s %s %s",
		fact.OccurredAt.Local().Format(time.TimeOnly), fact.Event, fact.EntityType, fact.EntityID)
	if status, ok := fact.Previous["status"]; ok {
		_, _ = fmt.Fprintf(writer, " (was %v)", status)
	}
	if fact.Channel != "" {
		_, _ = fmt.Fprintf(writer, " [%s]", fact.Channel)
	}
	_, _ = fmt.Fprintln(writer)
	return nil
}
