package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	userDomain "github.com/allisson/incidenthub/internal/user/domain"
	userUseCase "github.com/allisson/incidenthub/internal/user/usecase"
)

// CreateUserInput holds the create-user flags. An empty Password is read from the
// first line of the command's input.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// RunCreateUser creates an account with any role. It is the way to bootstrap the first ADMIN.
func RunCreateUser(
	ctx context.Context,
	users userUseCase.UseCase,
	logger *slog.Logger,
	streams IOTuple,
	input CreateUserInput,
	format string,
) error {
	role, err := userDomain.ParseRole(strings.ToUpper(input.Role))
	if err != nil {
		return fmt.Errorf("invalid role %q: %w", input.Role, err)
	}

	password := input.Password
	if password == "" {
		if password, err = readPassword(streams.Reader, streams.Writer); err != nil {
			return err
		}
	}

	user, err := users.CreateUser(ctx, userUseCase.CreateUserInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created", slog.String("user_id", user.ID.String()), slog.String("role", role.String()))
	return outputUser(streams.Writer, user, "User created", format)
}

func readPassword(reader io.Reader, writer io.Writer) (string, error) {
	_, _ = fmt.Fprint(writer, "Password: ")
	line, err := bufio.NewReader(reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	_, _ = fmt.Fprintln(writer)
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

func outputUser(writer io.Writer, user *userDomain.User, title, format string) error {
	if format == "json" {
		return writeJSON(writer, map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		})
	}
	_, _ = fmt.Fprintf(writer, "%s\n", title)
	_, _ = fmt.Fprintf(writer, "  ID:    %s\n", user.ID)
	_, _ = fmt.Fprintf(writer, "  Name:  %s\n", user.Name)
	_, _ = fmt.Fprintf(writer, "  Email: %s\n", user.Email)
	_, _ = fmt.Fprintf(writer, "  Role:  %s\n", user.Role)
	return nil
}
