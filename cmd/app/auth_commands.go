package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/incidenthub/cmd/app/commands"
	"github.com/allisson/incidenthub/internal/app"
	"github.com/allisson/incidenthub/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Create a user account with any role",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Display name",
				},
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Login email",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Password (omit to read it from stdin)",
				},
				&cli.StringFlag{
					Name:    "role",
					Aliases: []string{"r"},
					Value:   "ADMIN",
					Usage:   "Role: ADMIN, RESPONDER or VIEWER",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userUseCase,
					container.Logger(),
					commands.DefaultIO(),
					commands.CreateUserInput{
						Name:     cmd.String("name"),
						Email:    cmd.String("email"),
						Password: cmd.String("password"),
						Role:     cmd.String("role"),
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "set-role",
			Usage: "Change the role of an existing user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Login email of the user",
				},
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Role: ADMIN, RESPONDER or VIEWER",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userRepository, err := container.UserRepository()
				if err != nil {
					return err
				}
				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunSetRole(
					ctx,
					userRepository,
					userUseCase,
					container.Logger(),
					commands.DefaultIO(),
					cmd.String("email"),
					cmd.String("role"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "clean-expired-refresh-tokens",
			Usage: "Delete refresh tokens that expired more than the specified days ago",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Delete tokens that expired more than this many days ago",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Show how many tokens would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				refreshStore, err := container.RefreshStore()
				if err != nil {
					return err
				}

				return commands.RunCleanExpiredRefreshTokens(
					ctx,
					refreshStore,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
