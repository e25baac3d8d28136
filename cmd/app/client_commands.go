package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/allisson/incidenthub/cmd/app/commands"
	"github.com/allisson/incidenthub/internal/app"
	"github.com/allisson/incidenthub/internal/client"
	"github.com/allisson/incidenthub/internal/config"
)

func getClientCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "watch",
			Usage: "Sign in and stream realtime incident updates",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Login email",
				},
				&cli.StringFlag{
					Name:     "password",
					Aliases:  []string{"p"},
					Sources:  cli.EnvVars("INCIDENTHUB_PASSWORD"),
					Required: true,
					Usage:    "Login password",
				},
				&cli.StringFlag{
					Name:  "url",
					Usage: "API base URL (defaults to CLIENT_BASE_URL)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				logger := container.Logger()

				baseURL := cfg.ClientBaseURL
				if url := cmd.String("url"); url != "" {
					baseURL = url
				}

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				apiClient := client.NewClient(baseURL, client.WithRefreshTimeout(cfg.ClientRefreshTimeout))

				return commands.RunWatch(
					ctx,
					apiClient,
					logger,
					commands.DefaultIO().Writer,
					cmd.String("email"),
					cmd.String("password"),
					cmd.String("format"),
				)
			},
		},
	}
}
