package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envvault/cmd/app/commands"
	"github.com/allisson/envvault/internal/app"
	"github.com/allisson/envvault/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-project",
			Usage: "Create a project and an API key for its owner",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable project name",
				},
				&cli.StringFlag{
					Name:    "owner-id",
					Aliases: []string{"o"},
					Usage:   "Existing owner ID (UUID); omit to create a new owner",
				},
				&cli.StringFlag{
					Name:    "key-name",
					Aliases: []string{"k"},
					Usage:   "Name of the API key (defaults to the project name)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				txManager, err := container.TxManager()
				if err != nil {
					return err
				}
				projectUseCase, err := container.ProjectUseCase()
				if err != nil {
					return err
				}
				apiKeyUseCase, err := container.APIKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateProject(
					ctx,
					txManager,
					projectUseCase,
					apiKeyUseCase,
					container.Logger(),
					cmd.String("name"),
					cmd.String("owner-id"),
					cmd.String("key-name"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "create-api-key",
			Usage: "Issue an additional API key for an existing owner",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "owner-id",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Owner ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable key name",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				apiKeyUseCase, err := container.APIKeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateAPIKey(
					ctx,
					apiKeyUseCase,
					container.Logger(),
					cmd.String("owner-id"),
					cmd.String("name"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
