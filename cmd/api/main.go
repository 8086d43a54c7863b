package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"usuarios-api/cmd/api/app"
	"usuarios-api/cmd/api/infrastructure"
	"usuarios-api/cmd/api/server"
	"usuarios-api/internal/adapter/db/mongodb"
	"usuarios-api/internal/config"
)

func main() {
	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   ".",
		Usage:   "Directory containing app.env",
		Sources: cli.EnvVars("CONFIG_PATH"),
	}

	cmd := &cli.Command{
		Name:    "usuarios-api",
		Usage:   "REST API for users and their addresses",
		Version: "1.0.0",
		Flags:   []cli.Flag{configFlag},
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "ensure-indexes",
				Usage:  "Create the MongoDB indexes for the users collection and exit",
				Action: ensureIndexes,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "usuarios-api: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	a, err := app.New(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func ensureIndexes(ctx context.Context, cmd *cli.Command) error {
	cfg, l, err := app.Bootstrap(cmd.String("config"))
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	cfg.Store.Driver = config.DriverMongo
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	client, err := infrastructure.NewMongoClient(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := infrastructure.CloseMongo(client, 5*time.Second); err != nil {
			l.Warn("failed to disconnect MongoDB", zap.Error(err))
		}
	}()

	repo := mongodb.NewUserRepoMongo(infrastructure.UserCollection(client, cfg), l)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	l.Info("indexes ensured",
		zap.String("database", cfg.Mongo.Database),
		zap.String("collection", cfg.Mongo.Collection),
	)
	return nil
}
