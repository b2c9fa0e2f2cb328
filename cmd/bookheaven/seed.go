package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mmeshcher/bookheaven/internal/config"
	"github.com/mmeshcher/bookheaven/internal/middleware"
	"github.com/mmeshcher/bookheaven/internal/seed"
	"github.com/mmeshcher/bookheaven/internal/service"
)

const seedTimeout = time.Minute

var createAdminCmd = &cobra.Command{
	Use:                "create-admin [flags]",
	Short:              "Create the default admin account if it does not exist",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(args, func(ctx context.Context, svc *service.Service, logger *zap.Logger) error {
			created, err := seed.CreateAdmin(ctx, svc, seed.Admin, logger)
			if err != nil {
				return err
			}
			if created {
				cmd.Printf("Admin user created: %s\n", seed.Admin.Username)
			} else {
				cmd.Printf("Admin user already exists: %s\n", seed.Admin.Username)
			}
			return nil
		})
	},
}

var seedBooksCmd = &cobra.Command{
	Use:                "seed-books [flags]",
	Short:              "Add the starter catalog, skipping titles that already exist",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(args, func(ctx context.Context, svc *service.Service, logger *zap.Logger) error {
			books, err := seed.StarterBooks()
			if err != nil {
				return err
			}

			added, err := seed.SeedBooks(ctx, svc, books, logger)
			if err != nil {
				return err
			}
			if added == 0 {
				cmd.Println("All books already exist in the database")
			} else {
				cmd.Printf("Added %d book(s) to the database\n", added)
			}
			return nil
		})
	},
}

// withService поднимает хранилище и сервис по конфигурации из args и вызывает fn.
func withService(args []string, fn func(ctx context.Context, svc *service.Service, logger *zap.Logger) error) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Parse(args)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	repo, err := openRepository(ctx, cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("storage initialization error: %w", err)
	}

	svc := service.NewService(repo, middleware.NewAuthMiddleware(cfg.JWTSecret, cfg.TokenTTL), service.WithLogger(logger))
	defer svc.Close()

	return fn(ctx, svc, logger)
}
