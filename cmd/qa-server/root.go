package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-qa-backend/internal/cache"
	"github.com/tbourn/go-qa-backend/internal/config"
	"github.com/tbourn/go-qa-backend/internal/provider"
	"github.com/tbourn/go-qa-backend/internal/repo"
	"github.com/tbourn/go-qa-backend/internal/sysutil"
)

const defaultEnvFile = ".env"

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "qa-server",
		Short:         "Question-answering backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCmd(&envFile),
		newMigrateCmd(&envFile),
		newAskCmd(&envFile),
	)
	return root
}

// loadConfig reads envFile into the process environment without overriding
// variables that are already set, then loads and validates the config. A
// missing default file is fine; a missing explicit one is not.
func loadConfig(envFile string) (config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !(envFile == defaultEnvFile && errors.Is(err, fs.ErrNotExist)) {
				return config.Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	sysutil.ConfigureLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

// app holds the collaborators shared by every command.
type app struct {
	cfg      config.Config
	db       *gorm.DB
	cache    *cache.ResponseCache
	provider provider.Provider
}

// bootstrap opens the database (migrated), the response cache and the answer
// provider selected by cfg.
func bootstrap(ctx context.Context, cfg config.Config) (*app, error) {
	db, err := repo.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{cfg: cfg, db: db}
	if err := repo.AutoMigrate(db); err != nil {
		a.close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if a.cache, err = cache.Open(ctx, cfg.Cache); err != nil {
		a.close()
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if a.provider, err = provider.Open(cfg.Provider); err != nil {
		a.close()
		return nil, fmt.Errorf("open provider: %w", err)
	}
	return a, nil
}

func (a *app) close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
