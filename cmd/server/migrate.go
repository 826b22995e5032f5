package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/nnomo/apartment-reservations/internal/config"
	"github.com/nnomo/apartment-reservations/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables when missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := newLogger(cfg.Env, cfg.LogLevel)

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info("schema up to date", "statements", len(database.Statements()))
			return nil
		},
	}
}
