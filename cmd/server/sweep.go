package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nnomo/apartment-reservations/internal/config"
	"github.com/nnomo/apartment-reservations/internal/repository"
	"github.com/nnomo/apartment-reservations/internal/service"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one end-of-stay reminder sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := newLogger(cfg.Env, cfg.LogLevel)

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			sweep := service.NewReminderSweep(
				repository.NewReservationRepo(db),
				repository.NewConfigRepo(db),
				newMailer(cfg, log),
				log,
			)
			res, err := sweep.RunOnce(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			log.Info("reminder sweep done",
				"scanned", res.Scanned,
				"sent", res.Sent,
				"failed", res.Failed,
				"no_address", res.NoAddress,
			)
			return nil
		},
	}
}
