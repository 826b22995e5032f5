package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nnomo/apartment-reservations/internal/config"
	"github.com/nnomo/apartment-reservations/internal/queue"
)

func auditConsumerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit-consumer",
		Short: "Drain the reservation event queue into the audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadAudit()
			log := newLogger(cfg.Env, cfg.LogLevel)

			var fwd queue.Forwarder
			if cfg.FluentHost != "" {
				f, err := queue.NewFluentForwarder(cfg.FluentHost, cfg.FluentPort)
				if err != nil {
					log.Warn("fluentd unavailable, file trail only", "error", err)
				} else {
					defer f.Close()
					fwd = f
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			consumer := queue.NewAuditConsumer(cfg.AMQPURL, cfg.AuditLogPath, fwd, log)
			log.Info("audit consumer started", "queue", queue.AuditQueue, "file", cfg.AuditLogPath)
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
