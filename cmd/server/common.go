package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/nnomo/apartment-reservations/internal/config"
	"github.com/nnomo/apartment-reservations/internal/database"
	"github.com/nnomo/apartment-reservations/internal/logging"
	"github.com/nnomo/apartment-reservations/internal/mailer"
	"github.com/nnomo/apartment-reservations/internal/service"
)

func newLogger(env, level string) *slog.Logger {
	log := logging.New(logging.Options{Env: env, Level: level, Writer: os.Stdout})
	slog.SetDefault(log)
	return log
}

func openDB(cfg config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("open database %s@%s:%s/%s: %w", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, err)
	}
	return db, nil
}

// newMailer returns the SMTP mailer, or a mailer that refuses every
// message when SMTP is not configured.  The sweep then counts failures and
// retries once mail is set up.
func newMailer(cfg config.Config, log *slog.Logger) service.Mailer {
	mc := mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPass,
		FromName: cfg.MailFromName,
	}
	if !mc.Enabled() {
		log.Warn("SMTP not configured, reminders will not be sent")
		return mailer.Disabled{}
	}
	return mailer.New(mc)
}
