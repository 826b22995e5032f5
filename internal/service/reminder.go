package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/nnomo/apartment-reservations/internal/model"
	"github.com/nnomo/apartment-reservations/internal/repository"
)

// ReminderSubject is the subject of the end-of-stay email.
const ReminderSubject = "Votre séjour se termine bientôt"

var reminderTmpl = template.Must(template.New("reminder").Parse(
	`<p>Bonjour {{.FirstName}} {{.LastName}},</p>
<p>Votre séjour dans l'appartement <strong>{{.ApartmentID}}</strong> se termine dans moins de {{.LeadHours}} heures.</p>
<p>Si vous souhaitez prolonger votre séjour, veuillez contacter l'accueil du complexe NNOMO dès que possible.</p>
`))

// SweepResult summarizes one sweep.
type SweepResult struct {
	Scanned   int // active reservations whose end is not yet past
	Sent      int
	Failed    int
	NoAddress int
}

// ReminderSweep emails clients whose stay ends within the configured lead
// time.  Each reservation is reminded at most once: the flag is persisted
// right after a successful send.
type ReminderSweep struct {
	reservations ReservationStore
	configs      ConfigStore
	mailer       Mailer
	log          *slog.Logger
}

// NewReminderSweep builds a sweep.
func NewReminderSweep(reservations ReservationStore, configs ConfigStore, mailer Mailer, log *slog.Logger) *ReminderSweep {
	if log == nil {
		log = slog.Default()
	}
	return &ReminderSweep{
		reservations: reservations,
		configs:      configs,
		mailer:       mailer,
		log:          log.With("component", "reminder-sweep"),
	}
}

// RunOnce performs a single sweep as of now.  Mail and flag failures are
// logged per reservation and never abort the sweep; a failed send leaves
// the flag unset so the next sweep retries.  Only store failures while
// loading the config or the candidates are returned.
func (s *ReminderSweep) RunOnce(ctx context.Context, now time.Time) (SweepResult, error) {
	var out SweepResult

	cfg, err := s.configs.Find(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return out, fmt.Errorf("load reservation config: %w", err)
	}
	lead := cfg.LeadTime()

	candidates, err := s.reservations.List(ctx, repository.ReservationFilter{
		Statuses:      model.ActiveStatuses,
		EndsAtOrAfter: &now,
	})
	if err != nil {
		return out, fmt.Errorf("list active reservations: %w", err)
	}
	out.Scanned = len(candidates)

	for _, r := range candidates {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		remaining := r.EndAt.Sub(now)
		if remaining <= 0 || remaining > lead || r.ReminderSent {
			continue
		}
		if r.Email == "" {
			out.NoAddress++
			continue
		}
		body, err := reminderBody(r, lead)
		if err != nil {
			s.log.Error("render reminder", "reservation_id", r.ID, "error", err)
			out.Failed++
			continue
		}
		if err := s.mailer.Send(ctx, r.Email, ReminderSubject, body); err != nil {
			s.log.Warn("reminder mail failed", "reservation_id", r.ID, "error", err)
			out.Failed++
			continue
		}
		if err := s.reservations.MarkReminderSent(ctx, r.ID); err != nil {
			s.log.Error("mark reminder sent", "reservation_id", r.ID, "error", err)
			out.Failed++
			continue
		}
		out.Sent++
	}
	return out, nil
}

func reminderBody(r model.Reservation, lead time.Duration) (string, error) {
	var buf bytes.Buffer
	err := reminderTmpl.Execute(&buf, map[string]any{
		"FirstName":   r.FirstName,
		"LastName":    r.LastName,
		"ApartmentID": r.ApartmentID,
		"LeadHours":   int(lead / time.Hour),
	})
	return buf.String(), err
}
