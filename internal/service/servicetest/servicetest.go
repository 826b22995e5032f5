// Package servicetest provides in-memory implementations of the service
// store, sink and mailer contracts for tests.
package servicetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nnomo/apartment-reservations/internal/model"
	"github.com/nnomo/apartment-reservations/internal/repository"
)

// FixedClock returns a clock frozen at t.
func FixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

// Reservations is an in-memory ReservationStore.  CreatedAt is assigned
// from a strictly increasing counter so insertion order decides
// last-write-wins ties.
type Reservations struct {
	mu      sync.Mutex
	rows    map[string]*model.Reservation
	seq     time.Time
	Names   map[string][2]string // apartment id -> {apartment name, category name}
	ListErr error
	MarkErr map[string]error
	Marks   []string
}

// NewReservations returns an empty store.
func NewReservations() *Reservations {
	return &Reservations{
		rows:    make(map[string]*model.Reservation),
		seq:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Names:   make(map[string][2]string),
		MarkErr: make(map[string]error),
	}
}

// Seed stores r as-is, assigning CreatedAt when zero.
func (s *Reservations) Seed(r model.Reservation) *model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.CreatedAt.IsZero() {
		s.seq = s.seq.Add(time.Second)
		r.CreatedAt = s.seq
		r.UpdatedAt = s.seq
	}
	s.rows[r.ID] = &r
	cp := r
	return &cp
}

func (s *Reservations) Create(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = s.seq.Add(time.Second)
	r.CreatedAt, r.UpdatedAt = s.seq, s.seq
	cp := *r
	s.rows[r.ID] = &cp
	return nil
}

func (s *Reservations) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Reservations) GetDetail(ctx context.Context, id string) (*model.ReservationDetail, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := s.detail(*r)
	return &d, nil
}

func (s *Reservations) detail(r model.Reservation) model.ReservationDetail {
	n := s.Names[r.ApartmentID]
	return model.ReservationDetail{Reservation: r, ApartmentName: n[0], CategoryName: n[1]}
}

func (s *Reservations) List(_ context.Context, f repository.ReservationFilter) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]model.Reservation, 0)
	for _, r := range s.rows {
		if matches(*r, f) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Reservations) ListDetailed(ctx context.Context, f repository.ReservationFilter) ([]model.ReservationDetail, error) {
	rows, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]model.ReservationDetail, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.detail(r))
	}
	return out, nil
}

func matches(r model.Reservation, f repository.ReservationFilter) bool {
	if f.ApartmentID != "" && r.ApartmentID != f.ApartmentID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if st == r.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.CoversAt != nil && !r.Covers(*f.CoversAt) {
		return false
	}
	if f.EndsAtOrAfter != nil && r.EndAt.Before(*f.EndsAtOrAfter) {
		return false
	}
	if f.Phone != "" && r.Phone != f.Phone {
		return false
	}
	if f.Email != "" && r.Email != f.Email {
		return false
	}
	return true
}

func (s *Reservations) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		r.Status = status
	}
	return nil
}

func (s *Reservations) MarkReminderSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.MarkErr[id]; err != nil {
		return err
	}
	if r, ok := s.rows[id]; ok {
		r.ReminderSent = true
	}
	s.Marks = append(s.Marks, id)
	return nil
}

func (s *Reservations) SetReceiptPath(_ context.Context, id, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		p := path
		r.ReceiptPath = &p
	}
	return nil
}

func (s *Reservations) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Len returns the number of stored reservations.
func (s *Reservations) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Configs is an in-memory ConfigStore.
type Configs struct {
	mu      sync.Mutex
	row     *model.ReservationConfig
	FindErr error
	Ensures int
}

// NewConfigs returns a store with no row.
func NewConfigs() *Configs { return &Configs{} }

// Set stores c as the singleton row.
func (s *Configs) Set(c model.ReservationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = model.ReservationConfigID
	s.row = &c
}

func (s *Configs) Find(context.Context) (*model.ReservationConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	if s.row == nil {
		return nil, repository.ErrNotFound
	}
	cp := *s.row
	return &cp, nil
}

func (s *Configs) Ensure(ctx context.Context, d model.ReservationConfig) (*model.ReservationConfig, error) {
	s.mu.Lock()
	s.Ensures++
	if s.row == nil {
		d.ID = model.ReservationConfigID
		s.row = &d
	}
	s.mu.Unlock()
	return s.Find(ctx)
}

func (s *Configs) Update(_ context.Context, c *model.ReservationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.row = &cp
	return nil
}

// Apartments is an in-memory ApartmentStore.
type Apartments struct {
	Categories []model.Category
	Items      []model.Apartment
}

func (s *Apartments) GetApartment(_ context.Context, id string) (*model.Apartment, error) {
	for _, a := range s.Items {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Apartments) GetCategory(_ context.Context, id string) (*model.Category, error) {
	for _, c := range s.Categories {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Apartments) ListCategories(context.Context) ([]model.Category, error) {
	return append([]model.Category(nil), s.Categories...), nil
}

func (s *Apartments) ListApartments(_ context.Context, categoryID string) ([]model.Apartment, error) {
	out := make([]model.Apartment, 0)
	for _, a := range s.Items {
		if categoryID == "" || a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Event is one recorded publication.
type Event struct {
	Name    string
	Payload any
}

// Sink records published events.  Err, when set, is returned from every
// Publish after recording.
type Sink struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func (s *Sink) Publish(_ context.Context, name string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, Event{Name: name, Payload: payload})
	return s.Err
}

// Names returns the recorded event names in order.
func (s *Sink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Events))
	for i, e := range s.Events {
		out[i] = e.Name
	}
	return out
}

// Mail is one recorded message.
type Mail struct {
	To, Subject, Body string
}

// Mailer records sends; addresses in Fail are refused.
type Mailer struct {
	mu   sync.Mutex
	Sent []Mail
	Fail map[string]bool
}

// ErrRefused is returned for addresses listed in Mailer.Fail.
var ErrRefused = errors.New("recipient refused")

func (m *Mailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail[to] {
		return ErrRefused
	}
	m.Sent = append(m.Sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

// Count returns how many messages went to addr.
func (m *Mailer) Count(addr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.Sent {
		if s.To == addr {
			n++
		}
	}
	return n
}
