package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnomo/apartment-reservations/internal/model"
	"github.com/nnomo/apartment-reservations/internal/service/servicetest"
)

type engineFixture struct {
	store   *servicetest.Reservations
	configs *servicetest.Configs
	sink    *servicetest.Sink
	svc     *ReservationService
}

func newEngine(t *testing.T, opts Options) engineFixture {
	t.Helper()
	f := engineFixture{
		store:   servicetest.NewReservations(),
		configs: servicetest.NewConfigs(),
		sink:    &servicetest.Sink{},
	}
	f.svc = NewReservationService(f.store, f.configs, f.sink, nil, opts, nil)
	return f
}

func booking() SubmitInput {
	return SubmitInput{
		LastName:    "Essomba",
		FirstName:   "Paul",
		Phone:       "+237699000000",
		Email:       "paul@example.com",
		StayType:    model.StayNight,
		ApartmentID: "A",
		CategoryID:  "c1",
		Duration:    2,
		Period:      "nuits",
		StartAt:     t0,
		EndAt:       t0.Add(48 * time.Hour),
		TotalPrice:  90000,
	}
}

func TestConfigIsCreatedLazilyOnce(t *testing.T) {
	f := newEngine(t, Options{DefaultReminderHours: 7})

	cfg, err := f.svc.Config(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.ReservationsActive)
	assert.Equal(t, 7, cfg.ReminderLeadHours)
	assert.Equal(t, model.ReservationConfigID, cfg.ID)

	_, err = f.svc.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.configs.Ensures)
}

func TestConfigStoreFailureSurfaces(t *testing.T) {
	f := newEngine(t, Options{})
	f.configs.FindErr = errors.New("db down")
	_, err := f.svc.Config(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSubmitRejectedWhenDisabled(t *testing.T) {
	f := newEngine(t, Options{})
	f.configs.Set(model.ReservationConfig{ReservationsActive: false, ReminderLeadHours: 5})

	_, err := f.svc.Submit(context.Background(), booking())
	assert.ErrorIs(t, err, ErrServiceDisabled)
	assert.Zero(t, f.store.Len())
	assert.Empty(t, f.sink.Events)
}

func TestSubmitPersistsAndBroadcastsOnce(t *testing.T) {
	f := newEngine(t, Options{})
	f.configs.Set(model.ReservationConfig{ReservationsActive: true, ReminderLeadHours: 5})

	res, err := f.svc.Submit(context.Background(), booking())
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, model.StatusPending, res.Status)
	assert.False(t, res.ReminderSent)
	assert.Equal(t, 1, f.store.Len())

	require.Len(t, f.sink.Events, 1)
	assert.Equal(t, EventReservationValidated, f.sink.Events[0].Name)
	assert.Equal(t, ReservationEvent{ApartmentID: "A", ReservationID: res.ID, Status: model.StatusPending}, f.sink.Events[0].Payload)
}

func TestSubmitDefaultStatusPolicy(t *testing.T) {
	f := newEngine(t, Options{AutoValidate: true})
	res, err := f.svc.Submit(context.Background(), booking())
	require.NoError(t, err)
	assert.Equal(t, model.StatusValidated, res.Status)

	in := booking()
	in.Status = model.StatusPending
	res, err = f.svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, res.Status)

	in.Status = model.StatusOccupied
	_, err = f.svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSubmitValidation(t *testing.T) {
	f := newEngine(t, Options{})

	in := booking()
	in.EndAt = in.StartAt
	_, err := f.svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)

	in = booking()
	in.ApartmentID = " "
	_, err = f.svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.store.Len())
}

func TestSubmitSurvivesSinkFailure(t *testing.T) {
	f := newEngine(t, Options{})
	f.sink.Err = errors.New("socket gone")

	res, err := f.svc.Submit(context.Background(), booking())
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 1, f.store.Len())
}

func TestSetStatusEvents(t *testing.T) {
	f := newEngine(t, Options{})
	f.store.Seed(stay("r1", "A", model.StatusPending, 0, time.Hour))

	res, err := f.svc.SetStatus(context.Background(), "r1", model.StatusValidated)
	require.NoError(t, err)
	assert.Equal(t, model.StatusValidated, res.Status)

	_, err = f.svc.SetStatus(context.Background(), "r1", model.StatusOccupied)
	require.NoError(t, err)

	assert.Equal(t, []string{EventReservationValidated, EventReservationStatusChanged}, f.sink.Names())
	assert.Equal(t, ReservationEvent{ApartmentID: "A", ReservationID: "r1", Status: model.StatusOccupied}, f.sink.Events[1].Payload)

	stored, err := f.store.GetByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOccupied, stored.Status)
}

func TestSetStatusAllowsAnyTransition(t *testing.T) {
	f := newEngine(t, Options{})
	f.store.Seed(stay("r1", "A", model.StatusOccupied, 0, time.Hour))

	res, err := f.svc.SetStatus(context.Background(), "r1", model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, res.Status)
}

func TestCancelTwiceIsIdempotent(t *testing.T) {
	f := newEngine(t, Options{})
	f.store.Seed(stay("r1", "A", model.StatusValidated, 0, time.Hour))

	first, err := f.svc.SetStatus(context.Background(), "r1", model.StatusCancelled)
	require.NoError(t, err)
	second, err := f.svc.SetStatus(context.Background(), "r1", model.StatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, first.Status)
	assert.Equal(t, first.Status, second.Status)
	stored, _ := f.store.GetByID(context.Background(), "r1")
	assert.Equal(t, model.StatusCancelled, stored.Status)
}

func TestSetStatusErrors(t *testing.T) {
	f := newEngine(t, Options{})
	f.store.Seed(stay("r1", "A", model.StatusPending, 0, time.Hour))

	_, err := f.svc.SetStatus(context.Background(), "missing", model.StatusValidated)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.SetStatus(context.Background(), "r1", "terminee")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, f.sink.Events)
}

func TestRemoveBroadcastsAndFreesApartment(t *testing.T) {
	f := newEngine(t, Options{})
	f.store.Seed(stay("r1", "A", model.StatusOccupied, 0, time.Hour))
	resolver := NewResolver(f.store, &servicetest.Apartments{}, servicetest.FixedClock(t0))

	av, err := resolver.Resolve(context.Background(), "A", nil)
	require.NoError(t, err)
	require.Equal(t, AvailabilityOccupied, av.Status)

	require.NoError(t, f.svc.Remove(context.Background(), "r1"))
	require.Len(t, f.sink.Events, 1)
	assert.Equal(t, EventReservationRemoved, f.sink.Events[0].Name)
	assert.Equal(t, ReservationEvent{ApartmentID: "A", ReservationID: "r1"}, f.sink.Events[0].Payload)

	av, err = resolver.Resolve(context.Background(), "A", nil)
	require.NoError(t, err)
	assert.Equal(t, AvailabilityFree, av.Status)

	assert.ErrorIs(t, f.svc.Remove(context.Background(), "r1"), ErrNotFound)
}

func TestUpdateConfig(t *testing.T) {
	f := newEngine(t, Options{})
	off := false

	cfg, err := f.svc.UpdateConfig(context.Background(), ConfigPatch{ReservationsActive: &off})
	require.NoError(t, err)
	assert.False(t, cfg.ReservationsActive)
	assert.Equal(t, model.DefaultReminderLeadHours, cfg.ReminderLeadHours)

	require.Len(t, f.sink.Events, 1)
	assert.Equal(t, EventConfigChanged, f.sink.Events[0].Name)
	assert.Equal(t, ConfigEvent{ReservationsActive: false}, f.sink.Events[0].Payload)

	_, err = f.svc.Submit(context.Background(), booking())
	assert.ErrorIs(t, err, ErrServiceDisabled)

	cfg, err = f.svc.UpdateConfig(context.Background(), ConfigPatch{})
	require.NoError(t, err)
	assert.False(t, cfg.ReservationsActive)
}

func TestLookup(t *testing.T) {
	f := newEngine(t, Options{})
	a := stay("r1", "A", model.StatusPending, 0, time.Hour)
	a.Phone, a.Email = "111", "a@x.cm"
	b := stay("r2", "B", model.StatusPending, 0, time.Hour)
	b.Phone, b.Email = "111", "b@x.cm"
	f.store.Seed(a)
	f.store.Seed(b)

	_, err := f.svc.Lookup(context.Background(), " ", "")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.svc.Lookup(context.Background(), "111", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)

	got, err = f.svc.Lookup(context.Background(), "111", "a@x.cm")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

type stubRenderer struct{ path string }

func (s stubRenderer) Render(det *model.ReservationDetail) (string, error) {
	return s.path + "/recu-" + det.ID + ".pdf", nil
}

func TestReceipt(t *testing.T) {
	store := servicetest.NewReservations()
	store.Seed(stay("r1", "A", model.StatusValidated, 0, time.Hour))
	svc := NewReservationService(store, servicetest.NewConfigs(), nil, stubRenderer{path: "/tmp"}, Options{}, nil)

	path, err := svc.Receipt(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/recu-r1.pdf", path)
	stored, _ := store.GetByID(context.Background(), "r1")
	require.NotNil(t, stored.ReceiptPath)
	assert.Equal(t, path, *stored.ReceiptPath)

	_, err = svc.Receipt(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMultiSinkTriesEverySink(t *testing.T) {
	a, b := &servicetest.Sink{Err: errors.New("a down")}, &servicetest.Sink{}
	err := MultiSink{a, nil, b}.Publish(context.Background(), "x", 1)
	assert.Error(t, err)
	assert.Len(t, a.Events, 1)
	assert.Len(t, b.Events, 1)
	assert.NoError(t, MultiSink{}.Publish(context.Background(), "x", 1))
}
