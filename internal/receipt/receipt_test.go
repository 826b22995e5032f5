package receipt

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnomo/apartment-reservations/internal/model"
)

func sampleDetail() *model.ReservationDetail {
	return &model.ReservationDetail{
		Reservation: model.Reservation{
			ID:         "8d7a3c1e-0000-4000-8000-000000000001",
			LastName:   "Mbarga",
			FirstName:  "Élodie",
			Phone:      "+237600000000",
			Email:      "elodie@example.com",
			StayType:   model.StayNight,
			Duration:   3,
			Period:     "nuits",
			StartAt:    time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC),
			EndAt:      time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC),
			TotalPrice: 150000,
			Status:     model.StatusValidated,
		},
		ApartmentName: "A-12",
		CategoryName:  "VIP",
	}
}

func TestRenderWritesPDF(t *testing.T) {
	r := NewRenderer(filepath.Join(t.TempDir(), "receipts"))
	det := sampleDetail()

	path, err := r.Render(det)
	require.NoError(t, err)
	assert.Equal(t, "recu-"+det.ID+".pdf", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
}

func TestRenderOverwrites(t *testing.T) {
	r := NewRenderer(t.TempDir())
	det := sampleDetail()
	first, err := r.Render(det)
	require.NoError(t, err)

	det.Status = model.StatusOccupied
	second, err := r.Render(det)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderNil(t *testing.T) {
	_, err := NewRenderer(t.TempDir()).Render(nil)
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	got := rows(sampleDetail())
	assert.Equal(t, [2]string{"Montant total", "150000 FCFA"}, got[10])
	assert.Equal(t, [2]string{"Arrivée", "01/03/2025 14:00"}, got[8])
}
