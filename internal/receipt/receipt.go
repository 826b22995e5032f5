// Package receipt renders reservation receipts as PDF files.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/nnomo/apartment-reservations/internal/model"
)

const (
	title      = "Complexe NNOMO - Reçu de réservation"
	dateLayout = "02/01/2006 15:04"
)

// Renderer writes receipts under Dir.
type Renderer struct {
	Dir string
}

// NewRenderer returns a renderer writing into dir, created on demand.
func NewRenderer(dir string) *Renderer {
	if dir == "" {
		dir = "receipts"
	}
	return &Renderer{Dir: dir}
}

// FileName is the receipt file name of a reservation.
func FileName(id string) string { return "recu-" + id + ".pdf" }

// Render writes the receipt of det and returns its path.  An existing file
// is overwritten so the receipt always reflects the current status.
func (r *Renderer) Render(det *model.ReservationDetail) (string, error) {
	if det == nil {
		return "", fmt.Errorf("receipt: nil reservation")
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("receipt: mkdir %s: %w", r.Dir, err)
	}
	path := filepath.Join(r.Dir, FileName(det.ID))

	pdf := build(det)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("receipt: write %s: %w", path, err)
	}
	return path, nil
}

func build(det *model.ReservationDetail) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows(det) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 8, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, tr(row[1]), "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr("Merci de présenter ce reçu à l'accueil lors de votre arrivée."), "", "L", false)
	return pdf
}

func rows(det *model.ReservationDetail) [][2]string {
	return [][2]string{
		{"Référence", det.ID},
		{"Client", det.FirstName + " " + det.LastName},
		{"Téléphone", det.Phone},
		{"Email", det.Email},
		{"Catégorie", det.CategoryName},
		{"Appartement", det.ApartmentName},
		{"Type de séjour", det.StayType},
		{"Durée", strconv.Itoa(det.Duration) + " " + det.Period},
		{"Arrivée", det.StartAt.Format(dateLayout)},
		{"Départ", det.EndAt.Format(dateLayout)},
		{"Montant total", strconv.FormatFloat(det.TotalPrice, 'f', 0, 64) + " FCFA"},
		{"Statut", det.Status},
	}
}
