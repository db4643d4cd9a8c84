package export

import (
	"io"

	"github.com/go-pdf/fpdf"

	"mosbookings/internal/domain"
)

// PDF renders a report as a single A4 document.
type PDF struct{}

func (PDF) Format() string { return "pdf" }

func (PDF) Write(w io.Writer, doc domain.ReportDocument) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on: "+doc.GeneratedAt.Format(GeneratedLayout), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr("Report for: "+doc.ReportFor), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	table := func(title, left, right string, rows [][2]string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(221, 235, 247)
		pdf.CellFormat(110, 7, left, "1", 0, "L", true, 0, "")
		pdf.CellFormat(70, 7, right, "1", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, r := range rows {
			pdf.CellFormat(110, 7, tr(r[0]), "1", 0, "L", false, 0, "")
			pdf.CellFormat(70, 7, tr(r[1]), "1", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
	}

	table("Summary Statistics", "Metric", "Value", itemRows(doc.Summary))
	table("Detailed Reports", "Metric", "Value", itemRows(doc.Details))
	if len(doc.RoomTypes) > 0 {
		table("Room Type Distribution", "Room Type", "Bookings", countRows(doc.RoomTypes))
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, tr(doc.Footer), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}
