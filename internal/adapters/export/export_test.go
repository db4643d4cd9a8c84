package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mosbookings/internal/adapters/export"
	"mosbookings/internal/domain"
)

func sampleDoc() domain.ReportDocument {
	return domain.ReportDocument{
		Title:       "MosBookings - Reports & Analytics",
		GeneratedAt: time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC),
		ReportFor:   "Ann (admin)",
		Summary:     []domain.ReportItem{{Label: "Total System Bookings", Value: "3"}},
		Details:     []domain.ReportItem{{Label: "Most Popular Room", Value: "Loft (2)"}},
		RoomTypes:   []domain.Count{{Label: "Suite", Count: 2}, {Label: "Den", Count: 1}},
		Footer:      "This report was generated by MosBookings App",
	}
}

func TestPDF_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.PDF{}.Write(&buf, sampleDoc()))
	assert.Equal(t, "pdf", export.PDF{}.Format())
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestXLSX_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.XLSX{}.Write(&buf, sampleDoc()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "MosBookings - Reports & Analytics", rows[0][0])
	assert.Equal(t, "Generated on: 15/06/2025 10:30", rows[1][0])
	assert.Equal(t, "Report for: Ann (admin)", rows[2][0])

	var flat []string
	for _, r := range rows {
		flat = append(flat, r...)
	}
	assert.Contains(t, flat, "Room Type Distribution")
	assert.Contains(t, flat, "Loft (2)")
	assert.Contains(t, flat, "Suite")
	assert.Equal(t, []string{"Report"}, f.GetSheetList())
}

func TestXLSX_SkipsRoomTypesWhenEmpty(t *testing.T) {
	doc := sampleDoc()
	doc.RoomTypes = nil
	var buf bytes.Buffer
	require.NoError(t, export.XLSX{}.Write(&buf, doc))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, _ := f.GetRows("Report")
	for _, r := range rows {
		for _, c := range r {
			assert.NotEqual(t, "Room Type Distribution", c)
		}
	}
}
