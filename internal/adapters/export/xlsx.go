package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"mosbookings/internal/domain"
)

// GeneratedLayout is how report timestamps are printed.
const GeneratedLayout = "02/01/2006 15:04"

const sheet = "Report"

// XLSX renders a report as one worksheet with the same tables as the PDF.
type XLSX struct{}

func (XLSX) Format() string { return "xlsx" }

func (XLSX) Write(w io.Writer, doc domain.ReportDocument) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	headStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1
	set := func(col int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, v)
	}
	style := func(id int) error {
		return f.SetCellStyle(sheet, "A"+strconv.Itoa(row), "B"+strconv.Itoa(row), id)
	}

	if err := set(1, doc.Title); err != nil {
		return err
	}
	if err := style(titleStyle); err != nil {
		return err
	}
	row++
	if err := set(1, "Generated on: "+doc.GeneratedAt.Format(GeneratedLayout)); err != nil {
		return err
	}
	row++
	if err := set(1, "Report for: "+doc.ReportFor); err != nil {
		return err
	}
	row += 2

	table := func(title, left, right string, rows [][2]string) error {
		if err := set(1, title); err != nil {
			return err
		}
		if err := style(titleStyle); err != nil {
			return err
		}
		row++
		if err := set(1, left); err != nil {
			return err
		}
		if err := set(2, right); err != nil {
			return err
		}
		if err := style(headStyle); err != nil {
			return err
		}
		row++
		for _, r := range rows {
			if err := set(1, r[0]); err != nil {
				return err
			}
			if err := set(2, r[1]); err != nil {
				return err
			}
			row++
		}
		row++
		return nil
	}

	if err := table("Summary Statistics", "Metric", "Value", itemRows(doc.Summary)); err != nil {
		return err
	}
	if err := table("Detailed Reports", "Metric", "Value", itemRows(doc.Details)); err != nil {
		return err
	}
	if len(doc.RoomTypes) > 0 {
		if err := table("Room Type Distribution", "Room Type", "Bookings", countRows(doc.RoomTypes)); err != nil {
			return err
		}
	}
	if err := set(1, doc.Footer); err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 25); err != nil {
		return err
	}
	return f.Write(w)
}

func itemRows(items []domain.ReportItem) [][2]string {
	out := make([][2]string, 0, len(items))
	for _, it := range items {
		out = append(out, [2]string{it.Label, it.Value})
	}
	return out
}

func countRows(cs []domain.Count) [][2]string {
	out := make([][2]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, [2]string{c.Label, strconv.Itoa(c.Count)})
	}
	return out
}
