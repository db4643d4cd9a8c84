package domain

import "time"

// ReportItem is a label/value/icon triple derived at render time.
type ReportItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
}

// ExportRecord is one generated report file.
type ExportRecord struct {
	ID            int64     `json:"id,omitempty"`
	Format        string    `json:"format"` // pdf|xlsx
	Path          string    `json:"path"`
	UserID        string    `json:"user_id,omitempty"`
	TotalBookings int       `json:"total_bookings"`
	OwnBookings   int       `json:"own_bookings"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Count is one labelled tally in a report table or chart series.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ReportDocument is everything an exporter needs to lay out a report file.
type ReportDocument struct {
	Title       string
	GeneratedAt time.Time
	ReportFor   string
	Summary     []ReportItem
	Details     []ReportItem
	RoomTypes   []Count
	Footer      string
}
