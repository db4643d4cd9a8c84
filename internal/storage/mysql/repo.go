package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mosbookings/internal/adapters/observability"
	"mosbookings/internal/domain"
)

// ExportLog keeps a history of generated report files in report_exports.
type ExportLog struct{ db *sql.DB }

func New(db *sql.DB) *ExportLog { return &ExportLog{db: db} }

func (r *ExportLog) Record(ctx context.Context, rec domain.ExportRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertExportSQL,
		rec.Format,
		rec.Path,
		rec.UserID,
		rec.TotalBookings,
		rec.OwnBookings,
		rec.GeneratedAt.UTC(),
	)
	if err != nil {
		observability.ObserveStore("export_log", "error")
		return 0, fmt.Errorf("insert export: %w", err)
	}
	observability.ObserveStore("export_log", "write")
	return res.LastInsertId()
}

func (r *ExportLog) Recent(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, recentExportsSQL, limit)
	if err != nil {
		observability.ObserveStore("export_log", "error")
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	out := []domain.ExportRecord{}
	for rows.Next() {
		var (
			rec domain.ExportRecord
			at  time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.Format, &rec.Path, &rec.UserID, &rec.TotalBookings, &rec.OwnBookings, &at); err != nil {
			return nil, err
		}
		rec.GeneratedAt = at
		out = append(out, rec)
	}
	observability.ObserveStore("export_log", "read")
	return out, rows.Err()
}
