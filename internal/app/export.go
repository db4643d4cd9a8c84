package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"mosbookings/internal/adapters/observability"
	"mosbookings/internal/domain"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Exporter lays a report document out in one file format.
type Exporter interface {
	Format() string // file extension, e.g. "pdf"
	Write(w io.Writer, doc domain.ReportDocument) error
}

// ExportService writes report files and records them in an optional export log.
type ExportService struct {
	dir       string
	exporters map[string]Exporter
	history   domain.ExportLog
	now       func() time.Time
}

func NewExportService(dir string, history domain.ExportLog, exporters ...Exporter) *ExportService {
	m := make(map[string]Exporter, len(exporters))
	for _, e := range exporters {
		m[e.Format()] = e
	}
	return &ExportService{dir: dir, exporters: m, history: history, now: time.Now}
}

// ExportFileName is MosBookings_Report_YYYYMMDD_HHMMSS.<ext>.
func ExportFileName(t time.Time, ext string) string {
	return "MosBookings_Report_" + t.Format("20060102_150405") + "." + ext
}

func (s *ExportService) exporter(format string) (Exporter, error) {
	e, ok := s.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return e, nil
}

// WriteTo streams the report without touching disk or the export log.
func (s *ExportService) WriteTo(w io.Writer, sum Summary, format string) error {
	e, err := s.exporter(format)
	if err != nil {
		return err
	}
	if err := e.Write(w, sum.Document()); err != nil {
		return fmt.Errorf("write %s report: %w", format, err)
	}
	observability.ObserveExport(format)
	return nil
}

// Export writes the report under the export directory. A failure to record
// the export is logged and does not fail the export.
func (s *ExportService) Export(ctx context.Context, sum Summary, sess domain.Session, format string) (domain.ExportRecord, error) {
	e, err := s.exporter(format)
	if err != nil {
		return domain.ExportRecord{}, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.ExportRecord{}, fmt.Errorf("create export dir: %w", err)
	}
	now := s.now()
	path := filepath.Join(s.dir, ExportFileName(now, e.Format()))
	f, err := os.Create(path)
	if err != nil {
		return domain.ExportRecord{}, fmt.Errorf("create report file: %w", err)
	}
	if err := e.Write(f, sum.Document()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return domain.ExportRecord{}, fmt.Errorf("write %s report: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return domain.ExportRecord{}, fmt.Errorf("close report file: %w", err)
	}
	observability.ObserveExport(format)

	rec := domain.ExportRecord{
		Format:        format,
		Path:          path,
		UserID:        sess.UserID(),
		TotalBookings: sum.Total,
		OwnBookings:   sum.Own,
		GeneratedAt:   now,
	}
	if s.history != nil {
		id, err := s.history.Record(ctx, rec)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("export log write failed")
		} else {
			rec.ID = id
		}
	}
	log.Info().Str("path", path).Str("format", format).Msg("report exported")
	return rec, nil
}

// History returns the most recent exports, newest first. Without an export
// log it is always empty.
func (s *ExportService) History(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	if s.history == nil {
		return []domain.ExportRecord{}, nil
	}
	return s.history.Recent(ctx, limit)
}

func (s *ExportService) Formats() []string {
	out := make([]string, 0, len(s.exporters))
	for _, f := range []string{"pdf", "xlsx"} {
		if _, ok := s.exporters[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
