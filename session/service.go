package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/warp/shift-pay/pay"
	"github.com/warp/shift-pay/report"
	"github.com/warp/shift-pay/sheet"
)

// DefaultTTL is how long a session is kept when Config.TTL is zero.
const DefaultTTL = 30 * time.Minute

// Config tunes a Service.
type Config struct {
	TTL     time.Duration
	Workers int // ComputeBatch parallelism; <= 0 means runtime.NumCPU()
	Sheet   sheet.Options
}

// Service runs uploads through the calculator and serves the stored results.
type Service struct {
	store Store
	calc  *pay.Calculator
	cfg   Config

	// Now is the clock; tests replace it.
	Now func() time.Time
}

// NewService creates a service over the given store and calculator.
func NewService(store Store, calc *pay.Calculator, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Service{store: store, calc: calc, cfg: cfg, Now: time.Now}
}

// Rates returns the wage table in use.
func (s *Service) Rates() pay.Rates {
	return s.calc.Rates
}

// SheetOptions returns the row validation settings uploads are checked with.
func (s *Service) SheetOptions() sheet.Options {
	return s.cfg.Sheet
}

// Compute prices a single record and explains the result.
func (s *Service) Compute(rec pay.AttendanceRecord) (pay.PayBreakdown, []string, error) {
	var (
		b   pay.PayBreakdown
		err error
	)
	if s.cfg.Sheet.StrictTimes {
		b, err = s.calc.ComputeStrict(rec)
		if err != nil {
			return pay.PayBreakdown{}, nil, err
		}
	} else {
		b = s.calc.Compute(rec)
	}
	return b, report.Details(s.calc.Rates, rec, b), nil
}

// Upload reads a sheet, computes every row and stores the result. A sheet
// with any invalid row is rejected whole; the error lists every bad cell.
func (s *Service) Upload(ctx context.Context, name string, r io.Reader) (*Session, error) {
	tbl, err := sheet.Read(name, r)
	if err != nil {
		return nil, err
	}
	rows, err := sheet.Records(tbl, s.cfg.Sheet)
	if err != nil {
		return nil, err
	}

	records := make([]pay.AttendanceRecord, len(rows))
	for i, row := range rows {
		records[i] = row.Record
	}
	results, err := pay.ComputeBatch(ctx, s.calc, records, s.cfg.Workers, false)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rows: %w", err)
	}

	now := s.Now()
	sess := &Session{
		ID:         uuid.NewString(),
		SourceName: name,
		Header:     tbl.Header,
		Rows:       make([]Row, len(rows)),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.TTL),
	}
	for i, row := range rows {
		sess.Rows[i] = Row{Line: row.Line, Cells: row.Cells, Record: row.Record, Breakdown: results[i].Breakdown}
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"session": sess.ID,
		"file":    name,
		"rows":    len(sess.Rows),
	}).Info("sheet computed")
	return sess, nil
}

// Get returns a live session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrSessionExpired, id)
	}
	return sess, nil
}

// Summary returns the employee and overall summaries of a session.
func (s *Service) Summary(ctx context.Context, id string) (report.Summary, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(sess.Entries()), nil
}

// Export writes the enriched sheet of a session and returns its download
// file name.
func (s *Service) Export(ctx context.Context, id string, w io.Writer, f sheet.Format) (string, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if err := sheet.Write(w, sess.Table(), f); err != nil {
		return "", err
	}
	return sheet.ResultFileName(s.Now(), f), nil
}

// Delete discards a session before its TTL.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
