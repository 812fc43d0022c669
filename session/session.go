/*
Package session keeps the result of one uploaded attendance sheet around long
enough to summarize and download it.

LIFECYCLE:
  Upload   sheet -> validated rows -> ComputeBatch -> Store.Save
  Get      Store.Get, refused with ErrSessionExpired once past ExpiresAt
  Export   rows -> sheet.Enrich -> CSV/XLSX
  Sweep    Sweeper deletes expired sessions on a ticker

Sessions are ephemeral and never a payroll record of truth. The store only
has to keep them for the TTL.

IMPLEMENTATIONS:
  - session/memory: in-memory Store
  - store/sqlite: SQLite Store

SEE ALSO:
  - service.go: Service
  - sweeper.go: Sweeper
*/
package session

import (
	"context"
	"errors"
	"time"

	"github.com/warp/shift-pay/pay"
	"github.com/warp/shift-pay/report"
	"github.com/warp/shift-pay/sheet"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSessionNotFound is returned when no session has the given ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned for a session past its TTL that the
	// sweeper has not removed yet.
	ErrSessionExpired = errors.New("session expired")
)

// IsNotFound returns true if the error indicates a missing session.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsExpired returns true if the session existed but is past its TTL.
func IsExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// =============================================================================
// TYPES
// =============================================================================

// Session is one computed upload.
type Session struct {
	ID         string
	SourceName string
	Header     []string // canonical header of the uploaded sheet
	Rows       []Row
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Row is a computed sheet row. Cells holds the original cell text aligned
// with Session.Header, including columns the calculator ignores.
type Row struct {
	Line      int
	Cells     []string
	Record    pay.AttendanceRecord
	Breakdown pay.PayBreakdown
}

// Expired reports whether the session is past its TTL at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Entries returns the rows in report form.
func (s *Session) Entries() []report.Entry {
	out := make([]report.Entry, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = report.Entry{Record: r.Record, Breakdown: r.Breakdown}
	}
	return out
}

// Table returns the enriched result sheet.
func (s *Session) Table() *sheet.Table {
	rows := make([]sheet.Row, len(s.Rows))
	results := make([]pay.PayBreakdown, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = sheet.Row{Line: r.Line, Cells: r.Cells, Record: r.Record}
		results[i] = r.Breakdown
	}
	return sheet.Enrich(s.Header, rows, results)
}

// =============================================================================
// STORE
// =============================================================================

// Store persists sessions for their TTL.
type Store interface {
	// Save inserts or replaces a session with all its rows.
	Save(ctx context.Context, s *Session) error

	// Get returns the session, expired or not. ErrSessionNotFound if absent.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. ErrSessionNotFound if absent.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session whose ExpiresAt is not after now
	// and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
