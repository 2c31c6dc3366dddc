/*
Package sqlite implements the storage.Adapter contract on a managed SQLite
table.

PURPOSE:
  The table backend. The pto_requests table is deliberately NOT provisioned
  when the store is opened: the first operation that fails with the engine's
  "no such table" error provisions the schema and retries the original
  operation exactly once. A second failure after the retry propagates.

SELF-HEALING PROVISIONING:
  Provisioning uses CREATE TABLE IF NOT EXISTS, so a concurrent caller racing
  to provision the same table observes "already exists" as success. The
  retry is bounded at one to avoid retry amplification.

TYPING:
  number_of_days is stored as INTEGER; every other field is TEXT. The
  semantic typing (string vs integer) mirrors the record model.

CONCURRENCY:
  A sync.RWMutex serializes writers; the pool is capped at one connection so
  ":memory:" databases behave (each new SQLite connection would otherwise
  see a fresh empty database).

SEE ALSO:
  - storage/adapter.go: the contract this package implements
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/pto-scheduler/calendar"
	"github.com/warp/pto-scheduler/pto"
	"github.com/warp/pto-scheduler/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS pto_requests (
	id TEXT PRIMARY KEY,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	type TEXT NOT NULL,
	number_of_days INTEGER NOT NULL,
	status TEXT NOT NULL,
	excluded_weekends INTEGER NOT NULL DEFAULT 1,
	excluded_holidays INTEGER NOT NULL DEFAULT 1,
	holiday_info TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pto_requests_start_date
	ON pto_requests(start_date);
`

// Store is the SQLite-backed adapter.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	mu      sync.RWMutex
}

var _ storage.Adapter = (*Store)(nil)

// New opens the database without provisioning the table; the schema is
// created lazily by the first operation that needs it. Use ":memory:" for an
// in-memory database.
func New(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" coherent and matches the single-writer model.
	db.SetMaxOpenConns(1)

	return &Store{db: db, timeout: timeout}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// provision creates the schema. Idempotent: "already exists" is success.
func (s *Store) provision(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("failed to provision pto_requests table: %w", err)
	}
	return nil
}

// withProvision runs op; on a missing-table failure it provisions the schema
// and retries op exactly once. Any second failure propagates.
func (s *Store) withProvision(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	if !isMissingTable(err) {
		return err
	}
	if perr := s.provision(ctx); perr != nil {
		return perr
	}
	return op(ctx)
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Create persists a new record.
func (s *Store) Create(ctx context.Context, rec pto.Request) (*pto.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	err := s.withProvision(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO pto_requests
			(id, start_date, end_date, type, number_of_days, status,
			 excluded_weekends, excluded_holidays, holiday_info, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID,
			rec.StartDate.String(),
			rec.EndDate.String(),
			rec.Type,
			rec.NumberOfDays,
			rec.Status,
			rec.ExcludedDays.Weekends,
			rec.ExcludedDays.Holidays,
			nullString(rec.HolidayInfo),
			rec.CreatedAt.Format(time.RFC3339),
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pto record: %w", err)
	}
	return &rec, nil
}

// Get returns the record with the given id, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id string) (*pto.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var rec *pto.Request
	err := s.withProvision(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.get(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pto record: %w", err)
	}
	return rec, nil
}

func (s *Store) get(ctx context.Context, id string) (*pto.Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, start_date, end_date, type, number_of_days, status,
		       excluded_weekends, excluded_holidays, holiday_info, created_at
		FROM pto_requests WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update merges the non-nil fields onto the stored record.
func (s *Store) Update(ctx context.Context, id string, fields pto.Fields) (*pto.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var merged *pto.Request
	err := s.withProvision(ctx, func(ctx context.Context) error {
		current, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return storage.ErrNotFound
		}

		m := fields.Apply(*current)
		_, err = s.db.ExecContext(ctx, `
			UPDATE pto_requests
			SET start_date = ?, end_date = ?, type = ?, number_of_days = ?,
			    status = ?, excluded_weekends = ?, excluded_holidays = ?, holiday_info = ?
			WHERE id = ?`,
			m.StartDate.String(),
			m.EndDate.String(),
			m.Type,
			m.NumberOfDays,
			m.Status,
			m.ExcludedDays.Weekends,
			m.ExcludedDays.Holidays,
			nullString(m.HolidayInfo),
			id,
		)
		if err != nil {
			return err
		}
		merged = &m
		return nil
	})
	if err == storage.ErrNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update pto record: %w", err)
	}
	return merged, nil
}

// Delete removes the record and returns it, or (nil, nil) when absent.
func (s *Store) Delete(ctx context.Context, id string) (*pto.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var removed *pto.Request
	err := s.withProvision(ctx, func(ctx context.Context) error {
		current, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		if _, err := s.db.ExecContext(ctx, "DELETE FROM pto_requests WHERE id = ?", id); err != nil {
			return err
		}
		removed = current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete pto record: %w", err)
	}
	return removed, nil
}

// List returns all records in storage scan order.
func (s *Store) List(ctx context.Context) ([]pto.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var records []pto.Request
	err := s.withProvision(ctx, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, start_date, end_date, type, number_of_days, status,
			       excluded_weekends, excluded_holidays, holiday_info, created_at
			FROM pto_requests ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		records = records[:0]
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			records = append(records, *rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pto records: %w", err)
	}
	return records, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*pto.Request, error) {
	var (
		rec                pto.Request
		startDate, endDate string
		holidayInfo        sql.NullString
		createdAt          string
		weekends, holidays bool
	)

	err := row.Scan(&rec.ID, &startDate, &endDate, &rec.Type, &rec.NumberOfDays,
		&rec.Status, &weekends, &holidays, &holidayInfo, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.StartDate, err = calendar.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt start_date for record %s: %w", rec.ID, err)
	}
	rec.EndDate, err = calendar.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt end_date for record %s: %w", rec.ID, err)
	}
	rec.ExcludedDays = calendar.Exclusions{Weekends: weekends, Holidays: holidays}
	rec.HolidayInfo = holidayInfo.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &rec, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}
