// Package store reads the host application's work-order and attachment
// tables. This module never writes business data; the host owns the schema
// and its transactional boundaries.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/webtense/btr-automation-whatsapp/internal/workorder"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("store: record not found")

type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means default
}

type Store struct {
	db *sql.DB
}

// Open connects to the host's SQLite database file.
func Open(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("store: database path is required")
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	return &Store{db: db}, nil
}

// Migrate creates the mirror schema. Tests and standalone setups use it;
// production points at the host's own database file.
func (s *Store) Migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const orderColumns = `id, code, name, description, note, stage, technician, hotel, equipment, team, create_date, close_date, duration_hours`

// GetWorkOrder loads one record by id.
func (s *Store) GetWorkOrder(ctx context.Context, id int64) (workorder.WorkOrder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM work_orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return workorder.WorkOrder{}, ErrNotFound
	}
	return o, err
}

// CreatedBetween counts records created inside the inclusive window.
func (s *Store) CreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_orders WHERE create_date >= ? AND create_date <= ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&n)
	return n, err
}

// ClosedBetween counts records closed inside the inclusive window and sums
// their accumulated hours. Closure is an independent filter: a record closed
// today need not have been created today.
func (s *Store) ClosedBetween(ctx context.Context, from, to time.Time) (int, float64, error) {
	var n int
	var hours sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration_hours), 0)
		 FROM work_orders WHERE close_date IS NOT NULL AND close_date >= ? AND close_date <= ?`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&n, &hours)
	if err != nil {
		return 0, 0, err
	}
	return n, hours.Float64, nil
}

// AttachmentsByOrder lists the files linked to a record, optionally narrowed
// to image media.
func (s *Store) AttachmentsByOrder(ctx context.Context, orderID int64, imagesOnly bool) ([]workorder.Attachment, error) {
	q := `SELECT id, order_id, name, mimetype, data FROM attachments WHERE order_id = ?`
	args := []any{orderID}
	if imagesOnly {
		q += ` AND mimetype LIKE 'image/%'`
	}
	q += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atts []workorder.Attachment
	for rows.Next() {
		var a workorder.Attachment
		var data []byte
		if err := rows.Scan(&a.ID, &a.OrderID, &a.Name, &a.Mimetype, &data); err != nil {
			return nil, err
		}
		a.Data = data
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (workorder.WorkOrder, error) {
	var o workorder.WorkOrder
	var createDate string
	var closeDate sql.NullString
	var duration sql.NullFloat64
	err := row.Scan(&o.ID, &o.Code, &o.Name, &o.Description, &o.Note, &o.Stage,
		&o.Technician, &o.Hotel, &o.Equipment, &o.Team, &createDate, &closeDate, &duration)
	if err != nil {
		return workorder.WorkOrder{}, err
	}
	if t, perr := time.Parse(time.RFC3339, createDate); perr == nil {
		o.CreateDate = t
	}
	if closeDate.Valid {
		if t, perr := time.Parse(time.RFC3339, closeDate.String); perr == nil {
			o.CloseDate = &t
		}
	}
	o.DurationHours = duration.Float64
	return o, nil
}
