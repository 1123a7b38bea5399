package repo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver for database/sql

	"github.com/pkordes/mileage-log/internal/domain"
	"github.com/pkordes/mileage-log/migrations"
)

// sqliteTimeLayout is a fixed-width UTC timestamp so created_at sorts
// correctly as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteEntryRepo is the SQLite implementation of EntryRepo.
// Dates are stored as "YYYY-MM-DD" text so range filters and ordering work
// by plain string comparison.
type sqliteEntryRepo struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if necessary) the SQLite database at path and
// applies all pending migrations. The caller owns the returned *sql.DB.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("repo.OpenSQLite: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: open: %w", err)
	}
	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	if _, err := migrations.Up(ctx, goose.DialectSQLite3, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}
	return db, nil
}

// NewSQLiteEntryRepo constructs an EntryRepo backed by a migrated SQLite db.
func NewSQLiteEntryRepo(db *sql.DB) EntryRepo {
	return &sqliteEntryRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *sqliteEntryRepo) Create(ctx context.Context, userID string, in domain.TravelEntryInput) (domain.TravelEntry, error) {
	const q = `
		INSERT INTO travel_entries (id, user_id, entry_date, trip, miles, purpose, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	e := domain.TravelEntry{
		ID:        uuid.New(),
		UserID:    userID,
		EntryDate: in.EntryDate,
		Trip:      in.Trip,
		Miles:     in.Miles,
		Purpose:   in.Purpose,
		CreatedAt: r.now(),
	}
	_, err := r.db.ExecContext(ctx, q,
		e.ID.String(), e.UserID, e.DateString(), e.Trip, e.Miles, e.Purpose,
		e.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return domain.TravelEntry{}, fmt.Errorf("repo.SQLiteEntryRepo.Create: %w", err)
	}
	return e, nil
}

func (r *sqliteEntryRepo) ListByRange(ctx context.Context, userID string, rng domain.MonthRange) ([]domain.TravelEntry, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM travel_entries
		WHERE user_id = ?
		  AND entry_date >= ?
		  AND entry_date <= ?
		ORDER BY entry_date ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, q, userID, rng.StartString(), rng.EndString())
	if err != nil {
		return nil, fmt.Errorf("repo.SQLiteEntryRepo.ListByRange: %w", err)
	}
	defer rows.Close()

	entries := []domain.TravelEntry{}
	for rows.Next() {
		e, err := scanSQLiteEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SQLiteEntryRepo.ListByRange: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SQLiteEntryRepo.ListByRange: rows: %w", err)
	}
	return entries, nil
}

func (r *sqliteEntryRepo) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	const q = `DELETE FROM travel_entries WHERE id = ? AND user_id = ?`

	res, err := r.db.ExecContext(ctx, q, id.String(), userID)
	if err != nil {
		return fmt.Errorf("repo.SQLiteEntryRepo.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo.SQLiteEntryRepo.Delete: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repo.SQLiteEntryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanSQLiteEntry(s scanner) (domain.TravelEntry, error) {
	var (
		e                   domain.TravelEntry
		id, date, createdAt string
	)
	if err := s.Scan(&id, &e.UserID, &date, &e.Trip, &e.Miles, &e.Purpose, &createdAt); err != nil {
		return domain.TravelEntry{}, err
	}

	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return domain.TravelEntry{}, fmt.Errorf("id %q: %w", id, err)
	}
	if e.EntryDate, err = time.Parse(domain.DateLayout, date); err != nil {
		return domain.TravelEntry{}, fmt.Errorf("entry_date %q: %w", date, err)
	}
	if e.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return domain.TravelEntry{}, fmt.Errorf("created_at %q: %w", createdAt, err)
	}
	return e, nil
}
