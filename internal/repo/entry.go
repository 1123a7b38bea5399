// Package repo contains all database access logic for the Mileage Log API.
// EntryRepo is the single persistence port; postgres, sqlite and in-memory
// implementations live side by side. No business logic lives here, only SQL
// and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/mileage-log/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EntryRepo defines the persistence operations for travel entries.
// Every operation is scoped by userID; an entry owned by another user is
// indistinguishable from a missing one.
type EntryRepo interface {
	// Create inserts a new entry owned by userID and returns the persisted
	// record with id and created_at populated by the backend.
	Create(ctx context.Context, userID string, in domain.TravelEntryInput) (domain.TravelEntry, error)

	// ListByRange returns the user's entries whose entry_date lies in the
	// inclusive range, ordered by entry_date ascending (ties by created_at).
	ListByRange(ctx context.Context, userID string, r domain.MonthRange) ([]domain.TravelEntry, error)

	// Delete removes one of the user's entries.
	// Returns domain.ErrNotFound if the user owns no entry with that id.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// pgEntryRepo is the Postgres implementation of EntryRepo.
type pgEntryRepo struct {
	db db
}

// NewEntryRepo constructs an EntryRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewEntryRepo(db db) EntryRepo {
	return &pgEntryRepo{db: db}
}

const entryColumns = `id, user_id, entry_date, trip, miles, purpose, created_at`

// Create inserts a new entry row and returns the full persisted record.
func (r *pgEntryRepo) Create(ctx context.Context, userID string, in domain.TravelEntryInput) (domain.TravelEntry, error) {
	const q = `
		INSERT INTO travel_entries (user_id, entry_date, trip, miles, purpose)
		VALUES (@user_id, @entry_date, @trip, @miles, @purpose)
		RETURNING ` + entryColumns

	args := pgx.NamedArgs{
		"user_id":    userID,
		"entry_date": in.EntryDate,
		"trip":       in.Trip,
		"miles":      in.Miles,
		"purpose":    in.Purpose,
	}

	result, err := scanEntry(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TravelEntry{}, fmt.Errorf("repo.EntryRepo.Create: %w", err)
	}
	return result, nil
}

// ListByRange returns the user's entries within the inclusive date range.
func (r *pgEntryRepo) ListByRange(ctx context.Context, userID string, rng domain.MonthRange) ([]domain.TravelEntry, error) {
	const q = `
		SELECT ` + entryColumns + `
		FROM travel_entries
		WHERE user_id = @user_id
		  AND entry_date >= @start
		  AND entry_date <= @end
		ORDER BY entry_date ASC, created_at ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"start":   rng.Start,
		"end":     rng.End,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.ListByRange: %w", err)
	}
	defer rows.Close()

	entries := []domain.TravelEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EntryRepo.ListByRange: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.ListByRange: rows: %w", err)
	}
	return entries, nil
}

// Delete removes an entry by primary key, scoped to its owner.
func (r *pgEntryRepo) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	const q = `DELETE FROM travel_entries WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.EntryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EntryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanEntry to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry maps a single database row into a domain.TravelEntry.
func scanEntry(s scanner) (domain.TravelEntry, error) {
	var (
		e    domain.TravelEntry
		id   pgtype.UUID
		date pgtype.Date
	)

	err := s.Scan(&id, &e.UserID, &date, &e.Trip, &e.Miles, &e.Purpose, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TravelEntry{}, domain.ErrNotFound
		}
		return domain.TravelEntry{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.EntryDate = date.Time
	return e, nil
}
