// Package service contains the business logic for the Mileage Log API.
// Services validate inputs and drive a per-request store.Store over the
// entry repository. No SQL lives here: services depend on repo interfaces,
// not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/mileage-log/internal/domain"
	"github.com/pkordes/mileage-log/internal/repo"
	"github.com/pkordes/mileage-log/internal/store"
)

// Exporter renders an ordered month of entries into a downloadable artifact.
type Exporter interface {
	Export(entries []domain.TravelEntry, displayName, month string) (domain.ExportArtifact, error)
}

// EntryService implements the month view, entry mutations and export.
type EntryService struct {
	repo     repo.EntryRepo
	exporter Exporter
	now      func() time.Time
	log      *slog.Logger
}

// Option customizes an EntryService.
type Option func(*EntryService)

// WithClock overrides the clock used to pick the current month.
func WithClock(now func() time.Time) Option {
	return func(s *EntryService) { s.now = now }
}

// WithLogger overrides the logger that receives store snapshots.
func WithLogger(l *slog.Logger) Option {
	return func(s *EntryService) { s.log = l }
}

// NewEntryService constructs an EntryService backed by the provided repo and
// exporter.
func NewEntryService(r repo.EntryRepo, x Exporter, opts ...Option) *EntryService {
	s := &EntryService{
		repo:     r,
		exporter: x,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CurrentMonth returns the month containing the service clock's now.
func (s *EntryService) CurrentMonth() domain.Month {
	return domain.CurrentMonth(s.now())
}

// List loads one month of the user's entries with their total.
func (s *EntryService) List(ctx context.Context, userID string, month domain.Month) (domain.MonthSummary, error) {
	st := s.session(userID, month)
	entries, err := st.Load(ctx)
	if err != nil {
		return domain.MonthSummary{}, fmt.Errorf("service.EntryService.List: %w", err)
	}
	return domain.MonthSummary{
		Month:      month,
		Range:      st.Range(),
		Entries:    entries,
		TotalMiles: domain.SumMiles(entries),
	}, nil
}

// Create validates raw and stores it for userID. Validation failures are
// returned as domain.ValidationErrors, which match domain.ErrValidation.
func (s *EntryService) Create(ctx context.Context, userID string, raw domain.RawEntryInput) (domain.TravelEntry, error) {
	in, err := domain.ValidateEntry(raw)
	if err != nil {
		return domain.TravelEntry{}, err
	}

	st := s.session(userID, domain.CurrentMonth(in.EntryDate))
	created, err := st.Add(ctx, in)
	if err != nil {
		return domain.TravelEntry{}, fmt.Errorf("service.EntryService.Create: %w", err)
	}
	return created, nil
}

// Delete permanently removes one of the user's entries.
func (s *EntryService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	st := s.session(userID, s.CurrentMonth())
	if err := st.Remove(ctx, id); err != nil {
		return fmt.Errorf("service.EntryService.Delete: %w", err)
	}
	return nil
}

// Export loads the month through a store and fills the spreadsheet template
// with the ordered entries and the caller's display name.
func (s *EntryService) Export(ctx context.Context, ident domain.Identity, month domain.Month) (domain.ExportArtifact, error) {
	st := s.session(ident.UserID, month)
	entries, err := st.Load(ctx)
	if err != nil {
		return domain.ExportArtifact{}, fmt.Errorf("service.EntryService.Export: %w", err)
	}

	artifact, err := s.exporter.Export(entries, ident.DisplayName, month.String())
	if err != nil {
		return domain.ExportArtifact{}, fmt.Errorf("service.EntryService.Export: %w", err)
	}
	s.log.InfoContext(ctx, "export generated",
		"user_id", ident.UserID,
		"month", month.String(),
		"entries", len(entries),
		"bytes", len(artifact.Content),
	)
	return artifact, nil
}

// session builds the store for one request and logs every snapshot it
// publishes at debug level.
func (s *EntryService) session(userID string, month domain.Month) *store.Store {
	st := store.New(s.repo, userID, month)
	st.Subscribe(func(snap store.Snapshot) {
		attrs := []any{
			"user_id", userID,
			"month", snap.Month.String(),
			"entries", len(snap.Entries),
			"total_miles", snap.TotalMiles,
		}
		if snap.Err != nil {
			attrs = append(attrs, "error", snap.Err.Error())
		}
		s.log.Debug("entry store snapshot", attrs...)
	})
	return st
}
