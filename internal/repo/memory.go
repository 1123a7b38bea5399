package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/mileage-log/internal/domain"
)

// MemoryEntryRepo is an in-memory implementation of EntryRepo for local
// development and tests. It is safe for concurrent use.
type MemoryEntryRepo struct {
	mu      sync.RWMutex
	entries []domain.TravelEntry // insertion order
	now     func() time.Time
}

// NewMemoryEntryRepo returns an empty in-memory repo.
func NewMemoryEntryRepo() *MemoryEntryRepo {
	return &MemoryEntryRepo{
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ EntryRepo = (*MemoryEntryRepo)(nil)

func (r *MemoryEntryRepo) Create(ctx context.Context, userID string, in domain.TravelEntryInput) (domain.TravelEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.TravelEntry{}, fmt.Errorf("repo.MemoryEntryRepo.Create: %w", err)
	}
	e := domain.TravelEntry{
		ID:        uuid.New(),
		UserID:    userID,
		EntryDate: in.EntryDate,
		Trip:      in.Trip,
		Miles:     in.Miles,
		Purpose:   in.Purpose,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *MemoryEntryRepo) ListByRange(ctx context.Context, userID string, rng domain.MonthRange) ([]domain.TravelEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemoryEntryRepo.ListByRange: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TravelEntry, 0)
	for _, e := range r.entries {
		if e.UserID == userID && rng.Contains(e.EntryDate) {
			out = append(out, e)
		}
	}
	// Stable: equal dates keep insertion (creation) order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryDate.Before(out[j].EntryDate)
	})
	return out, nil
}

func (r *MemoryEntryRepo) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("repo.MemoryEntryRepo.Delete: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == id && e.UserID == userID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("repo.MemoryEntryRepo.Delete: %w", domain.ErrNotFound)
}
