// Package store holds the month-scoped entry cache for one user session.
//
// A Store is the single source of truth for the entries a client currently
// sees: it loads one month from an EntryRepo, merges successful inserts,
// drops successful deletes, and publishes a Snapshot to subscribers after
// every change. It never retries and never holds its lock across a
// repository call; callers that want one mutation at a time serialize
// themselves.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/mileage-log/internal/domain"
	"github.com/pkordes/mileage-log/internal/repo"
)

// Snapshot is the state published to observers.
type Snapshot struct {
	Month      domain.Month
	Entries    []domain.TravelEntry
	TotalMiles float64
	// Err is set when the snapshot follows a failed load.
	Err error
}

// Observer receives every published Snapshot. Observers run synchronously
// on the goroutine that changed the store and must not call back into it.
type Observer func(Snapshot)

// Store caches one user's entries for one month.
type Store struct {
	repo   repo.EntryRepo
	userID string
	month  domain.Month
	rng    domain.MonthRange

	mu        sync.Mutex
	entries   []domain.TravelEntry
	observers map[int]Observer
	nextObs   int
}

// New returns an empty store for userID and month. An empty userID means the
// caller is not signed in: loads yield nothing and mutations fail.
func New(r repo.EntryRepo, userID string, month domain.Month) *Store {
	return &Store{
		repo:      r,
		userID:    userID,
		month:     month,
		rng:       month.Range(),
		entries:   []domain.TravelEntry{},
		observers: make(map[int]Observer),
	}
}

// Month returns the month this store is scoped to.
func (s *Store) Month() domain.Month { return s.month }

// Range returns the inclusive day range of the store's month.
func (s *Store) Range() domain.MonthRange { return s.rng }

// Subscribe registers o and returns a function that unregisters it.
// The returned function is safe to call more than once.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Load replaces the cached set with the month's entries from the repository,
// ordered by entry date. On failure the cached set is emptied and the error
// wraps domain.ErrLoad.
func (s *Store) Load(ctx context.Context) ([]domain.TravelEntry, error) {
	if s.userID == "" {
		s.replace([]domain.TravelEntry{}, nil)
		return []domain.TravelEntry{}, nil
	}

	entries, err := s.repo.ListByRange(ctx, s.userID, s.rng)
	if err != nil {
		err = fmt.Errorf("store.Store.Load: %w: %w", domain.ErrLoad, err)
		s.replace([]domain.TravelEntry{}, err)
		return nil, err
	}
	if entries == nil {
		entries = []domain.TravelEntry{}
	}
	s.replace(entries, nil)
	return s.Entries(), nil
}

// Add inserts a validated entry. On success the stored entry is merged into
// the cached set when its date falls inside the store's month. On failure the
// cached set is untouched and the error wraps domain.ErrMutation.
func (s *Store) Add(ctx context.Context, in domain.TravelEntryInput) (domain.TravelEntry, error) {
	if s.userID == "" {
		return domain.TravelEntry{}, fmt.Errorf("store.Store.Add: %w", domain.ErrUnauthenticated)
	}

	created, err := s.repo.Create(ctx, s.userID, in)
	if err != nil {
		return domain.TravelEntry{}, fmt.Errorf("store.Store.Add: %w: %w", domain.ErrMutation, err)
	}

	if s.rng.Contains(created.EntryDate) {
		s.mutate(func(entries []domain.TravelEntry) []domain.TravelEntry {
			return insertSorted(entries, created)
		})
	}
	return created, nil
}

// Remove deletes the entry with id. On success it is dropped from the cached
// set. On failure the cached set is untouched and the error wraps
// domain.ErrMutation (and domain.ErrNotFound when nothing matched).
// Removal is irreversible; callers confirm with the user before calling it.
func (s *Store) Remove(ctx context.Context, id uuid.UUID) error {
	if s.userID == "" {
		return fmt.Errorf("store.Store.Remove: %w", domain.ErrUnauthenticated)
	}

	if err := s.repo.Delete(ctx, s.userID, id); err != nil {
		return fmt.Errorf("store.Store.Remove: %w: %w", domain.ErrMutation, err)
	}

	s.mutate(func(entries []domain.TravelEntry) []domain.TravelEntry {
		out := entries[:0:0]
		for _, e := range entries {
			if e.ID != id {
				out = append(out, e)
			}
		}
		return out
	})
	return nil
}

// Entries returns a copy of the cached, date-ordered entries.
func (s *Store) Entries() []domain.TravelEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TravelEntry{}, s.entries...)
}

// TotalMiles sums the miles of the cached entries.
func (s *Store) TotalMiles() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SumMiles(s.entries)
}

// Snapshot returns the current state without publishing it.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(nil)
}

func (s *Store) replace(entries []domain.TravelEntry, loadErr error) {
	s.mu.Lock()
	s.entries = entries
	snap, observers := s.snapshotLocked(loadErr), s.observerList()
	s.mu.Unlock()
	publish(snap, observers)
}

func (s *Store) mutate(fn func([]domain.TravelEntry) []domain.TravelEntry) {
	s.mu.Lock()
	s.entries = fn(s.entries)
	snap, observers := s.snapshotLocked(nil), s.observerList()
	s.mu.Unlock()
	publish(snap, observers)
}

func (s *Store) snapshotLocked(err error) Snapshot {
	return Snapshot{
		Month:      s.month,
		Entries:    append([]domain.TravelEntry{}, s.entries...),
		TotalMiles: domain.SumMiles(s.entries),
		Err:        err,
	}
}

// observerList copies the observers in subscription order. Caller holds mu.
func (s *Store) observerList() []Observer {
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Observer, len(ids))
	for i, id := range ids {
		out[i] = s.observers[id]
	}
	return out
}

func publish(snap Snapshot, observers []Observer) {
	for _, o := range observers {
		o(snap)
	}
}

// insertSorted places e after every entry with the same or an earlier date,
// so equal dates keep their insertion order.
func insertSorted(entries []domain.TravelEntry, e domain.TravelEntry) []domain.TravelEntry {
	key := e.DateString()
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].DateString() > key
	})
	out := make([]domain.TravelEntry, 0, len(entries)+1)
	out = append(out, entries[:i]...)
	out = append(out, e)
	return append(out, entries[i:]...)
}
