// Package memory provides an in-memory implementation of repository.Store.
// It backs the service when no Postgres DSN is configured and gives the
// lifecycle tests a real unit-of-work boundary: writes made inside a failed
// transaction are rolled back by restoring a snapshot.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
)

// Store keeps all state behind one mutex; transactions serialize.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	tickets    map[string]*domain.Ticket
	history    []domain.HistoryEntry
	categories map[string]*domain.Category
	users      map[string]*domain.User
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{state: &state{
		tickets:    make(map[string]*domain.Ticket),
		categories: make(map[string]*domain.Category),
		users:      make(map[string]*domain.User),
	}}
}

// SeedUser registers a user for lookups.
func (s *Store) SeedUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.state.users[u.ID] = &u
}

// SeedCategory registers a category for lookups.
func (s *Store) SeedCategory(category domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := category
	c.CustomFields = append([]domain.CustomField(nil), category.CustomFields...)
	s.state.categories[c.ID] = &c
}

// Repos returns repositories that lock per operation.
func (s *Store) Repos() repository.Repos {
	return reposFor(s, true)
}

// WithinTx runs fn under the store lock. On error the pre-transaction
// snapshot is restored, discarding every write fn made.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(reposFor(s, false)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func reposFor(s *Store, locking bool) repository.Repos {
	a := accessor{store: s, locking: locking}
	return repository.Repos{
		Tickets:    &ticketRepo{a},
		History:    &historyRepo{a},
		Categories: &categoryRepo{a},
		Users:      &userRepo{a},
	}
}

type accessor struct {
	store   *Store
	locking bool
}

func (a accessor) with(fn func(*state) error) error {
	if a.locking {
		a.store.mu.Lock()
		defer a.store.mu.Unlock()
	}
	return fn(a.store.state)
}

func (st *state) clone() *state {
	next := &state{
		tickets:    make(map[string]*domain.Ticket, len(st.tickets)),
		history:    append([]domain.HistoryEntry(nil), st.history...),
		categories: st.categories,
		users:      st.users,
	}
	for id, ticket := range st.tickets {
		next.tickets[id] = copyTicket(ticket)
	}
	return next
}

func copyTicket(ticket *domain.Ticket) *domain.Ticket {
	t := *ticket
	t.CustomFieldValues = append([]domain.CustomFieldValue(nil), ticket.CustomFieldValues...)
	return &t
}

type ticketRepo struct {
	a accessor
}

func (r *ticketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.a.with(func(st *state) error {
		st.tickets[ticket.ID] = copyTicket(ticket)
		return nil
	})
}

func (r *ticketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var found *domain.Ticket
	err := r.a.with(func(st *state) error {
		ticket, ok := st.tickets[id]
		if !ok {
			return repository.ErrNotFound
		}
		found = copyTicket(ticket)
		return nil
	})
	return found, err
}

func (r *ticketRepo) UpdateStatus(ctx context.Context, id string, newStatus domain.TicketStatus, expectedVersion int) (int, error) {
	var version int
	err := r.a.with(func(st *state) error {
		ticket, ok := st.tickets[id]
		if !ok || ticket.Version != expectedVersion {
			return repository.ErrNotFound
		}
		ticket.Status = newStatus
		ticket.Version++
		version = ticket.Version
		return nil
	})
	return version, err
}

func (r *ticketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	err := r.a.with(func(st *state) error {
		for _, ticket := range st.tickets {
			if !matches(ticket, filter) {
				continue
			}
			result = append(result, *copyTicket(ticket))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	limit := filter.Limit
	if limit == 0 {
		limit = 50
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *ticketRepo) CountByStatuses(ctx context.Context, statuses []domain.TicketStatus) (int, error) {
	count := 0
	err := r.a.with(func(st *state) error {
		for _, ticket := range st.tickets {
			for _, status := range statuses {
				if ticket.Status == status {
					count++
					break
				}
			}
		}
		return nil
	})
	return count, err
}

func (r *ticketRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	count := 0
	err := r.a.with(func(st *state) error {
		for _, ticket := range st.tickets {
			if !ticket.CreatedAt.Before(since) {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *ticketRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var removed int64
	err := r.a.with(func(st *state) error {
		doomed := make(map[string]bool, len(ids))
		for _, id := range ids {
			if _, ok := st.tickets[id]; ok {
				doomed[id] = true
				delete(st.tickets, id)
				removed++
			}
		}
		kept := st.history[:0]
		for _, entry := range st.history {
			if !doomed[entry.TicketID] {
				kept = append(kept, entry)
			}
		}
		st.history = kept
		return nil
	})
	return removed, err
}

func matches(ticket *domain.Ticket, filter repository.TicketFilter) bool {
	if len(filter.Statuses) > 0 {
		ok := false
		for _, status := range filter.Statuses {
			if ticket.Status == status {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

type historyRepo struct {
	a accessor
}

func (r *historyRepo) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	return r.a.with(func(st *state) error {
		st.history = append(st.history, *entry)
		return nil
	})
}

func (r *historyRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	var result []domain.HistoryEntry
	err := r.a.with(func(st *state) error {
		for _, entry := range st.history {
			if entry.TicketID == ticketID {
				result = append(result, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortHistory(result)
	return result, nil
}

func (r *historyRepo) ListByActionAndNewValue(ctx context.Context, action domain.ActionKind, newValue string) ([]domain.HistoryEntry, error) {
	var result []domain.HistoryEntry
	err := r.a.with(func(st *state) error {
		for _, entry := range st.history {
			if entry.Action != action || entry.NewValue == nil || *entry.NewValue != newValue {
				continue
			}
			result = append(result, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortHistory(result)
	return result, nil
}

func sortHistory(entries []domain.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

type categoryRepo struct {
	a accessor
}

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var found *domain.Category
	err := r.a.with(func(st *state) error {
		category, ok := st.categories[id]
		if !ok {
			return repository.ErrNotFound
		}
		c := *category
		c.CustomFields = append([]domain.CustomField(nil), category.CustomFields...)
		found = &c
		return nil
	})
	return found, err
}

func (r *categoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var result []domain.Category
	err := r.a.with(func(st *state) error {
		for _, category := range st.categories {
			c := *category
			c.CustomFields = append([]domain.CustomField(nil), category.CustomFields...)
			result = append(result, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type userRepo struct {
	a accessor
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var found *domain.User
	err := r.a.with(func(st *state) error {
		user, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		u := *user
		found = &u
		return nil
	})
	return found, err
}
