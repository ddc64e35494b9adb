package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = pgx.ErrNoRows

// Querier is the query surface shared by *pgxpool.Pool and pgx.Tx, letting
// the same repository code run inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TicketFilter captures ticket listing parameters. Limit 0 applies the
// default page size; a negative Limit disables pagination.
type TicketFilter struct {
	Statuses    []domain.TicketStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// Create persists the ticket together with its custom field values.
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// UpdateStatus performs a compare-and-swap on the row version: the
	// update applies only when the stored version equals expectedVersion,
	// and the new version is returned. ErrNotFound signals that no row
	// matched, i.e. the ticket was modified concurrently (or deleted).
	UpdateStatus(ctx context.Context, id string, newStatus domain.TicketStatus, expectedVersion int) (int, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByStatuses(ctx context.Context, statuses []domain.TicketStatus) (int, error)
	// CountCreatedSince counts tickets created at or after the given
	// instant; the boundary itself is inside the window.
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// TicketHistoryRepository stores audit entries. The trail is append-only: no
// update or delete is exposed.
type TicketHistoryRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error)
	// ListByActionAndNewValue returns matching entries across all tickets
	// ordered by created_at ascending, oldest first.
	ListByActionAndNewValue(ctx context.Context, action domain.ActionKind, newValue string) ([]domain.HistoryEntry, error)
}

// CategoryRepository reads category configuration, including field
// definitions. Category management lives in an external configuration store.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// UserRepository reads users provisioned by the identity layer.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Repos bundles the repositories sharing one querier.
type Repos struct {
	Tickets    TicketRepository
	History    TicketHistoryRepository
	Categories CategoryRepository
	Users      UserRepository
}

// Store provides repository access plus a unit-of-work boundary. Everything
// executed inside WithinTx commits or rolls back as one transaction; the
// lifecycle engine relies on this to keep ticket updates and their history
// entries in equal commit fate.
type Store interface {
	Repos() Repos
	WithinTx(ctx context.Context, fn func(Repos) error) error
}
