package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
)

type ticketHistoryRepository struct {
	q Querier
}

// NewTicketHistoryRepository builds the repository.
func NewTicketHistoryRepository(q Querier) TicketHistoryRepository {
	return &ticketHistoryRepository{q: q}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, user_id, action, old_value, new_value, comment, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.q.Exec(ctx, query,
		entry.ID,
		entry.TicketID,
		entry.UserID,
		entry.Action,
		entry.OldValue,
		entry.NewValue,
		entry.Comment,
		entry.CreatedAt,
	)
	return err
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, ticket_id, user_id, action, old_value, new_value, comment, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (r *ticketHistoryRepository) ListByActionAndNewValue(ctx context.Context, action domain.ActionKind, newValue string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, ticket_id, user_id, action, old_value, new_value, comment, created_at
        FROM ticket_history WHERE action=$1 AND new_value=$2 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, action, newValue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func scanHistory(rows pgx.Rows) ([]domain.HistoryEntry, error) {
	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.UserID,
			&entry.Action,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
