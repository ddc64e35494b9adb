package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
)

type ticketRepository struct {
	q Querier
}

// NewTicketRepository instantiates a Postgres-backed repository.
func NewTicketRepository(q Querier) TicketRepository {
	return &ticketRepository{q: q}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, status, version, requester_user_id, category_id,
                             category_name_snapshot, sla_first_response_target, sla_resolution_target, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	if _, err := r.q.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Version,
		ticket.RequesterID,
		ticket.CategoryID,
		ticket.CategoryNameSnapshot,
		ticket.SLAFirstResponseTarget,
		ticket.SLAResolutionTarget,
		ticket.CreatedAt,
	); err != nil {
		return err
	}

	const fieldQuery = `
        INSERT INTO ticket_custom_field_values (id, ticket_id, custom_field_id, value)
        VALUES ($1,$2,$3,$4)`
	for _, value := range ticket.CustomFieldValues {
		if _, err := r.q.Exec(ctx, fieldQuery, value.ID, value.TicketID, value.CustomFieldID, value.Value); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, status, version, requester_user_id, category_id,
               category_name_snapshot, sla_first_response_target, sla_resolution_target, created_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Version,
		&ticket.RequesterID,
		&ticket.CategoryID,
		&ticket.CategoryNameSnapshot,
		&ticket.SLAFirstResponseTarget,
		&ticket.SLAResolutionTarget,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}

	values, err := r.fieldValues(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.CustomFieldValues = values
	return &ticket, nil
}

// UpdateStatus swaps the status only when the stored version still equals
// expectedVersion, bumping the version in the same statement. A missed swap
// surfaces as ErrNotFound.
func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, newStatus domain.TicketStatus, expectedVersion int) (int, error) {
	const query = `
        UPDATE tickets SET status=$1, version=version+1
        WHERE id=$2 AND version=$3
        RETURNING version`
	var version int
	if err := r.q.QueryRow(ctx, query, newStatus, id, expectedVersion).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, title, description, status, version, requester_user_id, category_id,
                    category_name_snapshot, sla_first_response_target, sla_resolution_target, created_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))
	// Limit < 0 disables pagination; reporter scans need the full set
	if filter.Limit >= 0 {
		limit := filter.Limit
		if limit == 0 {
			limit = 50
		}
		query = fmt.Sprintf(`%s LIMIT %d OFFSET %d`, query, limit, offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountByStatuses(ctx context.Context, statuses []domain.TicketStatus) (int, error) {
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE status IN (%s)`, strings.Join(placeholders, ","))
	var count int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE created_at >= $1`
	var count int
	if err := r.q.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// child rows are removed by ON DELETE CASCADE
	const query = `DELETE FROM tickets WHERE id = ANY($1)`
	cmd, err := r.q.Exec(ctx, query, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) fieldValues(ctx context.Context, ticketID string) ([]domain.CustomFieldValue, error) {
	const query = `
        SELECT id, ticket_id, custom_field_id, value
        FROM ticket_custom_field_values WHERE ticket_id=$1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CustomFieldValue
	for rows.Next() {
		var value domain.CustomFieldValue
		if err := rows.Scan(&value.ID, &value.TicketID, &value.CustomFieldID, &value.Value); err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, rows.Err()
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Version,
			&ticket.RequesterID,
			&ticket.CategoryID,
			&ticket.CategoryNameSnapshot,
			&ticket.SLAFirstResponseTarget,
			&ticket.SLAResolutionTarget,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
