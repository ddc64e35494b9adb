package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/sla"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// minCommentLength is the policy-level floor for comment text.
const minCommentLength = 5

// TicketService owns the ticket lifecycle: creation, status transitions and
// comments. Every mutation and its audit entry are written as one unit of
// work; concurrent status changes against the same ticket are serialized by
// the row-version compare-and-swap.
type TicketService struct {
	store      repository.Store
	categories repository.CategoryRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store repository.Store
	// CategoryRepo is the read-only category source, typically wrapped by
	// the redis cache.
	CategoryRepo repository.CategoryRepository
	Dispatcher   events.Dispatcher
	// Now overrides the time source; defaults to time.Now.
	Now func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		store:      deps.Store,
		categories: deps.CategoryRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// CustomFieldValueInput pairs a category field definition with its value.
type CustomFieldValueInput struct {
	CustomFieldID string
	Value         string
}

// TicketCreateInput describes ticket creation payload. RequesterID is the
// authenticated caller's identity, supplied explicitly.
type TicketCreateInput struct {
	Title             string
	Description       string
	CategoryID        string
	RequesterID       string
	CustomFieldValues []CustomFieldValueInput
}

// CreateTicket creates a ticket in status open at version 1, snapshots the
// category name, stamps both SLA targets from the creation instant, and
// records the ticket_created audit entry in the same transaction.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, err
	}

	values, err := bindFieldValues(category, input.CustomFieldValues)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:                     uuid.NewString(),
		Title:                  title,
		Description:            description,
		Status:                 domain.TicketStatusOpen,
		Version:                domain.InitialVersion,
		RequesterID:            input.RequesterID,
		CategoryID:             category.ID,
		CategoryNameSnapshot:   category.Name,
		SLAFirstResponseTarget: sla.Target(now, category.SLAFirstResponseHours),
		SLAResolutionTarget:    sla.Target(now, category.SLAResolutionHours),
		CreatedAt:              now,
	}
	for i := range values {
		values[i].TicketID = ticket.ID
	}
	ticket.CustomFieldValues = values

	err = s.store.WithinTx(ctx, func(r repository.Repos) error {
		if _, err := r.Users.GetByID(ctx, input.RequesterID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("requester", map[string]any{"user_id": input.RequesterID})
			}
			return err
		}
		if err := r.Tickets.Create(ctx, ticket); err != nil {
			return err
		}
		return r.History.Create(ctx, &domain.HistoryEntry{
			ID:        uuid.NewString(),
			TicketID:  ticket.ID,
			UserID:    input.RequesterID,
			Action:    domain.ActionTicketCreated,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    domain.UserRef{ID: input.RequesterID, Role: domain.RoleRequester},
		Payload: events.TicketCreatedPayload{
			CategoryID:           ticket.CategoryID,
			CategoryNameSnapshot: ticket.CategoryNameSnapshot,
			Title:                ticket.Title,
			SLAResolutionTarget:  ticket.SLAResolutionTarget,
		},
	})
	return ticket, nil
}

// ChangeStatus moves a ticket to newStatus on behalf of actor. The permission
// matrix is consulted first, then the caller's expectedVersion is compared to
// the stored one; a mismatch is a conflict and nothing is written. On success
// the row update and the status_change history entry commit together and the
// returned ticket carries the incremented version for the caller's next write.
func (s *TicketService) ChangeStatus(ctx context.Context, ticketID string, newStatus domain.TicketStatus, expectedVersion int, actor domain.UserRef) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown ticket status %q", newStatus), nil)
	}

	var updated *domain.Ticket
	var oldStatus domain.TicketStatus
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		ticket, err := r.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}

		if !CanTransition(actor.Role, ticket.Status, newStatus) {
			return apperrors.NewForbidden(fmt.Sprintf("role %q may not change status from %q to %q", actor.Role, ticket.Status, newStatus))
		}
		if expectedVersion != ticket.Version {
			return versionConflict(expectedVersion, ticket.Version)
		}

		version, err := r.Tickets.UpdateStatus(ctx, ticketID, newStatus, expectedVersion)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// the row moved between our read and the swap
				return versionConflict(expectedVersion, ticket.Version)
			}
			return err
		}

		oldStatus = ticket.Status
		old := string(ticket.Status)
		next := string(newStatus)
		if err := r.History.Create(ctx, &domain.HistoryEntry{
			ID:        uuid.NewString(),
			TicketID:  ticket.ID,
			UserID:    actor.ID,
			Action:    domain.ActionStatusChange,
			OldValue:  &old,
			NewValue:  &next,
			CreatedAt: s.now(),
		}); err != nil {
			return err
		}

		ticket.Status = newStatus
		ticket.Version = version
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: updated.ID,
		Actor:    actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: updated.Status,
			Version:   updated.Version,
		},
	})
	return updated, nil
}

// AddComment appends a comment_added history entry. Any role may comment on
// any ticket in any status; the ticket row and its version are untouched, so
// no optimistic-lock check applies.
func (s *TicketService) AddComment(ctx context.Context, ticketID, text string, actor domain.UserRef) (*domain.HistoryEntry, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minCommentLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("comment must be at least %d characters", minCommentLength), nil)
	}

	entry := &domain.HistoryEntry{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Action:    domain.ActionCommentAdded,
		Comment:   &text,
		CreatedAt: s.now(),
	}
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		ticket, err := r.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		entry.TicketID = ticket.ID
		return r.History.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: entry.TicketID,
		Actor:    actor,
		Payload: events.TicketCommentAddedPayload{
			HistoryEntryID: entry.ID,
			Preview:        stringPreview(text, 120),
		},
	})
	return entry, nil
}

// GetTicket returns a ticket with its full audit trail.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, []domain.HistoryEntry, error) {
	repos := s.store.Repos()
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, err
	}
	history, err := repos.History.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, history, nil
}

// ListTickets returns tickets matching the filter, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.store.Repos().Tickets.ListWithFilter(ctx, filter)
}

// RemoveTickets is the administrative bulk delete. It is restricted to
// managers and sits outside the lifecycle audit invariants: rows and their
// children are removed without a terminating history entry.
func (s *TicketService) RemoveTickets(ctx context.Context, ids []string, actor domain.UserRef) (int64, error) {
	if actor.Role != domain.RoleManager {
		return 0, apperrors.NewForbidden("bulk ticket deletion requires the manager role")
	}
	var removed int64
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		removed, err = r.Tickets.DeleteByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func bindFieldValues(category *domain.Category, inputs []CustomFieldValueInput) ([]domain.CustomFieldValue, error) {
	provided := make(map[string]string, len(inputs))
	values := make([]domain.CustomFieldValue, 0, len(inputs))
	for _, in := range inputs {
		field, ok := category.Field(in.CustomFieldID)
		if !ok {
			return nil, apperrors.NewValidationError("unknown custom field for category", map[string]any{
				"custom_field_id": in.CustomFieldID,
				"category_id":     category.ID,
			})
		}
		provided[field.ID] = in.Value
		values = append(values, domain.CustomFieldValue{
			ID:            uuid.NewString(),
			CustomFieldID: field.ID,
			Value:         in.Value,
		})
	}
	for _, field := range category.CustomFields {
		if !field.Required {
			continue
		}
		if strings.TrimSpace(provided[field.ID]) == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("required field %q missing", field.Label), map[string]any{
				"custom_field_id": field.ID,
			})
		}
	}
	return values, nil
}

func versionConflict(expected, current int) error {
	return apperrors.NewConflict("ticket was modified by someone else; refresh and retry", map[string]any{
		"expected_version": expected,
		"current_version":  current,
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// stringPreview truncates on rune boundaries so multi-byte text is never
// split mid-character.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
