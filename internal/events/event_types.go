package events

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
)

// Event represents a domain event emitted after a lifecycle operation
// committed.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	TicketID  string         `json:"ticket_id"`
	Actor     domain.UserRef `json:"actor"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   interface{}    `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CategoryID           string    `json:"category_id"`
	CategoryNameSnapshot string    `json:"category_name_snapshot"`
	Title                string    `json:"title"`
	SLAResolutionTarget  time.Time `json:"sla_resolution_target"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Version   int                 `json:"version"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	HistoryEntryID string `json:"history_entry_id"`
	Preview        string `json:"preview"`
}
