package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// CreateTicketRequest payload. RequesterID is optional and defaults to the
// authenticated caller.
type CreateTicketRequest struct {
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
	CategoryID        string                    `json:"category_id"`
	RequesterID       string                    `json:"requester_id,omitempty"`
	CustomFieldValues []CustomFieldValueRequest `json:"custom_field_values"`
}

// CustomFieldValueRequest pairs a field definition with its value.
type CustomFieldValueRequest struct {
	CustomFieldID string `json:"custom_field_id"`
	Value         string `json:"value"`
}

// ChangeStatusRequest payload. Version is the optimistic-concurrency token
// the client read; a stale value yields 409.
type ChangeStatusRequest struct {
	NewStatus domain.TicketStatus `json:"new_status"`
	Version   int                 `json:"version"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Comment string `json:"comment"`
}

// DeleteTicketsRequest payload for the administrative bulk delete.
type DeleteTicketsRequest struct {
	IDs []string `json:"ids"`
}

// TicketSummary response.
type TicketSummary struct {
	ID                   string              `json:"id"`
	Title                string              `json:"title"`
	Status               domain.TicketStatus `json:"status"`
	Version              int                 `json:"version"`
	RequesterID          string              `json:"requester_id"`
	CategoryID           string              `json:"category_id"`
	CategoryNameSnapshot string              `json:"category_name_snapshot"`
	SLAResolutionTarget  time.Time           `json:"sla_resolution_target"`
	CreatedAt            time.Time           `json:"created_at"`
}

// TicketDetailResponse provides full ticket info including the audit trail.
type TicketDetailResponse struct {
	ID                     string                     `json:"id"`
	Title                  string                     `json:"title"`
	Description            string                     `json:"description"`
	Status                 domain.TicketStatus        `json:"status"`
	Version                int                        `json:"version"`
	RequesterID            string                     `json:"requester_id"`
	CategoryID             string                     `json:"category_id"`
	CategoryNameSnapshot   string                     `json:"category_name_snapshot"`
	SLAFirstResponseTarget time.Time                  `json:"sla_first_response_target"`
	SLAResolutionTarget    time.Time                  `json:"sla_resolution_target"`
	CustomFieldValues      []CustomFieldValueResponse `json:"custom_field_values"`
	History                []HistoryEntryResponse     `json:"history"`
	CreatedAt              time.Time                  `json:"created_at"`
}

// CustomFieldValueResponse metadata.
type CustomFieldValueResponse struct {
	CustomFieldID string `json:"custom_field_id"`
	Value         string `json:"value"`
}

// HistoryEntryResponse represents one audit trail entry.
type HistoryEntryResponse struct {
	ID        string            `json:"id"`
	Action    domain.ActionKind `json:"action"`
	OldValue  *string           `json:"old_value,omitempty"`
	NewValue  *string           `json:"new_value,omitempty"`
	Comment   *string           `json:"comment,omitempty"`
	UserID    string            `json:"user_id"`
	CreatedAt time.Time         `json:"created_at"`
}
