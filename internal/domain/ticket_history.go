package domain

import "time"

// ActionKind captures what a history entry records.
type ActionKind string

const (
	ActionTicketCreated ActionKind = "ticket_created"
	ActionStatusChange  ActionKind = "status_change"
	ActionCommentAdded  ActionKind = "comment_added"
)

// HistoryEntry is an immutable audit trail record. OldValue and NewValue are
// populated only for status changes, Comment only for comments. Entries are
// never edited or deleted; ordered by CreatedAt they reconstruct every status
// a ticket ever held.
type HistoryEntry struct {
	ID        string
	TicketID  string
	UserID    string
	Action    ActionKind
	OldValue  *string
	NewValue  *string
	Comment   *string
	CreatedAt time.Time
}
