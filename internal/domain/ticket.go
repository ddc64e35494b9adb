package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether the value is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// InitialVersion is the optimistic-concurrency token assigned at creation.
const InitialVersion = 1

// Ticket is the aggregate for support requests. Version increments by one on
// every accepted status change; RequesterID, CategoryID, the SLA targets and
// the category name snapshot are write-once.
type Ticket struct {
	ID                     string
	Title                  string
	Description            string
	Status                 TicketStatus
	Version                int
	RequesterID            string
	CategoryID             string
	CategoryNameSnapshot   string
	SLAFirstResponseTarget time.Time
	SLAResolutionTarget    time.Time
	CustomFieldValues      []CustomFieldValue
	CreatedAt              time.Time
}

// CustomFieldValue stores the value captured for one of the category's field
// definitions at ticket-creation time.
type CustomFieldValue struct {
	ID            string
	TicketID      string
	CustomFieldID string
	Value         string
}

// Open reports whether the ticket still counts toward the open-ticket KPI.
func (t *Ticket) Open() bool {
	return t.Status == TicketStatusOpen || t.Status == TicketStatusInProgress
}

// Settled reports whether the ticket participates in SLA compliance.
func (t *Ticket) Settled() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusClosed
}
