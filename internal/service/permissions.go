package service

import "github.com/spec-kit/servicedesk/internal/domain"

// statusTransitions is the full permission matrix for status changes, keyed
// by role and current status. Every allowed (role, from, to) triple is listed
// here explicitly; anything absent is denied. closed has no outgoing row for
// any role.
var statusTransitions = map[domain.Role]map[domain.TicketStatus][]domain.TicketStatus{
	domain.RoleAgent: {
		domain.TicketStatusOpen:       {domain.TicketStatusInProgress},
		domain.TicketStatusInProgress: {domain.TicketStatusResolved},
		domain.TicketStatusResolved:   {domain.TicketStatusClosed},
	},
	domain.RoleManager: {
		domain.TicketStatusOpen:       {domain.TicketStatusInProgress},
		domain.TicketStatusInProgress: {domain.TicketStatusResolved},
		domain.TicketStatusResolved:   {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	},
	domain.RoleRequester: {
		domain.TicketStatusResolved: {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	},
}

// CanTransition reports whether the role may move a ticket between the given
// statuses.
func CanTransition(role domain.Role, from, to domain.TicketStatus) bool {
	for _, candidate := range statusTransitions[role][from] {
		if candidate == to {
			return true
		}
	}
	return false
}
