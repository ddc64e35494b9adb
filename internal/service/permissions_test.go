package service

import (
	"fmt"
	"testing"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// TestCanTransition_Exhaustive enumerates every (role, from, to) triple and
// checks it against the full expected permission table. There are no
// wildcards: any triple not listed here must be denied.
func TestCanTransition_Exhaustive(t *testing.T) {
	type triple struct {
		role domain.Role
		from domain.TicketStatus
		to   domain.TicketStatus
	}

	allowed := map[triple]bool{
		{domain.RoleAgent, domain.TicketStatusOpen, domain.TicketStatusInProgress}:       true,
		{domain.RoleAgent, domain.TicketStatusInProgress, domain.TicketStatusResolved}:   true,
		{domain.RoleAgent, domain.TicketStatusResolved, domain.TicketStatusClosed}:       true,
		{domain.RoleManager, domain.TicketStatusOpen, domain.TicketStatusInProgress}:     true,
		{domain.RoleManager, domain.TicketStatusInProgress, domain.TicketStatusResolved}: true,
		{domain.RoleManager, domain.TicketStatusResolved, domain.TicketStatusInProgress}: true,
		{domain.RoleManager, domain.TicketStatusResolved, domain.TicketStatusClosed}:     true,
		{domain.RoleRequester, domain.TicketStatusResolved, domain.TicketStatusInProgress}: true,
		{domain.RoleRequester, domain.TicketStatusResolved, domain.TicketStatusClosed}:    true,
	}

	roles := []domain.Role{domain.RoleRequester, domain.RoleAgent, domain.RoleManager}
	statuses := []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	}

	for _, role := range roles {
		for _, from := range statuses {
			for _, to := range statuses {
				name := fmt.Sprintf("%s_%s_to_%s", role, from, to)
				t.Run(name, func(t *testing.T) {
					want := allowed[triple{role, from, to}]
					got := CanTransition(role, from, to)
					if got != want {
						t.Errorf("CanTransition(%s, %s, %s) = %v, want %v", role, from, to, got, want)
					}
				})
			}
		}
	}
}

// Closed is terminal: no role has any outgoing transition from it.
func TestCanTransition_ClosedIsTerminal(t *testing.T) {
	roles := []domain.Role{domain.RoleRequester, domain.RoleAgent, domain.RoleManager}
	statuses := []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	}
	for _, role := range roles {
		for _, to := range statuses {
			if CanTransition(role, domain.TicketStatusClosed, to) {
				t.Errorf("closed must be terminal, but %s may move closed to %s", role, to)
			}
		}
	}
}

func TestCanTransition_UnknownInputs(t *testing.T) {
	if CanTransition("superuser", domain.TicketStatusOpen, domain.TicketStatusInProgress) {
		t.Error("unknown role must be denied")
	}
	if CanTransition(domain.RoleAgent, "archived", domain.TicketStatusClosed) {
		t.Error("unknown from-status must be denied")
	}
	if CanTransition(domain.RoleAgent, domain.TicketStatusOpen, "archived") {
		t.Error("unknown to-status must be denied")
	}
}
