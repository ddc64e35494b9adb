package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/repository/memory"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	requesterID = "5a1a4f86-2a86-4f2b-9d8e-6f3d1c0a0001"
	agentID     = "5a1a4f86-2a86-4f2b-9d8e-6f3d1c0a0002"
	managerID   = "5a1a4f86-2a86-4f2b-9d8e-6f3d1c0a0003"

	categoryID      = "0b2b5e97-3b97-4c3c-8e9f-7a4e2d1b0001"
	fieldSystemID   = "0b2b5e97-3b97-4c3c-8e9f-7a4e2d1b0002"
	fieldSeverityID = "0b2b5e97-3b97-4c3c-8e9f-7a4e2d1b0003"
)

var (
	requesterRef = domain.UserRef{ID: requesterID, Role: domain.RoleRequester}
	agentRef     = domain.UserRef{ID: agentID, Role: domain.RoleAgent}
	managerRef   = domain.UserRef{ID: managerID, Role: domain.RoleManager}
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fixture struct {
	svc   *TicketService
	store *memory.Store
	clock *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedUser(domain.User{ID: requesterID, Name: "Ana", Email: "ana@example.com", Role: domain.RoleRequester})
	store.SeedUser(domain.User{ID: agentID, Name: "Carlos", Email: "carlos@example.com", Role: domain.RoleAgent})
	store.SeedUser(domain.User{ID: managerID, Name: "Maria", Email: "maria@example.com", Role: domain.RoleManager})
	store.SeedCategory(domain.Category{
		ID:                    categoryID,
		Name:                  "Hardware",
		SLAFirstResponseHours: 4,
		SLAResolutionHours:    8,
		CustomFields: []domain.CustomField{
			{ID: fieldSystemID, CategoryID: categoryID, Label: "Affected System", Type: domain.FieldTypeText, Required: true},
			{ID: fieldSeverityID, CategoryID: categoryID, Label: "Severity", Type: domain.FieldTypeSelect, Required: false},
		},
	})

	clock := &fakeClock{now: baseTime}
	svc := NewTicketService(TicketDependencies{
		Store:        store,
		CategoryRepo: store.Repos().Categories,
		Now:          clock.Now,
	})
	return &fixture{svc: svc, store: store, clock: clock}
}

func (f *fixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       "Laptop will not boot",
		Description: "Screen stays black after powering on.",
		CategoryID:  categoryID,
		RequesterID: requesterID,
		CustomFieldValues: []CustomFieldValueInput{
			{CustomFieldID: fieldSystemID, Value: "ThinkPad X1"},
		},
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	return ticket
}

func (f *fixture) history(t *testing.T, ticketID string) []domain.HistoryEntry {
	t.Helper()
	entries, err := f.store.Repos().History.ListByTicket(context.Background(), ticketID)
	if err != nil {
		t.Fatalf("ListByTicket: %v", err)
	}
	return entries
}

func (f *fixture) reload(t *testing.T, ticketID string) *domain.Ticket {
	t.Helper()
	ticket, err := f.store.Repos().Tickets.GetByID(context.Background(), ticketID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return ticket
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !apperrors.IsCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestCreateTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s, want open", ticket.Status)
	}
	if ticket.Version != domain.InitialVersion {
		t.Errorf("version = %d, want %d", ticket.Version, domain.InitialVersion)
	}
	if !ticket.CreatedAt.Equal(baseTime) {
		t.Errorf("created_at = %v, want %v", ticket.CreatedAt, baseTime)
	}
	if want := time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC); !ticket.SLAFirstResponseTarget.Equal(want) {
		t.Errorf("first response target = %v, want %v", ticket.SLAFirstResponseTarget, want)
	}
	if want := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC); !ticket.SLAResolutionTarget.Equal(want) {
		t.Errorf("resolution target = %v, want %v", ticket.SLAResolutionTarget, want)
	}
	if ticket.CategoryNameSnapshot != "Hardware" {
		t.Errorf("snapshot = %q, want Hardware", ticket.CategoryNameSnapshot)
	}
	if len(ticket.CustomFieldValues) != 1 || ticket.CustomFieldValues[0].TicketID != ticket.ID {
		t.Errorf("custom field values not bound to ticket: %+v", ticket.CustomFieldValues)
	}

	entries := f.history(t, ticket.ID)
	if len(entries) != 1 {
		t.Fatalf("history length = %d, want 1", len(entries))
	}
	if entries[0].Action != domain.ActionTicketCreated || entries[0].UserID != requesterID {
		t.Errorf("unexpected creation entry: %+v", entries[0])
	}
}

func TestCreateTicket_Failures(t *testing.T) {
	tests := []struct {
		name     string
		input    TicketCreateInput
		wantCode string
	}{
		{
			name: "unknown category",
			input: TicketCreateInput{
				Title:       "Printer jam",
				Description: "Paper stuck in tray two.",
				CategoryID:  "9e9e9e9e-0000-0000-0000-000000000000",
				RequesterID: requesterID,
			},
			wantCode: "NOT_FOUND",
		},
		{
			name: "unknown requester",
			input: TicketCreateInput{
				Title:       "Printer jam",
				Description: "Paper stuck in tray two.",
				CategoryID:  categoryID,
				RequesterID: "9e9e9e9e-0000-0000-0000-000000000001",
				CustomFieldValues: []CustomFieldValueInput{
					{CustomFieldID: fieldSystemID, Value: "HP LaserJet"},
				},
			},
			wantCode: "NOT_FOUND",
		},
		{
			name: "blank title",
			input: TicketCreateInput{
				Title:       "   ",
				Description: "Something broke.",
				CategoryID:  categoryID,
				RequesterID: requesterID,
			},
			wantCode: "VALIDATION_FAILED",
		},
		{
			name: "unknown custom field",
			input: TicketCreateInput{
				Title:       "Printer jam",
				Description: "Paper stuck in tray two.",
				CategoryID:  categoryID,
				RequesterID: requesterID,
				CustomFieldValues: []CustomFieldValueInput{
					{CustomFieldID: "9e9e9e9e-0000-0000-0000-000000000002", Value: "x"},
				},
			},
			wantCode: "VALIDATION_FAILED",
		},
		{
			name: "missing required field",
			input: TicketCreateInput{
				Title:       "Printer jam",
				Description: "Paper stuck in tray two.",
				CategoryID:  categoryID,
				RequesterID: requesterID,
			},
			wantCode: "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreateTicket(context.Background(), tt.input)
			assertCode(t, err, tt.wantCode)

			// a failed create leaves nothing behind, not even history
			tickets, err := f.svc.ListTickets(context.Background(), listAll())
			if err != nil {
				t.Fatalf("ListTickets: %v", err)
			}
			if len(tickets) != 0 {
				t.Errorf("failed create persisted %d tickets", len(tickets))
			}
		})
	}
}

func TestChangeStatus_Success(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, ticket.Version, agentRef)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s, want in_progress", updated.Status)
	}
	if updated.Version != ticket.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, ticket.Version+1)
	}

	entries := f.history(t, ticket.ID)
	if len(entries) != 2 {
		t.Fatalf("history length = %d, want 2", len(entries))
	}
	change := entries[1]
	if change.Action != domain.ActionStatusChange {
		t.Fatalf("action = %s, want status_change", change.Action)
	}
	if change.OldValue == nil || *change.OldValue != "open" {
		t.Errorf("old_value = %v, want open", change.OldValue)
	}
	if change.NewValue == nil || *change.NewValue != "in_progress" {
		t.Errorf("new_value = %v, want in_progress", change.NewValue)
	}
	if change.UserID != agentID {
		t.Errorf("user = %s, want agent", change.UserID)
	}
}

func TestChangeStatus_ForbiddenLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	// agent moves open -> in_progress, then tries the reverse edge which is
	// not in the table for any role
	updated, err := f.svc.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, 1, agentRef)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	_, err = f.svc.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusOpen, updated.Version, agentRef)
	assertCode(t, err, "FORBIDDEN")

	current := f.reload(t, ticket.ID)
	if current.Status != domain.TicketStatusInProgress || current.Version != 2 {
		t.Errorf("denied transition mutated state: status=%s version=%d", current.Status, current.Version)
	}
	if entries := f.history(t, ticket.ID); len(entries) != 2 {
		t.Errorf("denied transition wrote history: %d entries", len(entries))
	}
}

func TestChangeStatus_RequesterCannotStartWork(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	_, err := f.svc.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, ticket.Version, requesterRef)
	assertCode(t, err, "FORBIDDEN")
}

func TestChangeStatus_StaleVersionConflict(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	if _, err := f.svc.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, 1, agentRef); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}

	// the same stale token fails identically both times; no double apply
	for i := 0; i < 2; i++ {
		_, err := f.svc.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusResolved, 1, agentRef)
		assertCode(t, err, "CONFLICT")
	}

	current := f.reload(t, ticket.ID)
	if current.Status != domain.TicketStatusInProgress || current.Version != 2 {
		t.Errorf("conflict mutated state: status=%s version=%d", current.Status, current.Version)
	}
	if entries := f.history(t, ticket.ID); len(entries) != 2 {
		t.Errorf("conflict wrote history: %d entries", len(entries))
	}
}

func TestChangeStatus_ConcurrentEditorsOneWins(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	started, err := f.svc.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, ticket.Version, agentRef)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}

	// both editors read the ticket at the same version; each requests a
	// transition its role is allowed to make, so only the version guard
	// decides the outcome
	sharedVersion := started.Version

	first, err := f.svc.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusResolved, sharedVersion, agentRef)
	if err != nil {
		t.Fatalf("first writer: %v", err)
	}
	if first.Version != sharedVersion+1 {
		t.Errorf("first writer version = %d, want %d", first.Version, sharedVersion+1)
	}

	_, err = f.svc.ChangeStatus(context.Background(), ticket.ID, domain.TicketStatusInProgress, sharedVersion, managerRef)
	assertCode(t, err, "CONFLICT")

	current := f.reload(t, ticket.ID)
	if current.Status != domain.TicketStatusResolved || current.Version != first.Version {
		t.Errorf("losing writer mutated state: status=%s version=%d", current.Status, current.Version)
	}
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	_, err := f.svc.ChangeStatus(context.Background(), ticket.ID, "archived", ticket.Version, agentRef)
	assertCode(t, err, "VALIDATION_FAILED")
}

func TestChangeStatus_UnknownTicket(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ChangeStatus(context.Background(), "9e9e9e9e-0000-0000-0000-00000000000f", domain.TicketStatusInProgress, 1, agentRef)
	assertCode(t, err, "NOT_FOUND")
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	entry, err := f.svc.AddComment(context.Background(), ticket.ID, "  Rebooted the dock, no change.  ", requesterRef)
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if entry.Action != domain.ActionCommentAdded {
		t.Errorf("action = %s, want comment_added", entry.Action)
	}
	if entry.Comment == nil || *entry.Comment != "Rebooted the dock, no change." {
		t.Errorf("comment = %v, want trimmed text", entry.Comment)
	}

	// comments never touch the optimistic-concurrency token
	if current := f.reload(t, ticket.ID); current.Version != ticket.Version {
		t.Errorf("comment changed version to %d", current.Version)
	}
	if entries := f.history(t, ticket.ID); len(entries) != 2 {
		t.Errorf("history length = %d, want 2", len(entries))
	}
}

func TestAddComment_Validation(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t)

	tests := []struct {
		name string
		text string
	}{
		{"too short", "hey"},
		{"whitespace padding below minimum", "   hi   "},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddComment(context.Background(), ticket.ID, tt.text, agentRef)
			assertCode(t, err, "VALIDATION_FAILED")
		})
	}

	if entries := f.history(t, ticket.ID); len(entries) != 1 {
		t.Errorf("rejected comments wrote history: %d entries", len(entries))
	}
}

func TestAddComment_UnknownTicket(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddComment(context.Background(), "9e9e9e9e-0000-0000-0000-00000000000f", "where is my laptop", requesterRef)
	assertCode(t, err, "NOT_FOUND")
}

func TestRemoveTickets(t *testing.T) {
	f := newFixture(t)
	first := f.createTicket(t)
	second := f.createTicket(t)

	_, err := f.svc.RemoveTickets(context.Background(), []string{first.ID}, agentRef)
	assertCode(t, err, "FORBIDDEN")

	removed, err := f.svc.RemoveTickets(context.Background(), []string{first.ID, second.ID}, managerRef)
	if err != nil {
		t.Fatalf("RemoveTickets: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	_, _, err = f.svc.GetTicket(context.Background(), first.ID)
	assertCode(t, err, "NOT_FOUND")
	if entries := f.history(t, first.ID); len(entries) != 0 {
		t.Errorf("deleted ticket kept %d history entries", len(entries))
	}
}

func listAll() repository.TicketFilter {
	return repository.TicketFilter{Limit: -1}
}

func TestStringPreview(t *testing.T) {
	tests := []struct {
		name string
		body string
		max  int
		want string
	}{
		{"shorter than max", "all fine", 20, "all fine"},
		{"ascii truncation", "abcdefghij", 8, "abcde..."},
		{"multi-byte runes stay whole", "привет мир как дела", 10, "привет ..."},
		{"tiny max", "héllo", 2, "hé"},
		{"trims before measuring", "  short  ", 20, "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringPreview(tt.body, tt.max); got != tt.want {
				t.Errorf("stringPreview(%q, %d) = %q, want %q", tt.body, tt.max, got, tt.want)
			}
		})
	}
}
