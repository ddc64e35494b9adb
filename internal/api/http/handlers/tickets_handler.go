package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CategoryID == "" || req.Title == "" || req.Description == "" {
		return apperrors.NewValidationError("category_id, title, description required", nil)
	}

	requesterID := req.RequesterID
	if requesterID == "" {
		requesterID = principal.UserID
	}
	values := make([]service.CustomFieldValueInput, 0, len(req.CustomFieldValues))
	for _, v := range req.CustomFieldValues {
		values = append(values, service.CustomFieldValueInput{
			CustomFieldID: v.CustomFieldID,
			Value:         v.Value,
		})
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:             req.Title,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		RequesterID:       requesterID,
		CustomFieldValues: values,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext(), parseTicketFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, history, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, history)})
}

// ChangeStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.NewStatus == "" {
		return apperrors.NewValidationError("new_status required", nil)
	}

	ticket, err := h.service.ChangeStatus(c.UserContext(), c.Params("id"), req.NewStatus, req.Version, principal.Ref())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.service.AddComment(c.UserContext(), c.Params("id"), req.Comment, principal.Ref())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": historyEntryResponse(entry)})
}

// DeleteTickets DELETE /tickets. Administrative bulk delete, manager-only.
func (h *TicketsHandler) DeleteTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.DeleteTicketsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.IDs) == 0 {
		return apperrors.NewValidationError("ids required", nil)
	}
	removed, err := h.service.RemoveTickets(c.UserContext(), req.IDs, principal.Ref())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": removed}})
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statuses := c.Query("status"); statuses != "" {
		for _, part := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if createdFrom := parseTime(c.Query("created_from")); createdFrom != nil {
		filter.CreatedFrom = createdFrom
	}
	if createdTo := parseTime(c.Query("created_to")); createdTo != nil {
		filter.CreatedTo = createdTo
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                   ticket.ID,
		Title:                ticket.Title,
		Status:               ticket.Status,
		Version:              ticket.Version,
		RequesterID:          ticket.RequesterID,
		CategoryID:           ticket.CategoryID,
		CategoryNameSnapshot: ticket.CategoryNameSnapshot,
		SLAResolutionTarget:  ticket.SLAResolutionTarget,
		CreatedAt:            ticket.CreatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, history []domain.HistoryEntry) dto.TicketDetailResponse {
	values := make([]dto.CustomFieldValueResponse, 0, len(ticket.CustomFieldValues))
	for _, v := range ticket.CustomFieldValues {
		values = append(values, dto.CustomFieldValueResponse{
			CustomFieldID: v.CustomFieldID,
			Value:         v.Value,
		})
	}
	entries := make([]dto.HistoryEntryResponse, 0, len(history))
	for i := range history {
		entries = append(entries, historyEntryResponse(&history[i]))
	}
	return dto.TicketDetailResponse{
		ID:                     ticket.ID,
		Title:                  ticket.Title,
		Description:            ticket.Description,
		Status:                 ticket.Status,
		Version:                ticket.Version,
		RequesterID:            ticket.RequesterID,
		CategoryID:             ticket.CategoryID,
		CategoryNameSnapshot:   ticket.CategoryNameSnapshot,
		SLAFirstResponseTarget: ticket.SLAFirstResponseTarget,
		SLAResolutionTarget:    ticket.SLAResolutionTarget,
		CustomFieldValues:      values,
		History:                entries,
		CreatedAt:              ticket.CreatedAt,
	}
}

func historyEntryResponse(entry *domain.HistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:        entry.ID,
		Action:    entry.Action,
		OldValue:  entry.OldValue,
		NewValue:  entry.NewValue,
		Comment:   entry.Comment,
		UserID:    entry.UserID,
		CreatedAt: entry.CreatedAt,
	}
}
