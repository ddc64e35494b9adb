package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/service"
)

// DashboardHandler serves fleet-wide KPIs.
type DashboardHandler struct {
	reports *service.ReportService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(reports *service.ReportService) *DashboardHandler {
	return &DashboardHandler{reports: reports}
}

// GetKPIs GET /dashboard/kpis.
func (h *DashboardHandler) GetKPIs(c *fiber.Ctx) error {
	kpis, err := h.reports.GetKPIs(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": kpis})
}
