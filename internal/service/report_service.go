package service

import (
	"context"
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/sla"
)

// recentVolumeWindowDays is the trailing window for the volume KPI.
const recentVolumeWindowDays = 7

// KPIs is the dashboard aggregate.
type KPIs struct {
	OpenTickets             int     `json:"open_tickets"`
	TicketsInLast7Days      int     `json:"tickets_in_last_7_days"`
	SLACompliancePercentage float64 `json:"sla_compliance_percentage"`
}

// ReportService computes fleet-wide KPIs by scanning tickets and history.
// It is read-only and holds no lifecycle invariants of its own.
type ReportService struct {
	store repository.Store
	now   func() time.Time
}

// NewReportService constructs the service.
func NewReportService(store repository.Store, now func() time.Time) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{store: store, now: now}
}

// GetKPIs returns the live dashboard numbers.
func (s *ReportService) GetKPIs(ctx context.Context) (*KPIs, error) {
	repos := s.store.Repos()

	open, err := repos.Tickets.CountByStatuses(ctx, []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
	})
	if err != nil {
		return nil, err
	}

	since := s.now().AddDate(0, 0, -recentVolumeWindowDays)
	recent, err := repos.Tickets.CountCreatedSince(ctx, since)
	if err != nil {
		return nil, err
	}

	compliance, err := s.complianceFor(ctx, repos)
	if err != nil {
		return nil, err
	}

	return &KPIs{
		OpenTickets:             open,
		TicketsInLast7Days:      recent,
		SLACompliancePercentage: compliance,
	}, nil
}

// complianceFor joins resolved and closed tickets with the earliest history
// event that moved each of them to resolved. A ticket reopened and re-resolved
// is judged by its first resolution.
func (s *ReportService) complianceFor(ctx context.Context, repos repository.Repos) (float64, error) {
	settled, err := repos.Tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusClosed},
		Limit:    -1,
	})
	if err != nil {
		return 0, err
	}
	if len(settled) == 0 {
		return 100, nil
	}

	resolutions, err := repos.History.ListByActionAndNewValue(ctx, domain.ActionStatusChange, string(domain.TicketStatusResolved))
	if err != nil {
		return 0, err
	}
	firstResolution := make(map[string]time.Time, len(settled))
	for _, event := range resolutions {
		if _, seen := firstResolution[event.TicketID]; !seen {
			firstResolution[event.TicketID] = event.CreatedAt
		}
	}

	samples := make([]sla.ResolutionSample, 0, len(settled))
	for _, ticket := range settled {
		resolvedAt, ok := firstResolution[ticket.ID]
		samples = append(samples, sla.ResolutionSample{
			Target:        ticket.SLAResolutionTarget,
			ResolvedAt:    resolvedAt,
			HasResolution: ok,
		})
	}
	return sla.CompliancePercentage(samples), nil
}
