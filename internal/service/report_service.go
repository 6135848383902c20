package service

import (
	"context"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/repository"
)

// PeriodSummary aggregates tracked time over a date range. Totals are folded
// unrounded and rounded once when read through the accessor methods.
type PeriodSummary struct {
	Start      time.Time
	End        time.Time
	TotalHours float64
	TotalValue float64
	Unbilled   float64 // value of entries not yet locked to an invoice
	ByProject  []*domain.ProjectTotal
	Entries    []*domain.TimeEntry
}

// RoundedHours returns the total hours rounded for output
func (s *PeriodSummary) RoundedHours() float64 { return domain.Round2(s.TotalHours) }

// RoundedValue returns the total value rounded for output
func (s *PeriodSummary) RoundedValue() float64 { return domain.Round2(s.TotalValue) }

// RoundedUnbilled returns the unbilled value rounded for output
func (s *PeriodSummary) RoundedUnbilled() float64 { return domain.Round2(s.Unbilled) }

// ReportService provides aggregations over entries and invoices
type ReportService interface {
	// GetPeriodSummary aggregates the user's entries in [start, end] per
	// project, with value computed at each project's current rate
	GetPeriodSummary(ctx context.Context, userID int64, start, end time.Time) (*PeriodSummary, error)

	// GetOutstandingTotal sums the totals of sent, unpaid invoices
	GetOutstandingTotal(ctx context.Context, userID int64) (float64, error)

	// GetUnbilledTotal values the user's entries not locked to any invoice
	GetUnbilledTotal(ctx context.Context, userID int64) (float64, error)

	// GetRevenueByMonth sums paid invoice totals per month of the year
	GetRevenueByMonth(ctx context.Context, userID int64, year int) (map[time.Month]float64, error)
}

type reportService struct {
	entryRepo   repository.TimeEntryRepository
	projectRepo repository.ProjectRepository
	invoiceRepo repository.InvoiceRepository
}

// NewReportService creates a new report service
func NewReportService(
	entryRepo repository.TimeEntryRepository,
	projectRepo repository.ProjectRepository,
	invoiceRepo repository.InvoiceRepository,
) ReportService {
	return &reportService{
		entryRepo:   entryRepo,
		projectRepo: projectRepo,
		invoiceRepo: invoiceRepo,
	}
}

func (s *reportService) GetPeriodSummary(ctx context.Context, userID int64, start, end time.Time) (*PeriodSummary, error) {
	entries, err := s.entryRepo.List(ctx, userID, nil, &start, &end, true)
	if err != nil {
		return nil, err
	}

	projects, err := s.projectIndex(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &PeriodSummary{
		Start:   start,
		End:     end,
		Entries: entries,
	}

	totals := make(map[int64]*domain.ProjectTotal)
	order := make([]int64, 0)

	for _, entry := range entries {
		project, ok := projects[entry.ProjectID]
		if !ok {
			continue
		}

		total, ok := totals[entry.ProjectID]
		if !ok {
			total = &domain.ProjectTotal{ProjectID: entry.ProjectID, ClientID: project.ClientID}
			totals[entry.ProjectID] = total
			order = append(order, entry.ProjectID)
		}
		total.Add(entry.StartedAt, entry.EndedAt, project.HourlyRate)

		summary.TotalHours += entry.Hours()
		value := domain.Amount(entry.StartedAt, entry.EndedAt, project.HourlyRate)
		summary.TotalValue += value
		if !entry.IsLocked() {
			summary.Unbilled += value
		}
	}

	summary.ByProject = make([]*domain.ProjectTotal, 0, len(order))
	for _, projectID := range order {
		summary.ByProject = append(summary.ByProject, totals[projectID])
	}

	return summary, nil
}

func (s *reportService) GetOutstandingTotal(ctx context.Context, userID int64) (float64, error) {
	sent := domain.InvoiceStatusSent
	invoices, err := s.invoiceRepo.List(ctx, userID, nil, &sent)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, invoice := range invoices {
		lines, err := s.invoiceRepo.GetLines(ctx, invoice.ID)
		if err != nil {
			return 0, err
		}
		invoice.Lines = lines
		total += invoice.Total()
	}

	return domain.Round2(total), nil
}

func (s *reportService) GetUnbilledTotal(ctx context.Context, userID int64) (float64, error) {
	entries, err := s.entryRepo.List(ctx, userID, nil, nil, nil, false)
	if err != nil {
		return 0, err
	}

	projects, err := s.projectIndex(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, entry := range entries {
		project, ok := projects[entry.ProjectID]
		if !ok {
			continue
		}
		total += domain.Amount(entry.StartedAt, entry.EndedAt, project.HourlyRate)
	}

	return domain.Round2(total), nil
}

func (s *reportService) GetRevenueByMonth(ctx context.Context, userID int64, year int) (map[time.Month]float64, error) {
	paid := domain.InvoiceStatusPaid
	invoices, err := s.invoiceRepo.List(ctx, userID, nil, &paid)
	if err != nil {
		return nil, err
	}

	revenue := make(map[time.Month]float64)
	for m := time.January; m <= time.December; m++ {
		revenue[m] = 0
	}

	for _, invoice := range invoices {
		paidAt := invoice.UpdatedAt
		if invoice.PaidAt != nil {
			paidAt = *invoice.PaidAt
		}
		if paidAt.Year() != year {
			continue
		}

		// The recorded paid amount wins over the computed total when present
		if invoice.PaidAmount != nil {
			revenue[paidAt.Month()] += *invoice.PaidAmount
			continue
		}

		lines, err := s.invoiceRepo.GetLines(ctx, invoice.ID)
		if err != nil {
			return nil, err
		}
		invoice.Lines = lines
		revenue[paidAt.Month()] += invoice.Total()
	}

	for m := range revenue {
		revenue[m] = domain.Round2(revenue[m])
	}

	return revenue, nil
}

// projectIndex loads the user's projects keyed by id
func (s *reportService) projectIndex(ctx context.Context, userID int64) (map[int64]*domain.Project, error) {
	projects, err := s.projectRepo.List(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]*domain.Project, len(projects))
	for _, p := range projects {
		index[p.ID] = p
	}

	return index, nil
}
