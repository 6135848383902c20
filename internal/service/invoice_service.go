package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/repository"
)

// InvoiceService manages the invoice lifecycle: creation from unbilled
// entries, draft editing, the forward-only status machine, and deletion
type InvoiceService interface {
	// CreateInvoice builds a draft from the client's unbilled entries in the
	// period, one line per project, locking the entries atomically
	CreateInvoice(ctx context.Context, userID, clientID int64, dateFrom, dateTo time.Time) (*domain.Invoice, error)

	// GetInvoice retrieves an invoice with its lines
	GetInvoice(ctx context.Context, userID, id int64) (*domain.Invoice, error)

	// ListInvoices lists invoices with optional client and status filters
	ListInvoices(ctx context.Context, userID int64, clientID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error)

	// UpdatePeriod changes the billing period of a draft invoice
	UpdatePeriod(ctx context.Context, userID, id int64, dateFrom, dateTo time.Time) error

	// MarkSent transitions draft → sent, stamping sentAt
	MarkSent(ctx context.Context, userID, id int64) (*domain.Invoice, error)

	// MarkPaid transitions sent → paid, stamping paidAt and recording the
	// paid amount as given
	MarkPaid(ctx context.Context, userID, id int64, paidAmount *float64) (*domain.Invoice, error)

	// AddLine appends a manual line to a draft invoice
	AddLine(ctx context.Context, userID, invoiceID, projectID int64, description string, hours, rate float64) (*domain.InvoiceLine, error)

	// UpdateLine edits a draft invoice's line, recomputing its amount
	UpdateLine(ctx context.Context, userID, invoiceID, lineID int64, description string, hours, rate *float64) (*domain.InvoiceLine, error)

	// RemoveLine deletes a line from a draft invoice
	RemoveLine(ctx context.Context, userID, invoiceID, lineID int64) error

	// DeleteInvoice deletes a draft invoice and unlocks its entries
	DeleteInvoice(ctx context.Context, userID, id int64) error
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	entryRepo   repository.TimeEntryRepository
	clientRepo  repository.ClientRepository
	projectRepo repository.ProjectRepository
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	entryRepo repository.TimeEntryRepository,
	clientRepo repository.ClientRepository,
	projectRepo repository.ProjectRepository,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		entryRepo:   entryRepo,
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, userID, clientID int64, dateFrom, dateTo time.Time) (*domain.Invoice, error) {
	if err := domain.ValidatePeriod(dateFrom, dateTo); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.FindBillable(ctx, userID, clientID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.NewErrorf(domain.CodeNoTimeEntries, "no billable time entries in period",
			"client %q has no unbilled entries between %s and %s",
			client.Name, dateFrom.Format("2006-01-02"), dateTo.Format("2006-01-02"))
	}

	lines, entryIDs, err := s.buildLines(ctx, userID, entries)
	if err != nil {
		return nil, err
	}

	// Invoices number by the year they are created in, not by the billing
	// period. The unique index on (user_id, invoice_number) arbitrates
	// concurrent allocations; the loser re-reads the counter and retries
	// exactly once.
	year := time.Now().Year()
	for attempt := 0; attempt < 2; attempt++ {
		number, err := NextInvoiceNumber(ctx, s.invoiceRepo, userID, year)
		if err != nil {
			return nil, err
		}

		invoice := domain.NewInvoice(userID, clientID, number, dateFrom, dateTo)
		invoice.Lines = lines
		invoice.Client = client

		err = s.invoiceRepo.CreateWithLines(ctx, invoice, entryIDs)
		if err == nil {
			return invoice, nil
		}
		if !errors.Is(err, repository.ErrNumberConflict) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to allocate invoice number after retry")
}

// buildLines groups the entries per project into one line each, folding
// unrounded hours and rounding once per line
func (s *invoiceService) buildLines(ctx context.Context, userID int64, entries []*domain.TimeEntry) ([]*domain.InvoiceLine, []int64, error) {
	totals := make(map[int64]*domain.ProjectTotal)
	order := make([]int64, 0)
	entryIDs := make([]int64, 0, len(entries))

	for _, entry := range entries {
		entryIDs = append(entryIDs, entry.ID)
		total, ok := totals[entry.ProjectID]
		if !ok {
			total = &domain.ProjectTotal{ProjectID: entry.ProjectID}
			totals[entry.ProjectID] = total
			order = append(order, entry.ProjectID)
		}
		total.Hours += domain.DurationHours(entry.StartedAt, entry.EndedAt)
	}

	lines := make([]*domain.InvoiceLine, 0, len(order))
	for _, projectID := range order {
		project, err := s.projectRepo.GetByID(ctx, userID, projectID)
		if err != nil {
			return nil, nil, err
		}

		line := &domain.InvoiceLine{
			ProjectID:   projectID,
			Description: project.Name,
			Hours:       domain.Round2(totals[projectID].Hours),
			Rate:        domain.Round2(project.HourlyRate),
		}
		line.Recalculate()
		lines = append(lines, line)
	}

	return lines, entryIDs, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, userID, id int64) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if invoice.Client, err = s.clientRepo.GetByID(ctx, userID, invoice.ClientID); err != nil {
		return nil, err
	}

	return invoice, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, userID int64, clientID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error) {
	return s.invoiceRepo.List(ctx, userID, clientID, status)
}

func (s *invoiceService) UpdatePeriod(ctx context.Context, userID, id int64, dateFrom, dateTo time.Time) error {
	if err := domain.ValidatePeriod(dateFrom, dateTo); err != nil {
		return err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if !invoice.IsDraft() {
		return notEditable(invoice)
	}

	return s.invoiceRepo.UpdatePeriod(ctx, userID, id, dateFrom, dateTo)
}

func (s *invoiceService) MarkSent(ctx context.Context, userID, id int64) (*domain.Invoice, error) {
	return s.transition(ctx, userID, id, domain.InvoiceStatusSent, nil)
}

func (s *invoiceService) MarkPaid(ctx context.Context, userID, id int64, paidAmount *float64) (*domain.Invoice, error) {
	return s.transition(ctx, userID, id, domain.InvoiceStatusPaid, paidAmount)
}

func (s *invoiceService) transition(ctx context.Context, userID, id int64, to domain.InvoiceStatus, paidAmount *float64) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	from := invoice.Status
	if err := invoice.Transition(to, paidAmount); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, invoice, from); err != nil {
		return nil, err
	}

	return invoice, nil
}

func (s *invoiceService) AddLine(ctx context.Context, userID, invoiceID, projectID int64, description string, hours, rate float64) (*domain.InvoiceLine, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.IsDraft() {
		return nil, notEditable(invoice)
	}

	if _, err := s.projectRepo.GetByID(ctx, userID, projectID); err != nil {
		return nil, err
	}

	line := &domain.InvoiceLine{
		ProjectID:   projectID,
		Description: Sanitize(description),
		Hours:       domain.Round2(hours),
		Rate:        domain.Round2(rate),
	}
	line.Recalculate()

	if err := s.invoiceRepo.AddLine(ctx, invoiceID, line); err != nil {
		return nil, err
	}

	return line, nil
}

func (s *invoiceService) UpdateLine(ctx context.Context, userID, invoiceID, lineID int64, description string, hours, rate *float64) (*domain.InvoiceLine, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.IsDraft() {
		return nil, notEditable(invoice)
	}

	var line *domain.InvoiceLine
	for _, l := range invoice.Lines {
		if l.ID == lineID {
			line = l
			break
		}
	}
	if line == nil {
		return nil, domain.ErrNotFound("invoice line", lineID)
	}

	if description != "" {
		line.Description = Sanitize(description)
	}
	if hours != nil {
		line.Hours = domain.Round2(*hours)
	}
	if rate != nil {
		line.Rate = domain.Round2(*rate)
	}
	line.Recalculate()

	if err := s.invoiceRepo.UpdateLine(ctx, invoiceID, line); err != nil {
		return nil, err
	}

	return line, nil
}

func (s *invoiceService) RemoveLine(ctx context.Context, userID, invoiceID, lineID int64) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	if !invoice.IsDraft() {
		return notEditable(invoice)
	}

	return s.invoiceRepo.DeleteLine(ctx, invoiceID, lineID)
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, userID, id int64) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if !invoice.IsDraft() {
		return domain.NewErrorf(domain.CodeInvoiceNotDeletable, "invoice cannot be deleted",
			"invoice %s is %s; only drafts can be deleted", invoice.InvoiceNumber, invoice.Status)
	}

	return s.invoiceRepo.DeleteDraft(ctx, userID, id)
}

// notEditable builds the InvoiceNotEditable violation naming the status
func notEditable(invoice *domain.Invoice) error {
	return domain.NewErrorf(domain.CodeInvoiceNotEditable, "invoice cannot be edited",
		"invoice %s is %s; only drafts can be edited", invoice.InvoiceNumber, invoice.Status)
}
