package domain

import "time"

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

// transitions holds the only legal status edges. The lifecycle is forward
// only: draft → sent → paid, no skipping, no going back.
var transitions = map[InvoiceStatus]InvoiceStatus{
	InvoiceStatusDraft: InvoiceStatusSent,
	InvoiceStatusSent:  InvoiceStatusPaid,
}

// CanTransition reports whether moving from one status to another is legal
func CanTransition(from, to InvoiceStatus) bool {
	next, ok := transitions[from]
	return ok && next == to
}

type Invoice struct {
	ID            int64
	UserID        int64
	ClientID      int64
	InvoiceNumber string // INV-YYYY-NNNN
	Status        InvoiceStatus
	DateFrom      time.Time
	DateTo        time.Time
	SentAt        *time.Time
	PaidAt        *time.Time
	PaidAmount    *float64
	PDFPath       string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Related data (populated by repository)
	Lines  []*InvoiceLine
	Client *Client
}

// InvoiceLine bills one project's entries for the invoice period. Rate is a
// snapshot taken at creation time; later project rate changes never alter it.
type InvoiceLine struct {
	ID          int64
	InvoiceID   int64
	ProjectID   int64
	Description string
	Hours       float64
	Rate        float64
	Amount      float64 // round2(hours * rate)
}

// Recalculate recomputes the line amount after an hours or rate edit
func (l *InvoiceLine) Recalculate() {
	l.Amount = Round2(l.Hours * l.Rate)
}

// NewInvoice creates a new draft invoice
func NewInvoice(userID, clientID int64, invoiceNumber string, dateFrom, dateTo time.Time) *Invoice {
	now := time.Now()
	return &Invoice{
		UserID:        userID,
		ClientID:      clientID,
		InvoiceNumber: invoiceNumber,
		Status:        InvoiceStatusDraft,
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		CreatedAt:     now,
		UpdatedAt:     now,
		Lines:         make([]*InvoiceLine, 0),
	}
}

// IsDraft returns true while the invoice can still be edited or deleted
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// Transition moves the invoice to the requested status, stamping sentAt or
// paidAt. A paid amount is recorded verbatim; totals are not cross-checked.
func (i *Invoice) Transition(to InvoiceStatus, paidAmount *float64) error {
	if !CanTransition(i.Status, to) {
		return NewErrorf(CodeInvalidStatusTransition, "invalid invoice status transition",
			"cannot move invoice %s from %s to %s", i.InvoiceNumber, i.Status, to)
	}
	now := time.Now()
	switch to {
	case InvoiceStatusSent:
		i.SentAt = &now
	case InvoiceStatusPaid:
		i.PaidAt = &now
		i.PaidAmount = paidAmount
	}
	i.Status = to
	i.UpdatedAt = now
	return nil
}

// Total sums the line amounts, rounded once at output
func (i *Invoice) Total() float64 {
	sum := 0.0
	for _, line := range i.Lines {
		sum += line.Amount
	}
	return Round2(sum)
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if i.UserID <= 0 {
		return NewError(CodeFieldRequired, "user is required")
	}
	if i.ClientID <= 0 {
		return NewError(CodeFieldRequired, "client is required")
	}
	if i.InvoiceNumber == "" {
		return NewError(CodeFieldRequired, "invoice number is required")
	}
	return ValidatePeriod(i.DateFrom, i.DateTo)
}

// ValidatePeriod enforces dateTo > dateFrom for invoice periods
func ValidatePeriod(dateFrom, dateTo time.Time) error {
	if dateFrom.IsZero() || dateTo.IsZero() {
		return NewError(CodeFieldRequired, "invoice period is required")
	}
	if !dateTo.After(dateFrom) {
		return NewErrorf(CodeInvalidDateRange, "invalid invoice period",
			"period end %s must be after period start %s",
			dateTo.Format("2006-01-02"), dateFrom.Format("2006-01-02"))
	}
	return nil
}
