package service

import (
	"context"
	"testing"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
)

const testUserID = int64(7)

func testFixtures() (*mockClientRepo, *mockProjectRepo, *mockEntryRepo) {
	client := &domain.Client{ID: 1, UserID: testUserID, Name: "ACME"}
	website := &domain.Project{ID: 1, UserID: testUserID, ClientID: 1, Name: "Website", HourlyRate: 50}
	api := &domain.Project{ID: 2, UserID: testUserID, ClientID: 1, Name: "API", HourlyRate: 80}

	return newMockClientRepo(client), newMockProjectRepo(website, api), newMockEntryRepo()
}

func newTestInvoiceService(clients *mockClientRepo, projects *mockProjectRepo, entries *mockEntryRepo) (InvoiceService, *mockInvoiceRepo) {
	invoices := newMockInvoiceRepo()
	svc := NewInvoiceService(invoices, entries, clients, projects)
	return svc, invoices
}

func TestCreateInvoiceGroupsPerProject(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base, base.Add(2*time.Hour), ""))
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base.Add(3*time.Hour), base.Add(4*time.Hour+30*time.Minute), ""))
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 2, base.Add(24*time.Hour), base.Add(25*time.Hour), ""))

	svc, invoices := newTestInvoiceService(clients, projects, entries)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := FormatInvoiceNumber(time.Now().Year(), 1); invoice.InvoiceNumber != want {
		t.Errorf("expected %s, got %s", want, invoice.InvoiceNumber)
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		t.Errorf("expected draft status, got %s", invoice.Status)
	}
	if len(invoice.Lines) != 2 {
		t.Fatalf("expected one line per project, got %d lines", len(invoice.Lines))
	}

	// Website: 2h + 1.5h at 50 → 3.50h, 175.00
	website := invoice.Lines[0]
	if website.Hours != 3.5 || website.Amount != 175.00 {
		t.Errorf("expected 3.50h/175.00, got %vh/%v", website.Hours, website.Amount)
	}
	// API: 1h at 80 → 80.00
	api := invoice.Lines[1]
	if api.Hours != 1.0 || api.Amount != 80.00 {
		t.Errorf("expected 1.00h/80.00, got %vh/%v", api.Hours, api.Amount)
	}
	if invoice.Total() != 255.00 {
		t.Errorf("expected total 255.00, got %v", invoice.Total())
	}

	// All three entries must be locked to the new invoice
	if len(invoices.locked) != 3 {
		t.Errorf("expected 3 locked entries, got %d", len(invoices.locked))
	}
}

func TestCreateInvoiceNoEntries(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()
	svc, _ := newTestInvoiceService(clients, projects, entries)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if !domain.IsCode(err, domain.CodeNoTimeEntries) {
		t.Fatalf("expected NoTimeEntries, got %v", err)
	}
}

func TestCreateInvoiceInvalidPeriod(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()
	svc, _ := newTestInvoiceService(clients, projects, entries)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateInvoice(ctx, testUserID, 1, day, day)
	if !domain.IsCode(err, domain.CodeInvalidDateRange) {
		t.Fatalf("expected InvalidDateRange for equal dates, got %v", err)
	}
}

func TestCreateInvoiceSkipsLockedEntries(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	locked := domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), "")
	other := int64(99)
	locked.LockedByInvoiceID = &other
	entries.Create(ctx, locked)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base.Add(2*time.Hour), base.Add(3*time.Hour), ""))

	svc, _ := newTestInvoiceService(clients, projects, entries)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invoice.Lines) != 1 || invoice.Lines[0].Hours != 1.0 {
		t.Errorf("expected only the unlocked hour billed, got %+v", invoice.Lines)
	}
}

func TestCreateInvoiceRetriesNumberOnce(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), ""))

	invoices := newMockInvoiceRepo()
	invoices.conflictsLeft = 1
	svc := NewInvoiceService(invoices, entries, clients, projects)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if err != nil {
		t.Fatalf("expected success after one retry, got %v", err)
	}
	if invoice.ID == 0 {
		t.Error("expected invoice to be persisted on retry")
	}
}

func TestCreateInvoiceGivesUpAfterRetry(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), ""))

	invoices := newMockInvoiceRepo()
	invoices.conflictsLeft = 2
	svc := NewInvoiceService(invoices, entries, clients, projects)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	if _, err := svc.CreateInvoice(ctx, testUserID, 1, from, to); err == nil {
		t.Fatal("expected failure after second number conflict")
	}
}

func TestCreateInvoiceNumbersByCreationYear(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	// Billing a long-past period must not mint a number in that year
	base := time.Date(2020, 6, 2, 9, 0, 0, 0, time.UTC)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), ""))

	svc, _ := newTestInvoiceService(clients, projects, entries)

	from := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 6, 30, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := FormatInvoiceNumber(time.Now().Year(), 1); invoice.InvoiceNumber != want {
		t.Errorf("expected %s, got %s", want, invoice.InvoiceNumber)
	}
}

func TestStaleTransitionCannotRewindStatus(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), ""))

	svc, invoices := newTestInvoiceService(clients, projects, entries)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One writer reads the draft, then the invoice advances to paid
	stale, err := invoices.GetByID(ctx, testUserID, invoice.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MarkSent(ctx, testUserID, invoice.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	amount := 50.0
	if _, err := svc.MarkPaid(ctx, testUserID, invoice.ID, &amount); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The stale writer replays its draft→sent transition; the pin on the
	// from status must reject it
	if err := stale.Transition(domain.InvoiceStatusSent, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = invoices.UpdateStatus(ctx, stale, domain.InvoiceStatusDraft)
	if !domain.IsCode(err, domain.CodeInvalidStatusTransition) {
		t.Fatalf("expected InvalidStatusTransition for stale write, got %v", err)
	}

	current, err := invoices.GetByID(ctx, testUserID, invoice.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Status != domain.InvoiceStatusPaid {
		t.Errorf("expected invoice to stay paid, got %s", current.Status)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), ""))

	svc, _ := newTestInvoiceService(clients, projects, entries)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// draft → paid is not a legal edge
	amount := 50.0
	if _, err := svc.MarkPaid(ctx, testUserID, invoice.ID, &amount); !domain.IsCode(err, domain.CodeInvalidStatusTransition) {
		t.Fatalf("expected InvalidStatusTransition for draft→paid, got %v", err)
	}

	sent, err := svc.MarkSent(ctx, testUserID, invoice.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent.Status != domain.InvoiceStatusSent || sent.SentAt == nil {
		t.Errorf("expected sent status with sentAt stamped, got %s/%v", sent.Status, sent.SentAt)
	}

	// sending twice is rejected
	if _, err := svc.MarkSent(ctx, testUserID, invoice.ID); !domain.IsCode(err, domain.CodeInvalidStatusTransition) {
		t.Fatalf("expected InvalidStatusTransition for sent→sent, got %v", err)
	}

	paid, err := svc.MarkPaid(ctx, testUserID, invoice.ID, &amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Status != domain.InvoiceStatusPaid || paid.PaidAt == nil {
		t.Errorf("expected paid status with paidAt stamped, got %s/%v", paid.Status, paid.PaidAt)
	}
	if paid.PaidAmount == nil || *paid.PaidAmount != 50.0 {
		t.Errorf("expected paid amount recorded verbatim, got %v", paid.PaidAmount)
	}

	// paid is terminal
	if _, err := svc.MarkSent(ctx, testUserID, invoice.ID); !domain.IsCode(err, domain.CodeInvalidStatusTransition) {
		t.Fatalf("expected InvalidStatusTransition from paid, got %v", err)
	}
}

func TestEditingLockedAfterSend(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), ""))

	svc, _ := newTestInvoiceService(clients, projects, entries)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MarkSent(ctx, testUserID, invoice.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.UpdatePeriod(ctx, testUserID, invoice.ID, from, to.AddDate(0, 1, 0)); !domain.IsCode(err, domain.CodeInvoiceNotEditable) {
		t.Errorf("expected InvoiceNotEditable for period edit, got %v", err)
	}
	if _, err := svc.AddLine(ctx, testUserID, invoice.ID, 1, "extra", 1, 50); !domain.IsCode(err, domain.CodeInvoiceNotEditable) {
		t.Errorf("expected InvoiceNotEditable for line add, got %v", err)
	}
	if err := svc.DeleteInvoice(ctx, testUserID, invoice.ID); !domain.IsCode(err, domain.CodeInvoiceNotDeletable) {
		t.Errorf("expected InvoiceNotDeletable, got %v", err)
	}
}

func TestUpdateLineRecomputesAmount(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), ""))

	svc, invoices := newTestInvoiceService(clients, projects, entries)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hours := 4.0
	line, err := svc.UpdateLine(ctx, testUserID, invoice.ID, invoice.Lines[0].ID, "", &hours, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Amount != 200.00 {
		t.Errorf("expected amount 200.00 after hours edit, got %v", line.Amount)
	}

	stored, _ := invoices.GetLines(ctx, invoice.ID)
	if stored[0].Amount != 200.00 {
		t.Errorf("expected stored amount 200.00, got %v", stored[0].Amount)
	}
}

func TestDeleteDraftUnlocksEntries(t *testing.T) {
	ctx := context.Background()
	clients, projects, entries := testFixtures()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entries.Create(ctx, domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), ""))

	svc, invoices := newTestInvoiceService(clients, projects, entries)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	invoice, err := svc.CreateInvoice(ctx, testUserID, 1, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invoices.locked) != 1 {
		t.Fatalf("expected 1 locked entry, got %d", len(invoices.locked))
	}

	if err := svc.DeleteInvoice(ctx, testUserID, invoice.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invoices.locked) != 0 {
		t.Errorf("expected entries unlocked after draft deletion, got %d still locked", len(invoices.locked))
	}
}
