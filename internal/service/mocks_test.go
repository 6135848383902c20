package service

import (
	"context"
	"strings"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/repository"
)

// mock implementations backed by in-memory maps

type mockClientRepo struct {
	clients map[int64]*domain.Client
}

func newMockClientRepo(clients ...*domain.Client) *mockClientRepo {
	m := &mockClientRepo{clients: make(map[int64]*domain.Client)}
	for _, c := range clients {
		m.clients[c.ID] = c
	}
	return m
}

func (m *mockClientRepo) Create(ctx context.Context, client *domain.Client) error {
	client.ID = int64(len(m.clients) + 1)
	m.clients[client.ID] = client
	return nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Client, error) {
	if c, ok := m.clients[id]; ok && c.UserID == userID {
		return c, nil
	}
	return nil, domain.ErrNotFound("client", id)
}

func (m *mockClientRepo) GetByName(ctx context.Context, userID int64, name string) (*domain.Client, error) {
	for _, c := range m.clients {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, domain.NewErrorf(domain.CodeEntityNotFound, "client not found", "no client named %q", name)
}

func (m *mockClientRepo) List(ctx context.Context, userID int64, includeArchived bool) ([]*domain.Client, error) {
	out := make([]*domain.Client, 0)
	for _, c := range m.clients {
		if c.UserID == userID && (includeArchived || !c.IsArchived) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClientRepo) Update(ctx context.Context, client *domain.Client) error {
	m.clients[client.ID] = client
	return nil
}

func (m *mockClientRepo) CountByName(ctx context.Context, userID int64, name string, excludeID int64) (int, error) {
	count := 0
	for _, c := range m.clients {
		if c.UserID == userID && c.ID != excludeID && strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			count++
		}
	}
	return count, nil
}

func (m *mockClientRepo) Archive(ctx context.Context, userID, id int64) error {
	c, err := m.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	c.IsArchived = true
	return nil
}

func (m *mockClientRepo) Unarchive(ctx context.Context, userID, id int64) error {
	c, err := m.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	c.IsArchived = false
	return nil
}

type mockProjectRepo struct {
	projects map[int64]*domain.Project
}

func newMockProjectRepo(projects ...*domain.Project) *mockProjectRepo {
	m := &mockProjectRepo{projects: make(map[int64]*domain.Project)}
	for _, p := range projects {
		m.projects[p.ID] = p
	}
	return m
}

func (m *mockProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	project.ID = int64(len(m.projects) + 1)
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Project, error) {
	if p, ok := m.projects[id]; ok && p.UserID == userID {
		return p, nil
	}
	return nil, domain.ErrNotFound("project", id)
}

func (m *mockProjectRepo) List(ctx context.Context, userID int64, clientID *int64) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0)
	for _, p := range m.projects {
		if p.UserID != userID {
			continue
		}
		if clientID != nil && p.ClientID != *clientID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProjectRepo) Update(ctx context.Context, project *domain.Project) error {
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepo) CountByName(ctx context.Context, userID, clientID int64, name string, excludeID int64) (int, error) {
	count := 0
	for _, p := range m.projects {
		if p.UserID == userID && p.ClientID == clientID && p.ID != excludeID &&
			strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			count++
		}
	}
	return count, nil
}

type mockEntryRepo struct {
	entries map[int64]*domain.TimeEntry
	nextID  int64
	// project/client names for conflicts, keyed by project id
	projectNames map[int64]string
	clientNames  map[int64]string
	batches      [][]*domain.TimeEntry
}

func newMockEntryRepo(entries ...*domain.TimeEntry) *mockEntryRepo {
	m := &mockEntryRepo{
		entries:      make(map[int64]*domain.TimeEntry),
		projectNames: make(map[int64]string),
		clientNames:  make(map[int64]string),
	}
	for _, e := range entries {
		m.entries[e.ID] = e
		if e.ID > m.nextID {
			m.nextID = e.ID
		}
	}
	return m
}

func (m *mockEntryRepo) Create(ctx context.Context, entry *domain.TimeEntry) error {
	m.nextID++
	entry.ID = m.nextID
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockEntryRepo) CreateBatch(ctx context.Context, entries []*domain.TimeEntry) error {
	for _, e := range entries {
		m.nextID++
		e.ID = m.nextID
		m.entries[e.ID] = e
	}
	m.batches = append(m.batches, entries)
	return nil
}

func (m *mockEntryRepo) GetByID(ctx context.Context, userID, id int64) (*domain.TimeEntry, error) {
	if e, ok := m.entries[id]; ok && e.UserID == userID {
		return e, nil
	}
	return nil, domain.ErrNotFound("time entry", id)
}

func (m *mockEntryRepo) Update(ctx context.Context, entry *domain.TimeEntry) error {
	old, ok := m.entries[entry.ID]
	if !ok {
		return domain.ErrNotFound("time entry", entry.ID)
	}
	if old.IsLocked() {
		return domain.NewErrorf(domain.CodeTimeEntryLocked, "time entry is locked", "entry #%d", entry.ID)
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockEntryRepo) Delete(ctx context.Context, userID, id int64) error {
	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return domain.ErrNotFound("time entry", id)
	}
	if e.IsLocked() {
		return domain.NewErrorf(domain.CodeTimeEntryLocked, "time entry is locked", "entry #%d", id)
	}
	delete(m.entries, id)
	return nil
}

func (m *mockEntryRepo) List(ctx context.Context, userID int64, projectID *int64, start, end *time.Time, includeLocked bool) ([]*domain.TimeEntry, error) {
	out := make([]*domain.TimeEntry, 0)
	for _, e := range m.entries {
		if e.UserID != userID {
			continue
		}
		if projectID != nil && e.ProjectID != *projectID {
			continue
		}
		if start != nil && e.StartedAt.Before(*start) {
			continue
		}
		if end != nil && e.StartedAt.After(*end) {
			continue
		}
		if !includeLocked && e.IsLocked() {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEntryRepo) FindOverlapping(ctx context.Context, userID int64, start, end time.Time, excludeIDs []int64) ([]*domain.EntryConflict, error) {
	excluded := make(map[int64]bool)
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	out := make([]*domain.EntryConflict, 0)
	for _, e := range m.entries {
		if e.UserID != userID || excluded[e.ID] {
			continue
		}
		if domain.IntervalsOverlap(e.StartedAt, e.EndedAt, start, end) {
			out = append(out, &domain.EntryConflict{
				EntryID:     e.ID,
				ProjectID:   e.ProjectID,
				ProjectName: m.projectNames[e.ProjectID],
				ClientName:  m.clientNames[e.ProjectID],
				StartedAt:   e.StartedAt,
				EndedAt:     e.EndedAt,
			})
		}
	}

	// order by started_at, matching the SQLite implementation
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartedAt.Before(out[i].StartedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *mockEntryRepo) FindBillable(ctx context.Context, userID, clientID int64, from, to time.Time) ([]*domain.TimeEntry, error) {
	out := make([]*domain.TimeEntry, 0)
	for _, e := range m.entries {
		if e.UserID != userID || e.IsLocked() {
			continue
		}
		if e.StartedAt.Before(from) || e.StartedAt.After(to) {
			continue
		}
		out = append(out, e)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartedAt.Before(out[i].StartedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *mockEntryRepo) GetHistory(ctx context.Context, userID, entryID int64) ([]*domain.EntryHistory, error) {
	return nil, nil
}

type mockInvoiceRepo struct {
	invoices map[int64]*domain.Invoice
	lines    map[int64][]*domain.InvoiceLine
	nextID   int64
	// lastNumbers maps year to the stored maximum invoice number
	lastNumbers map[int]string
	// conflictsLeft makes CreateWithLines fail with ErrNumberConflict this
	// many times before succeeding
	conflictsLeft int
	locked        map[int64]int64 // entry id → invoice id
	updated       *domain.Invoice
}

func newMockInvoiceRepo(invoices ...*domain.Invoice) *mockInvoiceRepo {
	m := &mockInvoiceRepo{
		invoices:    make(map[int64]*domain.Invoice),
		lines:       make(map[int64][]*domain.InvoiceLine),
		lastNumbers: make(map[int]string),
		locked:      make(map[int64]int64),
	}
	for _, inv := range invoices {
		m.invoices[inv.ID] = inv
		m.lines[inv.ID] = inv.Lines
		if inv.ID > m.nextID {
			m.nextID = inv.ID
		}
	}
	return m
}

func (m *mockInvoiceRepo) CreateWithLines(ctx context.Context, invoice *domain.Invoice, entryIDs []int64) error {
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		return repository.ErrNumberConflict
	}
	m.nextID++
	invoice.ID = m.nextID
	m.invoices[invoice.ID] = invoice
	for i, line := range invoice.Lines {
		line.ID = int64(i + 1)
		line.InvoiceID = invoice.ID
	}
	m.lines[invoice.ID] = invoice.Lines
	for _, id := range entryIDs {
		m.locked[id] = invoice.ID
	}
	if year, _, ok := ParseInvoiceNumber(invoice.InvoiceNumber); ok {
		if invoice.InvoiceNumber > m.lastNumbers[year] {
			m.lastNumbers[year] = invoice.InvoiceNumber
		}
	}
	return nil
}

// GetByID hands out a copy, like a real row scan would, so callers mutating
// the result don't bypass the update methods
func (m *mockInvoiceRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Invoice, error) {
	if inv, ok := m.invoices[id]; ok && inv.UserID == userID {
		cp := *inv
		cp.Lines = m.lines[id]
		return &cp, nil
	}
	return nil, domain.ErrNotFound("invoice", id)
}

func (m *mockInvoiceRepo) List(ctx context.Context, userID int64, clientID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error) {
	out := make([]*domain.Invoice, 0)
	for _, inv := range m.invoices {
		if inv.UserID != userID {
			continue
		}
		if clientID != nil && inv.ClientID != *clientID {
			continue
		}
		if status != nil && inv.Status != *status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (m *mockInvoiceRepo) UpdatePeriod(ctx context.Context, userID, id int64, dateFrom, dateTo time.Time) error {
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return domain.ErrNotFound("invoice", id)
	}
	inv.DateFrom, inv.DateTo = dateFrom, dateTo
	return nil
}

func (m *mockInvoiceRepo) UpdateStatus(ctx context.Context, invoice *domain.Invoice, from domain.InvoiceStatus) error {
	stored, ok := m.invoices[invoice.ID]
	if !ok || stored.UserID != invoice.UserID || stored.Status != from {
		return domain.NewErrorf(domain.CodeInvalidStatusTransition, "invoice status changed concurrently",
			"invoice %s is no longer %s", invoice.InvoiceNumber, from)
	}
	cp := *invoice
	m.invoices[invoice.ID] = &cp
	m.updated = invoice
	return nil
}

func (m *mockInvoiceRepo) GetLines(ctx context.Context, invoiceID int64) ([]*domain.InvoiceLine, error) {
	lines := m.lines[invoiceID]
	out := make([]*domain.InvoiceLine, len(lines))
	copy(out, lines)
	return out, nil
}

func (m *mockInvoiceRepo) AddLine(ctx context.Context, invoiceID int64, line *domain.InvoiceLine) error {
	line.ID = int64(len(m.lines[invoiceID]) + 1)
	line.InvoiceID = invoiceID
	m.lines[invoiceID] = append(m.lines[invoiceID], line)
	return nil
}

func (m *mockInvoiceRepo) UpdateLine(ctx context.Context, invoiceID int64, line *domain.InvoiceLine) error {
	for i, l := range m.lines[invoiceID] {
		if l.ID == line.ID {
			m.lines[invoiceID][i] = line
			return nil
		}
	}
	return domain.ErrNotFound("invoice line", line.ID)
}

func (m *mockInvoiceRepo) DeleteLine(ctx context.Context, invoiceID, lineID int64) error {
	lines := m.lines[invoiceID]
	for i, l := range lines {
		if l.ID == lineID {
			m.lines[invoiceID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound("invoice line", lineID)
}

func (m *mockInvoiceRepo) DeleteDraft(ctx context.Context, userID, id int64) error {
	inv, err := m.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	for entryID, invoiceID := range m.locked {
		if invoiceID == inv.ID {
			delete(m.locked, entryID)
		}
	}
	delete(m.invoices, id)
	delete(m.lines, id)
	return nil
}

func (m *mockInvoiceRepo) LastNumberForYear(ctx context.Context, userID int64, year int) (string, error) {
	return m.lastNumbers[year], nil
}

type mockTimerRepo struct {
	timer *domain.ActiveTimer
}

func (m *mockTimerRepo) Get(ctx context.Context, userID int64) (*domain.ActiveTimer, error) {
	return m.timer, nil
}

func (m *mockTimerRepo) Save(ctx context.Context, timer *domain.ActiveTimer) error {
	m.timer = timer
	return nil
}

func (m *mockTimerRepo) Delete(ctx context.Context, userID int64) error {
	m.timer = nil
	return nil
}
