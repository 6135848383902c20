package repository

import (
	"context"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
)

// UserRepository manages account identities. The CLI resolves the active
// user once at startup; everything else is scoped by its id.
type UserRepository interface {
	GetOrCreate(ctx context.Context, name, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// ClientRepository manages client persistence
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Client, error)
	GetByName(ctx context.Context, userID int64, name string) (*domain.Client, error)
	List(ctx context.Context, userID int64, includeArchived bool) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	// CountByName counts clients with the given trimmed name, compared
	// case-insensitively, excluding excludeID (0 to exclude nothing)
	CountByName(ctx context.Context, userID int64, name string, excludeID int64) (int, error)
	Archive(ctx context.Context, userID, id int64) error
	Unarchive(ctx context.Context, userID, id int64) error
}

// ProjectRepository manages project persistence
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Project, error)
	List(ctx context.Context, userID int64, clientID *int64) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	// CountByName counts projects of one client with the given trimmed name,
	// compared case-insensitively, excluding excludeID (0 to exclude nothing)
	CountByName(ctx context.Context, userID, clientID int64, name string, excludeID int64) (int, error)
}

// TimeEntryRepository manages time entry persistence with audit trail.
// Update and Delete are lock-guarded: the locked check and the write happen
// in the same transaction, so a concurrent invoice creation cannot lock the
// entry in between.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *domain.TimeEntry) error
	// CreateBatch inserts all entries in a single transaction; callers run
	// the bulk overlap pre-flight first, so it is all-or-nothing
	CreateBatch(ctx context.Context, entries []*domain.TimeEntry) error
	GetByID(ctx context.Context, userID, id int64) (*domain.TimeEntry, error)
	Update(ctx context.Context, entry *domain.TimeEntry) error
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64, projectID *int64, start, end *time.Time, includeLocked bool) ([]*domain.TimeEntry, error)
	// FindOverlapping returns the user's entries whose half-open interval
	// intersects [start, end), with project and client names joined, ordered
	// by started_at so "first conflict" is deterministic. Entries in
	// excludeIDs are skipped (used on update).
	FindOverlapping(ctx context.Context, userID int64, start, end time.Time, excludeIDs []int64) ([]*domain.EntryConflict, error)
	// FindBillable returns the client's currently-unlocked entries with
	// started_at inside [from, to], ordered by started_at
	FindBillable(ctx context.Context, userID, clientID int64, from, to time.Time) ([]*domain.TimeEntry, error)
	GetHistory(ctx context.Context, userID, entryID int64) ([]*domain.EntryHistory, error)
}

// InvoiceRepository manages invoice persistence. Creation and deletion are
// multi-write operations (invoice + lines + entry locks) and run inside a
// single transaction.
type InvoiceRepository interface {
	// CreateWithLines atomically inserts the invoice and its lines and locks
	// the given entries to it. Fails if any entry is already locked.
	CreateWithLines(ctx context.Context, invoice *domain.Invoice, entryIDs []int64) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Invoice, error)
	List(ctx context.Context, userID int64, clientID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error)
	// UpdatePeriod changes the billing period of a draft invoice
	UpdatePeriod(ctx context.Context, userID, id int64, dateFrom, dateTo time.Time) error
	// UpdateStatus persists a status transition with its timestamps. The
	// write only lands if the stored row still holds the from status, so a
	// writer acting on a stale read cannot rewind a later transition.
	UpdateStatus(ctx context.Context, invoice *domain.Invoice, from domain.InvoiceStatus) error
	GetLines(ctx context.Context, invoiceID int64) ([]*domain.InvoiceLine, error)
	AddLine(ctx context.Context, invoiceID int64, line *domain.InvoiceLine) error
	UpdateLine(ctx context.Context, invoiceID int64, line *domain.InvoiceLine) error
	DeleteLine(ctx context.Context, invoiceID, lineID int64) error
	// DeleteDraft atomically unlocks every entry locked by the invoice and
	// deletes the invoice with its lines
	DeleteDraft(ctx context.Context, userID, id int64) error
	// LastNumberForYear returns the lexicographically-greatest invoice number
	// starting with INV-{year}- for the user, or "" if none exists
	LastNumberForYear(ctx context.Context, userID int64, year int) (string, error)
}

// TimerRepository manages the active timer state (singleton per user)
type TimerRepository interface {
	Get(ctx context.Context, userID int64) (*domain.ActiveTimer, error) // Returns nil if no active timer
	Save(ctx context.Context, timer *domain.ActiveTimer) error
	Delete(ctx context.Context, userID int64) error
}
