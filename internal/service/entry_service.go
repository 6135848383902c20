package service

import (
	"context"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/repository"
)

// EntryInput is one submitted time entry span
type EntryInput struct {
	ProjectID int64
	StartedAt time.Time
	EndedAt   time.Time
	Note      string
}

// EntryService manages time entries: span validation, overlap detection and
// lock-aware mutation
type EntryService interface {
	// CreateEntry validates and stores one entry
	CreateEntry(ctx context.Context, userID int64, input EntryInput) (*domain.TimeEntry, error)

	// CreateEntries validates and stores a batch all-or-nothing
	CreateEntries(ctx context.Context, userID int64, inputs []EntryInput) ([]*domain.TimeEntry, error)

	// UpdateEntry rewrites an unlocked entry; locked entries fail
	UpdateEntry(ctx context.Context, userID, id int64, input EntryInput) (*domain.TimeEntry, error)

	// DeleteEntry removes an unlocked entry; locked entries fail
	DeleteEntry(ctx context.Context, userID, id int64) error

	// GetEntry retrieves an entry by ID
	GetEntry(ctx context.Context, userID, id int64) (*domain.TimeEntry, error)

	// ListEntries lists entries with optional project and span filters
	ListEntries(ctx context.Context, userID int64, projectID *int64, start, end *time.Time) ([]*domain.TimeEntry, error)

	// GetHistory retrieves the audit trail of an entry
	GetHistory(ctx context.Context, userID, entryID int64) ([]*domain.EntryHistory, error)
}

type entryService struct {
	entryRepo   repository.TimeEntryRepository
	projectRepo repository.ProjectRepository
	overlap     *OverlapChecker
	hours       BusinessHours
}

// NewEntryService creates a new entry service
func NewEntryService(
	entryRepo repository.TimeEntryRepository,
	projectRepo repository.ProjectRepository,
	hours BusinessHours,
) EntryService {
	return &entryService{
		entryRepo:   entryRepo,
		projectRepo: projectRepo,
		overlap:     NewOverlapChecker(entryRepo),
		hours:       hours,
	}
}

// validateInput runs the per-span rules shared by create and update: project
// existence, duration bounds and the optional business-hours window
func (s *entryService) validateInput(ctx context.Context, userID int64, input EntryInput) error {
	if _, err := s.projectRepo.GetByID(ctx, userID, input.ProjectID); err != nil {
		return err
	}
	if err := domain.ValidateEntrySpan(input.StartedAt, input.EndedAt, domain.MaxEntryDuration); err != nil {
		return err
	}
	return s.hours.Check(input.StartedAt, input.EndedAt)
}

func (s *entryService) CreateEntry(ctx context.Context, userID int64, input EntryInput) (*domain.TimeEntry, error) {
	if err := s.validateInput(ctx, userID, input); err != nil {
		return nil, err
	}
	if err := s.overlap.CheckSpan(ctx, userID, input.StartedAt, input.EndedAt, 0); err != nil {
		return nil, err
	}

	entry := domain.NewTimeEntry(userID, input.ProjectID, input.StartedAt, input.EndedAt, Sanitize(input.Note))
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *entryService) CreateEntries(ctx context.Context, userID int64, inputs []EntryInput) ([]*domain.TimeEntry, error) {
	if len(inputs) == 0 {
		return nil, domain.NewError(domain.CodeFieldRequired, "at least one entry is required")
	}

	batch := make([]batchEntry, len(inputs))
	for i, input := range inputs {
		if err := s.validateInput(ctx, userID, input); err != nil {
			return nil, err
		}
		batch[i] = batchEntry{Start: input.StartedAt, End: input.EndedAt}
	}

	if err := s.overlap.CheckBatch(ctx, userID, batch); err != nil {
		return nil, err
	}

	entries := make([]*domain.TimeEntry, len(inputs))
	for i, input := range inputs {
		entries[i] = domain.NewTimeEntry(userID, input.ProjectID, input.StartedAt, input.EndedAt, Sanitize(input.Note))
	}

	if err := s.entryRepo.CreateBatch(ctx, entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *entryService) UpdateEntry(ctx context.Context, userID, id int64, input EntryInput) (*domain.TimeEntry, error) {
	entry, err := s.entryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if entry.IsLocked() {
		return nil, domain.NewErrorf(domain.CodeTimeEntryLocked, "time entry is locked",
			"entry #%d is billed by invoice #%d and cannot be changed", id, *entry.LockedByInvoiceID)
	}

	if input.ProjectID != 0 {
		entry.ProjectID = input.ProjectID
	}
	if !input.StartedAt.IsZero() {
		entry.StartedAt = input.StartedAt
	}
	if !input.EndedAt.IsZero() {
		entry.EndedAt = input.EndedAt
	}
	if input.Note != "" {
		entry.Note = Sanitize(input.Note)
	}

	merged := EntryInput{
		ProjectID: entry.ProjectID,
		StartedAt: entry.StartedAt,
		EndedAt:   entry.EndedAt,
	}
	if err := s.validateInput(ctx, userID, merged); err != nil {
		return nil, err
	}
	if err := s.overlap.CheckSpan(ctx, userID, entry.StartedAt, entry.EndedAt, id); err != nil {
		return nil, err
	}

	// The repository re-checks the lock inside the write transaction, so a
	// lock taken after the read above still aborts the update.
	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *entryService) DeleteEntry(ctx context.Context, userID, id int64) error {
	return s.entryRepo.Delete(ctx, userID, id)
}

func (s *entryService) GetEntry(ctx context.Context, userID, id int64) (*domain.TimeEntry, error) {
	return s.entryRepo.GetByID(ctx, userID, id)
}

func (s *entryService) ListEntries(ctx context.Context, userID int64, projectID *int64, start, end *time.Time) ([]*domain.TimeEntry, error) {
	return s.entryRepo.List(ctx, userID, projectID, start, end, true)
}

func (s *entryService) GetHistory(ctx context.Context, userID, entryID int64) ([]*domain.EntryHistory, error) {
	return s.entryRepo.GetHistory(ctx, userID, entryID)
}
