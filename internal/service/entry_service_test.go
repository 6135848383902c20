package service

import (
	"context"
	"testing"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
)

func newTestEntryService(entries *mockEntryRepo, projects *mockProjectRepo) EntryService {
	return NewEntryService(entries, projects, BusinessHours{})
}

func TestCreateEntry(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	svc := newTestEntryService(entries, projects)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entry, err := svc.CreateEntry(ctx, testUserID, EntryInput{
		ProjectID: 1,
		StartedAt: base,
		EndedAt:   base.Add(2 * time.Hour),
		Note:      "  layout work  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID == 0 {
		t.Error("expected entry to be persisted")
	}
	if entry.Note != "layout work" {
		t.Errorf("expected sanitized note, got %q", entry.Note)
	}
}

func TestCreateEntryRejectsBadSpans(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	svc := newTestEntryService(entries, projects)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		wantCode string
	}{
		{"end before start", base, base.Add(-time.Hour), domain.CodeInvalidTimeRange},
		{"zero length", base, base, domain.CodeInvalidTimeRange},
		{"under a minute", base, base.Add(30 * time.Second), domain.CodeDurationTooShort},
		{"over a day", base, base.Add(24*time.Hour + time.Second), domain.CodeDurationTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEntry(ctx, testUserID, EntryInput{ProjectID: 1, StartedAt: tt.start, EndedAt: tt.end})
			if !domain.IsCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestCreateEntryRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	svc := newTestEntryService(entries, projects)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if _, err := svc.CreateEntry(ctx, testUserID, EntryInput{ProjectID: 1, StartedAt: base, EndedAt: base.Add(2 * time.Hour)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CreateEntry(ctx, testUserID, EntryInput{ProjectID: 2, StartedAt: base.Add(time.Hour), EndedAt: base.Add(3 * time.Hour)})
	if !domain.IsCode(err, domain.CodeTimeEntryOverlap) {
		t.Fatalf("expected TimeEntryOverlap, got %v", err)
	}

	// But an entry that starts exactly where the first ends is fine
	if _, err := svc.CreateEntry(ctx, testUserID, EntryInput{ProjectID: 2, StartedAt: base.Add(2 * time.Hour), EndedAt: base.Add(3 * time.Hour)}); err != nil {
		t.Fatalf("adjacent entry should pass, got %v", err)
	}
}

func TestCreateEntryUnknownProject(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	svc := newTestEntryService(entries, projects)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := svc.CreateEntry(ctx, testUserID, EntryInput{ProjectID: 42, StartedAt: base, EndedAt: base.Add(time.Hour)})
	if !domain.IsCode(err, domain.CodeEntityNotFound) {
		t.Fatalf("expected EntityNotFound, got %v", err)
	}
}

func TestCreateEntriesAllOrNothing(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	svc := newTestEntryService(entries, projects)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	// Second and third overlap each other, so nothing may land
	_, err := svc.CreateEntries(ctx, testUserID, []EntryInput{
		{ProjectID: 1, StartedAt: base, EndedAt: base.Add(time.Hour)},
		{ProjectID: 1, StartedAt: base.Add(2 * time.Hour), EndedAt: base.Add(3 * time.Hour)},
		{ProjectID: 1, StartedAt: base.Add(2*time.Hour + 30*time.Minute), EndedAt: base.Add(4 * time.Hour)},
	})
	if !domain.IsCode(err, domain.CodeTimeEntryOverlap) {
		t.Fatalf("expected TimeEntryOverlap, got %v", err)
	}
	if len(entries.entries) != 0 {
		t.Errorf("expected no entries persisted, got %d", len(entries.entries))
	}

	created, err := svc.CreateEntries(ctx, testUserID, []EntryInput{
		{ProjectID: 1, StartedAt: base, EndedAt: base.Add(time.Hour)},
		{ProjectID: 2, StartedAt: base.Add(2 * time.Hour), EndedAt: base.Add(3 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 2 || len(entries.batches) != 1 {
		t.Errorf("expected 2 entries in one batch, got %d entries, %d batches", len(created), len(entries.batches))
	}
}

func TestUpdateEntryLocked(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	svc := newTestEntryService(entries, projects)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entry := domain.NewTimeEntry(testUserID, 1, base, base.Add(time.Hour), "")
	invoiceID := int64(5)
	entry.LockedByInvoiceID = &invoiceID
	entries.Create(ctx, entry)

	_, err := svc.UpdateEntry(ctx, testUserID, entry.ID, EntryInput{EndedAt: base.Add(2 * time.Hour)})
	if !domain.IsCode(err, domain.CodeTimeEntryLocked) {
		t.Fatalf("expected TimeEntryLocked, got %v", err)
	}

	if err := svc.DeleteEntry(ctx, testUserID, entry.ID); !domain.IsCode(err, domain.CodeTimeEntryLocked) {
		t.Fatalf("expected TimeEntryLocked on delete, got %v", err)
	}
}

func TestUpdateEntryAllowsOwnSpan(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	svc := newTestEntryService(entries, projects)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	entry, err := svc.CreateEntry(ctx, testUserID, EntryInput{ProjectID: 1, StartedAt: base, EndedAt: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Extending into its own span must not count as a conflict
	updated, err := svc.UpdateEntry(ctx, testUserID, entry.ID, EntryInput{EndedAt: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := updated.Duration(); got != 90*time.Minute {
		t.Errorf("expected 90m duration, got %v", got)
	}
}

func TestUpdateEntryCrossUserIsolation(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	svc := newTestEntryService(entries, projects)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	foreign := domain.NewTimeEntry(99, 1, base, base.Add(time.Hour), "")
	entries.Create(ctx, foreign)

	if _, err := svc.GetEntry(ctx, testUserID, foreign.ID); !domain.IsCode(err, domain.CodeEntityNotFound) {
		t.Fatalf("expected EntityNotFound across users, got %v", err)
	}

	// Another user's entry never counts as an overlap
	if _, err := svc.CreateEntry(ctx, testUserID, EntryInput{ProjectID: 1, StartedAt: base, EndedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("expected pass despite other user's identical span, got %v", err)
	}
}
