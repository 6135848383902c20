package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
)

func entryAt(id, userID int64, start time.Time, d time.Duration) *domain.TimeEntry {
	e := domain.NewTimeEntry(userID, 1, start, start.Add(d), "")
	e.ID = id
	return e
}

func TestCheckSpanNoConflict(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockEntryRepo(entryAt(1, 7, base, time.Hour))
	checker := NewOverlapChecker(repo)

	// Touching at the boundary is not an overlap
	if err := checker.CheckSpan(context.Background(), 7, base.Add(time.Hour), base.Add(2*time.Hour), 0); err != nil {
		t.Fatalf("adjacent span should pass, got %v", err)
	}
}

func TestCheckSpanConflict(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockEntryRepo(entryAt(1, 7, base, 2*time.Hour))
	repo.projectNames[1] = "Website"
	repo.clientNames[1] = "ACME"
	checker := NewOverlapChecker(repo)

	err := checker.CheckSpan(context.Background(), 7, base.Add(time.Hour), base.Add(3*time.Hour), 0)
	if !domain.IsCode(err, domain.CodeTimeEntryOverlap) {
		t.Fatalf("expected TimeEntryOverlap, got %v", err)
	}
	if !strings.Contains(err.Error(), "entry #1") {
		t.Errorf("expected conflict to name entry #1, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "ACME") || !strings.Contains(err.Error(), "Website") {
		t.Errorf("expected conflict to name client and project, got %q", err.Error())
	}
}

func TestCheckSpanExcludesOwnEntry(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockEntryRepo(entryAt(1, 7, base, time.Hour))
	checker := NewOverlapChecker(repo)

	// Extending entry 1 over its own span must not conflict with itself
	if err := checker.CheckSpan(context.Background(), 7, base, base.Add(2*time.Hour), 1); err != nil {
		t.Fatalf("expected pass when excluding own entry, got %v", err)
	}
}

func TestCheckSpanReportsEarliestConflict(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockEntryRepo(
		entryAt(5, 7, base.Add(2*time.Hour), time.Hour),
		entryAt(3, 7, base, time.Hour),
	)
	checker := NewOverlapChecker(repo)

	err := checker.CheckSpan(context.Background(), 7, base, base.Add(4*time.Hour), 0)
	if !domain.IsCode(err, domain.CodeTimeEntryOverlap) {
		t.Fatalf("expected TimeEntryOverlap, got %v", err)
	}
	if !strings.Contains(err.Error(), "entry #3") {
		t.Errorf("expected earliest-starting conflict (entry #3), got %q", err.Error())
	}
}

func TestCheckBatchSelfOverlap(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	checker := NewOverlapChecker(newMockEntryRepo())

	batch := []batchEntry{
		{Start: base, End: base.Add(time.Hour)},
		{Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour)},
		{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)},
	}

	err := checker.CheckBatch(context.Background(), 7, batch)
	if !domain.IsCode(err, domain.CodeTimeEntryOverlap) {
		t.Fatalf("expected TimeEntryOverlap, got %v", err)
	}
	// 1-based indices of the colliding pair
	if !strings.Contains(err.Error(), "entry 1") || !strings.Contains(err.Error(), "entry 3") {
		t.Errorf("expected indices 1 and 3 in error, got %q", err.Error())
	}
}

func TestCheckBatchAgainstStore(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockEntryRepo(entryAt(1, 7, base.Add(5*time.Hour), time.Hour))
	checker := NewOverlapChecker(repo)

	batch := []batchEntry{
		{Start: base, End: base.Add(time.Hour)},
		{Start: base.Add(5*time.Hour + 30*time.Minute), End: base.Add(7 * time.Hour)},
	}

	err := checker.CheckBatch(context.Background(), 7, batch)
	if !domain.IsCode(err, domain.CodeTimeEntryOverlap) {
		t.Fatalf("expected TimeEntryOverlap against stored entry, got %v", err)
	}
}

func TestCheckBatchExcludeID(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMockEntryRepo(entryAt(1, 7, base, time.Hour))
	checker := NewOverlapChecker(repo)

	// Resubmitting entry 1's own span with its exclude id set passes
	batch := []batchEntry{
		{Start: base, End: base.Add(2 * time.Hour), ExcludeID: 1},
	}

	if err := checker.CheckBatch(context.Background(), 7, batch); err != nil {
		t.Fatalf("expected pass when conflict is the excluded entry, got %v", err)
	}
}

func TestCheckBatchTooLarge(t *testing.T) {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	checker := NewOverlapChecker(newMockEntryRepo())

	batch := make([]batchEntry, MaxBatchSize+1)
	for i := range batch {
		start := base.Add(time.Duration(i*2) * time.Hour)
		batch[i] = batchEntry{Start: start, End: start.Add(time.Hour)}
	}

	if err := checker.CheckBatch(context.Background(), 7, batch); err == nil {
		t.Fatal("expected error for oversized batch")
	}
}
