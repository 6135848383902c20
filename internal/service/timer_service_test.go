package service

import (
	"context"
	"testing"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
)

func newTestTimerService(timers *mockTimerRepo, projects *mockProjectRepo, entries *mockEntryRepo) TimerService {
	return NewTimerService(timers, projects, newTestEntryService(entries, projects))
}

func TestTimerStateMachine(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	timers := &mockTimerRepo{}
	svc := newTestTimerService(timers, projects, entries)

	state, err := svc.GetState(ctx, testUserID)
	if err != nil || state != domain.TimerStateIdle {
		t.Fatalf("expected idle, got %s (%v)", state, err)
	}

	if err := svc.Pause(ctx, testUserID); err != ErrNoActiveTimer {
		t.Fatalf("expected ErrNoActiveTimer, got %v", err)
	}

	if err := svc.Start(ctx, testUserID, 1, "refactor"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Start(ctx, testUserID, 1, "again"); err != ErrTimerAlreadyRunning {
		t.Fatalf("expected ErrTimerAlreadyRunning, got %v", err)
	}

	if err := svc.Resume(ctx, testUserID); err != ErrTimerNotPaused {
		t.Fatalf("expected ErrTimerNotPaused while running, got %v", err)
	}

	if err := svc.Pause(ctx, testUserID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state, _ := svc.GetState(ctx, testUserID); state != domain.TimerStatePaused {
		t.Fatalf("expected paused, got %s", state)
	}

	if err := svc.Resume(ctx, testUserID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state, _ := svc.GetState(ctx, testUserID); state != domain.TimerStateRunning {
		t.Fatalf("expected running, got %s", state)
	}

	if err := svc.Discard(ctx, testUserID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state, _ := svc.GetState(ctx, testUserID); state != domain.TimerStateIdle {
		t.Fatalf("expected idle after discard, got %s", state)
	}
}

func TestTimerStopCreatesEntry(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	timers := &mockTimerRepo{}
	svc := newTestTimerService(timers, projects, entries)

	if err := svc.Start(ctx, testUserID, 1, "deep work"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Backdate the timer so the produced span clears the minimum duration
	timers.timer.StartedAt = time.Now().Add(-2 * time.Hour)

	entry, err := svc.Stop(ctx, testUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ProjectID != 1 || entry.Note != "deep work" {
		t.Errorf("expected entry to carry timer project and note, got %+v", entry)
	}
	if d := entry.Duration(); d < 119*time.Minute || d > 121*time.Minute {
		t.Errorf("expected ~2h duration, got %v", d)
	}
	if timers.timer != nil {
		t.Error("expected timer cleared after stop")
	}
}

func TestTimerStopTooShortKeepsTimer(t *testing.T) {
	ctx := context.Background()
	_, projects, entries := testFixtures()
	timers := &mockTimerRepo{}
	svc := newTestTimerService(timers, projects, entries)

	if err := svc.Start(ctx, testUserID, 1, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Stopping immediately yields a sub-minute span, which the entry rules
	// reject; the timer must survive.
	if _, err := svc.Stop(ctx, testUserID); !domain.IsCode(err, domain.CodeDurationTooShort) {
		t.Fatalf("expected DurationTooShort, got %v", err)
	}
	if timers.timer == nil {
		t.Error("expected timer kept after rejected stop")
	}
}
