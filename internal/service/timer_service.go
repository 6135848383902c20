package service

import (
	"context"
	"errors"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/repository"
)

var (
	ErrTimerAlreadyRunning = errors.New("timer is already running")
	ErrTimerNotRunning     = errors.New("timer is not running")
	ErrTimerNotPaused      = errors.New("timer is not paused")
	ErrNoActiveTimer       = errors.New("no active timer")
)

// TimerService manages the active timer state machine. Stopping a timer
// produces a time entry through the normal validation and overlap path.
type TimerService interface {
	// GetState returns the current timer state (idle, running, paused)
	GetState(ctx context.Context, userID int64) (domain.TimerState, error)

	// GetActiveTimer returns the current active timer, or nil if idle
	GetActiveTimer(ctx context.Context, userID int64) (*domain.ActiveTimer, error)

	// Start creates a new timer for a project (only from idle)
	Start(ctx context.Context, userID, projectID int64, note string) error

	// Pause pauses the running timer
	Pause(ctx context.Context, userID int64) error

	// Resume resumes a paused timer
	Resume(ctx context.Context, userID int64) error

	// Stop stops the timer and creates a time entry
	Stop(ctx context.Context, userID int64) (*domain.TimeEntry, error)

	// Discard drops the active timer without creating an entry
	Discard(ctx context.Context, userID int64) error

	// ElapsedDuration returns the active duration of the timer
	ElapsedDuration(ctx context.Context, userID int64) (time.Duration, error)

	// AccruedValue calculates the unrounded value accrued so far at the
	// timer's project rate
	AccruedValue(ctx context.Context, userID int64) (float64, error)
}

type timerService struct {
	timerRepo   repository.TimerRepository
	projectRepo repository.ProjectRepository
	entries     EntryService
}

// NewTimerService creates a new timer service
func NewTimerService(
	timerRepo repository.TimerRepository,
	projectRepo repository.ProjectRepository,
	entries EntryService,
) TimerService {
	return &timerService{
		timerRepo:   timerRepo,
		projectRepo: projectRepo,
		entries:     entries,
	}
}

func (s *timerService) GetState(ctx context.Context, userID int64) (domain.TimerState, error) {
	timer, err := s.timerRepo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if timer == nil {
		return domain.TimerStateIdle, nil
	}
	return timer.State(), nil
}

func (s *timerService) GetActiveTimer(ctx context.Context, userID int64) (*domain.ActiveTimer, error) {
	return s.timerRepo.Get(ctx, userID)
}

func (s *timerService) Start(ctx context.Context, userID, projectID int64, note string) error {
	if _, err := s.projectRepo.GetByID(ctx, userID, projectID); err != nil {
		return err
	}

	existing, err := s.timerRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrTimerAlreadyRunning
	}

	timer := domain.NewActiveTimer(userID, projectID, Sanitize(note))
	return s.timerRepo.Save(ctx, timer)
}

func (s *timerService) Pause(ctx context.Context, userID int64) error {
	timer, err := s.timerRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if timer == nil {
		return ErrNoActiveTimer
	}
	if timer.State() != domain.TimerStateRunning {
		return ErrTimerNotRunning
	}

	timer.Pause()
	return s.timerRepo.Save(ctx, timer)
}

func (s *timerService) Resume(ctx context.Context, userID int64) error {
	timer, err := s.timerRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if timer == nil {
		return ErrNoActiveTimer
	}
	if timer.State() != domain.TimerStatePaused {
		return ErrTimerNotPaused
	}

	timer.Resume()
	return s.timerRepo.Save(ctx, timer)
}

func (s *timerService) Stop(ctx context.Context, userID int64) (*domain.TimeEntry, error) {
	timer, err := s.timerRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if timer == nil {
		return nil, ErrNoActiveTimer
	}

	// The produced entry goes through the full rule path, so a too-short or
	// overlapping timer span is rejected and the timer survives for the user
	// to discard or keep running.
	draft := timer.ToTimeEntry()
	entry, err := s.entries.CreateEntry(ctx, userID, EntryInput{
		ProjectID: draft.ProjectID,
		StartedAt: draft.StartedAt,
		EndedAt:   draft.EndedAt,
		Note:      draft.Note,
	})
	if err != nil {
		return nil, err
	}

	if err := s.timerRepo.Delete(ctx, userID); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *timerService) Discard(ctx context.Context, userID int64) error {
	timer, err := s.timerRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if timer == nil {
		return ErrNoActiveTimer
	}

	return s.timerRepo.Delete(ctx, userID)
}

func (s *timerService) ElapsedDuration(ctx context.Context, userID int64) (time.Duration, error) {
	timer, err := s.timerRepo.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if timer == nil {
		return 0, ErrNoActiveTimer
	}

	return timer.Elapsed(), nil
}

func (s *timerService) AccruedValue(ctx context.Context, userID int64) (float64, error) {
	timer, err := s.timerRepo.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if timer == nil {
		return 0, ErrNoActiveTimer
	}

	project, err := s.projectRepo.GetByID(ctx, userID, timer.ProjectID)
	if err != nil {
		return 0, err
	}

	return timer.Elapsed().Hours() * project.HourlyRate, nil
}
