package service

import (
	"context"
	"time"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/repository"
)

// MaxBatchSize caps how many entries a bulk submission may carry. The bulk
// self-check is pairwise, so the cap bounds it at ~1250 comparisons.
const MaxBatchSize = 50

// OverlapChecker detects time entry conflicts before any write happens.
// Intervals are half-open [start, end): entries that merely touch at a
// boundary do not conflict.
type OverlapChecker struct {
	entryRepo repository.TimeEntryRepository
}

// NewOverlapChecker creates a new OverlapChecker
func NewOverlapChecker(entryRepo repository.TimeEntryRepository) *OverlapChecker {
	return &OverlapChecker{entryRepo: entryRepo}
}

// CheckSpan fails with TimeEntryOverlap if any stored entry of the user
// intersects [start, end). excludeID skips the entry being updated (0 to skip
// nothing). The error names the earliest-starting conflict.
func (c *OverlapChecker) CheckSpan(ctx context.Context, userID int64, start, end time.Time, excludeID int64) error {
	var excludeIDs []int64
	if excludeID > 0 {
		excludeIDs = []int64{excludeID}
	}

	conflicts, err := c.entryRepo.FindOverlapping(ctx, userID, start, end, excludeIDs)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return overlapError(conflicts[0])
	}

	return nil
}

// batchEntry is one candidate span in a bulk submission
type batchEntry struct {
	Start     time.Time
	End       time.Time
	ExcludeID int64 // existing entry id to skip when checking the store, 0 for new
}

// CheckBatch validates a bulk submission in two phases: a pairwise self-check
// across the batch, then a single covering-interval query against the store.
// Either every span is clear or the first failure aborts the whole batch.
func (c *OverlapChecker) CheckBatch(ctx context.Context, userID int64, batch []batchEntry) error {
	if len(batch) == 0 {
		return nil
	}
	if len(batch) > MaxBatchSize {
		return domain.NewErrorf(domain.CodeInvalidTimeRange, "batch is too large",
			"at most %d entries per batch, got %d", MaxBatchSize, len(batch))
	}

	// Phase 1: pairwise self-check. Indices in the error are 1-based to match
	// how the user numbered their input.
	for i := 0; i < len(batch); i++ {
		for j := i + 1; j < len(batch); j++ {
			if domain.IntervalsOverlap(batch[i].Start, batch[i].End, batch[j].Start, batch[j].End) {
				return domain.NewErrorf(domain.CodeTimeEntryOverlap, "entries in the batch overlap each other",
					"entry %d (%s to %s) overlaps entry %d (%s to %s)",
					i+1, batch[i].Start.Format(time.RFC3339), batch[i].End.Format(time.RFC3339),
					j+1, batch[j].Start.Format(time.RFC3339), batch[j].End.Format(time.RFC3339))
			}
		}
	}

	// Phase 2: one range query over the covering interval, then each span
	// against each fetched row.
	min, max := batch[0].Start, batch[0].End
	for _, e := range batch[1:] {
		if e.Start.Before(min) {
			min = e.Start
		}
		if e.End.After(max) {
			max = e.End
		}
	}

	conflicts, err := c.entryRepo.FindOverlapping(ctx, userID, min, max, nil)
	if err != nil {
		return err
	}

	for _, e := range batch {
		for _, conflict := range conflicts {
			if conflict.EntryID == e.ExcludeID {
				continue
			}
			if domain.IntervalsOverlap(e.Start, e.End, conflict.StartedAt, conflict.EndedAt) {
				return overlapError(conflict)
			}
		}
	}

	return nil
}

// overlapError builds the TimeEntryOverlap violation naming the conflicting
// entry with its project and client
func overlapError(c *domain.EntryConflict) error {
	return domain.NewErrorf(domain.CodeTimeEntryOverlap, "time entry overlaps an existing entry",
		"conflicts with entry #%d (%s / %s) from %s to %s",
		c.EntryID, c.ClientName, c.ProjectName,
		c.StartedAt.Format(time.RFC3339), c.EndedAt.Format(time.RFC3339))
}
