package application

import (
	"context"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

// OverlapQuery describes one overlap scan over a trainer's active sessions.
type OverlapQuery struct {
	TrainerID string
	Interval  schedule.Interval
	// Kind restricts the scan; empty scans every kind.
	Kind schedule.Kind
	// ExcludeSessionID skips the session being moved.
	ExcludeSessionID string
}

// HasOverlap reports whether the trainer has an active session intersecting
// the query interval under the half-open rule.
func HasOverlap(ctx context.Context, sessions persistence.SessionRepository, query OverlapQuery) (bool, error) {
	_, found, err := findOverlap(ctx, sessions, query)
	return found, err
}

func findOverlap(ctx context.Context, sessions persistence.SessionRepository, query OverlapQuery) (schedule.Slot, bool, error) {
	existing, err := sessions.ListActiveSessions(ctx, persistence.SessionFilter{
		TrainerID: query.TrainerID,
		Kind:      query.Kind,
		ExcludeID: query.ExcludeSessionID,
	})
	if err != nil {
		return schedule.Slot{}, false, mapRepoError(err, nil)
	}

	slots := make([]schedule.Slot, 0, len(existing))
	for _, session := range existing {
		slots = append(slots, session.Slot())
	}

	slot, found := schedule.FindOverlap(slots, query.Interval, schedule.Filter{
		Kind:             query.Kind,
		ExcludeSessionID: query.ExcludeSessionID,
	})
	return slot, found, nil
}
