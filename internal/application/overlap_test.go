package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

type sessionRepoStub struct {
	sessions []persistence.TrainingSession
	listErr  error
	filters  []persistence.SessionFilter
}

func (s *sessionRepoStub) CreateSession(ctx context.Context, session persistence.TrainingSession) error {
	s.sessions = append(s.sessions, session)
	return nil
}

func (s *sessionRepoStub) GetSession(ctx context.Context, id string) (persistence.TrainingSession, error) {
	for _, session := range s.sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return persistence.TrainingSession{}, persistence.ErrNotFound
}

func (s *sessionRepoStub) UpdateSessionTimes(ctx context.Context, id string, start, end schedule.TimeOfDay, updatedAt time.Time) error {
	return nil
}

func (s *sessionRepoStub) UpdateSessionStatus(ctx context.Context, id string, status persistence.SessionStatus, updatedAt time.Time) error {
	return nil
}

// ListActiveSessions ignores the filter so that the in-Go predicate is what the
// tests observe.
func (s *sessionRepoStub) ListActiveSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.TrainingSession, error) {
	s.filters = append(s.filters, filter)
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.sessions, nil
}

func tod(hour, minute int) schedule.TimeOfDay {
	return schedule.MustTimeOfDay(hour, minute)
}

func iv(t *testing.T, startHour, startMinute, endHour, endMinute int) schedule.Interval {
	t.Helper()
	interval, err := schedule.NewInterval(tod(startHour, startMinute), tod(endHour, endMinute))
	if err != nil {
		t.Fatalf("invalid interval: %v", err)
	}
	return interval
}

func TestHasOverlap(t *testing.T) {
	ctx := context.Background()
	repo := &sessionRepoStub{sessions: []persistence.TrainingSession{
		{ID: "p1", TrainerID: "t1", Kind: schedule.KindPersonal, Start: tod(10, 0), End: tod(11, 0), Status: persistence.SessionActive},
		{ID: "g1", TrainerID: "t1", Kind: schedule.KindGroup, Start: tod(14, 0), End: tod(15, 0), Status: persistence.SessionActive},
	}}

	t.Run("pushes the filter down", func(t *testing.T) {
		repo.filters = nil
		_, err := HasOverlap(ctx, repo, OverlapQuery{TrainerID: "t1", Interval: iv(t, 12, 0, 13, 0), Kind: schedule.KindPersonal, ExcludeSessionID: "p1"})
		if err != nil {
			t.Fatalf("HasOverlap returned error: %v", err)
		}
		want := persistence.SessionFilter{TrainerID: "t1", Kind: schedule.KindPersonal, ExcludeID: "p1"}
		if len(repo.filters) != 1 || repo.filters[0] != want {
			t.Fatalf("unexpected filters %+v", repo.filters)
		}
	})

	t.Run("touching sessions are free", func(t *testing.T) {
		conflict, err := HasOverlap(ctx, repo, OverlapQuery{TrainerID: "t1", Interval: iv(t, 11, 0, 12, 0)})
		if err != nil || conflict {
			t.Fatalf("expected no conflict, got conflict=%v err=%v", conflict, err)
		}
	})

	t.Run("personal scan skips classes", func(t *testing.T) {
		conflict, err := HasOverlap(ctx, repo, OverlapQuery{TrainerID: "t1", Interval: iv(t, 14, 30, 15, 30), Kind: schedule.KindPersonal})
		if err != nil || conflict {
			t.Fatalf("expected class to be ignored, got conflict=%v err=%v", conflict, err)
		}
	})

	t.Run("unrestricted scan sees classes", func(t *testing.T) {
		conflict, err := HasOverlap(ctx, repo, OverlapQuery{TrainerID: "t1", Interval: iv(t, 14, 30, 15, 30)})
		if err != nil || !conflict {
			t.Fatalf("expected conflict, got conflict=%v err=%v", conflict, err)
		}
	})

	t.Run("excluded session is skipped", func(t *testing.T) {
		conflict, err := HasOverlap(ctx, repo, OverlapQuery{TrainerID: "t1", Interval: iv(t, 10, 30, 11, 30), ExcludeSessionID: "p1"})
		if err != nil || conflict {
			t.Fatalf("expected self to be excluded, got conflict=%v err=%v", conflict, err)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		broken := &sessionRepoStub{listErr: errors.New("timeout")}
		if _, err := HasOverlap(ctx, broken, OverlapQuery{TrainerID: "t1", Interval: iv(t, 9, 0, 10, 0)}); !errors.Is(err, ErrStorageFailure) {
			t.Fatalf("expected ErrStorageFailure, got %v", err)
		}
	})
}
