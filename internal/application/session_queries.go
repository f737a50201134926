package application

import (
	"context"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

// ListMemberBookings returns the member's active personal sessions ordered by
// start time. These are the ids Reschedule and Cancel accept.
func (s *SessionService) ListMemberBookings(ctx context.Context, memberID string) (sessions []Session, err error) {
	return s.listMemberSessions(ctx, "ListMemberBookings", memberID, schedule.KindPersonal)
}

// ListMemberSessions returns every active session the member holds.
func (s *SessionService) ListMemberSessions(ctx context.Context, memberID string) (sessions []Session, err error) {
	return s.listMemberSessions(ctx, "ListMemberSessions", memberID, "")
}

func (s *SessionService) listMemberSessions(ctx context.Context, operation, memberID string, kind schedule.Kind) (sessions []Session, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, operation, "member_id", memberID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list member sessions", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(sessions)).InfoContext(ctx, "member sessions listed")
	}()

	err = s.store.WithReadOnlyTransaction(ctx, func(repos persistence.Repositories) error {
		if _, err := repos.GetMember(ctx, memberID); err != nil {
			return mapRepoError(err, ErrMemberNotFound)
		}
		records, err := repos.ListMemberSessions(ctx, memberID, kind)
		if err != nil {
			return mapRepoError(err, nil)
		}
		sessions = toSessions(records)
		return nil
	})
	err = storageFailure(err)
	return
}

// ListGroupClasses returns active group classes with their current enrolment.
func (s *SessionService) ListGroupClasses(ctx context.Context) (classes []Session, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListGroupClasses")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list classes", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(classes)).InfoContext(ctx, "classes listed")
	}()

	err = s.store.WithReadOnlyTransaction(ctx, func(repos persistence.Repositories) error {
		records, err := repos.ListActiveSessions(ctx, persistence.SessionFilter{Kind: schedule.KindGroup})
		if err != nil {
			return mapRepoError(err, nil)
		}
		classes = make([]Session, 0, len(records))
		for _, record := range records {
			count, err := repos.CountMemberships(ctx, record.ID)
			if err != nil {
				return mapRepoError(err, nil)
			}
			class := toSession(record)
			class.Enrolled = count
			classes = append(classes, class)
		}
		return nil
	})
	err = storageFailure(err)
	return
}

// ListTrainerSessions returns a trainer's active sessions of one kind ordered by start.
func (s *SessionService) ListTrainerSessions(ctx context.Context, trainerID string, kind schedule.Kind) (sessions []Session, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListTrainerSessions", "trainer_id", trainerID, "kind", string(kind))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list trainer sessions", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(sessions)).InfoContext(ctx, "trainer sessions listed")
	}()

	if !kind.Valid() {
		vErr := &ValidationError{}
		vErr.add("kind", "kind must be personal or group")
		err = vErr
		return
	}

	err = s.store.WithReadOnlyTransaction(ctx, func(repos persistence.Repositories) error {
		if _, err := repos.GetTrainer(ctx, trainerID); err != nil {
			return mapRepoError(err, ErrTrainerNotFound)
		}
		records, err := repos.ListActiveSessions(ctx, persistence.SessionFilter{TrainerID: trainerID, Kind: kind})
		if err != nil {
			return mapRepoError(err, nil)
		}
		sessions = make([]Session, 0, len(records))
		for _, record := range records {
			session := toSession(record)
			if session.Enrolled, err = repos.CountMemberships(ctx, record.ID); err != nil {
				return mapRepoError(err, nil)
			}
			sessions = append(sessions, session)
		}
		return nil
	})
	err = storageFailure(err)
	return
}

// ListTrainerMembers returns the distinct members attending the trainer's active sessions.
func (s *SessionService) ListTrainerMembers(ctx context.Context, trainerID string) (members []Member, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListTrainerMembers", "trainer_id", trainerID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list trainer members", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(members)).InfoContext(ctx, "trainer members listed")
	}()

	err = s.store.WithReadOnlyTransaction(ctx, func(repos persistence.Repositories) error {
		if _, err := repos.GetTrainer(ctx, trainerID); err != nil {
			return mapRepoError(err, ErrTrainerNotFound)
		}
		records, err := repos.ListTrainerMembers(ctx, trainerID)
		if err != nil {
			return mapRepoError(err, nil)
		}
		members = make([]Member, 0, len(records))
		for _, record := range records {
			members = append(members, toMember(record))
		}
		return nil
	})
	err = storageFailure(err)
	return
}
