package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

// SessionService books, moves, cancels and joins training sessions. Every
// operation runs inside one store transaction.
type SessionService struct {
	store       persistence.Store
	allocator   *RoomAllocator
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSessionService constructs a session service with the provided dependencies.
func NewSessionService(store persistence.Store, allocator *RoomAllocator, idGenerator func() string, now func() time.Time) *SessionService {
	return NewSessionServiceWithLogger(store, allocator, idGenerator, now, nil)
}

// NewSessionServiceWithLogger constructs a session service with a specified logger.
func NewSessionServiceWithLogger(store persistence.Store, allocator *RoomAllocator, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SessionService {
	if allocator == nil {
		allocator = NewRoomAllocator(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		store:       store,
		allocator:   allocator,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

func (s *SessionService) ready() error {
	if s == nil {
		return fmt.Errorf("SessionService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("session store not configured")
	}
	return nil
}

// BookPersonal reserves a one-to-one session with a trainer in a randomly
// chosen free room and records the member's booking.
func (s *SessionService) BookPersonal(ctx context.Context, params BookPersonalParams) (session Session, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "BookPersonal",
		"member_id", params.MemberID,
		"trainer_id", params.TrainerID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to book personal session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID, "room_id", deref(session.RoomID)).InfoContext(ctx, "personal session booked")
	}()

	interval, ivErr := schedule.NewInterval(params.Start, params.End)
	if ivErr != nil {
		err = mapIntervalError(ivErr)
		return
	}

	err = s.store.WithTransaction(ctx, func(repos persistence.Repositories) error {
		if _, err := repos.GetMember(ctx, params.MemberID); err != nil {
			return mapRepoError(err, ErrMemberNotFound)
		}

		if _, err := CheckAvailability(ctx, repos, params.TrainerID, interval); err != nil {
			return err
		}

		conflict, err := HasOverlap(ctx, repos, OverlapQuery{
			TrainerID: params.TrainerID,
			Interval:  interval,
			Kind:      schedule.KindPersonal,
		})
		if err != nil {
			return err
		}
		if conflict {
			return ErrOverlapConflict
		}

		room, err := s.allocator.Allocate(ctx, repos)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.allocator.Reserve(ctx, repos, room.ID, now); err != nil {
			return err
		}

		roomID := room.ID
		record := persistence.TrainingSession{
			ID:        s.idGenerator(),
			TrainerID: params.TrainerID,
			RoomID:    &roomID,
			Kind:      schedule.KindPersonal,
			Start:     interval.Start,
			End:       interval.End,
			Status:    persistence.SessionActive,
			Capacity:  1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.CreateSession(ctx, record); err != nil {
			return mapRepoError(err, nil)
		}

		if err := repos.CreateMembership(ctx, persistence.Membership{
			SessionID: record.ID,
			MemberID:  params.MemberID,
			CreatedAt: now,
		}); err != nil {
			return mapRepoError(err, nil)
		}

		session = toSession(record)
		session.Enrolled = 1
		return nil
	})
	if err = storageFailure(err); err != nil {
		session = Session{}
	}
	return
}

// CreateClass schedules a group class in an administrator chosen room.
func (s *SessionService) CreateClass(ctx context.Context, params CreateClassParams) (session Session, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateClass",
		"trainer_id", params.TrainerID,
		"room_id", params.RoomID,
		"capacity", params.Capacity,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create class", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID).InfoContext(ctx, "group class created")
	}()

	interval, ivErr := schedule.NewInterval(params.Start, params.End)
	if ivErr != nil {
		err = mapIntervalError(ivErr)
		return
	}

	vErr := &ValidationError{}
	if params.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if strings.TrimSpace(params.RoomID) == "" {
		vErr.add("room_id", "room is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.store.WithTransaction(ctx, func(repos persistence.Repositories) error {
		if _, err := CheckAvailability(ctx, repos, params.TrainerID, interval); err != nil {
			return err
		}

		conflict, err := HasOverlap(ctx, repos, OverlapQuery{
			TrainerID: params.TrainerID,
			Interval:  interval,
		})
		if err != nil {
			return err
		}
		if conflict {
			return ErrOverlapConflict
		}

		room, err := repos.GetRoom(ctx, params.RoomID)
		if err != nil {
			return mapRepoError(err, ErrRoomNotFound)
		}
		if room.Booked {
			return ErrRoomAlreadyBooked
		}
		if params.Capacity > room.Capacity {
			vErr := &ValidationError{}
			vErr.add("capacity", fmt.Sprintf("capacity exceeds room capacity of %d", room.Capacity))
			return vErr
		}

		now := s.now()
		if err := s.allocator.Reserve(ctx, repos, room.ID, now); err != nil {
			return err
		}

		roomID := room.ID
		record := persistence.TrainingSession{
			ID:        s.idGenerator(),
			TrainerID: params.TrainerID,
			RoomID:    &roomID,
			Kind:      schedule.KindGroup,
			Start:     interval.Start,
			End:       interval.End,
			Status:    persistence.SessionActive,
			Capacity:  params.Capacity,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.CreateSession(ctx, record); err != nil {
			return mapRepoError(err, nil)
		}

		session = toSession(record)
		return nil
	})
	if err = storageFailure(err); err != nil {
		session = Session{}
	}
	return
}

// Reschedule moves one of the member's personal sessions to a new interval.
// The room and membership stay as they are.
func (s *SessionService) Reschedule(ctx context.Context, params RescheduleParams) (session Session, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Reschedule",
		"member_id", params.MemberID,
		"session_id", params.SessionID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reschedule session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("start", session.Interval.Start.String(), "end", session.Interval.End.String()).InfoContext(ctx, "session rescheduled")
	}()

	err = s.store.WithTransaction(ctx, func(repos persistence.Repositories) error {
		record, err := ownedSession(ctx, repos, params.MemberID, params.SessionID)
		if err != nil {
			return err
		}

		interval, err := schedule.NewInterval(params.Start, params.End)
		if err != nil {
			return mapIntervalError(err)
		}

		if _, err := CheckAvailability(ctx, repos, record.TrainerID, interval); err != nil {
			return err
		}

		conflict, err := HasOverlap(ctx, repos, OverlapQuery{
			TrainerID:        record.TrainerID,
			Interval:         interval,
			ExcludeSessionID: record.ID,
		})
		if err != nil {
			return err
		}
		if conflict {
			return ErrOverlapConflict
		}

		now := s.now()
		if err := repos.UpdateSessionTimes(ctx, record.ID, interval.Start, interval.End, now); err != nil {
			return mapRepoError(err, ErrSessionNotFound)
		}

		record.Start = interval.Start
		record.End = interval.End
		record.UpdatedAt = now
		session = toSession(record)
		return nil
	})
	if err = storageFailure(err); err != nil {
		session = Session{}
	}
	return
}

// Cancel cancels one of the member's personal sessions and frees its room.
// Memberships are kept for history.
func (s *SessionService) Cancel(ctx context.Context, memberID, sessionID string) (session Session, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Cancel",
		"member_id", memberID,
		"session_id", sessionID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", deref(session.RoomID)).InfoContext(ctx, "session cancelled")
	}()

	err = s.store.WithTransaction(ctx, func(repos persistence.Repositories) error {
		record, err := ownedSession(ctx, repos, memberID, sessionID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := repos.UpdateSessionStatus(ctx, record.ID, persistence.SessionCancelled, now); err != nil {
			return mapRepoError(err, ErrSessionNotFound)
		}

		if record.RoomID != nil {
			if err := s.allocator.Release(ctx, repos, *record.RoomID, now); err != nil {
				return err
			}
		}

		record.Status = persistence.SessionCancelled
		record.UpdatedAt = now
		session = toSession(record)
		return nil
	})
	if err = storageFailure(err); err != nil {
		session = Session{}
	}
	return
}

// JoinGroup adds the member to an active group class with spare capacity.
func (s *SessionService) JoinGroup(ctx context.Context, memberID, sessionID string) (session Session, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "JoinGroup",
		"member_id", memberID,
		"session_id", sessionID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to join class", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("enrolled", session.Enrolled, "capacity", session.Capacity).InfoContext(ctx, "class joined")
	}()

	err = s.store.WithTransaction(ctx, func(repos persistence.Repositories) error {
		if _, err := repos.GetMember(ctx, memberID); err != nil {
			return mapRepoError(err, ErrMemberNotFound)
		}

		record, err := repos.GetSession(ctx, sessionID)
		if err != nil {
			return mapRepoError(err, ErrSessionNotFound)
		}
		if record.Status != persistence.SessionActive || record.Kind != schedule.KindGroup {
			return ErrSessionNotFound
		}

		joined, err := repos.MembershipExists(ctx, sessionID, memberID)
		if err != nil {
			return mapRepoError(err, nil)
		}
		if joined {
			return ErrAlreadyJoined
		}

		count, err := repos.CountMemberships(ctx, sessionID)
		if err != nil {
			return mapRepoError(err, nil)
		}
		if count >= record.Capacity {
			return ErrSessionFull
		}

		err = repos.CreateMembership(ctx, persistence.Membership{
			SessionID: sessionID,
			MemberID:  memberID,
			CreatedAt: s.now(),
		})
		if errors.Is(err, persistence.ErrDuplicate) {
			return ErrAlreadyJoined
		}
		if err != nil {
			return mapRepoError(err, nil)
		}

		session = toSession(record)
		session.Enrolled = count + 1
		return nil
	})
	if err = storageFailure(err); err != nil {
		session = Session{}
	}
	return
}

// ownedSession resolves sessionID against the member's active personal
// bookings. Sessions outside that set are reported as not owned when they are
// active and as not found otherwise.
func ownedSession(ctx context.Context, repos persistence.Repositories, memberID, sessionID string) (persistence.TrainingSession, error) {
	owned, err := repos.ListMemberSessions(ctx, memberID, schedule.KindPersonal)
	if err != nil {
		return persistence.TrainingSession{}, mapRepoError(err, nil)
	}
	for _, session := range owned {
		if session.ID == sessionID {
			return session, nil
		}
	}

	session, err := repos.GetSession(ctx, sessionID)
	if err != nil {
		return persistence.TrainingSession{}, mapRepoError(err, ErrSessionNotFound)
	}
	if session.Status != persistence.SessionActive {
		return persistence.TrainingSession{}, ErrSessionNotFound
	}
	return persistence.TrainingSession{}, ErrNotOwnedByCaller
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
