package persistence

import (
	"context"
	"time"

	"github.com/example/club-scheduler/internal/schedule"
)

// TrainerRepository stores trainers and their availability windows.
type TrainerRepository interface {
	CreateTrainer(ctx context.Context, trainer Trainer) error
	GetTrainer(ctx context.Context, id string) (Trainer, error)
	UpdateTrainerAvailability(ctx context.Context, id string, start, end schedule.TimeOfDay, updatedAt time.Time) error
	ListTrainers(ctx context.Context) ([]Trainer, error)
}

// RoomRepository stores rooms and their booked flag.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	ListUnbookedRooms(ctx context.Context) ([]Room, error)
	// ReserveRoom flips booked from false to true. It returns ErrConflict when
	// the room is already booked and ErrNotFound when it does not exist.
	ReserveRoom(ctx context.Context, id string, updatedAt time.Time) error
	// ReleaseRoom clears the booked flag. Releasing a free room is not an error.
	ReleaseRoom(ctx context.Context, id string, updatedAt time.Time) error
}

// SessionFilter narrows active session scans.
type SessionFilter struct {
	TrainerID string
	// Kind limits results to one kind; empty means every kind.
	Kind      schedule.Kind
	ExcludeID string
}

// SessionRepository stores training sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session TrainingSession) error
	GetSession(ctx context.Context, id string) (TrainingSession, error)
	UpdateSessionTimes(ctx context.Context, id string, start, end schedule.TimeOfDay, updatedAt time.Time) error
	UpdateSessionStatus(ctx context.Context, id string, status SessionStatus, updatedAt time.Time) error
	// ListActiveSessions returns active sessions matching filter ordered by start time.
	ListActiveSessions(ctx context.Context, filter SessionFilter) ([]TrainingSession, error)
}

// MembershipRepository stores the member/session association.
type MembershipRepository interface {
	CreateMembership(ctx context.Context, membership Membership) error
	MembershipExists(ctx context.Context, sessionID, memberID string) (bool, error)
	CountMemberships(ctx context.Context, sessionID string) (int, error)
	// ListMemberSessions returns the member's active sessions ordered by start
	// time, optionally restricted to one kind.
	ListMemberSessions(ctx context.Context, memberID string, kind schedule.Kind) ([]TrainingSession, error)
	// ListTrainerMembers returns the distinct members attending the trainer's active sessions.
	ListTrainerMembers(ctx context.Context, trainerID string) ([]Member, error)
}

// MemberRepository stores club members.
type MemberRepository interface {
	CreateMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, id string) (Member, error)
}

// Repositories is the set of repositories bound to one transaction.
type Repositories interface {
	TrainerRepository
	RoomRepository
	SessionRepository
	MembershipRepository
	MemberRepository
}

// TxFunc runs inside a store transaction. Returning an error rolls it back.
type TxFunc func(repos Repositories) error

// Store opens transactions over the repositories. Implementations guarantee
// that concurrent WithTransaction calls behave as if run one after another.
type Store interface {
	WithTransaction(ctx context.Context, fn TxFunc) error
	WithReadOnlyTransaction(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
	Close() error
}
