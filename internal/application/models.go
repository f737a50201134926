package application

import (
	"time"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

// SessionStatus is the lifecycle state of a training session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCancelled SessionStatus = "cancelled"
)

// Trainer represents a coach and their daily availability window.
type Trainer struct {
	ID           string
	FullName     string
	Phone        string
	Availability schedule.Interval
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a training room.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Booked    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member represents a club member.
type Member struct {
	ID          string
	FullName    string
	DateOfBirth *time.Time
	Gender      string
	Phone       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents a personal session or a group class. Enrolled is only
// populated by operations that count memberships.
type Session struct {
	ID        string
	TrainerID string
	RoomID    *string
	Kind      schedule.Kind
	Interval  schedule.Interval
	Status    SessionStatus
	Capacity  int
	Enrolled  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookPersonalParams identifies a personal booking request.
type BookPersonalParams struct {
	MemberID  string
	TrainerID string
	Start     schedule.TimeOfDay
	End       schedule.TimeOfDay
}

// CreateClassParams wraps the data required to schedule a group class.
type CreateClassParams struct {
	TrainerID string
	RoomID    string
	Capacity  int
	Start     schedule.TimeOfDay
	End       schedule.TimeOfDay
}

// RescheduleParams moves a member's personal session.
type RescheduleParams struct {
	MemberID  string
	SessionID string
	Start     schedule.TimeOfDay
	End       schedule.TimeOfDay
}

// TrainerInput captures caller provided trainer fields.
type TrainerInput struct {
	FullName          string
	Phone             string
	AvailabilityStart schedule.TimeOfDay
	AvailabilityEnd   schedule.TimeOfDay
}

// SetAvailabilityParams replaces a trainer's window.
type SetAvailabilityParams struct {
	TrainerID string
	Start     schedule.TimeOfDay
	End       schedule.TimeOfDay
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name     string
	Capacity int
}

// MemberInput captures caller provided member fields.
type MemberInput struct {
	FullName    string
	DateOfBirth *time.Time
	Gender      string
	Phone       string
}

func toTrainer(t persistence.Trainer) Trainer {
	return Trainer{
		ID:           t.ID,
		FullName:     t.FullName,
		Phone:        t.Phone,
		Availability: t.Availability(),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toRoom(r persistence.Room) Room {
	return Room{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		Booked:    r.Booked,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toMember(m persistence.Member) Member {
	return Member{
		ID:          m.ID,
		FullName:    m.FullName,
		DateOfBirth: m.DateOfBirth,
		Gender:      m.Gender,
		Phone:       m.Phone,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toSession(s persistence.TrainingSession) Session {
	return Session{
		ID:        s.ID,
		TrainerID: s.TrainerID,
		RoomID:    s.RoomID,
		Kind:      s.Kind,
		Interval:  s.Interval(),
		Status:    SessionStatus(s.Status),
		Capacity:  s.Capacity,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSessions(in []persistence.TrainingSession) []Session {
	out := make([]Session, 0, len(in))
	for _, s := range in {
		out = append(out, toSession(s))
	}
	return out
}
