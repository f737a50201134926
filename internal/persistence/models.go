package persistence

import (
	"time"

	"github.com/example/club-scheduler/internal/schedule"
)

// Trainer represents a coach together with the daily window in which they accept sessions.
type Trainer struct {
	ID                string
	FullName          string
	Phone             string
	AvailabilityStart schedule.TimeOfDay
	AvailabilityEnd   schedule.TimeOfDay
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Availability returns the trainer's window as an interval.
func (t Trainer) Availability() schedule.Interval {
	return schedule.Interval{Start: t.AvailabilityStart, End: t.AvailabilityEnd}
}

// Room represents a bookable training room.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Booked    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionStatus tracks the lifecycle of a training session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCancelled SessionStatus = "cancelled"
)

// TrainingSession represents a personal session or group class.
type TrainingSession struct {
	ID        string
	TrainerID string
	RoomID    *string
	Kind      schedule.Kind
	Start     schedule.TimeOfDay
	End       schedule.TimeOfDay
	Status    SessionStatus
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval returns the session's time range.
func (s TrainingSession) Interval() schedule.Interval {
	return schedule.Interval{Start: s.Start, End: s.End}
}

// Slot returns the view used by the overlap detector.
func (s TrainingSession) Slot() schedule.Slot {
	return schedule.Slot{SessionID: s.ID, Kind: s.Kind, Interval: s.Interval()}
}

// Membership links a member to a session they booked or joined.
type Membership struct {
	SessionID string
	MemberID  string
	CreatedAt time.Time
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
