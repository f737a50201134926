package testfixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/club-scheduler/internal/application"
	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

var (
	trainerCounter uint64
	roomCounter    uint64
	memberCounter  uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Trainer fixtures -----------------------------

// TrainerFixture represents a deterministic trainer record.
type TrainerFixture struct {
	ID                string
	FullName          string
	Phone             string
	AvailabilityStart schedule.TimeOfDay
	AvailabilityEnd   schedule.TimeOfDay
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TrainerOption configures the generated trainer fixture.
type TrainerOption func(*TrainerFixture)

// NewTrainerFixture returns a trainer available 09:00-17:00 unless overridden.
func NewTrainerFixture(opts ...TrainerOption) TrainerFixture {
	idx := atomic.AddUint64(&trainerCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := TrainerFixture{
		ID:                fmt.Sprintf("trainer-%03d", idx),
		FullName:          fmt.Sprintf("Trainer %03d", idx),
		Phone:             fmt.Sprintf("555-1%03d", idx),
		AvailabilityStart: schedule.MustTimeOfDay(9, 0),
		AvailabilityEnd:   schedule.MustTimeOfDay(17, 0),
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTrainerID overrides the generated trainer ID.
func WithTrainerID(id string) TrainerOption {
	return func(f *TrainerFixture) {
		f.ID = id
	}
}

// WithTrainerName overrides the generated name.
func WithTrainerName(name string) TrainerOption {
	return func(f *TrainerFixture) {
		f.FullName = name
	}
}

// WithAvailability sets the trainer's daily window.
func WithAvailability(start, end schedule.TimeOfDay) TrainerOption {
	return func(f *TrainerFixture) {
		f.AvailabilityStart = start
		f.AvailabilityEnd = end
	}
}

// Persistence returns the fixture as a persistence.Trainer value.
func (f TrainerFixture) Persistence() persistence.Trainer {
	return persistence.Trainer{
		ID:                f.ID,
		FullName:          f.FullName,
		Phone:             f.Phone,
		AvailabilityStart: f.AvailabilityStart,
		AvailabilityEnd:   f.AvailabilityEnd,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// Input returns the fixture as an application.TrainerInput.
func (f TrainerFixture) Input() application.TrainerInput {
	return application.TrainerInput{
		FullName:          f.FullName,
		Phone:             f.Phone,
		AvailabilityStart: f.AvailabilityStart,
		AvailabilityEnd:   f.AvailabilityEnd,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic training room record.
type RoomFixture struct {
	ID        string
	Name      string
	Capacity  int
	Booked    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic, unbooked room fixture.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Capacity:  int(10 + idx%5),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomBooked seeds the room with its booked flag set.
func WithRoomBooked() RoomOption {
	return func(f *RoomFixture) {
		f.Booked = true
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		Booked:    f.Booked,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RoomInput.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{Name: f.Name, Capacity: f.Capacity}
}

// ----------------------------- Member fixtures -----------------------------

// MemberFixture represents a deterministic club member.
type MemberFixture struct {
	ID          string
	FullName    string
	DateOfBirth *time.Time
	Gender      string
	Phone       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemberOption configures the generated member fixture.
type MemberOption func(*MemberFixture)

// NewMemberFixture returns a deterministic member fixture.
func NewMemberFixture(opts ...MemberOption) MemberFixture {
	idx := atomic.AddUint64(&memberCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Second)
	dob := time.Date(1990, time.January, int(1+idx%28), 0, 0, 0, 0, time.UTC)
	fixture := MemberFixture{
		ID:          fmt.Sprintf("member-%03d", idx),
		FullName:    fmt.Sprintf("Member %03d", idx),
		DateOfBirth: &dob,
		Gender:      "unspecified",
		Phone:       fmt.Sprintf("555-2%03d", idx),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMemberID overrides the generated member ID.
func WithMemberID(id string) MemberOption {
	return func(f *MemberFixture) {
		f.ID = id
	}
}

// WithMemberName overrides the generated name.
func WithMemberName(name string) MemberOption {
	return func(f *MemberFixture) {
		f.FullName = name
	}
}

// WithoutDateOfBirth clears the date of birth.
func WithoutDateOfBirth() MemberOption {
	return func(f *MemberFixture) {
		f.DateOfBirth = nil
	}
}

// Persistence returns the fixture as a persistence.Member value.
func (f MemberFixture) Persistence() persistence.Member {
	return persistence.Member{
		ID:          f.ID,
		FullName:    f.FullName,
		DateOfBirth: copyTimePtr(f.DateOfBirth),
		Gender:      f.Gender,
		Phone:       f.Phone,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.MemberInput.
func (f MemberFixture) Input() application.MemberInput {
	return application.MemberInput{
		FullName:    f.FullName,
		DateOfBirth: copyTimePtr(f.DateOfBirth),
		Gender:      f.Gender,
		Phone:       f.Phone,
	}
}

// ----------------------------- Session fixtures -----------------------------

// SessionFixture represents a deterministic training session row.
type SessionFixture struct {
	ID        string
	TrainerID string
	RoomID    *string
	Kind      schedule.Kind
	Start     schedule.TimeOfDay
	End       schedule.TimeOfDay
	Status    persistence.SessionStatus
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns an active personal session from 10:00 to 11:00
// for the given trainer.
func NewSessionFixture(trainerID string, opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		TrainerID: trainerID,
		Kind:      schedule.KindPersonal,
		Start:     schedule.MustTimeOfDay(10, 0),
		End:       schedule.MustTimeOfDay(11, 0),
		Status:    persistence.SessionActive,
		Capacity:  1,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionRoom assigns a room.
func WithSessionRoom(roomID string) SessionOption {
	return func(f *SessionFixture) {
		value := roomID
		f.RoomID = &value
	}
}

// WithSessionInterval overrides start and end.
func WithSessionInterval(start, end schedule.TimeOfDay) SessionOption {
	return func(f *SessionFixture) {
		f.Start = start
		f.End = end
	}
}

// WithGroupCapacity turns the fixture into a group class of the given capacity.
func WithGroupCapacity(capacity int) SessionOption {
	return func(f *SessionFixture) {
		f.Kind = schedule.KindGroup
		f.Capacity = capacity
	}
}

// WithSessionCancelled marks the fixture cancelled.
func WithSessionCancelled() SessionOption {
	return func(f *SessionFixture) {
		f.Status = persistence.SessionCancelled
	}
}

// Persistence returns the fixture as a persistence.TrainingSession value.
func (f SessionFixture) Persistence() persistence.TrainingSession {
	return persistence.TrainingSession{
		ID:        f.ID,
		TrainerID: f.TrainerID,
		RoomID:    copyStringPtr(f.RoomID),
		Kind:      f.Kind,
		Start:     f.Start,
		End:       f.End,
		Status:    f.Status,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ----------------------------- Seeding -----------------------------

// Seed describes rows written directly to a store before a test runs.
type Seed struct {
	Trainers    []TrainerFixture
	Rooms       []RoomFixture
	Members     []MemberFixture
	Sessions    []SessionFixture
	Memberships []persistence.Membership
}

// Apply writes the seed in one transaction, failing the test on error.
func (s Seed) Apply(tb testing.TB, store persistence.Store) {
	tb.Helper()

	ctx := context.Background()
	err := store.WithTransaction(ctx, func(repos persistence.Repositories) error {
		for _, trainer := range s.Trainers {
			if err := repos.CreateTrainer(ctx, trainer.Persistence()); err != nil {
				return fmt.Errorf("trainer %s: %w", trainer.ID, err)
			}
		}
		for _, room := range s.Rooms {
			if err := repos.CreateRoom(ctx, room.Persistence()); err != nil {
				return fmt.Errorf("room %s: %w", room.ID, err)
			}
		}
		for _, member := range s.Members {
			if err := repos.CreateMember(ctx, member.Persistence()); err != nil {
				return fmt.Errorf("member %s: %w", member.ID, err)
			}
		}
		for _, session := range s.Sessions {
			if err := repos.CreateSession(ctx, session.Persistence()); err != nil {
				return fmt.Errorf("session %s: %w", session.ID, err)
			}
		}
		for _, membership := range s.Memberships {
			if membership.CreatedAt.IsZero() {
				membership.CreatedAt = referenceTime
			}
			if err := repos.CreateMembership(ctx, membership); err != nil {
				return fmt.Errorf("membership %s/%s: %w", membership.SessionID, membership.MemberID, err)
			}
		}
		return nil
	})
	if err != nil {
		tb.Fatalf("failed to seed store: %v", err)
	}
}

func copyStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func copyTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
