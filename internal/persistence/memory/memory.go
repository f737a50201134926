// Package memory provides an in-process persistence.Store used by tests and
// local development. Every transaction holds the store lock for its whole
// duration and works on live maps; a failed transaction restores the snapshot
// taken when it began.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

var (
	// ErrClosed is returned by transactions started after Close.
	ErrClosed = errors.New("memory: store closed")
	// ErrReadOnly is returned when a read-only transaction attempts a write.
	ErrReadOnly = errors.New("memory: write in read-only transaction")
)

// Store is an in-memory persistence.Store.
type Store struct {
	mu     sync.RWMutex
	data   *state
	closed bool
}

type state struct {
	trainers    map[string]persistence.Trainer
	rooms       map[string]persistence.Room
	sessions    map[string]persistence.TrainingSession
	memberships map[membershipKey]persistence.Membership
	members     map[string]persistence.Member
}

type membershipKey struct {
	sessionID string
	memberID  string
}

var _ persistence.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{data: newState()}
}

func newState() *state {
	return &state{
		trainers:    make(map[string]persistence.Trainer),
		rooms:       make(map[string]persistence.Room),
		sessions:    make(map[string]persistence.TrainingSession),
		memberships: make(map[membershipKey]persistence.Membership),
		members:     make(map[string]persistence.Member),
	}
}

func (s *state) clone() *state {
	out := newState()
	for id, trainer := range s.trainers {
		out.trainers[id] = trainer
	}
	for id, room := range s.rooms {
		out.rooms[id] = room
	}
	for id, session := range s.sessions {
		out.sessions[id] = cloneSession(session)
	}
	for key, membership := range s.memberships {
		out.memberships[key] = membership
	}
	for id, member := range s.members {
		out.members[id] = cloneMember(member)
	}
	return out
}

// WithTransaction runs fn with exclusive access to the store.
func (s *Store) WithTransaction(ctx context.Context, fn persistence.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			s.data = snapshot
		}
	}()

	if err := fn(&tx{ctx: ctx, data: s.data}); err != nil {
		return err
	}
	committed = true
	return nil
}

// WithReadOnlyTransaction runs fn with shared access to the store.
func (s *Store) WithReadOnlyTransaction(ctx context.Context, fn persistence.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	return fn(&tx{ctx: ctx, data: s.data, readOnly: true})
}

// Ping reports whether the store is open.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed. Subsequent transactions fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// tx implements persistence.Repositories over the live maps of a Store. The
// caller holds the store lock for the lifetime of a tx.
type tx struct {
	ctx      context.Context
	data     *state
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return t.ctx.Err()
}

// --- TrainerRepository implementation ---

func (t *tx) CreateTrainer(_ context.Context, trainer persistence.Trainer) error {
	if err := t.writable(); err != nil {
		return err
	}
	if trainer.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := t.data.trainers[trainer.ID]; ok {
		return fmt.Errorf("%w: trainer %s", persistence.ErrDuplicate, trainer.ID)
	}
	t.data.trainers[trainer.ID] = trainer
	return nil
}

func (t *tx) GetTrainer(_ context.Context, id string) (persistence.Trainer, error) {
	trainer, ok := t.data.trainers[id]
	if !ok {
		return persistence.Trainer{}, persistence.ErrNotFound
	}
	return trainer, nil
}

func (t *tx) UpdateTrainerAvailability(_ context.Context, id string, start, end schedule.TimeOfDay, updatedAt time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	trainer, ok := t.data.trainers[id]
	if !ok {
		return persistence.ErrNotFound
	}
	if end <= start {
		return persistence.ErrConstraintViolation
	}
	trainer.AvailabilityStart = start
	trainer.AvailabilityEnd = end
	trainer.UpdatedAt = updatedAt
	t.data.trainers[id] = trainer
	return nil
}

func (t *tx) ListTrainers(context.Context) ([]persistence.Trainer, error) {
	trainers := make([]persistence.Trainer, 0, len(t.data.trainers))
	for _, trainer := range t.data.trainers {
		trainers = append(trainers, trainer)
	}
	sort.Slice(trainers, func(i, j int) bool {
		if trainers[i].FullName == trainers[j].FullName {
			return trainers[i].ID < trainers[j].ID
		}
		return trainers[i].FullName < trainers[j].FullName
	})
	return trainers, nil
}

// --- RoomRepository implementation ---

func (t *tx) CreateRoom(_ context.Context, room persistence.Room) error {
	if err := t.writable(); err != nil {
		return err
	}
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}
	if _, ok := t.data.rooms[room.ID]; ok {
		return fmt.Errorf("%w: room %s", persistence.ErrDuplicate, room.ID)
	}
	for _, existing := range t.data.rooms {
		if existing.Name == room.Name {
			return fmt.Errorf("%w: room name %s", persistence.ErrDuplicate, room.Name)
		}
	}
	t.data.rooms[room.ID] = room
	return nil
}

func (t *tx) GetRoom(_ context.Context, id string) (persistence.Room, error) {
	room, ok := t.data.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (t *tx) ListRooms(context.Context) ([]persistence.Room, error) {
	return t.rooms(func(persistence.Room) bool { return true }), nil
}

func (t *tx) ListUnbookedRooms(context.Context) ([]persistence.Room, error) {
	return t.rooms(func(room persistence.Room) bool { return !room.Booked }), nil
}

func (t *tx) rooms(keep func(persistence.Room) bool) []persistence.Room {
	rooms := make([]persistence.Room, 0, len(t.data.rooms))
	for _, room := range t.data.rooms {
		if keep(room) {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms
}

func (t *tx) ReserveRoom(_ context.Context, id string, updatedAt time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	room, ok := t.data.rooms[id]
	if !ok {
		return persistence.ErrNotFound
	}
	if room.Booked {
		return persistence.ErrConflict
	}
	room.Booked = true
	room.UpdatedAt = updatedAt
	t.data.rooms[id] = room
	return nil
}

func (t *tx) ReleaseRoom(_ context.Context, id string, updatedAt time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	room, ok := t.data.rooms[id]
	if !ok {
		return persistence.ErrNotFound
	}
	if !room.Booked {
		return nil
	}
	room.Booked = false
	room.UpdatedAt = updatedAt
	t.data.rooms[id] = room
	return nil
}

// --- SessionRepository implementation ---

func (t *tx) CreateSession(_ context.Context, session persistence.TrainingSession) error {
	if err := t.writable(); err != nil {
		return err
	}
	if session.ID == "" || session.End <= session.Start || session.Capacity <= 0 || !session.Kind.Valid() {
		return persistence.ErrConstraintViolation
	}
	if _, ok := t.data.sessions[session.ID]; ok {
		return fmt.Errorf("%w: session %s", persistence.ErrDuplicate, session.ID)
	}
	if _, ok := t.data.trainers[session.TrainerID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if session.RoomID != nil {
		if _, ok := t.data.rooms[*session.RoomID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
	}
	t.data.sessions[session.ID] = cloneSession(session)
	return nil
}

func (t *tx) GetSession(_ context.Context, id string) (persistence.TrainingSession, error) {
	session, ok := t.data.sessions[id]
	if !ok {
		return persistence.TrainingSession{}, persistence.ErrNotFound
	}
	return cloneSession(session), nil
}

func (t *tx) UpdateSessionTimes(_ context.Context, id string, start, end schedule.TimeOfDay, updatedAt time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	session, ok := t.data.sessions[id]
	if !ok {
		return persistence.ErrNotFound
	}
	if end <= start {
		return persistence.ErrConstraintViolation
	}
	session.Start = start
	session.End = end
	session.UpdatedAt = updatedAt
	t.data.sessions[id] = session
	return nil
}

func (t *tx) UpdateSessionStatus(_ context.Context, id string, status persistence.SessionStatus, updatedAt time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	session, ok := t.data.sessions[id]
	if !ok {
		return persistence.ErrNotFound
	}
	session.Status = status
	session.UpdatedAt = updatedAt
	t.data.sessions[id] = session
	return nil
}

func (t *tx) ListActiveSessions(_ context.Context, filter persistence.SessionFilter) ([]persistence.TrainingSession, error) {
	sessions := make([]persistence.TrainingSession, 0)
	for _, session := range t.data.sessions {
		if session.Status != persistence.SessionActive {
			continue
		}
		if filter.TrainerID != "" && session.TrainerID != filter.TrainerID {
			continue
		}
		if filter.Kind != "" && session.Kind != filter.Kind {
			continue
		}
		if filter.ExcludeID != "" && session.ID == filter.ExcludeID {
			continue
		}
		sessions = append(sessions, cloneSession(session))
	}
	sortSessions(sessions)
	return sessions, nil
}

// --- MembershipRepository implementation ---

func (t *tx) CreateMembership(_ context.Context, membership persistence.Membership) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.data.sessions[membership.SessionID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := t.data.members[membership.MemberID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	key := membershipKey{sessionID: membership.SessionID, memberID: membership.MemberID}
	if _, ok := t.data.memberships[key]; ok {
		return persistence.ErrDuplicate
	}
	t.data.memberships[key] = membership
	return nil
}

func (t *tx) MembershipExists(_ context.Context, sessionID, memberID string) (bool, error) {
	_, ok := t.data.memberships[membershipKey{sessionID: sessionID, memberID: memberID}]
	return ok, nil
}

func (t *tx) CountMemberships(_ context.Context, sessionID string) (int, error) {
	count := 0
	for key := range t.data.memberships {
		if key.sessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (t *tx) ListMemberSessions(_ context.Context, memberID string, kind schedule.Kind) ([]persistence.TrainingSession, error) {
	sessions := make([]persistence.TrainingSession, 0)
	for key := range t.data.memberships {
		if key.memberID != memberID {
			continue
		}
		session, ok := t.data.sessions[key.sessionID]
		if !ok || session.Status != persistence.SessionActive {
			continue
		}
		if kind != "" && session.Kind != kind {
			continue
		}
		sessions = append(sessions, cloneSession(session))
	}
	sortSessions(sessions)
	return sessions, nil
}

func (t *tx) ListTrainerMembers(_ context.Context, trainerID string) ([]persistence.Member, error) {
	seen := make(map[string]struct{})
	members := make([]persistence.Member, 0)
	for key := range t.data.memberships {
		session, ok := t.data.sessions[key.sessionID]
		if !ok || session.TrainerID != trainerID || session.Status != persistence.SessionActive {
			continue
		}
		if _, dup := seen[key.memberID]; dup {
			continue
		}
		member, ok := t.data.members[key.memberID]
		if !ok {
			continue
		}
		seen[key.memberID] = struct{}{}
		members = append(members, cloneMember(member))
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].FullName == members[j].FullName {
			return members[i].ID < members[j].ID
		}
		return members[i].FullName < members[j].FullName
	})
	return members, nil
}

// --- MemberRepository implementation ---

func (t *tx) CreateMember(_ context.Context, member persistence.Member) error {
	if err := t.writable(); err != nil {
		return err
	}
	if member.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := t.data.members[member.ID]; ok {
		return fmt.Errorf("%w: member %s", persistence.ErrDuplicate, member.ID)
	}
	t.data.members[member.ID] = cloneMember(member)
	return nil
}

func (t *tx) GetMember(_ context.Context, id string) (persistence.Member, error) {
	member, ok := t.data.members[id]
	if !ok {
		return persistence.Member{}, persistence.ErrNotFound
	}
	return cloneMember(member), nil
}

func cloneSession(session persistence.TrainingSession) persistence.TrainingSession {
	if session.RoomID != nil {
		copy := *session.RoomID
		session.RoomID = &copy
	}
	return session
}

func cloneMember(member persistence.Member) persistence.Member {
	if member.DateOfBirth != nil {
		copy := *member.DateOfBirth
		member.DateOfBirth = &copy
	}
	return member
}

func sortSessions(sessions []persistence.TrainingSession) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Start == sessions[j].Start {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].Start < sessions[j].Start
	})
}
