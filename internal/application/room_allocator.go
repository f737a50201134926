package application

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
)

// RoomAllocator picks and holds rooms for new sessions.
type RoomAllocator struct {
	pick func(n int) int
}

// NewRoomAllocator returns an allocator that chooses uniformly at random among
// free rooms. pick(n) must return a value in [0, n); nil uses math/rand/v2.
func NewRoomAllocator(pick func(n int) int) *RoomAllocator {
	if pick == nil {
		pick = rand.IntN
	}
	return &RoomAllocator{pick: pick}
}

// Allocate chooses a room whose booked flag is clear. It does not reserve it.
func (a *RoomAllocator) Allocate(ctx context.Context, rooms persistence.RoomRepository) (persistence.Room, error) {
	free, err := rooms.ListUnbookedRooms(ctx)
	if err != nil {
		return persistence.Room{}, mapRepoError(err, nil)
	}
	if len(free) == 0 {
		return persistence.Room{}, ErrNoRoomsAvailable
	}
	return free[a.pick(len(free))], nil
}

// Reserve marks a room booked. A room that is already booked yields
// ErrRoomAlreadyBooked.
func (a *RoomAllocator) Reserve(ctx context.Context, rooms persistence.RoomRepository, roomID string, at time.Time) error {
	err := rooms.ReserveRoom(ctx, roomID, at)
	if errors.Is(err, persistence.ErrConflict) {
		return ErrRoomAlreadyBooked
	}
	return mapRepoError(err, ErrRoomNotFound)
}

// Release clears the booked flag. Releasing a free room is not an error.
func (a *RoomAllocator) Release(ctx context.Context, rooms persistence.RoomRepository, roomID string, at time.Time) error {
	return mapRepoError(rooms.ReleaseRoom(ctx, roomID, at), ErrRoomNotFound)
}
