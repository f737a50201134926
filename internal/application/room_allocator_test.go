package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
)

type roomRepoStub struct {
	rooms      []persistence.Room
	listErr    error
	reserveErr error
	releaseErr error

	reserved []string
	released []string
}

func (r *roomRepoStub) CreateRoom(ctx context.Context, room persistence.Room) error {
	r.rooms = append(r.rooms, room)
	return nil
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	for _, room := range r.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return persistence.Room{}, persistence.ErrNotFound
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	return r.rooms, r.listErr
}

func (r *roomRepoStub) ListUnbookedRooms(ctx context.Context) ([]persistence.Room, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var free []persistence.Room
	for _, room := range r.rooms {
		if !room.Booked {
			free = append(free, room)
		}
	}
	return free, nil
}

func (r *roomRepoStub) ReserveRoom(ctx context.Context, id string, updatedAt time.Time) error {
	if r.reserveErr != nil {
		return r.reserveErr
	}
	r.reserved = append(r.reserved, id)
	return nil
}

func (r *roomRepoStub) ReleaseRoom(ctx context.Context, id string, updatedAt time.Time) error {
	if r.releaseErr != nil {
		return r.releaseErr
	}
	r.released = append(r.released, id)
	return nil
}

func TestRoomAllocator_Allocate(t *testing.T) {
	ctx := context.Background()
	repo := &roomRepoStub{rooms: []persistence.Room{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", Booked: true},
		{ID: "c", Name: "C"},
	}}

	t.Run("chooses among unbooked rooms only", func(t *testing.T) {
		var offered int
		allocator := NewRoomAllocator(func(n int) int {
			offered = n
			return n - 1
		})
		room, err := allocator.Allocate(ctx, repo)
		if err != nil {
			t.Fatalf("Allocate returned error: %v", err)
		}
		if offered != 2 {
			t.Fatalf("expected two candidates, got %d", offered)
		}
		if room.ID != "c" {
			t.Fatalf("expected room c, got %q", room.ID)
		}
	})

	t.Run("default source stays within the free set", func(t *testing.T) {
		allocator := NewRoomAllocator(nil)
		for i := 0; i < 50; i++ {
			room, err := allocator.Allocate(ctx, repo)
			if err != nil {
				t.Fatalf("Allocate returned error: %v", err)
			}
			if room.Booked {
				t.Fatalf("allocated booked room %q", room.ID)
			}
		}
	})

	t.Run("no free rooms", func(t *testing.T) {
		full := &roomRepoStub{rooms: []persistence.Room{{ID: "a", Booked: true}}}
		if _, err := NewRoomAllocator(nil).Allocate(ctx, full); !errors.Is(err, ErrNoRoomsAvailable) {
			t.Fatalf("expected ErrNoRoomsAvailable, got %v", err)
		}
	})

	t.Run("repository failure", func(t *testing.T) {
		broken := &roomRepoStub{listErr: errors.New("io error")}
		if _, err := NewRoomAllocator(nil).Allocate(ctx, broken); !errors.Is(err, ErrStorageFailure) {
			t.Fatalf("expected ErrStorageFailure, got %v", err)
		}
	})
}

func TestRoomAllocator_ReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	allocator := NewRoomAllocator(nil)
	now := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

	t.Run("reserve records the room", func(t *testing.T) {
		repo := &roomRepoStub{}
		if err := allocator.Reserve(ctx, repo, "a", now); err != nil {
			t.Fatalf("Reserve returned error: %v", err)
		}
		if len(repo.reserved) != 1 || repo.reserved[0] != "a" {
			t.Fatalf("unexpected reservations %v", repo.reserved)
		}
	})

	t.Run("conflicting reserve is already booked", func(t *testing.T) {
		repo := &roomRepoStub{reserveErr: persistence.ErrConflict}
		if err := allocator.Reserve(ctx, repo, "a", now); !errors.Is(err, ErrRoomAlreadyBooked) {
			t.Fatalf("expected ErrRoomAlreadyBooked, got %v", err)
		}
	})

	t.Run("missing room", func(t *testing.T) {
		repo := &roomRepoStub{reserveErr: persistence.ErrNotFound, releaseErr: persistence.ErrNotFound}
		if err := allocator.Reserve(ctx, repo, "ghost", now); !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("expected ErrRoomNotFound on reserve, got %v", err)
		}
		if err := allocator.Release(ctx, repo, "ghost", now); !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("expected ErrRoomNotFound on release, got %v", err)
		}
	})

	t.Run("release is forwarded", func(t *testing.T) {
		repo := &roomRepoStub{}
		if err := allocator.Release(ctx, repo, "a", now); err != nil {
			t.Fatalf("Release returned error: %v", err)
		}
		if len(repo.released) != 1 {
			t.Fatalf("expected one release, got %v", repo.released)
		}
	})
}
