package sqlstore

import (
	"context"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
)

const roomColumns = `id, name, capacity, booked, created_at, updated_at`

// CreateRoom inserts a new room
func (r *repositories) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	_, err := r.exec(ctx, `
		INSERT INTO rooms (`+roomColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		room.ID,
		room.Name,
		room.Capacity,
		room.Booked,
		r.dialect.timeValue(room.CreatedAt),
		r.dialect.timeValue(room.UpdatedAt),
	)
	return err
}

// GetRoom retrieves a room by ID
func (r *repositories) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	room, err := scanRoom(r.queryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err != nil {
		return persistence.Room{}, r.fail(err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name then ID
func (r *repositories) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	return r.listRooms(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY name ASC, id ASC`)
}

// ListUnbookedRooms returns the rooms whose booked flag is clear
func (r *repositories) ListUnbookedRooms(ctx context.Context) ([]persistence.Room, error) {
	return r.listRooms(ctx, `SELECT `+roomColumns+` FROM rooms WHERE booked = ? ORDER BY name ASC, id ASC`, false)
}

func (r *repositories) listRooms(ctx context.Context, query string, args ...any) ([]persistence.Room, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]persistence.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, r.fail(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(err)
	}
	return rooms, nil
}

// ReserveRoom sets booked only if it is currently clear
func (r *repositories) ReserveRoom(ctx context.Context, id string, updatedAt time.Time) error {
	result, err := r.exec(ctx, `
		UPDATE rooms SET booked = ?, updated_at = ?
		WHERE id = ? AND booked = ?
	`, true, r.dialect.timeValue(updatedAt), id, false)
	if err != nil {
		return err
	}

	err = r.affectedOne(result)
	if err != persistence.ErrNotFound {
		return err
	}

	// Nothing changed: either the room is missing or someone holds it.
	if _, getErr := r.GetRoom(ctx, id); getErr != nil {
		return getErr
	}
	return persistence.ErrConflict
}

// ReleaseRoom clears booked; releasing a free room succeeds
func (r *repositories) ReleaseRoom(ctx context.Context, id string, updatedAt time.Time) error {
	result, err := r.exec(ctx, `
		UPDATE rooms SET booked = ?, updated_at = ?
		WHERE id = ?
	`, false, r.dialect.timeValue(updatedAt), id)
	if err != nil {
		return err
	}
	return r.affectedOne(result)
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room               persistence.Room
		createdAt, updated timestamp
	)
	if err := row.Scan(&room.ID, &room.Name, &room.Capacity, &room.Booked, &createdAt, &updated); err != nil {
		return persistence.Room{}, err
	}
	room.CreatedAt = createdAt.Time
	room.UpdatedAt = updated.Time
	return room, nil
}
