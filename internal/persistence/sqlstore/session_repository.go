package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

const sessionColumns = `s.id, s.trainer_id, s.room_id, s.kind, s.start_minute, s.end_minute, s.status, s.capacity, s.created_at, s.updated_at`

// CreateSession inserts a new training session
func (r *repositories) CreateSession(ctx context.Context, session persistence.TrainingSession) error {
	if session.ID == "" || !session.Kind.Valid() {
		return persistence.ErrConstraintViolation
	}

	_, err := r.exec(ctx, `
		INSERT INTO training_sessions
			(id, trainer_id, room_id, kind, start_minute, end_minute, status, capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.TrainerID,
		nullableString(session.RoomID),
		string(session.Kind),
		session.Start.Minutes(),
		session.End.Minutes(),
		string(session.Status),
		session.Capacity,
		r.dialect.timeValue(session.CreatedAt),
		r.dialect.timeValue(session.UpdatedAt),
	)
	return err
}

// GetSession retrieves a session by ID regardless of status
func (r *repositories) GetSession(ctx context.Context, id string) (persistence.TrainingSession, error) {
	session, err := scanSession(r.queryRow(ctx, `SELECT `+sessionColumns+` FROM training_sessions s WHERE s.id = ?`, id))
	if err != nil {
		return persistence.TrainingSession{}, r.fail(err)
	}
	return session, nil
}

// UpdateSessionTimes moves a session in place
func (r *repositories) UpdateSessionTimes(ctx context.Context, id string, start, end schedule.TimeOfDay, updatedAt time.Time) error {
	result, err := r.exec(ctx, `
		UPDATE training_sessions
		SET start_minute = ?, end_minute = ?, updated_at = ?
		WHERE id = ?
	`, start.Minutes(), end.Minutes(), r.dialect.timeValue(updatedAt), id)
	if err != nil {
		return err
	}
	return r.affectedOne(result)
}

// UpdateSessionStatus sets the lifecycle status
func (r *repositories) UpdateSessionStatus(ctx context.Context, id string, status persistence.SessionStatus, updatedAt time.Time) error {
	result, err := r.exec(ctx, `
		UPDATE training_sessions SET status = ?, updated_at = ?
		WHERE id = ?
	`, string(status), r.dialect.timeValue(updatedAt), id)
	if err != nil {
		return err
	}
	return r.affectedOne(result)
}

// ListActiveSessions returns active sessions matching filter ordered by start
func (r *repositories) ListActiveSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.TrainingSession, error) {
	conditions := []string{"s.status = ?"}
	args := []any{string(persistence.SessionActive)}

	if filter.TrainerID != "" {
		conditions = append(conditions, "s.trainer_id = ?")
		args = append(args, filter.TrainerID)
	}
	if filter.Kind != "" {
		conditions = append(conditions, "s.kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.ExcludeID != "" {
		conditions = append(conditions, "s.id <> ?")
		args = append(args, filter.ExcludeID)
	}

	query := `SELECT ` + sessionColumns + ` FROM training_sessions s WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY s.start_minute ASC, s.id ASC`
	return r.listSessions(ctx, query, args...)
}

func (r *repositories) listSessions(ctx context.Context, query string, args ...any) ([]persistence.TrainingSession, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]persistence.TrainingSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, r.fail(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(err)
	}
	return sessions, nil
}

func scanSession(row rowScanner) (persistence.TrainingSession, error) {
	var (
		session            persistence.TrainingSession
		roomID             sql.NullString
		kind, status       string
		start, end         int
		createdAt, updated timestamp
	)
	err := row.Scan(
		&session.ID,
		&session.TrainerID,
		&roomID,
		&kind,
		&start,
		&end,
		&status,
		&session.Capacity,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.TrainingSession{}, err
	}

	if roomID.Valid {
		value := roomID.String
		session.RoomID = &value
	}
	session.Kind = schedule.Kind(kind)
	session.Status = persistence.SessionStatus(status)
	session.Start = schedule.TimeOfDay(start)
	session.End = schedule.TimeOfDay(end)
	session.CreatedAt = createdAt.Time
	session.UpdatedAt = updated.Time
	return session, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
