package sqlstore

import (
	"context"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

// CreateMembership links a member to a session
func (r *repositories) CreateMembership(ctx context.Context, membership persistence.Membership) error {
	_, err := r.exec(ctx, `
		INSERT INTO session_memberships (session_id, member_id, created_at)
		VALUES (?, ?, ?)
	`, membership.SessionID, membership.MemberID, r.dialect.timeValue(membership.CreatedAt))
	return err
}

// MembershipExists reports whether the member already holds the session
func (r *repositories) MembershipExists(ctx context.Context, sessionID, memberID string) (bool, error) {
	var count int
	err := r.queryRow(ctx, `
		SELECT COUNT(*) FROM session_memberships
		WHERE session_id = ? AND member_id = ?
	`, sessionID, memberID).Scan(&count)
	if err != nil {
		return false, r.fail(err)
	}
	return count > 0, nil
}

// CountMemberships returns the number of members in a session
func (r *repositories) CountMemberships(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM session_memberships WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, r.fail(err)
	}
	return count, nil
}

// ListMemberSessions returns the member's active sessions, optionally of one kind
func (r *repositories) ListMemberSessions(ctx context.Context, memberID string, kind schedule.Kind) ([]persistence.TrainingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM training_sessions s
		JOIN session_memberships m ON m.session_id = s.id
		WHERE m.member_id = ? AND s.status = ?`
	args := []any{memberID, string(persistence.SessionActive)}
	if kind != "" {
		query += ` AND s.kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY s.start_minute ASC, s.id ASC`

	return r.listSessions(ctx, query, args...)
}

// ListTrainerMembers returns distinct members attending the trainer's active sessions
func (r *repositories) ListTrainerMembers(ctx context.Context, trainerID string) ([]persistence.Member, error) {
	rows, err := r.query(ctx, `
		SELECT DISTINCT `+memberColumns+`
		FROM members mb
		JOIN session_memberships m ON m.member_id = mb.id
		JOIN training_sessions s ON s.id = m.session_id
		WHERE s.trainer_id = ? AND s.status = ?
		ORDER BY mb.full_name ASC, mb.id ASC
	`, trainerID, string(persistence.SessionActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]persistence.Member, 0)
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, r.fail(err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(err)
	}
	return members, nil
}
