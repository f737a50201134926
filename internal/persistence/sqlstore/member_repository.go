package sqlstore

import (
	"context"

	"github.com/example/club-scheduler/internal/persistence"
)

const memberColumns = `mb.id, mb.full_name, mb.date_of_birth, mb.gender, mb.phone, mb.created_at, mb.updated_at`

// CreateMember inserts a new member
func (r *repositories) CreateMember(ctx context.Context, member persistence.Member) error {
	if member.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.exec(ctx, `
		INSERT INTO members (id, full_name, date_of_birth, gender, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		member.ID,
		member.FullName,
		r.dialect.dateValue(member.DateOfBirth),
		member.Gender,
		member.Phone,
		r.dialect.timeValue(member.CreatedAt),
		r.dialect.timeValue(member.UpdatedAt),
	)
	return err
}

// GetMember retrieves a member by ID
func (r *repositories) GetMember(ctx context.Context, id string) (persistence.Member, error) {
	member, err := scanMember(r.queryRow(ctx, `SELECT `+memberColumns+` FROM members mb WHERE mb.id = ?`, id))
	if err != nil {
		return persistence.Member{}, r.fail(err)
	}
	return member, nil
}

func scanMember(row rowScanner) (persistence.Member, error) {
	var (
		member             persistence.Member
		dateOfBirth        nullDate
		createdAt, updated timestamp
	)
	err := row.Scan(
		&member.ID,
		&member.FullName,
		&dateOfBirth,
		&member.Gender,
		&member.Phone,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.Member{}, err
	}
	member.DateOfBirth = dateOfBirth.Time
	member.CreatedAt = createdAt.Time
	member.UpdatedAt = updated.Time
	return member, nil
}
