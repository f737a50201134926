package sqlstore

import (
	"context"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

const trainerColumns = `id, full_name, phone, availability_start, availability_end, created_at, updated_at`

// CreateTrainer inserts a new trainer
func (r *repositories) CreateTrainer(ctx context.Context, trainer persistence.Trainer) error {
	if trainer.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.exec(ctx, `
		INSERT INTO trainers (`+trainerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		trainer.ID,
		trainer.FullName,
		trainer.Phone,
		trainer.AvailabilityStart.Minutes(),
		trainer.AvailabilityEnd.Minutes(),
		r.dialect.timeValue(trainer.CreatedAt),
		r.dialect.timeValue(trainer.UpdatedAt),
	)
	return err
}

// GetTrainer retrieves a trainer by ID
func (r *repositories) GetTrainer(ctx context.Context, id string) (persistence.Trainer, error) {
	row := r.queryRow(ctx, `SELECT `+trainerColumns+` FROM trainers WHERE id = ?`, id)
	trainer, err := scanTrainer(row)
	if err != nil {
		return persistence.Trainer{}, r.fail(err)
	}
	return trainer, nil
}

// UpdateTrainerAvailability replaces the trainer's daily window
func (r *repositories) UpdateTrainerAvailability(ctx context.Context, id string, start, end schedule.TimeOfDay, updatedAt time.Time) error {
	result, err := r.exec(ctx, `
		UPDATE trainers
		SET availability_start = ?, availability_end = ?, updated_at = ?
		WHERE id = ?
	`, start.Minutes(), end.Minutes(), r.dialect.timeValue(updatedAt), id)
	if err != nil {
		return err
	}
	return r.affectedOne(result)
}

// ListTrainers returns all trainers ordered by name then ID
func (r *repositories) ListTrainers(ctx context.Context) ([]persistence.Trainer, error) {
	rows, err := r.query(ctx, `SELECT `+trainerColumns+` FROM trainers ORDER BY full_name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trainers := make([]persistence.Trainer, 0)
	for rows.Next() {
		trainer, err := scanTrainer(rows)
		if err != nil {
			return nil, r.fail(err)
		}
		trainers = append(trainers, trainer)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(err)
	}
	return trainers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrainer(row rowScanner) (persistence.Trainer, error) {
	var (
		trainer            persistence.Trainer
		start, end         int
		createdAt, updated timestamp
	)
	if err := row.Scan(&trainer.ID, &trainer.FullName, &trainer.Phone, &start, &end, &createdAt, &updated); err != nil {
		return persistence.Trainer{}, err
	}
	trainer.AvailabilityStart = schedule.TimeOfDay(start)
	trainer.AvailabilityEnd = schedule.TimeOfDay(end)
	trainer.CreatedAt = createdAt.Time
	trainer.UpdatedAt = updated.Time
	return trainer, nil
}
