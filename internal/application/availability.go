package application

import (
	"context"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

// CheckAvailability loads the trainer and verifies that interval lies inside
// their daily window. The interval must already be validated.
func CheckAvailability(ctx context.Context, trainers persistence.TrainerRepository, trainerID string, interval schedule.Interval) (persistence.Trainer, error) {
	trainer, err := trainers.GetTrainer(ctx, trainerID)
	if err != nil {
		return persistence.Trainer{}, mapRepoError(err, ErrTrainerNotFound)
	}
	if !interval.Within(trainer.Availability()) {
		return trainer, ErrOutsideAvailability
	}
	return trainer, nil
}
