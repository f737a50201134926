package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

// TrainerService registers trainers and maintains their availability.
type TrainerService struct {
	store       persistence.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTrainerService constructs a trainer service with the provided dependencies.
func NewTrainerService(store persistence.Store, idGenerator func() string, now func() time.Time) *TrainerService {
	return NewTrainerServiceWithLogger(store, idGenerator, now, nil)
}

// NewTrainerServiceWithLogger constructs a trainer service with a specified logger.
func NewTrainerServiceWithLogger(store persistence.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TrainerService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TrainerService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *TrainerService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TrainerService", operation, attrs...)
}

// RegisterTrainer validates input and persists a new trainer.
func (s *TrainerService) RegisterTrainer(ctx context.Context, input TrainerInput) (trainer Trainer, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("TrainerService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "RegisterTrainer")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to register trainer", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("trainer_id", trainer.ID).InfoContext(ctx, "trainer registered")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.FullName) == "" {
		vErr.add("full_name", "full name is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		vErr.add("phone", "phone is required")
	}
	window, ivErr := schedule.NewInterval(input.AvailabilityStart, input.AvailabilityEnd)
	if ivErr != nil {
		if errors.Is(ivErr, schedule.ErrAborted) && !vErr.HasErrors() {
			err = ErrAborted
			return
		}
		vErr.merge(availabilityFieldError(ivErr))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	record := persistence.Trainer{
		ID:                s.idGenerator(),
		FullName:          strings.TrimSpace(input.FullName),
		Phone:             strings.TrimSpace(input.Phone),
		AvailabilityStart: window.Start,
		AvailabilityEnd:   window.End,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.store.WithTransaction(ctx, func(repos persistence.Repositories) error {
		return mapRepoError(repos.CreateTrainer(ctx, record), nil)
	})
	if err = storageFailure(err); err != nil {
		return
	}

	trainer = toTrainer(record)
	return
}

// SetAvailability replaces the trainer's daily window. Existing sessions are
// left as they are even if they now fall outside it.
func (s *TrainerService) SetAvailability(ctx context.Context, params SetAvailabilityParams) (trainer Trainer, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("TrainerService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "SetAvailability", "trainer_id", params.TrainerID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to set availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("availability", trainer.Availability.String()).InfoContext(ctx, "availability updated")
	}()

	window, ivErr := schedule.NewInterval(params.Start, params.End)
	if ivErr != nil {
		err = mapIntervalError(ivErr)
		return
	}

	err = s.store.WithTransaction(ctx, func(repos persistence.Repositories) error {
		now := s.now()
		if err := repos.UpdateTrainerAvailability(ctx, params.TrainerID, window.Start, window.End, now); err != nil {
			return mapRepoError(err, ErrTrainerNotFound)
		}
		record, err := repos.GetTrainer(ctx, params.TrainerID)
		if err != nil {
			return mapRepoError(err, ErrTrainerNotFound)
		}
		trainer = toTrainer(record)
		return nil
	})
	if err = storageFailure(err); err != nil {
		trainer = Trainer{}
	}
	return
}

// ListTrainers returns all trainers ordered by name.
func (s *TrainerService) ListTrainers(ctx context.Context) (trainers []Trainer, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("TrainerService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListTrainers")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list trainers", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(trainers)).InfoContext(ctx, "trainers listed")
	}()

	err = s.store.WithReadOnlyTransaction(ctx, func(repos persistence.Repositories) error {
		records, err := repos.ListTrainers(ctx)
		if err != nil {
			return mapRepoError(err, nil)
		}
		trainers = make([]Trainer, 0, len(records))
		for _, record := range records {
			trainers = append(trainers, toTrainer(record))
		}
		return nil
	})
	err = storageFailure(err)
	return
}

func availabilityFieldError(err error) *ValidationError {
	vErr := &ValidationError{}
	switch {
	case errors.Is(err, schedule.ErrEmptyInterval):
		vErr.add("availability_end", "availability end must be after start")
	case errors.Is(err, schedule.ErrAborted):
		vErr.add("availability", "availability entry was aborted")
	default:
		vErr.add("availability", "availability times must be between 00:00 and 23:59")
	}
	return vErr
}
