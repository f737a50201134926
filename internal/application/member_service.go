package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/club-scheduler/internal/persistence"
)

// MemberService registers and looks up club members.
type MemberService struct {
	store       persistence.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMemberService constructs a member service with the provided dependencies.
func NewMemberService(store persistence.Store, idGenerator func() string, now func() time.Time) *MemberService {
	return NewMemberServiceWithLogger(store, idGenerator, now, nil)
}

// NewMemberServiceWithLogger constructs a member service with a specified logger.
func NewMemberServiceWithLogger(store persistence.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MemberService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MemberService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *MemberService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MemberService", operation, attrs...)
}

// RegisterMember validates input and persists a new member.
func (s *MemberService) RegisterMember(ctx context.Context, input MemberInput) (member Member, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("MemberService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "RegisterMember")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to register member", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("member_id", member.ID).InfoContext(ctx, "member registered")
	}()

	now := s.now()
	vErr := &ValidationError{}
	if strings.TrimSpace(input.FullName) == "" {
		vErr.add("full_name", "full name is required")
	}
	if input.DateOfBirth != nil && input.DateOfBirth.After(now) {
		vErr.add("date_of_birth", "date of birth cannot be in the future")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	record := persistence.Member{
		ID:        s.idGenerator(),
		FullName:  strings.TrimSpace(input.FullName),
		Gender:    strings.TrimSpace(input.Gender),
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.DateOfBirth != nil {
		dob := time.Date(input.DateOfBirth.Year(), input.DateOfBirth.Month(), input.DateOfBirth.Day(), 0, 0, 0, 0, time.UTC)
		record.DateOfBirth = &dob
	}

	err = s.store.WithTransaction(ctx, func(repos persistence.Repositories) error {
		return mapRepoError(repos.CreateMember(ctx, record), nil)
	})
	if err = storageFailure(err); err != nil {
		return
	}

	member = toMember(record)
	return
}

// GetMember returns a member by ID.
func (s *MemberService) GetMember(ctx context.Context, id string) (member Member, err error) {
	if s == nil || s.store == nil {
		err = fmt.Errorf("MemberService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "GetMember", "member_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get member", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "member loaded")
	}()

	err = s.store.WithReadOnlyTransaction(ctx, func(repos persistence.Repositories) error {
		record, err := repos.GetMember(ctx, id)
		if err != nil {
			return mapRepoError(err, ErrMemberNotFound)
		}
		member = toMember(record)
		return nil
	})
	if err = storageFailure(err); err != nil {
		member = Member{}
	}
	return
}
