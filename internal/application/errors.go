package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/club-scheduler/internal/persistence"
	"github.com/example/club-scheduler/internal/schedule"
)

var (
	// ErrInvalidInterval is returned when a requested start/end pair is unusable.
	ErrInvalidInterval = errors.New("application: invalid interval")
	// ErrAborted is returned when the caller entered the abort sentinel. It matches ErrInvalidInterval.
	ErrAborted = fmt.Errorf("%w: aborted by caller", ErrInvalidInterval)
	// ErrTrainerNotFound is returned when the referenced trainer does not exist.
	ErrTrainerNotFound = errors.New("application: trainer not found")
	// ErrOutsideAvailability is returned when an interval leaves the trainer's window.
	ErrOutsideAvailability = errors.New("application: outside trainer availability")
	// ErrOverlapConflict is returned when the trainer already has an overlapping session.
	ErrOverlapConflict = errors.New("application: overlapping session")
	// ErrRoomNotFound is returned when the referenced room does not exist.
	ErrRoomNotFound = errors.New("application: room not found")
	// ErrRoomAlreadyBooked is returned when the chosen room is held by another session.
	ErrRoomAlreadyBooked = errors.New("application: room already booked")
	// ErrNoRoomsAvailable is returned when every room is booked.
	ErrNoRoomsAvailable = errors.New("application: no rooms available")
	// ErrSessionNotFound is returned when a session is missing, cancelled, or of the wrong kind.
	ErrSessionNotFound = errors.New("application: session not found")
	// ErrNotOwnedByCaller is returned when a member acts on a session they do not hold.
	ErrNotOwnedByCaller = errors.New("application: session not owned by caller")
	// ErrAlreadyJoined is returned when a member joins a class twice.
	ErrAlreadyJoined = errors.New("application: already joined")
	// ErrSessionFull is returned when a class has reached its capacity.
	ErrSessionFull = errors.New("application: session full")
	// ErrMemberNotFound is returned when the referenced member does not exist.
	ErrMemberNotFound = errors.New("application: member not found")
	// ErrStorageFailure wraps unexpected persistence errors.
	ErrStorageFailure = errors.New("application: storage failure")
)

var domainErrors = []error{
	ErrInvalidInterval,
	ErrTrainerNotFound,
	ErrOutsideAvailability,
	ErrOverlapConflict,
	ErrRoomNotFound,
	ErrRoomAlreadyBooked,
	ErrNoRoomsAvailable,
	ErrSessionNotFound,
	ErrNotOwnedByCaller,
	ErrAlreadyJoined,
	ErrSessionFull,
	ErrMemberNotFound,
	ErrStorageFailure,
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// isDomainError reports whether err already carries an application-level meaning.
func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// storageFailure wraps anything that is not a domain error as ErrStorageFailure.
func storageFailure(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}

// mapRepoError translates a repository error. persistence.ErrNotFound becomes
// notFound when one is supplied; everything else unrecognised is a storage failure.
func mapRepoError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, persistence.ErrNotFound) {
		return notFound
	}
	return storageFailure(err)
}

// mapIntervalError converts validator failures to ErrInvalidInterval or ErrAborted.
func mapIntervalError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, schedule.ErrAborted) {
		return ErrAborted
	}
	return fmt.Errorf("%w: %v", ErrInvalidInterval, err)
}
