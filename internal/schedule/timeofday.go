package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrAborted is returned when a caller supplied the abort sentinel instead of a time.
	ErrAborted = errors.New("schedule: aborted by caller")
	// ErrInvalidTime is returned when a value cannot be read as a time of day.
	ErrInvalidTime = errors.New("schedule: invalid time of day")
	// ErrEmptyInterval is returned when the end of an interval does not follow its start.
	ErrEmptyInterval = errors.New("schedule: end must be after start")
)

// TimeOfDay is a wall-clock time without a date, counted in minutes after midnight.
type TimeOfDay int

const (
	// Abort is the sentinel a caller passes to abandon an operation.
	Abort TimeOfDay = -1

	minutesPerDay = 24 * 60
)

// abortInput is the literal that callers type to back out of a prompt.
const abortInput = "0"

// NewTimeOfDay builds a TimeOfDay from an hour and minute pair.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustTimeOfDay is NewTimeOfDay for constant inputs; it panics on invalid values.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay reads an HH:MM value. The input "0" yields Abort.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	if value == abortInput {
		return Abort, nil
	}

	hh, mm, ok := strings.Cut(value, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidTime, value)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidTime, value)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidTime, value)
	}
	return NewTimeOfDay(hour, minute)
}

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

// IsAbort reports whether t is the abort sentinel.
func (t TimeOfDay) IsAbort() bool {
	return t == Abort
}

// Minutes returns the number of minutes after midnight.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component.
func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// String renders the value as HH:MM.
func (t TimeOfDay) String() string {
	if t.IsAbort() {
		return abortInput
	}
	if !t.Valid() {
		return fmt.Sprintf("invalid(%d)", int(t))
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	if !t.Valid() && !t.IsAbort() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTime, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval is a half-open time-of-day range [Start, End).
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewInterval validates a start/end pair. It must be called before an interval
// is used for availability or overlap checks.
func NewInterval(start, end TimeOfDay) (Interval, error) {
	if start.IsAbort() || end.IsAbort() {
		return Interval{}, ErrAborted
	}
	if !start.Valid() {
		return Interval{}, fmt.Errorf("%w: start %d", ErrInvalidTime, int(start))
	}
	if !end.Valid() {
		return Interval{}, fmt.Errorf("%w: end %d", ErrInvalidTime, int(end))
	}
	if end <= start {
		return Interval{}, fmt.Errorf("%w: %s-%s", ErrEmptyInterval, start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// ParseInterval parses and validates a pair of HH:MM values.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

// Within reports whether i lies entirely inside window.
func (i Interval) Within(window Interval) bool {
	return i.Start >= window.Start && i.End <= window.End
}

// Duration returns the length of the interval in minutes.
func (i Interval) Duration() int {
	return int(i.End - i.Start)
}

// String renders the interval as HH:MM-HH:MM.
func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}
