package schedule

// Kind distinguishes one-to-one sessions from group classes.
type Kind string

const (
	// KindPersonal is a single-member session with a fixed capacity of one.
	KindPersonal Kind = "personal"
	// KindGroup is a class with an administrator chosen capacity.
	KindGroup Kind = "group"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindPersonal || k == KindGroup
}

// Slot is the view of an existing session the overlap detector works on.
type Slot struct {
	SessionID string
	Kind      Kind
	Interval  Interval
}

// Filter narrows which slots take part in an overlap scan.
type Filter struct {
	// Kind restricts the scan to one kind; empty means every kind.
	Kind Kind
	// ExcludeSessionID skips the session being rescheduled.
	ExcludeSessionID string
}

func (f Filter) matches(slot Slot) bool {
	if f.Kind != "" && slot.Kind != f.Kind {
		return false
	}
	if f.ExcludeSessionID != "" && slot.SessionID == f.ExcludeSessionID {
		return false
	}
	return true
}

// Overlaps applies the half-open test: touching endpoints do not overlap.
func Overlaps(a, b Interval) bool {
	return !(a.End <= b.Start || a.Start >= b.End)
}

// FindOverlap returns the first slot matching filter that intersects candidate.
func FindOverlap(existing []Slot, candidate Interval, filter Filter) (Slot, bool) {
	for _, slot := range existing {
		if !filter.matches(slot) {
			continue
		}
		if Overlaps(slot.Interval, candidate) {
			return slot, true
		}
	}
	return Slot{}, false
}

// HasOverlap reports whether any slot matching filter intersects candidate.
func HasOverlap(existing []Slot, candidate Interval, filter Filter) bool {
	_, found := FindOverlap(existing, candidate, filter)
	return found
}
