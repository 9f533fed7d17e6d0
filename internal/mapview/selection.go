package mapview

import "slices"

// Selection is the client's UI state: one selected date and the set of
// people whose markers are shown. The active set keeps insertion order.
type Selection struct {
	date   string
	active []string
}

// NewSelection returns a selection for date with the given people active.
// Duplicate names are collapsed.
func NewSelection(date string, active ...string) *Selection {
	s := &Selection{date: date}
	for _, name := range active {
		if !s.IsActive(name) {
			s.active = append(s.active, name)
		}
	}
	return s
}

// DefaultSelection selects DefaultDate with everyone in h active.
func DefaultSelection(h History) *Selection {
	return NewSelection(DefaultDate, h.People()...)
}

func (s *Selection) Date() string { return s.date }

func (s *Selection) SetDate(date string) { s.date = date }

// IsActive reports whether name is in the active set.
func (s *Selection) IsActive(name string) bool {
	return slices.Contains(s.active, name)
}

// Active returns a copy of the active set.
func (s *Selection) Active() []string {
	return slices.Clone(s.active)
}

// Toggle removes name if it is active and adds it otherwise.
// Toggling the same name twice restores the original set.
func (s *Selection) Toggle(name string) {
	if i := slices.Index(s.active, name); i >= 0 {
		s.active = slices.Delete(s.active, i, i+1)
		return
	}
	s.active = append(s.active, name)
}
