package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Dimension string

const (
	DimIndustry Dimension = "industry"
	DimWorkType Dimension = "workType"
)

var (
	ErrUnknownDimension    = errors.New("unknown filter dimension")
	ErrInvalidAvailability = errors.New("invalid availability")
)

// Set is an unordered set of taxonomy ids.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members sorted.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

type AvailabilityKind string

const (
	AvailabilityDay   AvailabilityKind = "day"
	AvailabilityRange AvailabilityKind = "range"
	AvailabilityWeek  AvailabilityKind = "week"
)

// Availability is a date constraint picked in the UI. Profiles carry no
// availability data, so it is validated and kept but never narrows results.
type Availability struct {
	Kind AvailabilityKind `json:"kind"`
	Date time.Time        `json:"date,omitempty"`
	From time.Time        `json:"from,omitempty"`
	To   time.Time        `json:"to,omitempty"`
}

func Day(d time.Time) Availability {
	return Availability{Kind: AvailabilityDay, Date: truncateDay(d)}
}

func Range(from, to time.Time) Availability {
	return Availability{Kind: AvailabilityRange, From: truncateDay(from), To: truncateDay(to)}
}

// NextWeek covers today through today+7.
func NextWeek(now time.Time) Availability {
	today := truncateDay(now)
	return Availability{Kind: AvailabilityWeek, From: today, To: today.AddDate(0, 0, 7)}
}

func (a Availability) Validate() error {
	switch a.Kind {
	case AvailabilityDay:
		if a.Date.IsZero() {
			return fmt.Errorf("%w: day requires a date", ErrInvalidAvailability)
		}
	case AvailabilityRange, AvailabilityWeek:
		if a.From.IsZero() || a.To.IsZero() {
			return fmt.Errorf("%w: %s requires from and to", ErrInvalidAvailability, a.Kind)
		}
		if a.To.Before(a.From) {
			return fmt.Errorf("%w: to is before from", ErrInvalidAvailability)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidAvailability, a.Kind)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Selection is the user's current filter state. The zero value is empty
// and ready to use.
type Selection struct {
	Industry     Set
	WorkType     Set
	Availability *Availability
}

// SetFilter adds value to or removes it from one dimension. Selecting an
// industry leaves work type selections alone even when they belong to a
// different industry.
func (s *Selection) SetFilter(dim Dimension, value string, checked bool) error {
	value = strings.TrimSpace(value)
	var target *Set
	switch dim {
	case DimIndustry:
		target = &s.Industry
	case DimWorkType:
		target = &s.WorkType
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
	if value == "" {
		return nil
	}
	if checked {
		if *target == nil {
			*target = Set{}
		}
		(*target)[value] = struct{}{}
		return nil
	}
	delete(*target, value)
	return nil
}

// SetAvailability replaces the availability constraint; nil clears it.
func (s *Selection) SetAvailability(a *Availability) error {
	if a == nil {
		s.Availability = nil
		return nil
	}
	if err := a.Validate(); err != nil {
		return err
	}
	cp := *a
	s.Availability = &cp
	return nil
}

func (s Selection) IsEmpty() bool {
	return len(s.Industry) == 0 && len(s.WorkType) == 0 && s.Availability == nil
}
