package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidID      = errors.New("invalid profile id")
	ErrInvalidProfile = errors.New("invalid profile")
)

// Default stats stamped on preferences created through sign-up.
const (
	DefaultRating        = 4
	DefaultJobsCompleted = 2
	DefaultHourlyRate    = 50
)

type WorkPreference struct {
	Industry       string  `json:"industry" yaml:"industry"`
	WorkType       string  `json:"workType" yaml:"workType"`
	SpecialtyNote  string  `json:"specialtyNote,omitempty" yaml:"specialtyNote"`
	ExperienceNote string  `json:"experienceNote,omitempty" yaml:"experienceNote"`
	Certifications string  `json:"certifications,omitempty" yaml:"certifications"`
	Rating         float64 `json:"rating,omitempty" yaml:"rating"`
	JobsCompleted  int     `json:"jobsCompleted,omitempty" yaml:"jobsCompleted"`
	HourlyRate     float64 `json:"hourlyRate,omitempty" yaml:"hourlyRate"`
}

type Profile struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Avatar          *string          `json:"avatar"`
	AboutMe         string           `json:"aboutMe,omitempty"`
	WorkPreferences []WorkPreference `json:"workPreferences"`
}

// Clone returns a copy that shares nothing mutable with p.
func (p Profile) Clone() Profile {
	out := p
	if p.Avatar != nil {
		a := *p.Avatar
		out.Avatar = &a
	}
	out.WorkPreferences = make([]WorkPreference, len(p.WorkPreferences))
	copy(out.WorkPreferences, p.WorkPreferences)
	return out
}

// Normalize returns a copy of p with the id in its canonical string form.
// No other field is touched.
func (p Profile) Normalize() (Profile, error) {
	id, err := NormalizeID(p.ID)
	if err != nil {
		return Profile{}, err
	}
	out := p.Clone()
	out.ID = id
	return out, nil
}

// Validate rejects stats outside their range: rating in [0, 5], jobs and
// hourly rate non-negative.
func (p Profile) Validate() error {
	for i, wp := range p.WorkPreferences {
		switch {
		case !(wp.Rating >= 0 && wp.Rating <= 5):
			return fmt.Errorf("%w: preference %d rating %v out of range", ErrInvalidProfile, i, wp.Rating)
		case wp.JobsCompleted < 0:
			return fmt.Errorf("%w: preference %d jobs completed %d is negative", ErrInvalidProfile, i, wp.JobsCompleted)
		case !(wp.HourlyRate >= 0):
			return fmt.Errorf("%w: preference %d hourly rate %v is negative", ErrInvalidProfile, i, wp.HourlyRate)
		}
	}
	return nil
}

// NormalizeID converts an id from any ingestion source to its string form.
// Integral numbers drop the fractional part so 1 and "1" compare equal.
func NormalizeID(v any) (string, error) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case json.Number:
		s = normalizeNumeric(t.String())
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case uint64:
		s = strconv.FormatUint(t, 10)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			s = strconv.FormatFloat(t, 'f', 0, 64)
		} else {
			s = strconv.FormatFloat(t, 'f', -1, 64)
		}
	case nil:
		s = ""
	default:
		s = strings.TrimSpace(fmt.Sprint(t))
	}
	if s == "" {
		return "", ErrInvalidID
	}
	return s, nil
}

func normalizeNumeric(raw string) string {
	if strings.ContainsAny(raw, "eE") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return raw
	}
	i := strings.IndexByte(raw, '.')
	if i < 0 {
		return raw
	}
	frac := strings.TrimRight(raw[i+1:], "0")
	if frac == "" {
		return raw[:i]
	}
	return raw[:i+1] + frac
}
