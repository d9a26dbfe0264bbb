// Package detail turns stored profiles into the views shown on profile
// cards and detail pages.
package detail

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"freelance-hub/internal/domain/profile"
	"freelance-hub/internal/domain/taxonomy"
)

var ErrNotFound = errors.New("profile not found")

const (
	StarsTotal          = 5
	CardPreferenceLimit = 3
)

// Translator resolves UI labels.
type Translator interface {
	T(lang taxonomy.Lang, key string, params map[string]any) string
}

// Resolve finds a profile by exact id. Ids are normalized when profiles
// enter the store, so no coercion happens here.
func Resolve(profiles []profile.Profile, id string) (profile.Profile, error) {
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return profile.Profile{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

type Stars struct {
	Filled int    `json:"filled"`
	Total  int    `json:"total"`
	Label  string `json:"label"`
}

// StarsFor renders a 0-5 rating: whole stars only, label with one decimal.
func StarsFor(rating float64) Stars {
	r := math.Max(0, math.Min(StarsTotal, rating))
	return Stars{
		Filled: int(math.Floor(r)),
		Total:  StarsTotal,
		Label:  fmt.Sprintf("%.1f", r),
	}
}

// Truncate keeps the first max preferences and reports how many were cut.
func Truncate(prefs []profile.WorkPreference, max int) ([]profile.WorkPreference, int) {
	if max < 0 {
		max = 0
	}
	if len(prefs) <= max {
		return prefs, 0
	}
	return prefs[:max], len(prefs) - max
}

// Initials takes the first letter of every name part, as shown in place of
// a missing avatar.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

type PreferenceView struct {
	Industry        string  `json:"industry"`
	IndustryLabel   string  `json:"industryLabel"`
	WorkType        string  `json:"workType"`
	WorkTypeLabel   string  `json:"workTypeLabel"`
	SpecialtyNote   string  `json:"specialtyNote,omitempty"`
	ExperienceNote  string  `json:"experienceNote,omitempty"`
	Certifications  string  `json:"certifications,omitempty"`
	Rating          float64 `json:"rating"`
	Stars           Stars   `json:"stars"`
	JobsCompleted   int     `json:"jobsCompleted"`
	JobsLabel       string  `json:"jobsLabel"`
	HourlyRate      float64 `json:"hourlyRate"`
	HourlyRateLabel string  `json:"hourlyRateLabel"`
}

type DetailView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Avatar      *string          `json:"avatar"`
	Initials    string           `json:"initials"`
	AboutMe     string           `json:"aboutMe,omitempty"`
	Preferences []PreferenceView `json:"workPreferences"`
}

type CardView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Avatar      *string          `json:"avatar"`
	Initials    string           `json:"initials"`
	Preferences []PreferenceView `json:"workPreferences"`
	Remaining   int              `json:"remaining"`
}

type Assembler struct {
	tr Translator
}

func NewAssembler(tr Translator) *Assembler {
	return &Assembler{tr: tr}
}

func (a *Assembler) Detail(p profile.Profile, lang taxonomy.Lang) DetailView {
	return DetailView{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Avatar:      p.Avatar,
		Initials:    Initials(p.Name),
		AboutMe:     p.AboutMe,
		Preferences: a.preferences(p.WorkPreferences, lang),
	}
}

func (a *Assembler) Card(p profile.Profile, lang taxonomy.Lang) CardView {
	visible, remaining := Truncate(p.WorkPreferences, CardPreferenceLimit)
	return CardView{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Avatar:      p.Avatar,
		Initials:    Initials(p.Name),
		Preferences: a.preferences(visible, lang),
		Remaining:   remaining,
	}
}

func (a *Assembler) preferences(prefs []profile.WorkPreference, lang taxonomy.Lang) []PreferenceView {
	out := make([]PreferenceView, 0, len(prefs))
	for _, wp := range prefs {
		out = append(out, PreferenceView{
			Industry:        wp.Industry,
			IndustryLabel:   a.t(lang, taxonomy.IndustryPath(wp.Industry), nil),
			WorkType:        wp.WorkType,
			WorkTypeLabel:   a.t(lang, taxonomy.WorkTypePath(wp.Industry, wp.WorkType), nil),
			SpecialtyNote:   wp.SpecialtyNote,
			ExperienceNote:  wp.ExperienceNote,
			Certifications:  wp.Certifications,
			Rating:          wp.Rating,
			Stars:           StarsFor(wp.Rating),
			JobsCompleted:   wp.JobsCompleted,
			JobsLabel:       a.t(lang, "profilePage.ratings.jobs", map[string]any{"count": wp.JobsCompleted}),
			HourlyRate:      wp.HourlyRate,
			HourlyRateLabel: a.t(lang, "profilePage.ratings.hourlyRate", map[string]any{"rate": wp.HourlyRate}),
		})
	}
	return out
}

func (a *Assembler) t(lang taxonomy.Lang, key string, params map[string]any) string {
	if a == nil || a.tr == nil {
		return key
	}
	return a.tr.T(lang, key, params)
}
