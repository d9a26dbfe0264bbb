// Package taxonomy models the two-level industry / work type catalogue that
// drives sign-up forms and profile filtering. The catalogue is stored inside
// per-language translation documents; a Snapshot is an immutable view over
// one consistent set of those documents.
package taxonomy

import (
	"errors"
	"strings"
)

type Lang string

const (
	EN Lang = "en"
	NL Lang = "nl"
)

// DefaultLanguages is the set of locale files the catalogue is mirrored into.
var DefaultLanguages = []Lang{EN, NL}

// ParseLang returns the language for s when it is one of supported.
func ParseLang(s string, supported []Lang) (Lang, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range supported {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

type Industry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type WorkType struct {
	ID         string `json:"id"`
	IndustryID string `json:"industryId"`
	Name       string `json:"name"`
}

// Translations holds one display name per language.
type Translations map[Lang]string

// Kind distinguishes the two levels of the catalogue.
type Kind string

const (
	KindIndustry Kind = "industry"
	KindWorkType Kind = "workType"
)

func (k Kind) Valid() bool {
	return k == KindIndustry || k == KindWorkType
}

var (
	ErrInvalidKey         = errors.New("invalid taxonomy key")
	ErrMissingTranslation = errors.New("missing translation")
	ErrNotFound           = errors.New("taxonomy entry not found")
	ErrAlreadyExists      = errors.New("taxonomy entry already exists")
	ErrIndustryNotFound   = errors.New("industry not found")
)

// KeyFromName derives a catalogue key from a display name: trimmed,
// lowercased, whitespace runs joined with "_".
func KeyFromName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// ValidKey reports whether key can address a node in a translation
// document. Dots would split the lookup path.
func ValidKey(key string) bool {
	if key == "" {
		return false
	}
	return !strings.ContainsAny(key, ". \t\n")
}

// IndustryPath and WorkTypePath are the translation keys the UI resolves.
func IndustryPath(industry string) string {
	return rootKey + "." + industriesKey + "." + industry
}

func WorkTypePath(industry, workType string) string {
	return rootKey + "." + workTypesKey + "." + industry + "." + workType
}
