package profile

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Record is the loose shape profiles arrive in from seed files and
// persisted blobs. Older blobs carry numeric ids.
type Record struct {
	ID              any              `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	Email           string           `json:"email" yaml:"email"`
	Avatar          *string          `json:"avatar" yaml:"avatar"`
	AboutMe         string           `json:"aboutMe" yaml:"aboutMe"`
	WorkPreferences []WorkPreference `json:"workPreferences" yaml:"workPreferences"`
}

func (r Record) Profile() (Profile, error) {
	id, err := NormalizeID(r.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", err, r.ID)
	}
	p := Profile{
		ID:              id,
		Name:            r.Name,
		Email:           r.Email,
		Avatar:          r.Avatar,
		AboutMe:         r.AboutMe,
		WorkPreferences: r.WorkPreferences,
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// FromRecords converts records in order, failing on the first bad record.
func FromRecords(records []Record) ([]Profile, error) {
	out := make([]Profile, 0, len(records))
	for i, r := range records {
		p, err := r.Profile()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

//go:embed seed.yaml
var seedYAML []byte

// Seed returns the profiles shown before anything has been persisted.
func Seed() ([]Profile, error) {
	var records []Record
	if err := yaml.Unmarshal(seedYAML, &records); err != nil {
		return nil, fmt.Errorf("decode seed profiles: %w", err)
	}
	return FromRecords(records)
}
