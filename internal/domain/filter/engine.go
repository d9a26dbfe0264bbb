// Package filter derives facet values from profiles and narrows a profile
// list by a Selection. Within a dimension any selected value may match; the
// industry and work type dimensions must both hold on one and the same
// preference.
package filter

import "freelance-hub/internal/domain/profile"

// Facets lists the values actually present in a profile set, in the order
// they were first seen.
type Facets struct {
	Industries          []string            `json:"industries"`
	WorkTypesByIndustry map[string][]string `json:"workTypesByIndustry"`
}

func (f Facets) HasIndustry(id string) bool {
	_, ok := f.WorkTypesByIndustry[id]
	return ok
}

func (f Facets) HasWorkType(industry, workType string) bool {
	for _, wt := range f.WorkTypesByIndustry[industry] {
		if wt == workType {
			return true
		}
	}
	return false
}

// DeriveFacets walks profiles in order, then each profile's preferences in
// order. Blank industries or work types are skipped.
func DeriveFacets(profiles []profile.Profile) Facets {
	f := Facets{
		Industries:          []string{},
		WorkTypesByIndustry: map[string][]string{},
	}
	seenWT := map[string]Set{}
	for _, p := range profiles {
		for _, wp := range p.WorkPreferences {
			if wp.Industry == "" {
				continue
			}
			if _, ok := f.WorkTypesByIndustry[wp.Industry]; !ok {
				f.Industries = append(f.Industries, wp.Industry)
				f.WorkTypesByIndustry[wp.Industry] = []string{}
				seenWT[wp.Industry] = Set{}
			}
			if wp.WorkType == "" || seenWT[wp.Industry].Has(wp.WorkType) {
				continue
			}
			seenWT[wp.Industry][wp.WorkType] = struct{}{}
			f.WorkTypesByIndustry[wp.Industry] = append(f.WorkTypesByIndustry[wp.Industry], wp.WorkType)
		}
	}
	return f
}

// Apply returns the profiles that match sel, keeping input order. An empty
// selection returns profiles itself.
func Apply(profiles []profile.Profile, sel Selection) []profile.Profile {
	if sel.IsEmpty() {
		return profiles
	}
	out := make([]profile.Profile, 0, len(profiles))
	for _, p := range profiles {
		if Matches(p, sel) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether a single preference of p satisfies every
// non-empty dimension of sel.
func Matches(p profile.Profile, sel Selection) bool {
	if len(sel.Industry) > 0 || len(sel.WorkType) > 0 {
		if !anyPreference(p, func(wp profile.WorkPreference) bool {
			return (len(sel.Industry) == 0 || sel.Industry.Has(wp.Industry)) &&
				(len(sel.WorkType) == 0 || sel.WorkType.Has(wp.WorkType))
		}) {
			return false
		}
	}
	return matchesAvailability(p, sel.Availability)
}

func anyPreference(p profile.Profile, pred func(profile.WorkPreference) bool) bool {
	for _, wp := range p.WorkPreferences {
		if pred(wp) {
			return true
		}
	}
	return false
}

// matchesAvailability always holds; profiles have no calendar to check.
func matchesAvailability(_ profile.Profile, _ *Availability) bool {
	return true
}
