package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// Snapshot is an immutable view of every locale document. Mutating
// methods return a new Snapshot with the revision bumped by one and leave
// the receiver as it was.
type Snapshot struct {
	revision int64
	langs    []Lang
	docs     map[Lang]Document
}

// NewSnapshot copies docs. Languages missing from docs start as empty
// documents.
func NewSnapshot(langs []Lang, docs map[Lang]Document, revision int64) *Snapshot {
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	s := &Snapshot{
		revision: revision,
		langs:    append([]Lang(nil), langs...),
		docs:     make(map[Lang]Document, len(langs)),
	}
	for _, l := range s.langs {
		s.docs[l] = docs[l].Clone()
	}
	return s
}

func (s *Snapshot) Revision() int64 {
	if s == nil {
		return 0
	}
	return s.revision
}

func (s *Snapshot) Languages() []Lang {
	if s == nil {
		return nil
	}
	return append([]Lang(nil), s.langs...)
}

// Document returns a copy of the document for lang.
func (s *Snapshot) Document(lang Lang) (Document, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.docs[lang]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Lookup resolves a dotted translation key in lang without copying.
func (s *Snapshot) Lookup(lang Lang, key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.docs[lang]
	if !ok {
		return nil, false
	}
	return d.Lookup(key)
}

// Industries maps industry id to display name in lang.
func (s *Snapshot) Industries(lang Lang) map[string]string {
	if s == nil {
		return map[string]string{}
	}
	return s.docs[lang].stringsAt(rootKey, industriesKey)
}

// WorkTypes maps work type id to display name for one industry in lang.
// An unknown industry yields an empty map.
func (s *Snapshot) WorkTypes(lang Lang, industry string) map[string]string {
	if s == nil || industry == "" {
		return map[string]string{}
	}
	return s.docs[lang].stringsAt(rootKey, workTypesKey, industry)
}

// HasIndustry reports whether any language lists the industry.
func (s *Snapshot) HasIndustry(id string) bool {
	if s == nil || id == "" {
		return false
	}
	for _, l := range s.langs {
		if _, ok := s.Industries(l)[id]; ok {
			return true
		}
	}
	return false
}

func (s *Snapshot) HasWorkType(industry, workType string) bool {
	if s == nil || workType == "" {
		return false
	}
	for _, l := range s.langs {
		if _, ok := s.WorkTypes(l, industry)[workType]; ok {
			return true
		}
	}
	return false
}

// IndustryOptions lists industries sorted by id.
func (s *Snapshot) IndustryOptions(lang Lang) []Industry {
	names := s.Industries(lang)
	out := make([]Industry, 0, len(names))
	for _, id := range sortedKeys(names) {
		out = append(out, Industry{ID: id, Name: names[id]})
	}
	return out
}

// WorkTypeOptions lists the work types of one industry sorted by id. It is
// the only source of options for a cascading work type select, so anything
// outside the industry can never be offered.
func (s *Snapshot) WorkTypeOptions(lang Lang, industry string) []WorkType {
	names := s.WorkTypes(lang, industry)
	out := make([]WorkType, 0, len(names))
	for _, id := range sortedKeys(names) {
		out = append(out, WorkType{ID: id, IndustryID: industry, Name: names[id]})
	}
	return out
}

// UpsertIndustry adds or renames an industry. A new industry also gets an
// empty work type group; an edit keeps existing work types.
func (s *Snapshot) UpsertIndustry(key string, names Translations, isEdit bool) (*Snapshot, error) {
	if !ValidKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := s.checkNames(names); err != nil {
		return nil, err
	}

	exists := s.HasIndustry(key)
	switch {
	case isEdit && !exists:
		return nil, fmt.Errorf("%w: industry %q", ErrNotFound, key)
	case !isEdit && exists:
		return nil, fmt.Errorf("%w: industry %q", ErrAlreadyExists, key)
	}

	next := s.next()
	for _, l := range next.langs {
		doc := next.docs[l]
		doc.ensure(rootKey, industriesKey)[key] = strings.TrimSpace(names[l])
		groups := doc.ensure(rootKey, workTypesKey)
		if !isEdit {
			groups[key] = map[string]any{}
		} else if _, ok := asMap(groups[key]); !ok {
			groups[key] = map[string]any{}
		}
	}
	return next, nil
}

// UpsertWorkType adds or renames a work type under an existing industry.
func (s *Snapshot) UpsertWorkType(industry, key string, names Translations, isEdit bool) (*Snapshot, error) {
	if !ValidKey(industry) {
		return nil, fmt.Errorf("%w: industry %q", ErrInvalidKey, industry)
	}
	if !ValidKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := s.checkNames(names); err != nil {
		return nil, err
	}
	if !s.HasIndustry(industry) {
		return nil, fmt.Errorf("%w: %q", ErrIndustryNotFound, industry)
	}

	exists := s.HasWorkType(industry, key)
	switch {
	case isEdit && !exists:
		return nil, fmt.Errorf("%w: work type %q in %q", ErrNotFound, key, industry)
	case !isEdit && exists:
		return nil, fmt.Errorf("%w: work type %q in %q", ErrAlreadyExists, key, industry)
	}

	next := s.next()
	for _, l := range next.langs {
		next.docs[l].ensure(rootKey, workTypesKey, industry)[key] = strings.TrimSpace(names[l])
	}
	return next, nil
}

// DeleteIndustry removes the industry and its whole work type group.
// Removing an absent industry is not an error; the returned bool reports
// whether anything changed.
func (s *Snapshot) DeleteIndustry(key string) (*Snapshot, bool) {
	if !s.HasIndustry(key) && !s.hasGroup(key) {
		return s, false
	}
	next := s.next()
	for _, l := range next.langs {
		if m, ok := next.docs[l].existing(rootKey, industriesKey); ok {
			delete(m, key)
		}
		if m, ok := next.docs[l].existing(rootKey, workTypesKey); ok {
			delete(m, key)
		}
	}
	return next, true
}

// DeleteWorkType removes one work type. Absent entries are not an error.
func (s *Snapshot) DeleteWorkType(industry, key string) (*Snapshot, bool) {
	if !s.HasWorkType(industry, key) {
		return s, false
	}
	next := s.next()
	for _, l := range next.langs {
		if m, ok := next.docs[l].existing(rootKey, workTypesKey, industry); ok {
			delete(m, key)
		}
	}
	return next, true
}

func (s *Snapshot) hasGroup(industry string) bool {
	for _, l := range s.langs {
		if m, ok := s.docs[l].existing(rootKey, workTypesKey); ok {
			if _, ok := m[industry]; ok {
				return true
			}
		}
	}
	return false
}

func (s *Snapshot) checkNames(names Translations) error {
	var missing []string
	for _, l := range s.langs {
		if strings.TrimSpace(names[l]) == "" {
			missing = append(missing, string(l))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingTranslation, strings.Join(missing, ", "))
	}
	return nil
}

func (s *Snapshot) next() *Snapshot {
	return NewSnapshot(s.langs, s.docs, s.revision+1)
}

// WithRevision returns a copy carrying rev. Used when a reloaded snapshot
// replaces a live one.
func (s *Snapshot) WithRevision(rev int64) *Snapshot {
	return NewSnapshot(s.langs, s.docs, rev)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
