// Package preference holds the state of the multi-row work preference form
// used at sign-up. Work type options always cascade from the industry
// chosen on the same row and are read from the live taxonomy on every call.
package preference

import (
	"errors"
	"fmt"

	"freelance-hub/internal/domain/profile"
	"freelance-hub/internal/domain/taxonomy"
)

var (
	ErrUnknownIndustry = errors.New("unknown industry")
	ErrUnknownWorkType = errors.New("unknown work type")
	ErrIncompleteRow   = errors.New("work preference row needs both an industry and a work type")
)

// Catalog supplies the current taxonomy snapshot.
type Catalog interface {
	Snapshot() *taxonomy.Snapshot
}

type Field string

const (
	FieldSpecialtyNote  Field = "specialtyNote"
	FieldExperienceNote Field = "experienceNote"
)

// Draft is one row of the form. Industry or WorkType may be blank while the
// row is being filled in.
type Draft struct {
	Industry       string `json:"industry"`
	WorkType       string `json:"workType"`
	SpecialtyNote  string `json:"specialtyNote"`
	ExperienceNote string `json:"experienceNote"`
}

func (d Draft) complete() bool {
	return d.Industry != "" && d.WorkType != ""
}

func (d Draft) blank() bool {
	return d == Draft{}
}

// WorkTypeOptions is the cascading selector: the work types of industry as
// the snapshot knows them, or nothing when the industry is unknown.
func WorkTypeOptions(industry string, snap *taxonomy.Snapshot, lang taxonomy.Lang) []taxonomy.WorkType {
	if snap == nil || !snap.HasIndustry(industry) {
		return []taxonomy.WorkType{}
	}
	return snap.WorkTypeOptions(lang, industry)
}

// Editor is owned by a single form session and is not safe for concurrent
// use.
type Editor struct {
	catalog Catalog
	lang    taxonomy.Lang

	drafts           []Draft
	selectedIndustry string
	pendingWorkType  string
	addingNew        bool
}

func NewEditor(catalog Catalog, lang taxonomy.Lang) *Editor {
	if lang == "" {
		lang = taxonomy.EN
	}
	return &Editor{catalog: catalog, lang: lang}
}

func (e *Editor) snapshot() *taxonomy.Snapshot {
	if e.catalog == nil {
		return nil
	}
	return e.catalog.Snapshot()
}

// Drafts returns a copy of the current rows.
func (e *Editor) Drafts() []Draft {
	return append([]Draft(nil), e.drafts...)
}

func (e *Editor) SelectedIndustry() string { return e.selectedIndustry }
func (e *Editor) PendingWorkType() string  { return e.pendingWorkType }
func (e *Editor) AddingNew() bool          { return e.addingNew }

// Open starts a fresh editing session.
func (e *Editor) Open() {
	e.Reset()
	e.addingNew = true
}

func (e *Editor) Reset() {
	e.drafts = nil
	e.selectedIndustry = ""
	e.pendingWorkType = ""
	e.addingNew = false
}

// SelectIndustry sets the industry for the next toggled work type and
// drops any work type picked for the previous industry.
func (e *Editor) SelectIndustry(id string) {
	e.selectedIndustry = id
	e.pendingWorkType = ""
}

func (e *Editor) WorkTypeOptions() []taxonomy.WorkType {
	return WorkTypeOptions(e.selectedIndustry, e.snapshot(), e.lang)
}

// PickWorkType marks workType as pending for the selected industry. It is
// ignored when workType is not among the current options.
func (e *Editor) PickWorkType(workType string) bool {
	if !containsWorkType(e.WorkTypeOptions(), workType) {
		return false
	}
	e.pendingWorkType = workType
	return true
}

// ToggleWorkType toggles (selectedIndustry, workType). Without a selected
// industry, or for a work type outside it, nothing happens.
func (e *Editor) ToggleWorkType(workType, specialtyNote, experienceNote string) bool {
	if e.selectedIndustry == "" {
		return false
	}
	return e.Toggle(e.selectedIndustry, workType, specialtyNote, experienceNote)
}

// Toggle removes the draft for (industry, workType) when present and
// appends it otherwise. Appending closes the row: the industry selection
// is cleared.
func (e *Editor) Toggle(industry, workType, specialtyNote, experienceNote string) bool {
	if i := e.indexOf(industry, workType, -1); i >= 0 {
		e.drafts = append(e.drafts[:i], e.drafts[i+1:]...)
		return true
	}
	if !containsWorkType(WorkTypeOptions(industry, e.snapshot(), e.lang), workType) {
		return false
	}
	e.drafts = append(e.drafts, Draft{
		Industry:       industry,
		WorkType:       workType,
		SpecialtyNote:  specialtyNote,
		ExperienceNote: experienceNote,
	})
	e.selectedIndustry = ""
	e.pendingWorkType = ""
	e.addingNew = false
	return true
}

// AddRow appends a blank row for the explicit add/remove form shape.
func (e *Editor) AddRow() int {
	e.drafts = append(e.drafts, Draft{})
	return len(e.drafts) - 1
}

// SetRowIndustry changes a row's industry and clears its work type.
func (e *Editor) SetRowIndustry(index int, industry string) bool {
	if !e.inRange(index) {
		return false
	}
	e.drafts[index].Industry = industry
	e.drafts[index].WorkType = ""
	return true
}

// RowWorkTypeOptions returns the options for a row's current industry.
func (e *Editor) RowWorkTypeOptions(index int) []taxonomy.WorkType {
	if !e.inRange(index) {
		return []taxonomy.WorkType{}
	}
	return WorkTypeOptions(e.drafts[index].Industry, e.snapshot(), e.lang)
}

// SetRowWorkType sets a row's work type. It refuses work types outside the
// row's industry and pairs another row already holds.
func (e *Editor) SetRowWorkType(index int, workType string) bool {
	if !e.inRange(index) {
		return false
	}
	if !containsWorkType(e.RowWorkTypeOptions(index), workType) {
		return false
	}
	if e.indexOf(e.drafts[index].Industry, workType, index) >= 0 {
		return false
	}
	e.drafts[index].WorkType = workType
	return true
}

// RemoveDraftPreference removes a row; out-of-range indexes are ignored.
func (e *Editor) RemoveDraftPreference(index int) {
	if !e.inRange(index) {
		return
	}
	e.drafts = append(e.drafts[:index], e.drafts[index+1:]...)
}

// UpdateDraftField edits a note on an existing row.
func (e *Editor) UpdateDraftField(index int, field Field, value string) bool {
	if !e.inRange(index) {
		return false
	}
	switch field {
	case FieldSpecialtyNote:
		e.drafts[index].SpecialtyNote = value
	case FieldExperienceNote:
		e.drafts[index].ExperienceNote = value
	default:
		return false
	}
	return true
}

// Build turns the rows into work preferences. Untouched rows are skipped.
// A half filled row, or one pointing at an entry the taxonomy no longer
// has, is an error.
func (e *Editor) Build() ([]profile.WorkPreference, error) {
	snap := e.snapshot()
	out := make([]profile.WorkPreference, 0, len(e.drafts))
	for i, d := range e.drafts {
		if d.blank() {
			continue
		}
		if d.Industry != "" && (snap == nil || !snap.HasIndustry(d.Industry)) {
			return nil, fmt.Errorf("%w: row %d %q", ErrUnknownIndustry, i, d.Industry)
		}
		if !d.complete() {
			return nil, fmt.Errorf("%w: row %d", ErrIncompleteRow, i)
		}
		if !snap.HasWorkType(d.Industry, d.WorkType) {
			return nil, fmt.Errorf("%w: row %d %q in %q", ErrUnknownWorkType, i, d.WorkType, d.Industry)
		}
		out = append(out, profile.WorkPreference{
			Industry:       d.Industry,
			WorkType:       d.WorkType,
			SpecialtyNote:  d.SpecialtyNote,
			ExperienceNote: d.ExperienceNote,
		})
	}
	return out, nil
}

func (e *Editor) inRange(index int) bool {
	return index >= 0 && index < len(e.drafts)
}

// indexOf finds the row holding (industry, workType), ignoring skip.
func (e *Editor) indexOf(industry, workType string, skip int) int {
	if industry == "" || workType == "" {
		return -1
	}
	for i, d := range e.drafts {
		if i != skip && d.Industry == industry && d.WorkType == workType {
			return i
		}
	}
	return -1
}

func containsWorkType(opts []taxonomy.WorkType, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
