package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"freelance-hub/internal/domain/detail"
	"freelance-hub/internal/domain/filter"
	"freelance-hub/internal/domain/preference"
	"freelance-hub/internal/domain/profile"
	"freelance-hub/internal/domain/taxonomy"
	"freelance-hub/internal/metrics"
	"freelance-hub/internal/pkg/logger"
	"freelance-hub/internal/pkg/validation"
	"freelance-hub/internal/repository"
)

type ProfileNotifier interface {
	ProfileAdded(id string)
}

type PreferenceInput struct {
	Industry       string
	WorkType       string
	SpecialtyNote  string
	ExperienceNote string
}

type SignUpInput struct {
	Name        string
	Email       string
	Avatar      *string
	AboutMe     string
	Preferences []PreferenceInput
}

type ListResult struct {
	Items []detail.CardView `json:"items"`
	Total int               `json:"total"`
}

type FacetOption struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	WorkTypes []FacetOption `json:"workTypes,omitempty"`
}

type ProfileUsecase interface {
	SignUp(ctx context.Context, in SignUpInput) (profile.Profile, error)
	List(ctx context.Context, sel filter.Selection, lang taxonomy.Lang) (ListResult, error)
	Facets(ctx context.Context, lang taxonomy.Lang) ([]FacetOption, error)
	Get(ctx context.Context, id string, lang taxonomy.Lang) (detail.DetailView, error)
}

type ProfileOption func(*Profiles)

// WithRejectDuplicateEmail turns on the optional sign-up policy that
// refuses an email already present in the store.
func WithRejectDuplicateEmail(on bool) ProfileOption {
	return func(u *Profiles) { u.rejectDuplicateEmail = on }
}

func WithIDGenerator(gen func() (string, error)) ProfileOption {
	return func(u *Profiles) {
		if gen != nil {
			u.newID = gen
		}
	}
}

type Profiles struct {
	repo      repository.ProfileRepository
	catalog   preference.Catalog
	assembler *detail.Assembler
	tr        detail.Translator
	notifier  ProfileNotifier
	logger    logger.Logger

	rejectDuplicateEmail bool
	newID                func() (string, error)
}

func NewProfileUsecase(repo repository.ProfileRepository, catalog preference.Catalog, tr detail.Translator, notifier ProfileNotifier, l logger.Logger, opts ...ProfileOption) *Profiles {
	u := &Profiles{
		repo:      repo,
		catalog:   catalog,
		assembler: detail.NewAssembler(tr),
		tr:        tr,
		notifier:  notifier,
		logger:    logger.OrNop(l),
		newID:     newProfileID,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func newProfileID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// SignUp validates the form, runs the preferences through the cascading
// editor and appends the new profile with the default stats.
func (u *Profiles) SignUp(ctx context.Context, in SignUpInput) (profile.Profile, error) {
	p, err := u.signUp(ctx, in)
	if err != nil {
		metrics.ProfileSignups.WithLabelValues(metrics.ResultError).Inc()
		return profile.Profile{}, err
	}
	metrics.ProfileSignups.WithLabelValues(metrics.ResultOK).Inc()
	u.logger.Info("profile signed up", logger.Fields{"profile_id": p.ID, "preferences": len(p.WorkPreferences)})
	if u.notifier != nil {
		u.notifier.ProfileAdded(p.ID)
	}
	return p, nil
}

func (u *Profiles) signUp(ctx context.Context, in SignUpInput) (profile.Profile, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" {
		return profile.Profile{}, newError(ErrInvalidInput, errors.New("name is required"))
	}
	if !validation.IsEmail(email) {
		return profile.Profile{}, newError(ErrInvalidInput, errors.New("email is invalid"))
	}

	prefs, err := u.buildPreferences(in.Preferences)
	if err != nil {
		return profile.Profile{}, err
	}

	if u.rejectDuplicateEmail {
		existing, err := u.repo.List(ctx)
		if err != nil {
			return profile.Profile{}, newError(ErrInternal, err)
		}
		for _, p := range existing {
			if strings.EqualFold(p.Email, email) {
				return profile.Profile{}, newError(ErrDuplicateEmail, fmt.Errorf("email %q already registered", email))
			}
		}
	}

	id, err := u.newID()
	if err != nil {
		return profile.Profile{}, newError(ErrInternal, err)
	}

	var avatar *string
	if in.Avatar != nil && strings.TrimSpace(*in.Avatar) != "" {
		a := strings.TrimSpace(*in.Avatar)
		avatar = &a
	}

	added, err := u.repo.Add(ctx, profile.Profile{
		ID:              id,
		Name:            name,
		Email:           email,
		Avatar:          avatar,
		AboutMe:         strings.TrimSpace(in.AboutMe),
		WorkPreferences: prefs,
	})
	if err != nil {
		return profile.Profile{}, classify(err)
	}
	return added, nil
}

func (u *Profiles) buildPreferences(in []PreferenceInput) ([]profile.WorkPreference, error) {
	ed := preference.NewEditor(u.catalog, taxonomy.EN)
	for i, p := range in {
		row := ed.AddRow()
		ed.SetRowIndustry(row, strings.TrimSpace(p.Industry))
		if wt := strings.TrimSpace(p.WorkType); wt != "" && !ed.SetRowWorkType(row, wt) {
			return nil, newError(ErrInvalidInput, fmt.Errorf("preference %d: work type %q is unknown or repeated", i, wt))
		}
		ed.UpdateDraftField(row, preference.FieldSpecialtyNote, strings.TrimSpace(p.SpecialtyNote))
		ed.UpdateDraftField(row, preference.FieldExperienceNote, strings.TrimSpace(p.ExperienceNote))
	}

	prefs, err := ed.Build()
	if err != nil {
		return nil, classify(err)
	}
	if len(prefs) == 0 {
		return nil, newError(ErrInvalidInput, errors.New("at least one work preference is required"))
	}
	for i := range prefs {
		prefs[i].Rating = profile.DefaultRating
		prefs[i].JobsCompleted = profile.DefaultJobsCompleted
		prefs[i].HourlyRate = profile.DefaultHourlyRate
	}
	return prefs, nil
}

// List returns the cards that match sel, in store order.
func (u *Profiles) List(ctx context.Context, sel filter.Selection, lang taxonomy.Lang) (ListResult, error) {
	start := time.Now()

	all, err := u.repo.List(ctx)
	if err != nil {
		return ListResult{}, newError(ErrInternal, err)
	}
	if sel.Availability != nil {
		if err := sel.Availability.Validate(); err != nil {
			return ListResult{}, classify(err)
		}
	}

	matched := filter.Apply(all, sel)
	items := make([]detail.CardView, 0, len(matched))
	for _, p := range matched {
		items = append(items, u.assembler.Card(p, lang))
	}

	metrics.ProfileFilterDuration.WithLabelValues(strconv.FormatBool(!sel.IsEmpty())).Observe(time.Since(start).Seconds())
	return ListResult{Items: items, Total: len(items)}, nil
}

// Facets lists the industries and work types present on any profile, in
// first-seen order, with their display labels.
func (u *Profiles) Facets(ctx context.Context, lang taxonomy.Lang) ([]FacetOption, error) {
	all, err := u.repo.List(ctx)
	if err != nil {
		return nil, newError(ErrInternal, err)
	}

	f := filter.DeriveFacets(all)
	out := make([]FacetOption, 0, len(f.Industries))
	for _, ind := range f.Industries {
		opt := FacetOption{ID: ind, Label: u.t(lang, taxonomy.IndustryPath(ind))}
		for _, wt := range f.WorkTypesByIndustry[ind] {
			opt.WorkTypes = append(opt.WorkTypes, FacetOption{ID: wt, Label: u.t(lang, taxonomy.WorkTypePath(ind, wt))})
		}
		out = append(out, opt)
	}
	return out, nil
}

func (u *Profiles) Get(ctx context.Context, id string, lang taxonomy.Lang) (detail.DetailView, error) {
	all, err := u.repo.List(ctx)
	if err != nil {
		return detail.DetailView{}, newError(ErrInternal, err)
	}
	p, err := detail.Resolve(all, id)
	if err != nil {
		return detail.DetailView{}, newError(ErrProfileNotFound, err)
	}
	return u.assembler.Detail(p, lang), nil
}

func (u *Profiles) t(lang taxonomy.Lang, key string) string {
	if u.tr == nil {
		return key
	}
	return u.tr.T(lang, key, nil)
}
