package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freelance-hub/internal/domain/preference"
	"freelance-hub/internal/domain/taxonomy"
	"freelance-hub/internal/infrastructure/locale"
	"freelance-hub/internal/metrics"
	"freelance-hub/internal/pkg/logger"
)

const (
	OpCreate = "create"
	OpEdit   = "edit"
	OpDelete = "delete"
)

// TaxonomyStore is the persisted catalogue the admin operations mutate.
type TaxonomyStore interface {
	Snapshot() *taxonomy.Snapshot
	UpsertIndustry(ctx context.Context, key string, names taxonomy.Translations, isEdit bool) (*taxonomy.Snapshot, error)
	UpsertWorkType(ctx context.Context, industry, key string, names taxonomy.Translations, isEdit bool) (*taxonomy.Snapshot, error)
	DeleteIndustry(ctx context.Context, key string) (*taxonomy.Snapshot, error)
	DeleteWorkType(ctx context.Context, industry, key string) (*taxonomy.Snapshot, error)
}

type TaxonomyNotifier interface {
	TaxonomyUpdated(op, kind, key, industry string, revision int64)
}

type UpdateInput struct {
	Type         string
	Key          string
	Industry     string
	Name         string
	Translations map[string]string
	IsEdit       bool
}

type DeleteInput struct {
	Type     string
	Key      string
	Industry string
}

// Options is the taxonomy as the sign-up form and filter panel render it.
type Options struct {
	Revision   int64                          `json:"revision"`
	Industries []taxonomy.Industry            `json:"industries"`
	WorkTypes  map[string][]taxonomy.WorkType `json:"workTypes"`
}

type TaxonomyUsecase interface {
	Update(ctx context.Context, in UpdateInput) error
	Delete(ctx context.Context, in DeleteInput) error
	Options(lang taxonomy.Lang) Options
	WorkTypeOptions(lang taxonomy.Lang, industry string) []taxonomy.WorkType
	Document(lang taxonomy.Lang) (taxonomy.Document, error)
}

type Taxonomy struct {
	store    TaxonomyStore
	notifier TaxonomyNotifier
	logger   logger.Logger
}

func NewTaxonomyUsecase(store TaxonomyStore, notifier TaxonomyNotifier, l logger.Logger) *Taxonomy {
	return &Taxonomy{store: store, notifier: notifier, logger: logger.OrNop(l)}
}

// Update adds or renames an industry or work type in every locale file.
func (u *Taxonomy) Update(ctx context.Context, in UpdateInput) error {
	kind, key, industry, err := normalizeTarget(in.Type, in.Key, in.Industry, in.Name)
	if err != nil {
		return err
	}

	names := u.names(in)
	op := OpCreate
	if in.IsEdit {
		op = OpEdit
	}

	var snap *taxonomy.Snapshot
	switch kind {
	case taxonomy.KindIndustry:
		snap, err = u.store.UpsertIndustry(ctx, key, names, in.IsEdit)
	default:
		snap, err = u.store.UpsertWorkType(ctx, industry, key, names, in.IsEdit)
	}
	if err != nil {
		return u.failed(op, kind, key, industry, err)
	}

	u.succeeded(op, kind, key, industry, snap, true)
	return nil
}

// Delete removes an entry. Deleting something that is already gone
// succeeds without touching the files.
func (u *Taxonomy) Delete(ctx context.Context, in DeleteInput) error {
	kind, key, industry, err := normalizeTarget(in.Type, in.Key, in.Industry, "")
	if err != nil {
		return err
	}

	before := u.store.Snapshot().Revision()

	var snap *taxonomy.Snapshot
	switch kind {
	case taxonomy.KindIndustry:
		snap, err = u.store.DeleteIndustry(ctx, key)
	default:
		snap, err = u.store.DeleteWorkType(ctx, industry, key)
	}
	if err != nil {
		return u.failed(OpDelete, kind, key, industry, err)
	}

	u.succeeded(OpDelete, kind, key, industry, snap, snap.Revision() != before)
	return nil
}

func (u *Taxonomy) Options(lang taxonomy.Lang) Options {
	snap := u.store.Snapshot()
	industries := snap.IndustryOptions(lang)
	workTypes := make(map[string][]taxonomy.WorkType, len(industries))
	for _, ind := range industries {
		workTypes[ind.ID] = snap.WorkTypeOptions(lang, ind.ID)
	}
	return Options{Revision: snap.Revision(), Industries: industries, WorkTypes: workTypes}
}

// WorkTypeOptions is the cascading selector for one industry. An unknown
// industry yields an empty list.
func (u *Taxonomy) WorkTypeOptions(lang taxonomy.Lang, industry string) []taxonomy.WorkType {
	return preference.WorkTypeOptions(strings.TrimSpace(industry), u.store.Snapshot(), lang)
}

// Document is the whole locale document the UI translation layer loads.
func (u *Taxonomy) Document(lang taxonomy.Lang) (taxonomy.Document, error) {
	doc, ok := u.store.Snapshot().Document(lang)
	if !ok {
		return nil, newError(ErrNotFound, fmt.Errorf("no locale document for %q", lang))
	}
	return doc, nil
}

// names fills every language the store knows, falling back to the plain
// name field sent by the older single-name admin form.
func (u *Taxonomy) names(in UpdateInput) taxonomy.Translations {
	fallback := strings.TrimSpace(in.Name)
	out := taxonomy.Translations{}
	for _, l := range u.store.Snapshot().Languages() {
		v := strings.TrimSpace(in.Translations[string(l)])
		if v == "" {
			v = fallback
		}
		out[l] = v
	}
	return out
}

func (u *Taxonomy) failed(op string, kind taxonomy.Kind, key, industry string, err error) error {
	metrics.TaxonomyMutations.WithLabelValues(string(kind), op, metrics.ResultError).Inc()

	fields := logger.Fields{"op": op, "kind": string(kind), "key": key, "industry": industry}
	if errors.Is(err, locale.ErrPartialWrite) {
		metrics.TaxonomyPartialWrites.Inc()
		u.logger.WithError(err).Error("taxonomy files left inconsistent", fields)
	} else {
		u.logger.WithError(err).Warn("taxonomy mutation rejected", fields)
	}
	return classify(err)
}

func (u *Taxonomy) succeeded(op string, kind taxonomy.Kind, key, industry string, snap *taxonomy.Snapshot, changed bool) {
	metrics.TaxonomyMutations.WithLabelValues(string(kind), op, metrics.ResultOK).Inc()
	metrics.TaxonomyRevision.Set(float64(snap.Revision()))

	u.logger.Info("taxonomy mutation applied", logger.Fields{
		"op":       op,
		"kind":     string(kind),
		"key":      key,
		"industry": industry,
		"revision": snap.Revision(),
		"changed":  changed,
	})

	if changed && u.notifier != nil {
		u.notifier.TaxonomyUpdated(op, string(kind), key, industry, snap.Revision())
	}
}

// normalizeTarget resolves the entry an admin request addresses. The key
// falls back to one derived from name.
func normalizeTarget(typ, key, industry, name string) (taxonomy.Kind, string, string, error) {
	kind := taxonomy.Kind(strings.TrimSpace(typ))
	if !kind.Valid() {
		return "", "", "", newError(ErrInvalidInput, fmt.Errorf("type must be %q or %q", taxonomy.KindIndustry, taxonomy.KindWorkType))
	}

	k := taxonomy.KeyFromName(key)
	if k == "" {
		k = taxonomy.KeyFromName(name)
	}
	if !taxonomy.ValidKey(k) {
		return "", "", "", newError(ErrInvalidInput, fmt.Errorf("%w: %q", taxonomy.ErrInvalidKey, key))
	}

	ind := ""
	if kind == taxonomy.KindWorkType {
		ind = taxonomy.KeyFromName(industry)
		if !taxonomy.ValidKey(ind) {
			return "", "", "", newError(ErrInvalidInput, errors.New("industry is required for work types"))
		}
	}
	return kind, k, ind, nil
}
