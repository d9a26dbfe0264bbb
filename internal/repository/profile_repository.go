package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"freelance-hub/internal/domain/profile"
	"freelance-hub/internal/infrastructure/blob"
	"freelance-hub/internal/pkg/logger"
)

const DefaultStoreName = "freelancer-store"

type ProfileRepository interface {
	List(ctx context.Context) ([]profile.Profile, error)
	Add(ctx context.Context, p profile.Profile) (profile.Profile, error)
	PruneToDefaults(ctx context.Context) error
}

// persistedState is the blob layout: the profile list plus a format
// version.
type persistedState struct {
	State struct {
		Profiles []profile.Record `json:"profiles"`
	} `json:"state"`
	Version int `json:"version"`
}

const persistedVersion = 0

type ProfileStore struct {
	blobs  blob.Store
	name   string
	seed   func() ([]profile.Profile, error)
	logger logger.Logger

	mu       sync.RWMutex
	profiles []profile.Profile
	loaded   bool
}

type ProfileStoreOption func(*ProfileStore)

func WithStoreName(name string) ProfileStoreOption {
	return func(s *ProfileStore) {
		if name != "" {
			s.name = name
		}
	}
}

// WithSeed replaces the built-in seed profiles.
func WithSeed(seed func() ([]profile.Profile, error)) ProfileStoreOption {
	return func(s *ProfileStore) {
		if seed != nil {
			s.seed = seed
		}
	}
}

func WithProfileLogger(l logger.Logger) ProfileStoreOption {
	return func(s *ProfileStore) {
		s.logger = logger.OrNop(l)
	}
}

func NewProfileStore(blobs blob.Store, opts ...ProfileStoreOption) *ProfileStore {
	s := &ProfileStore{
		blobs:  blobs,
		name:   DefaultStoreName,
		seed:   profile.Seed,
		logger: logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load hydrates the store. A persisted blob wins over the seed; an
// unreadable blob falls back to the seed and is overwritten by the next
// write.
func (s *ProfileStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *ProfileStore) loadLocked(ctx context.Context) error {
	raw, err := s.blobs.Get(ctx, s.name)
	switch {
	case errors.Is(err, blob.ErrNotFound):
		return s.useSeedLocked("no persisted state")
	case err != nil:
		return fmt.Errorf("load %s: %w", s.name, err)
	}

	profiles, err := decodeState(raw)
	if err != nil {
		s.logger.WithError(err).Warn("persisted profiles unreadable, falling back to seed", logger.Fields{"store": s.name})
		return s.useSeedLocked("corrupt persisted state")
	}

	s.profiles = profiles
	s.loaded = true
	s.logger.Info("profiles loaded", logger.Fields{"store": s.name, "count": len(profiles)})
	return nil
}

func (s *ProfileStore) useSeedLocked(reason string) error {
	seed, err := s.seed()
	if err != nil {
		return fmt.Errorf("seed profiles: %w", err)
	}
	s.profiles = seed
	s.loaded = true
	s.logger.Info("profiles seeded", logger.Fields{"store": s.name, "count": len(seed), "reason": reason})
	return nil
}

func (s *ProfileStore) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

// List returns a copy of every profile in insertion order.
func (s *ProfileStore) List(ctx context.Context) ([]profile.Profile, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]profile.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	return out, nil
}

// Add appends p with its id in string form and every other field as given,
// then writes the whole list through to the blob store. If the write fails
// the append is undone.
func (s *ProfileStore) Add(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	normalized, err := p.Normalize()
	if err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %v", profile.ErrInvalidProfile, err)
	}
	if err := normalized.Validate(); err != nil {
		return profile.Profile{}, err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return profile.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.profiles
	next := make([]profile.Profile, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, normalized)

	if err := s.persistLocked(ctx, next); err != nil {
		return profile.Profile{}, err
	}
	s.profiles = next
	return normalized.Clone(), nil
}

// PruneToDefaults drops the persisted list and goes back to the seed
// profiles. Like a fresh store, the seed is not written until the next Add.
func (s *ProfileStore) PruneToDefaults(ctx context.Context) error {
	seed, err := s.seed()
	if err != nil {
		return fmt.Errorf("seed profiles: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Delete(ctx, s.name); err != nil {
		return fmt.Errorf("prune %s: %w", s.name, err)
	}
	s.profiles = seed
	s.loaded = true
	s.logger.Info("profiles pruned to defaults", logger.Fields{"store": s.name, "count": len(seed)})
	return nil
}

func (s *ProfileStore) persistLocked(ctx context.Context, profiles []profile.Profile) error {
	raw, err := encodeState(profiles)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, s.name, raw); err != nil {
		return fmt.Errorf("persist %s: %w", s.name, err)
	}
	return nil
}

func encodeState(profiles []profile.Profile) ([]byte, error) {
	var st persistedState
	st.Version = persistedVersion
	st.State.Profiles = make([]profile.Record, 0, len(profiles))
	for _, p := range profiles {
		st.State.Profiles = append(st.State.Profiles, profile.Record{
			ID:              p.ID,
			Name:            p.Name,
			Email:           p.Email,
			Avatar:          p.Avatar,
			AboutMe:         p.AboutMe,
			WorkPreferences: p.WorkPreferences,
		})
	}
	b, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode profiles: %w", err)
	}
	return b, nil
}

func decodeState(raw []byte) ([]profile.Profile, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var st persistedState
	if err := dec.Decode(&st); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profile.FromRecords(st.State.Profiles)
}
