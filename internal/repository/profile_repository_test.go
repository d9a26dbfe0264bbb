package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-hub/internal/domain/profile"
	"freelance-hub/internal/infrastructure/blob"
	"freelance-hub/internal/pkg/logger"
)

type memBlobs struct {
	data      map[string][]byte
	putErr    error
	deleteErr error
	puts      int
}

func newMemBlobs() *memBlobs { return &memBlobs{data: map[string][]byte{}} }

func (m *memBlobs) Get(_ context.Context, name string) ([]byte, error) {
	b, ok := m.data[name]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return b, nil
}

func (m *memBlobs) Put(_ context.Context, name string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.data[name] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobs) Delete(_ context.Context, name string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.data, name)
	return nil
}

func TestProfileStore_SeedsWhenNothingPersisted(t *testing.T) {
	blobs := newMemBlobs()
	s := NewProfileStore(blobs, WithProfileLogger(logger.NewTestLogger(t)))

	got, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
	assert.Zero(t, blobs.puts, "seed is not written until the first mutation")
}

func TestProfileStore_AddAppendsAndPersists(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	s := NewProfileStore(blobs)

	before, err := s.List(ctx)
	require.NoError(t, err)

	added, err := s.Add(ctx, profile.Profile{
		ID:    " 1712345678901 ",
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		WorkPreferences: []profile.WorkPreference{
			{Industry: "tech", WorkType: "software_dev", Rating: 4, JobsCompleted: 2, HourlyRate: 50},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "1712345678901", added.ID)

	after, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	assert.Equal(t, before, after[:len(before)])
	assert.Equal(t, added, after[len(before)])

	// a fresh store over the same blobs sees the persisted list, not the seed
	reopened := NewProfileStore(blobs, WithSeed(func() ([]profile.Profile, error) {
		return nil, errors.New("seed must not be used")
	}))
	require.NoError(t, reopened.Load(ctx))
	got, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, after, got)
}

func TestProfileStore_AddKeepsFieldsAsGiven(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore(newMemBlobs())

	avatar := " https://example.com/a.png "
	in := profile.Profile{
		ID:      " 42 ",
		Name:    "  Ada  ",
		Email:   " ada@example.com ",
		Avatar:  &avatar,
		AboutMe: " likes engines ",
		WorkPreferences: []profile.WorkPreference{
			{Industry: "tech", WorkType: "software_dev", SpecialtyNote: " Go ", Rating: 4.7, JobsCompleted: 12, HourlyRate: 95.5},
		},
	}
	added, err := s.Add(ctx, in)
	require.NoError(t, err)

	want := in.Clone()
	want.ID = "42"
	assert.Equal(t, want, added)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, all[len(all)-1])
}

func TestProfileStore_AddRejectsOutOfRangeStats(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	s := NewProfileStore(blobs)

	_, err := s.Add(ctx, profile.Profile{ID: "9", Name: "x", WorkPreferences: []profile.WorkPreference{{Rating: 6.5}}})
	assert.ErrorIs(t, err, profile.ErrInvalidProfile)
	assert.Zero(t, blobs.puts)

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestProfileStore_AddRejectsEmptyID(t *testing.T) {
	s := NewProfileStore(newMemBlobs())
	_, err := s.Add(context.Background(), profile.Profile{Name: "x"})
	assert.ErrorIs(t, err, profile.ErrInvalidProfile)
}

func TestProfileStore_AddRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	s := NewProfileStore(blobs)
	require.NoError(t, s.Load(ctx))

	blobs.putErr = errors.New("disk full")
	_, err := s.Add(ctx, profile.Profile{ID: "9", Name: "x"})
	require.Error(t, err)

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestProfileStore_CorruptBlobFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	blobs.data[DefaultStoreName] = []byte("{not json")

	s := NewProfileStore(blobs, WithProfileLogger(logger.NewTestLogger(t)))
	require.NoError(t, s.Load(ctx))

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "John Doe", got[0].Name)

	_, err = s.Add(ctx, profile.Profile{ID: "3", Name: "New"})
	require.NoError(t, err)
	assert.Contains(t, string(blobs.data[DefaultStoreName]), `"version":0`)
}

func TestProfileStore_NumericPersistedIDsBecomeStrings(t *testing.T) {
	blobs := newMemBlobs()
	blobs.data["custom"] = []byte(`{"state":{"profiles":[
		{"id":1,"name":"John Doe","email":"john@example.com","avatar":null,"workPreferences":[]},
		{"id":"1712345678901","name":"Ada","email":"ada@example.com","avatar":null,"workPreferences":[]}
	]},"version":0}`)

	s := NewProfileStore(blobs, WithStoreName("custom"))
	got, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "1712345678901", got[1].ID)
}

func TestProfileStore_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore(newMemBlobs())

	got, err := s.List(ctx)
	require.NoError(t, err)
	got[0].Name = "changed"
	got[0].WorkPreferences[0].Industry = "changed"

	again, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", again[0].Name)
	assert.Equal(t, "tech", again[0].WorkPreferences[0].Industry)
}

func TestProfileStore_PruneToDefaults(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	s := NewProfileStore(blobs, WithProfileLogger(logger.NewTestLogger(t)))
	_, err := s.Add(ctx, profile.Profile{ID: "3", Name: "New"})
	require.NoError(t, err)
	require.Contains(t, blobs.data, DefaultStoreName)

	require.NoError(t, s.PruneToDefaults(ctx))
	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotContains(t, blobs.data, DefaultStoreName, "the persisted list is dropped")

	reopened := NewProfileStore(blobs)
	got, err = reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestProfileStore_PruneKeepsListWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	s := NewProfileStore(blobs)
	_, err := s.Add(ctx, profile.Profile{ID: "3", Name: "New"})
	require.NoError(t, err)

	blobs.deleteErr = errors.New("read-only")
	require.Error(t, s.PruneToDefaults(ctx))
	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
