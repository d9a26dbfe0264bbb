package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-hub/internal/domain/taxonomy"
	"freelance-hub/internal/pkg/logger"
)

type fakeStore struct {
	changed bool
	err     error
	rev     int64
	calls   int
}

func (f *fakeStore) Reload(context.Context) (bool, error) {
	f.calls++
	if f.changed {
		f.rev++
	}
	return f.changed, f.err
}

func (f *fakeStore) Snapshot() *taxonomy.Snapshot {
	return taxonomy.NewSnapshot(taxonomy.DefaultLanguages, nil, f.rev)
}

type fakeNotifier struct{ revisions []int64 }

func (f *fakeNotifier) TaxonomyReloaded(rev int64) { f.revisions = append(f.revisions, rev) }

func TestRunOnce(t *testing.T) {
	store := &fakeStore{rev: 3}
	n := &fakeNotifier{}
	r := NewReloader(store, n, "@every 1m", logger.NewTestLogger(t))

	assert.False(t, r.RunOnce(context.Background()))
	assert.Empty(t, n.revisions)

	store.changed = true
	assert.True(t, r.RunOnce(context.Background()))
	assert.Equal(t, []int64{4}, n.revisions)

	store.err = errors.New("decode failed")
	store.changed = false
	assert.False(t, r.RunOnce(context.Background()))
	assert.Len(t, n.revisions, 1)
}

func TestStart_Disabled(t *testing.T) {
	for _, spec := range []string{"", "off", "OFF"} {
		r := NewReloader(&fakeStore{}, nil, spec, nil)
		assert.False(t, r.Enabled())
		require.NoError(t, r.Start(context.Background()))
		r.Stop()
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	r := NewReloader(&fakeStore{}, nil, "every now and then", nil)
	assert.Error(t, r.Start(context.Background()))
}

func TestStart_Valid(t *testing.T) {
	r := NewReloader(&fakeStore{}, nil, "@every 1h", logger.NewTestLogger(t))
	require.NoError(t, r.Start(context.Background()))
	r.Stop()
}
