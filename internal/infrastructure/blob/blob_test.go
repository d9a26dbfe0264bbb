package blob

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-hub/internal/database"
	"freelance-hub/internal/pkg/logger"
)

// exerciseStore runs the same contract against every backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "freelancer-store")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "freelancer-store", []byte(`{"v":1}`)))
	require.NoError(t, s.Put(ctx, "freelancer-store", []byte(`{"v":2}`)))

	b, err := s.Get(ctx, "freelancer-store")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(b))

	require.NoError(t, s.Delete(ctx, "freelancer-store"))
	_, err = s.Get(ctx, "freelancer-store")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "never-written"))
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, NewFile(t.TempDir()))
}

func TestFileStore_RejectsPathNames(t *testing.T) {
	f := NewFile(t.TempDir())
	assert.Error(t, f.Put(context.Background(), "../escape", []byte("x")))
	_, err := f.Get(context.Background(), "")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisFromClient(client, logger.NewTestLogger(t))
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)

	require.NoError(t, s.Put(context.Background(), "x", []byte("1")))
	assert.True(t, mr.Exists("blob:x"))
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedis(context.Background(), RedisOptions{Addr: addr}, nil)
	assert.Error(t, err)
}

func TestNewRedis_Connects(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := NewRedis(context.Background(), RedisOptions{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.NoError(t, s.Ping(context.Background()))
}

// postgres against an in-memory database.DB

type memDB struct {
	rows map[string]string
	err  error
}

func (m *memDB) Ping(context.Context) error { return nil }
func (m *memDB) Close() error               { return nil }
func (m *memDB) SQLDB() *sql.DB             { return nil }

func (m *memDB) Exec(_ context.Context, query string, args ...any) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	name := args[0].(string)
	if len(args) == 2 {
		m.rows[name] = args[1].(string)
		return 1, nil
	}
	if _, ok := m.rows[name]; !ok {
		return 0, nil
	}
	delete(m.rows, name)
	return 1, nil
}

func (m *memDB) QueryRow(_ context.Context, _ string, args ...any) database.Row {
	return memRow{db: m, name: args[0].(string)}
}

type memRow struct {
	db   *memDB
	name string
}

func (r memRow) Scan(dest ...any) error {
	if r.db.err != nil {
		return r.db.err
	}
	v, ok := r.db.rows[r.name]
	if !ok {
		return pgx.ErrNoRows
	}
	*(dest[0].(*string)) = v
	return nil
}

func TestPostgresStore(t *testing.T) {
	exerciseStore(t, NewPostgres(&memDB{rows: map[string]string{}}))
}

func TestPostgresStore_PropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	s := NewPostgres(&memDB{rows: map[string]string{}, err: boom})

	_, err := s.Get(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Put(context.Background(), "x", []byte("{}")), boom)
}
