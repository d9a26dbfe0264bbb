package migration

import (
	"context"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-hub/internal/pkg/logger"
)

func TestLoad_EmbeddedBlobSchema(t *testing.T) {
	migs, err := Runner{}.Load()
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, int64(1), migs[0].Version)
	assert.Equal(t, "create_kv_blobs", migs[0].Name)
	assert.Equal(t, []string{"kv_blobs"}, migs[0].Tables)
	assert.Len(t, migs[0].Checksum, 64)
}

func TestLoad_OrderAndValidation(t *testing.T) {
	src := fstest.MapFS{
		"V2__second.sql": {Data: []byte("CREATE TABLE IF NOT EXISTS b (id INT);")},
		"V1__first.sql":  {Data: []byte(`create table "a" (id INT);`)},
		"README.md":      {Data: []byte("ignored")},
	}
	migs, err := Runner{Source: src}.Load()
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, "first", migs[0].Name)
	assert.Equal(t, []string{"a"}, migs[0].Tables)
	assert.Equal(t, []string{"b"}, migs[1].Tables)

	src["V2__again.sql"] = &fstest.MapFile{Data: []byte("SELECT 3;")}
	_, err = Runner{Source: src}.Load()
	assert.ErrorContains(t, err, "duplicate version")

	_, err = Runner{Source: fstest.MapFS{"V1__empty.sql": {Data: []byte("  \n")}}}.Load()
	assert.ErrorContains(t, err, "is empty")
}

func TestNew_DirOverridesEmbedded(t *testing.T) {
	migs, err := New(t.TempDir(), nil).Load()
	require.NoError(t, err)
	assert.Empty(t, migs)

	migs, err = New(" ", nil).Load()
	require.NoError(t, err)
	assert.NotEmpty(t, migs)
}

func expectPrelude(mock sqlmock.Sqlmock, applied *sqlmock.Rows) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_lock($1)")).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version, checksum FROM schema_migrations").WillReturnRows(applied)
}

func TestRun_AppliesPendingAndReportsTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectPrelude(mock, sqlmock.NewRows([]string{"version", "checksum"}))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_blobs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(int64(1), "create_kv_blobs", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))

	res, err := Runner{Logger: logger.NewTestLogger(t)}.Run(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, res.Applied)
	assert.Equal(t, int64(1), res.Current)
	assert.Equal(t, []string{"kv_blobs"}, res.Tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_SkipsAppliedAndDetectsEdits(t *testing.T) {
	migs, err := Runner{}.Load()
	require.NoError(t, err)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectPrelude(mock, sqlmock.NewRows([]string{"version", "checksum"}).AddRow(int64(1), migs[0].Checksum))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))

	res, err := Runner{}.Run(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, res.Applied)
	assert.Equal(t, int64(1), res.Current)
	assert.NoError(t, mock.ExpectationsWereMet())

	db2, mock2, err := sqlmock.New()
	require.NoError(t, err)
	defer db2.Close()

	expectPrelude(mock2, sqlmock.NewRows([]string{"version", "checksum"}).AddRow(int64(1), "stale"))
	mock2.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = Runner{}.Run(context.Background(), db2)
	assert.ErrorContains(t, err, "changed after it was applied")
	assert.NoError(t, mock2.ExpectationsWereMet())
}

func TestRun_NilDB(t *testing.T) {
	_, err := Runner{}.Run(context.Background(), nil)
	assert.Error(t, err)
}
