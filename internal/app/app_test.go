package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-hub/internal/config"
	"freelance-hub/internal/domain/taxonomy"
	"freelance-hub/internal/pkg/logger"
	"freelance-hub/internal/usecase"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	return config.Config{
		App:     config.AppConfig{AppName: "freelance-hub", HTTPPort: "0"},
		Log:     config.LogConfig{Level: "debug", Format: "console"},
		Locales: config.LocalesConfig{Dir: filepath.Join(dir, "locales"), Languages: []string{"en", "nl"}, ReloadSpec: "off"},
		Store:   config.StoreConfig{Backend: config.StoreBackendFile, Name: "freelancer-store", DataDir: filepath.Join(dir, "data")},
	}
}

func TestApp_EndToEnd(t *testing.T) {
	c, err := NewContainer(testConfig(t), logger.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	a := New(c)

	get := func(path string) (int, string) {
		resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(b)
	}

	status, _ := get("/health")
	assert.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest(http.MethodPost, "/api/translations/update",
		strings.NewReader(`{"type":"industry","key":"construction","translations":{"en":"Construction","nl":"Bouw"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.Fiber.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	assert.Equal(t, "Bouw", c.Locales.Snapshot().Industries(taxonomy.NL)["construction"])

	status, body := get("/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "taxonomy_mutations_total")
}

func TestListenAddr(t *testing.T) {
	addr, err := ListenAddr(" 8080 ")
	require.NoError(t, err)
	assert.Equal(t, ":8080", addr)

	addr, err = ListenAddr(":9000")
	require.NoError(t, err)
	assert.Equal(t, ":9000", addr)

	_, err = ListenAddr("")
	assert.Error(t, err)
}

func TestLanguages(t *testing.T) {
	assert.Equal(t, taxonomy.DefaultLanguages, Languages(nil))
	assert.Equal(t, []taxonomy.Lang{"nl"}, Languages([]string{"", "nl"}))
}

func TestOpenProfiles_PruneResetsPersistedList(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	c, err := NewContainer(cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	_, err = c.ProfileUC.SignUp(ctx, usecase.SignUpInput{
		Name:        "Ada",
		Email:       "ada@example.com",
		Preferences: []usecase.PreferenceInput{{Industry: "tech", WorkType: "software_dev"}},
	})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	profiles, release, err := OpenProfiles(ctx, cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer func() { _ = release() }()

	all, err := profiles.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	require.NoError(t, profiles.PruneToDefaults(ctx))

	reopened, release2, err := OpenProfiles(ctx, cfg, nil)
	require.NoError(t, err)
	defer func() { _ = release2() }()
	all, err = reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
