package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-hub/internal/delivery/http/middleware"
	"freelance-hub/internal/i18n"
	"freelance-hub/internal/infrastructure/blob"
	"freelance-hub/internal/infrastructure/locale"
	"freelance-hub/internal/pkg/logger"
	"freelance-hub/internal/repository"
	"freelance-hub/internal/usecase"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.NewTestLogger(t)

	store, err := locale.Open(context.Background(), t.TempDir(), nil, locale.WithLogger(log))
	require.NoError(t, err)
	tr := i18n.New(store, store.Languages())
	profiles := repository.NewProfileStore(blob.NewFile(t.TempDir()), repository.WithProfileLogger(log))

	taxUC := usecase.NewTaxonomyUsecase(store, nil, log)
	profUC := usecase.NewProfileUsecase(profiles, store, tr, nil, log)

	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(log).Middleware())

	translations := NewTranslationHandler(taxUC, log)
	NewHealthHandler(nil).RegisterRoutes(app)
	translations.RegisterLocaleRoutes(app)
	api := app.Group("/api")
	translations.RegisterRoutes(api)
	v1 := api.Group("/v1")
	NewTaxonomyHandler(taxUC, tr).RegisterRoutes(v1)
	NewProfileHandler(profUC, tr).RegisterRoutes(v1)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestTranslationUpdate_Contract(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/api/translations/update",
		`{"type":"industry","key":"construction","translations":{"en":"Construction","nl":"Bouw"},"isEdit":false}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"success": true}, body)

	status, body = do(t, app, http.MethodPost, "/api/translations/update",
		`{"type":"industry","key":"construction","translations":{"en":"Construction","nl":"Bouw"}}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.NotEmpty(t, body["error"])

	status, body = do(t, app, http.MethodPost, "/api/translations/update",
		`{"type":"workType","industry":"mining","key":"drilling","name":"Drilling"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])

	status, body = do(t, app, http.MethodPost, "/api/translations/update", `{"type":"planet","key":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])

	status, _ = do(t, app, http.MethodPost, "/api/translations/update", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, app, http.MethodGet, "/locales/nl/translation.json", "")
	require.Equal(t, http.StatusOK, status)
	root := body["freelancerSignUp"].(map[string]any)
	assert.Equal(t, "Bouw", root["industries"].(map[string]any)["construction"])
	assert.Equal(t, map[string]any{}, root["workTypes"].(map[string]any)["construction"])
}

func TestTranslationDelete_Contract(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/api/translations/delete", `{"type":"workType","industry":"tech","key":"devops"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, _ = do(t, app, http.MethodPost, "/api/translations/delete", `{"type":"workType","industry":"tech","key":"devops"}`)
	assert.Equal(t, http.StatusOK, status, "deleting twice is not an error")

	status, body = do(t, app, http.MethodPost, "/api/translations/delete", `{"type":"industry"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestTaxonomyRoutes(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/api/v1/taxonomy?lang=nl", "")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["industries"])

	status, body = do(t, app, http.MethodGet, "/api/v1/taxonomy/unknown/work-types", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])

	status, body = do(t, app, http.MethodGet, "/api/v1/taxonomy/tech/work-types", "")
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["data"])
}

func TestProfileList_Filters(t *testing.T) {
	app := newTestApp(t)

	total := func(target string) float64 {
		status, body := do(t, app, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, status, target)
		return body["data"].(map[string]any)["total"].(float64)
	}

	assert.Equal(t, 2.0, total("/api/v1/profiles"))
	assert.Equal(t, 1.0, total("/api/v1/profiles?industry=finance"))
	assert.Equal(t, 2.0, total("/api/v1/profiles?industry=finance,tech"))
	assert.Equal(t, 2.0, total("/api/v1/profiles?workType=software_dev&workType=data_science"))
	assert.Equal(t, 0.0, total("/api/v1/profiles?industry=finance&workType=software_dev"))
	assert.Equal(t, 2.0, total("/api/v1/profiles?availability=week"))
	assert.Equal(t, 2.0, total("/api/v1/profiles?availability=range&from=2026-01-01&to=2026-01-05"))

	status, _ := do(t, app, http.MethodGet, "/api/v1/profiles?availability=day", "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, app, http.MethodGet, "/api/v1/profiles?availability=range&from=2026-02-01&to=2026-01-01", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProfileDetail_NotFoundIsLocalized(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodGet, "/api/v1/profiles/2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Jane Smith", body["data"].(map[string]any)["name"])

	status, body = do(t, app, http.MethodGet, "/api/v1/profiles/999", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Profile not found", body["message"])

	status, body = do(t, app, http.MethodGet, "/api/v1/profiles/999?lang=nl", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Profiel niet gevonden", body["message"])
}

func TestProfileSignUp(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/api/v1/profiles",
		`{"name":"Ada","email":"ada@example.com","workPreferences":[{"industry":"tech","workType":"devops"}]}`)
	require.Equal(t, http.StatusCreated, status)
	id := body["data"].(map[string]any)["id"].(string)
	assert.NotEmpty(t, id)

	status, _ = do(t, app, http.MethodGet, "/api/v1/profiles/"+id, "")
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, app, http.MethodGet, "/api/v1/profiles/facets", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, _ = do(t, app, http.MethodPost, "/api/v1/profiles", `{"name":"Ada","email":"ada@example.com","workPreferences":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/profiles",
		`{"name":"Ada","email":"ada@example.com","workPreferences":[{"industry":"tech","workType":"accounting"}]}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, body := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])

	failing := fiber.New()
	NewHealthHandler(map[string]Check{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}).RegisterRoutes(failing)
	status, body = do(t, failing, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body["data"].(map[string]any)["status"])
}
