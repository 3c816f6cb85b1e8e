package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/api"
	"github.com/vytor/wordflash/internal/catalog"
	"github.com/vytor/wordflash/internal/deck"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/session"
	"github.com/vytor/wordflash/internal/testutil"
	"github.com/vytor/wordflash/internal/testutil/mocks"
)

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

func newTestServer(t *testing.T) (http.Handler, *mocks.MockDeckLoader) {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	loader := new(mocks.MockDeckLoader)
	svc := services.NewStudyService(
		catalog.Default(),
		sqlite.NewPreferenceRepository(db),
		&jobs.InlineQueue{Loader: loader},
		services.StudyConfig{
			Mode: models.ModeLinear,
			// Re-advances never fire; handlers are checked on immediate state.
			SessionOptions: []session.Option{session.WithScheduler(func(time.Duration, func()) session.Timer {
				return idleTimer{}
			})},
		},
	)
	t.Cleanup(svc.Shutdown)

	srv := &api.Server{StudyService: svc, Pinger: db}
	return srv.Routes(), loader
}

func words(n int) []*models.Card {
	out := make([]*models.Card, n)
	for i := range out {
		out[i] = &models.Card{ID: i, SideA: "q" + string(rune('0'+i)), SideB: "a" + string(rune('0'+i))}
	}
	return out
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func startSession(t *testing.T, h http.Handler, loader *mocks.MockDeckLoader, datasetID string, n int) models.View {
	t.Helper()
	ds, ok := catalog.Default().Find(datasetID)
	require.True(t, ok)
	loader.On("Load", mock.Anything, ds).Return(words(n), nil).Once()

	rec := do(t, h, http.MethodPost, "/api/sessions", `{"dataset_id":"`+datasetID+`"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	view := decode[models.View](t, rec)
	assert.Equal(t, "/api/sessions/"+view.SessionID, rec.Header().Get("Location"))
	return view
}

func TestHealthAndReady(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDatasets_SelectionFollowsExplicitChoice(t *testing.T) {
	h, loader := newTestServer(t)

	list := decode[models.DatasetList](t, do(t, h, http.MethodGet, "/api/datasets", ""))
	assert.Equal(t, "all", list.Selected)
	assert.Len(t, list.Datasets, 3)

	startSession(t, h, loader, "unit2", 2)

	rec := do(t, h, http.MethodGet, "/api/datasets", "")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	list = decode[models.DatasetList](t, rec)
	assert.Equal(t, "unit2", list.Selected)
}

func TestSessionLifecycle(t *testing.T) {
	h, loader := newTestServer(t)
	view := startSession(t, h, loader, "unit1", 4)
	base := "/api/sessions/" + view.SessionID
	assert.Equal(t, "Card 1 of 4", view.Label)

	current := decode[models.View](t, do(t, h, http.MethodGet, "/api/sessions/current", ""))
	assert.Equal(t, view.SessionID, current.SessionID)

	flipped := decode[models.View](t, do(t, h, http.MethodPost, base+"/flip", ""))
	assert.True(t, flipped.Flipped)

	next := decode[models.View](t, do(t, h, http.MethodPost, base+"/advance", ""))
	assert.Equal(t, "Card 2 of 4", next.Label)
	assert.False(t, next.Flipped)

	back := decode[models.View](t, do(t, h, http.MethodPost, base+"/advance", `{"direction":"backward"}`))
	assert.Equal(t, "Card 1 of 4", back.Label)

	graded := decode[models.View](t, do(t, h, http.MethodPost, base+"/grade", `{"status":"known"}`))
	require.NotNil(t, graded.Feedback)
	assert.Equal(t, 1, graded.Stats.Known)

	stats := decode[models.Stats](t, do(t, h, http.MethodGet, base+"/stats", ""))
	assert.Equal(t, models.Stats{Known: 1, Unknown: 3, Total: 4, SuccessRate: 25}, stats)

	filtered := decode[models.View](t, do(t, h, http.MethodPost, base+"/filter", `{"filter":"unknown"}`))
	assert.Equal(t, 3, filtered.Total)
	assert.Equal(t, models.FilterUnknown, filtered.Filter)

	key := decode[models.View](t, do(t, h, http.MethodPost, base+"/keys/ArrowRight", ""))
	assert.Equal(t, "Card 2 of 3", key.Label)

	var deckOut struct {
		Cards []models.Card `json:"cards"`
	}
	rec := do(t, h, http.MethodGet, base+"/cards", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deckOut))
	assert.Len(t, deckOut.Cards, 4)

	rec = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReloadFailureReportsThroughLoadStatus(t *testing.T) {
	h, loader := newTestServer(t)
	view := startSession(t, h, loader, "unit1", 3)
	base := "/api/sessions/" + view.SessionID

	ds, _ := catalog.Default().Find("unit2")
	loader.On("Load", mock.Anything, ds).Return(nil, &deck.FetchError{Source: "unit2.json", StatusCode: 404})

	rec := do(t, h, http.MethodPost, base+"/reload", `{"dataset_id":"unit2"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	reloaded := decode[models.View](t, rec)
	assert.Equal(t, session.FailureFront, reloaded.Front)
	assert.Contains(t, reloaded.Error, "404")

	rec = do(t, h, http.MethodGet, base+"/load", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "FETCH_FAILED", decode[errorResponse](t, rec).Error.Code)

	after := decode[models.View](t, do(t, h, http.MethodGet, base, ""))
	assert.Equal(t, "unit1", after.DatasetID)
	assert.Equal(t, 3, after.Total)
}

func TestErrorsRenderAsJSON(t *testing.T) {
	h, loader := newTestServer(t)
	view := startSession(t, h, loader, "all", 2)
	base := "/api/sessions/" + view.SessionID

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown session", http.MethodGet, "/api/sessions/nope", "", http.StatusNotFound, "NOT_FOUND"},
		{"unknown dataset", http.MethodPost, "/api/sessions", `{"dataset_id":"unit9"}`, http.StatusNotFound, "NOT_FOUND"},
		{"bad direction", http.MethodPost, base + "/advance", `{"direction":"up"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad status", http.MethodPost, base + "/grade", `{"status":"great"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"bad filter", http.MethodPost, base + "/filter", `{"filter":"starred"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unbound key", http.MethodPost, base + "/keys/KeyQ", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"malformed body", http.MethodPost, base + "/grade", `{"status":`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown field", http.MethodPost, base + "/grade", `{"grade":"known"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"no route", http.MethodGet, "/api/nothing", "", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.code, decode[errorResponse](t, rec).Error.Code)
		})
	}
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return assert.AnError }

func TestReady_DatabaseDown(t *testing.T) {
	srv := &api.Server{Pinger: failingPinger{}}
	rec := do(t, srv.Routes(), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
