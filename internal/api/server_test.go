package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service/servicetest"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	env     *servicetest.Env
	handler http.Handler
}

type envelope struct {
	Data     json.RawMessage `json:"data"`
	Errors   []string        `json:"errors"`
	Metadata Metadata        `json:"metadata"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	env := servicetest.NewEnv(t)
	reg := prometheus.NewRegistry()

	srv := NewServer(Deps{
		Sessions:     env.SessionSvc,
		Menu:         env.MenuSvc,
		Votes:        env.VoteSvc,
		Profiles:     env.ProfileSvc,
		Finalization: env.FinalSvc,
		Reports:      env.ReportSvc,
		Feedback:     env.FeedbackSvc,
		Events:       env.EventSvc,
		Settings:     env.SettingsSvc,
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		Version:      "v1",
		Logger:       env.Logger,
	})
	return &testServer{env: env, handler: srv.Handler()}
}

func (ts *testServer) do(t *testing.T, method, path string, as *model.Profile, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		req.Header.Set(profileHeader, as.ID.String())
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/status", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var st Status
	env := decode(t, rec, &st)
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, "v1", env.Metadata.Version)
	assert.NotEmpty(t, env.Metadata.RequestID)
	assert.Empty(t, env.Errors)
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(requestIDHeader, id)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(requestIDHeader))
	env := decode(t, rec, nil)
	assert.Equal(t, id, env.Metadata.RequestID)
}

func TestIdentify(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing header", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/profiles/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown profile", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/profiles/me", &model.Profile{ID: uuid.New()}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("known profile", func(t *testing.T) {
		student := ts.env.Student(t, model.MessVeg)
		rec := ts.do(t, http.MethodGet, "/api/profiles/me", student, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var p model.Profile
		decode(t, rec, &p)
		assert.Equal(t, student.ID, p.ID)
		assert.Equal(t, model.RoleStudent, p.Role)
	})
}

func TestRoleGuard(t *testing.T) {
	ts := newTestServer(t)
	student := ts.env.Student(t, model.MessVeg)

	rec := ts.do(t, http.MethodPost, "/api/sessions", student, createSessionRequest{
		Title: "Week", StartDate: "2026-10-19", EndDate: "2026-10-25",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec, nil)
	assert.NotEmpty(t, env.Errors)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/api/status", nil, nil)

	rec := ts.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
