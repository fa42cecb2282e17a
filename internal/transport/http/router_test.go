package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"interview-session-service/internal/domain"
)

func TestCandidateEndpoints(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	_, err := service.StartSession(ctx, domain.Identity{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "555-1234"})
	require.NoError(t, err)

	router := NewRouter(service, []string{"http://localhost:3000"}, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/candidates?search=ADA", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Candidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	id := list[0].ID

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/candidates?search=grace", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/candidates/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var c domain.Candidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Len(t, c.Questions, 6)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/candidates/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, domain.PhaseInProgress, snap.Phase)
	assert.Equal(t, id, snap.Session.ActiveCandidateID)
}

func TestHealthAndMetrics(t *testing.T) {
	router := NewRouter(newTestService(t), nil, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "interview_sessions_started_total")
}
