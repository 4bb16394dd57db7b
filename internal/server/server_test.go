package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writing_coach/internal/issue"
	"writing_coach/internal/logging"
	"writing_coach/internal/metrics"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupServer(t *testing.T) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	runner := pipeline.New(pipeline.LocalAnalyzers(pipeline.DefaultSettings()), nil, pipeline.WithMetrics(m))
	sessions := session.NewManager(runner, session.WithDebounce(time.Hour), session.WithMetrics(m), session.WithLogger(logging.Discard()))
	t.Cleanup(sessions.Close)
	return New(runner, sessions, WithGatherer(reg), WithLogger(logging.Discard()), WithMaxTextBytes(1000))
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req = httptest.NewRequest(method, path, &buf)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	w := do(t, setupServer(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAnalyze(t *testing.T) {
	s := setupServer(t)
	w := do(t, s, http.MethodPost, "/v1/analyze", TextRequest{Text: "teh cat sat."})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[AnalyzeResponse](t, w)
	assert.Equal(t, int64(1), resp.Version)
	require.NotEmpty(t, resp.Highlights)
	assert.Equal(t, 0, resp.Highlights[0].Start)
	assert.Equal(t, 3, resp.Highlights[0].End)
	assert.GreaterOrEqual(t, resp.Score.Mechanics.Score, 1)
	assert.False(t, resp.Score.NeedsText)
	assert.Empty(t, resp.Unavailable)
}

func TestAnalyzeRejects(t *testing.T) {
	s := setupServer(t)
	w := do(t, s, http.MethodPost, "/v1/analyze", TextRequest{Text: strings.Repeat("a", 1001)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	s := setupServer(t)

	w := do(t, s, http.MethodPost, "/v1/sessions", TextRequest{Text: "teh cat sat.", Flush: true})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[SessionResponse](t, w)
	require.NotEmpty(t, created.ID)
	path := "/v1/sessions/" + created.ID

	var got SessionResponse
	require.Eventually(t, func() bool {
		got = decode[SessionResponse](t, do(t, s, http.MethodGet, path, nil))
		return got.Committed == got.Version && len(got.Highlights) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, got.Scored)

	var target issue.Issue
	for _, is := range got.Issues {
		if is.Source == issue.SourceSpelling {
			target = is
		}
	}
	require.NotEmpty(t, target.ID)

	w = do(t, s, http.MethodPost, path+"/apply", ApplyRequest{IssueID: target.ID, Replacement: "the"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	applied := decode[ApplyResponse](t, w)
	assert.Equal(t, "the cat sat.", applied.Text)
	assert.Equal(t, 3, applied.Cursor)

	w = do(t, s, http.MethodPost, path+"/apply", ApplyRequest{IssueID: target.ID, Replacement: "the"})
	assert.Equal(t, http.StatusNotFound, w.Code, "committed issues were dropped with the edit")

	w = do(t, s, http.MethodPut, path+"/text", TextRequest{Text: "the cat sat. Teh end."})
	assert.Equal(t, http.StatusAccepted, w.Code)

	list := decode[map[string][]session.Info](t, do(t, s, http.MethodGet, "/v1/sessions", nil))
	assert.Len(t, list["sessions"], 1)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, path, nil).Code)
}

func TestApplyStaleIssueConflicts(t *testing.T) {
	s := setupServer(t)
	created := decode[SessionResponse](t, do(t, s, http.MethodPost, "/v1/sessions", TextRequest{Text: "teh cat sat.", Flush: true}))
	path := "/v1/sessions/" + created.ID

	var got SessionResponse
	require.Eventually(t, func() bool {
		got = decode[SessionResponse](t, do(t, s, http.MethodGet, path, nil))
		return got.Committed == got.Version && len(got.Issues) > 0
	}, 2*time.Second, 10*time.Millisecond)
	id := got.Issues[0].ID

	do(t, s, http.MethodPut, path+"/text", TextRequest{Text: "Oh, teh cat sat."})
	w := do(t, s, http.MethodPost, path+"/apply", ApplyRequest{IssueID: id, Replacement: "the"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STALE_ISSUE", decode[ErrorResponse](t, w).Code)

	w = do(t, s, http.MethodPost, path+"/apply", map[string]string{"replacement": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupServer(t)
	do(t, s, http.MethodPost, "/v1/sessions", nil)
	w := do(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "writing_coach_active_sessions 1")
}
