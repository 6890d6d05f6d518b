package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careline-ai/careline/internal/orchestrator"
	"github.com/careline-ai/careline/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	orch := orchestrator.New(orchestrator.Config{Logger: logger})

	return New(&Config{
		Logger:          logger,
		PipelineHandler: orchestrator.NewHandler(orch, logger),
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestAnalyzeEndpoint(t *testing.T) {
	r := newTestRouter(t)

	payload, err := json.Marshal(orchestrator.AnalyzeRequest{
		UserID:    "U1",
		Utterance: "媽媽最近常常忘記關瓦斯，還會重複問同樣的問題",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Format string `json:"format"`
		Module string `json:"module"`
		Text   string `json:"text"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "M1", resp.Module)
	assert.NotEmpty(t, resp.Text)
}

func TestAnalyzeRejectsMissingUser(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte(`{"utterance":"x"}`)))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPostbackEndpoint(t *testing.T) {
	r := newTestRouter(t)

	payload := []byte(`{"user_id":"U1","data":"view=unknown"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/postback", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Format string `json:"format"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, orchestrator.FormatCard, resp.Format)
}

func TestUnknownRouteIs404(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
