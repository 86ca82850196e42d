package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karshi-k/agentic-honeypot/internal/application"
	"github.com/karshi-k/agentic-honeypot/internal/domain"
	"github.com/karshi-k/agentic-honeypot/internal/domain/detection"
	"github.com/karshi-k/agentic-honeypot/internal/engage"
	"github.com/karshi-k/agentic-honeypot/internal/ports"
)

const testAPIKey = "test-secret"

type nullCollector struct{}

func (nullCollector) Deliver(context.Context, domain.FinalReport) error { return nil }

type fixedGenerator struct{}

func (fixedGenerator) Generate(context.Context, []ports.Turn, int) (string, error) {
	return "Which bank is this?", nil
}

func newTestRouter() (http.Handler, *application.SessionStore) {
	store := application.NewSessionStore()
	pipeline := application.NewPipeline(
		detection.NewScorer(),
		detection.NewExtractor(),
		detection.NewFinalizePolicy(3),
		engage.NewStrategist(fixedGenerator{}, time.Second),
	)
	service := application.NewEngagementService(store, pipeline, nullCollector{}, nil, 6, time.Second)
	return NewRouter(NewHandler(service), testAPIKey), store
}

func postMessage(t *testing.T, router http.Handler, apiKey string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/message", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleMessage_Success(t *testing.T) {
	router, _ := newTestRouter()

	body := `{
		"sessionId": "wire-1",
		"message": {"sender": "scammer", "text": "Your account will be blocked today! Verify via bit.ly/xyz123 or pay to upi@ybl, call 9876543210", "timestamp": 1700000000},
		"conversationHistory": [],
		"metadata": {"channel": "SMS", "language": "English", "locale": "IN"}
	}`
	w := postMessage(t, router, testAPIKey, body)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status       string              `json:"status"`
		Reply        string              `json:"reply"`
		ScamDetected bool                `json:"scamDetected"`
		Intelligence domain.Intelligence `json:"extractedIntelligence"`
		AgentState   struct {
			Confidence        float64 `json:"confidence"`
			MessagesExchanged int     `json:"totalMessagesExchanged"`
			Finalized         bool    `json:"finalized"`
		} `json:"agentState"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Which bank is this?", resp.Reply)
	assert.True(t, resp.ScamDetected)
	assert.Equal(t, []string{"bit.ly/xyz123"}, resp.Intelligence.PhishingLinks)
	assert.Equal(t, []string{"upi@ybl"}, resp.Intelligence.UPIIDs)
	assert.Equal(t, []string{"9876543210"}, resp.Intelligence.PhoneNumbers)
	assert.Equal(t, 1.0, resp.AgentState.Confidence)
	assert.Equal(t, 1, resp.AgentState.MessagesExchanged)
	assert.True(t, resp.AgentState.Finalized)
}

func TestHandleMessage_AuthRejectedBeforeSessionWork(t *testing.T) {
	router, store := newTestRouter()

	body := `{"sessionId": "auth-1", "message": {"sender": "x", "text": "hello"}}`

	tests := []struct {
		name   string
		apiKey string
	}{
		{name: "missing key", apiKey: ""},
		{name: "wrong key", apiKey: "not-the-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postMessage(t, router, tt.apiKey, body)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, 0, store.Len(), "rejected requests must never touch session state")
		})
	}
}

func TestHandleMessage_Validation(t *testing.T) {
	router, _ := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"sessionId": `},
		{name: "missing session id", body: `{"message": {"sender": "x", "text": "hello"}}`},
		{name: "missing message text", body: `{"sessionId": "v-1", "message": {"sender": "x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postMessage(t, router, testAPIKey, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "error", resp["status"])
		})
	}
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRecover_ConvertsPanicToOpaqueFailure(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodPost, "/message", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "error", resp["status"])
	assert.Equal(t, "Something went wrong. Please try again.", resp["reply"])
}
