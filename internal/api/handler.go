// Package api provides the HTTP surface of the honeypot service.
package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/karshi-k/agentic-honeypot/internal/application"
	"github.com/karshi-k/agentic-honeypot/internal/domain"
)

// incomingMessage is one chat message on the wire.
type incomingMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// incomingEvent is the ingestion contract for POST /message. Metadata is
// informational only and not consumed by the core.
type incomingEvent struct {
	SessionID           string            `json:"sessionId"`
	Message             incomingMessage   `json:"message"`
	ConversationHistory []incomingMessage `json:"conversationHistory"`
	Metadata            *eventMetadata    `json:"metadata"`
}

type eventMetadata struct {
	Channel  string `json:"channel"`
	Language string `json:"language"`
	Locale   string `json:"locale"`
}

// messageResponse is the success payload: the engagement reply plus a
// sorted snapshot of the session's evidence after this message.
type messageResponse struct {
	Status       string              `json:"status"`
	Reply        string              `json:"reply"`
	ScamDetected bool                `json:"scamDetected"`
	Intelligence domain.Intelligence `json:"extractedIntelligence"`
	AgentState   agentState          `json:"agentState"`
}

type agentState struct {
	Confidence        float64 `json:"confidence"`
	MessagesExchanged int     `json:"totalMessagesExchanged"`
	Finalized         bool    `json:"finalized"`
}

// Handler serves the honeypot HTTP endpoints.
type Handler struct {
	service *application.EngagementService
}

// NewHandler creates a Handler backed by the engagement service.
func NewHandler(service *application.EngagementService) *Handler {
	return &Handler{service: service}
}

// HandleMessage processes one inbound message: POST /message.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var event incomingEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		Error(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(event.SessionID) == "" {
		Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if event.Message.Text == "" {
		Error(w, http.StatusBadRequest, "message.text is required")
		return
	}

	history := make([]domain.HistoryTurn, 0, len(event.ConversationHistory))
	for _, m := range event.ConversationHistory {
		history = append(history, domain.HistoryTurn{Sender: m.Sender, Text: m.Text})
	}

	result, err := h.service.HandleMessage(r.Context(), application.MessageRequest{
		SessionID: event.SessionID,
		Sender:    event.Message.Sender,
		Text:      event.Message.Text,
		History:   history,
	})
	if err != nil {
		Error(w, http.StatusInternalServerError, "processing failed")
		return
	}

	JSON(w, http.StatusOK, messageResponse{
		Status:       "success",
		Reply:        result.Reply,
		ScamDetected: result.ScamDetected,
		Intelligence: result.Intelligence,
		AgentState: agentState{
			Confidence:        roundConfidence(result.Confidence),
			MessagesExchanged: result.MessagesExchanged,
			Finalized:         result.Finalized,
		},
	})
}

// HandleHealth reports liveness: GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error","message":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"status": "error", "message": message})
}

// roundConfidence rounds to 3 decimals for the response payload.
func roundConfidence(c float64) float64 {
	return math.Round(c*1000) / 1000
}
