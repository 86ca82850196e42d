// Package application orchestrates per-message processing: it resolves the
// session, runs the pipeline under the session's lock, merges results back,
// and triggers the one-shot finalize report.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/karshi-k/agentic-honeypot/internal/domain"
	"github.com/karshi-k/agentic-honeypot/internal/ports"
)

// DefaultHistoryLimit bounds how many trailing history turns are kept as
// generation context.
const DefaultHistoryLimit = 6

// DefaultReportTimeout bounds report delivery to the collector.
const DefaultReportTimeout = 5 * time.Second

const finalizeNote = "Detected scam intent; extracted artifacts from conversation."

// MessageRequest is one inbound message to process.
type MessageRequest struct {
	SessionID string
	Sender    string
	Text      string
	History   []domain.HistoryTurn
}

// MessageResult is the outcome of processing one message: the engagement
// reply plus a snapshot of the session after this message's effects.
type MessageResult struct {
	Reply             string
	ScamDetected      bool
	Confidence        float64
	Intelligence      domain.Intelligence
	MessagesExchanged int
	Finalized         bool
}

// EngagementService runs the honeypot's message-processing core.
type EngagementService struct {
	store         *SessionStore
	pipeline      *Pipeline
	collector     ports.Collector
	archive       ports.ReportArchive // optional, nil disables archiving
	historyLimit  int
	reportTimeout time.Duration
	now           func() time.Time
}

// NewEngagementService wires the service. archive may be nil.
func NewEngagementService(
	store *SessionStore,
	pipeline *Pipeline,
	collector ports.Collector,
	archive ports.ReportArchive,
	historyLimit int,
	reportTimeout time.Duration,
) *EngagementService {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if reportTimeout <= 0 {
		reportTimeout = DefaultReportTimeout
	}
	return &EngagementService{
		store:         store,
		pipeline:      pipeline,
		collector:     collector,
		archive:       archive,
		historyLimit:  historyLimit,
		reportTimeout: reportTimeout,
		now:           time.Now,
	}
}

// HandleMessage processes one inbound message end to end under the
// session's lock.
//
// The pipeline works on a transient state whose evidence sets are deep
// copies of the session's. Merge-back is all-or-nothing: the session is
// mutated only after the pipeline has completed, so a panic mid-pipeline
// leaves the session exactly as the previous message left it.
func (s *EngagementService) HandleMessage(ctx context.Context, req MessageRequest) (*MessageResult, error) {
	var result *MessageResult

	err := s.store.WithSession(req.SessionID, func(session *domain.Session) error {
		state := &domain.PipelineState{
			SessionID: req.SessionID,
			Text:      req.Text,
			Sender:    req.Sender,
			History:   tailTurns(req.History, s.historyLimit),
			Evidence:  session.Evidence.Clone(),
		}

		s.pipeline.Run(ctx, state)

		session.Evidence.Merge(state.Evidence)
		session.MessageCount++
		session.UpdatedAt = s.now()

		// Finalize is a one-way latch: evaluated fresh on every message,
		// acted on at most once per session.
		if state.ShouldFinalize && !session.Finalized {
			session.Finalized = true
			session.AppendNote(finalizeNote)
			s.deliverReport(ctx, session)
		}

		result = &MessageResult{
			Reply:             state.Reply,
			ScamDetected:      state.ScamDetected,
			Confidence:        state.Confidence,
			Intelligence:      session.Evidence.Snapshot(),
			MessagesExchanged: session.MessageCount,
			Finalized:         session.Finalized,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// deliverReport sends the finalize payload to the collector, synchronously
// inside the session's critical section. Delivery is at-most-once: a
// failure is appended to the session's notes and never retried, and the
// finalized latch stays set.
func (s *EngagementService) deliverReport(ctx context.Context, session *domain.Session) {
	report := domain.FinalReport{
		SessionID:         session.ID,
		ScamDetected:      true,
		MessagesExchanged: session.MessageCount,
		Intelligence:      session.Evidence.Snapshot(),
		AgentNotes:        session.Notes,
	}

	rctx, cancel := context.WithTimeout(ctx, s.reportTimeout)
	defer cancel()

	deliveryErr := s.collector.Deliver(rctx, report)
	if deliveryErr != nil {
		session.AppendNote(fmt.Sprintf("collector delivery failed: %v", deliveryErr))
		slog.Error("finalize report delivery failed", "session_id", session.ID, "error", deliveryErr)
	} else {
		slog.Info("finalize report delivered", "session_id", session.ID, "messages", session.MessageCount)
	}

	s.archiveReport(ctx, session.ID, report, deliveryErr)
}

// archiveReport best-effort persists the report and its delivery outcome.
func (s *EngagementService) archiveReport(ctx context.Context, sessionID string, report domain.FinalReport, deliveryErr error) {
	if s.archive == nil {
		return
	}

	record := &ports.ReportRecord{
		ID:        uuid.New(),
		SessionID: sessionID,
		Report:    report,
		Delivered: deliveryErr == nil,
		CreatedAt: s.now(),
	}
	if deliveryErr != nil {
		record.DeliveryError = deliveryErr.Error()
	}

	if err := s.archive.SaveReport(ctx, record); err != nil {
		slog.Error("failed to archive finalize report", "session_id", sessionID, "error", err)
	}
}

// tailTurns returns the most recent limit turns.
func tailTurns(history []domain.HistoryTurn, limit int) []domain.HistoryTurn {
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
