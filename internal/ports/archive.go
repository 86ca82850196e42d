package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/karshi-k/agentic-honeypot/internal/domain"
)

// ReportRecord is an archived finalize report together with its delivery
// outcome. Archived rows are the audit trail for sessions the process has
// already forgotten.
type ReportRecord struct {
	ID            uuid.UUID
	SessionID     string
	Report        domain.FinalReport
	Delivered     bool
	DeliveryError string
	CreatedAt     time.Time
}

// ReportArchive defines the contract for durably archiving finalize
// reports. The archive is best-effort and optional: an archiving failure
// is logged but never affects the session or the response to the caller.
type ReportArchive interface {
	SaveReport(ctx context.Context, record *ReportRecord) error
	Close() error
}
