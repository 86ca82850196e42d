package ports

import (
	"context"

	"github.com/karshi-k/agentic-honeypot/internal/domain"
)

// Collector defines the contract for delivering the one-shot finalize
// report to the external intelligence collector.
//
// Delivery is at-most-once by design: the caller invokes Deliver exactly
// once per session, on the finalized false -> true transition, and never
// retries. A failed delivery is recorded in the session's notes and the
// session stays finalized.
type Collector interface {
	Deliver(ctx context.Context, report domain.FinalReport) error
}
