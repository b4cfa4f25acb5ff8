// Package escalation turns copilot answers that refer the employee to HR into
// tickets. It runs after the graph and never affects the answer itself.
package escalation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrcopilot/server/internal/agent/graph/retrievers"
	"github.com/hrcopilot/server/internal/agent/model"
	"github.com/hrcopilot/server/internal/metrics"
	logx "github.com/hrcopilot/server/pkg/logger"
)

type Priority string

const (
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Markers are the phrases that flag a response as needing HR follow-up.
// Matching is case-insensitive.
var Markers = []string{
	"contact hr",
	"contact the hr",
	"reach out to hr",
	"hr department",
	"hr representative",
	"escalate",
}

// Sink receives escalation tickets.
type Sink interface {
	CreateTicket(ctx context.Context, description string, priority Priority) (string, error)
}

// DetectMarker reports whether response contains any escalation marker.
func DetectMarker(response string) bool {
	lower := strings.ToLower(response)
	for _, m := range Markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// PriorityFor is high when no retriever produced usable text, medium otherwise.
func PriorityFor(retrieved []model.Retrieved) Priority {
	for _, r := range retrieved {
		if strings.TrimSpace(r.Text) != "" && !retrievers.IsSentinel(r.Text) {
			return PriorityMedium
		}
	}
	return PriorityHigh
}

// Describe builds the ticket description for a completed run.
func Describe(state *model.PipelineState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Employee question: %s", state.Category, state.Query)
	if ec := state.EmployeeContext; ec != nil {
		fmt.Fprintf(&b, "\nDepartment: %s, Role: %s, Tenure: %s", ec.Department, ec.Role, ec.Tenure)
	}
	fmt.Fprintf(&b, "\nCopilot answer: %s", state.FinalResponse)
	return b.String()
}

// Escalator creates at most one ticket per completed run.
type Escalator struct {
	sink    Sink
	timeout time.Duration
}

// NewEscalator returns an Escalator bounded by timeout per ticket. A nil sink disables escalation.
func NewEscalator(sink Sink, timeout time.Duration) *Escalator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Escalator{sink: sink, timeout: timeout}
}

// Process creates a ticket when the final response carries a marker and returns
// its id. Sink failures are logged and yield an empty id; they are never retried.
func (e *Escalator) Process(ctx context.Context, state *model.PipelineState) string {
	if e == nil || e.sink == nil || state == nil || !DetectMarker(state.FinalResponse) {
		return ""
	}

	priority := PriorityFor(state.Retrieved)
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	id, err := e.sink.CreateTicket(ctx, Describe(state), priority)
	if err != nil {
		logx.Error().Err(err).
			Str("category", state.Category.String()).
			Str("priority", string(priority)).
			Msg("Failed to create escalation ticket")
		return ""
	}

	metrics.TicketsCreated.WithLabelValues(string(priority)).Inc()
	logx.Info().
		Str("ticket_id", id).
		Str("priority", string(priority)).
		Msg("Escalation ticket created")
	return id
}
