// Package observability records ingestion events and exposes Prometheus
// metrics for the HTTP API and the ingestion pipeline.
package observability

import (
	"sync"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Ensure IngestLog implements the interface.
var _ driven.IngestLog = (*IngestLog)(nil)

// DefaultLogCapacity is how many events the log keeps.
const DefaultLogCapacity = 100

// IngestLog is a fixed-size ring of the newest ingestion events. Each event
// is also written to the logger: failures at warn level, the rest at debug.
type IngestLog struct {
	mu     sync.Mutex
	events []domain.IngestEvent
	next   int
	full   bool
}

// NewIngestLog creates a log holding up to capacity events.
// A capacity of zero or less uses DefaultLogCapacity.
func NewIngestLog(capacity int) *IngestLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &IngestLog{events: make([]domain.IngestEvent, capacity)}
}

// Observe records an event, evicting the oldest when full.
func (l *IngestLog) Observe(event domain.IngestEvent) {
	switch event.Status {
	case domain.StatusFailed, domain.StatusError:
		logger.Warn("[%s] %s %s: %s", event.Filename, event.Step, event.Status, event.Details)
	default:
		logger.Debug("[%s] %s %s: %s", event.Filename, event.Step, event.Status, event.Details)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[l.next] = event
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
}

// Recent returns up to n of the newest events, oldest first.
func (l *IngestLog) Recent(n int) []domain.IngestEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = len(l.events)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]domain.IngestEvent, n)
	start := l.next - n
	for i := range out {
		out[i] = l.events[(start+i+len(l.events))%len(l.events)]
	}
	return out
}
