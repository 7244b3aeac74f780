package driven

import "github.com/custodia-labs/jarvis/internal/core/domain"

// IngestObserver receives one event per ingestion step.
// Observe must not block; it is called inline on the ingestion path.
type IngestObserver interface {
	Observe(event domain.IngestEvent)
}

// IngestLog is an observer that retains recent events.
type IngestLog interface {
	IngestObserver

	// Recent returns up to n of the newest events, oldest first.
	Recent(n int) []domain.IngestEvent
}

// ObserverFunc adapts a function to IngestObserver.
type ObserverFunc func(event domain.IngestEvent)

// Observe calls f(event).
func (f ObserverFunc) Observe(event domain.IngestEvent) {
	f(event)
}

// MultiObserver fans events out to several observers. Nil entries are skipped.
type MultiObserver []IngestObserver

// Observe forwards the event to every observer.
func (m MultiObserver) Observe(event domain.IngestEvent) {
	for _, o := range m {
		if o != nil {
			o.Observe(event)
		}
	}
}
