// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The retrieval core lives here: IngestionPipeline writes chunks,
// RetrievalEngine filters query matches and AssembleContext turns them
// into generation input. Services are pure Go with no external dependencies.
package services
