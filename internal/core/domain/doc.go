// Package domain defines the core business entities for Jarvis.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded slice of one document's extracted text
//   - VectorRecord: A chunk embedded and keyed for the vector index
//   - SearchMatch: A scored hit returned by a vector query
//   - RetrievalResult: Filtered matches plus the backend outcome
//   - IngestEvent: One step of the document ingestion trail
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
