// Package domain defines the core business entities for Merkuze.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A retrievable unit of hospital knowledge
//   - IndexedEntry: A chunk vector stored in a collection
//   - CollectionHandle: The physical collection bound to a logical name
//   - IngestionReport: The outcome of an ingestion run
//   - Answer: The outcome of one chat request
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
