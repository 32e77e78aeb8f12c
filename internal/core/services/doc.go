// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The main flows are ingestion (chunks to embeddings to the vector
// index) and answering (question to retrieval to generation). Both
// share one VectorIndex, which owns collection naming and migration.
package services
