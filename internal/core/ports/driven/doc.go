// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Turns text into vectors (local pooled or remote)
//   - VectorStore: Collection-oriented vector storage and cosine search
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates for answer generation
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Generation. Without it every chat answer is the fallback message.
//   - ErrorReporter: Out-of-band failure reporting.
//   - DocumentRepository: Admin document persistence.
//   - IngestionHistory: Past ingestion run summaries.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
