// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PassageStore: Passage persistence and nearest-neighbour search
//   - Directory: Relational supplier records (owners, roles, availability)
//   - EmbeddingService: Generates vector embeddings for passages and queries
//   - NormaliserRegistry: Extracts page text from uploaded documents
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: The text-completion oracle. Without it, expansion, decomposition,
//     routing, role detection and summaries fall back to fixed defaults.
//   - Reranker: External reranking. Without it, the external strategy keeps input order.
//   - PromptStore: Custom prompt templates. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
