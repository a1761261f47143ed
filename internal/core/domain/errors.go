package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Query expansion, routing, oracle re-ranking and summaries fall back to defaults.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingestion nor search can run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrDocumentUnreadable indicates an uploaded document could not be opened or parsed.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrNoContent indicates a document produced no passages after chunking.
	ErrNoContent = errors.New("document has no usable content")

	// ErrOracleUnavailable indicates a text-completion call failed.
	// Services absorb it and fall back; it never reaches a caller of search.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrStoreUnavailable indicates the passage store or the directory is unreachable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrParse indicates oracle output could not be parsed into the expected structure.
	ErrParse = errors.New("parse error")

	// ErrEmbeddingFailed indicates an embedding request failed part-way.
	// Ingestion aborts and the stored passage set is left untouched.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrRerankUnavailable indicates the external reranker is not configured.
	ErrRerankUnavailable = errors.New("reranker unavailable")
)
