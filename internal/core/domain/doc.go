// Package domain defines the core business entities for tradematch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Passage: A sentence-aligned span of a supplier profile plus its embedding
//   - Role: A profession used to filter passages and route queries
//   - SearchHit: One vector-search result for one query
//   - RankedCandidate: A supplier after scoring against relational attributes
//   - Owner: The relational record for a supplier
//   - Summary: The structured recommendation shown to a customer
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
