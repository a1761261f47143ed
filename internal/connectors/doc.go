// Package connectors provides sources of supplier profile documents.
// A connector discovers documents and reports changes; ingestion is left
// to the caller.
package connectors
