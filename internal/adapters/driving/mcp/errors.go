// Package mcp provides an MCP (Model Context Protocol) server adapter for tradematch.
// It lets AI assistants search suppliers, ingest profiles and read the role catalogue.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// errIngestUnavailable is returned by ingest_profile when no ingest service is wired.
var errIngestUnavailable = errors.New("mcp: ingestion is not configured")

// errDirectoryUnavailable is returned by directory tools and resources when no directory is wired.
var errDirectoryUnavailable = errors.New("mcp: directory is not configured")
