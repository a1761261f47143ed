package driving

import (
	"context"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

// IngestService turns supplier profile documents into searchable passages.
type IngestService interface {
	// Ingest replaces the owner's passages with those extracted from the request.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)

	// IngestFile reads path and ingests it for ownerID. An empty role means detect.
	IngestFile(ctx context.Context, ownerID, path, role string) (*domain.IngestResult, error)
}
