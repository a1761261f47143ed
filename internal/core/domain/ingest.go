package domain

// IngestRequest is a supplier profile upload.
type IngestRequest struct {
	// OwnerID is the supplier whose passages are replaced.
	OwnerID string

	// DocumentName is the uploaded file name, kept as the passage source.
	DocumentName string

	// Data is the raw document bytes.
	Data []byte

	// Role, when set, overrides role detection.
	Role string
}

// IngestResult reports what an ingestion stored.
type IngestResult struct {
	// OwnerID is the supplier that was ingested.
	OwnerID string

	// DocumentID identifies this ingestion.
	DocumentID string

	// Roles are the roles linked to the owner, primary first.
	Roles []string

	// PrimaryRole labels every stored passage.
	PrimaryRole string

	// ChunkCount is the number of passages stored.
	ChunkCount int
}
