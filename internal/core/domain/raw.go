package domain

// RawDocument represents opaque bytes uploaded for a supplier.
// It is the input to a normaliser, before page text is extracted.
type RawDocument struct {
	// URI is the original location or upload name.
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains upload-specific key-value pairs.
	Metadata map[string]any
}
