package normalisers

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/normalisers/docx"
	"github.com/custodia-labs/tradematch/internal/normalisers/markdown"
	"github.com/custodia-labs/tradematch/internal/normalisers/pdf"
	"github.com/custodia-labs/tradematch/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// extensionTypes maps file extensions to MIME types for uploads without one.
var extensionTypes = map[string]string{
	".pdf":      "application/pdf",
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Registry dispatches documents to the highest-priority normaliser for their MIME type.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// NewDefaultRegistry returns a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	return NewRegistry(pdf.New(), docx.New(), markdown.New(), plaintext.New())
}

// Register adds a normaliser, keeping the list ordered by priority.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, normaliser)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise extracts page text with the best matching normaliser.
// A missing MIME type is detected from the URI extension, then from content.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := raw.MIMEType
	if mimeType == "" {
		mimeType = DetectMIMEType(raw.URI, raw.Content)
	}

	n := r.find(mimeType)
	if n == nil {
		return nil, fmt.Errorf("%w: unsupported type %q", domain.ErrDocumentUnreadable, mimeType)
	}

	doc := *raw
	doc.MIMEType = mimeType
	return n.Normalise(ctx, &doc)
}

// SupportedMIMETypes returns all MIME types that can be normalised.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Registry) find(mimeType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if t == mimeType {
				return n
			}
		}
	}
	return nil
}

// DetectMIMEType guesses a MIME type from a file name, falling back to content sniffing.
// Parameters such as charset are dropped.
func DetectMIMEType(uri string, content []byte) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(uri))]; ok {
		return t
	}
	sniffed := http.DetectContentType(content)
	if t, _, err := mime.ParseMediaType(sniffed); err == nil {
		return t
	}
	return sniffed
}

// IsSupportedFile reports whether path has an extension a built-in normaliser reads.
func IsSupportedFile(path string) bool {
	_, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}
