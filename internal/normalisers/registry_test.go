package normalisers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

type stubNormaliser struct {
	types    []string
	priority int
	pages    []string
	err      error
	seen     *domain.RawDocument
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.types }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	s.seen = raw
	if s.err != nil {
		return nil, s.err
	}
	return &driven.NormaliseResult{Pages: s.pages}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	low := &stubNormaliser{types: []string{"text/plain"}, priority: 5, pages: []string{"low"}}
	high := &stubNormaliser{types: []string{"text/plain"}, priority: 60, pages: []string{"high"}}
	r := NewRegistry(low, high)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})

	require.NoError(t, err)
	assert.Equal(t, []string{"high"}, result.Pages)
}

func TestRegistry_DetectsMIMEFromExtension(t *testing.T) {
	pdf := &stubNormaliser{types: []string{"application/pdf"}, priority: 50}
	r := NewRegistry(pdf)

	_, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "Profile.PDF", Content: []byte("x")})

	require.NoError(t, err)
	require.NotNil(t, pdf.seen)
	assert.Equal(t, "application/pdf", pdf.seen.MIMEType)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(&stubNormaliser{types: []string{"application/pdf"}, priority: 50})

	_, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "photo.png", MIMEType: "image/png"})

	assert.ErrorIs(t, err, domain.ErrDocumentUnreadable)
}

func TestRegistry_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(&stubNormaliser{types: []string{"text/plain"}, priority: 5, err: boom})

	_, err := r.Normalise(context.Background(), &domain.RawDocument{MIMEType: "text/plain"})

	assert.ErrorIs(t, err, boom)
}

func TestRegistry_NilDocument(t *testing.T) {
	_, err := NewRegistry().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDefaultRegistry_SupportedMIMETypes(t *testing.T) {
	types := NewDefaultRegistry().SupportedMIMETypes()

	assert.Contains(t, types, "application/pdf")
	assert.Contains(t, types, "text/plain")
	assert.Contains(t, types, "text/markdown")
	assert.IsIncreasing(t, types)
}

func TestDefaultRegistry_PlainTextPages(t *testing.T) {
	result, err := NewDefaultRegistry().Normalise(context.Background(), &domain.RawDocument{
		URI:     "profile.txt",
		Content: []byte("Page one text.\fPage two text."),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Page one text.", "Page two text."}, result.Pages)
}

func TestDetectMIMEType(t *testing.T) {
	assert.Equal(t, "text/markdown", DetectMIMEType("a/b/profile.md", nil))
	assert.Equal(t, "text/plain", DetectMIMEType("notes", []byte("hello there")))
	assert.Equal(t, "application/pdf", DetectMIMEType("upload", []byte("%PDF-1.7\n")))
}
