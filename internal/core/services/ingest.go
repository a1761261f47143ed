package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/core/ports/driving"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns an uploaded supplier profile into stored passages.
type IngestService struct {
	registry driven.NormaliserRegistry
	chunker  driven.Chunker
	embedder *BatchEmbedder
	store    driven.PassageStore
	roles    *RoleDetector
	locks    *keyedMutex
}

// NewIngestService creates an ingest service. roles may be nil, in which case
// passages are labelled with the caller's role or "unknown".
func NewIngestService(
	registry driven.NormaliserRegistry,
	chunker driven.Chunker,
	embedder *BatchEmbedder,
	store driven.PassageStore,
	roles *RoleDetector,
) *IngestService {
	return &IngestService{
		registry: registry,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		roles:    roles,
		locks:    newKeyedMutex(),
	}
}

// Ingest replaces the owner's passages with those of the uploaded document.
// A failure at any step leaves the previously stored passages untouched.
// Ingestions for one owner run one at a time; different owners run in parallel.
//
//nolint:gocyclo // Pipeline with necessary sequential steps
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: document is empty", domain.ErrDocumentUnreadable)
	}
	if s.registry == nil || s.chunker == nil || s.store == nil {
		return nil, fmt.Errorf("%w: ingestion is not configured", domain.ErrStoreUnavailable)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	start := time.Now()
	result := &domain.IngestResult{
		OwnerID:    ownerID,
		DocumentID: uuid.New().String(),
	}

	// 1. Read pages
	normalised, err := s.registry.Normalise(ctx, &domain.RawDocument{
		URI:     req.DocumentName,
		Content: req.Data,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentUnreadable) {
			err = fmt.Errorf("%w: %w", domain.ErrDocumentUnreadable, err)
		}
		return nil, fmt.Errorf("read %s: %w", req.DocumentName, err)
	}

	// 2. Chunk
	chunks, err := s.chunker.ChunkPages(ctx, normalised.Pages)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", req.DocumentName, err)
	}
	if len(chunks) == 0 {
		logger.Warn("no passages extracted from %s for %s", req.DocumentName, ownerID)
		return result, domain.ErrNoContent
	}

	// 3. Roles
	roles := s.resolveRoles(ctx, req.Role, chunks)
	result.Roles = roles
	result.PrimaryRole = domain.RoleUnknown
	if len(roles) > 0 {
		result.PrimaryRole = roles[0]
	}

	// 4. Embed
	vectors, err := s.embedder.EmbedAll(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", req.DocumentName, err)
	}

	// 5. Directory roles, recorded before passages change
	if s.roles != nil && len(roles) > 0 {
		if err := s.roles.Record(ctx, ownerID, roles); err != nil {
			return nil, err
		}
	}

	// 6. Replace
	passages := make([]domain.Passage, len(chunks))
	for i, text := range chunks {
		passages[i] = domain.Passage{
			ID:             domain.PassageID(ownerID, i),
			DocumentID:     result.DocumentID,
			OwnerID:        ownerID,
			Role:           result.PrimaryRole,
			Text:           text,
			Embedding:      vectors[i],
			EmbeddingModel: s.embedder.ModelName(),
			SourceDocument: req.DocumentName,
			Position:       i,
		}
	}
	if err := s.store.Replace(ctx, ownerID, passages); err != nil {
		return nil, wrapStoreErr("replace passages", err)
	}
	result.ChunkCount = len(passages)

	logger.Event("IngestedSupplierPDF", map[string]any{
		"owner_id": ownerID,
		"document": req.DocumentName,
		"chunks":   result.ChunkCount,
		"roles":    roles,
		"duration": time.Since(start).Round(time.Millisecond),
	})
	return result, nil
}

// IngestFile reads path and ingests it for ownerID.
func (s *IngestService) IngestFile(ctx context.Context, ownerID, path, role string) (*domain.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDocumentUnreadable, err)
	}
	return s.Ingest(ctx, domain.IngestRequest{
		OwnerID:      ownerID,
		DocumentName: filepath.Base(path),
		Data:         data,
		Role:         role,
	})
}

// resolveRoles prefers an explicit role over detection.
func (s *IngestService) resolveRoles(ctx context.Context, explicit string, chunks []string) []string {
	if role := domain.NormaliseRoleName(explicit); role != "" && role != domain.RoleAll {
		return []string{role}
	}
	if s.roles == nil {
		return nil
	}
	return s.roles.Detect(ctx, chunks)
}

// keyedMutex serialises work per key. Entries are dropped once no holder remains.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
