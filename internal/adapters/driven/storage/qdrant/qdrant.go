// Package qdrant provides a PassageStore backed by a Qdrant collection over its REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/storage/vectors"
	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
	"github.com/custodia-labs/tradematch/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.PassageStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:6333"
	DefaultCollection = "passages"
	DefaultTimeout    = 30 * time.Second
)

// errCollectionMissing is returned by do when Qdrant answers 404.
var errCollectionMissing = errors.New("qdrant: collection not found")

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant REST endpoint (default: http://localhost:6333).
	URL string

	// Collection is the collection name (default: passages).
	Collection string

	// APIKey authenticates against Qdrant Cloud. Optional.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store implements driven.PassageStore on a Qdrant collection.
// Each passage is one point whose ID is derived from the passage ID.
type Store struct {
	client     *http.Client
	baseURL    string
	collection string
	apiKey     string

	mu    sync.Mutex
	ready bool
}

// New creates a Qdrant passage store. The collection is created on first write.
func New(cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		collection: cfg.Collection,
		apiKey:     cfg.APIKey,
	}
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload passagePayload `json:"payload"`
}

type passagePayload struct {
	PassageID      string `json:"passage_id"`
	DocumentID     string `json:"document_id"`
	OwnerID        string `json:"owner_id"`
	Role           string `json:"role"`
	Text           string `json:"text"`
	EmbeddingModel string `json:"embedding_model"`
	SourceDocument string `json:"source_document"`
	Position       int    `json:"position"`
	Generation     string `json:"generation"`
}

type condition struct {
	Key   string `json:"key"`
	Match struct {
		Value string `json:"value"`
	} `json:"match"`
}

type filter struct {
	Must    []condition `json:"must,omitempty"`
	MustNot []condition `json:"must_not,omitempty"`
}

func match(key, value string) condition {
	c := condition{Key: key}
	c.Match.Value = value
	return c
}

type scoredPoint struct {
	Score   float64        `json:"score"`
	Payload passagePayload `json:"payload"`
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
}

// PointID maps a passage ID to the UUID Qdrant stores it under.
func PointID(passageID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(passageID)).String()
}

// Replace upserts the new passages tagged with a fresh generation, then deletes
// the owner's points from older generations. Searches in between see both sets.
func (s *Store) Replace(ctx context.Context, ownerID string, passages []domain.Passage) error {
	generation := uuid.NewString()

	if len(passages) > 0 {
		if err := s.ensureCollection(ctx, len(passages[0].Embedding)); err != nil {
			return err
		}

		points := make([]point, len(passages))
		for i, p := range passages {
			points[i] = point{
				ID:     PointID(p.ID),
				Vector: p.Embedding,
				Payload: passagePayload{
					PassageID:      p.ID,
					DocumentID:     p.DocumentID,
					OwnerID:        ownerID,
					Role:           p.Role,
					Text:           p.Text,
					EmbeddingModel: p.EmbeddingModel,
					SourceDocument: p.SourceDocument,
					Position:       p.Position,
					Generation:     generation,
				},
			}
		}
		if err := s.do(ctx, http.MethodPut, s.collectionPath("/points?wait=true"), map[string]any{"points": points}, nil); err != nil {
			return fmt.Errorf("upserting points: %w", err)
		}
	}

	stale := filter{
		Must:    []condition{match("owner_id", ownerID)},
		MustNot: []condition{match("generation", generation)},
	}
	err := s.do(ctx, http.MethodPost, s.collectionPath("/points/delete?wait=true"), map[string]any{"filter": stale}, nil)
	if err != nil && !errors.Is(err, errCollectionMissing) {
		return fmt.Errorf("deleting stale points: %w", err)
	}

	logger.Debug("qdrant: replaced %d passages for owner %s", len(passages), ownerID)
	return nil
}

// Search asks Qdrant for the TopK*2 nearest points and applies the role filter locally.
func (s *Store) Search(ctx context.Context, query domain.VectorQuery) ([]domain.SearchHit, error) {
	if query.TopK <= 0 || len(query.Vector) == 0 {
		return []domain.SearchHit{}, nil
	}

	req := map[string]any{
		"vector":       query.Vector,
		"limit":        query.TopK * 2,
		"with_payload": true,
	}
	if query.NumCandidates > 0 {
		req["params"] = map[string]any{"hnsw_ef": query.NumCandidates}
	}

	var scored []scoredPoint
	err := s.do(ctx, http.MethodPost, s.collectionPath("/points/search"), req, &scored)
	if errors.Is(err, errCollectionMissing) {
		return []domain.SearchHit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	hits := make([]domain.SearchHit, len(scored))
	for i, sp := range scored {
		hits[i] = vectors.HitFromPassage(domain.Passage{
			ID:             sp.Payload.PassageID,
			OwnerID:        sp.Payload.OwnerID,
			Role:           sp.Payload.Role,
			Text:           sp.Payload.Text,
			SourceDocument: sp.Payload.SourceDocument,
		}, sp.Score)
	}
	return vectors.Project(query, hits), nil
}

// CountByOwner returns how many points carry ownerID.
func (s *Store) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	req := map[string]any{
		"filter": filter{Must: []condition{match("owner_id", ownerID)}},
		"exact":  true,
	}
	var res struct {
		Count int `json:"count"`
	}
	err := s.do(ctx, http.MethodPost, s.collectionPath("/points/count"), req, &res)
	if errors.Is(err, errCollectionMissing) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counting points: %w", err)
	}
	return res.Count, nil
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// ensureCollection creates the collection with cosine distance if it does not exist.
func (s *Store) ensureCollection(ctx context.Context, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	err := s.do(ctx, http.MethodGet, s.collectionPath(""), nil, nil)
	if errors.Is(err, errCollectionMissing) {
		create := map[string]any{
			"vectors": map[string]any{"size": dims, "distance": "Cosine"},
		}
		if err := s.do(ctx, http.MethodPut, s.collectionPath(""), create, nil); err != nil {
			return fmt.Errorf("creating collection %s: %w", s.collection, err)
		}
		logger.Info("qdrant: created collection %s (%d dims)", s.collection, dims)
	} else if err != nil {
		return fmt.Errorf("checking collection %s: %w", s.collection, err)
	}

	s.ready = true
	return nil
}

func (s *Store) collectionPath(suffix string) string {
	return "/collections/" + url.PathEscape(s.collection) + suffix
}

// do sends a JSON request and decodes the envelope's result into out.
func (s *Store) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return errCollectionMissing
	}
	if resp.StatusCode != http.StatusOK {
		var env envelope
		if json.Unmarshal(respBody, &env) == nil && len(env.Status) > 0 {
			return fmt.Errorf("qdrant error (status %d): %s", resp.StatusCode, env.Status)
		}
		return fmt.Errorf("qdrant error: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}
