package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/tradematch/internal/adapters/driven/storage/vectors"
	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

// Ensure PassageStore implements the interface.
var _ driven.PassageStore = (*PassageStore)(nil)

// PassageStore implements driven.PassageStore on the passages table.
type PassageStore struct {
	db *sql.DB
}

// Replace deletes the owner's passages and inserts the new set in one transaction.
func (s *PassageStore) Replace(ctx context.Context, ownerID string, passages []domain.Passage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM passages WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("deleting passages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, document_id, owner_id, role, text, embedding, embedding_model, source_document, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			owner_id = excluded.owner_id,
			role = excluded.role,
			text = excluded.text,
			embedding = excluded.embedding,
			embedding_model = excluded.embedding_model,
			source_document = excluded.source_document,
			position = excluded.position
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range passages {
		if _, err := stmt.ExecContext(ctx, p.ID, p.DocumentID, ownerID, p.Role, p.Text,
			vectors.Encode(p.Embedding), p.EmbeddingModel, p.SourceDocument, p.Position); err != nil {
			return fmt.Errorf("saving passage %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scans passages with the query's dimension and ranks them by cosine similarity.
func (s *PassageStore) Search(ctx context.Context, query domain.VectorQuery) ([]domain.SearchHit, error) {
	if query.TopK <= 0 || len(query.Vector) == 0 {
		return []domain.SearchHit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, owner_id, role, text, embedding, embedding_model, source_document, position
		FROM passages WHERE length(embedding) = ?
	`, len(query.Vector)*4)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var passages []domain.Passage
	for rows.Next() {
		var p domain.Passage
		var blob []byte
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.OwnerID, &p.Role, &p.Text, &blob,
			&p.EmbeddingModel, &p.SourceDocument, &p.Position); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		p.Embedding = vectors.Decode(blob)
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	return vectors.Nearest(query, passages), nil
}

// CountByOwner returns how many passages are stored for ownerID.
func (s *PassageStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passages WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the connection.
func (s *PassageStore) Close() error {
	return nil
}
