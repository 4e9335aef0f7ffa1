package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fwojciec/doclens"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ doclens.ChunkService = (*ChunkService)(nil)

// ChunkService implements doclens.ChunkService using SQLite. Vectors are
// stored as blobs and ranked by cosine distance in Go; text is ranked by
// the FTS5 bm25 function.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

const chunkColumns = "c.id, c.domain, c.url, c.title, c.content, c.chunk_index, c.embedding, c.metadata, c.created_at"

// CreateChunks stores chunks in one transaction. Every embedding must have
// the store's dimension.
func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*doclens.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	dim, err := s.dimension(ctx, tx)
	if err != nil {
		return err
	}
	if dim == 0 {
		dim = len(chunks[0].Embedding)
	}

	now := time.Now().UTC()
	for _, c := range chunks {
		if len(c.Embedding) != dim {
			return doclens.Errorf(doclens.EINVALID, "embedding dimension %d does not match store dimension %d", len(c.Embedding), dim)
		}
		if c.Metadata.ContentHash == "" {
			c.Metadata.ContentHash = hashContent(c.Content)
		}
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode chunk metadata: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (domain, url, title, content, chunk_index, embedding, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.Domain, c.URL, c.Title, c.Content, c.ChunkIndex, encodeVector(c.Embedding), string(meta), formatTime(now))
		if isConstraint(err, sqlite3.CONSTRAINT_UNIQUE) {
			return doclens.Errorf(doclens.ECONFLICT, "chunk %d of %s already exists", c.ChunkIndex, c.URL)
		}
		if err != nil {
			return err
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		c.CreatedAt = now
	}

	return tx.Commit()
}

// dimension returns the configured dimension, or the dimension of any
// stored vector, or zero for an empty unconfigured store.
func (s *ChunkService) dimension(ctx context.Context, tx *sql.Tx) (int, error) {
	if s.db.dimensions > 0 {
		return s.db.dimensions, nil
	}
	var n int
	err := tx.QueryRowContext(ctx, "SELECT length(embedding) / 4 FROM chunks LIMIT 1").Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}

// DeleteChunksByDomain removes all chunks for a domain.
func (s *ChunkService) DeleteChunksByDomain(ctx context.Context, domain string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE domain = ?", domain)
	return err
}

// CountChunks returns the number of chunks stored for a domain.
func (s *ChunkService) CountChunks(ctx context.Context, domain string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE domain = ?", domain).Scan(&n)
	return n, err
}

// SemanticSearch ranks the domain's chunks by cosine distance to vector.
// Equal distances are ordered by ID.
func (s *ChunkService) SemanticSearch(ctx context.Context, domain string, vector []float32, limit int) ([]doclens.ScoredChunk, error) {
	if limit <= 0 {
		return []doclens.ScoredChunk{}, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+chunkColumns+" FROM chunks c WHERE c.domain = ?", domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scored []doclens.ScoredChunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		if len(c.Embedding) != len(vector) {
			return nil, doclens.Errorf(doclens.EINVALID, "query dimension %d does not match store dimension %d", len(vector), len(c.Embedding))
		}
		scored = append(scored, doclens.ScoredChunk{
			Chunk:    c,
			Distance: cosineDistance(vector, c.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	if scored == nil {
		scored = []doclens.ScoredChunk{}
	}
	return scored, nil
}

// LexicalSearch ranks the domain's chunks by bm25 against an OR of the
// keywords.
func (s *ChunkService) LexicalSearch(ctx context.Context, domain string, keywords []string, limit int) ([]doclens.ScoredChunk, error) {
	match := ftsQuery(keywords)
	if match == "" || limit <= 0 {
		return []doclens.ScoredChunk{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`, bm25(chunks_fts) AS rank
		FROM chunks_fts
		JOIN chunks c ON c.id = chunks_fts.rowid
		WHERE chunks_fts MATCH ? AND c.domain = ?
		ORDER BY rank ASC, c.id ASC
		LIMIT ?
	`, match, domain, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scored := []doclens.ScoredChunk{}
	for rows.Next() {
		var rank float64
		c, err := scanChunk(rows, &rank)
		if err != nil {
			return nil, err
		}
		scored = append(scored, doclens.ScoredChunk{Chunk: c, Rank: rank})
	}
	return scored, rows.Err()
}

// scanChunk scans the chunkColumns of a row followed by any extra destinations.
func scanChunk(rows *sql.Rows, extra ...any) (*doclens.Chunk, error) {
	var c doclens.Chunk
	var embedding []byte
	var meta, createdAt string

	dest := append([]any{&c.ID, &c.Domain, &c.URL, &c.Title, &c.Content, &c.ChunkIndex, &embedding, &meta, &createdAt}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if c.Embedding, err = decodeVector(embedding); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode chunk metadata: %w", err)
	}
	if c.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &c, nil
}
