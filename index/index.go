package index

import (
	"context"
	"database/sql"
	"strings"

	"match-agent/errors"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// Embedder turns a document into a dense vector. Satisfied by the LLM client.
type Embedder interface {
	Embed(ctx context.Context, doc string) ([]float32, error)
}

// Index maintains the per-user retrieval rows: one embedding plus one
// weighted text vector per user, tags weighted above the narrative body.
type Index struct {
	db       *sql.DB
	embedder Embedder
	logger   *zap.Logger
}

func New(db *sql.DB, embedder Embedder, logger *zap.Logger) *Index {
	return &Index{db: db, embedder: embedder, logger: logger}
}

// Entry is one user's indexable document.
type Entry struct {
	UserID string
	Tags   []string
	Doc    string
}

// Reindex replaces a user's retrieval row wholesale. Delete then reinsert
// keeps the row consistent even when tags shrink between versions.
func (ix *Index) Reindex(ctx context.Context, e Entry) error {
	material := strings.TrimSpace(strings.Join(e.Tags, " ") + " " + e.Doc)
	vec, err := ix.embedder.Embed(ctx, material)
	if err != nil {
		return errors.WrapErrorf(err, "embedding index entry for %s", e.UserID)
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapDatabase(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM profile_index WHERE user_id = $1`, e.UserID); err != nil {
		return errors.WrapDatabase(err)
	}

	const insert = `
		INSERT INTO profile_index (user_id, tags, doc, embedding, tsv, indexed_at)
		VALUES ($1, $2, $3, $4,
			setweight(to_tsvector('simple', $5), 'A') || setweight(to_tsvector('simple', $3), 'B'),
			NOW())
	`
	tagText := strings.Join(e.Tags, " ")
	if _, err := tx.ExecContext(ctx, insert,
		e.UserID, pq.Array(e.Tags), e.Doc, pgvector.NewVector(vec), tagText); err != nil {
		return errors.WrapDatabase(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapDatabase(err)
	}
	ix.logger.Debug("Reindexed profile", zap.String("user_id", e.UserID), zap.Int("tags", len(e.Tags)))
	return nil
}

// VectorSearch embeds the query text and returns allowlisted user ids by
// ascending cosine distance.
func (ix *Index) VectorSearch(ctx context.Context, queryText string, allow []string, limit int) ([]string, error) {
	if len(allow) == 0 {
		return nil, nil
	}
	vec, err := ix.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, errors.WrapErrorf(err, "embedding search query")
	}

	const query = `
		SELECT user_id FROM profile_index
		WHERE user_id = ANY($1) AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	return ix.collectIDs(ctx, query, pq.Array(allow), pgvector.NewVector(vec), limit)
}

// KeywordSearch ranks allowlisted users by weighted full-text relevance.
// Users whose documents match nothing are omitted entirely.
func (ix *Index) KeywordSearch(ctx context.Context, keywords string, allow []string, limit int) ([]string, error) {
	if len(allow) == 0 || strings.TrimSpace(keywords) == "" {
		return nil, nil
	}
	const query = `
		SELECT user_id FROM profile_index
		WHERE user_id = ANY($1) AND tsv @@ plainto_tsquery('simple', $2)
		ORDER BY ts_rank(tsv, plainto_tsquery('simple', $2)) DESC
		LIMIT $3
	`
	return ix.collectIDs(ctx, query, pq.Array(allow), keywords, limit)
}

func (ix *Index) collectIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapDatabase(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.WrapDatabase(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
