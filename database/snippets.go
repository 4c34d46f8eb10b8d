package database

import (
	"context"
	"strings"

	"match-agent/errors"

	"github.com/google/uuid"
	"github.com/jdkato/prose/v2"
)

// AddSnippets segments a raw utterance into sentences and stores each as a
// searchable evidence snippet attributed to the speaking user.
func (s *PostgresStore) AddSnippets(ctx context.Context, userID string, sessionID uuid.UUID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return errors.WrapDatabase(err)
	}

	sentences := doc.Sentences()
	chunks := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		if t := strings.TrimSpace(sent.Text); t != "" {
			chunks = append(chunks, t)
		}
	}
	if len(chunks) == 0 {
		chunks = []string{text}
	}

	const query = `
		INSERT INTO dialogue_snippets (id, user_id, session_id, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	for _, chunk := range chunks {
		if _, err := s.DB.ExecContext(ctx, query, uuid.New(), userID, sessionID, chunk); err != nil {
			return errors.WrapDatabase(err)
		}
	}
	return nil
}

// SearchSnippets returns the top-k snippets spoken by the given user that
// match the query, best first.
func (s *PostgresStore) SearchSnippets(ctx context.Context, userID, query string, k int) ([]string, error) {
	const stmt = `
		SELECT content FROM dialogue_snippets
		WHERE user_id = $1
		  AND to_tsvector('simple', content) @@ plainto_tsquery('simple', $2)
		ORDER BY ts_rank(to_tsvector('simple', content), plainto_tsquery('simple', $2)) DESC
		LIMIT $3
	`
	rows, err := s.DB.QueryContext(ctx, stmt, userID, query, k)
	if err != nil {
		return nil, errors.WrapDatabase(err)
	}
	defer rows.Close()

	var snippets []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, errors.WrapDatabase(err)
		}
		snippets = append(snippets, content)
	}
	return snippets, rows.Err()
}

// HasSnippets reports whether any dialogue records exist for the user at
// all, which separates "nothing recorded" from "no matching evidence".
func (s *PostgresStore) HasSnippets(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM dialogue_snippets WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, errors.WrapDatabase(err)
	}
	return exists, nil
}
