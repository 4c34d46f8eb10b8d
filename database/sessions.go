package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"match-agent/errors"
	"match-agent/web/types"

	"github.com/google/uuid"
)

// EnsureSession creates a session row if it does not exist yet and refreshes
// last_active either way.
func (s *PostgresStore) EnsureSession(ctx context.Context, sessionID uuid.UUID, userID, kind string) error {
	const query = `
		INSERT INTO sessions (id, user_id, kind, created_at, last_active)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET last_active = NOW()
	`
	if _, err := s.DB.ExecContext(ctx, query, sessionID, userID, kind); err != nil {
		return errors.WrapDatabase(err)
	}
	return nil
}

// LoadContext reads the carried cross-turn state from the session row.
// Corrupt or missing state yields an empty context so the turn can proceed
// as a fresh search.
func (s *PostgresStore) LoadContext(ctx context.Context, sessionID uuid.UUID) (types.CarriedContext, error) {
	var carried types.CarriedContext
	var raw []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT latest_state FROM sessions WHERE id = $1`, sessionID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.CarriedContext{}, nil
		}
		return carried, errors.WrapDatabase(err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &carried); err != nil {
			log.Printf("WARN: discarding corrupt session state for %s: %v", sessionID, err)
			return types.CarriedContext{}, nil
		}
	}
	return carried, nil
}

// SaveContext persists the carried cross-turn state on the session row.
func (s *PostgresStore) SaveContext(ctx context.Context, sessionID uuid.UUID, carried types.CarriedContext) error {
	raw, err := json.Marshal(carried)
	if err != nil {
		return errors.WrapDatabase(err)
	}
	if _, err := s.DB.ExecContext(ctx,
		`UPDATE sessions SET latest_state = $1, last_active = NOW() WHERE id = $2`, raw, sessionID); err != nil {
		return errors.WrapDatabase(err)
	}
	return nil
}

// AddMessage appends one message to the session transcript.
func (s *PostgresStore) AddMessage(ctx context.Context, sessionID uuid.UUID, role, content string) error {
	const query = `
		INSERT INTO messages (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.DB.ExecContext(ctx, query, uuid.New(), sessionID, role, content, time.Now()); err != nil {
		return errors.WrapDatabase(err)
	}
	return nil
}

// GetHistory returns the most recent limit messages in chronological order.
// A limit of zero returns the full transcript.
func (s *PostgresStore) GetHistory(ctx context.Context, sessionID uuid.UUID, limit int) ([]types.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, created_at FROM messages
		WHERE session_id = $1 ORDER BY created_at DESC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapDatabase(err)
	}
	defer rows.Close()

	var messages []types.ChatMessage
	for rows.Next() {
		var msg types.ChatMessage
		var msgID, sessID uuid.UUID
		if err := rows.Scan(&msgID, &sessID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, errors.WrapDatabase(err)
		}
		msg.ID = msgID.String()
		msg.SessionID = sessID.String()
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapDatabase(err)
	}

	// Rows arrive newest first; flip back to transcript order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
