package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	log.Println("Successfully connected to the database")
	return &PostgresStore{DB: db}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS users_basic (
            id TEXT PRIMARY KEY,
            nickname TEXT NOT NULL,
            gender TEXT NOT NULL,
            city TEXT DEFAULT '',
            height INT DEFAULT 0,
            weight INT DEFAULT 0,
            birthday DATE,
            onboarded BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_users_basic_gender_city ON users_basic(gender, city)`,
		`CREATE TABLE IF NOT EXISTS users_profile (
            user_id TEXT PRIMARY KEY REFERENCES users_basic(id) ON DELETE CASCADE,
            aspects JSONB DEFAULT '{}'::jsonb,
            user_summary TEXT DEFAULT '',
            updated_at TIMESTAMPTZ DEFAULT NOW(),
            summary_updated_at TIMESTAMPTZ DEFAULT to_timestamp(0)
        )`,
		`CREATE TABLE IF NOT EXISTS sessions (
            id UUID PRIMARY KEY,
            user_id TEXT REFERENCES users_basic(id) ON DELETE CASCADE,
            kind TEXT NOT NULL DEFAULT 'match',
            created_at TIMESTAMPTZ DEFAULT NOW(),
            last_active TIMESTAMPTZ DEFAULT NOW(),
            latest_state JSONB DEFAULT '{}'::jsonb
        )`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            session_id UUID REFERENCES sessions(id) ON DELETE CASCADE,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session_created_at ON messages(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS dialogue_snippets (
            id UUID PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users_basic(id) ON DELETE CASCADE,
            session_id UUID,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_dialogue_snippets_user_id ON dialogue_snippets(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_dialogue_snippets_fts ON dialogue_snippets
            USING GIN (to_tsvector('simple', content))`,
		`CREATE TABLE IF NOT EXISTS profile_index (
            user_id TEXT PRIMARY KEY REFERENCES users_basic(id) ON DELETE CASCADE,
            tags TEXT[] DEFAULT '{}'::TEXT[],
            doc TEXT NOT NULL DEFAULT '',
            embedding vector(768),
            tsv tsvector,
            indexed_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_profile_index_tsv ON profile_index USING GIN (tsv)`,
		`CREATE INDEX IF NOT EXISTS idx_profile_index_embedding ON profile_index
            USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
