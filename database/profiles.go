package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"match-agent/errors"
)

// ProfileRecord is the soft-attribute document for a user. Aspects holds the
// nested per-dimension maps produced by extraction; UserSummary is the
// narrative rendering regenerated when aspects drift.
type ProfileRecord struct {
	UserID           string
	Aspects          map[string]any
	UserSummary      string
	UpdatedAt        time.Time
	SummaryUpdatedAt time.Time
}

// GetProfile loads a user's profile document. A user without a profile row
// gets an empty record rather than an error so callers can merge into it.
func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (ProfileRecord, error) {
	const query = `
		SELECT aspects, user_summary, updated_at, summary_updated_at
		FROM users_profile WHERE user_id = $1
	`
	rec := ProfileRecord{UserID: userID, Aspects: map[string]any{}}
	var aspectsRaw []byte
	err := s.DB.QueryRowContext(ctx, query, userID).
		Scan(&aspectsRaw, &rec.UserSummary, &rec.UpdatedAt, &rec.SummaryUpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return rec, nil
		}
		return rec, errors.WrapDatabase(err)
	}
	if len(aspectsRaw) > 0 {
		if err := json.Unmarshal(aspectsRaw, &rec.Aspects); err != nil {
			return rec, errors.WrapDatabase(err)
		}
	}
	return rec, nil
}

// SaveAspects writes the merged aspect document and bumps updated_at.
func (s *PostgresStore) SaveAspects(ctx context.Context, userID string, aspects map[string]any) error {
	raw, err := json.Marshal(aspects)
	if err != nil {
		return errors.WrapDatabase(err)
	}
	const query = `
		INSERT INTO users_profile (user_id, aspects, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET aspects = EXCLUDED.aspects, updated_at = NOW()
	`
	if _, err := s.DB.ExecContext(ctx, query, userID, raw); err != nil {
		return errors.WrapDatabase(err)
	}
	return nil
}

// SaveSummary writes the regenerated narrative summary and bumps
// summary_updated_at, without touching the aspect document.
func (s *PostgresStore) SaveSummary(ctx context.Context, userID, summary string) error {
	const query = `
		INSERT INTO users_profile (user_id, user_summary, summary_updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET user_summary = EXCLUDED.user_summary, summary_updated_at = NOW()
	`
	if _, err := s.DB.ExecContext(ctx, query, userID, summary); err != nil {
		return errors.WrapDatabase(err)
	}
	return nil
}
