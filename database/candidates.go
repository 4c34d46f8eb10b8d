package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"match-agent/errors"
	"match-agent/web/types"

	"github.com/lib/pq"
)

// CandidateFilter is the SQL-side hard-attribute filter. Nil pointer fields
// are unset and contribute no predicate.
type CandidateFilter struct {
	Gender     string
	Cities     []string
	HeightMin  *int
	HeightMax  *int
	BirthMin   *time.Time // earliest acceptable birthday, derived from the age ceiling
	BirthMax   *time.Time // latest acceptable birthday, derived from the age floor
	BMIMin     *float64
	BMIMax     *float64
	ExcludeIDs []string
	Limit      int
}

// FindCandidateIDs returns the ids of onboarded users matching every hard
// constraint, newest first. BMI is computed from stored height and weight at
// query time so the filter never goes stale.
func (s *PostgresStore) FindCandidateIDs(ctx context.Context, f CandidateFilter) ([]string, error) {
	var builder strings.Builder
	builder.WriteString("SELECT id FROM users_basic WHERE onboarded = TRUE")
	args := []any{}
	paramIndex := 1

	next := func() int {
		i := paramIndex
		paramIndex++
		return i
	}

	if f.Gender != "" {
		builder.WriteString(fmt.Sprintf(" AND gender = $%d", next()))
		args = append(args, f.Gender)
	}
	if len(f.Cities) > 0 {
		builder.WriteString(fmt.Sprintf(" AND city = ANY($%d)", next()))
		args = append(args, pq.Array(f.Cities))
	}
	if f.HeightMin != nil {
		builder.WriteString(fmt.Sprintf(" AND height >= $%d", next()))
		args = append(args, *f.HeightMin)
	}
	if f.HeightMax != nil {
		builder.WriteString(fmt.Sprintf(" AND height <= $%d", next()))
		args = append(args, *f.HeightMax)
	}
	if f.BirthMin != nil {
		builder.WriteString(fmt.Sprintf(" AND birthday >= $%d", next()))
		args = append(args, *f.BirthMin)
	}
	if f.BirthMax != nil {
		builder.WriteString(fmt.Sprintf(" AND birthday <= $%d", next()))
		args = append(args, *f.BirthMax)
	}
	if f.BMIMin != nil {
		builder.WriteString(fmt.Sprintf(" AND height > 0 AND weight > 0 AND weight / power(height / 100.0, 2) >= $%d", next()))
		args = append(args, *f.BMIMin)
	}
	if f.BMIMax != nil {
		builder.WriteString(fmt.Sprintf(" AND height > 0 AND weight > 0 AND weight / power(height / 100.0, 2) <= $%d", next()))
		args = append(args, *f.BMIMax)
	}
	if len(f.ExcludeIDs) > 0 {
		builder.WriteString(fmt.Sprintf(" AND NOT (id = ANY($%d))", next()))
		args = append(args, pq.Array(f.ExcludeIDs))
	}

	builder.WriteString(" ORDER BY created_at DESC")
	if f.Limit > 0 {
		builder.WriteString(fmt.Sprintf(" LIMIT $%d", next()))
		args = append(args, f.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, builder.String(), args...)
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

// GetBasic returns the hard-attribute row for a single user.
func (s *PostgresStore) GetBasic(ctx context.Context, userID string) (types.CandidateBasic, error) {
	const query = `
		SELECT id, nickname, gender, city, height, weight, COALESCE(birthday, to_timestamp(0)::date), onboarded
		FROM users_basic WHERE id = $1
	`
	var b types.CandidateBasic
	err := s.DB.QueryRowContext(ctx, query, userID).
		Scan(&b.ID, &b.Nickname, &b.Gender, &b.City, &b.Height, &b.Weight, &b.Birthday, &b.Onboarded)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.CandidateBasic{}, errors.WrapErrorf(errors.ErrNotFound, "user %s", userID)
		}
		return types.CandidateBasic{}, errors.WrapDatabase(err)
	}
	return b, nil
}

// GetBasics loads hard-attribute rows for a batch of users, keyed by id.
// Missing ids are silently absent from the result.
func (s *PostgresStore) GetBasics(ctx context.Context, userIDs []string) (map[string]types.CandidateBasic, error) {
	result := make(map[string]types.CandidateBasic, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	const query = `
		SELECT id, nickname, gender, city, height, weight, COALESCE(birthday, to_timestamp(0)::date), onboarded
		FROM users_basic WHERE id = ANY($1)
	`
	rows, err := s.DB.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, errors.WrapDatabase(err)
	}
	defer rows.Close()

	for rows.Next() {
		var b types.CandidateBasic
		if err := rows.Scan(&b.ID, &b.Nickname, &b.Gender, &b.City, &b.Height, &b.Weight, &b.Birthday, &b.Onboarded); err != nil {
			return nil, errors.WrapDatabase(err)
		}
		result[b.ID] = b
	}
	return result, rows.Err()
}

// UpsertBasic stores or updates a user's hard attributes.
func (s *PostgresStore) UpsertBasic(ctx context.Context, b types.CandidateBasic) error {
	const query = `
		INSERT INTO users_basic (id, nickname, gender, city, height, weight, birthday)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET nickname = EXCLUDED.nickname, gender = EXCLUDED.gender, city = EXCLUDED.city,
			height = EXCLUDED.height, weight = EXCLUDED.weight, birthday = EXCLUDED.birthday
	`
	var birthday any
	if !b.Birthday.IsZero() {
		birthday = b.Birthday
	}
	if _, err := s.DB.ExecContext(ctx, query, b.ID, b.Nickname, b.Gender, b.City, b.Height, b.Weight, birthday); err != nil {
		return errors.WrapDatabase(err)
	}
	return nil
}

// SetOnboarded marks a user as visible to candidate retrieval.
func (s *PostgresStore) SetOnboarded(ctx context.Context, userID string, onboarded bool) error {
	if _, err := s.DB.ExecContext(ctx,
		`UPDATE users_basic SET onboarded = $1 WHERE id = $2`, onboarded, userID); err != nil {
		return errors.WrapDatabase(err)
	}
	return nil
}
