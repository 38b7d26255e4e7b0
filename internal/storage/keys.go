package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var ErrNotFound = errors.New("not found")

func (s *Store) CreateAPIKey(ctx context.Context, k APIKey) error {
	q := s.sql.Insert("api_keys").
		Columns("id", "name", "provider", "enc_secret", "is_active", "created_by").
		Values(k.ID, k.Name, k.Provider, k.EncSecret, k.IsActive, k.CreatedBy)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build api key insert query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// GetActiveAPIKey resolves a key by id, filtering on is_active in the query
// itself so inactive and absent rows are indistinguishable to the caller.
func (s *Store) GetActiveAPIKey(ctx context.Context, id string) (APIKey, error) {
	q := s.sql.Select("id", "name", "provider", "enc_secret", "is_active", "created_by", "created_at").
		From("api_keys").
		Where(sq.Eq{"id": id, "is_active": true})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return APIKey{}, fmt.Errorf("build active api key query: %w", err)
	}

	var k APIKey
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&k.ID,
		&k.Name,
		&k.Provider,
		&k.EncSecret,
		&k.IsActive,
		&k.CreatedBy,
		&k.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return APIKey{}, ErrNotFound
		}
		return APIKey{}, fmt.Errorf("get active api key: %w", err)
	}
	return k, nil
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	q := s.sql.Select("id", "name", "provider", "enc_secret", "is_active", "created_by", "created_at").
		From("api_keys").
		OrderBy("created_at DESC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list api keys query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	out := make([]APIKey, 0)
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(
			&k.ID,
			&k.Name,
			&k.Provider,
			&k.EncSecret,
			&k.IsActive,
			&k.CreatedBy,
			&k.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan api key row: %w", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api key rows: %w", err)
	}
	return out, nil
}

func (s *Store) SetAPIKeyActive(ctx context.Context, id string, active bool) error {
	q := s.sql.Update("api_keys").
		Set("is_active", active).
		Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set api key active query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("set api key active: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	q := s.sql.Delete("api_keys").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete api key query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
