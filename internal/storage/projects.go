package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

func (s *Store) CreateProject(ctx context.Context, p Project) error {
	if p.FilesJSON == "" {
		p.FilesJSON = "[]"
	}
	q := s.sql.Insert("projects").
		Columns("id", "user_id", "name", "description", "files_json").
		Values(p.ID, p.UserID, p.Name, p.Description, p.FilesJSON)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build project insert query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject scopes by owner; another user's project is ErrNotFound, the
// same answer as a missing one.
func (s *Store) GetProject(ctx context.Context, userID, id string) (Project, error) {
	q := s.sql.Select("id", "user_id", "name", "description", "files_json", "created_at", "updated_at").
		From("projects").
		Where(sq.Eq{"id": id, "user_id": userID})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return Project{}, fmt.Errorf("build project query: %w", err)
	}

	var p Project
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&p.FilesJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	q := s.sql.Select("id", "user_id", "name", "description", "files_json", "created_at", "updated_at").
		From("projects").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list projects query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]Project, 0)
	for rows.Next() {
		var p Project
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Name,
			&p.Description,
			&p.FilesJSON,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project rows: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, userID, id string, name, description, filesJSON *string) error {
	q := s.sql.Update("projects").
		Set("updated_at", nowExpr(s.driver)).
		Where(sq.Eq{"id": id, "user_id": userID})
	if name != nil {
		q = q.Set("name", *name)
	}
	if description != nil {
		q = q.Set("description", *description)
	}
	if filesJSON != nil {
		q = q.Set("files_json", *filesJSON)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build project update query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, userID, id string) error {
	q := s.sql.Delete("projects").Where(sq.Eq{"id": id, "user_id": userID})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete project query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
