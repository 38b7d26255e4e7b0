package storage

import (
	"context"
	"fmt"
)

func (s *Store) LogGeneration(ctx context.Context, e GenerationEntry) error {
	q := s.sql.Insert("generation_log").
		Columns("user_id", "api_key_id", "status", "prompt_chars").
		Values(e.UserID, e.APIKeyID, e.Status, e.PromptChars)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build generation log query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert generation log entry: %w", err)
	}
	return nil
}
