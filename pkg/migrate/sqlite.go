package migrate

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// SQLiteSchema mirrors the goose Postgres migrations for local sqlite runs and repository tests.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS quizzes (
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  style TEXT NOT NULL DEFAULT 'professional',
  last_source TEXT,
  last_generated_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (merchant_id, name)
);
CREATE TABLE IF NOT EXISTS quiz_questions (
  id TEXT PRIMARY KEY,
  quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'multiple_choice',
  sort_order INTEGER NOT NULL,
  conditional_rules TEXT,
  created_at DATETIME,
  UNIQUE (quiz_id, sort_order)
);
CREATE TABLE IF NOT EXISTS quiz_options (
  id TEXT PRIMARY KEY,
  question_id TEXT NOT NULL REFERENCES quiz_questions(id) ON DELETE CASCADE,
  text TEXT NOT NULL,
  position INTEGER NOT NULL,
  matching_tags TEXT,
  matching_types TEXT,
  budget_min NUMERIC,
  budget_max NUMERIC,
  price_range_min NUMERIC,
  price_range_max NUMERIC,
  created_at DATETIME
);`

// EnsureSQLiteSchema applies SQLiteSchema statement by statement.
func EnsureSQLiteSchema(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	for _, stmt := range strings.Split(SQLiteSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
