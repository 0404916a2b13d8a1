package storage

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT,
		content TEXT,
		source TEXT,
		url TEXT,
		status TEXT,
		scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processing_started_at TIMESTAMPTZ,
		processing_completed_at TIMESTAMPTZ,
		processing_failed_at TIMESTAMPTZ,
		error_message TEXT,
		synthesis_id TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS syntheses (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL,
		synthesis_report JSONB NOT NULL,
		analysis_report JSONB NOT NULL,
		verdict TEXT,
		probability_true DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_status ON articles (status)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_scraped_at ON articles (scraped_at)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_source ON articles (source)`,
	`CREATE INDEX IF NOT EXISTS idx_syntheses_article_id ON syntheses (article_id)`,
	`CREATE INDEX IF NOT EXISTS idx_syntheses_created_at ON syntheses (created_at)`,
}

// EnsureSchema creates the tables and indexes the repository relies on.
// Every statement is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
