// Package migration brings the PostgreSQL schema up on startup. Steps are
// idempotent, so a restart against an already-migrated database is a no-op.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_articles",
		SQL: `CREATE TABLE IF NOT EXISTS articles (
  id               UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title            TEXT        NOT NULL,
  authors          TEXT        NOT NULL,
  publication_year INTEGER,
  keywords         TEXT        NOT NULL DEFAULT '',
  topic            TEXT        NOT NULL DEFAULT '',
  storage_key      TEXT        NOT NULL UNIQUE,
  filename         TEXT        NOT NULL,
  size             BIGINT      NOT NULL CHECK (size >= 0),
  content_type     TEXT        NOT NULL,
  owner_id         TEXT        NOT NULL,
  uploaded_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_articles_owner_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_articles_owner_id ON articles (owner_id);`,
	},
	{
		Name: "create_index_articles_topic",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_articles_topic ON articles (topic);`,
	},
	{
		Name: "create_index_articles_uploaded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_articles_uploaded_at ON articles (uploaded_at DESC, id DESC);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  username      TEXT        NOT NULL UNIQUE,
  email         TEXT        NOT NULL UNIQUE,
  full_name     TEXT        NOT NULL DEFAULT '',
  avatar_key    TEXT        NOT NULL DEFAULT '',
  registered_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// EnsureMigrated checks for the articles table and runs the migration steps
// if it is absent.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()

	log.InfoContext(ctx, "db migration check", "db_host", dbHost)

	var exists bool
	query := "SELECT to_regclass('public.articles') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.ErrorContext(ctx, "db migration failed",
			"error", err, "db_host", dbHost,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.InfoContext(ctx, "schema already exists, skipping migration",
			"db_host", dbHost, "duration_ms", time.Since(start).Milliseconds())
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.ErrorContext(ctx, "db migration step failed",
				"migration_step", step.Name, "error", err, "db_host", dbHost,
				"step_duration_ms", time.Since(stepStart).Milliseconds())
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.InfoContext(ctx, "db migration step applied",
			"migration_step", step.Name, "db_host", dbHost,
			"step_duration_ms", time.Since(stepStart).Milliseconds())
	}

	log.InfoContext(ctx, "db migration complete",
		"db_host", dbHost, "duration_ms", time.Since(start).Milliseconds())

	return nil
}
