package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS variant_batches (
		id             TEXT PRIMARY KEY,
		sequence       INTEGER NOT NULL UNIQUE,
		template_id    TEXT NOT NULL,
		topic_id       TEXT NOT NULL,
		title          TEXT NOT NULL,
		base_seed      TEXT NOT NULL,
		shuffled       INTEGER NOT NULL,
		variants_count INTEGER NOT NULL,
		created_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS variant_batches_template ON variant_batches (template_id)`,
	`CREATE INDEX IF NOT EXISTS variant_batches_created ON variant_batches (created_at)`,
	`CREATE TABLE IF NOT EXISTS variants (
		batch_id      TEXT NOT NULL REFERENCES variant_batches (id) ON DELETE CASCADE,
		variant_index INTEGER NOT NULL,
		seed          TEXT NOT NULL,
		PRIMARY KEY (batch_id, variant_index)
	)`,
	`CREATE TABLE IF NOT EXISTS variant_items (
		batch_id      TEXT NOT NULL,
		variant_index INTEGER NOT NULL,
		order_index   INTEGER NOT NULL,
		slot_index    INTEGER NOT NULL,
		task_id       TEXT NOT NULL,
		section_label TEXT NOT NULL,
		PRIMARY KEY (batch_id, variant_index, order_index),
		FOREIGN KEY (batch_id, variant_index)
			REFERENCES variants (batch_id, variant_index) ON DELETE CASCADE
	)`,
}

// migrate creates any missing tables. Statements are idempotent.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
