package main

import (
	"context"
	"fmt"
	"time"

	"github.com/metahub-labs/platform/common/db"
)

// migrations are idempotent DDL statements run at startup through the
// bootstrap dbInitHook. The two branch uniqueness constraints carry the names
// the repository layer translates into conflict codes.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS platform_user (
		id uuid PRIMARY KEY,
		email text NOT NULL UNIQUE,
		nickname text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS metahub (
		id uuid PRIMARY KEY,
		default_branch_id uuid,
		last_branch_number int NOT NULL DEFAULT 0,
		version bigint NOT NULL DEFAULT 1,
		created_at timestamptz NOT NULL DEFAULT now(),
		created_by uuid,
		updated_at timestamptz NOT NULL DEFAULT now(),
		updated_by uuid
	)`,

	`CREATE TABLE IF NOT EXISTS branch (
		id uuid PRIMARY KEY,
		metahub_id uuid NOT NULL REFERENCES metahub(id),
		codename text NOT NULL,
		name jsonb NOT NULL,
		description jsonb,
		branch_number int NOT NULL,
		namespace_name text NOT NULL,
		source_branch_id uuid,
		version bigint NOT NULL DEFAULT 1,
		created_at timestamptz NOT NULL DEFAULT now(),
		created_by uuid,
		updated_at timestamptz NOT NULL DEFAULT now(),
		updated_by uuid,
		deleted_at timestamptz
	)`,

	// Codenames only collide among live branches, numbers are never reused
	`CREATE UNIQUE INDEX IF NOT EXISTS branch_codename_per_metahub
		ON branch (metahub_id, codename) WHERE deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS branch_number_per_metahub
		ON branch (metahub_id, branch_number)`,

	`CREATE TABLE IF NOT EXISTS membership (
		metahub_id uuid NOT NULL REFERENCES metahub(id),
		user_id uuid NOT NULL,
		role text NOT NULL DEFAULT 'member',
		active_branch_id uuid,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (metahub_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS membership_active_branch
		ON membership (metahub_id, active_branch_id)`,
}

// runMigrations applies startup DDL
func runMigrations(database *db.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range migrations {
		if _, err := database.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
