package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/metahub-labs/platform/common/db"
	"github.com/metahub-labs/platform/common/logger"
)

// systemTables are cloned when a branch is created from a source branch.
// Column order matters: audit columns last so the clone can refresh them.
var systemTables = []struct {
	name    string
	columns string
	ddl     string
}{
	{
		name:    "object_definition",
		columns: "id, codename, definition",
		ddl: `CREATE TABLE %s.object_definition (
			id uuid PRIMARY KEY,
			codename text NOT NULL,
			definition jsonb NOT NULL DEFAULT '{}',
			created_at timestamptz NOT NULL DEFAULT now(),
			created_by uuid,
			updated_at timestamptz NOT NULL DEFAULT now(),
			updated_by uuid
		)`,
	},
	{
		name:    "attribute_definition",
		columns: "id, object_id, codename, definition",
		ddl: `CREATE TABLE %s.attribute_definition (
			id uuid PRIMARY KEY,
			object_id uuid NOT NULL,
			codename text NOT NULL,
			definition jsonb NOT NULL DEFAULT '{}',
			created_at timestamptz NOT NULL DEFAULT now(),
			created_by uuid,
			updated_at timestamptz NOT NULL DEFAULT now(),
			updated_by uuid
		)`,
	},
	{
		name:    "data_element",
		columns: "id, object_id, payload",
		ddl: `CREATE TABLE %s.data_element (
			id uuid PRIMARY KEY,
			object_id uuid NOT NULL,
			payload jsonb NOT NULL DEFAULT '{}',
			created_at timestamptz NOT NULL DEFAULT now(),
			created_by uuid,
			updated_at timestamptz NOT NULL DEFAULT now(),
			updated_by uuid
		)`,
	},
}

// SchemaRepository provisions and drops per-branch physical namespaces.
// DDL runs on the pool, outside any caller transaction: schema creation is a
// side effect that failure paths compensate with an explicit drop.
type SchemaRepository struct {
	db  *db.DB
	log *logger.Logger
}

// NewSchemaRepository creates a new schema repository
func NewSchemaRepository(db *db.DB, log *logger.Logger) *SchemaRepository {
	return &SchemaRepository{db: db, log: log}
}

// CreateNamespace provisions a brand-new empty namespace with the system tables.
// A failure partway leaves nothing behind: the partial schema is dropped before
// the error propagates.
func (r *SchemaRepository) CreateNamespace(ctx context.Context, name string) error {
	ident := pgx.Identifier{name}.Sanitize()

	if _, err := r.db.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", ident)); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}

	for _, table := range systemTables {
		if _, err := r.db.Exec(ctx, fmt.Sprintf(table.ddl, ident)); err != nil {
			if dropErr := r.DropNamespace(ctx, name); dropErr != nil {
				r.log.Error("failed to drop partially created namespace",
					"namespace", name, "error", dropErr)
			}
			return fmt.Errorf("failed to create %s in namespace %s: %w", table.name, name, err)
		}
	}

	r.log.Info("namespace provisioned", "namespace", name)
	return nil
}

// DropNamespace irreversibly removes a namespace and everything in it.
// Safe to call on a partially created namespace.
func (r *SchemaRepository) DropNamespace(ctx context.Context, name string) error {
	ident := pgx.Identifier{name}.Sanitize()

	if _, err := r.db.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", ident)); err != nil {
		return fmt.Errorf("failed to drop namespace %s: %w", name, err)
	}

	r.log.Info("namespace dropped", "namespace", name)
	return nil
}

// CloneSystemTables copies all system-table rows from the source namespace
// into the target namespace, preserving row identity and business columns but
// refreshing the audit columns with "now" and the acting user. All three
// copies run inside the given transaction so a clone is never half-applied.
func (r *SchemaRepository) CloneSystemTables(ctx context.Context, tx pgx.Tx, sourceNamespace, targetNamespace string, actorID *uuid.UUID) error {
	source := pgx.Identifier{sourceNamespace}.Sanitize()
	target := pgx.Identifier{targetNamespace}.Sanitize()

	for _, table := range systemTables {
		query := fmt.Sprintf(
			`INSERT INTO %s.%s (%s, created_at, created_by, updated_at, updated_by)
			 SELECT %s, now(), $1, now(), $1 FROM %s.%s`,
			target, table.name, table.columns,
			table.columns, source, table.name,
		)

		if _, err := tx.Exec(ctx, query, actorID); err != nil {
			return fmt.Errorf("failed to clone %s from %s to %s: %w",
				table.name, sourceNamespace, targetNamespace, err)
		}
	}

	return nil
}
