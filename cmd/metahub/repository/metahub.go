package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/metahub-labs/platform/cmd/metahub/models"
	"github.com/metahub-labs/platform/common/db"
)

// MetahubRepository handles database operations for metahubs
type MetahubRepository struct {
	db *db.DB
}

// NewMetahubRepository creates a new metahub repository
func NewMetahubRepository(db *db.DB) *MetahubRepository {
	return &MetahubRepository{db: db}
}

const metahubColumns = `id, default_branch_id, last_branch_number, version, created_at, created_by, updated_at, updated_by`

func scanMetahub(row pgx.Row) (*models.Metahub, error) {
	m := &models.Metahub{}
	err := row.Scan(
		&m.ID,
		&m.DefaultBranchID,
		&m.LastBranchNumber,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.UpdatedAt,
		&m.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan metahub: %w", err)
	}
	return m, nil
}

// Insert creates a new metahub row
func (r *MetahubRepository) Insert(ctx context.Context, m *models.Metahub) error {
	query := `
		INSERT INTO metahub (id, last_branch_number, version, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, now(), $4, now(), $4)
	`

	_, err := r.db.Exec(ctx, query, m.ID, m.LastBranchNumber, m.Version, m.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert metahub: %w", err)
	}

	return nil
}

// Get retrieves a metahub by id. Returns nil, nil when absent.
func (r *MetahubRepository) Get(ctx context.Context, id uuid.UUID) (*models.Metahub, error) {
	query := `SELECT ` + metahubColumns + ` FROM metahub WHERE id = $1`
	return scanMetahub(r.db.QueryRow(ctx, query, id))
}

// GetForUpdate reads a metahub with a row-level write lock inside the given
// transaction. This serializes branch-number allocation across processes even
// if a creator bypassed the advisory lock. Returns nil, nil when absent.
func (r *MetahubRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Metahub, error) {
	query := `SELECT ` + metahubColumns + ` FROM metahub WHERE id = $1 FOR UPDATE`
	return scanMetahub(tx.QueryRow(ctx, query, id))
}

// SetLastBranchNumber updates the branch counter inside the given transaction.
// Bookkeeping update: the metahub version counter is deliberately untouched.
func (r *MetahubRepository) SetLastBranchNumber(ctx context.Context, tx pgx.Tx, id uuid.UUID, lastBranchNumber int) error {
	query := `UPDATE metahub SET last_branch_number = $2, updated_at = now() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, lastBranchNumber)
	if err != nil {
		return fmt.Errorf("failed to update branch counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("metahub not found: %s", id)
	}

	return nil
}

// SetDefaultBranch points the metahub at a new default branch.
// Bookkeeping update: the metahub version counter is deliberately untouched.
func (r *MetahubRepository) SetDefaultBranch(ctx context.Context, id, branchID uuid.UUID) error {
	query := `UPDATE metahub SET default_branch_id = $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, branchID)
	if err != nil {
		return fmt.Errorf("failed to set default branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("metahub not found: %s", id)
	}

	return nil
}

// SetDefaultBranchTx is SetDefaultBranch inside an existing transaction
func (r *MetahubRepository) SetDefaultBranchTx(ctx context.Context, tx pgx.Tx, id, branchID uuid.UUID) error {
	query := `UPDATE metahub SET default_branch_id = $2, updated_at = now() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, branchID)
	if err != nil {
		return fmt.Errorf("failed to set default branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("metahub not found: %s", id)
	}

	return nil
}
