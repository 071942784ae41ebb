package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/metahub-labs/platform/cmd/metahub/models"
	"github.com/metahub-labs/platform/common/apperr"
	"github.com/metahub-labs/platform/common/db"
)

// Unique constraint names declared in migrations. A 23505 raised by the store
// is translated into the conflict code of whichever constraint fired.
const (
	constraintCodename     = "branch_codename_per_metahub"
	constraintBranchNumber = "branch_number_per_metahub"
)

// BranchRepository handles database operations for branches
type BranchRepository struct {
	db *db.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *db.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

const branchColumns = `id, metahub_id, codename, name, description, branch_number, namespace_name,
	source_branch_id, version, created_at, created_by, updated_at, updated_by`

func scanBranch(row pgx.Row) (*models.Branch, error) {
	b := &models.Branch{}
	err := row.Scan(
		&b.ID,
		&b.MetahubID,
		&b.Codename,
		&b.Name,
		&b.Description,
		&b.BranchNumber,
		&b.NamespaceName,
		&b.SourceBranchID,
		&b.Version,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.UpdatedAt,
		&b.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan branch: %w", err)
	}
	return b, nil
}

// TranslateUniqueViolation maps a unique-constraint violation onto the
// conflict code of the constraint that fired. Non-unique errors pass through.
func TranslateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}

	switch pgErr.ConstraintName {
	case constraintCodename:
		return apperr.New(apperr.CodeCodenameExists, "branch codename already in use").WithInternal(err)
	case constraintBranchNumber:
		return apperr.New(apperr.CodeNumberConflict, "branch number already allocated").WithInternal(err)
	default:
		return apperr.New(apperr.CodeNumberConflict, "branch uniqueness violation").
			WithDetail("constraint", pgErr.ConstraintName).
			WithInternal(err)
	}
}

// Insert creates a branch row inside the given transaction
func (r *BranchRepository) Insert(ctx context.Context, tx pgx.Tx, b *models.Branch) error {
	query := `
		INSERT INTO branch (id, metahub_id, codename, name, description, branch_number,
			namespace_name, source_branch_id, version, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), $10, now(), $10)
	`

	_, err := tx.Exec(ctx, query,
		b.ID,
		b.MetahubID,
		b.Codename,
		b.Name,
		b.Description,
		b.BranchNumber,
		b.NamespaceName,
		b.SourceBranchID,
		b.Version,
		b.CreatedBy,
	)

	if err != nil {
		if translated := TranslateUniqueViolation(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to insert branch: %w", err)
	}

	return nil
}

// Get retrieves a non-deleted branch scoped to a metahub. Returns nil, nil when absent.
func (r *BranchRepository) Get(ctx context.Context, metahubID, branchID uuid.UUID) (*models.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branch
		WHERE metahub_id = $1 AND id = $2 AND deleted_at IS NULL`
	return scanBranch(r.db.QueryRow(ctx, query, metahubID, branchID))
}

// GetTx is Get inside an existing transaction
func (r *BranchRepository) GetTx(ctx context.Context, tx pgx.Tx, metahubID, branchID uuid.UUID) (*models.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branch
		WHERE metahub_id = $1 AND id = $2 AND deleted_at IS NULL`
	return scanBranch(tx.QueryRow(ctx, query, metahubID, branchID))
}

// GetByCodename retrieves a non-deleted branch by codename. Returns nil, nil when absent.
func (r *BranchRepository) GetByCodename(ctx context.Context, metahubID uuid.UUID, codename string) (*models.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branch
		WHERE metahub_id = $1 AND codename = $2 AND deleted_at IS NULL`
	return scanBranch(r.db.QueryRow(ctx, query, metahubID, codename))
}

// Update persists codename/name/description edits and bumps the version
// counter. With an expectedVersion the save is a compare-and-swap: the row is
// only touched while its version still matches, so a concurrent writer can
// never be silently overwritten.
func (r *BranchRepository) Update(ctx context.Context, b *models.Branch, expectedVersion *int64) error {
	query := `
		UPDATE branch
		SET codename = $3, name = $4, description = $5,
		    version = version + 1, updated_at = now(), updated_by = $6
		WHERE metahub_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	args := []any{b.MetahubID, b.ID, b.Codename, b.Name, b.Description, b.UpdatedBy}

	if expectedVersion != nil {
		query += ` AND version = $7`
		args = append(args, *expectedVersion)
	}
	query += ` RETURNING version, updated_at`

	err := r.db.QueryRow(ctx, query, args...).Scan(&b.Version, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.updateConflict(ctx, b, expectedVersion)
		}
		if translated := TranslateUniqueViolation(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to update branch: %w", err)
	}

	return nil
}

// updateConflict classifies a zero-row update: either the branch is gone, or
// the version gate rejected a concurrent writer's interleaving. The re-read
// supplies the actual version for the conflict payload.
func (r *BranchRepository) updateConflict(ctx context.Context, b *models.Branch, expectedVersion *int64) error {
	current, err := r.Get(ctx, b.MetahubID, b.ID)
	if err != nil {
		return err
	}
	if current == nil || expectedVersion == nil {
		return apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", b.ID)
	}
	return apperr.VersionConflict("branch", current.ID, *expectedVersion, current.Version, current.UpdatedAt, current.UpdatedBy)
}

// SoftDelete marks a branch deleted inside the given transaction.
// The row survives so the branch number is never reused.
func (r *BranchRepository) SoftDelete(ctx context.Context, tx pgx.Tx, metahubID, branchID uuid.UUID) error {
	query := `UPDATE branch SET deleted_at = now() WHERE metahub_id = $1 AND id = $2 AND deleted_at IS NULL`

	tag, err := tx.Exec(ctx, query, metahubID, branchID)
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", branchID)
	}

	return nil
}

// List retrieves non-deleted branches with filtering, sorting and pagination.
// The second result is the total matching count before pagination.
func (r *BranchRepository) List(ctx context.Context, metahubID uuid.UUID, opts models.BranchListOptions) ([]*models.Branch, int, error) {
	opts = opts.Sanitize()

	where := `WHERE metahub_id = $1 AND deleted_at IS NULL`
	args := []any{metahubID}

	if opts.Search != "" {
		where += ` AND (codename ILIKE $2 OR name->'values'->>(name->>'primary_locale') ILIKE $2)`
		args = append(args, "%"+escapeLike(opts.Search)+"%")
	}

	var total int
	countQuery := `SELECT count(*) FROM branch ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count branches: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM branch %s ORDER BY %s %s, branch_number ASC LIMIT %d OFFSET %d`,
		branchColumns, where, sortColumn(opts.SortBy), strings.ToUpper(opts.SortOrder), opts.Limit, opts.Offset,
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var branches []*models.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, 0, err
		}
		branches = append(branches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating branches: %w", err)
	}

	return branches, total, nil
}

// sortColumn maps sanitized sort keys onto SQL expressions. Only keys that
// survived Sanitize reach this point, so interpolation is safe.
func sortColumn(sortBy string) string {
	switch sortBy {
	case models.SortByName:
		return `name->'values'->>(name->>'primary_locale')`
	case models.SortByCodename:
		return "codename"
	case models.SortByUpdated:
		return "updated_at"
	default:
		return "created_at"
	}
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
