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

// MembershipRepository handles database operations for metahub memberships
type MembershipRepository struct {
	db *db.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *db.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Insert creates a membership row
func (r *MembershipRepository) Insert(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO membership (metahub_id, user_id, role, active_branch_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`

	_, err := r.db.Exec(ctx, query, m.MetahubID, m.UserID, m.Role, m.ActiveBranchID)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}

	return nil
}

// Get retrieves the membership of a user in a metahub. Returns nil, nil when absent.
func (r *MembershipRepository) Get(ctx context.Context, metahubID, userID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT metahub_id, user_id, role, active_branch_id, created_at, updated_at
		FROM membership
		WHERE metahub_id = $1 AND user_id = $2
	`

	m := &models.Membership{}
	err := r.db.QueryRow(ctx, query, metahubID, userID).Scan(
		&m.MetahubID,
		&m.UserID,
		&m.Role,
		&m.ActiveBranchID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

// SetActiveBranch points a user's membership at a branch, nil resets to the
// metahub default
func (r *MembershipRepository) SetActiveBranch(ctx context.Context, metahubID, userID uuid.UUID, branchID *uuid.UUID) error {
	query := `
		UPDATE membership SET active_branch_id = $3, updated_at = now()
		WHERE metahub_id = $1 AND user_id = $2
	`

	tag, err := r.db.Exec(ctx, query, metahubID, userID, branchID)
	if err != nil {
		return fmt.Errorf("failed to set active branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("membership not found: metahub=%s user=%s", metahubID, userID)
	}

	return nil
}

// ClearActiveBranch resets a user's pointer inside the given transaction,
// but only if it currently targets the given branch
func (r *MembershipRepository) ClearActiveBranch(ctx context.Context, tx pgx.Tx, metahubID, userID, branchID uuid.UUID) error {
	query := `
		UPDATE membership SET active_branch_id = NULL, updated_at = now()
		WHERE metahub_id = $1 AND user_id = $2 AND active_branch_id = $3
	`

	// Affecting zero rows is fine, the user may not have been on this branch
	if _, err := tx.Exec(ctx, query, metahubID, userID, branchID); err != nil {
		return fmt.Errorf("failed to clear active branch: %w", err)
	}

	return nil
}

// ListActiveOnBranch enumerates memberships whose active branch is the target,
// optionally excluding one user
func (r *MembershipRepository) ListActiveOnBranch(ctx context.Context, metahubID, branchID uuid.UUID, excludeUserID *uuid.UUID) ([]*models.Membership, error) {
	query := `
		SELECT metahub_id, user_id, role, active_branch_id, created_at, updated_at
		FROM membership
		WHERE metahub_id = $1 AND active_branch_id = $2 AND ($3::uuid IS NULL OR user_id <> $3)
		ORDER BY user_id
	`

	rows, err := r.db.Query(ctx, query, metahubID, branchID, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		err := rows.Scan(
			&m.MetahubID,
			&m.UserID,
			&m.Role,
			&m.ActiveBranchID,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}

	return memberships, nil
}
