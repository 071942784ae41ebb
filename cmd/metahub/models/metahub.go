package models

import (
	"time"

	"github.com/google/uuid"
)

// Metahub represents a tenant workspace that owns branches
// Maps to: metahub table
type Metahub struct {
	ID uuid.UUID `db:"id" json:"id"`

	// Default branch, nil until the initial branch is created
	DefaultBranchID *uuid.UUID `db:"default_branch_id" json:"default_branch_id,omitempty"`

	// Monotonic branch number counter, never reused
	LastBranchNumber int `db:"last_branch_number" json:"last_branch_number"`

	// Optimistic locking version for metahub metadata edits.
	// Branch bookkeeping (counter, default branch) does not bump it.
	Version int64 `db:"version" json:"version"`

	// Audit fields
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	CreatedBy *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	UpdatedBy *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
}
