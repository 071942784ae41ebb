package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership grants a user access to a metahub and tracks which branch
// they are working against
// Maps to: membership table
type Membership struct {
	MetahubID uuid.UUID `db:"metahub_id" json:"metahub_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Role      string    `db:"role" json:"role"`

	// Branch the user activated, nil means "use the metahub default"
	ActiveBranchID *uuid.UUID `db:"active_branch_id" json:"active_branch_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User is the read-side projection of the platform user directory
// Maps to: platform_user table
type User struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Email    string    `db:"email" json:"email"`
	Nickname string    `db:"nickname" json:"nickname"`
}

// BlockingUser is a membership actively pointing at a branch, decorated
// with directory info for presentation
type BlockingUser struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email,omitempty"`
	Nickname string    `json:"nickname,omitempty"`
}
