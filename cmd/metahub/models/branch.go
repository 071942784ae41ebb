package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBranchCodename is used when the initial branch is created without one
const DefaultBranchCodename = "main"

var codenamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,62}$`)

// LocalizedText is a locale-tagged text value with a designated primary locale
// Stored as jsonb
type LocalizedText struct {
	PrimaryLocale string            `json:"primary_locale"`
	Values        map[string]string `json:"values"`
}

// Primary returns the content for the primary locale
func (t LocalizedText) Primary() string {
	return t.Values[t.PrimaryLocale]
}

// Valid reports whether the text carries content for its primary locale
func (t LocalizedText) Valid() bool {
	if t.PrimaryLocale == "" || len(t.Values) == 0 {
		return false
	}
	_, ok := t.Values[t.PrimaryLocale]
	return ok
}

// Branch represents an independently versioned copy of a metahub's metadata,
// backed by its own physical namespace
// Maps to: branch table
type Branch struct {
	ID        uuid.UUID `db:"id" json:"id"`
	MetahubID uuid.UUID `db:"metahub_id" json:"metahub_id"`

	// Machine-friendly identifier, unique among non-deleted branches of a metahub
	Codename string `db:"codename" json:"codename"`

	Name        LocalizedText  `db:"name" json:"name"`
	Description *LocalizedText `db:"description" json:"description,omitempty"`

	// Sequential per metahub, never reused
	BranchNumber int `db:"branch_number" json:"branch_number"`

	// Physical schema backing this branch
	NamespaceName string `db:"namespace_name" json:"namespace_name"`

	// Branch this one was cloned from, nil for the initial branch
	SourceBranchID *uuid.UUID `db:"source_branch_id" json:"source_branch_id,omitempty"`

	// Optimistic locking version, incremented on every metadata save
	Version int64 `db:"version" json:"version"`

	// Audit fields
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	CreatedBy *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	UpdatedBy *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`

	// Soft delete marker, deleted branches keep their number forever
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

// ValidCodename reports whether the codename is acceptable
func ValidCodename(codename string) bool {
	return codenamePattern.MatchString(codename)
}

// NamespaceName derives the physical schema name for a branch:
// mhb_<metahubId-without-separators>_b<branchNumber>
func NamespaceName(metahubID uuid.UUID, branchNumber int) string {
	return fmt.Sprintf("mhb_%s_b%d", strings.ReplaceAll(metahubID.String(), "-", ""), branchNumber)
}

// LineageEntry is one ancestor in a branch's source chain
type LineageEntry struct {
	ID        uuid.UUID     `json:"id"`
	Codename  string        `json:"codename"`
	Name      LocalizedText `json:"name"`
	IsMissing bool          `json:"is_missing,omitempty"`
}

// BranchLineage is the ordered ancestor chain of a branch, nearest first
type BranchLineage struct {
	SourceBranchID *uuid.UUID     `json:"source_branch_id,omitempty"`
	Ancestors      []LineageEntry `json:"ancestors"`
}

// Branch list sort fields
const (
	SortByName     = "name"
	SortByCodename = "codename"
	SortByCreated  = "created"
	SortByUpdated  = "updated"
)

// BranchListOptions configures branch listing queries
type BranchListOptions struct {
	Limit     int
	Offset    int
	SortBy    string // name, codename, created, updated
	SortOrder string // asc, desc
	Search    string
}

// Sanitize clamps pagination and falls back to defaults for unknown sort inputs
func (o BranchListOptions) Sanitize() BranchListOptions {
	if o.Limit <= 0 || o.Limit > 200 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	switch o.SortBy {
	case SortByName, SortByCodename, SortByCreated, SortByUpdated:
	default:
		o.SortBy = SortByCreated
	}
	switch strings.ToLower(o.SortOrder) {
	case "asc":
		o.SortOrder = "asc"
	case "desc":
		o.SortOrder = "desc"
	default:
		o.SortOrder = "asc"
	}
	return o
}
