package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/metahub-labs/platform/cmd/metahub/models"
)

// The branch service depends on narrow store interfaces so tests can
// substitute in-memory fakes. The pgx-backed implementations live in the
// repository package. Methods taking a pgx.Tx run inside the caller's
// transaction; methods without one run on the pool.

// TxBeginner starts database transactions
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// MetahubStore is branch-relevant access to metahub rows
type MetahubStore interface {
	Insert(ctx context.Context, m *models.Metahub) error
	Get(ctx context.Context, id uuid.UUID) (*models.Metahub, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Metahub, error)
	SetLastBranchNumber(ctx context.Context, tx pgx.Tx, id uuid.UUID, lastBranchNumber int) error
	SetDefaultBranch(ctx context.Context, id, branchID uuid.UUID) error
	SetDefaultBranchTx(ctx context.Context, tx pgx.Tx, id, branchID uuid.UUID) error
}

// BranchStore is CRUD over branch metadata rows
type BranchStore interface {
	Insert(ctx context.Context, tx pgx.Tx, b *models.Branch) error
	Get(ctx context.Context, metahubID, branchID uuid.UUID) (*models.Branch, error)
	GetTx(ctx context.Context, tx pgx.Tx, metahubID, branchID uuid.UUID) (*models.Branch, error)
	GetByCodename(ctx context.Context, metahubID uuid.UUID, codename string) (*models.Branch, error)
	Update(ctx context.Context, b *models.Branch, expectedVersion *int64) error
	SoftDelete(ctx context.Context, tx pgx.Tx, metahubID, branchID uuid.UUID) error
	List(ctx context.Context, metahubID uuid.UUID, opts models.BranchListOptions) ([]*models.Branch, int, error)
}

// MembershipStore tracks per-user metahub access and active branches
type MembershipStore interface {
	Get(ctx context.Context, metahubID, userID uuid.UUID) (*models.Membership, error)
	Insert(ctx context.Context, m *models.Membership) error
	SetActiveBranch(ctx context.Context, metahubID, userID uuid.UUID, branchID *uuid.UUID) error
	ClearActiveBranch(ctx context.Context, tx pgx.Tx, metahubID, userID, branchID uuid.UUID) error
	ListActiveOnBranch(ctx context.Context, metahubID, branchID uuid.UUID, excludeUserID *uuid.UUID) ([]*models.Membership, error)
}

// UserDirectory decorates user ids with directory info
type UserDirectory interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

// SchemaManager provisions, drops and clones physical branch namespaces
type SchemaManager interface {
	CreateNamespace(ctx context.Context, name string) error
	DropNamespace(ctx context.Context, name string) error
	CloneSystemTables(ctx context.Context, tx pgx.Tx, sourceNamespace, targetNamespace string, actorID *uuid.UUID) error
}

// Locker is non-blocking distributed mutual exclusion per metahub
type Locker interface {
	TryLock(ctx context.Context, metahubID uuid.UUID) (release func(context.Context), acquired bool, err error)
}
