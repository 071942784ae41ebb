package repository

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/metahub-labs/platform/common/db"
	"github.com/metahub-labs/platform/common/logger"
)

// LockRepository implements distributed mutual exclusion with Postgres
// session-level advisory locks. The lock spans the whole create/delete saga,
// including DDL that runs outside the metadata transaction, so it is held on
// a pinned connection rather than scoped to a transaction.
type LockRepository struct {
	db  *db.DB
	log *logger.Logger
}

// NewLockRepository creates a new lock repository
func NewLockRepository(db *db.DB, log *logger.Logger) *LockRepository {
	return &LockRepository{db: db, log: log}
}

// LockKey derives the deterministic advisory lock key for a metahub
func LockKey(metahubID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(metahubID[:])
	return int64(h.Sum64())
}

// TryLock attempts a non-blocking acquire of the metahub lock. It never waits:
// the bool result reports whether the lock was obtained. On success the
// returned release function must be called exactly once.
func (r *LockRepository) TryLock(ctx context.Context, metahubID uuid.UUID) (func(context.Context), bool, error) {
	key := LockKey(metahubID)

	// The lock is bound to a database session, so pin a connection for its
	// whole lifetime.
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection for lock: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	release := func(ctx context.Context) {
		defer conn.Release()
		var unlocked bool
		if err := conn.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&unlocked); err != nil {
			r.log.Error("failed to release advisory lock", "metahub_id", metahubID, "error", err)
			return
		}
		if !unlocked {
			r.log.Warn("advisory lock was not held at release", "metahub_id", metahubID)
		}
	}

	return release, true, nil
}
