package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/metahub-labs/platform/common/cache"
	"github.com/metahub-labs/platform/common/logger"
)

// ResolutionCache accelerates the per-request "which branch is this user on"
// lookup used across the platform. It is a best-effort accelerator: the
// database stays authoritative and every entry is re-derivable, so cache
// failures are logged and swallowed.
type ResolutionCache struct {
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewResolutionCache creates a resolution cache over a generic cache backend
func NewResolutionCache(c cache.Cache, ttl time.Duration, log *logger.Logger) *ResolutionCache {
	return &ResolutionCache{
		cache: c,
		ttl:   ttl,
		log:   log,
	}
}

func defaultBranchKey(metahubID uuid.UUID) string {
	return fmt.Sprintf("resolve:metahub:%s:default", metahubID)
}

func activeBranchKey(metahubID, userID uuid.UUID) string {
	return fmt.Sprintf("resolve:metahub:%s:user:%s:active", metahubID, userID)
}

// GetDefaultBranch returns the cached default branch for a metahub
func (r *ResolutionCache) GetDefaultBranch(ctx context.Context, metahubID uuid.UUID) (uuid.UUID, bool) {
	return r.get(ctx, defaultBranchKey(metahubID))
}

// SetDefaultBranch caches the default branch for a metahub
func (r *ResolutionCache) SetDefaultBranch(ctx context.Context, metahubID, branchID uuid.UUID) {
	r.set(ctx, defaultBranchKey(metahubID), branchID)
}

// InvalidateDefaultBranch drops the default-branch entry for a metahub.
// Every user without an explicit active branch re-resolves on next read.
func (r *ResolutionCache) InvalidateDefaultBranch(ctx context.Context, metahubID uuid.UUID) {
	r.delete(ctx, defaultBranchKey(metahubID))
}

// GetActiveBranch returns the cached active branch for a user in a metahub
func (r *ResolutionCache) GetActiveBranch(ctx context.Context, metahubID, userID uuid.UUID) (uuid.UUID, bool) {
	return r.get(ctx, activeBranchKey(metahubID, userID))
}

// SetActiveBranch caches the active branch for a user in a metahub
func (r *ResolutionCache) SetActiveBranch(ctx context.Context, metahubID, userID, branchID uuid.UUID) {
	r.set(ctx, activeBranchKey(metahubID, userID), branchID)
}

// InvalidateActiveBranch drops the active-branch entry for a user
func (r *ResolutionCache) InvalidateActiveBranch(ctx context.Context, metahubID, userID uuid.UUID) {
	r.delete(ctx, activeBranchKey(metahubID, userID))
}

func (r *ResolutionCache) get(ctx context.Context, key string) (uuid.UUID, bool) {
	raw, found, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.Warn("resolution cache read failed", "key", key, "error", err)
		return uuid.Nil, false
	}
	if !found {
		return uuid.Nil, false
	}

	id, err := uuid.ParseBytes(raw)
	if err != nil {
		r.log.Warn("resolution cache entry corrupt", "key", key, "error", err)
		r.delete(ctx, key)
		return uuid.Nil, false
	}

	return id, true
}

func (r *ResolutionCache) set(ctx context.Context, key string, branchID uuid.UUID) {
	if err := r.cache.Set(ctx, key, []byte(branchID.String()), r.ttl); err != nil {
		r.log.Warn("resolution cache write failed", "key", key, "error", err)
	}
}

func (r *ResolutionCache) delete(ctx context.Context, key string) {
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.Warn("resolution cache invalidation failed", "key", key, "error", err)
	}
}
