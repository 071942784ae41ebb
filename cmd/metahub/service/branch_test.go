package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/metahub-labs/platform/cmd/metahub/models"
	"github.com/metahub-labs/platform/common/apperr"
	"github.com/metahub-labs/platform/common/cache"
	"github.com/metahub-labs/platform/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, store *fakeStore) *BranchService {
	t.Helper()
	log := logger.New("error", "text")
	mem := cache.NewMemoryCache(log)
	t.Cleanup(func() { _ = mem.Close() })
	resolution := NewResolutionCache(mem, time.Minute, log)
	events := NewEventPublisher(nil, nil, log)
	return NewBranchService(
		store,
		metahubStoreView{store},
		branchStoreView{store},
		membershipStoreView{store},
		store,
		store,
		store,
		resolution,
		events,
		log,
	)
}

func TestCreateInitialBranch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 0)
	svc := newTestService(t, store)

	creator := uuid.New()
	branch, err := svc.CreateInitialBranch(ctx, &CreateInitialBranchRequest{
		MetahubID: metahub.ID,
		Name:      text("Main"),
		CreatedBy: &creator,
	})
	require.NoError(t, err)

	assert.Equal(t, models.DefaultBranchCodename, branch.Codename)
	assert.Equal(t, 1, branch.BranchNumber)
	assert.Equal(t, models.NamespaceName(metahub.ID, 1), branch.NamespaceName)
	assert.True(t, store.namespaces[branch.NamespaceName])

	stored := store.metahubs[metahub.ID]
	require.NotNil(t, stored.DefaultBranchID)
	assert.Equal(t, branch.ID, *stored.DefaultBranchID)
	assert.Equal(t, 1, stored.LastBranchNumber)

	// Resolution for a user without an explicit active branch hits the
	// freshly cached default
	resolved, err := svc.ResolveActiveBranch(ctx, metahub.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, branch.ID, resolved)
}

func TestCreateInitialBranchAlreadyConfigured(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	existing := uuid.New()
	metahub := store.addMetahub(&existing, 1)
	svc := newTestService(t, store)

	_, err := svc.CreateInitialBranch(ctx, &CreateInitialBranchRequest{
		MetahubID: metahub.ID,
		Name:      text("Main"),
	})
	require.True(t, apperr.IsCode(err, apperr.CodeDefaultBranchExists))
	assert.Equal(t, existing.String(), apperr.DetailsOf(err)["default_branch_id"])
}

func TestCreateInitialBranchMetahubMissing(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, err := svc.CreateInitialBranch(context.Background(), &CreateInitialBranchRequest{
		MetahubID: uuid.New(),
		Name:      text("Main"),
	})
	require.True(t, apperr.IsCode(err, apperr.CodeMetahubNotFound))
}

func TestCreateInitialBranchProvisionFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 0)
	store.failCreateNamespace = errors.New("out of disk")
	svc := newTestService(t, store)

	_, err := svc.CreateInitialBranch(ctx, &CreateInitialBranchRequest{
		MetahubID: metahub.ID,
		Name:      text("Main"),
	})
	require.Error(t, err)

	// Nothing was persisted and nothing needed compensating
	assert.Empty(t, store.branches)
	assert.Empty(t, store.drops)
	assert.Nil(t, store.metahubs[metahub.ID].DefaultBranchID)
}

func TestCreateInitialBranchPersistFailureDropsNamespace(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 0)
	store.failInsertBranch = errors.New("connection reset")
	svc := newTestService(t, store)

	_, err := svc.CreateInitialBranch(ctx, &CreateInitialBranchRequest{
		MetahubID: metahub.ID,
		Name:      text("Main"),
	})
	require.Error(t, err)

	namespace := models.NamespaceName(metahub.ID, 1)
	require.Len(t, store.drops, 1)
	assert.Equal(t, namespace, store.drops[0])
	assert.False(t, store.namespaces[namespace])
}

func TestCreateBranchSequentialNumbering(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 0)
	main := store.addBranch(metahub.ID, "main", 1, nil)
	store.metahubs[metahub.ID].DefaultBranchID = &main.ID
	store.metahubs[metahub.ID].LastBranchNumber = 1
	svc := newTestService(t, store)

	first, err := svc.CreateBranch(ctx, &CreateBranchRequest{
		MetahubID: metahub.ID,
		Codename:  "feature-a",
		Name:      text("Feature A"),
	})
	require.NoError(t, err)
	second, err := svc.CreateBranch(ctx, &CreateBranchRequest{
		MetahubID: metahub.ID,
		Codename:  "feature-b",
		Name:      text("Feature B"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, first.BranchNumber)
	assert.Equal(t, 3, second.BranchNumber)
	assert.Equal(t, 3, store.metahubs[metahub.ID].LastBranchNumber)
	assert.NotEqual(t, first.NamespaceName, second.NamespaceName)
	assert.False(t, store.lockHeld)
}

func TestCreateBranchLockContention(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	store.lockHeld = true
	svc := newTestService(t, store)

	_, err := svc.CreateBranch(ctx, &CreateBranchRequest{
		MetahubID: metahub.ID,
		Codename:  "feature",
		Name:      text("Feature"),
	})
	require.True(t, apperr.IsCode(err, apperr.CodeCreationInProgress))
	assert.True(t, apperr.Retryable(err))
	// No provisioning happened behind the contended lock
	assert.Empty(t, store.namespaces)
}

func TestCreateBranchSourceNotFound(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	svc := newTestService(t, store)

	missing := uuid.New()
	_, err := svc.CreateBranch(ctx, &CreateBranchRequest{
		MetahubID:      metahub.ID,
		Codename:       "feature",
		Name:           text("Feature"),
		SourceBranchID: &missing,
	})
	require.True(t, apperr.IsCode(err, apperr.CodeSourceBranchNotFound))

	// The source check precedes provisioning, so no namespace ever existed
	assert.Empty(t, store.namespaces)
	assert.Empty(t, store.drops)
	assert.False(t, store.lockHeld)
}

func TestCreateBranchClonesFromSource(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	source := store.addBranch(metahub.ID, "main", 1, nil)
	svc := newTestService(t, store)

	creator := uuid.New()
	branch, err := svc.CreateBranch(ctx, &CreateBranchRequest{
		MetahubID:      metahub.ID,
		Codename:       "feature",
		Name:           text("Feature"),
		SourceBranchID: &source.ID,
		CreatedBy:      &creator,
	})
	require.NoError(t, err)

	require.Len(t, store.clones, 1)
	assert.Equal(t, source.NamespaceName, store.clones[0].source)
	assert.Equal(t, branch.NamespaceName, store.clones[0].target)
	require.NotNil(t, store.clones[0].actor)
	assert.Equal(t, creator, *store.clones[0].actor)
	require.NotNil(t, branch.SourceBranchID)
	assert.Equal(t, source.ID, *branch.SourceBranchID)
}

func TestCreateBranchCloneFailureCompensates(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	source := store.addBranch(metahub.ID, "main", 1, nil)
	store.failClone = errors.New("clone failed")
	svc := newTestService(t, store)

	_, err := svc.CreateBranch(ctx, &CreateBranchRequest{
		MetahubID:      metahub.ID,
		Codename:       "feature",
		Name:           text("Feature"),
		SourceBranchID: &source.ID,
	})
	require.Error(t, err)

	namespace := models.NamespaceName(metahub.ID, 2)
	require.Len(t, store.drops, 1)
	assert.Equal(t, namespace, store.drops[0])
	assert.True(t, store.lastTx.rolledBack)
	assert.False(t, store.lockHeld)
}

func TestCreateBranchCommitFailureCompensates(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	store.commitErr = errors.New("commit failed")
	svc := newTestService(t, store)

	_, err := svc.CreateBranch(ctx, &CreateBranchRequest{
		MetahubID: metahub.ID,
		Codename:  "feature",
		Name:      text("Feature"),
	})
	require.Error(t, err)
	require.Len(t, store.drops, 1)
	assert.Equal(t, models.NamespaceName(metahub.ID, 2), store.drops[0])
}

func TestCreateBranchInvalidCodename(t *testing.T) {
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	svc := newTestService(t, store)

	for _, codename := range []string{"", "Feature", "-leading", "has space", ".dot"} {
		_, err := svc.CreateBranch(context.Background(), &CreateBranchRequest{
			MetahubID: metahub.ID,
			Codename:  codename,
			Name:      text("Feature"),
		})
		assert.True(t, apperr.IsCode(err, apperr.CodeValidation), "codename %q should be rejected", codename)
	}
}

func TestUpdateBranch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	branch := store.addBranch(metahub.ID, "main", 1, nil)
	svc := newTestService(t, store)

	codename := "trunk"
	name := text("Trunk")
	updater := uuid.New()
	updated, err := svc.UpdateBranch(ctx, &UpdateBranchRequest{
		MetahubID: metahub.ID,
		BranchID:  branch.ID,
		Codename:  &codename,
		Name:      &name,
		UpdatedBy: &updater,
	})
	require.NoError(t, err)

	assert.Equal(t, "trunk", updated.Codename)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "trunk", store.branches[branch.ID].Codename)
}

func TestUpdateBranchStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	branch := store.addBranch(metahub.ID, "main", 1, nil)
	store.branches[branch.ID].Version = 4
	svc := newTestService(t, store)

	codename := "trunk"
	stale := int64(3)
	_, err := svc.UpdateBranch(ctx, &UpdateBranchRequest{
		MetahubID:       metahub.ID,
		BranchID:        branch.ID,
		Codename:        &codename,
		ExpectedVersion: &stale,
	})
	require.True(t, apperr.IsCode(err, apperr.CodeOptimisticLockMismatch))

	details := apperr.DetailsOf(err)
	assert.Equal(t, int64(3), details["expected_version"])
	assert.Equal(t, int64(4), details["actual_version"])
	assert.Equal(t, "branch", details["entity_type"])

	// The edit never reached the store
	assert.Equal(t, "main", store.branches[branch.ID].Codename)
	assert.Equal(t, int64(4), store.branches[branch.ID].Version)
}

func TestUpdateBranchConcurrentWriter(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	branch := store.addBranch(metahub.ID, "main", 1, nil)
	svc := newTestService(t, store)

	// A writer lands between the service's read and its save, bumping the
	// version. The stale edit must still fail at the store instead of
	// overwriting the interleaved change.
	store.afterBranchGet = func() {
		b := store.branches[branch.ID]
		b.Codename = "renamed"
		b.Version = 2
	}

	codename := "trunk"
	stale := int64(1)
	_, err := svc.UpdateBranch(ctx, &UpdateBranchRequest{
		MetahubID:       metahub.ID,
		BranchID:        branch.ID,
		Codename:        &codename,
		ExpectedVersion: &stale,
	})
	require.True(t, apperr.IsCode(err, apperr.CodeOptimisticLockMismatch))

	details := apperr.DetailsOf(err)
	assert.Equal(t, int64(1), details["expected_version"])
	assert.Equal(t, int64(2), details["actual_version"])

	// The interleaved change survives untouched
	assert.Equal(t, "renamed", store.branches[branch.ID].Codename)
	assert.Equal(t, int64(2), store.branches[branch.ID].Version)
}

func TestUpdateBranchCodenameTaken(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 2)
	store.addBranch(metahub.ID, "main", 1, nil)
	branch := store.addBranch(metahub.ID, "feature", 2, nil)
	svc := newTestService(t, store)

	codename := "main"
	_, err := svc.UpdateBranch(ctx, &UpdateBranchRequest{
		MetahubID: metahub.ID,
		BranchID:  branch.ID,
		Codename:  &codename,
	})
	require.True(t, apperr.IsCode(err, apperr.CodeCodenameExists))
	assert.Equal(t, "feature", store.branches[branch.ID].Codename)
}

func TestUpdateBranchSameCodenameNoConflict(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	branch := store.addBranch(metahub.ID, "main", 1, nil)
	svc := newTestService(t, store)

	codename := "main"
	desc := text("the trunk")
	updated, err := svc.UpdateBranch(ctx, &UpdateBranchRequest{
		MetahubID:   metahub.ID,
		BranchID:    branch.ID,
		Codename:    &codename,
		Description: &desc,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "the trunk", updated.Description.Primary())
}

func TestActivateBranch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	branch := store.addBranch(metahub.ID, "main", 1, nil)
	userID := uuid.New()
	store.addMembership(metahub.ID, userID, nil)
	svc := newTestService(t, store)

	require.NoError(t, svc.ActivateBranch(ctx, metahub.ID, branch.ID, userID))

	m := store.memberships[memKey(metahub.ID, userID)]
	require.NotNil(t, m.ActiveBranchID)
	assert.Equal(t, branch.ID, *m.ActiveBranchID)

	resolved, err := svc.ResolveActiveBranch(ctx, metahub.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, branch.ID, resolved)
}

func TestActivateBranchNoMembership(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	branch := store.addBranch(metahub.ID, "main", 1, nil)
	svc := newTestService(t, store)

	err := svc.ActivateBranch(ctx, metahub.ID, branch.ID, uuid.New())
	require.True(t, apperr.IsCode(err, apperr.CodeMembershipNotFound))
}

func TestActivateBranchMissingBranch(t *testing.T) {
	store := newFakeStore()
	metahub := store.addMetahub(nil, 0)
	svc := newTestService(t, store)

	err := svc.ActivateBranch(context.Background(), metahub.ID, uuid.New(), uuid.New())
	require.True(t, apperr.IsCode(err, apperr.CodeBranchNotFound))
}

func TestSetDefaultBranchInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 2)
	main := store.addBranch(metahub.ID, "main", 1, nil)
	other := store.addBranch(metahub.ID, "other", 2, nil)
	store.metahubs[metahub.ID].DefaultBranchID = &main.ID
	svc := newTestService(t, store)

	// Warm the cache with the old default, then flip it
	svc.resolution.SetDefaultBranch(ctx, metahub.ID, main.ID)
	require.NoError(t, svc.SetDefaultBranch(ctx, metahub.ID, other.ID))

	_, cached := svc.resolution.GetDefaultBranch(ctx, metahub.ID)
	assert.False(t, cached)
	require.NotNil(t, store.metahubs[metahub.ID].DefaultBranchID)
	assert.Equal(t, other.ID, *store.metahubs[metahub.ID].DefaultBranchID)

	// A redesignation of the current default still invalidates
	svc.resolution.SetDefaultBranch(ctx, metahub.ID, main.ID)
	require.NoError(t, svc.SetDefaultBranch(ctx, metahub.ID, other.ID))
	_, cached = svc.resolution.GetDefaultBranch(ctx, metahub.ID)
	assert.False(t, cached)
}

func TestResolveActiveBranchPrefersMembership(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 2)
	main := store.addBranch(metahub.ID, "main", 1, nil)
	feature := store.addBranch(metahub.ID, "feature", 2, nil)
	store.metahubs[metahub.ID].DefaultBranchID = &main.ID
	userID := uuid.New()
	store.addMembership(metahub.ID, userID, &feature.ID)
	svc := newTestService(t, store)

	resolved, err := svc.ResolveActiveBranch(ctx, metahub.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, feature.ID, resolved)

	// A user without a membership falls back to the default
	resolved, err = svc.ResolveActiveBranch(ctx, metahub.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, main.ID, resolved)
}

func TestResolveActiveBranchNoDefault(t *testing.T) {
	store := newFakeStore()
	metahub := store.addMetahub(nil, 0)
	svc := newTestService(t, store)

	resolved, err := svc.ResolveActiveBranch(context.Background(), metahub.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, resolved)
}

func TestGetBlockingUsers(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	branch := store.addBranch(metahub.ID, "main", 1, nil)
	requester := uuid.New()
	blocker := uuid.New()
	store.addMembership(metahub.ID, requester, &branch.ID)
	store.addMembership(metahub.ID, blocker, &branch.ID)
	store.users[blocker] = &models.User{ID: blocker, Email: "dana@example.com", Nickname: "dana"}
	svc := newTestService(t, store)

	blockers, err := svc.GetBlockingUsers(ctx, metahub.ID, branch.ID, &requester)
	require.NoError(t, err)
	require.Len(t, blockers, 1)
	assert.Equal(t, blocker, blockers[0].UserID)
	assert.Equal(t, "dana@example.com", blockers[0].Email)
	assert.Equal(t, "dana", blockers[0].Nickname)
}

func TestDeleteBranch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 2)
	main := store.addBranch(metahub.ID, "main", 1, nil)
	feature := store.addBranch(metahub.ID, "feature", 2, nil)
	store.metahubs[metahub.ID].DefaultBranchID = &main.ID
	requester := uuid.New()
	store.addMembership(metahub.ID, requester, &feature.ID)
	svc := newTestService(t, store)

	require.NoError(t, svc.DeleteBranch(ctx, metahub.ID, feature.ID, requester))

	assert.NotNil(t, store.branches[feature.ID].DeletedAt)
	assert.Nil(t, store.memberships[memKey(metahub.ID, requester)].ActiveBranchID)
	require.Len(t, store.drops, 1)
	assert.Equal(t, feature.NamespaceName, store.drops[0])
	assert.False(t, store.lockHeld)
}

func TestDeleteBranchDefaultRefused(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	main := store.addBranch(metahub.ID, "main", 1, nil)
	store.metahubs[metahub.ID].DefaultBranchID = &main.ID
	svc := newTestService(t, store)

	err := svc.DeleteBranch(ctx, metahub.ID, main.ID, uuid.New())
	require.True(t, apperr.IsCode(err, apperr.CodeDefaultBranchDelete))
	assert.Nil(t, store.branches[main.ID].DeletedAt)
	assert.Empty(t, store.drops)
}

func TestDeleteBranchBlockedByOtherUsers(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 2)
	main := store.addBranch(metahub.ID, "main", 1, nil)
	feature := store.addBranch(metahub.ID, "feature", 2, nil)
	store.metahubs[metahub.ID].DefaultBranchID = &main.ID
	requester := uuid.New()
	other := uuid.New()
	store.addMembership(metahub.ID, requester, &feature.ID)
	store.addMembership(metahub.ID, other, &feature.ID)
	svc := newTestService(t, store)

	err := svc.DeleteBranch(ctx, metahub.ID, feature.ID, requester)
	require.True(t, apperr.IsCode(err, apperr.CodeBranchActiveForOtherUsers))

	blockers, ok := apperr.DetailsOf(err)["blocking_users"].([]models.BlockingUser)
	require.True(t, ok)
	require.Len(t, blockers, 1)
	assert.Equal(t, other, blockers[0].UserID)

	assert.Nil(t, store.branches[feature.ID].DeletedAt)
	assert.Empty(t, store.drops)
	assert.False(t, store.lockHeld)
}

func TestDeleteBranchLockContention(t *testing.T) {
	store := newFakeStore()
	metahub := store.addMetahub(nil, 1)
	branch := store.addBranch(metahub.ID, "feature", 1, nil)
	store.lockHeld = true
	svc := newTestService(t, store)

	err := svc.DeleteBranch(context.Background(), metahub.ID, branch.ID, uuid.New())
	require.True(t, apperr.IsCode(err, apperr.CodeDeletionInProgress))
	assert.True(t, apperr.Retryable(err))
}

func TestDeleteBranchDropFailureKeepsMetadataDeleted(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 2)
	main := store.addBranch(metahub.ID, "main", 1, nil)
	feature := store.addBranch(metahub.ID, "feature", 2, nil)
	store.metahubs[metahub.ID].DefaultBranchID = &main.ID
	store.failDrop = errors.New("schema busy")
	svc := newTestService(t, store)

	// The metadata deletion is authoritative even when the physical drop fails
	require.NoError(t, svc.DeleteBranch(ctx, metahub.ID, feature.ID, uuid.New()))
	assert.NotNil(t, store.branches[feature.ID].DeletedAt)
	assert.True(t, store.namespaces[feature.NamespaceName])
}

func TestListBranches(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 2)
	main := store.addBranch(metahub.ID, "main", 1, nil)
	feature := store.addBranch(metahub.ID, "feature", 2, nil)
	store.metahubs[metahub.ID].DefaultBranchID = &main.ID
	userID := uuid.New()
	store.addMembership(metahub.ID, userID, &feature.ID)
	svc := newTestService(t, store)

	result, err := svc.ListBranches(ctx, metahub.ID, models.BranchListOptions{}, &userID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Len(t, result.Items, 2)
	require.NotNil(t, result.DefaultBranchID)
	assert.Equal(t, main.ID, *result.DefaultBranchID)
	require.NotNil(t, result.ActiveBranchID)
	assert.Equal(t, feature.ID, *result.ActiveBranchID)
}

func TestBranchOptionsReturnsAllBranches(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	metahub := store.addMetahub(nil, 0)
	// More branches than one page, so the options path must page internally
	for i := 1; i <= 250; i++ {
		store.addBranch(metahub.ID, fmt.Sprintf("branch-%d", i), i, nil)
	}
	store.metahubs[metahub.ID].LastBranchNumber = 250
	svc := newTestService(t, store)

	result, err := svc.BranchOptions(ctx, metahub.ID, models.BranchListOptions{}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Items, 250)
	assert.Equal(t, 250, result.Total)

	seen := make(map[int]bool)
	for _, b := range result.Items {
		seen[b.BranchNumber] = true
	}
	assert.Len(t, seen, 250)
}

func TestListBranchesMetahubMissing(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, err := svc.ListBranches(context.Background(), uuid.New(), models.BranchListOptions{}, nil)
	require.True(t, apperr.IsCode(err, apperr.CodeMetahubNotFound))
}
