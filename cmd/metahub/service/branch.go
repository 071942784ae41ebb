package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/metahub-labs/platform/cmd/metahub/models"
	"github.com/metahub-labs/platform/common/apperr"
	"github.com/metahub-labs/platform/common/logger"
)

// BranchService orchestrates the branch lifecycle: creation with exactly-once
// namespace provisioning, optimistic metadata edits, per-user activation,
// default designation and guarded deletion.
type BranchService struct {
	txs         TxBeginner
	metahubs    MetahubStore
	branches    BranchStore
	memberships MembershipStore
	users       UserDirectory
	schemas     SchemaManager
	locks       Locker
	resolution  *ResolutionCache
	events      *EventPublisher
	log         *logger.Logger
}

// NewBranchService creates a new branch service
func NewBranchService(
	txs TxBeginner,
	metahubs MetahubStore,
	branches BranchStore,
	memberships MembershipStore,
	users UserDirectory,
	schemas SchemaManager,
	locks Locker,
	resolution *ResolutionCache,
	events *EventPublisher,
	log *logger.Logger,
) *BranchService {
	return &BranchService{
		txs:         txs,
		metahubs:    metahubs,
		branches:    branches,
		memberships: memberships,
		users:       users,
		schemas:     schemas,
		locks:       locks,
		resolution:  resolution,
		events:      events,
		log:         log,
	}
}

// CreateInitialBranchRequest is the input for the once-per-metahub first branch
type CreateInitialBranchRequest struct {
	MetahubID   uuid.UUID
	Codename    string // defaults to "main"
	Name        models.LocalizedText
	Description *models.LocalizedText
	CreatedBy   *uuid.UUID
}

// CreateBranchRequest is the input for any subsequent branch
type CreateBranchRequest struct {
	MetahubID      uuid.UUID
	Codename       string
	Name           models.LocalizedText
	Description    *models.LocalizedText
	SourceBranchID *uuid.UUID
	CreatedBy      *uuid.UUID
}

// UpdateBranchRequest carries the optional branch metadata edits
type UpdateBranchRequest struct {
	MetahubID       uuid.UUID
	BranchID        uuid.UUID
	Codename        *string
	Name            *models.LocalizedText
	Description     *models.LocalizedText
	ExpectedVersion *int64
	UpdatedBy       *uuid.UUID
}

// BranchListResult carries a page of branches plus the resolution metadata
// selector UIs need
type BranchListResult struct {
	Items           []*models.Branch
	Total           int
	DefaultBranchID *uuid.UUID
	ActiveBranchID  *uuid.UUID
}

// CreateInitialBranch creates the very first branch of a metahub, numbered 1,
// and designates it the default. Strictly once per metahub.
func (s *BranchService) CreateInitialBranch(ctx context.Context, req *CreateInitialBranchRequest) (*models.Branch, error) {
	codename := req.Codename
	if codename == "" {
		codename = models.DefaultBranchCodename
	}
	if err := validateBranchFields(codename, &req.Name); err != nil {
		return nil, err
	}

	metahub, err := s.metahubs.Get(ctx, req.MetahubID)
	if err != nil {
		return nil, fmt.Errorf("failed to load metahub: %w", err)
	}
	if metahub == nil {
		return nil, apperr.Newf(apperr.CodeMetahubNotFound, "metahub not found: %s", req.MetahubID)
	}
	if metahub.DefaultBranchID != nil {
		return nil, apperr.New(apperr.CodeDefaultBranchExists, "default branch already configured").
			WithDetail("default_branch_id", metahub.DefaultBranchID.String())
	}

	const initialNumber = 1
	namespace := models.NamespaceName(req.MetahubID, initialNumber)

	// Nothing is persisted yet, so a provisioning failure needs no compensation
	if err := s.schemas.CreateNamespace(ctx, namespace); err != nil {
		return nil, fmt.Errorf("failed to provision namespace: %w", err)
	}

	branch := &models.Branch{
		ID:            uuid.New(),
		MetahubID:     req.MetahubID,
		Codename:      codename,
		Name:          req.Name,
		Description:   req.Description,
		BranchNumber:  initialNumber,
		NamespaceName: namespace,
		Version:       1,
		CreatedBy:     req.CreatedBy,
		UpdatedBy:     req.CreatedBy,
	}

	if err := s.persistInitialBranch(ctx, branch); err != nil {
		// The namespace exists but the row does not: drop it before propagating
		s.compensateNamespaceDrop(ctx, namespace, req.MetahubID)
		return nil, err
	}

	s.resolution.SetDefaultBranch(ctx, req.MetahubID, branch.ID)
	s.events.Publish(ctx, EventBranchCreated, map[string]any{
		"metahub_id":    req.MetahubID.String(),
		"branch_id":     branch.ID.String(),
		"branch_number": branch.BranchNumber,
		"initial":       true,
	})

	s.log.Info("initial branch created",
		"metahub_id", req.MetahubID,
		"branch_id", branch.ID,
		"namespace", namespace,
	)

	return branch, nil
}

func (s *BranchService) persistInitialBranch(ctx context.Context, branch *models.Branch) error {
	tx, err := s.txs.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.branches.Insert(ctx, tx, branch); err != nil {
		return err
	}
	if err := s.metahubs.SetLastBranchNumber(ctx, tx, branch.MetahubID, branch.BranchNumber); err != nil {
		return err
	}
	if err := s.metahubs.SetDefaultBranchTx(ctx, tx, branch.MetahubID, branch.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit initial branch: %w", err)
	}
	return nil
}

// CreateBranch creates a branch, optionally cloned from a source branch of the
// same metahub. Concurrent creators for one metahub are serialized twice over:
// a non-blocking advisory lock admits a single creator, and the metahub row
// lock inside the transaction protects numbering against anyone who bypassed it.
func (s *BranchService) CreateBranch(ctx context.Context, req *CreateBranchRequest) (*models.Branch, error) {
	if err := validateBranchFields(req.Codename, &req.Name); err != nil {
		return nil, err
	}

	release, acquired, err := s.locks.TryLock(ctx, req.MetahubID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire creation lock: %w", err)
	}
	if !acquired {
		// Fail fast rather than queue: the caller retries
		return nil, apperr.New(apperr.CodeCreationInProgress, "branch creation already in progress").
			WithDetail("metahub_id", req.MetahubID.String())
	}
	defer release(ctx)

	tx, err := s.txs.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	metahub, err := s.metahubs.GetForUpdate(ctx, tx, req.MetahubID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock metahub: %w", err)
	}
	if metahub == nil {
		return nil, apperr.Newf(apperr.CodeMetahubNotFound, "metahub not found: %s", req.MetahubID)
	}

	var source *models.Branch
	if req.SourceBranchID != nil {
		source, err = s.branches.GetTx(ctx, tx, req.MetahubID, *req.SourceBranchID)
		if err != nil {
			return nil, fmt.Errorf("failed to load source branch: %w", err)
		}
		if source == nil {
			return nil, apperr.Newf(apperr.CodeSourceBranchNotFound, "source branch not found: %s", *req.SourceBranchID)
		}
	}

	nextNumber := metahub.LastBranchNumber + 1
	namespace := models.NamespaceName(req.MetahubID, nextNumber)

	if err := s.schemas.CreateNamespace(ctx, namespace); err != nil {
		return nil, fmt.Errorf("failed to provision namespace: %w", err)
	}

	branch := &models.Branch{
		ID:             uuid.New(),
		MetahubID:      req.MetahubID,
		Codename:       req.Codename,
		Name:           req.Name,
		Description:    req.Description,
		BranchNumber:   nextNumber,
		NamespaceName:  namespace,
		SourceBranchID: req.SourceBranchID,
		Version:        1,
		CreatedBy:      req.CreatedBy,
		UpdatedBy:      req.CreatedBy,
	}

	// The namespace now exists: every failure until commit compensates with a drop
	if err := func() error {
		if source != nil {
			if err := s.schemas.CloneSystemTables(ctx, tx, source.NamespaceName, namespace, req.CreatedBy); err != nil {
				return err
			}
		}
		if err := s.branches.Insert(ctx, tx, branch); err != nil {
			return err
		}
		if err := s.metahubs.SetLastBranchNumber(ctx, tx, req.MetahubID, nextNumber); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit branch creation: %w", err)
		}
		return nil
	}(); err != nil {
		s.compensateNamespaceDrop(ctx, namespace, req.MetahubID)
		return nil, err
	}

	s.events.Publish(ctx, EventBranchCreated, map[string]any{
		"metahub_id":       req.MetahubID.String(),
		"branch_id":        branch.ID.String(),
		"branch_number":    branch.BranchNumber,
		"source_branch_id": optionalID(req.SourceBranchID),
	})

	s.log.Info("branch created",
		"metahub_id", req.MetahubID,
		"branch_id", branch.ID,
		"branch_number", nextNumber,
		"namespace", namespace,
		"cloned", source != nil,
	)

	return branch, nil
}

// UpdateBranch applies codename/name/description edits with optional
// optimistic-version gating
func (s *BranchService) UpdateBranch(ctx context.Context, req *UpdateBranchRequest) (*models.Branch, error) {
	branch, err := s.branches.Get(ctx, req.MetahubID, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return nil, apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", req.BranchID)
	}

	if req.ExpectedVersion != nil && *req.ExpectedVersion != branch.Version {
		return nil, apperr.VersionConflict("branch", branch.ID, *req.ExpectedVersion, branch.Version, branch.UpdatedAt, branch.UpdatedBy)
	}

	if req.Codename != nil && *req.Codename != branch.Codename {
		if !models.ValidCodename(*req.Codename) {
			return nil, apperr.Newf(apperr.CodeValidation, "invalid codename: %s", *req.Codename)
		}
		existing, err := s.branches.GetByCodename(ctx, req.MetahubID, *req.Codename)
		if err != nil {
			return nil, fmt.Errorf("failed to check codename uniqueness: %w", err)
		}
		if existing != nil && existing.ID != branch.ID {
			return nil, apperr.Newf(apperr.CodeCodenameExists, "branch codename already in use: %s", *req.Codename).
				WithDetail("branch_id", existing.ID.String())
		}
		branch.Codename = *req.Codename
	}

	if req.Name != nil {
		if !req.Name.Valid() {
			return nil, apperr.New(apperr.CodeValidation, "name must carry content for its primary locale")
		}
		branch.Name = *req.Name
	}
	if req.Description != nil {
		branch.Description = req.Description
	}
	branch.UpdatedBy = req.UpdatedBy

	// The store bumps the version counter on every successful save. The
	// expected version travels down so the gate is the row's own version at
	// save time, not the one read above: a writer landing in between still
	// fails with a conflict.
	if err := s.branches.Update(ctx, branch, req.ExpectedVersion); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, EventBranchUpdated, map[string]any{
		"metahub_id": req.MetahubID.String(),
		"branch_id":  branch.ID.String(),
		"version":    branch.Version,
	})

	return branch, nil
}

// ActivateBranch points a user's membership at a branch and refreshes the
// resolution cache so subsequent per-branch requests skip the store
func (s *BranchService) ActivateBranch(ctx context.Context, metahubID, branchID, userID uuid.UUID) error {
	branch, err := s.branches.Get(ctx, metahubID, branchID)
	if err != nil {
		return fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", branchID)
	}

	membership, err := s.memberships.Get(ctx, metahubID, userID)
	if err != nil {
		return fmt.Errorf("failed to load membership: %w", err)
	}
	if membership == nil {
		return apperr.Newf(apperr.CodeMembershipNotFound, "no membership for user %s in metahub %s", userID, metahubID)
	}

	if err := s.memberships.SetActiveBranch(ctx, metahubID, userID, &branchID); err != nil {
		return err
	}

	s.resolution.SetActiveBranch(ctx, metahubID, userID, branchID)
	s.events.Publish(ctx, EventBranchActivated, map[string]any{
		"metahub_id": metahubID.String(),
		"branch_id":  branchID.String(),
		"user_id":    userID.String(),
	})

	return nil
}

// SetDefaultBranch designates the metahub-wide default branch. A no-op
// designation still invalidates the resolution cache.
func (s *BranchService) SetDefaultBranch(ctx context.Context, metahubID, branchID uuid.UUID) error {
	branch, err := s.branches.Get(ctx, metahubID, branchID)
	if err != nil {
		return fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", branchID)
	}

	if err := s.metahubs.SetDefaultBranch(ctx, metahubID, branchID); err != nil {
		return err
	}

	s.resolution.InvalidateDefaultBranch(ctx, metahubID)
	s.events.Publish(ctx, EventBranchDefaultChanged, map[string]any{
		"metahub_id": metahubID.String(),
		"branch_id":  branchID.String(),
	})

	s.log.Info("default branch changed", "metahub_id", metahubID, "branch_id", branchID)
	return nil
}

// GetBranch returns a branch with its lineage
func (s *BranchService) GetBranch(ctx context.Context, metahubID, branchID uuid.UUID) (*models.Branch, *models.BranchLineage, error) {
	branch, err := s.branches.Get(ctx, metahubID, branchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return nil, nil, apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", branchID)
	}

	lineage, err := s.lineageOf(ctx, branch)
	if err != nil {
		return nil, nil, err
	}

	return branch, lineage, nil
}

// GetBranchLineage walks the source-branch chain of a branch, nearest ancestor
// first. A missing ancestor truncates the chain with an is_missing marker; a
// repeated id halts the walk silently so a cycle can never hang it.
func (s *BranchService) GetBranchLineage(ctx context.Context, metahubID, branchID uuid.UUID) (*models.BranchLineage, error) {
	branch, err := s.branches.Get(ctx, metahubID, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return nil, apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", branchID)
	}

	return s.lineageOf(ctx, branch)
}

func (s *BranchService) lineageOf(ctx context.Context, branch *models.Branch) (*models.BranchLineage, error) {
	lineage := &models.BranchLineage{
		SourceBranchID: branch.SourceBranchID,
		Ancestors:      []models.LineageEntry{},
	}

	visited := map[uuid.UUID]bool{branch.ID: true}

	current := branch.SourceBranchID
	for current != nil {
		if visited[*current] {
			// Cycles should never exist by construction, halt silently
			s.log.Warn("lineage cycle detected", "metahub_id", branch.MetahubID, "branch_id", *current)
			break
		}
		visited[*current] = true

		ancestor, err := s.branches.Get(ctx, branch.MetahubID, *current)
		if err != nil {
			return nil, fmt.Errorf("failed to load ancestor branch: %w", err)
		}
		if ancestor == nil {
			lineage.Ancestors = append(lineage.Ancestors, models.LineageEntry{
				ID:        *current,
				IsMissing: true,
			})
			break
		}

		lineage.Ancestors = append(lineage.Ancestors, models.LineageEntry{
			ID:       ancestor.ID,
			Codename: ancestor.Codename,
			Name:     ancestor.Name,
		})
		current = ancestor.SourceBranchID
	}

	return lineage, nil
}

// ListBranches returns a branch page plus the resolved default/active branch
// ids for the requesting user
func (s *BranchService) ListBranches(ctx context.Context, metahubID uuid.UUID, opts models.BranchListOptions, userID *uuid.UUID) (*BranchListResult, error) {
	metahub, err := s.metahubs.Get(ctx, metahubID)
	if err != nil {
		return nil, fmt.Errorf("failed to load metahub: %w", err)
	}
	if metahub == nil {
		return nil, apperr.Newf(apperr.CodeMetahubNotFound, "metahub not found: %s", metahubID)
	}

	items, total, err := s.branches.List(ctx, metahubID, opts)
	if err != nil {
		return nil, err
	}

	result := &BranchListResult{
		Items:           items,
		Total:           total,
		DefaultBranchID: metahub.DefaultBranchID,
	}
	s.attachResolution(ctx, metahub, result, userID)

	return result, nil
}

// BranchOptions returns every live branch of a metahub for selector UIs,
// paging through the store internally so large metahubs are never truncated
func (s *BranchService) BranchOptions(ctx context.Context, metahubID uuid.UUID, opts models.BranchListOptions, userID *uuid.UUID) (*BranchListResult, error) {
	metahub, err := s.metahubs.Get(ctx, metahubID)
	if err != nil {
		return nil, fmt.Errorf("failed to load metahub: %w", err)
	}
	if metahub == nil {
		return nil, apperr.Newf(apperr.CodeMetahubNotFound, "metahub not found: %s", metahubID)
	}

	opts.Limit = 200
	opts.Offset = 0

	var items []*models.Branch
	for {
		page, total, err := s.branches.List(ctx, metahubID, opts)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		opts.Offset += len(page)
		if len(page) == 0 || opts.Offset >= total {
			break
		}
	}

	result := &BranchListResult{
		Items:           items,
		Total:           len(items),
		DefaultBranchID: metahub.DefaultBranchID,
	}
	s.attachResolution(ctx, metahub, result, userID)

	return result, nil
}

func (s *BranchService) attachResolution(ctx context.Context, metahub *models.Metahub, result *BranchListResult, userID *uuid.UUID) {
	if metahub.DefaultBranchID != nil {
		s.resolution.SetDefaultBranch(ctx, metahub.ID, *metahub.DefaultBranchID)
	}

	if userID != nil {
		activeID, err := s.ResolveActiveBranch(ctx, metahub.ID, *userID)
		if err != nil {
			// Resolution is presentation metadata here, not worth failing the list
			s.log.Warn("failed to resolve active branch", "metahub_id", metahub.ID, "user_id", *userID, "error", err)
		} else if activeID != uuid.Nil {
			result.ActiveBranchID = &activeID
		}
	}
}

// ResolveActiveBranch resolves the branch a user is working against: their
// explicit active branch if set, otherwise the metahub default. This is the
// hot path the resolution cache accelerates.
func (s *BranchService) ResolveActiveBranch(ctx context.Context, metahubID, userID uuid.UUID) (uuid.UUID, error) {
	if id, ok := s.resolution.GetActiveBranch(ctx, metahubID, userID); ok {
		return id, nil
	}

	membership, err := s.memberships.Get(ctx, metahubID, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if membership != nil && membership.ActiveBranchID != nil {
		s.resolution.SetActiveBranch(ctx, metahubID, userID, *membership.ActiveBranchID)
		return *membership.ActiveBranchID, nil
	}

	// Fall back to the metahub default
	if id, ok := s.resolution.GetDefaultBranch(ctx, metahubID); ok {
		return id, nil
	}

	metahub, err := s.metahubs.Get(ctx, metahubID)
	if err != nil {
		return uuid.Nil, err
	}
	if metahub == nil || metahub.DefaultBranchID == nil {
		return uuid.Nil, nil
	}

	s.resolution.SetDefaultBranch(ctx, metahubID, *metahub.DefaultBranchID)
	return *metahub.DefaultBranchID, nil
}

// GetBlockingUsers enumerates users actively working on a branch, excluding
// the given user, decorated with directory info
func (s *BranchService) GetBlockingUsers(ctx context.Context, metahubID, branchID uuid.UUID, excludeUserID *uuid.UUID) ([]models.BlockingUser, error) {
	branch, err := s.branches.Get(ctx, metahubID, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return nil, apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", branchID)
	}

	memberships, err := s.memberships.ListActiveOnBranch(ctx, metahubID, branchID, excludeUserID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}

	directory, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		// Decoration only, an undecorated blocker list is still correct
		s.log.Warn("failed to load user directory entries", "error", err)
		directory = nil
	}

	blockers := make([]models.BlockingUser, 0, len(memberships))
	for _, m := range memberships {
		blocker := models.BlockingUser{UserID: m.UserID}
		if u, ok := directory[m.UserID]; ok {
			blocker.Email = u.Email
			blocker.Nickname = u.Nickname
		}
		blockers = append(blockers, blocker)
	}

	return blockers, nil
}

// DeleteBranch removes a branch, drops its namespace and clears the
// requester's own active-branch pointer. The metahub's current default can
// never be deleted, nor can a branch other users are actively on.
func (s *BranchService) DeleteBranch(ctx context.Context, metahubID, branchID, requestedBy uuid.UUID) error {
	release, acquired, err := s.locks.TryLock(ctx, metahubID)
	if err != nil {
		return fmt.Errorf("failed to acquire deletion lock: %w", err)
	}
	if !acquired {
		return apperr.New(apperr.CodeDeletionInProgress, "branch operation already in progress").
			WithDetail("metahub_id", metahubID.String())
	}
	defer release(ctx)

	metahub, err := s.metahubs.Get(ctx, metahubID)
	if err != nil {
		return fmt.Errorf("failed to load metahub: %w", err)
	}
	if metahub == nil {
		return apperr.Newf(apperr.CodeMetahubNotFound, "metahub not found: %s", metahubID)
	}

	branch, err := s.branches.Get(ctx, metahubID, branchID)
	if err != nil {
		return fmt.Errorf("failed to load branch: %w", err)
	}
	if branch == nil {
		return apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", branchID)
	}

	if metahub.DefaultBranchID != nil && *metahub.DefaultBranchID == branchID {
		return apperr.New(apperr.CodeDefaultBranchDelete, "default branch cannot be deleted")
	}

	blockers, err := s.GetBlockingUsers(ctx, metahubID, branchID, &requestedBy)
	if err != nil {
		return err
	}
	if len(blockers) > 0 {
		return apperr.New(apperr.CodeBranchActiveForOtherUsers, "branch is active for other users").
			WithDetail("blocking_users", blockers)
	}

	tx, err := s.txs.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.memberships.ClearActiveBranch(ctx, tx, metahubID, requestedBy, branchID); err != nil {
		return err
	}
	if err := s.branches.SoftDelete(ctx, tx, metahubID, branchID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit branch deletion: %w", err)
	}

	// Metadata is authoritative and already gone, the namespace drop is
	// best-effort cleanup of the physical side
	s.compensateNamespaceDrop(ctx, branch.NamespaceName, metahubID)

	s.resolution.InvalidateActiveBranch(ctx, metahubID, requestedBy)
	s.resolution.InvalidateDefaultBranch(ctx, metahubID)
	s.events.Publish(ctx, EventBranchDeleted, map[string]any{
		"metahub_id": metahubID.String(),
		"branch_id":  branchID.String(),
		"namespace":  branch.NamespaceName,
	})

	s.log.Info("branch deleted", "metahub_id", metahubID, "branch_id", branchID)
	return nil
}

// compensateNamespaceDrop drops a namespace without masking the original
// failure: a failed drop is logged and recorded for out-of-band cleanup
func (s *BranchService) compensateNamespaceDrop(ctx context.Context, namespace string, metahubID uuid.UUID) {
	if err := s.schemas.DropNamespace(ctx, namespace); err != nil {
		s.log.Error("compensating namespace drop failed, namespace orphaned",
			"namespace", namespace,
			"metahub_id", metahubID,
			"error", err,
		)
		s.events.Publish(ctx, EventNamespaceOrphaned, map[string]any{
			"metahub_id": metahubID.String(),
			"namespace":  namespace,
		})
	}
}

func validateBranchFields(codename string, name *models.LocalizedText) error {
	if !models.ValidCodename(codename) {
		return apperr.Newf(apperr.CodeValidation, "invalid codename: %q", codename)
	}
	if name == nil || !name.Valid() {
		return apperr.New(apperr.CodeValidation, "name must carry content for its primary locale")
	}
	return nil
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
