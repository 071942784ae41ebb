package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/metahub-labs/platform/cmd/metahub/models"
	"github.com/metahub-labs/platform/common/apperr"
)

// fakeTx satisfies pgx.Tx for the service, which only ever calls
// Commit/Rollback on it directly. The embedded interface is never touched.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type cloneCall struct {
	source string
	target string
	actor  *uuid.UUID
}

// fakeStore is an in-memory implementation of every collaborator the branch
// service depends on
type fakeStore struct {
	mu sync.Mutex

	metahubs    map[uuid.UUID]*models.Metahub
	branches    map[uuid.UUID]*models.Branch
	memberships map[string]*models.Membership
	users       map[uuid.UUID]*models.User

	namespaces map[string]bool
	drops      []string
	clones     []cloneCall

	lockHeld bool

	failCreateNamespace error
	failInsertBranch    error
	failClone           error
	failDrop            error
	commitErr           error

	afterBranchGet func()

	lastTx *fakeTx
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		metahubs:    make(map[uuid.UUID]*models.Metahub),
		branches:    make(map[uuid.UUID]*models.Branch),
		memberships: make(map[string]*models.Membership),
		users:       make(map[uuid.UUID]*models.User),
		namespaces:  make(map[string]bool),
	}
}

func (f *fakeStore) addMetahub(defaultBranch *uuid.UUID, lastNumber int) *models.Metahub {
	m := &models.Metahub{
		ID:               uuid.New(),
		DefaultBranchID:  defaultBranch,
		LastBranchNumber: lastNumber,
		Version:          1,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	f.metahubs[m.ID] = m
	return m
}

func (f *fakeStore) addBranch(metahubID uuid.UUID, codename string, number int, source *uuid.UUID) *models.Branch {
	b := &models.Branch{
		ID:             uuid.New(),
		MetahubID:      metahubID,
		Codename:       codename,
		Name:           text(codename),
		BranchNumber:   number,
		NamespaceName:  models.NamespaceName(metahubID, number),
		SourceBranchID: source,
		Version:        1,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	f.branches[b.ID] = b
	f.namespaces[b.NamespaceName] = true
	return b
}

func (f *fakeStore) addMembership(metahubID, userID uuid.UUID, active *uuid.UUID) *models.Membership {
	m := &models.Membership{
		MetahubID:      metahubID,
		UserID:         userID,
		Role:           "member",
		ActiveBranchID: active,
	}
	f.memberships[memKey(metahubID, userID)] = m
	return m
}

func memKey(metahubID, userID uuid.UUID) string {
	return metahubID.String() + "|" + userID.String()
}

func copyBranch(b *models.Branch) *models.Branch {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

func copyMetahub(m *models.Metahub) *models.Metahub {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

// TxBeginner

func (f *fakeStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTx = &fakeTx{commitErr: f.commitErr}
	return f.lastTx, nil
}

// MetahubStore

func (f *fakeStore) InsertMetahub(ctx context.Context, m *models.Metahub) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *m
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	f.metahubs[m.ID] = &clone
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id uuid.UUID) (*models.Metahub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyMetahub(f.metahubs[id]), nil
}

func (f *fakeStore) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Metahub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyMetahub(f.metahubs[id]), nil
}

func (f *fakeStore) SetLastBranchNumber(ctx context.Context, tx pgx.Tx, id uuid.UUID, lastBranchNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.metahubs[id]
	if !ok {
		return fmt.Errorf("metahub not found: %s", id)
	}
	m.LastBranchNumber = lastBranchNumber
	return nil
}

func (f *fakeStore) SetDefaultBranch(ctx context.Context, id, branchID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.metahubs[id]
	if !ok {
		return fmt.Errorf("metahub not found: %s", id)
	}
	m.DefaultBranchID = &branchID
	return nil
}

func (f *fakeStore) SetDefaultBranchTx(ctx context.Context, tx pgx.Tx, id, branchID uuid.UUID) error {
	return f.SetDefaultBranch(ctx, id, branchID)
}

// BranchStore

func (f *fakeStore) Insert(ctx context.Context, tx pgx.Tx, b *models.Branch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsertBranch != nil {
		return f.failInsertBranch
	}
	for _, existing := range f.branches {
		if existing.MetahubID == b.MetahubID && existing.DeletedAt == nil && existing.Codename == b.Codename {
			return apperr.New(apperr.CodeCodenameExists, "branch codename already in use")
		}
	}
	stored := copyBranch(b)
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.branches[b.ID] = stored
	return nil
}

func (f *fakeStore) getBranch(metahubID, branchID uuid.UUID) *models.Branch {
	b, ok := f.branches[branchID]
	if !ok || b.MetahubID != metahubID || b.DeletedAt != nil {
		return nil
	}
	return copyBranch(b)
}

func (f *fakeStore) GetBranch(ctx context.Context, metahubID, branchID uuid.UUID) (*models.Branch, error) {
	f.mu.Lock()
	b := f.getBranch(metahubID, branchID)
	hook := f.afterBranchGet
	f.afterBranchGet = nil
	f.mu.Unlock()

	// Fires once, after the read value is captured, to simulate a writer
	// landing between a caller's read and its save
	if hook != nil {
		hook()
	}
	return b, nil
}

func (f *fakeStore) GetTx(ctx context.Context, tx pgx.Tx, metahubID, branchID uuid.UUID) (*models.Branch, error) {
	return f.GetBranch(ctx, metahubID, branchID)
}

func (f *fakeStore) GetByCodename(ctx context.Context, metahubID uuid.UUID, codename string) (*models.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.branches {
		if b.MetahubID == metahubID && b.DeletedAt == nil && b.Codename == codename {
			return copyBranch(b), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Update(ctx context.Context, b *models.Branch, expectedVersion *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.branches[b.ID]
	if !ok || stored.DeletedAt != nil {
		return apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", b.ID)
	}
	if expectedVersion != nil && stored.Version != *expectedVersion {
		return apperr.VersionConflict("branch", stored.ID, *expectedVersion, stored.Version, stored.UpdatedAt, stored.UpdatedBy)
	}
	next := copyBranch(b)
	next.Version = stored.Version + 1
	next.UpdatedAt = time.Now()
	f.branches[b.ID] = next
	b.Version = next.Version
	b.UpdatedAt = next.UpdatedAt
	return nil
}

func (f *fakeStore) SoftDelete(ctx context.Context, tx pgx.Tx, metahubID, branchID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.branches[branchID]
	if !ok || b.MetahubID != metahubID || b.DeletedAt != nil {
		return apperr.Newf(apperr.CodeBranchNotFound, "branch not found: %s", branchID)
	}
	now := time.Now()
	b.DeletedAt = &now
	return nil
}

func (f *fakeStore) List(ctx context.Context, metahubID uuid.UUID, opts models.BranchListOptions) ([]*models.Branch, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	opts = opts.Sanitize()

	var items []*models.Branch
	for _, b := range f.branches {
		if b.MetahubID == metahubID && b.DeletedAt == nil {
			items = append(items, copyBranch(b))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].BranchNumber < items[j].BranchNumber })

	total := len(items)
	if opts.Offset >= total {
		return nil, total, nil
	}
	end := opts.Offset + opts.Limit
	if end > total {
		end = total
	}
	return items[opts.Offset:end], total, nil
}

// MembershipStore

func (f *fakeStore) GetMembership(ctx context.Context, metahubID, userID uuid.UUID) (*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memberships[memKey(metahubID, userID)]
	if !ok {
		return nil, nil
	}
	clone := *m
	return &clone, nil
}

func (f *fakeStore) InsertMembership(ctx context.Context, m *models.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *m
	f.memberships[memKey(m.MetahubID, m.UserID)] = &clone
	return nil
}

func (f *fakeStore) SetActiveBranch(ctx context.Context, metahubID, userID uuid.UUID, branchID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memberships[memKey(metahubID, userID)]
	if !ok {
		return errors.New("membership not found")
	}
	m.ActiveBranchID = branchID
	return nil
}

func (f *fakeStore) ClearActiveBranch(ctx context.Context, tx pgx.Tx, metahubID, userID, branchID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memberships[memKey(metahubID, userID)]
	if ok && m.ActiveBranchID != nil && *m.ActiveBranchID == branchID {
		m.ActiveBranchID = nil
	}
	return nil
}

func (f *fakeStore) ListActiveOnBranch(ctx context.Context, metahubID, branchID uuid.UUID, excludeUserID *uuid.UUID) ([]*models.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Membership
	for _, m := range f.memberships {
		if m.MetahubID != metahubID || m.ActiveBranchID == nil || *m.ActiveBranchID != branchID {
			continue
		}
		if excludeUserID != nil && m.UserID == *excludeUserID {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

// UserDirectory

func (f *fakeStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]*models.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			clone := *u
			out[id] = &clone
		}
	}
	return out, nil
}

// SchemaManager

func (f *fakeStore) CreateNamespace(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateNamespace != nil {
		return f.failCreateNamespace
	}
	if f.namespaces[name] {
		return fmt.Errorf("namespace already exists: %s", name)
	}
	f.namespaces[name] = true
	return nil
}

func (f *fakeStore) DropNamespace(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDrop != nil {
		return f.failDrop
	}
	delete(f.namespaces, name)
	f.drops = append(f.drops, name)
	return nil
}

func (f *fakeStore) CloneSystemTables(ctx context.Context, tx pgx.Tx, sourceNamespace, targetNamespace string, actorID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClone != nil {
		return f.failClone
	}
	f.clones = append(f.clones, cloneCall{source: sourceNamespace, target: targetNamespace, actor: actorID})
	return nil
}

// Locker

func (f *fakeStore) TryLock(ctx context.Context, metahubID uuid.UUID) (func(context.Context), bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockHeld {
		return nil, false, nil
	}
	f.lockHeld = true
	release := func(context.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lockHeld = false
	}
	return release, true, nil
}

// Adapters: fakeStore method names collide between interfaces, so thin views
// present it as the separate stores the service expects.

type metahubStoreView struct{ *fakeStore }

func (v metahubStoreView) Insert(ctx context.Context, m *models.Metahub) error {
	return v.fakeStore.InsertMetahub(ctx, m)
}

type branchStoreView struct{ *fakeStore }

func (v branchStoreView) Get(ctx context.Context, metahubID, branchID uuid.UUID) (*models.Branch, error) {
	return v.fakeStore.GetBranch(ctx, metahubID, branchID)
}

type membershipStoreView struct{ *fakeStore }

func (v membershipStoreView) Get(ctx context.Context, metahubID, userID uuid.UUID) (*models.Membership, error) {
	return v.fakeStore.GetMembership(ctx, metahubID, userID)
}

func (v membershipStoreView) Insert(ctx context.Context, m *models.Membership) error {
	return v.fakeStore.InsertMembership(ctx, m)
}

func text(content string) models.LocalizedText {
	return models.LocalizedText{
		PrimaryLocale: "en",
		Values:        map[string]string{"en": content},
	}
}
