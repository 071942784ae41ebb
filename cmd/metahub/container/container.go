package container

import (
	"github.com/metahub-labs/platform/cmd/metahub/repository"
	"github.com/metahub-labs/platform/cmd/metahub/service"
	"github.com/metahub-labs/platform/common/bootstrap"
	"github.com/metahub-labs/platform/common/cache"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	Components *bootstrap.Components

	// Repositories
	MetahubRepo    *repository.MetahubRepository
	BranchRepo     *repository.BranchRepository
	MembershipRepo *repository.MembershipRepository
	UserRepo       *repository.UserRepository
	SchemaRepo     *repository.SchemaRepository
	LockRepo       *repository.LockRepository

	// Services
	ResolutionCache *service.ResolutionCache
	Events          *service.EventPublisher
	MetahubService  *service.MetahubService
	BranchService   *service.BranchService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	// Initialize repositories
	metahubRepo := repository.NewMetahubRepository(components.DB)
	branchRepo := repository.NewBranchRepository(components.DB)
	membershipRepo := repository.NewMembershipRepository(components.DB)
	userRepo := repository.NewUserRepository(components.DB)
	schemaRepo := repository.NewSchemaRepository(components.DB, components.Logger)
	lockRepo := repository.NewLockRepository(components.DB, components.Logger)

	// Initialize services (bottom-up: dependencies first)
	cacheBackend := components.Cache
	if cacheBackend == nil {
		// Resolution caching is always on, it just degrades to process memory
		cacheBackend = cache.NewMemoryCache(components.Logger)
	}
	resolutionCache := service.NewResolutionCache(
		cacheBackend,
		components.Config.Cache.DefaultTTL,
		components.Logger,
	)

	var events *service.EventPublisher
	if components.Config.Features.PublishEvents {
		events = service.NewEventPublisher(components.Events, components.Redis, components.Logger)
	} else {
		events = service.NewEventPublisher(nil, nil, components.Logger)
	}

	metahubService := service.NewMetahubService(metahubRepo, membershipRepo, components.Logger)
	branchService := service.NewBranchService(
		components.DB,
		metahubRepo,
		branchRepo,
		membershipRepo,
		userRepo,
		schemaRepo,
		lockRepo,
		resolutionCache,
		events,
		components.Logger,
	)

	return &Container{
		Components:      components,
		MetahubRepo:     metahubRepo,
		BranchRepo:      branchRepo,
		MembershipRepo:  membershipRepo,
		UserRepo:        userRepo,
		SchemaRepo:      schemaRepo,
		LockRepo:        lockRepo,
		ResolutionCache: resolutionCache,
		Events:          events,
		MetahubService:  metahubService,
		BranchService:   branchService,
	}, nil
}
