package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/metahub-labs/platform/cmd/metahub/models"
	"github.com/metahub-labs/platform/common/apperr"
	"github.com/metahub-labs/platform/common/logger"
)

// MetahubService handles metahub provisioning. Branch semantics live in
// BranchService; this only creates the container rows the lifecycle runs in.
type MetahubService struct {
	metahubs    MetahubStore
	memberships MembershipStore
	log         *logger.Logger
}

// NewMetahubService creates a new metahub service
func NewMetahubService(metahubs MetahubStore, memberships MembershipStore, log *logger.Logger) *MetahubService {
	return &MetahubService{
		metahubs:    metahubs,
		memberships: memberships,
		log:         log,
	}
}

// CreateMetahub provisions an empty metahub and grants the creator an owner
// membership. The branch counter starts at zero; the first branch comes from
// BranchService.CreateInitialBranch.
func (s *MetahubService) CreateMetahub(ctx context.Context, createdBy *uuid.UUID) (*models.Metahub, error) {
	metahub := &models.Metahub{
		ID:               uuid.New(),
		LastBranchNumber: 0,
		Version:          1,
		CreatedBy:        createdBy,
		UpdatedBy:        createdBy,
	}

	if err := s.metahubs.Insert(ctx, metahub); err != nil {
		return nil, fmt.Errorf("failed to create metahub: %w", err)
	}

	if createdBy != nil {
		membership := &models.Membership{
			MetahubID: metahub.ID,
			UserID:    *createdBy,
			Role:      "owner",
		}
		if err := s.memberships.Insert(ctx, membership); err != nil {
			return nil, fmt.Errorf("failed to create owner membership: %w", err)
		}
	}

	s.log.Info("metahub created", "metahub_id", metahub.ID)
	return metahub, nil
}

// GetMetahub retrieves a metahub by id
func (s *MetahubService) GetMetahub(ctx context.Context, id uuid.UUID) (*models.Metahub, error) {
	metahub, err := s.metahubs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load metahub: %w", err)
	}
	if metahub == nil {
		return nil, apperr.Newf(apperr.CodeMetahubNotFound, "metahub not found: %s", id)
	}
	return metahub, nil
}
