package discovery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
)

type DiscoveryUseCase struct {
	discoveryRepo repository.DiscoveryRepository
	petRepo       repository.PetRepository
	logger        *zap.Logger
	defaultLimit  int
	maxLimit      int
}

func NewDiscoveryUseCase(
	discoveryRepo repository.DiscoveryRepository,
	petRepo repository.PetRepository,
	logger *zap.Logger,
	defaultLimit, maxLimit int,
) *DiscoveryUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscoveryUseCase{
		discoveryRepo: discoveryRepo,
		petRepo:       petRepo,
		logger:        logger,
		defaultLimit:  defaultLimit,
		maxLimit:      maxLimit,
	}
}

// DiscoverPets samples available pets the user has not swiped and is not
// already matched with. Unknown users are treated as users without history.
func (uc *DiscoveryUseCase) DiscoverPets(ctx context.Context, userID, limit int) ([]*domain.PetProfile, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidID
	}

	pets, err := uc.discoveryRepo.CandidatePets(ctx, userID, uc.clampLimit(limit))
	if err != nil {
		uc.logger.Error("discover pets failed", zap.Int("usuario_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to discover pets: %w", err)
	}
	return pets, nil
}

// DiscoverUsers samples users that liked the institution's pet and have no
// active match on it. A pet that is missing or owned by someone else yields
// an empty list.
func (uc *DiscoveryUseCase) DiscoverUsers(ctx context.Context, institutionID, petID, limit int) ([]*domain.UserProfile, error) {
	if institutionID <= 0 || petID <= 0 {
		return nil, domain.ErrInvalidID
	}

	if _, err := uc.petRepo.GetOwnedBy(ctx, petID, institutionID); err != nil {
		if errors.Is(err, domain.ErrPetNotOwned) || errors.Is(err, domain.ErrPetNotFound) {
			return []*domain.UserProfile{}, nil
		}
		uc.logger.Error("pet ownership check failed",
			zap.Int("instituicao_id", institutionID),
			zap.Int("pet_id", petID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to check pet ownership: %w", err)
	}

	users, err := uc.discoveryRepo.InterestedUsers(ctx, petID, uc.clampLimit(limit))
	if err != nil {
		uc.logger.Error("discover users failed", zap.Int("pet_id", petID), zap.Error(err))
		return nil, fmt.Errorf("failed to discover users: %w", err)
	}
	return users, nil
}

func (uc *DiscoveryUseCase) clampLimit(limit int) int {
	if limit <= 0 {
		return uc.defaultLimit
	}
	if limit > uc.maxLimit {
		return uc.maxLimit
	}
	return limit
}
