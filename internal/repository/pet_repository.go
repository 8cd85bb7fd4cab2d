package repository

import (
	"context"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
)

type PetRepository interface {
	GetByID(ctx context.Context, id int) (*domain.Pet, error)
	GetOwnedBy(ctx context.Context, id, institutionID int) (*domain.Pet, error)
}

type DiscoveryRepository interface {
	// CandidatePets samples available pets the user has neither swiped nor matched.
	CandidatePets(ctx context.Context, userID, limit int) ([]*domain.PetProfile, error)
	// InterestedUsers samples active users that liked the pet and have no active match on it.
	InterestedUsers(ctx context.Context, petID, limit int) ([]*domain.UserProfile, error)
}
