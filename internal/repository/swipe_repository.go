package repository

import (
	"context"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
)

type SwipeRepository interface {
	// LockPet serializes swipes on one pet until the surrounding transaction ends.
	LockPet(ctx context.Context, petID int) error
	ExistsForUser(ctx context.Context, userID, petID int) (bool, error)
	ExistsForInstitution(ctx context.Context, institutionID, petID int) (bool, error)
	// Create returns domain.ErrAlreadyEvaluated when the party already swiped the pet.
	Create(ctx context.Context, swipe *domain.Swipe) error
	HasUserLike(ctx context.Context, userID, petID int) (bool, error)
	HasInstitutionLike(ctx context.Context, institutionID, petID int) (bool, error)
}
