package repository

import (
	"context"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
)

type MatchRepository interface {
	// Create inserts a match. When a match for the same (user, pet) pair
	// already exists it loads that row into match and reports created=false.
	Create(ctx context.Context, match *domain.Match) (created bool, err error)
	GetByID(ctx context.Context, id int, scope domain.MatchScope) (*domain.MatchDetail, error)
	ListActiveByUser(ctx context.Context, userID int) ([]*domain.MatchDetail, error)
	ListActiveByInstitution(ctx context.Context, institutionID int) ([]*domain.MatchDetail, error)
	// UpdateStatus returns domain.ErrMatchNotFound when no row matched the id and scope.
	UpdateStatus(ctx context.Context, id int, status domain.MatchStatus, scope domain.MatchScope) (*domain.Match, error)
}
