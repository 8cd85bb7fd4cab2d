package repository

import (
	"context"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
)

// MatchCache stores the active-match listings of users and institutions.
// A miss is reported with ok=false and a nil error.
//
// Every party has a generation that Invalidate advances. Get returns the
// generation it looked under and Set writes under the generation it is given,
// so a listing loaded before an invalidation and stored after it is never read.
type MatchCache interface {
	GetUserMatches(ctx context.Context, userID int) (matches []*domain.MatchDetail, generation int64, ok bool, err error)
	SetUserMatches(ctx context.Context, userID int, generation int64, matches []*domain.MatchDetail) error
	GetInstitutionMatches(ctx context.Context, institutionID int) (matches []*domain.MatchDetail, generation int64, ok bool, err error)
	SetInstitutionMatches(ctx context.Context, institutionID int, generation int64, matches []*domain.MatchDetail) error
	Invalidate(ctx context.Context, userID, institutionID int) error
}
