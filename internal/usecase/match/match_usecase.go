package match

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/infrastructure/metrics"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
)

type MatchUseCase struct {
	matchRepo  repository.MatchRepository
	matchCache repository.MatchCache
	metrics    metrics.Recorder
	logger     *zap.Logger
}

func NewMatchUseCase(
	matchRepo repository.MatchRepository,
	matchCache repository.MatchCache,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *MatchUseCase {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchUseCase{
		matchRepo:  matchRepo,
		matchCache: matchCache,
		metrics:    recorder,
		logger:     logger,
	}
}

// UpdateStatusRequest represents a status change, optionally scoped to one party
type UpdateStatusRequest struct {
	Status        domain.MatchStatus `json:"status" binding:"required,match_status"`
	UserID        *int               `json:"usuario_id"`
	InstitutionID *int               `json:"instituicao_id"`
}

// Scope returns the ownership restriction carried by the request.
func (r *UpdateStatusRequest) Scope() domain.MatchScope {
	var scope domain.MatchScope
	if r.UserID != nil {
		scope.UserID = *r.UserID
	}
	if r.InstitutionID != nil {
		scope.InstitutionID = *r.InstitutionID
	}
	return scope
}

// ListByUser returns the user's active matches, most recent interaction first.
func (uc *MatchUseCase) ListByUser(ctx context.Context, userID int) ([]*domain.MatchDetail, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidID
	}
	return uc.cachedList(ctx, "usuario", userID,
		uc.matchCache.GetUserMatches,
		uc.matchCache.SetUserMatches,
		uc.matchRepo.ListActiveByUser,
	)
}

// ListByInstitution returns the institution's active matches, most recent interaction first.
func (uc *MatchUseCase) ListByInstitution(ctx context.Context, institutionID int) ([]*domain.MatchDetail, error) {
	if institutionID <= 0 {
		return nil, domain.ErrInvalidID
	}
	return uc.cachedList(ctx, "instituicao", institutionID,
		uc.matchCache.GetInstitutionMatches,
		uc.matchCache.SetInstitutionMatches,
		uc.matchRepo.ListActiveByInstitution,
	)
}

func (uc *MatchUseCase) cachedList(
	ctx context.Context,
	party string,
	id int,
	get func(context.Context, int) ([]*domain.MatchDetail, int64, bool, error),
	set func(context.Context, int, int64, []*domain.MatchDetail) error,
	load func(context.Context, int) ([]*domain.MatchDetail, error),
) ([]*domain.MatchDetail, error) {
	cached, generation, ok, cacheErr := get(ctx, id)
	if cacheErr != nil {
		uc.logger.Warn("match cache read failed", zap.String("party", party), zap.Int("id", id), zap.Error(cacheErr))
	}
	uc.metrics.RecordCacheResult(ok)
	if ok {
		return cached, nil
	}

	matches, err := load(ctx, id)
	if err != nil {
		uc.logger.Error("list matches failed", zap.String("party", party), zap.Int("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	// Without a generation the entry could outlive a later invalidation.
	if cacheErr != nil {
		return matches, nil
	}
	if err := set(ctx, id, generation, matches); err != nil {
		uc.logger.Warn("match cache write failed", zap.String("party", party), zap.Int("id", id), zap.Error(err))
	}
	return matches, nil
}

// GetByID returns the match when it exists and belongs to the scoped party.
func (uc *MatchUseCase) GetByID(ctx context.Context, id int, scope domain.MatchScope) (*domain.MatchDetail, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}

	m, err := uc.matchRepo.GetByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			return nil, err
		}
		uc.logger.Error("get match failed", zap.Int("match_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// UpdateStatus writes any valid status and bumps the last interaction time.
// It reports false when no match matched the id and scope.
func (uc *MatchUseCase) UpdateStatus(ctx context.Context, id int, status domain.MatchStatus, scope domain.MatchScope) (bool, error) {
	if id <= 0 {
		return false, domain.ErrInvalidID
	}
	if !status.Valid() {
		return false, domain.ErrInvalidStatus
	}

	m, err := uc.matchRepo.UpdateStatus(ctx, id, status, scope)
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			return false, nil
		}
		uc.logger.Error("update match status failed", zap.Int("match_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to update match status: %w", err)
	}

	if err := uc.matchCache.Invalidate(ctx, m.UserID, m.InstitutionID); err != nil {
		uc.logger.Warn("match cache invalidation failed", zap.Int("match_id", id), zap.Error(err))
	}
	uc.logger.Info("match status updated", zap.Int("match_id", id), zap.String("status", string(status)))
	return true, nil
}
