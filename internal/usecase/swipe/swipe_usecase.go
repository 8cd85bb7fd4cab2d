package swipe

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/infrastructure/metrics"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
)

const (
	MessageMatch       = "🎉 Match! Vocês deram like um no outro!"
	MessageLikeWaiting = "Like registrado! Aguardando match..."
	MessagePass        = "Pass registrado"
)

type SwipeUseCase struct {
	txManager  repository.TxManager
	swipeRepo  repository.SwipeRepository
	matchRepo  repository.MatchRepository
	petRepo    repository.PetRepository
	matchCache repository.MatchCache
	metrics    metrics.Recorder
	logger     *zap.Logger
}

func NewSwipeUseCase(
	txManager repository.TxManager,
	swipeRepo repository.SwipeRepository,
	matchRepo repository.MatchRepository,
	petRepo repository.PetRepository,
	matchCache repository.MatchCache,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *SwipeUseCase {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwipeUseCase{
		txManager:  txManager,
		swipeRepo:  swipeRepo,
		matchRepo:  matchRepo,
		petRepo:    petRepo,
		matchCache: matchCache,
		metrics:    recorder,
		logger:     logger,
	}
}

// UserSwipeRequest is a user's decision on a pet
type UserSwipeRequest struct {
	UserID   int             `json:"usuario_id" binding:"required,min=1"`
	PetID    int             `json:"pet_id" binding:"required,min=1"`
	Decision domain.Decision `json:"tipo" binding:"required,decision"`
}

// InstitutionSwipeRequest is an institution's decision on a user interested in one of its pets
type InstitutionSwipeRequest struct {
	InstitutionID int             `json:"instituicao_id" binding:"required,min=1"`
	UserID        int             `json:"usuario_id" binding:"required,min=1"`
	PetID         int             `json:"pet_id" binding:"required,min=1"`
	Decision      domain.Decision `json:"tipo" binding:"required,decision"`
}

// SwipeResponse represents swipe result
type SwipeResponse struct {
	Match   bool   `json:"match"`
	MatchID *int   `json:"match_id,omitempty"`
	Message string `json:"message"`
}

// outcome is what a swipe transaction produced.
type outcome struct {
	swipe        *domain.Swipe
	match        *domain.Match
	matchCreated bool
}

// SwipeAsUser records a user's swipe and creates the match when the pet's
// institution already liked the pet.
func (uc *SwipeUseCase) SwipeAsUser(ctx context.Context, req *UserSwipeRequest) (*SwipeResponse, error) {
	if req.UserID <= 0 || req.PetID <= 0 {
		return nil, domain.ErrInvalidID
	}
	if !req.Decision.Valid() {
		return nil, domain.ErrInvalidDecision
	}

	var out outcome
	err := uc.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.swipeRepo.LockPet(ctx, req.PetID); err != nil {
			return err
		}

		pet, err := uc.petRepo.GetByID(ctx, req.PetID)
		if err != nil {
			return err
		}
		if !pet.Available() {
			return domain.ErrPetUnavailable
		}

		exists, err := uc.swipeRepo.ExistsForUser(ctx, req.UserID, req.PetID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyEvaluated
		}

		userID := req.UserID
		out.swipe = &domain.Swipe{UserID: &userID, PetID: req.PetID, Decision: req.Decision}
		if err := uc.swipeRepo.Create(ctx, out.swipe); err != nil {
			return err
		}

		if req.Decision != domain.DecisionLike {
			return nil
		}

		reciprocal, err := uc.swipeRepo.HasInstitutionLike(ctx, pet.InstitutionID, req.PetID)
		if err != nil || !reciprocal {
			return err
		}
		return uc.createMatch(ctx, &out, req.UserID, pet.InstitutionID, req.PetID)
	})
	if err != nil {
		return nil, uc.fail("swipe as user", err,
			zap.Int("usuario_id", req.UserID),
			zap.Int("pet_id", req.PetID),
		)
	}

	return uc.finish(ctx, &out), nil
}

// SwipeAsInstitution records an institution's swipe on its own pet and creates
// the match when the given user already liked the pet. The institution renders
// a single decision per pet.
func (uc *SwipeUseCase) SwipeAsInstitution(ctx context.Context, req *InstitutionSwipeRequest) (*SwipeResponse, error) {
	if req.InstitutionID <= 0 || req.UserID <= 0 || req.PetID <= 0 {
		return nil, domain.ErrInvalidID
	}
	if !req.Decision.Valid() {
		return nil, domain.ErrInvalidDecision
	}

	var out outcome
	err := uc.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.swipeRepo.LockPet(ctx, req.PetID); err != nil {
			return err
		}

		if _, err := uc.petRepo.GetOwnedBy(ctx, req.PetID, req.InstitutionID); err != nil {
			if errors.Is(err, domain.ErrPetNotFound) {
				return domain.ErrPetNotOwned
			}
			return err
		}

		exists, err := uc.swipeRepo.ExistsForInstitution(ctx, req.InstitutionID, req.PetID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrInstitutionAlreadyEvaluated
		}

		institutionID := req.InstitutionID
		out.swipe = &domain.Swipe{InstitutionID: &institutionID, PetID: req.PetID, Decision: req.Decision}
		if err := uc.swipeRepo.Create(ctx, out.swipe); err != nil {
			if errors.Is(err, domain.ErrAlreadyEvaluated) {
				return domain.Wrap(domain.ErrInstitutionAlreadyEvaluated, err)
			}
			return err
		}

		if req.Decision != domain.DecisionLike {
			return nil
		}

		reciprocal, err := uc.swipeRepo.HasUserLike(ctx, req.UserID, req.PetID)
		if err != nil || !reciprocal {
			return err
		}
		return uc.createMatch(ctx, &out, req.UserID, req.InstitutionID, req.PetID)
	})
	if err != nil {
		return nil, uc.fail("swipe as institution", err,
			zap.Int("instituicao_id", req.InstitutionID),
			zap.Int("usuario_id", req.UserID),
			zap.Int("pet_id", req.PetID),
		)
	}

	return uc.finish(ctx, &out), nil
}

func (uc *SwipeUseCase) createMatch(ctx context.Context, out *outcome, userID, institutionID, petID int) error {
	match := &domain.Match{
		UserID:        userID,
		InstitutionID: institutionID,
		PetID:         petID,
		Status:        domain.MatchStatusActive,
	}

	created, err := uc.matchRepo.Create(ctx, match)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	out.match = match
	out.matchCreated = created
	return nil
}

// finish runs the post-commit side effects and builds the response.
func (uc *SwipeUseCase) finish(ctx context.Context, out *outcome) *SwipeResponse {
	uc.metrics.RecordSwipe(out.swipe.Actor(), string(out.swipe.Decision))

	if out.match == nil {
		message := MessagePass
		if out.swipe.Decision == domain.DecisionLike {
			message = MessageLikeWaiting
		}
		return &SwipeResponse{Match: false, Message: message}
	}

	if out.matchCreated {
		uc.metrics.RecordMatchCreated()
		uc.logger.Info("match created",
			zap.Int("match_id", out.match.ID),
			zap.Int("usuario_id", out.match.UserID),
			zap.Int("instituicao_id", out.match.InstitutionID),
			zap.Int("pet_id", out.match.PetID),
		)
		if err := uc.matchCache.Invalidate(ctx, out.match.UserID, out.match.InstitutionID); err != nil {
			uc.logger.Warn("match cache invalidation failed", zap.Int("match_id", out.match.ID), zap.Error(err))
		}
	}

	matchID := out.match.ID
	return &SwipeResponse{Match: true, MatchID: &matchID, Message: MessageMatch}
}

// fail logs unexpected errors and passes domain errors through untouched.
func (uc *SwipeUseCase) fail(op string, err error, fields ...zap.Field) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	uc.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return fmt.Errorf("failed to record swipe: %w", err)
}
