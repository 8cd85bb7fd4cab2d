package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
)

// swipeLockNamespace is the first key of the advisory locks taken per pet.
const swipeLockNamespace = 4201

var errLockOutsideTx = errors.New("pet lock requires a transaction")

type swipeRepository struct {
	db *sqlx.DB
}

func NewSwipeRepository(db *sqlx.DB) repository.SwipeRepository {
	return &swipeRepository{db: db}
}

func (r *swipeRepository) LockPet(ctx context.Context, petID int) error {
	tx, ok := txFromContext(ctx)
	if !ok {
		return errLockOutsideTx
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, swipeLockNamespace, petID); err != nil {
		return fmt.Errorf("lock pet %d: %w", petID, err)
	}
	return nil
}

func (r *swipeRepository) ExistsForUser(ctx context.Context, userID, petID int) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS (SELECT 1 FROM swipes WHERE usuario_id = $1 AND pet_id = $2)
	`, userID, petID)
}

func (r *swipeRepository) ExistsForInstitution(ctx context.Context, institutionID, petID int) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS (SELECT 1 FROM swipes WHERE instituicao_id = $1 AND pet_id = $2)
	`, institutionID, petID)
}

func (r *swipeRepository) HasUserLike(ctx context.Context, userID, petID int) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS (SELECT 1 FROM swipes WHERE usuario_id = $1 AND pet_id = $2 AND tipo = $3)
	`, userID, petID, domain.DecisionLike)
}

func (r *swipeRepository) HasInstitutionLike(ctx context.Context, institutionID, petID int) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS (SELECT 1 FROM swipes WHERE instituicao_id = $1 AND pet_id = $2 AND tipo = $3)
	`, institutionID, petID, domain.DecisionLike)
}

func (r *swipeRepository) Create(ctx context.Context, swipe *domain.Swipe) error {
	query := `
		INSERT INTO swipes (usuario_id, instituicao_id, pet_id, tipo)
		VALUES ($1, $2, $3, $4)
		RETURNING id, data_swipe
	`
	err := queryer(ctx, r.db).QueryRowxContext(ctx, query, swipe.UserID, swipe.InstitutionID, swipe.PetID, swipe.Decision).
		Scan(&swipe.ID, &swipe.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Wrap(domain.ErrAlreadyEvaluated, err)
		}
		return fmt.Errorf("insert swipe: %w", err)
	}
	return nil
}

func (r *swipeRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var found bool
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &found, query, args...); err != nil {
		return false, fmt.Errorf("check swipe: %w", err)
	}
	return found, nil
}
