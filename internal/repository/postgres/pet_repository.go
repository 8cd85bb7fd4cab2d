package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
)

type petRepository struct {
	db *sqlx.DB
}

func NewPetRepository(db *sqlx.DB) repository.PetRepository {
	return &petRepository{db: db}
}

func (r *petRepository) GetByID(ctx context.Context, id int) (*domain.Pet, error) {
	var pet domain.Pet
	query := `SELECT id, instituicao_id, status_adocao, ativo FROM pets WHERE id = $1`
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &pet, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPetNotFound
		}
		return nil, fmt.Errorf("get pet: %w", err)
	}
	return &pet, nil
}

func (r *petRepository) GetOwnedBy(ctx context.Context, id, institutionID int) (*domain.Pet, error) {
	var pet domain.Pet
	query := `
		SELECT id, instituicao_id, status_adocao, ativo
		FROM pets WHERE id = $1 AND instituicao_id = $2
	`
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &pet, query, id, institutionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPetNotOwned
		}
		return nil, fmt.Errorf("get owned pet: %w", err)
	}
	return &pet, nil
}
