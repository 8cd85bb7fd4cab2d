package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
)

type discoveryRepository struct {
	db *sqlx.DB
}

func NewDiscoveryRepository(db *sqlx.DB) repository.DiscoveryRepository {
	return &discoveryRepository{db: db}
}

func (r *discoveryRepository) CandidatePets(ctx context.Context, userID, limit int) ([]*domain.PetProfile, error) {
	pets := []*domain.PetProfile{}
	query := `
		SELECT p.id, p.nome, p.especie, p.raca, p.sexo, p.idade_aproximada, p.porte, p.cor,
		       p.vacinado, p.castrado, p.descricao_saude, p.historia,
		       p.instituicao_id, i.nome AS instituicao_nome, p.data_cadastro
		FROM pets p
		LEFT JOIN instituicoes i ON i.id = p.instituicao_id
		WHERE p.status_adocao = $1
		  AND p.ativo = TRUE
		  AND NOT EXISTS (
		      SELECT 1 FROM swipes s WHERE s.usuario_id = $2 AND s.pet_id = p.id
		  )
		  AND NOT EXISTS (
		      SELECT 1 FROM matches m
		      WHERE m.pet_id = p.id AND m.usuario_id = $2 AND m.status = $3
		  )
		ORDER BY RANDOM()
		LIMIT $4
	`
	err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &pets, query,
		domain.PetStatusAvailable, userID, domain.MatchStatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("select candidate pets: %w", err)
	}
	return pets, nil
}

func (r *discoveryRepository) InterestedUsers(ctx context.Context, petID, limit int) ([]*domain.UserProfile, error) {
	users := []*domain.UserProfile{}
	query := `
		SELECT u.id, u.nome, u.email, u.telefone, u.data_cadastro,
		       COUNT(pa.id) AS total_adocoes
		FROM usuarios u
		LEFT JOIN processo_adocao pa ON pa.usuario_id = u.id AND pa.status = 'aprovada'
		WHERE u.ativo = TRUE
		  AND u.id IN (
		      SELECT DISTINCT s.usuario_id FROM swipes s
		      WHERE s.pet_id = $1 AND s.tipo = $2 AND s.usuario_id IS NOT NULL
		        AND NOT EXISTS (
		            SELECT 1 FROM matches m
		            WHERE m.usuario_id = s.usuario_id AND m.pet_id = s.pet_id AND m.status = $3
		        )
		  )
		GROUP BY u.id, u.nome, u.email, u.telefone, u.data_cadastro
		ORDER BY RANDOM()
		LIMIT $4
	`
	err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &users, query,
		petID, domain.DecisionLike, domain.MatchStatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("select interested users: %w", err)
	}
	return users, nil
}
