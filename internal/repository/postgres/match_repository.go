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

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

const matchDetailSelect = `
	SELECT m.id, m.usuario_id, u.nome AS usuario_nome, u.email AS usuario_email,
	       m.instituicao_id, i.nome AS instituicao_nome,
	       m.pet_id, p.nome AS pet_nome, p.especie AS pet_especie, p.raca AS pet_raca, p.cor AS pet_cor,
	       m.status, m.data_match, m.ultima_interacao
	FROM matches m
	LEFT JOIN usuarios u ON u.id = m.usuario_id
	LEFT JOIN instituicoes i ON i.id = m.instituicao_id
	LEFT JOIN pets p ON p.id = m.pet_id
`

func (r *matchRepository) Create(ctx context.Context, match *domain.Match) (bool, error) {
	q := queryer(ctx, r.db)
	if match.Status == "" {
		match.Status = domain.MatchStatusActive
	}

	query := `
		INSERT INTO matches (usuario_id, instituicao_id, pet_id, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (usuario_id, pet_id) DO NOTHING
		RETURNING id, data_match, ultima_interacao
	`
	err := q.QueryRowxContext(ctx, query, match.UserID, match.InstitutionID, match.PetID, match.Status).
		Scan(&match.ID, &match.CreatedAt, &match.LastInteraction)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("insert match: %w", err)
	}

	// The (usuario_id, pet_id) pair already has a match.
	var existing domain.Match
	err = sqlx.GetContext(ctx, q, &existing, `
		SELECT id, usuario_id, instituicao_id, pet_id, status, data_match, ultima_interacao
		FROM matches WHERE usuario_id = $1 AND pet_id = $2
	`, match.UserID, match.PetID)
	if err != nil {
		return false, fmt.Errorf("load existing match: %w", err)
	}
	*match = existing
	return false, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id int, scope domain.MatchScope) (*domain.MatchDetail, error) {
	query, args := scopedQuery(matchDetailSelect+" WHERE m.id = $1", []interface{}{id}, scope, "m.")

	var match domain.MatchDetail
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &match, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, fmt.Errorf("get match: %w", err)
	}
	return &match, nil
}

func (r *matchRepository) ListActiveByUser(ctx context.Context, userID int) ([]*domain.MatchDetail, error) {
	return r.listActive(ctx, "m.usuario_id", userID)
}

func (r *matchRepository) ListActiveByInstitution(ctx context.Context, institutionID int) ([]*domain.MatchDetail, error) {
	return r.listActive(ctx, "m.instituicao_id", institutionID)
}

func (r *matchRepository) listActive(ctx context.Context, column string, id int) ([]*domain.MatchDetail, error) {
	matches := []*domain.MatchDetail{}
	query := matchDetailSelect + `
		WHERE ` + column + ` = $1 AND m.status = $2
		ORDER BY m.ultima_interacao DESC, m.id DESC
	`
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &matches, query, id, domain.MatchStatusActive); err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	return matches, nil
}

func (r *matchRepository) UpdateStatus(ctx context.Context, id int, status domain.MatchStatus, scope domain.MatchScope) (*domain.Match, error) {
	query, args := scopedQuery(
		`UPDATE matches SET status = $1, ultima_interacao = NOW() WHERE id = $2`,
		[]interface{}{status, id}, scope, "",
	)
	query += ` RETURNING id, usuario_id, instituicao_id, pet_id, status, data_match, ultima_interacao`

	var match domain.Match
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &match, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, fmt.Errorf("update match status: %w", err)
	}
	return &match, nil
}

// scopedQuery appends the optional ownership filters of scope to query.
func scopedQuery(query string, args []interface{}, scope domain.MatchScope, prefix string) (string, []interface{}) {
	if scope.UserID != 0 {
		args = append(args, scope.UserID)
		query += fmt.Sprintf(" AND %susuario_id = $%d", prefix, len(args))
	}
	if scope.InstitutionID != 0 {
		args = append(args, scope.InstitutionID)
		query += fmt.Sprintf(" AND %sinstituicao_id = $%d", prefix, len(args))
	}
	return query, args
}
