package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/usecase/match"
)

type MatchHandler struct {
	matchUseCase *match.MatchUseCase
}

func NewMatchHandler(matchUseCase *match.MatchUseCase) *MatchHandler {
	return &MatchHandler{
		matchUseCase: matchUseCase,
	}
}

// ListByUser handles GET /match/usuario/:id
// @Summary List user matches
// @Tags match
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} domain.MatchDetail
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match/usuario/{id} [get]
func (h *MatchHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		badRequest(c, domain.ErrInvalidID.Message)
		return
	}

	matches, err := h.matchUseCase.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "Erro ao listar matches")
		return
	}

	c.JSON(http.StatusOK, matches)
}

// ListByInstitution handles GET /match/instituicao/:id
// @Summary List institution matches
// @Tags match
// @Produce json
// @Param id path int true "Institution ID"
// @Success 200 {array} domain.MatchDetail
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match/instituicao/{id} [get]
func (h *MatchHandler) ListByInstitution(c *gin.Context) {
	institutionID, ok := pathID(c, "id")
	if !ok {
		badRequest(c, domain.ErrInvalidID.Message)
		return
	}

	matches, err := h.matchUseCase.ListByInstitution(c.Request.Context(), institutionID)
	if err != nil {
		writeError(c, err, "Erro ao listar matches")
		return
	}

	c.JSON(http.StatusOK, matches)
}

// GetByID handles GET /match/:id
// @Summary Get match
// @Tags match
// @Produce json
// @Param id path int true "Match ID"
// @Param usuario_id query int false "Restrict to this user"
// @Param instituicao_id query int false "Restrict to this institution"
// @Success 200 {object} domain.MatchDetail
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match/{id} [get]
func (h *MatchHandler) GetByID(c *gin.Context) {
	matchID, ok := pathID(c, "id")
	if !ok {
		badRequest(c, domain.ErrInvalidID.Message)
		return
	}

	userID, okUser := optionalQueryInt(c, "usuario_id")
	institutionID, okInstitution := optionalQueryInt(c, "instituicao_id")
	if !okUser || !okInstitution {
		badRequest(c, domain.ErrInvalidID.Message)
		return
	}

	m, err := h.matchUseCase.GetByID(c.Request.Context(), matchID, domain.MatchScope{
		UserID:        userID,
		InstitutionID: institutionID,
	})
	if err != nil {
		writeError(c, err, "Erro ao buscar match")
		return
	}

	c.JSON(http.StatusOK, m)
}

// UpdateStatus handles PATCH /match/:id/status
// @Summary Update match status
// @Description Any of ativo, conversando, adotado, cancelado may be written
// @Tags match
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param request body match.UpdateStatusRequest true "New status"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match/{id}/status [patch]
func (h *MatchHandler) UpdateStatus(c *gin.Context) {
	matchID, ok := pathID(c, "id")
	if !ok {
		badRequest(c, domain.ErrInvalidID.Message)
		return
	}

	var req match.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		switch {
		case failedTag(err, "match_status"):
			badRequest(c, domain.ErrInvalidStatus.Message)
		case isTypeError(err):
			badRequest(c, "Corpo da requisição inválido")
		default:
			badRequest(c, "ID e status são obrigatórios")
		}
		return
	}

	updated, err := h.matchUseCase.UpdateStatus(c.Request.Context(), matchID, req.Status, req.Scope())
	if err != nil {
		writeError(c, err, "Erro ao atualizar status do match")
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Match não encontrado ou você não tem permissão para atualizá-lo",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Status do match atualizado com sucesso"})
}
