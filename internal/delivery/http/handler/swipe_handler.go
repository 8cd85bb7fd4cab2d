package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/usecase/swipe"
)

type SwipeHandler struct {
	swipeUseCase *swipe.SwipeUseCase
}

func NewSwipeHandler(swipeUseCase *swipe.SwipeUseCase) *SwipeHandler {
	return &SwipeHandler{
		swipeUseCase: swipeUseCase,
	}
}

// SwipeAsUser handles POST /match/swipe/usuario
// @Summary User swipe
// @Description Like or pass on a pet; answers with the match when the institution already liked it
// @Tags match
// @Accept json
// @Produce json
// @Param request body swipe.UserSwipeRequest true "Swipe"
// @Success 200 {object} swipe.SwipeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match/swipe/usuario [post]
func (h *SwipeHandler) SwipeAsUser(c *gin.Context) {
	var req swipe.UserSwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err, "usuario_id, pet_id e tipo são obrigatórios"))
		return
	}

	resp, err := h.swipeUseCase.SwipeAsUser(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Erro ao registrar swipe")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SwipeAsInstitution handles POST /match/swipe/instituicao
// @Summary Institution swipe
// @Description Like or pass on a user interested in one of the institution's pets
// @Tags match
// @Accept json
// @Produce json
// @Param request body swipe.InstitutionSwipeRequest true "Swipe"
// @Success 200 {object} swipe.SwipeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match/swipe/instituicao [post]
func (h *SwipeHandler) SwipeAsInstitution(c *gin.Context) {
	var req swipe.InstitutionSwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindingMessage(err, "instituicao_id, usuario_id, pet_id e tipo são obrigatórios"))
		return
	}

	resp, err := h.swipeUseCase.SwipeAsInstitution(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Erro ao registrar swipe")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func bindingMessage(err error, missing string) string {
	switch {
	case isTypeError(err):
		return "IDs inválidos"
	case failedTag(err, "decision"):
		return domain.ErrInvalidDecision.Message
	case failedTag(err, "min"):
		return "IDs inválidos"
	default:
		return missing
	}
}
