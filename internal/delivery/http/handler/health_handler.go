package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ConnectionChecker runs a trivial query against the database.
type ConnectionChecker func(ctx context.Context) error

type HealthHandler struct {
	checkConnection ConnectionChecker
}

func NewHealthHandler(checkConnection ConnectionChecker) *HealthHandler {
	return &HealthHandler{
		checkConnection: checkConnection,
	}
}

// Health is the liveness probe (GET and HEAD)
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// TestConnection handles GET /testConnection
// @Summary Database connectivity check
// @Tags health
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 500 {object} ErrorResponse
// @Router /testConnection [get]
func (h *HealthHandler) TestConnection(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.checkConnection(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Erro ao conectar ao banco de dados",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Conectado com sucesso ao banco de dados",
	})
}
