package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", domain.ErrInvalidDecision, http.StatusBadRequest, `{"error":"tipo deve ser 'like' ou 'pass'"}`},
		{"not found", domain.ErrPetNotFound, http.StatusNotFound, `{"error":"Pet não encontrado"}`},
		{"unavailable folds into 404", domain.ErrPetUnavailable, http.StatusNotFound, `{"error":"Pet não está disponível para adoção"}`},
		{"conflict", domain.Wrap(domain.ErrAlreadyEvaluated, errors.New("pq: duplicate key")), http.StatusConflict, `{"error":"Você já avaliou este pet"}`},
		{"unauthorized", domain.ErrInvalidCredentials, http.StatusUnauthorized, `{"error":"Credenciais inválidas"}`},
		{"internal", fmt.Errorf("failed: %w", errors.New("pq: connection reset")), http.StatusInternalServerError, `{"error":"Erro ao registrar swipe"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			writeError(c, tt.err, "Erro ao registrar swipe")

			if rec.Code != tt.status {
				t.Fatalf("got status %d, want %d", rec.Code, tt.status)
			}
			if rec.Body.String() != tt.body {
				t.Fatalf("got body %s, want %s", rec.Body.String(), tt.body)
			}
		})
	}
}
