package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thalesfercaetano/Pets-API/internal/usecase/discovery"
)

type DiscoveryHandler struct {
	discoveryUseCase *discovery.DiscoveryUseCase
}

func NewDiscoveryHandler(discoveryUseCase *discovery.DiscoveryUseCase) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryUseCase: discoveryUseCase,
	}
}

// DiscoverPets handles GET /match/discover/pets
// @Summary Discover pets
// @Description Random sample of available pets the user has not evaluated yet
// @Tags match
// @Produce json
// @Param usuario_id query int true "User ID"
// @Param limite query int false "Maximum number of pets (default 10; capped at DISCOVER_MAX_LIMIT, default 50)"
// @Success 200 {array} domain.PetProfile
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match/discover/pets [get]
func (h *DiscoveryHandler) DiscoverPets(c *gin.Context) {
	raw := c.Query("usuario_id")
	if raw == "" {
		badRequest(c, "usuario_id é obrigatório")
		return
	}
	userID, err := strconv.Atoi(raw)
	if err != nil || userID <= 0 {
		badRequest(c, "usuario_id inválido")
		return
	}

	limit, ok := optionalQueryInt(c, "limite")
	if !ok {
		badRequest(c, "limite inválido")
		return
	}

	pets, err := h.discoveryUseCase.DiscoverPets(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err, "Erro ao descobrir pets")
		return
	}

	c.JSON(http.StatusOK, pets)
}

// DiscoverUsers handles GET /match/discover/usuarios
// @Summary Discover interested users
// @Description Random sample of users that liked the institution's pet
// @Tags match
// @Produce json
// @Param instituicao_id query int true "Institution ID"
// @Param pet_id query int true "Pet ID"
// @Param limite query int false "Maximum number of users (default 10; capped at DISCOVER_MAX_LIMIT, default 50)"
// @Success 200 {array} domain.UserProfile
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match/discover/usuarios [get]
func (h *DiscoveryHandler) DiscoverUsers(c *gin.Context) {
	rawInstitution, rawPet := c.Query("instituicao_id"), c.Query("pet_id")
	if rawInstitution == "" || rawPet == "" {
		badRequest(c, "instituicao_id e pet_id são obrigatórios")
		return
	}

	institutionID, err1 := strconv.Atoi(rawInstitution)
	petID, err2 := strconv.Atoi(rawPet)
	if err1 != nil || err2 != nil || institutionID <= 0 || petID <= 0 {
		badRequest(c, "IDs inválidos")
		return
	}

	limit, ok := optionalQueryInt(c, "limite")
	if !ok {
		badRequest(c, "limite inválido")
		return
	}

	users, err := h.discoveryUseCase.DiscoverUsers(c.Request.Context(), institutionID, petID, limit)
	if err != nil {
		writeError(c, err, "Erro ao descobrir usuários")
		return
	}

	c.JSON(http.StatusOK, users)
}
