package handlers

import (
	"net/http"

	"github.com/faham03/Gestion-de-budget/internal/auth"
	dom "github.com/faham03/Gestion-de-budget/internal/domain"
	"github.com/faham03/Gestion-de-budget/internal/dto"
	"github.com/faham03/Gestion-de-budget/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the per-user profile.
type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Get godoc
// @Summary      Get the current user's profile
// @Tags         profile
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ProfileResponse
// @Failure      500  {object}  map[string]string
// @Router       /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	p, err := h.svc.Ensure(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileToResponse(p))
}

// Update godoc
// @Summary      Update the current user's profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.UpdateProfileRequest  true  "Partial update"
// @Success      200   {object}  dto.ProfileResponse
// @Failure      400   {object}  map[string]string
// @Router       /profile [patch]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Update(c.Request.Context(), userID, req.Bio, req.Phone, req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileToResponse(p))
}

func profileToResponse(p dom.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{Bio: p.Bio, Phone: p.Phone, Currency: p.Currency}
}
