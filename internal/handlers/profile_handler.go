package handlers

import (
	"net/http"

	"github.com/anonto42/spinforge/backend/internal/middleware"
	"github.com/anonto42/spinforge/backend/internal/models"
	"github.com/anonto42/spinforge/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ProfileHandler handles HTTP requests related to player profiles
type ProfileHandler struct {
	profileService *services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profiles/me", h.GetProfile, middleware.RequireUser)
	g.PATCH("/profiles/me", h.UpdateProfile, middleware.RequireUser)
	g.PUT("/profiles/me", h.UpdateProfile, middleware.RequireUser)
	g.GET("/profiles/:username", h.GetPublicProfile)
}

// GetProfile retrieves the authenticated user's profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	user, profile, err := h.profileService.GetProfile(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProfileResponse(user, profile, true))
}

// UpdateProfile updates the authenticated user's profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, profile, err := h.profileService.UpdateProfile(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProfileResponse(user, profile, true))
}

// GetPublicProfile shows anyone's profile by username, without the email.
func (h *ProfileHandler) GetPublicProfile(c echo.Context) error {
	user, profile, err := h.profileService.GetPublicProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	self := user.ID == getUserIDFromContext(c)
	return c.JSON(http.StatusOK, newProfileResponse(user, profile, self))
}
