package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
)

// profileHandler handles candidate profile endpoints for admins and companies.
type profileHandler struct {
	profileService portssvc.ProfileSvcFacade
}

func newProfileHandler(ps portssvc.ProfileSvcFacade) *profileHandler {
	return &profileHandler{profileService: ps}
}

func registerAdminProfileRoutes(admin *gin.RouterGroup, profileService portssvc.ProfileSvcFacade) {
	h := newProfileHandler(profileService)

	profiles := admin.Group("/profiles")
	{
		profiles.POST("", h.createProfile)
		profiles.GET("/:profileID", h.getProfile)
		profiles.PUT("/:profileID/status", h.updateProfileStatus)
	}
}

func registerCompanyProfileRoutes(company *gin.RouterGroup, profileService portssvc.ProfileSvcFacade) {
	h := newProfileHandler(profileService)

	company.GET("/profiles", h.searchProfiles)
	company.GET("/profiles/unlocked", h.listUnlockedProfiles)
}

// createProfile godoc
// @Summary Create a candidate profile
// @Tags admin
// @Accept json
// @Produce json
// @Param profile body dto.CreateProfileRequest true "Profile details"
// @Success 201 {object} dto.ProfileResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/profiles [post]
func (h *profileHandler) createProfile(c *gin.Context) {
	var req dto.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.CreateProfile(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create profile")
		return
	}
	c.JSON(http.StatusCreated, dto.ToProfileResponse(profile))
}

// getProfile godoc
// @Summary Get a candidate profile with contact details
// @Tags admin
// @Produce json
// @Param profileID path string true "Profile ID"
// @Success 200 {object} dto.ProfileResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/profiles/{profileID} [get]
func (h *profileHandler) getProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), c.Param("profileID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}

// updateProfileStatus godoc
// @Summary Activate, deactivate or complete a profile
// @Tags admin
// @Accept json
// @Produce json
// @Param profileID path string true "Profile ID"
// @Param status body dto.UpdateProfileStatusRequest true "Lifecycle flags"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/profiles/{profileID}/status [put]
func (h *profileHandler) updateProfileStatus(c *gin.Context) {
	var req dto.UpdateProfileStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.UpdateProfileStatus(c.Request.Context(), c.Param("profileID"), req, actor)
	if err != nil {
		respondError(c, err, "Failed to update profile status")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileResponse(profile))
}

// searchProfiles godoc
// @Summary Browse candidate profiles
// @Description Lists active profiles. Contact details are hidden until the company unlocks a profile.
// @Tags company
// @Produce json
// @Param companyID path string true "Company ID"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.SearchProfilesResponse
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /companies/{companyID}/profiles [get]
func (h *profileHandler) searchProfiles(c *gin.Context) {
	var params dto.SearchProfilesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.profileService.SearchProfiles(c.Request.Context(), c.Param("companyID"), params)
	if err != nil {
		respondError(c, err, "Failed to search profiles")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listUnlockedProfiles godoc
// @Summary List unlocked profiles
// @Tags company
// @Produce json
// @Param companyID path string true "Company ID"
// @Success 200 {array} dto.ProfileResponse
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /companies/{companyID}/profiles/unlocked [get]
func (h *profileHandler) listUnlockedProfiles(c *gin.Context) {
	profiles, err := h.profileService.ListUnlockedProfiles(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		respondError(c, err, "Failed to list unlocked profiles")
		return
	}

	resp := make([]dto.ProfileResponse, len(profiles))
	for i := range profiles {
		resp[i] = dto.ToProfileResponse(&profiles[i])
	}
	c.JSON(http.StatusOK, resp)
}
