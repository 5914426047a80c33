package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
	"github.com/pabg92/ned-project-bw-sub001/internal/middleware"
)

// unlockHandler handles profile unlocks.
type unlockHandler struct {
	unlockService portssvc.UnlockSvc
}

func newUnlockHandler(us portssvc.UnlockSvc) *unlockHandler {
	return &unlockHandler{unlockService: us}
}

func registerUnlockRoutes(company *gin.RouterGroup, unlockService portssvc.UnlockSvc, limit gin.HandlerFunc) {
	h := newUnlockHandler(unlockService)

	company.POST("/profiles/:profileID/unlock", limit, h.unlockProfile)
}

// unlockProfile godoc
// @Summary Unlock a candidate profile
// @Description Spends one credit the first time and returns the full profile. Repeat unlocks are free.
// @Tags company
// @Produce json
// @Param companyID path string true "Company ID"
// @Param profileID path string true "Profile ID"
// @Success 200 {object} dto.UnlockResponse "Already unlocked, nothing charged"
// @Success 201 {object} dto.UnlockResponse "Unlocked, one credit charged"
// @Failure 402 {object} dto.ErrorResponse "InsufficientCredits"
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound or ProfileNotFound"
// @Failure 429 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /companies/{companyID}/profiles/{profileID}/unlock [post]
func (h *unlockHandler) unlockProfile(c *gin.Context) {
	companyID := c.Param("companyID")
	profileID := c.Param("profileID")

	result, err := h.unlockService.Unlock(c.Request.Context(), companyID, profileID)
	if err != nil {
		respondError(c, err, "Failed to unlock profile")
		return
	}

	status := http.StatusOK
	if result.Charged {
		status = http.StatusCreated
	}
	middleware.SetEventProps(c, map[string]any{
		"profile_id": profileID,
		"charged":    result.Charged,
		"balance":    result.Balance,
	})
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Profile unlock served",
		slog.String("profile_id", profileID),
		slog.Bool("charged", result.Charged))
	c.JSON(status, dto.ToUnlockResponse(result))
}
