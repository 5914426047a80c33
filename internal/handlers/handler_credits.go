package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
	"github.com/pabg92/ned-project-bw-sub001/internal/middleware"
)

type adjustFunc func(ctx context.Context, companyID string, amount int64, reason string, adminNote *string, actorID string) (*domain.LedgerEntry, error)

type resetFunc func(ctx context.Context, companyID string, reason string, actorID string) (*domain.LedgerEntry, error)

// creditsHandler handles the admin ledger adjustments.
type creditsHandler struct {
	adminService     portssvc.AdminAdjustmentSvc
	projectorService portssvc.BalanceProjectorSvc
}

func newCreditsHandler(as portssvc.AdminAdjustmentSvc, ps portssvc.BalanceProjectorSvc) *creditsHandler {
	return &creditsHandler{adminService: as, projectorService: ps}
}

func registerAdminCreditRoutes(admin *gin.RouterGroup, adminService portssvc.AdminAdjustmentSvc, projector portssvc.BalanceProjectorSvc) {
	h := newCreditsHandler(adminService, projector)

	company := admin.Group("/companies/:companyID")
	{
		company.POST("/credits/grant", h.grant)
		company.POST("/credits/deduct", h.deduct)
		company.POST("/credits/reset", h.resetBalance)
		company.POST("/unlocks/reset", h.resetUnlocks)
		company.GET("/ledger/verify", h.verify)
	}
}

// grant godoc
// @Summary Grant credits
// @Description Appends an admin_grant entry. Amount must be positive and a reason is required.
// @Tags admin
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param adjustment body dto.AdjustCreditsRequest true "Amount and reason"
// @Success 201 {object} dto.AdjustmentResponse
// @Failure 400 {object} dto.ErrorResponse "InvalidAmount or MissingReason"
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /admin/companies/{companyID}/credits/grant [post]
func (h *creditsHandler) grant(c *gin.Context) {
	h.adjust(c, h.adminService.Grant, "Failed to grant credits")
}

// deduct godoc
// @Summary Deduct credits
// @Description Appends an admin_deduction entry. The balance may not go below zero.
// @Tags admin
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param adjustment body dto.AdjustCreditsRequest true "Amount and reason"
// @Success 201 {object} dto.AdjustmentResponse
// @Failure 400 {object} dto.ErrorResponse "InvalidAmount or MissingReason"
// @Failure 402 {object} dto.ErrorResponse "InsufficientCredits"
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /admin/companies/{companyID}/credits/deduct [post]
func (h *creditsHandler) deduct(c *gin.Context) {
	h.adjust(c, h.adminService.Deduct, "Failed to deduct credits")
}

func (h *creditsHandler) adjust(c *gin.Context, op adjustFunc, msg string) {
	var req dto.AdjustCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	entry, err := op(c.Request.Context(), c.Param("companyID"), req.Amount, req.Reason, req.AdminNote, actor)
	if err != nil {
		respondError(c, err, msg)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAdjustmentResponse(entry))
}

// resetBalance godoc
// @Summary Reset balance to zero
// @Description Appends an admin_reset entry whose delta is the negated balance
// @Tags admin
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param reset body dto.ResetRequest false "Optional reason"
// @Success 201 {object} dto.AdjustmentResponse
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /admin/companies/{companyID}/credits/reset [post]
func (h *creditsHandler) resetBalance(c *gin.Context) {
	h.reset(c, h.adminService.ResetBalance, "Failed to reset balance")
}

// resetUnlocks godoc
// @Summary Clear unlocked profiles
// @Description Appends an unlock_reset entry. The balance is unchanged.
// @Tags admin
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param reset body dto.ResetRequest false "Optional reason"
// @Success 201 {object} dto.AdjustmentResponse
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /admin/companies/{companyID}/unlocks/reset [post]
func (h *creditsHandler) resetUnlocks(c *gin.Context) {
	h.reset(c, h.adminService.ResetUnlocks, "Failed to reset unlocks")
}

func (h *creditsHandler) reset(c *gin.Context, op resetFunc, msg string) {
	var req dto.ResetRequest
	// The body is optional for resets.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	entry, err := op(c.Request.Context(), c.Param("companyID"), req.Reason, actor)
	if err != nil {
		respondError(c, err, msg)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAdjustmentResponse(entry))
}

// verify godoc
// @Summary Verify ledger consistency
// @Description Replays the ledger from the empty state and compares it with the materialized account
// @Tags admin
// @Produce json
// @Param companyID path string true "Company ID"
// @Success 200 {object} domain.LedgerVerification
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /admin/companies/{companyID}/ledger/verify [get]
func (h *creditsHandler) verify(c *gin.Context) {
	result, err := h.projectorService.Verify(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		respondError(c, err, "Failed to verify ledger")
		return
	}
	if !result.Consistent {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Ledger verification found drift",
			slog.String("company_id", result.CompanyID))
	}
	c.JSON(http.StatusOK, result)
}
