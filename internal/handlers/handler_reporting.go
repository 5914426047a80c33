package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
)

// reportingHandler serves the read-only credit views.
type reportingHandler struct {
	reportingService portssvc.ReportingSvc
	projectorService portssvc.BalanceProjectorSvc
}

func newReportingHandler(rs portssvc.ReportingSvc, ps portssvc.BalanceProjectorSvc) *reportingHandler {
	return &reportingHandler{reportingService: rs, projectorService: ps}
}

// registerReportingRoutes mounts the credit views on a group whose path
// carries :companyID. Both the admin and the company trees use it.
func registerReportingRoutes(group *gin.RouterGroup, reportingService portssvc.ReportingSvc, projector portssvc.BalanceProjectorSvc) {
	h := newReportingHandler(reportingService, projector)

	credits := group.Group("/credits")
	{
		credits.GET("", h.getBalance)
		credits.GET("/history", h.getHistory)
		credits.GET("/summary", h.getSummary)
	}
}

// getBalance godoc
// @Summary Get balance and unlocked profiles
// @Tags company
// @Produce json
// @Param companyID path string true "Company ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /companies/{companyID}/credits [get]
func (h *reportingHandler) getBalance(c *gin.Context) {
	companyID := c.Param("companyID")
	ctx := c.Request.Context()

	balance, err := h.projectorService.GetBalance(ctx, companyID)
	if err != nil {
		respondError(c, err, "Failed to retrieve balance")
		return
	}
	unlocked, err := h.projectorService.GetUnlockedSet(ctx, companyID)
	if err != nil {
		respondError(c, err, "Failed to retrieve unlocked profiles")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{CompanyID: companyID, Balance: balance, UnlockedProfileIDs: unlocked})
}

// getHistory godoc
// @Summary Get ledger history
// @Description Returns ledger entries most recent first
// @Tags company
// @Produce json
// @Param companyID path string true "Company ID"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Entries to skip" default(0)
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /companies/{companyID}/credits/history [get]
func (h *reportingHandler) getHistory(c *gin.Context) {
	var params dto.HistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.reportingService.GetHistory(c.Request.Context(), c.Param("companyID"), params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to retrieve history")
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponse(page))
}

// getSummary godoc
// @Summary Get credit summary
// @Description Returns balance, unlocked count and totals granted, spent and deducted
// @Tags company
// @Produce json
// @Param companyID path string true "Company ID"
// @Success 200 {object} dto.SummaryResponse
// @Failure 404 {object} dto.ErrorResponse "CompanyNotFound"
// @Security BearerAuth
// @Router /companies/{companyID}/credits/summary [get]
func (h *reportingHandler) getSummary(c *gin.Context) {
	summary, err := h.reportingService.GetSummary(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToSummaryResponse(summary))
}
