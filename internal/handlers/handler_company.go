package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
	"github.com/pabg92/ned-project-bw-sub001/internal/middleware"
)

// companyHandler handles the back-office company endpoints.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
}

func newCompanyHandler(cs portssvc.CompanySvcFacade) *companyHandler {
	return &companyHandler{companyService: cs}
}

func registerAdminCompanyRoutes(admin *gin.RouterGroup, companyService portssvc.CompanySvcFacade) {
	h := newCompanyHandler(companyService)

	companies := admin.Group("/companies")
	{
		companies.POST("", h.createCompany)
		companies.GET("", h.listCompanies)
		companies.GET("/:companyID", h.getCompany)
		companies.PUT("/:companyID/enrichment", h.updateEnrichment)
	}
}

// createCompany godoc
// @Summary Register a hiring company
// @Description Creates a company with an empty credit account, optionally granting initial credits
// @Tags admin
// @Accept json
// @Produce json
// @Param company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/companies [post]
func (h *companyHandler) createCompany(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create company")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Company created", slog.String("company_id", company.CompanyID))
	c.JSON(http.StatusCreated, dto.ToCompanyResponse(company))
}

// listCompanies godoc
// @Summary List companies
// @Description Lists companies newest first with their credit balances
// @Tags admin
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListCompaniesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/companies [get]
func (h *companyHandler) listCompanies(c *gin.Context) {
	var params dto.ListCompaniesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.companyService.ListCompanies(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list companies")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getCompany godoc
// @Summary Get a company
// @Tags admin
// @Produce json
// @Param companyID path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/companies/{companyID} [get]
func (h *companyHandler) getCompany(c *gin.Context) {
	company, err := h.companyService.GetCompanyByID(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve company")
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// updateEnrichment godoc
// @Summary Update company enrichment
// @Description Replaces the verification status, notes and risk score of a company
// @Tags admin
// @Accept json
// @Produce json
// @Param companyID path string true "Company ID"
// @Param enrichment body dto.UpdateEnrichmentRequest true "Enrichment record"
// @Success 200 {object} dto.CompanyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/companies/{companyID}/enrichment [put]
func (h *companyHandler) updateEnrichment(c *gin.Context) {
	var req dto.UpdateEnrichmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}

	company, err := h.companyService.UpdateEnrichment(c.Request.Context(), c.Param("companyID"), req, actor)
	if err != nil {
		respondError(c, err, "Failed to update company enrichment")
		return
	}
	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}
