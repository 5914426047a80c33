package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
)

// CompanyIDParam is the route parameter that RequireCompanyAccess guards.
const CompanyIDParam = "companyID"

func abortForbidden(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrForbidden) {
		c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Code: apperrors.CodeForbidden, Error: err.Error()})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Code: apperrors.CodeInternal, Error: "authorization check failed"})
}

// RequireAdmin only lets callers the policy accepts as administrators through.
func RequireAdmin(policy portssvc.AuthorizationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		if err := policy.AuthorizeAdmin(c.Request.Context(), principal); err != nil {
			GetLoggerFromCtx(c.Request.Context()).Warn("Admin access denied",
				slog.String("policy", policy.Name()),
				slog.String("error", err.Error()))
			abortForbidden(c, err)
			return
		}
		c.Next()
	}
}

// RequireCompanyAccess only lets callers through that the policy allows to
// act on the company named by the :companyID route parameter.
func RequireCompanyAccess(policy portssvc.AuthorizationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		companyID := c.Param(CompanyIDParam)
		if err := policy.AuthorizeCompanyAccess(c.Request.Context(), principal, companyID); err != nil {
			GetLoggerFromCtx(c.Request.Context()).Warn("Company access denied",
				slog.String("policy", policy.Name()),
				slog.String("company_id", companyID),
				slog.String("error", err.Error()))
			abortForbidden(c, err)
			return
		}
		c.Next()
	}
}
