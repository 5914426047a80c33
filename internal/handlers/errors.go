package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
	"github.com/pabg92/ned-project-bw-sub001/internal/middleware"
)

var statusByCode = map[string]int{
	apperrors.CodeInsufficientCredits: http.StatusPaymentRequired,
	apperrors.CodeInvalidAmount:       http.StatusBadRequest,
	apperrors.CodeMissingReason:       http.StatusBadRequest,
	apperrors.CodeValidation:          http.StatusBadRequest,
	apperrors.CodeCompanyNotFound:     http.StatusNotFound,
	apperrors.CodeProfileNotFound:     http.StatusNotFound,
	apperrors.CodeNotFound:            http.StatusNotFound,
	apperrors.CodeDuplicate:           http.StatusConflict,
	apperrors.CodeForbidden:           http.StatusForbidden,
	apperrors.CodeUnauthorized:        http.StatusUnauthorized,
	apperrors.CodeStorageFailure:      http.StatusInternalServerError,
}

// respondError writes the error envelope for err. Server-side failures are
// logged at error level and their details are not echoed to the caller.
func respondError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := apperrors.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("code", code), slog.String("error", err.Error()))
		c.JSON(status, dto.ErrorResponse{Code: code, Error: msg})
		return
	}
	logger.Warn(msg, slog.String("code", code), slog.String("error", err.Error()))
	c.JSON(status, dto.ErrorResponse{Code: code, Error: err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: apperrors.CodeValidation, Error: "Invalid request format: " + err.Error()})
}

// actorID returns the authenticated caller's user id. The auth middleware
// guarantees a principal on every /api/v1 route.
func actorID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Principal not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Code: apperrors.CodeUnauthorized, Error: "Unauthorized"})
	}
	return userID, ok
}
