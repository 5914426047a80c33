package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/dto"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateKeyFunc picks the bucket a request is counted against.
type RateKeyFunc func(c *gin.Context) string

// ClientIPKey buckets requests by client address.
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// CompanyKey buckets requests by the company in the route, falling back to
// the client address for routes without one.
func CompanyKey(c *gin.Context) string {
	if companyID := c.Param(CompanyIDParam); companyID != "" {
		return "company:" + companyID
	}
	return c.ClientIP()
}

// NewMemoryLimiter builds a limiter from a formatted rate such as "30-M".
func NewMemoryLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// RateLimit creates a Gin middleware for rate limiting requests.
// It uses the provided limiter instance and key function.
func RateLimit(limiterInstance *limiter.Limiter, keyFunc RateKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		context, err := limiterInstance.Get(c.Request.Context(), key)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Error("Failed to get rate limit context", slog.String("key", key), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Code: apperrors.CodeInternal, Error: "Internal server error during rate limit check"})
			return
		}

		if context.Reached {
			GetLoggerFromCtx(c.Request.Context()).Warn("Rate limit exceeded", slog.String("key", key), slog.Int64("limit", context.Limit), slog.Int64("remaining_requests", context.Remaining))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{Code: "RateLimited", Error: "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}
