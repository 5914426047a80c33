package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pabg92/ned-project-bw-sub001/cmd/docs"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/middleware"
	"github.com/pabg92/ned-project-bw-sub001/internal/platform/config"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if err := setupAPIV1Routes(r, cfg, services); err != nil {
		return err
	}

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group. Admin routes live under
// /admin; company routes are scoped by :companyID and guarded by the
// configured authorization policy.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) error {
	unlockLimiter, err := middleware.NewMemoryLimiter(cfg.UnlockRateLimit)
	if err != nil {
		return fmt.Errorf("invalid UNLOCK_RATE_LIMIT %q: %w", cfg.UnlockRateLimit, err)
	}

	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	admin := v1.Group("/admin", middleware.RequireAdmin(service.Policy))
	registerAdminCompanyRoutes(admin, service.Company)
	registerAdminCreditRoutes(admin, service.Admin, service.Projector)
	registerAdminProfileRoutes(admin, service.Profile)
	registerReportingRoutes(admin.Group("/companies/:companyID"), service.Reporting, service.Projector)

	company := v1.Group("/companies/:companyID", middleware.RequireCompanyAccess(service.Policy))
	registerReportingRoutes(company, service.Reporting, service.Projector)
	registerCompanyProfileRoutes(company, service.Profile)
	registerUnlockRoutes(company, service.Unlock, middleware.RateLimit(unlockLimiter, middleware.CompanyKey))
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
