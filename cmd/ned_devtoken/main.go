// Command ned_devtoken mints access tokens for local development against the
// JWT_SECRET the server is configured with.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	"github.com/pabg92/ned-project-bw-sub001/internal/platform/config"
	"github.com/pabg92/ned-project-bw-sub001/internal/utils"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	userID := flag.String("user", "dev-admin", "user id placed in the sub claim")
	role := flag.String("role", string(domain.RoleAdmin), "admin or company")
	companyID := flag.String("company", "", "company id for company-role tokens")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to JWT_EXPIRY_DURATION")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	principal := domain.Principal{UserID: *userID, Role: domain.Role(*role), CompanyID: *companyID}
	switch principal.Role {
	case domain.RoleAdmin:
	case domain.RoleCompany:
		if principal.CompanyID == "" {
			logger.Error("company tokens need -company")
			os.Exit(2)
		}
	default:
		logger.Error("unknown role", slog.String("role", *role))
		os.Exit(2)
	}

	expiry := cfg.JWTExpiryDuration
	if *ttl > 0 {
		expiry = *ttl
	}

	token, err := utils.GenerateJWT(principal, cfg.JWTSecret, expiry, cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(token)
	logger.Info("Token issued", slog.String("role", *role), slog.Time("expires_at", time.Now().Add(expiry)))
}
