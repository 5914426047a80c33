package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/middleware"
	"github.com/pabg92/ned-project-bw-sub001/internal/platform/config"
)

// RealPolicy authorizes by the role and company carried in the access token.
type RealPolicy struct{}

// TestPolicy authorizes every authenticated caller. It exists for local
// development and end-to-end tests and is refused in production by config.
type TestPolicy struct{}

var (
	_ portssvc.AuthorizationPolicy = RealPolicy{}
	_ portssvc.AuthorizationPolicy = TestPolicy{}
)

// NewAuthorizationPolicy selects the policy named in configuration.
func NewAuthorizationPolicy(name string) (portssvc.AuthorizationPolicy, error) {
	switch name {
	case config.AuthPolicyReal:
		return RealPolicy{}, nil
	case config.AuthPolicyTest:
		return TestPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown authorization policy %q", name)
	}
}

func (RealPolicy) Name() string { return config.AuthPolicyReal }

func (RealPolicy) AuthorizeAdmin(_ context.Context, principal domain.Principal) error {
	if principal.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: admin role required", apperrors.ErrForbidden)
	}
	return nil
}

func (RealPolicy) AuthorizeCompanyAccess(_ context.Context, principal domain.Principal, companyID string) error {
	switch {
	case principal.Role == domain.RoleAdmin:
		return nil
	case principal.Role == domain.RoleCompany && principal.CompanyID != "" && principal.CompanyID == companyID:
		return nil
	default:
		return fmt.Errorf("%w: no access to company %s", apperrors.ErrForbidden, companyID)
	}
}

func (TestPolicy) Name() string { return config.AuthPolicyTest }

func (TestPolicy) AuthorizeAdmin(ctx context.Context, principal domain.Principal) error {
	logAllowed(ctx, "admin", principal, "")
	return nil
}

func (TestPolicy) AuthorizeCompanyAccess(ctx context.Context, principal domain.Principal, companyID string) error {
	logAllowed(ctx, "company", principal, companyID)
	return nil
}

func logAllowed(ctx context.Context, scope string, principal domain.Principal, companyID string) {
	middleware.GetLoggerFromCtx(ctx).Debug("Test authorization policy allowed request",
		slog.String("scope", scope),
		slog.String("user_id", principal.UserID),
		slog.String("company_id", companyID))
}
