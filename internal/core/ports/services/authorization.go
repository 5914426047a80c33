package services

import (
	"context"

	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// AuthorizationPolicy decides whether a principal may act. Implementations
// return apperrors.ErrForbidden on denial.
type AuthorizationPolicy interface {
	// Name identifies the policy in logs.
	Name() string

	// AuthorizeAdmin guards back-office operations.
	AuthorizeAdmin(ctx context.Context, principal domain.Principal) error

	// AuthorizeCompanyAccess guards operations on one company's credits and unlocks.
	AuthorizeCompanyAccess(ctx context.Context, principal domain.Principal, companyID string) error
}
