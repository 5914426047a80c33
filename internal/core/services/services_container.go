package services

import (
	portsrepo "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/repositories"
	portssvc "github.com/pabg92/ned-project-bw-sub001/internal/core/ports/services"
	"github.com/pabg92/ned-project-bw-sub001/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// publisher may be nil when ledger events are emitted by the storage layer instead.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher portssvc.LedgerEventPublisher) (*portssvc.ServiceContainer, error) {
	policy, err := NewAuthorizationPolicy(cfg.AuthPolicy)
	if err != nil {
		return nil, err
	}

	container := &portssvc.ServiceContainer{Policy: policy}

	container.Admin = NewAdminAdjustmentService(repos.LedgerRepo, WithAdminEvents(publisher))
	container.Unlock = NewUnlockService(repos.LedgerRepo, repos.ProfileRepo, repos.CompanyRepo, WithUnlockEvents(publisher))
	container.Projector = NewBalanceProjector(repos.LedgerRepo)
	container.Reporting = NewReportingService(repos.LedgerRepo, WithHistoryMaxLimit(cfg.HistoryMaxLimit))
	container.Company = NewCompanyService(repos.CompanyRepo, WithCompanyEvents(publisher))
	container.Profile = NewProfileService(repos.ProfileRepo, repos.LedgerRepo)

	return container, nil
}
