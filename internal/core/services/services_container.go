package services

import (
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account service first since the ledger and check services depend on it
	container.Account = NewAccountService(repos.AccountRepo)

	container.Ledger = NewLedgerService(repos.PostingRepo, repos.AccountRepo, container.Account)
	container.Contact = NewContactService(repos.ContactRepo, container.Account)
	container.Catalog = NewCatalogService(repos.CatalogRepo)
	container.Check = NewCheckService(repos.CheckRepo, container.Account, container.Ledger)
	container.Stock = NewStockService(repos.StockRepo)
	container.Movement = NewMovementService(repos.StockRepo)

	return container
}
