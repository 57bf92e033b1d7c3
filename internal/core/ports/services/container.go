package services

// ServiceContainer holds all the services handed to the HTTP layer.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Ledger   LedgerSvcFacade
	Contact  ContactSvcFacade
	Catalog  CatalogSvcFacade
	Check    CheckSvcFacade
	Stock    StockSvcFacade
	Movement MovementSvcFacade
}
