package pgsql

import (
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	postingRepo := newPgxPostingRepository(dbPool, accountRepo)
	contactRepo := newPgxContactRepository(dbPool)
	catalogRepo := newPgxCatalogRepository(dbPool)
	checkRepo := newPgxCheckRepository(dbPool)
	stockRepo := newPgxStockRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo: accountRepo,
		PostingRepo: postingRepo,
		ContactRepo: contactRepo,
		CatalogRepo: catalogRepo,
		CheckRepo:   checkRepo,
		StockRepo:   stockRepo,
	}
}
