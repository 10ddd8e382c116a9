package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/splitloop/splitloop_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:    newPgxUserRepository(dbPool),
		GroupRepo:   newPgxGroupRepository(dbPool),
		ExpenseRepo: newPgxExpenseRepository(dbPool),
	}
}
