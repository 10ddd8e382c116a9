package services

import (
	portsrepo "github.com/splitloop/splitloop_backend/internal/core/ports/repositories"
	portssvc "github.com/splitloop/splitloop_backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)

	// Group service first since the expense ledger depends on its
	// membership authorization.
	container.Group = NewGroupService(repos.GroupRepo, repos.ExpenseRepo)

	groupAuthorizer := container.Group.(portssvc.GroupAuthorizerSvc)
	container.Expense = NewExpenseService(repos.ExpenseRepo, groupAuthorizer)

	return container
}
