package app

import (
	"database/sql"

	userHTTP "github.com/allisson/incidenthub/internal/user/http"
	userRepository "github.com/allisson/incidenthub/internal/user/repository"
	userUseCase "github.com/allisson/incidenthub/internal/user/usecase"
)

type userComponents struct {
	userRepo    lazy[userUseCase.UserRepository]
	userUseCase lazy[userUseCase.UseCase]
	userHandler lazy[*userHTTP.UserHandler]
}

// UserRepository returns the user store for the configured driver.
func (c *Container) UserRepository() (userUseCase.UserRepository, error) {
	return c.userRepo.get(func() (userUseCase.UserRepository, error) {
		return selectRepository(c, "user",
			func(db *sql.DB) userUseCase.UserRepository { return userRepository.NewPostgreSQLUserRepository(db) },
			func(db *sql.DB) userUseCase.UserRepository { return userRepository.NewMySQLUserRepository(db) },
		)
	})
}

// UserUseCase returns the user use case. Role changes go through the mutation coordinator.
func (c *Container) UserUseCase() (userUseCase.UseCase, error) {
	return c.userUseCase.get(func() (userUseCase.UseCase, error) {
		repo, err := c.UserRepository()
		if err != nil {
			return nil, err
		}
		mutator, err := c.MutationCoordinator()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := userUseCase.NewUserUseCase(repo, c.PasswordService(), mutator)
		return userUseCase.NewUserUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// UserHandler returns the /api/users handlers.
func (c *Container) UserHandler() (*userHTTP.UserHandler, error) {
	return c.userHandler.get(func() (*userHTTP.UserHandler, error) {
		useCase, err := c.UserUseCase()
		if err != nil {
			return nil, err
		}
		return userHTTP.NewUserHandler(useCase, c.Logger()), nil
	})
}
