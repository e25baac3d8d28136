package app

import (
	"context"
	"database/sql"
	"fmt"

	authHTTP "github.com/allisson/incidenthub/internal/auth/http"
	authRepository "github.com/allisson/incidenthub/internal/auth/repository"
	authService "github.com/allisson/incidenthub/internal/auth/service"
	authUseCase "github.com/allisson/incidenthub/internal/auth/usecase"
)

type authComponents struct {
	keyring         lazy[*authService.Keyring]
	tokenService    lazy[authService.TokenService]
	passwordService lazy[authService.PasswordService]
	refreshRepo     lazy[authUseCase.RefreshTokenRepository]
	refreshStore    lazy[authUseCase.RefreshStore]
	sessionUseCase  lazy[authUseCase.SessionUseCase]
	sessionHandler  lazy[*authHTTP.SessionHandler]
}

// Keyring returns the access and refresh signing keys, decrypted through the
// configured secrets keeper when one is set.
func (c *Container) Keyring() (*authService.Keyring, error) {
	return c.keyring.get(func() (*authService.Keyring, error) {
		keyring, err := authService.LoadKeyring(
			context.Background(),
			c.config.AccessTokenSecret,
			c.config.RefreshTokenSecret,
			c.config.SecretsKeeperURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing keys: %w", err)
		}
		return keyring, nil
	})
}

// TokenService returns the credential issuer and verifier.
func (c *Container) TokenService() (authService.TokenService, error) {
	return c.tokenService.get(func() (authService.TokenService, error) {
		keyring, err := c.Keyring()
		if err != nil {
			return nil, err
		}
		return authService.NewTokenService(
			keyring,
			c.config.AccessTokenExpiration,
			c.config.RefreshTokenExpiration,
		), nil
	})
}

// PasswordService returns the argon2id password hasher.
func (c *Container) PasswordService() authService.PasswordService {
	service, _ := c.passwordService.get(func() (authService.PasswordService, error) {
		return authService.NewPasswordService(), nil
	})
	return service
}

// RefreshTokenRepository returns the refresh credential store for the configured driver.
func (c *Container) RefreshTokenRepository() (authUseCase.RefreshTokenRepository, error) {
	return c.refreshRepo.get(func() (authUseCase.RefreshTokenRepository, error) {
		return selectRepository(c, "refresh token",
			func(db *sql.DB) authUseCase.RefreshTokenRepository {
				return authRepository.NewPostgreSQLRefreshTokenRepository(db)
			},
			func(db *sql.DB) authUseCase.RefreshTokenRepository {
				return authRepository.NewMySQLRefreshTokenRepository(db)
			},
		)
	})
}

// RefreshStore returns the refresh store with atomic rotation.
func (c *Container) RefreshStore() (authUseCase.RefreshStore, error) {
	return c.refreshStore.get(func() (authUseCase.RefreshStore, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for refresh store: %w", err)
		}
		repo, err := c.RefreshTokenRepository()
		if err != nil {
			return nil, err
		}
		tokenService, err := c.TokenService()
		if err != nil {
			return nil, err
		}
		return authUseCase.NewRefreshStore(txManager, repo, tokenService), nil
	})
}

// SessionUseCase returns the register, login, refresh and logout flows.
func (c *Container) SessionUseCase() (authUseCase.SessionUseCase, error) {
	return c.sessionUseCase.get(func() (authUseCase.SessionUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for session use case: %w", err)
		}
		users, err := c.UserUseCase()
		if err != nil {
			return nil, err
		}
		store, err := c.RefreshStore()
		if err != nil {
			return nil, err
		}
		tokenService, err := c.TokenService()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := authUseCase.NewSessionUseCase(txManager, users, store, tokenService)
		return authUseCase.NewSessionUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// SessionHandler returns the /api/auth handlers.
func (c *Container) SessionHandler() (*authHTTP.SessionHandler, error) {
	return c.sessionHandler.get(func() (*authHTTP.SessionHandler, error) {
		useCase, err := c.SessionUseCase()
		if err != nil {
			return nil, err
		}
		return authHTTP.NewSessionHandler(useCase, c.Logger()), nil
	})
}
