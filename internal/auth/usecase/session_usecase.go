package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	authService "github.com/allisson/incidenthub/internal/auth/service"
	"github.com/allisson/incidenthub/internal/database"
	apperrors "github.com/allisson/incidenthub/internal/errors"
	userDomain "github.com/allisson/incidenthub/internal/user/domain"
	userUseCase "github.com/allisson/incidenthub/internal/user/usecase"
)

// sessionUseCase implements SessionUseCase.
type sessionUseCase struct {
	txManager    database.TxManager
	users        UserService
	refreshStore RefreshStore
	tokenService authService.TokenService
}

// NewSessionUseCase creates a SessionUseCase.
func NewSessionUseCase(
	txManager database.TxManager,
	users UserService,
	refreshStore RefreshStore,
	tokenService authService.TokenService,
) SessionUseCase {
	return &sessionUseCase{
		txManager:    txManager,
		users:        users,
		refreshStore: refreshStore,
		tokenService: tokenService,
	}
}

// Register creates a VIEWER account and signs it in. The account and its first
// refresh credential are stored in one transaction.
func (s *sessionUseCase) Register(ctx context.Context, input RegisterInput) (*authDomain.Session, error) {
	var user *userDomain.User
	var refresh *authDomain.RefreshCredential

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.CreateUser(ctx, userUseCase.CreateUserInput{
			Name:     input.Name,
			Email:    input.Email,
			Password: input.Password,
			Role:     userDomain.RoleViewer,
		})
		if err != nil {
			return err
		}

		refresh, err = s.refreshStore.Create(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.session(user, refresh)
}

func (s *sessionUseCase) Login(ctx context.Context, email, password string) (*authDomain.Session, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	refresh, err := s.refreshStore.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.session(user, refresh)
}

func (s *sessionUseCase) Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error) {
	var user *userDomain.User
	var refresh *authDomain.RefreshCredential

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		refresh, err = s.refreshStore.Rotate(ctx, refreshToken)
		if err != nil {
			return err
		}

		user, err = s.users.GetUserByID(ctx, refresh.UserID)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return authDomain.ErrRefreshTokenInvalid
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.pair(user, refresh)
}

func (s *sessionUseCase) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshStore.RevokeOne(ctx, refreshToken)
}

func (s *sessionUseCase) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	_, err := s.refreshStore.RevokeAll(ctx, userID)
	return err
}

func (s *sessionUseCase) session(
	user *userDomain.User,
	refresh *authDomain.RefreshCredential,
) (*authDomain.Session, error) {
	pair, err := s.pair(user, refresh)
	if err != nil {
		return nil, err
	}
	return &authDomain.Session{User: user, Tokens: *pair}, nil
}

func (s *sessionUseCase) pair(
	user *userDomain.User,
	refresh *authDomain.RefreshCredential,
) (*authDomain.TokenPair, error) {
	access, err := s.tokenService.IssueAccess(authDomain.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.TokenPair{
		AccessToken:      access.Token,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}
