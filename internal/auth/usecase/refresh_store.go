package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/incidenthub/internal/auth/domain"
	authService "github.com/allisson/incidenthub/internal/auth/service"
	"github.com/allisson/incidenthub/internal/database"
)

// refreshStore implements RefreshStore on top of a RefreshTokenRepository.
type refreshStore struct {
	txManager    database.TxManager
	tokenRepo    RefreshTokenRepository
	tokenService authService.TokenService
	now          func() time.Time
}

// NewRefreshStore creates a RefreshStore.
func NewRefreshStore(
	txManager database.TxManager,
	tokenRepo RefreshTokenRepository,
	tokenService authService.TokenService,
) RefreshStore {
	return &refreshStore{
		txManager:    txManager,
		tokenRepo:    tokenRepo,
		tokenService: tokenService,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *refreshStore) Create(ctx context.Context, userID uuid.UUID) (*authDomain.RefreshCredential, error) {
	issued, err := s.tokenService.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}

	record := &authDomain.RefreshToken{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		TokenHash: s.tokenService.HashToken(issued.Token),
		ExpiresAt: issued.ExpiresAt,
		CreatedAt: s.now(),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &authDomain.RefreshCredential{
		UserID:    userID,
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

func (s *refreshStore) Rotate(ctx context.Context, token string) (*authDomain.RefreshCredential, error) {
	principal, err := s.tokenService.Verify(token, authDomain.TokenKindRefresh)
	if err != nil {
		return nil, authDomain.ErrRefreshTokenInvalid
	}

	var successor *authDomain.RefreshCredential
	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		record, err := s.tokenRepo.Consume(ctx, s.tokenService.HashToken(token))
		if err != nil {
			return err
		}
		if record.UserID != principal.UserID || record.Expired(s.now()) {
			return authDomain.ErrRefreshTokenInvalid
		}

		successor, err = s.Create(ctx, record.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return successor, nil
}

func (s *refreshStore) RevokeOne(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokenRepo.DeleteByHash(ctx, s.tokenService.HashToken(token))
}

func (s *refreshStore) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.tokenRepo.DeleteByUserID(ctx, userID)
}

func (s *refreshStore) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("days must be a positive number, got: %d", days)
	}
	olderThan := s.now().AddDate(0, 0, -days)
	return s.tokenRepo.DeleteExpired(ctx, olderThan, dryRun)
}
