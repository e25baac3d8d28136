// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/incidenthub/internal/errors"
	"github.com/allisson/incidenthub/internal/realtime"
	"github.com/allisson/incidenthub/internal/user/domain"
	appValidation "github.com/allisson/incidenthub/internal/validation"
)

// CreateUserInput contains the input data for creating a user. An empty Role means VIEWER.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     domain.Role
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	// UpdateRole changes the role and notifies the user's own channel once committed.
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role, updatedAt time.Time) error
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	userRepo  UserRepository
	passwords PasswordHasher
	mutator   realtime.Mutator
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(userRepo UserRepository, passwords PasswordHasher, mutator realtime.Mutator) UseCase {
	return &UserUseCase{
		userRepo:  userRepo,
		passwords: passwords,
		mutator:   mutator,
	}
}

func (uc *UserUseCase) validateCreateUserInput(input CreateUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(2, 100).Error("name must be between 2 and 100 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(6, 128).Error("password must be between 6 and 128 characters"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	if input.Role != "" && !input.Role.Valid() {
		return appValidation.FieldError("role", "must be one of ADMIN, RESPONDER, VIEWER")
	}
	return nil
}

// CreateUser validates the input, hashes the password and stores the user.
func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := uc.validateCreateUserInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwords.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleViewer
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      input.Name,
		Email:     input.Email,
		Role:      role,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (uc *UserUseCase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !uc.passwords.Compare(password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// ListUsers returns every user, newest first.
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return uc.userRepo.List(ctx)
}

// UpdateRole changes a user's role. Credentials already issued keep the old role until they are refreshed.
func (uc *UserUseCase) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, appValidation.FieldError("role", "must be one of ADMIN, RESPONDER, VIEWER")
	}

	var updated *domain.User
	var previous domain.Role

	err := uc.mutator.Execute(ctx,
		func(ctx context.Context) error {
			user, err := uc.userRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			previous = user.Role

			now := time.Now().UTC()
			if err := uc.userRepo.UpdateRole(ctx, id, role, now); err != nil {
				return err
			}

			user.Role = role
			user.UpdatedAt = now
			updated = user
			return nil
		},
		func() realtime.Fact {
			return realtime.NewFact(realtime.EventUserRoleUpdated, realtime.EntityUser, id, updated.Summary()).
				WithPrevious(map[string]any{"role": previous}).
				To(realtime.UserChannel(id))
		},
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}
