package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/app/repositories"
	"github.com/asadazo/asadazo/pkg/auth"
	"github.com/asadazo/asadazo/pkg/logger"
	"github.com/asadazo/asadazo/pkg/validate"
)

// RegisterInput is the body of POST /register.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
}

// LoginInput is the body of POST /login.
type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService owns accounts stored under user:<email>.
type AuthService struct {
	users *repositories.UserRepository
	Now   func() time.Time
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users, Now: time.Now}
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.User{}, invalid("Missing required fields", errs)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(in.Email),
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
		CreatedAt:    s.Now().UTC(),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrUserExists) {
			return models.User{}, newError(ErrEmailTaken, "Email already registered")
		}
		return models.User{}, err
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and returns the user with a signed session token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.User{}, "", invalid("Missing required fields", errs)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, "", newError(ErrInvalidCredentials, "Invalid credentials")
	}
	if err != nil {
		return models.User{}, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return models.User{}, "", newError(ErrInvalidCredentials, "Invalid credentials")
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Promote grants the admin role.
func (s *AuthService) Promote(ctx context.Context, email string) (models.User, error) {
	if strings.TrimSpace(email) == "" {
		return models.User{}, invalid("Email required", nil)
	}

	user, err := s.users.Update(ctx, email, func(u *models.User) { u.Role = models.RoleAdmin })
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return models.User{}, err
	}

	logger.WithCtx(ctx).Info("user promoted", "user_id", user.ID)
	return user, nil
}
