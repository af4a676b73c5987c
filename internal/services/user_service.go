package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"genpay/internal/models"
	"genpay/internal/repositories"
)

type UserService interface {
	CreateUser(ctx context.Context, user *models.User, plainPassword string) (int, error)
	GetByUsername(ctx context.Context, instanceID int, username string) (*models.User, error)
	ListUsers(ctx context.Context, instanceID int) ([]*models.User, error)
	HasUsers(ctx context.Context) (bool, error)
	RecordLogin(ctx context.Context, userID int) error
	UpgradePassword(ctx context.Context, userID int, plainPassword string) error
	UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error
	GetByRefresh(ctx context.Context, token string) (*models.User, error)
}

type userService struct {
	repo         *repositories.UserRepository
	emailService EmailService
	authService  AuthService
}

func NewUserService(repo *repositories.UserRepository, emailService EmailService, authService AuthService) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
	}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User, plainPassword string) (int, error) {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return 0, fmt.Errorf("username is required")
	}
	if len(strings.TrimSpace(plainPassword)) < 4 {
		return 0, fmt.Errorf("password must be at least 4 characters")
	}
	if user.InstanceID == 0 {
		user.InstanceID = 1
	}

	hash, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return 0, err
	}
	user.PasswordHash = hash

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return 0, err
	}

	if s.emailService != nil && user.Email != "" {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.FullName); err != nil {
			// warn but do not fail creation
			log.Printf("[users][create] warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}
	return id, nil
}

func (s *userService) GetByUsername(ctx context.Context, instanceID int, username string) (*models.User, error) {
	return s.repo.GetActiveByUsername(ctx, instanceID, username)
}

func (s *userService) ListUsers(ctx context.Context, instanceID int) ([]*models.User, error) {
	return s.repo.List(ctx, instanceID)
}

func (s *userService) HasUsers(ctx context.Context) (bool, error) {
	n, err := s.repo.Count(ctx)
	return n > 0, err
}

func (s *userService) RecordLogin(ctx context.Context, userID int) error {
	return s.repo.UpdateLastLogin(ctx, userID)
}

// UpgradePassword rehashes a legacy plaintext credential with bcrypt. Called
// from the login path when the stored value is not a bcrypt hash.
func (s *userService) UpgradePassword(ctx context.Context, userID int, plainPassword string) error {
	hash, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, userID, hash)
}

func (s *userService) UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(ctx, userID, token, expiresAt)
}

func (s *userService) GetByRefresh(ctx context.Context, token string) (*models.User, error) {
	return s.repo.GetByRefresh(ctx, token)
}
