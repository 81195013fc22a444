package users

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/staylytics/backend/internal/store/users"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type CreateRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type DeleteRequest struct {
	Username string `json:"username" binding:"required"`
}

type UsersService struct {
	log  *zap.Logger
	repo *users.UsersRepository
}

func NewUsersService(log *zap.Logger, repo *users.UsersRepository) *UsersService {
	return &UsersService{log: log, repo: repo}
}

// Create stores a new user. Passwords are bcrypt hashed before they touch the
// database; the plaintext is never persisted.
func (s *UsersService) Create(ctx context.Context, req CreateRequest) (*users.User, error) {
	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}
	if existing, err := s.repo.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &users.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *UsersService) List(ctx context.Context, skip, limit int) ([]*users.User, error) {
	return s.repo.List(ctx, skip, limit)
}

// Update replaces username, email and password of the user with the given id.
func (s *UsersService) Update(ctx context.Context, id int64, req CreateRequest) (*users.User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrUserNotFound
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.Update(ctx, id, req.Username, req.Email, string(hashedPassword)); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Delete removes the user with the given username.
func (s *UsersService) Delete(ctx context.Context, username string) (*users.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.repo.DeleteByUsername(ctx, username); err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyCredentials checks a basic-auth username/password pair against the
// stored bcrypt hash.
func (s *UsersService) VerifyCredentials(ctx context.Context, username, password string) (*users.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
