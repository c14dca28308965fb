package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"weather-app/internal/domain"
	"weather-app/internal/repository"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
)

const minPasswordLength = 8

// Hash bcrypt valido de un password descartado; Login compara contra el
// cuando el username no existe para que el tiempo de respuesta no revele
// si la cuenta existe.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService coordina registro, login y logout.
type AuthService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	sessions *SessionManager
	limiter  LoginRateLimiter
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, sessions *SessionManager, limiter LoginRateLimiter) *AuthService {
	return &AuthService{
		logger:   logger,
		users:    users,
		sessions: sessions,
		limiter:  limiter,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register crea un usuario con el password hasheado via bcrypt. El hash y la
// sal quedan embebidos en el formato bcrypt; nunca se almacena plaintext.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	username := strings.TrimSpace(input.Username)
	emailAddr := normalizeEmail(input.Email)
	password := input.Password

	if username == "" {
		return domain.User{}, ErrInvalidUsername
	}
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		Favorites:    []string{},
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return domain.User{}, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

// Login verifica credenciales y emite una sesion nueva. El mensaje y el costo
// del camino de fallo son identicos exista o no el username.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	if s.users == nil || s.sessions == nil {
		return domain.User{}, "", errors.New("auth service not configured")
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}

	if s.limiter != nil && !s.limiter.Allow(username) {
		return domain.User{}, "", ErrRateLimited
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// Logout invalida la sesion; repetir con un token ya invalido no es error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		if s.logger != nil {
			s.logger.Warn("logout failed", zap.Error(err))
		}
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
