package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"weather-app/internal/repository"
)

var (
	ErrEmptyLocation    = errors.New("location is required")
	ErrAlreadyFavorited = errors.New("Location already exists in favorites")
	ErrNotFavorited     = errors.New("Location not found in favorites")
	ErrUserNotFound     = errors.New("user not found")
)

// FavoritesService mantiene el conjunto de ubicaciones favoritas por usuario.
// La comparacion es por string exacto: "Paris" y "paris" son entradas
// distintas, igual que en el origen de datos. La atomicidad de add/remove la
// garantiza el UPDATE condicional del repositorio.
type FavoritesService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewFavoritesService(logger *zap.Logger, users repository.UserRepository) *FavoritesService {
	return &FavoritesService{
		logger: logger,
		users:  users,
	}
}

func (s *FavoritesService) Add(ctx context.Context, userID, location string) error {
	if s.users == nil {
		return errors.New("favorites service not configured")
	}
	if strings.TrimSpace(location) == "" {
		return ErrEmptyLocation
	}
	err := s.users.AddFavorite(ctx, userID, location)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrFavoriteExists):
		return ErrAlreadyFavorited
	case errors.Is(err, pgx.ErrNoRows):
		return ErrUserNotFound
	}
	return err
}

func (s *FavoritesService) Remove(ctx context.Context, userID, location string) error {
	if s.users == nil {
		return errors.New("favorites service not configured")
	}
	if strings.TrimSpace(location) == "" {
		return ErrEmptyLocation
	}
	err := s.users.RemoveFavorite(ctx, userID, location)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrFavoriteMissing):
		return ErrNotFavorited
	case errors.Is(err, pgx.ErrNoRows):
		return ErrUserNotFound
	}
	return err
}

func (s *FavoritesService) List(ctx context.Context, userID string) ([]string, error) {
	if s.users == nil {
		return nil, errors.New("favorites service not configured")
	}
	favorites, err := s.users.ListFavorites(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return favorites, nil
}
