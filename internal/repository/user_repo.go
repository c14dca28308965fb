package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"weather-app/internal/domain"
)

var (
	ErrUsernameExists  = errors.New("username already exists")
	ErrEmailExists     = errors.New("email already exists")
	ErrFavoriteExists  = errors.New("favorite already exists")
	ErrFavoriteMissing = errors.New("favorite missing")
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	AddFavorite(ctx context.Context, id, location string) error
	RemoveFavorite(ctx context.Context, id, location string) error
	ListFavorites(ctx context.Context, id string) ([]string, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const uniqueViolation = "23505"

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, username, email, password_hash, favorites, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	favorites := user.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		favorites,
		user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return ErrUsernameExists
		case "users_email_key":
			return ErrEmailExists
		}
		return ErrUsernameExists
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, username, email, password_hash, favorites, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `
		SELECT id, username, email, password_hash, favorites, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

// AddFavorite agrega una ubicacion en un unico UPDATE condicional: bajo dos
// llamadas concurrentes con la misma ubicacion solo una puede afectar la fila.
func (r *PgUserRepository) AddFavorite(ctx context.Context, id, location string) error {
	const query = `
		UPDATE users
		SET favorites = array_append(favorites, $2)
		WHERE id = $1 AND NOT ($2 = ANY(favorites))
	`
	tag, err := r.pool.Exec(ctx, query, id, location)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if err := r.exists(ctx, id); err != nil {
			return err
		}
		return ErrFavoriteExists
	}
	return nil
}

func (r *PgUserRepository) RemoveFavorite(ctx context.Context, id, location string) error {
	const query = `
		UPDATE users
		SET favorites = array_remove(favorites, $2)
		WHERE id = $1 AND $2 = ANY(favorites)
	`
	tag, err := r.pool.Exec(ctx, query, id, location)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if err := r.exists(ctx, id); err != nil {
			return err
		}
		return ErrFavoriteMissing
	}
	return nil
}

func (r *PgUserRepository) ListFavorites(ctx context.Context, id string) ([]string, error) {
	const query = `SELECT favorites FROM users WHERE id = $1`
	var favorites []string
	if err := r.pool.QueryRow(ctx, query, id).Scan(&favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *PgUserRepository) exists(ctx context.Context, id string) error {
	const query = `SELECT 1 FROM users WHERE id = $1`
	var one int
	return r.pool.QueryRow(ctx, query, id).Scan(&one)
}

func (r *PgUserRepository) scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Favorites,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}
