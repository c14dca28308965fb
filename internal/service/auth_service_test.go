package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"weather-app/internal/domain"
	"weather-app/internal/repository"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByName  map[string]string
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByName:  make(map[string]string),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByName[user.Username]; ok {
		return repository.ErrUsernameExists
	}
	if _, ok := m.usersByEmail[user.Email]; ok {
		return repository.ErrEmailExists
	}
	m.usersByID[user.ID] = user
	m.usersByName[user.Username] = user.ID
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.usersByName[username]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.usersByID[id], nil
}

// AddFavorite replica el UPDATE condicional del repositorio real: chequeo y
// mutacion bajo el mismo lock, sin estado intermedio observable.
func (m *mockUserRepo) AddFavorite(_ context.Context, id, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if user.HasFavorite(location) {
		return repository.ErrFavoriteExists
	}
	user.Favorites = append(user.Favorites, location)
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) RemoveFavorite(_ context.Context, id, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if !user.HasFavorite(location) {
		return repository.ErrFavoriteMissing
	}
	kept := make([]string, 0, len(user.Favorites))
	for _, fav := range user.Favorites {
		if fav != location {
			kept = append(kept, fav)
		}
	}
	user.Favorites = kept
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) ListFavorites(_ context.Context, id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := make([]string, len(user.Favorites))
	copy(out, user.Favorites)
	return out, nil
}

func newTestAuthService(repo repository.UserRepository) (*AuthService, *SessionManager) {
	sessions := NewSessionManager(NewMemorySessionStore())
	return NewAuthService(zap.NewNop(), repo, sessions, nil), sessions
}

func TestAuthServiceRegister_Success(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.Username != "alice" || user.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret123" {
		t.Fatalf("password must be stored hashed")
	}
	if len(user.Favorites) != 0 {
		t.Fatalf("expected empty favorites, got %v", user.Favorites)
	}
}

func TestAuthServiceRegister_DuplicateUsername(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo)

	first, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "other@x.com", Password: "secret123",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	stored, err := repo.GetByID(context.Background(), first.ID)
	if err != nil || stored.Email != "a@x.com" {
		t.Fatalf("first user must remain unaffected: %+v %v", stored, err)
	}
}

func TestAuthServiceRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "secret123",
	}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "bob", Email: "a@x.com", Password: "secret123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthServiceRegister_WeakPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "short",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestAuthServiceLogin_Success(t *testing.T) {
	repo := newMockUserRepo()
	svc, sessions := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, token, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID || token == "" {
		t.Fatalf("unexpected login result: %+v %q", user, token)
	}

	userID, err := sessions.Resolve(context.Background(), token)
	if err != nil || userID != registered.ID {
		t.Fatalf("token must resolve to the user: %q %v", userID, err)
	}
}

// El login fallido responde igual exista o no el username: mismo error
// sentinel, sin señal de enumeracion de cuentas.
func TestAuthServiceLogin_WrongPasswordAndUnknownUserIndistinguishable(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "secret123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, errExisting := svc.Login(context.Background(), "alice", "wrongpass")
	_, _, errMissing := svc.Login(context.Background(), "nobody", "wrongpass")

	if !errors.Is(errExisting, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", errExisting)
	}
	if !errors.Is(errMissing, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", errMissing)
	}
	if errExisting.Error() != errMissing.Error() {
		t.Fatalf("error messages must not differ: %q vs %q", errExisting, errMissing)
	}
}

func TestAuthServiceLogout_TokenNoLongerResolves(t *testing.T) {
	repo := newMockUserRepo()
	svc, sessions := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "secret123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := sessions.Resolve(context.Background(), token); !errors.Is(err, ErrSessionAbsent) {
		t.Fatalf("expected ErrSessionAbsent after logout, got %v", err)
	}

	// Idempotente: repetir logout con el token ya invalido no es error.
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

type mockLimiter struct {
	allow bool
}

func (m *mockLimiter) Allow(_ string) bool {
	return m.allow
}

func TestAuthServiceLogin_RateLimited(t *testing.T) {
	repo := newMockUserRepo()
	sessions := NewSessionManager(NewMemorySessionStore())
	svc := NewAuthService(zap.NewNop(), repo, sessions, &mockLimiter{allow: false})

	_, _, err := svc.Login(context.Background(), "alice", "secret123")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}
