package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"weather-app/internal/domain"
)

// SessionTTL es la ventana fija de validez de una sesion.
const SessionTTL = 7 * 24 * time.Hour

const sessionTokenBytes = 32

var ErrSessionAbsent = errors.New("session absent")

// SessionManager emite tokens de sesion opacos y los resuelve a usuarios.
type SessionManager struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionManager(store SessionStore) *SessionManager {
	if store == nil {
		store = NewMemorySessionStore()
	}
	return &SessionManager{
		store: store,
		ttl:   SessionTTL,
		now:   time.Now,
	}
}

// Create genera un token impredecible con crypto/rand y lo asocia al usuario.
func (m *SessionManager) Create(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("empty user id")
	}
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	now := m.now().UTC()
	session := domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve devuelve el usuario asociado a un token valido. Tokens desconocidos,
// malformados o vencidos resuelven a ErrSessionAbsent: nunca se propaga el
// detalle al llamador. Las sesiones vencidas se eliminan de forma perezosa.
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > 512 {
		return "", ErrSessionAbsent
	}
	session, ok, err := m.store.Get(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrSessionAbsent
	}
	if session.Expired(m.now().UTC()) {
		_ = m.store.Delete(ctx, token)
		return "", ErrSessionAbsent
	}
	return session.UserID, nil
}

// Invalidate destruye la sesion; es idempotente si ya no existe.
func (m *SessionManager) Invalidate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}
