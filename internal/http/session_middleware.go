package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"weather-app/internal/domain"
	"weather-app/internal/repository"
	"weather-app/internal/service"
)

const (
	sessionCookieName  = "session_token"
	returnToCookieName = "return_to"
	currentUserKey     = "current_user"
)

// AuthMiddleware resuelve la cookie de sesion a un usuario autenticado y lo
// adjunta al contexto de Gin de forma explicita.
type AuthMiddleware struct {
	logger   *zap.Logger
	sessions *service.SessionManager
	users    repository.UserRepository
}

func NewAuthMiddleware(logger *zap.Logger, sessions *service.SessionManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		logger:   logger,
		sessions: sessions,
		users:    users,
	}
}

// LoadUser intenta resolver la sesion del request. Cualquier fallo de
// resolucion deja el request como no autenticado; nunca corta la cadena.
func (m *AuthMiddleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		userID, err := m.sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrSessionAbsent) && m.logger != nil {
				m.logger.Warn("session resolve failed", zap.Error(err))
			}
			c.Next()
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			// Sesion valida de un usuario borrado: se trata como ausente.
			_ = m.sessions.Invalidate(c.Request.Context(), token)
			c.Next()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireAuth corta requests no autenticados. Los clientes JSON reciben 401;
// la navegacion de browser se redirige a /login recordando la ruta original.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		if wantsJSON(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			c.Abort()
			return
		}
		setReturnTo(c, c.Request.URL.Path)
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// CurrentUser obtiene el usuario autenticado desde el contexto.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

func setReturnTo(c *gin.Context, path string) {
	if !isLocalPath(path) {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(returnToCookieName, path, 600, "/", "", false, true)
}

// consumeReturnTo devuelve la ruta recordada (o "/") y borra la cookie.
func consumeReturnTo(c *gin.Context) string {
	path, err := c.Cookie(returnToCookieName)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(returnToCookieName, "", -1, "/", "", false, true)
	if err != nil || !isLocalPath(path) {
		return "/"
	}
	return path
}

// isLocalPath admite solo rutas locales absolutas, nunca URLs externas.
func isLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//")
}
