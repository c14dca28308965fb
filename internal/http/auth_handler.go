package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"weather-app/internal/service"
)

const sessionCookieMaxAge = int(service.SessionTTL / time.Second)

// AuthHandler mantiene dependencias para endpoints de registro y login.
type AuthHandler struct {
	logger   *zap.Logger
	auth     *service.AuthService
	sessions *service.SessionManager
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, auth *service.AuthService, sessions *service.SessionManager) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		auth:     auth,
		sessions: sessions,
	}
}

// ShowRegister maneja GET /register.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	user, _ := CurrentUser(c)
	c.HTML(http.StatusOK, "register.html", gin.H{"user": user})
}

// Register maneja POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `form:"email" json:"email" binding:"required,email"`
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		h.registerError(c, "all fields are required and email must be valid")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken),
			errors.Is(err, service.ErrEmailTaken),
			errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrInvalidUsername):
			h.registerError(c, err.Error())
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		if wantsJSON(c) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create account"})
			return
		}
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{"error": "could not create account"})
		return
	}

	// El registro exitoso deja al usuario ya autenticado.
	token, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("session create failed", zap.Error(err))
	} else {
		h.setSessionCookie(c, token)
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"user": user})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowLogin maneja GET /login.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	user, _ := CurrentUser(c)
	c.HTML(http.StatusOK, "login.html", gin.H{"user": user})
}

// Login maneja POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		h.loginFailure(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.loginFailure(c, http.StatusUnauthorized, "invalid username or password")
			return
		case errors.Is(err, service.ErrRateLimited):
			h.loginFailure(c, http.StatusTooManyRequests, "too many attempts")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		if wantsJSON(c) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "could not login"})
			return
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}

	h.setSessionCookie(c, token)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}
	c.Redirect(http.StatusSeeOther, consumeReturnTo(c))
}

// Logout maneja GET /logout. Repetir el logout con la sesion ya destruida
// tiene el mismo resultado.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookieName); err == nil && token != "" {
		_ = h.auth.Logout(c.Request.Context(), token)
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) registerError(c *gin.Context, message string) {
	if wantsJSON(c) {
		c.JSON(http.StatusBadRequest, gin.H{"message": message})
		return
	}
	user, _ := CurrentUser(c)
	c.HTML(http.StatusBadRequest, "register.html", gin.H{"error": message, "user": user})
}

func (h *AuthHandler) loginFailure(c *gin.Context, status int, message string) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"message": message})
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, sessionCookieMaxAge, "/", "", false, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}
