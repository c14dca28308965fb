package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"weather-app/internal/service"
)

// FavoritesHandler mantiene dependencias para endpoints de favoritos.
// Ambos endpoints responden siempre JSON: los consume el script de la pagina
// de resultados, no la navegacion.
type FavoritesHandler struct {
	logger    *zap.Logger
	favorites *service.FavoritesService
}

func NewFavoritesHandler(logger *zap.Logger, favorites *service.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{
		logger:    logger,
		favorites: favorites,
	}
}

// Add maneja POST /favorites/add.
func (h *FavoritesHandler) Add(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}

	location, ok := h.bindLocation(c)
	if !ok {
		return
	}

	if err := h.favorites.Add(c.Request.Context(), user.ID, location); err != nil {
		h.respondFavoritesError(c, err, "could not add favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "added", "location": location})
}

// Remove maneja POST /favorites/remove.
func (h *FavoritesHandler) Remove(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
		return
	}

	location, ok := h.bindLocation(c)
	if !ok {
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), user.ID, location); err != nil {
		h.respondFavoritesError(c, err, "could not remove favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed", "location": location})
}

func (h *FavoritesHandler) bindLocation(c *gin.Context) (string, bool) {
	var req struct {
		Location string `json:"location" form:"location"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("invalid favorites request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "location is required"})
		return "", false
	}
	return req.Location, true
}

func (h *FavoritesHandler) respondFavoritesError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEmptyLocation),
		errors.Is(err, service.ErrAlreadyFavorited),
		errors.Is(err, service.ErrNotFavorited),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	h.logger.Error("favorites update failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
}
