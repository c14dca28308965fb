package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"weather-app/internal/weather"
)

const weatherRetryMessage = "Could not retrieve weather data, please try again."

// SearchHandler mantiene dependencias para la busqueda de clima.
type SearchHandler struct {
	logger   *zap.Logger
	provider weather.Provider
}

func NewSearchHandler(logger *zap.Logger, provider weather.Provider) *SearchHandler {
	return &SearchHandler{
		logger:   logger,
		provider: provider,
	}
}

// Home maneja GET /.
func (h *SearchHandler) Home(c *gin.Context) {
	user, _ := CurrentUser(c)
	c.HTML(http.StatusOK, "search.html", gin.H{"user": user})
}

// Search maneja GET /search?location=.
func (h *SearchHandler) Search(c *gin.Context) {
	location := c.Query("location")
	if location == "" {
		if wantsJSON(c) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "location is required"})
			return
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	conditions, err := h.provider.Current(c.Request.Context(), location)
	if err != nil {
		h.respondSearchError(c, err, location)
		return
	}

	user, loggedIn := CurrentUser(c)
	isFavorite := loggedIn && user.HasFavorite(location)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"weather":     conditions,
			"location":    location,
			"is_favorite": isFavorite,
		})
		return
	}
	c.HTML(http.StatusOK, "weather.html", gin.H{
		"weather":    conditions,
		"location":   location,
		"isFavorite": isFavorite,
		"user":       user,
		"loggedIn":   loggedIn,
	})
}

// respondSearchError degrada fallas del proveedor a un aviso de reintento.
func (h *SearchHandler) respondSearchError(c *gin.Context, err error, location string) {
	if wantsJSON(c) {
		switch {
		case errors.Is(err, weather.ErrLocationUnknown):
			c.JSON(http.StatusNotFound, gin.H{"message": "location not found"})
		case errors.Is(err, weather.ErrUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"message": weatherRetryMessage})
		default:
			h.logger.Error("search failed", zap.Error(err), zap.String("location", location))
			c.JSON(http.StatusInternalServerError, gin.H{"message": weatherRetryMessage})
		}
		return
	}
	user, _ := CurrentUser(c)
	c.HTML(http.StatusOK, "search.html", gin.H{"error": weatherRetryMessage, "user": user})
}
