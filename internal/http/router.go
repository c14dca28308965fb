package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions agrupa rutas de assets del router.
type RouterOptions struct {
	TemplateGlob string
	StaticDir    string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	authMW *AuthMiddleware,
	searchH *SearchHandler,
	authH *AuthHandler,
	favH *FavoritesHandler,
	opts RouterOptions,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y resolucion de sesion.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), authMW.LoadUser())

	if opts.TemplateGlob != "" {
		r.LoadHTMLGlob(opts.TemplateGlob)
	}
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	r.GET("/", searchH.Home)
	r.GET("/search", searchH.Search)

	r.GET("/register", authH.ShowRegister)
	r.POST("/register", authH.Register)
	r.GET("/login", authH.ShowLogin)
	r.POST("/login", authH.Login)
	r.GET("/logout", authH.Logout)

	favorites := r.Group("/favorites", authMW.RequireAuth())
	favorites.POST("/add", favH.Add)
	favorites.POST("/remove", favH.Remove)

	r.NoRoute(notFoundHandler())

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func notFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if wantsJSON(c) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Page Not Found"})
			return
		}
		user, _ := CurrentUser(c)
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"status":  http.StatusNotFound,
			"message": "Page Not Found",
			"user":    user,
		})
	}
}

// wantsJSON distingue llamadas AJAX de navegacion de browser.
func wantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
