package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/meeting-notes/internal/infra/config"
	"github.com/yanqian/meeting-notes/pkg/validation"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	maxBody := cfg.HTTP.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = validation.DefaultMaxBodyBytes
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api", bodyLimitMiddleware(maxBody))
	{
		api.POST("/summarize", handler.Summarize)
		api.POST("/send-email", handler.SendEmail)
	}

	router.NoRoute(staticHandler(cfg.HTTP.StaticDir))

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

// staticHandler serves the frontend bundle for GET and HEAD when dir is set.
func staticHandler(dir string) gin.HandlerFunc {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(http.Dir(dir))
	}
	return func(c *gin.Context) {
		method := c.Request.Method
		if files == nil || (method != http.MethodGet && method != http.MethodHead) {
			abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "Not found", nil))
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
