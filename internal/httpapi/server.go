package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"attendance-tracker/internal/api"
	"attendance-tracker/internal/config"
	"attendance-tracker/internal/logging"
	"attendance-tracker/internal/services"
)

// RegisterValidations installs the custom binding validators on gin's
// validator engine. Safe to call more than once.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("clockaction", func(fl validator.FieldLevel) bool {
			return services.ClockAction(fl.Field().String()).IsValid()
		})
	}
}

// NewRouter builds the HTTP router with all routes and middleware wired.
func NewRouter(a *api.API, provider UserProvider, logger logging.Logger) *gin.Engine {
	RegisterValidations()

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler := NewHandler(a, logger)
	v1 := router.Group("/api/v1", BearerAuth(provider))
	{
		v1.POST("/clock", handler.Clock)
		v1.GET("/state", handler.State)
		v1.GET("/days/:date", handler.GetDay)
		v1.PUT("/days/:date", handler.ReplaceDay)
		v1.GET("/months/:period", handler.GetMonth)
		v1.POST("/months/:period/close", handler.CloseMonth)
	}

	return router
}

// Server wraps the HTTP server with its configured timeouts.
type Server struct {
	httpServer *http.Server
}

// NewServer builds a server around the router using the configured
// address and timeouts.
func NewServer(cfg config.ServerConfig, router *gin.Engine) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
