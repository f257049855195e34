package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	CORSOrigin     string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxConcurrent:  runtime.NumCPU() * 2,
		CORSOrigin:     "",
	}
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg ServerConfig, h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), recovery(), securityHeaders())
	if cfg.CORSOrigin != "" {
		cc := cors.DefaultConfig()
		cc.AllowOrigins = []string{cfg.CORSOrigin}
		cc.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		r.Use(cors.New(cc))
	}
	r.Use(limitConcurrency(cfg.MaxConcurrent), requestTimeout(cfg.RequestTimeout))

	v1 := r.Group("/api/v1")
	v1.POST("/route", h.HandleRoute)
	v1.POST("/route/coords", h.HandleRouteCoords)
	v1.GET("/nodes/:name", h.HandleNode)
	v1.GET("/map.geojson", h.HandleGeoJSON)
	v1.GET("/map.svg", h.HandleSVG)
	v1.GET("/health", h.HandleHealth)
	v1.GET("/stats", h.HandleStats)

	return r
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, h *Handlers) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg, h),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Printf("panic: %v", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	})
}

// limitConcurrency rejects requests beyond n in flight with 503.
func limitConcurrency(n int) gin.HandlerFunc {
	if n < 1 {
		n = 1
	}
	sem := make(chan struct{}, n)
	return func(c *gin.Context) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable"})
			return
		}
		c.Next()
	}
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
