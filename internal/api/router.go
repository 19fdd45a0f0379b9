package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nekogravitycat/case-admin-backend/internal/auth"
	"github.com/nekogravitycat/case-admin-backend/internal/cases"
	caseHttp "github.com/nekogravitycat/case-admin-backend/internal/cases/http"
	"github.com/nekogravitycat/case-admin-backend/internal/file"
	fileHttp "github.com/nekogravitycat/case-admin-backend/internal/file/http"
	"github.com/nekogravitycat/case-admin-backend/internal/logger"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/response"
	"github.com/nekogravitycat/case-admin-backend/internal/user"
	userHttp "github.com/nekogravitycat/case-admin-backend/internal/user/http"
)

// Config holds everything the router needs to wire the HTTP surface.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	CookieSecure   bool
	MaxUploadBytes int64
	Logger         *logger.Logger
	UserService    user.Service
	CaseService    cases.Service
	FileService    file.Service
	JWTManager     *auth.JWTManager
}

func corsConfig(cfg Config) cors.Config {
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		var origins []string
		for _, o := range strings.Split(cfg.ProdOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		config.AllowOrigins = origins
	} else {
		config.AllowOrigins = []string{
			"http://localhost:3000", // console web client
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", traceIDHeader}
	config.ExposeHeaders = []string{traceIDHeader}
	// The session travels in a cookie.
	config.AllowCredentials = true
	return config
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	r := gin.New()

	// Global Middleware:
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	// - TraceID/RequestLogger: per-request zerolog logger and access log.
	r.Use(gin.Recovery(), TraceID(cfg.Logger), RequestLogger(), metrics.Middleware())
	r.Use(cors.New(corsConfig(cfg)))

	r.GET("/healthz", healthz(cfg.UserService))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// authMiddleware: Validates the session and resolves the caller.
	authMiddleware := auth.AuthRequired(cfg.JWTManager, cfg.UserService)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	fileHandler := fileHttp.NewHandler(cfg.FileService)
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager, fileHandler, userHttp.Options{
		CookieSecure:   cfg.CookieSecure,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	caseHandler := caseHttp.NewHandler(cfg.CaseService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		caseHttp.RegisterRoutes(v1, caseHandler, authMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware)
	}

	return r
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthz(store pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("health check failed")
			response.Message(c, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
