// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"propdesk_backend/internal/auth"
	"propdesk_backend/internal/company"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/jobs"
	"propdesk_backend/internal/join"
	"propdesk_backend/internal/middleware"
	"propdesk_backend/internal/notification"
	"propdesk_backend/internal/platform/elasticsearch"
	"propdesk_backend/internal/platform/events"
	"propdesk_backend/internal/property"
	"propdesk_backend/internal/shared"
	"propdesk_backend/internal/staff"
	"propdesk_backend/internal/task"
)

// Server holds the HTTP server and everything it needs to run. ESClient and
// AppLogger are exported so main can prepare the search index before serving.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	DB        *gorm.DB
	ESClient  *elasticsearch.ESClientWrapper
	AppLogger *zap.Logger

	taskOverdueJob *jobs.TaskOverdueJob
	publisher      events.Publisher
}

// NewServer assembles the router: global middleware, CORS, and every module's
// routes under /api/v1.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	provider identity.Provider,
	profileResolver shared.ProfileResolver,
	authHandler *auth.Handler,
	joinHandler *join.Handler,
	companyHandler *company.Handler,
	staffHandler *staff.Handler,
	propertyHandler *property.Handler,
	taskHandler *task.Handler,
	notificationHandler *notification.Handler,
	taskOverdueJob *jobs.TaskOverdueJob,
	publisher events.Publisher,
	esClient *elasticsearch.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(provider, profileResolver, logger.Named("AuthMiddleware"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "PropDesk API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1, authMW)
	joinHandler.RegisterRoutes(v1)
	companyHandler.RegisterRoutes(v1, authMW)
	staffHandler.RegisterRoutes(v1, authMW)
	propertyHandler.RegisterRoutes(v1, authMW)
	taskHandler.RegisterRoutes(v1, authMW)
	notificationHandler.RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		DB:             db,
		ESClient:       esClient,
		AppLogger:      logger,
		taskOverdueJob: taskOverdueJob,
		publisher:      publisher,
	}, nil
}

func (s *Server) Start() error {
	if s.taskOverdueJob != nil {
		if err := s.taskOverdueJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start task overdue job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the cron job, flushes the event publisher, and drains the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.taskOverdueJob != nil {
		s.taskOverdueJob.Stop()
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	return s.httpServer.Shutdown(ctx)
}
