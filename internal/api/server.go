package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"seatpao/internal/cache"
	"seatpao/internal/config"
	"seatpao/internal/database"
	"seatpao/internal/external"
	"seatpao/internal/handlers"
	"seatpao/internal/logger"
	"seatpao/internal/messaging"
	"seatpao/internal/middleware"
	"seatpao/internal/repository"
	"seatpao/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
}

// NewServer connects every backing service and wires the routes
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	gateway, err := external.NewStripeGateway(cfg.Payment)
	if err != nil {
		natsClient.Close()
		db.Close()
		return nil, err
	}

	// The confirmation cache is an optimisation; run without it if Valkey is down
	var confirmations service.ConfirmationCache
	valkeyClient, err := cache.NewValkeyClient(ctx, cfg.Redis)
	if err != nil {
		logger.Get().Warn("Confirmation cache disabled", "error", err)
	} else {
		confirmations = valkeyClient
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(service.Repositories{
		Tickets:  repos.Tickets,
		Bookings: repos.Bookings,
		Payments: repos.Payments,
		Users:    repos.Users,
	}, gateway, natsClient, confirmations, service.Options{
		Currency:       cfg.Payment.Currency,
		GatewayTimeout: cfg.Payment.Timeout,
	})

	server := &Server{
		router:   newRouter(cfg),
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
	}
	server.setupRoutes()

	return server, nil
}

func newRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader, middleware.ActorHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return router
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	api.Use(middleware.Timeout(s.config.RequestTimeout))
	h.Register(api)

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())

	cacheStatus := "disabled"
	if s.valkey != nil {
		cacheStatus = "healthy"
		if err := s.valkey.Ping(c.Request.Context()); err != nil {
			cacheStatus = "unhealthy"
		}
	}

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   dbHealth.Status,
		"service":  "seatpao-api",
		"database": dbHealth,
		"cache":    cacheStatus,
	})
}

// GetRouter returns the router for the http.Server
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the backing connections
func (s *Server) Cleanup() error {
	log := logger.Get()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
