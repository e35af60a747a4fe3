package server

import (
	"fmt"
	"net/http"
	"time"

	"farma-shop/internal/config"
	custommiddleware "farma-shop/internal/middleware"
	"farma-shop/internal/service"
	"farma-shop/internal/store"
	"farma-shop/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	redis  *redis.Client
}

// NewServer wires the store, services and handlers into an HTTP server.
func NewServer(cfg *config.Config, logger *zap.Logger, st *store.Store) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Rate limiting is optional; without Redis the storefront runs
	// unthrottled.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 100,
			Window:            time.Minute,
			KeyPrefix:         "rate_limit",
		}, logger))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	accountService := service.NewAccountService(st, cfg.JWT.Secret, cfg.Admin.Email, cfg.Admin.Password,
		time.Duration(cfg.JWT.AccessExpiry)*time.Hour)
	catalogService := service.NewCatalogService(st)
	cartService := service.NewCartService(st)

	accountHandler := transport.NewAccountHandler(accountService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	identityMiddleware := custommiddleware.IdentityMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)
	shopperMiddleware := custommiddleware.BlockAdmin(logger)

	accountHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	catalogHandler.RegisterRoutes(router, authMiddleware, adminMiddleware, shopperMiddleware)
	cartHandler.RegisterRoutes(router, identityMiddleware, shopperMiddleware)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		redis:  redisClient,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
