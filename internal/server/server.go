package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"brew-stock/internal/config"
	"brew-stock/internal/database"
	"brew-stock/internal/events"
	custommiddleware "brew-stock/internal/middleware"
	"brew-stock/internal/repository"
	"brew-stock/internal/service"
	"brew-stock/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          database.Service
	redis       *redis.Client
	publisher   events.Publisher
	userService service.UserService
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info("Publishing stock events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		publisher = events.NewNopPublisher()
		logger.Info("No Kafka brokers configured, stock events disabled")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.DB())
	refreshTokenRepo := repository.NewRefreshTokenRepository(db.DB())
	categoryRepo := repository.NewCategoryRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	stockRepo := repository.NewStockLogRepository(db.DB())

	// Services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	stockService := service.NewStockService(stockRepo, productRepo, publisher, cfg.Stock, logger)
	reportService := service.NewReportService(productRepo, stockRepo, cfg.Stock.Location)

	// Middleware
	auth := custommiddleware.AuthMiddleware(userService, logger)
	ownerOnly := custommiddleware.RequireOwner(logger)
	rateLimit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimit.Enabled {
		limiter := custommiddleware.NewRedisRateLimiter(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "brew_stock:auth",
		})
		rateLimit = custommiddleware.RateLimitMiddleware(limiter, logger)
	}

	s := &Server{
		config:      cfg,
		logger:      logger,
		db:          db,
		redis:       redisClient,
		publisher:   publisher,
		userService: userService,
	}

	router.Get("/health", s.health)

	transport.NewUserHandler(userService, logger).RegisterRoutes(router, auth, ownerOnly, rateLimit)
	transport.NewCatalogHandler(catalogService, logger).RegisterRoutes(router, auth, ownerOnly)
	transport.NewStockHandler(stockService, logger).RegisterRoutes(router, auth)
	transport.NewReportHandler(reportService, logger).RegisterRoutes(router, auth, ownerOnly)

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// EnsureOwner creates the bootstrap owner account when none exists
func (s *Server) EnsureOwner(ctx context.Context) error {
	created, err := s.userService.EnsureOwner(ctx, s.config.Bootstrap.OwnerEmail, s.config.Bootstrap.OwnerPassword)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("Bootstrap owner account created", zap.String("email", s.config.Bootstrap.OwnerEmail))
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{"status": "ok"}

	dbHealth := s.db.Health()
	body["database"] = dbHealth
	if dbHealth["status"] != "up" {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		body["redis"] = "down"
	} else {
		body["redis"] = "up"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if err := s.publisher.Close(); err != nil {
		s.logger.Error("Failed to close event publisher", zap.Error(err))
	}

	if err := s.redis.Close(); err != nil {
		s.logger.Error("Failed to close redis client", zap.Error(err))
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database connection", zap.Error(err))
	}

	s.logger.Sync()
	return nil
}
