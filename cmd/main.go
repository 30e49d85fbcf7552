package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/auth-service/config"
	"github.com/Payphone-Digital/auth-service/internal/handler"
	"github.com/Payphone-Digital/auth-service/internal/middleware"
	"github.com/Payphone-Digital/auth-service/internal/repository"
	"github.com/Payphone-Digital/auth-service/internal/router"
	"github.com/Payphone-Digital/auth-service/internal/service"
	"github.com/Payphone-Digital/auth-service/pkg/circuit"
	"github.com/Payphone-Digital/auth-service/pkg/database"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/Payphone-Digital/auth-service/pkg/metrics"
	"github.com/Payphone-Digital/auth-service/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", config.App.APIVersion),
		zap.String("db_driver", config.Database.Driver),
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDatabase(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	hasher := service.NewBcryptHasher()

	if config.Database.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		created, err := database.Seed(ctx, db, hasher, database.DefaultSeedUsers())
		cancel()
		if err != nil {
			logger.GetLogger().Error("Failed to seed database", zap.Error(err))
		} else {
			logger.GetLogger().Info("Database seeded successfully", zap.Int("created", created))
		}
	}

	var redisClient *redis.Client
	if config.Redis.Enabled {
		redisClient, err = redis.NewClient(config)
		if err != nil {
			logger.GetLogger().Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// Metrics
	var recorder metrics.Recorder = metrics.Nop{}
	var metricsHandler http.Handler
	if config.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewCollector(registry)
		metricsHandler = metrics.Handler(registry)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)

	// Services
	jwtService := service.NewJWTService(config.JWT.Secret, config.JWT.Expiration)
	userService := service.NewUserService(userRepo, hasher, jwtService, recorder, config.JWT.Expiration)
	authGuard := service.NewAuthGuard(jwtService, userRepo, recorder)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(userService)
	healthHandler := handler.NewHealthHandler(db, redisClient, config.App.Name, config.App.APIVersion)

	// Middleware
	validationMiddleware := middleware.NewValidationMiddleware()
	jwtMiddleware := middleware.NewJWTMiddleware(authGuard)

	var limiter middleware.Limiter
	if config.RateLimit.Enabled {
		memoryLimiter := middleware.NewMemoryLimiter(config.RateLimit.Request, config.RateLimit.Duration)
		defer memoryLimiter.Stop()
		limiter = memoryLimiter

		if redisClient != nil {
			limiter = middleware.NewFailoverLimiter(
				middleware.NewRedisLimiter(redisClient, config.RateLimit.Request, config.RateLimit.Duration),
				memoryLimiter,
				circuit.NewBreaker("redis-ratelimit", circuit.DefaultConfig()),
			)
		}
	}

	r := router.NewRouter(
		userHandler,
		authHandler,
		healthHandler,

		validationMiddleware,
		jwtMiddleware,
		limiter,
		recorder,
		metricsHandler,
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:         config.ServerAddress(),
		Handler:      r,
		ReadTimeout:  config.App.ReadTimeout,
		WriteTimeout: config.App.WriteTimeout,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("address", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("address", srv.Addr),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.GetLogger().Error("Server forced to shutdown", zap.Error(err))
	}
	logger.GetLogger().Info("Server exited")
}

func openDatabase(config *configs.Config) (*gorm.DB, error) {
	if config.Database.Driver == "sqlite" {
		return database.NewSQLiteDB(config.Database.SQLitePath)
	}
	return database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
}
