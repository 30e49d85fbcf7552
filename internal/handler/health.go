package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Payphone-Digital/auth-service/internal/dto"
	"github.com/Payphone-Digital/auth-service/pkg/database"
	"github.com/Payphone-Digital/auth-service/pkg/logger"
	"github.com/Payphone-Digital/auth-service/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	appName     string
	version     string
}

type HealthCheckResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// NewHealthHandler builds the health and info handler. redisClient is nil when
// Redis is disabled.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, appName, version string) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		appName:     appName,
		version:     version,
	}
}

// Info reports the application name and API version.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, dto.AppInfoResponse{App: h.appName, APIVersion: h.version})
}

// HealthCheck reports 503 when the database is down. Redis only feeds the rate
// limiter, so its failure is reported without failing the check.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := HealthCheckResponse{
		Status:    statusHealthy,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]HealthCheck),
	}

	dbStatus := h.checkDatabase(ctx)
	response.Checks["database"] = dbStatus
	if dbStatus.Status != statusHealthy {
		response.Status = statusUnhealthy
	}

	response.Checks["redis"] = h.checkRedis(ctx)

	statusCode := http.StatusOK
	if response.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	logger.GetLogger().Debug("Health check performed",
		zap.String("overall_status", response.Status),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) HealthCheck {
	if err := database.Ping(ctx, h.db); err != nil {
		logger.GetLogger().Error("Database health check failed", zap.Error(err))
		return HealthCheck{Status: statusUnhealthy, Message: "database unreachable"}
	}
	return HealthCheck{Status: statusHealthy, Message: "database is reachable"}
}

func (h *HealthHandler) checkRedis(ctx context.Context) HealthCheck {
	if h.redisClient == nil {
		return HealthCheck{Status: statusDisabled}
	}
	if err := h.redisClient.Ping(ctx); err != nil {
		logger.GetLogger().Warn("Redis health check failed", zap.Error(err))
		return HealthCheck{Status: statusUnhealthy, Message: "redis unreachable"}
	}
	return HealthCheck{
		Status:  statusHealthy,
		Message: "redis is reachable",
		Details: h.redisClient.PoolStats(),
	}
}
