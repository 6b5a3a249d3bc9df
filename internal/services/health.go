package services

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/macrosdb/internal/config"
	"github.com/localnerve/macrosdb/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthCheckResult represents the health check response
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Cache        string            `json:"cache"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, message string) {
	r.Status = "unhealthy"
	if r.ErrorMessage == "" {
		r.ErrorMessage = message
	} else {
		r.ErrorMessage += "; " + message
	}
	r.Details[component+"_error"] = message
}

// HealthCheck checks the database and, when configured, the Redis food cache
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, cache FoodCache, log *logrus.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Cache:   "disabled",
		Details: make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database", fmt.Sprintf("Database connection error: %v", err))
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("database", fmt.Sprintf("Database ping failed: %v", err))
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if cfg.RedisURL != "" {
		if err := utils.PingRedis(ctx, cfg.RedisURL); err != nil {
			result.Cache = "unreachable"
			result.fail("cache", fmt.Sprintf("Redis ping failed: %v", err))
		} else if cache == nil {
			result.Cache = "error"
			result.fail("cache", "Redis is configured but the food cache is not")
		} else if err := cache.Ping(ctx); err != nil {
			result.Cache = "error"
			result.fail("cache", fmt.Sprintf("Redis PING failed: %v", err))
		} else {
			result.Cache = "ok"
		}
	}

	if result.Status == "healthy" {
		log.Debug("health check passed - all systems operational")
	} else {
		log.WithField("error", result.ErrorMessage).Warn("health check failed")
	}

	return result
}
