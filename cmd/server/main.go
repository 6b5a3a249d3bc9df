// main.go
//
// A coaching nutrition data service: foods, recipes, meals and diet plans
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of macrosdb.
// macrosdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// macrosdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with macrosdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/localnerve/macrosdb/internal/config"
	"github.com/localnerve/macrosdb/internal/database"
	"github.com/localnerve/macrosdb/internal/handlers"
	"github.com/localnerve/macrosdb/internal/logging"
	"github.com/localnerve/macrosdb/internal/metrics"
	"github.com/localnerve/macrosdb/internal/middleware"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/localnerve/macrosdb/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const foodCacheTTL = 10 * time.Minute

func main() {
	os.Exit(run())
}

// run owns every resource the server opens. Startup failures return instead of exiting
// so the deferred closes still release the pool and the Redis client.
func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Errorf("Failed to load configuration: %v", err)
		return 1
	}
	log := logging.New(cfg.LogLevel)

	// Connect to database, the one pool for this process
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Errorf("Failed to connect to database: %v", err)
		return 1
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("failed to close database pool")
		}
	}()

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Errorf("Failed to run migrations: %v", err)
		return 1
	}

	ctx := context.Background()
	if cfg.SeedSystemFoods {
		added, err := database.SeedSystemFoods(ctx, db, log)
		if err != nil {
			log.Errorf("Failed to seed system foods: %v", err)
			return 1
		}
		log.WithField("added", added).Info("system foods seeded")
	}

	storeOptions := []services.Option{services.WithLogger(log)}
	var cache services.FoodCache
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisFoodCache(cfg.RedisURL, foodCacheTTL)
		if err != nil {
			log.Errorf("Failed to configure food cache: %v", err)
			return 1
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.WithError(err).Warn("failed to close food cache")
			}
		}()
		cache = redisCache
		storeOptions = append(storeOptions, services.WithFoodCache(redisCache))
	}
	store := services.NewStore(db, storeOptions...)

	auth := services.NewAuthService(db, cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour, log)
	if err := auth.EnsureSuperAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
		log.Errorf("Failed to create super admin: %v", err)
		return 1
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Errorf("Failed to register metrics: %v", err)
		return 1
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(compress.New())
	app.Use(middleware.CORS(cfg.CORSOrigins))

	// Prometheus metrics
	prom := fiberprometheus.New("macrosdb")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// API routes under /api
	api := app.Group("/api", middleware.VersionMiddleware())
	handlers.Routes(api, handlers.Dependencies{
		Config:       cfg,
		Store:        store,
		Auth:         auth,
		Cache:        cache,
		LoginLimiter: middleware.NewRateLimiter(cfg.LoginRatePerMinute),
		Log:          log,
	})

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.NotFoundResponse(c, "[404] Resource Not Found")
	})

	// Graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigs
		log.Info("Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("shutdown did not complete cleanly")
		}
	}()

	// Start server
	log.WithField("port", cfg.Port).Info("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Errorf("Failed to start server: %v", err)
		return 1
	}

	log.Info("Server stopped")
	return 0
}
