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
	"encoding/json"
	"os"
	"time"

	"github.com/localnerve/macrosdb/internal/config"
	"github.com/localnerve/macrosdb/internal/database"
	"github.com/localnerve/macrosdb/internal/logging"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred closes happen before exit
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logrus.Errorf("Failed to load configuration: %v", err)
		return 2
	}
	log := logging.New(cfg.LogLevel)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Error("database unavailable")
		return 1
	}
	defer database.Close(db)

	var cache services.FoodCache
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisFoodCache(cfg.RedisURL, time.Minute)
		if err != nil {
			log.WithError(err).Error("invalid REDIS_URL")
			return 2
		}
		defer redisCache.Close()
		cache = redisCache
	}

	result := services.HealthCheck(context.Background(), cfg, db, cache, log)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.WithError(err).Error("failed to write health report")
		return 2
	}

	if result.Status != "healthy" {
		return 1
	}
	return 0
}
