// routes.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/macrosdb/internal/config"
	"github.com/localnerve/macrosdb/internal/middleware"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/sirupsen/logrus"
)

// Dependencies are the long-lived services the routes are bound to
type Dependencies struct {
	Config       *config.Config
	Store        *services.Store
	Auth         *services.AuthService
	Cache        services.FoodCache
	LoginLimiter *middleware.RateLimiter
	Log          *logrus.Logger
}

// Routes mounts the API under router, normally the /api group
func Routes(router fiber.Router, d Dependencies) {
	authHandler := &AuthHandler{Auth: d.Auth}
	healthHandler := &HealthHandler{Config: d.Config, Store: d.Store, Cache: d.Cache, Log: d.Log}
	foodHandler := &FoodHandler{Store: d.Store}
	recipeHandler := &RecipeHandler{Store: d.Store}
	planHandler := &DietPlanHandler{Store: d.Store}
	exerciseHandler := &ExerciseHandler{Store: d.Store}
	nutritionHandler := &NutritionHandler{Store: d.Store}

	router.Get("/health", healthHandler.Health)

	auth := router.Group("/auth")
	auth.Post("/register", authHandler.Register)
	if d.LoginLimiter != nil {
		auth.Post("/login", d.LoginLimiter.Handler(), authHandler.Login)
	} else {
		auth.Post("/login", authHandler.Login)
	}

	authenticated := middleware.Authenticate(d.Auth)
	authors := middleware.RequireRole(policy.RoleCoach, policy.RoleSuperAdmin)

	foods := router.Group("/foods", authenticated)
	foods.Get("/", foodHandler.ListFoods)
	foods.Post("/", foodHandler.CreateFood)
	foods.Get("/:id", foodHandler.GetFood)
	foods.Patch("/:id", foodHandler.UpdateFood)
	foods.Delete("/:id", foodHandler.DeleteFood)

	recipes := router.Group("/recipes", authenticated)
	recipes.Get("/", recipeHandler.ListRecipes)
	recipes.Post("/", recipeHandler.CreateRecipe)
	recipes.Get("/:id", recipeHandler.GetRecipe)
	recipes.Patch("/:id", recipeHandler.UpdateRecipe)
	recipes.Delete("/:id", recipeHandler.DeleteRecipe)

	// clients read the plans assigned to them, coaches author
	plans := router.Group("/diet-plans", authenticated)
	plans.Get("/", planHandler.ListDietPlans)
	plans.Post("/", authors, planHandler.CreateDietPlan)
	plans.Get("/:id", planHandler.GetDietPlan)
	plans.Put("/:id", authors, planHandler.UpdateDietPlan)
	plans.Delete("/:id", authors, planHandler.DeleteDietPlan)
	plans.Post("/:id/meals", authors, planHandler.AddMeal)
	plans.Post("/:id/publish", middleware.RequireRole(policy.RoleSuperAdmin), planHandler.PublishDietPlan)

	exercises := router.Group("/exercises", authenticated)
	exercises.Get("/", exerciseHandler.ListExercises)
	exercises.Post("/", authors, exerciseHandler.CreateExercise)
	exercises.Get("/:id", exerciseHandler.GetExercise)
	exercises.Patch("/:id", authors, exerciseHandler.UpdateExercise)
	exercises.Delete("/:id", authors, exerciseHandler.DeleteExercise)

	calc := router.Group("/nutrition", authenticated)
	calc.Post("/calories", nutritionHandler.Calories)
	calc.Post("/convert", nutritionHandler.Convert)
	calc.Post("/meal", nutritionHandler.Meal)
	calc.Post("/plan", nutritionHandler.Plan)
}
