package services

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/macrosdb/internal/database"
	"github.com/localnerve/macrosdb/internal/devcontainers"
	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSQLServerAndRedis runs the gateway against real SQL Server and Redis containers.
// Set MACROSDB_INTEGRATION=1 to run it.
func TestSQLServerAndRedis(t *testing.T) {
	if testing.Short() || !devcontainers.Enabled() {
		t.Skip("set MACROSDB_INTEGRATION=1 to run container tests")
	}

	tc, err := devcontainers.Start(t, devcontainers.Options{Redis: true})
	require.NoError(t, err)
	defer tc.Terminate(t)

	cfg := tc.Config()
	log := quietLogger()
	db, err := database.Connect(cfg, log)
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, database.AutoMigrate(db))

	cache, err := NewRedisFoodCache(cfg.RedisURL, time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	s := NewStore(db, WithFoodCache(cache), WithLogger(log))
	coach := createUser(t, db, policy.RoleCoach, nil)

	food, err := s.CreateFood(ctx, coach, chickenInput())
	require.NoError(t, err)

	_, err = s.GetFood(ctx, food.ID)
	require.NoError(t, err)
	cached, err := cache.GetFood(ctx, food.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, food.Name, cached.Name)

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Cut", AutoCalculate: derivedMode}, []MealInput{
		{Name: "Lunch", Items: []MealItemInput{foodItem(food.ID, 150, "g")}},
		manualMeal("Dinner", 500),
	})
	require.NoError(t, err)

	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 688, *plan.CaloriesTarget)

	require.NoError(t, s.DeleteDietPlan(ctx, coach, id))
	var meals int64
	require.NoError(t, db.Model(&models.Meal{}).Where("diet_plan_id = ?", id).Count(&meals).Error)
	assert.Zero(t, meals)

	require.NoError(t, s.DeleteFood(ctx, coach, food.ID))
	cached, err = cache.GetFood(ctx, food.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)
	_, err = s.GetFood(ctx, food.ID)
	assert.True(t, types.IsNotFound(err))

	health := HealthCheck(ctx, cfg, db, cache, log)
	assert.Equal(t, "healthy", health.Status, health.ErrorMessage)
	assert.Equal(t, "ok", health.Cache)
}
