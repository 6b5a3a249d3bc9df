package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	derivedMode = types.FlexBool{Value: true, Set: true}
	manualMode  = types.FlexBool{Value: false, Set: true}
)

func manualMeal(name string, calories float64) MealInput {
	return MealInput{Name: name, Calories: types.FlexFloat64{Value: calories, Set: true}}
}

func foodItem(foodID uint64, quantity float64, unit string) MealItemInput {
	return MealItemInput{
		FoodID:   types.FlexUint64{Value: foodID, Set: true},
		Quantity: types.FlexFloat64{Value: quantity, Set: true},
		Unit:     unit,
	}
}

func TestSaveDietPlanDerivedMode(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Cut", AutoCalculate: derivedMode},
		[]MealInput{manualMeal("Breakfast", 300), manualMeal("Lunch", 500)})
	require.NoError(t, err)

	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, plan.CaloriesTarget)
	assert.Equal(t, 800, *plan.CaloriesTarget)
	assert.Equal(t, 2, plan.MealsPerDay)
	require.Len(t, plan.Meals, 2)
	assert.Equal(t, "Breakfast", plan.Meals[0].Name)
	assert.Equal(t, 0, plan.Meals[0].Position)
	assert.Equal(t, 500, plan.Meals[1].Calories)
}

func TestSaveDietPlanManualMode(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{
		Name:           "Bulk",
		CaloriesTarget: types.FlexFloat64{Value: 3000, Set: true},
		ProteinGrams:   types.FlexFloat64{Value: 180, Set: true},
	}, []MealInput{manualMeal("Breakfast", 300)})
	require.NoError(t, err)

	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3000, *plan.CaloriesTarget)
	assert.Equal(t, 180.0, *plan.ProteinGrams)
	assert.Nil(t, plan.CarbsGrams)
	assert.Nil(t, plan.FatGrams)
}

func TestSaveDietPlanWithoutMeals(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Empty", AutoCalculate: derivedMode}, nil)
	require.NoError(t, err)
	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, plan.Meals)
	require.NotNil(t, plan.CaloriesTarget)
	assert.Zero(t, *plan.CaloriesTarget)

	id, err = s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Blank"}, nil)
	require.NoError(t, err)
	plan, err = s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, plan.CaloriesTarget)
}

func TestSaveDietPlanSnapshotsItems(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	food, err := s.CreateFood(ctx, coach, chickenInput())
	require.NoError(t, err)
	_, recipe := createRecipeFixture(t, s, coach)

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Lean", AutoCalculate: derivedMode}, []MealInput{{
		Name: "Dinner",
		Items: types.FlexList[MealItemInput]{
			foodItem(food.ID, 150, "g"),
			{RecipeID: types.FlexUint64{Value: recipe.ID, Set: true}},
		},
	}})
	require.NoError(t, err)

	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	require.Len(t, plan.Meals, 1)
	meal := plan.Meals[0]
	require.Len(t, meal.Items, 2)

	chicken := meal.Items[0]
	assert.Equal(t, 188, chicken.CalculatedCalories)
	assert.Equal(t, 30.0, chicken.CalculatedProtein)
	assert.Equal(t, 0.0, chicken.CalculatedCarbs)
	assert.Equal(t, 7.5, chicken.CalculatedFat)

	serving := meal.Items[1]
	assert.Equal(t, 1.0, serving.Quantity)
	assert.Equal(t, "serving", serving.Unit)
	assert.Equal(t, 208, serving.CalculatedCalories)

	assert.Equal(t, 396, meal.Calories)
	assert.Equal(t, 76.2, meal.ProteinGrams)
	assert.Equal(t, 396, *plan.CaloriesTarget)

	// later food edits never reach stored snapshots
	_, err = s.UpdateFood(ctx, coach, food.ID, FoodInput{ProteinPer100g: types.FlexFloat64{Value: 40, Set: true}})
	require.NoError(t, err)
	plan, err = s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 188, plan.Meals[0].Items[0].CalculatedCalories)
}

func TestUpdateDietPlanKeepsUnchangedSnapshots(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	food, err := s.CreateFood(ctx, coach, chickenInput())
	require.NoError(t, err)

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Lean", AutoCalculate: derivedMode}, []MealInput{{
		Name:  "Dinner",
		Items: types.FlexList[MealItemInput]{foodItem(food.ID, 150, "g")},
	}})
	require.NoError(t, err)
	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	itemID := plan.Meals[0].Items[0].ID

	_, err = s.UpdateFood(ctx, coach, food.ID, FoodInput{ProteinPer100g: types.FlexFloat64{Value: 40, Set: true}})
	require.NoError(t, err)

	kept := foodItem(food.ID, 150, "g")
	kept.ID = types.FlexUint64{Value: itemID, Set: true}
	changed := foodItem(food.ID, 100, "g")
	changed.ID = types.FlexUint64{Value: itemID, Set: true}

	updated, err := s.UpdateDietPlan(ctx, coach, id, DietPlanInput{
		AutoCalculate: derivedMode,
		Meals: types.FlexList[MealInput]{
			{Name: "Dinner", Items: types.FlexList[MealItemInput]{kept}},
			{Name: "Late dinner", Items: types.FlexList[MealItemInput]{changed}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lean", updated.Name)
	require.Len(t, updated.Meals, 2)

	assert.Equal(t, 188, updated.Meals[0].Items[0].CalculatedCalories, "unchanged item keeps its snapshot")
	// 100 g at the new profile: 40 g protein, 5 g fat
	assert.Equal(t, 205, updated.Meals[1].Items[0].CalculatedCalories)
	assert.Equal(t, 40.0, updated.Meals[1].Items[0].CalculatedProtein)
	assert.Equal(t, 393, *updated.CaloriesTarget)
	assert.Equal(t, 2, updated.MealsPerDay)

	var items int64
	require.NoError(t, s.DB().Model(&models.MealFoodItem{}).Count(&items).Error)
	assert.Equal(t, int64(2), items)
}

func TestUpdateDietPlanManualTargets(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Plan", AutoCalculate: derivedMode},
		[]MealInput{manualMeal("Breakfast", 300)})
	require.NoError(t, err)

	// leaving the mode out keeps derived mode, typed targets are overwritten
	updated, err := s.UpdateDietPlan(ctx, coach, id, DietPlanInput{
		Name:           "Renamed",
		CaloriesTarget: types.FlexFloat64{Value: 2200, Set: true},
	})
	require.NoError(t, err)
	assert.True(t, updated.AutoCalculate)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 300, *updated.CaloriesTarget)

	// switching to manual mode keeps the meals and takes the typed target
	updated, err = s.UpdateDietPlan(ctx, coach, id, DietPlanInput{
		AutoCalculate:  manualMode,
		CaloriesTarget: types.FlexFloat64{Value: 2200, Set: true},
	})
	require.NoError(t, err)
	assert.False(t, updated.AutoCalculate)
	assert.Equal(t, 2200, *updated.CaloriesTarget)
	require.Len(t, updated.Meals, 1)
	assert.Equal(t, 300, updated.Meals[0].Calories)

	// back to derived mode, targets follow the meals again
	updated, err = s.UpdateDietPlan(ctx, coach, id, DietPlanInput{AutoCalculate: derivedMode})
	require.NoError(t, err)
	assert.Equal(t, 300, *updated.CaloriesTarget)
}

func TestUpdateDietPlanForbidden(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	other := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Mine"}, nil)
	require.NoError(t, err)

	_, err = s.UpdateDietPlan(ctx, other, id, DietPlanInput{Name: "Theirs"})
	var forbidden *types.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	err = s.DeleteDietPlan(ctx, other, id)
	assert.ErrorAs(t, err, &forbidden)
}

func TestSaveDietPlanRollsBackOnBadItem(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	food, err := s.CreateFood(ctx, coach, chickenInput())
	require.NoError(t, err)

	_, err = s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Broken"}, []MealInput{
		{Name: "Good", Items: types.FlexList[MealItemInput]{foodItem(food.ID, 100, "g")}},
		{Name: "Bad", Items: types.FlexList[MealItemInput]{foodItem(404, 100, "g")}},
	})
	assert.True(t, types.IsNotFound(err))

	for _, model := range []any{&models.DietPlan{}, &models.Meal{}, &models.MealFoodItem{}} {
		var count int64
		require.NoError(t, s.DB().Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestSaveDietPlanItemValidation(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	food, err := s.CreateFood(ctx, coach, chickenInput())
	require.NoError(t, err)

	tests := []struct {
		name string
		item MealItemInput
	}{
		{"neither source", MealItemInput{Quantity: types.FlexFloat64{Value: 1, Set: true}}},
		{"both sources", MealItemInput{
			FoodID:   types.FlexUint64{Value: food.ID, Set: true},
			RecipeID: types.FlexUint64{Value: 1, Set: true},
		}},
		{"negative quantity", foodItem(food.ID, -5, "g")},
		{"unknown unit", foodItem(food.ID, 5, "handful")},
		{"quantity required for other unit", MealItemInput{FoodID: types.FlexUint64{Value: food.ID, Set: true}, Unit: "oz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Plan"}, []MealInput{
				{Name: "Meal", Items: types.FlexList[MealItemInput]{tt.item}},
			})
			require.Error(t, err)
			var validation *types.ValidationError
			var unit *types.InvalidUnitError
			assert.True(t, errors.As(err, &validation) || errors.As(err, &unit), err.Error())
		})
	}
}

func TestSaveMealRollsUp(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Plan", AutoCalculate: derivedMode},
		[]MealInput{manualMeal("Breakfast", 300)})
	require.NoError(t, err)

	mealID, err := s.SaveMeal(ctx, coach, id, MealInput{
		Name:         "Snack",
		ProteinGrams: types.FlexFloat64{Value: 25, Set: true},
		CarbsGrams:   types.FlexFloat64{Value: 20, Set: true},
		FatGrams:     types.FlexFloat64{Value: 10, Set: true},
	})
	require.NoError(t, err)
	assert.NotZero(t, mealID)

	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	require.Len(t, plan.Meals, 2)
	assert.Equal(t, "Snack", plan.Meals[1].Name)
	assert.Equal(t, 1, plan.Meals[1].Position)
	assert.Equal(t, 270, plan.Meals[1].Calories)
	assert.Equal(t, 570, *plan.CaloriesTarget)
	assert.Equal(t, 2, plan.MealsPerDay)
}

func TestSaveMealKeepsTypedMealsPerDay(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{
		Name:           "Five a day",
		MealsPerDay:    types.FlexUint64{Value: 5, Set: true},
		CaloriesTarget: types.FlexFloat64{Value: 2000, Set: true},
	}, []MealInput{manualMeal("Breakfast", 300)})
	require.NoError(t, err)

	_, err = s.SaveMeal(ctx, coach, id, manualMeal("Lunch", 500))
	require.NoError(t, err)

	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	require.Len(t, plan.Meals, 2)
	assert.Equal(t, 5, plan.MealsPerDay)
	assert.Equal(t, 2000, *plan.CaloriesTarget)
}

func TestSaveDietPlanRejectsNonFiniteNumbers(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()
	nan := types.FlexFloat64{Value: math.NaN(), Set: true}
	inf := types.FlexFloat64{Value: math.Inf(1), Set: true}

	cases := []struct {
		name  string
		input DietPlanInput
		meals []MealInput
	}{
		{"NaN calorie target", DietPlanInput{Name: "Plan", CaloriesTarget: nan}, nil},
		{"infinite protein target", DietPlanInput{Name: "Plan", ProteinGrams: inf}, nil},
		{"oversized fat target", DietPlanInput{Name: "Plan", FatGrams: types.FlexFloat64{Value: 1e12, Set: true}}, nil},
		{"NaN meal calories", DietPlanInput{Name: "Plan"}, []MealInput{{Name: "Lunch", Calories: nan}}},
		{"infinite meal macros", DietPlanInput{Name: "Plan"}, []MealInput{{Name: "Lunch", CarbsGrams: inf}}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SaveDietPlan(ctx, coach, tt.input, tt.meals)
			var validation *types.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}

	_, total, err := s.ListDietPlans(ctx, coach, ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Plan"}, []MealInput{manualMeal("Lunch", 500)})
	require.NoError(t, err)
	_, err = s.SaveMeal(ctx, coach, id, MealInput{Name: "Snack", Calories: inf})
	var validation *types.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestSaveMealMissingPlan(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)

	_, err := s.SaveMeal(context.Background(), coach, 404, manualMeal("Snack", 100))
	assert.True(t, types.IsNotFound(err))
}

func TestDeleteDietPlanCascades(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	food, err := s.CreateFood(ctx, coach, chickenInput())
	require.NoError(t, err)

	keep, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Keep"}, []MealInput{
		{Name: "Lunch", Items: types.FlexList[MealItemInput]{foodItem(food.ID, 100, "g")}},
	})
	require.NoError(t, err)

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Drop"}, []MealInput{
		{Name: "Breakfast", Items: types.FlexList[MealItemInput]{foodItem(food.ID, 50, "g"), foodItem(food.ID, 75, "g")}},
		{Name: "Dinner", Items: types.FlexList[MealItemInput]{foodItem(food.ID, 200, "g")}},
	})
	require.NoError(t, err)

	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	mealIDs := []uint64{plan.Meals[0].ID, plan.Meals[1].ID}

	require.NoError(t, s.DeleteDietPlan(ctx, coach, id))

	_, err = s.GetDietPlan(ctx, id)
	assert.True(t, types.IsNotFound(err))

	var meals, items int64
	require.NoError(t, s.DB().Model(&models.Meal{}).Where("diet_plan_id = ?", id).Count(&meals).Error)
	require.NoError(t, s.DB().Model(&models.MealFoodItem{}).Where("meal_id IN ?", mealIDs).Count(&items).Error)
	assert.Zero(t, meals)
	assert.Zero(t, items)

	kept, err := s.GetDietPlan(ctx, keep)
	require.NoError(t, err)
	require.Len(t, kept.Meals, 1)
	assert.Len(t, kept.Meals[0].Items, 1)

	assert.True(t, types.IsNotFound(s.DeleteDietPlan(ctx, coach, id)))
}

func TestPublishSystemPlans(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	ctx := context.Background()

	own, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Own"}, nil)
	require.NoError(t, err)
	_, err = s.SetPublished(ctx, coach, own, true)
	var validation *types.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Template", IsSystem: true}, nil)
	var forbidden *types.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	template, err := s.SaveDietPlan(ctx, superAdmin, DietPlanInput{Name: "Template", IsSystem: true}, nil)
	require.NoError(t, err)

	plans, _, err := s.ListDietPlans(ctx, coach, ListFilter{})
	require.NoError(t, err)
	require.Len(t, plans, 1, "unpublished system plans are hidden")

	_, err = s.SetPublished(ctx, coach, template, true)
	assert.ErrorAs(t, err, &forbidden)

	published, err := s.SetPublished(ctx, superAdmin, template, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	plans, total, err := s.ListDietPlans(ctx, coach, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Own", plans[0].Name)
	assert.Equal(t, "Template", plans[1].Name)
}

func TestAssignPlanToClient(t *testing.T) {
	s := setupTestStore(t)
	coach := createUser(t, s.DB(), policy.RoleCoach, nil)
	otherCoach := createUser(t, s.DB(), policy.RoleCoach, nil)
	client := createUser(t, s.DB(), policy.RoleClient, &coach.ID)
	stranger := createUser(t, s.DB(), policy.RoleClient, nil)
	ctx := context.Background()

	_, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Bad", ClientID: &otherCoach.ID}, nil)
	var validation *types.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = s.SaveDietPlan(ctx, otherCoach, DietPlanInput{Name: "Poach", ClientID: &client.ID}, nil)
	var forbidden *types.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	_, err = s.SaveDietPlan(ctx, client, DietPlanInput{Name: "Self", ClientID: &client.ID}, nil)
	require.ErrorAs(t, err, &forbidden)

	id, err := s.SaveDietPlan(ctx, coach, DietPlanInput{Name: "Assigned", ClientID: &client.ID}, nil)
	require.NoError(t, err)

	plans, _, err := s.ListDietPlans(ctx, client, ListFilter{})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, id, plans[0].ID)

	_, total, err := s.ListDietPlans(ctx, stranger, ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	plan, err := s.GetDietPlan(ctx, id)
	require.NoError(t, err)
	assert.True(t, policy.CanView(plan, client))
	assert.False(t, policy.CanMutate(plan, client))

	empty := ""
	updated, err := s.UpdateDietPlan(ctx, coach, id, DietPlanInput{ClientID: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.ClientID)
}
