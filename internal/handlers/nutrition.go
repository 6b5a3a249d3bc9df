package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/macrosdb/internal/metrics"
	"github.com/localnerve/macrosdb/internal/nutrition"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/localnerve/macrosdb/internal/types"
	"github.com/localnerve/macrosdb/internal/utils"
)

// NutritionHandler serves the live builder previews. Nothing is stored.
type NutritionHandler struct {
	Store *services.Store
}

// CaloriesInput is the body of a calorie derivation
type CaloriesInput struct {
	Protein types.FlexFloat64 `json:"protein"`
	Carbs   types.FlexFloat64 `json:"carbs"`
	Fat     types.FlexFloat64 `json:"fat"`
}

// ConvertInput converts a quantity of a stored food, or of an ad hoc profile when
// food_id is absent
type ConvertInput struct {
	FoodID             types.FlexUint64  `json:"food_id"`
	Quantity           types.FlexFloat64 `json:"quantity"`
	Unit               string            `json:"unit"`
	ProteinPer100g     types.FlexFloat64 `json:"protein_per_100g"`
	CarbsPer100g       types.FlexFloat64 `json:"carbs_per_100g"`
	FatPer100g         types.FlexFloat64 `json:"fat_per_100g"`
	DefaultServingSize types.FlexFloat64 `json:"default_serving_size"`
	DefaultServingUnit string            `json:"default_serving_unit"`
	ServingWeightGrams types.FlexFloat64 `json:"serving_weight_grams"`
}

// Calories handles POST /api/nutrition/calories
func (h *NutritionHandler) Calories(c *fiber.Ctx) error {
	var input CaloriesInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	calories, err := nutrition.DeriveCalories(input.Protein.Or(0), input.Carbs.Or(0), input.Fat.Or(0))
	if err != nil {
		return err
	}
	metrics.Calculation("calories")
	return utils.SuccessResponse(c, fiber.Map{"calories": calories}, fiber.StatusOK)
}

// Convert handles POST /api/nutrition/convert
func (h *NutritionHandler) Convert(c *fiber.Ctx) error {
	var input ConvertInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	var (
		macros nutrition.Macros
		err    error
	)
	if input.FoodID.Set {
		macros, err = h.Store.PreviewItem(c.UserContext(), actor(c), services.MealItemInput{
			FoodID:   input.FoodID,
			Quantity: input.Quantity,
			Unit:     input.Unit,
		})
	} else {
		macros, err = convertProfile(input)
	}
	if err != nil {
		return err
	}

	metrics.Calculation("convert")
	return utils.SuccessResponse(c, macros, fiber.StatusOK)
}

func convertProfile(input ConvertInput) (nutrition.Macros, error) {
	if !input.Quantity.Set {
		return nutrition.Macros{}, types.NewValidationError("quantity", "is required")
	}
	unit, err := nutrition.ParseUnit(input.Unit)
	if err != nil {
		return nutrition.Macros{}, err
	}
	defaultUnit, err := nutrition.ParseUnit(input.DefaultServingUnit)
	if err != nil {
		return nutrition.Macros{}, err
	}
	profile := nutrition.Profile{
		ProteinPer100g:     input.ProteinPer100g.Or(0),
		CarbsPer100g:       input.CarbsPer100g.Or(0),
		FatPer100g:         input.FatPer100g.Or(0),
		DefaultServingSize: input.DefaultServingSize.Or(100),
		DefaultServingUnit: defaultUnit,
		ServingWeightGrams: input.ServingWeightGrams.Or(0),
	}
	return nutrition.Convert(profile, input.Quantity.Value, unit)
}

// Meal handles POST /api/nutrition/meal
func (h *NutritionHandler) Meal(c *fiber.Ctx) error {
	var input services.MealInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	preview, err := h.Store.PreviewMeal(c.UserContext(), actor(c), input)
	if err != nil {
		return err
	}
	metrics.Calculation("meal")
	return utils.SuccessResponse(c, preview, fiber.StatusOK)
}

// Plan handles POST /api/nutrition/plan
func (h *NutritionHandler) Plan(c *fiber.Ctx) error {
	var input services.DietPlanInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	preview, err := h.Store.PreviewPlan(c.UserContext(), actor(c), input)
	if err != nil {
		return err
	}
	metrics.Calculation("plan")
	return utils.SuccessResponse(c, preview, fiber.StatusOK)
}
