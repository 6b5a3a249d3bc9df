package services

import (
	"fmt"

	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/nutrition"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
	"gorm.io/gorm"
)

// line is one resolved food or recipe quantity and its macros
type line struct {
	quantity float64
	unit     nutrition.Unit
	macros   nutrition.Macros
}

// foodLine converts quantity of unit of a food. A missing quantity means one default
// serving, which requires the unit to be empty or the food's default unit.
func foodLine(tx *gorm.DB, actor policy.Actor, field string, foodID uint64, quantity types.FlexFloat64, unitName string) (line, error) {
	var food models.Food
	if err := tx.First(&food, foodID).Error; err != nil {
		return line{}, notFound(err, "food", foodID)
	}
	if !policy.CanView(food, actor) {
		return line{}, &types.ForbiddenError{Resource: "food", ID: foodID}
	}

	unit, err := nutrition.ParseUnit(unitName)
	if err != nil {
		return line{}, err
	}
	profile := food.Profile()
	defaultUnit, _ := nutrition.ParseUnit(food.DefaultServingUnit)
	if unit == "" {
		unit = defaultUnit
		if unit == "" {
			unit = nutrition.UnitGram
		}
	}

	if !quantity.Set {
		if unit != defaultUnit {
			return line{}, types.NewValidationError(field+".quantity", "is required for unit %s", unit)
		}
		quantity = types.FlexFloat64{Value: food.DefaultServingSize, Set: true}
	}

	macros, err := nutrition.Convert(profile, quantity.Value, unit)
	if err != nil {
		return line{}, err
	}
	return line{quantity: quantity.Value, unit: unit, macros: macros}, nil
}

// recipeLine scales a recipe's per-serving macros. Recipes are measured in servings only.
func recipeLine(tx *gorm.DB, actor policy.Actor, field string, recipeID uint64, quantity types.FlexFloat64, unitName string) (line, error) {
	var recipe models.Recipe
	if err := tx.First(&recipe, recipeID).Error; err != nil {
		return line{}, notFound(err, "recipe", recipeID)
	}
	if !policy.CanView(recipe, actor) {
		return line{}, &types.ForbiddenError{Resource: "recipe", ID: recipeID}
	}

	unit, err := nutrition.ParseUnit(unitName)
	if err != nil {
		return line{}, err
	}
	if unit == "" {
		unit = nutrition.UnitServing
	}
	if unit != nutrition.UnitServing {
		return line{}, types.NewValidationError(field+".unit", "recipes are measured in servings, got %s", unit)
	}

	macros, err := nutrition.Scale(recipe.PerServing(), quantity.Or(1))
	if err != nil {
		return line{}, err
	}
	return line{quantity: quantity.Or(1), unit: unit, macros: macros}, nil
}

func fieldName(list string, i int) string {
	return fmt.Sprintf("%s[%d]", list, i)
}
