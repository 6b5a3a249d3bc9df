package services

import (
	"context"
	"strings"

	"github.com/localnerve/macrosdb/internal/metrics"
	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/nutrition"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// FoodInput is the body of a food create or patch. Unset numbers keep their current
// value on patch and take defaults on create.
type FoodInput struct {
	Name               string            `json:"name"`
	Category           string            `json:"category"`
	ProteinPer100g     types.FlexFloat64 `json:"protein_per_100g"`
	CarbsPer100g       types.FlexFloat64 `json:"carbs_per_100g"`
	FatPer100g         types.FlexFloat64 `json:"fat_per_100g"`
	FiberPer100g       types.FlexFloat64 `json:"fiber_per_100g"`
	CaloriesPer100g    types.FlexFloat64 `json:"calories_per_100g"`
	DefaultServingSize types.FlexFloat64 `json:"default_serving_size"`
	DefaultServingUnit string            `json:"default_serving_unit"`
	ServingWeightGrams types.FlexFloat64 `json:"serving_weight_grams"`
	IsSystem           bool              `json:"is_system"`
}

// GetFood reads a food, through the cache when one is configured
func (s *Store) GetFood(ctx context.Context, id uint64) (*models.Food, error) {
	if cached, err := s.cache.GetFood(ctx, id); err != nil {
		s.log.WithError(err).WithField("food_id", id).Warn("food cache read failed")
	} else if cached != nil {
		metrics.CacheLookup(true)
		return cached, nil
	} else if _, disabled := s.cache.(noopCache); !disabled {
		metrics.CacheLookup(false)
	}

	var food models.Food
	if err := s.conn(ctx).First(&food, id).Error; err != nil {
		return nil, s.fail("get food", notFound(err, "food", id))
	}

	if err := s.cache.SetFood(ctx, &food); err != nil {
		s.log.WithError(err).WithField("food_id", id).Warn("food cache write failed")
	}
	return &food, nil
}

// ListFoods returns the foods actor can see, ordered by name
func (s *Store) ListFoods(ctx context.Context, actor policy.Actor, filter ListFilter) ([]models.Food, int64, error) {
	q := visible(s.conn(ctx).Model(&models.Food{}), actor)
	if filter.Search != "" {
		if s.db.Dialector.Name() == "mysql" {
			q = q.Clauses(hints.UseIndex("idx_foods_name"))
		}
		q = q.Where("LOWER(name) LIKE ?", filter.pattern())
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, s.fail("count foods", err)
	}

	var foods []models.Food
	if err := q.Order("name").Order("id").
		Limit(filter.limit()).
		Offset(filter.offset()).
		Find(&foods).Error; err != nil {
		return nil, 0, s.fail("list foods", err)
	}
	return foods, total, nil
}

// CreateFood validates and stores a new food. Calories per 100g are derived from the macros
// when absent; a supplied value that disagrees with the derivation is kept and logged.
func (s *Store) CreateFood(ctx context.Context, actor policy.Actor, input FoodInput) (*models.Food, error) {
	system, createdBy, err := ownedBy(actor, input.IsSystem)
	if err != nil {
		return nil, err
	}

	food := models.Food{
		Name:               strings.TrimSpace(input.Name),
		Category:           strings.TrimSpace(input.Category),
		ProteinPer100g:     input.ProteinPer100g.Or(0),
		CarbsPer100g:       input.CarbsPer100g.Or(0),
		FatPer100g:         input.FatPer100g.Or(0),
		FiberPer100g:       input.FiberPer100g.Ptr(),
		DefaultServingSize: input.DefaultServingSize.Or(100),
		DefaultServingUnit: input.DefaultServingUnit,
		ServingWeightGrams: input.ServingWeightGrams.Ptr(),
		Ownership:          models.Ownership{IsSystem: system, CreatedBy: createdBy},
	}
	if err := s.prepareFood(&food, input.CaloriesPer100g); err != nil {
		return nil, err
	}

	if err := s.conn(ctx).Create(&food).Error; err != nil {
		return nil, s.fail("create food", err)
	}
	return &food, nil
}

// UpdateFood applies a partial update to a food actor may mutate
func (s *Store) UpdateFood(ctx context.Context, actor policy.Actor, id uint64, patch FoodInput) (*models.Food, error) {
	var food models.Food
	if err := s.conn(ctx).First(&food, id).Error; err != nil {
		return nil, s.fail("get food", notFound(err, "food", id))
	}
	if err := checkMutate(food, actor, "food", id); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(patch.Name); name != "" {
		food.Name = name
	}
	if category := strings.TrimSpace(patch.Category); category != "" {
		food.Category = category
	}
	macrosChanged := patch.ProteinPer100g.Set || patch.CarbsPer100g.Set || patch.FatPer100g.Set
	food.ProteinPer100g = patch.ProteinPer100g.Or(food.ProteinPer100g)
	food.CarbsPer100g = patch.CarbsPer100g.Or(food.CarbsPer100g)
	food.FatPer100g = patch.FatPer100g.Or(food.FatPer100g)
	food.DefaultServingSize = patch.DefaultServingSize.Or(food.DefaultServingSize)
	if patch.FiberPer100g.Set {
		food.FiberPer100g = patch.FiberPer100g.Ptr()
	}
	if patch.ServingWeightGrams.Set {
		food.ServingWeightGrams = patch.ServingWeightGrams.Ptr()
	}
	if patch.DefaultServingUnit != "" {
		food.DefaultServingUnit = patch.DefaultServingUnit
	}

	calories := patch.CaloriesPer100g
	if !calories.Set && !macrosChanged {
		calories = types.FlexFloat64{Value: float64(food.CaloriesPer100g), Set: true}
	}
	if err := s.prepareFood(&food, calories); err != nil {
		return nil, err
	}

	if err := s.conn(ctx).Save(&food).Error; err != nil {
		return nil, s.fail("update food", err)
	}
	s.forgetFood(ctx, id)
	return &food, nil
}

// DeleteFood removes a food that no recipe ingredient or meal item references
func (s *Store) DeleteFood(ctx context.Context, actor policy.Actor, id uint64) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var food models.Food
		if err := tx.First(&food, id).Error; err != nil {
			return notFound(err, "food", id)
		}
		if err := checkMutate(food, actor, "food", id); err != nil {
			return err
		}

		var ingredients, items int64
		if err := tx.Model(&models.RecipeIngredient{}).Where("food_id = ?", id).Count(&ingredients).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.MealFoodItem{}).Where("food_id = ?", id).Count(&items).Error; err != nil {
			return err
		}
		if ingredients > 0 || items > 0 {
			return &types.ConflictError{Message: "food is used by recipes or meals and cannot be deleted"}
		}

		return tx.Delete(&models.Food{}, id).Error
	})
	if err != nil {
		return s.fail("delete food", err)
	}
	s.forgetFood(ctx, id)
	return nil
}

// prepareFood normalizes the unit, validates the profile and settles calories_per_100g
func (s *Store) prepareFood(food *models.Food, calories types.FlexFloat64) error {
	if food.Name == "" {
		return types.NewValidationError("name", "is required")
	}

	unit, err := nutrition.ParseUnit(food.DefaultServingUnit)
	if err != nil {
		return err
	}
	if unit == "" {
		unit = nutrition.UnitGram
	}
	food.DefaultServingUnit = string(unit)

	if food.DefaultServingSize <= 0 {
		return types.NewValidationError("default_serving_size", "must be greater than zero")
	}
	if food.FiberPer100g != nil {
		if err := nutrition.CheckAmount("fiber_per_100g", *food.FiberPer100g); err != nil {
			return err
		}
	}
	if food.ServingWeightGrams != nil {
		if err := nutrition.CheckAmount("serving_weight_grams", *food.ServingWeightGrams); err != nil {
			return err
		}
		if *food.ServingWeightGrams == 0 {
			return types.NewValidationError("serving_weight_grams", "must be greater than zero")
		}
	}
	if err := food.Profile().Validate(); err != nil {
		return err
	}

	derived, err := nutrition.DeriveCalories(food.ProteinPer100g, food.CarbsPer100g, food.FatPer100g)
	if err != nil {
		return err
	}
	if !calories.Set {
		food.CaloriesPer100g = derived
		return nil
	}

	if err := nutrition.CheckAmount("calories_per_100g", calories.Value); err != nil {
		return err
	}
	if err := nutrition.CheckCalories(calories.Value, food.ProteinPer100g, food.CarbsPer100g, food.FatPer100g); err != nil {
		s.log.WithFields(logrus.Fields{
			"food":      food.Name,
			"stored":    calories.Value,
			"derived":   derived,
			"is_system": food.IsSystem,
		}).Warn("calories_per_100g disagrees with macros")
	}
	food.CaloriesPer100g = *calories.IntPtr()
	return nil
}

func (s *Store) forgetFood(ctx context.Context, id uint64) {
	if err := s.cache.DeleteFood(ctx, id); err != nil {
		s.log.WithError(err).WithField("food_id", id).Warn("food cache invalidation failed")
	}
}
