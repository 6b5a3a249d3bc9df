package services

import (
	"context"
	"strings"

	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/nutrition"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientInput is one recipe ingredient. A missing quantity means one default serving
// of the food.
type IngredientInput struct {
	FoodID   types.FlexUint64  `json:"food_id"`
	Quantity types.FlexFloat64 `json:"quantity"`
	Unit     string            `json:"unit"`
}

// RecipeInput is the body of a recipe create or patch. On patch, ingredients are
// replaced only when present.
type RecipeInput struct {
	Name         string                          `json:"name"`
	Description  string                          `json:"description"`
	Instructions types.FlexList[string]          `json:"instructions"`
	Servings     types.FlexUint64                `json:"servings"`
	Ingredients  types.FlexList[IngredientInput] `json:"ingredients"`
	IsSystem     bool                            `json:"is_system"`
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position").Order("id")
}

// GetRecipeWithIngredients reads a recipe and its ordered ingredients with their foods
func (s *Store) GetRecipeWithIngredients(ctx context.Context, id uint64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.conn(ctx).
		Preload("Ingredients", orderByPosition).
		Preload("Ingredients.Food").
		First(&recipe, id).Error
	if err != nil {
		return nil, s.fail("get recipe", notFound(err, "recipe", id))
	}
	return &recipe, nil
}

// ListRecipes returns the recipes actor can see, without ingredients
func (s *Store) ListRecipes(ctx context.Context, actor policy.Actor, filter ListFilter) ([]models.Recipe, int64, error) {
	q := visible(s.conn(ctx).Model(&models.Recipe{}), actor)
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", filter.pattern())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, s.fail("count recipes", err)
	}

	var recipes []models.Recipe
	if err := q.Order("name").Order("id").
		Limit(filter.limit()).
		Offset(filter.offset()).
		Find(&recipes).Error; err != nil {
		return nil, 0, s.fail("list recipes", err)
	}
	return recipes, total, nil
}

// CreateRecipe stores a recipe and its ingredients in one transaction, with per-serving
// macros computed from the current foods.
func (s *Store) CreateRecipe(ctx context.Context, actor policy.Actor, input RecipeInput) (*models.Recipe, error) {
	system, createdBy, err := ownedBy(actor, input.IsSystem)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Servings:    1,
		Ownership:   models.Ownership{IsSystem: system, CreatedBy: createdBy},
	}
	if recipe.Name == "" {
		return nil, types.NewValidationError("name", "is required")
	}
	if input.Servings.Set {
		recipe.Servings = int(input.Servings.Value)
	}
	if len(input.Instructions) > 0 {
		if recipe.Instructions, err = models.NewJSON(input.Instructions.Slice()); err != nil {
			return nil, types.NewValidationError("instructions", "%v", err)
		}
	}

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		ingredients, err := s.priceRecipe(tx, actor, &recipe, input.Ingredients.Slice())
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		return createIngredients(tx, recipe.ID, ingredients)
	})
	if err != nil {
		return nil, s.fail("create recipe", err)
	}
	return s.GetRecipeWithIngredients(ctx, recipe.ID)
}

// UpdateRecipe patches a recipe. Ingredients are replaced when provided; per-serving
// macros are always recomputed from the current foods.
func (s *Store) UpdateRecipe(ctx context.Context, actor policy.Actor, id uint64, patch RecipeInput) (*models.Recipe, error) {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Preload("Ingredients", orderByPosition).First(&recipe, id).Error; err != nil {
			return notFound(err, "recipe", id)
		}
		if err := checkMutate(recipe, actor, "recipe", id); err != nil {
			return err
		}

		if name := strings.TrimSpace(patch.Name); name != "" {
			recipe.Name = name
		}
		if patch.Description != "" {
			recipe.Description = patch.Description
		}
		if patch.Servings.Set {
			recipe.Servings = int(patch.Servings.Value)
		}
		if patch.Instructions.Provided() {
			instructions, err := models.NewJSON(patch.Instructions.Slice())
			if err != nil {
				return types.NewValidationError("instructions", "%v", err)
			}
			recipe.Instructions = instructions
		}

		inputs := patch.Ingredients.Slice()
		if !patch.Ingredients.Provided() {
			inputs = make([]IngredientInput, 0, len(recipe.Ingredients))
			for _, ing := range recipe.Ingredients {
				inputs = append(inputs, IngredientInput{
					FoodID:   types.FlexUint64{Value: ing.FoodID, Set: true},
					Quantity: types.FlexFloat64{Value: ing.Quantity, Set: true},
					Unit:     ing.Unit,
				})
			}
		}

		ingredients, err := s.priceRecipe(tx, actor, &recipe, inputs)
		if err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&recipe).Error; err != nil {
			return err
		}
		return createIngredients(tx, id, ingredients)
	})
	if err != nil {
		return nil, s.fail("update recipe", err)
	}
	return s.GetRecipeWithIngredients(ctx, id)
}

// DeleteRecipe removes the ingredients and then the recipe. A recipe used in a meal
// cannot be deleted.
func (s *Store) DeleteRecipe(ctx context.Context, actor policy.Actor, id uint64) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			return notFound(err, "recipe", id)
		}
		if err := checkMutate(recipe, actor, "recipe", id); err != nil {
			return err
		}

		var items int64
		if err := tx.Model(&models.MealFoodItem{}).Where("recipe_id = ?", id).Count(&items).Error; err != nil {
			return err
		}
		if items > 0 {
			return &types.ConflictError{Message: "recipe is used by meals and cannot be deleted"}
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	return s.fail("delete recipe", err)
}

// priceRecipe resolves the ingredients and sets the recipe's per-serving macros
func (s *Store) priceRecipe(tx *gorm.DB, actor policy.Actor, recipe *models.Recipe, inputs []IngredientInput) ([]models.RecipeIngredient, error) {
	ingredients := make([]models.RecipeIngredient, 0, len(inputs))
	totals := make([]nutrition.Macros, 0, len(inputs))

	for i, in := range inputs {
		field := fieldName("ingredients", i)
		if !in.FoodID.Set {
			return nil, types.NewValidationError(field+".food_id", "is required")
		}
		l, err := foodLine(tx, actor, field, in.FoodID.Value, in.Quantity, in.Unit)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, models.RecipeIngredient{
			FoodID:   in.FoodID.Value,
			Quantity: l.quantity,
			Unit:     string(l.unit),
			Position: i,
		})
		totals = append(totals, l.macros)
	}

	perServing, err := nutrition.PerServing(nutrition.Sum(totals...), recipe.Servings)
	if err != nil {
		return nil, err
	}
	recipe.SetPerServing(perServing)
	return ingredients, nil
}

func createIngredients(tx *gorm.DB, recipeID uint64, ingredients []models.RecipeIngredient) error {
	if len(ingredients) == 0 {
		return nil
	}
	for i := range ingredients {
		ingredients[i].RecipeID = recipeID
	}
	return tx.Omit(clause.Associations).Create(&ingredients).Error
}
