package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/localnerve/macrosdb/internal/metrics"
	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/nutrition"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MealItemInput is one food or recipe line in a meal. Exactly one of FoodID and RecipeID
// is set. ID is echoed back on plan updates so an unchanged item keeps its snapshot.
type MealItemInput struct {
	ID       types.FlexUint64  `json:"id"`
	FoodID   types.FlexUint64  `json:"food_id"`
	RecipeID types.FlexUint64  `json:"recipe_id"`
	Quantity types.FlexFloat64 `json:"quantity"`
	Unit     string            `json:"unit"`
}

// MealInput is a meal with either items or manually entered macros
type MealInput struct {
	Name         string                        `json:"name"`
	Calories     types.FlexFloat64             `json:"calories"`
	ProteinGrams types.FlexFloat64             `json:"protein_grams"`
	CarbsGrams   types.FlexFloat64             `json:"carbs_grams"`
	FatGrams     types.FlexFloat64             `json:"fat_grams"`
	Items        types.FlexList[MealItemInput] `json:"items"`
}

// DietPlanInput is the body of a diet plan create or replace
type DietPlanInput struct {
	Name           string                    `json:"name"`
	Description    string                    `json:"description"`
	MealsPerDay    types.FlexUint64          `json:"meals_per_day"`
	CaloriesTarget types.FlexFloat64         `json:"calories_target"`
	ProteinGrams   types.FlexFloat64         `json:"protein_grams"`
	CarbsGrams     types.FlexFloat64         `json:"carbs_grams"`
	FatGrams       types.FlexFloat64         `json:"fat_grams"`
	AutoCalculate  types.FlexBool            `json:"auto_calculate"`
	IsSystem       bool                      `json:"is_system"`
	IsPublished    bool                      `json:"is_published"`
	ClientID       *string                   `json:"client_id"`
	Meals          types.FlexList[MealInput] `json:"meals"`
}

func (in DietPlanInput) hasTargets() bool {
	return in.CaloriesTarget.Set || in.ProteinGrams.Set || in.CarbsGrams.Set || in.FatGrams.Set
}

// manualTargets returns the typed targets, nil where absent
func (in DietPlanInput) manualTargets() (nutrition.Targets, error) {
	checks := []struct {
		field string
		v     types.FlexFloat64
	}{
		{"calories_target", in.CaloriesTarget},
		{"protein_grams", in.ProteinGrams},
		{"carbs_grams", in.CarbsGrams},
		{"fat_grams", in.FatGrams},
	}
	for _, c := range checks {
		if !c.v.Set {
			continue
		}
		if err := nutrition.CheckAmount(c.field, c.v.Value); err != nil {
			return nutrition.Targets{}, err
		}
	}
	return nutrition.Targets{
		Calories: in.CaloriesTarget.IntPtr(),
		Protein:  in.ProteinGrams.Ptr(),
		Carbs:    in.CarbsGrams.Ptr(),
		Fat:      in.FatGrams.Ptr(),
	}, nil
}

// GetDietPlan reads a plan with its ordered meals and items
func (s *Store) GetDietPlan(ctx context.Context, id uint64) (*models.DietPlan, error) {
	var plan models.DietPlan
	err := s.conn(ctx).
		Preload("Meals", orderByPosition).
		Preload("Meals.Items", orderByPosition).
		First(&plan, id).Error
	if err != nil {
		return nil, s.fail("get diet plan", notFound(err, "diet plan", id))
	}
	return &plan, nil
}

// ListDietPlans returns the plans actor can see: published system plans, its own plans and
// plans assigned to it.
func (s *Store) ListDietPlans(ctx context.Context, actor policy.Actor, filter ListFilter) ([]models.DietPlan, int64, error) {
	q := s.conn(ctx).Model(&models.DietPlan{})
	if !actor.IsSuperAdmin() {
		q = q.Where("(is_system = ? AND is_published = ?) OR created_by = ? OR client_id = ?",
			true, true, actor.ID, actor.ID)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", filter.pattern())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, s.fail("count diet plans", err)
	}

	var plans []models.DietPlan
	if err := q.Order("name").Order("id").
		Limit(filter.limit()).
		Offset(filter.offset()).
		Find(&plans).Error; err != nil {
		return nil, 0, s.fail("list diet plans", err)
	}
	return plans, total, nil
}

// SaveDietPlan creates a plan with its meals and items in one transaction. Item snapshots
// come from the current foods and recipes, meal totals from the snapshots, and the plan
// targets from the meals in derived mode. A plan with no meals is accepted.
func (s *Store) SaveDietPlan(ctx context.Context, actor policy.Actor, input DietPlanInput, meals []MealInput) (uint64, error) {
	system, createdBy, err := ownedBy(actor, input.IsSystem)
	if err != nil {
		return 0, err
	}

	plan := models.DietPlan{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		MealsPerDay:   len(meals),
		AutoCalculate: input.AutoCalculate.Or(false),
		IsPublished:   system && input.IsPublished,
		Ownership:     models.Ownership{IsSystem: system, CreatedBy: createdBy},
	}
	if plan.Name == "" {
		return 0, types.NewValidationError("name", "is required")
	}
	if input.MealsPerDay.Set {
		plan.MealsPerDay = int(input.MealsPerDay.Value)
	}
	manual, err := input.manualTargets()
	if err != nil {
		return 0, err
	}

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := assignClient(tx, actor, &plan, input.ClientID); err != nil {
			return err
		}

		built, err := buildMeals(tx, actor, meals, nil)
		if err != nil {
			return err
		}
		plan.SetTargets(nutrition.ResolveTargets(plan.AutoCalculate, manual, mealTotals(built)))

		if err := tx.Omit(clause.Associations).Create(&plan).Error; err != nil {
			return err
		}
		return createMeals(tx, plan.ID, built)
	})
	if err != nil {
		return 0, s.fail("save diet plan", err)
	}

	metrics.PlanSaved(plan.AutoCalculate)
	return plan.ID, nil
}

// UpdateDietPlan replaces a plan's fields and, when provided, its meals. Items that keep
// their id, source, quantity and unit keep their stored snapshot.
func (s *Store) UpdateDietPlan(ctx context.Context, actor policy.Actor, id uint64, input DietPlanInput) (*models.DietPlan, error) {
	var auto bool
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.DietPlan
		err := tx.Preload("Meals", orderByPosition).
			Preload("Meals.Items", orderByPosition).
			First(&plan, id).Error
		if err != nil {
			return notFound(err, "diet plan", id)
		}
		if err := checkMutate(plan, actor, "diet plan", id); err != nil {
			return err
		}

		if name := strings.TrimSpace(input.Name); name != "" {
			plan.Name = name
		}
		if input.Description != "" {
			plan.Description = input.Description
		}
		if input.MealsPerDay.Set {
			plan.MealsPerDay = int(input.MealsPerDay.Value)
		}
		plan.AutoCalculate = input.AutoCalculate.Or(plan.AutoCalculate)
		if err := assignClient(tx, actor, &plan, input.ClientID); err != nil {
			return err
		}

		if input.Meals.Provided() {
			previous := make(map[uint64]models.MealFoodItem)
			for _, meal := range plan.Meals {
				for _, item := range meal.Items {
					previous[item.ID] = item
				}
			}

			built, err := buildMeals(tx, actor, input.Meals.Slice(), previous)
			if err != nil {
				return err
			}
			if err := deleteMeals(tx, id); err != nil {
				return err
			}
			if err := createMeals(tx, id, built); err != nil {
				return err
			}
			plan.Meals = built
			if !input.MealsPerDay.Set {
				plan.MealsPerDay = len(built)
			}
		}

		manual := plan.Targets()
		if input.hasTargets() {
			if manual, err = input.manualTargets(); err != nil {
				return err
			}
		}
		plan.SetTargets(nutrition.ResolveTargets(plan.AutoCalculate, manual, mealTotals(plan.Meals)))
		auto = plan.AutoCalculate

		return tx.Omit(clause.Associations).Save(&plan).Error
	})
	if err != nil {
		return nil, s.fail("update diet plan", err)
	}

	metrics.PlanSaved(auto)
	return s.GetDietPlan(ctx, id)
}

// SaveMeal appends a meal to a plan. A plan in derived mode has its targets rolled up again.
// meals_per_day follows the new count when it matched the old one.
func (s *Store) SaveMeal(ctx context.Context, actor policy.Actor, planID uint64, input MealInput) (uint64, error) {
	var mealID uint64
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.DietPlan
		if err := tx.First(&plan, planID).Error; err != nil {
			return notFound(err, "diet plan", planID)
		}
		if err := checkMutate(plan, actor, "diet plan", planID); err != nil {
			return err
		}

		var existing []models.Meal
		if err := tx.Where("diet_plan_id = ?", planID).Order("position").Find(&existing).Error; err != nil {
			return err
		}

		position := 0
		if n := len(existing); n > 0 {
			position = existing[n-1].Position + 1
		}
		meal, err := buildMeal(tx, actor, "meal", input, position, nil)
		if err != nil {
			return err
		}
		built := []models.Meal{meal}
		if err := createMeals(tx, planID, built); err != nil {
			return err
		}
		mealID = built[0].ID

		// a meals_per_day that tracked the meal count keeps tracking it; a typed one stays
		changed := false
		if plan.MealsPerDay == len(existing) {
			plan.MealsPerDay = len(existing) + 1
			changed = true
		}
		if plan.AutoCalculate {
			all := append(mealTotals(existing), meal.Macros())
			plan.SetTargets(nutrition.ResolveTargets(true, plan.Targets(), all))
			changed = true
		}
		if !changed {
			return nil
		}
		return tx.Omit(clause.Associations).Save(&plan).Error
	})
	if err != nil {
		return 0, s.fail("save meal", err)
	}
	return mealID, nil
}

// SetPublished publishes or withdraws a system diet plan
func (s *Store) SetPublished(ctx context.Context, actor policy.Actor, id uint64, published bool) (*models.DietPlan, error) {
	var plan models.DietPlan
	if err := s.conn(ctx).First(&plan, id).Error; err != nil {
		return nil, s.fail("get diet plan", notFound(err, "diet plan", id))
	}
	if err := checkMutate(plan, actor, "diet plan", id); err != nil {
		return nil, err
	}
	if !plan.IsSystem {
		return nil, types.NewValidationError("is_published", "only system diet plans are published")
	}

	if err := s.conn(ctx).Model(&plan).Update("is_published", published).Error; err != nil {
		return nil, s.fail("publish diet plan", err)
	}
	plan.IsPublished = published
	return &plan, nil
}

// DeleteDietPlan removes the plan's meal items, then its meals, then the plan
func (s *Store) DeleteDietPlan(ctx context.Context, actor policy.Actor, id uint64) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.DietPlan
		if err := tx.First(&plan, id).Error; err != nil {
			return notFound(err, "diet plan", id)
		}
		if err := checkMutate(plan, actor, "diet plan", id); err != nil {
			return err
		}
		if err := deleteMeals(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.DietPlan{}, id).Error
	})
	return s.fail("delete diet plan", err)
}

// assignClient sets or clears the plan's client. Nil leaves it alone, an empty id clears it.
func assignClient(tx *gorm.DB, actor policy.Actor, plan *models.DietPlan, clientID *string) error {
	if clientID == nil {
		return nil
	}
	id := strings.TrimSpace(*clientID)
	if id == "" {
		plan.ClientID = nil
		return nil
	}
	if actor.Role != policy.RoleCoach && !actor.IsSuperAdmin() {
		return &types.ForbiddenError{Resource: "client assignment", ID: id}
	}

	var client models.User
	if err := tx.Where("id = ?", id).First(&client).Error; err != nil {
		return notFound(err, "client", id)
	}
	if policy.Role(client.Role) != policy.RoleClient {
		return types.NewValidationError("client_id", "user %s is not a client", id)
	}
	if !actor.IsSuperAdmin() && client.CoachID != nil && *client.CoachID != actor.ID {
		return &types.ForbiddenError{Resource: "client", ID: id}
	}

	plan.ClientID = &id
	return nil
}

func buildMeals(tx *gorm.DB, actor policy.Actor, inputs []MealInput, previous map[uint64]models.MealFoodItem) ([]models.Meal, error) {
	meals := make([]models.Meal, 0, len(inputs))
	for i, in := range inputs {
		meal, err := buildMeal(tx, actor, fieldName("meals", i), in, i, previous)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

// buildMeal resolves a meal's items and totals. Items with a matching previous item keep
// its snapshot; new or changed items are snapshotted from the current food or recipe.
func buildMeal(tx *gorm.DB, actor policy.Actor, field string, in MealInput, position int, previous map[uint64]models.MealFoodItem) (models.Meal, error) {
	meal := models.Meal{
		Name:     strings.TrimSpace(in.Name),
		Position: position,
	}
	if meal.Name == "" {
		meal.Name = fmt.Sprintf("Meal %d", position+1)
	}

	if len(in.Items) == 0 {
		macros, err := manualMacros(field, in)
		if err != nil {
			return models.Meal{}, err
		}
		meal.SetMacros(macros)
		return meal, nil
	}

	snapshots := make([]nutrition.Macros, 0, len(in.Items))
	for j, it := range in.Items {
		itemField := fmt.Sprintf("%s.items[%d]", field, j)
		if it.FoodID.Set == it.RecipeID.Set {
			return models.Meal{}, types.NewValidationError(itemField, "exactly one of food_id or recipe_id is required")
		}

		item := models.MealFoodItem{
			FoodID:   it.FoodID.Ptr(),
			RecipeID: it.RecipeID.Ptr(),
			Position: j,
		}

		if prev, ok := unchangedItem(it, previous); ok {
			item.Quantity = prev.Quantity
			item.Unit = prev.Unit
			item.SetSnapshot(prev.Snapshot())
		} else {
			var (
				l   line
				err error
			)
			if it.FoodID.Set {
				l, err = foodLine(tx, actor, itemField, it.FoodID.Value, it.Quantity, it.Unit)
			} else {
				l, err = recipeLine(tx, actor, itemField, it.RecipeID.Value, it.Quantity, it.Unit)
			}
			if err != nil {
				return models.Meal{}, err
			}
			item.Quantity = l.quantity
			item.Unit = string(l.unit)
			item.SetSnapshot(l.macros)
		}

		meal.Items = append(meal.Items, item)
		snapshots = append(snapshots, item.Snapshot())
	}

	meal.SetMacros(nutrition.Sum(snapshots...))
	return meal, nil
}

// unchangedItem finds the stored item an input refers to when it still names the same
// source, quantity and unit
func unchangedItem(it MealItemInput, previous map[uint64]models.MealFoodItem) (models.MealFoodItem, bool) {
	if !it.ID.Set || previous == nil {
		return models.MealFoodItem{}, false
	}
	prev, ok := previous[it.ID.Value]
	if !ok {
		return models.MealFoodItem{}, false
	}
	if !sameID(prev.FoodID, it.FoodID) || !sameID(prev.RecipeID, it.RecipeID) {
		return models.MealFoodItem{}, false
	}
	if it.Quantity.Set && it.Quantity.Value != prev.Quantity {
		return models.MealFoodItem{}, false
	}
	unit, err := nutrition.ParseUnit(it.Unit)
	if err != nil || (unit != "" && string(unit) != prev.Unit) {
		return models.MealFoodItem{}, false
	}
	return prev, true
}

func sameID(stored *uint64, in types.FlexUint64) bool {
	if stored == nil {
		return !in.Set
	}
	return in.Set && in.Value == *stored
}

// manualMacros reads the macros typed for a meal without items. Missing calories are
// derived from the macros.
func manualMacros(field string, in MealInput) (nutrition.Macros, error) {
	protein, carbs, fat := in.ProteinGrams.Or(0), in.CarbsGrams.Or(0), in.FatGrams.Or(0)
	derived, err := nutrition.DeriveCalories(protein, carbs, fat)
	if err != nil {
		return nutrition.Macros{}, types.NewValidationError(field, "%v", err)
	}

	calories := derived
	if in.Calories.Set {
		if err := nutrition.CheckAmount(field+".calories", in.Calories.Value); err != nil {
			return nutrition.Macros{}, err
		}
		calories = *in.Calories.IntPtr()
	}
	return nutrition.Macros{
		Calories: calories,
		Protein:  nutrition.Round1(protein),
		Carbs:    nutrition.Round1(carbs),
		Fat:      nutrition.Round1(fat),
	}, nil
}

func mealTotals(meals []models.Meal) []nutrition.Macros {
	totals := make([]nutrition.Macros, 0, len(meals))
	for i := range meals {
		totals = append(totals, meals[i].Macros())
	}
	return totals
}

func createMeals(tx *gorm.DB, planID uint64, meals []models.Meal) error {
	for i := range meals {
		meals[i].DietPlanID = planID
		if err := tx.Omit(clause.Associations).Create(&meals[i]).Error; err != nil {
			return err
		}
		if len(meals[i].Items) == 0 {
			continue
		}
		for j := range meals[i].Items {
			meals[i].Items[j].MealID = meals[i].ID
		}
		if err := tx.Omit(clause.Associations).Create(&meals[i].Items).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteMeals removes every meal of a plan, items first
func deleteMeals(tx *gorm.DB, planID uint64) error {
	var mealIDs []uint64
	if err := tx.Model(&models.Meal{}).Where("diet_plan_id = ?", planID).Pluck("id", &mealIDs).Error; err != nil {
		return err
	}
	if len(mealIDs) == 0 {
		return nil
	}
	if err := tx.Where("meal_id IN ?", mealIDs).Delete(&models.MealFoodItem{}).Error; err != nil {
		return err
	}
	return tx.Where("diet_plan_id = ?", planID).Delete(&models.Meal{}).Error
}
