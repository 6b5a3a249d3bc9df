package services

import (
	"context"

	"github.com/localnerve/macrosdb/internal/nutrition"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
)

// MealPreview is the live total of a meal being built
type MealPreview struct {
	Items  []nutrition.Macros `json:"items"`
	Totals nutrition.Macros   `json:"totals"`
}

// PlanPreview is the live rollup of a plan being built
type PlanPreview struct {
	Meals    []nutrition.Macros `json:"meals"`
	Totals   nutrition.Macros   `json:"totals"`
	Targets  nutrition.Targets  `json:"targets"`
	Progress map[string]float64 `json:"progress"`
}

// PreviewItem computes one food or recipe line without storing anything
func (s *Store) PreviewItem(ctx context.Context, actor policy.Actor, in MealItemInput) (nutrition.Macros, error) {
	if in.FoodID.Set == in.RecipeID.Set {
		return nutrition.Macros{}, types.NewValidationError("item", "exactly one of food_id or recipe_id is required")
	}

	var (
		l   line
		err error
	)
	if in.FoodID.Set {
		l, err = foodLine(s.conn(ctx), actor, "item", in.FoodID.Value, in.Quantity, in.Unit)
	} else {
		l, err = recipeLine(s.conn(ctx), actor, "item", in.RecipeID.Value, in.Quantity, in.Unit)
	}
	if err != nil {
		return nutrition.Macros{}, s.fail("preview item", err)
	}
	return l.macros, nil
}

// PreviewMeal totals a meal the way SaveMeal would
func (s *Store) PreviewMeal(ctx context.Context, actor policy.Actor, in MealInput) (*MealPreview, error) {
	meal, err := buildMeal(s.conn(ctx), actor, "meal", in, 0, nil)
	if err != nil {
		return nil, s.fail("preview meal", err)
	}

	preview := &MealPreview{
		Items:  make([]nutrition.Macros, 0, len(meal.Items)),
		Totals: meal.Macros(),
	}
	for i := range meal.Items {
		preview.Items = append(preview.Items, meal.Items[i].Snapshot())
	}
	return preview, nil
}

// PreviewPlan rolls up a plan the way SaveDietPlan would, with progress against the
// resulting targets
func (s *Store) PreviewPlan(ctx context.Context, actor policy.Actor, in DietPlanInput) (*PlanPreview, error) {
	manual, err := in.manualTargets()
	if err != nil {
		return nil, err
	}
	meals, err := buildMeals(s.conn(ctx), actor, in.Meals.Slice(), nil)
	if err != nil {
		return nil, s.fail("preview plan", err)
	}

	totals := mealTotals(meals)
	rollup := nutrition.Rollup(totals...)
	targets := nutrition.ResolveTargets(in.AutoCalculate.Or(false), manual, totals)
	return &PlanPreview{
		Meals:    totals,
		Totals:   rollup,
		Targets:  targets,
		Progress: nutrition.Progress(rollup, targets),
	}, nil
}
