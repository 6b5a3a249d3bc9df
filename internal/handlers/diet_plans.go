// diet_plans.go
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
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/localnerve/macrosdb/internal/types"
	"github.com/localnerve/macrosdb/internal/utils"
)

// DietPlanHandler handles the diet plan routes
type DietPlanHandler struct {
	Store *services.Store
}

// PublishInput is the body of a publish toggle. A missing flag publishes.
type PublishInput struct {
	Published *bool `json:"published"`
}

// ListDietPlans handles GET /api/diet-plans
func (h *DietPlanHandler) ListDietPlans(c *fiber.Ctx) error {
	filter := listFilter(c)
	plans, total, err := h.Store.ListDietPlans(c.UserContext(), actor(c), filter)
	if err != nil {
		return err
	}
	return listResponse(c, plans, total, filter)
}

// GetDietPlan handles GET /api/diet-plans/:id with its meals and items
func (h *DietPlanHandler) GetDietPlan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	plan, err := h.Store.GetDietPlan(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := visibleOr404(plan, actor(c), "diet plan", id); err != nil {
		return err
	}
	return utils.SuccessResponse(c, plan, fiber.StatusOK)
}

// CreateDietPlan handles POST /api/diet-plans. The plan, its meals and their items are
// written in one transaction.
func (h *DietPlanHandler) CreateDietPlan(c *fiber.Ctx) error {
	var input services.DietPlanInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	id, err := h.Store.SaveDietPlan(c.UserContext(), actor(c), input, input.Meals.Slice())
	if err != nil {
		return err
	}
	plan, err := h.Store.GetDietPlan(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, plan, fiber.StatusCreated)
}

// UpdateDietPlan handles PUT /api/diet-plans/:id. Meals are replaced only when the body
// carries them.
func (h *DietPlanHandler) UpdateDietPlan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var input services.DietPlanInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	plan, err := h.Store.UpdateDietPlan(c.UserContext(), actor(c), id, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, plan, fiber.StatusOK)
}

// AddMeal handles POST /api/diet-plans/:id/meals
func (h *DietPlanHandler) AddMeal(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var input services.MealInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	mealID, err := h.Store.SaveMeal(c.UserContext(), actor(c), id, input)
	if err != nil {
		return err
	}
	return utils.CreatedResponse(c, mealID)
}

// PublishDietPlan handles POST /api/diet-plans/:id/publish for system plans
func (h *DietPlanHandler) PublishDietPlan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var input PublishInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return types.NewValidationError("body", "invalid request body: %v", err)
		}
	}
	published := input.Published == nil || *input.Published

	plan, err := h.Store.SetPublished(c.UserContext(), actor(c), id, published)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, plan, fiber.StatusOK)
}

// DeleteDietPlan handles DELETE /api/diet-plans/:id, meals and items included
func (h *DietPlanHandler) DeleteDietPlan(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteDietPlan(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, id)
}
