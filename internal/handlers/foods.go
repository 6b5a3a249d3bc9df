// foods.go
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
	"github.com/localnerve/macrosdb/internal/utils"
)

// FoodHandler handles the food catalog routes
type FoodHandler struct {
	Store *services.Store
}

// ListFoods handles GET /api/foods?search=&category=&limit=&offset=
func (h *FoodHandler) ListFoods(c *fiber.Ctx) error {
	filter := listFilter(c)
	foods, total, err := h.Store.ListFoods(c.UserContext(), actor(c), filter)
	if err != nil {
		return err
	}
	return listResponse(c, foods, total, filter)
}

// GetFood handles GET /api/foods/:id
func (h *FoodHandler) GetFood(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	food, err := h.Store.GetFood(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := visibleOr404(food, actor(c), "food", id); err != nil {
		return err
	}
	return utils.SuccessResponse(c, food, fiber.StatusOK)
}

// CreateFood handles POST /api/foods
func (h *FoodHandler) CreateFood(c *fiber.Ctx) error {
	var input services.FoodInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	food, err := h.Store.CreateFood(c.UserContext(), actor(c), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, food, fiber.StatusCreated)
}

// UpdateFood handles PATCH /api/foods/:id
func (h *FoodHandler) UpdateFood(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch services.FoodInput
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	food, err := h.Store.UpdateFood(c.UserContext(), actor(c), id, patch)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, food, fiber.StatusOK)
}

// DeleteFood handles DELETE /api/foods/:id
func (h *FoodHandler) DeleteFood(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteFood(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, id)
}
