package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/localnerve/macrosdb/internal/utils"
)

// RecipeHandler handles the recipe routes
type RecipeHandler struct {
	Store *services.Store
}

// ListRecipes handles GET /api/recipes
func (h *RecipeHandler) ListRecipes(c *fiber.Ctx) error {
	filter := listFilter(c)
	recipes, total, err := h.Store.ListRecipes(c.UserContext(), actor(c), filter)
	if err != nil {
		return err
	}
	return listResponse(c, recipes, total, filter)
}

// GetRecipe handles GET /api/recipes/:id, ingredients included
func (h *RecipeHandler) GetRecipe(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	recipe, err := h.Store.GetRecipeWithIngredients(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := visibleOr404(recipe, actor(c), "recipe", id); err != nil {
		return err
	}
	return utils.SuccessResponse(c, recipe, fiber.StatusOK)
}

// CreateRecipe handles POST /api/recipes
func (h *RecipeHandler) CreateRecipe(c *fiber.Ctx) error {
	var input services.RecipeInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	recipe, err := h.Store.CreateRecipe(c.UserContext(), actor(c), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recipe, fiber.StatusCreated)
}

// UpdateRecipe handles PATCH /api/recipes/:id
func (h *RecipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch services.RecipeInput
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	recipe, err := h.Store.UpdateRecipe(c.UserContext(), actor(c), id, patch)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recipe, fiber.StatusOK)
}

// DeleteRecipe handles DELETE /api/recipes/:id
func (h *RecipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteRecipe(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, id)
}
