package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/localnerve/macrosdb/internal/utils"
)

// ExerciseHandler handles the exercise library routes
type ExerciseHandler struct {
	Store *services.Store
}

// ListExercises handles GET /api/exercises. The category query filters by muscle group.
func (h *ExerciseHandler) ListExercises(c *fiber.Ctx) error {
	filter := listFilter(c)
	exercises, total, err := h.Store.ListExercises(c.UserContext(), actor(c), filter)
	if err != nil {
		return err
	}
	return listResponse(c, exercises, total, filter)
}

func (h *ExerciseHandler) GetExercise(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	exercise, err := h.Store.GetExercise(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := visibleOr404(exercise, actor(c), "exercise", id); err != nil {
		return err
	}
	return utils.SuccessResponse(c, exercise, fiber.StatusOK)
}

func (h *ExerciseHandler) CreateExercise(c *fiber.Ctx) error {
	var input services.ExerciseInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	exercise, err := h.Store.CreateExercise(c.UserContext(), actor(c), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, exercise, fiber.StatusCreated)
}

func (h *ExerciseHandler) UpdateExercise(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch services.ExerciseInput
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	exercise, err := h.Store.UpdateExercise(c.UserContext(), actor(c), id, patch)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, exercise, fiber.StatusOK)
}

func (h *ExerciseHandler) DeleteExercise(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteExercise(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, id)
}
