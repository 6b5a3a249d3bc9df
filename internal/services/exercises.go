package services

import (
	"context"
	"strings"

	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
)

// ExerciseInput is the body of an exercise create or patch
type ExerciseInput struct {
	Name         string `json:"name"`
	MuscleGroup  string `json:"muscle_group"`
	Equipment    string `json:"equipment"`
	Instructions string `json:"instructions"`
	IsSystem     bool   `json:"is_system"`
}

func (s *Store) GetExercise(ctx context.Context, id uint64) (*models.Exercise, error) {
	var exercise models.Exercise
	if err := s.conn(ctx).First(&exercise, id).Error; err != nil {
		return nil, s.fail("get exercise", notFound(err, "exercise", id))
	}
	return &exercise, nil
}

// ListExercises filters by name search and muscle group (ListFilter.Category)
func (s *Store) ListExercises(ctx context.Context, actor policy.Actor, filter ListFilter) ([]models.Exercise, int64, error) {
	q := visible(s.conn(ctx).Model(&models.Exercise{}), actor)
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", filter.pattern())
	}
	if filter.Category != "" {
		q = q.Where("muscle_group = ?", filter.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, s.fail("count exercises", err)
	}

	var exercises []models.Exercise
	if err := q.Order("name").Order("id").
		Limit(filter.limit()).
		Offset(filter.offset()).
		Find(&exercises).Error; err != nil {
		return nil, 0, s.fail("list exercises", err)
	}
	return exercises, total, nil
}

func (s *Store) CreateExercise(ctx context.Context, actor policy.Actor, input ExerciseInput) (*models.Exercise, error) {
	system, createdBy, err := ownedBy(actor, input.IsSystem)
	if err != nil {
		return nil, err
	}

	exercise := models.Exercise{
		Name:         strings.TrimSpace(input.Name),
		MuscleGroup:  strings.TrimSpace(input.MuscleGroup),
		Equipment:    strings.TrimSpace(input.Equipment),
		Instructions: input.Instructions,
		Ownership:    models.Ownership{IsSystem: system, CreatedBy: createdBy},
	}
	if exercise.Name == "" {
		return nil, types.NewValidationError("name", "is required")
	}

	if err := s.conn(ctx).Create(&exercise).Error; err != nil {
		return nil, s.fail("create exercise", err)
	}
	return &exercise, nil
}

func (s *Store) UpdateExercise(ctx context.Context, actor policy.Actor, id uint64, patch ExerciseInput) (*models.Exercise, error) {
	exercise, err := s.GetExercise(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkMutate(exercise, actor, "exercise", id); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(patch.Name); name != "" {
		exercise.Name = name
	}
	if group := strings.TrimSpace(patch.MuscleGroup); group != "" {
		exercise.MuscleGroup = group
	}
	if equipment := strings.TrimSpace(patch.Equipment); equipment != "" {
		exercise.Equipment = equipment
	}
	if patch.Instructions != "" {
		exercise.Instructions = patch.Instructions
	}

	if err := s.conn(ctx).Save(exercise).Error; err != nil {
		return nil, s.fail("update exercise", err)
	}
	return exercise, nil
}

func (s *Store) DeleteExercise(ctx context.Context, actor policy.Actor, id uint64) error {
	exercise, err := s.GetExercise(ctx, id)
	if err != nil {
		return err
	}
	if err := checkMutate(exercise, actor, "exercise", id); err != nil {
		return err
	}
	return s.fail("delete exercise", s.conn(ctx).Delete(&models.Exercise{}, id).Error)
}
