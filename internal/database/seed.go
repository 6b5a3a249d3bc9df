package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/localnerve/macrosdb/data"
	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/nutrition"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedSystemFoods inserts the embedded platform food catalog. Foods already present by
// name as system content are left alone, so seeding is safe on every start.
func SeedSystemFoods(ctx context.Context, db *gorm.DB, log *logrus.Logger) (int, error) {
	var foods []models.Food
	if err := json.Unmarshal(data.SystemFoods, &foods); err != nil {
		return 0, fmt.Errorf("invalid system food catalog: %w", err)
	}

	inserted := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range foods {
			food := foods[i]
			if err := food.Profile().Validate(); err != nil {
				return fmt.Errorf("system food %q: %w", food.Name, err)
			}
			if _, err := nutrition.ParseUnit(food.DefaultServingUnit); err != nil {
				return fmt.Errorf("system food %q: %w", food.Name, err)
			}

			var count int64
			if err := tx.Model(&models.Food{}).
				Where("name = ? AND is_system = ?", food.Name, true).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			calories, err := nutrition.DeriveCalories(food.ProteinPer100g, food.CarbsPer100g, food.FatPer100g)
			if err != nil {
				return fmt.Errorf("system food %q: %w", food.Name, err)
			}
			food.CaloriesPer100g = calories
			food.IsSystem = true
			food.CreatedBy = nil

			if err := tx.Create(&food).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.WithField("inserted", inserted).Info("system food catalog seeded")
	return inserted, nil
}
