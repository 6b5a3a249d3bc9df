package models

import (
	"time"

	"github.com/localnerve/macrosdb/internal/nutrition"
)

// Recipe is a set of ingredients cooked into a number of servings. The per-serving
// macros are denormalized at save time.
type Recipe struct {
	ID                 uint64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name               string             `gorm:"size:255;not null;index" json:"name"`
	Description        string             `gorm:"size:2000" json:"description"`
	Instructions       JSON               `json:"instructions,omitempty"`
	Servings           int                `gorm:"not null;default:1" json:"servings"`
	CaloriesPerServing int                `gorm:"not null;default:0" json:"calories_per_serving"`
	ProteinPerServing  float64            `gorm:"not null;default:0" json:"protein_per_serving"`
	CarbsPerServing    float64            `gorm:"not null;default:0" json:"carbs_per_serving"`
	FatPerServing      float64            `gorm:"not null;default:0" json:"fat_per_serving"`
	Ingredients        []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecipeIngredient is one food line of a recipe
type RecipeIngredient struct {
	ID       uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipeID uint64  `gorm:"not null;index" json:"recipe_id"`
	FoodID   uint64  `gorm:"not null;index" json:"food_id"`
	Food     *Food   `gorm:"foreignKey:FoodID" json:"food,omitempty"`
	Quantity float64 `gorm:"not null" json:"quantity"`
	Unit     string  `gorm:"size:20;not null" json:"unit"`
	Position int     `gorm:"not null;default:0" json:"position"`
}

// TableName overrides the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// TableName overrides the table name for RecipeIngredient
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// PerServing returns the stored per-serving macros
func (r *Recipe) PerServing() nutrition.Macros {
	return nutrition.Macros{
		Calories: r.CaloriesPerServing,
		Protein:  r.ProteinPerServing,
		Carbs:    r.CarbsPerServing,
		Fat:      r.FatPerServing,
	}
}

// SetPerServing stores per-serving macros
func (r *Recipe) SetPerServing(m nutrition.Macros) {
	r.CaloriesPerServing = m.Calories
	r.ProteinPerServing = m.Protein
	r.CarbsPerServing = m.Carbs
	r.FatPerServing = m.Fat
}
