package models

import (
	"time"

	"github.com/localnerve/macrosdb/internal/nutrition"
)

// Food is a catalog entry with its macro profile per 100 g
type Food struct {
	ID                 uint64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name               string   `gorm:"size:255;not null;index:idx_foods_name" json:"name"`
	Category           string   `gorm:"size:100;index" json:"category"`
	ProteinPer100g     float64  `gorm:"not null;default:0" json:"protein_per_100g"`
	CarbsPer100g       float64  `gorm:"not null;default:0" json:"carbs_per_100g"`
	FatPer100g         float64  `gorm:"not null;default:0" json:"fat_per_100g"`
	FiberPer100g       *float64 `json:"fiber_per_100g,omitempty"`
	CaloriesPer100g    int      `gorm:"not null;default:0" json:"calories_per_100g"`
	DefaultServingSize float64  `gorm:"not null;default:100" json:"default_serving_size"`
	DefaultServingUnit string   `gorm:"size:20;not null;default:'g'" json:"default_serving_unit"`
	ServingWeightGrams *float64 `json:"serving_weight_grams,omitempty"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for Food
func (Food) TableName() string {
	return "foods"
}

// Profile returns the food's macro profile for unit conversion
func (f *Food) Profile() nutrition.Profile {
	p := nutrition.Profile{
		ProteinPer100g:     f.ProteinPer100g,
		CarbsPer100g:       f.CarbsPer100g,
		FatPer100g:         f.FatPer100g,
		DefaultServingSize: f.DefaultServingSize,
		DefaultServingUnit: nutrition.Unit(f.DefaultServingUnit),
	}
	if f.ServingWeightGrams != nil {
		p.ServingWeightGrams = *f.ServingWeightGrams
	}
	return p
}
