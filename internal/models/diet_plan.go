package models

import (
	"time"

	"github.com/localnerve/macrosdb/internal/nutrition"
)

// DietPlan is a day of meals with plan level macro targets. With AutoCalculate set the
// targets are rolled up from the meals on every save.
type DietPlan struct {
	ID             uint64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string   `gorm:"size:255;not null" json:"name"`
	Description    string   `gorm:"size:2000" json:"description"`
	MealsPerDay    int      `gorm:"not null;default:0" json:"meals_per_day"`
	CaloriesTarget *int     `json:"calories_target"`
	ProteinGrams   *float64 `json:"protein_grams"`
	CarbsGrams     *float64 `json:"carbs_grams"`
	FatGrams       *float64 `json:"fat_grams"`
	AutoCalculate  bool     `gorm:"not null;default:false" json:"auto_calculate"`
	IsPublished    bool     `gorm:"not null;default:false" json:"is_published"`
	ClientID       *string  `gorm:"type:char(36);index" json:"client_id,omitempty"`
	Meals          []Meal   `gorm:"foreignKey:DietPlanID" json:"meals"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meal is one ordered meal of a diet plan
type Meal struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	DietPlanID   uint64         `gorm:"not null;index" json:"diet_plan_id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Position     int            `gorm:"not null;default:0" json:"position"`
	Calories     int            `gorm:"not null;default:0" json:"calories"`
	ProteinGrams float64        `gorm:"not null;default:0" json:"protein_grams"`
	CarbsGrams   float64        `gorm:"not null;default:0" json:"carbs_grams"`
	FatGrams     float64        `gorm:"not null;default:0" json:"fat_grams"`
	Items        []MealFoodItem `gorm:"foreignKey:MealID" json:"items"`
}

// MealFoodItem references exactly one of a food or a recipe. The calculated macros are
// a snapshot taken when the item was added: nutrition values are fixed at the time a
// food is added to a meal.
type MealFoodItem struct {
	ID                 uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	MealID             uint64  `gorm:"not null;index" json:"meal_id"`
	FoodID             *uint64 `gorm:"index" json:"food_id,omitempty"`
	RecipeID           *uint64 `gorm:"index" json:"recipe_id,omitempty"`
	Quantity           float64 `gorm:"not null" json:"quantity"`
	Unit               string  `gorm:"size:20;not null" json:"unit"`
	Position           int     `gorm:"not null;default:0" json:"position"`
	CalculatedCalories int     `gorm:"not null;default:0" json:"calculated_calories"`
	CalculatedProtein  float64 `gorm:"not null;default:0" json:"calculated_protein"`
	CalculatedCarbs    float64 `gorm:"not null;default:0" json:"calculated_carbs"`
	CalculatedFat      float64 `gorm:"not null;default:0" json:"calculated_fat"`
}

// TableName overrides the table name for DietPlan
func (DietPlan) TableName() string {
	return "diet_plans"
}

// TableName overrides the table name for Meal
func (Meal) TableName() string {
	return "meals"
}

// TableName overrides the table name for MealFoodItem
func (MealFoodItem) TableName() string {
	return "meal_food_items"
}

// Published implements policy.Publishable
func (p DietPlan) Published() bool {
	return p.IsPublished
}

// AssignedTo implements policy.Assignable
func (p DietPlan) AssignedTo() string {
	if p.ClientID == nil {
		return ""
	}
	return *p.ClientID
}

// Targets returns the stored plan targets
func (p *DietPlan) Targets() nutrition.Targets {
	return nutrition.Targets{
		Calories: p.CaloriesTarget,
		Protein:  p.ProteinGrams,
		Carbs:    p.CarbsGrams,
		Fat:      p.FatGrams,
	}
}

// SetTargets stores plan targets
func (p *DietPlan) SetTargets(t nutrition.Targets) {
	p.CaloriesTarget = t.Calories
	p.ProteinGrams = t.Protein
	p.CarbsGrams = t.Carbs
	p.FatGrams = t.Fat
}

// Macros returns the meal's stored totals
func (m *Meal) Macros() nutrition.Macros {
	return nutrition.Macros{
		Calories: m.Calories,
		Protein:  m.ProteinGrams,
		Carbs:    m.CarbsGrams,
		Fat:      m.FatGrams,
	}
}

// SetMacros stores the meal's totals
func (m *Meal) SetMacros(t nutrition.Macros) {
	m.Calories = t.Calories
	m.ProteinGrams = t.Protein
	m.CarbsGrams = t.Carbs
	m.FatGrams = t.Fat
}

// Snapshot returns the item's frozen macros
func (i *MealFoodItem) Snapshot() nutrition.Macros {
	return nutrition.Macros{
		Calories: i.CalculatedCalories,
		Protein:  i.CalculatedProtein,
		Carbs:    i.CalculatedCarbs,
		Fat:      i.CalculatedFat,
	}
}

// SetSnapshot freezes the item's macros
func (i *MealFoodItem) SetSnapshot(m nutrition.Macros) {
	i.CalculatedCalories = m.Calories
	i.CalculatedProtein = m.Protein
	i.CalculatedCarbs = m.Carbs
	i.CalculatedFat = m.Fat
}
