// Package nutrition holds the macro arithmetic shared by the food, recipe and diet plan
// services: unit conversion, calorie derivation, aggregation and plan rollups.
// Every function is pure.
package nutrition

import (
	"math"

	"github.com/localnerve/macrosdb/internal/types"
)

// Atwater factors, kcal per gram.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// MaxAmount bounds every quantity, macro and calorie value the package accepts or returns.
// Anything larger is an input error, not a portion.
const MaxAmount = 1e9

// Macros is an absolute amount of food energy and macronutrients.
type Macros struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// IsZero reports whether every field is zero.
func (m Macros) IsZero() bool {
	return m == Macros{}
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// CheckAmount rejects a negative, non-finite or out of range value for field.
func CheckAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return types.NewValidationError(field, "must be a finite number")
	}
	if v < 0 {
		return types.NewValidationError(field, "must not be negative, got %g", v)
	}
	if v > MaxAmount {
		return types.NewValidationError(field, "must not exceed %g, got %g", float64(MaxAmount), v)
	}
	return nil
}

func checkAmount(field string, v float64) error {
	return CheckAmount(field, v)
}

// checkScaled guards the result of a multiplication: large finite inputs can still
// overflow, or meet a zero and turn into NaN.
func checkScaled(m Macros, kcal float64) (Macros, error) {
	if err := checkAmount("calories", kcal); err != nil {
		return Macros{}, err
	}
	for _, c := range []struct {
		field string
		v     float64
	}{{"protein", m.Protein}, {"carbs", m.Carbs}, {"fat", m.Fat}} {
		if err := checkAmount(c.field, c.v); err != nil {
			return Macros{}, err
		}
	}
	m.Calories = int(math.Round(kcal))
	return m, nil
}
