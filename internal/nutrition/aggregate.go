package nutrition

import (
	"math"

	"github.com/localnerve/macrosdb/internal/types"
)

// Sum adds line items componentwise. An empty list yields zero totals.
func Sum(items ...Macros) Macros {
	var total Macros
	var protein, carbs, fat float64
	for _, item := range items {
		total.Calories += item.Calories
		protein += item.Protein
		carbs += item.Carbs
		fat += item.Fat
	}
	total.Protein = Round1(protein)
	total.Carbs = Round1(carbs)
	total.Fat = Round1(fat)
	return total
}

// PerServing divides recipe totals by the serving count, rounding each field on its own.
func PerServing(total Macros, servings int) (Macros, error) {
	if servings < 1 {
		return Macros{}, types.NewValidationError("servings", "must be at least 1, got %d", servings)
	}
	n := float64(servings)
	return Macros{
		Calories: int(math.Round(float64(total.Calories) / n)),
		Protein:  Round1(total.Protein / n),
		Carbs:    Round1(total.Carbs / n),
		Fat:      Round1(total.Fat / n),
	}, nil
}

// Scale multiplies a macro set, used for recipe line items measured in servings.
func Scale(m Macros, factor float64) (Macros, error) {
	if err := checkAmount("quantity", factor); err != nil {
		return Macros{}, err
	}
	return checkScaled(Macros{
		Protein: Round1(m.Protein * factor),
		Carbs:   Round1(m.Carbs * factor),
		Fat:     Round1(m.Fat * factor),
	}, float64(m.Calories)*factor)
}
