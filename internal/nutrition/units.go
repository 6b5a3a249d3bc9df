package nutrition

import (
	"strings"

	"github.com/localnerve/macrosdb/internal/types"
)

// Unit is a quantity unit accepted by the builders.
type Unit string

const (
	UnitGram    Unit = "g"
	UnitOunce   Unit = "oz"
	UnitPiece   Unit = "piece"
	UnitServing Unit = "serving"
	UnitCup     Unit = "cup"
	UnitTbsp    Unit = "tbsp"
	UnitTsp     Unit = "tsp"
	UnitScoop   Unit = "scoop"
)

type unitKind int

const (
	unitKindMass unitKind = iota
	unitKindServing
)

type unitDef struct {
	kind         unitKind
	gramsPerUnit float64
}

// unitTable is the only source of unit semantics. Mass units carry their gram weight,
// serving units are resolved against the food's default serving.
var unitTable = map[Unit]unitDef{
	UnitGram:    {kind: unitKindMass, gramsPerUnit: 1},
	UnitOunce:   {kind: unitKindMass, gramsPerUnit: 28.349523125},
	UnitPiece:   {kind: unitKindServing},
	UnitServing: {kind: unitKindServing},
	UnitCup:     {kind: unitKindServing},
	UnitTbsp:    {kind: unitKindServing},
	UnitTsp:     {kind: unitKindServing},
	UnitScoop:   {kind: unitKindServing},
}

// ParseUnit normalizes and validates a unit name. The empty string is returned as is so
// callers can substitute a default.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if u == "" {
		return "", nil
	}
	switch u {
	case "gram", "grams":
		u = UnitGram
	case "ounce", "ounces":
		u = UnitOunce
	case "pieces", "pc", "pcs":
		u = UnitPiece
	case "servings":
		u = UnitServing
	}
	if _, ok := unitTable[u]; !ok {
		return "", &types.InvalidUnitError{Unit: s}
	}
	return u, nil
}

// IsMass reports whether the unit converts to grams on its own.
func (u Unit) IsMass() bool {
	def, ok := unitTable[u]
	return ok && def.kind == unitKindMass
}

// Profile is a food's macro profile per 100 g together with its default serving.
type Profile struct {
	ProteinPer100g     float64
	CarbsPer100g       float64
	FatPer100g         float64
	DefaultServingSize float64
	DefaultServingUnit Unit
	// ServingWeightGrams is the gram weight of one default serving, zero when unknown.
	ServingWeightGrams float64
}

// Validate rejects negative or non-finite profile values.
func (p Profile) Validate() error {
	checks := []struct {
		field string
		v     float64
	}{
		{"protein_per_100g", p.ProteinPer100g},
		{"carbs_per_100g", p.CarbsPer100g},
		{"fat_per_100g", p.FatPer100g},
		{"default_serving_size", p.DefaultServingSize},
		{"serving_weight_grams", p.ServingWeightGrams},
	}
	for _, c := range checks {
		if err := checkAmount(c.field, c.v); err != nil {
			return err
		}
	}
	return nil
}

// CaloriesPer100g derives the calorie density of the profile.
func (p Profile) CaloriesPer100g() (int, error) {
	return deriveCalories(p.ProteinPer100g, p.CarbsPer100g, p.FatPer100g)
}

// Factor returns the multiplier applied to the per-100g profile for quantity of unit.
func (p Profile) Factor(quantity float64, unit Unit) (float64, error) {
	if err := checkAmount("quantity", quantity); err != nil {
		return 0, err
	}
	if unit == "" {
		unit = p.defaultUnit()
	}
	def, ok := unitTable[unit]
	if !ok {
		return 0, &types.InvalidUnitError{Unit: string(unit)}
	}

	if def.kind == unitKindMass {
		return quantity * def.gramsPerUnit / 100, nil
	}

	matchesServing := unit == UnitServing || unit == p.DefaultServingUnit
	switch {
	case matchesServing && p.ServingWeightGrams > 0:
		size := p.DefaultServingSize
		if size <= 0 {
			size = 1
		}
		return quantity / size * p.ServingWeightGrams / 100, nil
	case matchesServing && p.DefaultServingSize > 0:
		return quantity / p.DefaultServingSize, nil
	default:
		return quantity, nil
	}
}

func (p Profile) defaultUnit() Unit {
	if _, ok := unitTable[p.DefaultServingUnit]; ok {
		return p.DefaultServingUnit
	}
	return UnitGram
}

// Convert scales the profile to quantity of unit. Macros are rounded to one decimal and
// calories are derived from the unrounded scaled macros.
func Convert(p Profile, quantity float64, unit Unit) (Macros, error) {
	if err := p.Validate(); err != nil {
		return Macros{}, err
	}
	factor, err := p.Factor(quantity, unit)
	if err != nil {
		return Macros{}, err
	}

	protein := p.ProteinPer100g * factor
	carbs := p.CarbsPer100g * factor
	fat := p.FatPer100g * factor

	kcal := protein*KcalPerGramProtein + carbs*KcalPerGramCarbs + fat*KcalPerGramFat
	return checkScaled(Macros{
		Protein: Round1(protein),
		Carbs:   Round1(carbs),
		Fat:     Round1(fat),
	}, kcal)
}
