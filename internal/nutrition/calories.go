package nutrition

import (
	"fmt"
	"math"
)

// CalorieTolerance is the accepted drift, in kcal, between a stored calorie field and the
// value derived from its macros.
const CalorieTolerance = 1

// CalorieMismatchError reports a stored calorie value that disagrees with its macros.
type CalorieMismatchError struct {
	Stored  float64
	Derived int
}

func (e *CalorieMismatchError) Error() string {
	return fmt.Sprintf("stored calories %g differ from derived %d", e.Stored, e.Derived)
}

// DeriveCalories returns round(protein*4 + carbs*4 + fat*9).
func DeriveCalories(protein, carbs, fat float64) (int, error) {
	if err := checkAmount("protein", protein); err != nil {
		return 0, err
	}
	if err := checkAmount("carbs", carbs); err != nil {
		return 0, err
	}
	if err := checkAmount("fat", fat); err != nil {
		return 0, err
	}
	return deriveCalories(protein, carbs, fat)
}

// deriveCalories fails rather than converting an overflowed sum to int.
func deriveCalories(protein, carbs, fat float64) (int, error) {
	kcal := protein*KcalPerGramProtein + carbs*KcalPerGramCarbs + fat*KcalPerGramFat
	if err := checkAmount("calories", kcal); err != nil {
		return 0, err
	}
	return int(math.Round(kcal)), nil
}

// CheckCalories cross-checks a stored calorie field against its macros.
func CheckCalories(stored, protein, carbs, fat float64) error {
	derived, err := DeriveCalories(protein, carbs, fat)
	if err != nil {
		return err
	}
	if math.Abs(stored-float64(derived)) > CalorieTolerance {
		return &CalorieMismatchError{Stored: stored, Derived: derived}
	}
	return nil
}
