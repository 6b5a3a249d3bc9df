package nutrition

// Targets are a diet plan's daily goals. Nil means the author left it blank.
type Targets struct {
	Calories *int     `json:"calories_target"`
	Protein  *float64 `json:"protein_grams"`
	Carbs    *float64 `json:"carbs_grams"`
	Fat      *float64 `json:"fat_grams"`
}

// TargetsFrom turns a macro total into concrete targets.
func TargetsFrom(m Macros) Targets {
	calories, protein, carbs, fat := m.Calories, m.Protein, m.Carbs, m.Fat
	return Targets{Calories: &calories, Protein: &protein, Carbs: &carbs, Fat: &fat}
}

// Rollup sums a day's meal totals.
func Rollup(meals ...Macros) Macros {
	return Sum(meals...)
}

// ResolveTargets picks the plan targets to store. In derived mode the manual values are
// overwritten by the meal rollup; in manual mode they are kept exactly as entered.
func ResolveTargets(auto bool, manual Targets, meals []Macros) Targets {
	if !auto {
		return manual
	}
	return TargetsFrom(Rollup(meals...))
}

// Progress reports consumed macros as a percentage of each set target. Blank or zero
// targets are omitted; values above 100 mean the target is exceeded.
func Progress(consumed Macros, targets Targets) map[string]float64 {
	out := make(map[string]float64, 4)
	if targets.Calories != nil && *targets.Calories > 0 {
		out["calories"] = Round1(float64(consumed.Calories) / float64(*targets.Calories) * 100)
	}
	percent := func(key string, v float64, target *float64) {
		if target != nil && *target > 0 {
			out[key] = Round1(v / *target * 100)
		}
	}
	percent("protein", consumed.Protein, targets.Protein)
	percent("carbs", consumed.Carbs, targets.Carbs)
	percent("fat", consumed.Fat, targets.Fat)
	return out
}
