// Package data embeds the seed content shipped with the service.
package data

import (
	_ "embed"
)

// SystemFoods is the platform food catalog, a JSON array of foods loaded when SEED_SYSTEM_FOODS is set.
//
//go:embed seed/system_foods.json
var SystemFoods []byte
