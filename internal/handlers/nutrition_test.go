package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaloriesPreview(t *testing.T) {
	env := setupApp(t)
	_, coach := env.register(t, "coach@example.com", "coach")

	resp := env.do(t, http.MethodPost, "/api/nutrition/calories", coach, map[string]interface{}{
		"protein": "30",
		"carbs":   "",
		"fat":     7.5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(188), object(t, resp)["calories"])

	resp = env.do(t, http.MethodPost, "/api/nutrition/calories", coach, map[string]interface{}{"fat": -1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", object(t, resp)["type"])
}

func TestConvertPreview(t *testing.T) {
	env := setupApp(t)
	_, coach := env.register(t, "coach@example.com", "coach")
	chicken := createChicken(t, env, coach)

	tests := []struct {
		name        string
		body        map[string]interface{}
		wantProtein float64
		wantFat     float64
		wantKcal    float64
	}{
		{
			name:        "stored food in grams",
			body:        map[string]interface{}{"food_id": chicken, "quantity": 150, "unit": "g"},
			wantProtein: 30, wantFat: 7.5, wantKcal: 188,
		},
		{
			name:        "stored food default serving",
			body:        map[string]interface{}{"food_id": chicken},
			wantProtein: 20, wantFat: 5, wantKcal: 125,
		},
		{
			name: "ad hoc profile",
			body: map[string]interface{}{
				"protein_per_100g": 20,
				"fat_per_100g":     5,
				"quantity":         "150",
				"unit":             "grams",
			},
			wantProtein: 30, wantFat: 7.5, wantKcal: 188,
		},
		{
			name: "ad hoc piece with serving weight",
			body: map[string]interface{}{
				"protein_per_100g":     12.6,
				"fat_per_100g":         9.5,
				"default_serving_size": 1,
				"default_serving_unit": "piece",
				"serving_weight_grams": 50,
				"quantity":             2,
				"unit":                 "piece",
			},
			wantProtein: 12.6, wantFat: 9.5, wantKcal: 136,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/nutrition/convert", coach, tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			macros := object(t, resp)
			assert.InDelta(t, tt.wantProtein, macros["protein"], 0.001)
			assert.InDelta(t, tt.wantFat, macros["fat"], 0.001)
			assert.Equal(t, tt.wantKcal, macros["calories"])
		})
	}

	resp := env.do(t, http.MethodPost, "/api/nutrition/convert", coach, map[string]interface{}{
		"protein_per_100g": 20,
		"quantity":         1,
		"unit":             "bushel",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "unit", object(t, resp)["type"])

	resp = env.do(t, http.MethodPost, "/api/nutrition/convert", coach, map[string]interface{}{"protein_per_100g": 20})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlanPreview(t *testing.T) {
	env := setupApp(t)
	_, coach := env.register(t, "coach@example.com", "coach")

	resp := env.do(t, http.MethodPost, "/api/nutrition/plan", coach, map[string]interface{}{
		"name":            "Draft",
		"calories_target": 1000,
		"meals": []map[string]interface{}{
			{"name": "Breakfast", "calories": 300},
			{"name": "Lunch", "calories": "500"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview := object(t, resp)
	totals := preview["totals"].(map[string]interface{})
	assert.Equal(t, float64(800), totals["calories"])
	progress := preview["progress"].(map[string]interface{})
	assert.Equal(t, float64(80), progress["calories"])

	resp = env.do(t, http.MethodGet, "/api/diet-plans", coach, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), object(t, resp)["total"])
}
