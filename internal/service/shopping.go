package service

import (
	"bytes"
	"fmt"

	"github.com/foodgram-go/backend/internal/models"
)

// IngredientTotal is one aggregated shopping list line. Lines with the
// same name but different measurement units stay separate; no unit
// normalization happens here.
type IngredientTotal struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

type ingredientKey struct {
	name string
	unit string
}

// AggregateIngredients sums ingredient amounts across the given
// recipes, grouped by (name, measurement unit), in first-seen order.
func AggregateIngredients(recipes []models.Recipe) []IngredientTotal {
	totals := make(map[ingredientKey]int)
	var order []ingredientKey

	for _, recipe := range recipes {
		for _, line := range recipe.Ingredients {
			key := ingredientKey{
				name: line.Ingredient.Name,
				unit: line.Ingredient.MeasurementUnit,
			}
			if _, seen := totals[key]; !seen {
				order = append(order, key)
			}
			totals[key] += line.Amount
		}
	}

	result := make([]IngredientTotal, 0, len(order))
	for _, key := range order {
		result = append(result, IngredientTotal{
			Name:            key.name,
			MeasurementUnit: key.unit,
			Amount:          totals[key],
		})
	}
	return result
}

// RenderShoppingList renders totals as "{name} {amount} {unit}" lines
// joined by newlines. An empty input renders to an empty byte slice.
func RenderShoppingList(totals []IngredientTotal) []byte {
	var buf bytes.Buffer
	for i, total := range totals {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%s %d %s", total.Name, total.Amount, total.MeasurementUnit)
	}
	return buf.Bytes()
}
