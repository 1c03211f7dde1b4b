// Package render turns a prediction payload into the view model shown on the
// result page. Everything here is a pure function of its inputs.
package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"go-prakriti-web/internal/catalog"
	"go-prakriti-web/pkg/models"
)

// mealSlots lists the known meal plan keys in the order a day runs
var mealSlots = []struct {
	key   string
	label string
}{
	{"breakfast", "🌅 Breakfast"},
	{"mid_morning", "🍵 Mid-Morning"},
	{"lunch", "☀️ Lunch"},
	{"evening_snack", "🌤️ Evening Snack"},
	{"dinner", "🌙 Dinner"},
}

// ProbabilityRow is one bar of the probability chart
type ProbabilityRow struct {
	Label     string
	Value     float64
	Percent   string
	Theme     catalog.Theme
	Predicted bool
}

// MealRow is one slot of the meal plan table
type MealRow struct {
	Slot     string
	Label    string
	Food     string
	Calories float64
	Kcal     string
}

// ResultView is everything the result page displays
type ResultView struct {
	Prakriti   string
	Elements   string
	Theme      catalog.Theme
	Confidence string

	Probabilities []ProbabilityRow

	Description     string
	Characteristics []string

	Guidelines    string
	FoodsToFavor  []string
	FoodsToAvoid  []string
	Meals         []MealRow
	TotalCalories float64
	TotalKcal     string

	ImageURL string
}

// FormatPercent formats a 0-100 value with one decimal place
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatCalories prints a calorie count without trailing zeros, rounded to
// two decimals
func FormatCalories(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// NewResultView builds the view model for resp. Labels unknown to types get
// the neutral theme.
func NewResultView(resp models.PredictionResponse, types *catalog.Catalog) ResultView {
	prediction := resp.Prediction
	diet := resp.DietRecommendation

	view := ResultView{
		Prakriti:        prediction.Prakriti,
		Theme:           types.ThemeFor(prediction.Prakriti),
		Confidence:      FormatPercent(prediction.Confidence),
		Description:     resp.PrakritiInfo.Description,
		Characteristics: resp.PrakritiInfo.Characteristics,
		Guidelines:      diet.Guidelines,
		FoodsToFavor:    diet.FoodsToFavor,
		FoodsToAvoid:    diet.FoodsToAvoid,
		TotalCalories:   diet.TotalCalories(),
		TotalKcal:       FormatCalories(diet.TotalCalories()),
		ImageURL:        resp.ImageURL,
	}
	if t, ok := types.Lookup(prediction.Prakriti); ok {
		view.Elements = t.Elements
	}

	view.Probabilities = probabilityRows(prediction, types)
	view.Meals = mealRows(diet.MealPlan)
	return view
}

func probabilityRows(prediction models.Prediction, types *catalog.Catalog) []ProbabilityRow {
	labels := make([]string, 0, len(prediction.Probabilities))
	for label := range prediction.Probabilities {
		labels = append(labels, label)
	}

	// known types first in catalog order, anything else alphabetically
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := types.Rank(labels[i]), types.Rank(labels[j])
		switch {
		case ri >= 0 && rj >= 0:
			return ri < rj
		case ri >= 0:
			return true
		case rj >= 0:
			return false
		default:
			return labels[i] < labels[j]
		}
	})

	rows := make([]ProbabilityRow, 0, len(labels))
	for _, label := range labels {
		value := prediction.Probabilities[label]
		rows = append(rows, ProbabilityRow{
			Label:     label,
			Value:     value,
			Percent:   FormatPercent(value),
			Theme:     types.ThemeFor(label),
			Predicted: label == prediction.Prakriti,
		})
	}
	return rows
}

func mealRows(plan map[string]models.Meal) []MealRow {
	rows := make([]MealRow, 0, len(plan))
	seen := make(map[string]bool, len(mealSlots))

	for _, slot := range mealSlots {
		meal, ok := plan[slot.key]
		if !ok {
			continue
		}
		seen[slot.key] = true
		rows = append(rows, newMealRow(slot.key, slot.label, meal))
	}

	var extra []string
	for key := range plan {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		meal := plan[key]
		rows = append(rows, newMealRow(key, key, meal))
	}
	return rows
}

func newMealRow(slot, label string, meal models.Meal) MealRow {
	return MealRow{
		Slot:     slot,
		Label:    label,
		Food:     meal.Food,
		Calories: meal.Calories,
		Kcal:     FormatCalories(meal.Calories),
	}
}
