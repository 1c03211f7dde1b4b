package render

import (
	"fmt"
	"io"
	"strings"
)

// WriteText prints the view as plain text for terminal output
func (v ResultView) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s", v.Theme.Symbol, v.Prakriti)
	if v.Elements != "" {
		fmt.Fprintf(&b, " (%s)", v.Elements)
	}
	fmt.Fprintf(&b, "\nConfidence: %s\n", v.Confidence)

	if len(v.Probabilities) > 0 {
		b.WriteString("\nProbabilities:\n")
		for _, p := range v.Probabilities {
			marker := " "
			if p.Predicted {
				marker = "*"
			}
			fmt.Fprintf(&b, " %s %-8s %7s\n", marker, p.Label, p.Percent)
		}
	}

	if v.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", v.Description)
	}
	writeList(&b, "Characteristics", v.Characteristics)

	if v.Guidelines != "" {
		fmt.Fprintf(&b, "\nDietary guidelines: %s\n", v.Guidelines)
	}
	writeList(&b, "Foods to favor", v.FoodsToFavor)
	writeList(&b, "Foods to avoid", v.FoodsToAvoid)

	if len(v.Meals) > 0 {
		b.WriteString("\nMeal plan:\n")
		for _, m := range v.Meals {
			fmt.Fprintf(&b, "  %s: %s (%s kcal)\n", m.Label, m.Food, m.Kcal)
		}
		fmt.Fprintf(&b, "  Total: %s kcal\n", v.TotalKcal)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
