package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ajou-menu/internal/domain/entity"
)

// extractDormitory reads the dormitory page. An emphasized line (for
// example <b>한식</b> or <strong>[일품]</strong>) names the meal type of the
// lines that follow it, but only when a plain line follows it in the same
// period. An emphasized line with no plain line after it is itself a dish,
// such as a bold-only special, and carries no meal type.
func extractDormitory(doc *goquery.Document) []entity.MenuEntry {
	var entries []entity.MenuEntry

	for _, period := range entity.MealPeriods() {
		lines := boxLines(periodBox(doc, period))
		lastPlain := -1
		for i, l := range lines {
			if !l.emphasized {
				lastPlain = i
			}
		}

		mealType := ""
		for i, l := range lines {
			if l.emphasized && i < lastPlain {
				mealType = trimBrackets(strings.TrimSpace(l.text))
				continue
			}
			entry := entity.MenuEntry{Text: l.text, Category: period, MealType: mealType}
			if l.emphasized {
				entry.MealType = ""
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// trimBrackets strips one pair of enclosing [] or <> from s.
func trimBrackets(s string) string {
	if len(s) < 2 {
		return s
	}
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"),
		strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
