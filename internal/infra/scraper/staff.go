package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ajou-menu/internal/domain/entity"
)

// extractStaff reads the staff page, which groups dishes into corners.
// A line that is entirely "[X]" or "<X>" opens corner X, unless it is a
// notice ("[... 안내]") or a price ("<5,000원>"); those stay as ordinary
// lines for the boilerplate filter to drop.
func extractStaff(doc *goquery.Document) []entity.MenuEntry {
	var entries []entity.MenuEntry

	for _, period := range entity.MealPeriods() {
		corner := ""
		for _, l := range boxLines(periodBox(doc, period)) {
			if name, ok := cornerHeader(l.text); ok {
				corner = name
				continue
			}
			entries = append(entries, entity.MenuEntry{
				Text:     l.text,
				Category: period,
				MealType: corner,
			})
		}
	}
	return entries
}

// cornerHeader reports whether text is a corner header and returns its name.
func cornerHeader(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if len(t) < 3 {
		return "", false
	}

	switch {
	case strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]"):
		name := strings.TrimSpace(t[1 : len(t)-1])
		if name == "" || strings.Contains(name, "안내") || strings.ContainsAny(name, "[]") {
			return "", false
		}
		return name, true
	case strings.HasPrefix(t, "<") && strings.HasSuffix(t, ">"):
		name := strings.TrimSpace(t[1 : len(t)-1])
		if name == "" || strings.HasSuffix(name, "원") || strings.ContainsAny(name, "<>") {
			return "", false
		}
		return name, true
	}
	return "", false
}
