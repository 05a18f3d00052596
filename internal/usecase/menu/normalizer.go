package menu

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"ajou-menu/internal/domain/entity"
)

// Normalizer cleans raw parser output and drops boilerplate lines.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	rules []compiledRule
}

// FilterStats reports what a normalization pass removed.
type FilterStats struct {
	// Dropped counts removed entries per rule reason.
	Dropped map[string]int

	// Blank counts entries that were empty after cleaning.
	Blank int
}

// NewNormalizer compiles rules into a Normalizer.
// It returns an error wrapping ErrInvalidRule if any rule is unusable.
func NewNormalizer(rules []Rule) (*Normalizer, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Normalizer{rules: compiled}, nil
}

// NewDefaultNormalizer returns a Normalizer using DefaultRules.
func NewDefaultNormalizer() *Normalizer {
	n, err := NewNormalizer(DefaultRules())
	if err != nil {
		// DefaultRules is a fixed table covered by tests.
		panic(err)
	}
	return n
}

// Normalize returns the cleaned entries of raw, in their original order.
func (n *Normalizer) Normalize(raw []entity.MenuEntry) []entity.MenuEntry {
	out, _ := n.NormalizeWithStats(raw)
	return out
}

// NormalizeWithStats is Normalize plus a summary of what was removed.
//
// Each entry's text is cleaned with CleanText. Entries that are empty after
// cleaning, or whose cleaned text matches any rule, are dropped. Category is
// kept as is and MealType is cleaned the same way as the text.
func (n *Normalizer) NormalizeWithStats(raw []entity.MenuEntry) ([]entity.MenuEntry, FilterStats) {
	stats := FilterStats{Dropped: map[string]int{}}
	out := make([]entity.MenuEntry, 0, len(raw))

	for _, e := range raw {
		text := CleanText(e.Text)
		if text == "" {
			stats.Blank++
			continue
		}
		if reason, ok := n.match(text); ok {
			stats.Dropped[reason]++
			continue
		}
		out = append(out, entity.MenuEntry{
			Text:     text,
			Category: e.Category,
			MealType: CleanText(e.MealType),
		})
	}
	return out, stats
}

func (n *Normalizer) match(text string) (string, bool) {
	for _, r := range n.rules {
		if r.match(text) {
			return r.Reason, true
		}
	}
	return "", false
}

// CleanText applies NFC normalization, collapses whitespace runs to a single
// space, and trims the result.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
