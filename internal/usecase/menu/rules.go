package menu

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// RuleKind selects how a rule pattern is matched against a cleaned line.
type RuleKind string

const (
	RuleSubstring RuleKind = "substring"
	RuleRegex     RuleKind = "regex"
)

// Rule marks lines as boilerplate. Reason names the rule in logs and metrics.
type Rule struct {
	Pattern string   `yaml:"pattern"`
	Reason  string   `yaml:"reason"`
	Kind    RuleKind `yaml:"kind"`
}

// DefaultRules returns the built-in boilerplate rules for the campus dining pages.
// The regular expressions are anchored to the start of the cleaned line so
// that dish names which merely contain a keyword survive.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: `^\[.*안내\]`, Reason: "notice-header", Kind: RuleRegex},
		{Pattern: `^-.*운영`, Reason: "operating-notice", Kind: RuleRegex},
		{Pattern: `^\*.*운영`, Reason: "operating-notice", Kind: RuleRegex},
		{Pattern: `^※`, Reason: "remark", Kind: RuleRegex},
		{Pattern: `^<.*원>`, Reason: "price", Kind: RuleRegex},
		{Pattern: `^★.*★`, Reason: "banner", Kind: RuleRegex},
		{Pattern: `^후식음료:`, Reason: "drink-notice", Kind: RuleRegex},
		{Pattern: `^.$`, Reason: "fragment", Kind: RuleRegex},
		{Pattern: `등록된 (메뉴가|식단이) 없습니다`, Reason: "no-menu-notice", Kind: RuleRegex},
	}
}

// RulesFromMap builds substring rules from a pattern -> reason table.
// The result is sorted by pattern so that iteration order of the map never
// leaks into filter behavior.
func RulesFromMap(table map[string]string) []Rule {
	rules := make([]Rule, 0, len(table))
	for pattern, reason := range table {
		rules = append(rules, Rule{Pattern: pattern, Reason: reason, Kind: RuleSubstring})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Pattern < rules[j].Pattern })
	return rules
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

func (r compiledRule) match(text string) bool {
	if r.re != nil {
		return r.re.MatchString(text)
	}
	return strings.Contains(text, r.Pattern)
}

// compileRules validates rules and prepares them for matching.
// An empty Kind means substring; an empty Reason defaults to the pattern.
func compileRules(rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("%w: rule %d has an empty pattern", ErrInvalidRule, i)
		}
		if r.Reason == "" {
			r.Reason = r.Pattern
		}

		c := compiledRule{Rule: r}
		switch r.Kind {
		case "", RuleSubstring:
			c.Kind = RuleSubstring
		case RuleRegex:
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %d (%s): %v", ErrInvalidRule, i, r.Reason, err)
			}
			c.re = re
		default:
			return nil, fmt.Errorf("%w: rule %d has unknown kind %q", ErrInvalidRule, i, r.Kind)
		}
		out = append(out, c)
	}
	return out, nil
}
