package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ajou-menu/internal/usecase/menu"
)

// rulesFile is the YAML layout of a boilerplate rules file:
//
//	rules:
//	  - pattern: "^\\(.*\\)$"
//	    reason: parenthesized-note
//	    kind: regex
//	substrings:
//	  "임시 휴무": closed-notice
type rulesFile struct {
	Rules      []menu.Rule       `yaml:"rules"`
	Substrings map[string]string `yaml:"substrings"`
}

// LoadRulesFile reads boilerplate rules from a YAML file. Substring entries
// follow the listed rules, sorted by pattern. Every rule is compiled so that
// a broken pattern is reported here rather than on the first fetch.
// The path is expected to come from operator configuration.
func LoadRulesFile(path string) ([]menu.Rule, error) {
	// #nosec G304 -- path is provided by trusted configuration, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := append(file.Rules, menu.RulesFromMap(file.Substrings)...)
	if _, err := menu.NewNormalizer(rules); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rules, nil
}
