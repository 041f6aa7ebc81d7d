package inventory

import (
	"fmt"
	"os"

	"github.com/Lumos-Labs-HQ/restock/internal/engine"
	"gopkg.in/yaml.v3"
)

// RulesFile is the caller-supplied taxonomy: which categories to seed and
// which item names map onto them.
type RulesFile struct {
	Categories []CategoryRecord `yaml:"categories"`
	Rules      []BackfillRule   `yaml:"rules"`
}

type CategoryRecord struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type BackfillRule struct {
	Match    string `yaml:"match"`
	Category string `yaml:"category"`
}

func ParseRulesFile(path string) (*RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return &file, nil
}

func (f *RulesFile) Validate() error {
	if len(f.Categories) == 0 {
		return fmt.Errorf("no categories defined")
	}

	seen := make(map[string]bool, len(f.Categories))
	for _, cat := range f.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
	}

	for _, rule := range f.Rules {
		if rule.Match == "" {
			return fmt.Errorf("rule with empty match value")
		}
		if !seen[rule.Category] {
			return fmt.Errorf("rule %q targets unknown category %q", rule.Match, rule.Category)
		}
	}
	return nil
}

// FromRulesFile builds the migration with the file's taxonomy in place of
// the built-in one.
func FromRulesFile(path string) (engine.Migration, error) {
	file, err := ParseRulesFile(path)
	if err != nil {
		return engine.Migration{}, err
	}

	records := make([]engine.SeedRecord, 0, len(file.Categories))
	for _, cat := range file.Categories {
		records = append(records, engine.SeedRecord{Name: cat.Name, Description: cat.Description})
	}

	rules := make([]engine.Rule, 0, len(file.Rules))
	for _, rule := range file.Rules {
		rules = append(rules, engine.Rule{Match: rule.Match, Target: rule.Category})
	}

	return build(records, rules), nil
}
