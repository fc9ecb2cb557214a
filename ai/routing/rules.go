package routing

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// RuleConfig is one entry of the routing table as written in YAML.
type RuleConfig struct {
	Name     string   `yaml:"name"`
	Route    Route    `yaml:"route"`
	Contains []string `yaml:"contains"`
	Words    []string `yaml:"words"`
	Exact    []string `yaml:"exact"`
	Patterns []string `yaml:"patterns"`
}

type rulesFile struct {
	Rules []RuleConfig `yaml:"rules"`
}

type compiledRule struct {
	name     string
	route    Route
	contains []string
	words    []wordMatcher
	exact    map[string]struct{}
	patterns []*regexp.Regexp
}

type wordMatcher struct {
	word string
	re   *regexp.Regexp
}

// RuleTable is an ordered, compiled set of routing rules.
type RuleTable struct {
	rules []compiledRule
}

// DefaultRuleTable returns the built-in routing table.
func DefaultRuleTable() *RuleTable {
	table, err := ParseRuleTable(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("routing: invalid embedded rules: %v", err))
	}
	return table
}

// LoadRuleTable reads and compiles a routing table from a YAML file.
func LoadRuleTable(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	table, err := ParseRuleTable(data)
	if err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return table, nil
}

// ParseRuleTable compiles a routing table from YAML.
func ParseRuleTable(data []byte) (*RuleTable, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("no rules defined")
	}

	table := &RuleTable{rules: make([]compiledRule, 0, len(file.Rules))}
	seen := make(map[string]bool, len(file.Rules))
	for i, rc := range file.Rules {
		if rc.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		if seen[rc.Name] {
			return nil, fmt.Errorf("rule %q: duplicate name", rc.Name)
		}
		seen[rc.Name] = true
		if !rc.Route.Valid() || rc.Route == RouteFallback {
			return nil, fmt.Errorf("rule %q: invalid route %q", rc.Name, rc.Route)
		}
		compiled, err := compileRule(rc)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rc.Name, err)
		}
		table.rules = append(table.rules, compiled)
	}
	return table, nil
}

func compileRule(rc RuleConfig) (compiledRule, error) {
	r := compiledRule{
		name:     rc.Name,
		route:    rc.Route,
		contains: lowerAll(rc.Contains),
		exact:    make(map[string]struct{}, len(rc.Exact)),
	}
	for _, e := range rc.Exact {
		r.exact[normalizeInput(e)] = struct{}{}
	}
	for _, w := range lowerAll(rc.Words) {
		r.words = append(r.words, wordMatcher{word: w, re: WordPattern(w)})
	}
	for _, p := range rc.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return r, fmt.Errorf("pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	if len(r.contains)+len(r.words)+len(r.exact)+len(r.patterns) == 0 {
		return r, fmt.Errorf("no predicates")
	}
	return r, nil
}

// WordPattern returns a regexp matching w as a whole word or phrase, bounded
// by anything that is not a letter or digit.
func WordPattern(w string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\pL\pN])` + regexp.QuoteMeta(w) + `(?:$|[^\pL\pN])`)
}

// Len returns the number of rules.
func (t *RuleTable) Len() int {
	return len(t.rules)
}

// Names returns rule names in evaluation order.
func (t *RuleTable) Names() []string {
	names := make([]string, len(t.rules))
	for i, r := range t.rules {
		names[i] = r.name
	}
	return names
}

// match evaluates the rules against normalized input. The first rule with any
// hit wins; all of that rule's hits are reported.
func (t *RuleTable) match(normalized string) *MatchResult {
	for _, r := range t.rules {
		var keywords []string
		patternHit := false

		if _, ok := r.exact[normalized]; ok {
			keywords = append(keywords, normalized)
		}
		for _, c := range r.contains {
			if strings.Contains(normalized, c) {
				keywords = append(keywords, c)
			}
		}
		for _, w := range r.words {
			if w.re.MatchString(normalized) {
				keywords = append(keywords, w.word)
			}
		}
		for _, p := range r.patterns {
			if p.MatchString(normalized) {
				patternHit = true
				break
			}
		}

		if len(keywords) == 0 && !patternHit {
			continue
		}
		return &MatchResult{
			Rule:       r.name,
			Route:      r.route,
			Keywords:   keywords,
			Confidence: calculateMatchConfidence(patternHit, keywords),
			Matched:    true,
		}
	}
	return &MatchResult{Route: RouteFallback}
}

// calculateMatchConfidence scores a rule hit: 0.5 base, +0.3 for a pattern,
// +0.1 per keyword, capped at 0.95.
func calculateMatchConfidence(patternHit bool, keywords []string) float32 {
	var confidence float32 = 0.5
	if patternHit {
		confidence += 0.3
	}
	confidence += float32(len(keywords)) * 0.1
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
