package routing

import (
	"strings"
	"sync"
	"unicode"
)

// RuleMatcher implements the rule layer: ordered keyword and regex matching.
type RuleMatcher struct {
	mu    sync.RWMutex
	table *RuleTable
}

// NewRuleMatcher creates a rule matcher over table. A nil table selects the
// built-in rules.
func NewRuleMatcher(table *RuleTable) *RuleMatcher {
	if table == nil {
		table = DefaultRuleTable()
	}
	return &RuleMatcher{table: table}
}

// SetTable swaps the rule table at runtime.
func (m *RuleMatcher) SetTable(table *RuleTable) {
	if table == nil {
		return
	}
	m.mu.Lock()
	m.table = table
	m.mu.Unlock()
}

// Match normalizes input and returns the first matching rule.
func (m *RuleMatcher) Match(input string) *MatchResult {
	normalized := normalizeInput(input)
	if normalized == "" {
		return &MatchResult{Route: RouteFallback}
	}

	m.mu.RLock()
	table := m.table
	m.mu.RUnlock()

	return table.match(normalized)
}

// Normalize applies the router's message normalization. Handlers use it so
// their keyword tables see the same text the rule table does.
func Normalize(input string) string {
	return normalizeInput(input)
}

// normalizeInput lowercases, trims trailing sentence punctuation and
// collapses runs of whitespace to a single space.
func normalizeInput(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	// Quick ASCII-only path (most common for chat input)
	isASCII := true
	for i := 0; i < len(input); i++ {
		if input[i] > unicode.MaxASCII {
			isASCII = false
			break
		}
	}
	if isASCII {
		input = strings.ToLower(input)
	} else {
		input = strings.Map(unicode.ToLower, input)
	}

	input = strings.Join(strings.Fields(input), " ")
	return strings.TrimRight(input, "?!.。？！ ")
}
