// Package filter masks personal data in user messages before they are
// written to logs.
package filter

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// FilterType identifies a kind of sensitive data.
type FilterType int

const (
	// APIKey filters provider keys such as "sk-..." and "AIza...".
	APIKey FilterType = iota

	// Email filters email addresses.
	Email

	// IP filters IPv4 addresses.
	IP

	// CardNumber filters payment card numbers that pass the Luhn check.
	CardNumber

	// Phone filters phone numbers with 9 to 15 digits.
	Phone
)

var filterTypeNames = map[FilterType]string{
	APIKey:     "api_key",
	Email:      "email",
	IP:         "ip",
	CardNumber: "card_number",
	Phone:      "phone",
}

func (t FilterType) String() string {
	if name, ok := filterTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Patterns are listed in precedence order; a later match overlapping an
// earlier one is dropped.
var patterns = map[FilterType]*regexp.Regexp{
	APIKey:     regexp.MustCompile(`\b(?:sk-|AIza)[A-Za-z0-9_-]{16,}`),
	Email:      regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	IP:         regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d\d?)\.){3}(?:25[0-5]|2[0-4]\d|1?\d\d?)\b`),
	CardNumber: regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`),
	Phone:      regexp.MustCompile(`\+?\d[\d .()-]{7,}\d`),
}

// FilterConfig configures the sensitive information filter.
type FilterConfig struct {
	// Enabled filter types, in precedence order.
	Enabled []FilterType

	// MaskChar is the character used for masking.
	MaskChar rune

	// KeepFirstN keeps first N characters unmasked.
	KeepFirstN int

	// KeepLastN keeps last N characters unmasked.
	KeepLastN int
}

// DefaultConfig returns default filter configuration.
func DefaultConfig() FilterConfig {
	return FilterConfig{
		Enabled:    []FilterType{APIKey, Email, IP, CardNumber, Phone},
		MaskChar:   '*',
		KeepFirstN: 2,
		KeepLastN:  2,
	}
}

// Match is one piece of sensitive data found in a text.
type Match struct {
	Type     FilterType
	Start    int
	End      int
	Original string
	Replaced string
}

// Filter finds and masks sensitive data. It is safe for concurrent use.
type Filter struct {
	config FilterConfig
}

// NewFilter creates a filter. Unknown types in cfg.Enabled are ignored.
func NewFilter(cfg FilterConfig) *Filter {
	if cfg.MaskChar == 0 {
		cfg.MaskChar = '*'
	}
	return &Filter{config: cfg}
}

var defaultFilter = sync.OnceValue(func() *Filter {
	return NewFilter(DefaultConfig())
})

// DefaultFilter returns the shared filter built from DefaultConfig.
func DefaultFilter() *Filter {
	return defaultFilter()
}

// Redact masks sensitive data in text with the default filter.
func Redact(text string) string {
	return defaultFilter().FilterText(text)
}

// FilterText returns text with every match masked.
func (f *Filter) FilterText(text string) string {
	matches := f.FindMatches(text)
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, m := range matches {
		sb.WriteString(text[last:m.Start])
		sb.WriteString(m.Replaced)
		last = m.End
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// FindMatches returns non-overlapping matches ordered by position.
func (f *Filter) FindMatches(text string) []Match {
	var matches []Match
	overlaps := func(start, end int) bool {
		for _, m := range matches {
			if start < m.End && m.Start < end {
				return true
			}
		}
		return false
	}

	for _, ft := range f.config.Enabled {
		re, ok := patterns[ft]
		if !ok {
			continue
		}
		for _, idx := range re.FindAllStringIndex(text, -1) {
			original := text[idx[0]:idx[1]]
			if !valid(ft, original) || overlaps(idx[0], idx[1]) {
				continue
			}
			matches = append(matches, Match{
				Type:     ft,
				Start:    idx[0],
				End:      idx[1],
				Original: original,
				Replaced: f.mask(original, ft),
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

// Contains reports whether text holds any sensitive data.
func (f *Filter) Contains(text string) bool {
	return len(f.FindMatches(text)) > 0
}

func valid(ft FilterType, s string) bool {
	switch ft {
	case CardNumber:
		return ValidateCardNumber(s)
	case Phone:
		n := countDigits(s)
		return n >= 9 && n <= 15
	default:
		return true
	}
}

func (f *Filter) mask(s string, ft FilterType) string {
	if ft == Email {
		return f.maskEmail(s)
	}
	return maskRunes(s, f.config.KeepFirstN, f.config.KeepLastN, f.config.MaskChar)
}

// maskRunes masks the middle of s. Values too short to keep both ends are
// masked entirely.
func maskRunes(s string, keepFirst, keepLast int, maskChar rune) string {
	runes := []rune(s)
	if len(runes) <= keepFirst+keepLast+2 {
		keepFirst, keepLast = 0, 0
	}
	for i := keepFirst; i < len(runes)-keepLast; i++ {
		if runes[i] != ' ' && runes[i] != '-' && runes[i] != '.' {
			runes[i] = maskChar
		}
	}
	return string(runes)
}

// maskEmail keeps the start of the local part and the top-level domain.
func (f *Filter) maskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	dot := strings.LastIndexByte(email, '.')
	local := []rune(email[:at])
	for i := min(f.config.KeepFirstN, len(local)-1); i < len(local); i++ {
		local[i] = f.config.MaskChar
	}
	domain := strings.Repeat(string(f.config.MaskChar), len([]rune(email[at+1:dot])))
	return string(local) + "@" + domain + email[dot:]
}

// ValidateCardNumber reports whether the digits in s pass the Luhn check.
func ValidateCardNumber(s string) bool {
	sum, n := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c == ' ' || c == '-' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if n%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		n++
	}
	return n >= 13 && n <= 19 && sum%10 == 0
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}
