package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/plotbuddy/ai/filter"
	"github.com/hrygo/plotbuddy/ai/internal/strutil"
)

// Service implements the classifier: cache -> rule table -> fallback.
type Service struct {
	ruleMatcher *RuleMatcher
	cache       *RouterCache
}

// Config contains the configuration for the router service.
type Config struct {
	EnableCache bool          // Enable routing result cache (default: true)
	CacheSize   int           // default: 500
	CacheTTL    time.Duration // default: 5min
	Rules       *RuleTable    // nil selects the built-in table
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableCache: true,
		CacheSize:   500,
		CacheTTL:    5 * time.Minute,
	}
}

// NewService creates a new router service.
func NewService(cfg Config) *Service {
	svc := &Service{
		ruleMatcher: NewRuleMatcher(cfg.Rules),
	}
	if cfg.EnableCache {
		svc.cache = NewRouterCache(CacheConfig{
			Capacity: cfg.CacheSize,
			TTL:      cfg.CacheTTL,
		})
	}
	return svc
}

// Classify returns the route for input. Rules are evaluated in table order;
// an unmatched or empty message yields RouteFallback.
func (s *Service) Classify(ctx context.Context, input string) Decision {
	start := time.Now()
	normalized := normalizeInput(input)

	// Layer 0: cache lookup
	if s.cache != nil && normalized != "" {
		if d, found := s.cache.Get(normalized); found {
			d.Source = SourceCache
			return d
		}
	}

	// Layer 1: rule table
	result := s.ruleMatcher.Match(normalized)
	if result.Matched {
		d := Decision{
			Route:      result.Route,
			Rule:       result.Rule,
			Keywords:   result.Keywords,
			Confidence: result.Confidence,
			Source:     SourceRule,
		}
		if s.cache != nil {
			s.cache.Set(normalized, d)
		}
		slog.Debug("intent classified by rule matcher",
			"input", truncate(input, 50),
			"route", d.Route,
			"rule", d.Rule,
			"confidence", d.Confidence,
			"user_id", UserIDFromContext(ctx),
			"latency_ms", time.Since(start).Milliseconds())
		return d
	}

	// Layer 2: no match
	slog.Debug("no route match found, using fallback",
		"input", truncate(input, 50),
		"latency_ms", time.Since(start).Milliseconds())
	return Decision{Route: RouteFallback, Source: SourceDefault}
}

// SetRules replaces the rule table and drops cached decisions made with the old one.
func (s *Service) SetRules(table *RuleTable) {
	s.ruleMatcher.SetTable(table)
	if s.cache != nil {
		s.cache.Clear()
	}
}

// CacheStats returns routing cache statistics. The zero value is returned
// when caching is disabled.
func (s *Service) CacheStats() Stats {
	if s.cache == nil {
		return Stats{}
	}
	return s.cache.GetStats()
}

// userIDContextKey is the context key for user ID.
type userIDContextKey struct{}

// WithUserID returns a context with user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext extracts the user ID from context.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDContextKey{}).(string); ok {
		return v
	}
	return ""
}

// truncate shortens a message for logging after masking personal data.
func truncate(s string, maxLen int) string {
	return strutil.Truncate(filter.Redact(s), maxLen)
}

var _ Classifier = (*Service)(nil)
