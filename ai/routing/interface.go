// Package routing classifies chat messages into handler routes.
package routing

import "context"

// Route identifies the handler a message is dispatched to.
type Route string

const (
	// RouteStoryRedirect sends the user to the interactive story creator.
	RouteStoryRedirect Route = "story_redirect"
	// RouteGenreRedirect acknowledges a genre choice and sends the user to the story creator.
	RouteGenreRedirect Route = "genre_redirect"
	RouteStory         Route = "story"
	RouteProfile       Route = "profile"
	RouteCoaching      Route = "coaching"
	RouteFAQ           Route = "faq"
	RouteGreeting      Route = "greeting"
	// RouteFallback means no rule matched; the message goes to the hosted model.
	RouteFallback Route = "fallback"
)

// Valid reports whether r is a known route.
func (r Route) Valid() bool {
	switch r {
	case RouteStoryRedirect, RouteGenreRedirect, RouteStory, RouteProfile,
		RouteCoaching, RouteFAQ, RouteGreeting, RouteFallback:
		return true
	}
	return false
}

// Source tells which layer produced a decision.
type Source string

const (
	SourceCache   Source = "cache"
	SourceRule    Source = "rule"
	SourceDefault Source = "default"
)

// Decision is the result of classifying one message.
type Decision struct {
	Route      Route    `json:"route"`
	Rule       string   `json:"rule,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Confidence float32  `json:"confidence"`
	Source     Source   `json:"source"`
}

// MatchResult represents the result of rule table matching.
type MatchResult struct {
	Rule       string
	Route      Route
	Keywords   []string
	Confidence float32
	Matched    bool
}

// Classifier maps a message to a route.
type Classifier interface {
	Classify(ctx context.Context, input string) Decision
}
