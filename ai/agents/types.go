// Package agent implements the PlotBuddy handlers and the orchestrator that
// routes messages between them.
package agent

import (
	"context"
	"regexp"

	"github.com/hrygo/plotbuddy/ai/routing"
)

// Agent names, used in Response.Agent and as metrics labels.
const (
	AgentGreeting     = "greeting"
	AgentFAQ          = "faq"
	AgentProfile      = "profile"
	AgentCoaching     = "coaching"
	AgentStory        = "story"
	AgentLLM          = "llm"
	AgentOrchestrator = "orchestrator"
)

// Directives carried in Response.Message.
const (
	MessageRedirectToStoryCreator = "REDIRECT_TO_STORY_CREATOR"
	MessageGenres                 = "GENRES_MESSAGE"
	MessageBrainstorm             = "BRAINSTORM_MESSAGE"
	MessagePricing                = "PRICING_MESSAGE"
	MessageHelp                   = "HELP_MESSAGE"
	MessageBrainstormConversation = "BRAINSTORM_CONVERSATION"
)

// StoryParams is the structured story request.
type StoryParams struct {
	Genre  string
	Mood   string
	Length string
}

// RequestContext carries mode flags and story hints alongside the message.
type RequestContext struct {
	Brainstorm bool
	Advice     bool
	Genre      string
	Mood       string
	Length     string
	Notes      string
	Random     bool
}

// Request is one user message.
type Request struct {
	UserID  string
	Input   string
	Params  *StoryParams // non-nil for structured story requests
	Context RequestContext
}

// Response is a handler reply. Message holds a directive when Success is
// true and a user-facing explanation when it is false.
type Response struct {
	Success bool
	Output  string
	Message string
	Agent   string
	Data    any
}

// Text returns what should be shown to the user.
func (r *Response) Text() string {
	if r.Output != "" {
		return r.Output
	}
	return r.Message
}

// Agent handles a request. Returning a response with Success false, no
// output and no message declines the request so the next handler can try.
type Agent interface {
	Name() string
	Process(ctx context.Context, req *Request) (*Response, error)
}

// Declined reports whether resp passes the request on.
func Declined(resp *Response) bool {
	return resp == nil || (!resp.Success && resp.Output == "" && resp.Message == "")
}

func decline(agent string) *Response {
	return &Response{Agent: agent}
}

// keywordGroup is a named set of whole-word keywords.
type keywordGroup struct {
	name     string
	patterns []*regexp.Regexp
}

func newKeywordGroup(name string, words ...string) keywordGroup {
	g := keywordGroup{name: name}
	for _, w := range words {
		g.patterns = append(g.patterns, routing.WordPattern(w))
	}
	return g
}

func (g keywordGroup) matches(normalized string) bool {
	for _, re := range g.patterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}
