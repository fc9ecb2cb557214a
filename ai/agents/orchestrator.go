package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/plotbuddy/ai/core/llm"
	"github.com/hrygo/plotbuddy/ai/filter"
	"github.com/hrygo/plotbuddy/ai/internal/strutil"
	"github.com/hrygo/plotbuddy/ai/metrics"
	"github.com/hrygo/plotbuddy/ai/observability/logging"
	"github.com/hrygo/plotbuddy/ai/routing"
	"github.com/hrygo/plotbuddy/store"
)

const (
	emptyInputMessage = "I didn't receive any input. What would you like to talk about?"
	fallbackMessage   = "I'm here to help! Could you please rephrase your question or let me know what kind of story you'd like to create?"

	genreRedirectTemplate = "Fantastic choice! 🌟 '%s' stories are full of adventure and imagination. " +
		"Let's get started—I'm sending you to the story creator!"

	brainstormFallback = "Let's brainstorm together! Tell me a theme, genre, or idea, and I'll help you get started."
	pricingFallback    = "PlotBuddy offers a free trial and affordable subscription options. " +
		"Visit the pricing page or ask me for details about our plans!"
	helpFallback = "I'm here to help! You can ask me to create a story, brainstorm ideas, " +
		"or learn about genres and features. What would you like to do?"
)

// Recorder receives routing and handler observations.
type Recorder interface {
	RecordRoute(route, source string)
	RecordHandler(agent, status string, latency time.Duration)
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
	TrackActive() func()
}

type nopRecorder struct{}

func (nopRecorder) RecordRoute(string, string)                 {}
func (nopRecorder) RecordHandler(string, string, time.Duration) {}
func (nopRecorder) RecordCacheHit(string)                       {}
func (nopRecorder) RecordCacheMiss(string)                      {}
func (nopRecorder) TrackActive() func()                         { return func() {} }

// Options configures optional orchestrator collaborators.
type Options struct {
	LLM     llm.Service // nil disables model calls
	Metrics Recorder    // nil disables metrics
}

// Orchestrator classifies each message and dispatches it to a handler,
// falling back through the FAQ handler and the hosted model.
type Orchestrator struct {
	router  *routing.Service
	store   *store.Store
	metrics Recorder

	greeting *GreetingAgent
	faq      *FAQAgent
	profile  *ProfileAgent
	coaching *CoachingAgent
	story    *StoryAgent
	llm      *LLMAgent
}

// NewOrchestrator wires the handlers. router and st are required.
func NewOrchestrator(router *routing.Service, st *store.Store, opts Options) *Orchestrator {
	if router == nil {
		panic("routing.Service is required for Orchestrator")
	}
	if st == nil {
		panic("store.Store is required for Orchestrator")
	}
	rec := opts.Metrics
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Orchestrator{
		router:   router,
		store:    st,
		metrics:  rec,
		greeting: NewGreetingAgent(),
		faq:      NewFAQAgent(opts.LLM),
		profile:  NewProfileAgent(st),
		coaching: NewCoachingAgent(st, opts.LLM),
		story:    NewStoryAgent(st, opts.LLM),
		llm:      NewLLMAgent(opts.LLM),
	}
}

func (o *Orchestrator) Name() string {
	return AgentOrchestrator
}

// Process answers one message. Handler errors never reach the caller; they
// are logged and replaced with a topic-specific fallback.
func (o *Orchestrator) Process(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	defer o.metrics.TrackActive()()

	ctx = logging.WithRequest(ctx, req.UserID)
	ctx = routing.WithUserID(ctx, req.UserID)
	logger := logging.FromContext(ctx)
	start := time.Now()

	resp, route, err := o.dispatch(ctx, req)
	if err != nil {
		logger.Error("handler failed", "route", route, "error", err)
		resp = errorFallback(req.Input)
	}

	logger.Info("message processed",
		"input", strutil.Truncate(filter.Redact(req.Input), 50),
		"route", route,
		"agent", resp.Agent,
		"success", resp.Success,
		"latency_ms", time.Since(start).Milliseconds())
	return resp, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, req *Request) (*Response, routing.Route, error) {
	switch {
	case req.Params != nil, req.Context.Random, strings.Contains(req.Input, "|"):
		resp, err := o.invoke(ctx, o.story, req)
		return resp, routing.RouteStory, err
	case req.Context.Brainstorm, req.Context.Advice:
		resp, err := o.invoke(ctx, o.coaching, req)
		return resp, routing.RouteCoaching, err
	case strings.TrimSpace(req.Input) == "":
		return &Response{Output: emptyInputMessage, Agent: AgentOrchestrator}, "", nil
	}

	decision := o.router.Classify(ctx, req.Input)
	o.recordDecision(decision)

	route := decision.Route

	var handler Agent
	switch route {
	case routing.RouteStoryRedirect:
		return &Response{
			Success: true,
			Output:  StoryFormatGuide,
			Message: MessageRedirectToStoryCreator,
			Agent:   AgentOrchestrator,
		}, route, nil
	case routing.RouteGenreRedirect:
		return o.genreRedirect(ctx, req, decision), route, nil
	case routing.RouteProfile:
		handler = o.profile
	case routing.RouteCoaching:
		handler = o.coaching
	case routing.RouteFAQ:
		handler = o.faq
	case routing.RouteGreeting:
		handler = o.greeting
	case routing.RouteStory:
		handler = o.story
	}

	if handler != nil {
		resp, err := o.invoke(ctx, handler, req)
		if err != nil {
			return nil, route, err
		}
		if !Declined(resp) {
			return resp, route, nil
		}
	}

	if handler != Agent(o.faq) {
		resp, err := o.invoke(ctx, o.faq, req)
		if err != nil {
			return nil, route, err
		}
		if !Declined(resp) {
			return resp, route, nil
		}
	}

	resp, err := o.invoke(ctx, o.llm, req)
	if err != nil {
		return nil, route, err
	}
	if !Declined(resp) {
		return resp, route, nil
	}

	return &Response{Message: fallbackMessage, Agent: AgentOrchestrator}, route, nil
}

func (o *Orchestrator) invoke(ctx context.Context, a Agent, req *Request) (*Response, error) {
	start := time.Now()
	resp, err := a.Process(ctx, req)

	status := metrics.StatusSuccess
	switch {
	case err != nil:
		status = metrics.StatusError
	case Declined(resp):
		status = metrics.StatusDeclined
	}
	o.metrics.RecordHandler(a.Name(), status, time.Since(start))
	logging.FromContext(ctx).Debug("handler finished", "agent", a.Name(), "status", status)
	return resp, err
}

func (o *Orchestrator) recordDecision(d routing.Decision) {
	o.metrics.RecordRoute(string(d.Route), string(d.Source))
	if d.Source == routing.SourceCache {
		o.metrics.RecordCacheHit("route")
	} else {
		o.metrics.RecordCacheMiss("route")
	}
}

// genreRedirect confirms the genre the user picked and remembers it for the
// story creator.
func (o *Orchestrator) genreRedirect(ctx context.Context, req *Request, d routing.Decision) *Response {
	genre := ""
	if len(d.Keywords) > 0 {
		genre = d.Keywords[0]
	}
	resp := &Response{
		Success: true,
		Output:  fmt.Sprintf(genreRedirectTemplate, strutil.Title(genre)),
		Message: MessageRedirectToStoryCreator,
		Agent:   AgentOrchestrator,
	}

	// Only genres the story creator accepts are carried over.
	canonical, ok := CanonicalGenre(genre)
	if !ok {
		return resp
	}
	resp.Output = fmt.Sprintf(genreRedirectTemplate, canonical)
	resp.Data = canonical
	if err := o.rememberGenre(ctx, req.UserID, canonical); err != nil {
		logging.FromContext(ctx).Warn("failed to remember genre", "error", err)
	}
	return resp
}

func (o *Orchestrator) rememberGenre(ctx context.Context, userID, genre string) error {
	history, err := o.store.GetInteractionHistory(ctx, userID)
	if err != nil {
		return err
	}
	history.StoryGenre = genre
	_, err = o.store.UpsertInteractionHistory(ctx, history)
	return err
}

// errorFallback picks a static reply from the topic of the failed message.
func errorFallback(input string) *Response {
	text := strings.ToLower(input)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("genre"):
		return &Response{Success: true, Output: faqGenresAnswer(), Message: MessageGenres, Agent: AgentOrchestrator}
	case containsAny("brainstorm", "idea"):
		return &Response{Success: true, Output: brainstormFallback, Message: MessageBrainstorm, Agent: AgentOrchestrator}
	case containsAny("price", "pricing", "cost", "subscription"):
		return &Response{Success: true, Output: pricingFallback, Message: MessagePricing, Agent: AgentOrchestrator}
	case containsAny("help"):
		return &Response{Success: true, Output: helpFallback, Message: MessageHelp, Agent: AgentOrchestrator}
	default:
		return &Response{Message: fallbackMessage, Agent: AgentOrchestrator}
	}
}
