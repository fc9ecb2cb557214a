package agent

import (
	"context"

	"github.com/hrygo/plotbuddy/ai/routing"
)

var greetingResponses = map[string]string{
	"hello":          "👋 Hi there! I'm PlotBuddy, your story-crafting companion!",
	"hi":             "✨ Hello! Ready to create some amazing stories together?",
	"hey":            "🌟 Hey! I'm here to help bring your story ideas to life!",
	"good morning":   "🌅 Good morning! Let's start the day with some storytelling!",
	"good afternoon": "☀️ Good afternoon! Ready for a creative adventure?",
	"good evening":   "🌙 Good evening! The perfect time for storytelling!",
	"name":           "I'm PlotBuddy, your AI storytelling assistant! 📚",
	"identity":       "I'm an AI storytelling companion, designed to help you create amazing micro-stories! ✍️",
}

const defaultGreeting = "Hello! I can help you create stories, explore genres, or answer questions about our service! 🎨"

// Checked in order after exact matches.
var greetingGroups = []keywordGroup{
	newKeywordGroup("good morning", "good morning", "morning"),
	newKeywordGroup("good afternoon", "good afternoon", "afternoon"),
	newKeywordGroup("good evening", "good evening", "evening"),
	newKeywordGroup("hello", "hello", "hi", "hey", "greetings"),
	newKeywordGroup("name", "your name", "who are you", "what are you"),
	newKeywordGroup("identity", "what do you do", "tell me about yourself", "what can you do"),
}

// GreetingAgent answers greetings and questions about PlotBuddy itself.
type GreetingAgent struct{}

func NewGreetingAgent() *GreetingAgent {
	return &GreetingAgent{}
}

func (a *GreetingAgent) Name() string {
	return AgentGreeting
}

// Process answers recognized greetings and declines anything else.
func (a *GreetingAgent) Process(_ context.Context, req *Request) (*Response, error) {
	reply, ok := matchGreeting(routing.Normalize(req.Input))
	if !ok {
		return decline(AgentGreeting), nil
	}
	return &Response{Success: true, Output: reply, Agent: AgentGreeting}, nil
}

// Greet always answers, using the default greeting when nothing matches.
func (a *GreetingAgent) Greet(input string) string {
	if reply, ok := matchGreeting(routing.Normalize(input)); ok {
		return reply
	}
	return defaultGreeting
}

func matchGreeting(normalized string) (string, bool) {
	if normalized == "" {
		return "", false
	}
	if reply, ok := greetingResponses[normalized]; ok {
		return reply, true
	}
	for _, g := range greetingGroups {
		if g.matches(normalized) {
			return greetingResponses[g.name], true
		}
	}
	return "", false
}
