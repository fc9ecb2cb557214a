package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hrygo/plotbuddy/ai/core/llm"
	"github.com/hrygo/plotbuddy/ai/routing"
)

type faqTopic struct {
	name     string
	answer   string
	keywords keywordGroup
}

// Matched in order: topic names first, then keywords.
var faqTopics = []faqTopic{
	{
		name:     "store hours",
		answer:   "🕒 We're open:\nMon-Fri: 9am-8pm\nSat: 10am-6pm\nSun: 11am-5pm",
		keywords: newKeywordGroup("store hours", "hours", "open", "closing", "time", "schedule"),
	},
	{
		name:     "pricing",
		answer:   "💰 Story Pricing:\n- Single story: $4.99\n- Story pack (5): $19.99\n- Story pack (10): $34.99",
		keywords: newKeywordGroup("pricing", "cost", "price", "pay", "charge", "fee"),
	},
	{
		name:     "genres",
		answer:   "📚 Available Genres:\n- Mystery & Thriller\n- Science Fiction\n- Fantasy\n- Romance\n- Adventure",
		keywords: newKeywordGroup("genres", "genre", "type", "category", "story type", "kind"),
	},
	{
		name:     "how it works",
		answer:   "✨ How PlotBuddy Works:\n1. Choose your genre\n2. Set the mood\n3. Pick story length\n4. Watch your story unfold!",
		keywords: newKeywordGroup("how it works", "how", "work", "process", "steps", "guide"),
	},
	{
		name:     "subscription",
		answer:   "🌟 Subscription Options:\n- Monthly (5 stories): $17.99\n- Quarterly (20 stories): $67.99\n- Annual (100 stories): $199.99",
		keywords: newKeywordGroup("subscription", "subscribe", "plan", "membership", "monthly", "yearly"),
	},
	{
		name:     "contact",
		answer:   "📧 Need a hand? Write to support@plotbuddy.ai and our team will get back to you within one business day.",
		keywords: newKeywordGroup("contact", "contact", "support", "email"),
	},
}

const faqMenu = "I can help you with:\n" +
	"- Store hours and schedule 🕒\n" +
	"- Story pricing and packages 💰\n" +
	"- Available genres 📚\n" +
	"- How PlotBuddy works ✨\n" +
	"- Subscription options 🌟\n\n" +
	"What would you like to know about?"

// Requests for the menu itself.
var faqMenuRequest = newKeywordGroup("menu", "help", "commands", "faq", "instruction", "instructions")

const faqSystemPrompt = "You are PlotBuddy's help desk. PlotBuddy creates short stories from a genre, a mood and a length. " +
	"Answer questions about the service briefly and in a friendly tone. " +
	"If you do not know an answer, suggest contacting support@plotbuddy.ai."

// FAQAgent answers questions about the service from a fixed topic table.
type FAQAgent struct {
	llm llm.Service
}

// NewFAQAgent creates the FAQ handler. llmSvc may be nil.
func NewFAQAgent(llmSvc llm.Service) *FAQAgent {
	return &FAQAgent{llm: llmSvc}
}

func (a *FAQAgent) Name() string {
	return AgentFAQ
}

// Process answers a matching topic, returns the menu for empty or help
// requests, and declines everything else.
func (a *FAQAgent) Process(_ context.Context, req *Request) (*Response, error) {
	normalized := routing.Normalize(req.Input)
	if normalized == "" {
		return a.reply(faqMenu), nil
	}
	if topic := findTopic(normalized); topic != nil {
		return a.reply(topic.answer), nil
	}
	if faqMenuRequest.matches(normalized) {
		return a.reply(faqMenu), nil
	}
	return decline(AgentFAQ), nil
}

// Answer always replies: a matching topic, else the model's answer, else
// the menu.
func (a *FAQAgent) Answer(ctx context.Context, req *Request) (*Response, error) {
	resp, err := a.Process(ctx, req)
	if err != nil || !Declined(resp) {
		return resp, err
	}
	if a.llm != nil {
		content, _, err := a.llm.Chat(ctx, llm.FormatMessages(faqSystemPrompt, req.Input, nil))
		if err == nil && strings.TrimSpace(content) != "" {
			return a.reply(content), nil
		}
		if err != nil {
			slog.Warn("faq llm answer failed", "error", err)
		}
	}
	return a.reply(faqMenu), nil
}

func (a *FAQAgent) reply(text string) *Response {
	return &Response{Success: true, Output: text, Agent: AgentFAQ}
}

func findTopic(normalized string) *faqTopic {
	if normalized == "" {
		return nil
	}
	for i := range faqTopics {
		if strings.Contains(normalized, faqTopics[i].name) {
			return &faqTopics[i]
		}
	}
	for i := range faqTopics {
		if faqTopics[i].keywords.matches(normalized) {
			return &faqTopics[i]
		}
	}
	return nil
}

func faqGenresAnswer() string {
	for _, t := range faqTopics {
		if t.name == "genres" {
			return t.answer
		}
	}
	return faqMenu
}
