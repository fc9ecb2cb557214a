package agent

import (
	"context"
	"strings"

	"github.com/hrygo/plotbuddy/ai/core/llm"
	"github.com/hrygo/plotbuddy/ai/observability/logging"
)

const plotBuddySystemPrompt = "You are PlotBuddy, a friendly storytelling companion. " +
	"You help people create short stories, brainstorm ideas and learn about the PlotBuddy service. " +
	"Keep answers short and steer the conversation back to storytelling when it drifts."

// LLMAgent forwards the raw message to the hosted model.
type LLMAgent struct {
	llm llm.Service
}

// NewLLMAgent creates the model fallback. llmSvc may be nil, in which case
// every request is declined.
func NewLLMAgent(llmSvc llm.Service) *LLMAgent {
	return &LLMAgent{llm: llmSvc}
}

func (a *LLMAgent) Name() string {
	return AgentLLM
}

// Process returns the model's reply verbatim, or declines when no model is
// configured or the call fails.
func (a *LLMAgent) Process(ctx context.Context, req *Request) (*Response, error) {
	if a.llm == nil {
		return decline(AgentLLM), nil
	}
	content, stats, err := a.llm.Chat(ctx, llm.FormatMessages(plotBuddySystemPrompt, req.Input, nil))
	if err != nil {
		logging.FromContext(ctx).Warn("llm fallback failed", "error", err)
		return decline(AgentLLM), nil
	}
	if strings.TrimSpace(content) == "" {
		return decline(AgentLLM), nil
	}
	return &Response{Success: true, Output: content, Agent: AgentLLM, Data: stats}, nil
}
