package llm

import (
	"context"
	"time"
)

// CallRecorder receives one observation per LLM call.
type CallRecorder interface {
	RecordLLMCall(provider string, latency time.Duration, promptTokens, completionTokens int, err error)
}

type instrumentedService struct {
	next     Service
	recorder CallRecorder
}

// NewInstrumentedService reports every Chat call on next to recorder.
// A nil recorder returns next unchanged.
func NewInstrumentedService(next Service, recorder CallRecorder) Service {
	if recorder == nil {
		return next
	}
	return &instrumentedService{next: next, recorder: recorder}
}

func (s *instrumentedService) Chat(ctx context.Context, messages []Message) (string, *LLMCallStats, error) {
	start := time.Now()
	content, stats, err := s.next.Chat(ctx, messages)

	var prompt, completion int
	if stats != nil {
		prompt, completion = stats.PromptTokens, stats.CompletionTokens
	}
	s.recorder.RecordLLMCall(s.next.Provider(), time.Since(start), prompt, completion, err)
	return content, stats, err
}

func (s *instrumentedService) Warmup(ctx context.Context) {
	s.next.Warmup(ctx)
}

func (s *instrumentedService) Provider() string {
	return s.next.Provider()
}
