package llm

import (
	"context"
	"strings"
	"sync"
)

// MockService is a scripted Service for tests and offline runs.
// Responses are keyed by a substring of the last user message.
type MockService struct {
	mu              sync.Mutex
	responses       map[string]string
	defaultResponse string
	err             error
	calls           [][]Message
	callStats       *LLMCallStats
}

// NewMockService creates a new MockService instance.
func NewMockService() *MockService {
	return &MockService{
		responses: make(map[string]string),
		callStats: &LLMCallStats{
			PromptTokens:     100,
			CompletionTokens: 50,
			TotalTokens:      150,
		},
		defaultResponse: "Mock response",
	}
}

// WithResponse adds a preset response returned when the last user message contains match.
func (m *MockService) WithResponse(match, output string) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[match] = output
	return m
}

// WithDefaultResponse sets the default response when no preset matches.
func (m *MockService) WithDefaultResponse(output string) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = output
	return m
}

// WithError makes every Chat call fail with err.
func (m *MockService) WithError(err error) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Calls returns the message lists received so far.
func (m *MockService) Calls() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Message, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockService) Provider() string {
	return "mock"
}

func (m *MockService) Chat(_ context.Context, msgs []Message) (string, *LLMCallStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, msgs)

	if m.err != nil {
		return "", nil, m.err
	}

	key := ""
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			key = msgs[i].Content
			break
		}
	}
	for match, response := range m.responses {
		if strings.Contains(key, match) {
			return response, m.callStats, nil
		}
	}
	return m.defaultResponse, m.callStats, nil
}

func (m *MockService) Warmup(context.Context) {}

var _ Service = (*MockService)(nil)
