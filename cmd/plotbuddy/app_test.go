package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agent "github.com/hrygo/plotbuddy/ai/agents"
	"github.com/hrygo/plotbuddy/ai/core/llm"
	"github.com/hrygo/plotbuddy/internal/profile"
	"github.com/hrygo/plotbuddy/store"
)

func newTestApp(t *testing.T, p *profile.Profile) (*app, *bytes.Buffer) {
	t.Helper()
	if p == nil {
		p = &profile.Profile{Driver: "memory", Format: "text"}
	}
	a, err := newApp(context.Background(), p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.store.Close() })

	var out bytes.Buffer
	a.out = &out
	return a, &out
}

func TestNewApp_WithoutLLM(t *testing.T) {
	a, out := newTestApp(t, nil)
	assert.Nil(t, a.llm)
	assert.Nil(t, a.exporter)

	resp, err := a.send(context.Background(), &agent.Request{UserID: "u1", Input: "hello"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, agent.AgentGreeting, resp.Agent)
	assert.Contains(t, out.String(), resp.Output)
}

func TestNewApp_InvalidFormat(t *testing.T) {
	_, err := newApp(context.Background(), &profile.Profile{Driver: "memory", Format: "pdf"})
	assert.Error(t, err)
}

func TestNewApp_MissingRulesFile(t *testing.T) {
	_, err := newApp(context.Background(), &profile.Profile{
		Driver:    "memory",
		Format:    "text",
		RulesFile: "/nonexistent/rules.yaml",
	})
	assert.Error(t, err)
}

func TestNewLLMService(t *testing.T) {
	svc, err := newLLMService(&profile.Profile{LLMProvider: "gemini"}, nil)
	require.NoError(t, err)
	assert.Nil(t, svc)

	svc, err = newLLMService(&profile.Profile{LLMProvider: "ollama", LLMModel: "llama3.1", LLMRateLimit: 1, LLMBurst: 1}, nil)
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, "ollama", svc.Provider())
}

func TestApp_StoryRendering(t *testing.T) {
	a, out := newTestApp(t, &profile.Profile{Driver: "memory", Format: "markdown"})

	resp, err := a.send(context.Background(), &agent.Request{
		UserID: "u1",
		Params: &agent.StoryParams{Genre: "Horror", Mood: "dark", Length: "short"},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(out.String(), "```text\n"))

	stories, err := a.store.ListStories(context.Background(), &store.FindStory{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "Horror", stories[0].Genre)
}

func TestApp_RunWithMetrics(t *testing.T) {
	a, _ := newTestApp(t, &profile.Profile{Driver: "memory", Format: "text", MetricsAddr: "127.0.0.1:0"})
	require.NotNil(t, a.exporter)

	called := false
	err := a.run(context.Background(), func(ctx context.Context) error {
		called = true
		_, err := a.orchestrator.Process(ctx, &agent.Request{UserID: "u1", Input: "hi"})
		return err
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestREPL(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "greeting then exit",
			input:  "hello\nexit\n",
			expect: []string{"PlotBuddy is ready", "Hello! I can help you create stories"},
		},
		{
			name:   "story creator with defaults",
			input:  "create a new story\n\ndark\n\nquit\n",
			expect: []string{"Genre options:", "Mood [mysterious]: ", "[Micro Mystery – Dark]"},
		},
		{
			name:   "genre choice carries over",
			input:  "fantasy\n\nepic\nshort\n",
			expect: []string{"Genre [Fantasy]: ", "[Short Fantasy – Epic]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := newTestApp(t, nil)
			err := newREPL(a, strings.NewReader(tt.input)).run(context.Background())
			require.NoError(t, err)
			for _, want := range tt.expect {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestREPL_Cancelled(t *testing.T) {
	a, _ := newTestApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w := io.Pipe()
	defer w.Close()
	assert.NoError(t, newREPL(a, r).run(ctx))
}

// warmupRecorder is a model that only reports warmups.
type warmupRecorder struct {
	*llm.MockService
	warmed chan struct{}
}

func (w *warmupRecorder) Warmup(context.Context) {
	close(w.warmed)
}

func TestREPL_WarmsUpModel(t *testing.T) {
	a, _ := newTestApp(t, nil)
	rec := &warmupRecorder{MockService: llm.NewMockService(), warmed: make(chan struct{})}
	a.llm = rec

	require.NoError(t, newREPL(a, strings.NewReader("exit\n")).run(context.Background()))
	select {
	case <-rec.warmed:
	case <-time.After(time.Second):
		t.Fatal("model was not warmed up")
	}
}

func TestApp_FAQ(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"topic", "how much does a story cost", "💰 Story Pricing:"},
		{"contact", "how do I contact support", "support@plotbuddy.ai"},
		{"empty shows menu", "", "I can help you with:"},
		{"unknown without model shows menu", "is there a mobile app", "I can help you with:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out := newTestApp(t, nil)
			resp, err := a.faq(context.Background(), tt.question)
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, agent.AgentFAQ, resp.Agent)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestApp_FAQUsesModel(t *testing.T) {
	a, out := newTestApp(t, nil)
	a.llm = llm.NewMockService().WithDefaultResponse("Not yet, but it is on the way.")

	_, err := a.faq(context.Background(), "is there a mobile app")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Not yet, but it is on the way.")
}
