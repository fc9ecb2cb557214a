package agent

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/plotbuddy/ai/core/llm"
	"github.com/hrygo/plotbuddy/ai/metrics"
	"github.com/hrygo/plotbuddy/store"
)

func newTestOrchestrator(t *testing.T, llmSvc llm.Service) (*Orchestrator, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	return NewOrchestrator(newTestRouter(), st, Options{LLM: llmSvc}), st
}

func TestOrchestrator_Routes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		agent   string
		success bool
		message string
		prefix  string
	}{
		{"empty", "   ", AgentOrchestrator, false, "", emptyInputMessage},
		{"story creation", "I want to create story", AgentOrchestrator, true, MessageRedirectToStoryCreator, StoryFormatGuide},
		{"exact story", "story", AgentOrchestrator, true, MessageRedirectToStoryCreator, StoryFormatGuide},
		{"genre", "I love fantasy", AgentOrchestrator, true, MessageRedirectToStoryCreator,
			"Fantastic choice! 🌟 'Fantasy' stories are full of adventure and imagination. Let's get started—I'm sending you to the story creator!"},
		{"hyphenated genre", "sci-fi please", AgentOrchestrator, true, MessageRedirectToStoryCreator, "Fantastic choice! 🌟 'Sci-Fi' stories"},
		{"profile", "show my profile", AgentProfile, true, "", "📊 Profile Overview:"},
		{"coaching", "can we brainstorm?", AgentCoaching, true, MessageBrainstormConversation, "💡"},
		{"faq", "How much does it cost?", AgentFAQ, true, "", "💰 Story Pricing:"},
		{"faq help", "help", AgentFAQ, true, "", "I can help you with:"},
		{"greeting", "hello", AgentGreeting, true, "", "👋 Hi there!"},
		{"pipe form", "Mystery | dark | micro", AgentStory, true, "", "[Micro Mystery – Dark]"},
		{"story topic", "Tell me a story about a lighthouse keeper", AgentStory, true, "", "[Short Fantasy – Mysterious]"},
		{"fallback retries faq", "when do you close, what time", AgentFAQ, true, "", "🕒 We're open:"},
		{"final fallback", "What's the weather like in Paris?", AgentOrchestrator, false, fallbackMessage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := newTestOrchestrator(t, nil)

			resp, err := o.Process(context.Background(), &Request{UserID: "user", Input: tt.input})
			require.NoError(t, err)
			assert.Equal(t, tt.success, resp.Success)
			assert.Equal(t, tt.agent, resp.Agent)
			assert.Equal(t, tt.message, resp.Message)
			assert.True(t, strings.HasPrefix(resp.Output, tt.prefix), "output %q", resp.Output)
		})
	}
}

func TestOrchestrator_LLMFallback(t *testing.T) {
	mock := llm.NewMockService().WithDefaultResponse("Paris is lovely this time of year.")
	o, _ := newTestOrchestrator(t, mock)

	resp, err := o.Process(context.Background(), &Request{UserID: "u", Input: "What's the weather like in Paris?"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, AgentLLM, resp.Agent)
	assert.Equal(t, "Paris is lovely this time of year.", resp.Output)
}

func TestOrchestrator_GenreRemembered(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockService().WithDefaultResponse("Paris.")
	o, st := newTestOrchestrator(t, mock)

	resp, err := o.Process(ctx, &Request{UserID: "u", Input: "Horror!"})
	require.NoError(t, err)
	assert.Equal(t, "Horror", resp.Data)

	h, err := st.GetInteractionHistory(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "Horror", h.StoryGenre)

	// Unmatched small talk still reaches the model and spends no credits.
	for _, input := range []string{"What's the capital of France?", "ok thanks", "cool", "bye"} {
		resp, err = o.Process(ctx, &Request{UserID: "u", Input: input})
		require.NoError(t, err)
		assert.Equal(t, AgentLLM, resp.Agent, "input %q", input)
	}
	profile, err := st.GetUserProfile(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int32(2), profile.StoriesRemaining)

	// A story request picks the remembered genre up.
	resp, err = o.Process(ctx, &Request{UserID: "u", Input: "Tell me a story about a lighthouse keeper"})
	require.NoError(t, err)
	assert.Equal(t, AgentStory, resp.Agent)
	assert.True(t, strings.HasPrefix(resp.Output, "[Short Horror – Mysterious]"), "output %q", resp.Output)
}

func TestOrchestrator_GenreRedirectText(t *testing.T) {
	tests := []struct {
		input   string
		display string
		data    any
	}{
		{"scifi", "Sci-Fi", "Sci-Fi"},
		{"I love mystery", "Mystery", "Mystery"},
		{"cyberpunk", "Cyberpunk", nil},
		{"a good thriller", "Thriller", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ctx := context.Background()
			o, st := newTestOrchestrator(t, nil)

			resp, err := o.Process(ctx, &Request{UserID: "u", Input: tt.input})
			require.NoError(t, err)
			assert.Equal(t, MessageRedirectToStoryCreator, resp.Message)
			assert.Contains(t, resp.Output, "'"+tt.display+"'")
			assert.Equal(t, tt.data, resp.Data)

			h, err := st.GetInteractionHistory(ctx, "u")
			require.NoError(t, err)
			if tt.data == nil {
				assert.Empty(t, h.StoryGenre)
			} else {
				assert.Equal(t, tt.data, h.StoryGenre)
			}
		})
	}
}

func TestOrchestrator_StructuredAndModes(t *testing.T) {
	ctx := context.Background()
	o, _ := newTestOrchestrator(t, nil)

	resp, err := o.Process(ctx, &Request{UserID: "u", Params: &StoryParams{Genre: "Mystery", Mood: "suspenseful", Length: "micro"}})
	require.NoError(t, err)
	assert.Equal(t, "[Micro Mystery – Suspenseful]\n\n"+templateStory+"\n\n✨ The End ✨", resp.Output)

	resp, err = o.Process(ctx, &Request{UserID: "u", Context: RequestContext{Random: true}})
	require.NoError(t, err)
	assert.Equal(t, AgentStory, resp.Agent)
	assert.True(t, resp.Success)

	resp, err = o.Process(ctx, &Request{UserID: "u", Context: RequestContext{Advice: true, Genre: "Mystery"}})
	require.NoError(t, err)
	assert.Equal(t, AgentCoaching, resp.Agent)
	assert.Empty(t, resp.Message)

	// Credits ran out after two stories.
	resp, err = o.Process(ctx, &Request{UserID: "u", Input: "fantasy | dark | short"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, outOfCreditsMessage, resp.Message)
}

func TestOrchestrator_ErrorFallbacks(t *testing.T) {
	tests := []struct {
		input   string
		success bool
		message string
		output  string
	}{
		{"any genre ideas?", true, MessageGenres, faqGenresAnswer()},
		{"brainstorm with me", true, MessageBrainstorm, brainstormFallback},
		{"I need advice on pricing", true, MessagePricing, pricingFallback},
		{"tips please, help", true, MessageHelp, helpFallback},
		{"any tips", false, fallbackMessage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			o := NewOrchestrator(newTestRouter(), newBrokenStore(t), Options{})
			resp, err := o.Process(context.Background(), &Request{UserID: "u", Input: tt.input})
			require.NoError(t, err)
			assert.Equal(t, tt.success, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, tt.output, resp.Output)
		})
	}
}

func TestOrchestrator_Metrics(t *testing.T) {
	rec := newFakeRecorder()
	o := NewOrchestrator(newTestRouter(), newTestStore(t), Options{Metrics: rec})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := o.Process(ctx, &Request{UserID: "u", Input: "hello"})
		require.NoError(t, err)
	}
	_, err := o.Process(ctx, &Request{UserID: "u", Input: "What's the weather like in Paris?"})
	require.NoError(t, err)

	assert.Equal(t, []routeRecord{
		{"greeting", "rule"},
		{"greeting", "cache"},
		{"fallback", "default"},
	}, rec.routes)
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 2, rec.misses)
	assert.Equal(t, []string{metrics.StatusSuccess, metrics.StatusSuccess}, rec.handlers[AgentGreeting])
	assert.Equal(t, []string{metrics.StatusDeclined}, rec.handlers[AgentFAQ])
	assert.Equal(t, []string{metrics.StatusDeclined}, rec.handlers[AgentLLM])
	assert.Equal(t, 0, rec.active)
	assert.Equal(t, 1, rec.peak)
}

func TestOrchestrator_PrometheusExporter(t *testing.T) {
	exporter := metrics.NewPrometheusExporter(metrics.DefaultConfig())
	o := NewOrchestrator(newTestRouter(), newTestStore(t), Options{Metrics: exporter})

	_, err := o.Process(context.Background(), &Request{UserID: "u", Input: "hi"})
	require.NoError(t, err)

	families, err := exporter.GetRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["plotbuddy_router_decisions_total"])
	assert.True(t, names["plotbuddy_agent_requests_total"])
}

func TestOrchestrator_Concurrent(t *testing.T) {
	o, st := newTestOrchestrator(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = o.Process(ctx, &Request{UserID: "shared", Input: "fantasy | dark | micro"})
		}()
	}
	wg.Wait()

	p, err := st.GetUserProfile(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, int32(0), p.StoriesRemaining)
	assert.Equal(t, int32(5), p.CreatedStories)
}

func TestOrchestrator_NilRequest(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	_, err := o.Process(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewOrchestrator_RequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { NewOrchestrator(nil, newTestStore(t), Options{}) })
	assert.Panics(t, func() { NewOrchestrator(newTestRouter(), nil, Options{}) })
}
