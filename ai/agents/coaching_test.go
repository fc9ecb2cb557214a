package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/plotbuddy/ai/core/llm"
	"github.com/hrygo/plotbuddy/store"
)

func TestCoachingAgent_NeverRepeats(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	a := NewCoachingAgent(st, nil)

	var lastApproach, lastAdvice string
	for i := 0; i < 25; i++ {
		resp, err := a.Process(ctx, &Request{UserID: "writer", Input: "give me some ideas"})
		require.NoError(t, err)
		require.True(t, resp.Success)

		approach, ok := resp.Data.(string)
		require.True(t, ok)
		assert.NotEqual(t, lastApproach, approach, "approach repeated on call %d", i)
		assert.NotEqual(t, lastAdvice, resp.Output, "advice repeated on call %d", i)
		lastApproach, lastAdvice = approach, resp.Output
	}

	h, err := st.GetInteractionHistory(ctx, "writer")
	require.NoError(t, err)
	assert.Equal(t, lastApproach, h.LastApproach)
	assert.Equal(t, lastAdvice, h.LastAdvice)
}

func TestCoachingAgent_Modes(t *testing.T) {
	ctx := context.Background()
	a := NewCoachingAgent(newTestStore(t), nil)
	a.intn = func(int) int { return 0 }

	resp, err := a.Process(ctx, &Request{UserID: "u1", Input: "let's brainstorm"})
	require.NoError(t, err)
	assert.Equal(t, MessageBrainstormConversation, resp.Message)
	assert.Equal(t, "💡 Let's brainstorm with the Character-First approach: "+coachingApproaches[0].tip, resp.Output)

	resp, err = a.Process(ctx, &Request{UserID: "u2", Context: RequestContext{Advice: true}})
	require.NoError(t, err)
	assert.Empty(t, resp.Message)
	assert.True(t, strings.HasPrefix(resp.Output, "✍️ Writing tip (Character-First): "))

	resp, err = a.Process(ctx, &Request{UserID: "u3", Context: RequestContext{Brainstorm: true}})
	require.NoError(t, err)
	assert.Equal(t, MessageBrainstormConversation, resp.Message)
}

func TestCoachingAgent_PickApproach(t *testing.T) {
	a := NewCoachingAgent(newTestStore(t), nil)
	a.intn = func(int) int { return 0 }

	assert.Equal(t, 0, a.pickApproach(""))
	assert.Equal(t, 1, a.pickApproach(coachingApproaches[0].name))
	assert.Equal(t, 0, a.pickApproach(coachingApproaches[1].name))
}

func TestCoachingAgent_LLM(t *testing.T) {
	ctx := context.Background()

	t.Run("uses model reply with story context", func(t *testing.T) {
		st := newTestStore(t)
		setHistory(t, st, &store.InteractionHistory{UserID: "u", StoryGenre: "Fantasy", StoryMood: "epic"})
		mock := llm.NewMockService().WithDefaultResponse("What if the dragon is afraid of gold?")
		a := NewCoachingAgent(st, mock)

		resp, err := a.Process(ctx, &Request{
			UserID:  "u",
			Input:   "brainstorm with me",
			Context: RequestContext{Notes: "set in a desert"},
		})
		require.NoError(t, err)
		assert.Equal(t, "What if the dragon is afraid of gold?", resp.Output)

		calls := mock.Calls()
		require.Len(t, calls, 1)
		prompt := calls[0][len(calls[0])-1].Content
		assert.Contains(t, prompt, "Genre: Fantasy")
		assert.Contains(t, prompt, "Mood: epic")
		assert.Contains(t, prompt, "Notes: set in a desert")
		assert.Contains(t, prompt, "brainstorm story ideas")
	})

	t.Run("repeated model reply falls back to a new tip", func(t *testing.T) {
		mock := llm.NewMockService().WithDefaultResponse("Same advice")
		a := NewCoachingAgent(newTestStore(t), mock)
		a.intn = func(int) int { return 0 }

		first, err := a.Process(ctx, &Request{UserID: "u", Context: RequestContext{Advice: true}})
		require.NoError(t, err)
		assert.Equal(t, "Same advice", first.Output)
		assert.Equal(t, "character-first", first.Data)

		second, err := a.Process(ctx, &Request{UserID: "u", Context: RequestContext{Advice: true}})
		require.NoError(t, err)
		assert.NotEqual(t, "Same advice", second.Output)
		assert.Equal(t, "setting-as-character", second.Data)
		assert.True(t, strings.HasPrefix(second.Output, "✍️ Writing tip (Setting-As-Character): "))
	})

	t.Run("model error uses static tip", func(t *testing.T) {
		mock := llm.NewMockService().WithError(errors.New("timeout"))
		a := NewCoachingAgent(newTestStore(t), mock)
		a.intn = func(int) int { return 0 }

		resp, err := a.Process(ctx, &Request{UserID: "u", Input: "any tips?"})
		require.NoError(t, err)
		assert.Equal(t, coachingApproaches[0].render(false), resp.Output)
	})
}

func TestCoachingAgent_StoreError(t *testing.T) {
	_, err := NewCoachingAgent(newBrokenStore(t), nil).Process(context.Background(), &Request{UserID: "u"})
	assert.ErrorIs(t, err, errStoreDown)
}
