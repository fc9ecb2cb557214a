package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/plotbuddy/ai/core/llm"
)

func TestLLMAgent(t *testing.T) {
	ctx := context.Background()
	req := &Request{Input: "What's the weather like in Paris?"}

	t.Run("declines without model", func(t *testing.T) {
		resp, err := NewLLMAgent(nil).Process(ctx, req)
		require.NoError(t, err)
		assert.True(t, Declined(resp))
	})

	t.Run("declines on error", func(t *testing.T) {
		resp, err := NewLLMAgent(llm.NewMockService().WithError(errors.New("down"))).Process(ctx, req)
		require.NoError(t, err)
		assert.True(t, Declined(resp))
	})

	t.Run("declines on blank reply", func(t *testing.T) {
		resp, err := NewLLMAgent(llm.NewMockService().WithDefaultResponse("  ")).Process(ctx, req)
		require.NoError(t, err)
		assert.True(t, Declined(resp))
	})

	t.Run("verbatim reply", func(t *testing.T) {
		mock := llm.NewMockService().WithDefaultResponse("Sunny, but stories are better! ☀️\n")
		resp, err := NewLLMAgent(mock).Process(ctx, req)
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "Sunny, but stories are better! ☀️\n", resp.Output)
		assert.Equal(t, AgentLLM, resp.Agent)

		msgs := mock.Calls()[0]
		require.Len(t, msgs, 2)
		assert.Equal(t, plotBuddySystemPrompt, msgs[0].Content)
		assert.Equal(t, req.Input, msgs[1].Content)
	})
}
