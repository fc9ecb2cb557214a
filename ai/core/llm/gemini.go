package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type geminiService struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     int
}

func newGeminiService(cfg *Config) (Service, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &geminiService{
		client:      client,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

func (g *geminiService) Provider() string {
	return "gemini"
}

func (g *geminiService) Chat(ctx context.Context, messages []Message) (string, *LLMCallStats, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.timeout)*time.Second)
	defer cancel()

	system, contents := toGeminiContents(messages)
	config := &genai.GenerateContentConfig{
		Temperature:     &g.temperature,
		MaxOutputTokens: int32(g.maxTokens),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	startTime := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		slog.Error("LLM: Gemini request failed", "model", g.model, "error", err)
		return "", nil, fmt.Errorf("Gemini generation failed: %w", err)
	}

	var content strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			content.WriteString(part.Text)
		}
	}
	if content.Len() == 0 {
		return "", nil, fmt.Errorf("empty response from LLM")
	}

	stats := &LLMCallStats{TotalDurationMs: time.Since(startTime).Milliseconds()}
	if resp.UsageMetadata != nil {
		stats.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		stats.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		stats.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
		stats.CacheReadTokens = int(resp.UsageMetadata.CachedContentTokenCount)
	}

	slog.Debug("LLM: Gemini response received",
		"content_length", content.Len(),
		"total_tokens", stats.TotalTokens,
		"duration_ms", stats.TotalDurationMs,
	)

	return content.String(), stats, nil
}

func (g *geminiService) Warmup(ctx context.Context) {
	warmupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	startTime := time.Now()
	_, err := g.client.Models.GenerateContent(warmupCtx, g.model, genai.Text("Hi"), &genai.GenerateContentConfig{
		MaxOutputTokens: 1,
	})
	logWarmup("gemini", g.model, time.Since(startTime), err)
}

// toGeminiContents splits system messages out into a single instruction;
// assistant turns map to the "model" role.
func toGeminiContents(messages []Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}
	return strings.Join(system, "\n\n"), contents
}
