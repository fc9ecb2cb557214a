package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// GuardConfig configures the request guard placed in front of a hosted model.
type GuardConfig struct {
	// RequestsPerSecond is the sustained call rate. Zero disables limiting.
	RequestsPerSecond float64
	// Burst is the number of calls allowed above the sustained rate.
	Burst int
	// CallTimeout bounds a shared upstream call, rate limit wait included.
	// It defaults to 90s.
	CallTimeout time.Duration
}

// DefaultGuardConfig returns a conservative limit suitable for free-tier keys.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		RequestsPerSecond: 2,
		Burst:             4,
		CallTimeout:       90 * time.Second,
	}
}

// guardedService rate-limits calls and collapses identical in-flight prompts
// into a single upstream request. The shared request runs detached from
// any one caller, so a caller giving up never fails the others.
type guardedService struct {
	next        Service
	limiter     *rate.Limiter
	group       singleflight.Group
	callTimeout time.Duration
}

type chatResult struct {
	content string
	stats   *LLMCallStats
}

// NewGuardedService wraps svc with a token-bucket limiter and call deduplication.
func NewGuardedService(svc Service, cfg GuardConfig) Service {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	callTimeout := cfg.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultGuardConfig().CallTimeout
	}
	return &guardedService{
		next:        svc,
		limiter:     rate.NewLimiter(limit, burst),
		callTimeout: callTimeout,
	}
}

func (g *guardedService) Provider() string {
	return g.next.Provider()
}

func (g *guardedService) Warmup(ctx context.Context) {
	g.next.Warmup(ctx)
}

func (g *guardedService) Chat(ctx context.Context, messages []Message) (string, *LLMCallStats, error) {
	key := promptKey(messages)
	ch := g.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.callTimeout)
		defer cancel()

		if err := g.limiter.Wait(callCtx); err != nil {
			return nil, fmt.Errorf("llm rate limit: %w", err)
		}
		content, stats, err := g.next.Chat(callCtx, messages)
		if err != nil {
			return nil, err
		}
		return chatResult{content: content, stats: stats}, nil
	})

	select {
	case <-ctx.Done():
		return "", nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", nil, res.Err
		}
		if res.Shared {
			slog.Debug("LLM: shared in-flight response", "provider", g.next.Provider())
		}
		out := res.Val.(chatResult)
		return out.content, out.stats, nil
	}
}

func promptKey(messages []Message) string {
	h := sha256.New()
	for _, m := range messages {
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
