package agent

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/hrygo/plotbuddy/ai/core/llm"
	"github.com/hrygo/plotbuddy/ai/internal/strutil"
	"github.com/hrygo/plotbuddy/ai/observability/logging"
	"github.com/hrygo/plotbuddy/ai/routing"
	"github.com/hrygo/plotbuddy/store"
)

type coachingApproach struct {
	name string
	tip  string
}

var coachingApproaches = []coachingApproach{
	{"character-first", "Start with a character who wants something badly, then put the biggest obstacle you can imagine in their way."},
	{"what-if", "Take an ordinary moment and ask \"what if\" until the answer surprises you."},
	{"setting-as-character", "Describe the place your story happens as if it were alive. What does it want, and what is it hiding?"},
	{"ending-first", "Write the final line first, then work backwards to the moment everything changed."},
	{"constraint", "Give yourself one hard rule, like no dialogue or exactly 100 words, and let the limit push you somewhere new."},
	{"sensory-detail", "Pick a single sound and build a scene where it matters more each time it returns."},
	{"dialogue-only", "Draft the scene as pure dialogue. Once the voices work, add only the description you can't live without."},
}

func (c coachingApproach) render(brainstorm bool) string {
	if brainstorm {
		return fmt.Sprintf("💡 Let's brainstorm with the %s approach: %s", strutil.Title(c.name), c.tip)
	}
	return fmt.Sprintf("✍️ Writing tip (%s): %s", strutil.Title(c.name), c.tip)
}

var brainstormRequest = newKeywordGroup("brainstorm", "brainstorm", "brainstorming", "idea", "ideas")

const coachingSystemPrompt = "You are PlotBuddy, a warm and encouraging creative writing coach. " +
	"Reply in under 120 words. Build your reply around the coaching approach you are given, " +
	"and end with one question that keeps the writer moving."

// CoachingAgent brainstorms with the user and hands out writing advice,
// never repeating the previous approach or advice for the same user.
type CoachingAgent struct {
	store *store.Store
	llm   llm.Service
	intn  func(n int) int
}

// NewCoachingAgent creates the coaching handler. llmSvc may be nil.
func NewCoachingAgent(st *store.Store, llmSvc llm.Service) *CoachingAgent {
	return &CoachingAgent{store: st, llm: llmSvc, intn: rand.IntN}
}

func (a *CoachingAgent) Name() string {
	return AgentCoaching
}

func (a *CoachingAgent) Process(ctx context.Context, req *Request) (*Response, error) {
	logger := logging.FromContext(ctx)
	history, err := a.store.GetInteractionHistory(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load interaction history: %w", err)
	}

	brainstorm := req.Context.Brainstorm ||
		(!req.Context.Advice && brainstormRequest.matches(routing.Normalize(req.Input)))

	idx := a.pickApproach(history.LastApproach)
	approach := coachingApproaches[idx]

	advice := ""
	if a.llm != nil {
		content, _, err := a.llm.Chat(ctx, llm.FormatMessages(coachingSystemPrompt, coachingPrompt(req, history, approach, brainstorm), nil))
		if err != nil {
			logger.Warn("coaching llm call failed, using static tip", "error", err)
		} else {
			advice = strings.TrimSpace(content)
		}
	}
	if advice == "" {
		advice = approach.render(brainstorm)
	}

	// Step through the remaining approaches until the advice is new.
	for step := 1; advice == history.LastAdvice && step < len(coachingApproaches); step++ {
		next := coachingApproaches[(idx+step)%len(coachingApproaches)]
		if next.name == history.LastApproach {
			continue
		}
		approach = next
		advice = approach.render(brainstorm)
	}

	history.LastApproach = approach.name
	history.LastAdvice = advice
	if _, err := a.store.UpsertInteractionHistory(ctx, history); err != nil {
		logger.Warn("failed to save interaction history", "error", err)
	}

	resp := &Response{Success: true, Output: advice, Agent: AgentCoaching, Data: approach.name}
	if brainstorm {
		resp.Message = MessageBrainstormConversation
	}
	return resp, nil
}

// pickApproach returns the index of a random approach other than last.
func (a *CoachingAgent) pickApproach(last string) int {
	candidates := make([]int, 0, len(coachingApproaches))
	for i, c := range coachingApproaches {
		if c.name != last {
			candidates = append(candidates, i)
		}
	}
	return candidates[a.intn(len(candidates))]
}

func coachingPrompt(req *Request, history *store.InteractionHistory, approach coachingApproach, brainstorm bool) string {
	var sb strings.Builder
	if brainstorm {
		sb.WriteString("The writer wants to brainstorm story ideas.\n")
	} else {
		sb.WriteString("The writer wants advice on their story.\n")
	}
	fmt.Fprintf(&sb, "Coaching approach: %s. %s\n", approach.name, approach.tip)

	writeField := func(label, value, fallback string) {
		if value == "" {
			value = fallback
		}
		if value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", label, value)
		}
	}
	writeField("Genre", req.Context.Genre, history.StoryGenre)
	writeField("Mood", req.Context.Mood, history.StoryMood)
	writeField("Length", req.Context.Length, history.StoryLength)
	writeField("Notes", req.Context.Notes, "")
	writeField("Message", strings.TrimSpace(req.Input), "")
	return sb.String()
}
