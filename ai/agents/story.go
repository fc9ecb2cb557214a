package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/hrygo/plotbuddy/ai/core/llm"
	"github.com/hrygo/plotbuddy/ai/internal/strutil"
	"github.com/hrygo/plotbuddy/ai/observability/logging"
	"github.com/hrygo/plotbuddy/ai/routing"
	"github.com/hrygo/plotbuddy/store"
)

var (
	storyGenres  = []string{"Mystery", "Sci-Fi", "Fantasy", "Romance", "Adventure", "Horror", "Comedy"}
	storyMoods   = []string{"mysterious", "whimsical", "dark", "romantic", "epic", "funny", "melancholic", "suspenseful"}
	storyLengths = []string{"micro", "short", "medium", "long"}

	genreAliases = map[string]string{
		"scifi":           "Sci-Fi",
		"sci fi":          "Sci-Fi",
		"sci-fi":          "Sci-Fi",
		"science fiction": "Sci-Fi",
	}

	// Target word counts per length.
	lengthWords = map[string]int{
		"micro":  100,
		"short":  300,
		"medium": 600,
		"long":   1000,
	}
)

const (
	defaultGenre  = "Fantasy"
	defaultMood   = "mysterious"
	defaultLength = "short"
)

const (
	formatErrorTemplate = "📝 Please format your story request as:\n" +
		"genre | mood | length\n\n" +
		"Example: Mystery | suspenseful | micro\n\n" +
		"Available options:\n" +
		"🎭 Genres: %s\n" +
		"🌟 Moods: %s\n" +
		"📏 Lengths: %s"
	invalidGenreTemplate  = "⚠️ Invalid genre. Available genres: %s"
	invalidMoodTemplate   = "⚠️ Invalid mood. Available moods: %s"
	invalidLengthTemplate = "⚠️ Invalid length. Available lengths: %s"

	outOfCreditsMessage = "📭 You're out of stories! Check the subscription options to keep creating."

	// StoryFormatGuide explains the story request format.
	StoryFormatGuide = "📝 Create your story using:\n" +
		"genre | mood | length\n\n" +
		"Examples:\n" +
		"- Mystery | suspenseful | micro\n" +
		"- Fantasy | whimsical | short\n" +
		"- Sci-Fi | dark | medium"

	templateStoryBody = "It was closing time at the observatory when the last star winked out—and " +
		"our clockmaker chased it into the sky..."

	storySystemPrompt = "You are PlotBuddy, a storyteller who writes vivid, self-contained micro-fiction. " +
		"Write only the story text, without a title or closing line."
)

type optionPattern struct {
	value string
	re    *regexp.Regexp
}

func optionPatterns(aliases map[string]string, values []string) []optionPattern {
	var out []optionPattern
	// Multi-word aliases first so "science fiction" wins over a bare word.
	for _, alias := range []string{"science fiction", "sci-fi", "sci fi", "scifi"} {
		if canonical, ok := aliases[alias]; ok {
			out = append(out, optionPattern{canonical, routing.WordPattern(alias)})
		}
	}
	for _, v := range values {
		out = append(out, optionPattern{v, routing.WordPattern(strings.ToLower(v))})
	}
	return out
}

var (
	genrePatterns  = optionPatterns(genreAliases, storyGenres)
	moodPatterns   = optionPatterns(nil, storyMoods)
	lengthPatterns = optionPatterns(nil, storyLengths)
)

func findOption(patterns []optionPattern, normalized string) string {
	for _, p := range patterns {
		if p.re.MatchString(normalized) {
			return p.value
		}
	}
	return ""
}

// CanonicalGenre maps a case-insensitive genre or alias to its display name.
func CanonicalGenre(s string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if g, ok := genreAliases[key]; ok {
		return g, true
	}
	for _, g := range storyGenres {
		if strings.EqualFold(g, key) {
			return g, true
		}
	}
	return "", false
}

func canonicalOption(options []string, s string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, o := range options {
		if o == key {
			return o, true
		}
	}
	return "", false
}

// StoryOptions returns the supported genres, moods and lengths.
func StoryOptions() (genres, moods, lengths []string) {
	return append([]string(nil), storyGenres...),
		append([]string(nil), storyMoods...),
		append([]string(nil), storyLengths...)
}

// StoryAgent writes stories from a genre, a mood and a length.
type StoryAgent struct {
	store *store.Store
	llm   llm.Service
	intn  func(n int) int
}

// NewStoryAgent creates the story handler. llmSvc may be nil, in which case
// stories come from the built-in template.
func NewStoryAgent(st *store.Store, llmSvc llm.Service) *StoryAgent {
	return &StoryAgent{store: st, llm: llmSvc, intn: rand.IntN}
}

func (a *StoryAgent) Name() string {
	return AgentStory
}

func (a *StoryAgent) Process(ctx context.Context, req *Request) (*Response, error) {
	logger := logging.FromContext(ctx)

	history, err := a.store.GetInteractionHistory(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load interaction history: %w", err)
	}

	params, premise, problem := a.resolveParams(req, history)
	if problem != "" {
		return &Response{Message: problem, Agent: AgentStory}, nil
	}

	genre, ok := CanonicalGenre(params.Genre)
	if !ok {
		return &Response{Message: fmt.Sprintf(invalidGenreTemplate, strings.Join(storyGenres, ", ")), Agent: AgentStory}, nil
	}
	mood, ok := canonicalOption(storyMoods, params.Mood)
	if !ok {
		return &Response{Message: fmt.Sprintf(invalidMoodTemplate, strings.Join(storyMoods, ", ")), Agent: AgentStory}, nil
	}
	length, ok := canonicalOption(storyLengths, params.Length)
	if !ok {
		return &Response{Message: fmt.Sprintf(invalidLengthTemplate, strings.Join(storyLengths, ", ")), Agent: AgentStory}, nil
	}

	if _, err := a.store.ConsumeStoryCredit(ctx, req.UserID); err != nil {
		if errors.Is(err, store.ErrNoCredits) {
			return &Response{Message: outOfCreditsMessage, Agent: AgentStory}, nil
		}
		return nil, fmt.Errorf("consume story credit: %w", err)
	}

	body, source := a.generate(ctx, genre, mood, length, premise, req.Context.Notes)
	text := fmt.Sprintf("[%s %s – %s]\n\n%s\n\n✨ The End ✨", strutil.Title(length), genre, strutil.Title(mood), body)

	story := &store.Story{
		UserID: req.UserID,
		Genre:  genre,
		Mood:   mood,
		Length: length,
		Text:   text,
		Source: source,
	}
	if saved, err := a.store.CreateStory(ctx, story); err != nil {
		logger.Warn("failed to archive story", "error", err)
	} else {
		story = saved
	}

	history.StoryGenre, history.StoryMood, history.StoryLength = genre, mood, length
	if _, err := a.store.UpsertInteractionHistory(ctx, history); err != nil {
		logger.Warn("failed to save story context", "error", err)
	}

	logger.Info("story created", "genre", genre, "mood", mood, "length", length, "source", source)
	return &Response{Success: true, Output: text, Agent: AgentStory, Data: story}, nil
}

// resolveParams picks the story parameters for req. It returns a user-facing
// problem when the request is malformed, and the free-text premise if any.
func (a *StoryAgent) resolveParams(req *Request, history *store.InteractionHistory) (StoryParams, string, string) {
	switch {
	case req.Context.Random:
		return StoryParams{
			Genre:  storyGenres[a.intn(len(storyGenres))],
			Mood:   storyMoods[a.intn(len(storyMoods))],
			Length: storyLengths[a.intn(len(storyLengths))],
		}, "", ""

	case req.Params != nil:
		return *req.Params, "", ""

	case strings.Contains(req.Input, "|"):
		parts := strings.Split(req.Input, "|")
		if len(parts) != 3 {
			return StoryParams{}, "", fmt.Sprintf(formatErrorTemplate,
				strings.Join(storyGenres, ", "),
				strings.Join(storyMoods, ", "),
				strings.Join(storyLengths, ", "))
		}
		return StoryParams{
			Genre:  strings.TrimSpace(parts[0]),
			Mood:   strings.TrimSpace(parts[1]),
			Length: strings.TrimSpace(parts[2]),
		}, "", ""
	}

	normalized := routing.Normalize(req.Input)
	return StoryParams{
		Genre:  firstNonEmpty(findOption(genrePatterns, normalized), req.Context.Genre, history.StoryGenre, defaultGenre),
		Mood:   firstNonEmpty(findOption(moodPatterns, normalized), req.Context.Mood, history.StoryMood, defaultMood),
		Length: firstNonEmpty(findOption(lengthPatterns, normalized), req.Context.Length, history.StoryLength, defaultLength),
	}, strings.TrimSpace(req.Input), ""
}

func (a *StoryAgent) generate(ctx context.Context, genre, mood, length, premise, notes string) (string, string) {
	if a.llm != nil {
		content, _, err := a.llm.Chat(ctx, llm.FormatMessages(storySystemPrompt, storyPrompt(genre, mood, length, premise, notes), nil))
		if err == nil && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content), store.StorySourceLLM
		}
		if err != nil {
			logging.FromContext(ctx).Warn("story llm call failed, using template", "error", err)
		}
	}
	return templateStoryBody, store.StorySourceTemplate
}

func storyPrompt(genre, mood, length, premise, notes string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a %s %s story with a %s mood in about %d words.\n", length, genre, mood, lengthWords[length])
	if premise != "" {
		fmt.Fprintf(&sb, "Premise from the reader: %s\n", premise)
	}
	if notes != "" {
		fmt.Fprintf(&sb, "Notes: %s\n", notes)
	}
	return sb.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
