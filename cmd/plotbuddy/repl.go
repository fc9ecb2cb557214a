package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	agent "github.com/hrygo/plotbuddy/ai/agents"
)

const replBanner = `PlotBuddy is ready. Ask for a story, a brainstorm, or help.
Type "exit" to leave.`

// repl reads one message per line and prints each reply. When the assistant
// hands over to the story creator it asks for the remaining story options
// and submits them as a structured request.
type repl struct {
	app   *app
	lines chan string
	in    io.Reader
}

func newREPL(a *app, in io.Reader) *repl {
	return &repl{app: a, in: in, lines: make(chan string)}
}

func (r *repl) run(ctx context.Context) error {
	go r.scan(ctx)
	r.app.warmup(ctx)

	fmt.Fprintln(r.app.out, replBanner)
	fmt.Fprintln(r.app.out, agent.NewGreetingAgent().Greet(""))
	user := userID()
	for {
		line, ok := r.prompt(ctx, "> ")
		if !ok {
			return nil
		}
		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "/quit":
			return nil
		}

		resp, err := r.app.send(ctx, &agent.Request{UserID: user, Input: line})
		if err != nil {
			return err
		}
		if resp.Message != agent.MessageRedirectToStoryCreator {
			continue
		}

		genre, _ := resp.Data.(string)
		params, ok := r.storyOptions(ctx, genre)
		if !ok {
			return nil
		}
		if _, err := r.app.send(ctx, &agent.Request{UserID: user, Params: params}); err != nil {
			return err
		}
	}
}

// storyOptions collects genre, mood and length. An empty answer keeps the
// suggested value.
func (r *repl) storyOptions(ctx context.Context, genre string) (*agent.StoryParams, bool) {
	genres, moods, lengths := agent.StoryOptions()
	params := &agent.StoryParams{Genre: genre, Mood: moods[0], Length: lengths[0]}
	if params.Genre == "" {
		params.Genre = genres[0]
	}

	for _, q := range []struct {
		label   string
		options []string
		value   *string
	}{
		{"Genre", genres, &params.Genre},
		{"Mood", moods, &params.Mood},
		{"Length", lengths, &params.Length},
	} {
		fmt.Fprintf(r.app.out, "%s options: %s\n", q.label, strings.Join(q.options, ", "))
		answer, ok := r.prompt(ctx, fmt.Sprintf("%s [%s]: ", q.label, *q.value))
		if !ok {
			return nil, false
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			*q.value = answer
		}
	}
	return params, true
}

func (r *repl) prompt(ctx context.Context, label string) (string, bool) {
	fmt.Fprint(r.app.out, label)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-r.lines:
		return line, ok
	}
}

func (r *repl) scan(ctx context.Context) {
	defer close(r.lines)
	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		select {
		case r.lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}
