package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	agent "github.com/hrygo/plotbuddy/ai/agents"
	"github.com/hrygo/plotbuddy/internal/version"
	"github.com/hrygo/plotbuddy/store"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				return newREPL(a, os.Stdin).run(ctx)
			})
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a single message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				_, err := a.send(ctx, &agent.Request{
					UserID: userID(),
					Input:  strings.Join(args, " "),
				})
				return err
			})
		},
	}
}

func newFAQCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "faq [question]",
		Short: "Ask about pricing, genres, subscriptions and more",
		Example: `  plotbuddy faq how much does a story cost
  plotbuddy faq`,
		RunE: func(_ *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				_, err := a.faq(ctx, strings.Join(args, " "))
				return err
			})
		},
	}
}

func newStoryCmd() *cobra.Command {
	var random bool
	var notes string

	cmd := &cobra.Command{
		Use:   "story [genre mood length]",
		Short: "Generate a story",
		Example: `  plotbuddy story Fantasy mysterious short
  plotbuddy story --random`,
		Args: func(cmd *cobra.Command, args []string) error {
			if random && len(args) == 0 {
				return nil
			}
			if len(args) != 3 {
				genres, moods, lengths := agent.StoryOptions()
				return fmt.Errorf("expected genre, mood and length (or --random)\n  genres:  %s\n  moods:   %s\n  lengths: %s",
					strings.Join(genres, ", "), strings.Join(moods, ", "), strings.Join(lengths, ", "))
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			req := &agent.Request{
				UserID:  userID(),
				Context: agent.RequestContext{Random: random, Notes: notes},
			}
			if !random {
				req.Params = &agent.StoryParams{Genre: args[0], Mood: args[1], Length: args[2]}
			}
			return withApp(func(ctx context.Context, a *app) error {
				_, err := a.send(ctx, req)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&random, "random", false, "pick a random genre, mood and length")
	cmd.Flags().StringVar(&notes, "notes", "", "extra guidance for the writer")
	return cmd
}

// newModeCmd builds the brainstorm and advice commands, which differ only
// in the mode flag they set.
func newModeCmd(mode, short string) *cobra.Command {
	var hints agent.RequestContext

	cmd := &cobra.Command{
		Use:   mode + " [message]",
		Short: short,
		RunE: func(_ *cobra.Command, args []string) error {
			hints.Brainstorm = mode == "brainstorm"
			hints.Advice = mode == "advice"
			return withApp(func(ctx context.Context, a *app) error {
				_, err := a.send(ctx, &agent.Request{
					UserID:  userID(),
					Input:   strings.Join(args, " "),
					Context: hints,
				})
				return err
			})
		},
	}
	cmd.Flags().StringVar(&hints.Genre, "genre", "", "genre to focus on")
	cmd.Flags().StringVar(&hints.Mood, "mood", "", "mood to focus on")
	cmd.Flags().StringVar(&hints.Length, "length", "", "story length to plan for")
	cmd.Flags().StringVar(&hints.Notes, "notes", "", "anything else about your story")
	return cmd
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your subscription and story credits",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				resp, err := agent.NewProfileAgent(a.store).Process(ctx, &agent.Request{UserID: userID()})
				if err != nil {
					return err
				}
				return a.print(resp)
			})
		},
	}
}

func newStoriesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stories",
		Short: "List the stories you have generated",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				stories, err := a.store.ListStories(ctx, &store.FindStory{UserID: userID(), Limit: limit})
				if err != nil {
					return err
				}
				if len(stories) == 0 {
					fmt.Fprintln(a.out, "No stories yet. Try: plotbuddy story --random")
					return nil
				}
				for _, s := range stories {
					fmt.Fprintf(a.out, "%s  %s  %s / %s / %s (%s)\n",
						s.ID,
						time.Unix(s.CreatedTs, 0).Format(time.DateTime),
						s.Genre, s.Mood, s.Length, s.Source)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of stories to list")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("PlotBuddy", version.StringFull())
		},
	}
}
