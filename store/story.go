package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
)

// Story sources.
const (
	StorySourceLLM      = "llm"
	StorySourceTemplate = "template"
)

// Story is an archived generated story.
type Story struct {
	ID        string
	UserID    string
	Genre     string
	Mood      string
	Length    string
	Text      string
	Source    string
	CreatedTs int64
}

type FindStory struct {
	UserID string
	Limit  int
}

// CreateStory archives a story, assigning an ID and timestamp when missing.
func (s *Store) CreateStory(ctx context.Context, create *Story) (*Story, error) {
	if create.UserID == "" {
		return nil, errors.New("user id required")
	}
	copied := *create
	if copied.ID == "" {
		copied.ID = shortuuid.New()
	}
	if copied.CreatedTs == 0 {
		copied.CreatedTs = time.Now().Unix()
	}
	story, err := s.driver.CreateStory(ctx, &copied)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create story")
	}
	return story, nil
}

// ListStories returns the user's stories, newest first.
func (s *Store) ListStories(ctx context.Context, find *FindStory) ([]*Story, error) {
	if find.Limit <= 0 {
		find.Limit = 20
	}
	stories, err := s.driver.ListStories(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stories")
	}
	return stories, nil
}
