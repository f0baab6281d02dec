package ports

import (
	"context"

	"StoryGenerator/internal/domain"
)

// EpicReader resolves epics from the work-tracking system.
type EpicReader interface {
	GetEpic(ctx context.Context, id int) (domain.Epic, error)
}

// WikiSource lists and fetches pages from the document corpus.
type WikiSource interface {
	ListPages(ctx context.Context) ([]string, error)
	FetchPage(ctx context.Context, path string) (string, error)
}

// StoryPublisher creates backlog items in the work-tracking system.
type StoryPublisher interface {
	CreateStory(ctx context.Context, title, description string, epicID int) (domain.CreatedItem, error)
}

// ChatCompleter runs a single blocking completion against a generative model.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// PageMatcher ranks candidate pages against a phrase.
type PageMatcher interface {
	Match(ctx context.Context, phrase string, candidates []string) []domain.PageMatch
}
