package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"StoryGenerator/internal/domain"
	"StoryGenerator/internal/ports"
	"StoryGenerator/internal/story"
)

// publishParallelism bounds concurrent work-item creation calls.
const publishParallelism = 4

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Epics     ports.EpicReader
	Wiki      ports.WikiSource
	Matcher   ports.PageMatcher
	Generator ports.ChatCompleter
	Publisher ports.StoryPublisher
	Logger    *slog.Logger
}

// Pipeline implements the epic-to-backlog generation workflow:
// resolve epic, rank wiki pages, fetch content, generate, parse,
// filter, publish.
type Pipeline struct {
	epics     ports.EpicReader
	wiki      ports.WikiSource
	matcher   ports.PageMatcher
	generator ports.ChatCompleter
	publisher ports.StoryPublisher
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		epics:     deps.Epics,
		wiki:      deps.Wiki,
		matcher:   deps.Matcher,
		generator: deps.Generator,
		publisher: deps.Publisher,
		logger:    deps.Logger,
	}
}

// EpicResult is the envelope returned by a full run from an epic id.
type EpicResult struct {
	Success       bool                    `json:"success"`
	StoryCount    int                     `json:"story_count"`
	Message       string                  `json:"message"`
	WikiPagesUsed []string                `json:"wiki_pages_used"`
	Stories       []domain.PublishOutcome `json:"stories"`
}

// PagesResult is the envelope returned when the caller pre-selects pages.
type PagesResult struct {
	Message    string                  `json:"message"`
	StoryCount int                     `json:"story_count"`
	Stories    []domain.PublishOutcome `json:"stories"`
}

// FindRelatedPages lists the wiki corpus and ranks it against the epic title.
// An empty corpus yields an empty result, not an error.
func (p *Pipeline) FindRelatedPages(ctx context.Context, epicTitle string) ([]domain.PageMatch, error) {
	pages, err := p.wiki.ListPages(ctx)
	if err != nil {
		return nil, stageErr(StageRankPages, fmt.Errorf("list wiki pages: %w", err))
	}

	matches := p.matcher.Match(ctx, epicTitle, pages)
	p.debug("ranked wiki pages", "total", len(pages), "matched", len(matches))
	return matches, nil
}

// RunFromEpic executes the whole pipeline for one epic id.
func (p *Pipeline) RunFromEpic(ctx context.Context, epicID int) (EpicResult, error) {
	epic, err := p.epics.GetEpic(ctx, epicID)
	if err != nil {
		return EpicResult{}, stageErr(StageResolveEpic, fmt.Errorf("get epic %d: %w", epicID, err))
	}
	p.debug("resolved epic", "id", epic.ID, "title", epic.Title)

	pages, err := p.wiki.ListPages(ctx)
	if err != nil {
		return EpicResult{}, stageErr(StageRankPages, fmt.Errorf("list wiki pages: %w", err))
	}
	if len(pages) == 0 {
		return EpicResult{}, stageErr(StageRankPages, ErrNoPages)
	}

	matches := p.matcher.Match(ctx, epic.Title, pages)
	if len(matches) == 0 {
		return EpicResult{}, stageErr(StageRankPages, ErrNoRelatedPages)
	}

	selected := make([]string, 0, len(matches))
	for _, match := range matches {
		selected = append(selected, match.Path)
	}

	result, err := p.RunWithPages(ctx, selected, epicID)
	if err != nil {
		return EpicResult{}, err
	}

	return EpicResult{
		Success:       true,
		StoryCount:    result.StoryCount,
		Message:       result.Message,
		WikiPagesUsed: selected,
		Stories:       result.Stories,
	}, nil
}

// RunWithPages executes stages 3-6 for callers that already know which wiki
// pages to use. A publish failure for one story never aborts the rest; every
// considered story yields exactly one outcome, in original order.
func (p *Pipeline) RunWithPages(ctx context.Context, pagePaths []string, epicID int) (PagesResult, error) {
	content, err := p.fetchPages(ctx, pagePaths)
	if err != nil {
		return PagesResult{}, err
	}

	raw, err := p.generator.Complete(ctx, generateSystemPrompt, buildStoryPrompt(content), generateTemperature)
	if err != nil {
		return PagesResult{}, stageErr(StageGenerate, fmt.Errorf("generate stories: %w", err))
	}
	p.debug("generation finished", "chars", len(raw))

	drafts := story.ParseStories(raw)

	accepted := make([]domain.StoryDraft, 0, len(drafts))
	for _, draft := range drafts {
		admission := story.Admit(draft.Title, draft.Description)
		if !admission.Accepted {
			p.debug("draft rejected", "reason", string(admission.Reason), "title", draft.Title)
			continue
		}
		accepted = append(accepted, admission.Draft)
	}
	p.debug("parsed stories", "parsed", len(drafts), "accepted", len(accepted))

	outcomes := p.publishAll(ctx, accepted, epicID)

	created := 0
	for _, outcome := range outcomes {
		if outcome.Status == domain.StatusCreated {
			created++
		}
	}

	return PagesResult{
		Message:    fmt.Sprintf("Generated %d user stories from %d wiki pages", len(accepted), len(pagePaths)),
		StoryCount: created,
		Stories:    outcomes,
	}, nil
}

// fetchPages concatenates page bodies into one labeled blob. A failed fetch
// degrades to an inline error marker for that page; only a blob with no
// usable content at all aborts the run.
func (p *Pipeline) fetchPages(ctx context.Context, pagePaths []string) (string, error) {
	var (
		sections   = make([]string, 0, len(pagePaths))
		anyContent bool
	)

	for _, path := range pagePaths {
		body, err := p.wiki.FetchPage(ctx, path)
		if err != nil {
			p.debug("page fetch failed", "path", path, "error", err)
			sections = append(sections, fmt.Sprintf("=== %s ===\nError: could not fetch page\n", path))
			continue
		}
		if strings.TrimSpace(body) != "" {
			anyContent = true
		}
		sections = append(sections, fmt.Sprintf("=== %s ===\n%s\n", path, body))
	}

	if !anyContent {
		return "", stageErr(StageFetchContent, ErrPagesNotFound)
	}

	return strings.Join(sections, "\n"), nil
}

// publishAll creates one work item per accepted draft. Calls run concurrently
// but the outcome slice preserves draft order; a failed call is a terminal
// outcome for that draft only.
func (p *Pipeline) publishAll(ctx context.Context, drafts []domain.StoryDraft, epicID int) []domain.PublishOutcome {
	outcomes := make([]domain.PublishOutcome, len(drafts))

	var g errgroup.Group
	g.SetLimit(publishParallelism)

	for i, draft := range drafts {
		i, draft := i, draft
		g.Go(func() error {
			outcomes[i] = p.publishOne(ctx, draft, epicID)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (p *Pipeline) publishOne(ctx context.Context, draft domain.StoryDraft, epicID int) domain.PublishOutcome {
	if draft.Title == "" || draft.Description == "" {
		return domain.PublishOutcome{
			Title:  draft.Title,
			Status: domain.StatusSkipped,
			Detail: "missing title or description",
		}
	}

	item, err := p.publisher.CreateStory(ctx, draft.Title, draft.Description, epicID)
	if err != nil {
		p.debug("publish failed", "title", draft.Title, "error", err)
		return domain.PublishOutcome{
			Title:  draft.Title,
			Status: domain.StatusFailed,
			Detail: err.Error(),
		}
	}

	return domain.PublishOutcome{
		Title:  draft.Title,
		Status: domain.StatusCreated,
		Detail: fmt.Sprintf("created work item #%d", item.ID),
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
