package story

import (
	"strings"

	"StoryGenerator/internal/domain"
)

// Delimiter grammar the generation prompt asks the model to follow. The
// generated text is adversarial by nature, so everything that does not fit
// the grammar is treated as noise, never as an error.
const (
	blockStart        = "---STORY---"
	blockEnd          = "---END---"
	titleMarker       = "TITLE:"
	descriptionMarker = "DESCRIPTION:"
)

// ParseStories extracts story drafts from raw generated text. Blocks missing
// the end delimiter, a title, or any description line are dropped silently.
// Output order follows input order.
func ParseStories(text string) []domain.StoryDraft {
	drafts := make([]domain.StoryDraft, 0)

	for _, block := range strings.Split(text, blockStart) {
		if !strings.Contains(block, blockEnd) {
			continue
		}

		content := strings.TrimSpace(strings.SplitN(block, blockEnd, 2)[0])

		var (
			title         string
			description   []string
			inDescription bool
		)

		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, titleMarker):
				title = strings.TrimSpace(strings.TrimPrefix(line, titleMarker))
			case strings.HasPrefix(line, descriptionMarker):
				inDescription = true
			case inDescription && line != "":
				description = append(description, line)
			}
		}

		if title == "" || len(description) == 0 {
			continue
		}

		drafts = append(drafts, domain.StoryDraft{
			Title:       title,
			Description: strings.Join(description, "\n"),
		})
	}

	return drafts
}

// FormatBlock renders a draft back into the delimiter grammar. It is the
// single source for the example block in the generation prompt and backs the
// parse round-trip tests.
func FormatBlock(draft domain.StoryDraft) string {
	var b strings.Builder
	b.WriteString(blockStart + "\n")
	b.WriteString(titleMarker + " " + draft.Title + "\n")
	b.WriteString(descriptionMarker + "\n")
	b.WriteString(draft.Description + "\n")
	b.WriteString(blockEnd + "\n")
	return b.String()
}
