package usecase

import (
	"strings"

	"StoryGenerator/internal/domain"
	"StoryGenerator/internal/story"
)

// Prompt contracts with the generative model.
const (
	generateSystemPrompt = "You are a product manager who writes clear, actionable user stories for agile development."
	generateTemperature  = 0.7
)

// promptExample is rendered through the parser package's formatter so the
// grammar shown to the model has exactly one source.
var promptExample = domain.StoryDraft{
	Title:       "User Story: [Brief title without markdown symbols]",
	Description: "As a [user], I want [feature], so that [benefit].\n\nAcceptance Criteria:\n- [Criterion 1]\n- [Criterion 2]\n- [Criterion 3]",
}

func buildStoryPrompt(wikiContent string) string {
	var b strings.Builder
	b.WriteString(`You are a product manager creating user stories for Azure DevOps.

Based on the following feature descriptions from Azure Wiki, create 3-5 user stories per wiki page.

IMPORTANT FORMATTING RULES:
1. Each user story must have:
   - A clear, concise title (format: "User Story: [Brief Description]")
   - A description with TWO parts:
     a) User story statement: "As a [user type], I want [feature], so that [benefit]"
     b) Acceptance criteria as a bulleted list

2. Format each story EXACTLY like this:
`)
	b.WriteString(story.FormatBlock(promptExample))
	b.WriteString(`
DO NOT use markdown symbols like ###, **, or #.
DO NOT create separate items for acceptance criteria.
Each story should be ONE complete unit with title and description together.

Wiki Content:
`)
	b.WriteString(wikiContent)
	b.WriteString("\n\nGenerate the user stories now:")
	return b.String()
}
