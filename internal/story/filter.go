package story

import (
	"strings"
	"unicode/utf8"

	"StoryGenerator/internal/domain"
)

// RejectReason tags why a draft was refused admission.
type RejectReason string

const (
	RejectBoilerplate RejectReason = "boilerplate"
	RejectTooShort    RejectReason = "too_short"
)

const (
	// maxTitleLen is the work-tracking system's title field limit.
	maxTitleLen = 255
	minTitleLen = 10
	// lineBreak is the publishing system's inline break representation.
	lineBreak = "<br/>"
	bullet    = "• "
)

// skipKeywords mark titles that are leaked sub-sections of a story
// (acceptance-criteria text, separators, user-story prefix fragments)
// rather than standalone stories.
var skipKeywords = []string{"acceptance criteria", "---", "as a", "**as"}

// Admission is the outcome of filtering one draft: either an accepted,
// normalized draft or a tagged rejection.
type Admission struct {
	Accepted bool
	Reason   RejectReason
	Draft    domain.StoryDraft
}

// Admit normalizes a raw title/description pair and decides whether it is
// publishable. Rejections are silent exclusions, not errors.
func Admit(title, description string) Admission {
	clean := CleanTitle(title)

	head := strings.ToLower(truncateRunes(clean, 30))
	for _, keyword := range skipKeywords {
		if strings.Contains(head, keyword) {
			return Admission{Reason: RejectBoilerplate}
		}
	}

	if utf8.RuneCountInString(clean) < minTitleLen {
		return Admission{Reason: RejectTooShort}
	}

	return Admission{
		Accepted: true,
		Draft: domain.StoryDraft{
			Title:       truncateRunes(clean, maxTitleLen),
			Description: FormatDescription(description),
		},
	}
}

// CleanTitle strips heading and emphasis markers and collapses whitespace.
// The 255-unit cap is applied at acceptance, not here, so truncation can
// never split a marker sequence.
func CleanTitle(title string) string {
	clean := strings.TrimSpace(title)
	clean = strings.ReplaceAll(clean, "###", "")
	clean = strings.ReplaceAll(clean, "##", "")
	clean = strings.ReplaceAll(clean, "#", "")
	clean = strings.ReplaceAll(clean, "**", "")
	return strings.Join(strings.Fields(clean), " ")
}

// FormatDescription converts line breaks to the publisher's inline break and
// normalizes both bullet spellings to a single glyph.
func FormatDescription(description string) string {
	formatted := strings.ReplaceAll(strings.TrimSpace(description), "\n", lineBreak)
	formatted = strings.ReplaceAll(formatted, lineBreak+"- ", lineBreak+bullet)
	formatted = strings.ReplaceAll(formatted, lineBreak+"* ", lineBreak+bullet)
	return formatted
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
