package match

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"StoryGenerator/internal/domain"
	"StoryGenerator/internal/ports"
)

const (
	// modelThreshold is the admission bar for model-ranked matches; the model
	// produces calibrated semantic scores, so the bar is strict.
	modelThreshold = 0.6
	// fallbackThreshold is the looser bar for keyword overlap, which
	// under-scores true matches.
	fallbackThreshold = 0.3

	rankSystemPrompt = "You are an expert at matching documentation to project epics."
	rankTemperature  = 0.3
)

// Matcher ranks wiki pages against an epic title. It asks the model first and
// falls back to deterministic keyword overlap when the model path fails.
type Matcher struct {
	completer ports.ChatCompleter
	logger    *slog.Logger
}

var _ ports.PageMatcher = (*Matcher)(nil)

// NewMatcher wires an optional completer; pass nil to always use the fallback.
func NewMatcher(completer ports.ChatCompleter, logger *slog.Logger) *Matcher {
	return &Matcher{completer: completer, logger: logger}
}

// Match returns pages relevant to the phrase. A failing or absent model path
// is never surfaced as an error; it only switches to the fallback scorer.
func (m *Matcher) Match(ctx context.Context, phrase string, candidates []string) []domain.PageMatch {
	if len(candidates) == 0 {
		return []domain.PageMatch{}
	}

	if m.completer != nil {
		matches, err := m.rankWithModel(ctx, phrase, candidates)
		if err == nil {
			return matches
		}
		m.debug("model ranking failed, using keyword fallback", "error", err)
	}

	return keywordMatch(phrase, candidates)
}

type rankResponse struct {
	Matches []domain.PageMatch `json:"matches"`
}

func (m *Matcher) rankWithModel(ctx context.Context, phrase string, candidates []string) ([]domain.PageMatch, error) {
	raw, err := m.completer.Complete(ctx, rankSystemPrompt, buildRankPrompt(phrase, candidates), rankTemperature)
	if err != nil {
		return nil, fmt.Errorf("rank completion: %w", err)
	}

	var parsed rankResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("decode ranking: %w", err)
	}
	if parsed.Matches == nil {
		return nil, fmt.Errorf("ranking has no matches field")
	}

	kept := make([]domain.PageMatch, 0, len(parsed.Matches))
	for _, match := range parsed.Matches {
		if match.Path == "" || match.Confidence < 0 || match.Confidence > 1 {
			return nil, fmt.Errorf("malformed ranking entry %q", match.Path)
		}
		if match.Confidence >= modelThreshold {
			kept = append(kept, match)
		}
	}

	// Model output order is trusted; no re-sort.
	return kept, nil
}

func buildRankPrompt(phrase string, candidates []string) string {
	var b strings.Builder
	b.WriteString("You are analyzing which wiki pages are relevant to an Epic.\n\n")
	fmt.Fprintf(&b, "Epic Title: %q\n\n", phrase)
	b.WriteString("Available Wiki Pages:\n")
	for _, page := range candidates {
		fmt.Fprintf(&b, "- %s\n", page)
	}
	b.WriteString("\nTask: Identify which wiki pages are related to this epic and rate each match from 0.0 to 1.0 (0 = not related, 1.0 = highly related).\n\n")
	fmt.Fprintf(&b, "Only include pages with confidence >= %.1f.\n\n", modelThreshold)
	b.WriteString("Response format (JSON):\n")
	b.WriteString("{\n  \"matches\": [\n")
	b.WriteString("    {\"path\": \"page-name\", \"confidence\": 0.95, \"reason\": \"why it matches\"},\n")
	b.WriteString("    {\"path\": \"another-page\", \"confidence\": 0.85, \"reason\": \"why it matches\"}\n")
	b.WriteString("  ]\n}\n\nResponse:")
	return b.String()
}

// keywordMatch scores each candidate by the fraction of phrase words appearing
// as substrings of its lower-cased path. Ties keep original candidate order.
func keywordMatch(phrase string, candidates []string) []domain.PageMatch {
	keywords := strings.Fields(strings.ToLower(phrase))
	if len(keywords) == 0 {
		return []domain.PageMatch{}
	}

	matched := make([]domain.PageMatch, 0, len(candidates))
	for _, candidate := range candidates {
		lower := strings.ToLower(candidate)
		hits := 0
		for _, word := range keywords {
			if strings.Contains(lower, word) {
				hits++
			}
		}

		score := float64(hits) / float64(len(keywords))
		if score >= fallbackThreshold {
			matched = append(matched, domain.PageMatch{
				Path:       candidate,
				Confidence: score,
				Reason:     "Keyword match",
			})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Confidence > matched[j].Confidence
	})

	return matched
}

func (m *Matcher) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}
