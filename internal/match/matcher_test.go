package match

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string, _ float64) (string, error) {
	f.calls++
	return f.response, f.err
}

func TestKeywordFallbackSelectsRelated(t *testing.T) {
	t.Parallel()

	m := NewMatcher(nil, nil)
	candidates := []string{"Wallet-Setup", "Wallet-Payments", "Unrelated-Page"}

	matches := m.Match(context.Background(), "Wallet Top-Up Feature", candidates)

	require.Len(t, matches, 2)
	assert.Equal(t, "Wallet-Setup", matches[0].Path)
	assert.Equal(t, "Wallet-Payments", matches[1].Path)
	for _, match := range matches {
		assert.GreaterOrEqual(t, match.Confidence, fallbackThreshold)
	}
}

func TestKeywordFallbackSortsDescending(t *testing.T) {
	t.Parallel()

	m := NewMatcher(nil, nil)
	candidates := []string{"setup-guide", "wallet-setup-guide", "misc"}

	matches := m.Match(context.Background(), "wallet setup", candidates)

	require.Len(t, matches, 2)
	assert.Equal(t, "wallet-setup-guide", matches[0].Path)
	assert.Equal(t, 1.0, matches[0].Confidence)
	assert.Equal(t, "setup-guide", matches[1].Path)
	assert.Equal(t, 0.5, matches[1].Confidence)
}

func TestKeywordFallbackStableOnTies(t *testing.T) {
	t.Parallel()

	m := NewMatcher(nil, nil)
	candidates := []string{"wallet-a", "wallet-b", "wallet-c"}

	matches := m.Match(context.Background(), "wallet setup", candidates)

	require.Len(t, matches, 3)
	assert.Equal(t, "wallet-a", matches[0].Path)
	assert.Equal(t, "wallet-b", matches[1].Path)
	assert.Equal(t, "wallet-c", matches[2].Path)
}

func TestKeywordFallbackCaseInsensitive(t *testing.T) {
	t.Parallel()

	m := NewMatcher(nil, nil)
	candidates := []string{"Wallet-Setup", "WALLET-PAYMENTS", "other"}

	upper := m.Match(context.Background(), "Wallet Setup", candidates)
	lower := m.Match(context.Background(), "wallet setup", candidates)

	require.Equal(t, len(upper), len(lower))
	for i := range upper {
		assert.Equal(t, upper[i].Path, lower[i].Path)
		assert.Equal(t, upper[i].Confidence, lower[i].Confidence)
	}
}

func TestMatchEmptyCandidatesSkipsModel(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{response: `{"matches": []}`}
	m := NewMatcher(completer, nil)

	matches := m.Match(context.Background(), "anything", nil)

	assert.Empty(t, matches)
	assert.Zero(t, completer.calls)
}

func TestMatchModelPathTrustsOrder(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{response: `{
		"matches": [
			{"path": "Wallet-Payments", "confidence": 0.7, "reason": "payments flow"},
			{"path": "Wallet-Setup", "confidence": 0.95, "reason": "setup docs"},
			{"path": "Unrelated-Page", "confidence": 0.2, "reason": "weak"}
		]
	}`}
	m := NewMatcher(completer, nil)

	matches := m.Match(context.Background(), "Wallet Top-Up Feature", []string{"Wallet-Setup", "Wallet-Payments", "Unrelated-Page"})

	require.Len(t, matches, 2)
	assert.Equal(t, "Wallet-Payments", matches[0].Path)
	assert.Equal(t, "Wallet-Setup", matches[1].Path)
	assert.Equal(t, 1, completer.calls)
}

func TestMatchModelErrorFallsBack(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{err: errors.New("upstream down")}
	m := NewMatcher(completer, nil)

	matches := m.Match(context.Background(), "wallet setup", []string{"Wallet-Setup", "other"})

	require.Len(t, matches, 1)
	assert.Equal(t, "Wallet-Setup", matches[0].Path)
	assert.Equal(t, "Keyword match", matches[0].Reason)
}

func TestMatchModelMalformedFallsBack(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":                "Sure! Here are the relevant pages.",
		"no matches field":        `{"pages": []}`,
		"entry without path":      `{"matches": [{"confidence": 0.9}]}`,
		"confidence out of range": `{"matches": [{"path": "Wallet-Setup", "confidence": 1.5}]}`,
	}

	for name, response := range cases {
		response := response
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m := NewMatcher(&fakeCompleter{response: response}, nil)
			matches := m.Match(context.Background(), "wallet setup", []string{"Wallet-Setup", "other"})

			require.Len(t, matches, 1)
			assert.Equal(t, "Keyword match", matches[0].Reason)
		})
	}
}

func TestRankPromptListsCandidates(t *testing.T) {
	t.Parallel()

	prompt := buildRankPrompt("Wallet Top-Up Feature", []string{"Wallet-Setup", "Wallet-Payments"})

	assert.Contains(t, prompt, `Epic Title: "Wallet Top-Up Feature"`)
	assert.Contains(t, prompt, "- Wallet-Setup\n")
	assert.Contains(t, prompt, "- Wallet-Payments\n")
	assert.Contains(t, prompt, "confidence >= 0.6")
}
