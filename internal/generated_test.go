package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizerCard(t *testing.T) {
	var prompts []string
	s := &Summarizer{
		prompt: "Summarize.",
		complete: func(ctx context.Context, prompt string) (string, error) {
			prompts = append(prompts, prompt)
			return "Sunny <b>day</b>", nil
		},
		cache: map[string]summary{},
	}
	stats := []ChartStats{{
		Title: "Grid", Label: "Power", Unit: "W", Min: 10, Max: 300, Last: 120,
		HasSecondary: true, SecondaryLabel: "Energy", SecondaryUnit: "Wh", SecondaryLast: 850,
	}}

	card, err := s.Card(context.Background(), "", stats)
	require.NoError(t, err)
	assert.Equal(t, "summary", card.ID)
	assert.Equal(t, "Today", string(card.Title))
	assert.True(t, card.Valid())
	assert.Equal(t, "Sunny &lt;b&gt;day&lt;/b&gt;", string(card.Body))
	require.Len(t, prompts, 1)
	assert.Equal(t, "Summarize.\n\nGrid: Power between 10.0W and 300.0W, now 120.0W, Energy so far 850Wh\n", prompts[0])

	_, err = s.Card(context.Background(), "", stats)
	require.NoError(t, err)
	assert.Len(t, prompts, 1, "cached for the same date")

	past, err := s.Card(context.Background(), "2024-01-01", stats)
	require.NoError(t, err)
	assert.Equal(t, "Monday 1 January", string(past.Title))
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "These numbers are from Monday 1 January, not from today.")
	assert.NotContains(t, prompts[0], "not from today")
}

func TestSummaryDay(t *testing.T) {
	assert.Equal(t, "Today", summaryDay(""))
	assert.Equal(t, "Sunday 31 December", summaryDay("2023-12-31"))
	assert.Equal(t, "latest", summaryDay("latest"))
}

func TestSummarizerCardEmpty(t *testing.T) {
	card, err := NewFakeSummarizer().Card(context.Background(), "", nil)
	require.NoError(t, err)
	assert.False(t, card.Valid())
}

func TestSummarizerCardError(t *testing.T) {
	s := &Summarizer{
		complete: func(context.Context, string) (string, error) {
			return "", errors.New("quota exceeded")
		},
		cache: map[string]summary{},
	}
	card, err := s.Card(context.Background(), "", []ChartStats{{Title: "Grid"}})
	require.Error(t, err)
	assert.False(t, card.Valid())
}
