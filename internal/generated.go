package internal

import (
	"context"
	"fmt"
	"html/template"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const summaryRefresh = time.Hour

// SummaryOptions holds options for the LLM-generated summary card.
type SummaryOptions struct {
	OpenAIAPIKey string
	Prompt       string
}

func (c Config) GetSummaryOptions() SummaryOptions {
	return SummaryOptions(c.Summary)
}

// Summarizer writes a short text about the day's numbers. Texts are cached
// per date and regenerated at most once an hour.
type Summarizer struct {
	prompt   string
	complete func(ctx context.Context, prompt string) (string, error)

	mu    sync.Mutex
	cache map[string]summary
}

type summary struct {
	text    string
	created time.Time
}

// NewSummarizer creates a Summarizer backed by OpenAI.
func NewSummarizer(options SummaryOptions) *Summarizer {
	client := openai.NewClient(
		option.WithAPIKey(options.OpenAIAPIKey),
	)
	return &Summarizer{
		prompt: options.Prompt,
		complete: func(ctx context.Context, prompt string) (string, error) {
			return fetchCompletion(ctx, client, prompt)
		},
		cache: map[string]summary{},
	}
}

// NewFakeSummarizer creates a Summarizer with canned texts for testing purposes.
func NewFakeSummarizer() *Summarizer {
	blurbs := []string{
		"The sun did most of the work today. The battery is happy!",
		"A cloudy day: the house drew more from the grid than usual.",
		"Quiet day at home. The fridge was the busiest appliance.",
	}
	return &Summarizer{
		complete: func(context.Context, string) (string, error) {
			return blurbs[rand.Int()%len(blurbs)], nil
		},
		cache: map[string]summary{},
	}
}

// summaryDay names the day of a summary: "Today" for the default date,
// otherwise the date the way the header shows it.
func summaryDay(date string) string {
	if date == "" {
		return "Today"
	}
	if t, err := time.Parse(time.DateOnly, date); err == nil {
		return t.Format("Monday 2 January")
	}
	return date
}

// Card returns the summary card for a date.
func (s *Summarizer) Card(ctx context.Context, date string, stats []ChartStats) (Card, error) {
	day := summaryDay(date)
	card := Card{
		ID:       "summary",
		Title:    titleHTML(day),
		Type:     CardTypeText,
		Priority: 10,
	}
	if len(stats) == 0 {
		return card, nil
	}

	s.mu.Lock()
	cached, ok := s.cache[date]
	s.mu.Unlock()
	if ok && time.Since(cached.created) < summaryRefresh {
		card.Body = template.HTML(template.HTMLEscapeString(cached.text))
		return card, nil
	}

	prompt := s.prompt + "\n\n"
	if date != "" {
		prompt += fmt.Sprintf("These numbers are from %s, not from today.\n", day)
	}
	text, err := s.complete(ctx, prompt+describeStats(stats))
	if err != nil {
		return card, fmt.Errorf("failed to generate summary: %w", err)
	}

	s.mu.Lock()
	s.cache[date] = summary{text: text, created: time.Now()}
	s.mu.Unlock()

	card.Body = template.HTML(template.HTMLEscapeString(text))
	return card, nil
}

func describeStats(stats []ChartStats) string {
	var b strings.Builder
	for _, s := range stats {
		fmt.Fprintf(&b, "%s: %s between %.1f%s and %.1f%s, now %.1f%s",
			s.Title, s.Label, s.Min, s.Unit, s.Max, s.Unit, s.Last, s.Unit)
		if s.HasSecondary {
			fmt.Fprintf(&b, ", %s so far %.0f%s", s.SecondaryLabel, s.SecondaryLast, s.SecondaryUnit)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func fetchCompletion(ctx context.Context, client openai.Client, prompt string) (string, error) {
	response, err := client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(fmt.Sprintf("The current time is %s", time.Now().Format("January 2, 2006 15:04"))),
				openai.UserMessage(prompt),
			},
			Model: openai.ChatModelGPT4o,
		},
	)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return response.Choices[0].Message.Content, nil
}
