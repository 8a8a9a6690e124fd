package anthropic

import (
	"context"
	"fmt"

	"flowfunds/internal/domain/insight"
)

const summarizerSystem = "You are a friendly financial assistant."

// Summarizer writes the one-sentence evening push text.
type Summarizer struct {
	client *Client
}

func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Summarize(ctx context.Context, sum insight.Summary) (string, error) {
	prompt := fmt.Sprintf("Write a 1-sentence friendly push notification summary for someone who spent %s XAF today. "+
		"Breakdown: %s. Be encouraging or humorous. Emoji allowed.",
		sum.Total.StringFixed(0), sum.BreakdownText())

	return s.client.complete(ctx, request{
		system:      summarizerSystem,
		prompt:      prompt,
		temperature: 0.7,
	})
}
