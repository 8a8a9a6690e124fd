package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	classifierSystem    = "You are a financial assistant that categorizes transactions into concise categories."
	classifierMaxTokens = 20

	// Bounds the shared upstream call, which outlives any single caller.
	classifierCallTimeout = 15 * time.Second
)

// Classifier maps a transaction reason to a short category label.
type Classifier struct {
	client *Client
	group  singleflight.Group
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// Classify returns the raw label. Identical reasons classified at the same
// time share one upstream call. The shared call does not inherit the first
// caller's cancellation; each caller stops waiting when its own ctx is done.
func (c *Classifier) Classify(ctx context.Context, reason string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := strings.ToLower(strings.TrimSpace(reason))

	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), classifierCallTimeout)
		defer cancel()
		return c.client.complete(callCtx, request{
			system:      classifierSystem,
			prompt:      classifierPrompt(reason),
			maxTokens:   classifierMaxTokens,
			temperature: 0.3,
		})
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func classifierPrompt(reason string) string {
	return fmt.Sprintf("Categorize this transaction based on the reason: '%s'. "+
		"Reply with only the category name (one or two words). "+
		"Common categories: Food, Transport, Rent, Entertainment, Health, Utilities, Shopping, Salary, Investment, Other.",
		strings.TrimSpace(reason))
}
