// Package moderation gates post submissions through a generative-AI content
// classifier. The adapter is an untrusted, fallible oracle: any transport or
// parse failure resolves permissively so an outage never blocks posting.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kanishk-8/EcoCircle/internal/observability"
)

// Submission is the content under review.
type Submission struct {
	Title    string
	Content  string
	Category string
	HasImage bool
}

// Judgment is the classifier's verdict on a submission.
type Judgment struct {
	Relevant    bool     `json:"eco_relevant"`
	Appropriate bool     `json:"appropriate"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"reasons,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	// FailOpen marks a permissive verdict produced because the adapter was
	// unavailable, not because the content passed review.
	FailOpen bool `json:"fail_open,omitempty"`
}

// Approved reports whether the submission may proceed.
func (j Judgment) Approved() bool {
	return j.FailOpen || (j.Relevant && j.Appropriate)
}

// Classifier reviews submissions. Implementations never return an error;
// failure modes fold into a fail-open Judgment.
type Classifier interface {
	Classify(ctx context.Context, sub Submission) Judgment
}

// Disabled is a Classifier that approves everything. Used when no
// moderation endpoint is configured (offline mode, tests).
type Disabled struct{}

func (Disabled) Classify(context.Context, Submission) Judgment {
	return Judgment{Relevant: true, Appropriate: true, Confidence: 1}
}

// Client calls a chat-completions style generative-AI endpoint.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	httpc    *http.Client
	log      *slog.Logger
}

// NewClient creates a moderation client. timeout bounds each classify call.
func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		httpc:    &http.Client{Timeout: timeout},
		log:      observability.GlobalLogger.Logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify sends the submission for review. Adapter unavailability, a
// non-200 status, or an unparseable reply all resolve fail-open.
func (c *Client) Classify(ctx context.Context, sub Submission) Judgment {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: classifierPrompt},
			{Role: "user", Content: buildReviewPayload(sub)},
		},
	})
	if err != nil {
		return c.failOpen(ctx, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return c.failOpen(ctx, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return c.failOpen(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.failOpen(ctx, fmt.Errorf("moderation endpoint returned status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return c.failOpen(ctx, err)
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return c.failOpen(ctx, err)
	}
	if len(chat.Choices) == 0 {
		return c.failOpen(ctx, fmt.Errorf("moderation reply contained no choices"))
	}

	var judgment Judgment
	if err := json.Unmarshal([]byte(stripCodeFence(chat.Choices[0].Message.Content)), &judgment); err != nil {
		return c.failOpen(ctx, err)
	}
	if !judgment.Approved() {
		observability.ModerationRejections.Inc()
	}
	return judgment
}

func (c *Client) failOpen(ctx context.Context, err error) Judgment {
	observability.ModerationFailOpen.Inc()
	c.log.WarnContext(ctx, "moderation adapter unavailable, passing submission through",
		slog.String("error", err.Error()),
	)
	return Judgment{Relevant: true, Appropriate: true, Confidence: 0, FailOpen: true}
}

func buildReviewPayload(sub Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", sub.Category)
	if sub.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", sub.Title)
	}
	fmt.Fprintf(&b, "Has image attachment: %t\n", sub.HasImage)
	fmt.Fprintf(&b, "Post text:\n%s\n", sub.Content)
	return b.String()
}

// stripCodeFence unwraps a ```json ... ``` block if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
