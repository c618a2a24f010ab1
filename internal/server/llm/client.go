// Package llm talks to an OpenAI-compatible chat completions endpoint to
// rewrite messages in a court-safe tone.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/logging"
	"github.com/dmitrijs2005/dadkeeper/internal/server/metrics"
)

const systemPrompt = `You are a Family Law King's Counsel in Australia. Rewrite the user's message in a calm, professional, court-safe tone. Highlight any potential legal risks or inflammatory language.
You must output valid JSON only, never markdown code fences, in the form {"rewrittenText": string, "riskHighlights": string}. riskHighlights lists any legal risks or concerns identified, or is empty when there are none.`

// Result is what a rewrite produces.
type Result struct {
	RewrittenText  string  `json:"rewrittenText"`
	RiskHighlights *string `json:"riskHighlights"`
}

type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  logging.Logger
}

// NewClient builds a Client. A zero Timeout means two minutes.
func NewClient(o Options, logger logging.Logger) *Client {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(o.BaseURL, "/"),
		apiKey:  strings.TrimSpace(o.APIKey),
		model:   o.Model,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("module", "llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Rewrite sends text to the model. Any transport or upstream failure is
// reported as common.ErrorDependencyUnavailable. A reply that is not the
// expected JSON is returned verbatim as RewrittenText.
func (c *Client) Rewrite(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	res, outcome, err := c.rewrite(ctx, text)
	metrics.RecordRewrite(outcome, time.Since(start))
	return res, err
}

func (c *Client) rewrite(ctx context.Context, text string) (*Result, string, error) {
	if c.apiKey == "" {
		return nil, "error", fmt.Errorf("%w: language model API key is not configured", common.ErrorDependencyUnavailable)
	}

	payload, err := json.Marshal(chatRequest{
		Model:          c.model,
		ResponseFormat: &responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Original message:\n" + text},
		},
	})
	if err != nil {
		return nil, "error", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, "error", err
	}
	req.Header.Set("Authorization", common.BearerPrefix+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error(ctx, "language model request failed", "error", err)
		return nil, "error", fmt.Errorf("%w: %v", common.ErrorDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "error", fmt.Errorf("%w: read response: %v", common.ErrorDependencyUnavailable, err)
	}
	if resp.StatusCode/100 != 2 {
		c.logger.Error(ctx, "language model returned non-2xx", "status", resp.StatusCode)
		return nil, "error", fmt.Errorf("%w: upstream status %d", common.ErrorDependencyUnavailable, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, "error", fmt.Errorf("%w: bad response: %v", common.ErrorDependencyUnavailable, err)
	}
	if len(chat.Choices) == 0 {
		return nil, "error", fmt.Errorf("%w: no choices in response", common.ErrorDependencyUnavailable)
	}

	content := strings.TrimSpace(chat.Choices[0].Message.Content)
	res, ok := parseContent(content)
	if !ok {
		c.logger.Warn(ctx, "language model reply was not JSON, returning raw text")
		return &Result{RewrittenText: content}, "fallback", nil
	}
	return res, "ok", nil
}

func parseContent(content string) (*Result, bool) {
	var res Result
	if err := json.Unmarshal([]byte(content), &res); err != nil || strings.TrimSpace(res.RewrittenText) == "" {
		return nil, false
	}
	if res.RiskHighlights != nil && strings.TrimSpace(*res.RiskHighlights) == "" {
		res.RiskHighlights = nil
	}
	return &res, true
}
