// Package hfgen implements ports.Generator against the Hugging Face
// Inference API.
package hfgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/karshi-k/agentic-honeypot/internal/ports"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models/"

// Client is a minimal chat client for TGI-compatible inference endpoints.
type Client struct {
	httpClient *http.Client
	url        string
	token      string
}

// NewClient creates a generation client for the given model. The timeout
// bounds the whole request; an expired deadline surfaces as
// ports.ErrGenerationTimeout.
func NewClient(token, model string, timeout time.Duration) (*Client, error) {
	if token == "" {
		return nil, errors.New("hfgen: token is required")
	}
	if model == "" {
		return nil, errors.New("hfgen: model is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        defaultBaseURL + model,
		token:      token,
	}, nil
}

// NewClientWithURL creates a client against an explicit endpoint URL.
// Used by tests and self-hosted TGI deployments.
func NewClientWithURL(token, url string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		token:      token,
	}
}

type chatRequest struct {
	Inputs chatInputs `json:"inputs"`
}

type chatInputs struct {
	Messages    []ports.Turn `json:"messages"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
	TopP        float64      `json:"top_p"`
}

// Generate posts the turns as chat-style JSON and decodes whichever
// response shape the backend produced.
func (c *Client) Generate(ctx context.Context, turns []ports.Turn, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Inputs: chatInputs{
			Messages:    turns,
			MaxTokens:   maxTokens,
			Temperature: 0.7,
			TopP:        0.9,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ports.ErrGenerationService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ports.ErrGenerationService, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: %v", ports.ErrGenerationTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ports.ErrGenerationService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %d", ports.ErrGenerationService, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ports.ErrGenerationService, err)
	}

	text, err := decodeCompletion(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ports.ErrGenerationService, err)
	}
	return text, nil
}

// decodeCompletion handles the response variants seen across inference
// backends: an OpenAI-style choices object, a bare generated_text object,
// or a single-element generated_text array.
func decodeCompletion(raw []byte) (string, error) {
	var choices struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &choices); err == nil && len(choices.Choices) > 0 {
		return choices.Choices[0].Message.Content, nil
	}

	var object struct {
		GeneratedText *string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &object); err == nil && object.GeneratedText != nil {
		return *object.GeneratedText, nil
	}

	var list []struct {
		GeneratedText *string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 && list[0].GeneratedText != nil {
		return *list[0].GeneratedText, nil
	}

	return "", fmt.Errorf("unrecognized completion payload: %.100s", string(raw))
}

// isTimeout distinguishes deadline expiry from other transport failures.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
