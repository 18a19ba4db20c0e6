/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/logging"
)

var logger = logging.Logger(logging.SourceProvider)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 2048

// OpenAI-compatible request/response structures
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to an OpenAI-compatible chat completions endpoint such as
// Ollama. Transient failures are retried with exponential backoff.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewClient builds a client from cfg.
func NewClient(cfg config.Config) *Client {
	c := &Client{
		endpoint:   strings.TrimSuffix(cfg.APIURL, "/") + "/v1/chat/completions",
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		maxRetries: max(cfg.MaxRetries, 1),
		baseDelay:  cfg.RetryBaseDelay,
		maxDelay:   cfg.RetryMaxDelay,
	}

	if c.baseDelay <= 0 {
		c.baseDelay = time.Second
	}
	if c.maxDelay < c.baseDelay {
		c.maxDelay = c.baseDelay
	}

	if cfg.RequestsPerSecond > 0 {
		burst := max(int(cfg.RequestsPerSecond), 1)
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return c
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.baseDelay)
	b = retry.WithCappedDuration(c.maxDelay, b)
	b = retry.WithJitterPercent(10, b)
	// MaxRetries counts attempts, the backoff counts retries
	return retry.WithMaxRetries(uint64(c.maxRetries-1), b)
}

// complete sends req and returns the first choice's content.
func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	if req.Model == "" {
		return "", errModelRequired
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	attempt := 0
	return retry.DoValue(ctx, c.backoff(), func(ctx context.Context) (string, error) {
		attempt++

		content, err := c.send(ctx, body)
		if err == nil {
			return content, nil
		}

		if isRetryable(err) && attempt < c.maxRetries {
			logger.Warn("Provider call failed, retrying",
				"model", req.Model,
				"attempt", attempt,
				"max_attempts", c.maxRetries,
				"error", err,
			)
			return "", retry.RetryableError(err)
		}

		return "", err
	})
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call provider: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("Failed to close provider response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("provider error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	args := []any{"model", chatResp.Model, "duration", time.Since(start)}
	if chatResp.Usage != nil {
		args = append(args, "prompt_tokens", chatResp.Usage.PromptTokens, "completion_tokens", chatResp.Usage.CompletionTokens)
	}
	logger.Debug("Provider call complete", args...)

	return chatResp.Choices[0].Message.Content, nil
}

// isRetryable reports timeouts and transient HTTP statuses.
func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
