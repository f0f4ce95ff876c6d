// SPDX-License-Identifier: EPL-2.0

// Package generate talks to the audio generation backend. The backend turns
// a text prompt into an encoded audio file; this package only fetches bytes.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	ErrEmptyPrompt = errors.New("prompt is empty")
	ErrBackend     = errors.New("generation backend error")
	ErrEmptyAudio  = errors.New("backend returned no audio")
	ErrTooLarge    = errors.New("backend response exceeds limit")
)

// BackendError is a non-2xx answer. It matches ErrBackend.
type BackendError struct {
	Status  int
	Message string
	Details string
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown error from backend"
	}
	if e.Details != "" {
		return fmt.Sprintf("generation failed (%d): %s: %s", e.Status, msg, e.Details)
	}
	return fmt.Sprintf("generation failed (%d): %s", e.Status, msg)
}

func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// Client calls POST {baseURL}/generate-audio.
type Client struct {
	baseURL  string
	http     *http.Client
	maxBytes int64
	log      *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMaxBytes caps the accepted audio size.
func WithMaxBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 2 * time.Minute},
		maxBytes: 50 << 20,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "generate")
	return c
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Generate returns the encoded audio produced for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-audio", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Info("requesting audio", "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		berr := &BackendError{Status: resp.StatusCode}
		var er errorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&er); err == nil {
			berr.Message = er.Error
			berr.Details = er.Details
		}
		c.log.Error("backend rejected prompt", "status", resp.StatusCode, "error", berr.Message)
		return nil, berr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	c.log.Info("audio received", "bytes", len(data), "content_type", resp.Header.Get("Content-Type"))
	return data, nil
}
