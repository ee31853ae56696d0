// Package sitefetch reads a business website through a reader proxy and
// distills it into the snapshot the analysis pipeline consumes.
package sitefetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the site snapshot operation.
type Client interface {
	// Fetch reads targetURL and returns a structured snapshot of the page.
	Fetch(ctx context.Context, targetURL string) (*Snapshot, error)
}

// Snapshot is the distilled view of a landing page.
type Snapshot struct {
	URL             string   `json:"url"`
	Headline        string   `json:"headline,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	BodyText        string   `json:"body_text,omitempty"`
	Prices          []string `json:"prices,omitempty"`
	CTAs            []string `json:"ctas,omitempty"`
	Testimonials    []string `json:"testimonials,omitempty"`
	Images          []string `json:"images,omitempty"`
}

// FetchError reports a site that could not be read.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sitefetch: %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("sitefetch: %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// readerResponse is the reader proxy's JSON envelope.
type readerResponse struct {
	Code int        `json:"code"`
	Data readerData `json:"data"`
}

type readerData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Content     string `json:"content"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom reader base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a site snapshot client over a Jina-style reader proxy.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://r.jina.ai",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "sitefetch: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("sitefetch: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) Fetch(ctx context.Context, targetURL string) (*Snapshot, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, targetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sitefetch: create request")
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Return-Format", "markdown")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, &FetchError{URL: targetURL, Err: err}
	}
	if statusCode != http.StatusOK {
		return nil, &FetchError{URL: targetURL, StatusCode: statusCode}
	}

	var result readerResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &FetchError{URL: targetURL, Err: eris.Wrap(err, "sitefetch: unmarshal response")}
	}

	snap := parseContent(result.Data.Content)
	snap.URL = targetURL
	if snap.Headline == "" {
		snap.Headline = result.Data.Title
	}
	snap.MetaDescription = result.Data.Description
	return snap, nil
}
