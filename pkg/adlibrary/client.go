// Package adlibrary searches a public ad-library mirror for a business's
// active advertising.
package adlibrary

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadflow-cli/internal/resilience"
)

// Client defines the ad-library search operation.
type Client interface {
	// Search returns the ads currently or recently run by the advertiser.
	Search(ctx context.Context, advertiser string) (*SearchResult, error)
}

// SearchResult holds the ads found for one advertiser.
type SearchResult struct {
	Advertiser string `json:"advertiser"`
	Ads        []Ad   `json:"ads"`
}

// Ad is a single creative from the library.
type Ad struct {
	ID          string `json:"id"`
	PageName    string `json:"page_name"`
	Text        string `json:"text"`
	Platform    string `json:"platform,omitempty"`
	DaysRunning int    `json:"days_running"`
	Active      bool   `json:"active"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets the mirror base URL.
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

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an ad-library search client.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, advertiser string) (*SearchResult, error) {
	if advertiser == "" {
		return nil, eris.New("adlibrary: advertiser must not be blank")
	}

	reqURL := c.baseURL + "/ads?advertiser=" + url.QueryEscape(advertiser)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "adlibrary: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "adlibrary: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "adlibrary: read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		// No ads on file is a normal empty result.
		return &SearchResult{Advertiser: advertiser}, nil
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := eris.Errorf("adlibrary: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return nil, apiErr
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "adlibrary: unmarshal response")
	}
	result.Advertiser = advertiser
	return &result, nil
}
