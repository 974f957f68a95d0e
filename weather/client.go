package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenWeatherMap API host
	DefaultBaseURL = "http://api.openweathermap.org"

	currentEndpoint     = "/data/2.5/weather"
	defaultHTTPTimeout  = 30 * time.Second
	maxResponseBodySize = 1 << 20
)

var (
	errAPIKeyMissing = errors.New("weather: API key is required")
	errZipMissing    = errors.New("weather: zip code is required")
)

// FetchFailure wraps any error that prevented a fresh snapshot from being
// fetched. Callers are expected to keep showing the previous snapshot.
type FetchFailure struct {
	Err error
}

func (e *FetchFailure) Error() string {
	return "weather: fetch failed: " + e.Err.Error()
}

func (e *FetchFailure) Unwrap() error {
	return e.Err
}

// IsFetchFailure returns true if err is, or wraps, a FetchFailure.
func IsFetchFailure(err error) bool {
	var ff *FetchFailure
	return errors.As(err, &ff)
}

// HTTPClient is the subset of *http.Client used to fetch reports
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client fetches the current weather for a US zip code.
type Client struct {
	baseURL string
	apiKey  string
	zip     string
	http    HTTPClient
	now     func() time.Time
}

// ClientOption mutates the client during construction.
type ClientOption func(*Client)

// WithBaseURL overrides the API host.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient installs a custom HTTP client.
func WithHTTPClient(hc HTTPClient) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithClock replaces the clock used when a report has no observation time.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient builds a client for the given API key and zip code.
func NewClient(apiKey, zip string, opts ...ClientOption) (*Client, error) {
	apiKey, zip = strings.TrimSpace(apiKey), strings.TrimSpace(zip)
	if apiKey == "" {
		return nil, errAPIKeyMissing
	}
	if zip == "" {
		return nil, errZipMissing
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		zip:     zip,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) url() string {
	q := url.Values{}
	q.Set("zip", c.zip+",us")
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	return c.baseURL + currentEndpoint + "?" + q.Encode()
}

// Report fetches and decodes the raw report.
func (c *Client) Report(ctx context.Context) (*Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(), nil)
	if err != nil {
		return nil, &FetchFailure{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchFailure{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, &FetchFailure{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchFailure{Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var r Report
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, &FetchFailure{Err: fmt.Errorf("decode: %w", err)}
	}
	return &r, nil
}

// Fetch returns a fresh snapshot. Every error is a *FetchFailure.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	r, err := c.Report(ctx)
	if err != nil {
		return nil, err
	}
	return r.Snapshot(c.now()), nil
}
