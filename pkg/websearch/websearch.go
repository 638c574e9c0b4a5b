// Package websearch queries the DuckDuckGo instant-answer API and reduces the
// reply to its abstract. Failures never escape Search: the caller always gets
// some text to show.
package websearch

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

	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the DuckDuckGo instant-answer API.
	DefaultEndpoint = "https://api.duckduckgo.com/"

	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 10 * time.Second

	// NoInformation is returned whenever a lookup fails or has no abstract.
	NoInformation = "No se encontró información"

	maxBodyBytes = 1 << 20
)

// ErrEmptyAbstract is returned by Lookup when the response carries no
// abstract text.
var ErrEmptyAbstract = errors.New("empty abstract")

// Result is the outcome of a search. Text is always safe to show.
type Result struct {
	Query string
	Text  string

	// Err is the lookup failure that caused Text to fall back to
	// NoInformation, if any.
	Err error
}

// Failed reports whether the lookup fell back to NoInformation.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Config configures a Client.
type Config struct {
	// Endpoint is the instant-answer API base URL (defaults to DefaultEndpoint).
	Endpoint string

	// Timeout bounds each lookup (defaults to DefaultTimeout).
	Timeout time.Duration

	// HTTPClient overrides the HTTP client used for lookups.
	HTTPClient *http.Client

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Client performs instant-answer lookups.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client, filling unset Config fields with defaults.
func NewClient(c Config) *Client {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return &Client{
		endpoint:   c.Endpoint,
		timeout:    c.Timeout,
		httpClient: c.HTTPClient,
		logger:     c.Logger,
	}
}

// instantAnswer is the subset of the API response verde reads.
type instantAnswer struct {
	Abstract string `json:"Abstract"`
}

// Search looks query up and never fails: on any error the result text is
// NoInformation and Err records the cause.
func (c *Client) Search(ctx context.Context, query string) Result {
	abstract, err := c.Lookup(ctx, query)
	if err != nil {
		c.logger.Warn("web search failed, using fallback answer",
			zap.String("query", query),
			zap.Error(err),
		)
		return Result{Query: query, Text: NoInformation, Err: err}
	}

	c.logger.Debug("web search answered",
		zap.String("query", query),
		zap.Int("abstract_len", len(abstract)),
	)
	return Result{Query: query, Text: abstract}
}

// Lookup performs a single GET against the endpoint and returns the
// abstract. It returns ErrEmptyAbstract when the field is missing or blank.
func (c *Client) Lookup(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL, err := c.buildURL(query)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if strings.TrimSpace(answer.Abstract) == "" {
		return "", ErrEmptyAbstract
	}

	return answer.Abstract, nil
}

func (c *Client) buildURL(query string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing search endpoint: %w", err)
	}

	params := u.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	u.RawQuery = params.Encode()

	return u.String(), nil
}
