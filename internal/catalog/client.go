package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public TVMaze API.
const DefaultBaseURL = "https://api.tvmaze.com"

// DefaultUserAgent identifies popcorn to the catalog.
const DefaultUserAgent = "popcorn/0.3 (https://github.com/abelbrown/popcorn)"

// maxErrorBody caps how much of a non-2xx body is quoted in an error.
const maxErrorBody = 512

// Client retrieves shows from the catalog. Safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables
// the limiter.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a Client for the catalog at baseURL.
// An empty baseURL selects DefaultBaseURL.
//
// The HTTP client has no timeout: calls end when their context is canceled.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent,
		client:    &http.Client{},
		// TVMaze allows 20 calls per 10 seconds per IP.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tvmazeShow mirrors the show object in TVMaze responses.
type tvmazeShow struct {
	ID        int      `json:"id"`
	Name      *string  `json:"name"`
	Premiered *string  `json:"premiered"`
	Genres    []string `json:"genres"`
	Summary   *string  `json:"summary"`
	Runtime   *int     `json:"runtime"`
	Rating    *struct {
		Average *float64 `json:"average"`
	} `json:"rating"`
	Image *struct {
		Medium string `json:"medium"`
	} `json:"image"`
	Externals *struct {
		IMDb *string `json:"imdb"`
	} `json:"externals"`
}

// tvmazeSearchHit is one element of the /search/shows array.
type tvmazeSearchHit struct {
	Score float64    `json:"score"`
	Show  tvmazeShow `json:"show"`
}

// tvmazeError is the body TVMaze sends for failed lookups. A show body also
// has a "status" key, holding a string such as "Ended", so Status is kept raw
// and only a numeric value counts as an error marker.
type tvmazeError struct {
	Name    string          `json:"name"`
	Message string          `json:"message"`
	Status  json.RawMessage `json:"status"`
}

// code returns the numeric status of an error marker, or 0.
func (e tvmazeError) code() int {
	n, err := strconv.Atoi(string(e.Status))
	if err != nil {
		return 0
	}
	return n
}

// Search returns shows matching query, in catalog order.
// An empty slice (not an error) means the catalog found nothing.
func (c *Client) Search(ctx context.Context, query string) ([]Show, error) {
	endpoint := fmt.Sprintf("%s/search/shows?q=%s", c.baseURL, url.QueryEscape(query))

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, httpError(status, body)
	}

	var hits []tvmazeSearchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	shows := make([]Show, 0, len(hits))
	for _, hit := range hits {
		s := convertShow(hit.Show)
		s.Score = hit.Score
		shows = append(shows, s)
	}
	return shows, nil
}

// Lookup returns the detail record for the show with the given IMDb id.
// Returns ErrNotFound when the catalog answers with a client error marker,
// either as a 4xx status or as a "status" field in the body.
func (c *Client) Lookup(ctx context.Context, imdbID string) (Detail, error) {
	endpoint := fmt.Sprintf("%s/lookup/shows?imdb=%s", c.baseURL, url.QueryEscape(imdbID))

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return Detail{}, err
	}
	if status >= 400 && status < 500 {
		return Detail{}, fmt.Errorf("lookup %s: %w", imdbID, ErrNotFound)
	}
	if status < 200 || status > 299 {
		return Detail{}, httpError(status, body)
	}

	var marker tvmazeError
	if err := json.Unmarshal(body, &marker); err == nil && marker.code() >= 400 {
		return Detail{}, fmt.Errorf("lookup %s: %s: %w", imdbID, marker.Name, ErrNotFound)
	}

	var raw tvmazeShow
	if err := json.Unmarshal(body, &raw); err != nil {
		return Detail{}, fmt.Errorf("decode lookup response: %w", err)
	}
	return convertDetail(raw), nil
}

// get performs a rate-limited GET and returns the body and status code.
// Context cancellation surfaces as an error wrapping ctx.Err().
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	if ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			return nil, 0, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reach catalog: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// httpError builds an error for a non-2xx status, quoting the start of the body.
func httpError(status int, body []byte) error {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody]
	}
	if snippet == "" {
		return fmt.Errorf("HTTP error: %d %s", status, http.StatusText(status))
	}
	return fmt.Errorf("HTTP error: %d %s: %s", status, http.StatusText(status), snippet)
}

func convertShow(raw tvmazeShow) Show {
	s := Show{ID: raw.ID}
	if raw.Name != nil {
		s.Name = *raw.Name
	}
	if raw.Premiered != nil {
		s.Premiered = *raw.Premiered
	}
	if raw.Image != nil {
		s.PosterURL = raw.Image.Medium
	}
	if raw.Externals != nil && raw.Externals.IMDb != nil {
		s.IMDbID = *raw.Externals.IMDb
	}
	return s
}

func convertDetail(raw tvmazeShow) Detail {
	d := Detail{
		Show:           convertShow(raw),
		Genres:         raw.Genres,
		RuntimeMinutes: raw.Runtime,
	}
	if raw.Summary != nil {
		d.Summary = *raw.Summary
	}
	if raw.Rating != nil {
		d.AverageRating = raw.Rating.Average
	}
	return d
}
