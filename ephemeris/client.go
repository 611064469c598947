// Package ephemeris fetches planetary state vectors from the JPL Horizons API and caches them.
package ephemeris

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultURL is the Horizons API endpoint.
const DefaultURL = "https://ssd-api.jpl.nasa.gov/horizons.api"

const dateFormat = "2006-01-02"

// Request is a vectors ephemeris request.
type Request struct {
	Body        string
	Start, Stop time.Time
	Step        string // e.g. "1d"
}

// Key returns the cache key of the request.
func (r Request) Key() (string, error) {
	id, err := BodyID(r.Body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("horizons_%d_%s_%s_%s", id, r.Start.Format(dateFormat), r.Stop.Format(dateFormat), r.step()), nil
}

func (r Request) step() string {
	if r.Step == "" {
		return "1d"
	}
	return r.Step
}

func (r Request) query() (url.Values, error) {
	id, err := BodyID(r.Body)
	if err != nil {
		return nil, err
	}
	if !r.Stop.After(r.Start) {
		return nil, fmt.Errorf("stop %s must be after start %s", r.Stop.Format(dateFormat), r.Start.Format(dateFormat))
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("COMMAND", strconv.Itoa(id))
	q.Set("OBJ_DATA", "NO")
	q.Set("MAKE_EPHEM", "YES")
	q.Set("EPHEM_TYPE", "VECTORS")
	q.Set("START_TIME", r.Start.Format(dateFormat))
	q.Set("STOP_TIME", r.Stop.Format(dateFormat))
	q.Set("STEP_SIZE", r.step())
	return q, nil
}

// StatusError is returned for non 2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("horizons request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client is a rate limited Horizons client.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	limiter *rate.Limiter
	cache   *Cache
	logger  kitlog.Logger
}

// NewClient returns a client issuing at most rps requests per second. The cache may be nil.
func NewClient(baseURL string, rps float64, cache *Cache, logger kitlog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cache:   cache,
		logger:  kitlog.With(logger, "subsys", "ephemeris"),
	}
}

// Vectors returns the Horizons JSON document of the request, from the cache if possible.
func (c *Client) Vectors(ctx context.Context, req Request) (json.RawMessage, error) {
	key, err := req.Key()
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if doc, ok := c.cache.Get(key); ok {
			return doc, nil
		}
	}
	doc, err := c.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Put(key, doc); err != nil {
			level.Warn(c.logger).Log("key", key, "status", "not cached", "err", err)
		}
	}
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, req Request) (json.RawMessage, error) {
	q, err := req.query()
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.BaseURL + "?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("horizons request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("horizons response: %w", err)
	}
	level.Debug(c.logger).Log("body", req.Body, "status", resp.StatusCode, "bytes", len(body), "took", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	if !json.Valid(body) {
		return nil, errors.New("horizons response is not valid JSON")
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return nil, fmt.Errorf("horizons: %s", apiErr.Error)
	}
	return body, nil
}

// Prefetch fetches all requests concurrently, with at most limit requests in flight, and returns the
// documents in the order of the requests.
func (c *Client) Prefetch(ctx context.Context, reqs []Request, limit int) ([]json.RawMessage, error) {
	docs := make([]json.RawMessage, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			doc, err := c.Vectors(ctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", req.Body, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
