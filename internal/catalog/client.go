package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	popularPath = "/api/tmdb/popular"
	searchPath  = "/api/search/movies"
	moviePath   = "/api/tmdb/movie/"
)

// Client talks to the movie catalog API. It neither caches nor retries.
type Client struct {
	baseURL string
	http    *http.Client
	group   singleflight.Group
	logger  observability.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger observability.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Popular coalesces concurrent calls into one upstream request.
func (c *Client) Popular(ctx context.Context) ([]domain.Movie, error) {
	ch := c.group.DoChan("popular", func() (interface{}, error) {
		return c.list(context.WithoutCancel(ctx), "popular", popularPath, nil)
	})
	select {
	case <-ctx.Done():
		return nil, &domain.NetworkError{Op: "popular movies", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneMovies(res.Val.([]domain.Movie)), nil
	}
}

// Search treats a blank query as a request for the popular list.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Popular(ctx)
	}
	return c.list(ctx, "search", searchPath, url.Values{"q": []string{query}})
}

func (c *Client) Movie(ctx context.Context, id int) (domain.Movie, error) {
	var m domain.Movie
	body, err := c.get(ctx, "movie", moviePath+strconv.Itoa(id), nil)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return m, &domain.NetworkError{Op: "decode movie", Err: err}
	}
	return m, nil
}

func (c *Client) list(ctx context.Context, op, path string, q url.Values) ([]domain.Movie, error) {
	body, err := c.get(ctx, op, path, q)
	if err != nil {
		return nil, err
	}
	movies, err := decodeMovies(body)
	if err != nil {
		return nil, &domain.NetworkError{Op: "decode " + op, Err: err}
	}
	return movies, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.CatalogRequestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		c.logger.WithField("operation", op).WithError(err).Warn("catalog request failed")
		return nil, &domain.NetworkError{Op: "catalog " + op, Err: err}
	}
	defer resp.Body.Close()
	observability.CatalogRequestDuration.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode == http.StatusNotFound && op == "movie" {
		return nil, errors.Wrapf(domain.ErrNotFound, "catalog %s", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.NetworkError{Op: "catalog " + op, Err: errors.Newf("unexpected status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: "read catalog " + op, Err: err}
	}
	return body, nil
}

// decodeMovies accepts a bare array or an object with a results array.
func decodeMovies(body []byte) ([]domain.Movie, error) {
	trimmed := bytes.TrimSpace(body)
	movies := []domain.Movie{}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Results []domain.Movie `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, err
		}
		if page.Results != nil {
			movies = page.Results
		}
		return movies, nil
	}
	if err := json.Unmarshal(trimmed, &movies); err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []domain.Movie{}
	}
	return movies, nil
}

func cloneMovies(in []domain.Movie) []domain.Movie {
	return append(make([]domain.Movie, 0, len(in)), in...)
}
