package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"seriesearch/internal/domain"
)

// Client is a minimal REST client to the catalog backend.
// All failures are returned to the caller; the caller decides which ones are
// user-visible and which degrade silently.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

var _ domain.CatalogAPI = (*Client)(nil)

type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zerolog.Logger // nil disables logging
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Status)
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// Search returns ranked catalog entries for a free-text query.
func (c *Client) Search(ctx context.Context, query string, topN int) ([]domain.ResultItem, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("top_n", strconv.Itoa(topN))
	var rows []json.RawMessage
	if err := c.getJSON(ctx, "/api/search?"+q.Encode(), &rows); err != nil {
		return nil, err
	}
	return decodeResultRows(rows)
}

// Recommend returns ranked entries for a user, excluding what they already rated.
func (c *Client) Recommend(ctx context.Context, userID int, topN int) ([]domain.ResultItem, error) {
	q := url.Values{}
	q.Set("user_id", strconv.Itoa(userID))
	q.Set("exclude_seen", "true")
	q.Set("top_n", strconv.Itoa(topN))
	var rows []json.RawMessage
	if err := c.getJSON(ctx, "/api/search?"+q.Encode(), &rows); err != nil {
		return nil, err
	}
	return decodeResultRows(rows)
}

// SeriesMeta fetches metadata for a batch of titles in a single request.
func (c *Client) SeriesMeta(ctx context.Context, names []string) (map[string]domain.MetaInfo, error) {
	if len(names) == 0 {
		return map[string]domain.MetaInfo{}, nil
	}
	q := url.Values{}
	q.Set("names", strings.Join(names, ","))
	var raw map[string]struct {
		ImageURL string `json:"image_url"`
		Synopsis string `json:"synopsis"`
	}
	if err := c.getJSON(ctx, "/api/series_meta?"+q.Encode(), &raw); err != nil {
		return nil, err
	}
	meta := make(map[string]domain.MetaInfo, len(raw))
	for name, m := range raw {
		meta[name] = domain.MetaInfo{ImageURL: m.ImageURL, Synopsis: m.Synopsis}
	}
	return meta, nil
}

// Rate records a 1..5 score for a title. The ack body is ignored beyond status.
func (c *Client) Rate(ctx context.Context, name string, score int) error {
	body := map[string]any{"serie_name": name, "rating": score}
	return c.postJSON(ctx, "/api/rate", body, nil)
}

// Unrate removes the user's rating for a title. Legacy servers without the
// unrate endpoint accept a rate call with score 0 instead.
func (c *Client) Unrate(ctx context.Context, name string) error {
	body := map[string]any{"serie_name": name}
	err := c.postJSON(ctx, "/api/unrate", body, nil)
	var se *StatusError
	if errors.As(err, &se) && (se.Code == http.StatusNotFound || se.Code == http.StatusMethodNotAllowed) {
		return c.Rate(ctx, name, 0)
	}
	return err
}

// MyRatings fetches the full rating map for the current user.
func (c *Client) MyRatings(ctx context.Context) (map[string]int, error) {
	var out map[string]int
	if err := c.getJSON(ctx, "/api/my_ratings", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]int{}
	}
	return out, nil
}

// decodeResultRows accepts both wire shapes for a result row: the plain
// [name, score] pair and the legacy enriched object
// {name, score, synopsis, image_url}. Shapes may be mixed within one response.
func decodeResultRows(rows []json.RawMessage) ([]domain.ResultItem, error) {
	items := make([]domain.ResultItem, 0, len(rows))
	for _, raw := range rows {
		trimmed := bytes.TrimLeft(raw, " \t\r\n")
		if len(trimmed) == 0 {
			return nil, fmt.Errorf("decode result row: empty row")
		}
		switch trimmed[0] {
		case '[':
			var pair []json.RawMessage
			if err := json.Unmarshal(raw, &pair); err != nil {
				return nil, fmt.Errorf("decode result row: %w", err)
			}
			if len(pair) < 2 {
				return nil, fmt.Errorf("decode result row: pair has %d elements", len(pair))
			}
			var item domain.ResultItem
			if err := json.Unmarshal(pair[0], &item.Name); err != nil {
				return nil, fmt.Errorf("decode result row name: %w", err)
			}
			if err := json.Unmarshal(pair[1], &item.Score); err != nil {
				return nil, fmt.Errorf("decode result row score: %w", err)
			}
			items = append(items, item)
		case '{':
			var obj struct {
				Name     string  `json:"name"`
				Score    float64 `json:"score"`
				Synopsis string  `json:"synopsis"`
				ImageURL string  `json:"image_url"`
			}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return nil, fmt.Errorf("decode result row: %w", err)
			}
			items = append(items, domain.ResultItem{
				Name:     obj.Name,
				Score:    obj.Score,
				Synopsis: obj.Synopsis,
				ImageURL: obj.ImageURL,
			})
		default:
			return nil, fmt.Errorf("decode result row: unexpected shape %q", trimmed[0])
		}
	}
	return items, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Err(err).Msg("request failed")
		return err
	}
	defer resp.Body.Close()
	c.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status", resp.StatusCode).Msg("request done")
	if resp.StatusCode >= 300 {
		return &StatusError{Method: req.Method, URL: req.URL.String(), Code: resp.StatusCode, Status: resp.Status}
	}
	if out != nil {
		dec := json.NewDecoder(resp.Body)
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
		}
	}
	return nil
}
