package news

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// DefaultGNewsURL is the GNews v4 API root.
const DefaultGNewsURL = "https://gnews.io/api/v4"

// GNewsClient reads top headlines and search results from GNews.
type GNewsClient struct {
	client
	baseURL string
	apiKey  string
	country string
	limit   int
}

// NewGNewsClient returns a client for cfg. The API key falls back to the
// GNEWS_API_KEY environment variable.
func NewGNewsClient(cfg Config, opts ...ClientOption) (*GNewsClient, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("GNEWS_API_KEY")
	}
	if key == "" {
		return nil, ErrNoAPIKey
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultGNewsURL
	}
	limit := cfg.Max
	if limit <= 0 {
		limit = DefaultConfig().Max
	}
	return &GNewsClient{
		client:  newClient(cfg, opts),
		baseURL: strings.TrimSuffix(base, "/"),
		apiKey:  key,
		country: cfg.Country,
		limit:   limit,
	}, nil
}

// FetchArticles returns the top headlines for category in lang.
func (c *GNewsClient) FetchArticles(ctx context.Context, category, lang string) ([]Article, error) {
	q := c.params(lang)
	q.Set("category", category)
	return c.getPage(ctx, c.baseURL+"/top-headlines?"+q.Encode())
}

// SearchArticles returns articles matching query in lang.
func (c *GNewsClient) SearchArticles(ctx context.Context, query, lang string) ([]Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	q := c.params(lang)
	q.Set("q", query)
	return c.getPage(ctx, c.baseURL+"/search?"+q.Encode())
}

func (c *GNewsClient) params(lang string) url.Values {
	q := url.Values{}
	q.Set("lang", lang)
	if c.country != "" {
		q.Set("country", c.country)
	}
	q.Set("max", strconv.Itoa(c.limit))
	q.Set("apikey", c.apiKey)
	return q
}
