package news

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// BackendClient reads from a newsreel web backend, which proxies GNews and
// adds regional sources.
type BackendClient struct {
	client
	baseURL string
}

// NewBackendClient returns a client for cfg.BaseURL.
func NewBackendClient(cfg Config, opts ...ClientOption) (*BackendClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("news.base_url is required for the backend source")
	}
	return &BackendClient{
		client:  newClient(cfg, opts),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// FetchArticles calls /get_news.
func (c *BackendClient) FetchArticles(ctx context.Context, category, lang string) ([]Article, error) {
	q := url.Values{}
	q.Set("category", category)
	q.Set("language", lang)
	return c.getPage(ctx, c.baseURL+"/get_news?"+q.Encode())
}

// SearchArticles calls /api/search_news.
func (c *BackendClient) SearchArticles(ctx context.Context, query, lang string) ([]Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("language", lang)
	return c.getPage(ctx, c.baseURL+"/api/search_news?"+q.Encode())
}

// BaseURL returns the backend root.
func (c *BackendClient) BaseURL() string {
	return c.baseURL
}
