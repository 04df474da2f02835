package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Provider fetches articles.
type Provider interface {
	FetchArticles(ctx context.Context, category, lang string) ([]Article, error)
	SearchArticles(ctx context.Context, query, lang string) ([]Article, error)
}

// Source names accepted in Config.Source.
const (
	SourceGNews   = "gnews"
	SourceBackend = "backend"
	SourceFile    = "file"
)

// Config holds the "news" config section.
type Config struct {
	Source            string        `mapstructure:"source"`
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	File              string        `mapstructure:"file"`
	Country           string        `mapstructure:"country"`
	Max               int           `mapstructure:"max"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// DefaultConfig returns the default news settings.
func DefaultConfig() Config {
	return Config{
		Source:            SourceGNews,
		Country:           "us",
		Max:               30,
		Timeout:           DefaultTimeout,
		RequestsPerMinute: 30,
	}
}

// NewProvider builds the provider selected by cfg.Source.
func NewProvider(cfg Config, logger *log.Logger) (Provider, error) {
	switch strings.ToLower(cfg.Source) {
	case "", SourceGNews:
		return NewGNewsClient(cfg, WithLogger(logger))
	case SourceBackend:
		return NewBackendClient(cfg, WithLogger(logger))
	case SourceFile:
		return NewFileProvider(cfg.File)
	default:
		return nil, fmt.Errorf("unknown news source %q", cfg.Source)
	}
}

// ClientOption configures the HTTP providers.
type ClientOption func(*client)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLimiter replaces the request rate limiter.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// client holds what GNewsClient and BackendClient share.
type client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

func newClient(cfg Config, opts []ClientOption) client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultConfig().RequestsPerMinute
	}
	c := client{
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 3),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// getPage performs a rate limited GET and decodes a Page.
func (c *client) getPage(ctx context.Context, url string) ([]Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("News request", "url", redact(url), "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(body)}
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode articles: %w", err)
	}
	return page.Articles, nil
}

// errorMessage extracts {"errors": [...]} or {"error": "..."} bodies.
func errorMessage(body []byte) string {
	var e struct {
		Errors []string `json:"errors"`
		Error  string   `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return strings.Join(e.Errors, "; ")
}

// redact hides the API key in logged URLs.
func redact(url string) string {
	i := strings.Index(url, "apikey=")
	if i < 0 {
		return url
	}
	end := strings.IndexByte(url[i:], '&')
	if end < 0 {
		return url[:i] + "apikey=***"
	}
	return url[:i] + "apikey=***" + url[i+end:]
}
