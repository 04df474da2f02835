package news

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/internal/cache"
)

// Result is what the UI renders for a fetch or search.
type Result struct {
	Articles    []Article
	FetchedAt   time.Time
	Stale       bool // served from cache after a failed fetch
	Placeholder bool // nothing fetched and nothing cached
}

// CachedProvider wraps a Provider with the timeout race and a cache. It
// always returns at least one article.
type CachedProvider struct {
	provider Provider
	cache    cache.Cache
	timeout  time.Duration
	ttl      time.Duration
	logger   *log.Logger
}

// NewCachedProvider wraps p. A nil c disables caching.
func NewCachedProvider(p Provider, c cache.Cache, timeout, ttl time.Duration, logger *log.Logger) *CachedProvider {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedProvider{provider: p, cache: c, timeout: timeout, ttl: ttl, logger: logger}
}

// Fetch returns the articles for category in lang. On a fetch error the
// cached page or a placeholder is returned together with the error.
func (cp *CachedProvider) Fetch(ctx context.Context, category, lang string) (Result, error) {
	key := "top/" + lang + "/" + category
	articles, err := FetchWithTimeout(ctx, cp.timeout, "fetch", func(ctx context.Context) ([]Article, error) {
		return cp.provider.FetchArticles(ctx, category, lang)
	})
	return cp.resolve(key, lang, articles, err)
}

// Search returns the articles matching query in lang. An empty query
// returns ErrEmptyQuery and no articles.
func (cp *CachedProvider) Search(ctx context.Context, query, lang string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	key := "search/" + lang + "/" + strings.ToLower(query)
	articles, err := FetchWithTimeout(ctx, cp.timeout, "search", func(ctx context.Context) ([]Article, error) {
		return cp.provider.SearchArticles(ctx, query, lang)
	})
	return cp.resolve(key, lang, articles, err)
}

func (cp *CachedProvider) resolve(key, lang string, articles []Article, err error) (Result, error) {
	now := time.Now()
	if err == nil && len(articles) > 0 {
		cp.store(key, articles)
		return Result{Articles: articles, FetchedAt: now}, nil
	}
	if err != nil {
		cp.logger.Warn("News fetch failed", "key", key, "err", err)
	}

	if cached, meta, ok := cp.load(key); ok {
		return Result{
			Articles:  cached,
			FetchedAt: meta.Stored,
			Stale:     err != nil || meta.Stale(cp.ttl),
		}, err
	}
	return Result{
		Articles:    []Article{Placeholder(lang)},
		FetchedAt:   now,
		Placeholder: true,
	}, err
}

func (cp *CachedProvider) store(key string, articles []Article) {
	if cp.cache == nil {
		return
	}
	b, err := json.Marshal(Page{TotalArticles: len(articles), Articles: articles})
	if err != nil {
		return
	}
	if err := cp.cache.Put(key, b); err != nil {
		cp.logger.Debug("Could not cache page", "key", key, "err", err)
	}
}

func (cp *CachedProvider) load(key string) ([]Article, cache.Metadata, bool) {
	if cp.cache == nil {
		return nil, cache.Metadata{}, false
	}
	b, meta, ok := cp.cache.Get(key)
	if !ok {
		return nil, meta, false
	}
	var page Page
	if err := json.Unmarshal(b, &page); err != nil || len(page.Articles) == 0 {
		return nil, meta, false
	}
	return page.Articles, meta, true
}

// Provider returns the wrapped provider.
func (cp *CachedProvider) Provider() Provider {
	return cp.provider
}
