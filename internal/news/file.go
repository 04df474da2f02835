package news

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
)

// FileProvider serves articles from an offline JSON file in the
// {"articles": [...]} form.
type FileProvider struct {
	path string

	mu       sync.Mutex
	articles []Article
}

// NewFileProvider loads path. A leading ~ is expanded.
func NewFileProvider(path string) (*FileProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("news.file is required for the file source")
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	p := &FileProvider{path: expanded}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Path returns the expanded file path.
func (p *FileProvider) Path() string {
	return p.path
}

// Reload re-reads the file.
func (p *FileProvider) Reload() error {
	b, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read news file: %w", err)
	}
	var page Page
	if err := json.Unmarshal(b, &page); err != nil {
		return fmt.Errorf("failed to parse news file %s: %w", p.path, err)
	}
	p.mu.Lock()
	p.articles = page.Articles
	p.mu.Unlock()
	return nil
}

// FetchArticles returns the articles in category. When no article in the
// file carries a category, all articles are returned.
func (p *FileProvider) FetchArticles(ctx context.Context, category, lang string) ([]Article, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tagged := false
	var out []Article
	for _, a := range p.articles {
		if a.Category != "" {
			tagged = true
		}
		if strings.EqualFold(a.Category, category) {
			out = append(out, a)
		}
	}
	if !tagged {
		return append([]Article(nil), p.articles...), nil
	}
	return out, nil
}

// SearchArticles matches query against titles and descriptions, ignoring
// case.
func (p *FileProvider) SearchArticles(ctx context.Context, query, lang string) ([]Article, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, ErrEmptyQuery
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var out []Article
	for _, a := range p.articles {
		if strings.Contains(strings.ToLower(a.Title), query) ||
			strings.Contains(strings.ToLower(a.Description), query) {
			out = append(out, a)
		}
	}
	return out, nil
}
