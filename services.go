package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/internal/cache"
	"github.com/dgnsrekt/newsreel/internal/news"
	"github.com/dgnsrekt/newsreel/internal/telemetry"
	"github.com/dgnsrekt/newsreel/narration"
	"github.com/dgnsrekt/newsreel/narration/engines"
	"github.com/dgnsrekt/newsreel/narration/engines/piper"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// newEngine builds the configured speech engine.
func newEngine(logger *log.Logger) (narration.Engine, error) {
	opts := engines.Options{}
	if err := viper.UnmarshalKey("speech", &opts); err != nil {
		return nil, fmt.Errorf("invalid speech settings: %w", err)
	}
	opts.Logger = logger
	if opts.VoicesDir == "" {
		opts.VoicesDir = piper.DefaultVoicesDir
	}
	return engines.New(engineName, opts) //nolint:wrapcheck
}

func narrationConfig() (narration.Config, error) {
	cfg := narration.DefaultConfig()
	if err := viper.UnmarshalKey("narration", &cfg); err != nil {
		return cfg, fmt.Errorf("invalid narration settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid narration settings: %w", err)
	}
	return cfg, nil
}

// newNarrator builds the engine and a scheduler around it. The returned
// close function stops narration and releases the engine.
func newNarrator(ctx context.Context, logger *log.Logger) (*narration.Scheduler, func(), error) {
	cfg, err := narrationConfig()
	if err != nil {
		return nil, nil, err
	}
	engine, err := newEngine(logger)
	if err != nil {
		return nil, nil, err
	}

	s, err := narration.NewScheduler(engine, cfg, narration.WithLogger(logger))
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	ctx, cancel := context.WithCancel(ctx)
	if p, ok := engine.(*piper.Engine); ok {
		go func() {
			if err := p.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Debug("Not watching piper voices", "dir", p.VoicesDir(), "err", err)
			}
		}()
	}

	logger.Info("Narration ready", "engine", engine.Name())
	return s, func() {
		cancel()
		s.Close()
		engine.CancelAll()
	}, nil
}

func newsConfig() news.Config {
	cfg := news.DefaultConfig()
	if err := viper.UnmarshalKey("news", &cfg); err != nil {
		log.Warn("Invalid news settings, using defaults", "err", err)
	}
	// nested keys bound to flags or env are not seen by UnmarshalKey
	cfg.Source = viper.GetString("news.source")
	cfg.File = viper.GetString("news.file")
	if k := viper.GetString("news.api_key"); k != "" {
		cfg.APIKey = k
	}
	return cfg
}

func newCache(logger *log.Logger) cache.Cache {
	cfg := cache.DefaultConfig()
	if err := viper.UnmarshalKey("cache", &cfg); err != nil {
		logger.Warn("Invalid cache settings, using defaults", "err", err)
	}

	if cfg.Dir == "" {
		dir, err := gap.NewScope(gap.User, "newsreel").CacheDir()
		if err == nil {
			cfg.Dir = filepath.Join(dir, "pages")
		}
	} else if dir, err := homedir.Expand(cfg.Dir); err == nil {
		cfg.Dir = dir
	}

	if cfg.Dir != "" {
		c, err := cache.NewDiskCache(cfg)
		if err == nil {
			logger.Debug("Using page cache", "dir", cfg.Dir)
			return c
		}
		logger.Warn("Could not open page cache, keeping pages in memory", "dir", cfg.Dir, "err", err)
	}
	return cache.NewMemoryCache(cfg.Capacity)
}

// newNews builds the configured provider with caching and the fetch
// timeout. The returned close function saves the cache index.
func newNews(logger *log.Logger) (*news.CachedProvider, func(), error) {
	cfg := newsConfig()
	p, err := news.NewProvider(cfg, logger)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	c := newCache(logger)
	ttl := cache.DefaultConfig().TTL
	if d := viper.GetDuration("cache.ttl"); d > 0 {
		ttl = d
	}
	return news.NewCachedProvider(p, c, cfg.Timeout, ttl, logger), func() {
		if err := c.Close(); err != nil {
			logger.Warn("Could not save page cache", "err", err)
		}
	}, nil
}

func newTelemetry(logger *log.Logger) (telemetry.Sink, func()) {
	cfg := telemetry.DefaultConfig()
	if err := viper.UnmarshalKey("telemetry", &cfg); err != nil {
		logger.Warn("Invalid telemetry settings, telemetry disabled", "err", err)
		return telemetry.Nop{}, func() {}
	}
	return telemetry.New(cfg, logger)
}
