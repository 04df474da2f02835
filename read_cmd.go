package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/internal/news"
	"github.com/dgnsrekt/newsreel/internal/telemetry"
	"github.com/dgnsrekt/newsreel/narration"
	"github.com/spf13/cobra"
)

var (
	readQuery   string
	readArticle int

	readCmd = &cobra.Command{
		Use:   "read [CATEGORY]",
		Short: "Read the headlines aloud without the TUI",
		Long: paragraph(fmt.Sprintf("\n%s the top headlines of a category, a search result, or a single article, printing progress as it goes.",
			keyword("Read aloud"))),
		Example: paragraph("newsreel read\nnewsreel read sports --article 2\nnewsreel read --search \"climate\" --language de"),
		Args:    cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return news.Categories, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: runRead,
	}
)

func init() {
	readCmd.Flags().StringVarP(&readQuery, "search", "q", "", "read the results of a search instead of a category")
	readCmd.Flags().IntVarP(&readArticle, "article", "n", 0, "read only the n-th article (1-based)")
}

func runRead(cmd *cobra.Command, args []string) error {
	category, err := categoryArg(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger := log.Default()

	provider, closeNews, err := newNews(logger)
	if err != nil {
		return err
	}
	defer closeNews()

	sink, closeTelemetry := newTelemetry(logger)
	defer closeTelemetry()

	narrator, closeNarrator, err := newNarrator(context.WithoutCancel(ctx), logger)
	if err != nil {
		return fmt.Errorf("cannot read aloud: %w", err)
	}
	defer closeNarrator()

	var res news.Result
	if readQuery != "" {
		sink.RecordVoiceSearch(telemetry.VoiceSearch{Query: readQuery, Language: language})
		res, err = provider.Search(ctx, readQuery, language)
	} else {
		res, err = provider.Fetch(ctx, category, language)
	}
	switch {
	case errors.Is(err, news.ErrEmptyQuery):
		return err
	case err != nil && res.Placeholder:
		return fmt.Errorf("no news available: %w", err)
	case err != nil:
		fmt.Fprintln(os.Stderr, failure("Using cached news: "+err.Error()))
	}

	segs, lang, title, opts, err := readPlan(res.Articles, category)
	if err != nil {
		return err
	}

	h, err := narrator.Start(segs, lang, opts...)
	if err != nil {
		if errors.Is(err, narration.ErrLanguageDisabled) {
			return fmt.Errorf("read aloud isn't available in %s", news.LanguageName(language))
		}
		return err //nolint:wrapcheck
	}
	sink.RecordReadAloud(readRecord(res.Articles, category))
	fmt.Println(keyword(" " + title + " "))

	return followNarration(ctx, narrator, h)
}

// readPlan picks the segments for the read command.
func readPlan(articles []news.Article, category string) ([]narration.TextSegment, string, string, []narration.StartOption, error) {
	tag := news.NarrationTag(language)

	if readArticle > 0 {
		if readArticle > len(articles) {
			return nil, "", "", nil, fmt.Errorf("there are only %d articles", len(articles))
		}
		a := articles[readArticle-1]
		return narration.ArticleSegments(a.Title, a.Description, a.Content, tag), tag, a.Title, nil, nil
	}

	headlines := news.Headlines(articles)
	if narration.BaseLanguage(tag) == "en" {
		tag = narration.HeadlinesLang
	}
	title := strings.ToUpper(category[:1]) + category[1:] + " headlines"
	if readQuery != "" {
		title = fmt.Sprintf("Results for %q", readQuery)
	}
	opts := []narration.StartOption{narration.WithProsody(narration.HeadlinesProsody())}
	return narration.HeadlineSegments(headlines, tag), tag, title, opts, nil
}

func readRecord(articles []news.Article, category string) telemetry.ReadAloud {
	if readArticle > 0 && readArticle <= len(articles) {
		a := articles[readArticle-1]
		return telemetry.ReadAloud{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.Image,
			Category:    category,
			Language:    language,
		}
	}
	for _, a := range articles {
		if !news.IsPlaceholder(a) {
			return telemetry.HeadlinesReadAloud(a.Title, a.URL, a.Image, category, language)
		}
	}
	return telemetry.HeadlinesReadAloud("", "", "", category, language)
}

// followNarration prints events for h until it finishes. An interrupt
// stops narration and waits for the session to wind down.
func followNarration(ctx context.Context, s *narration.Scheduler, h narration.Handle) error {
	done := ctx.Done()
	for {
		select {
		case <-done:
			done = nil
			s.Cancel(h)

		case ev, ok := <-s.Events():
			if !ok {
				return nil
			}
			if ev.Handle != h {
				continue
			}
			switch ev.Kind {
			case narration.EventProgress:
				fmt.Printf("%s %s\n", faint(fmt.Sprintf("%d/%d", ev.Position(), ev.Total)), ev.Segment.Text)
			case narration.EventSegmentFailed:
				fmt.Fprintln(os.Stderr, failure(ev.String()))
			case narration.EventFinished:
				fmt.Println(faint(ev.String()))
				return nil
			}
		}
	}
}
