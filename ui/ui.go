// Package ui provides the terminal interface for newsreel.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/internal/news"
	"github.com/dgnsrekt/newsreel/internal/telemetry"
	"github.com/dgnsrekt/newsreel/narration"
	"github.com/fsnotify/fsnotify"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
)

// Services are the collaborators the interface drives.
type Services struct {
	News *news.CachedProvider

	// Narrator is nil when no speech engine could be started, in which
	// case NarrationErr says why.
	Narrator     *narration.Scheduler
	NarrationErr error

	Telemetry telemetry.Sink

	// Reload re-reads the offline news file. Only used with Config.WatchFile.
	Reload func() error
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, svc Services) *tea.Program {
	log.Debug(
		"Starting newsreel",
		"category", cfg.Category,
		"language", cfg.Language,
		"narration", svc.Narrator != nil,
		"glamour", cfg.GlamourEnabled,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, svc)
	return tea.NewProgram(m, opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// fetchedMsg carries the outcome of a fetch or search. gen identifies the
// request so that answers for an abandoned category are dropped.
type fetchedMsg struct {
	gen    int
	query  string
	result news.Result
	err    error
}

type statusMessageTimeoutMsg applicationContext

// applicationContext indicates the area of the application something applies
// to. Occasionally used as an argument to commands and messages.
type applicationContext int

const (
	listContext applicationContext = iota
	pagerContext
)

type statusMessage struct {
	message string
	isError bool
}

// state is the top-level application state.
type state int

const (
	stateShowList state = iota
	stateShowArticle
)

func (s state) String() string {
	return map[state]string{
		stateShowList:    "showing article list",
		stateShowArticle: "showing article",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	svc    Services
	width  int
	height int

	category  string
	language  string
	narration narrationStatus
}

type model struct {
	common   *commonModel
	state    state
	fatalErr error

	// Sub-models
	list  listModel
	pager pagerModel

	fetchGen int
	watcher  *fsnotify.Watcher
}

func newModel(cfg Config, svc Services) model {
	if cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}
	if svc.Telemetry == nil {
		svc.Telemetry = telemetry.Nop{}
	}

	common := commonModel{
		cfg:       cfg,
		svc:       svc,
		category:  cfg.Category,
		language:  cfg.Language,
		narration: newNarrationStatus(),
	}
	if !news.ValidCategory(common.category) {
		common.category = news.Categories[0]
	}
	if news.LanguageName(common.language) == common.language {
		common.language = news.Languages[0].Code
	}

	m := model{
		common:   &common,
		state:    stateShowList,
		list:     newListModel(&common),
		pager:    newPagerModel(&common),
		fetchGen: 1,
	}
	m.list.loading = true

	if svc.News == nil {
		m.fatalErr = errors.New("no news source configured")
	}
	if cfg.WatchFile != "" && svc.Reload != nil {
		m.watcher = newWatcher(cfg.WatchFile)
	}
	return m
}

func (m model) Init() tea.Cmd {
	log.Debug("Init() called", "state", m.state)
	if m.fatalErr != nil {
		return nil
	}

	cmds := []tea.Cmd{
		m.list.spinner.Tick,
		fetchCmd(m.common.svc.News, m.fetchGen, m.common.category, m.common.language),
	}

	if s := m.common.svc.Narrator; s != nil {
		cmds = append(cmds, narration.WaitForEventCmd(s.Events()))
	} else {
		err := m.common.svc.NarrationErr
		cmds = append(cmds, func() tea.Msg { return narration.UnavailableMsg{Err: err} })
	}

	if m.watcher != nil {
		cmds = append(cmds, watchFile(m.watcher, m.common.cfg.WatchFile))
	}

	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Ctrl+C always quits no matter where in the application you are.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Text entry gets every other key
		if m.state == stateShowList {
			switch m.list.mode {
			case listSearching:
				return m.updateSearch(msg)
			case listFiltering:
				var cmd tea.Cmd
				m.list, cmd = m.list.update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "ctrl+z":
			return m, tea.Suspend

		case keyEsc:
			switch {
			case m.state == stateShowArticle:
				m.state = stateShowList
				m.pager.unload()
				return m, nil
			case m.common.narration.active():
				return m, m.stopNarration()
			case m.list.filterApplied():
				m.list.resetFilter()
				return m, nil
			case m.list.query != "":
				m.list.query = ""
				return m, m.fetch()
			}
			return m, nil

		case "s":
			return m, m.stopNarration()

		case "tab", "shift+tab":
			if m.state != stateShowList {
				break
			}
			delta := 1
			if msg.String() == "shift+tab" {
				delta = -1
			}
			m.common.category = news.Cycle(news.Categories, m.common.category, delta)
			m.list.query = ""
			return m, m.fetch()

		case "L":
			m.common.language = news.Cycle(news.LanguageCodes(), m.common.language, 1)
			if s := m.common.svc.Narrator; s != nil {
				s.Stop()
			}
			m.state = stateShowList
			m.pager.unload()
			if m.list.query != "" {
				return m, m.search(m.list.query)
			}
			return m, m.fetch()

		case keyEnter:
			if m.state != stateShowList {
				break
			}
			a, ok := m.list.selected()
			if !ok || news.IsPlaceholder(a) {
				return m, nil
			}
			m.state = stateShowArticle
			m.pager.setSize(m.common.width, m.common.height)
			return m, m.pager.load(a)

		case "r":
			a, ok := m.currentArticle()
			if !ok {
				return m, nil
			}
			return m, m.readArticle(a)

		case "R":
			if m.common.narration.active() {
				return m, m.stopNarration()
			}
			return m, m.readHeadlines()

		case "c":
			a, ok := m.currentArticle()
			if !ok {
				return m, nil
			}
			return m, m.copyLink(a)

		case "/":
			if m.state != stateShowList {
				break
			}
			m.list.mode = listSearching
			m.list.searchInput.Reset()
			return m, m.list.searchInput.Focus()

		case "ctrl+r":
			return m, m.retry()
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.pager.setSize(msg.Width, msg.Height)

	case fetchedMsg:
		if msg.gen != m.fetchGen {
			log.Debug("dropping stale fetch", "gen", msg.gen, "current", m.fetchGen)
			return m, nil
		}
		m.list.loading = false
		m.list.query = msg.query
		m.list.setArticles(msg.result)
		if msg.err != nil {
			return m, m.showStatusMessage(fetchErrorMessage(msg.err))
		}
		return m, nil

	case fileChangedMsg:
		if err := m.common.svc.Reload(); err != nil {
			log.Error("error reloading news file", "error", err)
			cmds = append(cmds, m.showStatusMessage(statusMessage{"Couldn't reload news file", true}))
		} else if m.list.query != "" {
			cmds = append(cmds, m.search(m.list.query))
		} else {
			cmds = append(cmds, m.fetch())
		}
		cmds = append(cmds, watchFile(m.watcher, m.common.cfg.WatchFile))
		return m, tea.Batch(cmds...)

	case narration.StartedMsg:
		m.common.narration.update(msg)
		m.pager.setSize(m.common.width, m.common.height)
		return m, nil

	case narration.ProgressMsg, narration.SegmentFailedMsg, narration.FinishedMsg:
		m.common.narration.update(msg)
		m.pager.setSize(m.common.width, m.common.height)
		return m, m.waitForNarration()

	case narration.ErrorMsg:
		m.common.narration.update(msg)
		return m, m.showStatusMessage(m.narrationErrorMessage(msg))

	case narration.UnavailableMsg:
		log.Warn("narration unavailable", "error", msg.Err)
		m.common.narration.update(msg)
		return m, m.showStatusMessage(statusMessage{"Read aloud is unavailable: no speech engine found", true})

	case errMsg:
		log.Error("error", "error", msg.err)
		return m, m.showStatusMessage(statusMessage{msg.Error(), true})

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.update(msg)
		return m, cmd

	case statusMessageTimeoutMsg:
		var cmd tea.Cmd
		if applicationContext(msg) == pagerContext {
			m.pager, cmd = m.pager.update(msg)
		} else {
			m.list, cmd = m.list.update(msg)
		}
		return m, cmd
	}

	if narration.IsClosed(msg) {
		log.Debug("narration events closed")
		return m, nil
	}

	// Process children
	switch m.state {
	case stateShowList:
		newListModel, cmd := m.list.update(msg)
		m.list = newListModel
		cmds = append(cmds, cmd)

	case stateShowArticle:
		newPagerModel, cmd := m.pager.update(msg)
		m.pager = newPagerModel
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.list.mode = listBrowse
		m.list.searchInput.Blur()
		return m, nil

	case keyEnter:
		m.list.mode = listBrowse
		m.list.searchInput.Blur()
		query := strings.TrimSpace(m.list.searchInput.Value())
		if query == "" {
			return m, m.showStatusMessage(statusMessage{"Type something to search for", true})
		}
		m.common.svc.Telemetry.RecordVoiceSearch(telemetry.VoiceSearch{
			Query:    query,
			Language: m.common.language,
		})
		return m, m.search(query)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state { //nolint:exhaustive
	case stateShowArticle:
		return m.pager.View()
	default:
		return m.list.view()
	}
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// currentArticle returns the article on screen, or the one under the cursor.
func (m model) currentArticle() (news.Article, bool) {
	if m.state == stateShowArticle {
		return m.pager.article, true
	}
	a, ok := m.list.selected()
	if !ok || news.IsPlaceholder(a) {
		return news.Article{}, false
	}
	return a, true
}

func (m *model) showStatusMessage(msg statusMessage) tea.Cmd {
	if m.state == stateShowArticle {
		return m.pager.showStatusMessage(msg)
	}
	return m.list.showStatusMessage(msg)
}

// fetch requests the current category. Earlier requests still in flight
// are ignored when they arrive.
func (m *model) fetch() tea.Cmd {
	m.fetchGen++
	m.list.loading = true
	return tea.Batch(
		m.list.spinner.Tick,
		fetchCmd(m.common.svc.News, m.fetchGen, m.common.category, m.common.language),
	)
}

func (m *model) search(query string) tea.Cmd {
	m.fetchGen++
	m.list.loading = true
	return tea.Batch(
		m.list.spinner.Tick,
		searchCmd(m.common.svc.News, m.fetchGen, query, m.common.language),
	)
}

func (m *model) retry() tea.Cmd {
	if m.list.query != "" {
		return m.search(m.list.query)
	}
	return m.fetch()
}

func (m *model) readArticle(a news.Article) tea.Cmd {
	s := m.common.svc.Narrator
	if s == nil {
		return nil
	}
	tag := news.NarrationTag(m.common.language)
	if !s.LanguageDisabled(tag) {
		m.common.svc.Telemetry.RecordReadAloud(telemetry.ReadAloud{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.Image,
			Category:    m.common.category,
			Language:    m.common.language,
		})
	}
	segs := narration.ArticleSegments(a.Title, a.Description, a.Content, tag)
	return narration.StartCmd(s, segs, tag, a.Title)
}

// readHeadlines reads every visible headline. English news is read with
// the British voice the reader has always used for headlines.
func (m *model) readHeadlines() tea.Cmd {
	s := m.common.svc.Narrator
	if s == nil {
		return nil
	}
	articles := m.list.headlineArticles()
	if len(articles) == 0 {
		return m.showStatusMessage(statusMessage{"No headlines to read", true})
	}

	tag := news.NarrationTag(m.common.language)
	if narration.BaseLanguage(tag) == "en" {
		tag = narration.HeadlinesLang
	}
	if !s.LanguageDisabled(tag) {
		first := articles[0]
		m.common.svc.Telemetry.RecordReadAloud(telemetry.HeadlinesReadAloud(
			first.Title, first.URL, first.Image, m.common.category, m.common.language))
	}
	segs := narration.HeadlineSegments(news.Headlines(articles), tag)
	title := fmt.Sprintf("%s headlines", strings.ToUpper(m.common.category[:1])+m.common.category[1:])
	return narration.StartCmd(s, segs, tag, title, narration.WithProsody(narration.HeadlinesProsody()))
}

func (m *model) stopNarration() tea.Cmd {
	s := m.common.svc.Narrator
	if s == nil || !m.common.narration.active() {
		return nil
	}
	return narration.StopCmd(s)
}

func (m model) waitForNarration() tea.Cmd {
	if s := m.common.svc.Narrator; s != nil {
		return narration.WaitForEventCmd(s.Events())
	}
	return nil
}

func (m *model) copyLink(a news.Article) tea.Cmd {
	if !a.Linkable() {
		return m.showStatusMessage(statusMessage{"This article has no link", true})
	}
	// Copy using OSC 52
	te.Copy(a.URL)
	// Copy using native system clipboard
	_ = clipboard.WriteAll(a.URL)

	m.common.svc.Telemetry.RecordClick(telemetry.Click{
		URL:      a.URL,
		Title:    a.Title,
		Language: m.common.language,
	})
	return m.showStatusMessage(statusMessage{"Copied link", false})
}

func (m model) narrationErrorMessage(msg narration.ErrorMsg) statusMessage {
	switch {
	case msg.Disabled:
		return statusMessage{
			fmt.Sprintf("Read aloud isn't available in %s", news.LanguageName(m.common.language)),
			true,
		}
	case errors.Is(msg.Err, narration.ErrNoSegments):
		return statusMessage{"Nothing to read", true}
	default:
		return statusMessage{"Couldn't start reading: " + msg.Err.Error(), true}
	}
}

func fetchErrorMessage(err error) statusMessage {
	switch {
	case errors.Is(err, news.ErrEmptyQuery):
		return statusMessage{"Type something to search for", true}
	case errors.Is(err, news.ErrFetchTimeout):
		return statusMessage{"News took too long to load. ctrl+r to retry", true}
	default:
		return statusMessage{"Couldn't load news: " + err.Error() + ". ctrl+r to retry", true}
	}
}

// COMMANDS

func fetchCmd(p *news.CachedProvider, gen int, category, lang string) tea.Cmd {
	return func() tea.Msg {
		res, err := p.Fetch(context.Background(), category, lang)
		return fetchedMsg{gen: gen, result: res, err: err}
	}
}

func searchCmd(p *news.CachedProvider, gen int, query, lang string) tea.Cmd {
	return func() tea.Msg {
		res, err := p.Search(context.Background(), query, lang)
		return fetchedMsg{gen: gen, query: query, result: res, err: err}
	}
}

func waitForStatusMessageTimeout(appCtx applicationContext, t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg(appCtx)
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
