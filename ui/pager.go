package ui

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/newsreel/internal/news"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const statusBarHeight = 1

var (
	pagerHelpHeight int

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

type contentRenderedMsg string

type pagerState int

const (
	pagerStateBrowse pagerState = iota
	pagerStateStatusMessage
)

type pagerModel struct {
	common   *commonModel
	viewport viewport.Model
	state    pagerState
	showHelp bool

	statusMessage      string
	statusMessageError bool
	statusMessageTimer *time.Timer

	// Article being shown. We keep it so we can re-render on resize.
	article news.Article
}

func newPagerModel(common *commonModel) pagerModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0

	return pagerModel{
		common:   common,
		state:    pagerStateBrowse,
		viewport: vp,
	}
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight

	if m.showHelp {
		if pagerHelpHeight == 0 {
			pagerHelpHeight = strings.Count(m.helpView(), "\n")
		}
		m.viewport.Height -= (statusBarHeight + pagerHelpHeight)
	}
	if d := m.narrationHeight(); d > 0 {
		m.viewport.Height -= d
	}
}

func (m *pagerModel) setContent(s string) {
	m.viewport.SetContent(s)
}

func (m *pagerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

func (m *pagerModel) showStatusMessage(msg statusMessage) tea.Cmd {
	m.state = pagerStateStatusMessage
	m.statusMessage = msg.message
	m.statusMessageError = msg.isError
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)

	return waitForStatusMessageTimeout(pagerContext, m.statusMessageTimer)
}

// load sets the article and renders it.
func (m *pagerModel) load(a news.Article) tea.Cmd {
	m.article = a
	m.viewport.YOffset = 0
	return renderWithGlamour(*m, articleMarkdown(a))
}

func (m *pagerModel) unload() {
	log.Debug("unload article", "title", m.article.Title)
	if m.showHelp {
		m.toggleHelp()
	}
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.state = pagerStateBrowse
	m.article = news.Article{}
	m.viewport.SetContent("")
	m.viewport.YOffset = 0
}

func (m pagerModel) update(msg tea.Msg) (pagerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "home", "g":
			m.viewport.GotoTop()
		case "end", "G":
			m.viewport.GotoBottom()
		case "d":
			m.viewport.HalfViewDown()
		case "u":
			m.viewport.HalfViewUp()
		case "?":
			m.toggleHelp()
		}

	case contentRenderedMsg:
		log.Info("content rendered", "state", m.state)
		m.setContent(string(msg))

	// We've received terminal dimensions, either for the first time or
	// after a resize
	case tea.WindowSizeMsg:
		if m.article.Title != "" {
			return m, renderWithGlamour(m, articleMarkdown(m.article))
		}

	case statusMessageTimeoutMsg:
		if applicationContext(msg) == pagerContext {
			m.state = pagerStateBrowse
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m pagerModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")

	if panel := m.common.narration.detailed(m.common.width); panel != "" {
		fmt.Fprint(&b, narrationPanelStyle.Width(max(0, m.common.width-2)).Render(panel)+"\n")
	}

	// Footer
	m.statusBarView(&b)

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

var narrationPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), true, false, false, false).
	BorderForeground(gray).
	PaddingLeft(1)

func (m pagerModel) narrationHeight() int {
	panel := m.common.narration.detailed(m.common.width)
	if panel == "" {
		return 0
	}
	return strings.Count(panel, "\n") + 2 // border and trailing newline
}

func (m pagerModel) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	showStatusMessage := m.state == pagerStateStatusMessage

	logo := logoView()

	// Scroll percent
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude))

	helpNote := statusBarHelpStyle(" ? Help ")

	// Note
	var note string
	if showStatusMessage {
		note = m.statusMessage
	} else {
		note = m.article.Source.Name
		if s := m.common.narration.compact(); s != "" {
			note += " | " + s
		}
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	switch {
	case showStatusMessage && m.statusMessageError:
		note = statusBarErrorStyle(note)
	case showStatusMessage:
		note = statusBarMessageStyle(note)
	default:
		note = statusBarNoteStyle(note)
	}

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage && !m.statusMessageError {
		emptySpace = statusBarMessageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

func (m pagerModel) helpView() (s string) {
	s += "\n"
	s += "k/↑      up                  r        read aloud\n"
	s += "j/↓      down                s        stop reading\n"
	s += "b/pgup   page up             c        copy link\n"
	s += "f/pgdn   page down           L        next language\n"
	s += "u        ½ page up           esc      back to articles\n"
	s += "d        ½ page down         q        quit"

	return fillHelp(indent(s, 2), m.common.width)
}

// truncatedMarker matches the "[+1234 chars]" suffix on shortened content.
var truncatedMarker = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

// articleMarkdown lays an article out as a markdown document.
func articleMarkdown(a news.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.Title)

	var meta []string
	if a.Source.Name != "" {
		meta = append(meta, a.Source.Name)
	}
	if t, ok := a.Published(); ok {
		meta = append(meta, humanize.Time(t))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " · "))
	}
	if a.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", a.Description)
	}
	if c := strings.TrimSpace(truncatedMarker.ReplaceAllString(a.Content, "")); c != "" && c != a.Description {
		fmt.Fprintf(&b, "%s\n\n", c)
	}
	if a.Linkable() {
		fmt.Fprintf(&b, "[Read the full story](%s)\n", a.URL)
	}
	return b.String()
}

// COMMANDS

func renderWithGlamour(m pagerModel, md string) tea.Cmd {
	return func() tea.Msg {
		s, err := glamourRender(m, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return contentRenderedMsg(s)
	}
}

func glamourRender(m pagerModel, markdown string) (string, error) {
	if !m.common.cfg.GlamourEnabled {
		return markdown, nil
	}

	width := max(0, min(int(m.common.cfg.GlamourMaxWidth), m.viewport.Width)) //nolint:gosec
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.common.cfg.GlamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return out, nil
}
