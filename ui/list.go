package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/newsreel/internal/news"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"
)

const (
	listHeaderHeight = 3
	listItemHeight   = 3 // title, meta and description lines
	listItemGap      = 1
)

type listMode int

const (
	listBrowse listMode = iota
	listFiltering
	listSearching
)

// articleSource adapts a slice of articles for fuzzy matching.
type articleSource []news.Article

func (s articleSource) String(i int) string { return s[i].FilterValue() }
func (s articleSource) Len() int            { return len(s) }

// filterArticles returns the indexes of the articles matching term, best
// match first. An empty term matches everything in order.
func filterArticles(articles []news.Article, term string) []int {
	term = strings.TrimSpace(term)
	if term == "" {
		idx := make([]int, len(articles))
		for i := range articles {
			idx[i] = i
		}
		return idx
	}
	matches := fuzzy.FindFrom(term, articleSource(articles))
	idx := make([]int, len(matches))
	for i, match := range matches {
		idx[i] = match.Index
	}
	return idx
}

type listModel struct {
	common *commonModel
	mode   listMode

	articles  []news.Article
	visible   []int // indexes into articles after filtering
	cursor    int
	fetchedAt time.Time
	stale     bool
	query     string // non-empty while showing search results
	loading   bool

	filterInput textinput.Model
	searchInput textinput.Model
	spinner     spinner.Model

	showHelp           bool
	statusMessage      string
	statusMessageError bool
	statusMessageTimer *time.Timer
}

func newListModel(common *commonModel) listModel {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(fuchsia)

	fi := textinput.New()
	fi.Prompt = "Filter: "
	fi.PromptStyle = lipgloss.NewStyle().Foreground(yellowGreen)
	fi.Cursor.Style = lipgloss.NewStyle().Foreground(fuchsia)
	fi.CharLimit = 64

	si := textinput.New()
	si.Prompt = "Search: "
	si.PromptStyle = lipgloss.NewStyle().Foreground(yellowGreen)
	si.Cursor.Style = lipgloss.NewStyle().Foreground(fuchsia)
	si.Placeholder = "keywords"
	si.CharLimit = 128

	return listModel{
		common:      common,
		spinner:     sp,
		filterInput: fi,
		searchInput: si,
	}
}

// setArticles replaces the list contents and reapplies the filter.
func (m *listModel) setArticles(res news.Result) {
	m.articles = res.Articles
	m.fetchedAt = res.FetchedAt
	m.stale = res.Stale
	m.cursor = 0
	m.applyFilter()
}

func (m *listModel) applyFilter() {
	m.visible = filterArticles(m.articles, m.filterInput.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = max(0, len(m.visible)-1)
	}
}

func (m listModel) filterApplied() bool {
	return m.filterInput.Value() != ""
}

func (m *listModel) resetFilter() {
	m.filterInput.Reset()
	m.filterInput.Blur()
	m.mode = listBrowse
	m.applyFilter()
}

// selected returns the article under the cursor.
func (m listModel) selected() (news.Article, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return news.Article{}, false
	}
	return m.articles[m.visible[m.cursor]], true
}

// headlineArticles returns the visible articles, skipping placeholders.
func (m listModel) headlineArticles() []news.Article {
	out := make([]news.Article, 0, len(m.visible))
	for _, i := range m.visible {
		if a := m.articles[i]; !news.IsPlaceholder(a) {
			out = append(out, a)
		}
	}
	return out
}

func (m listModel) perPage() int {
	h := m.common.height - listHeaderHeight - statusBarHeight
	if m.showHelp {
		h -= strings.Count(m.helpView(), "\n") + 1
	}
	return max(1, h/(listItemHeight+listItemGap))
}

func (m *listModel) showStatusMessage(msg statusMessage) tea.Cmd {
	m.statusMessage = msg.message
	m.statusMessageError = msg.isError
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)

	return waitForStatusMessageTimeout(listContext, m.statusMessageTimer)
}

func (m listModel) update(msg tea.Msg) (listModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case listFiltering:
			switch msg.String() {
			case keyEsc:
				m.resetFilter()
				return m, nil
			case keyEnter, "tab", "shift+tab", "up", "down":
				m.filterInput.Blur()
				m.mode = listBrowse
				if m.filterInput.Value() == "" {
					m.resetFilter()
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd

		case listSearching:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "j", "down":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(0, len(m.visible)-1)
		case "pgdown", "right", "l":
			m.cursor = min(max(0, len(m.visible)-1), m.cursor+m.perPage())
		case "pgup", "left", "h":
			m.cursor = max(0, m.cursor-m.perPage())
		case "f":
			m.mode = listFiltering
			return m, m.filterInput.Focus()
		case "?":
			m.showHelp = !m.showHelp
		}

	case statusMessageTimeoutMsg:
		if applicationContext(msg) == listContext {
			m.statusMessage = ""
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m listModel) view() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	per := m.perPage()
	start := (m.cursor / per) * per
	end := min(start+per, len(m.visible))

	var items []string
	for i := start; i < end; i++ {
		items = append(items, m.itemView(m.articles[m.visible[i]], i == m.cursor))
	}
	if len(items) == 0 && !m.loading {
		items = append(items, indent(subtleStyle.Render("Nothing matches."), 2))
	}
	body := strings.Join(items, strings.Repeat("\n", listItemGap+1))

	// Pad to push the status bar to the bottom
	used := listHeaderHeight + strings.Count(body, "\n") + 1
	b.WriteString(body)
	if pad := m.common.height - used - statusBarHeight; pad > 0 && !m.showHelp {
		b.WriteString(strings.Repeat("\n", pad))
	}
	b.WriteString("\n")

	m.statusBarView(&b, start/per+1, max(1, (len(m.visible)+per-1)/per))

	if m.showHelp {
		b.WriteString("\n" + m.helpView())
	}
	return b.String()
}

func (m listModel) headerView() string {
	var sections []string
	if m.query != "" {
		sections = append(sections, sectionActiveStyle(fmt.Sprintf("search: %q", m.query)))
	} else {
		for _, c := range news.Categories {
			if c == m.common.category {
				sections = append(sections, sectionActiveStyle(c))
			} else {
				sections = append(sections, sectionStyle(c))
			}
		}
	}

	lang := sectionStyle("[" + news.LanguageName(m.common.language) + "]")
	line := logoView() + " " + lang + " " + strings.Join(sections, sectionStyle(" • "))

	switch {
	case m.loading:
		line += " " + m.spinner.View()
	case m.stale && !m.fetchedAt.IsZero():
		line += " " + staleStyle("cached "+humanize.Time(m.fetchedAt))
	case m.stale:
		line += " " + staleStyle("offline")
	}

	if m.mode == listFiltering || m.filterApplied() {
		line += "\n  " + m.filterInput.View()
	} else if m.mode == listSearching {
		line += "\n  " + m.searchInput.View()
	} else {
		line += "\n"
	}
	return "\n" + truncateLines(line, m.common.width)
}

func (m listModel) itemView(a news.Article, selected bool) string {
	width := max(0, m.common.width-4)

	var age string
	if t, ok := a.Published(); ok {
		age = humanize.Time(t)
	}
	meta := a.Source.Name
	if age != "" {
		meta += " • " + age
	}

	w := uint(width) //nolint:gosec
	title := truncate.StringWithTail(a.Title, w, ellipsis)
	meta = truncate.StringWithTail(meta, w, ellipsis)
	desc := truncate.StringWithTail(singleLine(a.Description), w, ellipsis)

	gutter := "  "
	if selected {
		gutter = lipgloss.NewStyle().Foreground(fuchsia).Render("│ ")
		title = selectedTitleStyle(title)
		meta = selectedMetaStyle(meta)
	} else {
		title = titleStyle(title)
		meta = metaStyle(meta)
	}
	return fmt.Sprintf(" %s%s\n %s%s\n %s%s", gutter, title, gutter, meta, gutter, descriptionStyle(desc))
}

func (m listModel) statusBarView(b *strings.Builder, page, pages int) {
	logo := logoView()

	pos := statusBarScrollPosStyle(fmt.Sprintf(" %d/%d ", page, pages))
	helpNote := statusBarHelpStyle(" ? Help ")

	var note string
	switch {
	case m.statusMessage != "" && m.statusMessageError:
		note = statusBarErrorStyle(" " + m.statusMessage + " ")
	case m.statusMessage != "":
		note = statusBarMessageStyle(" " + m.statusMessage + " ")
	default:
		note = m.common.narration.compact()
		if note == "" {
			note = fmt.Sprintf("%d articles", len(m.visible))
		}
		note = statusBarNoteStyle(" " + note + " ")
	}
	note = truncate.StringWithTail(note, uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(pos)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(pos)-
			ansi.PrintableRuneWidth(helpNote),
	)
	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		statusBarNoteStyle(strings.Repeat(" ", padding)),
		pos,
		helpNote,
	)
}

func (m listModel) helpView() string {
	s := "\n"
	s += "k/↑      up                  enter    open article\n"
	s += "j/↓      down                r        read article aloud\n"
	s += "h/pgup   page up             R        read all headlines\n"
	s += "l/pgdn   page down           s/esc    stop reading\n"
	s += "tab      next category       c        copy link\n"
	s += "L        next language       /        search\n"
	s += "f        filter              ctrl+r   retry\n"
	s += "q        quit"

	if m.common.narration.unavailable {
		s += "\n\n" + subtleStyle.Render("narration is unavailable, no speech engine was found")
	}
	return fillHelp(indent(s, 2), m.common.width)
}

// fillHelp pads every line to width so the background color fills the row.
func fillHelp(s string, width int) string {
	if width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}
		s = strings.Join(lines, "\n")
	}
	return helpViewStyle(s)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = truncate.StringWithTail(l, uint(width), ellipsis) //nolint:gosec
	}
	return strings.Join(lines, "\n")
}
