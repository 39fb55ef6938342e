package ui

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tabula/internal/db"
	"tabula/internal/model"
	"tabula/internal/table"
)

const (
	loadTimeout  = 30 * time.Second
	noticeExpiry = 3 * time.Second
)

// Options configures the tables the app builds.
type Options struct {
	Source     model.Source
	PageLength int
	Lengths    []int
	Ordering   bool
	Searching  bool
	Paging     bool
	Logger     *slog.Logger
}

// DefaultOptions enables every feature with ten rows per page.
func DefaultOptions() Options {
	return Options{
		PageLength: 10,
		Lengths:    []int{10, 25, 50, 100, table.LengthAll},
		Ordering:   true,
		Searching:  true,
		Paging:     true,
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	db   *sql.DB
	opts Options
	src  model.Source
	mode model.Mode
	log  *slog.Logger

	width  int
	height int

	error       string
	info        string
	infoSeq     int
	showingHelp bool
	loading     bool

	spinner spinner.Model
	help    help.Model

	tables   []string
	tableIdx int
	view     *TableView

	keys       KeyMap
	searchKeys SearchKeyMap
}

// New creates a new root model.
func New(database *sql.DB, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
		opts.Logger = logger
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = LabelStyle

	h := help.New()
	h.Styles.ShortKey = HelpKeyStyle
	h.Styles.ShortDesc = HelpDescStyle
	h.Styles.ShortSeparator = HelpDescStyle

	return Model{
		db:         database,
		opts:       opts,
		src:        opts.Source,
		mode:       model.ModeNav,
		log:        logger,
		loading:    opts.Source.Table != "" || opts.Source.Query != "",
		spinner:    s,
		help:       h,
		keys:       DefaultKeyMap(),
		searchKeys: DefaultSearchKeyMap(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, loadTablesCmd(m.db)}
	if m.loading {
		cmds = append(cmds, loadDatasetCmd(m.db, m.src))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == model.ModeInsert {
			return m.handleSearchMode(msg)
		}

		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}
		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}
		return m.handleNavMode(msg)

	case model.TablesLoadedMsg:
		m.tables = msg.Tables
		if m.src.Query != "" {
			return m, nil
		}
		if m.src.Table == "" {
			if len(m.tables) == 0 {
				m.loading = false
				m.error = "database has no tables"
				return m, nil
			}
			m.src.Table = m.tables[0]
			m.loading = true
			return m, loadDatasetCmd(m.db, m.src)
		}
		if i := slices.Index(m.tables, m.src.Table); i >= 0 {
			m.tableIdx = i
		}
		return m, nil

	case model.DatasetLoadedMsg:
		m.loading = false
		m.error = ""
		m.view = NewTableView(msg.Dataset, m.opts)
		return m, nil

	case model.ErrorMsg:
		m.loading = false
		m.error = msg.Err.Error()
		m.log.Error("load failed", "source", m.src.Label(), "err", msg.Err)
		return m, nil

	case model.StatusClearMsg:
		if msg.Seq == m.infoSeq {
			m.info = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.mode == model.ModeInsert && m.view != nil {
		return m, m.view.UpdateSearch(msg)
	}
	return m, nil
}

func (m Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	switch {
	case key.Matches(msg, m.searchKeys.Apply), key.Matches(msg, m.searchKeys.Cancel):
		m.view.BlurSearch()
		m.mode = model.ModeNav
		return m, nil
	case key.Matches(msg, m.searchKeys.Clear):
		m.view.ClearSearch()
		return m.withNotice(m.view)
	}
	return m, m.view.UpdateSearch(msg)
}

func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.NextTable):
		return m.switchTable(1)
	case key.Matches(msg, m.keys.PrevTable):
		return m.switchTable(-1)
	}

	if m.view == nil {
		return m, nil
	}
	if key.Matches(msg, m.keys.Search) {
		cmd := m.view.FocusSearch()
		if m.view.SearchFocused() {
			m.mode = model.ModeInsert
			return m, cmd
		}
		return m.withNotice(m.view)
	}

	t := m.currentTable()
	switch {
	case key.Matches(msg, m.keys.Up):
		t.MoveUp()
	case key.Matches(msg, m.keys.Down):
		t.MoveDown()
	case key.Matches(msg, m.keys.NextColumn):
		t.NextColumn()
	case key.Matches(msg, m.keys.PrevColumn):
		t.PrevColumn()
	case key.Matches(msg, m.keys.CycleSort):
		t.CycleSort()
	case key.Matches(msg, m.keys.SortAsc):
		t.SortActiveColumn(false)
	case key.Matches(msg, m.keys.SortDesc):
		t.SortActiveColumn(true)
	case key.Matches(msg, m.keys.HideColumn):
		t.HideActiveColumn()
	case key.Matches(msg, m.keys.ShowColumns):
		t.ShowAllColumns()
	case key.Matches(msg, m.keys.ClearSearch):
		t.ClearSearch()
	case key.Matches(msg, m.keys.NextPage):
		t.ChangePage(table.PageNext)
	case key.Matches(msg, m.keys.PrevPage):
		t.ChangePage(table.PagePrevious)
	case key.Matches(msg, m.keys.FirstPage):
		t.ChangePage(table.PageFirst)
	case key.Matches(msg, m.keys.LastPage):
		t.ChangePage(table.PageLast)
	case key.Matches(msg, m.keys.JumpPage):
		n, _ := strconv.Atoi(msg.String())
		t.ChangePage(table.PageNumber(n - 1))
	case key.Matches(msg, m.keys.LongerPage):
		t.CycleLength(1)
	case key.Matches(msg, m.keys.ShorterPage):
		t.CycleLength(-1)
	default:
		return m, nil
	}
	return m.withNotice(t)
}

// withNotice moves the table's pending notice into the info banner and
// schedules its expiry.
func (m Model) withNotice(t tableController) (tea.Model, tea.Cmd) {
	notice := t.TakeNotice()
	if notice == "" {
		return m, nil
	}
	m.info = notice
	m.infoSeq++
	seq := m.infoSeq
	return m, tea.Tick(noticeExpiry, func(time.Time) tea.Msg {
		return model.StatusClearMsg{Seq: seq}
	})
}

func (m Model) switchTable(step int) (tea.Model, tea.Cmd) {
	if m.src.Query != "" || len(m.tables) < 2 || m.loading {
		return m, nil
	}
	n := len(m.tables)
	m.tableIdx = ((m.tableIdx+step)%n + n) % n
	m.src = model.Source{Table: m.tables[m.tableIdx]}
	m.loading = true
	m.error = ""
	m.info = ""
	return m, tea.Batch(m.spinner.Tick, loadDatasetCmd(m.db, m.src))
}

func (m *Model) currentTable() tableController {
	if m.view == nil {
		return nil
	}
	return m.view
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.keys, m.width, m.height)
	}

	breadcrumbParts := []string{m.src.Label()}
	if m.view != nil {
		breadcrumbParts = []string{m.view.Name()}
	}
	header := renderHeader(breadcrumbParts, m.width)

	var footer string
	if m.mode == model.ModeInsert {
		footer = renderSearchHelp(m.searchKeys, m.width)
	} else {
		footer = FooterStyle.Width(m.width).Render(m.help.View(m.keys))
	}

	top := []string{header}
	showTabs := m.src.Query == "" && len(m.tables) > 1
	if showTabs {
		top = append(top, renderTabs(m.tables, m.tableIdx, m.width))
	}
	if m.error != "" {
		top = append(top, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		top = append(top, SuccessStyle.Width(m.width).Render(m.info))
	}

	contentHeight := m.height
	for _, s := range top {
		contentHeight -= lipgloss.Height(s)
	}
	contentHeight -= lipgloss.Height(footer)
	contentHeight = max(contentHeight, 1)

	var content string
	switch {
	case m.loading:
		content = EmptyStateStyle.Render(m.spinner.View() + " Loading " + m.src.Label() + "...")
	case m.view != nil:
		content = m.view.View(m.width, contentHeight)
	}

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, append(top, content, footer)...)
}

func renderTabs(tables []string, current, width int) string {
	var tabStrings []string
	for i, name := range tables {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if i == current {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}

		tabStrings = append(tabStrings, tabStyle.Render(name))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		MaxHeight(1).
		Render(tabBar)
}

func renderHeader(breadcrumbParts []string, width int) string {
	// Left side: app name + breadcrumb
	title := HeaderStyle.Render("tabula")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", padding) + right
}

func loadTablesCmd(database *sql.DB) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		tables, err := db.ListTables(ctx, database)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.TablesLoadedMsg{Tables: tables}
	}
}

func loadDatasetCmd(database *sql.DB, src model.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		ds, err := db.Load(ctx, database, src)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load %s: %w", src.Label(), err)}
		}
		return model.DatasetLoadedMsg{Dataset: ds}
	}
}
