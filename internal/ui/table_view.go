package ui

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tabula/internal/model"
	"tabula/internal/table"
	"tabula/internal/util"
)

const (
	maxColumnWidth = 32
	minColumnWidth = 3
	measureRows    = 500
	cellPadding    = 1
)

// Empty-state messages.
const (
	EmptyTableText    = "No data in table"
	NoMatchesText     = "No matching rows"
	NoVisibleColsText = "No visible columns. Press C to show all columns."
)

// TableView renders one dataset through a table.Table and forwards user
// actions to it.
type TableView struct {
	tbl     *table.Table
	name    string
	lengths []int
	log     *slog.Logger

	// cursor is the selected position inside the current page; offset is the
	// first page position drawn when the page is taller than the screen.
	cursor         int
	offset         int
	viewportHeight int

	activeColumn int
	widths       []int

	search textinput.Model
	pager  paginator.Model

	notice string
}

// NewTableView builds the table for ds and ingests its rows.
func NewTableView(ds model.Dataset, opts Options) *TableView {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tbl := table.New(
		table.WithOrdering(opts.Ordering),
		table.WithSearching(opts.Searching),
		table.WithPaging(opts.Paging),
		table.WithPageLength(opts.PageLength),
		table.WithLogger(logger.With("dataset", ds.Name)),
	)
	for _, c := range ds.Columns {
		tbl.AddColumn(c.Name, columnOptions(c)...)
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search"
	search.CharLimit = 256

	pager := paginator.New()
	pager.Type = paginator.Dots
	pager.ActiveDot = PagerActiveStyle.Render("•")
	pager.InactiveDot = PagerInactiveStyle.Render("•")

	v := &TableView{
		tbl:     tbl,
		name:    ds.Name,
		lengths: slices.Clone(opts.Lengths),
		log:     logger,
		search:  search,
		pager:   pager,
	}
	if len(v.lengths) == 0 {
		v.lengths = []int{opts.PageLength}
	}

	tbl.OnDraw(func(table.Event) {
		v.syncPager()
		v.clampCursor()
	})
	tbl.Subscribe(v.onEvent)

	start := time.Now()
	tbl.IngestRows(ds.Rows)
	v.measure()
	logger.Info("dataset loaded",
		"dataset", ds.Name,
		"columns", len(ds.Columns),
		"rows", tbl.TotalRows(),
		"elapsed", time.Since(start))

	return v
}

// columnOptions maps a declared SQL type to column settings, following
// SQLite's affinity rules.
func columnOptions(c model.Column) []table.ColumnOption {
	decl := strings.ToUpper(c.DeclType)
	switch {
	case strings.Contains(decl, "DATE") || strings.Contains(decl, "TIME"):
		return []table.ColumnOption{
			table.WithType(table.TypeDate),
			table.WithRender(renderDate),
			table.WithWidth(len("Jan 02, 2006 15:04")),
		}
	case strings.Contains(decl, "INT"):
		return []table.ColumnOption{table.WithType(table.TypeNumber), table.WithRender(renderNumber)}
	case strings.Contains(decl, "CHAR"), strings.Contains(decl, "CLOB"), strings.Contains(decl, "TEXT"):
		return nil
	case strings.Contains(decl, "BLOB"):
		return []table.ColumnOption{table.WithSearchable(false), table.WithOrderable(false)}
	case strings.Contains(decl, "REAL"), strings.Contains(decl, "FLOA"), strings.Contains(decl, "DOUB"),
		strings.Contains(decl, "NUM"), strings.Contains(decl, "DEC"):
		return []table.ColumnOption{table.WithType(table.TypeNumber), table.WithRender(renderNumber)}
	default:
		return nil
	}
}

func renderNumber(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return util.FormatNumber(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func renderDate(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return util.FormatTime(x)
	case string:
		return util.FormatDate(x)
	default:
		return fmt.Sprint(x)
	}
}

// Table exposes the underlying pipeline.
func (v *TableView) Table() *table.Table { return v.tbl }

// Name returns the dataset name.
func (v *TableView) Name() string { return v.name }

// measure sizes each column from its title and a sample of display text.
func (v *TableView) measure() {
	cols := v.tbl.Columns()
	v.widths = make([]int, len(cols))
	sample := v.tbl.Master()
	if len(sample) > measureRows {
		sample = sample[:measureRows]
	}
	for i, c := range cols {
		if c.Width() > 0 {
			v.widths[i] = c.Width()
			continue
		}
		w := runewidth.StringWidth(c.Title()) + 2
		for _, row := range sample {
			w = max(w, runewidth.StringWidth(v.cellText(row, i)))
		}
		v.widths[i] = min(max(w, minColumnWidth), maxColumnWidth)
	}
}

func (v *TableView) cellText(row, col int) string {
	s, _ := v.tbl.Cell(row, col, table.CellDisplay).(string)
	return util.SingleLine(s)
}

func (v *TableView) onEvent(ev table.Event) {
	switch ev.Type {
	case table.EventOrder:
		o, _ := ev.Payload.(table.Order)
		if !o.Active() {
			v.notice = "Sorting cleared"
			return
		}
		col, _ := v.tbl.Column(o.Column)
		v.notice = fmt.Sprintf("Sorted %s %s", strings.ToUpper(col.Title()), o.Dir)
	case table.EventSearch:
		v.cursor, v.offset = 0, 0
	case table.EventPage:
		info, _ := ev.Payload.(table.PageInfo)
		v.cursor, v.offset = 0, 0
		v.notice = fmt.Sprintf("Page %d of %d", info.Page+1, info.Pages)
	case table.EventPageNoChange:
		v.notice = "Already on that page"
	case table.EventLength:
		n, _ := ev.Payload.(int)
		v.notice = fmt.Sprintf("Showing %s rows per page", util.FormatLength(n))
	}
}

func (v *TableView) syncPager() {
	info := v.tbl.PageInfo()
	v.pager.PerPage = max(1, info.Length)
	v.pager.TotalPages = max(1, info.Pages)
	v.pager.Page = info.Page
	if info.Pages > 12 {
		v.pager.Type = paginator.Arabic
	} else {
		v.pager.Type = paginator.Dots
	}
}

func (v *TableView) clampCursor() {
	n := len(v.tbl.Page())
	if n == 0 {
		v.cursor, v.offset = 0, 0
		return
	}
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.offset > v.cursor {
		v.offset = v.cursor
	}
}

// TakeNotice returns and clears the latest user-facing notice.
func (v *TableView) TakeNotice() string {
	n := v.notice
	v.notice = ""
	return n
}

// SelectedRow returns the row index under the cursor.
func (v *TableView) SelectedRow() (int, bool) {
	page := v.tbl.Page()
	if v.cursor < 0 || v.cursor >= len(page) {
		return 0, false
	}
	return page[v.cursor], true
}

// ActiveColumn returns the index of the column under the column cursor.
func (v *TableView) ActiveColumn() int { return v.activeColumn }

func (v *TableView) visibleColumnIndexes() []int {
	var idxs []int
	for _, c := range v.tbl.Columns() {
		if c.Visible() {
			idxs = append(idxs, c.Index())
		}
	}
	return idxs
}

func (v *TableView) columnVisible(i int) bool {
	c, ok := v.tbl.Column(i)
	return ok && c.Visible()
}

func (v *TableView) ensureVisibleActiveColumn() {
	if v.tbl.ColumnCount() == 0 || v.columnVisible(v.activeColumn) {
		return
	}
	if idxs := v.visibleColumnIndexes(); len(idxs) > 0 {
		v.activeColumn = idxs[0]
		return
	}
	v.tbl.SetColumnVisible(0, true)
	v.activeColumn = 0
}

func (v *TableView) NextColumn() {
	n := v.tbl.ColumnCount()
	if n == 0 {
		return
	}
	start := v.activeColumn
	for {
		v.activeColumn = (v.activeColumn + 1) % n
		if v.columnVisible(v.activeColumn) || v.activeColumn == start {
			return
		}
	}
}

func (v *TableView) PrevColumn() {
	n := v.tbl.ColumnCount()
	if n == 0 {
		return
	}
	start := v.activeColumn
	for {
		v.activeColumn--
		if v.activeColumn < 0 {
			v.activeColumn = n - 1
		}
		if v.columnVisible(v.activeColumn) || v.activeColumn == start {
			return
		}
	}
}

// CycleSort advances the sort cycle of the active column.
func (v *TableView) CycleSort() bool {
	if v.tbl.RequestSort(v.activeColumn) {
		return true
	}
	v.refuseSort()
	return false
}

// SortActiveColumn sorts the active column in an explicit direction.
func (v *TableView) SortActiveColumn(desc bool) bool {
	dir := table.SortAscending
	if desc {
		dir = table.SortDescending
	}
	if v.tbl.SetOrder(v.activeColumn, dir) {
		return true
	}
	v.refuseSort()
	return false
}

func (v *TableView) refuseSort() {
	if !v.tbl.Ordering() {
		v.notice = "Sorting is disabled"
		return
	}
	col, _ := v.tbl.Column(v.activeColumn)
	v.log.Debug("sort refused", "dataset", v.name, "col", v.activeColumn)
	v.notice = fmt.Sprintf("Column %s is not sortable", strings.ToUpper(col.Title()))
}

func (v *TableView) HideActiveColumn() bool {
	if v.tbl.VisibleCount() <= 1 {
		v.notice = "Cannot hide last visible column"
		return false
	}
	v.tbl.SetColumnVisible(v.activeColumn, false)
	v.ensureVisibleActiveColumn()
	v.notice = "Column hidden"
	return true
}

func (v *TableView) ShowAllColumns() {
	for i := 0; i < v.tbl.ColumnCount(); i++ {
		v.tbl.SetColumnVisible(i, true)
	}
	v.notice = "All columns shown"
}

// FocusSearch gives the search box keyboard focus.
func (v *TableView) FocusSearch() tea.Cmd {
	if !v.tbl.Searching() {
		v.notice = "Search is disabled"
		return nil
	}
	return v.search.Focus()
}

// BlurSearch returns keyboard focus to the table.
func (v *TableView) BlurSearch() { v.search.Blur() }

// SearchFocused reports whether the search box has focus.
func (v *TableView) SearchFocused() bool { return v.search.Focused() }

// UpdateSearch feeds msg to the search box and re-filters when its text
// changed.
func (v *TableView) UpdateSearch(msg tea.Msg) tea.Cmd {
	before := v.search.Value()
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	if v.search.Value() != before {
		v.tbl.SetSearch(v.search.Value())
	}
	return cmd
}

// ClearSearch empties the search box and the table search.
func (v *TableView) ClearSearch() bool {
	if v.search.Value() == "" && v.tbl.Search() == "" {
		return false
	}
	v.search.SetValue("")
	v.tbl.SetSearch("")
	v.notice = "Search cleared"
	return true
}

// ChangePage applies a pager action.
func (v *TableView) ChangePage(a table.PageAction) bool {
	return v.tbl.ChangePage(a)
}

// CycleLength moves through the page length menu by step, wrapping.
func (v *TableView) CycleLength(step int) bool {
	if !v.tbl.Paging() {
		v.notice = "Paging is disabled"
		return false
	}
	i := slices.Index(v.lengths, v.tbl.Length())
	if i < 0 {
		i = 0
	}
	n := len(v.lengths)
	next := v.lengths[((i+step)%n+n)%n]
	if next == v.tbl.Length() {
		return false
	}
	v.tbl.ChangeLength(next)
	return true
}

// MoveDown moves the cursor down, continuing onto the next page.
func (v *TableView) MoveDown() {
	n := len(v.tbl.Page())
	if v.cursor < n-1 {
		v.cursor++
		vh := v.viewport()
		if v.cursor >= v.offset+vh {
			v.offset = v.cursor - vh + 1
		}
		return
	}
	if v.tbl.Paging() && v.tbl.ChangePage(table.PageNext) {
		v.notice = ""
	}
}

// MoveUp moves the cursor up, continuing onto the previous page.
func (v *TableView) MoveUp() {
	if v.cursor > 0 {
		v.cursor--
		if v.cursor < v.offset {
			v.offset = v.cursor
		}
		return
	}
	if v.tbl.DisplayWindow().Start == 0 {
		return
	}
	if v.tbl.ChangePage(table.PagePrevious) {
		v.notice = ""
		v.cursor = len(v.tbl.Page()) - 1
		vh := v.viewport()
		if v.cursor >= vh {
			v.offset = v.cursor - vh + 1
		}
	}
}

func (v *TableView) viewport() int {
	if v.viewportHeight <= 0 {
		return 10
	}
	return v.viewportHeight
}

// TableMeta summarizes the active column, sort, search and page length.
func (v *TableView) TableMeta() string {
	var parts []string
	if col, ok := v.tbl.Column(v.activeColumn); ok {
		parts = append(parts, fmt.Sprintf("col %s", strings.ToUpper(col.Title())))
	}
	if o := v.tbl.Order(); o.Active() {
		col, _ := v.tbl.Column(o.Column)
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(col.Title()), o.Dir))
	}
	if s := v.tbl.Search(); s != "" {
		parts = append(parts, fmt.Sprintf("search %q", s))
	}
	if v.tbl.Paging() {
		parts = append(parts, util.FormatLength(v.tbl.Length())+"/page")
	}
	return strings.Join(parts, "  ·  ")
}

// Summary describes the visible range, e.g. "Showing 1 to 10 of 57 rows
// (filtered from 64 total rows)".
func (v *TableView) Summary() string {
	info := v.tbl.PageInfo()
	from := info.Start + 1
	if info.Displayed == 0 {
		from = 0
	}
	s := fmt.Sprintf("Showing %s to %s of %s rows",
		util.FormatCount(from), util.FormatCount(info.End), util.FormatCount(info.Displayed))
	if info.Displayed != info.Total {
		s += fmt.Sprintf(" (filtered from %s total rows)", util.FormatCount(info.Total))
	}
	return s
}

// View renders the search box, the current page and the status line.
func (v *TableView) View(width, height int) string {
	var top []string
	if v.tbl.Searching() {
		search := v.search.View()
		if !v.search.Focused() && v.search.Value() == "" {
			search = BreadcrumbStyle.Render("/ to search")
		}
		top = append(top, SearchStyle.Width(width).Render(search))
	}

	visible := v.drawnColumns(width)
	status := v.renderStatus(width)

	var body []string
	if len(visible) == 0 {
		body = append(body, EmptyStateStyle.Render(NoVisibleColsText))
	} else {
		widths := make([]int, len(visible))
		for i, c := range visible {
			widths[i] = v.widths[c]
		}
		body = append(body, v.renderHeader(visible, widths), v.renderDivider(widths))

		v.viewportHeight = max(1, height-len(top)-2-lipgloss.Height(status))
		body = append(body, v.renderRows(visible, widths, width)...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, append(top, body...)...)
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, status)
}

// drawnColumns picks the visible columns that fit in width, scrolled so the
// active column is always drawn.
func (v *TableView) drawnColumns(width int) []int {
	visible := v.visibleColumnIndexes()
	if len(visible) == 0 {
		return nil
	}
	cellWidth := func(c int) int { return v.widths[c] + 2*cellPadding + 1 }

	first := 0
	if pos := slices.Index(visible, v.activeColumn); pos > 0 {
		for first < pos {
			used := 0
			for _, c := range visible[first : pos+1] {
				used += cellWidth(c)
			}
			if used <= width {
				break
			}
			first++
		}
	}

	var out []int
	used := 0
	for _, c := range visible[first:] {
		if used+cellWidth(c) > width && len(out) > 0 {
			break
		}
		used += cellWidth(c)
		out = append(out, c)
	}
	return out
}

func (v *TableView) renderHeader(cols, widths []int) string {
	order := v.tbl.Order()
	cells := make([]string, len(cols))
	for i, c := range cols {
		col, _ := v.tbl.Column(c)
		label := col.Title()
		if order.Active() && order.Column == c {
			if order.Dir == table.SortDescending {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		text := padCell(label, widths[i])
		if c == v.activeColumn {
			cells[i] = ActiveHeaderStyle.Inherit(TableHeaderStyle).Render(text)
		} else {
			cells[i] = TableHeaderStyle.Render(text)
		}
	}
	return strings.Join(cells, DividerStyle.Render("│"))
}

func (v *TableView) renderDivider(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w+2*cellPadding)
	}
	return DividerStyle.Render(strings.Join(parts, "┼"))
}

func (v *TableView) renderRows(cols, widths []int, width int) []string {
	page := v.tbl.Page()
	if len(page) == 0 {
		text := EmptyTableText
		if v.tbl.TotalRows() > 0 {
			text = NoMatchesText
		}
		return []string{EmptyStateStyle.Width(max(width, runewidth.StringWidth(text))).Align(lipgloss.Center).Render(text)}
	}

	vh := v.viewport()
	if v.cursor >= v.offset+vh {
		v.offset = v.cursor - vh + 1
	}

	var rows []string
	for i := v.offset; i < len(page) && i < v.offset+vh; i++ {
		style := NormalRowStyle
		if i == v.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, len(cols))
		for j, c := range cols {
			text := v.cellText(page[i], c)
			if text == "" && i != v.cursor {
				cells[j] = NullCellStyle.Render(padCell("·", widths[j]))
				continue
			}
			cells[j] = style.Render(padCell(text, widths[j]))
		}
		sep := " "
		if i == v.cursor {
			sep = style.Render(" ")
		}
		rows = append(rows, strings.Join(cells, sep))
	}
	return rows
}

func padCell(s string, width int) string {
	pad := strings.Repeat(" ", cellPadding)
	return pad + util.PadRight(s, width) + pad
}

func (v *TableView) renderStatus(width int) string {
	left := StatusBarStyle.Render(v.Summary())
	right := ""
	if v.tbl.Paging() && v.tbl.PageInfo().Pages > 1 {
		right = StatusBarStyle.Render(v.pager.View())
	}
	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	line := left + strings.Repeat(" ", gap) + right
	meta := StatusBarStyle.Render(util.TruncateString(v.TableMeta(), max(0, width-2)))
	return lipgloss.JoinVertical(lipgloss.Left, line, meta)
}
