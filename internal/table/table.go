package table

import (
	"io"
	"log/slog"
	"slices"
)

// state is the table's single mutable aggregate. Sub-engines receive it by
// pointer and keep nothing between calls.
type state struct {
	// master holds every row index exactly once, in sorted order.
	master []int
	// display is the filtered subsequence of master.
	display []int

	order Order
	// sortedBy is the last order applied to master.
	sortedBy Order
	search   string
	start    int
	length   int

	ordering  bool
	searching bool
	paging    bool

	memo filterMemo
}

type options struct {
	ordering  bool
	searching bool
	paging    bool
	length    int
	sequence  []Direction
	logger    *slog.Logger
}

// Option configures a Table.
type Option func(*options)

// WithOrdering enables or disables sorting. With ordering off, new columns
// default to non-orderable.
func WithOrdering(enabled bool) Option {
	return func(o *options) { o.ordering = enabled }
}

// WithSearching enables or disables the global search.
func WithSearching(enabled bool) Option {
	return func(o *options) { o.searching = enabled }
}

// WithPaging enables or disables pagination. Without paging every displayed
// row is in the window.
func WithPaging(enabled bool) Option {
	return func(o *options) { o.paging = enabled }
}

// WithPageLength sets the initial page length; LengthAll shows every row.
// Other non-positive values are ignored.
func WithPageLength(n int) Option {
	return func(o *options) {
		if n == LengthAll || n > 0 {
			o.length = n
		}
	}
}

// WithOrderSequence sets the table-wide direction cycle used by RequestSort.
func WithOrderSequence(dirs ...Direction) Option {
	return func(o *options) {
		if seq := cleanSequence(dirs); seq != nil {
			o.sequence = seq
		}
	}
}

// WithLogger sets the diagnostics logger. nil discards diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Table is the pipeline controller. It owns the rows, the columns and the
// derived display state, and notifies observers after every transition.
type Table struct {
	st       state
	rows     rowStore
	cols     columnModel
	sequence []Direction
	log      *slog.Logger

	drawFns     observerList
	subscribers observerList

	// busy names the running transition; "" when idle.
	busy            string
	warnedUndefined bool
}

// New creates an empty table.
func New(opts ...Option) *Table {
	o := options{
		ordering:  true,
		searching: true,
		paging:    true,
		length:    10,
		sequence:  DefaultOrderSequence,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	t := &Table{
		st: state{
			order:     Unordered,
			sortedBy:  Unordered,
			length:    o.length,
			ordering:  o.ordering,
			searching: o.searching,
			paging:    o.paging,
		},
		cols:     columnModel{orderable: o.ordering},
		sequence: slices.Clone(o.sequence),
		log:      o.logger,
	}
	t.rows.onUndefined = t.undefinedCell
	return t
}

// Ordering reports whether sorting is enabled.
func (t *Table) Ordering() bool { return t.st.ordering }

// Searching reports whether the global search is enabled.
func (t *Table) Searching() bool { return t.st.searching }

// Paging reports whether pagination is enabled.
func (t *Table) Paging() bool { return t.st.paging }

// AddColumn appends a column and returns its index. Columns are searchable
// and orderable by default unless the table has ordering disabled.
func (t *Table) AddColumn(title string, opts ...ColumnOption) int {
	i := t.cols.add(title, opts...)
	t.st.memo.reset()
	return i
}

// Columns returns copies of every column definition.
func (t *Table) Columns() []Column { return t.cols.snapshot() }

// Column returns a copy of one column definition.
func (t *Table) Column(i int) (Column, bool) {
	c, ok := t.cols.get(i)
	if !ok {
		return Column{}, false
	}
	return *c, true
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return t.cols.len() }

// VisibleCount returns how many columns are currently shown.
func (t *Table) VisibleCount() int { return t.cols.visibleCount() }

// SetColumnVisible shows or hides a column. It reports false for an unknown
// column.
func (t *Table) SetColumnVisible(col int, visible bool) bool {
	c, ok := t.column(col)
	if !ok {
		return false
	}
	c.visible = visible
	return true
}

// SetColumnSearchable changes whether a column feeds filter keys. Call
// Recompute to apply it.
func (t *Table) SetColumnSearchable(col int, searchable bool) bool {
	c, ok := t.column(col)
	if !ok {
		return false
	}
	if c.searchable != searchable {
		c.searchable = searchable
		t.rows.invalidateText()
		t.st.memo.reset()
	}
	return true
}

// SetColumnOrderable changes whether a column accepts sort requests. An
// active order on a column made non-orderable is kept until the next request.
func (t *Table) SetColumnOrderable(col int, orderable bool) bool {
	c, ok := t.column(col)
	if !ok {
		return false
	}
	c.orderable = orderable
	return true
}

// SetColumnType changes how sort keys are extracted and drops the column's
// cached keys. Call Recompute to re-sort.
func (t *Table) SetColumnType(col int, typ ColumnType) bool {
	c, ok := t.column(col)
	if !ok {
		return false
	}
	c.typ, c.hasDetected, c.hasKeyed = typ, false, false
	t.rows.invalidateColumn(col)
	return true
}

// SetColumnRender replaces the display formatter and drops every derived
// cache of the column. Call Recompute to apply it.
func (t *Table) SetColumnRender(col int, fn func(any) string) bool {
	c, ok := t.column(col)
	if !ok {
		return false
	}
	c.render = fn
	t.rows.invalidateText()
	t.rows.invalidateColumn(col)
	t.st.memo.reset()
	return true
}

func (t *Table) column(col int) (*Column, bool) {
	c, ok := t.cols.get(col)
	if !ok {
		t.log.Warn("column out of range", "col", col, "columns", t.cols.len(), "error", ErrColumnOutOfRange)
	}
	return c, ok
}

// IngestRows appends raw rows, assigns their indices and runs a full
// recompute. The indices are returned in input order.
func (t *Table) IngestRows(raw [][]any) []int {
	if !t.begin("ingest") {
		return nil
	}
	defer t.end()

	idx := t.rows.ingest(raw)
	t.st.master = append(t.st.master, idx...)
	t.cols.resetDetection()
	t.st.memo.reset()
	t.warnedUndefined = false
	t.log.Debug("rows ingested", "count", len(idx), "total", t.rows.len())

	t.rebuild(true)
	t.draw()
	return idx
}

// Row returns the stored row, for renderers that attach handles.
func (t *Table) Row(i int) (*Row, bool) {
	r, ok := t.rows.get(i)
	if !ok {
		t.log.Warn("row out of range", "row", i, "rows", t.rows.len(), "error", ErrRowOutOfRange)
	}
	return r, ok
}

// Cell returns one representation of a cell. Out-of-range coordinates and
// undefined cells are logged and yield nil. CellDisplay and CellFilter yield
// a string, CellSort a SortKey.
func (t *Table) Cell(row, col int, mode CellMode) any {
	r, ok := t.rows.get(row)
	if !ok {
		t.log.Warn("cell requested for unknown row", "row", row, "col", col, "error", ErrRowOutOfRange)
		return nil
	}
	if _, ok := t.cols.get(col); !ok {
		t.log.Warn("cell requested for unknown column", "row", row, "col", col, "error", ErrColumnOutOfRange)
		return nil
	}
	if !r.defined(col) {
		t.log.Warn("cell has no value", "row", row, "col", col, "error", ErrUndefinedCell)
		return nil
	}

	switch mode {
	case CellRaw:
		return r.cells[col]
	case CellDisplay:
		return t.rows.displayData(r, &t.cols)[col]
	case CellFilter:
		filter, _ := t.rows.filterData(r, &t.cols)
		return filter[col]
	case CellSort:
		return t.rows.sortKey(r, col, t.prepareSortColumn(col), &t.cols)
	default:
		t.log.Warn("unknown cell mode", "mode", mode)
		return nil
	}
}

// FilterKey returns the row's concatenated search string.
func (t *Table) FilterKey(row int) string {
	r, ok := t.Row(row)
	if !ok {
		return ""
	}
	_, key := t.rows.filterData(r, &t.cols)
	return key
}

// Invalidate drops a row's derived caches after its raw data changed
// outside the table. col < 0 drops every column's sort key. Call Recompute
// to re-derive the display.
func (t *Table) Invalidate(row, col int) bool {
	r, ok := t.Row(row)
	if !ok {
		return false
	}
	r.Invalidate(col)
	t.st.memo.reset()
	if c, ok := t.cols.get(col); ok {
		c.hasDetected = false
	} else if col < 0 {
		t.cols.resetDetection()
	}
	return true
}

// SetCell writes a raw value and invalidates the row. Call Recompute to
// re-derive the display.
func (t *Table) SetCell(row, col int, v any) bool {
	r, ok := t.Row(row)
	if !ok {
		return false
	}
	if _, ok := t.column(col); !ok {
		return false
	}
	for len(r.cells) <= col {
		r.cells = append(r.cells, nil)
	}
	r.cells[col] = v
	return t.Invalidate(row, col)
}

// SetSearch replaces the global search text and runs a full recompute,
// returning to the first page.
func (t *Table) SetSearch(text string) {
	if !t.begin("search") {
		return
	}
	defer t.end()

	t.st.search = NormalizeSearch(text)
	if !t.st.searching {
		t.log.Debug("search text stored while searching is disabled", "search", t.st.search)
	}
	t.rebuild(true)
	t.emit(EventSearch, t.st.search)
	t.draw()
}

// Search returns the normalized search text.
func (t *Table) Search() string { return t.st.search }

// RequestSort advances the sort cycle of col and re-sorts without moving
// the page. It reports false, changing nothing, when ordering is disabled or
// the column is unknown or not orderable.
func (t *Table) RequestSort(col int) bool {
	if !t.st.ordering {
		t.log.Debug("sort request ignored: ordering disabled", "col", col)
		return false
	}
	if !t.orderable(col) {
		return false
	}
	return t.applyOrder(nextOrder(t.st.order, col, t.orderSequence(col)))
}

// SetOrder sorts col in an explicit direction. SortNone clears the order.
func (t *Table) SetOrder(col int, dir Direction) bool {
	if !t.st.ordering || !dir.valid() {
		return false
	}
	if !t.orderable(col) {
		return false
	}
	o := Order{Column: col, Dir: dir}
	if i := slices.Index(t.orderSequence(col), dir); i >= 0 {
		o.cursor = i
	}
	return t.applyOrder(o)
}

// ClearOrder drops the sort. Rows keep the order of the last sort.
func (t *Table) ClearOrder() {
	if t.st.order.Column < 0 {
		return
	}
	t.applyOrder(Unordered)
}

// Order returns the current sort specification.
func (t *Table) Order() Order { return t.st.order }

func (t *Table) orderable(col int) bool {
	c, ok := t.cols.get(col)
	if !ok {
		t.log.Warn("sort request for unknown column", "col", col, "error", ErrColumnOutOfRange)
		return false
	}
	if !c.orderable {
		t.log.Debug("sort request rejected", "col", col, "error", ErrNotOrderable)
		return false
	}
	return true
}

func (t *Table) applyOrder(o Order) bool {
	if !t.begin("order") {
		return false
	}
	defer t.end()

	t.st.order = o
	t.log.Debug("order changed", "order", o.String())
	t.rebuild(false)
	t.emit(EventOrder, o)
	t.draw()
	return true
}

// ChangePage moves the window. It reports whether the start changed; only a
// real change redraws, otherwise a page-no-change event is emitted.
func (t *Table) ChangePage(a PageAction) bool {
	if a.kind == pageUnknown {
		t.log.Warn("unknown paging action", "action", a.String(), "error", ErrUnknownPageAction)
		return false
	}
	if !t.begin("page") {
		return false
	}
	defer t.end()

	length := t.st.length
	if !t.st.paging {
		length = LengthAll
	}
	next, ok := pageStartFor(a, t.st.start, length, len(t.st.display))
	if !ok {
		return false
	}
	changed := next != t.st.start
	t.st.start = next
	if !changed {
		t.emit(EventPageNoChange, t.PageInfo())
		return false
	}
	t.emit(EventPage, t.PageInfo())
	t.draw()
	return true
}

// ChangePageToken parses a pager token and applies it. Unknown tokens are
// logged and change nothing.
func (t *Table) ChangePageToken(token string) bool {
	a, err := ParsePageAction(token)
	if err != nil {
		t.log.Warn("unknown paging action", "token", token, "error", err)
		return false
	}
	return t.ChangePage(a)
}

// ChangeLength sets the page length, keeping the first visible record on the
// same page boundary rather than returning to the first page.
func (t *Table) ChangeLength(n int) {
	if n != LengthAll && n <= 0 {
		t.log.Warn("page length rejected", "length", n, "error", ErrInvalidLength)
		return
	}
	if !t.begin("length") {
		return
	}
	defer t.end()

	t.st.length = n
	t.st.start = lengthOverflow(t.st.start, n, len(t.st.display))
	t.emit(EventLength, n)
	t.draw()
}

// Length returns the page length; LengthAll means every row.
func (t *Table) Length() int { return t.st.length }

// Recompute re-derives the display from the current state: sort, filter,
// optionally return to the first page, then draw.
func (t *Table) Recompute(resetPage bool) {
	if !t.begin("recompute") {
		return
	}
	defer t.end()

	t.rebuild(resetPage)
	t.draw()
}

// Draw notifies observers of the current window without re-deriving it.
func (t *Table) Draw() {
	if !t.begin("draw") {
		return
	}
	defer t.end()

	t.draw()
}

func (t *Table) rebuild(resetPage bool) {
	if t.st.ordering {
		applySort(t, t.st.master, t.st.order)
	}
	if t.st.searching {
		t.st.display = applyFilter(&t.st, &t.rows, &t.cols, t.st.master)
	} else {
		t.st.display = slices.Clone(t.st.master)
	}
	if resetPage {
		t.st.start = 0
	}
}

func (t *Table) draw() {
	t.st.start = clampStart(t.st.start, t.st.length, len(t.st.display))
	ev := Event{Type: EventDraw, Table: t, Payload: t.DisplayWindow()}
	t.drawFns.reverse(ev)
	t.subscribers.forward(ev)
}

func (t *Table) emit(typ EventType, payload any) {
	t.subscribers.forward(Event{Type: typ, Table: t, Payload: payload})
}

// TotalRows returns the number of ingested rows.
func (t *Table) TotalRows() int { return t.rows.len() }

// TotalDisplayed returns the number of rows left after filtering.
func (t *Table) TotalDisplayed() int { return len(t.st.display) }

// DisplayWindow returns the visible range of the display sequence.
func (t *Table) DisplayWindow() Window {
	return window(len(t.st.display), t.st.start, t.st.length, t.st.paging)
}

// Page returns the row indices inside the visible window.
func (t *Table) Page() []int {
	w := t.DisplayWindow()
	return slices.Clone(t.st.display[w.Start:w.End])
}

// PageInfo summarizes the pagination state.
func (t *Table) PageInfo() PageInfo { return pageInfo(&t.st, t.rows.len()) }

// Master returns a copy of the sorted, unfiltered row order.
func (t *Table) Master() []int { return slices.Clone(t.st.master) }

// Display returns a copy of the filtered row order.
func (t *Table) Display() []int { return slices.Clone(t.st.display) }

// OnDraw registers a draw callback. Draw callbacks run last-registered-first.
// The returned func removes the callback.
func (t *Table) OnDraw(fn Observer) (remove func()) { return t.drawFns.add(fn) }

// Subscribe registers fn for every event, in registration order. The
// returned func removes the subscription.
func (t *Table) Subscribe(fn Observer) (remove func()) { return t.subscribers.add(fn) }

func (t *Table) begin(op string) bool {
	if t.busy != "" {
		t.log.Warn("ignoring reentrant table call", "op", op, "running", t.busy, "error", ErrReentrant)
		return false
	}
	t.busy = op
	return true
}

func (t *Table) end() { t.busy = "" }

func (t *Table) undefinedCell(row, col int) {
	if t.warnedUndefined {
		return
	}
	t.warnedUndefined = true
	t.log.Warn("row has fewer cells than columns", "row", row, "col", col, "error", ErrUndefinedCell)
}
