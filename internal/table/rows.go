package table

import (
	"slices"
	"strings"
)

// filterSeparator joins per-column filter strings into a row's filter key.
const filterSeparator = "  "

// Row is one source record plus its lazily built caches.
type Row struct {
	index int
	cells []any

	display    []string
	hasDisplay bool

	filter    []string
	filterKey string
	hasFilter bool

	sortKeys []SortKey
	hasSort  []bool

	handle any
}

// Index returns the row's stable identity.
func (r *Row) Index() int { return r.index }

// Cells returns a copy of the raw values.
func (r *Row) Cells() []any { return slices.Clone(r.cells) }

// Handle returns the renderer's opaque reference, if any.
func (r *Row) Handle() any { return r.handle }

// SetHandle attaches an opaque reference for the renderer. The table never
// interprets it.
func (r *Row) SetHandle(h any) { r.handle = h }

// Invalidate clears the display and filter caches and the sort cache of col.
// A negative col clears the sort cache of every column.
func (r *Row) Invalidate(col int) {
	r.display, r.hasDisplay = nil, false
	r.filter, r.filterKey, r.hasFilter = nil, "", false
	if col < 0 {
		r.sortKeys, r.hasSort = nil, nil
		return
	}
	r.invalidateSort(col)
}

func (r *Row) invalidateSort(col int) {
	if col >= 0 && col < len(r.hasSort) {
		r.hasSort[col] = false
		r.sortKeys[col] = SortKey{}
	}
}

// defined reports whether the row carries a value for col.
func (r *Row) defined(col int) bool {
	return col >= 0 && col < len(r.cells)
}

// rowStore owns the raw rows. Rows are only ever appended.
type rowStore struct {
	rows []*Row
	// onUndefined is called once per cache fill that meets an undefined cell.
	onUndefined func(row, col int)
}

func (s *rowStore) len() int { return len(s.rows) }

func (s *rowStore) get(i int) (*Row, bool) {
	if i < 0 || i >= len(s.rows) {
		return nil, false
	}
	return s.rows[i], true
}

// ingest appends raw rows and returns their assigned indices in input order.
func (s *rowStore) ingest(raw [][]any) []int {
	idx := make([]int, 0, len(raw))
	for _, cells := range raw {
		r := &Row{index: len(s.rows), cells: slices.Clone(cells)}
		s.rows = append(s.rows, r)
		idx = append(idx, r.index)
	}
	return idx
}

// displayData fills and returns the row's presentation strings.
func (s *rowStore) displayData(r *Row, cols *columnModel) []string {
	if r.hasDisplay && len(r.display) == cols.len() {
		return r.display
	}
	out := make([]string, cols.len())
	for i, c := range cols.cols {
		if !r.defined(i) {
			s.undefined(r, i)
			continue
		}
		v := r.cells[i]
		if c.render != nil {
			out[i] = c.render(v)
		} else {
			out[i] = formatValue(v)
		}
	}
	r.display, r.hasDisplay = out, true
	return out
}

// filterData fills and returns the per-column filter strings and the joined
// filter key. Non-searchable columns contribute an empty string.
func (s *rowStore) filterData(r *Row, cols *columnModel) ([]string, string) {
	if r.hasFilter && len(r.filter) == cols.len() {
		return r.filter, r.filterKey
	}
	display := s.displayData(r, cols)
	out := make([]string, cols.len())
	for i, c := range cols.cols {
		if !c.searchable {
			continue
		}
		out[i] = normalizeFilter(display[i])
	}
	r.filter, r.filterKey, r.hasFilter = out, strings.Join(out, filterSeparator), true
	return r.filter, r.filterKey
}

// sortKey fills and returns one column's sort key, built for typ.
func (s *rowStore) sortKey(r *Row, col int, typ ColumnType, cols *columnModel) SortKey {
	if len(r.hasSort) != cols.len() {
		keys := make([]SortKey, cols.len())
		has := make([]bool, cols.len())
		copy(keys, r.sortKeys)
		copy(has, r.hasSort)
		r.sortKeys, r.hasSort = keys, has
	}
	if r.hasSort[col] {
		return r.sortKeys[col]
	}
	var k SortKey
	if r.defined(col) {
		k = sortKeyFor(r.cells[col], s.displayData(r, cols)[col], typ)
	} else {
		s.undefined(r, col)
	}
	r.sortKeys[col], r.hasSort[col] = k, true
	return k
}

// invalidateColumn clears the sort cache of col on every row.
func (s *rowStore) invalidateColumn(col int) {
	for _, r := range s.rows {
		r.invalidateSort(col)
	}
}

// invalidateText clears display and filter caches on every row.
func (s *rowStore) invalidateText() {
	for _, r := range s.rows {
		r.display, r.hasDisplay = nil, false
		r.filter, r.filterKey, r.hasFilter = nil, "", false
	}
}

func (s *rowStore) undefined(r *Row, col int) {
	if s.onUndefined != nil {
		s.onUndefined(r.index, col)
	}
}
