package table

import "slices"

// Column is one field definition. Columns are created through
// Table.AddColumn and read back as copies.
type Column struct {
	index      int
	title      string
	searchable bool
	orderable  bool
	visible    bool
	width      int
	typ        ColumnType
	sequence   []Direction
	render     func(any) string

	// detected caches the TypeAuto resolution until the next ingest.
	detected    ColumnType
	hasDetected bool
	// keyedAs is the type the cached sort keys were built with.
	keyedAs  ColumnType
	hasKeyed bool
}

// Index returns the column's position.
func (c Column) Index() int { return c.index }

// Title returns the column heading.
func (c Column) Title() string { return c.title }

// Searchable reports whether the column contributes to filter keys.
func (c Column) Searchable() bool { return c.searchable }

// Orderable reports whether sort requests on the column are accepted.
func (c Column) Orderable() bool { return c.orderable }

// Visible reports whether the column is currently shown.
func (c Column) Visible() bool { return c.visible }

// Width returns the sizing hint, 0 when unset. The pipeline never reads it.
func (c Column) Width() int { return c.width }

// Type returns the configured type, which may be TypeAuto.
func (c Column) Type() ColumnType { return c.typ }

// OrderSequence returns the column's direction cycle override, if any.
func (c Column) OrderSequence() []Direction { return slices.Clone(c.sequence) }

// ColumnOption configures a column at creation.
type ColumnOption func(*Column)

// WithSearchable sets whether the column takes part in global search.
func WithSearchable(searchable bool) ColumnOption {
	return func(c *Column) { c.searchable = searchable }
}

// WithOrderable sets whether the column can be sorted.
func WithOrderable(orderable bool) ColumnOption {
	return func(c *Column) { c.orderable = orderable }
}

// WithWidth attaches a sizing hint for the renderer.
func WithWidth(width int) ColumnOption {
	return func(c *Column) {
		if width > 0 {
			c.width = width
		}
	}
}

// WithHidden creates the column hidden.
func WithHidden() ColumnOption {
	return func(c *Column) { c.visible = false }
}

// WithType fixes the sort type instead of detecting it.
func WithType(t ColumnType) ColumnOption {
	return func(c *Column) { c.typ = t }
}

// WithColumnOrderSequence overrides the table's direction cycle for this
// column. Invalid directions are dropped; an empty result keeps the default.
func WithColumnOrderSequence(dirs ...Direction) ColumnOption {
	return func(c *Column) { c.sequence = cleanSequence(dirs) }
}

// WithRender sets the display formatter for raw values.
func WithRender(fn func(any) string) ColumnOption {
	return func(c *Column) { c.render = fn }
}

// columnModel owns the column list.
type columnModel struct {
	cols []*Column
	// orderable is the default for new columns; false when the table has
	// ordering disabled.
	orderable bool
}

func (m *columnModel) add(title string, opts ...ColumnOption) int {
	c := &Column{
		index:      len(m.cols),
		title:      title,
		searchable: true,
		orderable:  m.orderable,
		visible:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	m.cols = append(m.cols, c)
	return c.index
}

func (m *columnModel) len() int { return len(m.cols) }

func (m *columnModel) get(i int) (*Column, bool) {
	if i < 0 || i >= len(m.cols) {
		return nil, false
	}
	return m.cols[i], true
}

func (m *columnModel) visibleCount() int {
	n := 0
	for _, c := range m.cols {
		if c.visible {
			n++
		}
	}
	return n
}

// resetDetection forgets every TypeAuto resolution.
func (m *columnModel) resetDetection() {
	for _, c := range m.cols {
		c.hasDetected = false
	}
}

func (m *columnModel) snapshot() []Column {
	out := make([]Column, len(m.cols))
	for i, c := range m.cols {
		out[i] = *c
		out[i].sequence = slices.Clone(c.sequence)
	}
	return out
}

func cleanSequence(dirs []Direction) []Direction {
	out := make([]Direction, 0, len(dirs))
	for _, d := range dirs {
		if d.valid() {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
