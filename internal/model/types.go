package model

// Column describes one field of a loaded dataset.
type Column struct {
	Name     string
	DeclType string // declared SQL type, "" for expressions
}

// Dataset is a static set of rows read from a source. Each row holds one
// raw value per column; NULLs are nil and text is string.
type Dataset struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the column titles in order.
func (d Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Source identifies what to load: a table by name or an arbitrary query.
type Source struct {
	Table string
	Query string
}

// Label returns a short description for titles and logs.
func (s Source) Label() string {
	if s.Query != "" {
		return "query"
	}
	return s.Table
}
