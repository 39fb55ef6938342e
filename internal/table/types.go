// Package table implements the display-index pipeline behind an interactive
// data table: raw rows and column definitions go in, and an ordered, filtered
// and paginated sequence of row indices comes out for a renderer to draw.
//
// A Table is not safe for concurrent use. Every operation runs to completion
// before returning, and callers must confine a Table to a single goroutine
// (the ui package keeps it inside the Bubble Tea update loop).
package table

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Direction specifies the direction of sorting.
type Direction int

const (
	// SortNone indicates no sorting.
	SortNone Direction = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	switch d {
	case SortNone:
		return "none"
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", d)
	}
}

func (d Direction) valid() bool {
	return d == SortNone || d == SortAscending || d == SortDescending
}

// DefaultOrderSequence is the direction cycle used when neither the table nor
// the column configures one.
var DefaultOrderSequence = []Direction{SortAscending, SortDescending, SortNone}

// Order is the current sort specification.
type Order struct {
	// Column is the ordered column, or -1 when the table is unsorted.
	Column int
	// Dir is the sort direction.
	Dir Direction

	// cursor is the position of Dir in the column's direction sequence.
	cursor int
}

// Unordered is the absent order.
var Unordered = Order{Column: -1}

// Active reports whether o describes an actual sort.
func (o Order) Active() bool {
	return o.Column >= 0 && o.Dir != SortNone
}

// String renders o for logs and status lines.
func (o Order) String() string {
	if !o.Active() {
		return "unsorted"
	}
	return fmt.Sprintf("col %d %s", o.Column, o.Dir)
}

// CellMode selects which representation of a cell Cell returns.
type CellMode int

const (
	// CellRaw is the value as ingested.
	CellRaw CellMode = iota
	// CellDisplay is the presentation string.
	CellDisplay
	// CellFilter is the normalized searchable string.
	CellFilter
	// CellSort is the comparison key (a SortKey).
	CellSort
)

// String returns the string representation of a CellMode.
func (m CellMode) String() string {
	switch m {
	case CellRaw:
		return "raw"
	case CellDisplay:
		return "display"
	case CellFilter:
		return "filter"
	case CellSort:
		return "sort"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// ColumnType controls how sort keys are extracted from a column.
type ColumnType int

const (
	// TypeAuto detects the type from the column's values.
	TypeAuto ColumnType = iota
	// TypeString sorts by lower-cased display text.
	TypeString
	// TypeNumber sorts numerically.
	TypeNumber
	// TypeDate sorts chronologically.
	TypeDate
	// TypeHTML sorts by lower-cased text with markup removed.
	TypeHTML
)

// String returns the string representation of a ColumnType.
func (ct ColumnType) String() string {
	switch ct {
	case TypeAuto:
		return "auto"
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date"
	case TypeHTML:
		return "html"
	default:
		return fmt.Sprintf("unknown(%d)", ct)
	}
}

type keyKind uint8

// Empty keys sort first, then numbers, then timestamps, then text.
const (
	keyEmpty keyKind = iota
	keyNumber
	keyTime
	keyString
)

// SortKey is a comparison-ready cell value.
type SortKey struct {
	kind keyKind
	num  float64
	ts   int64
	str  string
}

// IsEmpty reports whether k is the empty key shared by all empty cells.
func (k SortKey) IsEmpty() bool { return k.kind == keyEmpty }

// String returns the key as text; the empty key is "".
func (k SortKey) String() string {
	switch k.kind {
	case keyNumber:
		return strconv.FormatFloat(k.num, 'f', -1, 64)
	case keyTime:
		return time.Unix(0, k.ts).UTC().Format(time.RFC3339Nano)
	case keyString:
		return k.str
	default:
		return ""
	}
}

func numberKey(f float64) SortKey { return SortKey{kind: keyNumber, num: f} }
func timeKey(t time.Time) SortKey { return SortKey{kind: keyTime, ts: t.UnixNano()} }
func stringKey(s string) SortKey  { return SortKey{kind: keyString, str: s} }

func compareKeys(a, b SortKey) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case keyNumber:
		return cmp.Compare(a.num, b.num)
	case keyTime:
		return cmp.Compare(a.ts, b.ts)
	case keyString:
		return strings.Compare(a.str, b.str)
	default:
		return 0
	}
}

// Window is a half-open range [Start, End) of positions in the display
// sequence.
type Window struct {
	Start int
	End   int
}

// Len returns the number of positions in w.
func (w Window) Len() int { return w.End - w.Start }

// PageInfo summarizes pagination for status lines and pagers. Page is
// zero-based and Pages is at least 1. Length is -1 when every row shows.
// Displayed counts rows after filtering; Total counts ingested rows.
type PageInfo struct {
	Page      int
	Pages     int
	Start     int
	End       int
	Length    int
	Displayed int
	Total     int
}
