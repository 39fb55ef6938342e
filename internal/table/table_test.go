package table

import (
	"bytes"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowsOf builds single-column raw rows.
func rowsOf(vals ...any) [][]any {
	out := make([][]any, len(vals))
	for i, v := range vals {
		out[i] = []any{v}
	}
	return out
}

func newFruitTable(t *testing.T, opts ...Option) *Table {
	t.Helper()
	tbl := New(opts...)
	tbl.AddColumn("fruit")
	idx := tbl.IngestRows(rowsOf("banana", "Apple", "cherry", "apple", "Banana"))
	require.Equal(t, []int{0, 1, 2, 3, 4}, idx)
	return tbl
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func requirePermutation(t *testing.T, tbl *Table) {
	t.Helper()
	master := tbl.Master()
	slices.Sort(master)
	require.Len(t, master, tbl.TotalRows())
	for i, idx := range master {
		require.Equal(t, i, idx, "master must hold every row index exactly once")
	}
}

func TestIngestAssignsSequentialIndices(t *testing.T) {
	tbl := newFruitTable(t)

	idx := tbl.IngestRows(rowsOf("date", "elderberry"))
	assert.Equal(t, []int{5, 6}, idx)
	assert.Equal(t, 7, tbl.TotalRows())
	assert.Equal(t, 7, tbl.TotalDisplayed())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, tbl.Master())
	requirePermutation(t, tbl)
}

func TestMasterStaysPermutation(t *testing.T) {
	tbl := newFruitTable(t, WithPageLength(2))

	require.True(t, tbl.RequestSort(0))
	requirePermutation(t, tbl)
	tbl.SetSearch("an")
	requirePermutation(t, tbl)
	tbl.IngestRows(rowsOf("mango", "kiwi"))
	requirePermutation(t, tbl)
	require.True(t, tbl.RequestSort(0))
	tbl.ChangePage(PageLast)
	tbl.ChangeLength(3)
	requirePermutation(t, tbl)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	for _, clicks := range []int{0, 1, 2, 3} {
		tbl := newFruitTable(t)
		for i := 0; i < clicks; i++ {
			require.True(t, tbl.RequestSort(0))
		}
		tbl.SetSearch("a")

		tbl.Recompute(false)
		first := tbl.Display()
		tbl.Recompute(false)
		assert.Equal(t, first, tbl.Display(), "clicks=%d", clicks)
		tbl.Recompute(true)
		assert.Equal(t, first, tbl.Display(), "clicks=%d", clicks)
	}
}

func TestCellModes(t *testing.T) {
	tbl := New()
	tbl.AddColumn("name")
	tbl.AddColumn("qty")
	tbl.AddColumn("note", WithSearchable(false))
	tbl.IngestRows([][]any{
		{"<b>Crème</b> &amp; co", 42, "line\r\n\nbreak"},
	})

	assert.Equal(t, "<b>Crème</b> &amp; co", tbl.Cell(0, 0, CellRaw))
	assert.Equal(t, "42", tbl.Cell(0, 1, CellDisplay))
	assert.Equal(t, "Creme & co", tbl.Cell(0, 0, CellFilter))
	assert.Equal(t, "", tbl.Cell(0, 2, CellFilter), "non-searchable columns contribute nothing")
	assert.Equal(t, "Creme & co  42  ", tbl.FilterKey(0))

	key, ok := tbl.Cell(0, 1, CellSort).(SortKey)
	require.True(t, ok)
	assert.Equal(t, "42", key.String())
}

func TestCellOutOfRangeLogsAndReturnsNil(t *testing.T) {
	logger, buf := bufferLogger()
	tbl := New(WithLogger(logger))
	tbl.AddColumn("a")
	tbl.AddColumn("b")
	tbl.IngestRows([][]any{{"only a"}})

	assert.Nil(t, tbl.Cell(5, 0, CellDisplay))
	assert.Contains(t, buf.String(), ErrRowOutOfRange.Error())

	assert.Nil(t, tbl.Cell(0, 9, CellRaw))
	assert.Contains(t, buf.String(), ErrColumnOutOfRange.Error())

	buf.Reset()
	assert.Nil(t, tbl.Cell(0, 1, CellDisplay))
	assert.Contains(t, buf.String(), ErrUndefinedCell.Error())
	assert.Equal(t, "only a", tbl.Cell(0, 0, CellDisplay))
}

func TestNullCellIsNotUndefined(t *testing.T) {
	logger, buf := bufferLogger()
	tbl := New(WithLogger(logger))
	tbl.AddColumn("a")
	tbl.IngestRows([][]any{{nil}})
	buf.Reset()

	assert.Nil(t, tbl.Cell(0, 0, CellRaw))
	assert.Equal(t, "", tbl.Cell(0, 0, CellDisplay))
	assert.NotContains(t, buf.String(), ErrUndefinedCell.Error())
}

func TestRenderFormatterFeedsDisplayAndFilter(t *testing.T) {
	tbl := New()
	tbl.AddColumn("price", WithRender(func(v any) string {
		if f, ok := v.(float64); ok && f > 100 {
			return "expensive"
		}
		return "cheap"
	}))
	tbl.IngestRows(rowsOf(5.0, 500.0))

	assert.Equal(t, "expensive", tbl.Cell(1, 0, CellDisplay))
	tbl.SetSearch("cheap")
	assert.Equal(t, []int{0}, tbl.Display())

	require.True(t, tbl.SetColumnRender(0, func(any) string { return "same" }))
	tbl.Recompute(true)
	assert.Equal(t, "same", tbl.Cell(1, 0, CellDisplay))
	assert.Empty(t, tbl.Display())
}

func TestSetCellInvalidatesCaches(t *testing.T) {
	tbl := newFruitTable(t)
	require.Equal(t, "banana", tbl.Cell(0, 0, CellDisplay))

	require.True(t, tbl.SetCell(0, 0, "zucchini"))
	tbl.Recompute(true)
	assert.Equal(t, "zucchini", tbl.Cell(0, 0, CellDisplay))
	assert.Equal(t, "zucchini", tbl.FilterKey(0))

	require.True(t, tbl.RequestSort(0))
	assert.Equal(t, []int{1, 3, 4, 2, 0}, tbl.Master())
}

func TestRowHandleIsOpaque(t *testing.T) {
	tbl := newFruitTable(t)
	r, ok := tbl.Row(2)
	require.True(t, ok)
	assert.Nil(t, r.Handle())

	type node struct{ id string }
	r.SetHandle(&node{id: "tr-2"})
	r2, _ := tbl.Row(2)
	assert.Equal(t, &node{id: "tr-2"}, r2.Handle())
	assert.Equal(t, []any{"cherry"}, r2.Cells())

	_, ok = tbl.Row(-1)
	assert.False(t, ok)
}

func TestColumnModelDefaults(t *testing.T) {
	tbl := New()
	tbl.AddColumn("a")
	tbl.AddColumn("b", WithHidden(), WithWidth(12))
	tbl.AddColumn("c", WithSearchable(false), WithOrderable(false))

	cols := tbl.Columns()
	require.Len(t, cols, 3)
	assert.True(t, cols[0].Searchable())
	assert.True(t, cols[0].Orderable())
	assert.Equal(t, 12, cols[1].Width())
	assert.False(t, cols[2].Searchable())
	assert.False(t, cols[2].Orderable())
	assert.Equal(t, 2, tbl.VisibleCount())

	require.True(t, tbl.SetColumnVisible(1, true))
	assert.Equal(t, 3, tbl.VisibleCount())
	assert.False(t, tbl.SetColumnVisible(7, true))

	noSort := New(WithOrdering(false))
	noSort.AddColumn("a")
	c, ok := noSort.Column(0)
	require.True(t, ok)
	assert.False(t, c.Orderable())
}

func TestEmptyTable(t *testing.T) {
	tbl := New(WithPageLength(3))
	tbl.AddColumn("a")
	tbl.SetSearch("anything")

	assert.Equal(t, 0, tbl.TotalRows())
	assert.Equal(t, 0, tbl.TotalDisplayed())
	assert.Equal(t, Window{}, tbl.DisplayWindow())
	assert.Empty(t, tbl.Page())
	assert.False(t, tbl.ChangePage(PageNext))
	assert.Equal(t, PageInfo{Pages: 1, Length: 3}, tbl.PageInfo())
}

func TestFeaturesDisabled(t *testing.T) {
	tbl := newFruitTable(t, WithSearching(false), WithPaging(false), WithOrdering(false))

	assert.False(t, tbl.RequestSort(0))
	tbl.SetSearch("an")
	assert.Equal(t, "an", tbl.Search())
	assert.Equal(t, 5, tbl.TotalDisplayed())
	assert.Equal(t, Window{Start: 0, End: 5}, tbl.DisplayWindow())
	assert.False(t, tbl.ChangePage(PageNext))
}

func TestEventsCarryPayloads(t *testing.T) {
	tbl := newFruitTable(t, WithPageLength(2))
	var got []Event
	tbl.Subscribe(func(ev Event) { got = append(got, ev) })

	require.True(t, tbl.RequestSort(0))
	tbl.SetSearch("an")
	tbl.ChangeLength(3)

	types := make([]EventType, len(got))
	for i, ev := range got {
		types[i] = ev.Type
		assert.Same(t, tbl, ev.Table)
	}
	assert.Equal(t, []EventType{EventOrder, EventDraw, EventSearch, EventDraw, EventLength, EventDraw}, types)
	assert.Equal(t, Order{Column: 0, Dir: SortAscending}, got[0].Payload)
	assert.Equal(t, "an", got[2].Payload)
	assert.Equal(t, 3, got[4].Payload)
	assert.Equal(t, Window{Start: 0, End: 2}, got[5].Payload)
}

func TestDrawCallbacksRunLastRegisteredFirst(t *testing.T) {
	tbl := newFruitTable(t)
	var calls []string
	tbl.Subscribe(func(ev Event) {
		if ev.Type == EventDraw {
			calls = append(calls, "broadcast")
		}
	})
	tbl.OnDraw(func(Event) { calls = append(calls, "first") })
	removeSecond := tbl.OnDraw(func(Event) { calls = append(calls, "second") })
	tbl.OnDraw(func(Event) { calls = append(calls, "third") })

	tbl.Draw()
	assert.Equal(t, []string{"third", "second", "first", "broadcast"}, calls)

	calls = nil
	removeSecond()
	tbl.Draw()
	assert.Equal(t, []string{"third", "first", "broadcast"}, calls)
}

func TestReentrantMutationIsIgnored(t *testing.T) {
	logger, buf := bufferLogger()
	tbl := newFruitTable(t, WithLogger(logger))
	tbl.OnDraw(func(ev Event) {
		ev.Table.SetSearch("cherry")
	})

	tbl.SetSearch("an")
	assert.Equal(t, "an", tbl.Search())
	assert.Equal(t, []int{0, 4}, tbl.Display())
	assert.Contains(t, buf.String(), ErrReentrant.Error())
}
