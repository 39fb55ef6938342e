package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagingWalk(t *testing.T) {
	tbl := newFruitTable(t, WithPageLength(2))
	var events []EventType
	tbl.Subscribe(func(ev Event) { events = append(events, ev.Type) })

	assert.Equal(t, Window{Start: 0, End: 2}, tbl.DisplayWindow())

	require.True(t, tbl.ChangePage(PageNext))
	assert.Equal(t, Window{Start: 2, End: 4}, tbl.DisplayWindow())

	require.True(t, tbl.ChangePage(PageNext))
	assert.Equal(t, Window{Start: 4, End: 5}, tbl.DisplayWindow())

	assert.False(t, tbl.ChangePage(PageNext))
	assert.Equal(t, Window{Start: 4, End: 5}, tbl.DisplayWindow())

	assert.Equal(t, []EventType{EventPage, EventDraw, EventPage, EventDraw, EventPageNoChange}, events)
}

func TestPageActions(t *testing.T) {
	tests := []struct {
		name    string
		from    int
		action  PageAction
		want    int
		changed bool
	}{
		{name: "first", from: 4, action: PageFirst, want: 0, changed: true},
		{name: "previous", from: 4, action: PagePrevious, want: 2, changed: true},
		{name: "previous at start", from: 0, action: PagePrevious, want: 0},
		{name: "last", from: 0, action: PageLast, want: 4, changed: true},
		{name: "number", from: 0, action: PageNumber(1), want: 2, changed: true},
		{name: "number past end", from: 2, action: PageNumber(10), want: 0, changed: true},
		{name: "negative number", from: 2, action: PageNumber(-1), want: 0, changed: true},
		{name: "ellipsis", from: 2, action: PageEllipsis, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newFruitTable(t, WithPageLength(2))
			if tt.from > 0 {
				require.True(t, tbl.ChangePage(PageNumber(tt.from/2)))
			}
			assert.Equal(t, tt.changed, tbl.ChangePage(tt.action))
			assert.Equal(t, tt.want, tbl.DisplayWindow().Start)
		})
	}
}

func TestChangePageUnknownToken(t *testing.T) {
	logger, buf := bufferLogger()
	tbl := newFruitTable(t, WithPageLength(2), WithLogger(logger))
	var events int
	tbl.Subscribe(func(Event) { events++ })

	assert.False(t, tbl.ChangePageToken("sideways"))
	assert.False(t, tbl.ChangePage(PageAction{}))
	assert.Zero(t, events)
	assert.Contains(t, buf.String(), ErrUnknownPageAction.Error())

	assert.True(t, tbl.ChangePageToken("last"))
	assert.Equal(t, 4, tbl.DisplayWindow().Start)
}

func TestParsePageAction(t *testing.T) {
	for token, want := range map[string]PageAction{
		"first":    PageFirst,
		" Prev ":   PagePrevious,
		"previous": PagePrevious,
		"next":     PageNext,
		"LAST":     PageLast,
		"ellipsis": PageEllipsis,
		"3":        PageNumber(3),
	} {
		got, err := ParsePageAction(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}

	_, err := ParsePageAction("9th")
	assert.ErrorIs(t, err, ErrUnknownPageAction)
	assert.Equal(t, "next", PageNext.String())
	assert.Equal(t, "7", PageNumber(7).String())
}

func TestChangeLengthKeepsBoundary(t *testing.T) {
	tbl := newFruitTable(t, WithPageLength(2))
	require.True(t, tbl.ChangePage(PageLast))

	tbl.ChangeLength(3)
	assert.Equal(t, 3, tbl.Length())
	assert.Equal(t, Window{Start: 3, End: 5}, tbl.DisplayWindow())

	tbl.ChangeLength(10)
	assert.Equal(t, Window{Start: 0, End: 5}, tbl.DisplayWindow())

	tbl.ChangeLength(LengthAll)
	assert.Equal(t, Window{Start: 0, End: 5}, tbl.DisplayWindow())
	assert.Equal(t, PageInfo{Pages: 1, End: 5, Length: LengthAll, Displayed: 5, Total: 5}, tbl.PageInfo())

	tbl.ChangeLength(0)
	tbl.ChangeLength(-7)
	assert.Equal(t, LengthAll, tbl.Length())
}

func TestWindowStaysInBounds(t *testing.T) {
	actions := []PageAction{PageNext, PageNext, PageLast, PagePrevious, PageNumber(3), PageFirst, PageNumber(99)}
	for _, length := range []int{LengthAll, 1, 2, 3, 7} {
		for _, n := range []int{0, 1, 5, 13} {
			tbl := New(WithPageLength(length))
			tbl.AddColumn("v")
			raw := make([][]any, n)
			for i := range raw {
				raw[i] = []any{i}
			}
			tbl.IngestRows(raw)

			for _, a := range actions {
				tbl.ChangePage(a)
				w := tbl.DisplayWindow()
				assert.True(t, 0 <= w.Start && w.Start <= w.End && w.End <= n,
					"length=%d n=%d action=%s window=%+v", length, n, a, w)
				if length > 0 {
					assert.Zero(t, w.Start%length)
					assert.LessOrEqual(t, w.Len(), length)
				}
			}
		}
	}
}

func TestDisplayShrinkClampsStart(t *testing.T) {
	tbl := New(WithPageLength(2))
	tbl.AddColumn("v")
	tbl.IngestRows(rowsOf("a1", "a2", "a3", "b1", "b2"))
	require.True(t, tbl.ChangePage(PageLast))

	require.True(t, tbl.SetCell(4, 0, "a4"))
	require.True(t, tbl.SetCell(3, 0, "zz"))
	tbl.SetSearch("a")
	tbl.ChangePage(PageLast)
	require.Equal(t, 2, tbl.DisplayWindow().Start)

	require.True(t, tbl.SetCell(2, 0, "zz"))
	require.True(t, tbl.SetCell(4, 0, "zz"))
	tbl.Recompute(false)
	assert.Equal(t, Window{Start: 0, End: 2}, tbl.DisplayWindow())
	assert.Equal(t, []int{0, 1}, tbl.Page())
}

func TestPageInfo(t *testing.T) {
	tbl := newFruitTable(t, WithPageLength(2))
	tbl.SetSearch("an")
	tbl.ChangeLength(1)
	require.True(t, tbl.ChangePage(PageNext))

	assert.Equal(t, PageInfo{Page: 1, Pages: 2, Start: 1, End: 2, Length: 1, Displayed: 2, Total: 5}, tbl.PageInfo())
}

func TestClampHelpers(t *testing.T) {
	assert.Equal(t, 2, clampStart(4, 2, 3))
	assert.Equal(t, 0, clampStart(-1, 2, 3))
	assert.Equal(t, 0, clampStart(4, LengthAll, 9))
	assert.Equal(t, 4, clampStart(4, 2, 9))

	assert.Equal(t, 3, lengthOverflow(4, 3, 5))
	assert.Equal(t, 0, lengthOverflow(3, 10, 5))
	assert.Equal(t, 0, lengthOverflow(8, 5, 6))
	assert.Equal(t, 5, lengthOverflow(14, 5, 12))
}
