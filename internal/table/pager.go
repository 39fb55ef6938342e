package table

import (
	"fmt"
	"strconv"
	"strings"
)

// LengthAll is the page length that shows every row.
const LengthAll = -1

type pageKind int

const (
	pageUnknown pageKind = iota
	pageFirst
	pagePrevious
	pageNext
	pageLast
	pageEllipsis
	pageNumber
)

// PageAction is a pager request. The zero value is not a valid action.
type PageAction struct {
	kind pageKind
	page int
}

// Page actions understood by ChangePage.
var (
	PageFirst    = PageAction{kind: pageFirst}
	PagePrevious = PageAction{kind: pagePrevious}
	PageNext     = PageAction{kind: pageNext}
	PageLast     = PageAction{kind: pageLast}
	PageEllipsis = PageAction{kind: pageEllipsis}
)

// PageNumber jumps to a zero-based page.
func PageNumber(n int) PageAction {
	return PageAction{kind: pageNumber, page: n}
}

// String returns the action's token.
func (a PageAction) String() string {
	switch a.kind {
	case pageFirst:
		return "first"
	case pagePrevious:
		return "previous"
	case pageNext:
		return "next"
	case pageLast:
		return "last"
	case pageEllipsis:
		return "ellipsis"
	case pageNumber:
		return strconv.Itoa(a.page)
	default:
		return "unknown"
	}
}

// ParsePageAction reads a pager token: first, previous, next, last,
// ellipsis, or a zero-based page number.
func ParsePageAction(token string) (PageAction, error) {
	switch tok := strings.ToLower(strings.TrimSpace(token)); tok {
	case "first":
		return PageFirst, nil
	case "previous", "prev":
		return PagePrevious, nil
	case "next":
		return PageNext, nil
	case "last":
		return PageLast, nil
	case "ellipsis":
		return PageEllipsis, nil
	default:
		if n, err := strconv.Atoi(tok); err == nil {
			return PageNumber(n), nil
		}
		return PageAction{}, fmt.Errorf("%w: %q", ErrUnknownPageAction, token)
	}
}

// displayEnd returns the exclusive end of the visible window.
func displayEnd(start, length, records int, paging bool) int {
	if !paging || length == LengthAll {
		return records
	}
	return min(start+length, records)
}

// window computes the visible range of a display sequence of n rows.
func window(n, start, length int, paging bool) Window {
	if !paging || length == LengthAll {
		return Window{Start: 0, End: n}
	}
	start = max(0, min(start, n))
	return Window{Start: start, End: displayEnd(start, length, n, paging)}
}

// pageStartFor computes the start a page action leads to. ok is false for
// actions that request nothing (ellipsis) or are not understood.
func pageStartFor(a PageAction, start, length, records int) (next int, ok bool) {
	if records == 0 || length == LengthAll {
		switch a.kind {
		case pageUnknown, pageEllipsis:
			return start, false
		}
		return 0, true
	}
	switch a.kind {
	case pageNumber:
		next = a.page * length
		if next > records || next < 0 {
			next = 0
		}
	case pageFirst:
		next = 0
	case pagePrevious:
		next = max(0, start-length)
	case pageNext:
		next = start
		if start+length < records {
			next = start + length
		}
	case pageLast:
		next = ((records - 1) / length) * length
	default:
		return start, false
	}
	if next >= records {
		next = ((records - 1) / length) * length
	}
	return next, true
}

// lengthOverflow keeps the first visible record on the same page boundary
// after a length change, pulling start back when it ran past the data.
func lengthOverflow(start, length, records int) int {
	if length == LengthAll {
		return 0
	}
	end := displayEnd(start, length, records, true)
	if start >= end {
		start = end - length
	}
	start -= start % length
	if start < 0 {
		start = 0
	}
	return start
}

// clampStart keeps start inside [0, records] and on a page boundary of the
// last page when the display shrank underneath it.
func clampStart(start, length, records int) int {
	if start < 0 || length == LengthAll || records == 0 {
		return 0
	}
	if start >= records {
		return ((records - 1) / length) * length
	}
	return start
}

func pageInfo(st *state, total int) PageInfo {
	n := len(st.display)
	w := window(n, st.start, st.length, st.paging)
	info := PageInfo{
		Start:     w.Start,
		End:       w.End,
		Length:    st.length,
		Displayed: n,
		Total:     total,
		Pages:     1,
	}
	if !st.paging {
		info.Length = LengthAll
	}
	if info.Length > 0 && n > 0 {
		info.Page = w.Start / info.Length
		info.Pages = (n + info.Length - 1) / info.Length
	}
	return info
}
