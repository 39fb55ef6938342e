package table

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// filterMemo remembers the last search term and the rows that matched it, so
// a narrowing search only re-tests earlier matches.
type filterMemo struct {
	term    string
	matches *roaring.Bitmap
}

func (m *filterMemo) reset() {
	m.term, m.matches = "", nil
}

// narrows reports whether every row matching search is already in the memo.
func (m *filterMemo) narrows(search string) bool {
	return m.matches != nil && m.term != "" && strings.Contains(search, m.term)
}

// applyFilter returns the subsequence of master whose filter keys contain
// search. Output order always follows master.
func applyFilter(st *state, rows *rowStore, cols *columnModel, master []int) []int {
	out := make([]int, 0, len(master))
	search := st.search
	if search == "" {
		st.memo.reset()
		return append(out, master...)
	}

	narrowing := st.memo.narrows(search)
	matches := roaring.New()
	for _, idx := range master {
		if narrowing && !st.memo.matches.Contains(uint32(idx)) {
			continue
		}
		_, key := rows.filterData(rows.rows[idx], cols)
		if strings.Contains(key, search) {
			matches.Add(uint32(idx))
			out = append(out, idx)
		}
	}
	st.memo = filterMemo{term: search, matches: matches}
	return out
}
