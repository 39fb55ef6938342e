package table

import (
	"cmp"
	"slices"
)

// sortSpec is one key of a sort chain. Today the chain holds a single key.
type sortSpec struct {
	col int
	dir Direction
	typ ColumnType
}

// applySort permutes master in place by order. Ties fall back to each row's
// position in master before the sort. That snapshot is reversed for a
// descending pass so that descending mirrors ascending, except when master
// already holds this exact descending order, which keeps re-sorting a no-op.
func applySort(t *Table, master []int, order Order) {
	if !order.Active() {
		return
	}
	specs := []sortSpec{{col: order.Column, dir: order.Dir, typ: t.prepareSortColumn(order.Column)}}
	last := t.st.sortedBy
	reverse := order.Dir == SortDescending && (last.Column != order.Column || last.Dir != order.Dir)

	n := len(master)
	pos := make([]int, t.rows.len())
	for i, idx := range master {
		if reverse {
			pos[idx] = n - 1 - i
		} else {
			pos[idx] = i
		}
	}

	keys := make([][]SortKey, len(specs))
	for s, spec := range specs {
		keys[s] = make([]SortKey, t.rows.len())
		for _, idx := range master {
			keys[s][idx] = t.rows.sortKey(t.rows.rows[idx], spec.col, spec.typ, &t.cols)
		}
	}

	slices.SortFunc(master, func(a, b int) int {
		for s, spec := range specs {
			if c := compareKeys(keys[s][a], keys[s][b]); c != 0 {
				if spec.dir == SortDescending {
					return -c
				}
				return c
			}
		}
		return cmp.Compare(pos[a], pos[b])
	})
	t.st.sortedBy = Order{Column: order.Column, Dir: order.Dir}
}

// prepareSortColumn resolves the column's type and drops cached keys built
// for a different type.
func (t *Table) prepareSortColumn(col int) ColumnType {
	c := t.cols.cols[col]
	typ := t.resolvedType(c)
	if !c.hasKeyed || c.keyedAs != typ {
		t.rows.invalidateColumn(col)
		c.keyedAs, c.hasKeyed = typ, true
	}
	return typ
}

func (t *Table) resolvedType(c *Column) ColumnType {
	if c.typ != TypeAuto {
		return c.typ
	}
	if !c.hasDetected {
		c.detected = detectType(func(yield func(any) bool) {
			for _, r := range t.rows.rows {
				if !r.defined(c.index) {
					continue
				}
				if !yield(r.cells[c.index]) {
					return
				}
			}
		})
		c.hasDetected = true
		t.log.Debug("column type detected", "col", c.index, "type", c.detected)
	}
	return c.detected
}

// orderSequence returns the direction cycle that applies to col.
func (t *Table) orderSequence(col int) []Direction {
	if c, ok := t.cols.get(col); ok && len(c.sequence) > 0 {
		return c.sequence
	}
	return t.sequence
}

// nextOrder advances the sort cycle for a request on col: the same column
// moves to the next direction, wrapping; any other column starts over.
func nextOrder(current Order, col int, seq []Direction) Order {
	next := Order{Column: col}
	if current.Column == col {
		next.cursor = (current.cursor + 1) % len(seq)
	}
	next.Dir = seq[next.cursor]
	return next
}
