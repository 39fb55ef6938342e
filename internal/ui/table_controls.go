package ui

import "tabula/internal/table"

type tableController interface {
	NextColumn()
	PrevColumn()
	CycleSort() bool
	SortActiveColumn(desc bool) bool
	HideActiveColumn() bool
	ShowAllColumns()
	ClearSearch() bool
	ChangePage(a table.PageAction) bool
	CycleLength(step int) bool
	MoveUp()
	MoveDown()
	TakeNotice() string
	TableMeta() string
}
