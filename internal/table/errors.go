package table

import "errors"

// Errors attached to diagnostic log records. The public API never returns
// them; it logs and falls back to a safe value instead.
var (
	// ErrRowOutOfRange is logged when a row index does not exist.
	ErrRowOutOfRange = errors.New("row index out of range")

	// ErrColumnOutOfRange is logged when a column index does not exist.
	ErrColumnOutOfRange = errors.New("column index out of range")

	// ErrUndefinedCell is logged when a row has no value for a declared column.
	ErrUndefinedCell = errors.New("requested unknown cell")

	// ErrNotOrderable is logged when a sort targets a non-orderable column.
	ErrNotOrderable = errors.New("column is not orderable")

	// ErrUnknownPageAction is returned by ParsePageAction for unknown tokens.
	ErrUnknownPageAction = errors.New("unknown paging action")

	// ErrInvalidLength is logged when a page length is neither -1 nor positive.
	ErrInvalidLength = errors.New("invalid page length")

	// ErrReentrant is logged when an observer mutates the table mid-transition.
	ErrReentrant = errors.New("table mutated from inside a transition")
)
