package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// DatasetLoadedMsg is sent when a dataset is loaded.
type DatasetLoadedMsg struct {
	Dataset Dataset
}

// TablesLoadedMsg is sent when the source's table list is loaded.
type TablesLoadedMsg struct {
	Tables []string
}

// StatusClearMsg clears a transient status line set at the given sequence.
type StatusClearMsg struct {
	Seq int
}

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
