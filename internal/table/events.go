package table

// EventType names a table notification.
type EventType string

// Notifications emitted by a Table.
const (
	EventOrder        EventType = "order"
	EventSearch       EventType = "search"
	EventPage         EventType = "page"
	EventPageNoChange EventType = "page-no-change"
	EventLength       EventType = "length"
	EventDraw         EventType = "draw"
)

// Event is delivered to observers. Payload depends on Type:
//
//	order           Order
//	search          string (normalized search text)
//	page            PageInfo
//	page-no-change  PageInfo
//	length          int
//	draw            Window
type Event struct {
	Type    EventType
	Table   *Table
	Payload any
}

// Observer receives table events. Observers must not mutate the table; such
// calls are logged and ignored while a transition is running.
type Observer func(Event)

type observerEntry struct {
	id int
	fn Observer
}

// observerList is an ordered list of observers with removable entries.
type observerList struct {
	entries []observerEntry
	nextID  int
}

func (l *observerList) add(fn Observer) func() {
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, observerEntry{id: id, fn: fn})
	return func() {
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

// forward calls observers in registration order.
func (l *observerList) forward(ev Event) {
	for _, e := range l.snapshot() {
		e.fn(ev)
	}
}

// reverse calls observers last-registered-first.
func (l *observerList) reverse(ev Event) {
	entries := l.snapshot()
	for i := len(entries) - 1; i >= 0; i-- {
		entries[i].fn(ev)
	}
}

func (l *observerList) snapshot() []observerEntry {
	return append([]observerEntry(nil), l.entries...)
}
