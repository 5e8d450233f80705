package store

import (
	"sync"

	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
)

// AlertFeed is a bounded, thread-safe list of recent alerts, newest first.
// Once full, adding an alert evicts the oldest one.
type AlertFeed struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // newest
	tail       *entry // oldest
}

type entry struct {
	alert domain.Alert
	prev  *entry
	next  *entry
}

// NewAlertFeed creates a feed holding at most maxEntries alerts.
func NewAlertFeed(maxEntries int) *AlertFeed {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &AlertFeed{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

// Add records an alert as the newest entry. It reports false and leaves the
// feed unchanged when an alert with the same id is already held, so a
// redelivered alert is recorded once.
func (f *AlertFeed) Add(a domain.Alert) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[a.ID]; ok {
		return false
	}

	e := &entry{alert: a}
	f.entries[a.ID] = e
	f.addToFront(e)

	if len(f.entries) > f.maxEntries {
		f.evictTail()
	}
	return true
}

// Get returns the alert with the given id if it is still in the feed.
func (f *AlertFeed) Get(id string) (domain.Alert, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entries[id]
	if !ok {
		return domain.Alert{}, false
	}
	return e.alert, true
}

// List returns up to limit alerts, newest first. A non-positive limit
// returns the whole feed.
func (f *AlertFeed) List(limit int) []domain.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Alert, 0, n)
	for e := f.head; e != nil && len(out) < n; e = e.next {
		out = append(out, e.alert)
	}
	return out
}

// Len returns the number of alerts held.
func (f *AlertFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *AlertFeed) addToFront(e *entry) {
	e.next = f.head
	e.prev = nil
	if f.head != nil {
		f.head.prev = e
	}
	f.head = e
	if f.tail == nil {
		f.tail = e
	}
}

func (f *AlertFeed) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		f.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		f.tail = e.prev
	}
}

func (f *AlertFeed) evictTail() {
	if f.tail == nil {
		return
	}
	delete(f.entries, f.tail.alert.ID)
	f.remove(f.tail)
}
