package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an entry stays visible.
const DefaultTTL = 4 * time.Second

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Entry is one transient notification.
type Entry struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sink observes every pushed entry.
type Sink func(Entry)

// Queue holds visible notifications in insertion order. Each entry removes
// itself after the TTL on its own timer. Entries are never deduplicated.
type Queue struct {
	mu      sync.Mutex
	ttl     time.Duration
	sink    Sink
	entries []Entry
	timers  map[string]*time.Timer
	closed  bool
}

// NewQueue creates a queue. A non-positive ttl selects DefaultTTL; sink may be nil.
func NewQueue(ttl time.Duration, sink Sink) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		ttl:    ttl,
		sink:   sink,
		timers: make(map[string]*time.Timer),
	}
}

// Push appends an entry and schedules its removal.
func (q *Queue) Push(kind Kind, message string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	if !q.closed {
		q.entries = append(q.entries, entry)
		q.timers[entry.ID] = time.AfterFunc(q.ttl, func() { q.Dismiss(entry.ID) })
	}
	sink := q.sink
	q.mu.Unlock()

	if sink != nil {
		sink(entry)
	}
	return entry
}

func (q *Queue) Success(message string) Entry { return q.Push(KindSuccess, message) }

func (q *Queue) Error(message string) Entry { return q.Push(KindError, message) }

func (q *Queue) Info(message string) Entry { return q.Push(KindInfo, message) }

// List returns the visible entries, oldest first.
func (q *Queue) List() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.entries)
}

// Dismiss removes an entry early. It reports whether the entry was visible.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	i := slices.IndexFunc(q.entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return false
	}
	q.entries = slices.Delete(q.entries, i, i+1)
	return true
}

// Close stops all timers and drops visible entries. Later pushes still reach
// the sink but are not kept.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.entries = nil
	q.closed = true
}
