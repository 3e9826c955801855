// Package notify holds the ephemeral user-facing message queue. Every
// component reports outcomes here; nothing else renders to the user
// directly.
package notify

import (
	"strconv"
	"sync"
	"time"
)

// Severity of a notification.
type Severity string

const (
	Error   Severity = "error"
	Success Severity = "success"
	Info    Severity = "info"
)

// DefaultTTL is how long a notification stays visible unless dismissed.
const DefaultTTL = 5 * time.Second

// Notification is one queued message. Duplicates are allowed and expire
// independently.
type Notification struct {
	ID       string
	Message  string
	Severity Severity
	Created  time.Time
}

// Queue is an ordered sequence of notifications, append order = display
// order. Each pushed notification schedules its own removal after the
// queue's TTL; timers are per-notification, so overlapping messages
// expire independently of arrival order.
type Queue struct {
	mu       sync.Mutex
	ttl      time.Duration
	seq      int64
	items    []Notification
	timers   map[string]*time.Timer
	onChange func()
}

func New(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, timers: make(map[string]*time.Timer)}
}

// OnChange registers a callback invoked after every push, dismissal or
// expiry. Called without the queue lock held.
func (q *Queue) OnChange(fn func()) {
	q.mu.Lock()
	q.onChange = fn
	q.mu.Unlock()
}

// Push appends a notification and schedules its removal.
func (q *Queue) Push(message string, severity Severity) Notification {
	q.mu.Lock()
	q.seq++
	n := Notification{
		ID:       strconv.FormatInt(q.seq, 10),
		Message:  message,
		Severity: severity,
		Created:  time.Now(),
	}
	q.items = append(q.items, n)
	id := n.ID
	q.timers[id] = time.AfterFunc(q.ttl, func() { q.remove(id) })
	fn := q.onChange
	q.mu.Unlock()

	if fn != nil {
		fn()
	}
	return n
}

// Dismiss removes a notification immediately, canceling its pending
// expiry. Dismissing an unknown id is a no-op.
func (q *Queue) Dismiss(id string) {
	q.remove(id)
}

// Active returns a snapshot of the queue in display order.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

func (q *Queue) remove(id string) {
	q.mu.Lock()
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	found := false
	for i := range q.items {
		if q.items[i].ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			found = true
			break
		}
	}
	fn := q.onChange
	q.mu.Unlock()

	if found && fn != nil {
		fn()
	}
}
