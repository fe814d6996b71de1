package visualizer

import "time"

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

type Notification struct {
	Text  string
	Level Level
	At    time.Time
}

// Notifier keeps the most recent user-facing messages for a fixed time.
type Notifier struct {
	ttl   time.Duration
	limit int
	items []Notification
}

func NewNotifier(ttl time.Duration, limit int) *Notifier {
	return &Notifier{ttl: ttl, limit: max(limit, 1)}
}

func (n *Notifier) Push(text string, level Level, now time.Time) {
	n.items = append(n.items, Notification{Text: text, Level: level, At: now})
	if len(n.items) > n.limit {
		n.items = n.items[len(n.items)-n.limit:]
	}
}

// Active drops expired messages and returns the rest, oldest first.
func (n *Notifier) Active(now time.Time) []Notification {
	keep := n.items[:0]
	for _, it := range n.items {
		if now.Sub(it.At) < n.ttl {
			keep = append(keep, it)
		}
	}
	n.items = keep
	return n.items
}

func (n *Notifier) TTL() time.Duration { return n.ttl }
