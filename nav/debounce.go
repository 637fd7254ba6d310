package nav

import "time"

// debouncer suppresses a repeated intent (by DebounceKey) that arrives
// again within window of the last time it was admitted. It is not safe
// for concurrent use; the
// choreographer owns one instance and calls admit only from its single
// serial dispatch loop.
type debouncer struct {
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, last: make(map[string]time.Time), now: time.Now}
}

// admit reports whether intent should proceed: true the first time a key
// is seen, or once window has elapsed since the last admission of that
// key; false (suppressed) otherwise. Admitting updates the recorded
// timestamp only when the intent is admitted, so a burst of suppressed
// duplicates does not keep pushing the window out.
func (d *debouncer) admit(i Intent) bool {
	if d.window <= 0 {
		return true
	}
	key := i.DebounceKey()
	now := d.now()
	if prev, ok := d.last[key]; ok && now.Sub(prev) < d.window {
		return false
	}
	d.last[key] = now
	return true
}
