package nav

import (
	"sync"
	"time"
)

// effectiveScreenTimeout resolves the timeout that applies to node:
// per-node override, then engine-wide default, then NoTimeout.
// Node.EffectiveTimeout already implements this precedence;
// effectiveScreenTimeout exists so the timer actor has a nil-node-safe
// entry point independent of Node's own method set.
func effectiveScreenTimeout(node *Node, defaultTimeout time.Duration) time.Duration {
	return node.EffectiveTimeout(defaultTimeout)
}

// LockReason is an opaque token identifying why inactivity timeout is
// currently suppressed (e.g. "video-playing", "form-editing"). Multiple
// callers may hold locks simultaneously; the timer stays suppressed
// until every lock is released. Tracking a set of held reasons, rather
// than a single last-write-wins slot, means one caller's Release cannot
// resume the clock out from under another caller still holding its own
// lock.
type LockReason string

// InactivityTimer is the inactivity-timer actor: it watches pulses
// (interaction events, current-node changes, and lock acquire/release)
// and emits InteractionTimeout intents after defaultTimeout (or the
// current node's override) of silence, unless suppressed by an active
// lock. Each pulse cancels and restarts the underlying timer.
type InactivityTimer struct {
	mu             sync.Mutex
	defaultTimeout time.Duration
	currentNode    *Node
	locks          map[LockReason]struct{}

	timer   *time.Timer
	cancel  chan struct{}
	out     chan Intent
	nextPri int

	stopped bool
}

// NewInactivityTimer constructs a timer actor with the given engine-wide
// default screen timeout and intent priority. It does not start ticking
// until Pulse or SetCurrentNode is first called: the clock only runs
// once a screen is current.
func NewInactivityTimer(defaultTimeout time.Duration, priority int) *InactivityTimer {
	return &InactivityTimer{
		defaultTimeout: defaultTimeout,
		locks:          make(map[LockReason]struct{}),
		out:            make(chan Intent, 1),
		nextPri:        priority,
	}
}

// Intents returns the channel on which InteractionTimeout intents are
// delivered. It implements the relevant half of the Actor interface;
// InactivityTimer additionally exposes Pulse/Acquire/Release/SetCurrentNode
// which are not part of Actor since they are driven by the choreographer
// itself rather than external user/system callers.
func (t *InactivityTimer) Intents() <-chan Intent { return t.out }

// Sender implements Actor.
func (t *InactivityTimer) Sender() Sender { return SenderSystem }

// DefaultPriority implements Actor.
func (t *InactivityTimer) DefaultPriority() int { return t.nextPri }

// SetCurrentNode updates which node's timeout governs the clock and
// restarts it, so the duration always reflects the node currently on
// screen.
func (t *InactivityTimer) SetCurrentNode(n *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentNode = n
	t.restartLocked()
}

// Pulse resets the inactivity clock in response to user interaction,
// without changing the governing node.
func (t *InactivityTimer) Pulse() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.restartLocked()
}

// Acquire suppresses timeout firing until every acquired reason is
// released. Acquiring an already-held reason is idempotent.
func (t *InactivityTimer) Acquire(reason LockReason) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locks[reason] = struct{}{}
	t.stopLocked()
}

// Release removes a previously acquired lock. Once no locks remain the
// clock restarts from zero: releasing the last lock re-arms the timer
// rather than firing immediately.
func (t *InactivityTimer) Release(reason LockReason) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.locks, reason)
	if len(t.locks) == 0 {
		t.restartLocked()
	}
}

// Stop permanently halts the timer; no further intents are emitted.
func (t *InactivityTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.stopLocked()
}

func (t *InactivityTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *InactivityTimer) restartLocked() {
	t.stopLocked()
	if t.stopped || len(t.locks) > 0 {
		return
	}

	timeout := effectiveScreenTimeout(t.currentNode, t.defaultTimeout)
	if timeout == NoTimeout || timeout <= 0 {
		return
	}

	t.timer = time.AfterFunc(timeout, t.fire)
}

func (t *InactivityTimer) fire() {
	t.mu.Lock()
	suppressed := t.stopped || len(t.locks) > 0
	priority := t.nextPri
	t.mu.Unlock()

	if suppressed {
		return
	}

	intent := InteractionTimeout(priority)
	select {
	case t.out <- intent:
	default:
		// A prior timeout intent is still awaiting dispatch; drop this
		// one rather than blocking the timer goroutine.
	}
}
