package nav

import "sync"

// CurrentNodeObservable is a monotonically-updated broadcast of the
// current node: a single published latest value plus fan-out
// notification, so subscribers always see the latest value; a subscriber
// that has not yet read a pending value loses it to the next change.
type CurrentNodeObservable struct {
	mu      sync.Mutex
	current *Node
	subs    map[int]chan *Node
	nextID  int
}

func newCurrentNodeObservable() *CurrentNodeObservable {
	return &CurrentNodeObservable{subs: make(map[int]chan *Node)}
}

// Value returns the current node.
func (o *CurrentNodeObservable) Value() *Node {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Subscribe registers a channel that first receives the current value, if
// any, and then each published value (repeats of an unchanged value are
// not suppressed), minus any value replaced before it was read. The returned
// function unsubscribes; callers must call it to avoid leaking the
// channel's goroutine-side buffer. The channel has capacity 1 and is kept
// drained-and-refilled with the latest value (last-write-wins) so a slow
// subscriber never blocks publication.
func (o *CurrentNodeObservable) Subscribe() (ch <-chan *Node, unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	c := make(chan *Node, 1)
	if o.current != nil {
		c <- o.current
	}
	o.subs[id] = c

	return c, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if sub, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(sub)
		}
	}
}

// publish sets the new current value and notifies every subscriber,
// replacing any unconsumed pending value (last-write-wins).
func (o *CurrentNodeObservable) publish(n *Node) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = n
	for _, sub := range o.subs {
		select {
		case <-sub:
		default:
		}
		sub <- n
	}
}

// StateHandler owns the back-stack and the current-node observable.
// It is the only component permitted to mutate the
// back-stack, and is itself only ever called from the Choreographer's
// single serial dispatch loop. So, despite CurrentNodeObservable being
// safe for concurrent subscription, StateHandler's mutating methods are
// not safe for concurrent invocation and must not be called from more
// than one goroutine.
type StateHandler struct {
	graph     *Graph
	stack     *BackStack
	observ    *CurrentNodeObservable
	observers []Observer
}

// Observer receives notifications of back-stack transitions. Observers
// are purely additive and side-effect free from the choreographer's
// point of view: they never influence validation or state.
type Observer interface {
	DidNavigate(to *Node)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(to *Node)

// DidNavigate implements Observer.
func (f ObserverFunc) DidNavigate(to *Node) { f(to) }

// NewStateHandler constructs a StateHandler rooted at graph.RootNode(),
// pushing and emitting the root immediately.
func NewStateHandler(graph *Graph, observers ...Observer) *StateHandler {
	h := &StateHandler{
		graph:     graph,
		stack:     NewBackStack(graph.RootNode()),
		observ:    newCurrentNodeObservable(),
		observers: observers,
	}
	h.emit(graph.RootNode())
	return h
}

func (h *StateHandler) emit(n *Node) {
	h.observ.publish(n)
	for _, o := range h.observers {
		o.DidNavigate(n)
	}
}

// Current returns the current-node observable.
func (h *StateHandler) Current() *CurrentNodeObservable { return h.observ }

// CurrentNode is a convenience accessor for the observable's latest value.
func (h *StateHandler) CurrentNode() *Node { return h.observ.Value() }

// Depth returns the total number of back-stack entries.
func (h *StateHandler) Depth() int { return h.stack.Size() }

// Append delegates to BackStack.Add with AddToBackStack = keepInStack,
// then emits the new current node. Append itself never fails; the bool
// return keeps it symmetric with PopUntil for callers that treat both
// as fallible.
func (h *StateHandler) Append(node *Node, keepInStack bool) bool {
	h.stack.Add(node, NavOptions{AddToBackStack: keepInStack})
	h.emit(h.stack.Last())
	return true
}

// AppendWithOptions is like Append but forwards the full NavOptions,
// needed by the choreographer's NavigateTo handling which must respect
// SingleTop and ClearBackStack as well as AddToBackStack.
func (h *StateHandler) AppendWithOptions(node *Node, opts NavOptions) {
	h.stack.Add(node, opts)
	h.emit(h.stack.Last())
}

// PopUntil asks the back-stack to pop until the node's RouteKey equals
// key (inclusive = false). On ErrNoMatch it self-heals by clearing and
// re-pushing the root, emitting it. On ErrEmptyStack it returns false
// without emitting.
func (h *StateHandler) PopUntil(key RouteKey) bool {
	err := h.stack.PopUntil(func(n *Node) bool { return n != nil && n.RouteKey == key }, false)
	switch err {
	case nil:
		h.emit(h.stack.Last())
		return true
	case ErrNoMatch:
		h.stack.ResetToRoot(h.graph.RootNode())
		h.emit(h.graph.RootNode())
		return true
	default: // ErrEmptyStack
		return false
	}
}

// Pop pops the back-stack and emits the new top. Popping the only
// element is benign: the root is reinstated, emitted, and returned.
func (h *StateHandler) Pop() *Node {
	n, err := h.stack.Pop()
	if err != nil {
		h.stack.ResetToRoot(h.graph.RootNode())
		h.emit(h.graph.RootNode())
		return h.graph.RootNode()
	}
	h.emit(n)
	return n
}

// Clear drops everything, pushes root, and emits it.
func (h *StateHandler) Clear() {
	h.stack.ResetToRoot(h.graph.RootNode())
	h.emit(h.graph.RootNode())
}
