package nav

// BackStackEntry is a node reference plus the navigation options under
// which it was pushed.
type BackStackEntry struct {
	Node    *Node
	Options NavOptions
}

// BackStack is a two-tier stack of nodes: `retained` is the real
// history, `nonRetained` is transient and is cleared on every pop or
// pop-until. It is not safe for concurrent use by itself; it is owned
// exclusively by a StateHandler, which the Choreographer calls from its
// single serial dispatch loop.
type BackStack struct {
	retained    []BackStackEntry
	nonRetained []BackStackEntry
}

// NewBackStack creates a BackStack already containing root: the
// invariant "retained is never empty after initialisation" is established
// here, not by the caller.
func NewBackStack(root *Node) *BackStack {
	b := &BackStack{}
	b.ResetToRoot(root)
	return b
}

// Add pushes node under the given options:
//
//   - ClearBackStack drops both stacks entirely before pushing.
//   - AddToBackStack drops nonRetained, then pushes onto retained unless
//     SingleTop and the current retained top is already node.
//   - otherwise pushes onto nonRetained under the same singleTop rule.
func (b *BackStack) Add(node *Node, opts NavOptions) {
	entry := BackStackEntry{Node: node, Options: opts}

	if opts.ClearBackStack {
		b.retained = nil
		b.nonRetained = nil
	}

	if opts.AddToBackStack {
		b.nonRetained = nil
		if opts.SingleTop && len(b.retained) > 0 && b.retained[len(b.retained)-1].Node == node {
			return
		}
		b.retained = append(b.retained, entry)
		return
	}

	if opts.SingleTop && len(b.nonRetained) > 0 && b.nonRetained[len(b.nonRetained)-1].Node == node {
		return
	}
	b.nonRetained = append(b.nonRetained, entry)
}

// Pop drops nonRetained entirely and returns the (unchanged) retained
// top if nonRetained was non-empty; else it pops the retained top,
// failing with ErrEmptyStack if that would leave retained empty.
func (b *BackStack) Pop() (*Node, error) {
	if len(b.nonRetained) > 0 {
		b.nonRetained = nil
		if len(b.retained) == 0 {
			return nil, ErrEmptyStack
		}
		return b.retained[len(b.retained)-1].Node, nil
	}

	if len(b.retained) == 0 {
		return nil, ErrEmptyStack
	}
	if len(b.retained) == 1 {
		return nil, ErrEmptyStack
	}
	b.retained = b.retained[:len(b.retained)-1]
	return b.retained[len(b.retained)-1].Node, nil
}

// PopUntil clears nonRetained, then pops retained entries until one
// matches pred. If inclusive is false, the matched entry is reinstated as
// the new top. Fails with ErrEmptyStack if retained was already empty, or
// ErrNoMatch if no entry matches (retained is left empty in that case).
func (b *BackStack) PopUntil(pred func(*Node) bool, inclusive bool) error {
	b.nonRetained = nil

	if len(b.retained) == 0 {
		return ErrEmptyStack
	}

	for len(b.retained) > 0 {
		top := b.retained[len(b.retained)-1]
		if pred(top.Node) {
			if inclusive {
				b.retained = b.retained[:len(b.retained)-1]
			}
			return nil
		}
		b.retained = b.retained[:len(b.retained)-1]
	}
	return ErrNoMatch
}

// Last returns nonRetained.last if non-empty, else retained.last. It
// returns nil if both are empty (only possible before NewBackStack's
// invariant is established, or transiently during recovery).
func (b *BackStack) Last() *Node {
	if len(b.nonRetained) > 0 {
		return b.nonRetained[len(b.nonRetained)-1].Node
	}
	if len(b.retained) > 0 {
		return b.retained[len(b.retained)-1].Node
	}
	return nil
}

// Clear drops both stacks entirely. Callers are responsible for
// re-establishing the non-empty invariant (StateHandler.Clear does so by
// re-pushing the root).
func (b *BackStack) Clear() {
	b.retained = nil
	b.nonRetained = nil
}

// ResetToRoot drops both stacks and re-establishes the non-empty
// invariant with root as the sole retained entry. Used by StateHandler to
// self-heal after PopUntil finds no match, and to implement Clear/Pop's
// empty-stack recovery.
func (b *BackStack) ResetToRoot(root *Node) {
	b.nonRetained = nil
	b.retained = []BackStackEntry{{Node: root, Options: NavOptions{AddToBackStack: true}}}
}

// Size returns the total number of entries across both stacks.
func (b *BackStack) Size() int {
	return len(b.retained) + len(b.nonRetained)
}
