package nav

import "time"

// NoTimeout marks a node as never subject to inactivity timeout.
// time.Duration is a bounded int64, so a distinguished negative
// sentinel is used instead of a MaxInt64 duration that would overflow
// arithmetic on timers.
const NoTimeout time.Duration = -1

// AutoRouteBuilder produces a Route instance for a node that can be
// auto-navigated to (e.g. by a redirect chain entry that only names a
// RouteKey). It is optional; nodes reached only via explicit NavigateTo
// intents that already carry a fully formed Route do not need one.
type AutoRouteBuilder func() Route

// Appearance is opaque metadata the core carries but never inspects:
// whatever the view layer needs to render a menu entry or tab for a node.
type Appearance struct {
	Title string
	Icon  string
}

// Node is the graph's unit: a destination plus the metadata the core
// needs to enforce access requirements and inactivity timeouts.
type Node struct {
	// RouteKey is unique within the owning Graph.
	RouteKey RouteKey

	// Appearance is opaque to the core except for display purposes.
	Appearance Appearance

	// ScreenTimeout is the inactivity duration after which this node's
	// inactivity timer fires InteractionTimeout. NoTimeout means the node
	// never times out. Zero means "unset": the choreographer's configured
	// DefaultScreenTimeout is used instead.
	ScreenTimeout time.Duration

	// Requirements are opaque tags consumed by validators (e.g.
	// "authenticated", "admin"). The core never interprets them.
	Requirements map[string]struct{}

	// MenuChildren holds ordered child nodes for menu nodes. Empty for
	// leaf nodes.
	MenuChildren []*Node

	// AutoRouteBuilder optionally produces a Route instance for this node.
	AutoRouteBuilder AutoRouteBuilder

	// IsMenu distinguishes menu nodes from leaf destinations.
	IsMenu bool
}

// EffectiveTimeout resolves the node's screen timeout against the
// choreographer-wide default: explicit node setting > engine-wide
// default > unlimited.
func (n *Node) EffectiveTimeout(defaultTimeout time.Duration) time.Duration {
	if n == nil {
		return defaultTimeout
	}
	if n.ScreenTimeout == NoTimeout {
		return NoTimeout
	}
	if n.ScreenTimeout > 0 {
		return n.ScreenTimeout
	}
	return defaultTimeout
}

// HasRequirement reports whether the node carries the named requirement
// tag. Nil-safe so validators can call it on a possibly-absent node.
func (n *Node) HasRequirement(tag string) bool {
	if n == nil || n.Requirements == nil {
		return false
	}
	_, ok := n.Requirements[tag]
	return ok
}

// NodeOption configures a Node at construction time via NewNode.
type NodeOption func(*Node)

// WithAppearance sets the node's display metadata.
func WithAppearance(a Appearance) NodeOption {
	return func(n *Node) { n.Appearance = a }
}

// WithScreenTimeout sets a per-node inactivity timeout override.
func WithScreenTimeout(d time.Duration) NodeOption {
	return func(n *Node) { n.ScreenTimeout = d }
}

// WithRequirements attaches requirement tags to the node.
func WithRequirements(tags ...string) NodeOption {
	return func(n *Node) {
		if n.Requirements == nil {
			n.Requirements = make(map[string]struct{}, len(tags))
		}
		for _, t := range tags {
			n.Requirements[t] = struct{}{}
		}
	}
}

// WithAutoRouteBuilder attaches a builder used to synthesize a Route for
// this node when only its RouteKey is known (e.g. from a redirect chain).
func WithAutoRouteBuilder(b AutoRouteBuilder) NodeOption {
	return func(n *Node) { n.AutoRouteBuilder = b }
}

// WithMenuChildren marks the node as a menu and attaches its children in
// order.
func WithMenuChildren(children ...*Node) NodeOption {
	return func(n *Node) {
		n.IsMenu = true
		n.MenuChildren = append(n.MenuChildren, children...)
	}
}

// NewNode constructs a Node for the given route key.
func NewNode(key RouteKey, opts ...NodeOption) *Node {
	n := &Node{RouteKey: key}
	for _, opt := range opts {
		opt(n)
	}
	return n
}
