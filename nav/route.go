package nav

// RouteKey is the identity of a destination. It replaces the reflective,
// runtime-class-hash route identity that a dynamically typed
// implementation of this system would use with a fixed, comparable
// identifier: a stable string assigned per route variant. Using a plain
// string (rather than a runtime type token) lets Graph use it directly as
// a map key with O(1) lookup, and lets tests and validators construct
// RouteKeys as ordinary values without reflection.
type RouteKey string

// Sender identifies who originated an Intent.
type Sender int

const (
	// SenderUser marks an intent produced by direct user interaction.
	SenderUser Sender = iota
	// SenderSystem marks an intent produced by a background component,
	// the inactivity timer, or the choreographer itself.
	SenderSystem
)

// String implements fmt.Stringer for readable logs and events.
func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Priority defaults. Actors that don't specify their own default
// priority should use one of these.
const (
	PriorityUserDefault   = 1
	PriorityUserHigh      = 10
	PrioritySystemDefault = 2
	PrioritySystemHigh    = 20
)

// Route is an instance of a destination: a RouteKey plus whatever
// arguments the destination needs. Args is intentionally opaque (any):
// the core never inspects it, only validators and the view layer do.
type Route struct {
	Key  RouteKey
	Args any
}

// NewRoute constructs a Route with no arguments.
func NewRoute(key RouteKey) Route {
	return Route{Key: key}
}

// WithArgs returns a copy of the route carrying the given arguments.
func (r Route) WithArgs(args any) Route {
	r.Args = args
	return r
}

// NavOptions are the navigation options under which a node is pushed onto
// the back-stack.
type NavOptions struct {
	// SingleTop: a consecutive duplicate at the top of the destination
	// stack is not pushed again.
	SingleTop bool
	// AddToBackStack: push onto the retained stack rather than the
	// transient (non-retained) one.
	AddToBackStack bool
	// ClearBackStack: drop both stacks before pushing.
	ClearBackStack bool
}
