// Package nav implements a concurrent navigation choreographer: a
// policy-driven engine that mediates between components wishing to change
// the displayed screen of an application and the view layer that ultimately
// effects those changes.
//
// The package converts an unbounded, concurrent stream of navigation
// intents (produced by user actions, background components, and
// inactivity timers) into a deterministic, validated, ordered sequence of
// navigation commands, while enforcing per-destination access
// requirements, back-stack discipline, redirect-chain transactions, and
// inactivity timeouts.
//
// The central type is Choreographer, which owns a Graph, a BackStack (via
// a StateHandler), a CompositeValidator, and a TransactionManager, and
// serialises dispatch of every admitted Intent through them.
package nav
