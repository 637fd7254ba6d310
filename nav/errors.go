// Package nav provides the navigation choreographer core.
package nav

import "errors"

// Sentinel errors for every failure kind the pipeline distinguishes.
var (
	// ErrRouteNotInGraph is returned by Graph.MenuOf for a RouteKey absent
	// from the graph. The choreographer logs and drops a NavigateTo that
	// names such a key without returning this error.
	ErrRouteNotInGraph = errors.New("nav: route not in graph")

	// ErrEmptyStack is returned by BackStack.Pop/PopUntil when the
	// retained stack has no more entries to pop.
	ErrEmptyStack = errors.New("nav: back-stack is empty")

	// ErrNoMatch is returned by BackStack.PopUntil when no retained entry
	// matches the predicate.
	ErrNoMatch = errors.New("nav: no back-stack entry matches predicate")

	// ErrTransactionInProgress is returned by TransactionManager.Apply
	// when a transaction is already installed, including one whose prefix
	// intents have all been handed out but whose original has not yet
	// been returned by Next.
	ErrTransactionInProgress = errors.New("nav: a transaction is already in progress")

	// ErrNoTransaction is returned by TransactionManager.Next when no
	// transaction is installed.
	ErrNoTransaction = errors.New("nav: no transaction is active")

	// ErrInvalidState marks an inconsistent transaction-manager state.
	// The choreographer retries a dispatch that fails with it, with
	// backoff; TransactionManager's slice-backed chain has no such state
	// and does not return it.
	ErrInvalidState = errors.New("nav: transaction manager reached an invalid internal state")

	// ErrRedirectLoop is returned by TransactionManager.Apply when a
	// redirect chain would revisit the same route key more than once.
	ErrRedirectLoop = errors.New("nav: redirect chain revisits the same route")
)

// ChoreographerError is a structured error returned by New for a nil
// graph or a failing Option: a machine-readable Code, a human Message, and an
// optional Cause for wrapping.
type ChoreographerError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ChoreographerError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

func (e *ChoreographerError) Unwrap() error {
	return e.Cause
}
