package nav

// Actor is anything that can produce intents into the choreographer's
// merged stream. UserActor and SystemActor cover the two sender
// classes; InactivityTimer also satisfies this interface so the
// choreographer can fan it in uniformly alongside user/system actors.
type Actor interface {
	Sender() Sender
	DefaultPriority() int
	Intents() <-chan Intent
}

// UserActor is the canonical source of user-driven navigation: taps,
// gestures, and other direct UI interaction translated into intents.
// Its channel capacity comes from NewUserActor's capacity argument;
// when full, sends block, giving backpressure to the UI thread that
// calls its methods rather than dropping intents.
type UserActor struct {
	priority int
	out      chan Intent
}

// NewUserActor constructs a UserActor whose intent channel has the given
// capacity.
func NewUserActor(priority, capacity int) *UserActor {
	return &UserActor{priority: priority, out: make(chan Intent, capacity)}
}

// Sender implements Actor.
func (a *UserActor) Sender() Sender { return SenderUser }

// DefaultPriority implements Actor.
func (a *UserActor) DefaultPriority() int { return a.priority }

// Intents implements Actor.
func (a *UserActor) Intents() <-chan Intent { return a.out }

// Navigate emits a NavigateTo intent at the actor's default priority.
func (a *UserActor) Navigate(route Route, opts NavOptions) { a.send(NavigateTo(route, opts, SenderUser, a.priority)) }

// Back emits a Back intent.
func (a *UserActor) Back() { a.send(Back(SenderUser, a.priority)) }

// PopUpTo emits a PopUpTo intent.
func (a *UserActor) PopUpTo(route Route, inclusive bool) {
	a.send(PopUpTo(route, inclusive, SenderUser, a.priority))
}

// ClearBackStack emits a ClearBackStack intent.
func (a *UserActor) ClearBackStack() { a.send(ClearBackStack(SenderUser, a.priority)) }

// DisplayDialog emits a DisplayDialog intent.
func (a *UserActor) DisplayDialog(overlay Overlay, dismissID string) {
	a.send(DisplayDialog(overlay, SenderUser, a.priority, dismissID))
}

// DismissOverlay emits a DismissOverlay intent.
func (a *UserActor) DismissOverlay(dialogID string) {
	a.send(DismissOverlay(dialogID, SenderUser, a.priority))
}

func (a *UserActor) send(i Intent) { a.out <- i }

// SystemActor is the source of system-driven navigation: background
// components, push notifications, deep links, and other non-interactive
// triggers. It mirrors UserActor's API but stamps SenderSystem.
type SystemActor struct {
	priority int
	out      chan Intent
}

// NewSystemActor constructs a SystemActor whose intent channel has the
// given capacity.
func NewSystemActor(priority, capacity int) *SystemActor {
	return &SystemActor{priority: priority, out: make(chan Intent, capacity)}
}

// Sender implements Actor.
func (a *SystemActor) Sender() Sender { return SenderSystem }

// DefaultPriority implements Actor.
func (a *SystemActor) DefaultPriority() int { return a.priority }

// Intents implements Actor.
func (a *SystemActor) Intents() <-chan Intent { return a.out }

// Navigate emits a NavigateTo intent at the actor's default priority.
func (a *SystemActor) Navigate(route Route, opts NavOptions) {
	a.send(NavigateTo(route, opts, SenderSystem, a.priority))
}

// Back emits a Back intent.
func (a *SystemActor) Back() { a.send(Back(SenderSystem, a.priority)) }

// PopUpTo emits a PopUpTo intent.
func (a *SystemActor) PopUpTo(route Route, inclusive bool) {
	a.send(PopUpTo(route, inclusive, SenderSystem, a.priority))
}

// ClearBackStack emits a ClearBackStack intent.
func (a *SystemActor) ClearBackStack() { a.send(ClearBackStack(SenderSystem, a.priority)) }

// DisplayDialog emits a DisplayDialog intent.
func (a *SystemActor) DisplayDialog(overlay Overlay, dismissID string) {
	a.send(DisplayDialog(overlay, SenderSystem, a.priority, dismissID))
}

// DismissOverlay emits a DismissOverlay intent.
func (a *SystemActor) DismissOverlay(dialogID string) {
	a.send(DismissOverlay(dialogID, SenderSystem, a.priority))
}

// CompleteTransaction emits a CompleteNavTransaction intent for route,
// the signal a view layer sends once it has finished presenting a
// redirect-chain step. Only SystemActor exposes this: the intent's own
// constructor fixes its sender to system.
func (a *SystemActor) CompleteTransaction(route Route) {
	a.send(CompleteNavTransaction(route))
}

func (a *SystemActor) send(i Intent) { a.out <- i }
